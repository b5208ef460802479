package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"github.com/briangreenhill/coachprompt/internal/model"
)

// adminClient is the slice of the Admin SDK auth client we use.
type adminClient interface {
	CreateUser(ctx context.Context, user *fbauth.UserToCreate) (*fbauth.UserRecord, error)
	GetUser(ctx context.Context, uid string) (*fbauth.UserRecord, error)
}

// FirebaseProvider creates accounts with the Admin SDK and checks
// passwords server-side through the Identity Toolkit password endpoint.
type FirebaseProvider struct {
	admin   adminClient
	toolkit *identitytoolkit.Service

	// isDuplicate classifies CreateUser errors.
	isDuplicate func(error) bool
}

// NewFirebaseProvider builds the provider from an initialized app. apiKey
// is the project's web API key; without it logins fail with ErrProvider.
func NewFirebaseProvider(ctx context.Context, app *firebase.App, apiKey string, opts ...option.ClientOption) (*FirebaseProvider, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}

	var toolkit *identitytoolkit.Service
	if apiKey != "" {
		opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
		toolkit, err = identitytoolkit.NewService(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("identity toolkit client: %w", err)
		}
	}
	return newFirebaseProvider(client, toolkit), nil
}

func newFirebaseProvider(admin adminClient, toolkit *identitytoolkit.Service) *FirebaseProvider {
	return &FirebaseProvider{
		admin:       admin,
		toolkit:     toolkit,
		isDuplicate: fbauth.IsEmailAlreadyExists,
	}
}

func (f *FirebaseProvider) Name() string { return "firebase" }

func (f *FirebaseProvider) CreateUser(ctx context.Context, email, name, password string) (model.User, error) {
	params := (&fbauth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(name)

	rec, err := f.admin.CreateUser(ctx, params)
	if err != nil {
		if f.isDuplicate(err) {
			return model.User{}, ErrDuplicateEmail
		}
		return model.User{}, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	return userFromRecord(rec), nil
}

func (f *FirebaseProvider) VerifyPassword(ctx context.Context, email, password string) (model.User, error) {
	if f.toolkit == nil {
		return model.User{}, fmt.Errorf("%w: FIREBASE_API_KEY not set", ErrProvider)
	}

	resp, err := f.toolkit.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusBadRequest {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	rec, err := f.admin.GetUser(ctx, resp.LocalId)
	if err != nil {
		return model.User{}, fmt.Errorf("%w: load user: %v", ErrProvider, err)
	}
	return userFromRecord(rec), nil
}

func userFromRecord(rec *fbauth.UserRecord) model.User {
	if rec == nil || rec.UserInfo == nil {
		return model.User{}
	}
	return model.User{
		ID:    rec.UID,
		Email: rec.Email,
		Name:  rec.DisplayName,
	}
}
