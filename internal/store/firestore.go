package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/briangreenhill/coachprompt/internal/model"
)

// Firestore stores users and profiles as Cloud Firestore documents.
type Firestore struct {
	client *firestore.Client
}

// NewFirestore wraps an initialized Firestore client.
func NewFirestore(client *firestore.Client) *Firestore {
	return &Firestore{client: client}
}

func (f *Firestore) Name() string { return "firestore" }

func (f *Firestore) CreateProfile(ctx context.Context, p model.UserProfile) (string, error) {
	ref := f.client.Collection(ProfilesCollection).NewDoc()

	// zero value makes the serverTimestamp tag apply
	p.UpdatedAt = time.Time{}
	if _, err := ref.Create(ctx, p); err != nil {
		return "", err
	}
	return ref.ID, nil
}

func (f *Firestore) UpdateFeedback(ctx context.Context, id, userID, feedback string) error {
	ref := f.client.Collection(ProfilesCollection).Doc(id)
	updates := []firestore.Update{
		{Path: "feedback", Value: feedback},
		{Path: "updated_at", Value: firestore.ServerTimestamp},
	}

	var err error
	if userID == "" {
		_, err = ref.Update(ctx, updates)
	} else {
		err = f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
			snap, err := tx.Get(ref)
			if err != nil {
				return err
			}
			owner, err := snap.DataAt("user_id")
			if err != nil || owner != userID {
				return errNotOwner
			}
			return tx.Update(ref, updates)
		})
	}
	if status.Code(err) == codes.NotFound || errors.Is(err, errNotOwner) {
		return fmt.Errorf("profile %s: %w", id, ErrNotFound)
	}
	return err
}

var errNotOwner = errors.New("profile belongs to another user")

func (f *Firestore) LatestProfile(ctx context.Context, userID string) (model.UserProfile, error) {
	iter := f.client.Collection(ProfilesCollection).
		Where("user_id", "==", userID).
		OrderBy("created_at", firestore.Desc).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return model.UserProfile{}, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return model.UserProfile{}, err
	}
	return profileFromDoc(doc)
}

func profileFromDoc(doc *firestore.DocumentSnapshot) (model.UserProfile, error) {
	var p model.UserProfile
	if err := doc.DataTo(&p); err != nil {
		return model.UserProfile{}, fmt.Errorf("decode profile %s: %w", doc.Ref.ID, err)
	}
	p.ID = doc.Ref.ID
	return p, nil
}

func (f *Firestore) ProfilesByUser(ctx context.Context, userID string) ([]model.UserProfile, error) {
	iter := f.client.Collection(ProfilesCollection).
		Where("user_id", "==", userID).
		OrderBy("created_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	out := make([]model.UserProfile, 0)
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		p, err := profileFromDoc(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *Firestore) PutUser(ctx context.Context, u model.User) error {
	_, err := f.client.Collection(UsersCollection).Doc(u.ID).Set(ctx, u)
	return err
}

func (f *Firestore) GetUser(ctx context.Context, id string) (model.User, error) {
	snap, err := f.client.Collection(UsersCollection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return model.User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.User{}, err
	}
	var u model.User
	if err := snap.DataTo(&u); err != nil {
		return model.User{}, fmt.Errorf("decode user %s: %w", id, err)
	}
	u.ID = id
	return u, nil
}

func (f *Firestore) Close() error {
	return f.client.Close()
}
