// Package auth authenticates users against an identity provider and keeps
// the session principal in a signed scs session.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	scs "github.com/alexedwards/scs/v2"
	"github.com/rs/zerolog"

	"github.com/briangreenhill/coachprompt/internal/model"
	"github.com/briangreenhill/coachprompt/internal/store"
)

// Session keys holding the principal.
const (
	KeyUserID    = "user_id"
	KeyUserEmail = "user_email"
	KeyUserName  = "user_name"
)

// MinPasswordLength is the shortest password signup accepts.
const MinPasswordLength = 6

// Manager runs login, signup and logout on top of a session manager.
type Manager struct {
	sess  *scs.SessionManager
	idp   IdentityProvider
	users *store.Client
	log   zerolog.Logger
}

// NewManager wires the session manager, the identity provider and the
// store used to mirror new users. users may be disconnected.
func NewManager(sess *scs.SessionManager, idp IdentityProvider, users *store.Client, log zerolog.Logger) *Manager {
	if users == nil {
		users = store.Disconnected(nil)
	}
	return &Manager{
		sess:  sess,
		idp:   idp,
		users: users,
		log:   log.With().Str("component", "auth").Logger(),
	}
}

// Login verifies credentials and establishes the session. remember picks a
// persistent cookie over a browser-lifetime one.
func (m *Manager) Login(ctx context.Context, email, password string, remember bool) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, &model.ValidationError{Message: "Please fill all required fields"}
	}

	u, err := m.idp.VerifyPassword(ctx, email, password)
	if err != nil {
		m.log.Info().Err(err).Str("provider", m.idp.Name()).Msg("login rejected")
		return nil, ErrInvalidCredentials
	}

	if err := m.establish(ctx, u, remember); err != nil {
		return nil, err
	}
	m.log.Info().Str("user_id", u.ID).Msg("login")
	return &u, nil
}

// Signup creates the account, mirrors it into the users collection and
// establishes the session.
func (m *Manager) Signup(ctx context.Context, email, name, password string) (*model.User, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if email == "" || name == "" || password == "" {
		return nil, &model.ValidationError{Message: "Please fill all required fields"}
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, &model.ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("Password must be at least %d characters", MinPasswordLength),
		}
	}

	u, err := m.idp.CreateUser(ctx, email, name, password)
	if err != nil {
		m.log.Error().Err(err).Str("provider", m.idp.Name()).Msg("signup failed")
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	if m.users.Connected() {
		if err := m.users.PutUser(ctx, model.User{ID: u.ID, Email: email, Name: name}); err != nil {
			m.log.Error().Err(err).Str("user_id", u.ID).Msg("mirror user failed")
		}
	}

	if err := m.establish(ctx, u, false); err != nil {
		return nil, err
	}
	m.log.Info().Str("user_id", u.ID).Msg("signup")
	return &u, nil
}

// Logout destroys the current session.
func (m *Manager) Logout(ctx context.Context) error {
	if m.Current(ctx) == nil {
		return ErrUnauthenticated
	}
	return m.sess.Destroy(ctx)
}

// Current returns the session principal, or nil when there is none. ctx
// must carry a session loaded by SessionManager.LoadAndSave (or Load);
// scs panics otherwise. An unreadable session loads as an empty one.
func (m *Manager) Current(ctx context.Context) *model.User {
	id := m.sess.GetString(ctx, KeyUserID)
	if id == "" {
		return nil
	}
	return &model.User{
		ID:    id,
		Email: m.sess.GetString(ctx, KeyUserEmail),
		Name:  m.sess.GetString(ctx, KeyUserName),
	}
}

func (m *Manager) establish(ctx context.Context, u model.User, remember bool) error {
	// new token on privilege change
	if err := m.sess.RenewToken(ctx); err != nil {
		return fmt.Errorf("renew session: %w", err)
	}
	m.sess.Put(ctx, KeyUserID, u.ID)
	m.sess.Put(ctx, KeyUserEmail, u.Email)
	m.sess.Put(ctx, KeyUserName, u.Name)
	m.sess.RememberMe(ctx, remember)
	return nil
}
