// Package store is the document-store layer. A Client wraps one backend
// (Firestore, Postgres or memory) and carries an explicit connected state:
// a Client built without a backend is disconnected for the life of the
// process and every call on it returns ErrUnavailable.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/briangreenhill/coachprompt/internal/model"
)

// Collection names, shared by every backend.
const (
	UsersCollection    = "users"
	ProfilesCollection = "user_profiles"
)

var (
	// ErrUnavailable is returned by a disconnected Client.
	ErrUnavailable = errors.New("document store unavailable")
	// ErrNotFound is returned when an addressed document does not exist.
	ErrNotFound = errors.New("document not found")
)

// Failure is a read or write error on a connected store.
type Failure struct {
	Op  string
	Err error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("store %s: %v", f.Op, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Backend is implemented by each document store.
type Backend interface {
	// Name identifies the backend in logs ("firestore", "postgres", "memory").
	Name() string

	// CreateProfile stores a new profile, stamps updated_at with the
	// server time and returns the generated document id.
	CreateProfile(ctx context.Context, p model.UserProfile) (string, error)

	// UpdateFeedback sets the feedback field of an existing profile and
	// stamps updated_at. When userID is set the profile must belong to
	// that user. Unknown ids and foreign profiles return ErrNotFound.
	UpdateFeedback(ctx context.Context, id, userID, feedback string) error

	// ProfilesByUser returns the user's profiles, newest created_at first.
	ProfilesByUser(ctx context.Context, userID string) ([]model.UserProfile, error)

	// LatestProfile returns the user's newest profile, or ErrNotFound.
	LatestProfile(ctx context.Context, userID string) (model.UserProfile, error)

	// PutUser creates or replaces the mirrored user document.
	PutUser(ctx context.Context, u model.User) error

	// GetUser loads a mirrored user document.
	GetUser(ctx context.Context, id string) (model.User, error)

	Close() error
}

// Client is the process-wide store handle.
type Client struct {
	backend Backend
	reason  error
}

// NewClient returns a connected Client over b.
func NewClient(b Backend) *Client {
	return &Client{backend: b}
}

// Disconnected returns a Client that never reaches a backend. reason is
// kept for logging.
func Disconnected(reason error) *Client {
	if reason == nil {
		reason = ErrUnavailable
	}
	return &Client{reason: reason}
}

// Connected reports whether a backend is attached.
func (c *Client) Connected() bool {
	return c != nil && c.backend != nil
}

// Name returns the backend name, or "none" when disconnected.
func (c *Client) Name() string {
	if !c.Connected() {
		return "none"
	}
	return c.backend.Name()
}

// Reason explains why the client is disconnected; nil when connected.
func (c *Client) Reason() error {
	if c.Connected() {
		return nil
	}
	if c == nil || c.reason == nil {
		return ErrUnavailable
	}
	return c.reason
}

func (c *Client) CreateProfile(ctx context.Context, p model.UserProfile) (string, error) {
	if !c.Connected() {
		return "", ErrUnavailable
	}
	id, err := c.backend.CreateProfile(ctx, p)
	if err != nil {
		return "", &Failure{Op: "create profile", Err: err}
	}
	return id, nil
}

func (c *Client) UpdateFeedback(ctx context.Context, id, userID, feedback string) error {
	if !c.Connected() {
		return ErrUnavailable
	}
	if err := c.backend.UpdateFeedback(ctx, id, userID, feedback); err != nil {
		return &Failure{Op: "update feedback", Err: err}
	}
	return nil
}

func (c *Client) ProfilesByUser(ctx context.Context, userID string) ([]model.UserProfile, error) {
	if !c.Connected() {
		return nil, ErrUnavailable
	}
	profiles, err := c.backend.ProfilesByUser(ctx, userID)
	if err != nil {
		return nil, &Failure{Op: "list profiles", Err: err}
	}
	return profiles, nil
}

func (c *Client) LatestProfile(ctx context.Context, userID string) (model.UserProfile, error) {
	if !c.Connected() {
		return model.UserProfile{}, ErrUnavailable
	}
	p, err := c.backend.LatestProfile(ctx, userID)
	if err != nil {
		return model.UserProfile{}, &Failure{Op: "latest profile", Err: err}
	}
	return p, nil
}

func (c *Client) PutUser(ctx context.Context, u model.User) error {
	if !c.Connected() {
		return ErrUnavailable
	}
	if err := c.backend.PutUser(ctx, u); err != nil {
		return &Failure{Op: "put user", Err: err}
	}
	return nil
}

func (c *Client) GetUser(ctx context.Context, id string) (model.User, error) {
	if !c.Connected() {
		return model.User{}, ErrUnavailable
	}
	u, err := c.backend.GetUser(ctx, id)
	if err != nil {
		return model.User{}, &Failure{Op: "get user", Err: err}
	}
	return u, nil
}

// Close releases the backend. Safe on a disconnected client.
func (c *Client) Close() error {
	if !c.Connected() {
		return nil
	}
	return c.backend.Close()
}
