// Package profiles saves profile submissions, records feedback against
// them and reads a user's history. Every operation degrades instead of
// failing: callers get a result that says whether persistence happened.
package profiles

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/coachprompt/internal/model"
	"github.com/briangreenhill/coachprompt/internal/store"
)

// SaveResult reports the outcome of Save. On failure ID is model.LocalID
// and Err says why.
type SaveResult struct {
	ID  string
	Err error
}

// Persisted reports whether the profile reached the store.
func (r SaveResult) Persisted() bool {
	return r.Err == nil && r.ID != "" && r.ID != model.LocalID
}

// ListResult is a user's history. Profiles is never nil; Err is set when
// the store could not be read.
type ListResult struct {
	Profiles []model.UserProfile
	Err      error
}

// Repository is the data-access layer over the store client.
type Repository struct {
	store *store.Client
	log   zerolog.Logger
}

// New returns a Repository. A disconnected client is fine.
func New(c *store.Client, log zerolog.Logger) *Repository {
	if c == nil {
		c = store.Disconnected(nil)
	}
	return &Repository{
		store: c,
		log:   log.With().Str("component", "profiles").Logger(),
	}
}

// Connected reports whether writes can reach a backend.
func (r *Repository) Connected() bool {
	return r.store.Connected()
}

// Save persists p and returns the generated id. It never returns an error
// through a second channel.
func (r *Repository) Save(ctx context.Context, p model.UserProfile) SaveResult {
	if err := p.Validate(); err != nil {
		return SaveResult{ID: model.LocalID, Err: err}
	}
	if !r.store.Connected() {
		return SaveResult{ID: model.LocalID, Err: store.ErrUnavailable}
	}

	id, err := r.store.CreateProfile(ctx, p)
	if err != nil {
		r.log.Error().Err(err).Str("user_id", p.UserID).Msg("save profile failed")
		return SaveResult{ID: model.LocalID, Err: err}
	}
	r.log.Debug().Str("profile_id", id).Str("user_id", p.UserID).Msg("profile saved")
	return SaveResult{ID: id}
}

// RecordFeedback attaches value to the stored profile id. It returns true
// only when the update was confirmed. The local sentinel is never sent to
// the store.
func (r *Repository) RecordFeedback(ctx context.Context, id, value string) bool {
	return r.RecordFeedbackFor(ctx, "", id, value)
}

// RecordFeedbackFor is RecordFeedback restricted to profiles owned by
// userID. A profile of another user reads as unknown.
func (r *Repository) RecordFeedbackFor(ctx context.Context, userID, id, value string) bool {
	id = strings.TrimSpace(id)
	if id == "" || id == model.LocalID || value == "" {
		return false
	}
	if !r.store.Connected() {
		return false
	}
	if err := r.store.UpdateFeedback(ctx, id, userID, value); err != nil {
		r.log.Error().Err(err).Str("profile_id", id).Msg("record feedback failed")
		return false
	}
	return true
}

// List returns the user's profiles, newest first.
func (r *Repository) List(ctx context.Context, userID string) ListResult {
	if !r.store.Connected() {
		return ListResult{Profiles: []model.UserProfile{}, Err: store.ErrUnavailable}
	}
	profiles, err := r.store.ProfilesByUser(ctx, userID)
	if err != nil {
		r.log.Error().Err(err).Str("user_id", userID).Msg("list profiles failed")
		return ListResult{Profiles: []model.UserProfile{}, Err: err}
	}
	if profiles == nil {
		profiles = []model.UserProfile{}
	}
	return ListResult{Profiles: profiles}
}

// Latest returns the user's most recently created profile.
func (r *Repository) Latest(ctx context.Context, userID string) (*model.UserProfile, bool) {
	if !r.store.Connected() {
		return nil, false
	}
	p, err := r.store.LatestProfile(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			r.log.Error().Err(err).Str("user_id", userID).Msg("latest profile failed")
		}
		return nil, false
	}
	return &p, true
}
