package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/briangreenhill/coachprompt/internal/model"
)

// Memory is an in-process backend for development and tests. Documents are
// lost on restart.
type Memory struct {
	mu       sync.RWMutex
	users    map[string]model.User
	profiles map[string]model.UserProfile

	// Now stands in for the server clock.
	Now func() time.Time
}

// NewMemory returns an empty Memory backend.
func NewMemory() *Memory {
	return &Memory{
		users:    make(map[string]model.User),
		profiles: make(map[string]model.UserProfile),
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) CreateProfile(_ context.Context, p model.UserProfile) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p.ID = uuid.NewString()
	p.UpdatedAt = m.Now()
	p.Goals = slices.Clone(p.Goals)
	m.profiles[p.ID] = p
	return p.ID, nil
}

func (m *Memory) UpdateFeedback(_ context.Context, id, userID, feedback string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[id]
	if !ok || (userID != "" && p.UserID != userID) {
		return ErrNotFound
	}
	p.Feedback = feedback
	p.UpdatedAt = m.Now()
	m.profiles[id] = p
	return nil
}

func (m *Memory) ProfilesByUser(_ context.Context, userID string) ([]model.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.UserProfile, 0)
	for _, p := range m.profiles {
		if p.UserID == userID {
			p.Goals = slices.Clone(p.Goals)
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b model.UserProfile) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (m *Memory) LatestProfile(_ context.Context, userID string) (model.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest model.UserProfile
	found := false
	for _, p := range m.profiles {
		if p.UserID != userID {
			continue
		}
		if !found || p.CreatedAt.After(latest.CreatedAt) {
			latest, found = p, true
		}
	}
	if !found {
		return model.UserProfile{}, ErrNotFound
	}
	latest.Goals = slices.Clone(latest.Goals)
	return latest, nil
}

// Profile returns a stored profile by id. Used by tests to inspect writes.
func (m *Memory) Profile(id string) (model.UserProfile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[id]
	return p, ok
}

func (m *Memory) PutUser(_ context.Context, u model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u.CreatedAt.IsZero() {
		u.CreatedAt = m.Now()
	}
	m.users[u.ID] = u
	return nil
}

func (m *Memory) GetUser(_ context.Context, id string) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

// UserIDs lists the mirrored user ids in no particular order.
func (m *Memory) UserIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	return ids
}

func (m *Memory) Close() error { return nil }
