package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/briangreenhill/coachprompt/internal/model"
)

type localAccount struct {
	user model.User
	hash []byte
}

// LocalProvider keeps accounts in memory with bcrypt-hashed passwords. It
// is meant for development and tests; accounts are lost on restart.
type LocalProvider struct {
	mu       sync.RWMutex
	accounts map[string]localAccount // keyed by lower-cased email
	cost     int
}

// NewLocalProvider returns an empty provider. cost is the bcrypt cost;
// zero uses bcrypt.DefaultCost.
func NewLocalProvider(cost int) *LocalProvider {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &LocalProvider{
		accounts: make(map[string]localAccount),
		cost:     cost,
	}
}

func (l *LocalProvider) Name() string { return "local" }

func (l *LocalProvider) CreateUser(_ context.Context, email, name, password string) (model.User, error) {
	key := strings.ToLower(strings.TrimSpace(email))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), l.cost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.accounts[key]; exists {
		return model.User{}, ErrDuplicateEmail
	}
	u := model.User{
		ID:        uuid.NewString(),
		Email:     strings.TrimSpace(email),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	l.accounts[key] = localAccount{user: u, hash: hash}
	return u, nil
}

func (l *LocalProvider) VerifyPassword(_ context.Context, email, password string) (model.User, error) {
	l.mu.RLock()
	acct, ok := l.accounts[strings.ToLower(strings.TrimSpace(email))]
	l.mu.RUnlock()

	if !ok {
		return model.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acct.hash, []byte(password)); err != nil {
		return model.User{}, ErrInvalidCredentials
	}
	return acct.user, nil
}
