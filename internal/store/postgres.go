package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/briangreenhill/coachprompt/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// Postgres keeps the two collections as tables. now() plays the part of
// the server-side timestamp.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an open pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates the tables if they are missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (p *Postgres) Name() string { return "postgres" }

func (p *Postgres) CreateProfile(ctx context.Context, prof model.UserProfile) (string, error) {
	id := uuid.NewString()
	goals := prof.Goals
	if goals == nil {
		goals = []string{}
	}

	_, err := p.pool.Exec(ctx, `
		INSERT INTO user_profiles (
			id, user_id, sport, level, goals, preferences, plan, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())`,
		id, prof.UserID, prof.Sport, prof.Level, goals, prof.Preferences, prof.Plan, prof.CreatedAt,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (p *Postgres) UpdateFeedback(ctx context.Context, id, userID, feedback string) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE user_profiles SET feedback = $2, updated_at = now()
		WHERE id = $1 AND ($3::text = '' OR user_id = $3::text)`,
		id, feedback, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profile %s: %w", id, ErrNotFound)
	}
	return nil
}

const profileColumns = `
	id, user_id, sport, level, goals, preferences, plan,
	COALESCE(feedback, ''), created_at, updated_at`

func scanProfile(row pgx.Row) (model.UserProfile, error) {
	var prof model.UserProfile
	err := row.Scan(
		&prof.ID,
		&prof.UserID,
		&prof.Sport,
		&prof.Level,
		&prof.Goals,
		&prof.Preferences,
		&prof.Plan,
		&prof.Feedback,
		&prof.CreatedAt,
		&prof.UpdatedAt,
	)
	return prof, err
}

func (p *Postgres) ProfilesByUser(ctx context.Context, userID string) ([]model.UserProfile, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT`+profileColumns+` FROM user_profiles WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.UserProfile, 0)
	for rows.Next() {
		prof, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, prof)
	}
	return out, rows.Err()
}

func (p *Postgres) LatestProfile(ctx context.Context, userID string) (model.UserProfile, error) {
	prof, err := scanProfile(p.pool.QueryRow(ctx,
		`SELECT`+profileColumns+` FROM user_profiles WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`,
		userID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.UserProfile{}, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return prof, err
}

func (p *Postgres) PutUser(ctx context.Context, u model.User) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO users (id, email, name, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, name = EXCLUDED.name`,
		u.ID, u.Email, u.Name,
	)
	return err
}

func (p *Postgres) GetUser(ctx context.Context, id string) (model.User, error) {
	u := model.User{ID: id}
	err := p.pool.QueryRow(ctx,
		`SELECT email, name, created_at FROM users WHERE id = $1`, id,
	).Scan(&u.Email, &u.Name, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}

// Close is a no-op: the pool is owned by the caller and shared with the
// session store.
func (p *Postgres) Close() error { return nil }
