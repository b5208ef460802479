package store

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/briangreenhill/coachprompt/internal/config"
)

// Deps carries the already-built clients a backend may need. Either may be
// nil when the matching backend is not selected or failed to initialize.
type Deps struct {
	Firebase *firebase.App
	Pool     *pgxpool.Pool
}

// Open builds the process-wide Client for the named backend. It never
// fails: any initialization error yields a disconnected Client and a
// warning, and the application keeps serving with persistence disabled.
func Open(ctx context.Context, backend string, deps Deps, log zerolog.Logger) *Client {
	b, err := openBackend(ctx, backend, deps)
	if err != nil {
		log.Warn().Err(err).Str("backend", backend).Msg("document store unavailable, profiles will not be saved")
		return Disconnected(err)
	}
	log.Info().Str("backend", b.Name()).Msg("document store connected")
	return NewClient(b)
}

func openBackend(ctx context.Context, backend string, deps Deps) (Backend, error) {
	switch backend {
	case config.StoreNone:
		return nil, errors.New("store disabled by configuration")
	case config.StoreMemory:
		return NewMemory(), nil
	case config.StoreFirestore:
		if deps.Firebase == nil {
			return nil, errors.New("firebase app not initialized")
		}
		client, err := deps.Firebase.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("firestore client: %w", err)
		}
		return NewFirestore(client), nil
	case config.StorePostgres:
		if deps.Pool == nil {
			return nil, errors.New("postgres pool not initialized")
		}
		if err := deps.Pool.Ping(ctx); err != nil {
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		return NewPostgres(deps.Pool), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}
