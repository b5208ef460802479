// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	scs "github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/pgxstore"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/briangreenhill/coachprompt/internal/auth"
	"github.com/briangreenhill/coachprompt/internal/chat"
	"github.com/briangreenhill/coachprompt/internal/config"
	"github.com/briangreenhill/coachprompt/internal/http/routes"
	"github.com/briangreenhill/coachprompt/internal/llm"
	"github.com/briangreenhill/coachprompt/internal/profiles"
	"github.com/briangreenhill/coachprompt/internal/prompt"
	"github.com/briangreenhill/coachprompt/internal/store"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "coachprompt",
	Short: "Personalized coaching prompts and a sports coach chat",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the Postgres tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		return migrate(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	logger := newLogger(cfg.Debug)
	if err := cfg.Validate(); err != nil {
		return nil, logger, err
	}
	return cfg, logger, nil
}

func newLogger(debug bool) zerolog.Logger {
	if debug {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}).
			Level(zerolog.DebugLevel).
			With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).Level(zerolog.InfoLevel).With().Timestamp().Logger()
}

func migrate(ctx context.Context) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errors.New("migrate requires DATABASE_URL")
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	defer pool.Close()

	if err := store.NewPostgres(pool).EnsureSchema(ctx); err != nil {
		return err
	}
	logger.Info().Msg("schema applied")
	return nil
}

func serve(ctx context.Context) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return err
	}
	logger.Info().Str("port", cfg.Port).Str("store", cfg.StoreBackend).Str("identity", cfg.IdentityProvider).Msg("starting app")

	// Firebase
	var app *firebase.App
	if cfg.NeedsFirebase() {
		app, err = store.NewFirebaseApp(ctx, cfg.Firebase)
		if err != nil {
			logger.Warn().Err(err).Msg("firebase unavailable")
		}
	}

	// DB
	var pool *pgxpool.Pool
	if cfg.StoreBackend == config.StorePostgres {
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Warn().Err(err).Msg("postgres pool unavailable")
		} else {
			defer pool.Close()
		}
	}

	docs := store.Open(ctx, cfg.StoreBackend, store.Deps{Firebase: app, Pool: pool}, logger)
	defer func() {
		if err := docs.Close(); err != nil {
			logger.Warn().Err(err).Msg("close store")
		}
	}()

	// Sessions
	var backing scs.Store = memstore.New()
	if pool != nil && docs.Connected() {
		pg := pgxstore.NewWithCleanupInterval(pool, 5*time.Minute)
		defer pg.StopCleanup()
		backing = pg
	}
	sess := auth.NewSessions(auth.SessionOptions{
		Store:    auth.NewSignedStore(backing, []byte(cfg.SessionSecret), logger),
		Lifetime: cfg.SessionLifetime,
		Secure:   !cfg.Debug,
	})

	idp, err := identityProvider(ctx, cfg, app)
	if err != nil {
		logger.Error().Err(err).Msg("identity provider unavailable")
		return err
	}

	// Generative backend
	registry := llm.Setup(ctx, cfg.LLM, logger)
	var provider llm.Provider
	if p, err := registry.Select(cfg.LLM.Provider); err != nil {
		logger.Warn().Err(err).Strs("available", registry.List()).Msg("generative backend disabled, using fallback text")
	} else {
		provider = llm.WithLogging(p, logger)
	}

	repo := profiles.New(docs, logger)
	tmpl, err := routes.Templates()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	s := routes.New(routes.ServerOptions{
		Sess:     sess,
		Tmpl:     tmpl,
		Auth:     auth.NewManager(sess, idp, docs, logger),
		Profiles: repo,
		Prompts:  prompt.NewGenerator(provider, cfg.LLM.MaxTokens, logger),
		Chat:     chat.NewResponder(provider, repo, cfg.LLM.MaxTokens, logger),
		Log:      logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server stopped")
			return err
		}
		return nil
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func identityProvider(ctx context.Context, cfg *config.Config, app *firebase.App) (auth.IdentityProvider, error) {
	switch cfg.IdentityProvider {
	case config.IdentityLocal:
		return auth.NewLocalProvider(bcrypt.DefaultCost), nil
	default:
		if app == nil {
			return nil, errors.New("IDENTITY_PROVIDER=firebase needs firebase credentials")
		}
		p, err := auth.NewFirebaseProvider(ctx, app, cfg.Firebase.APIKey)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}
