package routes

import (
	"bytes"
	"context"
	"encoding/gob"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"slices"
	"strings"
	"time"

	scs "github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/briangreenhill/coachprompt/internal/auth"
	appmw "github.com/briangreenhill/coachprompt/internal/http/middleware"
	"github.com/briangreenhill/coachprompt/internal/model"
	"github.com/briangreenhill/coachprompt/internal/profiles"
	"github.com/briangreenhill/coachprompt/internal/prompt"
	"github.com/briangreenhill/coachprompt/web"
)

// Responder answers chat questions. A *model.ValidationError is reported to
// the client; any other error is logged and hidden.
type Responder interface {
	Respond(ctx context.Context, question, userID string) (string, error)
}

type Server struct {
	Router   *chi.Mux
	Sess     *scs.SessionManager
	Tmpl     *template.Template
	Auth     *auth.Manager
	Profiles *profiles.Repository
	Prompts  *prompt.Generator
	Chat     Responder
	Log      zerolog.Logger
}

type ServerOptions struct {
	Sess     *scs.SessionManager
	Tmpl     *template.Template
	Auth     *auth.Manager
	Profiles *profiles.Repository
	Prompts  *prompt.Generator
	Chat     Responder
	Log      zerolog.Logger
}

// Templates parses the embedded page templates with the helpers they use.
func Templates() (*template.Template, error) {
	return web.Templates(template.FuncMap{
		"sportName": prompt.SportName,
		"join":      strings.Join,
		"has":       slices.Contains[[]string, string],
		"date":      func(t time.Time) string { return t.Format("Jan 2, 2006") },
	})
}

func New(opts ServerOptions) *Server {
	r := chi.NewRouter()
	s := &Server{
		Router:   r,
		Sess:     opts.Sess,
		Tmpl:     opts.Tmpl,
		Auth:     opts.Auth,
		Profiles: opts.Profiles,
		Prompts:  opts.Prompts,
		Chat:     opts.Chat,
		Log:      opts.Log,
	}

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(hlog.NewHandler(opts.Log))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", chimw.GetReqID(r.Context())).
			Int("status", status).
			Int("size", size).
			Dur("duration", d).
			Msg("request")
	}))
	r.Use(chimw.Recoverer)
	r.Use(s.sessionToContext)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("write health check response")
		}
	})
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(web.Static()))))

	r.Route("/auth", func(ar chi.Router) {
		ar.Get("/login", s.handleLoginForm)
		ar.Post("/login", s.handleLogin)
		ar.Get("/signup", s.handleSignupForm)
		ar.Post("/signup", s.handleSignup)
		ar.With(appmw.RequireAuth).Get("/logout", s.handleLogout)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(appmw.RequireAuth)
		pr.Get("/", s.handleIndex)
		pr.Post("/", s.handleCreateProfile)
		pr.Post("/feedback", s.handleFeedback)
		pr.Get("/dashboard", s.handleDashboard)
		pr.Get("/chat", http.RedirectHandler("/chat/", http.StatusMovedPermanently).ServeHTTP)
		pr.Get("/chat/", s.handleChat)
		pr.Post("/chat/ask", s.handleAsk)
	})

	return s
}

// Handler is the router wrapped in session load/save.
func (s *Server) Handler() http.Handler {
	return s.Sess.LoadAndSave(s.Router)
}

func (s *Server) sessionToContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u := s.Auth.Current(r.Context()); u != nil {
			r = r.WithContext(appmw.WithUser(r.Context(), u))
		}
		next.ServeHTTP(w, r)
	})
}

// page is the data every template receives. Handlers fill what they need.
type page struct {
	Title   string
	User    *model.User
	Flashes []Flash
	Error   string

	// auth forms
	Email string
	Name  string

	// profile form
	Form        model.UserProfile
	Sports      []string
	Levels      []string
	GoalOptions []string
	Styles      []string
	Lengths     []string

	// results
	SportName string
	Level     string
	Goals     []string
	Plan      model.Plan
	Prompt    string
	ProfileID string

	// dashboard
	Plans []model.UserProfile
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data page) {
	data.User = appmw.UserFrom(r.Context())
	data.Flashes = s.popFlashes(r)

	var buf bytes.Buffer
	if err := s.Tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("template", name).Msg("render template failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		hlog.FromRequest(r).Debug().Err(err).Msg("write response")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func validationMessage(err error) (string, bool) {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return verr.Message, true
	}
	return "", false
}

func init() {
	gob.Register([]Flash{})
}
