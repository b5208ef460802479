package middleware

import (
	"context"
	"net/http"

	"github.com/briangreenhill/coachprompt/internal/model"
)

type contextKey string

const UserKey contextKey = "user"

// LoginPath is where unauthenticated requests are sent.
const LoginPath = "/auth/login"

// WithUser returns a copy of ctx carrying the session principal.
func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, UserKey, u)
}

// UserFrom returns the principal stored by WithUser, or nil.
func UserFrom(ctx context.Context) *model.User {
	u, _ := ctx.Value(UserKey).(*model.User)
	if u == nil || u.ID == "" {
		return nil
	}
	return u
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFrom(r.Context()) == nil {
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
