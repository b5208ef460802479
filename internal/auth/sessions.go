package auth

import (
	"net/http"
	"time"

	scs "github.com/alexedwards/scs/v2"
)

// SessionOptions configures NewSessions.
type SessionOptions struct {
	Store    scs.Store
	Lifetime time.Duration
	Secure   bool
}

// NewSessions builds the session manager. Cookies are browser-lifetime by
// default; Manager.Login opts into a persistent cookie with RememberMe.
func NewSessions(opts SessionOptions) *scs.SessionManager {
	sess := scs.New()
	if opts.Store != nil {
		sess.Store = opts.Store
	}
	if opts.Lifetime > 0 {
		sess.Lifetime = opts.Lifetime
	}
	sess.Cookie.Name = "coachprompt_session"
	sess.Cookie.HttpOnly = true
	sess.Cookie.SameSite = http.SameSiteLaxMode
	sess.Cookie.Secure = opts.Secure
	sess.Cookie.Persist = false
	return sess
}
