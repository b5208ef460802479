package routes

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/briangreenhill/coachprompt/internal/auth"
	appmw "github.com/briangreenhill/coachprompt/internal/http/middleware"
)

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if appmw.UserFrom(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "login", page{Title: "Log in"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if appmw.UserFrom(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	email := r.Form.Get("email")
	remember := r.Form.Get("remember") != ""

	_, err := s.Auth.Login(r.Context(), email, r.Form.Get("password"), remember)
	if err != nil {
		data := page{Title: "Log in", Email: email}
		if msg, ok := validationMessage(err); ok {
			data.Error = msg
			s.render(w, r, http.StatusBadRequest, "login", data)
			return
		}
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			hlog.FromRequest(r).Error().Err(err).Msg("login failed")
		}
		data.Error = "Invalid email or password"
		s.render(w, r, http.StatusUnauthorized, "login", data)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSignupForm(w http.ResponseWriter, r *http.Request) {
	if appmw.UserFrom(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "signup", page{Title: "Sign up"})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if appmw.UserFrom(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	email, name := r.Form.Get("email"), r.Form.Get("name")
	data := page{Title: "Sign up", Email: email, Name: name}

	_, err := s.Auth.Signup(r.Context(), email, name, r.Form.Get("password"))
	switch {
	case err == nil:
		s.flash(r, FlashSuccess, "Account created successfully!")
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case errors.Is(err, auth.ErrDuplicateEmail):
		data.Error = "Email already in use"
		s.render(w, r, http.StatusConflict, "signup", data)
	default:
		if msg, ok := validationMessage(err); ok {
			data.Error = msg
			s.render(w, r, http.StatusBadRequest, "signup", data)
			return
		}
		hlog.FromRequest(r).Error().Err(err).Msg("signup failed")
		data.Error = "Error creating account. Please try again."
		s.render(w, r, http.StatusInternalServerError, "signup", data)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.Auth.Logout(r.Context()); err != nil && !errors.Is(err, auth.ErrUnauthenticated) {
		hlog.FromRequest(r).Error().Err(err).Msg("logout failed")
	}
	http.Redirect(w, r, appmw.LoginPath, http.StatusSeeOther)
}
