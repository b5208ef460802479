package routes

import (
	"net/http"
)

const flashKey = "flashes"

// Flash kinds.
const (
	FlashError   = "error"
	FlashWarning = "warning"
	FlashSuccess = "success"
	FlashInfo    = "info"
)

// Flash is a one-shot notice shown on the next rendered page.
type Flash struct {
	Kind    string
	Message string
}

func (s *Server) flash(r *http.Request, kind, msg string) {
	flashes, _ := s.Sess.Get(r.Context(), flashKey).([]Flash)
	s.Sess.Put(r.Context(), flashKey, append(flashes, Flash{Kind: kind, Message: msg}))
}

func (s *Server) popFlashes(r *http.Request) []Flash {
	flashes, _ := s.Sess.Pop(r.Context(), flashKey).([]Flash)
	return flashes
}
