package routes

import (
	"net/http"

	"github.com/rs/zerolog/hlog"

	appmw "github.com/briangreenhill/coachprompt/internal/http/middleware"
)

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "chat", page{Title: "Coach chat"})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad form"})
		return
	}
	user := appmw.UserFrom(r.Context())

	answer, err := s.Chat.Respond(r.Context(), r.Form.Get("question"), user.ID)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
			return
		}
		hlog.FromRequest(r).Error().Err(err).Msg("chat failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "The coach is unavailable right now"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"response": answer})
}
