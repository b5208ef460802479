package routes

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/hlog"

	appmw "github.com/briangreenhill/coachprompt/internal/http/middleware"
	"github.com/briangreenhill/coachprompt/internal/model"
	"github.com/briangreenhill/coachprompt/internal/prompt"
	"github.com/briangreenhill/coachprompt/internal/store"
)

var (
	sportOptions = []string{"running", "trail_running", "cycling", "swimming", "triathlon", "rowing", "weightlifting", "soccer", "basketball", "tennis"}
	levelOptions = []string{"beginner", "intermediate", "advanced", "elite"}
	goalOptions  = []string{"endurance", "speed", "strength", "weight_loss", "race_preparation", "injury_prevention", "technique"}
	styleOptions = []string{"encouraging", "tough_love", "analytical", "friendly"}
	lengthOption = []string{"short", "medium", "detailed"}
)

var errPlanField = &model.ValidationError{Field: "plan", Message: "Plan fields must be whole numbers of zero or more"}

func formPage(form model.UserProfile) page {
	return page{
		Title:       "New plan",
		Form:        form,
		Sports:      sportOptions,
		Levels:      levelOptions,
		GoalOptions: goalOptions,
		Styles:      styleOptions,
		Lengths:     lengthOption,
	}
}

func defaultForm() model.UserProfile {
	return model.UserProfile{
		Preferences: model.Preferences{
			MotivationalStyle: model.DefaultMotivationalStyle,
			Length:            model.DefaultLength,
		},
		Plan: model.DefaultPlan(),
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "index", formPage(defaultForm()))
}

// intField parses a non-negative integer form value; blank means def.
func intField(r *http.Request, key string, def int) (int, error) {
	v := strings.TrimSpace(r.Form.Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errPlanField
	}
	return n, nil
}

// profileFromForm reads the submitted form. The returned profile is
// usable for re-rendering even when err is set.
func profileFromForm(r *http.Request, userID string) (model.UserProfile, error) {
	p := defaultForm()
	p.Sport = strings.TrimSpace(r.Form.Get("sport"))
	p.Level = strings.TrimSpace(r.Form.Get("level"))
	p.UserID = userID
	p.CreatedAt = time.Now().UTC()
	p.Goals = []string{}
	for _, g := range r.Form["goals"] {
		if g = strings.TrimSpace(g); g != "" {
			p.Goals = append(p.Goals, g)
		}
	}
	if v := r.Form.Get("motivational_style"); v != "" {
		p.Preferences.MotivationalStyle = v
	}
	if v := r.Form.Get("length"); v != "" {
		p.Preferences.Length = v
	}

	if p.Sport == "" || p.Level == "" {
		return p, &model.ValidationError{Message: "Please fill all required fields"}
	}

	var err error
	if p.Plan.DurationWeeks, err = intField(r, "plan_duration", model.DefaultPlanDuration); err != nil {
		return p, err
	}
	if p.Plan.TrainingHours, err = intField(r, "training_hours", model.DefaultTrainingHours); err != nil {
		return p, err
	}
	if p.Plan.RestDays, err = intField(r, "rest_days", model.DefaultRestDays); err != nil {
		return p, err
	}
	return p, nil
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	user := appmw.UserFrom(r.Context())

	p, err := profileFromForm(r, user.ID)
	if err != nil {
		data := formPage(p)
		data.Error, _ = validationMessage(err)
		s.render(w, r, http.StatusBadRequest, "index", data)
		return
	}

	res := s.Profiles.Save(r.Context(), p)
	if !res.Persisted() {
		hlog.FromRequest(r).Warn().Err(res.Err).Str("user_id", user.ID).Msg("profile not persisted")
		s.flash(r, FlashWarning, "Note: Coaching not being saved to database")
	}

	s.render(w, r, http.StatusOK, "results", page{
		Title:     "Your prompt",
		SportName: prompt.SportName(p.Sport),
		Level:     p.Level,
		Goals:     p.Goals,
		Plan:      p.Plan,
		Prompt:    s.Prompts.Generate(r.Context(), p),
		ProfileID: res.ID,
	})
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	user := appmw.UserFrom(r.Context())
	id := strings.TrimSpace(r.Form.Get("profile_id"))
	value := strings.TrimSpace(r.Form.Get("feedback"))

	switch {
	case id == "" || value == "":
		s.flash(r, FlashError, "Please choose a feedback option")
	case id == model.LocalID:
		s.flash(r, FlashInfo, "Feedback recorded locally")
	case s.Profiles.RecordFeedbackFor(r.Context(), user.ID, id, value):
		s.flash(r, FlashSuccess, "Thank you for your feedback!")
	default:
		s.flash(r, FlashWarning, "Feedback could not be saved")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user := appmw.UserFrom(r.Context())

	res := s.Profiles.List(r.Context(), user.ID)
	if res.Err != nil {
		if !errors.Is(res.Err, store.ErrUnavailable) {
			hlog.FromRequest(r).Error().Err(res.Err).Msg("list profiles failed")
		}
		s.flash(r, FlashWarning, "Could not load your previous plans")
	}
	s.render(w, r, http.StatusOK, "dashboard", page{Title: "Dashboard", Plans: res.Profiles})
}
