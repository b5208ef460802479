// Package chat answers free-text sports questions with the generative
// backend, personalized from the user's latest profile.
package chat

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/coachprompt/internal/llm"
	"github.com/briangreenhill/coachprompt/internal/model"
)

// Defaults used when the user has no stored profile.
const (
	DefaultSport = "general"
	DefaultLevel = "intermediate"
)

// ProfileLookup finds the profile used to personalize answers.
type ProfileLookup interface {
	Latest(ctx context.Context, userID string) (*model.UserProfile, bool)
}

var instruction = template.Must(template.New("chat").Parse(`You are an expert sports coach assistant specializing in {{.Sport}} for {{.Level}} level athletes.
The user has asked: "{{.Question}}"

Provide a detailed, professional response that:
1. Directly answers the question with technical accuracy
2. Includes sport-specific advice when applicable
3. Provides actionable recommendations
4. Considers the athlete's level ({{.Level}})
5. Is clear and concise (under 300 words)

If the question is not sports-related, politely redirect to sports topics.`))

// Fallback is the deterministic answer used when the backend is
// unavailable. It always contains the question.
func Fallback(question string) string {
	return fmt.Sprintf("I'm sorry, I can't generate a response right now. Please try again later. (You asked: %s)", question)
}

// Responder answers chat questions.
type Responder struct {
	llm       llm.Provider
	profiles  ProfileLookup
	maxTokens int
	log       zerolog.Logger
}

// NewResponder builds a Responder. p and profiles may be nil.
func NewResponder(p llm.Provider, profiles ProfileLookup, maxTokens int, log zerolog.Logger) *Responder {
	return &Responder{
		llm:       p,
		profiles:  profiles,
		maxTokens: maxTokens,
		log:       log.With().Str("component", "chat").Logger(),
	}
}

// Personalize returns the sport and level to answer for.
func (r *Responder) Personalize(ctx context.Context, userID string) (sport, level string) {
	sport, level = DefaultSport, DefaultLevel
	if r.profiles == nil || userID == "" {
		return sport, level
	}
	p, ok := r.profiles.Latest(ctx, userID)
	if !ok || p == nil {
		return sport, level
	}
	if p.Sport != "" {
		sport = p.Sport
	}
	if p.Level != "" {
		level = p.Level
	}
	return sport, level
}

// Respond answers question for userID. A blank question is a
// *model.ValidationError; every backend problem yields Fallback instead.
func (r *Responder) Respond(ctx context.Context, question, userID string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", &model.ValidationError{Field: "question", Message: "No question provided"}
	}
	if r.llm == nil {
		return Fallback(question), nil
	}

	sport, level := r.Personalize(ctx, userID)

	var buf strings.Builder
	if err := instruction.Execute(&buf, map[string]string{
		"Sport":    sport,
		"Level":    level,
		"Question": question,
	}); err != nil {
		r.log.Error().Err(err).Msg("render chat instruction failed")
		return Fallback(question), nil
	}

	resp, err := r.llm.Generate(ctx, llm.Request{Prompt: buf.String(), MaxTokens: r.maxTokens})
	if err != nil {
		r.log.Warn().Err(err).Str("user_id", userID).Msg("chat generation failed")
		return Fallback(question), nil
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return Fallback(question), nil
	}
	return text, nil
}
