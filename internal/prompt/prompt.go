// Package prompt generates the personalized coaching prompt for a profile
package prompt

import (
	"bytes"
	"context"
	"strings"
	"text/template"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/briangreenhill/coachprompt/internal/llm"
	"github.com/briangreenhill/coachprompt/internal/model"
)

const system = "You are an expert sports coach who writes clear, structured coaching prompts for athletes."

var instruction = template.Must(template.New("instruction").Funcs(template.FuncMap{"join": strings.Join}).Parse(`Create a personalized coaching prompt for an athlete.

Sport: {{.Sport}}
Level: {{.Level}}
Goals: {{if .Goals}}{{join .Goals ", "}}{{else}}general fitness{{end}}
Motivational style: {{.Style}}
Response length: {{.Length}}
Plan: {{.Plan.DurationWeeks}} weeks, {{if .Plan.TrainingHours}}{{.Plan.TrainingHours}} training hours per week{{else}}flexible weekly hours{{end}}, {{.Plan.RestDays}} rest days per week

The prompt should:
1. Describe the athlete's profile so an assistant can coach them
2. Lay out a week-by-week structure for the plan duration
3. Include sport-specific sessions appropriate for a {{.Level}} athlete
4. Match the {{.Style}} motivational style
5. Keep a {{.Length}} length

Return only the coaching prompt text.`))

// SportName turns a form value such as "trail_running" into "Trail Running".
func SportName(sport string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(sport, "_", " "))
}

// Generator builds coaching prompts with the generative backend.
type Generator struct {
	llm       llm.Provider
	maxTokens int
	log       zerolog.Logger
}

// NewGenerator creates a new prompt generator. p may be nil, in which case
// every call returns Fallback.
func NewGenerator(p llm.Provider, maxTokens int, log zerolog.Logger) *Generator {
	return &Generator{
		llm:       p,
		maxTokens: maxTokens,
		log:       log.With().Str("component", "prompt").Logger(),
	}
}

// Instruction renders the request sent to the backend for p.
func Instruction(p model.UserProfile) (string, error) {
	style := p.Preferences.MotivationalStyle
	if style == "" {
		style = model.DefaultMotivationalStyle
	}
	length := p.Preferences.Length
	if length == "" {
		length = model.DefaultLength
	}

	var buf bytes.Buffer
	err := instruction.Execute(&buf, struct {
		Sport  string
		Level  string
		Goals  []string
		Style  string
		Length string
		Plan   model.Plan
	}{
		Sport:  SportName(p.Sport),
		Level:  p.Level,
		Goals:  p.Goals,
		Style:  style,
		Length: length,
		Plan:   p.Plan,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Generate returns the backend's completion for p, or Fallback when the
// backend is missing, fails, or answers with nothing. It never errors.
func (g *Generator) Generate(ctx context.Context, p model.UserProfile) string {
	if g == nil || g.llm == nil {
		return Fallback
	}

	text, err := Instruction(p)
	if err != nil {
		g.log.Error().Err(err).Msg("render instruction failed")
		return Fallback
	}

	resp, err := g.llm.Generate(ctx, llm.Request{
		System:    system,
		Prompt:    text,
		MaxTokens: g.maxTokens,
	})
	if err != nil {
		g.log.Warn().Err(err).Str("sport", p.Sport).Msg("using fallback prompt")
		return Fallback
	}

	out := strings.TrimSpace(resp.Text)
	if out == "" {
		return Fallback
	}
	return out
}
