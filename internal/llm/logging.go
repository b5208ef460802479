package llm

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// LoggingProvider is a decorator that logs every request with latency and
// token usage. Prompts are only logged at debug level.
type LoggingProvider struct {
	inner Provider
	log   zerolog.Logger
}

// WithLogging wraps a Provider with request logging.
func WithLogging(p Provider, log zerolog.Logger) Provider {
	return &LoggingProvider{
		inner: p,
		log:   log.With().Str("component", "llm").Str("provider", p.Name()).Logger(),
	}
}

func (l *LoggingProvider) Name() string { return l.inner.Name() }

func (l *LoggingProvider) ModelID() string { return l.inner.ModelID() }

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	latency := time.Since(start)

	if err != nil {
		l.log.Warn().Err(err).
			Str("model", l.inner.ModelID()).
			Dur("latency", latency).
			Msg("generation failed")
		return nil, err
	}

	l.log.Info().
		Str("model", resp.Model).
		Dur("latency", latency).
		Int("input_tokens", resp.Usage.InputTokens).
		Int("output_tokens", resp.Usage.OutputTokens).
		Str("stop_reason", resp.StopReason).
		Msg("generation complete")
	l.log.Debug().Str("system", req.System).Str("prompt", req.Prompt).Msg("generation request")
	return resp, nil
}
