// Package insight turns descriptive statistics into a short model-written
// analysis. Failures come back as user-facing text, never as errors.
package insight

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/KaramelBytes/salesdash/internal/ai"
	"github.com/KaramelBytes/salesdash/internal/cache"
	"github.com/KaramelBytes/salesdash/internal/metrics"
)

// Defaults for the request.
const (
	DefaultModel       = "gpt-oss-120b"
	DefaultTemperature = 0.1
)

// Summarizer calls a language model runtime once per distinct
// (statistics, instruction) pair and remembers the reply.
type Summarizer struct {
	Runtime     ai.Runtime // nil means the client could not be configured
	Model       string
	Temperature float64
	MaxTokens   int
	Log         zerolog.Logger
	Metrics     *metrics.Recorder

	memo *cache.Memo[string]
}

// New returns a Summarizer over rt. A nil rt yields the configuration
// diagnostic for every call.
func New(rt ai.Runtime, model string, maxEntries int) *Summarizer {
	if model == "" {
		model = DefaultModel
	}
	return &Summarizer{
		Runtime:     rt,
		Model:       model,
		Temperature: DefaultTemperature,
		Log:         zerolog.Nop(),
		memo:        cache.New[string](maxEntries),
	}
}

// Configured reports whether a runtime is attached.
func (s *Summarizer) Configured() bool { return s != nil && s.Runtime != nil }

// CacheStats reports memo usage.
func (s *Summarizer) CacheStats() cache.Stats { return s.memo.Stats() }

// Summarize returns the model's analysis of statsText, or a diagnostic string.
// Concurrent callers for the same input share one request, which runs
// detached from any single caller's cancellation.
func (s *Summarizer) Summarize(ctx context.Context, statsText, instruction string) string {
	if err := ctx.Err(); err != nil {
		// The caller is already gone; nothing is remembered.
		return s.diagnose(err, 0)
	}
	key := cache.KeyOf(statsText, instruction)
	computed := false
	out, _ := s.memo.Do(key, func() (string, error) {
		computed = true
		return s.generate(context.WithoutCancel(ctx), statsText, instruction), nil
	})
	if !computed {
		s.Metrics.Insight("cached", 0)
	}
	return out
}

func (s *Summarizer) generate(ctx context.Context, statsText, instruction string) string {
	if s.Runtime == nil {
		s.Log.Warn().Msg("insight runtime not configured")
		s.Metrics.Insight("config_error", 0)
		return ConfigErrorMessage
	}
	start := time.Now()
	resp, err := s.Runtime.Generate(ctx, ai.GenerateRequest{
		Model:       s.Model,
		Messages:    Messages(statsText, instruction),
		MaxTokens:   s.MaxTokens,
		Temperature: s.Temperature,
	})
	elapsed := time.Since(start)
	if err != nil {
		return s.diagnose(err, elapsed)
	}
	s.Log.Info().
		Str("model", s.Model).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Dur("elapsed", elapsed).
		Msg("insight generated")
	s.Metrics.Insight("ok", elapsed)
	return resp.Text()
}

func (s *Summarizer) diagnose(err error, elapsed time.Duration) string {
	if errors.Is(err, ai.ErrMissingAPIKey) {
		s.Log.Warn().Err(err).Msg("insight runtime not configured")
		s.Metrics.Insight("config_error", elapsed)
		return ConfigErrorMessage
	}
	if apiErr, ok := ai.AsAPIError(err); ok {
		s.Log.Warn().Err(err).Str("model", s.Model).Int("status", apiErr.StatusCode).Msg("insight request failed")
		s.Metrics.Insight("api_error", elapsed)
		return fmt.Sprintf(apiErrorFormat, s.Model, apiErr.StatusCode, apiErr.Message)
	}
	s.Log.Warn().Err(err).Str("model", s.Model).Msg("insight request failed")
	s.Metrics.Insight("unexpected", elapsed)
	return fmt.Sprintf(unexpectedErrorFormat, err)
}
