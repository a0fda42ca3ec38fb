package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/symptodex/internal/domain"
	"github.com/kailas-cloud/symptodex/internal/metrics"
)

// MaxPhrases caps how many phrases one extraction may return.
const MaxPhrases = 30

const systemPrompt = `You extract medical symptoms from a patient's free-text description.
Reply with a JSON object {"symptoms": [...]} listing short, lowercase symptom phrases
in plain English (for example "high fever", "burning urination", "chest pain").
Only include symptoms the patient reports having. Omit negated symptoms, durations,
severities and anything that is not a symptom. Reply {"symptoms": []} if there are none.`

// Extractor turns free text into symptom phrases via an OpenAI-compatible chat model.
type Extractor struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[[]string]
	logger  *zap.Logger
}

// Config holds the extractor settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	// Breaker opens after FailureThreshold consecutive failures and probes again after OpenTimeout.
	FailureThreshold uint32
	OpenTimeout      time.Duration
	Logger           *zap.Logger
}

// NewExtractor creates an OpenAI-compatible symptom extractor guarded by a circuit breaker.
func NewExtractor(cfg *Config) *Extractor {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	e := &Extractor{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger,
	}
	e.breaker = gobreaker.NewCircuitBreaker[[]string](gobreaker.Settings{
		Name:        "extractor",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			// caller cancellations say nothing about provider health
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.ExtractorBreakerState.WithLabelValues(name).Set(float64(to))
			logger.Warn("Extractor circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return e
}

// Extract returns the symptom phrases found in description.
// Provider failures and an open breaker wrap domain.ErrExtractionFailed.
func (e *Extractor) Extract(ctx context.Context, description string) ([]string, error) {
	phrases, err := e.breaker.Execute(func() ([]string, error) {
		return e.extract(ctx, description)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.ExtractorErrorsTotal.WithLabelValues(e.model, "breaker_open").Inc()
			return nil, fmt.Errorf("extractor unavailable (%v): %w", err, domain.ErrExtractionFailed)
		}
		return nil, err
	}
	return phrases, nil
}

func (e *Extractor) extract(ctx context.Context, description string) ([]string, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: description},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
	}

	start := time.Now()
	resp, err := e.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.ExtractorRequestsTotal.WithLabelValues(e.model, "error").Inc()
		metrics.ExtractorErrorsTotal.WithLabelValues(e.model, "api_error").Inc()
		if ctx.Err() != nil {
			return nil, fmt.Errorf("extraction: %w: %w", ctx.Err(), domain.ErrExtractionFailed)
		}
		return nil, parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		metrics.ExtractorRequestsTotal.WithLabelValues(e.model, "error").Inc()
		metrics.ExtractorErrorsTotal.WithLabelValues(e.model, "empty_response").Inc()
		return nil, fmt.Errorf("empty extraction response: %w", domain.ErrExtractionFailed)
	}

	phrases, err := parsePhrases(resp.Choices[0].Message.Content)
	if err != nil {
		metrics.ExtractorRequestsTotal.WithLabelValues(e.model, "error").Inc()
		metrics.ExtractorErrorsTotal.WithLabelValues(e.model, "bad_payload").Inc()
		return nil, fmt.Errorf("%w: %w", err, domain.ErrExtractionFailed)
	}

	metrics.ExtractorRequestsTotal.WithLabelValues(e.model, "success").Inc()
	metrics.ExtractorRequestDuration.WithLabelValues(e.model).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.ExtractorTokensTotal.WithLabelValues(e.model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.ExtractorTokensTotal.WithLabelValues(e.model, "completion").Add(float64(resp.Usage.CompletionTokens))
	}

	e.logger.Debug("Symptoms extracted",
		zap.Int("phrases", len(phrases)),
		zap.Duration("duration", duration),
	)
	return phrases, nil
}

// parsePhrases decodes {"symptoms": [...]}, trimming blanks and capping the list.
func parsePhrases(content string) ([]string, error) {
	var payload struct {
		Symptoms []string `json:"symptoms"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("decode extraction payload: %v", err)
	}
	out := make([]string, 0, len(payload.Symptoms))
	for _, s := range payload.Symptoms {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
		if len(out) == MaxPhrases {
			break
		}
	}
	return out, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Extractor) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrExtractionFailed for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrExtractionFailed

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return fmt.Errorf("extraction API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("extraction API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("extraction request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
