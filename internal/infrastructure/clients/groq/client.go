package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopsense/backend/internal/domain/providers"
	"github.com/shopsense/backend/pkg/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const defaultBaseURL = "https://api.groq.com/openai/v1"

// Client implements providers.LLMProvider against the Groq chat-completions
// API (OpenAI-compatible wire format).
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	limiter    *tokenBucket
}

// NewClient creates a new Groq client.
func NewClient(cfg *config.LLMConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("groq api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "llama3-8b-8192"
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	limiter := newTokenBucket(cfg.RateLimitRPM, cfg.RateLimitBurst)

	return &Client{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		limiter: limiter,
	}, nil
}

type completionRequest struct {
	Model       string                  `json:"model"`
	Messages    []providers.ChatMessage `json:"messages"`
	Temperature float64                 `json:"temperature"`
	MaxTokens   int                     `json:"max_tokens"`
}

type completionChoice struct {
	Message providers.ChatMessage `json:"message"`
}

type completionEnvelope struct {
	Choices []completionChoice `json:"choices"`
}

// Complete sends a role-tagged message sequence and returns the completion
// text of the first choice.
func (c *Client) Complete(ctx context.Context, messages []providers.ChatMessage, opts providers.CompletionOptions) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("at least one message is required")
	}

	if c.limiter != nil {
		waitStart := time.Now()
		if err := c.limiter.Wait(ctx); err != nil {
			recordCompletionMetric(ctx, c.model, 0, 0, err)
			return "", err
		}
		recordRateLimitWait(ctx, c.model, time.Since(waitStart))
	}

	payload := completionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordCompletionMetric(ctx, c.model, 0, time.Since(start), err)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		recordCompletionMetric(ctx, c.model, resp.StatusCode, time.Since(start), fmt.Errorf("status %d", resp.StatusCode))
		return "", fmt.Errorf("groq request failed with status %d", resp.StatusCode)
	}

	var envelope completionEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		recordCompletionMetric(ctx, c.model, resp.StatusCode, time.Since(start), err)
		return "", err
	}

	if len(envelope.Choices) == 0 || envelope.Choices[0].Message.Content == "" {
		recordCompletionMetric(ctx, c.model, resp.StatusCode, time.Since(start), errors.New("missing completion text"))
		return "", errors.New("groq response missing completion text")
	}

	recordCompletionMetric(ctx, c.model, resp.StatusCode, time.Since(start), nil)
	return envelope.Choices[0].Message.Content, nil
}

func newTokenBucket(rpm int, burst int) *tokenBucket {
	if rpm == 0 {
		rpm = 60
	}
	if rpm < 0 {
		return nil
	}
	if burst <= 0 {
		burst = 5
	}
	return newTokenBucketWithRate(rpm, burst)
}

type tokenBucket struct {
	tokens chan struct{}
}

func newTokenBucketWithRate(rpm int, burst int) *tokenBucket {
	bucket := &tokenBucket{
		tokens: make(chan struct{}, burst),
	}

	for i := 0; i < burst; i++ {
		bucket.tokens <- struct{}{}
	}

	interval := time.Minute / time.Duration(rpm)
	if interval <= 0 {
		interval = time.Millisecond
	}

	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			select {
			case bucket.tokens <- struct{}{}:
			default:
			}
		}
	}()

	return bucket
}

func (b *tokenBucket) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.tokens:
		return nil
	}
}

type completionMetrics struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
	rateLimitWait   metric.Float64Histogram
}

var groqMetricsInit = false
var groqMetrics completionMetrics

func ensureGroqMetrics() {
	if groqMetricsInit {
		return
	}
	meter := otel.Meter("github.com/shopsense/backend/groq")

	requestCount, err := meter.Int64Counter(
		"ai.groq.request.count",
		metric.WithDescription("Number of Groq completion requests"),
	)
	if err != nil {
		return
	}
	requestDuration, err := meter.Float64Histogram(
		"ai.groq.request.duration",
		metric.WithDescription("Groq request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}
	requestErrors, err := meter.Int64Counter(
		"ai.groq.request.errors",
		metric.WithDescription("Number of Groq request errors"),
	)
	if err != nil {
		return
	}
	rateLimitWait, err := meter.Float64Histogram(
		"ai.groq.rate_limit.wait",
		metric.WithDescription("Time spent waiting for the Groq rate limiter in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}

	groqMetrics = completionMetrics{
		requestCount:    requestCount,
		requestDuration: requestDuration,
		requestErrors:   requestErrors,
		rateLimitWait:   rateLimitWait,
	}
	groqMetricsInit = true
}

func recordCompletionMetric(ctx context.Context, model string, statusCode int, duration time.Duration, err error) {
	ensureGroqMetrics()
	if !groqMetricsInit {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "groq"),
		attribute.String("ai.model", model),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	groqMetrics.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	groqMetrics.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		groqMetrics.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

func recordRateLimitWait(ctx context.Context, model string, wait time.Duration) {
	ensureGroqMetrics()
	if !groqMetricsInit {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "groq"),
		attribute.String("ai.model", model),
	}
	groqMetrics.rateLimitWait.Record(ctx, float64(wait.Milliseconds()), metric.WithAttributes(attrs...))
}
