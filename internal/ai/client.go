// Package ai implements the transport to the model provider: one POST per
// call against a fixed endpoint, with latency measurement, token/cost
// accounting, and tolerant decoding of the JSON-ish answers.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"quest-forge/internal/model"
)

// Fixed output ceilings per call kind. Coherence checks are short analytical
// answers and always run on the cheaper model variant at low temperature.
const (
	generationMaxTokens = 1500
	coherenceMaxTokens  = 500

	coherenceTemperature = 0.2

	kindGeneration = "generation"
	kindCoherence  = "coherence"
)

// Config holds the transport settings.
type Config struct {
	// Endpoint is the provider URL accepting the messages payload.
	Endpoint string
	// APIKey, when set, is sent as the x-api-key header.
	APIKey string
	// Timeout bounds a single request; exceeding it is a transport failure.
	Timeout time.Duration
}

// Client issues requests against the provider endpoint. Safe for concurrent
// use.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	log        *zap.Logger

	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
}

// NewClient creates a provider client. The timeout defaults to 60s.
func NewClient(cfg Config, log *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		log:        log,
	}
}

// providerRequest is the payload the endpoint accepts.
type providerRequest struct {
	Model       string            `json:"model"`
	MaxTokens   int               `json:"max_tokens"`
	Temperature float64           `json:"temperature"`
	System      string            `json:"system"`
	Messages    []providerMessage `json:"messages"`
}

type providerMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// providerResponse is the payload the endpoint returns. Error may be a plain
// string or a structured object depending on the backend; it is kept raw and
// stringified on demand.
type providerResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Usage *struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error json.RawMessage `json:"error"`
}

func (r *providerResponse) errorText() string {
	if len(r.Error) == 0 || string(r.Error) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(r.Error, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(r.Error, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	return string(r.Error)
}

// GenerateRequest carries one generation call.
type GenerateRequest struct {
	Model        string
	Temperature  float64
	SystemPrompt string
	UserMessage  string
}

// GenerateResult is the outcome of a generation call that reached the
// provider. Exactly one of Quest and ParseError is set; Meta is always
// populated.
type GenerateResult struct {
	Quest      *model.Quest
	ParseError string
	RawContent string
	Meta       model.CallMeta
}

// GenerateQuest sends one generation request. A transport failure or an
// explicit provider error is returned as an error; an unparseable payload is
// reported through ParseError instead, because the request itself succeeded.
// Not retried.
func (c *Client) GenerateQuest(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	raw, meta, err := c.complete(ctx, kindGeneration, providerRequest{
		Model:       req.Model,
		MaxTokens:   generationMaxTokens,
		Temperature: req.Temperature,
		System:      req.SystemPrompt,
		Messages:    []providerMessage{{Role: "user", Content: req.UserMessage}},
	})
	if err != nil {
		return nil, err
	}

	result := &GenerateResult{RawContent: raw, Meta: meta}
	quest, parseErr := ParseQuest(raw)
	if parseErr != nil {
		c.log.Warn("Model returned unparseable quest payload",
			zap.String("model", meta.Model),
			zap.Error(parseErr),
		)
		result.ParseError = parseErr.Error()
		return result, nil
	}
	result.Quest = quest
	return result, nil
}

// CheckCoherence sends one verification request. The model variant and
// temperature are forced: the check is an analytical task where variance is
// undesirable. A transport failure is returned as an error for the caller to
// degrade; an unparseable verdict is already degraded here, keeping the call
// metadata.
func (c *Client) CheckCoherence(ctx context.Context, systemPrompt, userMessage string) (*model.CoherenceReport, error) {
	raw, meta, err := c.complete(ctx, kindCoherence, providerRequest{
		Model:       model.ModelHaiku,
		MaxTokens:   coherenceMaxTokens,
		Temperature: coherenceTemperature,
		System:      systemPrompt,
		Messages:    []providerMessage{{Role: "user", Content: userMessage}},
	})
	if err != nil {
		return nil, err
	}

	verdict, parseErr := ParseCoherence(raw)
	if parseErr != nil {
		c.log.Warn("Coherence check returned unparseable verdict", zap.Error(parseErr))
		return model.DegradedCoherenceReport("Le vérificateur n'a pas retourné un JSON valide", &meta), nil
	}
	return &model.CoherenceReport{
		Score:     verdict.Score,
		Verdict:   verdict.Verdict,
		Issues:    verdict.Issues,
		Strengths: verdict.Strengths,
		Meta:      &meta,
	}, nil
}

// complete performs one request/response round trip and fills in the call
// metadata.
func (c *Client) complete(ctx context.Context, kind string, payload providerRequest) (string, model.CallMeta, error) {
	meta := model.CallMeta{Model: payload.Model}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", meta, fmt.Errorf("failed to encode provider request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", meta, fmt.Errorf("failed to build provider request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("x-api-key", c.apiKey)
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	latency := time.Since(start)
	meta.LatencyMS = latency.Milliseconds()

	if err != nil {
		aiRequestsTotal.With(prometheus.Labels{"model": payload.Model, "kind": kind, "status": "error"}).Inc()
		c.log.Error("Provider request failed",
			zap.String("model", payload.Model),
			zap.String("kind", kind),
			zap.Duration("latency", latency),
			zap.Error(err),
		)
		return "", meta, fmt.Errorf("model request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		aiRequestsTotal.With(prometheus.Labels{"model": payload.Model, "kind": kind, "status": "error"}).Inc()
		return "", meta, fmt.Errorf("failed to read provider response: %w", err)
	}

	var resp providerResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		aiRequestsTotal.With(prometheus.Labels{"model": payload.Model, "kind": kind, "status": "error"}).Inc()
		return "", meta, fmt.Errorf("failed to decode provider response (status %d): %w", httpResp.StatusCode, err)
	}

	if msg := resp.errorText(); msg != "" {
		aiRequestsTotal.With(prometheus.Labels{"model": payload.Model, "kind": kind, "status": "error"}).Inc()
		c.log.Error("Provider returned an error",
			zap.String("model", payload.Model),
			zap.String("kind", kind),
			zap.String("providerError", msg),
		)
		return "", meta, fmt.Errorf("model request failed: %s", msg)
	}

	var texts []string
	for _, block := range resp.Content {
		texts = append(texts, block.Text)
	}
	raw := strings.Join(texts, "")

	if resp.Usage != nil {
		meta.InputTokens = resp.Usage.InputTokens
		meta.OutputTokens = resp.Usage.OutputTokens
	} else {
		// Some conforming backends omit the usage block; estimate so the
		// cost accounting stays populated.
		meta.InputTokens = c.countTokens(payload.System) + c.countTokens(payload.Messages[0].Content)
		meta.OutputTokens = c.countTokens(raw)
	}
	meta.TotalTokens = meta.InputTokens + meta.OutputTokens
	meta.CostUSD = estimateCost(payload.Model, meta.InputTokens, meta.OutputTokens)

	aiRequestsTotal.With(prometheus.Labels{"model": payload.Model, "kind": kind, "status": "success"}).Inc()
	aiRequestDuration.With(prometheus.Labels{"model": payload.Model, "kind": kind}).Observe(latency.Seconds())
	aiInputTokens.With(prometheus.Labels{"model": payload.Model, "kind": kind}).Observe(float64(meta.InputTokens))
	aiOutputTokens.With(prometheus.Labels{"model": payload.Model, "kind": kind}).Observe(float64(meta.OutputTokens))
	if meta.CostUSD > 0 {
		aiEstimatedCostUSD.With(prometheus.Labels{"model": payload.Model, "kind": kind}).Add(meta.CostUSD)
	}

	c.log.Info("Model response received",
		zap.String("model", payload.Model),
		zap.String("kind", kind),
		zap.Duration("latency", latency),
		zap.Int("totalTokens", meta.TotalTokens),
		zap.Float64("costUSD", meta.CostUSD),
	)

	return raw, meta, nil
}

// countTokens estimates a token count with the cl100k_base encoding. Falls
// back to a 4-chars-per-token heuristic if the encoding cannot be loaded.
func (c *Client) countTokens(text string) int {
	c.encodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			c.log.Warn("Failed to load token encoding, using length heuristic", zap.Error(err))
			return
		}
		c.encoding = enc
	})
	if c.encoding == nil {
		return len(text) / 4
	}
	return len(c.encoding.Encode(text, nil, nil))
}
