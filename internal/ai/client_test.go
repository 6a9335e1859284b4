package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"quest-forge/internal/model"
)

const questJSON = `{"title": "La lettre volée", "description": "Quelqu'un fouille les archives.", "type": "infiltration"}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(Config{Endpoint: srv.URL, APIKey: "test-key", Timeout: 5 * time.Second}, zap.NewNop())
	return client, srv
}

func providerReply(content string, usage map[string]int) map[string]any {
	reply := map[string]any{
		"content": []map[string]any{{"type": "text", "text": content}},
	}
	if usage != nil {
		reply["usage"] = usage
	}
	return reply
}

func TestGenerateQuest(t *testing.T) {
	var captured providerRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(providerReply("```json\n"+questJSON+"\n```", map[string]int{
			"input_tokens":  1000,
			"output_tokens": 200,
		}))
	})

	result, err := client.GenerateQuest(context.Background(), GenerateRequest{
		Model:        model.ModelSonnet,
		Temperature:  0.85,
		SystemPrompt: "système",
		UserMessage:  "message",
	})
	require.NoError(t, err)

	assert.Equal(t, model.ModelSonnet, captured.Model)
	assert.Equal(t, generationMaxTokens, captured.MaxTokens)
	assert.InDelta(t, 0.85, captured.Temperature, 1e-9)
	assert.Equal(t, "système", captured.System)
	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "user", captured.Messages[0].Role)

	require.NotNil(t, result.Quest)
	assert.Equal(t, "La lettre volée", result.Quest.Title)
	assert.Empty(t, result.ParseError)

	assert.Equal(t, 1000, result.Meta.InputTokens)
	assert.Equal(t, 200, result.Meta.OutputTokens)
	assert.Equal(t, 1200, result.Meta.TotalTokens)
	// 1000 * 3.0/1M + 200 * 15.0/1M
	assert.InDelta(t, 0.006, result.Meta.CostUSD, 1e-9)
	assert.GreaterOrEqual(t, result.Meta.LatencyMS, int64(0))
}

func TestGenerateQuestUnparseablePayload(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(providerReply("Je ne peux pas répondre en JSON.", map[string]int{
			"input_tokens":  10,
			"output_tokens": 8,
		}))
	})

	result, err := client.GenerateQuest(context.Background(), GenerateRequest{Model: model.ModelSonnet})
	require.NoError(t, err, "a successful call with a bad payload is not a transport error")

	assert.Nil(t, result.Quest)
	assert.Contains(t, result.ParseError, "JSON parse error:")
	assert.Equal(t, "Je ne peux pas répondre en JSON.", result.RawContent)
	assert.Equal(t, 18, result.Meta.TotalTokens, "metadata survives a parse failure")
}

func TestGenerateQuestProviderError(t *testing.T) {
	t.Run("string error", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"error": "overloaded"})
		})
		_, err := client.GenerateQuest(context.Background(), GenerateRequest{Model: model.ModelSonnet})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "overloaded")
	})

	t.Run("structured error", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"type": "rate_limit_error", "message": "rate limited"}})
		})
		_, err := client.GenerateQuest(context.Background(), GenerateRequest{Model: model.ModelSonnet})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limited")
	})
}

func TestGenerateQuestTransportFailure(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	result, err := client.GenerateQuest(context.Background(), GenerateRequest{Model: model.ModelSonnet})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "model request failed")
}

func TestGenerateQuestMissingUsageIsEstimated(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(providerReply(questJSON, nil))
	})

	result, err := client.GenerateQuest(context.Background(), GenerateRequest{
		Model:        model.ModelSonnet,
		SystemPrompt: "Un prompt système assez long pour produire quelques tokens.",
		UserMessage:  "Génère une quête.",
	})
	require.NoError(t, err)
	assert.Positive(t, result.Meta.InputTokens)
	assert.Positive(t, result.Meta.OutputTokens)
	assert.Positive(t, result.Meta.CostUSD)
}

func TestCheckCoherence(t *testing.T) {
	t.Run("forces model and sampling", func(t *testing.T) {
		var captured providerRequest
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			json.NewEncoder(w).Encode(providerReply(`{"score": 9, "verdict": "cohérente", "issues": [], "strengths": []}`, map[string]int{
				"input_tokens":  500,
				"output_tokens": 50,
			}))
		})

		report, err := client.CheckCoherence(context.Background(), "système", "quête")
		require.NoError(t, err)

		assert.Equal(t, model.ModelHaiku, captured.Model)
		assert.Equal(t, coherenceMaxTokens, captured.MaxTokens)
		assert.InDelta(t, coherenceTemperature, captured.Temperature, 1e-9)

		require.NotNil(t, report.Score)
		assert.Equal(t, 9, *report.Score)
		assert.Equal(t, "cohérente", report.Verdict)
		require.NotNil(t, report.Meta)
		assert.Equal(t, 550, report.Meta.TotalTokens)
	})

	t.Run("unparseable verdict degrades in place", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(providerReply("La quête est globalement correcte.", map[string]int{
				"input_tokens":  500,
				"output_tokens": 20,
			}))
		})

		report, err := client.CheckCoherence(context.Background(), "système", "quête")
		require.NoError(t, err)

		assert.Equal(t, model.VerdictCheckFailed, report.Verdict)
		assert.Nil(t, report.Score)
		require.NotEmpty(t, report.Issues)
		require.NotNil(t, report.Meta, "call metadata survives the degraded verdict")
	})

	t.Run("transport failure surfaces as error", func(t *testing.T) {
		client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
		srv.Close()

		_, err := client.CheckCoherence(context.Background(), "système", "quête")
		require.Error(t, err)
	})
}

func TestEstimateCost(t *testing.T) {
	assert.InDelta(t, 0.006, estimateCost(model.ModelSonnet, 1000, 200), 1e-9)
	assert.InDelta(t, 0.0016, estimateCost(model.ModelHaiku, 1000, 200), 1e-9)
	assert.InDelta(t, estimateCost(model.ModelSonnet, 1000, 200), estimateCost("modele-inconnu", 1000, 200), 1e-9,
		"unknown models are billed at the default model's rates")
}
