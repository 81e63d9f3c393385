package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/genlite/genlite/core"
	"github.com/genlite/genlite/model"
	"github.com/genlite/genlite/secrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestNewModelRequiresAPIKey(t *testing.T) {
	_, err := NewModel(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, secrets.ErrNotFound)
}

func TestNewModelRejectsUnknownModel(t *testing.T) {
	_, err := NewModel(context.Background(), func(o *Options) {
		o.APIKey = "test-key"
		o.Model = "no-such-model"
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}

func TestBuildContents(t *testing.T) {
	contents, err := buildContents(model.Request{
		Contents: []core.Content{
			{Role: core.RoleSystem, Parts: []core.Part{core.TextPart{Text: "be brief"}}},
			core.UserText("hello"),
			{Role: core.RoleUser, Parts: []core.Part{
				core.InlineDataPart{MIMEType: "image/png", Data: []byte{1, 2, 3}},
			}},
		},
	})
	require.NoError(t, err)
	// System content is carried via Instructions, not as wire content.
	require.Len(t, contents, 2)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "hello", contents[0].Parts[0].Text)
	require.NotNil(t, contents[1].Parts[0].InlineData)
	assert.Equal(t, "image/png", contents[1].Parts[0].InlineData.MIMEType)
}

func TestBuildContentsEmpty(t *testing.T) {
	_, err := buildContents(model.Request{})
	assert.ErrorIs(t, err, model.ErrInvalidConfig)

	_, err = buildContents(model.Request{
		Contents: []core.Content{{Role: core.RoleSystem, Parts: []core.Part{core.TextPart{Text: "x"}}}},
	})
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}

func TestBuildConfigOverrides(t *testing.T) {
	m := &Model{opts: Options{Model: "gemini-2.0-flash", Temperature: 0.7, MaxOutputTokens: 512}}

	temp := 0.1
	cfg := m.buildConfig(model.Request{
		Instructions: "answer tersely",
		Config: model.GenerationConfig{
			Temperature:     &temp,
			MaxOutputTokens: 64,
		},
	})
	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 0.1, float64(*cfg.Temperature), 1e-6)
	assert.Equal(t, int32(64), cfg.MaxOutputTokens)
	require.NotNil(t, cfg.SystemInstruction)
	assert.Equal(t, "answer tersely", cfg.SystemInstruction.Parts[0].Text)
}

func TestToResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role:  "model",
				Parts: []*genai.Part{{Text: "generated text"}},
			},
			FinishReason: genai.FinishReasonStop,
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     3,
			CandidatesTokenCount: 5,
			TotalTokenCount:      8,
		},
	}
	mr, err := toResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, "generated text", core.Text(mr.Content))
	assert.Equal(t, string(genai.FinishReasonStop), mr.FinishReason)
	require.NotNil(t, mr.Usage)
	assert.Equal(t, 8, mr.Usage.TotalTokens)
}

func TestToResponseSafetyBlocked(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
	}
	_, err := toResponse(resp)
	assert.ErrorIs(t, err, model.ErrContentBlocked)
}

func TestToResponseNoCandidates(t *testing.T) {
	_, err := toResponse(&genai.GenerateContentResponse{})
	assert.ErrorIs(t, err, model.ErrInvalidResponse)

	_, err = toResponse(nil)
	assert.ErrorIs(t, err, model.ErrInvalidResponse)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(genai.APIError{Code: 429, Message: "rate limited"}))
	assert.True(t, isTransient(genai.APIError{Code: 503, Message: "overloaded"}))
	assert.False(t, isTransient(genai.APIError{Code: 400, Message: "bad request"}))
	assert.False(t, isTransient(genai.APIError{Code: 403, Message: "key invalid"}))
	assert.False(t, isTransient(context.Canceled))
	assert.True(t, isTransient(errors.New("connection reset")))
}

func TestInfo(t *testing.T) {
	m := &Model{opts: Options{Model: "gemini-2.0-flash", MaxRetries: 3, RetryBaseDelay: time.Second}}
	info := m.Info()
	assert.Equal(t, "gemini-2.0-flash", info.Name)
	assert.Equal(t, "gemini", info.Provider)
	assert.True(t, info.SupportsStreaming)
}
