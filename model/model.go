package model

import (
	"context"
	"fmt"

	"github.com/genlite/genlite/core"
)

// GenerationConfig carries the sampling parameters forwarded to a provider.
// Nil pointer fields mean "use the provider default".
type GenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	TopP            *float64 `json:"top_p,omitempty"`
	MaxOutputTokens int32    `json:"max_output_tokens,omitempty"` // 0 = provider default
	CandidateCount  int32    `json:"candidate_count,omitempty"`   // 0 = 1
}

// Request captures the normalized input for a generation call.
type Request struct {
	Instructions string           `json:"instructions,omitempty"` // System instructions for the model
	Contents     []core.Content   `json:"contents"`               // Ordered conversation contents
	Config       GenerationConfig `json:"config,omitempty"`
	Stream       bool             `json:"stream,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a model.
type Response struct {
	ID           string       `json:"id"`
	Partial      bool         `json:"partial"` // Indicates if this is a partial response
	Content      core.Content `json:"content"`
	FinishReason string       `json:"finish_reason"` // "stop", "length", "safety", etc.
	Usage        *TokenUsage  `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name              string `json:"name"`
	Provider          string `json:"provider"` // "gemini", "openai-compat", "mock", etc.
	SupportsStreaming bool   `json:"supports_streaming"`
}

// Model is the minimal interface required to drive generation against a
// hosted service. Non-streaming implementations emit a single final
// Response; streaming implementations emit partial chunks first.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
type MockModel struct {
	info      Info
	responses map[string]string
}

// NewMockModel constructs a MockModel with streaming support enabled.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info: Info{
			Name:              name,
			Provider:          provider,
			SupportsStreaming: true,
		},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) { m.responses[prompt] = response }

// Generate implements Model; emits optional streaming char chunks then final response.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(respCh)
		defer close(errCh)
		if len(req.Contents) == 0 {
			errCh <- fmt.Errorf("%w: no contents provided", ErrInvalidConfig)
			return
		}
		last := req.Contents[len(req.Contents)-1]
		inputText := core.Text(last)
		full := m.responses[inputText]
		if full == "" {
			full = fmt.Sprintf("Mock response to: %s", inputText)
		}
		if req.Stream {
			for _, r := range full {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{
					Partial: true,
					Content: core.Content{
						Role:  core.RoleModel,
						Parts: []core.Part{core.TextPart{Text: string(r)}},
					},
				}:
				}
			}
		}
		respCh <- Response{
			Partial:      false,
			Content:      core.ModelText(full),
			FinishReason: "stop",
			Usage: &TokenUsage{
				PromptTokens:     len(inputText),
				CompletionTokens: len(full),
				TotalTokens:      len(inputText) + len(full),
			},
		}
	}()
	return respCh, errCh
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }
