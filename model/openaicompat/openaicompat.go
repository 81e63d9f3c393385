// Package openaicompat provides an implementation of model.Model using the
// service's OpenAI-compatible chat-completions endpoint. The same API key
// that authenticates the native API is sent as a bearer token, which makes
// this adapter useful for callers migrating existing OpenAI-client code: only
// the base URL and key change.
package openaicompat

import (
	"context"
	"fmt"
	"strings"

	"github.com/genlite/genlite/core"
	"github.com/genlite/genlite/model"
	"github.com/genlite/genlite/secrets"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultBaseURL is the OpenAI-compatible surface of the generative language
// API.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// Options configure the OpenAI-compatible model adapter.
type Options struct {
	Model               string
	APIKey              string
	BaseURL             string
	Temperature         float64
	MaxCompletionTokens int64
}

// Model wraps the OpenAI-compatible endpoint behind the generic model.Model
// interface.
type Model struct {
	client *openai.Client
	opts   Options
}

// NewModel creates a new adapter. The API key is required; the model
// identifier is not validated against the catalog because the compatible
// surface also accepts identifiers the native menu does not list.
func NewModel(optFns ...func(o *Options)) (*Model, error) {
	opts := Options{
		Model:               "gemini-2.0-flash",
		BaseURL:             DefaultBaseURL,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: pass an API key via Options.APIKey", secrets.ErrNotFound)
	}
	client := openai.NewClient(
		option.WithAPIKey(opts.APIKey),
		option.WithBaseURL(opts.BaseURL),
	)
	return &Model{client: &client, opts: opts}, nil
}

// NewModelFromClient creates a new adapter from an existing client.
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:               "gemini-2.0-flash",
		BaseURL:             DefaultBaseURL,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Generate implements unified streaming / non-streaming generation.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errCh)
		if len(req.Contents) == 0 {
			errCh <- fmt.Errorf("%w: no contents provided", model.ErrInvalidConfig)
			return
		}
		params := m.buildParams(req)
		if req.Stream {
			m.handleStreaming(ctx, params, out, errCh)
			return
		}
		m.handleNonStreaming(ctx, params, out, errCh)
	}()
	return out, errCh
}

// buildMessages converts normalized contents into chat messages. Instructions
// become the leading system message.
func buildMessages(req model.Request) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.Instructions != "" {
		messages = append(messages, openai.SystemMessage(req.Instructions))
	}
	for _, c := range req.Contents {
		var textBuilder strings.Builder
		for _, p := range c.Parts {
			if tp, ok := p.(core.TextPart); ok {
				textBuilder.WriteString(tp.Text)
			}
		}
		text := textBuilder.String()
		if text == "" {
			continue
		}
		switch c.Role {
		case core.RoleSystem:
			messages = append(messages, openai.SystemMessage(text))
		case core.RoleModel:
			messages = append(messages, openai.AssistantMessage(text))
		default:
			messages = append(messages, openai.UserMessage(text))
		}
	}
	return messages
}

// buildParams assembles the chat-completion parameters.
func (m *Model) buildParams(req model.Request) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(req),
		Model:               openai.ChatModel(m.opts.Model),
		Temperature:         openai.Float(m.opts.Temperature),
		MaxCompletionTokens: openai.Int(m.opts.MaxCompletionTokens),
	}
	if req.Config.Temperature != nil {
		params.Temperature = openai.Float(*req.Config.Temperature)
	}
	if req.Config.TopP != nil {
		params.TopP = openai.Float(*req.Config.TopP)
	}
	if req.Config.MaxOutputTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.Config.MaxOutputTokens))
	}
	return params
}

// handleStreaming processes streaming responses and forwards partial / final events.
func (m *Model) handleStreaming(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
	out chan<- model.Response,
	errCh chan<- error,
) {
	stream := m.client.Chat.Completions.NewStreaming(ctx, params)
	var textBuilder strings.Builder
	for stream.Next() {
		ck := stream.Current()
		for _, ch := range ck.Choices {
			if ch.Delta.Content != "" {
				textBuilder.WriteString(ch.Delta.Content)
				out <- model.Response{
					ID:      ck.ID,
					Partial: true,
					Content: core.Content{
						Role:  core.RoleModel,
						Parts: []core.Part{core.TextPart{Text: ch.Delta.Content}},
					},
				}
			}
			if ch.FinishReason != "" {
				out <- model.Response{
					ID:           ck.ID,
					Partial:      false,
					Content:      core.ModelText(textBuilder.String()),
					FinishReason: ch.FinishReason,
				}
			}
		}
	}
	if err := stream.Err(); err != nil {
		errCh <- fmt.Errorf("openai-compat streaming error: %w", err)
	}
}

// handleNonStreaming processes a normal (non-streaming) completion.
func (m *Model) handleNonStreaming(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
	out chan<- model.Response,
	errCh chan<- error,
) {
	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		errCh <- fmt.Errorf("openai-compat api error: %w", err)
		return
	}
	if len(resp.Choices) == 0 {
		errCh <- fmt.Errorf("%w: no choices returned", model.ErrInvalidResponse)
		return
	}
	ch0 := resp.Choices[0]
	var usage *model.TokenUsage
	if resp.Usage.TotalTokens > 0 {
		usage = &model.TokenUsage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		}
	}
	out <- model.Response{
		ID:           resp.ID,
		Partial:      false,
		Content:      core.ModelText(ch0.Message.Content),
		FinishReason: ch0.FinishReason,
		Usage:        usage,
	}
}

// Info returns metadata describing this adapter.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:              m.opts.Model,
		Provider:          "openai-compat",
		SupportsStreaming: true,
	}
}
