// Package gemini provides an implementation of model.Model using the Gemini
// API through the official google.golang.org/genai SDK. The API key is the
// only credential: it is passed as a client construction parameter and the
// SDK attaches it to every request.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/genlite/genlite/catalog"
	"github.com/genlite/genlite/core"
	"github.com/genlite/genlite/model"
	"github.com/genlite/genlite/secrets"
	"google.golang.org/genai"
)

// Options configure the Gemini model adapter.
type Options struct {
	// Model is the catalog identifier to generate with.
	Model string
	// APIKey authenticates every request. Required.
	APIKey string
	// Temperature controls sampling randomness.
	Temperature float64
	// MaxOutputTokens caps the response length. 0 uses the service default.
	MaxOutputTokens int32
	// MaxRetries bounds retry attempts for transient failures.
	MaxRetries int
	// RetryBaseDelay is the first backoff interval; doubled per attempt
	// with jitter.
	RetryBaseDelay time.Duration
	// HTTPClient overrides the SDK's transport. Mainly for tests.
	HTTPClient *http.Client
	// BaseURL overrides the service endpoint. Mainly for tests.
	BaseURL string
}

// Model wraps the Gemini API behind the generic model.Model interface.
type Model struct {
	client *genai.Client
	opts   Options
}

// NewModel creates a Gemini model adapter. The API key must be non-empty and
// the model identifier must be on the catalog menu; both are checked here so
// misconfiguration surfaces at construction rather than on the first call.
func NewModel(ctx context.Context, optFns ...func(o *Options)) (*Model, error) {
	opts := Options{
		Model:          catalog.Default(),
		Temperature:    0.7,
		MaxRetries:     3,
		RetryBaseDelay: 2 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: pass an API key via Options.APIKey", secrets.ErrNotFound)
	}
	entry, err := catalog.Lookup(opts.Model)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidConfig, err)
	}
	opts.Model = entry.ID

	cc := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.HTTPClient != nil {
		cc.HTTPClient = opts.HTTPClient
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions.BaseURL = opts.BaseURL
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("%w: create client: %v", model.ErrInvalidConfig, err)
	}
	return &Model{client: client, opts: opts}, nil
}

// NewModelFromClient creates a Gemini adapter from an existing SDK client.
func NewModelFromClient(client *genai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:          catalog.Default(),
		Temperature:    0.7,
		MaxRetries:     3,
		RetryBaseDelay: 2 * time.Second,
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
		contents, err := buildContents(req)
		if err != nil {
			errCh <- err
			return
		}
		cfg := m.buildConfig(req)
		if req.Stream {
			m.handleStreaming(ctx, contents, cfg, out, errCh)
			return
		}
		m.handleNonStreaming(ctx, contents, cfg, out, errCh)
	}()
	return out, errCh
}

// buildContents converts normalized contents into SDK contents. System-role
// contents are not valid wire contents; callers put instructions into
// Request.Instructions instead.
func buildContents(req model.Request) ([]*genai.Content, error) {
	if len(req.Contents) == 0 {
		return nil, fmt.Errorf("%w: no contents provided", model.ErrInvalidConfig)
	}
	contents := make([]*genai.Content, 0, len(req.Contents))
	for _, c := range req.Contents {
		if c.Role == core.RoleSystem {
			continue
		}
		role := "user"
		if c.Role == core.RoleModel {
			role = "model"
		}
		parts := make([]*genai.Part, 0, len(c.Parts))
		for _, p := range c.Parts {
			switch tp := p.(type) {
			case core.TextPart:
				parts = append(parts, &genai.Part{Text: tp.Text})
			case core.InlineDataPart:
				parts = append(parts, &genai.Part{
					InlineData: &genai.Blob{MIMEType: tp.MIMEType, Data: tp.Data},
				})
			}
		}
		if len(parts) == 0 {
			continue
		}
		contents = append(contents, &genai.Content{Role: role, Parts: parts})
	}
	if len(contents) == 0 {
		return nil, fmt.Errorf("%w: contents carry no sendable parts", model.ErrInvalidConfig)
	}
	return contents, nil
}

// buildConfig assembles the per-call generation config from adapter options
// and request overrides.
func (m *Model) buildConfig(req model.Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(m.opts.Temperature)),
	}
	if req.Config.Temperature != nil {
		cfg.Temperature = genai.Ptr(float32(*req.Config.Temperature))
	}
	if req.Config.TopP != nil {
		cfg.TopP = genai.Ptr(float32(*req.Config.TopP))
	}
	if m.opts.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = m.opts.MaxOutputTokens
	}
	if req.Config.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = req.Config.MaxOutputTokens
	}
	if req.Config.CandidateCount > 0 {
		cfg.CandidateCount = req.Config.CandidateCount
	}
	if req.Instructions != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.Instructions}},
		}
	}
	return cfg
}

// handleNonStreaming performs the call with retry for transient failures.
// Backoff is exponential with jitter; safety blocks and malformed responses
// are returned immediately.
func (m *Model) handleNonStreaming(
	ctx context.Context,
	contents []*genai.Content,
	cfg *genai.GenerateContentConfig,
	out chan<- model.Response,
	errCh chan<- error,
) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	var lastErr error
	for attempt := 0; attempt <= m.opts.MaxRetries; attempt++ {
		resp, err := m.client.Models.GenerateContent(ctx, m.opts.Model, contents, cfg)
		if err == nil {
			mr, convErr := toResponse(resp)
			if convErr != nil {
				errCh <- convErr
				return
			}
			out <- mr
			return
		}
		if !isTransient(err) {
			errCh <- err
			return
		}
		lastErr = err
		if attempt == m.opts.MaxRetries {
			break
		}
		// delay = base * 2^attempt * rand(0.5, 1.0)
		backoff := float64(m.opts.RetryBaseDelay) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + rng.Float64()*0.5))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			errCh <- fmt.Errorf("%w: %v", model.ErrTransientFailure, ctx.Err())
			return
		}
	}
	errCh <- fmt.Errorf("%w: exceeded %d attempts: %v",
		model.ErrTransientFailure, m.opts.MaxRetries+1, lastErr)
}

// handleStreaming forwards partial chunks and emits a final aggregate. The
// stream is not retried: partial output may already have been surfaced.
func (m *Model) handleStreaming(
	ctx context.Context,
	contents []*genai.Content,
	cfg *genai.GenerateContentConfig,
	out chan<- model.Response,
	errCh chan<- error,
) {
	var full string
	var finishReason string
	var usage *model.TokenUsage
	for resp, err := range m.client.Models.GenerateContentStream(ctx, m.opts.Model, contents, cfg) {
		if err != nil {
			errCh <- fmt.Errorf("gemini streaming error: %w", err)
			return
		}
		chunk := resp.Text()
		if chunk != "" {
			full += chunk
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case out <- model.Response{
				Partial: true,
				Content: core.Content{
					Role:  core.RoleModel,
					Parts: []core.Part{core.TextPart{Text: chunk}},
				},
			}:
			}
		}
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != "" {
			finishReason = string(resp.Candidates[0].FinishReason)
		}
		if u := toUsage(resp); u != nil {
			usage = u
		}
	}
	if finishReason == string(genai.FinishReasonSafety) {
		errCh <- fmt.Errorf("%w: stream terminated by safety filters", model.ErrContentBlocked)
		return
	}
	if full == "" && finishReason == "" {
		// Same mapping as the non-streaming path for an empty reply.
		errCh <- fmt.Errorf("%w: stream ended without content", model.ErrInvalidResponse)
		return
	}
	select {
	case <-ctx.Done():
		errCh <- ctx.Err()
	case out <- model.Response{
		Partial:      false,
		Content:      core.ModelText(full),
		FinishReason: finishReason,
		Usage:        usage,
	}:
	}
}

// toResponse validates and converts a final SDK response.
func toResponse(resp *genai.GenerateContentResponse) (model.Response, error) {
	if resp == nil {
		return model.Response{}, fmt.Errorf("%w: nil response", model.ErrInvalidResponse)
	}
	if len(resp.Candidates) == 0 {
		return model.Response{}, fmt.Errorf("%w: no candidates returned", model.ErrInvalidResponse)
	}
	cand := resp.Candidates[0]
	if cand.FinishReason == genai.FinishReasonSafety {
		return model.Response{}, fmt.Errorf("%w: finish reason %s", model.ErrContentBlocked, cand.FinishReason)
	}
	if cand.Content == nil {
		return model.Response{}, fmt.Errorf("%w: empty content in candidate", model.ErrInvalidResponse)
	}
	return model.Response{
		Partial:      false,
		Content:      core.ModelText(resp.Text()),
		FinishReason: string(cand.FinishReason),
		Usage:        toUsage(resp),
	}, nil
}

func toUsage(resp *genai.GenerateContentResponse) *model.TokenUsage {
	if resp == nil || resp.UsageMetadata == nil {
		return nil
	}
	return &model.TokenUsage{
		PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
		CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
	}
}

// isTransient reports whether an error is worth retrying: rate limits,
// server-side 5xx and transport failures. API errors with other status
// codes are caller mistakes and returned as-is.
func isTransient(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	// Transport-level failure without an API error envelope.
	return true
}

// Info returns metadata describing this Gemini model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:              m.opts.Model,
		Provider:          "gemini",
		SupportsStreaming: true,
	}
}
