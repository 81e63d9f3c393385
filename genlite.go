// Package genlite is a small client for a hosted generative-AI service
// authenticated with an API key. Most applications interact with this
// package by:
//  1. Creating a Client via New() — the key is resolved from an explicit
//     value, a secrets file, or the environment, in that order
//  2. Picking a model identifier from the catalog menu (or keeping the default)
//  3. Calling GenerateText (synchronous) or Generate (channel-based streaming)
//
// The façade delegates the actual call to a model.Model implementation; the
// default is the official-SDK adapter in model/gemini. All defaults are safe
// for local development; supply a structured logger for production use.
package genlite

import (
	"context"
	"fmt"
	"time"

	"github.com/genlite/genlite/catalog"
	"github.com/genlite/genlite/core"
	"github.com/genlite/genlite/internal/prompt"
	"github.com/genlite/genlite/logging"
	"github.com/genlite/genlite/model"
	"github.com/genlite/genlite/model/gemini"
	"github.com/genlite/genlite/secrets"
	"github.com/google/uuid"
)

// Options configure the Client.
type Options struct {
	// APIKey is an explicit key. When set it wins over every source.
	APIKey string

	// Sources are additional credential stores consulted after APIKey,
	// e.g. secrets.File(".secrets.env"). The default environment lookup
	// always runs last.
	Sources []secrets.Source

	// Model is the catalog identifier to generate with. Empty selects the
	// catalog default.
	Model string

	// Temperature controls sampling randomness for the default adapter.
	Temperature float64

	// MaxOutputTokens caps response length. 0 uses the service default.
	MaxOutputTokens int32

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger

	// ModelImpl overrides the default Gemini adapter with any model.Model.
	// When set, credential resolution is skipped: the implementation is
	// assumed to carry its own configuration.
	ModelImpl model.Model
}

// Client is the high-level façade aggregating credential resolution, model
// selection and the underlying generation adapter.
type Client struct {
	impl   model.Model
	logger logging.Logger
}

// New creates a Client. The API key is resolved before any network call so a
// missing credential fails here, wrapped around secrets.ErrNotFound.
func New(ctx context.Context, optFns ...func(o *Options)) (*Client, error) {
	opts := Options{
		Model:       catalog.Default(),
		Temperature: 0.7,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Model == "" {
		opts.Model = catalog.Default()
	}

	if opts.ModelImpl != nil {
		return &Client{impl: opts.ModelImpl, logger: opts.Logger}, nil
	}

	entry, err := catalog.Lookup(opts.Model)
	if err != nil {
		return nil, err
	}

	chain := make([]secrets.Source, 0, len(opts.Sources)+2)
	chain = append(chain, secrets.Static(opts.APIKey))
	chain = append(chain, opts.Sources...)
	chain = append(chain, secrets.Env())
	cred, err := secrets.Resolve(chain...)
	if err != nil {
		return nil, err
	}
	opts.Logger.Info("resolved API key",
		"origin", string(cred.Origin), "api_key", secrets.Redact(cred.Value))

	impl, err := gemini.NewModel(ctx, func(o *gemini.Options) {
		o.APIKey = cred.Value
		o.Model = entry.ID
		o.Temperature = opts.Temperature
		o.MaxOutputTokens = opts.MaxOutputTokens
	})
	if err != nil {
		return nil, err
	}
	return &Client{impl: impl, logger: opts.Logger}, nil
}

// Generate starts a generation call, returning the raw response & error
// channels of the underlying model.
func (c *Client) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	return c.impl.Generate(ctx, req)
}

// GenerateText is the synchronous quickstart path: send one prompt string,
// drain the channels, return the generated text.
func (c *Client) GenerateText(ctx context.Context, promptText string) (string, error) {
	return c.GenerateContent(ctx, core.UserText(promptText))
}

// GenerateContent is a synchronous helper that sends the given contents,
// accumulates the final response and returns its text.
func (c *Client) GenerateContent(ctx context.Context, contents ...core.Content) (string, error) {
	callID := uuid.NewString()
	info := c.impl.Info()
	c.logger.Debug("starting generation", "call_id", callID, "model", info.Name)

	start := time.Now()
	respCh, errCh := c.impl.Generate(ctx, model.Request{Contents: contents})

	var final *model.Response
	for respCh != nil || errCh != nil {
		select {
		case <-ctx.Done():
			logging.LogModelCall(c.logger, info.Name, 0, time.Since(start), false, ctx.Err())
			return "", ctx.Err()
		case resp, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			if !resp.Partial {
				r := resp
				final = &r
			}
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				logging.LogModelCall(c.logger, info.Name, 0, time.Since(start), false, err)
				return "", err
			}
		}
	}
	if final == nil {
		err := fmt.Errorf("%w: model emitted no final response", model.ErrInvalidResponse)
		logging.LogModelCall(c.logger, info.Name, 0, time.Since(start), false, err)
		return "", err
	}

	tokens := 0
	if final.Usage != nil {
		tokens = final.Usage.TotalTokens
	}
	logging.LogModelCall(c.logger, info.Name, tokens, time.Since(start), true, nil)
	c.logger.Debug("generation finished",
		"call_id", callID, "finish_reason", final.FinishReason)
	return core.Text(final.Content), nil
}

// GenerateFromTemplate renders a prompt template with vars and generates
// from the result.
func (c *Client) GenerateFromTemplate(ctx context.Context, tmpl string, vars map[string]any) (string, error) {
	rendered, err := prompt.Render(tmpl, vars)
	if err != nil {
		return "", err
	}
	return c.GenerateText(ctx, rendered)
}

// ModelInfo returns metadata about the configured model implementation.
func (c *Client) ModelInfo() model.Info { return c.impl.Info() }
