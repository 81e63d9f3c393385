// Package rest is a minimal wire-level client for the generateContent
// endpoint: the curl-equivalent view of the call the SDK adapter in
// model/gemini makes. It exists to show the protocol itself — the JSON body
// shape and the two ways the API key travels (header or query parameter) —
// with nothing in between.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/genlite/genlite/catalog"
	"github.com/genlite/genlite/logging"
	"github.com/genlite/genlite/secrets"
	"github.com/google/uuid"
)

const (
	// DefaultBaseURL is the public REST surface of the generative language API.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	contentTypeJSON = "application/json"
	userAgent       = "genlite/0.1"

	// headerAPIKey carries the key when it is not sent as a query parameter.
	headerAPIKey = "x-goog-api-key"
	// headerRequestID is a client-generated correlation id, echoed in logs.
	headerRequestID = "x-client-request-id"
)

// Options configure the REST client.
type Options struct {
	// BaseURL overrides the service endpoint. Mainly for tests.
	BaseURL string
	// HTTPClient overrides the transport.
	HTTPClient *http.Client
	// KeyAsQueryParam sends the key as ?key=... instead of the
	// x-goog-api-key header. The header is the default: it keeps the key
	// out of URLs, which tend to end up in logs.
	KeyAsQueryParam bool
	// Timeout applies when no HTTPClient is supplied.
	Timeout time.Duration
	// Logger receives request/response events. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Client issues generateContent calls with an API key.
type Client struct {
	apiKey  string
	baseURL string
	hc      *http.Client
	opts    Options
	logger  logging.Logger
}

// NewClient builds a REST client. The key must be non-empty.
func NewClient(apiKey string, optFns ...func(o *Options)) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: pass a non-empty API key", secrets.ErrNotFound)
	}
	opts := Options{
		BaseURL: DefaultBaseURL,
		Timeout: 60 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: opts.BaseURL,
		hc:      hc,
		opts:    opts,
		logger:  logger,
	}, nil
}

// GenerateContent posts the request body to models/{model}:generateContent
// and decodes the reply. Non-2xx replies are returned as *APIError.
func (c *Client) GenerateContent(ctx context.Context, modelID string, req *GenerateContentRequest) (*GenerateContentResponse, error) {
	if req == nil || len(req.Contents) == 0 {
		return nil, errors.New("request must carry at least one content")
	}
	modelID = catalog.Normalize(modelID)
	if modelID == "" {
		modelID = catalog.Default()
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(modelID))
	httpReq, err := c.newRequest(ctx, endpoint, req)
	if err != nil {
		return nil, err
	}

	reqID := httpReq.Header.Get(headerRequestID)
	c.logger.Debug("sending generateContent request",
		"model", modelID, "request_id", reqID, "api_key", secrets.Redact(c.apiKey))

	start := time.Now()
	httpResp, err := c.hc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("generateContent request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		apiErr := parseAPIError(httpResp)
		c.logger.Warn("generateContent request rejected",
			"model", modelID, "request_id", reqID, "status", httpResp.StatusCode)
		return nil, apiErr
	}

	var resp GenerateContentResponse
	if err := decodeJSON(httpResp.Body, &resp); err != nil {
		return nil, err
	}
	c.logger.Info("generateContent request completed",
		"model", modelID, "request_id", reqID, "duration", time.Since(start))
	return &resp, nil
}

// GenerateText is the three-line quickstart as one call: send a prompt
// string, get the generated text back.
func (c *Client) GenerateText(ctx context.Context, modelID, prompt string) (string, error) {
	resp, err := c.GenerateContent(ctx, modelID, Text(prompt))
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (c *Client) newRequest(ctx context.Context, endpoint string, payload any) (*http.Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	if c.opts.KeyAsQueryParam {
		endpoint += "?key=" + url.QueryEscape(c.apiKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(headerRequestID, uuid.NewString())
	if !c.opts.KeyAsQueryParam {
		req.Header.Set(headerAPIKey, c.apiKey)
	}
	return req, nil
}

// parseAPIError extracts the service error envelope, falling back to the raw
// body when the envelope does not parse.
func parseAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		apiErr.Message = "failed to read error body"
		return apiErr
	}
	var envelope apiErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Status = envelope.Error.Status
		apiErr.Message = envelope.Error.Message
		return apiErr
	}
	apiErr.Message = string(body)
	return apiErr
}

func decodeJSON(r io.Reader, v any) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
