package genlite

import (
	"context"
	"testing"

	"github.com/genlite/genlite/catalog"
	"github.com/genlite/genlite/core"
	"github.com/genlite/genlite/model"
	"github.com/genlite/genlite/secrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockClient(t *testing.T) (*Client, *model.MockModel) {
	t.Helper()
	mock := model.NewMockModel("mock-model", "mock")
	client, err := New(context.Background(), func(o *Options) {
		o.ModelImpl = mock
	})
	require.NoError(t, err)
	return client, mock
}

func TestNewMissingKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	_, err := New(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, secrets.ErrNotFound)
}

func TestNewUnknownModel(t *testing.T) {
	_, err := New(context.Background(), func(o *Options) {
		o.APIKey = "test-key"
		o.Model = "not-a-model"
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrUnknownModel)
}

func TestNewResolvesKeyFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key-1234567890")
	client, err := New(context.Background())
	require.NoError(t, err)
	assert.Equal(t, catalog.Default(), client.ModelInfo().Name)
	assert.Equal(t, "gemini", client.ModelInfo().Provider)
}

func TestGenerateText(t *testing.T) {
	client, mock := newMockClient(t)
	mock.AddResponse("Explain how AI works", "AI learns patterns from data.")

	text, err := client.GenerateText(context.Background(), "Explain how AI works")
	require.NoError(t, err)
	assert.Equal(t, "AI learns patterns from data.", text)
}

func TestGenerateFromTemplate(t *testing.T) {
	client, mock := newMockClient(t)
	mock.AddResponse("Summarize magic backpacks briefly.", "Done.")

	text, err := client.GenerateFromTemplate(context.Background(),
		"Summarize {{.topic}} briefly.", map[string]any{"topic": "magic backpacks"})
	require.NoError(t, err)
	assert.Equal(t, "Done.", text)
}

func TestGenerateFromTemplateBadTemplate(t *testing.T) {
	client, _ := newMockClient(t)
	_, err := client.GenerateFromTemplate(context.Background(), "{{.broken", nil)
	assert.Error(t, err)
}

func TestGenerateChannels(t *testing.T) {
	client, mock := newMockClient(t)
	mock.AddResponse("hi", "hello")

	respCh, errCh := client.Generate(context.Background(), model.Request{
		Contents: []core.Content{core.UserText("hi")},
		Stream:   true,
	})
	var streamed, finalText string
	for respCh != nil || errCh != nil {
		select {
		case r, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			if r.Partial {
				streamed += core.Text(r.Content)
			} else {
				finalText = core.Text(r.Content)
			}
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			require.NoError(t, err)
		}
	}
	assert.Equal(t, "hello", streamed)
	assert.Equal(t, "hello", finalText)
}

func TestGenerateContentEmptyContents(t *testing.T) {
	client, _ := newMockClient(t)
	_, err := client.GenerateContent(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}
