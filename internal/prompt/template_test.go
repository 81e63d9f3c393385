package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPlainTextFastPath(t *testing.T) {
	out, err := Render("no markers here", nil)
	require.NoError(t, err)
	assert.Equal(t, "no markers here", out)
}

func TestRenderSubstitution(t *testing.T) {
	out, err := Render("Summarize {{.topic}} in {{.n}} words.", map[string]any{
		"topic": "magic backpacks",
		"n":     50,
	})
	require.NoError(t, err)
	assert.Equal(t, "Summarize magic backpacks in 50 words.", out)
}

func TestRenderFuncs(t *testing.T) {
	out, err := Render("{{upper .w}} / {{lower .w}}", map[string]any{"w": "Mix"})
	require.NoError(t, err)
	assert.Equal(t, "MIX / mix", out)
}

func TestRenderParseError(t *testing.T) {
	_, err := Render("{{.unclosed", nil)
	assert.Error(t, err)
}
