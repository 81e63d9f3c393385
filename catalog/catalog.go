package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownModel is returned by Lookup for identifiers not in the menu.
var ErrUnknownModel = errors.New("unknown model identifier")

// Entry describes one selectable model identifier.
type Entry struct {
	ID                string `json:"id"`
	DisplayName       string `json:"display_name"`
	Description       string `json:"description"`
	InputTokenLimit   int    `json:"input_token_limit"`
	OutputTokenLimit  int    `json:"output_token_limit"`
	SupportsStreaming bool   `json:"supports_streaming"`
}

// defaultModelID is the entry selected when the caller does not pick one.
const defaultModelID = "gemini-2.0-flash"

// The fixed menu of generation models the service exposes for API-key
// access. Limits are the documented context window sizes.
var entries = map[string]Entry{
	"gemini-2.0-flash": {
		ID:                "gemini-2.0-flash",
		DisplayName:       "Gemini 2.0 Flash",
		Description:       "Fast general-purpose model, balanced quality and latency.",
		InputTokenLimit:   1048576,
		OutputTokenLimit:  8192,
		SupportsStreaming: true,
	},
	"gemini-2.0-flash-lite": {
		ID:                "gemini-2.0-flash-lite",
		DisplayName:       "Gemini 2.0 Flash-Lite",
		Description:       "Cost-optimized variant for high-volume workloads.",
		InputTokenLimit:   1048576,
		OutputTokenLimit:  8192,
		SupportsStreaming: true,
	},
	"gemini-1.5-pro": {
		ID:                "gemini-1.5-pro",
		DisplayName:       "Gemini 1.5 Pro",
		Description:       "Long-context model for complex reasoning tasks.",
		InputTokenLimit:   2097152,
		OutputTokenLimit:  8192,
		SupportsStreaming: true,
	},
	"gemini-1.5-flash": {
		ID:                "gemini-1.5-flash",
		DisplayName:       "Gemini 1.5 Flash",
		Description:       "Previous-generation fast model.",
		InputTokenLimit:   1048576,
		OutputTokenLimit:  8192,
		SupportsStreaming: true,
	},
	"gemini-1.5-flash-8b": {
		ID:                "gemini-1.5-flash-8b",
		DisplayName:       "Gemini 1.5 Flash-8B",
		Description:       "Small model for simple, latency-sensitive tasks.",
		InputTokenLimit:   1048576,
		OutputTokenLimit:  8192,
		SupportsStreaming: true,
	},
}

// Default returns the model identifier used when none is selected.
func Default() string { return defaultModelID }

// List returns the menu sorted by identifier.
func List() []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Lookup resolves a model identifier to its entry. The resource-style
// "models/" prefix used by the REST surface is accepted and stripped.
func Lookup(id string) (Entry, error) {
	norm := Normalize(id)
	if norm == "" {
		return Entry{}, fmt.Errorf("%w: empty identifier", ErrUnknownModel)
	}
	e, ok := entries[norm]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrUnknownModel, norm)
	}
	return e, nil
}

// Normalize trims whitespace and the optional "models/" resource prefix.
func Normalize(id string) string {
	return strings.TrimPrefix(strings.TrimSpace(id), "models/")
}
