package core

// Part represents a polymorphic segment of role-based content. Concrete part
// types implement the unexported isPart marker enabling a closed set.
type Part interface{ isPart() }

// TextPart is a plain text content segment.
type TextPart struct {
	Text     string         // Plain UTF-8 text
	Metadata map[string]any // Optional producer-provided metadata
}

// isPart implements the Part interface for TextPart.
func (TextPart) isPart() {}

// InlineDataPart is an inline media segment (image bytes, audio, ...)
// delivered alongside text. Data is raw bytes; providers base64-encode on
// the wire where required.
type InlineDataPart struct {
	MIMEType string
	Data     []byte
	Metadata map[string]any
}

// isPart implements the Part interface for InlineDataPart.
func (InlineDataPart) isPart() {}

// Content holds role + ordered parts.
type Content struct {
	Role  string `json:"role,omitempty"` // Conversation role (user, model, system)
	Parts []Part `json:"parts"`          // Ordered heterogeneous parts
}

// Conversation roles understood by providers.
const (
	RoleUser   = "user"
	RoleModel  = "model"
	RoleSystem = "system"
)

// UserText builds a single-part user content from a prompt string.
func UserText(text string) Content {
	return Content{Role: RoleUser, Parts: []Part{TextPart{Text: text}}}
}

// ModelText builds a single-part model content. Used by providers and mocks
// when assembling responses.
func ModelText(text string) Content {
	return Content{Role: RoleModel, Parts: []Part{TextPart{Text: text}}}
}

// Text concatenates the text parts of a content in order, skipping
// non-text segments.
func Text(c Content) string {
	var out string
	for _, p := range c.Parts {
		if tp, ok := p.(TextPart); ok {
			out += tp.Text
		}
	}
	return out
}
