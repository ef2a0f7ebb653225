// Package chat builds the role-tagged message list sent to the model and
// renders it into Gemma's native turn format.
package chat

import "strings"

// Role tags a turn in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// PartType distinguishes content blocks within a turn.
type PartType string

const (
	PartText  PartType = "text"
	PartImage PartType = "image"
)

// Part is one content block: text, or an image reference by URL.
type Part struct {
	Type PartType
	Text string
	URL  string
}

// Turn is a single role-tagged message.
type Turn struct {
	Role  Role
	Parts []Part
}

// Text joins the turn's text parts.
func (t Turn) Text() string {
	var b strings.Builder
	for _, p := range t.Parts {
		if p.Type == PartText {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// Conversation is an ordered message list.
type Conversation []Turn

// New builds the two-turn conversation used for every generate request: the
// system instruction followed by the user's text. Image URLs precede the text
// in the user turn. An empty system instruction is omitted.
func New(system, text string, images ...string) Conversation {
	var c Conversation
	if strings.TrimSpace(system) != "" {
		c = append(c, Turn{Role: RoleSystem, Parts: []Part{{Type: PartText, Text: system}}})
	}
	user := Turn{Role: RoleUser}
	for _, u := range images {
		if u = strings.TrimSpace(u); u != "" {
			user.Parts = append(user.Parts, Part{Type: PartImage, URL: u})
		}
	}
	user.Parts = append(user.Parts, Part{Type: PartText, Text: text})
	return append(c, user)
}

// HasImages reports whether any turn references an image.
func (c Conversation) HasImages() bool {
	for _, t := range c {
		for _, p := range t.Parts {
			if p.Type == PartImage {
				return true
			}
		}
	}
	return false
}

// System returns the joined system instruction, if any.
func (c Conversation) System() string {
	var parts []string
	for _, t := range c {
		if t.Role == RoleSystem {
			parts = append(parts, t.Text())
		}
	}
	return strings.Join(parts, "\n\n")
}

// WithoutSystem returns the non-system turns.
func (c Conversation) WithoutSystem() Conversation {
	out := make(Conversation, 0, len(c))
	for _, t := range c {
		if t.Role != RoleSystem {
			out = append(out, t)
		}
	}
	return out
}
