package chat

import (
	"errors"
	"fmt"
	"strings"
)

// Gemma control tokens.
const (
	TokenBOS        = "<bos>"
	TokenEOS        = "<eos>"
	TokenPad        = "<pad>"
	TokenStartTurn  = "<start_of_turn>"
	TokenEndTurn    = "<end_of_turn>"
	TokenStartImage = "<start_of_image>"
	TokenEndImage   = "<end_of_image>"
)

var specialTokens = []string{TokenBOS, TokenEOS, TokenPad, TokenStartTurn, TokenEndTurn, TokenStartImage, TokenEndImage}

// ErrImagesUnsupported is returned when rendering image parts for a text-only runtime.
var ErrImagesUnsupported = errors.New("image inputs are not supported by this runtime")

// GemmaTemplate renders conversations the way Gemma's chat template does:
// the system instruction is folded into the first user turn, assistant turns
// are tagged "model", and a model turn opener is appended for generation.
type GemmaTemplate struct {
	// BOS prefixes the prompt with <bos>. Leave false when the runtime's
	// tokenizer adds it.
	BOS bool
}

// Render returns the prompt text for c.
func (g GemmaTemplate) Render(c Conversation) (string, error) {
	if c.HasImages() {
		return "", ErrImagesUnsupported
	}
	turns := c.WithoutSystem()
	if len(turns) == 0 {
		return "", fmt.Errorf("conversation has no user turn")
	}
	var b strings.Builder
	if g.BOS {
		b.WriteString(TokenBOS)
	}
	prefix := c.System()
	if prefix != "" {
		prefix += "\n\n"
	}
	for i, t := range turns {
		role := string(t.Role)
		if t.Role == RoleAssistant {
			role = "model"
		}
		b.WriteString(TokenStartTurn)
		b.WriteString(role)
		b.WriteByte('\n')
		if i == 0 {
			b.WriteString(prefix)
		}
		b.WriteString(strings.TrimSpace(t.Text()))
		b.WriteString(TokenEndTurn)
		b.WriteByte('\n')
	}
	b.WriteString(TokenStartTurn)
	b.WriteString("model\n")
	return b.String(), nil
}

// StopSequences returns the strings that end a Gemma model turn.
func (GemmaTemplate) StopSequences() []string { return []string{TokenEndTurn, TokenEOS} }

// Clean decodes raw runtime output into the reply text: anything up to the
// last model turn opener is dropped, the reply ends at the first end-of-turn
// marker, and remaining control tokens are removed.
func Clean(raw string) string {
	s := raw
	opener := TokenStartTurn + "model\n"
	if i := strings.LastIndex(s, opener); i >= 0 {
		s = s[i+len(opener):]
	}
	if i := strings.Index(s, TokenEndTurn); i >= 0 {
		s = s[:i]
	}
	for _, tok := range specialTokens {
		s = strings.ReplaceAll(s, tok, "")
	}
	return strings.TrimSpace(s)
}
