// Package gemini runs generation against Gemma hosted on the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"gemmad/internal/chat"
	"gemmad/internal/manager"
)

// Models is the subset of genai.Models used here.
type Models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content,
		config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Options configures the backend.
type Options struct {
	APIKey string
	// Model is the Gemini API model id; defaults to the ModelSpec name
	// without its org prefix (google/gemma-3-4b-it → gemma-3-4b-it).
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	// Models overrides the API client, for tests.
	Models Models
}

// Backend implements manager.Backend.
type Backend struct {
	opts Options
}

// New returns a Gemini API backend.
func New(opts Options) *Backend { return &Backend{opts: opts} }

func (*Backend) Name() string { return "genai" }
func (*Backend) Local() bool  { return false }

func (b *Backend) Open(ctx context.Context, spec manager.ModelSpec) (manager.Model, manager.Processor, error) {
	name := b.opts.Model
	if name == "" {
		name = spec.Name
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
	}
	models := b.opts.Models
	if models == nil {
		if strings.TrimSpace(b.opts.APIKey) == "" {
			return nil, nil, errors.New("genai backend: GEMINI_API_KEY is not set")
		}
		cfg := &genai.ClientConfig{
			APIKey:     b.opts.APIKey,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: b.opts.HTTPClient,
		}
		if b.opts.BaseURL != "" {
			cfg.HTTPOptions = genai.HTTPOptions{BaseURL: b.opts.BaseURL}
		}
		client, err := genai.NewClient(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("genai client: %w", err)
		}
		models = client.Models
	}
	return &model{models: models, name: name}, manager.NewMessageProcessor(false), nil
}

type model struct {
	models Models
	name   string
}

func (m *model) Generate(ctx context.Context, in manager.Input, params manager.GenerateParams) (manager.FinalResult, error) {
	cfg := &genai.GenerateContentConfig{MaxOutputTokens: int32(params.MaxTokens)}
	if params.Temperature > 0 {
		cfg.Temperature = genai.Ptr(params.Temperature)
	}
	if params.TopP > 0 {
		cfg.TopP = genai.Ptr(params.TopP)
	}
	if params.TopK > 0 {
		cfg.TopK = genai.Ptr(float32(params.TopK))
	}
	resp, err := m.models.GenerateContent(ctx, m.name, contents(in.Conversation), cfg)
	if err != nil {
		if ctx.Err() != nil {
			return manager.FinalResult{}, ctx.Err()
		}
		return manager.FinalResult{}, fmt.Errorf("generate content: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return manager.FinalResult{}, errors.New("generate content: no candidates returned")
	}
	res := manager.FinalResult{
		Content:      resp.Text(),
		FinishReason: finishReason(resp.Candidates[0].FinishReason),
	}
	if u := resp.UsageMetadata; u != nil {
		res.Usage = manager.Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	return res, nil
}

func (*model) Close() error { return nil }

// contents folds the system instruction into the first user turn; Gemma
// models on the Gemini API reject a separate system instruction.
func contents(conv chat.Conversation) []*genai.Content {
	system := conv.System()
	out := make([]*genai.Content, 0, len(conv))
	for _, t := range conv.WithoutSystem() {
		text := t.Text()
		role := genai.Role(genai.RoleUser)
		if t.Role == chat.RoleAssistant {
			role = genai.RoleModel
		} else if system != "" {
			text = system + "\n\n" + text
			system = ""
		}
		out = append(out, genai.NewContentFromText(text, role))
	}
	return out
}

func finishReason(r genai.FinishReason) string {
	switch r {
	case genai.FinishReasonStop, "":
		return "stop"
	case genai.FinishReasonMaxTokens:
		return "length"
	default:
		return strings.ToLower(string(r))
	}
}
