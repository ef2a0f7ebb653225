// Package openaicompat runs generation against an external OpenAI-compatible
// chat completions server (llama-server, vLLM, TGI) hosting Gemma.
package openaicompat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"gemmad/internal/chat"
	"gemmad/internal/manager"
)

// Options configures the backend.
type Options struct {
	// BaseURL of the server, including the /v1 suffix.
	BaseURL string
	APIKey  string
	// Model is the name sent in requests; defaults to the ModelSpec name.
	Model string
	// Images enables image parts for vision-capable servers.
	Images     bool
	HTTPClient *http.Client
	// SkipProbe disables the model listing check in Open.
	SkipProbe bool
}

// Backend implements manager.Backend.
type Backend struct {
	opts Options
}

// New returns an OpenAI-compatible backend.
func New(opts Options) *Backend { return &Backend{opts: opts} }

func (*Backend) Name() string { return "openai" }
func (*Backend) Local() bool  { return false }

// Open builds the client and, unless SkipProbe is set, lists the server's
// models so an unreachable server fails the load.
func (b *Backend) Open(ctx context.Context, spec manager.ModelSpec) (manager.Model, manager.Processor, error) {
	if strings.TrimSpace(b.opts.BaseURL) == "" {
		return nil, nil, errors.New("openai backend: base url is empty")
	}
	name := b.opts.Model
	if name == "" {
		name = spec.Name
	}
	opts := []option.RequestOption{
		option.WithBaseURL(b.opts.BaseURL),
		option.WithMaxRetries(0),
	}
	if b.opts.APIKey != "" {
		opts = append(opts, option.WithAPIKey(b.opts.APIKey))
	} else {
		opts = append(opts, option.WithAPIKey("none"))
	}
	if b.opts.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(b.opts.HTTPClient))
	}
	client := openai.NewClient(opts...)
	if !b.opts.SkipProbe {
		if _, err := client.Models.List(ctx); err != nil {
			return nil, nil, manager.ErrDependencyUnavailable(fmt.Sprintf("openai server unreachable: %v", err))
		}
	}
	return &model{client: client, name: name}, manager.NewMessageProcessor(b.opts.Images), nil
}

type model struct {
	client openai.Client
	name   string
}

func (m *model) Generate(ctx context.Context, in manager.Input, params manager.GenerateParams) (manager.FinalResult, error) {
	req := openai.ChatCompletionNewParams{
		Model:     shared.ChatModel(m.name),
		Messages:  messages(in.Conversation),
		MaxTokens: openai.Int(int64(params.MaxTokens)),
	}
	if params.Temperature > 0 {
		req.Temperature = openai.Float(float64(params.Temperature))
	}
	if params.TopP > 0 {
		req.TopP = openai.Float(float64(params.TopP))
	}
	if params.Seed != 0 {
		req.Seed = openai.Int(int64(params.Seed))
	}
	resp, err := m.client.Chat.Completions.New(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return manager.FinalResult{}, ctx.Err()
		}
		return manager.FinalResult{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return manager.FinalResult{}, errors.New("chat completion: no choices returned")
	}
	choice := resp.Choices[0]
	return manager.FinalResult{
		Content: choice.Message.Content,
		Usage: manager.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
		FinishReason: string(choice.FinishReason),
	}, nil
}

func (*model) Close() error { return nil }

// messages converts a conversation to chat completion messages.
func messages(conv chat.Conversation) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(conv))
	for _, t := range conv {
		switch t.Role {
		case chat.RoleSystem:
			out = append(out, openai.ChatCompletionMessageParamUnion{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{OfString: openai.String(t.Text())},
				},
			})
		case chat.RoleAssistant:
			out = append(out, openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Content: openai.ChatCompletionAssistantMessageParamContentUnion{OfString: openai.String(t.Text())},
				},
			})
		default:
			out = append(out, openai.ChatCompletionMessageParamUnion{
				OfUser: &openai.ChatCompletionUserMessageParam{Content: userContent(t)},
			})
		}
	}
	return out
}

func userContent(t chat.Turn) openai.ChatCompletionUserMessageParamContentUnion {
	hasImage := false
	for _, p := range t.Parts {
		if p.Type == chat.PartImage {
			hasImage = true
			break
		}
	}
	if !hasImage {
		return openai.ChatCompletionUserMessageParamContentUnion{OfString: openai.String(t.Text())}
	}
	parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(t.Parts))
	for _, p := range t.Parts {
		switch p.Type {
		case chat.PartImage:
			parts = append(parts, openai.ChatCompletionContentPartUnionParam{
				OfImageURL: &openai.ChatCompletionContentPartImageParam{
					ImageURL: openai.ChatCompletionContentPartImageImageURLParam{URL: p.URL},
				},
			})
		default:
			parts = append(parts, openai.ChatCompletionContentPartUnionParam{
				OfText: &openai.ChatCompletionContentPartTextParam{Text: p.Text},
			})
		}
	}
	return openai.ChatCompletionUserMessageParamContentUnion{OfArrayOfContentParts: parts}
}
