package manager

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"gemmad/internal/chat"
	"gemmad/pkg/types"
)

// Generate answers one request with the loaded model. It fails fast with
// ErrModelUnavailable when no model is loaded, without touching the runtime.
// Text is passed through as given; an empty prompt is valid input.
// The token budget is min(req.MaxTokens, MaxNewTokens); zero means the cap.
func (m *Manager) Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error) {
	model, proc, state := m.handles()
	if model == nil {
		return types.GenerateResponse{}, ErrModelUnavailable(state)
	}
	if req.MaxTokens < 0 {
		return types.GenerateResponse{}, ErrInvalidRequest("max_tokens must not be negative")
	}

	conv := chat.New(m.cfg.SystemPrompt, req.Text, req.Images...)
	in, err := proc.Encode(conv)
	if err != nil {
		if errors.Is(err, chat.ErrImagesUnsupported) {
			return types.GenerateResponse{}, ErrInvalidRequest(err.Error())
		}
		return types.GenerateResponse{}, err
	}

	release, err := m.beginGeneration(ctx)
	if err != nil {
		return types.GenerateResponse{}, err
	}
	defer release()

	params := GenerateParams{
		MaxTokens:   m.budget(req.MaxTokens),
		Temperature: m.cfg.Temperature,
		TopP:        m.cfg.TopP,
		TopK:        m.cfg.TopK,
		Stop:        in.Stop,
	}
	start := time.Now()
	res, err := model.Generate(ctx, in, params)
	dur := time.Since(start)
	if err != nil {
		generateDuration.WithLabelValues("error").Observe(dur.Seconds())
		m.log.Error().Err(err).Dur("duration", dur).Msg("generation failed")
		return types.GenerateResponse{}, err
	}
	if err := checkBudget(res, params.MaxTokens); err != nil {
		generateDuration.WithLabelValues("error").Observe(dur.Seconds())
		m.log.Error().Err(err).Dur("duration", dur).Msg("generation rejected")
		return types.GenerateResponse{}, err
	}
	generateDuration.WithLabelValues("ok").Observe(dur.Seconds())
	generateTokens.WithLabelValues("prompt").Add(float64(res.Usage.PromptTokens))
	generateTokens.WithLabelValues("completion").Add(float64(res.Usage.CompletionTokens))
	m.generations.Add(1)

	finish := res.FinishReason
	if finish == "" {
		finish = "stop"
	}
	resp := types.GenerateResponse{
		GeneratedText: proc.Decode(res.Content),
		ID:            uuid.NewString(),
		ModelName:     m.cfg.ModelName,
		FinishReason:  finish,
		Usage: &types.Usage{
			PromptTokens:     res.Usage.PromptTokens,
			CompletionTokens: res.Usage.CompletionTokens,
			TotalTokens:      res.Usage.TotalTokens,
		},
	}
	m.log.Debug().
		Str("id", resp.ID).
		Int("max_tokens", params.MaxTokens).
		Int("completion_tokens", res.Usage.CompletionTokens).
		Dur("duration", dur).
		Msg("generation complete")
	m.publish(EventGenerateDone, map[string]any{"id": resp.ID, "finish_reason": finish})
	return resp, nil
}

func (m *Manager) budget(requested int) int {
	if requested <= 0 || requested > m.cfg.MaxNewTokens {
		return m.cfg.MaxNewTokens
	}
	return requested
}
