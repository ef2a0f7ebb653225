//go:build llama

package manager

import (
	"context"
	"errors"
	"strings"
	"sync"

	llama "github.com/go-skynet/go-llama.cpp"

	"gemmad/internal/chat"
)

// llamaBuilt indicates this binary was compiled with real llama support.
const llamaBuilt = true

// LlamaOptions configures the in-process llama.cpp runtime.
type LlamaOptions struct {
	ContextSize int
	Threads     int
	GPULayers   int
}

// llamaBackend loads GGUF weights in-process through go-llama.cpp.
type llamaBackend struct {
	opts LlamaOptions
}

// NewLlamaBackend returns the in-process llama.cpp backend.
func NewLlamaBackend(opts LlamaOptions) Backend { return &llamaBackend{opts: opts} }

func (*llamaBackend) Name() string { return "llama" }
func (*llamaBackend) Local() bool  { return true }

func (b *llamaBackend) Open(ctx context.Context, spec ModelSpec) (Model, Processor, error) {
	if strings.TrimSpace(spec.Path) == "" {
		return nil, nil, errors.New("model path is empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	mo := []llama.ModelOption{llama.SetContext(b.opts.ContextSize)}
	if b.opts.GPULayers > 0 {
		mo = append(mo, llama.SetGPULayers(b.opts.GPULayers))
	}
	m, err := llama.New(spec.Path, mo...)
	if err != nil {
		return nil, nil, err
	}
	// The GGUF tokenizer adds <bos> itself.
	return &llamaModel{model: m, threads: b.opts.Threads}, NewTemplateProcessor(chat.GemmaTemplate{}), nil
}

// llamaModel owns the loaded weights. go-llama.cpp keeps a single token
// callback per model, so calls are serialized.
type llamaModel struct {
	mu      sync.Mutex
	model   *llama.LLama
	threads int
}

func (s *llamaModel) Generate(ctx context.Context, in Input, params GenerateParams) (FinalResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model == nil {
		return FinalResult{}, errors.New("llama model not initialized")
	}

	budget := newTokenBudget(params.MaxTokens)
	s.model.SetTokenCallback(func(string) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		return budget.Take()
	})
	text, err := s.model.Predict(in.Prompt, predictOptions(params, s.threads)...)
	if ctx.Err() != nil {
		return FinalResult{}, ctx.Err()
	}
	if err != nil {
		return FinalResult{}, err
	}
	// Prompt token counts are not exposed through the callback API.
	n := budget.Produced()
	return FinalResult{
		Content:      text,
		Usage:        Usage{CompletionTokens: n, TotalTokens: n},
		FinishReason: budget.FinishReason(),
	}, nil
}

func (s *llamaModel) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model != nil {
		s.model.Free()
		s.model = nil
	}
	return nil
}

func zn(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func zf(v, def float32) float32 {
	if v > 0 {
		return v
	}
	return def
}

// predictOptions converts generation params into go-llama.cpp options.
func predictOptions(params GenerateParams, threads int) []llama.PredictOption {
	po := []llama.PredictOption{
		llama.SetTokens(max(1, params.MaxTokens)),
		llama.SetThreads(max(1, threads)),
		llama.SetTopP(zf(params.TopP, llama.DefaultOptions.TopP)),
		llama.SetTopK(zn(params.TopK, llama.DefaultOptions.TopK)),
		llama.SetTemperature(zf(params.Temperature, llama.DefaultOptions.Temperature)),
		llama.SetPenalty(llama.DefaultOptions.Penalty),
	}
	if params.Seed != 0 {
		po = append(po, llama.SetSeed(params.Seed))
	}
	if len(params.Stop) > 0 {
		po = append(po, llama.SetStopWords(params.Stop...))
	}
	return po
}
