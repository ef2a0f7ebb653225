//go:build !llama

package manager

import "context"

// llamaBuilt is false when the binary lacks the 'llama' build tag.
const llamaBuilt = false

// LlamaOptions configures the in-process llama.cpp runtime.
type LlamaOptions struct {
	ContextSize int
	Threads     int
	GPULayers   int
}

// llamaBackend is a stub that refuses to open a model without the 'llama'
// build tag. Default builds stay CGO-free.
type llamaBackend struct{}

// NewLlamaBackend returns a backend whose Open reports the runtime as
// unavailable.
func NewLlamaBackend(LlamaOptions) Backend { return llamaBackend{} }

func (llamaBackend) Name() string { return "llama" }
func (llamaBackend) Local() bool  { return true }

func (llamaBackend) Open(context.Context, ModelSpec) (Model, Processor, error) {
	return nil, nil, ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
}
