package manager

import (
	"context"

	"gemmad/internal/chat"
)

// Backend opens a model runtime together with its matching processor. Both
// are derived from the same ModelSpec so they stay compatible.
type Backend interface {
	// Name identifies the backend in status and logs.
	Name() string
	// Local reports whether weights are fetched from the hub and run on this
	// host's accelerator.
	Local() bool
	// Open loads the model. It is called once per process.
	Open(ctx context.Context, spec ModelSpec) (Model, Processor, error)
}

// LlamaBuilt reports whether this binary links llama.cpp.
func LlamaBuilt() bool { return llamaBuilt }

// ModelSpec identifies the weights to open.
type ModelSpec struct {
	// Name is the configured model identifier.
	Name string
	// Path is the local weights file (local backends only).
	Path  string
	Quant string
}

// Model is an opaque loaded model. Implementations must be safe for
// concurrent use; the admission layer bounds how many calls overlap.
type Model interface {
	// Generate produces new tokens for in. Content must hold only the newly
	// generated text, never the prompt. Implementations must return when ctx
	// is canceled and must not produce more than params.MaxTokens tokens.
	Generate(ctx context.Context, in Input, params GenerateParams) (FinalResult, error)
	// Close releases resources associated with the model.
	Close() error
}

// Processor converts between the message list and model-native input, and
// decodes model output back to reply text.
type Processor interface {
	Encode(conv chat.Conversation) (Input, error)
	Decode(raw string) string
}

// Input is the model-native form of a conversation. Text runtimes read
// Prompt; chat runtimes read Conversation.
type Input struct {
	Prompt       string
	Conversation chat.Conversation
	Stop         []string
}

// GenerateParams captures generation parameters passed to the runtime.
type GenerateParams struct {
	MaxTokens   int
	Temperature float32
	TopP        float32
	TopK        int
	Stop        []string
	Seed        int
}

// FinalResult summarizes one generation.
type FinalResult struct {
	Content      string
	Usage        Usage
	FinishReason string
}

// Usage contains token accounting.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// templateProcessor renders conversations into a Gemma prompt for runtimes
// that take raw text.
type templateProcessor struct {
	tmpl chat.GemmaTemplate
}

// NewTemplateProcessor returns a processor producing Gemma-formatted prompts.
func NewTemplateProcessor(tmpl chat.GemmaTemplate) Processor { return templateProcessor{tmpl: tmpl} }

func (p templateProcessor) Encode(conv chat.Conversation) (Input, error) {
	prompt, err := p.tmpl.Render(conv)
	if err != nil {
		return Input{}, err
	}
	return Input{Prompt: prompt, Conversation: conv, Stop: p.tmpl.StopSequences()}, nil
}

func (templateProcessor) Decode(raw string) string { return chat.Clean(raw) }

// messageProcessor hands the structured conversation to runtimes that apply
// the chat template themselves.
type messageProcessor struct {
	images bool
}

// NewMessageProcessor returns a processor passing conversations through.
// When images is false, conversations with image parts are rejected.
func NewMessageProcessor(images bool) Processor { return messageProcessor{images: images} }

func (p messageProcessor) Encode(conv chat.Conversation) (Input, error) {
	if !p.images && conv.HasImages() {
		return Input{}, chat.ErrImagesUnsupported
	}
	return Input{Conversation: conv}, nil
}

func (messageProcessor) Decode(raw string) string { return chat.Clean(raw) }
