package types

// GenerateRequest is the payload accepted by POST /generate.
type GenerateRequest struct {
	// Required prompt text.
	// example: Nondimensionalize dx/dt = r x (1 - x/K).
	Text string `json:"text" example:"Nondimensionalize dx/dt = r x (1 - x/K)."`
	// Optional cap on new tokens. Values above the server maximum are clamped.
	// example: 256
	MaxTokens int `json:"max_tokens,omitempty" example:"256"`
	// Optional image URLs attached to the user turn (multimodal backends only).
	// example: ["https://example.com/cat.jpeg"]
	Images []string `json:"images,omitempty"`
}

// GenerateResponse is returned by POST /generate on success.
type GenerateResponse struct {
	// Decoded model output. Contains only the newly generated text.
	GeneratedText string `json:"generated_text"`
	// Identifier for this generation.
	// example: 1f0c1e4e-8a53-4c4e-9b0f-2f1d7f0a9a11
	ID string `json:"id,omitempty"`
	// Configured model identifier that served the request.
	// example: google/gemma-3-4b-it
	ModelName string `json:"model_name,omitempty" example:"google/gemma-3-4b-it"`
	// Why generation stopped (stop, length).
	// example: stop
	FinishReason string `json:"finish_reason,omitempty" example:"stop"`
	// Token accounting, when the runtime reports it.
	Usage *Usage `json:"usage,omitempty"`
}

// Usage contains token accounting for one generation.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// HealthResponse is returned by GET /health. The endpoint always answers 200;
// Status distinguishes a loaded model from a degraded process.
type HealthResponse struct {
	// ok when model and processor are loaded, error otherwise.
	// example: ok
	Status string `json:"status" example:"ok"`
	// Configured model identifier.
	// example: google/gemma-3-4b-it
	ModelName string `json:"model_name" example:"google/gemma-3-4b-it"`
	// Reason the model is unavailable.
	// example: Model not loaded. Check server logs.
	Detail string `json:"detail,omitempty" example:"Model not loaded. Check server logs."`
}

// Health status values.
const (
	HealthOK    = "ok"
	HealthError = "error"
)

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// Same message under the key FastAPI-style clients read.
	// example: invalid JSON body
	Detail string `json:"detail" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Load state: unset, loading, loaded, failed.
	// example: loaded
	State string `json:"state" example:"loaded"`
	// Configured model identifier.
	// example: google/gemma-3-4b-it
	ModelName string `json:"model_name" example:"google/gemma-3-4b-it"`
	// Runtime backend name.
	// example: llama
	Backend string `json:"backend" example:"llama"`
	// Weight quantization variant.
	// example: q4_0
	Quantization string `json:"quantization,omitempty" example:"q4_0"`
	// Weights provenance for local backends.
	Model *Model `json:"model,omitempty"`
	// Accelerator description reported by the device probe.
	// example: cuda: NVIDIA L4
	Device string `json:"device,omitempty" example:"cuda: NVIDIA L4"`
	// Failure reason when State is failed.
	Error string `json:"error,omitempty"`
	// Unix seconds when the model finished loading.
	// example: 1700000000
	LoadedAt int64 `json:"loaded_at_unix,omitempty" example:"1700000000"`
	// Load duration in milliseconds.
	// example: 8421
	LoadDurationMs int64 `json:"load_duration_ms,omitempty" example:"8421"`
	// Requests waiting for or holding a generation slot.
	// example: 2
	QueueLen int `json:"queue_len" example:"2"`
	// Generations currently running on the accelerator.
	// example: 1
	Inflight int `json:"inflight" example:"1"`
	// Maximum queued requests before backpressure triggers.
	// example: 32
	MaxQueueDepth int `json:"max_queue_depth" example:"32"`
	// Maximum concurrent generations.
	// example: 1
	MaxConcurrency int `json:"max_concurrency" example:"1"`
	// Upper bound on new tokens per request.
	// example: 1200
	MaxNewTokens int `json:"max_new_tokens" example:"1200"`
	// Generations completed since start.
	// example: 12
	GenerationsTotal uint64 `json:"generations_total" example:"12"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
