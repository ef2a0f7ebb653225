package types

// Model describes the model this process is configured to serve and where its
// weights came from.
type Model struct {
	// Identifier reported to clients.
	// example: google/gemma-3-4b-it
	Name string `json:"name" example:"google/gemma-3-4b-it"`
	// Hub repository holding the weights.
	// example: google/gemma-3-4b-it-qat-q4_0-gguf
	Repo string `json:"repo,omitempty" example:"google/gemma-3-4b-it-qat-q4_0-gguf"`
	// Weights file inside the repository.
	// example: gemma-3-4b-it-q4_0.gguf
	File string `json:"file,omitempty" example:"gemma-3-4b-it-q4_0.gguf"`
	// Absolute path to the cached weights file on disk.
	// example: /cache/models--google--gemma-3-4b-it-qat-q4_0-gguf/snapshots/main/gemma-3-4b-it-q4_0.gguf
	Path string `json:"path,omitempty"`
	// Quantization level or variant string.
	// example: q4_0
	Quant string `json:"quant,omitempty" example:"q4_0"`
}
