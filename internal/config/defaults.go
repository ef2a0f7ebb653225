package config

import (
	"fmt"
	"strings"
)

// Built-in defaults.
const (
	DefaultAddr         = ":8000"
	DefaultModelName    = "google/gemma-3-4b-it"
	DefaultBackend      = "llama"
	DefaultQuantization = "q4_0"
	DefaultHubRevision  = "main"
	DefaultCacheDir     = "/cache"
	DefaultAgentName    = "DiffEQGemma"
	DefaultMaxNewTokens = 1200
	DefaultContextSize  = 8192
	DefaultMaxQueue     = 32
	DefaultMaxWaitMs    = 30000
	DefaultMaxBodyBytes = 1 << 20
)

// Backend names.
const (
	BackendLlama  = "llama"
	BackendOpenAI = "openai"
	BackendGenAI  = "genai"
)

// systemPromptLines describe the agent persona; %[1]s is the agent name.
var systemPromptLines = []string{
	"%[1]s is a helpful assistant, bioengineer, and expert python coder.",
	"%[1]s carefully examines code for correctness and numerical computation best practices.",
	"%[1]s takes pride in ensuring the user's request is fulfilled in a correct and straightforward manner.",
	"%[1]s is an expert in correctly solving, nondimensionalizing, and describing systems using differential equations.",
	"%[1]s relaxes and thinks deeply before correctly executing mathematical and coding tasks.",
}

// PersonaPrompt renders the default system instruction for the given agent name.
func PersonaPrompt(agent string) string {
	parts := make([]string, len(systemPromptLines))
	for i, l := range systemPromptLines {
		parts[i] = fmt.Sprintf(l, agent)
	}
	return strings.Join(parts, " ")
}

// weightsByQuant maps a quantization variant of the default model to the hub
// repository and file carrying it.
var weightsByQuant = map[string][2]string{
	"q4_0":   {"google/gemma-3-4b-it-qat-q4_0-gguf", "gemma-3-4b-it-q4_0.gguf"},
	"q4_k_m": {"unsloth/gemma-3-4b-it-GGUF", "gemma-3-4b-it-Q4_K_M.gguf"},
	"q8_0":   {"unsloth/gemma-3-4b-it-GGUF", "gemma-3-4b-it-Q8_0.gguf"},
	"bf16":   {"unsloth/gemma-3-4b-it-GGUF", "gemma-3-4b-it-BF16.gguf"},
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Addr:           DefaultAddr,
		LogLevel:       "info",
		LogFormat:      "json",
		ModelName:      DefaultModelName,
		Backend:        DefaultBackend,
		Quantization:   DefaultQuantization,
		HubRevision:    DefaultHubRevision,
		CacheDir:       DefaultCacheDir,
		AgentName:      DefaultAgentName,
		MaxNewTokens:   DefaultMaxNewTokens,
		ContextSize:    DefaultContextSize,
		MaxQueueDepth:  DefaultMaxQueue,
		MaxConcurrency: 1,
		MaxWaitMs:      DefaultMaxWaitMs,
		MaxBodyBytes:   DefaultMaxBodyBytes,
	}
}

// Weights returns the hub repository and file to fetch. Explicit hub_repo and
// hub_file win; otherwise the quantization variant selects them.
func (c Config) Weights() (repo, file string, err error) {
	if c.HubRepo != "" && c.HubFile != "" {
		return c.HubRepo, c.HubFile, nil
	}
	q := strings.ToLower(strings.TrimSpace(c.Quantization))
	w, ok := weightsByQuant[q]
	if !ok {
		return "", "", fmt.Errorf("unknown quantization %q (want one of q4_0, q4_k_m, q8_0, bf16)", c.Quantization)
	}
	repo, file = w[0], w[1]
	if c.HubRepo != "" {
		repo = c.HubRepo
	}
	if c.HubFile != "" {
		file = c.HubFile
	}
	return repo, file, nil
}

// EffectiveSystemPrompt returns the configured system prompt, or the persona
// prompt for the configured agent name.
func (c Config) EffectiveSystemPrompt() string {
	if s := strings.TrimSpace(c.SystemPrompt); s != "" {
		return s
	}
	agent := c.AgentName
	if agent == "" {
		agent = DefaultAgentName
	}
	return PersonaPrompt(agent)
}

// Validate checks the configuration for values the service cannot run with.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendLlama:
		if _, _, err := c.Weights(); err != nil {
			return err
		}
		if c.CacheDir == "" {
			return fmt.Errorf("cache_dir is required for backend %q", c.Backend)
		}
	case BackendOpenAI:
		if c.ServerURL == "" {
			return fmt.Errorf("server_url is required for backend %q", c.Backend)
		}
	case BackendGenAI:
	default:
		return fmt.Errorf("unknown backend %q (want llama, openai or genai)", c.Backend)
	}
	if c.ModelName == "" {
		return fmt.Errorf("model_name is required")
	}
	if c.MaxNewTokens <= 0 {
		return fmt.Errorf("max_new_tokens must be positive, got %d", c.MaxNewTokens)
	}
	if c.MaxConcurrency < 0 || c.MaxQueueDepth < 0 {
		return fmt.Errorf("max_concurrency and max_queue_depth must not be negative")
	}
	if c.MaxConcurrency > 0 && c.MaxQueueDepth > 0 && c.MaxQueueDepth < c.MaxConcurrency {
		return fmt.Errorf("max_queue_depth (%d) must be >= max_concurrency (%d)", c.MaxQueueDepth, c.MaxConcurrency)
	}
	return nil
}
