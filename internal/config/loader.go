package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified"; Defaults fills them in and Merge only
// copies non-zero values.
type Config struct {
	Addr      string `json:"addr" yaml:"addr" toml:"addr" split_words:"true"`
	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level" split_words:"true"`
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format" split_words:"true"`

	// Model identity and weights acquisition.
	ModelName    string `json:"model_name" yaml:"model_name" toml:"model_name" split_words:"true"`
	Backend      string `json:"backend" yaml:"backend" toml:"backend" split_words:"true"`
	Quantization string `json:"quantization" yaml:"quantization" toml:"quantization" split_words:"true"`
	HubRepo      string `json:"hub_repo" yaml:"hub_repo" toml:"hub_repo" split_words:"true"`
	HubFile      string `json:"hub_file" yaml:"hub_file" toml:"hub_file" split_words:"true"`
	HubRevision  string `json:"hub_revision" yaml:"hub_revision" toml:"hub_revision" split_words:"true"`
	HubToken     string `json:"hub_token" yaml:"hub_token" toml:"hub_token" envconfig:"HF_TOKEN"`
	HubOffline   bool   `json:"hub_offline" yaml:"hub_offline" toml:"hub_offline" envconfig:"HF_HUB_OFFLINE"`
	CacheDir     string `json:"cache_dir" yaml:"cache_dir" toml:"cache_dir" split_words:"true"`

	// SkipAcceleratorCheck disables the startup GPU probe. Development only.
	SkipAcceleratorCheck bool `json:"skip_accelerator_check" yaml:"skip_accelerator_check" toml:"skip_accelerator_check" split_words:"true"`

	// Prompt construction and generation.
	AgentName    string  `json:"agent_name" yaml:"agent_name" toml:"agent_name" split_words:"true"`
	SystemPrompt string  `json:"system_prompt" yaml:"system_prompt" toml:"system_prompt" split_words:"true"`
	MaxNewTokens int     `json:"max_new_tokens" yaml:"max_new_tokens" toml:"max_new_tokens" split_words:"true"`
	Temperature  float64 `json:"temperature" yaml:"temperature" toml:"temperature"`
	TopP         float64 `json:"top_p" yaml:"top_p" toml:"top_p" split_words:"true"`
	TopK         int     `json:"top_k" yaml:"top_k" toml:"top_k" split_words:"true"`

	// In-process llama.cpp runtime.
	ContextSize int `json:"context_size" yaml:"context_size" toml:"context_size" split_words:"true"`
	Threads     int `json:"threads" yaml:"threads" toml:"threads"`
	GPULayers   int `json:"gpu_layers" yaml:"gpu_layers" toml:"gpu_layers" split_words:"true"`

	// Remote runtimes.
	ServerURL    string `json:"server_url" yaml:"server_url" toml:"server_url" split_words:"true"`
	ServerAPIKey string `json:"server_api_key" yaml:"server_api_key" toml:"server_api_key" split_words:"true"`
	ServerModel  string `json:"server_model" yaml:"server_model" toml:"server_model" split_words:"true"`
	GenAIAPIKey  string `json:"genai_api_key" yaml:"genai_api_key" toml:"genai_api_key" envconfig:"GEMINI_API_KEY"`

	// Admission and HTTP limits.
	MaxQueueDepth          int      `json:"max_queue_depth" yaml:"max_queue_depth" toml:"max_queue_depth" split_words:"true"`
	MaxConcurrency         int      `json:"max_concurrency" yaml:"max_concurrency" toml:"max_concurrency" split_words:"true"`
	MaxWaitMs              int      `json:"max_wait_ms" yaml:"max_wait_ms" toml:"max_wait_ms" split_words:"true"`
	GenerateTimeoutSeconds int      `json:"generate_timeout_seconds" yaml:"generate_timeout_seconds" toml:"generate_timeout_seconds" split_words:"true"`
	MaxBodyBytes           int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes" split_words:"true"`
	CORSEnabled            bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled" envconfig:"CORS_ENABLED"`
	CORSOrigins            []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins" envconfig:"CORS_ORIGINS"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// Merge returns base with every non-zero field of over copied on top.
func Merge(base, over Config) Config {
	out := base
	dst := reflect.ValueOf(&out).Elem()
	src := reflect.ValueOf(over)
	for i := 0; i < src.NumField(); i++ {
		if f := src.Field(i); !f.IsZero() {
			dst.Field(i).Set(f)
		}
	}
	return out
}

// Resolve builds the effective configuration: defaults, then the optional
// config file, then environment overrides.
func Resolve(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		fc, err := Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = Merge(cfg, fc)
	}
	ec, err := FromEnv()
	if err != nil {
		return cfg, err
	}
	return Merge(cfg, ec), nil
}
