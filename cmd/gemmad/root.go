package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"gemmad/internal/config"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

// app carries the resolved configuration and logger to subcommands.
type app struct {
	cfg config.Config
	log zerolog.Logger
}

func newRootCmd(a *app) *cobra.Command {
	var (
		cfgPath string
		envFile string
	)
	root := &cobra.Command{
		Use:           "gemmad",
		Short:         "Serve a Gemma model over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file (.yaml, .json or .toml)")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Dotenv file loaded before reading the environment")
	root.PersistentFlags().String("log-level", "", "Log level: debug|info|warn|error")
	root.PersistentFlags().String("log-format", "", "Log format: json|console|auto")
	root.PersistentFlags().String("model", "", "Model identifier reported by /health")
	root.PersistentFlags().String("backend", "", "Runtime backend: llama|openai|genai")
	root.PersistentFlags().String("quantization", "", "Weights variant: q4_0|q4_k_m|q8_0|bf16")
	root.PersistentFlags().String("cache-dir", "", "Model cache directory")
	root.PersistentFlags().String("hub-repo", "", "Hub repository holding the weights")
	root.PersistentFlags().String("hub-file", "", "Weights file within the repository")
	root.PersistentFlags().String("hub-revision", "", "Hub revision (branch, tag or commit)")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(envFile); err != nil {
			return err
		}
		cfg, err := config.Resolve(cfgPath)
		if err != nil {
			return err
		}
		cfg, err = applyFlags(cfg, cmd.Flags())
		if err != nil {
			return err
		}
		a.cfg = cfg
		a.log = newLogger(cfg, cmd.ErrOrStderr())
		return nil
	}

	serve := newServeCmd(a)
	root.AddCommand(serve, newFetchCmd(a), newListCmd(a), newProbeCmd(a), newVersionCmd(a))
	// Bare `gemmad` serves.
	root.Flags().AddFlagSet(serve.Flags())
	root.RunE = serve.RunE
	return root
}

// applyFlags overlays flags the user set explicitly; unset flags never
// override file or environment values.
func applyFlags(cfg config.Config, fs *pflag.FlagSet) (config.Config, error) {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		v := f.Value.String()
		switch f.Name {
		case "log-level":
			cfg.LogLevel = v
		case "log-format":
			cfg.LogFormat = v
		case "model":
			cfg.ModelName = v
		case "backend":
			cfg.Backend = v
		case "quantization":
			cfg.Quantization = v
		case "cache-dir":
			cfg.CacheDir = v
		case "hub-repo":
			cfg.HubRepo = v
		case "hub-file":
			cfg.HubFile = v
		case "hub-revision":
			cfg.HubRevision = v
		case "addr":
			cfg.Addr = v
		case "server-url":
			cfg.ServerURL = v
		case "server-model":
			cfg.ServerModel = v
		case "system-prompt":
			cfg.SystemPrompt = v
		case "cors-origins":
			cfg.CORSOrigins = splitCSV(v)
			cfg.CORSEnabled = len(cfg.CORSOrigins) > 0
		case "skip-accelerator-check":
			cfg.SkipAcceleratorCheck = v == "true"
		case "max-new-tokens":
			cfg.MaxNewTokens, err = atoiFlag(f)
		case "max-queue-depth":
			cfg.MaxQueueDepth, err = atoiFlag(f)
		case "max-concurrency":
			cfg.MaxConcurrency, err = atoiFlag(f)
		case "max-wait-ms":
			cfg.MaxWaitMs, err = atoiFlag(f)
		case "generate-timeout":
			cfg.GenerateTimeoutSeconds, err = wholeSeconds(f)
		}
	})
	return cfg, err
}

func atoiFlag(f *pflag.Flag) (int, error) {
	var n int
	if _, err := fmt.Sscanf(f.Value.String(), "%d", &n); err != nil {
		return 0, fmt.Errorf("--%s: %w", f.Name, err)
	}
	return n, nil
}

// wholeSeconds reads a duration flag that the config stores in seconds.
// Fractions are rejected rather than truncated.
func wholeSeconds(f *pflag.Flag) (int, error) {
	d, err := time.ParseDuration(f.Value.String())
	if err != nil {
		return 0, fmt.Errorf("--%s: %w", f.Name, err)
	}
	if d < 0 || d%time.Second != 0 {
		return 0, fmt.Errorf("--%s: %s is not a whole number of seconds", f.Name, d)
	}
	return int(d / time.Second), nil
}

// newLogger builds the root logger. "auto" picks the console writer when w
// is a terminal.
func newLogger(cfg config.Config, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	var out io.Writer = w
	switch strings.ToLower(cfg.LogFormat) {
	case "console":
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	case "auto", "":
		if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Str("service", "gemmad").Logger()
}

// splitCSV splits a comma-separated list, dropping blanks.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
