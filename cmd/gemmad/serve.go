package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gemmad/internal/backend/gemini"
	"gemmad/internal/backend/openaicompat"
	"gemmad/internal/config"
	"gemmad/internal/device"
	"gemmad/internal/httpapi"
	"gemmad/internal/hub"
	"gemmad/internal/manager"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load the model and serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	f := cmd.Flags()
	f.String("addr", "", "HTTP listen address, e.g. :8000")
	f.String("server-url", "", "OpenAI-compatible server base URL (backend=openai)")
	f.String("server-model", "", "Model name sent to the remote runtime")
	f.String("system-prompt", "", "System instruction prepended to every conversation")
	f.String("cors-origins", "", "Comma-separated CORS allowed origins; enables CORS when set")
	f.Bool("skip-accelerator-check", false, "Load without a GPU (development only)")
	f.Int("max-new-tokens", 0, "Upper bound on tokens generated per request")
	f.Int("max-queue-depth", 0, "Requests admitted before 429")
	f.Int("max-concurrency", 0, "Generations running at once")
	f.Int("max-wait-ms", 0, "How long a queued request waits for a slot")
	f.Duration("generate-timeout", 0, "Per-request generation timeout (0 disables)")
	return cmd
}

// serve runs the HTTP server until ctx is done, then drains.
func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := a.log

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetLogger(log)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetGenerateTimeoutSeconds(int64(cfg.GenerateTimeoutSeconds))
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins, nil, nil)
	httpapi.SetBaseContext(baseCtx)

	mcfg, err := a.managerConfig()
	if err != nil {
		return err
	}
	mgr := manager.NewWithConfig(mcfg)

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}
	srv := &http.Server{
		Handler:           httpapi.NewMux(mgr),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	// Loading runs in the background so /healthz answers while weights download.
	go func() {
		res := mgr.Load(baseCtx)
		if !res.Loaded() {
			log.Error().Str("reason", res.Reason).Msg("model unavailable; serving degraded")
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Str("backend", cfg.Backend).Str("model", cfg.ModelName).Msg("gemmad listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown")
	}
	// Abort a load still in progress before the manager drains.
	cancelBase()
	if err := mgr.Close(sctx); err != nil {
		log.Warn().Err(err).Msg("drain model")
	}
	return nil
}

// managerConfig translates the resolved configuration into manager wiring.
func (a *app) managerConfig() (manager.ManagerConfig, error) {
	cfg := a.cfg
	be, err := buildBackend(cfg)
	if err != nil {
		return manager.ManagerConfig{}, err
	}
	mc := manager.ManagerConfig{
		ModelName:          cfg.ModelName,
		Backend:            be,
		Quantization:       cfg.Quantization,
		Revision:           cfg.HubRevision,
		Prober:             device.NewNVIDIAProber(),
		RequireAccelerator: !cfg.SkipAcceleratorCheck,
		SystemPrompt:       cfg.EffectiveSystemPrompt(),
		MaxNewTokens:       cfg.MaxNewTokens,
		Temperature:        float32(cfg.Temperature),
		TopP:               float32(cfg.TopP),
		TopK:               cfg.TopK,
		MaxQueueDepth:      cfg.MaxQueueDepth,
		MaxConcurrency:     cfg.MaxConcurrency,
		MaxWait:            time.Duration(cfg.MaxWaitMs) * time.Millisecond,
		Logger:             &a.log,
	}
	if be.Local() {
		h, err := newHubClient(cfg, a)
		if err != nil {
			return manager.ManagerConfig{}, err
		}
		mc.Hub = h
		if mc.Repo, mc.File, err = cfg.Weights(); err != nil {
			return manager.ManagerConfig{}, err
		}
	}
	return mc, nil
}

func newHubClient(cfg config.Config, a *app) (*hub.Client, error) {
	return hub.New(cfg.CacheDir,
		hub.WithToken(cfg.HubToken),
		hub.WithOffline(cfg.HubOffline),
		hub.WithLogger(a.log),
	)
}

// buildBackend selects the runtime named by cfg.Backend.
func buildBackend(cfg config.Config) (manager.Backend, error) {
	switch cfg.Backend {
	case config.BackendLlama:
		return manager.NewLlamaBackend(manager.LlamaOptions{
			ContextSize: cfg.ContextSize,
			Threads:     cfg.Threads,
			GPULayers:   cfg.GPULayers,
		}), nil
	case config.BackendOpenAI:
		return openaicompat.New(openaicompat.Options{
			BaseURL: cfg.ServerURL,
			APIKey:  cfg.ServerAPIKey,
			Model:   cfg.ServerModel,
			Images:  true,
		}), nil
	case config.BackendGenAI:
		return gemini.New(gemini.Options{
			APIKey: cfg.GenAIAPIKey,
			Model:  cfg.ServerModel,
		}), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
