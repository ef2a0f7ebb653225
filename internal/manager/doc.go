// Package manager owns the loaded model and coordinates loading, admission
// and generation against it. It is structured into small files by concern:
//
//   - manager.go: core Manager type, readiness and health.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: load state types (LoadState, LoadResult, Snapshot).
//   - backend.go: Backend, Model and Processor interfaces plus the stock processors.
//   - load.go: the one-shot startup loader (accelerator probe, hub fetch, runtime open).
//   - admission.go: bounded queue and in-flight generation slots.
//   - budget.go: token budget counting and enforcement on runtime results.
//   - generate.go: request entry point (conversation, token budget, decode).
//   - status_report.go: Status/Snapshot reporting helpers.
//   - close.go: drain and release on shutdown.
//   - errors.go: error types and helpers (IsTooBusy, IsModelUnavailable, ...).
//   - metrics.go: Prometheus collectors for load and generation.
//
// Runtimes:
//
//   - In-process llama.cpp: go-llama.cpp adapter, enabled with `-tags=llama`.
//     Files: adapter_llama.go, llama_cgo.go. A stub
//     (adapter_llama_stub.go) reports the dependency as unavailable otherwise.
//   - OpenAI-compatible server (llama-server, vLLM): package
//     gemmad/internal/backend/openaicompat.
//   - Gemini API hosted Gemma: package gemmad/internal/backend/gemini.
//
// External packages should use public methods only (NewWithConfig, Load,
// Ready, Health, Generate, Status, Close).
package manager
