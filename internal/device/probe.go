// Package device detects the accelerator the in-process runtime will use.
package device

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ErrNoAccelerator is returned when no usable GPU is visible to the process.
var ErrNoAccelerator = errors.New("no accelerator available")

// Info describes the detected accelerator.
type Info struct {
	Kind  string   // e.g. "cuda"
	Names []string // one entry per visible device
}

func (i Info) String() string {
	if len(i.Names) == 0 {
		return i.Kind
	}
	return i.Kind + ": " + strings.Join(i.Names, ", ")
}

// Prober reports the accelerator available to the process.
type Prober interface {
	Probe(ctx context.Context) (Info, error)
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context) (Info, error)

func (f ProberFunc) Probe(ctx context.Context) (Info, error) { return f(ctx) }

// NVIDIAProber detects CUDA devices using nvidia-smi when available and the
// driver's procfs entries otherwise.
type NVIDIAProber struct {
	// ProcDir is the driver's per-GPU procfs directory.
	ProcDir string
	// SMI is the nvidia-smi binary name or path.
	SMI string
	// LookupEnv and Run are injectable for tests.
	LookupEnv func(string) (string, bool)
	Run       func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewNVIDIAProber returns a prober using the host's real paths.
func NewNVIDIAProber() *NVIDIAProber {
	return &NVIDIAProber{
		ProcDir:   "/proc/driver/nvidia/gpus",
		SMI:       "nvidia-smi",
		LookupEnv: os.LookupEnv,
		Run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			if _, err := exec.LookPath(name); err != nil {
				return nil, err
			}
			return exec.CommandContext(ctx, name, args...).Output()
		},
	}
}

// Probe returns ErrNoAccelerator (wrapped with the reason) when no GPU is usable.
func (p *NVIDIAProber) Probe(ctx context.Context) (Info, error) {
	if v, ok := lookup(p.LookupEnv, "CUDA_VISIBLE_DEVICES"); ok && (v == "" || v == "-1" || v == "none") {
		return Info{}, fmt.Errorf("%w: hidden by CUDA_VISIBLE_DEVICES=%q", ErrNoAccelerator, v)
	}
	if p.Run != nil && p.SMI != "" {
		cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		out, err := p.Run(cctx, p.SMI, "--query-gpu=name", "--format=csv,noheader")
		cancel()
		if err == nil {
			if names := nonEmptyLines(string(out)); len(names) > 0 {
				return Info{Kind: "cuda", Names: names}, nil
			}
		}
	}
	if names := p.procNames(); len(names) > 0 {
		return Info{Kind: "cuda", Names: names}, nil
	}
	return Info{}, fmt.Errorf("%w: no CUDA device found (nvidia-smi and %s)", ErrNoAccelerator, p.ProcDir)
}

// procNames reads "Model:" lines from <ProcDir>/<bus-id>/information.
func (p *NVIDIAProber) procNames() []string {
	if p.ProcDir == "" {
		return nil
	}
	dirs, err := filepath.Glob(filepath.Join(p.ProcDir, "*", "information"))
	if err != nil {
		return nil
	}
	var names []string
	for _, f := range dirs {
		fh, err := os.Open(f)
		if err != nil {
			continue
		}
		name := "gpu"
		sc := bufio.NewScanner(fh)
		for sc.Scan() {
			if k, v, ok := strings.Cut(sc.Text(), ":"); ok && strings.TrimSpace(k) == "Model" {
				name = strings.TrimSpace(v)
				break
			}
		}
		fh.Close()
		names = append(names, name)
	}
	return names
}

func lookup(lookupEnv func(string) (string, bool), key string) (string, bool) {
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	v, ok := lookupEnv(key)
	return strings.TrimSpace(v), ok
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
