package device

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func TestProbe_NvidiaSMI(t *testing.T) {
	p := &NVIDIAProber{
		SMI:       "nvidia-smi",
		LookupEnv: noEnv,
		Run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return []byte("NVIDIA L4\nNVIDIA L4\n"), nil
		},
	}
	info, err := p.Probe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cuda", info.Kind)
	assert.Equal(t, []string{"NVIDIA L4", "NVIDIA L4"}, info.Names)
	assert.Equal(t, "cuda: NVIDIA L4, NVIDIA L4", info.String())
}

func TestProbe_ProcFallback(t *testing.T) {
	dir := t.TempDir()
	gpu := filepath.Join(dir, "0000:01:00.0")
	require.NoError(t, os.MkdirAll(gpu, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(gpu, "information"), []byte("Model: \t Tesla T4\nIRQ: 34\n"), 0o644))
	p := &NVIDIAProber{
		ProcDir:   dir,
		SMI:       "nvidia-smi",
		LookupEnv: noEnv,
		Run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return nil, errors.New("not installed")
		},
	}
	info, err := p.Probe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Tesla T4"}, info.Names)
}

func TestProbe_NoDevice(t *testing.T) {
	p := &NVIDIAProber{ProcDir: t.TempDir(), LookupEnv: noEnv}
	_, err := p.Probe(context.Background())
	assert.ErrorIs(t, err, ErrNoAccelerator)
}

func TestProbe_HiddenByEnv(t *testing.T) {
	called := false
	p := &NVIDIAProber{
		SMI: "nvidia-smi",
		LookupEnv: func(k string) (string, bool) {
			if k == "CUDA_VISIBLE_DEVICES" {
				return "-1", true
			}
			return "", false
		},
		Run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			called = true
			return []byte("NVIDIA L4\n"), nil
		},
	}
	_, err := p.Probe(context.Background())
	assert.ErrorIs(t, err, ErrNoAccelerator)
	assert.False(t, called)
}

func TestProberFunc(t *testing.T) {
	var p Prober = ProberFunc(func(context.Context) (Info, error) { return Info{Kind: "cuda"}, nil })
	info, err := p.Probe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cuda", info.String())
}
