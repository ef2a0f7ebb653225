//go:build llama

package manager

// cgo link directives for the in-process llama adapter.
// - rpath of $ORIGIN so the loader finds libllama.so and libggml*.so next to
//   the gemmad binary (./bin).
// - -L${SRCDIR}/../../bin so the linker finds libllama.so when building the
//   'llama' variant.
/*
#cgo LDFLAGS: -Wl,-rpath,'$ORIGIN' -L${SRCDIR}/../../bin -lllama
*/
import "C"
