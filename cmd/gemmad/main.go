// Command gemmad serves a Gemma model over HTTP.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(&app{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "gemmad:", err)
		os.Exit(1)
	}
}
