package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gemmad/internal/manager"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and build features",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "gemmad %s (llama=%t)\n", version, manager.LlamaBuilt())
			return nil
		},
	}
}
