package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFetchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Download the configured weights into the cache and print the path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, file, err := a.cfg.Weights()
			if err != nil {
				return err
			}
			h, err := newHubClient(a.cfg, a)
			if err != nil {
				return err
			}
			if !h.HasToken() {
				a.log.Warn().Msg("HF_TOKEN is not set; gated model downloads may fail")
			}
			path, err := h.Fetch(cmd.Context(), repo, a.cfg.HubRevision, file)
			if err != nil {
				return fmt.Errorf("fetch %s/%s: %w", repo, file, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
