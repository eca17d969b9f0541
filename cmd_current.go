package main

import (
	"fmt"

	"github.com/spf13/cobra"

	clierrors "github.com/bcomnes/changelogbump/internal/errors"
)

func newCurrentCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Print the version stored in the manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts, nil)
			if err != nil {
				return err
			}
			if err := requireFile(cfg.Manifest.Path, clierrors.ManifestNotFound); err != nil {
				return err
			}
			v, err := cfg.ManifestSpec().ReadVersion()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
}
