package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the changelogbump CLI version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			if plain {
				fmt.Fprintln(out, Version)
				return
			}
			fmt.Fprintln(out, "changelogbump CLI version", Version)
			fmt.Fprintf(out, "Go:       %s\n", runtime.Version())
			fmt.Fprintf(out, "Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "Print only the version number")
	return cmd
}
