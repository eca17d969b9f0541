package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/bcomnes/changelogbump/internal/config"
	clierrors "github.com/bcomnes/changelogbump/internal/errors"
	changelogbump "github.com/bcomnes/changelogbump/pkg"
)

func newInitCmd(opts *globalOptions) *cobra.Command {
	var header string
	var withConfig bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a fresh CHANGELOG.md in the project root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := map[string]interface{}{}
			if cmd.Flags().Changed("header") {
				overrides["changelog.header"] = header
			}
			cfg, err := loadConfig(cmd, opts, overrides)
			if err != nil {
				return err
			}

			text, err := cfg.HeaderText()
			if err != nil {
				return clierrors.WrapWithMessage(err, clierrors.Prerequisite, err.Error(),
					"Check the --header path, or changelog.header in .changelogbump.yaml")
			}
			if err := changelogbump.Init(cfg.Changelog.Path, text); err != nil {
				if errors.Is(err, changelogbump.ErrAlreadyExists) {
					return clierrors.ChangelogExists(cfg.Changelog.Path)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", cfg.Changelog.Path)

			if withConfig {
				if err := writeConfigTemplate(config.ProjectConfigNames[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", config.ProjectConfigNames[0])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&header, "header", "", "File whose content is written instead of the bundled header")
	cmd.Flags().BoolVar(&withConfig, "with-config", false, "Also write a commented .changelogbump.yaml")
	return cmd
}

func writeConfigTemplate(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return clierrors.NewPrerequisiteError(
				fmt.Sprintf("%s already exists. Aborting.", path),
				"Edit the existing file instead",
			)
		}
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := f.WriteString(config.GetDefaultConfigTemplate()); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
