package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bcomnes/changelogbump/internal/config"
	clierrors "github.com/bcomnes/changelogbump/internal/errors"
	"github.com/bcomnes/changelogbump/internal/prompt"
	changelogbump "github.com/bcomnes/changelogbump/pkg"
)

func newCheckCmd(opts *globalOptions) *cobra.Command {
	var sources []string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Compare the manifest version with the latest published release",
		Long: `Looks up the latest release in each source and reports whether the manifest
version is ahead of it, equal to it or behind it.

Sources:
  git   highest release tag in the local repository (prefix from git.tag_prefix)
  pypi  info.version from the PyPI JSON API (package from check.pypi_package,
        or the manifest's project name)`,
		Example: `  changelogbump check
  changelogbump check --source pypi --timeout 5s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := map[string]interface{}{}
			if cmd.Flags().Changed("source") {
				overrides["check.sources"] = sources
			}
			if cmd.Flags().Changed("timeout") {
				overrides["check.timeout"] = timeout.String()
			}
			cfg, err := loadConfig(cmd, opts, overrides)
			if err != nil {
				return err
			}
			return runCheck(cmd, cfg)
		},
	}

	cmd.Flags().StringArrayVar(&sources, "source", nil, "Source to query: git or pypi. May be repeated.")
	cmd.Flags().DurationVar(&timeout, "timeout", changelogbump.DefaultCheckTimeout, "Time limit for all lookups")
	return cmd
}

func runCheck(cmd *cobra.Command, cfg *config.Configuration) error {
	if err := requireFile(cfg.Manifest.Path, clierrors.ManifestNotFound); err != nil {
		return err
	}
	current, err := cfg.ManifestSpec().ReadVersion()
	if err != nil {
		return err
	}

	sources, err := latestSources(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Check.Timeout)
	defer cancel()

	stop := startSpinner(cmd.ErrOrStderr(), "Checking latest release...")
	results, err := changelogbump.CheckLatest(ctx, current, sources...)
	stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Current version: %s\n", current)
	printLatest(out, results)

	if err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Runtime,
			fmt.Sprintf("latest release lookup did not finish within %s", cfg.Check.Timeout),
			"Raise --timeout, or check.timeout in .changelogbump.yaml",
		)
	}
	for _, r := range results {
		if r.Err == nil {
			return nil
		}
	}
	return clierrors.NewRuntimeError("no source returned a release",
		"Run with --verbose for details",
		"Tag a release, or pick another --source",
	)
}

func latestSources(cfg *config.Configuration) ([]changelogbump.LatestSource, error) {
	var sources []changelogbump.LatestSource
	for _, name := range cfg.Check.Sources {
		switch name {
		case "git":
			sources = append(sources, changelogbump.GitTagSource{Dir: ".", Prefix: cfg.Git.TagPrefix})
		case "pypi":
			pkg := cfg.Check.PyPIPackage
			if pkg == "" {
				pkg = projectName(cfg)
			}
			if pkg == "" {
				return nil, clierrors.NewConfigError("no package name for the pypi source",
					"Set check.pypi_package in .changelogbump.yaml",
					"Or add a name next to the version in the manifest",
				)
			}
			sources = append(sources, changelogbump.PyPISource{Package: pkg})
		}
	}
	if len(sources) == 0 {
		return nil, clierrors.NewConfigError("no sources to check",
			"Pass --source git or --source pypi",
		)
	}
	return sources, nil
}

// projectName reads the package name stored beside the version, or "".
func projectName(cfg *config.Configuration) string {
	m := cfg.ManifestSpec()
	format := m.Format
	if format == "" {
		detected, err := changelogbump.DetectFormat(m.Path)
		if err != nil {
			return ""
		}
		format = detected
	}
	key := "name"
	if format == changelogbump.FormatTOML {
		key = "project.name"
	}
	name, err := m.Lookup(key)
	if err != nil {
		return ""
	}
	return name
}

func printLatest(out io.Writer, results []changelogbump.LatestResult) {
	ahead := color.New(color.FgYellow)
	same := color.New(color.FgGreen)
	behind := color.New(color.FgRed)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, r := range results {
		switch {
		case r.Err != nil:
			fmt.Fprintf(w, "%s\t-\t%s\n", r.Source, behind.Sprintf("error: %v", r.Err))
		case r.Compare > 0:
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.Source, r.Latest, ahead.Sprint("unreleased (manifest is ahead)"))
		case r.Compare == 0:
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.Source, r.Latest, same.Sprint("up to date"))
		default:
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.Source, r.Latest, behind.Sprint("manifest is behind"))
		}
	}
	w.Flush()
}

// startSpinner shows a spinner on w while lookups run when stderr is a
// terminal. The returned func stops it.
func startSpinner(w io.Writer, suffix string) func() {
	if !prompt.IsInteractive(os.Stderr) || color.NoColor {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + suffix
	s.Start()
	return s.Stop
}
