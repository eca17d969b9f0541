package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bcomnes/changelogbump/internal/config"
	clierrors "github.com/bcomnes/changelogbump/internal/errors"
	changelogbump "github.com/bcomnes/changelogbump/pkg"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// globalOptions hold the persistent flags shared by every command.
type globalOptions struct {
	configPath  string
	manifest    string
	manifestKey string
	changelog   string
	verbose     bool
	noColor     bool
}

// execute runs the command tree and returns the process exit code.
func execute(args []string, in io.Reader, out, errOut io.Writer) int {
	changelogbump.SetDebugLogger(nil)
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	if err := root.Execute(); err != nil {
		cliErr := clierrors.FromError(err)
		clierrors.FprintError(errOut, cliErr)
		return exitCode(cliErr)
	}
	return ExitSuccess
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "changelogbump",
		Short: "Bump the project version and record the release in CHANGELOG.md",
		Long: `changelogbump bumps the semantic version held in a project manifest
(default: pyproject.toml, key project.version) and inserts a matching
"## [X.Y.Z] - YYYY-MM-DD" section into CHANGELOG.md with the items you enter
for Added, Changed and Removed.`,
		Example: `  changelogbump init
  changelogbump add --minor --summary "Adds CSV export"
  changelogbump add -p --commit --tag --bump-file package.json
  changelogbump check --source git --source pypi`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
			if opts.verbose {
				errOut := cmd.ErrOrStderr()
				changelogbump.SetDebugLogger(func(format string, args ...any) {
					fmt.Fprintf(errOut, "[debug] "+format+"\n", args...)
				})
			}
		},
	}
	cmd.SetVersionTemplate("changelogbump CLI version {{.Version}}\n")
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return clierrors.NewArgumentErrorWithUsage(err.Error(), c.UseLine(),
			fmt.Sprintf("Run '%s --help' for the list of flags", c.CommandPath()))
	})

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "Config file (default: .changelogbump.yaml in the working directory)")
	pf.StringVar(&opts.manifest, "manifest", "", "Manifest holding the version (default: pyproject.toml)")
	pf.StringVar(&opts.manifestKey, "manifest-key", "", "Dotted key of the version in the manifest (default: project.version for TOML, version otherwise)")
	pf.StringVar(&opts.changelog, "changelog", "", "Changelog file (default: CHANGELOG.md)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Print debug output to stderr")
	pf.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(
		newInitCmd(opts),
		newAddCmd(opts),
		newCurrentCmd(opts),
		newCheckCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// loadConfig merges the configuration with the persistent flags and the
// command overrides the user set.
func loadConfig(cmd *cobra.Command, opts *globalOptions, overrides map[string]interface{}) (*config.Configuration, error) {
	merged := map[string]interface{}{}
	flags := cmd.Flags()
	if flags.Changed("manifest") {
		merged["manifest.path"] = opts.manifest
	}
	if flags.Changed("manifest-key") {
		merged["manifest.key"] = opts.manifestKey
	}
	if flags.Changed("changelog") {
		merged["changelog.path"] = opts.changelog
	}
	for k, v := range overrides {
		merged[k] = v
	}

	cfg, err := config.LoadWithOptions(config.LoadOptions{
		ConfigPath: opts.configPath,
		Overrides:  merged,
	})
	if err != nil {
		return nil, clierrors.WrapWithMessage(err, clierrors.Configuration,
			fmt.Sprintf("failed to load configuration: %v", err),
			"Check .changelogbump.yaml and CHANGELOGBUMP_* environment variables",
		)
	}
	if opts.verbose && cfg.Source != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "[debug] using config %s\n", cfg.Source)
	}
	return cfg, nil
}

// requireFile turns a missing path into the given CLI error.
func requireFile(path string, notFound func(string, error) *clierrors.CLIError) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return notFound(path, err)
		}
		return err
	}
	return nil
}
