package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	clierrors "github.com/bcomnes/changelogbump/internal/errors"
	"github.com/bcomnes/changelogbump/internal/prompt"
	changelogbump "github.com/bcomnes/changelogbump/pkg"
)

type addOptions struct {
	major      bool
	minor      bool
	patch      bool
	summary    string
	dryRun     bool
	commit     bool
	tag        bool
	bumpFiles  []string
	allowEmpty bool
	noPrompt   bool
}

func newAddCmd(opts *globalOptions) *cobra.Command {
	add := &addOptions{}

	cmd := &cobra.Command{
		Use:   "add (--major | --minor | --patch) [flags]",
		Short: "Increment version by one of the semantic parts (major|minor|patch)",
		Long: `Increments the manifest version and inserts a changelog section for it.

You are prompted for Added, Changed and Removed items, one per line. An empty
line moves to the next section.`,
		Example: `  changelogbump add --patch
  changelogbump add -m -s "Adds CSV export" --commit --tag
  changelogbump add --major --dry`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, opts, add)
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&add.major, "major", "M", false, "Increment major version number")
	f.BoolVarP(&add.minor, "minor", "m", false, "Increment minor version number")
	f.BoolVarP(&add.patch, "patch", "p", false, "Increment patch version number")
	f.StringVarP(&add.summary, "summary", "s", "", "Version descriptive summary header")
	f.BoolVar(&add.dryRun, "dry", false, "Show what would change without writing anything")
	f.BoolVar(&add.commit, "commit", false, "Commit the changed files with the new version as message")
	f.BoolVar(&add.tag, "tag", false, "Tag the release commit (implies --commit)")
	f.StringArrayVar(&add.bumpFiles, "bump-file", nil, "Additional file whose version is bumped too. May be repeated.")
	f.BoolVar(&add.allowEmpty, "allow-empty", false, "Accept a section without summary or items")
	f.BoolVar(&add.noPrompt, "no-prompt", false, "Do not prompt for items")
	return cmd
}

func runAdd(cmd *cobra.Command, opts *globalOptions, add *addOptions) error {
	kind, err := changelogbump.KindFromFlags(add.major, add.minor, add.patch)
	if err != nil {
		if add.major || add.minor || add.patch {
			return clierrors.ConflictingBumpKind()
		}
		return clierrors.MissingBumpKind()
	}

	overrides := map[string]interface{}{}
	flags := cmd.Flags()
	if flags.Changed("commit") {
		overrides["git.commit"] = add.commit
	}
	if flags.Changed("tag") {
		overrides["git.tag"] = add.tag
	}
	if flags.Changed("allow-empty") {
		overrides["changelog.allow_empty"] = add.allowEmpty
	}
	cfg, err := loadConfig(cmd, opts, overrides)
	if err != nil {
		return err
	}

	if err := requireFile(cfg.Manifest.Path, clierrors.ManifestNotFound); err != nil {
		return err
	}
	if err := requireFile(cfg.Changelog.Path, clierrors.ChangelogNotFound); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	bumpOpts := changelogbump.Options{
		Manifest:      cfg.ManifestSpec(),
		ChangelogPath: cfg.Changelog.Path,
		Kind:          kind,
		Summary:       add.summary,
		Announce: func(current, next changelogbump.Version) {
			fmt.Fprintf(out, "Current version: %s\n", current)
			fmt.Fprintf(out, "Incrementing to: %s\n", next)
		},
		DateLayout: cfg.Changelog.DateFormat,
		AllowEmpty: cfg.Changelog.AllowEmpty,
		BumpFiles:  add.bumpFiles,
		Commit:     cfg.Git.Commit || cfg.Git.Tag,
		Tag:        cfg.Git.Tag,
		TagPrefix:  cfg.Git.TagPrefix,
	}
	if !add.noPrompt {
		bumpOpts.Collect = prompt.New(cmd.InOrStdin(), out).Collect
	}

	var meta changelogbump.BumpMeta
	if add.dryRun {
		meta, err = changelogbump.DryRun(bumpOpts)
	} else {
		meta, err = changelogbump.Run(bumpOpts)
	}
	if err != nil {
		return err
	}

	printResult(out, meta)
	return nil
}

func printResult(out io.Writer, meta changelogbump.BumpMeta) {
	success := color.New(color.FgGreen, color.Bold)
	if meta.DryRun {
		success.Fprintln(out, "Dry run complete — no files were modified.")
	} else {
		success.Fprintln(out, "Version bump successful!")
	}
	fmt.Fprint(out, meta.Summary())
	if meta.DryRun {
		fmt.Fprintf(out, "\n%s\n", meta.Section)
	}
}
