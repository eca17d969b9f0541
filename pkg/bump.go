package changelogbump

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// CollectFunc gathers changelog items for the given categories, usually by
// prompting the user.
type CollectFunc func(categories []Category) (Changes, error)

// Options configure a bump.
type Options struct {
	Manifest      Manifest
	ChangelogPath string
	Kind          BumpKind
	Summary       string
	// Announce, when set, is called with the current and next version before
	// any item is collected.
	Announce func(current, next Version)
	// Collect is called once to gather items. Nil means no items.
	Collect CollectFunc
	// Now returns the release date. Defaults to time.Now.
	Now func() time.Time
	// DateLayout formats the release date. Defaults to DefaultDateLayout.
	DateLayout string
	// AllowEmpty accepts a section without summary and items.
	AllowEmpty bool
	// BumpFiles are extra files whose main version is replaced too.
	BumpFiles []string
	// Commit stages the written files and commits them. Tag also tags the commit.
	Commit bool
	Tag    bool
	// TagPrefix defaults to DefaultTagPrefix.
	TagPrefix string
	// Dir locates the git repository. Defaults to the working directory.
	Dir string
}

// BumpMeta describes a finished or simulated bump.
type BumpMeta struct {
	OldVersion   Version
	NewVersion   Version
	BumpType     BumpKind
	Section      string
	UpdatedFiles []string
	Tag          string
	// DryRun is set when nothing was written.
	DryRun bool
}

func (o Options) withDefaults() Options {
	if o.Manifest.Path == "" {
		o.Manifest.Path = DefaultManifestPath
	}
	if o.ChangelogPath == "" {
		o.ChangelogPath = DefaultChangelogPath
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.DateLayout == "" {
		o.DateLayout = DefaultDateLayout
	}
	if o.TagPrefix == "" {
		o.TagPrefix = DefaultTagPrefix
	}
	return o
}

// prepare runs every step that does not write: version bump, changelog
// checks, dirty check and item collection. It returns the rendered section.
func prepare(opts Options) (BumpMeta, error) {
	var meta BumpMeta

	if !opts.Kind.Valid() {
		return meta, fmt.Errorf("%w: unknown bump kind %v", ErrInvalidArgument, opts.Kind)
	}

	current, err := opts.Manifest.ReadVersion()
	if err != nil {
		return meta, err
	}
	next, err := current.Bump(opts.Kind)
	if err != nil {
		return meta, err
	}
	meta.OldVersion = current
	meta.NewVersion = next
	meta.BumpType = opts.Kind

	document, err := ReadChangelog(opts.ChangelogPath)
	if err != nil {
		return meta, err
	}
	if HasVersion(document, next) {
		return meta, fmt.Errorf("changelog %s, version %s: %w", opts.ChangelogPath, next, ErrDuplicateVersion)
	}

	if opts.Commit {
		if err := CheckClean(opts.Dir, opts.stagedFiles()); err != nil {
			return meta, err
		}
	}
	if opts.Commit && opts.Tag {
		name := opts.TagPrefix + next.String()
		exists, err := tagExists(opts.Dir, name)
		if err != nil {
			return meta, err
		}
		if exists {
			return meta, fmt.Errorf("git tag %s: %w", name, ErrAlreadyExists)
		}
	}

	if opts.Announce != nil {
		opts.Announce(current, next)
	}

	var changes Changes
	if opts.Collect != nil {
		changes, err = opts.Collect(Categories())
		if err != nil {
			return meta, fmt.Errorf("collecting changelog items: %w", err)
		}
	}

	section := Section{
		Version: next,
		Date:    opts.Now().Format(opts.DateLayout),
		Summary: opts.Summary,
		Changes: changes,
	}
	if section.IsEmpty() && !opts.AllowEmpty {
		return meta, fmt.Errorf("version %s: %w", next, ErrEmptyEntry)
	}
	meta.Section = ComposeSection(section)
	return meta, nil
}

// stagedFiles are the files a commit may include: the changelog, the
// manifest and every extra bump file.
func (o Options) stagedFiles() []string {
	files := []string{o.ChangelogPath, o.Manifest.Path}
	return append(files, o.BumpFiles...)
}

// Run bumps the manifest version, inserts a new changelog section and,
// when requested, bumps extra files and commits and tags the result.
//
// The changelog is written before the manifest. Extra bump files that fail
// are reported on stderr and left out of the commit.
func Run(opts Options) (BumpMeta, error) {
	opts = opts.withDefaults()
	meta, err := prepare(opts)
	if err != nil {
		return meta, err
	}

	// The manifest is rendered before anything is written so a manifest
	// that cannot be rewritten leaves the changelog untouched.
	manifest, err := opts.Manifest.render(meta.NewVersion)
	if err != nil {
		return meta, err
	}

	if err := UpdateFile(opts.ChangelogPath, meta.Section); err != nil {
		return meta, err
	}
	meta.UpdatedFiles = append(meta.UpdatedFiles, opts.ChangelogPath)

	if err := opts.Manifest.write(manifest); err != nil {
		return meta, err
	}
	meta.UpdatedFiles = append(meta.UpdatedFiles, opts.Manifest.Path)

	for _, bf := range opts.BumpFiles {
		ok, err := BumpVersionInFile(bf, meta.NewVersion.String())
		switch {
		case err != nil:
			fmt.Fprintf(os.Stderr, "Warning: failed to bump version in %s: %v\n", bf, err)
		case !ok:
			fmt.Fprintf(os.Stderr, "Warning: no version found in %s\n", bf)
		default:
			meta.UpdatedFiles = append(meta.UpdatedFiles, bf)
		}
	}

	if opts.Commit {
		tag, err := CommitAndTag(opts.Dir, meta.UpdatedFiles, meta.NewVersion, opts.TagPrefix, opts.Tag)
		if err != nil {
			return meta, err
		}
		meta.Tag = tag
	}

	return meta, nil
}

// DryRun performs every check Run does, collects items and renders the
// section, but writes nothing. UpdatedFiles lists the files Run would write.
func DryRun(opts Options) (BumpMeta, error) {
	opts = opts.withDefaults()
	meta, err := prepare(opts)
	if err != nil {
		return meta, err
	}
	if _, err := opts.Manifest.render(meta.NewVersion); err != nil {
		return meta, err
	}

	meta.DryRun = true
	meta.UpdatedFiles = []string{opts.ChangelogPath, opts.Manifest.Path}
	for _, bf := range opts.BumpFiles {
		found, err := FindMainVersionInFile(bf)
		if err != nil || found == nil {
			continue
		}
		meta.UpdatedFiles = append(meta.UpdatedFiles, bf)
	}
	if opts.Commit && opts.Tag {
		meta.Tag = opts.TagPrefix + meta.NewVersion.String()
	}
	return meta, nil
}

// Summary renders the outcome of a bump the way the CLI prints it.
func (m BumpMeta) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Old Version: %s\n", m.OldVersion)
	fmt.Fprintf(&b, "New Version: %s\n", m.NewVersion)
	fmt.Fprintf(&b, "Bump Type:   %s\n", m.BumpType)
	if m.Tag != "" {
		fmt.Fprintf(&b, "Tag:         %s\n", m.Tag)
	}
	if len(m.UpdatedFiles) > 0 {
		if m.DryRun {
			b.WriteString("Files that would be updated:\n")
		} else {
			b.WriteString("Files updated:\n")
		}
		for _, f := range m.UpdatedFiles {
			fmt.Fprintf(&b, "  - %s\n", f)
		}
	}
	return b.String()
}
