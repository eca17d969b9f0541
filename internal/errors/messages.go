package errors

import (
	stderrors "errors"
	"fmt"

	changelogbump "github.com/bcomnes/changelogbump/pkg"
)

const addUsage = "changelogbump add (--major | --minor | --patch) [--summary TEXT]"

// MissingBumpKind is returned when add gets none of the increment flags.
func MissingBumpKind() *CLIError {
	return NewArgumentErrorWithUsage(
		"Specify one of --major, --minor, or --patch.",
		addUsage,
		"Example: changelogbump add --patch --summary \"Fix crash on start\"",
	)
}

// ConflictingBumpKind is returned when add gets more than one increment flag.
func ConflictingBumpKind() *CLIError {
	return NewArgumentErrorWithUsage(
		"Only one of --major, --minor, or --patch is allowed.",
		addUsage,
	)
}

// ChangelogExists is returned by init when the changelog is already present.
func ChangelogExists(path string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("%s already exists. Aborting.", path),
		"Remove the file first if you want to start over",
		"Or point --changelog at a different file",
	)
}

// ChangelogNotFound is returned when add runs before init.
func ChangelogNotFound(path string, err error) *CLIError {
	e := NewPrerequisiteError(
		fmt.Sprintf("changelog %s not found", path),
		"Run 'changelogbump init' to create it",
		"Or point --changelog at an existing file",
	)
	e.Err = err
	return e
}

// ManifestNotFound is returned when the manifest file does not exist.
func ManifestNotFound(path string, err error) *CLIError {
	e := NewPrerequisiteError(
		fmt.Sprintf("manifest %s not found", path),
		"Run the command from the project root",
		"Or set --manifest, or manifest.path in .changelogbump.yaml",
	)
	e.Err = err
	return e
}

// FromError converts an error returned by the library into a CLIError,
// choosing the category and remediation from the sentinel it wraps.
// CLIErrors are returned unchanged.
func FromError(err error) *CLIError {
	if err == nil {
		return nil
	}
	if cliErr := AsCLIError(err); cliErr != nil {
		return cliErr
	}

	switch {
	case stderrors.Is(err, changelogbump.ErrAlreadyExists):
		return Wrap(err, Prerequisite,
			"Remove the existing file or tag first",
		)
	case stderrors.Is(err, changelogbump.ErrFileNotFound):
		return Wrap(err, Prerequisite,
			"Run 'changelogbump init' to create the changelog",
			"Check --manifest and --changelog, or the paths in .changelogbump.yaml",
		)
	case stderrors.Is(err, changelogbump.ErrMalformedManifest):
		return Wrap(err, Configuration,
			"Check that the manifest parses and holds a string at the configured key",
			"Set --manifest-key, or manifest.key in .changelogbump.yaml",
		)
	case stderrors.Is(err, changelogbump.ErrParse):
		return Wrap(err, Configuration,
			"The version must read major.minor.patch, for example 1.4.2",
		)
	case stderrors.Is(err, changelogbump.ErrDuplicateVersion):
		return Wrap(err, Prerequisite,
			"The changelog already documents this version",
			"Check that the manifest version was bumped with the last release",
		)
	case stderrors.Is(err, changelogbump.ErrEmptyEntry):
		return Wrap(err, Argument,
			"Pass --summary or enter at least one item",
			"Or pass --allow-empty to write a heading only",
		)
	case stderrors.Is(err, changelogbump.ErrDirtyWorktree):
		return Wrap(err, Prerequisite,
			"Commit or stash unrelated changes before bumping",
			"Or run without --commit",
		)
	case stderrors.Is(err, changelogbump.ErrInvalidArgument):
		return Wrap(err, Argument)
	default:
		return Wrap(err, Runtime)
	}
}
