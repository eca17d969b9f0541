// Package changelogbump bumps the semantic version of a project and records
// the release in a Keep a Changelog style document.
//
// It provides:
//   - Parsing, bumping and comparing "major.minor.patch" versions.
//   - Reading and writing the version field of a TOML, JSON or YAML manifest
//     (pyproject.toml by default) without disturbing the rest of the document.
//   - Composing a changelog section and inserting it above the newest release.
//   - Replacing the version in extra files, committing and tagging with git,
//     and looking up the latest published version.
//
// Usage Example:
//
//	meta, err := changelogbump.Run(changelogbump.Options{
//	    Kind:    changelogbump.Patch,
//	    Summary: "Fix crash on empty input.",
//	})
//	if err != nil {
//	    log.Fatalf("bump failed: %v", err)
//	}
//	fmt.Print(meta.Summary())
//
// For additional details see https://pkg.go.dev/github.com/bcomnes/changelogbump/pkg.
package changelogbump
