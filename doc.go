// Package main implements the changelogbump CLI tool.
//
// The changelogbump tool bumps the semantic version stored in a project
// manifest (default "pyproject.toml", key "project.version") and records the
// release in a Keep a Changelog style CHANGELOG.md. Each release becomes a
// section headed "## [X.Y.Z] - YYYY-MM-DD" inserted above the previous
// release, with an optional summary and Added, Changed and Removed items
// entered at a prompt.
//
// Command Usage:
//
//	changelogbump [flags] <command>
//
// Commands:
//
//	init:     Creates CHANGELOG.md with the bundled header. Fails if it exists.
//	          --header FILE writes FILE instead; --with-config also writes
//	          a commented .changelogbump.yaml.
//	add:      Bumps the version. Exactly one of --major (-M), --minor (-m)
//	          or --patch (-p) is required. --summary (-s) sets the section
//	          summary, --dry writes nothing, --commit and --tag record the
//	          release in git, --bump-file replaces the version in more files.
//	current:  Prints the manifest version.
//	check:    Compares the manifest version with the latest git tag or PyPI
//	          release.
//	version:  Prints the CLI version.
//
// Global flags:
//
//	--config:        Config file (default: .changelogbump.yaml).
//	--manifest:      Manifest file. TOML, JSON and YAML are supported.
//	--manifest-key:  Dotted key of the version inside the manifest.
//	--changelog:     Changelog file.
//	--verbose:       Debug output on stderr.
//	--no-color:      Plain output.
//
// Every setting can also come from .changelogbump.yaml or from
// CHANGELOGBUMP_<SECTION>__<KEY> environment variables. Flags win over the
// environment, which wins over the file.
//
// Examples:
//
//	# Start a changelog
//	changelogbump init
//
//	# Release a minor version and answer the prompts
//	changelogbump add --minor --summary "Adds CSV export"
//
//	# Patch release of a package.json project, committed and tagged
//	changelogbump --manifest package.json add -p --commit --tag
//
// Exit codes: 0 success, 1 runtime failure, 2 invalid arguments, 3 invalid
// configuration or manifest, 4 missing prerequisite.
package main
