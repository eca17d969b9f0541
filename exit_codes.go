package main

import clierrors "github.com/bcomnes/changelogbump/internal/errors"

// Exit codes for the changelogbump CLI
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = 0

	// ExitFailure indicates a runtime failure such as a git or network error
	ExitFailure = 1

	// ExitInvalidArguments indicates invalid command arguments or an empty entry
	ExitInvalidArguments = 2

	// ExitInvalidConfig indicates an invalid configuration file or manifest
	ExitInvalidConfig = 3

	// ExitPrerequisite indicates a missing or conflicting file, tag or worktree state
	ExitPrerequisite = 4
)

func exitCode(err *clierrors.CLIError) int {
	if err == nil {
		return ExitSuccess
	}
	switch err.Category {
	case clierrors.Argument:
		return ExitInvalidArguments
	case clierrors.Configuration:
		return ExitInvalidConfig
	case clierrors.Prerequisite:
		return ExitPrerequisite
	default:
		return ExitFailure
	}
}
