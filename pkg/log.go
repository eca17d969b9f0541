package changelogbump

// debugLogger receives debug output when set. It is a no-op by default.
var debugLogger func(format string, args ...any)

// SetDebugLogger installs a logger for debug output from the library.
// Pass nil to disable it.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}
