package server

import (
	"log"

	"github.com/fatih/color"
)

// logAccess logs one completed request with color-coded status, generalized
// from the teacher's logRequest to take a numeric status and cover the
// informational/redirect/client-error/server-error bands rather than three
// hardcoded codes.
func logAccess(method, path string, status int) {
	line := color.New()
	switch {
	case status >= 200 && status < 300:
		line = color.New(color.FgGreen)
	case status >= 300 && status < 400:
		line = color.New(color.FgCyan)
	case status >= 400 && status < 500:
		line = color.New(color.FgYellow)
	case status >= 500:
		line = color.New(color.FgRed)
	}
	log.Print(line.Sprintf("%s %s %d", method, path, status))
}

// logWarn marks a non-fatal protocol condition (parse error answered with
// an error response, socket timeout, async timeout) — spec.md §7's "log at warn"
// propagation policy for Kind.Rejected and friends.
func logWarn(format string, args ...any) {
	log.Print(color.YellowString("WARN "+format, args...))
}

// logErrorf marks a condition the engine could not recover from for this
// connection (write failure mid-response, accept() failure).
func logErrorf(format string, args ...any) {
	log.Print(color.RedString("ERROR "+format, args...))
}
