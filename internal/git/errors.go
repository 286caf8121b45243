package git

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for merge-base resolution. Both abort classification for the
// branch that triggered them; other branches are unaffected.
var (
	ErrNoMergeBase        = errors.New("no merge base")
	ErrMultipleMergeBases = errors.New("multiple merge bases")
)

// CommandError wraps a failed git invocation with enough detail to report it
// without re-running anything. Exit code -1 means the process never ran.
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	detail := strings.TrimSpace(e.Stderr)
	if detail == "" && e.Err != nil {
		detail = e.Err.Error()
	}
	if detail == "" {
		detail = fmt.Sprintf("exit status %d", e.ExitCode)
	}
	return fmt.Sprintf("git %s: %s", strings.Join(e.Args, " "), detail)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
