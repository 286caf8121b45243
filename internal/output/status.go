package output

import (
	"fmt"
	"io"
)

// Status-line helpers for actions that happen outside a classification run,
// sharing the console sink's marks so everything on the terminal lines up.

// Done writes a completed-action line to w.
func Done(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", markDone, fmt.Sprintf(format, args...))
}

// BranchName colors a branch name the way run output does.
func BranchName(name string) string { return branchColor(name) }

// TargetName colors a target ref the way run output does.
func TargetName(name string) string { return targetColor(name) }
