package engine

import (
	"path"
	"strings"

	"github.com/borntyping/switchbox/internal/git"
)

// FilterHeads returns the branches eligible for classification: every head
// except those named in exclude and those matching a protect pattern.
// Patterns use path.Match syntax against the full branch name.
func FilterHeads(heads []git.Head, exclude []string, protect []string) []git.Head {
	skip := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		if name = strings.TrimSpace(name); name != "" {
			skip[name] = true
		}
	}

	var kept []git.Head
	for _, head := range heads {
		if skip[head.Name] || matchesAnyPattern(head.Name, protect) {
			continue
		}
		kept = append(kept, head)
	}
	return kept
}

func matchesAnyPattern(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if matchPattern(name, pattern) {
			return true
		}
	}
	return false
}

func matchPattern(name, pattern string) bool {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return false
	}
	// Pattern syntax was checked by config validation; an error here means
	// the pattern cannot match anything.
	ok, err := path.Match(pattern, name)
	return err == nil && ok
}
