package git

import (
	"context"
	"errors"
	"strings"
)

// Repository-local config access. Keys use git's flat syntax: the first dot
// separates the section, the last dot separates the option, and anything in
// between is a subsection (so branch names containing dots stay intact).

// ConfigEntry is one key/value pair from the repository config.
type ConfigEntry struct {
	Key   string
	Value string
}

// ConfigGet reads a key from the repository-local config. The second return
// is false when the key is not set.
func (r *Repository) ConfigGet(ctx context.Context, key string) (string, bool, error) {
	out, err := r.runner.output(ctx, "config", "--local", "--get", key)
	if err != nil {
		if exitCode(err) == 1 {
			return "", false, nil
		}
		return "", false, err
	}
	return out, true, nil
}

// ConfigSet writes a key in the repository-local config.
func (r *Repository) ConfigSet(ctx context.Context, key, value string) error {
	return r.runner.run(ctx, "config", "--local", key, value)
}

// ConfigUnset removes a key from the repository-local config. A missing key
// is not an error.
func (r *Repository) ConfigUnset(ctx context.Context, key string) error {
	err := r.runner.run(ctx, "config", "--local", "--unset", key)
	// git exits 5 when unsetting an option that does not exist.
	if err != nil && exitCode(err) == 5 {
		return nil
	}
	return err
}

// ConfigRemoveSection removes a whole section from the repository-local
// config. A missing section is not an error.
func (r *Repository) ConfigRemoveSection(ctx context.Context, section string) error {
	err := r.runner.run(ctx, "config", "--local", "--remove-section", section)
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) && strings.Contains(cmdErr.Stderr, "no such section") {
			return nil
		}
	}
	return err
}

// ConfigEntries lists repository-local config entries whose keys match the
// given regexp. No matches yields an empty list.
func (r *Repository) ConfigEntries(ctx context.Context, pattern string) ([]ConfigEntry, error) {
	out, err := r.runner.output(ctx, "config", "--local", "--get-regexp", pattern)
	if err != nil {
		if exitCode(err) == 1 {
			return nil, nil
		}
		return nil, err
	}
	var entries []ConfigEntry
	for _, line := range splitLines(out) {
		key, value, _ := strings.Cut(line, " ")
		entries = append(entries, ConfigEntry{Key: key, Value: value})
	}
	return entries, nil
}
