package config

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"
)

type Config struct {
	// MAINTAINER NOTE: If you add/change/remove config fields that affect
	// command behavior, keep these in sync:
	// - CLI flags in internal/cli
	// - the file schema in internal/config/file.go
	Detect  Detect
	Tidy    Tidy
	Update  Update
	Sparse  Sparse
	Output  Output
	Runtime Runtime
}

type Detect struct {
	// BranchNames lists candidate default branch names, probed in order
	// when no branch is recorded in the repository (see --default-branch).
	// Values may be provided as repeated flags and/or comma-separated lists.
	BranchNames []string

	// RemoteNames lists candidate default remote names, probed in order
	// when no remote is recorded in the repository (see --default-remote).
	// Values may be provided as repeated flags and/or comma-separated lists.
	RemoteNames []string
}

type Tidy struct {
	// Merged enables removing branches whose tip is an ancestor of the
	// target (see --merged).
	Merged bool

	// Rebased enables removing branches whose commits all have
	// patch-equivalent commits on the target (see --rebased).
	Rebased bool

	// Squashed enables removing branches whose whole diff was applied to
	// the target as a single commit (see --squashed).
	Squashed bool

	// DryRun classifies branches and reports the outcome without deleting
	// anything (see --dry-run).
	DryRun bool

	// Target overrides upstream target resolution with an explicit ref
	// (see --target).
	Target string

	// Protect lists branch names never considered for removal, matched in
	// Go path.Match style (see --protect).
	// Values may be provided as repeated flags and/or comma-separated lists.
	Protect []string
}

type Update struct {
	// Enabled fetches all remotes before commands that compare against them
	// (see --update).
	Enabled bool

	// Prune drops remote-tracking refs deleted upstream while fetching
	// (see --prune).
	Prune bool

	// Jobs bounds how many remotes are fetched concurrently (see --jobs).
	// Must be >= 1.
	Jobs int
}

type Sparse struct {
	// Exclude lists paths hidden from the sparse checkout (see --exclude).
	// Values may be provided as repeated flags and/or comma-separated lists.
	Exclude []string
}

type Output struct {
	// ConsoleFormat controls the human-facing console sink format (see --console-format).
	// Allowed values: text, json, ndjson.
	ConsoleFormat string

	// ConsoleFilterState filters console output by branch state (see --console-filter-state).
	// Matching is case-insensitive against states such as removable, removed.
	ConsoleFilterState []string

	// Report writes a Markdown report to this path (see --report).
	Report string

	// Out writes structured output to this path (see --out).
	Out string

	// OutFormat selects the format for --out (see --out-format).
	// Allowed values: json, ndjson. If empty, it is inferred from the --out file extension.
	OutFormat string

	// Emit writes an additional structured event stream to stdout (see --emit).
	// Allowed values: json, ndjson.
	Emit []string

	// NoConsole suppresses the console sink (see --no-console).
	// Use with --emit/--out/--report for machine-readable output.
	NoConsole bool
}

type Runtime struct {
	// Path is the directory whose enclosing repository is operated on
	// (see --repo). Empty means the current working directory.
	Path string

	// Timeout is the global timeout for the run (see --timeout).
	// Must be > 0.
	Timeout time.Duration

	// Verbose prints each git invocation and its outcome (see --verbose).
	Verbose bool
}

func New() *Config {
	return &Config{
		Detect: Detect{
			BranchNames: []string{"main", "master"},
			RemoteNames: []string{"upstream", "origin"},
		},
		Tidy: Tidy{
			Merged:   true,
			Rebased:  true,
			Squashed: true,
		},
		Update: Update{
			Enabled: true,
			Prune:   true,
			Jobs:    4,
		},
		Sparse: Sparse{
			Exclude: []string{"/.idea/"},
		},
		Output: Output{
			ConsoleFormat: "text",
		},
		Runtime: Runtime{
			Timeout: 10 * time.Minute,
		},
	}
}

func (c *Config) Validate() error {
	// Normalize comma-delimited list inputs.
	c.Detect.BranchNames = splitCommaList(c.Detect.BranchNames)
	c.Detect.RemoteNames = splitCommaList(c.Detect.RemoteNames)
	c.Tidy.Protect = splitCommaList(c.Tidy.Protect)
	c.Sparse.Exclude = splitCommaList(c.Sparse.Exclude)

	if len(c.Detect.BranchNames) == 0 {
		return errors.New("--default-branch needs at least one candidate name")
	}
	if len(c.Detect.RemoteNames) == 0 {
		return errors.New("--default-remote needs at least one candidate name")
	}

	// path.Match only reports pattern syntax errors, so probe each
	// protect pattern once up front instead of failing mid-run.
	for _, pattern := range c.Tidy.Protect {
		if _, err := path.Match(pattern, "probe"); err != nil {
			return fmt.Errorf("invalid --protect pattern %q: %w", pattern, err)
		}
	}

	c.Tidy.Target = strings.TrimSpace(c.Tidy.Target)

	// Output validation
	c.Output.ConsoleFormat = normalizeEnumValue(c.Output.ConsoleFormat)
	if c.Output.ConsoleFormat == "" {
		return errors.New("--console-format must be one of: text, json, ndjson")
	}
	if c.Output.ConsoleFormat != "text" && c.Output.ConsoleFormat != "json" && c.Output.ConsoleFormat != "ndjson" {
		return fmt.Errorf("unsupported --console-format: %s (must be one of: text, json, ndjson)", c.Output.ConsoleFormat)
	}

	for _, emit := range c.Output.Emit {
		v := normalizeEnumValue(emit)
		if v == "" {
			return errors.New("--emit must be one of: json, ndjson")
		}
		if v != "json" && v != "ndjson" {
			return fmt.Errorf("unsupported --emit value: %s (must be one of: json, ndjson)", v)
		}
	}

	// Runtime validation
	if c.Update.Jobs <= 0 {
		return errors.New("--jobs must be >= 1")
	}
	if c.Runtime.Timeout <= 0 {
		return errors.New("--timeout must be > 0")
	}

	if c.Output.Out != "" {
		c.Output.OutFormat = normalizeEnumValue(c.Output.OutFormat)
		if c.Output.OutFormat == "" {
			ext := strings.ToLower(filepath.Ext(c.Output.Out))
			switch ext {
			case ".json":
				c.Output.OutFormat = "json"
			case ".ndjson", ".jsonl":
				c.Output.OutFormat = "ndjson"
			default:
				if ext == "" {
					return errors.New("cannot infer output format from file extension (missing extension); use --out-format")
				}
				return fmt.Errorf("cannot infer output format from file extension %q; use --out-format", ext)
			}
		} else {
			if c.Output.OutFormat != "json" && c.Output.OutFormat != "ndjson" {
				return fmt.Errorf("unsupported output format: %s", c.Output.OutFormat)
			}
		}
	}

	return nil
}

func normalizeEnumValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func splitCommaList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			p := strings.TrimSpace(part)
			if p == "" {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}
