package output

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// ReportSink aggregates a whole run and writes a Markdown summary on Close.
// Useful for pasting into a PR or keeping alongside CI artifacts.
type ReportSink struct {
	path         string
	file         *os.File
	now          func() time.Time
	mu           sync.Mutex
	records      []Record
	target       string
	branches     int
	exitCode     int
	haveExitCode bool
}

func NewReportSink(path string) (*ReportSink, error) {
	if path == "" {
		return nil, fmt.Errorf("report path required")
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}

	return &ReportSink{path: path, file: f, now: time.Now}, nil
}

func (s *ReportSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch t := v.(type) {
	case Record:
		s.records = append(s.records, t)
	case Event:
		switch t.Type {
		case "run.started":
			s.target = t.Target
			s.branches = t.Branches
		case "run.finished":
			s.exitCode = t.ExitCode
			s.haveExitCode = true
		}
	}
	return nil
}

func (s *ReportSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	b.WriteString("# Branch tidy report\n\n")
	fmt.Fprintf(&b, "- Generated: %s\n", s.now().UTC().Format(time.RFC3339))
	if s.target != "" {
		fmt.Fprintf(&b, "- Target: `%s`\n", s.target)
	}
	fmt.Fprintf(&b, "- Branches considered: %d\n", s.branches)
	if s.haveExitCode {
		fmt.Fprintf(&b, "- Exit code: %d\n", s.exitCode)
	}
	b.WriteString("\n")

	removed := filterRecords(s.records, "removed")
	removable := filterRecords(s.records, "removable")
	var failed []Record
	for _, r := range s.records {
		if r.Error != "" {
			failed = append(failed, r)
		}
	}

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "| Removed | Removable | Failed | Kept |\n")
	fmt.Fprintf(&b, "|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d |\n\n",
		len(removed), len(removable), len(failed),
		len(s.records)-len(removed)-len(removable)-len(failed))

	writeSection := func(title string, records []Record) {
		if len(records) == 0 {
			return
		}
		fmt.Fprintf(&b, "## %s\n\n", title)
		b.WriteString("| Branch | Classification | Forced delete | Steps |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, r := range records {
			force := "no"
			if r.RequiresForce {
				force = "yes"
			}
			fmt.Fprintf(&b, "| `%s` | %s | %s | %d |\n", r.Branch, r.Kind, force, r.Steps)
		}
		b.WriteString("\n")
	}
	writeSection("Removed branches", removed)
	writeSection("Removable branches (dry run)", removable)

	if len(failed) > 0 {
		b.WriteString("## Failures\n\n")
		for _, r := range failed {
			fmt.Fprintf(&b, "- `%s`: %s\n", r.Branch, r.Error)
		}
		b.WriteString("\n")
	}

	if _, err := s.file.WriteString(b.String()); err != nil {
		_ = s.file.Close()
		return err
	}
	return s.file.Close()
}

// filterRecords returns records in the given state, sorted by branch name so
// reports are stable between runs.
func filterRecords(records []Record, state string) []Record {
	var out []Record
	for _, r := range records {
		if r.State == state && r.Error == "" {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Branch < out[j].Branch })
	return out
}
