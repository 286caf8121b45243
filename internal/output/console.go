package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

var (
	markDone   = color.New(color.FgGreen).Sprint("✓")
	markDryRun = color.New(color.FgYellow).Sprint("➔")
	markFailed = color.New(color.FgRed).Sprint("✗")

	branchColor = color.New(color.FgCyan).SprintFunc()
	targetColor = color.New(color.FgBlue).SprintFunc()
)

// ConsoleSink renders run output for humans, or mirrors the machine formats
// to the terminal when asked.
type ConsoleSink struct {
	writer        io.Writer
	format        string // "text", "json", "ndjson"
	target        string
	mu            sync.Mutex
	records       []Record // for JSON array output
	allowedStates map[string]bool
}

// NewConsoleSink writes to w in the given format. filterStates, when
// non-empty, limits text and json output to records in those states.
func NewConsoleSink(w io.Writer, format string, filterStates []string) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	if format == "" {
		format = "text"
	}

	s := &ConsoleSink{
		writer: w,
		format: format,
	}

	if len(filterStates) > 0 {
		s.allowedStates = make(map[string]bool)
		for _, state := range filterStates {
			s.allowedStates[strings.ToLower(state)] = true
		}
	}

	return s
}

func (s *ConsoleSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(v)
}

func (s *ConsoleSink) writeLocked(v any) error {
	if len(s.allowedStates) > 0 {
		if r, ok := v.(Record); ok && !s.allowedStates[strings.ToLower(r.State)] {
			return nil
		}
	}

	switch s.format {
	case "json":
		r, ok := v.(Record)
		if !ok {
			// Ignore lifecycle events in JSON aggregate mode.
			return nil
		}
		s.records = append(s.records, r)
		return nil
	case "ndjson":
		encoder := json.NewEncoder(s.writer)
		switch t := v.(type) {
		case Event:
			if err := encoder.Encode(t); err != nil {
				return err
			}
			return flushIfPossible(s.writer)
		case Record:
			if err := encoder.Encode(eventFromRecord(t)); err != nil {
				return err
			}
			return flushIfPossible(s.writer)
		default:
			return nil
		}
	case "text":
		switch t := v.(type) {
		case Event:
			return s.writeEvent(t)
		case Record:
			return s.writeRecord(t)
		default:
			return nil
		}
	default:
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
}

func (s *ConsoleSink) writeEvent(e Event) error {
	switch e.Type {
	case "run.started":
		s.target = e.Target
		_, err := fmt.Fprintf(s.writer, "Checking %d branches against %s.\n", e.Branches, targetColor(e.Target))
		return err
	case "run.finished":
		var err error
		switch {
		case e.ExitCode == 3:
			_, err = fmt.Fprintf(s.writer, "%s Run aborted.\n", markFailed)
		case e.Removed > 0 && e.DryRun:
			_, err = fmt.Fprintf(s.writer, "%s Would remove %d of %d branches.\n", markDryRun, e.Removed, e.Removed+e.Kept)
		case e.Removed > 0:
			_, err = fmt.Fprintf(s.writer, "%s Removed %d of %d branches.\n", markDone, e.Removed, e.Removed+e.Kept)
		case e.Failed > 0:
			_, err = fmt.Fprintf(s.writer, "%s Kept %d branches, %d failed.\n", markFailed, e.Kept, e.Failed)
		default:
			_, err = fmt.Fprintf(s.writer, "%s Nothing to remove, kept %d branches.\n", markDone, e.Kept)
		}
		if err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	default:
		// Strategy progress stays out of text mode; verbose logging covers it.
		return nil
	}
}

func (s *ConsoleSink) writeRecord(r Record) error {
	var err error
	switch {
	case r.Error != "":
		_, err = fmt.Fprintf(s.writer, "%s Branch %s: %s\n", markFailed, branchColor(r.Branch), r.Error)
	case r.State == "removed":
		_, err = fmt.Fprintf(s.writer, "%s Branch %s was %s into %s and was removed.\n",
			markDone, branchColor(r.Branch), r.Kind, targetColor(s.target))
	case r.State == "removable":
		_, err = fmt.Fprintf(s.writer, "%s Branch %s was %s into %s and can be removed.\n",
			markDryRun, branchColor(r.Branch), r.Kind, targetColor(s.target))
	default:
		// Branches that stay put are not worth a line each.
		return nil
	}
	if err != nil {
		return err
	}
	return flushIfPossible(s.writer)
}

func (s *ConsoleSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == "json" {
		encoder := json.NewEncoder(s.writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(s.records); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	}
	if s.format != "text" && s.format != "ndjson" {
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
	return nil
}
