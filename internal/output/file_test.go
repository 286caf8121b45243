package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileSinkInfersFormat(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		wantErr bool
	}{
		{name: "json extension", file: "out.json"},
		{name: "ndjson extension", file: "out.ndjson"},
		{name: "jsonl extension", file: "out.jsonl"},
		{name: "unknown extension", file: "out.txt", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			sink, err := NewFileSink(path, "")
			if tt.wantErr {
				if err == nil {
					t.Error("expected an error for unknown extension")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewFileSink: %v", err)
			}
			if err := sink.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}
		})
	}
}

func TestFileSinkWritesAggregate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	sink, err := NewFileSink(path, "")
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}

	if err := sink.Write(Record{Branch: "done", State: "removed", Kind: "merged"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("file is not JSON: %v", err)
	}
	if len(records) != 1 || records[0].Branch != "done" {
		t.Errorf("file holds %+v, want single record for done", records)
	}
}

func TestFileSinkStreamsNDJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.ndjson")
	sink, err := NewFileSink(path, "")
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}

	if err := sink.Write(RunStarted("origin/main", 1)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := sink.Write(Record{Branch: "done", State: "removed", Kind: "merged"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Errorf("file holds %d lines, want 2", len(lines))
	}
}
