package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestValidate_NormalizesCommaDelimitedLists(t *testing.T) {
	cfg := New()
	cfg.Detect.BranchNames = []string{"main, master", "trunk", ",,"}
	cfg.Tidy.Protect = []string{"release/*, hotfix/*", "wip"}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned error: %v", err)
	}

	wantBranches := []string{"main", "master", "trunk"}
	if !reflect.DeepEqual(cfg.Detect.BranchNames, wantBranches) {
		t.Fatalf("BranchNames normalized mismatch: got %v want %v", cfg.Detect.BranchNames, wantBranches)
	}
	wantProtect := []string{"release/*", "hotfix/*", "wip"}
	if !reflect.DeepEqual(cfg.Tidy.Protect, wantProtect) {
		t.Fatalf("Protect normalized mismatch: got %v want %v", cfg.Tidy.Protect, wantProtect)
	}
}

func TestValidate_RequiresDetectionCandidates(t *testing.T) {
	cfg := New()
	cfg.Detect.BranchNames = []string{",,"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error, got nil")
	}

	cfg = New()
	cfg.Detect.RemoteNames = nil
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestValidate_RejectsInvalidProtectPattern(t *testing.T) {
	cfg := New()
	cfg.Tidy.Protect = []string{"release/["}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestValidate_RejectsInvalidConsoleFormat(t *testing.T) {
	tests := []struct {
		name          string
		consoleFormat string
	}{
		{name: "empty", consoleFormat: ""},
		{name: "spaces", consoleFormat: "   "},
		{name: "unknown", consoleFormat: "yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			cfg.Output.ConsoleFormat = tt.consoleFormat
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected error, got nil")
			}
		})
	}
}

func TestValidate_AllowsKnownConsoleFormats(t *testing.T) {
	tests := []struct {
		name          string
		consoleFormat string
	}{
		{name: "text", consoleFormat: "text"},
		{name: "json", consoleFormat: "json"},
		{name: "ndjson", consoleFormat: "ndjson"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			cfg.Output.ConsoleFormat = tt.consoleFormat
			if err := cfg.Validate(); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestValidate_RejectsInvalidEmit(t *testing.T) {
	tests := []struct {
		name string
		emit []string
	}{
		{name: "empty", emit: []string{""}},
		{name: "unknown", emit: []string{"yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			cfg.Output.Emit = tt.emit
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected error, got nil")
			}
		})
	}
}

func TestValidate_RejectsInvalidRuntimeBounds(t *testing.T) {
	tests := []struct {
		name      string
		mutateCfg func(cfg *Config)
	}{
		{
			name: "zero_jobs",
			mutateCfg: func(cfg *Config) {
				cfg.Update.Jobs = 0
			},
		},
		{
			name: "negative_timeout",
			mutateCfg: func(cfg *Config) {
				cfg.Runtime.Timeout = -1
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutateCfg(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected error, got nil")
			}
		})
	}
}

func TestValidate_InfersOutFormatFromExtension(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		want    string
		wantErr bool
	}{
		{name: "json", out: "results.json", want: "json"},
		{name: "ndjson", out: "results.ndjson", want: "ndjson"},
		{name: "unknown_extension", out: "results.csv", wantErr: true},
		{name: "missing_extension", out: "results", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			cfg.Output.Out = tt.out
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if cfg.Output.OutFormat != tt.want {
				t.Fatalf("expected out format %q, got %q", tt.want, cfg.Output.OutFormat)
			}
		})
	}
}

func TestLoadFile_MissingFileIsNotAnError(t *testing.T) {
	f, err := LoadFile(t.TempDir())
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}
	if f != nil {
		t.Fatalf("expected nil file, got %+v", f)
	}
}

func TestLoadFile_ParsesSections(t *testing.T) {
	dir := t.TempDir()
	content := `
[detect]
branch_names = ["trunk"]

[tidy]
squashed = false
protect = ["release/*"]

[update]
jobs = 2

[sparse]
exclude = ["/docs/"]
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	f, err := LoadFile(dir)
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}
	if f == nil {
		t.Fatalf("expected parsed file, got nil")
	}
	if !reflect.DeepEqual(f.Detect.BranchNames, []string{"trunk"}) {
		t.Fatalf("unexpected branch names: %v", f.Detect.BranchNames)
	}
	if f.Tidy.Squashed == nil || *f.Tidy.Squashed {
		t.Fatalf("expected squashed=false, got %v", f.Tidy.Squashed)
	}
	if f.Tidy.Merged != nil {
		t.Fatalf("expected merged to stay unset, got %v", *f.Tidy.Merged)
	}
	if f.Update.Jobs != 2 {
		t.Fatalf("expected jobs=2, got %d", f.Update.Jobs)
	}
}

func TestLoadFile_ReportsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("[tidy\n"), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	if _, err := LoadFile(dir); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestFileApply_OverlaysUnsetFields(t *testing.T) {
	cfg := New()
	squashed := false
	f := &File{
		Detect: FileDetect{BranchNames: []string{"trunk"}},
		Tidy:   FileTidy{Squashed: &squashed, Protect: []string{"release/*"}},
		Update: FileUpdate{Jobs: 2},
	}

	f.Apply(cfg, nil)

	if !reflect.DeepEqual(cfg.Detect.BranchNames, []string{"trunk"}) {
		t.Fatalf("expected branch names replaced, got %v", cfg.Detect.BranchNames)
	}
	if cfg.Tidy.Squashed {
		t.Fatalf("expected squashed disabled by file")
	}
	if !cfg.Tidy.Merged {
		t.Fatalf("expected merged to keep its default")
	}
	if cfg.Update.Jobs != 2 {
		t.Fatalf("expected jobs=2, got %d", cfg.Update.Jobs)
	}
	if !reflect.DeepEqual(cfg.Detect.RemoteNames, []string{"upstream", "origin"}) {
		t.Fatalf("expected remote names to keep their default, got %v", cfg.Detect.RemoteNames)
	}
}

func TestFileApply_SkipsExplicitFlags(t *testing.T) {
	cfg := New()
	cfg.Tidy.Squashed = true
	squashed := false
	f := &File{Tidy: FileTidy{Squashed: &squashed, Target: "upstream/main"}}

	f.Apply(cfg, func(flag string) bool { return flag == "squashed" })

	if !cfg.Tidy.Squashed {
		t.Fatalf("expected explicit --squashed to win over the file")
	}
	if cfg.Tidy.Target != "upstream/main" {
		t.Fatalf("expected target applied from file, got %q", cfg.Tidy.Target)
	}
}

func TestFileApply_NilFileIsNoOp(t *testing.T) {
	cfg := New()
	want := *cfg
	var f *File
	f.Apply(cfg, nil)
	if cfg.Runtime.Timeout != 10*time.Minute || !reflect.DeepEqual(cfg.Detect, want.Detect) {
		t.Fatalf("expected config unchanged, got %+v", cfg)
	}
}
