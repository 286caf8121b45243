// Package git runs the git binary against a single repository and exposes the
// handful of plumbing and porcelain operations the rest of the program needs.
// Every subprocess goes through the Runner so verbose logging and error
// reporting stay uniform.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

type Runner struct {
	dir     string
	verbose bool
	logw    io.Writer
}

type options struct {
	verbose bool
	// writer controls where verbose command logs are written (typically stderr)
	// so structured output on stdout stays clean and tests can capture logs.
	writer io.Writer
}

type Option func(*options)

func WithVerbose(enabled bool, writer io.Writer) Option {
	return func(o *options) {
		o.verbose = enabled
		o.writer = writer
	}
}

func NewRunner(dir string, opts ...Option) *Runner {
	o := &options{}
	for _, apply := range opts {
		if apply != nil {
			apply(o)
		}
	}
	if o.verbose && o.writer == nil {
		o.writer = os.Stderr
	}
	return &Runner{dir: dir, verbose: o.verbose, logw: o.writer}
}

// output runs git with the given arguments and returns trimmed stdout.
func (r *Runner) output(ctx context.Context, args ...string) (string, error) {
	out, err := r.exec(ctx, "", args)
	return strings.TrimRight(out, "\n"), err
}

// outputWithInput is output with the given string fed to the child's stdin.
func (r *Runner) outputWithInput(ctx context.Context, stdin string, args ...string) (string, error) {
	out, err := r.exec(ctx, stdin, args)
	return strings.TrimRight(out, "\n"), err
}

// run runs git for its side effects, discarding stdout.
func (r *Runner) run(ctx context.Context, args ...string) error {
	_, err := r.exec(ctx, "", args)
	return err
}

func (r *Runner) exec(ctx context.Context, stdin string, args []string) (string, error) {
	if ctx == nil {
		return "", fmt.Errorf("git: nil context")
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.dir
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	dur := time.Since(start)

	if r.verbose && r.logw != nil {
		state := "ok"
		if err != nil {
			state = err.Error()
		}
		_, _ = fmt.Fprintf(r.logw, "[verbose] git %s: %s (%s)\n", strings.Join(args, " "), state, dur.Truncate(time.Millisecond))
	}

	if err != nil {
		cmdErr := &CommandError{
			Args:     args,
			ExitCode: -1,
			Stderr:   stderr.String(),
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cmdErr.ExitCode = exitErr.ExitCode()
		}
		return stdout.String(), cmdErr
	}
	return stdout.String(), nil
}

// exitCode extracts the exit code from a CommandError, or -1 for any other error.
func exitCode(err error) int {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	return -1
}
