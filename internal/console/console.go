// Package console runs external commands for the information panels.
package console

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// waitDelay bounds how long Run waits for grandchildren holding stdout
// open after the context is done.
const waitDelay = time.Second

// Result is the outcome of one command or fetch.
type Result struct {
	Output     string
	ExitStatus int
	Err        error
}

// Failed reports whether the command did not run to a zero exit.
func (r Result) Failed() bool {
	return r.Err != nil || r.ExitStatus != 0
}

// Runner executes a shell command line and collects its stdout.
type Runner interface {
	Run(ctx context.Context, command string) Result
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, command string) Result

func (f RunnerFunc) Run(ctx context.Context, command string) Result { return f(ctx, command) }

// Shell runs commands through /bin/sh so pipelines work as typed.
type Shell struct {
	// Path of the shell binary. Defaults to "sh".
	Path string
	// Dir is the working directory; empty means the caller's.
	Dir string
}

// Run executes command and waits for it. A non-zero exit is reported in
// ExitStatus with a nil Err; Err is set only when the process could not run.
func (s Shell) Run(ctx context.Context, command string) Result {
	shell := s.Path
	if shell == "" {
		shell = "sh"
	}

	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Dir = s.Dir
	cmd.WaitDelay = waitDelay
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	err := cmd.Run()
	res := Result{Output: stdout.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitStatus = exitErr.ExitCode()
			if res.ExitStatus < 0 {
				res.Err = err
			}
			return res
		}
		res.Err = err
		res.ExitStatus = -1
	}
	return res
}
