/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package juju

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/go-logr/logr"
	"github.com/kballard/go-shellquote"

	suberrors "github.com/org/juju-substrate/pkg/errors"
	"github.com/org/juju-substrate/pkg/metrics"
)

// killGrace bounds how long Execute waits for output pipes to drain after
// the process has been killed.
const killGrace = 5 * time.Second

// Command is a single external process invocation.
type Command struct {
	// Args is the argument vector; Args[0] is the binary.
	Args []string
	// Timeout bounds the run. Zero means no bound beyond the context.
	Timeout time.Duration
	// Env is appended to the current process environment.
	Env []string
}

// Result holds what a finished process produced.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Executor runs external commands. Implementations must not treat a
// non-zero exit status as an error; use Checked for that.
type Executor interface {
	Execute(ctx context.Context, cmd Command) (*Result, error)
}

// ProcessExecutor runs commands as local child processes.
type ProcessExecutor struct {
	Logger logr.Logger
}

// NewProcessExecutor creates a ProcessExecutor logging to logger.
func NewProcessExecutor(logger logr.Logger) *ProcessExecutor {
	return &ProcessExecutor{Logger: logger}
}

// Execute spawns cmd and blocks until it exits or its timeout elapses.
// On timeout the process is killed and a *errors.TimeoutError is returned.
func (e *ProcessExecutor) Execute(ctx context.Context, cmd Command) (*Result, error) {
	if len(cmd.Args) == 0 {
		return nil, suberrors.Validation("empty command")
	}

	runCtx := ctx
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	timer := metrics.NewCLITimer(commandLabel(cmd.Args))
	e.Logger.V(1).Info("running command", "command", shellquote.Join(cmd.Args...), "timeout", cmd.Timeout)

	proc := exec.CommandContext(runCtx, cmd.Args[0], cmd.Args[1:]...)
	proc.WaitDelay = killGrace
	if len(cmd.Env) > 0 {
		proc.Env = append(os.Environ(), cmd.Env...)
	}

	var stdout, stderr bytes.Buffer
	proc.Stdout = &stdout
	proc.Stderr = &stderr

	err := proc.Run()
	result := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: proc.ProcessState.ExitCode(),
	}

	if cmd.Timeout > 0 && errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		timer.RecordError()
		return result, &suberrors.TimeoutError{Args: cmd.Args, Timeout: cmd.Timeout}
	}
	if ctx.Err() != nil {
		timer.RecordError()
		return result, suberrors.Transient(ctx.Err(), "command cancelled: "+shellquote.Join(cmd.Args...))
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		// The process never ran, e.g. the binary is missing.
		timer.RecordError()
		return nil, suberrors.Wrapf(err, "starting %s", cmd.Args[0])
	}

	if result.ExitCode != 0 {
		timer.RecordError()
	} else {
		timer.RecordSuccess()
	}
	return result, nil
}

// Checked runs cmd and converts a non-zero exit into an
// *errors.ExternalCommandError carrying argv, exit code and stderr.
func Checked(ctx context.Context, executor Executor, cmd Command) ([]byte, error) {
	result, err := executor.Execute(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if result.ExitCode != 0 {
		return nil, &suberrors.ExternalCommandError{
			Args:     cmd.Args,
			ExitCode: result.ExitCode,
			Stderr:   string(result.Stderr),
		}
	}
	return result.Stdout, nil
}

// commandLabel keeps metric cardinality low: binary name plus verb.
func commandLabel(args []string) string {
	label := filepath.Base(args[0])
	if len(args) > 1 {
		label += " " + args[1]
	}
	return label
}
