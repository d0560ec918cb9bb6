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

package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
)

// ExternalCommandError is returned when an external tool exits non-zero.
type ExternalCommandError struct {
	// Args is the full argument vector, binary first.
	Args []string
	// ExitCode is the process exit status.
	ExitCode int
	// Stderr is the captured standard error.
	Stderr string
}

func (e *ExternalCommandError) Error() string {
	msg := fmt.Sprintf("command %q exited with status %d", shellquote.Join(e.Args...), e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

// TimeoutError is returned when a bounded wait is exceeded, either while
// waiting on a process or while waiting on a remote action.
type TimeoutError struct {
	Args    []string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("command %q timed out after %v", shellquote.Join(e.Args...), e.Timeout)
}

// MalformedOutputError is returned when structured output cannot be decoded
// or lacks an expected field. It is never retryable.
type MalformedOutputError struct {
	// Command names the verb that produced the output.
	Command string
	// Reason describes what was wrong with the output.
	Reason string
	// Cause is the decoder error, if any.
	Cause error
}

func (e *MalformedOutputError) Error() string {
	msg := fmt.Sprintf("malformed %s output: %s", e.Command, e.Reason)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Cause
}

// Malformed creates a MalformedOutputError.
func Malformed(command, reason string, cause error) *MalformedOutputError {
	return &MalformedOutputError{Command: command, Reason: reason, Cause: cause}
}

// IsExternalCommand checks if an error is, or wraps, an ExternalCommandError.
func IsExternalCommand(err error) bool {
	var ce *ExternalCommandError
	return errors.As(err, &ce)
}

// IsTimeout checks if an error is, or wraps, a TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// IsMalformedOutput checks if an error is, or wraps, a MalformedOutputError.
func IsMalformedOutput(err error) bool {
	var me *MalformedOutputError
	return errors.As(err, &me)
}
