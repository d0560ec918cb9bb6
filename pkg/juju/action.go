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
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	suberrors "github.com/org/juju-substrate/pkg/errors"
	"github.com/org/juju-substrate/pkg/metrics"
)

// actionWaitGrace is added to the juju-side wait to bound the process
// itself, so juju gets to report its own timeout first.
const actionWaitGrace = 30 * time.Second

// RunAction queues an action on a unit. Args are key=value pairs.
func (c *Client) RunAction(ctx context.Context, model, unit, action string, args ...string) (*ActionInvocation, error) {
	cmdArgs := []string{"run-action", "-m", model, "--format=yaml", unit, action}
	cmdArgs = append(cmdArgs, args...)
	output, err := c.run(ctx, cmdArgs...)
	if err != nil {
		return nil, err
	}
	id, err := ParseActionQueued(output)
	if err != nil {
		return nil, err
	}
	return &ActionInvocation{ID: id, Unit: unit, Action: action, Args: args}, nil
}

// WaitForAction lets juju block for up to wait until the action finishes and
// returns its result. A zero wait uses DefaultActionWait. The result may
// still be non-terminal if juju gave up waiting.
func (c *Client) WaitForAction(ctx context.Context, model, id string, wait time.Duration) (*ActionResult, error) {
	if id == "" {
		return nil, suberrors.Validation("action id is required")
	}
	if wait <= 0 {
		wait = DefaultActionWait
	}
	output, err := c.runWithTimeout(ctx, wait+actionWaitGrace, waitArgs(model, id, wait)...)
	if err != nil {
		return nil, err
	}
	result, err := ParseActionResult(output)
	if err != nil {
		return nil, err
	}
	if result.ID == "" {
		result.ID = id
	}
	return result, nil
}

// waitArgs builds the show-action-output call. juju takes whole seconds, so
// a fractional wait is rounded up rather than down to zero.
func waitArgs(model, id string, wait time.Duration) []string {
	seconds := int(math.Ceil(wait.Seconds()))
	return []string{"show-action-output", "-m", model, "--format=yaml", "--wait", fmt.Sprintf("%ds", seconds), id}
}

// ShowActionStatus returns the current status of an action without waiting.
// An id prefix matches, as it does for juju itself.
func (c *Client) ShowActionStatus(ctx context.Context, model, id string) (*ActionResult, error) {
	if id == "" {
		return nil, suberrors.Validation("action id is required")
	}
	output, err := c.run(ctx, "show-action-status", "-m", model, "--format=yaml", id)
	if err != nil {
		return nil, err
	}
	actions, err := ParseActionStatus(output)
	if err != nil {
		return nil, err
	}
	for i := range actions {
		if actions[i].ID == id || strings.HasPrefix(actions[i].ID, id) {
			return &actions[i], nil
		}
	}
	if len(actions) == 1 && actions[0].ID == "" {
		actions[0].ID = id
		return &actions[0], nil
	}
	return nil, suberrors.NotFound("action", id)
}

// --- Action Poller ---

// QueueAction queues an action and returns its id.
func (c *Client) QueueAction(ctx context.Context, model, unit, action string, args ...string) (string, error) {
	inv, err := c.RunAction(ctx, model, unit, action, args...)
	if err != nil {
		return "", err
	}
	c.config.Logger.V(1).Info("action queued", "model", model, "unit", unit, "action", action, "id", inv.ID)
	return inv.ID, nil
}

// AwaitAction blocks until the action reaches a terminal state or timeout
// elapses. The polling happens inside juju. Exceeding the bound, whether
// noticed by the process timeout or reported by juju, yields a
// *errors.TimeoutError carrying timeout.
func (c *Client) AwaitAction(ctx context.Context, model, id string, timeout time.Duration) (*ActionResult, error) {
	if timeout <= 0 {
		timeout = DefaultActionWait
	}
	start := time.Now()
	defer func() { metrics.ObserveActionWait(time.Since(start)) }()

	argv := append([]string{c.config.JujuPath}, waitArgs(model, id, timeout)...)
	result, err := c.WaitForAction(ctx, model, id, timeout)
	switch {
	case suberrors.IsTimeout(err), reportsTimeout(err):
		return nil, &suberrors.TimeoutError{Args: argvOf(err, argv), Timeout: timeout}
	case err != nil:
		return nil, err
	case !result.Terminal():
		return result, &suberrors.TimeoutError{Args: argv, Timeout: timeout}
	}
	return result, nil
}

// argvOf returns the argv recorded by a command failure, or fallback.
func argvOf(err error, fallback []string) []string {
	var timeoutErr *suberrors.TimeoutError
	if errors.As(err, &timeoutErr) && len(timeoutErr.Args) > 0 {
		return timeoutErr.Args
	}
	var cmdErr *suberrors.ExternalCommandError
	if errors.As(err, &cmdErr) && len(cmdErr.Args) > 0 {
		return cmdErr.Args
	}
	return fallback
}

// reportsTimeout detects juju giving up on --wait with a non-zero exit.
func reportsTimeout(err error) bool {
	var cmdErr *suberrors.ExternalCommandError
	if !errors.As(err, &cmdErr) {
		return false
	}
	stderr := strings.ToLower(cmdErr.Stderr)
	return strings.Contains(stderr, "timeout reached") || strings.Contains(stderr, "timed out")
}

// ActionStatus returns a point-in-time view of an action.
func (c *Client) ActionStatus(ctx context.Context, model, id string) (*ActionResult, error) {
	return c.ShowActionStatus(ctx, model, id)
}

// RunSynchronous runs a command on a unit immediately, bypassing the action
// queue, and returns its output.
func (c *Client) RunSynchronous(ctx context.Context, model, unit, command string, args ...string) ([]byte, error) {
	return c.Run(ctx, model, unit, command, args...)
}

// RunActionToCompletion queues an action and waits for it to finish. A
// failed action is reported as an error alongside its result.
func (c *Client) RunActionToCompletion(ctx context.Context, model, unit, action string, timeout time.Duration, args ...string) (*ActionResult, error) {
	id, err := c.QueueAction(ctx, model, unit, action, args...)
	if err != nil {
		return nil, err
	}
	result, err := c.AwaitAction(ctx, model, id, timeout)
	if err != nil {
		return result, err
	}
	if result.Status != ActionCompleted {
		return result, suberrors.Permanent(
			fmt.Errorf("action %s %s on %s: %s", action, result.Status, unit, result.Message),
			"action did not complete")
	}
	return result, nil
}
