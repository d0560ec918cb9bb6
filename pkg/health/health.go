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

// Package health runs preflight checks against the tools the deployer
// shells out to, before any of them is asked to change anything.
package health

import (
	"context"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/juju/clock"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/apimachinery/pkg/util/sets"

	suberrors "github.com/org/juju-substrate/pkg/errors"
	"github.com/org/juju-substrate/pkg/juju"
)

// DefaultCheckTimeout bounds a single check.
const DefaultCheckTimeout = 5 * time.Second

// Check probes one prerequisite and returns nil when it is usable.
type Check func(ctx context.Context) error

// Result is the outcome of one check.
type Result struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Checker holds named checks and the results of their last run.
type Checker struct {
	mu           sync.RWMutex
	clock        clock.Clock
	checkTimeout time.Duration
	checks       map[string]Check
	results      map[string]Result
}

// NewChecker creates a checker timing results with clk.
func NewChecker(clk clock.Clock) *Checker {
	if clk == nil {
		clk = clock.WallClock
	}
	return &Checker{
		clock:        clk,
		checkTimeout: DefaultCheckTimeout,
		checks:       map[string]Check{},
		results:      map[string]Result{},
	}
}

// SetCheckTimeout overrides DefaultCheckTimeout; zero disables the bound.
func (c *Checker) SetCheckTimeout(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkTimeout = d
}

// Register adds or replaces the check called name.
func (c *Checker) Register(name string, check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
	delete(c.results, name)
}

// Run executes every registered check in name order and records the results.
func (c *Checker) Run(ctx context.Context) []Result {
	c.mu.RLock()
	names := sets.List(sets.KeySet(c.checks))
	checks := make([]Check, len(names))
	for i, name := range names {
		checks[i] = c.checks[name]
	}
	timeout := c.checkTimeout
	c.mu.RUnlock()

	results := make([]Result, len(names))
	for i, name := range names {
		results[i] = c.runOne(ctx, name, checks[i], timeout)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range results {
		c.results[r.Name] = r
	}
	return results
}

func (c *Checker) runOne(ctx context.Context, name string, check Check, timeout time.Duration) Result {
	checkCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		checkCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	result := Result{Name: name, Healthy: true}
	if err := check(checkCtx); err != nil {
		result.Healthy = false
		result.Error = err.Error()
	}
	result.CheckedAt = c.clock.Now()
	return result
}

// Healthy aggregates the failures recorded by the last Run. Checks that
// have not run yet are reported as failures.
func (c *Checker) Healthy() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var errs []error
	for _, name := range sets.List(sets.KeySet(c.checks)) {
		r, ok := c.results[name]
		switch {
		case !ok:
			errs = append(errs, &healthError{name: name, msg: "not checked"})
		case !r.Healthy:
			errs = append(errs, &healthError{name: name, msg: r.Error})
		}
	}
	return utilerrors.NewAggregate(errs)
}

// CommandCheck passes when args runs and exits zero.
func CommandCheck(executor juju.Executor, args ...string) Check {
	return func(ctx context.Context) error {
		_, err := juju.Checked(ctx, executor, juju.Command{Args: args})
		return err
	}
}

// BinaryCheck passes when path resolves to an executable, either directly
// or through PATH.
func BinaryCheck(path string) Check {
	return func(context.Context) error {
		_, err := exec.LookPath(path)
		return err
	}
}

// DirCheck passes when path exists and is a directory.
func DirCheck(path string) Check {
	return func(context.Context) error {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return suberrors.Newf("%s is not a directory", path).WithContext("path", path)
		}
		return nil
	}
}

// FileCheck passes when path exists and is a regular file.
func FileCheck(path string) Check {
	return func(context.Context) error {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return suberrors.Newf("%s is not a regular file", path).WithContext("path", path)
		}
		return nil
	}
}

// healthError implements error interface for check failures.
type healthError struct {
	name string
	msg  string
}

func (e *healthError) Error() string {
	return e.name + ": " + e.msg
}
