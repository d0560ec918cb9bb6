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

package health

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/juju/clock/testclock"

	"github.com/org/juju-substrate/pkg/juju"
)

type exitExecutor struct {
	code int
	args []string
}

func (e *exitExecutor) Execute(_ context.Context, cmd juju.Command) (*juju.Result, error) {
	e.args = cmd.Args
	return &juju.Result{ExitCode: e.code, Stderr: []byte("boom")}, nil
}

func TestNewChecker(t *testing.T) {
	c := NewChecker(nil)
	if c == nil {
		t.Fatal("NewChecker returned nil")
	}
	if c.checkTimeout != DefaultCheckTimeout {
		t.Errorf("expected checkTimeout %v, got %v", DefaultCheckTimeout, c.checkTimeout)
	}
	if err := c.Healthy(); err != nil {
		t.Errorf("checker with no checks should be healthy: %v", err)
	}
}

func TestRun_OrderAndResults(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c := NewChecker(testclock.NewClock(now))
	c.Register("zeta", func(context.Context) error { return nil })
	c.Register("alpha", func(context.Context) error { return errors.New("missing") })

	results := c.Run(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Name != "alpha" || results[1].Name != "zeta" {
		t.Errorf("results not in name order: %+v", results)
	}
	if results[0].Healthy || results[0].Error != "missing" {
		t.Errorf("alpha should fail with 'missing', got %+v", results[0])
	}
	if !results[1].Healthy {
		t.Errorf("zeta should pass, got %+v", results[1])
	}
	if !results[1].CheckedAt.Equal(now) {
		t.Errorf("expected CheckedAt %v, got %v", now, results[1].CheckedAt)
	}

	err := c.Healthy()
	if err == nil || !strings.Contains(err.Error(), "alpha: missing") {
		t.Errorf("expected aggregate naming alpha, got %v", err)
	}
}

func TestHealthy_NotChecked(t *testing.T) {
	c := NewChecker(nil)
	c.Register("juju", func(context.Context) error { return nil })

	if err := c.Healthy(); err == nil {
		t.Error("a registered check that never ran should not be healthy")
	}
	c.Run(context.Background())
	if err := c.Healthy(); err != nil {
		t.Errorf("expected healthy after run: %v", err)
	}
}

func TestRun_CheckTimeout(t *testing.T) {
	c := NewChecker(nil)
	c.SetCheckTimeout(10 * time.Millisecond)
	c.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	results := c.Run(context.Background())
	if results[0].Healthy {
		t.Error("slow check should fail once its timeout elapses")
	}
}

func TestCommandCheck(t *testing.T) {
	ok := &exitExecutor{}
	if err := CommandCheck(ok, "juju", "version")(context.Background()); err != nil {
		t.Errorf("zero exit should pass: %v", err)
	}
	if strings.Join(ok.args, " ") != "juju version" {
		t.Errorf("unexpected argv %v", ok.args)
	}

	failing := &exitExecutor{code: 2}
	if err := CommandCheck(failing, "juju", "version")(context.Background()); err == nil {
		t.Error("non-zero exit should fail")
	}
}

func TestPathChecks(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "bundle.yaml")
	if err := os.WriteFile(file, []byte("series: jammy\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := DirCheck(dir)(ctx); err != nil {
		t.Errorf("DirCheck(dir): %v", err)
	}
	if err := DirCheck(file)(ctx); err == nil {
		t.Error("DirCheck(file) should fail")
	}
	if err := FileCheck(file)(ctx); err != nil {
		t.Errorf("FileCheck(file): %v", err)
	}
	if err := FileCheck(dir)(ctx); err == nil {
		t.Error("FileCheck(dir) should fail")
	}
	if err := FileCheck(filepath.Join(dir, "missing"))(ctx); err == nil {
		t.Error("FileCheck(missing) should fail")
	}
	if err := BinaryCheck(filepath.Join(dir, "no-such-binary"))(ctx); err == nil {
		t.Error("BinaryCheck(missing) should fail")
	}
}
