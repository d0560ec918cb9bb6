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

package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	jujuerrors "github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/cli-runtime/pkg/genericiooptions"

	"github.com/org/juju-substrate/internal/config"
	suberrors "github.com/org/juju-substrate/pkg/errors"
	"github.com/org/juju-substrate/pkg/juju"
)

const testStatus = `
applications:
  keystone:
    units:
      keystone/0:
        machine: "0"
        workload-status:
          current: active
  nova:
    units:
      nova/0:
        machine: "1"
        subordinates:
          nova-hacluster/0:
            workload-status:
              current: blocked
`

// runCLI executes the root command against mock with args and returns
// stdout.
func runCLI(t *testing.T, mock *juju.MockClient, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SUBSTRATE_CONFIG", "")
	t.Setenv("SUBSTRATE_MODEL", "")

	streams, _, out, _ := genericiooptions.NewTestIOStreams()
	root, opts := newRootCmd(streams)
	opts.newClient = func(*config.Config, logr.Logger) juju.ClientInterface { return mock }
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCmd(t *testing.T) {
	root, _ := newRootCmd(genericiooptions.IOStreams{In: &bytes.Buffer{}, Out: &bytes.Buffer{}, ErrOut: &bytes.Buffer{}})

	subcommands := []string{"version", "up", "bootstrap", "deploy", "status", "leader", "action", "exec",
		"credentials", "provision", "crashdump", "teardown", "check"}
	for _, sub := range subcommands {
		found := false
		for _, c := range root.Commands() {
			if c.Name() == sub {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected subcommand %s to exist", sub)
		}
	}

	for _, flag := range []string{"config", "model", "metrics-textfile", "zap-log-level", "zap-devel"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("expected flag --%s to exist", flag)
		}
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := runCLI(t, &juju.MockClient{}, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "substrate "))
}

func TestStatusCmd(t *testing.T) {
	mock := &juju.MockClient{
		StatusFunc: func(_ context.Context, model string) (*juju.Status, error) {
			assert.Equal(t, "openstack", model)
			return juju.ParseStatus([]byte(testStatus))
		},
	}

	t.Run("table", func(t *testing.T) {
		out, err := runCLI(t, mock, "status")
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 4)
		assert.True(t, strings.HasPrefix(lines[0], "UNIT"))
		assert.True(t, strings.HasPrefix(lines[1], "keystone/0"))
		assert.True(t, strings.HasPrefix(lines[2], "nova/0"))
		assert.True(t, strings.HasPrefix(lines[3], "nova-hacluster/0"))
		assert.Contains(t, lines[3], "subordinate")
		assert.Contains(t, lines[3], "blocked")
	})

	t.Run("filtered yaml", func(t *testing.T) {
		out, err := runCLI(t, mock, "status", "--application", "nova", "-o", "yaml")
		require.NoError(t, err)
		assert.Contains(t, out, "name: nova/0")
		assert.NotContains(t, out, "keystone")
		assert.NotContains(t, out, "nova-hacluster")
	})

	t.Run("model flag", func(t *testing.T) {
		other := &juju.MockClient{StatusFunc: func(_ context.Context, model string) (*juju.Status, error) {
			assert.Equal(t, "ceph", model)
			return juju.ParseStatus([]byte("applications: {}\n"))
		}}
		out, err := runCLI(t, other, "-m", "ceph", "status")
		require.NoError(t, err)
		assert.Equal(t, "No units found\n", out)
	})

	t.Run("bad output format", func(t *testing.T) {
		_, err := runCLI(t, mock, "status", "-o", "xml")
		assert.Error(t, err)
		assert.Equal(t, ExitValidation, ExitCode(err))
	})
}

func TestLeaderCmd(t *testing.T) {
	mock := &juju.MockClient{
		LeaderFunc: func(_ context.Context, _, application string) (string, bool, error) {
			if application == "keystone" {
				return "keystone/1", true, nil
			}
			return "", false, nil
		},
	}

	out, err := runCLI(t, mock, "leader", "keystone")
	require.NoError(t, err)
	assert.Equal(t, "keystone/1\n", out)

	_, err = runCLI(t, mock, "leader", "glance")
	assert.ErrorContains(t, err, `"glance" not found`)
	assert.Equal(t, ExitNotFound, ExitCode(err))
}

func TestActionRunCmd(t *testing.T) {
	t.Run("waits with the configured default timeout", func(t *testing.T) {
		mock := &juju.MockClient{
			RunActionToCompletionFunc: func(_ context.Context, _, unit, action string, timeout time.Duration, args ...string) (*juju.ActionResult, error) {
				assert.Equal(t, "keystone/0", unit)
				assert.Equal(t, "pause", action)
				assert.Equal(t, []string{"force=true"}, args)
				assert.Equal(t, 600*time.Second, timeout)
				return &juju.ActionResult{ID: "7f3c8a5e", Status: juju.ActionCompleted}, nil
			},
		}
		out, err := runCLI(t, mock, "action", "run", "keystone/0", "pause", "force=true")
		require.NoError(t, err)
		assert.Contains(t, out, "status: completed")
	})

	t.Run("no-wait prints the id", func(t *testing.T) {
		mock := &juju.MockClient{
			QueueActionFunc: func(context.Context, string, string, string, ...string) (string, error) {
				return "7f3c8a5e", nil
			},
		}
		out, err := runCLI(t, mock, "action", "run", "keystone/0", "pause", "--no-wait")
		require.NoError(t, err)
		assert.Equal(t, "7f3c8a5e\n", out)
	})
}

func TestExecCmd(t *testing.T) {
	mock := &juju.MockClient{
		RunSynchronousFunc: func(_ context.Context, _, unit, command string, args ...string) ([]byte, error) {
			assert.Equal(t, "keystone/0", unit)
			assert.Equal(t, "leader-get", command)
			assert.Equal(t, []string{"admin_passwd"}, args)
			return []byte("s3cret\n"), nil
		},
	}
	out, err := runCLI(t, mock, "exec", "keystone/0", "--", "leader-get", "admin_passwd")
	require.NoError(t, err)
	assert.Equal(t, "s3cret\n", out)
}

func TestTeardownCmd(t *testing.T) {
	var killed, destroyed bool
	mock := &juju.MockClient{
		DestroyModelFunc:   func(context.Context, string) error { destroyed = true; return nil },
		KillControllerFunc: func(context.Context, string) error { killed = true; return nil },
	}
	_, err := runCLI(t, mock, "teardown", "--kill-controller")
	require.NoError(t, err)
	assert.True(t, destroyed)
	assert.True(t, killed)
}

func TestConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "substrate.toml")
	require.NoError(t, os.WriteFile(path, []byte("[substrate]\nmodel = \"from-file\"\n"), 0o600))

	mock := &juju.MockClient{
		StatusFunc: func(_ context.Context, model string) (*juju.Status, error) {
			assert.Equal(t, "from-file", model)
			return juju.ParseStatus([]byte("applications: {}\n"))
		},
	}
	_, err := runCLI(t, mock, "--config", path, "status")
	require.NoError(t, err)
}

type stubExecutor struct {
	calls []string
}

func (s *stubExecutor) Execute(_ context.Context, cmd juju.Command) (*juju.Result, error) {
	s.calls = append(s.calls, strings.Join(cmd.Args, " "))
	return &juju.Result{}, nil
}

func TestPreflight(t *testing.T) {
	dir := t.TempDir()
	bundle := filepath.Join(dir, "bundle.yaml")
	require.NoError(t, os.WriteFile(bundle, []byte("applications: {}\n"), 0o600))

	cfg := config.Default()
	cfg.Bundle.Path = bundle
	cfg.Bundle.Overlays = []string{filepath.Join(dir, "missing.yaml")}
	cfg.OpenStack.Enabled = true

	executor := &stubExecutor{}
	checker := preflight(cfg, executor, false)
	results := checker.Run(context.Background())

	byName := map[string]bool{}
	for _, r := range results {
		byName[r.Name] = r.Healthy
	}
	assert.True(t, byName["juju"])
	assert.True(t, byName["bundle"])
	assert.True(t, byName["openstack"])
	assert.False(t, byName["overlay "+cfg.Bundle.Overlays[0]])
	assert.NotContains(t, byName, "crashdump")
	assert.ElementsMatch(t, []string{"juju version", "openstack --version"}, executor.calls)
	assert.Error(t, checker.Healthy())
}

func TestCheckCmd(t *testing.T) {
	for _, key := range []string{"SUBSTRATE_CONFIG", "SUBSTRATE_BUNDLE", "JUJU_PATH", "JUJU_DATA"} {
		t.Setenv(key, "")
	}
	streams, _, out, _ := genericiooptions.NewTestIOStreams()
	root, opts := newRootCmd(streams)
	executor := &stubExecutor{}
	opts.executor = executor
	root.SetArgs([]string{"check"})

	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "juju")
	assert.Contains(t, out.String(), "ok")
	assert.Equal(t, []string{"juju version"}, executor.calls)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"validation", suberrors.Validation("bad config"), ExitValidation},
		{"not found", suberrors.NotFound("action", "7f3c8a5e"), ExitNotFound},
		{"timeout", &suberrors.TimeoutError{Args: []string{"juju", "status"}, Timeout: time.Second}, ExitTimeout},
		{"malformed output", suberrors.Malformed("status", "missing top-level key", nil), ExitMalformedOutput},
		{"external command", &suberrors.ExternalCommandError{Args: []string{"juju", "status"}, ExitCode: 1}, ExitExternalCommand},
		{"annotated timeout", jujuerrors.Annotate(&suberrors.TimeoutError{Timeout: time.Second}, "step model"), ExitTimeout},
		{"wrapped validation", suberrors.Wrapf(suberrors.Validation("x"), "loading"), ExitValidation},
		{"plain", assert.AnError, ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestLogErrorDetail(t *testing.T) {
	var lines []string
	logger := funcr.New(func(prefix, args string) { lines = append(lines, args) }, funcr.Options{Verbosity: 1})

	err := jujuerrors.Annotate(suberrors.Newf("existence of model %s is unknown", "openstack").WithContext("model", "openstack"), "step model")
	logErrorDetail(logger, err)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"model":"openstack"`)
	assert.Contains(t, lines[0], `"stack"`)
	assert.Contains(t, lines[0], "TestLogErrorDetail")

	lines = nil
	logErrorDetail(logger, assert.AnError)
	assert.Empty(t, lines)
}
