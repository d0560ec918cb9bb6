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
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/juju/clock"
	"k8s.io/apimachinery/pkg/util/sets"

	suberrors "github.com/org/juju-substrate/pkg/errors"
)

const (
	// DefaultProbeTimeout bounds the show-controller reachability probe.
	DefaultProbeTimeout = 10 * time.Second

	// DefaultActionWait is how long WaitForAction lets juju wait.
	DefaultActionWait = 600 * time.Second

	// DefaultModelWait is the `juju wait` timeout in seconds.
	DefaultModelWait = 14400

	// DefaultCrashdumpPath is where the juju-crashdump snap installs its binary.
	DefaultCrashdumpPath = "/snap/bin/juju-crashdump"

	// crashdumpTimeFormat renders as YYYY-MM-DD-HH.MM.SS.
	crashdumpTimeFormat = "2006-01-02-15.04.05"
)

// ClientConfig holds configuration for the juju CLI client.
type ClientConfig struct {
	// JujuPath is the path to the juju binary
	JujuPath string

	// DataDir is exported as JUJU_DATA when set.
	DataDir string

	// Timeout is the maximum duration of a single juju command.
	// If zero, commands run until they exit or the context ends.
	Timeout time.Duration

	// ProbeTimeout bounds the controller reachability probe.
	// If zero, DefaultProbeTimeout is used.
	ProbeTimeout time.Duration

	// CrashdumpPath is the path to the juju-crashdump binary.
	CrashdumpPath string

	// CrashdumpAddons is the addons file passed to juju-crashdump.
	CrashdumpAddons string

	// Executor runs the processes. If nil, a ProcessExecutor is used.
	Executor Executor

	// Logger receives command and reconciliation logs.
	Logger logr.Logger

	// Clock stamps crashdump archives. If nil, the wall clock is used.
	Clock clock.Clock
}

// Client wraps the juju CLI tool.
type Client struct {
	config ClientConfig
}

// NewClient creates a new juju client with default settings.
func NewClient() *Client {
	return NewClientWithConfig(ClientConfig{})
}

// NewClientWithConfig creates a new juju client with the given configuration.
func NewClientWithConfig(cfg ClientConfig) *Client {
	if cfg.JujuPath == "" {
		cfg.JujuPath = "juju"
		if p := os.Getenv("JUJU_PATH"); p != "" {
			cfg.JujuPath = p
		}
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultProbeTimeout
	}
	if cfg.CrashdumpPath == "" {
		cfg.CrashdumpPath = DefaultCrashdumpPath
	}
	if cfg.Logger.GetSink() == nil {
		cfg.Logger = logr.Discard()
	}
	if cfg.Executor == nil {
		cfg.Executor = NewProcessExecutor(cfg.Logger)
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}
	return &Client{config: cfg}
}

// JujuPath returns the configured juju binary path.
func (c *Client) JujuPath() string {
	return c.config.JujuPath
}

// Timeout returns the default per-command timeout; zero means unbounded.
func (c *Client) Timeout() time.Duration {
	return c.config.Timeout
}

// ProbeTimeout returns the controller reachability probe timeout.
func (c *Client) ProbeTimeout() time.Duration {
	return c.config.ProbeTimeout
}

func (c *Client) env() []string {
	if c.config.DataDir == "" {
		return nil
	}
	return []string{"JUJU_DATA=" + c.config.DataDir}
}

// run executes a juju command with the default timeout and returns stdout.
func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	return c.runWithTimeout(ctx, c.config.Timeout, args...)
}

func (c *Client) runWithTimeout(ctx context.Context, timeout time.Duration, args ...string) ([]byte, error) {
	return Checked(ctx, c.config.Executor, Command{
		Args:    append([]string{c.config.JujuPath}, args...),
		Timeout: timeout,
		Env:     c.env(),
	})
}

// --- Controller Operations ---

// Bootstrap bootstraps a controller named after the cloud. Options are
// passed through before the positional arguments.
func (c *Client) Bootstrap(ctx context.Context, cloud string, options []string) error {
	args := []string{"bootstrap"}
	args = append(args, options...)
	args = append(args, cloud, cloud)
	_, err := c.run(ctx, args...)
	return err
}

// ShowController queries a controller, failing if it is unreachable.
// A zero timeout uses the configured probe timeout.
func (c *Client) ShowController(ctx context.Context, name string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = c.config.ProbeTimeout
	}
	_, err := c.runWithTimeout(ctx, timeout, "show-controller", name)
	return err
}

// Controllers lists the controllers known to the local client.
func (c *Client) Controllers(ctx context.Context) (*ControllerList, error) {
	output, err := c.run(ctx, "controllers", "--format", "yaml")
	if err != nil {
		return nil, err
	}
	return ParseControllers(output)
}

// ControllerExists checks whether name is among the known controllers.
// A failed listing is Indeterminate, never Absent.
func (c *Client) ControllerExists(ctx context.Context, name string) (Existence, error) {
	list, err := c.Controllers(ctx)
	if err != nil {
		return Indeterminate, err
	}
	if list.Has(name) {
		return Exists, nil
	}
	return Absent, nil
}

// KillController forcibly destroys a controller and everything it hosts.
func (c *Client) KillController(ctx context.Context, name string) error {
	_, err := c.run(ctx, "kill-controller", "--yes", name)
	return err
}

// EnableHA enables controller high availability.
func (c *Client) EnableHA(ctx context.Context, controller string) error {
	_, err := c.run(ctx, "enable-ha", "-c", controller)
	return err
}

// ModelDefaults sets model defaults on a controller. Keys are passed in
// ascending order so the argument vector is deterministic.
func (c *Client) ModelDefaults(ctx context.Context, controller string, settings map[string]string) error {
	args := []string{"model-defaults", "-c", controller}
	for _, key := range sets.List(sets.KeySet(settings)) {
		args = append(args, fmt.Sprintf("%s=%s", key, settings[key]))
	}
	_, err := c.run(ctx, args...)
	return err
}

// --- Cloud Operations ---

// AddCloud registers or replaces a cloud definition.
func (c *Client) AddCloud(ctx context.Context, cloud, definitionFile string) error {
	_, err := c.run(ctx, "add-cloud", "--replace", cloud, definitionFile)
	return err
}

// AddCredential registers or replaces credentials for a cloud.
func (c *Client) AddCredential(ctx context.Context, cloud, credentialsFile string) error {
	_, err := c.run(ctx, "add-credential", "--replace", cloud, "-f", credentialsFile)
	return err
}

// ImageMetadata describes an image for `juju metadata generate-image`.
type ImageMetadata struct {
	Region  string
	AuthURL string
	ImageID string
	Series  string
	Arch    string
	Path    string
}

// GenerateImageMetadata writes simplestreams image metadata to md.Path.
func (c *Client) GenerateImageMetadata(ctx context.Context, md ImageMetadata) error {
	_, err := c.run(ctx, "metadata", "generate-image",
		"-a", md.Arch, "-r", md.Region, "-u", md.AuthURL,
		"-i", md.ImageID, "-s", md.Series, "-d", md.Path)
	return err
}

// --- Model Operations ---

// AddModel creates a model on a controller.
func (c *Client) AddModel(ctx context.Context, controller, model string) error {
	_, err := c.run(ctx, "add-model", "-c", controller, model)
	return err
}

// DestroyModel destroys a model without prompting.
func (c *Client) DestroyModel(ctx context.Context, model string) error {
	_, err := c.run(ctx, "destroy-model", "--yes", model)
	return err
}

// Status returns the parsed status of a model.
func (c *Client) Status(ctx context.Context, model string) (*Status, error) {
	output, err := c.run(ctx, "status", "-m", model, "--format=yaml")
	if err != nil {
		return nil, err
	}
	return ParseStatus(output)
}

// ModelExists fetches the model status. A juju failure means the model is
// Absent; any other failure (timeout, malformed output, missing binary)
// is Indeterminate and returned.
func (c *Client) ModelExists(ctx context.Context, model string) (Existence, error) {
	_, err := c.Status(ctx, model)
	switch {
	case err == nil:
		return Exists, nil
	case suberrors.IsExternalCommand(err):
		c.config.Logger.V(1).Info("model status failed, treating model as absent", "model", model, "error", err.Error())
		return Absent, nil
	default:
		return Indeterminate, err
	}
}

// Wait blocks until the model's workloads settle, using the juju-wait plugin.
func (c *Client) Wait(ctx context.Context, model string, exclude []string) error {
	args := []string{"wait", "-m", model, "-t", fmt.Sprint(DefaultModelWait), "--workload"}
	for _, app := range exclude {
		args = append(args, "-x", app)
	}
	_, err := c.run(ctx, args...)
	return err
}

// --- Application Operations ---

// DeployOptions are the optional arguments of Deploy.
type DeployOptions struct {
	// Overlays are bundle overlay files, each passed as --overlay.
	Overlays []string
	// NetworkSpace binds the bundle's endpoints to a space via --bind.
	NetworkSpace string
}

// Deploy deploys a charm or bundle into a model.
func (c *Client) Deploy(ctx context.Context, model, bundle string, opts DeployOptions) error {
	args := []string{"deploy", "-m", model, bundle}
	for _, overlay := range opts.Overlays {
		args = append(args, "--overlay", overlay)
	}
	if opts.NetworkSpace != "" {
		args = append(args, "--bind", opts.NetworkSpace)
	}
	_, err := c.run(ctx, args...)
	return err
}

// AddUnitOptions are the optional arguments of AddUnit.
type AddUnitOptions struct {
	// Placement is passed as --to, e.g. "lxd:0".
	Placement string
}

// AddUnit adds a unit to an application.
func (c *Client) AddUnit(ctx context.Context, model, application string, opts AddUnitOptions) error {
	args := []string{"add-unit", "-m", model, "--debug", application}
	if opts.Placement != "" {
		args = append(args, "--to", opts.Placement)
	}
	_, err := c.run(ctx, args...)
	return err
}

// Relate adds a relation between two application endpoints.
func (c *Client) Relate(ctx context.Context, model, app1, app2 string) ([]byte, error) {
	return c.run(ctx, "relate", "-m", model, app1, app2)
}

// SCP copies a file from a unit to the local machine.
func (c *Client) SCP(ctx context.Context, model, unit, src, dest string) ([]byte, error) {
	return c.run(ctx, "scp", "-m", model, fmt.Sprintf("%s:%s", unit, src), dest)
}

// ListActions returns the actions an application defines, name → description.
func (c *Client) ListActions(ctx context.Context, model, application string) (map[string]string, error) {
	output, err := c.run(ctx, "list-actions", "-m", model, "--format=yaml", application)
	if err != nil {
		return nil, err
	}
	return ParseActionList(output)
}

// --- Unit Operations ---

// Run executes a command on a unit immediately and returns its stdout.
func (c *Client) Run(ctx context.Context, model, unit, command string, args ...string) ([]byte, error) {
	cmdArgs := []string{"run", "-m", model, "-u", unit, command}
	cmdArgs = append(cmdArgs, args...)
	return c.run(ctx, cmdArgs...)
}

// Leader returns the leader unit of an application. It runs is-leader on
// every unit in one juju call and picks the first unit, in unit name order,
// whose output is exactly "True". ok is false when no unit claims leadership.
func (c *Client) Leader(ctx context.Context, model, application string) (unit string, ok bool, err error) {
	output, err := c.run(ctx, "run", "--format=yaml", "--model", model, "--application", application, "is-leader")
	if err != nil {
		return "", false, err
	}
	results, err := ParseRunResults(output)
	if err != nil {
		return "", false, err
	}
	slices.SortFunc(results, func(a, b RunResult) int { return strings.Compare(a.UnitID, b.UnitID) })
	for _, r := range results {
		if strings.TrimSpace(r.Stdout) == "True" {
			return r.UnitID, true, nil
		}
	}
	return "", false, nil
}

// --- Diagnostics ---

// Crashdump collects a juju-crashdump archive for a model into outputDir
// and returns the archive path.
func (c *Client) Crashdump(ctx context.Context, controller, model, outputDir string) (string, error) {
	stamp := c.config.Clock.Now().Format(crashdumpTimeFormat)
	path := filepath.Join(outputDir, fmt.Sprintf("juju-crashdump-%s-%s.tar.gz", model, stamp))

	args := []string{c.config.CrashdumpPath,
		"-m", fmt.Sprintf("%s:%s", controller, model),
		"--timeout", "300", "--small", "-f", "100000000", "--compression", "gz"}
	if c.config.CrashdumpAddons != "" {
		args = append(args, "--addons-file", c.config.CrashdumpAddons)
	}
	args = append(args, "--addon", "juju-engine-report", "-o", path)

	if _, err := Checked(ctx, c.config.Executor, Command{Args: args, Timeout: c.config.Timeout, Env: c.env()}); err != nil {
		return "", err
	}
	return path, nil
}
