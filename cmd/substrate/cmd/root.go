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
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"k8s.io/cli-runtime/pkg/genericiooptions"
	ctrllog "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/org/juju-substrate/internal/config"
	"github.com/org/juju-substrate/internal/deploy"
	"github.com/org/juju-substrate/internal/openstack"
	suberrors "github.com/org/juju-substrate/pkg/errors"
	"github.com/org/juju-substrate/pkg/juju"
	"github.com/org/juju-substrate/pkg/metrics"
)

// rootOptions is shared by every subcommand.
type rootOptions struct {
	streams genericiooptions.IOStreams

	configPath      string
	model           string
	metricsTextfile string
	zapOpts         zap.Options

	cfg    *config.Config
	logger logr.Logger

	// newClient builds the juju client from the loaded configuration.
	newClient func(cfg *config.Config, logger logr.Logger) juju.ClientInterface
	// executor runs preflight commands; nil means local processes.
	executor juju.Executor
}

// Execute builds the root command on the process streams and runs it.
func Execute() error {
	streams := genericiooptions.IOStreams{In: os.Stdin, Out: os.Stdout, ErrOut: os.Stderr}
	root, opts := newRootCmd(streams)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := root.ExecuteContext(ctx)
	if err != nil {
		PrintError(streams, "%v", err)
		logErrorDetail(opts.logger, err)
	}
	if opts.metricsTextfile != "" {
		if werr := metrics.WriteTextfile(opts.metricsTextfile); werr != nil {
			PrintError(streams, "writing metrics: %v", werr)
		}
	}
	return err
}

func newRootCmd(streams genericiooptions.IOStreams) (*cobra.Command, *rootOptions) {
	o := &rootOptions{
		streams:   streams,
		newClient: newJujuClient,
		zapOpts:   zap.Options{Development: true},
	}

	root := &cobra.Command{
		Use:   "substrate",
		Short: "Build a juju-managed OpenStack substrate",
		Long: `substrate drives the juju CLI to bootstrap a controller, deploy an
OpenStack bundle and prepare the resulting cloud for juju workloads.

Examples:
  # Run the whole workflow from a config file
  substrate --config substrate.toml up

  # Show units in the model
  substrate status

  # Find the keystone leader
  substrate leader keystone

  # Pause a unit and wait for the action
  substrate action run keystone/0 pause`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.complete()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&o.configPath, "config", os.Getenv("SUBSTRATE_CONFIG"), "Path to the TOML configuration file")
	flags.StringVarP(&o.model, "model", "m", "", "Model to operate on (overrides substrate.model)")
	flags.StringVar(&o.metricsTextfile, "metrics-textfile", "", "Write Prometheus metrics to this file on exit")

	zapFlags := flag.NewFlagSet("zap", flag.ContinueOnError)
	o.zapOpts.BindFlags(zapFlags)
	flags.AddGoFlagSet(zapFlags)

	root.SetIn(streams.In)
	root.SetOut(streams.Out)
	root.SetErr(streams.ErrOut)

	root.AddCommand(newVersionCmd(o))
	root.AddCommand(newUpCmd(o))
	root.AddCommand(newBootstrapCmd(o))
	root.AddCommand(newDeployCmd(o))
	root.AddCommand(newStatusCmd(o))
	root.AddCommand(newLeaderCmd(o))
	root.AddCommand(newActionCmd(o))
	root.AddCommand(newExecCmd(o))
	root.AddCommand(newCredentialsCmd(o))
	root.AddCommand(newProvisionCmd(o))
	root.AddCommand(newCrashdumpCmd(o))
	root.AddCommand(newTeardownCmd(o))
	root.AddCommand(newCheckCmd(o))

	return root, o
}

// complete loads configuration and installs the logger.
func (o *rootOptions) complete() error {
	o.zapOpts.DestWriter = o.streams.ErrOut
	o.logger = zap.New(zap.UseFlagOptions(&o.zapOpts))
	ctrllog.SetLogger(o.logger)

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.model != "" {
		cfg.Substrate.Model = o.model
	}
	o.cfg = cfg
	return nil
}

func (o *rootOptions) client() juju.ClientInterface {
	return o.newClient(o.cfg, o.logger)
}

func (o *rootOptions) deployer() *deploy.Deployer {
	var provisioner deploy.Provisioner
	if o.cfg.OpenStack.Enabled {
		osCfg := o.cfg.OpenStack
		provisioner = openstack.NewProvisioner(openstack.Config{
			CLIPath:      osCfg.CLIPath,
			Cloud:        osCfg.Cloud,
			Timeout:      osCfg.Timeout.Duration,
			PollInterval: osCfg.ImagePollInterval.Duration,
			PollAttempts: osCfg.ImagePollAttempts,
			Logger:       o.logger.WithName("openstack"),
		})
	}
	return deploy.NewDeployer(o.cfg, o.client(), provisioner, o.logger.WithName("deploy"))
}

func newJujuClient(cfg *config.Config, logger logr.Logger) juju.ClientInterface {
	return juju.NewClientWithConfig(juju.ClientConfig{
		JujuPath:        cfg.Juju.Path,
		DataDir:         cfg.Juju.DataDir,
		Timeout:         cfg.Juju.Timeout.Duration,
		ProbeTimeout:    cfg.Juju.ProbeTimeout.Duration,
		CrashdumpPath:   cfg.Crashdump.Path,
		CrashdumpAddons: cfg.Crashdump.AddonsFile,
		Logger:          logger.WithName("juju"),
	})
}

// Exit statuses, one per error category the CLI distinguishes.
const (
	ExitFailure         = 1
	ExitValidation      = 2
	ExitNotFound        = 3
	ExitTimeout         = 4
	ExitExternalCommand = 5
	ExitMalformedOutput = 6
)

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case suberrors.IsValidation(err):
		return ExitValidation
	case suberrors.IsNotFound(err):
		return ExitNotFound
	case suberrors.IsTimeout(err):
		return ExitTimeout
	case suberrors.IsMalformedOutput(err):
		return ExitMalformedOutput
	case suberrors.IsType(err, suberrors.ErrorTypeExternalCommand):
		return ExitExternalCommand
	default:
		return ExitFailure
	}
}

// logErrorDetail logs the category, context and creation stack of err at V(1).
func logErrorDetail(logger logr.Logger, err error) {
	var se *suberrors.SubstrateError
	if !errors.As(err, &se) {
		return
	}
	logger.V(1).Info("error detail",
		"type", se.Type,
		"retryable", suberrors.IsRetryable(err),
		"context", se.Context,
		"stack", se.StackTrace())
}

// PrintError prints an error message to the error stream
func PrintError(streams genericiooptions.IOStreams, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(streams.ErrOut, "Error: "+format+"\n", args...)
}
