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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/org/juju-substrate/internal/deploy"
	"github.com/org/juju-substrate/pkg/version"
)

func newVersionCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// version needs no configuration
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			info := version.Get()
			_, _ = fmt.Fprintf(o.streams.Out, "substrate %s\n", info.Version)
			_, _ = fmt.Fprintf(o.streams.Out, "  Git commit: %s\n", info.Commit)
			_, _ = fmt.Fprintf(o.streams.Out, "  Build date: %s\n", info.BuildTime)
			_, _ = fmt.Fprintf(o.streams.Out, "  Go:         %s\n", info.GoVersion)
		},
	}
}

func newUpCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run the whole workflow",
		Long: `Bootstrap the controller, create the model, deploy the bundle, render
cloud credentials and provision OpenStack, skipping disabled steps.`,
		Example: `  # Build everything described in substrate.toml
  substrate --config substrate.toml up`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.deployer().Up(cmd.Context())
		},
	}
}

func newBootstrapCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Bootstrap the controller",
		Long: `Bootstrap a controller named after the cloud. A bootstrap failure is
ignored when the controller turns out to exist and answer.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.deployer().EnsureController(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(o.streams.Out, "Controller %s is ready\n", o.cfg.ControllerName())
			return nil
		},
	}
}

func newDeployCmd(o *rootOptions) *cobra.Command {
	var (
		bundle   string
		overlays []string
		bind     string
		wait     bool
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Create the model and deploy the bundle",
		Example: `  # Deploy the configured bundle
  substrate deploy

  # Deploy a bundle with an overlay and wait for it to settle
  substrate deploy --bundle bundle.yaml --overlay ha.yaml --wait`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b := &o.cfg.Bundle
			if bundle != "" {
				b.Path = bundle
			}
			if len(overlays) > 0 {
				b.Overlays = overlays
			}
			if bind != "" {
				b.NetworkSpace = bind
			}
			if cmd.Flags().Changed("wait") {
				b.Wait = wait
			}

			d := o.deployer()
			if err := d.EnsureModel(cmd.Context()); err != nil {
				return err
			}
			return d.DeployBundle(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&bundle, "bundle", "", "Bundle to deploy (overrides bundle.path)")
	cmd.Flags().StringSliceVar(&overlays, "overlay", nil, "Bundle overlay, may be repeated")
	cmd.Flags().StringVar(&bind, "bind", "", "Network space to bind the bundle to")
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for workloads to settle")

	return cmd
}

func newCredentialsCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "credentials",
		Short: "Render clouds.yaml from keystone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := o.deployer().WriteCloudCredentials(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(o.streams.Out, "Wrote %s\n", path)
			return nil
		},
	}
}

func newProvisionCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "provision",
		Short: "Create OpenStack networks, flavor and image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o.cfg.OpenStack.Enabled = true
			if err := o.cfg.Validate(); err != nil {
				return err
			}
			return o.deployer().Provision(cmd.Context())
		},
	}
}

func newCrashdumpCmd(o *rootOptions) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "crashdump",
		Short: "Collect a juju-crashdump archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = o.cfg.Crashdump.Dir
			}
			path, err := o.client().Crashdump(cmd.Context(), o.cfg.ControllerName(), o.cfg.Substrate.Model, dir)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(o.streams.Out, path)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Directory for the archive (overrides crashdump.dir)")

	return cmd
}

func newTeardownCmd(o *rootOptions) *cobra.Command {
	var opts deploy.TeardownOptions

	cmd := &cobra.Command{
		Use:   "teardown",
		Short: "Destroy the model and optionally the controller",
		Example: `  # Collect diagnostics, then remove everything
  substrate teardown --crashdump --kill-controller`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.deployer().Teardown(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Crashdump, "crashdump", false, "Collect a crashdump before destroying anything")
	cmd.Flags().BoolVar(&opts.KillController, "kill-controller", false, "Also kill the controller")

	return cmd
}
