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
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/org/juju-substrate/internal/config"
	"github.com/org/juju-substrate/pkg/health"
	"github.com/org/juju-substrate/pkg/juju"
)

func newCheckCmd(o *rootOptions) *cobra.Command {
	var (
		outputFormat string
		crashdump    bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the tools and files the workflow needs",
		Long: `Run preflight checks for every enabled step: the juju binary answers,
the bundle and overlays exist, the credentials template directory is present
and the openstack client runs. Nothing is changed.`,
		Example: `  # Check before running up
  substrate --config substrate.toml check

  # Include juju-crashdump, as JSON
  substrate check --crashdump -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutputFormat(outputFormat); err != nil {
				return err
			}
			executor := o.executor
			if executor == nil {
				executor = juju.NewProcessExecutor(o.logger.WithName("check"))
			}
			checker := preflight(o.cfg, executor, crashdump)
			results := checker.Run(cmd.Context())

			if outputFormat != OutputFormatTable {
				if err := printStructured(o.streams.Out, outputFormat, results); err != nil {
					return err
				}
				return checker.Healthy()
			}

			w := tabwriter.NewWriter(o.streams.Out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "CHECK\tRESULT\tERROR")
			for _, r := range results {
				result := "ok"
				if !r.Healthy {
					result = "failed"
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, result, valueOr(r.Error))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			return checker.Healthy()
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", OutputFormatTable, "Output format: table, yaml or json")
	cmd.Flags().BoolVar(&crashdump, "crashdump", false, "Also check the juju-crashdump binary")
	return cmd
}

// preflight registers a check for each prerequisite of the enabled steps.
func preflight(cfg *config.Config, executor juju.Executor, crashdump bool) *health.Checker {
	checker := health.NewChecker(nil)
	if cfg.Juju.Timeout.Duration > 0 {
		checker.SetCheckTimeout(cfg.Juju.Timeout.Duration)
	}

	checker.Register("juju", health.CommandCheck(executor, cfg.Juju.Path, "version"))
	if cfg.Juju.DataDir != "" {
		checker.Register("juju-data", health.DirCheck(cfg.Juju.DataDir))
	}
	if cfg.Substrate.CloudFile != "" {
		checker.Register("cloud-file", health.FileCheck(cfg.Substrate.CloudFile))
	}
	if cfg.Substrate.CredentialsFile != "" {
		checker.Register("credentials-file", health.FileCheck(cfg.Substrate.CredentialsFile))
	}
	if cfg.Bundle.Path != "" {
		checker.Register("bundle", health.FileCheck(cfg.Bundle.Path))
	}
	for _, overlay := range cfg.Bundle.Overlays {
		checker.Register("overlay "+overlay, health.FileCheck(overlay))
	}
	if cfg.Credentials.Enabled {
		checker.Register("templates", health.DirCheck(cfg.Credentials.TemplateDir))
	}
	if cfg.OpenStack.Enabled {
		checker.Register("openstack", health.CommandCheck(executor, cfg.OpenStack.CLIPath, "--version"))
		if cfg.OpenStack.ImageFile != "" {
			checker.Register("image", health.FileCheck(cfg.OpenStack.ImageFile))
		}
	}
	if crashdump {
		checker.Register("crashdump", health.BinaryCheck(cfg.Crashdump.Path))
	}
	return checker
}
