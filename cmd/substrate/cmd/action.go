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
	"time"

	"github.com/spf13/cobra"
)

func newActionCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "action",
		Short: "Run and inspect juju actions",
	}

	cmd.AddCommand(newActionRunCmd(o))
	cmd.AddCommand(newActionStatusCmd(o))
	cmd.AddCommand(newActionListCmd(o))

	return cmd
}

func newActionRunCmd(o *rootOptions) *cobra.Command {
	var (
		timeout      time.Duration
		noWait       bool
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "run <unit> <action> [key=value...]",
		Short: "Queue an action and wait for its result",
		Example: `  # Pause keystone/0 and wait up to five minutes
  substrate action run keystone/0 pause --timeout 5m

  # Queue only, printing the action id
  substrate action run ceph-osd/0 list-disks --no-wait`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := o.client()
			model := o.cfg.Substrate.Model
			unit, action, params := args[0], args[1], args[2:]

			if noWait {
				id, err := client.QueueAction(cmd.Context(), model, unit, action, params...)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(o.streams.Out, id)
				return nil
			}

			if timeout <= 0 {
				timeout = o.cfg.Juju.ActionTimeout.Duration
			}
			result, err := client.RunActionToCompletion(cmd.Context(), model, unit, action, timeout, params...)
			if result != nil {
				if perr := printStructured(o.streams.Out, outputFormat, result); perr != nil {
					return perr
				}
			}
			return err
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "How long to wait for the action (default juju.action_timeout)")
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "Queue the action and print its id")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", OutputFormatYAML, "Output format (yaml, json)")

	return cmd
}

func newActionStatusCmd(o *rootOptions) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "status <id>",
		Short: "Show the current status of an action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := o.client().ActionStatus(cmd.Context(), o.cfg.Substrate.Model, args[0])
			if err != nil {
				return err
			}
			return printStructured(o.streams.Out, outputFormat, result)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", OutputFormatYAML, "Output format (yaml, json)")

	return cmd
}

func newActionListCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <application>",
		Short: "List the actions an application defines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actions, err := o.client().ListActions(cmd.Context(), o.cfg.Substrate.Model, args[0])
			if err != nil {
				return err
			}
			return printStructured(o.streams.Out, OutputFormatYAML, actions)
		},
	}
}

func newExecCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <unit> -- <command> [args...]",
		Short: "Run a command on a unit",
		Example: `  # Read the keystone admin password
  substrate exec keystone/0 -- leader-get admin_passwd`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := o.client().RunSynchronous(cmd.Context(), o.cfg.Substrate.Model, args[0], args[1], args[2:]...)
			if err != nil {
				return err
			}
			_, err = o.streams.Out.Write(out)
			return err
		},
	}
}
