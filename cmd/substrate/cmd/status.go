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

	suberrors "github.com/org/juju-substrate/pkg/errors"
	"github.com/org/juju-substrate/pkg/juju"
)

// unitView is the printable form of a unit.
type unitView struct {
	Name        string `json:"name"`
	Application string `json:"application"`
	Kind        string `json:"kind"`
	Parent      string `json:"parent,omitempty"`
	Workload    string `json:"workload,omitempty"`
	Machine     string `json:"machine,omitempty"`
}

func viewOf(u *juju.Unit) unitView {
	v := unitView{
		Name:        u.Name,
		Application: u.Application(),
		Kind:        u.Kind.String(),
		Workload:    u.WorkloadStatus(),
		Machine:     u.Machine(),
	}
	if u.Parent != nil {
		v.Parent = u.Parent.Name
		if v.Machine == "" {
			v.Machine = u.Parent.Machine()
		}
	}
	return v
}

func newStatusCmd(o *rootOptions) *cobra.Command {
	var (
		outputFormat string
		application  string
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show units in the model",
		Example: `  # List every unit
  substrate status

  # Only nova units, as YAML
  substrate status --application nova -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutputFormat(outputFormat); err != nil {
				return err
			}
			status, err := o.client().Status(cmd.Context(), o.cfg.Substrate.Model)
			if err != nil {
				return err
			}

			var views []unitView
			if application != "" {
				for _, u := range status.UnitsOf(application) {
					views = append(views, viewOf(u))
				}
			} else {
				for _, u := range status.Units() {
					views = append(views, viewOf(u))
				}
			}

			if outputFormat != OutputFormatTable {
				return printStructured(o.streams.Out, outputFormat, views)
			}
			if len(views) == 0 {
				_, _ = fmt.Fprintln(o.streams.Out, "No units found")
				return nil
			}
			w := tabwriter.NewWriter(o.streams.Out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "UNIT\tKIND\tWORKLOAD\tMACHINE\tPARENT")
			for _, v := range views {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					v.Name, v.Kind, valueOr(v.Workload), valueOr(v.Machine), valueOr(v.Parent))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", OutputFormatTable, "Output format (table, yaml, json)")
	cmd.Flags().StringVar(&application, "application", "", "Only show units of this application")

	return cmd
}

func newLeaderCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "leader <application>",
		Short: "Print the leader unit of an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unit, ok, err := o.client().Leader(cmd.Context(), o.cfg.Substrate.Model, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return suberrors.NotFound("leader of application", args[0])
			}
			_, _ = fmt.Fprintln(o.streams.Out, unit)
			return nil
		},
	}
}
