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
	"encoding/json"
	"fmt"
	"io"

	"sigs.k8s.io/yaml"

	suberrors "github.com/org/juju-substrate/pkg/errors"
)

// Output formats
const (
	OutputFormatTable = "table"
	OutputFormatYAML  = "yaml"
	OutputFormatJSON  = "json"
)

// printStructured writes v as YAML or JSON.
func printStructured(w io.Writer, format string, v any) error {
	switch format {
	case OutputFormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		_, err = w.Write(data)
		return err
	case OutputFormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func validateOutputFormat(format string) error {
	switch format {
	case OutputFormatTable, OutputFormatYAML, OutputFormatJSON:
		return nil
	default:
		return suberrors.Validation(fmt.Sprintf("unsupported output format %q (use table, yaml or json)", format))
	}
}

// valueOr returns s, or "-" when s is empty
func valueOr(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
