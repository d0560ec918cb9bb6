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
	"bytes"
	"fmt"
	"strconv"

	"github.com/juju/names/v5"
	"sigs.k8s.io/yaml"

	suberrors "github.com/org/juju-substrate/pkg/errors"
)

const (
	keyApplications  = "applications"
	keyUnits         = "units"
	keySubordinates  = "subordinates"
	keyControllers   = "controllers"
	keyActions       = "actions"
	keyStatus        = "status"
	keyActionQueued  = "Action queued with id"
	commandStatus    = "status"
	commandRun       = "run"
	commandRunAction = "run-action"
)

// ParseStatus decodes `juju status --format=yaml` output.
func ParseStatus(raw []byte) (*Status, error) {
	doc, err := decodeMapping(commandStatus, raw, keyApplications)
	if err != nil {
		return nil, err
	}

	apps, err := mapping(commandStatus, keyApplications, doc[keyApplications])
	if err != nil {
		return nil, err
	}

	status := &Status{applications: make(map[string]*Application, len(apps))}
	if model, ok := doc["model"].(map[string]any); ok {
		status.Model, _ = model["name"].(string)
	}

	principals := make(map[string]bool)
	subordinates := make(map[string]string)
	for appName, rawApp := range apps {
		app, err := parseApplication(appName, rawApp)
		if err != nil {
			return nil, err
		}
		for unitName, unit := range app.Units {
			principals[unitName] = true
			for subName := range unit.Subordinates {
				if parent, dup := subordinates[subName]; dup {
					return nil, suberrors.Malformed(commandStatus,
						fmt.Sprintf("subordinate %q listed under both %q and %q", subName, parent, unitName), nil)
				}
				subordinates[subName] = unitName
			}
		}
		status.applications[appName] = app
	}

	for subName, parent := range subordinates {
		if principals[subName] {
			return nil, suberrors.Malformed(commandStatus,
				fmt.Sprintf("subordinate %q of %q collides with a principal unit", subName, parent), nil)
		}
	}
	return status, nil
}

func parseApplication(name string, raw any) (*Application, error) {
	if !names.IsValidApplication(name) {
		return nil, suberrors.Malformed(commandStatus, fmt.Sprintf("invalid application name %q", name), nil)
	}
	fields, err := mapping(commandStatus, name, raw)
	if err != nil {
		return nil, err
	}
	units, err := mapping(commandStatus, name+"."+keyUnits, fields[keyUnits])
	if err != nil {
		return nil, err
	}

	app := &Application{
		Name:   name,
		Fields: without(fields, keyUnits),
		Units:  make(map[string]*Unit, len(units)),
	}
	for unitName, rawUnit := range units {
		owner, err := names.UnitApplication(unitName)
		if err != nil || owner != name {
			return nil, suberrors.Malformed(commandStatus,
				fmt.Sprintf("unit %q does not belong to application %q", unitName, name), err)
		}
		unit, err := parsePrincipal(unitName, rawUnit)
		if err != nil {
			return nil, err
		}
		app.Units[unitName] = unit
	}
	return app, nil
}

func parsePrincipal(name string, raw any) (*Unit, error) {
	fields, err := mapping(commandStatus, name, raw)
	if err != nil {
		return nil, err
	}
	subs, err := mapping(commandStatus, name+"."+keySubordinates, fields[keySubordinates])
	if err != nil {
		return nil, err
	}

	unit := &Unit{
		Name:         name,
		Kind:         PrincipalUnit,
		Fields:       without(fields, keySubordinates),
		Subordinates: make(map[string]*Unit, len(subs)),
	}
	for subName, rawSub := range subs {
		if !names.IsValidUnit(subName) {
			return nil, suberrors.Malformed(commandStatus, fmt.Sprintf("invalid subordinate unit name %q", subName), nil)
		}
		subFields, err := mapping(commandStatus, subName, rawSub)
		if err != nil {
			return nil, err
		}
		if _, nested := subFields[keySubordinates]; nested {
			return nil, suberrors.Malformed(commandStatus,
				fmt.Sprintf("subordinate %q has subordinates of its own", subName), nil)
		}
		unit.Subordinates[subName] = &Unit{
			Name:   subName,
			Kind:   SubordinateUnit,
			Parent: unit,
			Fields: subFields,
		}
	}
	return unit, nil
}

// ParseControllers decodes `juju controllers --format yaml` output.
func ParseControllers(raw []byte) (*ControllerList, error) {
	var list ControllerList
	if err := decodeInto("controllers", raw, keyControllers, &list); err != nil {
		return nil, err
	}
	if list.Controllers == nil {
		list.Controllers = map[string]map[string]any{}
	}
	return &list, nil
}

// ParseActionQueued extracts the action id from `juju run-action` output.
func ParseActionQueued(raw []byte) (string, error) {
	doc, err := decodeMapping(commandRunAction, raw, keyActionQueued)
	if err != nil {
		return "", err
	}
	switch id := doc[keyActionQueued].(type) {
	case string:
		if id != "" {
			return id, nil
		}
	case float64:
		return formatNumber(id), nil
	}
	return "", suberrors.Malformed(commandRunAction, fmt.Sprintf("empty %q", keyActionQueued), nil)
}

// ParseActionResult decodes `juju show-action-output` output.
func ParseActionResult(raw []byte) (*ActionResult, error) {
	var result ActionResult
	if err := decodeInto("show-action-output", raw, keyStatus, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ParseActionStatus decodes `juju show-action-status` output.
func ParseActionStatus(raw []byte) ([]ActionResult, error) {
	var doc struct {
		Actions []ActionResult `json:"actions"`
	}
	if err := decodeInto("show-action-status", raw, keyActions, &doc); err != nil {
		return nil, err
	}
	return doc.Actions, nil
}

// ParseActionList decodes `juju list-actions` output into action name →
// description.
func ParseActionList(raw []byte) (map[string]string, error) {
	actions := map[string]string{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return actions, nil
	}
	doc, err := decodeMapping("list-actions", raw, "")
	if err != nil {
		return nil, err
	}
	for name, v := range doc {
		switch d := v.(type) {
		case string:
			actions[name] = d
		case map[string]any:
			actions[name], _ = d["description"].(string)
		default:
			actions[name] = ""
		}
	}
	return actions, nil
}

// ParseRunResults decodes `juju run --format=yaml` output.
func ParseRunResults(raw []byte) ([]RunResult, error) {
	var results []RunResult
	if err := yaml.Unmarshal(raw, &results); err != nil {
		return nil, suberrors.Malformed(commandRun, "cannot decode", err)
	}
	for i, r := range results {
		if r.UnitID == "" {
			return nil, suberrors.Malformed(commandRun, fmt.Sprintf("result %d has no UnitId", i), nil)
		}
	}
	return results, nil
}

func decodeMapping(command string, raw []byte, required string) (map[string]any, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, suberrors.Malformed(command, "cannot decode", err)
	}
	if required != "" {
		if _, ok := doc[required]; !ok {
			return nil, suberrors.Malformed(command, fmt.Sprintf("missing top-level key %q", required), nil)
		}
	}
	return doc, nil
}

func decodeInto(command string, raw []byte, required string, out any) error {
	if _, err := decodeMapping(command, raw, required); err != nil {
		return err
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return suberrors.Malformed(command, "unexpected shape", err)
	}
	return nil
}

// mapping asserts that v is a YAML mapping; a null value is an empty one.
func mapping(command, path string, v any) (map[string]any, error) {
	switch m := v.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return m, nil
	default:
		return nil, suberrors.Malformed(command, fmt.Sprintf("%s is a %T, not a mapping", path, v), nil)
	}
}

func without(m map[string]any, key string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if k != key {
			out[k] = v
		}
	}
	return out
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
