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

// Package juju provides a wrapper around the juju CLI tool.
// The deployer shells out to `juju` for all operations, keeping the juju
// controller as the source of truth; nothing here caches its state.
package juju

import "strings"

// UnitKind tells principal units apart from subordinates.
type UnitKind int

const (
	// PrincipalUnit is a unit listed directly under an application.
	PrincipalUnit UnitKind = iota
	// SubordinateUnit is a unit nested under a principal unit.
	SubordinateUnit
)

func (k UnitKind) String() string {
	switch k {
	case PrincipalUnit:
		return "principal"
	case SubordinateUnit:
		return "subordinate"
	default:
		return "unknown"
	}
}

// Status is a parsed `juju status` snapshot of one model.
// It is never mutated after parsing; fetch a new one for fresh state.
type Status struct {
	// Model is the model name reported by juju, if any.
	Model        string
	applications map[string]*Application
}

// Application is a named deployable component within a model.
type Application struct {
	Name string
	// Fields holds the remaining status attributes (charm, exposed, ...).
	Fields map[string]any
	// Units maps principal unit names to units.
	Units map[string]*Unit
}

// Unit is one running instance of an application.
type Unit struct {
	Name string
	Kind UnitKind
	// Parent is the principal unit a subordinate runs under; nil for principals.
	Parent *Unit
	// Fields holds the opaque status attributes (workload-status, machine, ...).
	Fields map[string]any
	// Subordinates maps subordinate unit names to units; always empty for
	// subordinates since nesting is one level deep.
	Subordinates map[string]*Unit
}

// Application returns the application name encoded in the unit name.
func (u *Unit) Application() string {
	app, _, _ := strings.Cut(u.Name, "/")
	return app
}

// Machine returns the machine the unit is placed on, if reported.
func (u *Unit) Machine() string {
	m, _ := u.Fields["machine"].(string)
	return m
}

// WorkloadStatus returns the current workload state, e.g. "active".
func (u *Unit) WorkloadStatus() string {
	ws, ok := u.Fields["workload-status"].(map[string]any)
	if !ok {
		return ""
	}
	current, _ := ws["current"].(string)
	return current
}

// Action status values reported by juju.
const (
	ActionPending   = "pending"
	ActionRunning   = "running"
	ActionCompleted = "completed"
	ActionFailed    = "failed"
	ActionCancelled = "cancelled"
	ActionAborted   = "aborted"
)

// ActionInvocation identifies one queued remote action.
type ActionInvocation struct {
	ID     string
	Unit   string
	Action string
	Args   []string
}

// ActionResult is a point-in-time view of an action.
type ActionResult struct {
	ID      string         `json:"id,omitempty"`
	Unit    string         `json:"unit,omitempty"`
	Action  string         `json:"action,omitempty"`
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Results map[string]any `json:"results,omitempty"`
	Timing  ActionTiming   `json:"timing,omitempty"`
}

// ActionTiming records when juju moved the action through its lifecycle.
type ActionTiming struct {
	Enqueued  string `json:"enqueued,omitempty"`
	Started   string `json:"started,omitempty"`
	Completed string `json:"completed,omitempty"`
}

// Terminal reports whether the action has reached a final state.
func (r *ActionResult) Terminal() bool {
	switch r.Status {
	case ActionCompleted, ActionFailed, ActionCancelled, ActionAborted:
		return true
	default:
		return false
	}
}

// Stdout returns the remote command output captured in the results.
func (r *ActionResult) Stdout() string {
	return resultString(r.Results, "Stdout", "stdout")
}

// Stderr returns the remote command error output captured in the results.
func (r *ActionResult) Stderr() string {
	return resultString(r.Results, "Stderr", "stderr")
}

// ReturnCode returns the remote command exit code captured in the results.
func (r *ActionResult) ReturnCode() string {
	return resultString(r.Results, "Code", "return-code")
}

func resultString(results map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := results[k].(type) {
		case string:
			return v
		case float64:
			return formatNumber(v)
		}
	}
	return ""
}

// RunResult is one unit's answer to `juju run`.
type RunResult struct {
	UnitID    string `json:"UnitId"`
	MachineID string `json:"MachineId,omitempty"`
	Stdout    string `json:"Stdout"`
	Stderr    string `json:"Stderr,omitempty"`
	Code      int    `json:"ReturnCode,omitempty"`
}

// ControllerList is the parsed output of `juju controllers`.
type ControllerList struct {
	Controllers       map[string]map[string]any `json:"controllers"`
	CurrentController string                    `json:"current-controller,omitempty"`
}

// Has reports whether name is a known controller.
func (l *ControllerList) Has(name string) bool {
	_, ok := l.Controllers[name]
	return ok
}

// Existence is the answer of a derived existence check.
type Existence int

const (
	// Indeterminate means the check itself failed for an unrelated reason.
	Indeterminate Existence = iota
	// Exists means juju confirmed the entity.
	Exists
	// Absent means juju reported the entity does not exist.
	Absent
)

func (e Existence) String() string {
	switch e {
	case Exists:
		return "exists"
	case Absent:
		return "absent"
	default:
		return "indeterminate"
	}
}
