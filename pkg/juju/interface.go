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
	"time"
)

// ClientInterface defines the interface for juju CLI operations.
// This interface allows for mocking in tests.
// nolint:dupl // Interface definition duplicated in MockClient for testing
type ClientInterface interface {
	// Controller operations
	Bootstrap(ctx context.Context, cloud string, options []string) error
	EnsureBootstrapped(ctx context.Context, cloud string, options []string) error
	ShowController(ctx context.Context, name string, timeout time.Duration) error
	Controllers(ctx context.Context) (*ControllerList, error)
	ControllerExists(ctx context.Context, name string) (Existence, error)
	KillController(ctx context.Context, name string) error
	EnableHA(ctx context.Context, controller string) error
	ModelDefaults(ctx context.Context, controller string, settings map[string]string) error

	// Cloud operations
	AddCloud(ctx context.Context, cloud, definitionFile string) error
	AddCredential(ctx context.Context, cloud, credentialsFile string) error
	GenerateImageMetadata(ctx context.Context, md ImageMetadata) error

	// Model operations
	AddModel(ctx context.Context, controller, model string) error
	DestroyModel(ctx context.Context, model string) error
	Status(ctx context.Context, model string) (*Status, error)
	ModelExists(ctx context.Context, model string) (Existence, error)
	Wait(ctx context.Context, model string, exclude []string) error

	// Application operations
	Deploy(ctx context.Context, model, bundle string, opts DeployOptions) error
	AddUnit(ctx context.Context, model, application string, opts AddUnitOptions) error
	Relate(ctx context.Context, model, app1, app2 string) ([]byte, error)
	SCP(ctx context.Context, model, unit, src, dest string) ([]byte, error)
	ListActions(ctx context.Context, model, application string) (map[string]string, error)
	Leader(ctx context.Context, model, application string) (string, bool, error)

	// Unit and action operations
	Run(ctx context.Context, model, unit, command string, args ...string) ([]byte, error)
	RunSynchronous(ctx context.Context, model, unit, command string, args ...string) ([]byte, error)
	RunAction(ctx context.Context, model, unit, action string, args ...string) (*ActionInvocation, error)
	QueueAction(ctx context.Context, model, unit, action string, args ...string) (string, error)
	WaitForAction(ctx context.Context, model, id string, wait time.Duration) (*ActionResult, error)
	AwaitAction(ctx context.Context, model, id string, timeout time.Duration) (*ActionResult, error)
	ShowActionStatus(ctx context.Context, model, id string) (*ActionResult, error)
	ActionStatus(ctx context.Context, model, id string) (*ActionResult, error)
	RunActionToCompletion(ctx context.Context, model, unit, action string, timeout time.Duration, args ...string) (*ActionResult, error)

	// Diagnostics
	Crashdump(ctx context.Context, controller, model, outputDir string) (string, error)
}

// Verify Client implements ClientInterface at compile time
var _ ClientInterface = (*Client)(nil)
