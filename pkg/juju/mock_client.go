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

// MockClient is a mock implementation of ClientInterface for testing.
// Unset funcs succeed with empty results; existence checks report Exists.
type MockClient struct {
	// Controller operations
	BootstrapFunc          func(ctx context.Context, cloud string, options []string) error
	EnsureBootstrappedFunc func(ctx context.Context, cloud string, options []string) error
	ShowControllerFunc     func(ctx context.Context, name string, timeout time.Duration) error
	ControllersFunc        func(ctx context.Context) (*ControllerList, error)
	ControllerExistsFunc   func(ctx context.Context, name string) (Existence, error)
	KillControllerFunc     func(ctx context.Context, name string) error
	EnableHAFunc           func(ctx context.Context, controller string) error
	ModelDefaultsFunc      func(ctx context.Context, controller string, settings map[string]string) error

	// Cloud operations
	AddCloudFunc              func(ctx context.Context, cloud, definitionFile string) error
	AddCredentialFunc         func(ctx context.Context, cloud, credentialsFile string) error
	GenerateImageMetadataFunc func(ctx context.Context, md ImageMetadata) error

	// Model operations
	AddModelFunc     func(ctx context.Context, controller, model string) error
	DestroyModelFunc func(ctx context.Context, model string) error
	StatusFunc       func(ctx context.Context, model string) (*Status, error)
	ModelExistsFunc  func(ctx context.Context, model string) (Existence, error)
	WaitFunc         func(ctx context.Context, model string, exclude []string) error

	// Application operations
	DeployFunc      func(ctx context.Context, model, bundle string, opts DeployOptions) error
	AddUnitFunc     func(ctx context.Context, model, application string, opts AddUnitOptions) error
	RelateFunc      func(ctx context.Context, model, app1, app2 string) ([]byte, error)
	SCPFunc         func(ctx context.Context, model, unit, src, dest string) ([]byte, error)
	ListActionsFunc func(ctx context.Context, model, application string) (map[string]string, error)
	LeaderFunc      func(ctx context.Context, model, application string) (string, bool, error)

	// Unit and action operations
	RunFunc                   func(ctx context.Context, model, unit, command string, args ...string) ([]byte, error)
	RunSynchronousFunc        func(ctx context.Context, model, unit, command string, args ...string) ([]byte, error)
	RunActionFunc             func(ctx context.Context, model, unit, action string, args ...string) (*ActionInvocation, error)
	QueueActionFunc           func(ctx context.Context, model, unit, action string, args ...string) (string, error)
	WaitForActionFunc         func(ctx context.Context, model, id string, wait time.Duration) (*ActionResult, error)
	AwaitActionFunc           func(ctx context.Context, model, id string, timeout time.Duration) (*ActionResult, error)
	ShowActionStatusFunc      func(ctx context.Context, model, id string) (*ActionResult, error)
	ActionStatusFunc          func(ctx context.Context, model, id string) (*ActionResult, error)
	RunActionToCompletionFunc func(ctx context.Context, model, unit, action string, timeout time.Duration, args ...string) (*ActionResult, error)

	// Diagnostics
	CrashdumpFunc func(ctx context.Context, controller, model, outputDir string) (string, error)
}

// Verify MockClient implements ClientInterface at compile time
var _ ClientInterface = (*MockClient)(nil)

// Bootstrap implements ClientInterface
func (m *MockClient) Bootstrap(ctx context.Context, cloud string, options []string) error {
	if m.BootstrapFunc != nil {
		return m.BootstrapFunc(ctx, cloud, options)
	}
	return nil
}

// EnsureBootstrapped implements ClientInterface
func (m *MockClient) EnsureBootstrapped(ctx context.Context, cloud string, options []string) error {
	if m.EnsureBootstrappedFunc != nil {
		return m.EnsureBootstrappedFunc(ctx, cloud, options)
	}
	return nil
}

// ShowController implements ClientInterface
func (m *MockClient) ShowController(ctx context.Context, name string, timeout time.Duration) error {
	if m.ShowControllerFunc != nil {
		return m.ShowControllerFunc(ctx, name, timeout)
	}
	return nil
}

// Controllers implements ClientInterface
func (m *MockClient) Controllers(ctx context.Context) (*ControllerList, error) {
	if m.ControllersFunc != nil {
		return m.ControllersFunc(ctx)
	}
	return &ControllerList{Controllers: map[string]map[string]any{}}, nil
}

// ControllerExists implements ClientInterface
func (m *MockClient) ControllerExists(ctx context.Context, name string) (Existence, error) {
	if m.ControllerExistsFunc != nil {
		return m.ControllerExistsFunc(ctx, name)
	}
	return Exists, nil
}

// KillController implements ClientInterface
func (m *MockClient) KillController(ctx context.Context, name string) error {
	if m.KillControllerFunc != nil {
		return m.KillControllerFunc(ctx, name)
	}
	return nil
}

// EnableHA implements ClientInterface
func (m *MockClient) EnableHA(ctx context.Context, controller string) error {
	if m.EnableHAFunc != nil {
		return m.EnableHAFunc(ctx, controller)
	}
	return nil
}

// ModelDefaults implements ClientInterface
func (m *MockClient) ModelDefaults(ctx context.Context, controller string, settings map[string]string) error {
	if m.ModelDefaultsFunc != nil {
		return m.ModelDefaultsFunc(ctx, controller, settings)
	}
	return nil
}

// AddCloud implements ClientInterface
func (m *MockClient) AddCloud(ctx context.Context, cloud, definitionFile string) error {
	if m.AddCloudFunc != nil {
		return m.AddCloudFunc(ctx, cloud, definitionFile)
	}
	return nil
}

// AddCredential implements ClientInterface
func (m *MockClient) AddCredential(ctx context.Context, cloud, credentialsFile string) error {
	if m.AddCredentialFunc != nil {
		return m.AddCredentialFunc(ctx, cloud, credentialsFile)
	}
	return nil
}

// GenerateImageMetadata implements ClientInterface
func (m *MockClient) GenerateImageMetadata(ctx context.Context, md ImageMetadata) error {
	if m.GenerateImageMetadataFunc != nil {
		return m.GenerateImageMetadataFunc(ctx, md)
	}
	return nil
}

// AddModel implements ClientInterface
func (m *MockClient) AddModel(ctx context.Context, controller, model string) error {
	if m.AddModelFunc != nil {
		return m.AddModelFunc(ctx, controller, model)
	}
	return nil
}

// DestroyModel implements ClientInterface
func (m *MockClient) DestroyModel(ctx context.Context, model string) error {
	if m.DestroyModelFunc != nil {
		return m.DestroyModelFunc(ctx, model)
	}
	return nil
}

// Status implements ClientInterface
func (m *MockClient) Status(ctx context.Context, model string) (*Status, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx, model)
	}
	return &Status{}, nil
}

// ModelExists implements ClientInterface
func (m *MockClient) ModelExists(ctx context.Context, model string) (Existence, error) {
	if m.ModelExistsFunc != nil {
		return m.ModelExistsFunc(ctx, model)
	}
	return Exists, nil
}

// Wait implements ClientInterface
func (m *MockClient) Wait(ctx context.Context, model string, exclude []string) error {
	if m.WaitFunc != nil {
		return m.WaitFunc(ctx, model, exclude)
	}
	return nil
}

// Deploy implements ClientInterface
func (m *MockClient) Deploy(ctx context.Context, model, bundle string, opts DeployOptions) error {
	if m.DeployFunc != nil {
		return m.DeployFunc(ctx, model, bundle, opts)
	}
	return nil
}

// AddUnit implements ClientInterface
func (m *MockClient) AddUnit(ctx context.Context, model, application string, opts AddUnitOptions) error {
	if m.AddUnitFunc != nil {
		return m.AddUnitFunc(ctx, model, application, opts)
	}
	return nil
}

// Relate implements ClientInterface
func (m *MockClient) Relate(ctx context.Context, model, app1, app2 string) ([]byte, error) {
	if m.RelateFunc != nil {
		return m.RelateFunc(ctx, model, app1, app2)
	}
	return nil, nil
}

// SCP implements ClientInterface
func (m *MockClient) SCP(ctx context.Context, model, unit, src, dest string) ([]byte, error) {
	if m.SCPFunc != nil {
		return m.SCPFunc(ctx, model, unit, src, dest)
	}
	return nil, nil
}

// ListActions implements ClientInterface
func (m *MockClient) ListActions(ctx context.Context, model, application string) (map[string]string, error) {
	if m.ListActionsFunc != nil {
		return m.ListActionsFunc(ctx, model, application)
	}
	return map[string]string{}, nil
}

// Leader implements ClientInterface
func (m *MockClient) Leader(ctx context.Context, model, application string) (string, bool, error) {
	if m.LeaderFunc != nil {
		return m.LeaderFunc(ctx, model, application)
	}
	return "", false, nil
}

// Run implements ClientInterface
func (m *MockClient) Run(ctx context.Context, model, unit, command string, args ...string) ([]byte, error) {
	if m.RunFunc != nil {
		return m.RunFunc(ctx, model, unit, command, args...)
	}
	return nil, nil
}

// RunSynchronous implements ClientInterface
func (m *MockClient) RunSynchronous(ctx context.Context, model, unit, command string, args ...string) ([]byte, error) {
	if m.RunSynchronousFunc != nil {
		return m.RunSynchronousFunc(ctx, model, unit, command, args...)
	}
	return nil, nil
}

// RunAction implements ClientInterface
func (m *MockClient) RunAction(ctx context.Context, model, unit, action string, args ...string) (*ActionInvocation, error) {
	if m.RunActionFunc != nil {
		return m.RunActionFunc(ctx, model, unit, action, args...)
	}
	return &ActionInvocation{}, nil
}

// QueueAction implements ClientInterface
func (m *MockClient) QueueAction(ctx context.Context, model, unit, action string, args ...string) (string, error) {
	if m.QueueActionFunc != nil {
		return m.QueueActionFunc(ctx, model, unit, action, args...)
	}
	return "", nil
}

// WaitForAction implements ClientInterface
func (m *MockClient) WaitForAction(ctx context.Context, model, id string, wait time.Duration) (*ActionResult, error) {
	if m.WaitForActionFunc != nil {
		return m.WaitForActionFunc(ctx, model, id, wait)
	}
	return &ActionResult{Status: ActionCompleted}, nil
}

// AwaitAction implements ClientInterface
func (m *MockClient) AwaitAction(ctx context.Context, model, id string, timeout time.Duration) (*ActionResult, error) {
	if m.AwaitActionFunc != nil {
		return m.AwaitActionFunc(ctx, model, id, timeout)
	}
	return &ActionResult{Status: ActionCompleted}, nil
}

// ShowActionStatus implements ClientInterface
func (m *MockClient) ShowActionStatus(ctx context.Context, model, id string) (*ActionResult, error) {
	if m.ShowActionStatusFunc != nil {
		return m.ShowActionStatusFunc(ctx, model, id)
	}
	return &ActionResult{Status: ActionCompleted}, nil
}

// ActionStatus implements ClientInterface
func (m *MockClient) ActionStatus(ctx context.Context, model, id string) (*ActionResult, error) {
	if m.ActionStatusFunc != nil {
		return m.ActionStatusFunc(ctx, model, id)
	}
	return &ActionResult{Status: ActionCompleted}, nil
}

// RunActionToCompletion implements ClientInterface
func (m *MockClient) RunActionToCompletion(ctx context.Context, model, unit, action string, timeout time.Duration, args ...string) (*ActionResult, error) {
	if m.RunActionToCompletionFunc != nil {
		return m.RunActionToCompletionFunc(ctx, model, unit, action, timeout, args...)
	}
	return &ActionResult{Status: ActionCompleted}, nil
}

// Crashdump implements ClientInterface
func (m *MockClient) Crashdump(ctx context.Context, controller, model, outputDir string) (string, error) {
	if m.CrashdumpFunc != nil {
		return m.CrashdumpFunc(ctx, controller, model, outputDir)
	}
	return "", nil
}
