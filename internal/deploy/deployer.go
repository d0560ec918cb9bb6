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

// Package deploy runs the end-to-end substrate workflow: controller,
// model, bundle, cloud credentials and OpenStack provisioning.
package deploy

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"github.com/juju/errors"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/org/juju-substrate/internal/config"
	"github.com/org/juju-substrate/internal/openstack"
	"github.com/org/juju-substrate/internal/render"
	suberrors "github.com/org/juju-substrate/pkg/errors"
	"github.com/org/juju-substrate/pkg/juju"
	"github.com/org/juju-substrate/pkg/metrics"
)

// Workflow step names, used in logs and metrics.
const (
	StepController  = "controller"
	StepModel       = "model"
	StepBundle      = "bundle"
	StepCredentials = "credentials"
	StepProvision   = "provision"
)

// Provisioner creates the OpenStack resources juju needs.
type Provisioner interface {
	ProvisionDefaults(ctx context.Context, plan openstack.Plan) error
}

// Deployer drives a juju client through the substrate workflow.
type Deployer struct {
	Config      *config.Config
	Juju        juju.ClientInterface
	Provisioner Provisioner
	Logger      logr.Logger
}

// NewDeployer creates a Deployer. The provisioner may be nil when OpenStack
// provisioning is disabled.
func NewDeployer(cfg *config.Config, client juju.ClientInterface, provisioner Provisioner, logger logr.Logger) *Deployer {
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}
	return &Deployer{Config: cfg, Juju: client, Provisioner: provisioner, Logger: logger}
}

// EnsureController registers the cloud and credentials when configured,
// bootstraps the controller and applies controller-wide settings.
func (d *Deployer) EnsureController(ctx context.Context) error {
	sub := d.Config.Substrate
	if sub.CloudFile != "" {
		if err := d.Juju.AddCloud(ctx, sub.Cloud, sub.CloudFile); err != nil {
			return errors.Annotatef(err, "adding cloud %s", sub.Cloud)
		}
	}
	if sub.CredentialsFile != "" {
		if err := d.Juju.AddCredential(ctx, sub.Cloud, sub.CredentialsFile); err != nil {
			return errors.Annotatef(err, "adding credentials for %s", sub.Cloud)
		}
	}

	args, err := d.Config.BootstrapArgs()
	if err != nil {
		return err
	}
	if err := d.Juju.EnsureBootstrapped(ctx, sub.Cloud, args); err != nil {
		return errors.Annotatef(err, "bootstrapping %s", sub.Cloud)
	}

	controller := d.Config.ControllerName()
	if sub.EnableHA {
		if err := d.Juju.EnableHA(ctx, controller); err != nil {
			return errors.Annotatef(err, "enabling HA on %s", controller)
		}
	}
	if len(sub.ModelDefaults) > 0 {
		if err := d.Juju.ModelDefaults(ctx, controller, sub.ModelDefaults); err != nil {
			return errors.Annotatef(err, "setting model defaults on %s", controller)
		}
	}
	return nil
}

// EnsureModel adds the model unless juju already has it. An indeterminate
// existence check is an error rather than a reason to add the model.
func (d *Deployer) EnsureModel(ctx context.Context) error {
	model := d.Config.Substrate.Model
	existence, err := d.Juju.ModelExists(ctx, model)
	if err != nil {
		return errors.Annotatef(err, "checking model %s", model)
	}
	switch existence {
	case juju.Exists:
		d.Logger.Info("model already exists", "model", model)
		return nil
	case juju.Absent:
		d.Logger.Info("adding model", "model", model, "controller", d.Config.ControllerName())
		return errors.Annotatef(d.Juju.AddModel(ctx, d.Config.ControllerName(), model), "adding model %s", model)
	default:
		return suberrors.Newf("existence of model %s is %s", model, existence).WithContext("model", model)
	}
}

// DeployBundle deploys the configured bundle and optionally waits for the
// workloads to settle.
func (d *Deployer) DeployBundle(ctx context.Context) error {
	bundle := d.Config.Bundle
	if bundle.Path == "" {
		return suberrors.Validation("bundle.path is required to deploy").WithContext("model", d.Config.Substrate.Model)
	}
	model := d.Config.Substrate.Model
	err := d.Juju.Deploy(ctx, model, bundle.Path, juju.DeployOptions{
		Overlays:     bundle.Overlays,
		NetworkSpace: bundle.NetworkSpace,
	})
	if err != nil {
		return errors.Annotatef(err, "deploying %s", bundle.Path)
	}
	if bundle.Wait {
		d.Logger.Info("waiting for workloads to settle", "model", model, "exclude", bundle.WaitExclude)
		if err := d.Juju.Wait(ctx, model, bundle.WaitExclude); err != nil {
			return errors.Annotatef(err, "waiting for model %s", model)
		}
	}
	return nil
}

// WriteCloudCredentials renders clouds.yaml from values read off the
// keystone unit and returns the path it was written to.
func (d *Deployer) WriteCloudCredentials(ctx context.Context) (string, error) {
	creds := d.Config.Credentials
	values, err := render.CloudCredentials(ctx, d.Juju, d.Config.Substrate.Model, creds.KeystoneUnit)
	if err != nil {
		return "", err
	}
	renderer, err := render.NewRenderer(creds.TemplateDir)
	if err != nil {
		return "", err
	}
	content, err := renderer.Render(creds.Template, values)
	if err != nil {
		return "", err
	}
	path, err := render.WriteFile(creds.OutputDir, creds.OutputFile, content)
	if err != nil {
		return "", err
	}
	d.Logger.Info("wrote cloud credentials", "path", path)
	return path, nil
}

// Provision creates the OpenStack networks, router, flavor and image.
func (d *Deployer) Provision(ctx context.Context) error {
	if d.Provisioner == nil {
		return suberrors.Validation("openstack provisioning is not configured")
	}
	return errors.Trace(d.Provisioner.ProvisionDefaults(ctx, openstack.PlanFromConfig(d.Config.OpenStack)))
}

// Up runs every enabled step in order, stopping at the first failure.
func (d *Deployer) Up(ctx context.Context) error {
	steps := []struct {
		name    string
		enabled bool
		run     func(context.Context) error
	}{
		{StepController, true, d.EnsureController},
		{StepModel, true, d.EnsureModel},
		{StepBundle, d.Config.Bundle.Path != "", d.DeployBundle},
		{StepCredentials, d.Config.Credentials.Enabled, func(ctx context.Context) error {
			_, err := d.WriteCloudCredentials(ctx)
			return err
		}},
		{StepProvision, d.Config.OpenStack.Enabled, d.Provision},
	}

	for _, step := range steps {
		log := d.Logger.WithValues("step", step.name)
		if !step.enabled {
			log.V(1).Info("skipping disabled step")
			metrics.RecordStep(step.name, metrics.ResultSkipped)
			continue
		}
		start := time.Now()
		if err := step.run(ctx); err != nil {
			log.Error(err, "step failed", "retryable", suberrors.IsRetryable(err))
			metrics.RecordStep(step.name, metrics.ResultError)
			return errors.Annotatef(err, "step %s", step.name)
		}
		log.Info("step complete", "duration", time.Since(start).Round(time.Millisecond))
		metrics.RecordStep(step.name, metrics.ResultSuccess)
	}
	return nil
}

// TeardownOptions selects the optional teardown stages.
type TeardownOptions struct {
	// Crashdump collects diagnostics before anything is destroyed.
	Crashdump bool
	// KillController destroys the controller after the model.
	KillController bool
}

// Teardown destroys the model and optionally the controller. Stages run
// even when an earlier one fails; all failures are returned together.
func (d *Deployer) Teardown(ctx context.Context, opts TeardownOptions) error {
	model := d.Config.Substrate.Model
	controller := d.Config.ControllerName()
	var errs []error

	if opts.Crashdump {
		path, err := d.Juju.Crashdump(ctx, controller, model, d.Config.Crashdump.Dir)
		if err != nil {
			errs = append(errs, errors.Annotate(err, "collecting crashdump"))
		} else {
			d.Logger.Info("collected crashdump", "path", path)
		}
	}
	if err := d.Juju.DestroyModel(ctx, model); err != nil {
		errs = append(errs, errors.Annotatef(err, "destroying model %s", model))
	}
	if opts.KillController {
		if err := d.Juju.KillController(ctx, controller); err != nil {
			errs = append(errs, errors.Annotatef(err, "killing controller %s", controller))
		}
	}
	return utilerrors.NewAggregate(errs)
}
