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

package deploy

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/org/juju-substrate/internal/config"
	"github.com/org/juju-substrate/internal/openstack"
	suberrors "github.com/org/juju-substrate/pkg/errors"
	"github.com/org/juju-substrate/pkg/juju"
	"github.com/org/juju-substrate/pkg/metrics"
)

type fakeProvisioner struct {
	plans []openstack.Plan
	err   error
}

func (f *fakeProvisioner) ProvisionDefaults(_ context.Context, plan openstack.Plan) error {
	f.plans = append(f.plans, plan)
	return f.err
}

var _ = Describe("Deployer", func() {
	var (
		ctx         context.Context
		cfg         *config.Config
		mock        *juju.MockClient
		provisioner *fakeProvisioner
		deployer    *Deployer
		calls       []string
	)

	record := func(name string) { calls = append(calls, name) }

	BeforeEach(func() {
		ctx = context.Background()
		calls = nil
		cfg = config.Default()
		cfg.Substrate.Cloud = "serverstack"
		cfg.Substrate.Model = "openstack"
		cfg.Substrate.BootstrapOptions = "--bootstrap-series jammy"
		cfg.Bundle.Path = "bundle.yaml"
		cfg.Bundle.Overlays = []string{"ha.yaml"}

		mock = &juju.MockClient{
			EnsureBootstrappedFunc: func(_ context.Context, cloud string, options []string) error {
				record("bootstrap " + cloud)
				Expect(options).To(Equal([]string{"--bootstrap-series", "jammy"}))
				return nil
			},
			ModelExistsFunc: func(_ context.Context, model string) (juju.Existence, error) {
				record("model-exists " + model)
				return juju.Absent, nil
			},
			AddModelFunc: func(_ context.Context, controller, model string) error {
				record("add-model " + controller + " " + model)
				return nil
			},
			DeployFunc: func(_ context.Context, model, bundle string, opts juju.DeployOptions) error {
				record("deploy " + model + " " + bundle)
				Expect(opts.Overlays).To(Equal([]string{"ha.yaml"}))
				return nil
			},
		}
		provisioner = &fakeProvisioner{}
		deployer = NewDeployer(cfg, mock, provisioner, GinkgoLogr)
		metrics.WorkflowStepTotal.Reset()
	})

	Describe("Up", func() {
		It("should run the enabled steps in order", func() {
			Expect(deployer.Up(ctx)).To(Succeed())
			Expect(calls).To(Equal([]string{
				"bootstrap serverstack",
				"model-exists openstack",
				"add-model serverstack openstack",
				"deploy openstack bundle.yaml",
			}))
			Expect(provisioner.plans).To(BeEmpty())
			Expect(testutil.ToFloat64(metrics.WorkflowStepTotal.WithLabelValues(StepBundle, metrics.ResultSuccess))).To(Equal(1.0))
			Expect(testutil.ToFloat64(metrics.WorkflowStepTotal.WithLabelValues(StepProvision, metrics.ResultSkipped))).To(Equal(1.0))
		})

		It("should stop at the first failing step", func() {
			boom := &suberrors.ExternalCommandError{Args: []string{"juju", "bootstrap"}, ExitCode: 1}
			mock.EnsureBootstrappedFunc = func(context.Context, string, []string) error { return boom }

			err := deployer.Up(ctx)
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, boom)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("step controller"))
			Expect(calls).To(BeEmpty())
			Expect(testutil.ToFloat64(metrics.WorkflowStepTotal.WithLabelValues(StepController, metrics.ResultError))).To(Equal(1.0))
		})

		It("should provision OpenStack when enabled", func() {
			cfg.OpenStack.Enabled = true

			Expect(deployer.Up(ctx)).To(Succeed())
			Expect(provisioner.plans).To(HaveLen(1))
			Expect(provisioner.plans[0].Router.Name).To(Equal("juju-router"))
		})
	})

	Describe("EnsureController", func() {
		It("should register the cloud and apply controller settings", func() {
			cfg.Substrate.CloudFile = "clouds.yaml"
			cfg.Substrate.CredentialsFile = "credentials.yaml"
			cfg.Substrate.EnableHA = true
			cfg.Substrate.ModelDefaults = map[string]string{"test-mode": "true"}
			mock.AddCloudFunc = func(_ context.Context, cloud, file string) error {
				record("add-cloud " + cloud + " " + file)
				return nil
			}
			mock.AddCredentialFunc = func(_ context.Context, cloud, file string) error {
				record("add-credential " + cloud + " " + file)
				return nil
			}
			mock.EnableHAFunc = func(_ context.Context, controller string) error {
				record("enable-ha " + controller)
				return nil
			}
			mock.ModelDefaultsFunc = func(_ context.Context, controller string, settings map[string]string) error {
				record("model-defaults " + controller)
				Expect(settings).To(HaveKeyWithValue("test-mode", "true"))
				return nil
			}

			Expect(deployer.EnsureController(ctx)).To(Succeed())
			Expect(calls).To(Equal([]string{
				"add-cloud serverstack clouds.yaml",
				"add-credential serverstack credentials.yaml",
				"bootstrap serverstack",
				"enable-ha serverstack",
				"model-defaults serverstack",
			}))
		})

		It("should address the bootstrapped controller in every later call", func() {
			cfg.Substrate.Cloud = "serverstack"
			cfg.Substrate.EnableHA = true
			cfg.Substrate.ModelDefaults = map[string]string{"test-mode": "true"}
			var controllers []string
			mock.EnsureBootstrappedFunc = func(_ context.Context, cloud string, _ []string) error {
				controllers = append(controllers, cloud)
				return nil
			}
			mock.EnableHAFunc = func(_ context.Context, controller string) error {
				controllers = append(controllers, controller)
				return nil
			}
			mock.ModelDefaultsFunc = func(_ context.Context, controller string, _ map[string]string) error {
				controllers = append(controllers, controller)
				return nil
			}
			mock.AddModelFunc = func(_ context.Context, controller, _ string) error {
				controllers = append(controllers, controller)
				return nil
			}
			mock.CrashdumpFunc = func(_ context.Context, controller, _, _ string) (string, error) {
				controllers = append(controllers, controller)
				return "dump.tar.gz", nil
			}
			mock.KillControllerFunc = func(_ context.Context, controller string) error {
				controllers = append(controllers, controller)
				return nil
			}

			Expect(deployer.EnsureController(ctx)).To(Succeed())
			Expect(deployer.EnsureModel(ctx)).To(Succeed())
			Expect(deployer.Teardown(ctx, TeardownOptions{Crashdump: true, KillController: true})).To(Succeed())
			Expect(controllers).To(HaveLen(6))
			for _, controller := range controllers {
				Expect(controller).To(Equal("serverstack"))
			}
		})
	})

	Describe("EnsureModel", func() {
		It("should not add an existing model", func() {
			mock.ModelExistsFunc = func(context.Context, string) (juju.Existence, error) { return juju.Exists, nil }

			Expect(deployer.EnsureModel(ctx)).To(Succeed())
			Expect(calls).To(BeEmpty())
		})

		It("should not add a model whose existence is unknown", func() {
			timeout := &suberrors.TimeoutError{Args: []string{"juju", "status"}, Timeout: time.Second}
			mock.ModelExistsFunc = func(context.Context, string) (juju.Existence, error) {
				return juju.Indeterminate, timeout
			}

			err := deployer.EnsureModel(ctx)
			Expect(suberrors.IsTimeout(err)).To(BeTrue())
			Expect(calls).To(BeEmpty())
		})

		It("should name the model in an indeterminate check without cause", func() {
			mock.ModelExistsFunc = func(context.Context, string) (juju.Existence, error) { return juju.Indeterminate, nil }

			err := deployer.EnsureModel(ctx)
			var se *suberrors.SubstrateError
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.Context).To(HaveKeyWithValue("model", "openstack"))
			Expect(calls).To(BeEmpty())
		})
	})

	Describe("DeployBundle", func() {
		It("should wait for workloads when configured", func() {
			cfg.Bundle.Wait = true
			cfg.Bundle.WaitExclude = []string{"vault"}
			mock.WaitFunc = func(_ context.Context, model string, exclude []string) error {
				record("wait " + model)
				Expect(exclude).To(Equal([]string{"vault"}))
				return nil
			}

			Expect(deployer.DeployBundle(ctx)).To(Succeed())
			Expect(calls).To(Equal([]string{"deploy openstack bundle.yaml", "wait openstack"}))
		})

		It("should require a bundle", func() {
			cfg.Bundle.Path = ""
			Expect(suberrors.IsValidation(deployer.DeployBundle(ctx))).To(BeTrue())
		})
	})

	Describe("WriteCloudCredentials", func() {
		It("should render clouds.yaml from the keystone unit", func() {
			templates := GinkgoT().TempDir()
			Expect(os.WriteFile(filepath.Join(templates, "clouds.j2"),
				[]byte("auth_url: http://{{ keystone_ip }}:5000/v3\npassword: {{ admin_password }}\n"), 0o600)).To(Succeed())

			cfg.Credentials.TemplateDir = templates
			cfg.Credentials.Template = "clouds.j2"
			cfg.Credentials.OutputDir = filepath.Join(GinkgoT().TempDir(), ".config", "openstack")
			mock.RunSynchronousFunc = func(_ context.Context, model, unit, command string, args ...string) ([]byte, error) {
				Expect(model).To(Equal("openstack"))
				Expect(unit).To(Equal("keystone/0"))
				if command == "hostname" {
					return []byte("10.5.0.20\n"), nil
				}
				return []byte("s3cret\n"), nil
			}

			path, err := deployer.WriteCloudCredentials(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(path).To(Equal(filepath.Join(cfg.Credentials.OutputDir, "clouds.yaml")))

			data, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("auth_url: http://10.5.0.20:5000/v3\npassword: s3cret\n"))
		})
	})

	Describe("Teardown", func() {
		It("should run every stage and aggregate failures", func() {
			mock.CrashdumpFunc = func(_ context.Context, controller, model, dir string) (string, error) {
				record("crashdump " + controller + " " + model)
				return "", errors.New("crashdump missing")
			}
			mock.DestroyModelFunc = func(_ context.Context, model string) error {
				record("destroy-model " + model)
				return errors.New("model busy")
			}
			mock.KillControllerFunc = func(_ context.Context, controller string) error {
				record("kill-controller " + controller)
				return nil
			}

			err := deployer.Teardown(ctx, TeardownOptions{Crashdump: true, KillController: true})
			Expect(calls).To(Equal([]string{
				"crashdump serverstack openstack",
				"destroy-model openstack",
				"kill-controller serverstack",
			}))
			Expect(err).To(MatchError(ContainSubstring("crashdump missing")))
			Expect(err).To(MatchError(ContainSubstring("model busy")))
		})

		It("should only destroy the model by default", func() {
			mock.DestroyModelFunc = func(_ context.Context, model string) error {
				record("destroy-model " + model)
				return nil
			}

			Expect(deployer.Teardown(ctx, TeardownOptions{})).To(Succeed())
			Expect(calls).To(Equal([]string{"destroy-model openstack"}))
		})
	})
})
