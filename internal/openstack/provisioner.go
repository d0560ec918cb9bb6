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

// Package openstack provisions the networks, router, flavor and image juju
// needs on an OpenStack cloud. It drives the openstack client CLI through the
// same executor the juju client uses, and every operation is check-then-create.
package openstack

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/util/wait"
	"sigs.k8s.io/yaml"

	suberrors "github.com/org/juju-substrate/pkg/errors"
	"github.com/org/juju-substrate/pkg/juju"
)

const (
	// DefaultPollInterval is the gap between image status checks.
	DefaultPollInterval = 60 * time.Second
	// DefaultPollAttempts is how many image status checks are made.
	DefaultPollAttempts = 10

	imageActive = "active"
)

// Config configures a Provisioner.
type Config struct {
	// CLIPath is the openstack client binary.
	CLIPath string
	// Cloud selects the clouds.yaml entry.
	Cloud string
	// Timeout bounds each CLI call; zero means unbounded.
	Timeout time.Duration
	// PollInterval and PollAttempts bound the wait for an image to activate.
	PollInterval time.Duration
	PollAttempts int
	Executor     juju.Executor
	Logger       logr.Logger
}

// Provisioner creates OpenStack resources that do not exist yet.
type Provisioner struct {
	config Config
}

// NewProvisioner creates a Provisioner, filling zero values with defaults.
func NewProvisioner(cfg Config) *Provisioner {
	if cfg.CLIPath == "" {
		cfg.CLIPath = "openstack"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.PollAttempts <= 0 {
		cfg.PollAttempts = DefaultPollAttempts
	}
	if cfg.Logger.GetSink() == nil {
		cfg.Logger = logr.Discard()
	}
	if cfg.Executor == nil {
		cfg.Executor = juju.NewProcessExecutor(cfg.Logger)
	}
	return &Provisioner{config: cfg}
}

// NetworkSpec describes a neutron network.
type NetworkSpec struct {
	Name string
	// External marks the network as a router gateway network.
	External        bool
	ProviderType    string
	PhysicalNetwork string
}

// SubnetSpec describes an IPv4 subnet.
type SubnetSpec struct {
	Name       string
	Network    string
	CIDR       string
	Gateway    string
	DNSServers []string
}

// RouterSpec describes a router with an external gateway and attached subnets.
type RouterSpec struct {
	Name            string
	ExternalNetwork string
	Subnets         []string
	EnableSNAT      bool
}

// FlavorSpec describes a compute flavor. RAM is in MiB, Disk in GiB.
type FlavorSpec struct {
	Name   string
	RAM    int
	Disk   int
	VCPUs  int
	Public bool
}

// ImageSpec describes a glance image uploaded from a local file.
type ImageSpec struct {
	Name            string
	File            string
	DiskFormat      string
	ContainerFormat string
	Public          bool
}

func (p *Provisioner) run(ctx context.Context, args ...string) ([]byte, error) {
	argv := append([]string{p.config.CLIPath}, args...)
	if p.config.Cloud != "" {
		argv = append(argv, "--os-cloud", p.config.Cloud)
	}
	return juju.Checked(ctx, p.config.Executor, juju.Command{Args: argv, Timeout: p.config.Timeout})
}

// show fetches a resource. A failed lookup means Absent; timeouts and
// missing binaries are Indeterminate.
func (p *Provisioner) show(ctx context.Context, kind, name string) (map[string]any, juju.Existence, error) {
	out, err := p.run(ctx, kind, "show", name, "-f", "yaml")
	switch {
	case suberrors.IsExternalCommand(err):
		return nil, juju.Absent, nil
	case err != nil:
		return nil, juju.Indeterminate, err
	}
	var doc map[string]any
	if err := yaml.Unmarshal(out, &doc); err != nil {
		return nil, juju.Indeterminate, suberrors.Malformed(kind+" show", "cannot decode", err)
	}
	return doc, juju.Exists, nil
}

// ensure creates a resource with createArgs unless it already exists.
// It reports whether the resource was created.
func (p *Provisioner) ensure(ctx context.Context, kind, name string, createArgs ...string) (bool, error) {
	log := p.config.Logger.WithValues(kind, name)
	_, existence, err := p.show(ctx, kind, name)
	if err != nil {
		return false, err
	}
	if existence == juju.Exists {
		log.V(1).Info("already exists")
		return false, nil
	}
	args := append([]string{kind, "create"}, createArgs...)
	args = append(args, name)
	if _, err := p.run(ctx, args...); err != nil {
		return false, err
	}
	log.Info("created")
	return true, nil
}

// EnsureNetwork creates the network unless it exists.
func (p *Provisioner) EnsureNetwork(ctx context.Context, spec NetworkSpec) (bool, error) {
	var args []string
	if spec.External {
		args = append(args, "--external")
	}
	if spec.ProviderType != "" {
		args = append(args, "--provider-network-type", spec.ProviderType)
	}
	if spec.PhysicalNetwork != "" {
		args = append(args, "--provider-physical-network", spec.PhysicalNetwork)
	}
	return p.ensure(ctx, "network", spec.Name, args...)
}

// EnsureSubnet creates the subnet unless it exists.
func (p *Provisioner) EnsureSubnet(ctx context.Context, spec SubnetSpec) (bool, error) {
	args := []string{"--network", spec.Network, "--ip-version", "4", "--subnet-range", spec.CIDR}
	if spec.Gateway != "" {
		args = append(args, "--gateway", spec.Gateway)
	}
	for _, dns := range spec.DNSServers {
		args = append(args, "--dns-nameserver", dns)
	}
	return p.ensure(ctx, "subnet", spec.Name, args...)
}

// EnsureRouter creates the router, sets its gateway and attaches its subnets
// unless the router exists.
func (p *Provisioner) EnsureRouter(ctx context.Context, spec RouterSpec) (bool, error) {
	created, err := p.ensure(ctx, "router", spec.Name)
	if err != nil || !created {
		return created, err
	}
	if spec.ExternalNetwork != "" {
		args := []string{"router", "set", "--external-gateway", spec.ExternalNetwork}
		if spec.EnableSNAT {
			args = append(args, "--enable-snat")
		}
		if _, err := p.run(ctx, append(args, spec.Name)...); err != nil {
			return true, err
		}
	}
	for _, subnet := range spec.Subnets {
		if _, err := p.run(ctx, "router", "add", "subnet", spec.Name, subnet); err != nil {
			return true, err
		}
	}
	return true, nil
}

// EnsureFlavor creates the flavor unless it exists.
func (p *Provisioner) EnsureFlavor(ctx context.Context, spec FlavorSpec) (bool, error) {
	args := []string{
		"--ram", fmt.Sprint(spec.RAM),
		"--disk", fmt.Sprint(spec.Disk),
		"--vcpus", fmt.Sprint(spec.VCPUs),
	}
	if spec.Public {
		args = append(args, "--public")
	} else {
		args = append(args, "--private")
	}
	return p.ensure(ctx, "flavor", spec.Name, args...)
}

// UploadImage uploads the image unless it exists, then waits for glance to
// mark it active. An image in a failed state is an error; one that is still
// not active after the configured attempts is a *errors.TimeoutError.
func (p *Provisioner) UploadImage(ctx context.Context, spec ImageSpec) error {
	if spec.DiskFormat == "" {
		spec.DiskFormat = "qcow2"
	}
	if spec.ContainerFormat == "" {
		spec.ContainerFormat = "bare"
	}
	visibility := "--private"
	if spec.Public {
		visibility = "--public"
	}
	if _, err := p.ensure(ctx, "image", spec.Name,
		"--disk-format", spec.DiskFormat,
		"--container-format", spec.ContainerFormat,
		visibility,
		"--file", spec.File); err != nil {
		return err
	}
	return p.waitForImage(ctx, spec.Name)
}

func (p *Provisioner) waitForImage(ctx context.Context, name string) error {
	timeout := p.config.PollInterval * time.Duration(p.config.PollAttempts)
	attempt := 0
	err := wait.PollUntilContextTimeout(ctx, p.config.PollInterval, timeout, true, func(ctx context.Context) (bool, error) {
		attempt++
		doc, existence, err := p.show(ctx, "image", name)
		if err != nil {
			return false, err
		}
		if existence != juju.Exists {
			return false, suberrors.NotFound("image", name)
		}
		status, _ := doc["status"].(string)
		p.config.Logger.V(1).Info("image status", "image", name, "status", status, "attempt", attempt)
		switch strings.ToLower(status) {
		case imageActive:
			return true, nil
		case "killed", "deleted", "deactivated", "error":
			return false, suberrors.Permanent(fmt.Errorf("image %s is %s", name, status), "image upload failed")
		default:
			return false, nil
		}
	})
	if err != nil && wait.Interrupted(err) && !errors.Is(ctx.Err(), context.Canceled) {
		return &suberrors.TimeoutError{
			Args:    []string{p.config.CLIPath, "image", "show", name},
			Timeout: timeout,
		}
	}
	return err
}

// Plan is the full set of resources ProvisionDefaults creates.
type Plan struct {
	PublicNetwork  NetworkSpec
	PublicSubnet   SubnetSpec
	PrivateNetwork NetworkSpec
	PrivateSubnet  SubnetSpec
	Router         RouterSpec
	Flavor         FlavorSpec
	// Image is skipped when nil.
	Image *ImageSpec
}

// ProvisionDefaults creates everything in plan, in dependency order.
func (p *Provisioner) ProvisionDefaults(ctx context.Context, plan Plan) error {
	steps := []struct {
		what string
		run  func() error
	}{
		{"public network", func() error { _, err := p.EnsureNetwork(ctx, plan.PublicNetwork); return err }},
		{"public subnet", func() error { _, err := p.EnsureSubnet(ctx, plan.PublicSubnet); return err }},
		{"private network", func() error { _, err := p.EnsureNetwork(ctx, plan.PrivateNetwork); return err }},
		{"private subnet", func() error { _, err := p.EnsureSubnet(ctx, plan.PrivateSubnet); return err }},
		{"router", func() error { _, err := p.EnsureRouter(ctx, plan.Router); return err }},
		{"flavor", func() error { _, err := p.EnsureFlavor(ctx, plan.Flavor); return err }},
	}
	if plan.Image != nil {
		steps = append(steps, struct {
			what string
			run  func() error
		}{"image", func() error { return p.UploadImage(ctx, *plan.Image) }})
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			return suberrors.Wrapf(err, "provisioning %s", step.what)
		}
	}
	return nil
}
