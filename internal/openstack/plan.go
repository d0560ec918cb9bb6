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

package openstack

import "github.com/org/juju-substrate/internal/config"

// PlanFromConfig builds the provisioning plan from configuration. The
// router gateways through the public network and serves the private subnet.
func PlanFromConfig(cfg config.OpenStackConfig) Plan {
	plan := Plan{
		PublicNetwork: NetworkSpec{
			Name:            cfg.PublicNetwork,
			External:        true,
			ProviderType:    cfg.NetworkType,
			PhysicalNetwork: cfg.PhysicalNetwork,
		},
		PublicSubnet: SubnetSpec{
			Name:       cfg.PublicSubnet,
			Network:    cfg.PublicNetwork,
			CIDR:       cfg.PublicCIDR,
			Gateway:    cfg.PublicGateway,
			DNSServers: cfg.DNSServers,
		},
		PrivateNetwork: NetworkSpec{Name: cfg.PrivateNetwork},
		PrivateSubnet: SubnetSpec{
			Name:       cfg.PrivateSubnet,
			Network:    cfg.PrivateNetwork,
			CIDR:       cfg.PrivateCIDR,
			Gateway:    cfg.PrivateGateway,
			DNSServers: cfg.DNSServers,
		},
		Router: RouterSpec{
			Name:            cfg.Router,
			ExternalNetwork: cfg.PublicNetwork,
			Subnets:         []string{cfg.PrivateSubnet},
			EnableSNAT:      true,
		},
		Flavor: FlavorSpec{
			Name:   cfg.Flavor,
			RAM:    cfg.FlavorRAM,
			Disk:   cfg.FlavorDisk,
			VCPUs:  cfg.FlavorVCPUs,
			Public: true,
		},
	}
	if cfg.ImageFile != "" {
		plan.Image = &ImageSpec{
			Name:            cfg.ImageName,
			File:            cfg.ImageFile,
			DiskFormat:      cfg.ImageFormat,
			ContainerFormat: "bare",
			Public:          true,
		}
	}
	return plan
}

// DefaultPlan is the plan built from the default configuration.
func DefaultPlan() Plan {
	return PlanFromConfig(config.Default().OpenStack)
}
