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

// Package config loads the deployer configuration from a TOML file and the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kballard/go-shellquote"

	suberrors "github.com/org/juju-substrate/pkg/errors"
)

// Duration is a time.Duration that decodes from strings such as "10s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the complete deployer configuration.
type Config struct {
	Juju        JujuConfig        `toml:"juju"`
	Substrate   SubstrateConfig   `toml:"substrate"`
	Bundle      BundleConfig      `toml:"bundle"`
	Credentials CredentialsConfig `toml:"credentials"`
	OpenStack   OpenStackConfig   `toml:"openstack"`
	Crashdump   CrashdumpConfig   `toml:"crashdump"`
}

// JujuConfig configures how the juju CLI is invoked.
type JujuConfig struct {
	// Path is the juju binary. Env: JUJU_PATH.
	Path string `toml:"path"`
	// DataDir is exported as JUJU_DATA. Env: JUJU_DATA.
	DataDir string `toml:"data_dir"`
	// Timeout bounds every juju command; zero means unbounded.
	Timeout Duration `toml:"timeout"`
	// ProbeTimeout bounds the show-controller probe after a failed bootstrap.
	ProbeTimeout Duration `toml:"probe_timeout"`
	// ActionTimeout bounds waits on queued actions.
	ActionTimeout Duration `toml:"action_timeout"`
}

// SubstrateConfig names the controller and model to build.
type SubstrateConfig struct {
	// Cloud is the juju cloud; the controller is bootstrapped under the same
	// name, so there is no separate controller setting.
	Cloud string `toml:"cloud"`
	Model string `toml:"model"`
	// BootstrapOptions is a shell-quoted string of extra bootstrap flags.
	BootstrapOptions string `toml:"bootstrap_options"`
	// CloudFile and CredentialsFile are registered before bootstrap when set.
	CloudFile       string            `toml:"cloud_file"`
	CredentialsFile string            `toml:"credentials_file"`
	ModelDefaults   map[string]string `toml:"model_defaults"`
	EnableHA        bool              `toml:"enable_ha"`
}

// BundleConfig describes what gets deployed into the model.
type BundleConfig struct {
	Path         string   `toml:"path"`
	Overlays     []string `toml:"overlays"`
	NetworkSpace string   `toml:"network_space"`
	Wait         bool     `toml:"wait"`
	WaitExclude  []string `toml:"wait_exclude"`
}

// CredentialsConfig controls rendering of the OpenStack clouds.yaml.
type CredentialsConfig struct {
	Enabled      bool   `toml:"enabled"`
	TemplateDir  string `toml:"template_dir"`
	Template     string `toml:"template"`
	OutputDir    string `toml:"output_dir"`
	OutputFile   string `toml:"output_file"`
	KeystoneUnit string `toml:"keystone_unit"`
}

// OpenStackConfig controls network, flavor and image provisioning.
type OpenStackConfig struct {
	Enabled bool `toml:"enabled"`
	// CLIPath is the openstack client binary.
	CLIPath string `toml:"cli_path"`
	// Cloud selects the clouds.yaml entry via --os-cloud.
	Cloud   string   `toml:"cloud"`
	Timeout Duration `toml:"timeout"`

	PublicNetwork   string   `toml:"public_network"`
	PublicSubnet    string   `toml:"public_subnet"`
	PublicCIDR      string   `toml:"public_cidr"`
	PublicGateway   string   `toml:"public_gateway"`
	PhysicalNetwork string   `toml:"physical_network"`
	NetworkType     string   `toml:"network_type"`
	PrivateNetwork  string   `toml:"private_network"`
	PrivateSubnet   string   `toml:"private_subnet"`
	PrivateCIDR     string   `toml:"private_cidr"`
	PrivateGateway  string   `toml:"private_gateway"`
	DNSServers      []string `toml:"dns_servers"`
	Router          string   `toml:"router"`

	Flavor      string `toml:"flavor"`
	FlavorRAM   int    `toml:"flavor_ram"`
	FlavorDisk  int    `toml:"flavor_disk"`
	FlavorVCPUs int    `toml:"flavor_vcpus"`

	ImageName         string   `toml:"image_name"`
	ImageFile         string   `toml:"image_file"`
	ImageFormat       string   `toml:"image_format"`
	ImagePollInterval Duration `toml:"image_poll_interval"`
	ImagePollAttempts int      `toml:"image_poll_attempts"`
}

// CrashdumpConfig controls juju-crashdump collection.
type CrashdumpConfig struct {
	Path       string `toml:"path"`
	Dir        string `toml:"dir"`
	AddonsFile string `toml:"addons_file"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Juju: JujuConfig{
			Path:          "juju",
			ProbeTimeout:  Duration{10 * time.Second},
			ActionTimeout: Duration{600 * time.Second},
		},
		Substrate: SubstrateConfig{
			Cloud: "maas",
			Model: "openstack",
		},
		Credentials: CredentialsConfig{
			TemplateDir:  "templates",
			Template:     "openstack-cloud-sdk.yaml.j2",
			OutputDir:    filepath.Join(home, ".config", "openstack"),
			OutputFile:   "clouds.yaml",
			KeystoneUnit: "keystone/0",
		},
		OpenStack: OpenStackConfig{
			CLIPath:           "openstack",
			Cloud:             "openstack",
			PublicNetwork:     "juju-public-net",
			PublicSubnet:      "juju-public-subnet",
			PublicCIDR:        "172.27.34.0/23",
			PublicGateway:     "172.27.35.254",
			PhysicalNetwork:   "physnet1",
			NetworkType:       "flat",
			PrivateNetwork:    "juju-private-net",
			PrivateSubnet:     "juju-private-subnet",
			PrivateCIDR:       "192.168.1.0/24",
			PrivateGateway:    "192.168.1.1",
			DNSServers:        []string{"8.8.8.8"},
			Router:            "juju-router",
			Flavor:            "juju_flavor",
			FlavorRAM:         1024,
			FlavorDisk:        1,
			FlavorVCPUs:       1,
			ImageName:         "xenial",
			ImageFormat:       "qcow2",
			ImagePollInterval: Duration{60 * time.Second},
			ImagePollAttempts: 10,
		},
		Crashdump: CrashdumpConfig{
			Path: "/snap/bin/juju-crashdump",
			Dir:  ".",
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, suberrors.Wrapf(err, "reading config %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, suberrors.Validation(fmt.Sprintf("unknown config key %q in %s", undecoded[0].String(), path))
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	overrides := []struct {
		name   string
		target *string
	}{
		{"JUJU_PATH", &c.Juju.Path},
		{"JUJU_DATA", &c.Juju.DataDir},
		{"SUBSTRATE_CLOUD", &c.Substrate.Cloud},
		{"SUBSTRATE_MODEL", &c.Substrate.Model},
		{"SUBSTRATE_BUNDLE", &c.Bundle.Path},
		{"OS_CLOUD", &c.OpenStack.Cloud},
	}
	for _, o := range overrides {
		if v, ok := lookup(o.name); ok && v != "" {
			*o.target = v
		}
	}
}

// ControllerName returns the controller bootstrap creates: the cloud name.
func (c *Config) ControllerName() string {
	return c.Substrate.Cloud
}

// BootstrapArgs splits the configured bootstrap options into arguments.
func (c *Config) BootstrapArgs() ([]string, error) {
	args, err := shellquote.Split(c.Substrate.BootstrapOptions)
	if err != nil {
		return nil, suberrors.Validation(fmt.Sprintf("bootstrap_options: %v", err))
	}
	return args, nil
}

// CredentialsPath returns the full path of the rendered credentials file.
func (c *Config) CredentialsPath() string {
	return filepath.Join(c.Credentials.OutputDir, c.Credentials.OutputFile)
}

// Validate checks that required settings are present and consistent.
func (c *Config) Validate() error {
	if c.Juju.Path == "" {
		return suberrors.Validation("juju.path is required")
	}
	if c.Substrate.Cloud == "" {
		return suberrors.Validation("substrate.cloud is required")
	}
	if c.Substrate.Model == "" {
		return suberrors.Validation("substrate.model is required")
	}
	if c.Juju.Timeout.Duration < 0 || c.Juju.ProbeTimeout.Duration < 0 || c.Juju.ActionTimeout.Duration < 0 {
		return suberrors.Validation("juju timeouts must not be negative")
	}
	if _, err := c.BootstrapArgs(); err != nil {
		return err
	}
	if c.Credentials.Enabled && (c.Credentials.Template == "" || c.Credentials.KeystoneUnit == "") {
		return suberrors.Validation("credentials.template and credentials.keystone_unit are required when credentials are enabled")
	}
	if c.OpenStack.Enabled {
		if c.OpenStack.ImageFile != "" && c.OpenStack.ImageName == "" {
			return suberrors.Validation("openstack.image_name is required with openstack.image_file")
		}
		if c.OpenStack.ImagePollAttempts < 1 || c.OpenStack.ImagePollInterval.Duration <= 0 {
			return suberrors.Validation("openstack image polling needs a positive interval and attempt count")
		}
	}
	return nil
}
