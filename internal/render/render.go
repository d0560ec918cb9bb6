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

// Package render materializes configuration files from Jinja-style templates.
package render

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/flosch/pongo2"

	suberrors "github.com/org/juju-substrate/pkg/errors"
)

// Renderer renders named templates from a directory.
type Renderer struct {
	set *pongo2.TemplateSet
}

// NewRenderer creates a Renderer loading templates from dir.
func NewRenderer(dir string) (*Renderer, error) {
	loader, err := pongo2.NewLocalFileSystemLoader(dir)
	if err != nil {
		return nil, suberrors.Wrapf(err, "template directory %s", dir)
	}
	return &Renderer{set: pongo2.NewSet("substrate", loader)}, nil
}

// Render renders the named template with values.
func (r *Renderer) Render(name string, values map[string]any) (string, error) {
	tpl, err := r.set.FromFile(name)
	if err != nil {
		return "", suberrors.Wrapf(err, "loading template %s", name)
	}
	out, err := tpl.Execute(pongo2.Context(values))
	if err != nil {
		return "", suberrors.Wrapf(err, "rendering template %s", name)
	}
	return out, nil
}

// WriteFile writes content to dir/file, creating dir if it is absent. The
// file is readable by its owner only since it usually holds credentials.
func WriteFile(dir, file, content string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", suberrors.Wrapf(err, "creating %s", dir)
	}
	path := filepath.Join(dir, file)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", suberrors.Wrapf(err, "writing %s", path)
	}
	return path, nil
}

// UnitRunner runs a command on a unit immediately.
type UnitRunner interface {
	RunSynchronous(ctx context.Context, model, unit, command string, args ...string) ([]byte, error)
}

// CloudCredentials collects the keystone address and admin password from a
// keystone unit, as consumed by the clouds.yaml template.
func CloudCredentials(ctx context.Context, runner UnitRunner, model, keystoneUnit string) (map[string]any, error) {
	ip, err := runner.RunSynchronous(ctx, model, keystoneUnit, "hostname", "--ip-address")
	if err != nil {
		return nil, suberrors.Wrapf(err, "reading keystone address from %s", keystoneUnit)
	}
	password, err := runner.RunSynchronous(ctx, model, keystoneUnit, "leader-get", "admin_passwd")
	if err != nil {
		return nil, suberrors.Wrapf(err, "reading admin password from %s", keystoneUnit)
	}
	values := map[string]any{
		"keystone_ip":    strings.TrimSpace(string(ip)),
		"admin_password": strings.TrimSpace(string(password)),
	}
	if values["keystone_ip"] == "" || values["admin_password"] == "" {
		return nil, suberrors.Newf("keystone unit %s returned empty credentials", keystoneUnit)
	}
	return values, nil
}
