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

	"github.com/org/juju-substrate/pkg/metrics"
)

// EnsureBootstrapped bootstraps a controller named after cloud.
//
// juju can report a bootstrap failure for a controller that already exists
// and is reachable. When bootstrap fails, the controller is probed with
// show-controller: a reachable controller makes the failure benign, while a
// failed probe is returned in place of the bootstrap error. Bootstrap is
// never re-attempted.
func (c *Client) EnsureBootstrapped(ctx context.Context, cloud string, options []string) error {
	log := c.config.Logger.WithValues("cloud", cloud)

	bootstrapErr := c.Bootstrap(ctx, cloud, options)
	if bootstrapErr == nil {
		log.Info("controller bootstrapped")
		metrics.RecordBootstrap(metrics.BootstrapCreated)
		return nil
	}

	if err := c.ShowController(ctx, cloud, c.config.ProbeTimeout); err != nil {
		log.Error(err, "controller unreachable after failed bootstrap", "bootstrapError", bootstrapErr.Error())
		metrics.RecordBootstrap(metrics.BootstrapFailed)
		return err
	}

	log.Info("bootstrap failed but controller is reachable, continuing", "error", bootstrapErr.Error())
	metrics.RecordBootstrap(metrics.BootstrapExisting)
	return nil
}
