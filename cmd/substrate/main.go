/*
substrate builds a juju-managed OpenStack substrate.

It bootstraps a juju controller, creates a model, deploys a bundle into it,
renders OpenStack client credentials from the deployed keystone and
provisions the networks, flavor and image juju needs on top.

Usage:

	substrate [--config FILE] <command> [flags]

Available Commands:

	up          Run the whole workflow
	bootstrap   Bootstrap the controller
	deploy      Create the model and deploy the bundle
	status      Show units in the model
	leader      Print the leader unit of an application
	action      Run and inspect juju actions
	exec        Run a command on a unit
	credentials Render clouds.yaml from keystone
	provision   Create OpenStack networks, flavor and image
	crashdump   Collect a juju-crashdump archive
	teardown    Destroy the model and optionally the controller
	check       Verify tools and files before running
	version     Print version information
*/
package main

import (
	"os"

	"github.com/org/juju-substrate/cmd/substrate/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
