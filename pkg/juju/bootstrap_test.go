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

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"

	suberrors "github.com/org/juju-substrate/pkg/errors"
	"github.com/org/juju-substrate/pkg/metrics"
)

var _ = Describe("Bootstrap Reconciler", func() {
	const (
		bootstrapArgv = "juju bootstrap --bootstrap-series jammy serverstack serverstack"
		probeArgv     = "juju show-controller serverstack"
	)

	var (
		ctx    context.Context
		exec   *fakeExecutor
		client *Client
	)

	BeforeEach(func() {
		ctx = context.Background()
		exec = newFakeExecutor()
		client = newTestClient(exec)
		metrics.BootstrapTotal.Reset()
	})

	bootstrap := func() error {
		return client.EnsureBootstrapped(ctx, "serverstack", []string{"--bootstrap-series", "jammy"})
	}

	Context("When bootstrap succeeds", func() {
		It("should not probe the controller", func() {
			exec.on(bootstrapArgv, fakeResponse{})

			Expect(bootstrap()).To(Succeed())
			Expect(exec.argv()).To(Equal([]string{bootstrapArgv}))
			Expect(testutil.ToFloat64(metrics.BootstrapTotal.WithLabelValues(metrics.BootstrapCreated))).To(Equal(1.0))
		})
	})

	Context("When bootstrap fails but the controller is reachable", func() {
		BeforeEach(func() {
			exec.on(bootstrapArgv, fakeResponse{code: 1, stderr: "ERROR controller \"serverstack\" already exists"})
			exec.on(probeArgv, fakeResponse{stdout: "serverstack:\n  details: {}\n"})
		})

		It("should report success", func() {
			Expect(bootstrap()).To(Succeed())
			Expect(testutil.ToFloat64(metrics.BootstrapTotal.WithLabelValues(metrics.BootstrapExisting))).To(Equal(1.0))
		})

		It("should not re-attempt bootstrap", func() {
			Expect(bootstrap()).To(Succeed())
			Expect(exec.count(bootstrapArgv)).To(Equal(1))
			Expect(exec.argv()).To(Equal([]string{bootstrapArgv, probeArgv}))
		})

		It("should bound the probe with the probe timeout", func() {
			Expect(bootstrap()).To(Succeed())
			Expect(exec.calls[1].Timeout).To(Equal(DefaultProbeTimeout))
		})
	})

	Context("When bootstrap fails and the controller is unreachable", func() {
		BeforeEach(func() {
			exec.on(bootstrapArgv, fakeResponse{code: 1, stderr: "ERROR cannot reach cloud"})
			exec.on(probeArgv, fakeResponse{code: 2, stderr: "ERROR controller serverstack not found"})
		})

		It("should propagate the probe failure", func() {
			err := bootstrap()

			var cmdErr *suberrors.ExternalCommandError
			Expect(err).To(BeAssignableToTypeOf(cmdErr))
			Expect(err).To(MatchError(ContainSubstring("show-controller")))
			Expect(err.(*suberrors.ExternalCommandError).ExitCode).To(Equal(2))
			Expect(err.(*suberrors.ExternalCommandError).Stderr).To(ContainSubstring("not found"))
			Expect(testutil.ToFloat64(metrics.BootstrapTotal.WithLabelValues(metrics.BootstrapFailed))).To(Equal(1.0))
		})

		It("should not re-attempt bootstrap", func() {
			Expect(bootstrap()).NotTo(Succeed())
			Expect(exec.count(bootstrapArgv)).To(Equal(1))
		})
	})

	Context("When the probe times out", func() {
		It("should propagate the timeout", func() {
			exec.on(bootstrapArgv, fakeResponse{code: 1})
			exec.on(probeArgv, fakeResponse{err: &suberrors.TimeoutError{
				Args:    []string{"juju", "show-controller", "serverstack"},
				Timeout: 10 * time.Second,
			}})

			err := bootstrap()
			Expect(suberrors.IsTimeout(err)).To(BeTrue())
		})
	})
})
