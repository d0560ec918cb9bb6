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
	"strings"
	"sync"
)

// fakeResponse is what fakeExecutor answers for one argv.
type fakeResponse struct {
	stdout string
	stderr string
	code   int
	err    error
}

// fakeExecutor answers commands from a script keyed by the space-joined argv
// and records every call. Unscripted commands exit 1.
type fakeExecutor struct {
	mu        sync.Mutex
	responses map[string]fakeResponse
	calls     []Command
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{responses: map[string]fakeResponse{}}
}

func (f *fakeExecutor) on(argv string, resp fakeResponse) *fakeExecutor {
	f.responses[argv] = resp
	return f
}

func (f *fakeExecutor) Execute(_ context.Context, cmd Command) (*Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cmd)

	resp, ok := f.responses[strings.Join(cmd.Args, " ")]
	if !ok {
		return &Result{ExitCode: 1, Stderr: []byte("unscripted command")}, nil
	}
	if resp.err != nil {
		return nil, resp.err
	}
	return &Result{Stdout: []byte(resp.stdout), Stderr: []byte(resp.stderr), ExitCode: resp.code}, nil
}

// argv returns the recorded calls as space-joined strings.
func (f *fakeExecutor) argv() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, strings.Join(c.Args, " "))
	}
	return out
}

func (f *fakeExecutor) count(argv string) int {
	n := 0
	for _, a := range f.argv() {
		if a == argv {
			n++
		}
	}
	return n
}

func newTestClient(exec *fakeExecutor) *Client {
	return NewClientWithConfig(ClientConfig{JujuPath: "juju", Executor: exec})
}
