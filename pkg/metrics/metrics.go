// Package metrics provides Prometheus metrics for the substrate deployer.
//
// The deployer runs to completion rather than serving, so metrics live in a
// private registry that the CLI dumps in the node-exporter textfile format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Labels for metrics
	labelCommand = "command"
	labelResult  = "result"
	labelOutcome = "outcome"
	labelStep    = "step"

	// Result values
	ResultSuccess = "success"
	ResultError   = "error"
	ResultSkipped = "skipped"

	// Bootstrap outcomes
	BootstrapCreated  = "created"
	BootstrapExisting = "existing"
	BootstrapFailed   = "failed"
)

// Registry holds every substrate metric.
var Registry = prometheus.NewRegistry()

var (
	// JujuCLICallsTotal tracks CLI invocations made through the executor.
	JujuCLICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "substrate_juju_cli_calls_total",
			Help: "Total number of external CLI calls by command and result",
		},
		[]string{labelCommand, labelResult},
	)

	// JujuCLIDuration tracks CLI call durations.
	JujuCLIDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "substrate_juju_cli_duration_seconds",
			Help:    "Duration of external CLI calls in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900, 3600},
		},
		[]string{labelCommand},
	)

	// BootstrapTotal counts bootstrap reconciliations by outcome.
	BootstrapTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "substrate_bootstrap_total",
			Help: "Total number of bootstrap reconciliations by outcome",
		},
		[]string{labelOutcome},
	)

	// ActionWaitDuration tracks how long callers blocked on queued actions.
	ActionWaitDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "substrate_action_wait_seconds",
			Help:    "Time spent waiting for queued actions in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	// WorkflowStepTotal counts deploy workflow steps by result.
	WorkflowStepTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "substrate_workflow_step_total",
			Help: "Total number of deploy workflow steps by step and result",
		},
		[]string{labelStep, labelResult},
	)
)

func init() {
	Registry.MustRegister(
		JujuCLICallsTotal,
		JujuCLIDuration,
		BootstrapTotal,
		ActionWaitDuration,
		WorkflowStepTotal,
	)
}

// WriteTextfile writes the current metrics to path for the node-exporter
// textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}

// CLITimer tracks external CLI call timing.
type CLITimer struct {
	command string
	start   time.Time
}

// NewCLITimer creates a new timer for a CLI call.
func NewCLITimer(command string) *CLITimer {
	return &CLITimer{
		command: command,
		start:   time.Now(),
	}
}

// RecordSuccess records a successful CLI call.
func (t *CLITimer) RecordSuccess() {
	t.record(ResultSuccess)
}

// RecordError records a failed CLI call.
func (t *CLITimer) RecordError() {
	t.record(ResultError)
}

func (t *CLITimer) record(result string) {
	JujuCLIDuration.WithLabelValues(t.command).Observe(time.Since(t.start).Seconds())
	JujuCLICallsTotal.WithLabelValues(t.command, result).Inc()
}

// RecordBootstrap records the outcome of a bootstrap reconciliation.
func RecordBootstrap(outcome string) {
	BootstrapTotal.WithLabelValues(outcome).Inc()
}

// ObserveActionWait records time spent waiting on an action.
func ObserveActionWait(d time.Duration) {
	ActionWaitDuration.Observe(d.Seconds())
}

// RecordStep records the result of a workflow step.
func RecordStep(step, result string) {
	WorkflowStepTotal.WithLabelValues(step, result).Inc()
}
