// Package metrics provides Prometheus metrics for the compage runtime.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "compage"
)

// Instance metrics track component instances across their lifecycle.
var (
	// InstancesLoaded is the number of instances in the collection.
	InstancesLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "instances_loaded",
		Help:      "Number of component instances in the collection",
	})

	// InstancesRunning is the number of launched instances that have not completed.
	InstancesRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "instances_running",
		Help:      "Number of launched component instances that have not completed",
	})

	// InstancesByState is the number of instances per lifecycle state, sampled by the collector.
	InstancesByState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "instances_by_state",
		Help:      "Number of component instances per lifecycle state",
	}, []string{"state"})

	// LaunchesTotal is the total number of instance launches.
	LaunchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "launches_total",
		Help:      "Total number of component instance launches",
	}, []string{"component"})

	// CompletionsTotal is the total number of instance completions by result.
	CompletionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "completions_total",
		Help:      "Total number of completed component instances",
	}, []string{"component", "result"})
)

// Lifecycle metrics track phase transitions and handler execution.
var (
	// TransitionsTotal is the total number of lifecycle state transitions.
	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "state_transitions_total",
		Help:      "Total number of lifecycle state transitions",
	}, []string{"component", "state"})

	// LoopIterationsTotal is the total number of loop handler invocations.
	LoopIterationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loop_iterations_total",
		Help:      "Total number of loop handler invocations",
	}, []string{"component"})

	// HandlerErrorsTotal is the total number of handler failures.
	HandlerErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "handler_errors_total",
		Help:      "Total number of init, loop and exit handler failures",
	}, []string{"component", "handler"})

	// HandlerDuration is a histogram of handler execution time in seconds.
	HandlerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "handler_duration_seconds",
		Help:      "Duration of init, loop and exit handler invocations in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
	}, []string{"component", "handler"})
)

// Config metrics track configuration loading.
var (
	// ConfigWarningsTotal is the total number of ignored keys and rejected values.
	ConfigWarningsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "config_warnings_total",
		Help:      "Total number of configuration entries ignored or rejected",
	}, []string{"reason"})
)

// Runtime metrics track the hosting process.
var (
	// RuntimeInfo provides version and build information.
	RuntimeInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "runtime_info",
		Help:      "Runtime version and build information",
	}, []string{"version", "go_version", "run_id"})

	// RuntimeStartTime is the unix timestamp when the runtime started.
	RuntimeStartTime = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "runtime_start_time_seconds",
		Help:      "Unix timestamp when the runtime started",
	})

	// ProviderStatus tracks whether metric providers report successfully.
	ProviderStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "provider_status",
		Help:      "Metric provider collection status (1=ok, 0=failed)",
	}, []string{"provider"})
)
