package metrics

import (
	"context"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsProvider is an interface for components that provide metrics.
type MetricsProvider interface {
	// CollectMetrics collects current metrics from the provider.
	CollectMetrics(ctx context.Context) error
}

// Collector periodically samples registered providers.
type Collector struct {
	mu        sync.RWMutex
	providers map[string]MetricsProvider
	interval  time.Duration
	stopCh    chan struct{}
	running   bool
}

// NewCollector creates a new metrics collector.
func NewCollector(interval time.Duration) *Collector {
	return &Collector{
		providers: make(map[string]MetricsProvider),
		interval:  interval,
		stopCh:    make(chan struct{}),
	}
}

// Register adds a metrics provider to the collector.
func (c *Collector) Register(name string, provider MetricsProvider) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.providers[name] = provider
}

// Unregister removes a metrics provider from the collector.
func (c *Collector) Unregister(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.providers, name)
}

// Start records runtime information and begins periodic collection.
func (c *Collector) Start(ctx context.Context, version, runID string) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = true
	c.stopCh = make(chan struct{})
	c.mu.Unlock()

	RuntimeStartTime.Set(float64(time.Now().Unix()))
	RuntimeInfo.WithLabelValues(version, runtime.Version(), runID).Set(1)

	c.collect(ctx)

	go c.run(ctx)

	return nil
}

// Stop halts periodic metric collection.
func (c *Collector) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil
	}

	close(c.stopCh)
	c.running = false
	return nil
}

func (c *Collector) run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.collect(ctx)
		}
	}
}

// collect gathers metrics from all registered providers.
func (c *Collector) collect(ctx context.Context) {
	c.mu.RLock()
	providers := make(map[string]MetricsProvider, len(c.providers))
	for k, v := range c.providers {
		providers[k] = v
	}
	c.mu.RUnlock()

	for name, provider := range providers {
		if err := provider.CollectMetrics(ctx); err != nil {
			ProviderStatus.WithLabelValues(name).Set(0)
		} else {
			ProviderStatus.WithLabelValues(name).Set(1)
		}
	}
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// HandlerFor returns a handler for a specific registry.
func HandlerFor(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// RecordTransition records a lifecycle state change.
func RecordTransition(component, state string) {
	TransitionsTotal.WithLabelValues(component, state).Inc()
}

// RecordLaunch records a launched instance.
func RecordLaunch(component string) {
	LaunchesTotal.WithLabelValues(component).Inc()
	InstancesRunning.Inc()
}

// RecordCompletion records a finished instance. result is "success" or "failure".
func RecordCompletion(component, result string) {
	CompletionsTotal.WithLabelValues(component, result).Inc()
	InstancesRunning.Dec()
}

// RecordHandler records one handler invocation.
func RecordHandler(component, handler string, duration time.Duration, err error) {
	HandlerDuration.WithLabelValues(component, handler).Observe(duration.Seconds())
	if handler == "loop" {
		LoopIterationsTotal.WithLabelValues(component).Inc()
	}
	if err != nil {
		HandlerErrorsTotal.WithLabelValues(component, handler).Inc()
	}
}

// RecordConfigWarning records an ignored or rejected configuration entry.
func RecordConfigWarning(reason string) {
	ConfigWarningsTotal.WithLabelValues(reason).Inc()
}

// UpdateInstanceStates replaces the per-state instance counts.
func UpdateInstanceStates(counts map[string]int) {
	InstancesByState.Reset()
	for state, n := range counts {
		InstancesByState.WithLabelValues(state).Set(float64(n))
	}
}

// UpdateLoaded sets the number of instances in the collection.
func UpdateLoaded(n int) {
	InstancesLoaded.Set(float64(n))
}
