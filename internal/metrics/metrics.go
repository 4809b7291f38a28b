package metrics

import (
	"sync"
	"time"
)

// Metric is one named counter or gauge value.
type Metric struct {
	Name        string            `json:"name"`
	Value       float64           `json:"value"`
	Labels      map[string]string `json:"labels,omitempty"`
	Description string            `json:"description,omitempty"`
	LastUpdate  time.Time         `json:"last_update"`
}

// Registry keeps all metrics in memory; the webhook server's /metrics
// endpoint serializes a snapshot of it.
type Registry struct {
	mu        sync.RWMutex
	counters  map[string]*Metric
	gauges    map[string]*Metric
	startTime time.Time
}

// NewRegistry creates a new metrics registry
func NewRegistry() *Registry {
	return &Registry{
		counters:  make(map[string]*Metric),
		gauges:    make(map[string]*Metric),
		startTime: time.Now(),
	}
}

var globalRegistry = NewRegistry()

// GetRegistry returns the global registry instance
func GetRegistry() *Registry {
	return globalRegistry
}

// IncrementCounter increments a counter metric, creating it on first use.
func (r *Registry) IncrementCounter(name string, labels map[string]string, description string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := metricKey(name, labels)
	if m, ok := r.counters[key]; ok {
		m.Value++
		m.LastUpdate = time.Now()
		return
	}
	r.counters[key] = &Metric{
		Name:        name,
		Value:       1,
		Labels:      labels,
		Description: description,
		LastUpdate:  time.Now(),
	}
}

// SetGauge sets a gauge metric to the given value.
func (r *Registry) SetGauge(name string, value float64, labels map[string]string, description string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := metricKey(name, labels)
	r.gauges[key] = &Metric{
		Name:        name,
		Value:       value,
		Labels:      labels,
		Description: description,
		LastUpdate:  time.Now(),
	}
}

// Snapshot returns a copy of all metrics plus process uptime.
func (r *Registry) Snapshot() map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counters := make(map[string]Metric, len(r.counters))
	for k, v := range r.counters {
		counters[k] = *v
	}
	gauges := make(map[string]Metric, len(r.gauges))
	for k, v := range r.gauges {
		gauges[k] = *v
	}

	return map[string]interface{}{
		"counters":       counters,
		"gauges":         gauges,
		"uptime_seconds": time.Since(r.startTime).Seconds(),
	}
}

func metricKey(name string, labels map[string]string) string {
	key := name
	for k, v := range labels {
		key += "," + k + "=" + v
	}
	return key
}

// IncrementCounter increments a counter on the global registry
func IncrementCounter(name string, labels map[string]string, description string) {
	globalRegistry.IncrementCounter(name, labels, description)
}

// SetGauge sets a gauge on the global registry
func SetGauge(name string, value float64, labels map[string]string, description string) {
	globalRegistry.SetGauge(name, value, labels, description)
}
