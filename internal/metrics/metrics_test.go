package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrementCounter(t *testing.T) {
	r := NewRegistry()

	r.IncrementCounter("updates_processed", nil, "Updates dispatched")
	r.IncrementCounter("updates_processed", nil, "Updates dispatched")
	r.IncrementCounter("updates_processed", nil, "Updates dispatched")

	snapshot := r.Snapshot()
	counters := snapshot["counters"].(map[string]Metric)
	require.Contains(t, counters, "updates_processed")
	assert.Equal(t, float64(3), counters["updates_processed"].Value)
}

func TestCounterLabelsSeparateSeries(t *testing.T) {
	r := NewRegistry()

	r.IncrementCounter("approval_decisions", map[string]string{"decision": "approve"}, "")
	r.IncrementCounter("approval_decisions", map[string]string{"decision": "approve"}, "")
	r.IncrementCounter("approval_decisions", map[string]string{"decision": "reject"}, "")

	counters := r.Snapshot()["counters"].(map[string]Metric)
	assert.Equal(t, float64(2), counters["approval_decisions,decision=approve"].Value)
	assert.Equal(t, float64(1), counters["approval_decisions,decision=reject"].Value)
}

func TestSetGaugeOverwrites(t *testing.T) {
	r := NewRegistry()

	r.SetGauge("approval_requests_pending", 3, nil, "")
	r.SetGauge("approval_requests_pending", 1, nil, "")

	gauges := r.Snapshot()["gauges"].(map[string]Metric)
	assert.Equal(t, float64(1), gauges["approval_requests_pending"].Value)
}

func TestSnapshotIncludesUptime(t *testing.T) {
	r := NewRegistry()

	snapshot := r.Snapshot()

	uptime, ok := snapshot["uptime_seconds"].(float64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, uptime, float64(0))
}

func TestSnapshotIsACopy(t *testing.T) {
	r := NewRegistry()
	r.IncrementCounter("c", nil, "")

	before := r.Snapshot()["counters"].(map[string]Metric)
	r.IncrementCounter("c", nil, "")

	assert.Equal(t, float64(1), before["c"].Value, "snapshot must not track later writes")
}

func TestGlobalRegistryHelpers(t *testing.T) {
	IncrementCounter("global_test_counter", nil, "")
	SetGauge("global_test_gauge", 7, nil, "")

	snapshot := GetRegistry().Snapshot()
	counters := snapshot["counters"].(map[string]Metric)
	gauges := snapshot["gauges"].(map[string]Metric)
	assert.Contains(t, counters, "global_test_counter")
	assert.Equal(t, float64(7), gauges["global_test_gauge"].Value)
}
