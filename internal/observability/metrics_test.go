package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/invoices", "GET", 200, 2*time.Millisecond)
	m.RecordRequest("/invoices", "GET", 200, 4*time.Millisecond)
	m.RecordRequest("/invoices", "POST", 400, time.Millisecond)
	m.RecordError("/invoices", "POST", "VALIDATION_FAILED")

	snap := m.Snapshot()
	require.Len(t, snap.Requests, 2)
	assert.Equal(t, "/invoices|GET|200", snap.Requests[0].Key)
	assert.Equal(t, int64(2), snap.Requests[0].Count)
	assert.InDelta(t, 3.0, snap.Requests[0].AvgMillis, 0.001)
	assert.Equal(t, "/invoices|POST|400", snap.Requests[1].Key)

	require.Len(t, snap.Errors, 1)
	assert.Equal(t, "/invoices|POST|VALIDATION_FAILED", snap.Errors[0].Key)
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, 0)
	m.RecordError("/", "GET", "X")
	assert.Empty(t, m.Snapshot().Requests)
}
