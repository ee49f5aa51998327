package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/auth/check", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/auth/check", "GET", 200, 30*time.Millisecond)
	m.RecordRequest("/auth/check", "GET", 401, time.Millisecond)
	m.RecordError("/auth/check", "GET", "UNAUTHORIZED")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests["/auth/check|GET|200"])
	assert.Equal(t, int64(1), snap.Requests["/auth/check|GET|401"])
	assert.Equal(t, int64(20), snap.AvgLatencyMS["/auth/check|GET|200"])
	assert.Equal(t, int64(1), snap.Errors["/auth/check|GET|UNAUTHORIZED"])

	// the snapshot is a copy
	snap.Requests["/auth/check|GET|200"] = 99
	assert.Equal(t, int64(2), m.Snapshot().Requests["/auth/check|GET|200"])
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	assert.Empty(t, m.Snapshot().Requests)
}
