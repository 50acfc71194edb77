package util

import (
	"sync"

	"github.com/influxdata/influxdb-client-go/api/write"
)

// MockWriteAPI stands in for an influx api.WriteAPI when no server is
// configured. Points are kept so callers can inspect what would have been sent.
type MockWriteAPI struct {
	mu      sync.Mutex
	points  []*write.Point
	flushes int
}

// WriteRecord drops line protocol records.
func (m *MockWriteAPI) WriteRecord(line string) {}

// WritePoint records point.
func (m *MockWriteAPI) WritePoint(point *write.Point) {
	m.mu.Lock()
	m.points = append(m.points, point)
	m.mu.Unlock()
}

func (m *MockWriteAPI) Flush() {
	m.mu.Lock()
	m.flushes++
	m.mu.Unlock()
}

func (m *MockWriteAPI) Close() {}

func (m *MockWriteAPI) Errors() <-chan error { return nil }

// Points returns a copy of every point written so far.
func (m *MockWriteAPI) Points() []*write.Point {
	m.mu.Lock()
	defer m.mu.Unlock()

	ret := make([]*write.Point, len(m.points))
	copy(ret, m.points)
	return ret
}

// Flushes counts calls to Flush.
func (m *MockWriteAPI) Flushes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flushes
}
