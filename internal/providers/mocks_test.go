package providers

import (
	"sync"
	"time"
)

// Package-local doubles. The shared testutil mocks depend on this
// package, so tests here carry their own.

type testLogEntry struct {
	Level  string
	Type   TypeEnum
	Format string
}

type testLogger struct {
	mu   sync.Mutex
	Logs []testLogEntry
}

func (m *testLogger) record(level string, t TypeEnum, format string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, testLogEntry{Level: level, Type: t, Format: format})
}

func (m *testLogger) Errorf(t TypeEnum, format string, _ ...interface{}) {
	m.record("error", t, format)
}
func (m *testLogger) Warnf(t TypeEnum, format string, _ ...interface{}) {
	m.record("warn", t, format)
}
func (m *testLogger) Infof(t TypeEnum, format string, _ ...interface{}) {
	m.record("info", t, format)
}
func (m *testLogger) Debugf(t TypeEnum, format string, _ ...interface{}) {
	m.record("debug", t, format)
}
func (m *testLogger) Fatalf(t TypeEnum, format string, _ ...interface{}) {
	m.record("fatal", t, format)
}
func (m *testLogger) Close() {}

type testMetrics struct {
	Requests    int
	CacheHits   int
	CacheMisses int
}

func (m *testMetrics) IncRequestsTotal(_ string, _ int)                 { m.Requests++ }
func (m *testMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *testMetrics) IncCacheHits()                                    { m.CacheHits++ }
func (m *testMetrics) IncCacheMisses()                                  { m.CacheMisses++ }
func (m *testMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (m *testMetrics) IncGiftsSent()                                    {}
func (m *testMetrics) IncGiftsOpened()                                  {}
func (m *testMetrics) IncCoinsGranted(_ int)                            {}
func (m *testMetrics) SetGiftsInTransit(_ int)                          {}
func (m *testMetrics) SetGiftsUnlockable(_ int)                         {}

type testCache struct {
	data map[string][]byte
}

func newTestCache() *testCache {
	return &testCache{data: make(map[string][]byte)}
}

func (c *testCache) Get(key string) ([]byte, bool) {
	val, ok := c.data[key]
	return val, ok
}

func (c *testCache) Set(key string, value []byte) {
	c.data[key] = value
}
