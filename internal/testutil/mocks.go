package testutil

import (
	"sync"
	"time"

	"gxd/internal/models"
	"gxd/internal/providers"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}

// MockPersister implements interfaces.PersisterInterface and counts flushes.
type MockPersister struct {
	mu        sync.Mutex
	Calls     int
	PersistFn func() error
}

func (m *MockPersister) Persist() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.PersistFn != nil {
		return m.PersistFn()
	}
	return nil
}

func (m *MockPersister) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

// MockMetrics implements providers.MetricsProviderInterface and records counts.
type MockMetrics struct {
	mu              sync.Mutex
	Requests        int
	CacheHits       int
	CacheMisses     int
	GiftsSent       int
	GiftsOpened     int
	CoinsGranted    int
	GiftsInTransit  int
	GiftsUnlockable int
	PersistObserved int
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
}

func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PersistObserved++
}

func (m *MockMetrics) IncGiftsSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GiftsSent++
}

func (m *MockMetrics) IncGiftsOpened() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GiftsOpened++
}

func (m *MockMetrics) IncCoinsGranted(amount int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CoinsGranted += amount
}

func (m *MockMetrics) SetGiftsInTransit(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GiftsInTransit = count
}

func (m *MockMetrics) SetGiftsUnlockable(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GiftsUnlockable = count
}

// Gift builds an inbox gift fixture for persistence tests.
func Gift(id string, openDate time.Time) *models.GiftInstance {
	return &models.GiftInstance{
		ID:        id,
		CatalogID: "c1",
		Name:      "Candy Cane",
		Icon:      "🍬",
		Cost:      5,
		Sender:    "Alice",
		SentAt:    openDate.AddDate(0, -1, 0),
		OpenDate:  openDate,
	}
}
