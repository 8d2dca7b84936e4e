package exchange

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gxd/internal/testutil"
)

func writeSnapshot(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "exchange.dat")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":2,"accounts":{}}`), 0644))
	return path
}

func TestBackupManager_Disabled(t *testing.T) {
	bm := NewBackupManager("", time.Hour, &testutil.MockLogger{})
	assert.False(t, bm.Enabled())
	assert.NoError(t, bm.Rotate("/nonexistent/exchange.dat", time.Now()))
}

func TestBackupManager_Rotate_CreatesTimestampedCopy(t *testing.T) {
	dir := t.TempDir()
	backupDir := filepath.Join(dir, "backups")
	snapshot := writeSnapshot(t, dir)

	bm := NewBackupManager(backupDir, time.Hour, &testutil.MockLogger{})
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, bm.Rotate(snapshot, now))

	expected := filepath.Join(backupDir, "20260301T120000.bak.zst")
	data, err := os.ReadFile(expected)
	require.NoError(t, err)
	assert.Equal(t, `{"version":2,"accounts":{}}`, string(data))
	assert.Equal(t, expected, bm.Latest())
}

func TestBackupManager_Rotate_MissingSnapshotIsNoop(t *testing.T) {
	backupDir := t.TempDir()
	bm := NewBackupManager(backupDir, time.Hour, &testutil.MockLogger{})

	require.NoError(t, bm.Rotate(filepath.Join(backupDir, "missing.dat"), time.Now()))
	assert.Equal(t, "", bm.Latest())
}

func TestBackupManager_Prune_RemovesExpiredKeepsNewest(t *testing.T) {
	dir := t.TempDir()
	backupDir := filepath.Join(dir, "backups")
	snapshot := writeSnapshot(t, dir)

	bm := NewBackupManager(backupDir, time.Hour, &testutil.MockLogger{})

	old := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, bm.Rotate(snapshot, old))

	// Two hours later the first backup is past its TTL
	now := old.Add(2 * time.Hour)
	require.NoError(t, bm.Rotate(snapshot, now))

	files, err := filepath.Glob(filepath.Join(backupDir, "*.bak.zst"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(backupDir, "20260301T020000.bak.zst"), files[0])
}

func TestBackupManager_Prune_NewestSurvivesPastTTL(t *testing.T) {
	dir := t.TempDir()
	backupDir := filepath.Join(dir, "backups")
	snapshot := writeSnapshot(t, dir)

	bm := NewBackupManager(backupDir, time.Minute, &testutil.MockLogger{})

	old := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, bm.Rotate(snapshot, old))

	// Only one backup exists; even a week later it is retained
	require.NoError(t, bm.prune(old.Add(7*24*time.Hour)))
	assert.NotEqual(t, "", bm.Latest())
}
