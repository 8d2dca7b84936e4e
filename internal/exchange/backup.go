package exchange

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gxd/internal/providers"
)

const backupSuffix = ".bak.zst"

// BackupManager rotates compressed copies of the snapshot file into a
// side directory. Backups past their TTL are pruned on each rotation;
// the newest backup is always retained so a fresh install that sits
// idle longer than the TTL still has a restore point.
type BackupManager struct {
	dir    string
	ttl    time.Duration
	logger providers.Logger
}

func NewBackupManager(dir string, ttl time.Duration, logger providers.Logger) *BackupManager {
	return &BackupManager{
		dir:    dir,
		ttl:    ttl,
		logger: logger,
	}
}

// Enabled reports whether backups are configured at all.
func (b *BackupManager) Enabled() bool {
	return b.dir != ""
}

// Rotate copies the snapshot file into the backup directory under a
// timestamped name, then prunes expired backups. A missing snapshot
// file is not an error, there is simply nothing to back up yet.
func (b *BackupManager) Rotate(snapshotPath string, now time.Time) error {
	if !b.Enabled() {
		return nil
	}

	data, err := os.ReadFile(snapshotPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := os.MkdirAll(b.dir, 0755); err != nil {
		return err
	}

	name := now.UTC().Format("20060102T150405") + backupSuffix
	path := filepath.Join(b.dir, name)

	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmpFile, path); err != nil {
		return err
	}

	return b.prune(now)
}

// prune removes backups older than the TTL, keeping at least the most
// recent one.
func (b *BackupManager) prune(now time.Time) error {
	if b.ttl <= 0 {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(b.dir, "*"+backupSuffix))
	if err != nil {
		return err
	}
	sort.Strings(files) // timestamped names sort chronologically

	for i, file := range files {
		if i == len(files)-1 {
			break
		}
		ts, err := time.Parse("20060102T150405", strings.TrimSuffix(filepath.Base(file), backupSuffix))
		if err != nil {
			b.logger.Warnf(providers.TypeApp, "Skipping unrecognized backup file %s", file)
			continue
		}
		if now.UTC().Sub(ts) > b.ttl {
			if err := os.Remove(file); err != nil {
				b.logger.Errorf(providers.TypeApp, "Failed to prune backup %s: %s", file, err)
			}
		}
	}
	return nil
}

// Latest returns the path of the most recent backup, or empty when
// none exist.
func (b *BackupManager) Latest() string {
	files, err := filepath.Glob(filepath.Join(b.dir, "*"+backupSuffix))
	if err != nil || len(files) == 0 {
		return ""
	}
	sort.Strings(files)
	return files[len(files)-1]
}
