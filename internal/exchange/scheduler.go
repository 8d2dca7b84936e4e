package exchange

import (
	"sync"
	"time"

	"github.com/roylee0704/gron"

	"gxd/internal/exchange/interfaces"
	"gxd/internal/providers"
	"gxd/internal/services"
	"gxd/internal/structures"
)

// Backups rotate on their own slower cadence, independent of snapshot
// saves.
const backupInterval = time.Hour

// Scheduler drives the daemon's periodic work: snapshot saves, the
// refresh sweep that re-derives unlockable visibility, and backup
// rotation. The sweep only reads state, gift transitions happen
// exclusively through user operations.
type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	service     services.AccountServiceInterface
	fileManager *FileManager
	backups     *BackupManager
	metrics     providers.MetricsProviderInterface
	cron        *gron.Cron
	opsMu       sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	s.cron.AddFunc(gron.Every(s.config.Persistence.SaveInterval), func() {
		if err := s.Persist(); err != nil {
			return
		}
		s.logger.Infof(providers.TypeApp, "Persisted data to file %s", s.config.Persistence.FilePath)
	})

	s.cron.AddFunc(gron.Every(s.config.Exchange.RefreshInterval), func() {
		now := time.Now()
		table := s.service.Table()
		pending := table.PendingGifts()
		unlockable := table.UnlockableGifts(now)
		s.metrics.SetGiftsInTransit(pending)
		s.metrics.SetGiftsUnlockable(unlockable)
		s.logger.Debugf(providers.TypeApp, "Refresh sweep: %d pending, %d unlockable", pending, unlockable)
	})

	if s.backups.Enabled() {
		s.cron.AddFunc(gron.Every(backupInterval), func() {
			s.opsMu.Lock()
			defer s.opsMu.Unlock()

			if err := s.backups.Rotate(s.config.Persistence.FilePath, time.Now()); err != nil {
				s.logger.Errorf(providers.TypeApp, "Error while rotating backups: %s", err)
				return
			}
			s.logger.Infof(providers.TypeApp, "Rotated snapshot backup into %s", s.config.Persistence.BackupDir)
		})
	}

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) Restore() error {
	return s.fileManager.LoadFromFile(s.config.Persistence.FilePath)
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	start := time.Now()
	err := s.fileManager.SaveToFile(s.config.Persistence.FilePath)
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting data: %s", err)
		return err
	}
	s.metrics.ObservePersistenceDuration(time.Since(start))
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, service services.AccountServiceInterface, fileManager *FileManager, metrics providers.MetricsProviderInterface) interfaces.SchedulerInterface {
	backups := NewBackupManager(config.Persistence.BackupDir, config.Persistence.BackupTTL, logger)
	return &Scheduler{
		config:      config,
		logger:      logger,
		service:     service,
		fileManager: fileManager,
		backups:     backups,
		metrics:     metrics,
	}
}

// NewPersister narrows the scheduler to the synchronous-save slice the
// controllers depend on.
func NewPersister(s interfaces.SchedulerInterface) interfaces.PersisterInterface {
	return s
}
