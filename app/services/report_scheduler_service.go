package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Scheduler sync modes
const (
	SyncModeInterval = "interval"
	SyncModeDaily    = "daily"
)

// ReportSyncer sends the report for one day
type ReportSyncer interface {
	SyncDay(ctx context.Context, day time.Time) error
}

// ReportSchedulerService periodically pushes daily reports. In interval
// mode it sends today's running totals every interval; in daily mode it
// sends yesterday's report once a day at the configured time.
type ReportSchedulerService struct {
	syncer   ReportSyncer
	log      *zap.Logger
	mode     string
	syncTime string
	interval time.Duration
	now      func() time.Time

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	done     chan struct{}
}

// NewReportSchedulerService creates a scheduler. Non-positive intervals fall back to one hour.
func NewReportSchedulerService(syncer ReportSyncer, mode, syncTime string, interval time.Duration, log *zap.Logger) *ReportSchedulerService {
	if log == nil {
		log = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Hour
	}
	if mode != SyncModeDaily {
		mode = SyncModeInterval
	}
	return &ReportSchedulerService{
		syncer:   syncer,
		log:      log,
		mode:     mode,
		syncTime: syncTime,
		interval: interval,
		now:      time.Now,
	}
}

// Start begins the scheduler
func (s *ReportSchedulerService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	s.running = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.stopChan, s.done)

	s.log.Info("Report scheduler started", zap.String("mode", s.mode))
	return nil
}

// Stop stops the scheduler and waits for the loop to exit
func (s *ReportSchedulerService) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	close(s.stopChan)
	done := s.done
	s.running = false
	s.mu.Unlock()

	<-done
	s.log.Info("Report scheduler stopped")
}

// Running reports whether the loop is active
func (s *ReportSchedulerService) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// run is the main scheduler loop
func (s *ReportSchedulerService) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		wait := s.nextDelay()
		s.log.Debug("Next report sync scheduled", zap.Duration("in", wait))

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
			if err := s.executeSync(ctx); err != nil {
				s.log.Warn("Scheduled sync failed", zap.Error(err))
			}
		case <-stop:
			timer.Stop()
			return
		}
	}
}

// nextDelay returns the time to wait before the next sync
func (s *ReportSchedulerService) nextDelay() time.Duration {
	if s.mode == SyncModeDaily {
		return s.getTimeUntilDailySync()
	}
	return s.interval
}

// getTimeUntilDailySync calculates duration until the configured daily sync time
func (s *ReportSchedulerService) getTimeUntilDailySync() time.Duration {
	now := s.now()

	targetTime, err := time.Parse("15:04", s.syncTime)
	if err != nil {
		s.log.Warn("Invalid sync time format, using 23:00", zap.String("sync_time", s.syncTime))
		targetTime, _ = time.Parse("15:04", "23:00")
	}

	target := time.Date(now.Year(), now.Month(), now.Day(),
		targetTime.Hour(), targetTime.Minute(), 0, 0, now.Location())

	if !now.Before(target) {
		target = target.AddDate(0, 0, 1)
	}
	return target.Sub(now)
}

// executeSync sends the report for the day the current mode covers
func (s *ReportSchedulerService) executeSync(ctx context.Context) error {
	day := s.now()
	if s.mode == SyncModeDaily {
		day = day.AddDate(0, 0, -1)
	}
	return s.syncer.SyncDay(ctx, day)
}
