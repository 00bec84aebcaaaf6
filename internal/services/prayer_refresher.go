package services

import (
	"context"
	"log/slog"
	"time"

	"moschee-backend/internal/models"
)

type prayerRefresher interface {
	Refresh(ctx context.Context) (*models.PrayerSchedule, error)
}

// PrayerRefresher keeps today's schedule warm in the cache so page loads
// rarely wait on the Aladhan API.
type PrayerRefresher struct {
	prayers  prayerRefresher
	interval time.Duration
	logger   *slog.Logger
	stopChan chan struct{}
}

func NewPrayerRefresher(prayers prayerRefresher, interval time.Duration, logger *slog.Logger) *PrayerRefresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &PrayerRefresher{
		prayers:  prayers,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

func (r *PrayerRefresher) Start() {
	if r.prayers == nil || r.interval <= 0 {
		return
	}

	go r.loop()

	r.logger.Info("prayer time refresher started", "interval", r.interval.String())
}

func (r *PrayerRefresher) Stop() {
	select {
	case <-r.stopChan:
		return
	default:
		close(r.stopChan)
	}
}

func (r *PrayerRefresher) loop() {
	// Run on startup as well as by interval.
	r.refreshOnce()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopChan:
			return
		case <-ticker.C:
			r.refreshOnce()
		}
	}
}

func (r *PrayerRefresher) refreshOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	schedule, err := r.prayers.Refresh(ctx)
	if err != nil {
		r.logger.Warn("prayer times refresh failed", "error", err)
		return
	}
	r.logger.Info("prayer times refreshed", "date", schedule.Date, "entries", len(schedule.Times))
}
