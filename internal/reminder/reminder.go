// Package reminder periodically looks for unused vouchers that are about
// to expire and queues push reminders for them.
package reminder

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"giftguard-backend/config"
	"giftguard-backend/internal/notification"
	"giftguard-backend/internal/parse"
	"giftguard-backend/internal/voucher"
)

// Source is the part of the voucher store the reminder reads.
type Source interface {
	List() voucher.ListState
}

// Service scans the voucher list on an interval.
type Service struct {
	cfg        config.ReminderConfig
	loc        *time.Location
	source     Source
	workerPool *notification.WorkerPool
	sent       *cache.Cache
	now        func() time.Time
}

// NewService creates a reminder service dispatching to workerPool.
func NewService(cfg *config.Config, source Source, workerPool *notification.WorkerPool) *Service {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		cfg:        cfg.Reminder,
		loc:        loc,
		source:     source,
		workerPool: workerPool,
		sent:       cache.New(48*time.Hour, time.Hour),
		now:        time.Now,
	}
}

// Run starts the worker pool and scans until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		log.Info().Msg("reminder is disabled, not starting")
		return
	}
	log.Info().Dur("interval", s.cfg.Interval).Int("within_days", s.cfg.WithinDays).Msg("starting reminder service")

	s.workerPool.Start(ctx)

	s.ScanOnce(ctx)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("reminder service shutting down")
			return
		case <-timer.C:
			s.ScanOnce(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

// ScanOnce dispatches one reminder per due voucher and returns how many it
// queued. A voucher is announced at most once per calendar day.
func (s *Service) ScanOnce(ctx context.Context) int {
	now := s.now()
	day := parse.FormatDate(now, s.loc)

	dispatched := 0
	for _, r := range s.Due(now) {
		key := r.GiftconID + "@" + day
		if _, seen := s.sent.Get(key); seen {
			continue
		}
		if err := s.workerPool.Dispatch(ctx, r); err != nil {
			log.Warn().Err(err).Str("giftcon_id", r.GiftconID).Msg("reminder dispatch aborted")
			return dispatched
		}
		s.sent.SetDefault(key, struct{}{})
		dispatched++
	}

	if dispatched > 0 {
		log.Info().Int("count", dispatched).Msg("dispatched expiry reminders")
	}
	return dispatched
}

// Due lists reminders for unused vouchers expiring within the configured
// number of days, expiry day included.
func (s *Service) Due(now time.Time) []notification.Reminder {
	var due []notification.Reminder
	for _, g := range s.source.List().Giftcons {
		if g.IsUsed {
			continue
		}
		days := parse.DaysLeft(g.ExpiryDate, now, s.loc)
		if days < 0 || days > s.cfg.WithinDays {
			continue
		}
		due = append(due, notification.Reminder{
			GiftconID:   g.ID,
			Brand:       g.Brand,
			ProductName: g.ProductName,
			DaysLeft:    days,
		})
	}
	return due
}
