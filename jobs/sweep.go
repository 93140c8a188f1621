// Package jobs runs periodic maintenance over the relational store.
package jobs

import (
	"context"
	"fmt"
	"time"

	"cropwise/models"

	"github.com/juju/clock"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Sweeper marks devices inactive once they stop sending data and drops
// revoked tokens past their expiry.
type Sweeper struct {
	db         *gorm.DB
	staleAfter time.Duration
	clock      clock.Clock
	log        *zap.Logger
	cron       *cron.Cron
}

// NewSweeper builds a sweeper; a nil clk means the wall clock.
func NewSweeper(db *gorm.DB, clk clock.Clock, staleAfter time.Duration, log *zap.Logger) *Sweeper {
	if clk == nil {
		clk = clock.WallClock
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{db: db, staleAfter: staleAfter, clock: clk, log: log}
}

// Report counts what one sweep changed.
type Report struct {
	Deactivated int64 `json:"deactivated"`
	Purged      int64 `json:"purged_tokens"`
}

// RunOnce deactivates every active device whose last reading is older than
// the stale window and forgets revoked tokens that have expired on their own.
// Devices that never reported are left alone.
func (s *Sweeper) RunOnce(ctx context.Context) (Report, error) {
	var rep Report
	now := s.clock.Now()
	db := s.db.WithContext(ctx)

	cutoff := now.Add(-s.staleAfter)
	res := db.Model(&models.IotDevice{}).
		Where("is_active = ? AND last_data_received IS NOT NULL AND last_data_received < ?", true, cutoff).
		Update("is_active", false)
	if res.Error != nil {
		return rep, fmt.Errorf("failed to sweep stale devices: %w", res.Error)
	}
	rep.Deactivated = res.RowsAffected

	// an expired token fails validation anyway
	res = db.Where("expires_at < ?", now).Delete(&models.RevokedToken{})
	if res.Error != nil {
		return rep, fmt.Errorf("failed to purge revoked tokens: %w", res.Error)
	}
	rep.Purged = res.RowsAffected

	if rep.Deactivated > 0 || rep.Purged > 0 {
		s.log.Info("sweep finished",
			zap.Int64("deactivated", rep.Deactivated),
			zap.Int64("purged_tokens", rep.Purged),
			zap.Time("cutoff", cutoff),
		)
	}
	return rep, nil
}

// Start schedules RunOnce on a cron schedule such as "@every 10m".
func (s *Sweeper) Start(schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if _, err := s.RunOnce(context.Background()); err != nil {
			s.log.Error("scheduled device sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to set up cron job: %w", err)
	}
	s.cron = c
	c.Start()
	s.log.Info("device sweep scheduled", zap.String("schedule", schedule))
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}
