package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// StaleResearchReleaser fails research runs that never finished.
type StaleResearchReleaser interface {
	FailStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

type ResearchReaper struct {
	Research   StaleResearchReleaser
	Interval   time.Duration
	StaleAfter time.Duration
	Logger     *logrus.Entry
}

func NewResearchReaper(research StaleResearchReleaser, interval, staleAfter time.Duration, logger *logrus.Entry) *ResearchReaper {
	if logger == nil {
		logger = logrus.WithField("worker", "research_reaper")
	}
	return &ResearchReaper{
		Research:   research,
		Interval:   interval,
		StaleAfter: staleAfter,
		Logger:     logger,
	}
}

// Start blocks until ctx is cancelled.
func (rr *ResearchReaper) Start(ctx context.Context) {
	rr.Logger.WithFields(logrus.Fields{
		"interval":    rr.Interval,
		"stale_after": rr.StaleAfter,
	}).Info("Research reaper started")

	ticker := time.NewTicker(rr.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			rr.Logger.Info("Research reaper shutting down...")
			return
		case <-ticker.C:
			rr.sweep(ctx)
		}
	}
}

func (rr *ResearchReaper) sweep(ctx context.Context) {
	released, err := rr.Research.FailStale(ctx, rr.StaleAfter)
	if err != nil {
		if ctx.Err() == nil {
			rr.Logger.WithError(err).Error("Error releasing stale research")
		}
		return
	}
	if released > 0 {
		rr.Logger.WithField("count", released).Warn("Released stuck research runs")
	}
}
