package snapshots

import (
	"context"
	"fmt"

	"marketwatch-backend/internal/components/assert"
	"marketwatch-backend/internal/components/chrono"
	"marketwatch-backend/internal/components/telemetry"
	"marketwatch-backend/internal/scrapers/marketwatch"
)

const report_daemon = "daemon"

// after the market closes in new york
const DefaultSchedule = "30 16 * * 1-5"

// Notifier is told about every recorded leaderboard.
type Notifier interface {
	SendRankSummary(ctx context.Context, to []string, gameId string, rankings []marketwatch.Ranking) error
}

type DaemonOptions struct {
	Games []string
	// cron spec, defaults to DefaultSchedule
	Schedule string
	// optional
	Notifier   Notifier
	Recipients []string
}

// Daemon records snapshots of a fixed set of games on a schedule.
type Daemon struct {
	ctx     context.Context
	store   Store
	scraper Scraper
	cron    chrono.CronAPI
	opts    DaemonOptions
	tel     telemetry.API
}

func NewDaemon(
	ctx context.Context,
	store Store,
	scraper Scraper,
	cron chrono.CronAPI,
	opts DaemonOptions,
	tel telemetry.API,
) Daemon {
	assert.NotNil(scraper, "scraper")
	assert.NotNil(cron, "cron")
	assert.NotNil(tel, "telemetry")
	if opts.Schedule == "" {
		opts.Schedule = DefaultSchedule
	}
	return Daemon{
		ctx:     ctx,
		store:   store,
		scraper: scraper,
		cron:    cron,
		opts:    opts,
		tel:     telemetry.NewScopedAPI("snapshots", tel),
	}
}

// Start registers the daemon's job, it does not block.
func (d Daemon) Start() error {
	err := d.cron.Cron(d.opts.Schedule, func() {
		d.RecordAll(d.ctx)
	})
	if err != nil {
		return fmt.Errorf("register snapshot job: %w", err)
	}
	return nil
}

// RecordAll records every configured game, a failing game does not stop
// the others.
func (d Daemon) RecordAll(ctx context.Context) {
	for _, gameId := range d.opts.Games {
		rankings, err := d.store.Record(ctx, d.scraper, gameId)
		if err != nil {
			// Record already reported it
			continue
		}
		if d.opts.Notifier == nil {
			continue
		}
		err = d.opts.Notifier.SendRankSummary(ctx, d.opts.Recipients, gameId, rankings)
		if err != nil {
			d.tel.ReportWarning(report_daemon, fmt.Errorf("notify: %w", err), gameId)
		}
	}
}
