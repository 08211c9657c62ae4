package revocation

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const DefaultPurgeSchedule = "@every 10m"

// Purger periodically removes expired revocation entries.
type Purger struct {
	store   Store
	cron    *cron.Cron
	log     *slog.Logger
	timeout time.Duration
}

func NewPurger(store Store, log *slog.Logger) *Purger {
	if log == nil {
		log = slog.Default()
	}
	return &Purger{
		store:   store,
		cron:    cron.New(),
		log:     log.With("job", "revocation_purge"),
		timeout: 30 * time.Second,
	}
}

func (p *Purger) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultPurgeSchedule
	}
	if _, err := p.cron.AddFunc(schedule, p.RunOnce); err != nil {
		return err
	}
	p.cron.Start()
	p.log.Info("purge_scheduled", "schedule", schedule)
	return nil
}

// Stop waits for a running purge to finish.
func (p *Purger) Stop() {
	<-p.cron.Stop().Done()
}

func (p *Purger) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	n, err := p.store.PurgeExpired(ctx, time.Now().UTC())
	if err != nil {
		p.log.Error("purge_failed", "error", err)
		return
	}
	if n > 0 {
		p.log.Info("purge_completed", "removed", n)
	}
}
