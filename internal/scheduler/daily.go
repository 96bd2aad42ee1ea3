package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

var ErrBusy = errors.New("a run is already in progress")

type Job func(ctx context.Context) error

// Daily fires a job once a day at a fixed local wall-clock time. Runs never
// overlap: a trigger while a run is in progress is rejected with ErrBusy.
type Daily struct {
	hour   int
	minute int
	job    Job
	log    zerolog.Logger
	sem    *semaphore.Weighted
	now    func() time.Time
}

// NewDaily parses at as HH:MM.
func NewDaily(at string, job Job, log zerolog.Logger) (*Daily, error) {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return nil, fmt.Errorf("invalid daily time %q: %w", at, err)
	}
	return &Daily{
		hour:   t.Hour(),
		minute: t.Minute(),
		job:    job,
		log:    log,
		sem:    semaphore.NewWeighted(1),
		now:    time.Now,
	}, nil
}

// Next returns the first trigger strictly after the given instant, in its
// location.
func (d *Daily) Next(after time.Time) time.Time {
	y, m, day := after.Date()
	next := time.Date(y, m, day, d.hour, d.minute, 0, 0, after.Location())
	if !next.After(after) {
		next = time.Date(y, m, day+1, d.hour, d.minute, 0, 0, after.Location())
	}
	return next
}

// Start blocks until ctx is cancelled, running the job at every trigger.
func (d *Daily) Start(ctx context.Context) error {
	next := d.Next(d.now())
	d.log.Info().Time("next_run", next).Msg("daily scheduler started")

	timer := time.NewTimer(time.Until(next))
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			if err := d.RunNow(ctx); err != nil {
				if errors.Is(err, ErrBusy) {
					d.log.Warn().Msg("previous run still in progress, trigger skipped")
				} else {
					d.log.Error().Err(err).Msg("scheduled run failed")
				}
			}
			next = d.Next(d.now())
			timer.Reset(time.Until(next))
			d.log.Debug().Time("next_run", next).Msg("next run scheduled")
		case <-ctx.Done():
			d.log.Info().Msg("daily scheduler stopped")
			return nil
		}
	}
}

// RunNow runs the scheduled job immediately unless a run is in progress.
func (d *Daily) RunNow(ctx context.Context) error {
	return d.Do(ctx, d.job)
}

// Do runs job under the guard shared with the scheduled job.
func (d *Daily) Do(ctx context.Context, job Job) error {
	if !d.sem.TryAcquire(1) {
		return ErrBusy
	}
	defer d.sem.Release(1)

	started := d.now()
	d.log.Info().Msg("run started")
	if err := job(ctx); err != nil {
		return err
	}
	d.log.Info().Dur("took", d.now().Sub(started)).Msg("run finished")
	return nil
}
