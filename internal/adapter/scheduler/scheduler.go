// Package scheduler runs the fixed-interval maintenance jobs: overdue
// invoice sweep, expired campaign completion and campaign totals refresh.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"sponsorhub/internal/config/configs"
	"sponsorhub/internal/core/domain"
	"sponsorhub/internal/metrics"
)

// Job is one periodic task. Run reports how many records it touched.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) (int, error)
}

type job struct {
	Job
	running atomic.Bool
}

// Scheduler runs each job on its own ticker. A tick that finds the previous
// run of the same job still in progress is skipped.
type Scheduler struct {
	jobs    []*job
	timeout time.Duration
	logger  *slog.Logger
	wg      sync.WaitGroup
}

// New builds a scheduler. Each run is bounded by timeout.
func New(timeout time.Duration, logger *slog.Logger, jobs ...Job) *Scheduler {
	s := &Scheduler{timeout: timeout, logger: logger.With("component", "scheduler")}
	for _, j := range jobs {
		s.jobs = append(s.jobs, &job{Job: j})
	}
	return s
}

// Run blocks until ctx is done and every in-flight run has returned.
func (s *Scheduler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, j := range s.jobs {
		if j.Interval <= 0 {
			s.logger.Warn("job disabled", "job", j.Name)
			continue
		}
		g.Go(func() error {
			s.loop(ctx, j)
			return nil
		})
	}
	err := g.Wait()
	s.wg.Wait()
	return err
}

func (s *Scheduler) loop(ctx context.Context, j *job) {
	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !j.running.CompareAndSwap(false, true) {
				s.skipped(j)
				continue
			}
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				defer j.running.Store(false)
				s.execute(ctx, j)
			}()
		}
	}
}

// Trigger runs the named job synchronously. It returns false when the job is
// unknown or already running.
func (s *Scheduler) Trigger(ctx context.Context, name string) bool {
	for _, j := range s.jobs {
		if j.Name != name {
			continue
		}
		if !j.running.CompareAndSwap(false, true) {
			s.skipped(j)
			return false
		}
		defer j.running.Store(false)
		s.execute(ctx, j)
		return true
	}
	return false
}

func (s *Scheduler) execute(ctx context.Context, j *job) {
	ctx = domain.WithPrincipal(ctx, domain.SystemPrincipal)
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	n, err := j.Run(ctx)
	if err != nil {
		metrics.RecordJob(j.Name, "error")
		s.logger.Error("job failed", "job", j.Name, "error", err, "duration", time.Since(start))
		return
	}
	metrics.RecordJob(j.Name, "ok")
	if n > 0 {
		s.logger.Info("job finished", "job", j.Name, "affected", n, "duration", time.Since(start))
	}
}

func (s *Scheduler) skipped(j *job) {
	metrics.RecordJob(j.Name, "skipped")
	s.logger.Debug("job still running, tick skipped", "job", j.Name)
}

// Job names.
const (
	JobOverdueSweep   = "invoice_overdue_sweep"
	JobExpireCampaign = "campaign_expiry"
	JobRefreshTotals  = "campaign_totals_refresh"
)

// OverdueSweeper marks invoices past their due date.
type OverdueSweeper interface {
	SweepOverdue(ctx context.Context, now time.Time) (int, error)
}

// CampaignMaintainer completes expired campaigns and refreshes cached
// totals.
type CampaignMaintainer interface {
	CompleteExpired(ctx context.Context, now time.Time) (int, error)
	RefreshAllTotals(ctx context.Context) (int, error)
}

// BillingJobs returns the standard job set. now supplies the clock.
func BillingJobs(cfg configs.Billing, billing OverdueSweeper, campaigns CampaignMaintainer, now func() time.Time) []Job {
	return []Job{
		{
			Name:     JobOverdueSweep,
			Interval: cfg.SweepInterval,
			Run: func(ctx context.Context) (int, error) {
				return billing.SweepOverdue(ctx, now())
			},
		},
		{
			Name:     JobExpireCampaign,
			Interval: cfg.SweepInterval,
			Run: func(ctx context.Context) (int, error) {
				return campaigns.CompleteExpired(ctx, now())
			},
		},
		{
			Name:     JobRefreshTotals,
			Interval: cfg.RefreshInterval,
			Run:      campaigns.RefreshAllTotals,
		},
	}
}
