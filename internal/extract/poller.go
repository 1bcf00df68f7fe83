package extract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sumoflow/internal/domain"
)

// DefaultPollInterval is the fixed delay between status polls. There is no
// backoff growth; the delay is constant.
const DefaultPollInterval = 5 * time.Second

// probeMaxPolls caps the schema-probe polling policy: a one-row sample does
// not need the job to finish gathering.
const probeMaxPolls = 2

// Poller drives a submitted search job toward a terminal state by
// fixed-interval status polling.
type Poller struct {
	api    API
	logger *slog.Logger

	// Interval between polls. Exposed so tests can shrink it.
	Interval time.Duration
}

// NewPoller creates a poller with the default 5 second interval.
func NewPoller(api API, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{api: api, logger: logger, Interval: DefaultPollInterval}
}

// Wait polls the job without an iteration bound until it reaches a terminal
// state. A CANCELLED job is returned without error; the caller decides what
// a cancellation means.
func (p *Poller) Wait(ctx context.Context, job *domain.SearchJob) (domain.JobStatus, error) {
	for {
		status, err := p.api.JobStatus(ctx, job)
		if err != nil {
			return domain.JobStatus{}, err
		}
		if status.State.Terminal() {
			p.logger.Info("search job finished", "job_id", job.ID, "state", status.State)
			return status, nil
		}
		p.logger.Debug("search job still running", "job_id", job.ID, "state", status.State,
			"records", status.RecordCount, "messages", status.MessageCount)
		if err := p.sleep(ctx); err != nil {
			return domain.JobStatus{}, err
		}
	}
}

// Probe polls at most twice and then returns whatever status is current: a
// still-gathering job is usable enough to sample one row for schema
// inference. Wide or slow queries may therefore report an incomplete field
// list; that is an accepted approximation.
func (p *Poller) Probe(ctx context.Context, job *domain.SearchJob) (domain.JobStatus, error) {
	for attempt := 1; ; attempt++ {
		status, err := p.api.JobStatus(ctx, job)
		if err != nil {
			return domain.JobStatus{}, err
		}
		if status.State.Terminal() || attempt >= probeMaxPolls {
			return status, nil
		}
		if err := p.sleep(ctx); err != nil {
			return domain.JobStatus{}, err
		}
	}
}

func (p *Poller) sleep(ctx context.Context) error {
	timer := time.NewTimer(p.Interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("wait for search job: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
