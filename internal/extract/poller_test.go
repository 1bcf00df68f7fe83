package extract

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sumoflow/internal/domain"
	"sumoflow/internal/sumologic"
)

// mockAPI implements API with overridable behavior per call.
type mockAPI struct {
	createFn  func(ctx context.Context, req sumologic.SearchJobRequest) (*domain.SearchJob, error)
	statusFn  func(ctx context.Context, job *domain.SearchJob) (domain.JobStatus, error)
	fetchFn   func(ctx context.Context, job *domain.SearchJob, queryType domain.QueryType, limit, offset int) (*sumologic.ResultPage, error)
	metricsFn func(ctx context.Context, query string, window domain.TimeWindow, opts domain.MetricsOptions) (*sumologic.MetricsResponse, error)
}

func (m *mockAPI) CreateSearchJob(ctx context.Context, req sumologic.SearchJobRequest) (*domain.SearchJob, error) {
	if m.createFn == nil {
		panic("unexpected CreateSearchJob")
	}
	return m.createFn(ctx, req)
}

func (m *mockAPI) JobStatus(ctx context.Context, job *domain.SearchJob) (domain.JobStatus, error) {
	if m.statusFn == nil {
		panic("unexpected JobStatus")
	}
	return m.statusFn(ctx, job)
}

func (m *mockAPI) FetchResults(ctx context.Context, job *domain.SearchJob, queryType domain.QueryType, limit, offset int) (*sumologic.ResultPage, error) {
	if m.fetchFn == nil {
		panic("unexpected FetchResults")
	}
	return m.fetchFn(ctx, job, queryType, limit, offset)
}

func (m *mockAPI) MetricsQuery(ctx context.Context, query string, window domain.TimeWindow, opts domain.MetricsOptions) (*sumologic.MetricsResponse, error) {
	if m.metricsFn == nil {
		panic("unexpected MetricsQuery")
	}
	return m.metricsFn(ctx, query, window, opts)
}

// statusSequence returns a statusFn that serves the given states in order,
// holding the last one once exhausted.
func statusSequence(calls *int, states ...domain.JobState) func(ctx context.Context, job *domain.SearchJob) (domain.JobStatus, error) {
	return func(_ context.Context, _ *domain.SearchJob) (domain.JobStatus, error) {
		idx := *calls
		if idx >= len(states) {
			idx = len(states) - 1
		}
		*calls++
		return domain.JobStatus{State: states[idx]}, nil
	}
}

func testPoller(api API) *Poller {
	p := NewPoller(api, slog.New(slog.NewTextHandler(testWriter{}, nil)))
	p.Interval = time.Millisecond
	return p
}

// testWriter discards log output.
type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestPollerWaitUntilDone(t *testing.T) {
	calls := 0
	api := &mockAPI{statusFn: statusSequence(&calls,
		domain.JobStateGathering, domain.JobStateGathering, domain.JobStateDone)}

	status, err := testPoller(api).Wait(context.Background(), &domain.SearchJob{ID: "J"})
	require.NoError(t, err)
	assert.Equal(t, domain.JobStateDone, status.State)
	assert.Equal(t, 3, calls)
}

func TestPollerWaitCancelledIsNotAnError(t *testing.T) {
	calls := 0
	api := &mockAPI{statusFn: statusSequence(&calls,
		domain.JobStateGathering, domain.JobStateGathering, domain.JobStateCancelled)}

	status, err := testPoller(api).Wait(context.Background(), &domain.SearchJob{ID: "J"})
	require.NoError(t, err)
	assert.Equal(t, domain.JobStateCancelled, status.State)
}

func TestPollerWaitStopsPollingAfterTerminalState(t *testing.T) {
	calls := 0
	api := &mockAPI{statusFn: statusSequence(&calls, domain.JobStateDone)}

	_, err := testPoller(api).Wait(context.Background(), &domain.SearchJob{ID: "J"})
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "no polling may happen once a terminal state is seen")
}

func TestPollerWaitPropagatesStatusError(t *testing.T) {
	api := &mockAPI{statusFn: func(_ context.Context, _ *domain.SearchJob) (domain.JobStatus, error) {
		return domain.JobStatus{}, domain.ErrRequest(500, "boom", "GET /search/jobs/J returned 500")
	}}

	_, err := testPoller(api).Wait(context.Background(), &domain.SearchJob{ID: "J"})
	require.Error(t, err)
	assert.IsType(t, &domain.RequestError{}, err)
}

func TestPollerWaitHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	api := &mockAPI{statusFn: func(_ context.Context, _ *domain.SearchJob) (domain.JobStatus, error) {
		calls++
		if calls == 2 {
			cancel()
		}
		return domain.JobStatus{State: domain.JobStateGathering}, nil
	}}

	_, err := testPoller(api).Wait(ctx, &domain.SearchJob{ID: "J"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPollerProbeCapsAtTwoPolls(t *testing.T) {
	calls := 0
	api := &mockAPI{statusFn: statusSequence(&calls,
		domain.JobStateGathering, domain.JobStateGathering, domain.JobStateGathering)}

	status, err := testPoller(api).Probe(context.Background(), &domain.SearchJob{ID: "J"})
	require.NoError(t, err)
	assert.Equal(t, domain.JobStateGathering, status.State, "a gathering job is usable for a probe")
	assert.Equal(t, 2, calls)
}

func TestPollerProbeReturnsEarlyOnTerminal(t *testing.T) {
	calls := 0
	api := &mockAPI{statusFn: statusSequence(&calls, domain.JobStateDone)}

	status, err := testPoller(api).Probe(context.Background(), &domain.SearchJob{ID: "J"})
	require.NoError(t, err)
	assert.Equal(t, domain.JobStateDone, status.State)
	assert.Equal(t, 1, calls)
}
