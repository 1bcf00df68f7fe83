package extract

import (
	"context"
	"log/slog"

	"sumoflow/internal/domain"
)

// DefaultPageSize is the fixed page size used when paginating search-job
// results.
const DefaultPageSize = 10000

// RecordStream is a lazy, finite, non-restartable sequence of output
// records, iterated with the database/sql Rows idiom:
//
//	for rs.Next() {
//	    rec := rs.Record()
//	    ...
//	}
//	if err := rs.Err(); err != nil { ... }
//
// Consumers must drain it or abandon it; re-extracting a table submits a
// fresh search job rather than resuming.
type RecordStream struct {
	ctx       context.Context
	api       API
	logger    *slog.Logger
	job       *domain.SearchJob // nil for slice-backed streams
	queryType domain.QueryType
	metadata  domain.Record
	pageSize  int
	total     int
	offset    int

	buf    []domain.Record
	bufIdx int
	cur    domain.Record
	err    error
	done   bool
}

// newPagedStream creates a stream that paginates a completed search job's
// results. total is the count reported by the job's final status.
func newPagedStream(ctx context.Context, api API, logger *slog.Logger, job *domain.SearchJob, queryType domain.QueryType, total int, metadata domain.Record) *RecordStream {
	return &RecordStream{
		ctx:       ctx,
		api:       api,
		logger:    logger,
		job:       job,
		queryType: queryType,
		metadata:  metadata,
		pageSize:  DefaultPageSize,
		total:     total,
	}
}

// newSliceStream creates a stream over an already-materialized record slice.
// Used for metrics results and for cancelled jobs (zero records).
func newSliceStream(records []domain.Record) *RecordStream {
	return &RecordStream{buf: records}
}

// Next advances to the next record, fetching further result pages as needed.
// It returns false when the stream is exhausted or an error occurred; Err
// distinguishes the two.
func (s *RecordStream) Next() bool {
	if s.err != nil || s.done && s.bufIdx >= len(s.buf) {
		return false
	}
	for s.bufIdx >= len(s.buf) {
		if !s.fetchPage() {
			return false
		}
	}
	s.cur = s.buf[s.bufIdx]
	s.bufIdx++
	return true
}

// Record returns the current record. Valid only after a true Next.
func (s *RecordStream) Record() domain.Record { return s.cur }

// Err returns the first error encountered while streaming, if any.
func (s *RecordStream) Err() error { return s.err }

// fetchPage pulls the next page of results into the buffer. It reports
// whether any rows were buffered.
func (s *RecordStream) fetchPage() bool {
	if s.job == nil || s.offset >= s.total {
		s.done = true
		return false
	}

	page, err := s.api.FetchResults(s.ctx, s.job, s.queryType, s.pageSize, s.offset)
	if err != nil {
		s.err = err
		return false
	}
	if len(page.Rows) == 0 {
		// The reported total and the actual rows disagree. Stop here rather
		// than loop forever against the mismatch.
		s.logger.Warn("results page empty before reported total reached",
			"job_id", s.job.ID, "offset", s.offset, "total", s.total)
		s.done = true
		return false
	}

	s.buf = make([]domain.Record, 0, len(page.Rows))
	for _, row := range page.Rows {
		s.buf = append(s.buf, row.Merge(s.metadata))
	}
	s.bufIdx = 0
	s.offset += len(page.Rows)
	s.logger.Debug("fetched results page", "job_id", s.job.ID,
		"rows", len(page.Rows), "offset", s.offset, "total", s.total)
	return true
}
