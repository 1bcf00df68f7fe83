package extract

import (
	"context"
	"log/slog"
	"time"

	"sumoflow/internal/domain"
	"sumoflow/internal/sumologic"
)

// extractedAtLayout is the timestamp format stamped into the _SDC_* metadata
// columns.
const extractedAtLayout = "2006-01-02 15:04:05.000000"

// Stream is the per-table coordinator: it resolves the table's output
// schema, validates the query type, and exposes a single lazy record
// sequence that dispatches to the search-job or metrics extraction path.
type Stream struct {
	api      API
	poller   *Poller
	resolver SchemaResolver
	table    *domain.TableConfig
	logger   *slog.Logger

	schema *domain.Schema

	// now stamps the extraction timestamp; overridable in tests.
	now func() time.Time
}

// NewStream creates the extraction stream for one table.
func NewStream(api API, poller *Poller, resolver SchemaResolver, table *domain.TableConfig, logger *slog.Logger) *Stream {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stream{
		api:      api,
		poller:   poller,
		resolver: resolver,
		table:    table,
		logger:   logger.With("table", table.TableName),
		now:      time.Now,
	}
}

// Table returns the stream's table configuration.
func (s *Stream) Table() *domain.TableConfig { return s.table }

// ResolveSchema validates the table and resolves its output schema, inferred
// from the live API unless the configuration supplies one. The result is
// computed once and cached for the life of the stream.
func (s *Stream) ResolveSchema(ctx context.Context) (*domain.Schema, error) {
	if s.schema != nil {
		return s.schema, nil
	}
	if err := s.table.Validate(); err != nil {
		return nil, err
	}
	schema, err := s.resolver.Resolve(ctx, s.table)
	if err != nil {
		return nil, err
	}
	s.schema = schema
	return schema, nil
}

// KeyProperties returns the stream's key fields: the resolved schema's key
// properties plus any additional primary keys named in configuration.
func (s *Stream) KeyProperties(ctx context.Context) ([]string, error) {
	schema, err := s.ResolveSchema(ctx)
	if err != nil {
		return nil, err
	}
	keys := append([]string(nil), schema.KeyProperties...)
	for _, k := range s.table.PrimaryKeys {
		if !containsKey(keys, k) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// Records starts extraction and returns the table's lazy record sequence.
// For records/messages tables this submits a search job and polls it to a
// terminal state before the first page is fetched; a CANCELLED job yields an
// empty stream without error. For metrics tables the query runs
// synchronously.
func (s *Stream) Records(ctx context.Context) (*RecordStream, error) {
	if err := s.table.Validate(); err != nil {
		return nil, err
	}

	if s.table.QueryType == domain.QueryTypeMetrics {
		records, err := runMetricsQuery(ctx, s.api, s.table)
		if err != nil {
			return nil, err
		}
		return newSliceStream(records), nil
	}

	job, err := s.api.CreateSearchJob(ctx, sumologic.SearchJobRequest{
		Query:           s.table.Query,
		From:            s.table.Window.StartDate,
		To:              s.table.Window.EndDate,
		TimeZone:        s.table.Window.TimeZone,
		ByReceiptTime:   s.table.ByReceiptTime,
		AutoParsingMode: s.table.AutoParsingMode,
	})
	if err != nil {
		return nil, err
	}
	job.QueryType = s.table.QueryType
	s.logger.Info("submitted search job", "job_id", job.ID)

	status, err := s.poller.Wait(ctx, job)
	if err != nil {
		return nil, err
	}
	if status.State == domain.JobStateCancelled {
		s.logger.Info("search job cancelled, yielding no records", "job_id", job.ID)
		return newSliceStream(nil), nil
	}

	extractedAt := s.now().UTC().Format(extractedAtLayout)
	metadata := domain.MetadataColumns(s.table.Window, extractedAt)
	total := status.Total(s.table.QueryType)
	s.logger.Info("search job done", "job_id", job.ID, "total", total)
	return newPagedStream(ctx, s.api, s.logger, job, s.table.QueryType, total, metadata), nil
}

func containsKey(keys []string, k string) bool {
	for _, v := range keys {
		if v == k {
			return true
		}
	}
	return false
}
