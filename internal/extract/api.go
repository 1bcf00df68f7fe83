// Package extract drives table extraction: polling submitted search jobs to
// completion, paginating their results into shaped output records, and the
// synchronous path for metrics queries.
package extract

import (
	"context"

	"sumoflow/internal/domain"
	"sumoflow/internal/sumologic"
)

// API is the slice of the Sumo Logic client the extraction engine depends
// on. Implemented by *sumologic.Client.
type API interface {
	CreateSearchJob(ctx context.Context, req sumologic.SearchJobRequest) (*domain.SearchJob, error)
	JobStatus(ctx context.Context, job *domain.SearchJob) (domain.JobStatus, error)
	FetchResults(ctx context.Context, job *domain.SearchJob, queryType domain.QueryType, limit, offset int) (*sumologic.ResultPage, error)
	MetricsQuery(ctx context.Context, query string, window domain.TimeWindow, opts domain.MetricsOptions) (*sumologic.MetricsResponse, error)
}

// SchemaResolver resolves a table's output schema, whether supplied in
// configuration or inferred from the live API. Implemented by
// inference.Inferencer.
type SchemaResolver interface {
	Resolve(ctx context.Context, table *domain.TableConfig) (*domain.Schema, error)
}
