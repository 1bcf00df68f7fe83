// Package inference derives output schemas for configured tables, either
// from a supplied schema or by sampling the live API with a bounded probe
// query.
package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"sumoflow/internal/domain"
	"sumoflow/internal/extract"
	"sumoflow/internal/sumologic"
)

// probeLimit restricts probe queries to a single sample row.
const probeLimit = 1

// Synthetic key fields always appended for message-type tables. Raw messages
// carry these columns natively, and together they identify a message.
const (
	messageTimeField = "_messagetime"
	messageIDField   = "_messageid"
)

// Inferencer resolves table schemas. Live inference submits a probe search
// job and reads the API's reported field descriptors from a one-row sample.
type Inferencer struct {
	api    extract.API
	poller *extract.Poller
	logger *slog.Logger
}

// New creates an Inferencer. The poller should use the probe-friendly
// interval configured for the run.
func New(api extract.API, poller *extract.Poller, logger *slog.Logger) *Inferencer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Inferencer{api: api, poller: poller, logger: logger}
}

// Resolve returns the output schema for a table via one of three mutually
// exclusive paths: an external schema file, widening of an inline partial
// schema, or live inference against the API.
func (i *Inferencer) Resolve(ctx context.Context, table *domain.TableConfig) (*domain.Schema, error) {
	switch {
	case table.SchemaPath != "":
		i.logger.Info("loading schema from file, skipping discovery", "table", table.TableName, "path", table.SchemaPath)
		return loadSchemaFile(table.SchemaPath)
	case table.Schema != nil:
		i.logger.Info("using configured schema, skipping discovery", "table", table.TableName)
		return table.Schema.Widen(), nil
	default:
		i.logger.Info("no schema configured, inferring from API", "table", table.TableName)
		return i.infer(ctx, table)
	}
}

// loadSchemaFile reads a full schema from a JSON file and uses it verbatim.
func loadSchemaFile(path string) (*domain.Schema, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, domain.ErrConfiguration("read schema file %q: %v", path, err)
	}
	var schema domain.Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, domain.ErrConfiguration("parse schema file %q: %v", path, err)
	}
	return &schema, nil
}

func (i *Inferencer) infer(ctx context.Context, table *domain.TableConfig) (*domain.Schema, error) {
	if table.QueryType == domain.QueryTypeMetrics {
		return metricsSchema(), nil
	}
	fields, err := i.probeFields(ctx, table)
	if err != nil {
		return nil, err
	}
	return buildSearchSchema(table.QueryType, fields), nil
}

// probeFields runs the bounded probe query and returns the API's reported
// field descriptors. The probe uses the two-poll policy: a job still
// gathering results is sampled as-is.
func (i *Inferencer) probeFields(ctx context.Context, table *domain.TableConfig) ([]sumologic.FieldDescriptor, error) {
	job, err := i.api.CreateSearchJob(ctx, sumologic.SearchJobRequest{
		Query:           table.Query + " | limit 1",
		From:            table.Window.StartDate,
		To:              table.Window.EndDate,
		TimeZone:        table.Window.TimeZone,
		ByReceiptTime:   table.ByReceiptTime,
		AutoParsingMode: table.AutoParsingMode,
	})
	if err != nil {
		return nil, fmt.Errorf("submit probe query: %w", err)
	}
	job.QueryType = table.QueryType

	status, err := i.poller.Probe(ctx, job)
	if err != nil {
		return nil, err
	}
	if status.State != domain.JobStateDone && status.State != domain.JobStateGathering {
		i.logger.Warn("probe job not sampleable, schema will carry metadata columns only",
			"table", table.TableName, "state", status.State)
		return nil, nil
	}

	page, err := i.api.FetchResults(ctx, job, table.QueryType, probeLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("fetch probe sample: %w", err)
	}
	return page.Fields, nil
}

// buildSearchSchema maps reported field descriptors onto an output schema
// for a records or messages table.
//
// Type mapping: int and long widen to integer, double to number; everything
// else stays at the nullable-string base. The API's boolean type tag is
// deliberately not mapped because the upstream misreports boolean values;
// keeping the string fallback is a known correctness tradeoff, not an
// oversight.
func buildSearchSchema(queryType domain.QueryType, fields []sumologic.FieldDescriptor) *domain.Schema {
	b := domain.NewSchemaBuilder()
	for _, f := range fields {
		b.AddField(f.Name)
		switch f.FieldType {
		case "int", "long":
			b.AddType(f.Name, domain.TypeInteger)
		case "double":
			b.AddType(f.Name, domain.TypeNumber)
		}
		if f.KeyField {
			b.AddKey(f.Name)
		}
	}

	// Window-bound metadata columns are part of both the properties and the
	// key-property list for every records/messages table.
	b.AddField(domain.ColStartDate).AddField(domain.ColEndDate).AddField(domain.ColTimeZone)
	b.AddKey(domain.ColStartDate, domain.ColEndDate, domain.ColTimeZone)
	if queryType == domain.QueryTypeMessages {
		b.AddKey(messageTimeField, messageIDField)
	}
	return b.Build()
}

// metricsSchema is the fixed schema for metrics tables; it does not depend
// on a probe.
func metricsSchema() *domain.Schema {
	b := domain.NewSchemaBuilder()
	b.SetTypes("metricDefinition", domain.TypeObject, domain.TypeNull)
	b.SetTypes("points", domain.TypeObject, domain.TypeNull)
	b.AddKey("metricDefinition", "points")
	return b.Build()
}
