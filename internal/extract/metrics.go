package extract

import (
	"context"
	"encoding/json"

	"sumoflow/internal/domain"
)

// runMetricsQuery issues the single synchronous metrics call for a table and
// unpacks its time-series payload. There is no polling on this path.
func runMetricsQuery(ctx context.Context, api API, table *domain.TableConfig) ([]domain.Record, error) {
	resp, err := api.MetricsQuery(ctx, table.Query, table.Window, table.Metrics)
	if err != nil {
		return nil, err
	}
	if len(resp.Errors.Errors) > 0 {
		payload, _ := json.Marshal(resp.Errors)
		return nil, domain.ErrQuery(string(payload), "metrics query for table %q failed", table.TableName)
	}
	if len(resp.QueryResult) == 0 {
		return nil, nil
	}
	return resp.QueryResult[0].TimeSeriesList.TimeSeries, nil
}
