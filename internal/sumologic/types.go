package sumologic

import (
	"encoding/json"

	"sumoflow/internal/domain"
)

// SearchJobRequest is the body of POST /v1/search/jobs.
type SearchJobRequest struct {
	Query           string `json:"query"`
	From            string `json:"from"`
	To              string `json:"to"`
	TimeZone        string `json:"timeZone"`
	ByReceiptTime   bool   `json:"byReceiptTime"`
	AutoParsingMode string `json:"autoParsingMode"`
}

type searchJobResponse struct {
	ID string `json:"id"`
}

// jobStatusResponse mirrors GET /v1/search/jobs/{id}. The histogram buckets
// are decoded and discarded; only state and counts matter to the extractor.
type jobStatusResponse struct {
	State            string          `json:"state"`
	RecordCount      int             `json:"recordCount"`
	MessageCount     int             `json:"messageCount"`
	PendingErrors    []string        `json:"pendingErrors"`
	HistogramBuckets json.RawMessage `json:"histogramBuckets"`
}

// FieldDescriptor is one entry of the `fields` array on a results page: the
// API's reported name, type tag and key marker for a result column. Basis
// for schema inference.
type FieldDescriptor struct {
	Name      string `json:"name"`
	FieldType string `json:"fieldType"`
	KeyField  bool   `json:"keyField"`
}

// resultRow wraps one result entry; the row's field values sit under "map".
type resultRow struct {
	Map map[string]interface{} `json:"map"`
}

// resultPageResponse mirrors GET /v1/search/jobs/{id}/{records|messages}.
// Exactly one of Records/Messages is populated depending on the sub-resource.
type resultPageResponse struct {
	Fields   []FieldDescriptor `json:"fields"`
	Records  []resultRow       `json:"records"`
	Messages []resultRow       `json:"messages"`
}

// ResultPage is one page of search-job results, normalized to flat row maps.
// Transient: consumed immediately into output records.
type ResultPage struct {
	Fields []FieldDescriptor
	Rows   []domain.Record
}

// metricsQueryRow is a single named query inside a metrics request. The
// optional parameters are pointers with omitempty on purpose: the API treats
// a present-but-null parameter differently from an absent one, so unset
// options must not appear in the body at all.
type metricsQueryRow struct {
	RowID        string  `json:"rowId"`
	Query        string  `json:"query"`
	Quantization *int64  `json:"quantization,omitempty"`
	Rollup       *string `json:"rollup,omitempty"`
	Timeshift    *int64  `json:"timeshift,omitempty"`
}

type timeRangeBoundary struct {
	Type        string `json:"type"`
	ISO8601Time string `json:"iso8601Time"`
}

type timeRange struct {
	Type string            `json:"type"`
	From timeRangeBoundary `json:"from"`
	To   timeRangeBoundary `json:"to"`
}

type metricsQueryRequest struct {
	Queries   []metricsQueryRow `json:"queries"`
	TimeRange timeRange         `json:"timeRange"`
}

// MetricsError is one entry of the metrics response error list.
type MetricsError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MetricsErrors is the error envelope of a metrics response.
type MetricsErrors struct {
	ID     string         `json:"id"`
	Errors []MetricsError `json:"errors"`
}

// TimeSeriesList holds the time series entries of one metrics query result.
type TimeSeriesList struct {
	TimeSeries []domain.Record `json:"timeSeries"`
}

// MetricsQueryResult is one per-row result of a metrics query.
type MetricsQueryResult struct {
	RowID          string         `json:"rowId"`
	TimeSeriesList TimeSeriesList `json:"timeSeriesList"`
}

// MetricsResponse mirrors POST /v1/metricsQueries.
type MetricsResponse struct {
	Errors      MetricsErrors        `json:"errors"`
	QueryResult []MetricsQueryResult `json:"queryResult"`
}
