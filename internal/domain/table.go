package domain

// QueryType selects which Sumo Logic API surface a table is extracted from.
type QueryType string

// Supported query types.
const (
	QueryTypeRecords  QueryType = "records"  // aggregated search results
	QueryTypeMessages QueryType = "messages" // raw log lines
	QueryTypeMetrics  QueryType = "metrics"  // numeric time series (synchronous API)
)

// Valid reports whether t is one of the supported query types.
func (t QueryType) Valid() bool {
	switch t {
	case QueryTypeRecords, QueryTypeMessages, QueryTypeMetrics:
		return true
	}
	return false
}

// IsSearchJob reports whether t is served by the asynchronous search-job API.
func (t QueryType) IsSearchJob() bool {
	return t == QueryTypeRecords || t == QueryTypeMessages
}

// TimeWindow is the bounded extraction window shared by all queries of a run.
type TimeWindow struct {
	StartDate string // from bound, YYYY-MM-DDTHH:mm:ss
	EndDate   string // to bound, YYYY-MM-DDTHH:mm:ss
	TimeZone  string // IANA zone name for the query, e.g. "UTC"
}

// MetricsOptions holds the optional parameters of a metrics query. Nil fields
// are omitted from the request body entirely; the API treats a present-but-null
// parameter differently from an absent one.
type MetricsOptions struct {
	Quantization *int64  // time bucketing in milliseconds
	Rollup       *string // Avg, Sum, Min, Max, Count or None
	Timeshift    *int64  // signed time-axis offset in milliseconds
}

// TableConfig describes one named query ("table") to extract. Immutable once
// constructed from top-level configuration at startup.
type TableConfig struct {
	TableName       string
	Query           string
	QueryType       QueryType
	Window          TimeWindow
	ByReceiptTime   bool
	AutoParsingMode string
	Metrics         MetricsOptions
	PrimaryKeys     []string // additional key fields merged into the schema's key properties

	// Schema is an optional explicit schema: nil to infer from the live API,
	// otherwise either an inline Schema object or a path to a JSON schema file.
	Schema     *Schema
	SchemaPath string
}

// Validate checks the table configuration before any network call is made.
func (c *TableConfig) Validate() error {
	if c.TableName == "" {
		return ErrConfiguration("table name is required")
	}
	if c.Query == "" {
		return ErrConfiguration("table %q: query is required", c.TableName)
	}
	if !c.QueryType.Valid() {
		return ErrConfiguration("table %q: invalid query_type %q, must be one of %q, %q, %q",
			c.TableName, c.QueryType, QueryTypeRecords, QueryTypeMessages, QueryTypeMetrics)
	}
	return nil
}
