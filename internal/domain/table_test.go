package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTable() *TableConfig {
	return &TableConfig{
		TableName: "errors",
		Query:     `_sourceCategory=prod | count by _sourceHost`,
		QueryType: QueryTypeRecords,
		Window:    TimeWindow{StartDate: "2026-08-29T00:00:00", EndDate: "2026-08-30T00:00:00", TimeZone: "UTC"},
	}
}

func TestTableConfigValidate(t *testing.T) {
	require.NoError(t, validTable().Validate())

	missingName := validTable()
	missingName.TableName = ""
	assert.IsType(t, &ConfigurationError{}, missingName.Validate())

	missingQuery := validTable()
	missingQuery.Query = ""
	assert.IsType(t, &ConfigurationError{}, missingQuery.Validate())

	badType := validTable()
	badType.QueryType = "histogram"
	err := badType.Validate()
	require.Error(t, err)
	assert.IsType(t, &ConfigurationError{}, err)
	assert.Contains(t, err.Error(), "histogram")
}

func TestQueryTypeValid(t *testing.T) {
	assert.True(t, QueryTypeRecords.Valid())
	assert.True(t, QueryTypeMessages.Valid())
	assert.True(t, QueryTypeMetrics.Valid())
	assert.False(t, QueryType("").Valid())
	assert.False(t, QueryType("logs").Valid())
}

func TestQueryTypeIsSearchJob(t *testing.T) {
	assert.True(t, QueryTypeRecords.IsSearchJob())
	assert.True(t, QueryTypeMessages.IsSearchJob())
	assert.False(t, QueryTypeMetrics.IsSearchJob())
}

func TestJobStateTerminal(t *testing.T) {
	assert.True(t, JobStateDone.Terminal())
	assert.True(t, JobStateCancelled.Terminal())
	assert.False(t, JobStateGathering.Terminal())
	assert.False(t, JobStateNotStarted.Terminal())
	assert.False(t, JobStatePaused.Terminal())
}

func TestJobStatusTotal(t *testing.T) {
	status := JobStatus{RecordCount: 7, MessageCount: 42}
	assert.Equal(t, 7, status.Total(QueryTypeRecords))
	assert.Equal(t, 42, status.Total(QueryTypeMessages))
}

func TestMetadataColumns(t *testing.T) {
	w := TimeWindow{StartDate: "2026-08-29T00:00:00", EndDate: "2026-08-30T00:00:00", TimeZone: "UTC"}
	meta := MetadataColumns(w, "2026-08-30 12:00:00.000000")

	assert.Equal(t, "2026-08-29T00:00:00", meta[ColStartDate])
	assert.Equal(t, "2026-08-30T00:00:00", meta[ColEndDate])
	assert.Equal(t, "UTC", meta[ColTimeZone])
	assert.Equal(t, meta[ColExtractedAt], meta[ColBatchedAt])
	require.Contains(t, meta, ColDeletedAt)
	assert.Nil(t, meta[ColDeletedAt])
}

func TestRecordMerge(t *testing.T) {
	base := Record{"a": 1, "b": "x"}
	merged := base.Merge(Record{"b": "y", "c": true})

	assert.Equal(t, Record{"a": 1, "b": "y", "c": true}, merged)
	assert.Equal(t, Record{"a": 1, "b": "x"}, base)
}
