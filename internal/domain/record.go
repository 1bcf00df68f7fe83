package domain

// Record is one extracted output row: a mapping from output field name to
// value. Records have no identity beyond their field values.
type Record map[string]interface{}

// Metadata columns injected into every record/message row. The _SDC_* names
// follow the Singer data-capture convention used by downstream sinks.
const (
	ColStartDate   = "start_date"
	ColEndDate     = "end_date"
	ColTimeZone    = "time_zone"
	ColExtractedAt = "_SDC_EXTRACTED_AT"
	ColBatchedAt   = "_SDC_BATCHED_AT"
	ColDeletedAt   = "_SDC_DELETED_AT"
)

// MetadataColumns builds the fixed metadata block merged into every
// record/message row of a table run. extractedAt is computed once per run;
// the extraction and batch timestamps are intentionally the same value, and
// the deletion marker is always null.
func MetadataColumns(w TimeWindow, extractedAt string) Record {
	return Record{
		ColStartDate:   w.StartDate,
		ColEndDate:     w.EndDate,
		ColTimeZone:    w.TimeZone,
		ColExtractedAt: extractedAt,
		ColBatchedAt:   extractedAt,
		ColDeletedAt:   nil,
	}
}

// Merge returns a new record containing all fields of r overlaid with all
// fields of other. Neither input is mutated.
func (r Record) Merge(other Record) Record {
	out := make(Record, len(r)+len(other))
	for k, v := range r {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}
