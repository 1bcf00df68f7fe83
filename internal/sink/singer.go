package sink

import (
	"encoding/json"
	"io"
	"time"

	"sumoflow/internal/domain"
)

// message is one Singer-protocol line: SCHEMA, RECORD or STATE.
type message struct {
	Type          string                 `json:"type"`
	Stream        string                 `json:"stream,omitempty"`
	Schema        *domain.Schema         `json:"schema,omitempty"`
	KeyProperties []string               `json:"key_properties,omitempty"`
	Record        domain.Record          `json:"record,omitempty"`
	TimeExtracted string                 `json:"time_extracted,omitempty"`
	Value         map[string]interface{} `json:"value,omitempty"`
}

// Singer writes Singer-protocol JSON lines to a writer, one message per
// line. It is the default downstream surface of the extractor.
type Singer struct {
	enc *json.Encoder

	// now stamps time_extracted on records; overridable in tests.
	now func() time.Time
}

// NewSinger creates a Singer sink writing to w.
func NewSinger(w io.Writer) *Singer {
	return &Singer{enc: json.NewEncoder(w), now: time.Now}
}

// WriteSchema emits a SCHEMA message.
func (s *Singer) WriteSchema(stream string, schema *domain.Schema, keyProperties []string) error {
	return s.enc.Encode(message{
		Type:          "SCHEMA",
		Stream:        stream,
		Schema:        schema,
		KeyProperties: keyProperties,
	})
}

// WriteRecord emits a RECORD message.
func (s *Singer) WriteRecord(stream string, record domain.Record) error {
	return s.enc.Encode(message{
		Type:          "RECORD",
		Stream:        stream,
		Record:        record,
		TimeExtracted: s.now().UTC().Format(time.RFC3339),
	})
}

// WriteState emits a STATE message.
func (s *Singer) WriteState(state map[string]interface{}) error {
	return s.enc.Encode(message{Type: "STATE", Value: state})
}

// Close implements Sink. The underlying writer is owned by the caller.
func (s *Singer) Close() error { return nil }
