// Package sink delivers resolved schemas and extracted records downstream.
// The extraction core only depends on the Sink interface; serialization and
// delivery are the sink's concern.
package sink

import "sumoflow/internal/domain"

// Sink receives one table's schema followed by its records. WriteState
// carries run bookkeeping for consumers that track it.
type Sink interface {
	WriteSchema(stream string, schema *domain.Schema, keyProperties []string) error
	WriteRecord(stream string, record domain.Record) error
	WriteState(state map[string]interface{}) error
	Close() error
}

// Multi fans every write out to several sinks, stopping at the first error.
type Multi []Sink

// WriteSchema implements Sink.
func (m Multi) WriteSchema(stream string, schema *domain.Schema, keyProperties []string) error {
	for _, s := range m {
		if err := s.WriteSchema(stream, schema, keyProperties); err != nil {
			return err
		}
	}
	return nil
}

// WriteRecord implements Sink.
func (m Multi) WriteRecord(stream string, record domain.Record) error {
	for _, s := range m {
		if err := s.WriteRecord(stream, record); err != nil {
			return err
		}
	}
	return nil
}

// WriteState implements Sink.
func (m Multi) WriteState(state map[string]interface{}) error {
	for _, s := range m {
		if err := s.WriteState(state); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink, returning the first error seen.
func (m Multi) Close() error {
	var firstErr error
	for _, s := range m {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
