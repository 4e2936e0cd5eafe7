package metrics

import coremetrics "github.com/medibox-iot/medibox/core/metrics"

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordDispense forwards the event to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordDispense(ev coremetrics.DispenseEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordDispense(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordOutcome forwards the event to all sinks.
func (m *MultiSink) RecordOutcome(ev coremetrics.OutcomeEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordOutcome(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordReconnect forwards the event to all sinks.
func (m *MultiSink) RecordReconnect(ev coremetrics.ReconnectEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordReconnect(ev); err != nil {
			return err
		}
	}
	return nil
}
