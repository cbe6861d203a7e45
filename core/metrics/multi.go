package metrics

import "errors"

// MultiSink fans records out to several sinks. Errors are joined so one
// failing sink does not hide the others.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink combines the given sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) RecordMutation(rec MutationRecord) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordMutation(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordApply(rec ApplyRecord) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordApply(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordCapacity(points []CapacityPoint) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordCapacity(points); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
