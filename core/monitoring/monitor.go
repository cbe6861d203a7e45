package monitoring

// Monitor reports unexpected errors to an external error tracker.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Flush()
}

// NopMonitor discards everything. Used when no tracker is configured.
type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Flush()                                    {}
