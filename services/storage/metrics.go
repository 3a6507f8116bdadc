package storage

// Metrics receives storage counters. The monitoring service implements it.
type Metrics interface {
	ObserveSave(engine string, ok bool)
	ObserveDebounce()
	SetDegraded(degraded bool)
	ObserveExternalChange()
}

type noopMetrics struct{}

func (noopMetrics) ObserveSave(string, bool) {}
func (noopMetrics) ObserveDebounce()         {}
func (noopMetrics) SetDegraded(bool)         {}
func (noopMetrics) ObserveExternalChange()   {}
