package signal

import "time"

// Metrics receives relay lifecycle observations. The monitoring package
// provides the Prometheus-backed implementation; NopMetrics keeps the relay
// usable without one.
type Metrics interface {
	ConnectionOpened()
	ConnectionClosed()
	CallInitiated()
	CallAccepted(ringDuration time.Duration)
	CallEnded(reason string)
	MessageRelayed()
	SignalForwarded(eventType string)
}

type NopMetrics struct{}

func (NopMetrics) ConnectionOpened()            {}
func (NopMetrics) ConnectionClosed()            {}
func (NopMetrics) CallInitiated()               {}
func (NopMetrics) CallAccepted(time.Duration)   {}
func (NopMetrics) CallEnded(string)             {}
func (NopMetrics) MessageRelayed()              {}
func (NopMetrics) SignalForwarded(string)       {}
