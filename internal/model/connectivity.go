package model

import "time"

// ConnectivityStatus is the last known reachability of the rendering service.
type ConnectivityStatus struct {
	// Online is true when the last probe got a healthy response.
	Online bool

	// LastCheck is when the last probe finished. Zero means never.
	LastCheck time.Time

	// LastError describes why the last probe failed. Empty when online.
	LastError string

	// Checking is true while a probe is in flight.
	Checking bool
}

// Checked reports whether at least one probe has completed.
func (s ConnectivityStatus) Checked() bool {
	return !s.LastCheck.IsZero()
}
