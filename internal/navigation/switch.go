// Package navigation detects conversation switches across navigation events.
package navigation

import (
	"github.com/jonesrussell/chatscrape/internal/logger"
	"github.com/jonesrussell/chatscrape/internal/target"
)

// SwitchDetector compares normalized addresses across navigation events. A
// change means downstream per-conversation state must be discarded; an
// unchanged normalized form (query-string noise, fragments) produces no
// signal.
type SwitchDetector struct {
	log  logger.Interface
	last string
	seen bool
}

// NewSwitchDetector creates a detector.
func NewSwitchDetector(log logger.Interface) *SwitchDetector {
	return &SwitchDetector{log: log.WithComponent("navigation")}
}

// Observe records a navigation event and reports whether it switched
// conversations. The first observed address never counts as a switch.
func (d *SwitchDetector) Observe(strategy target.Strategy, rawURL string) bool {
	normalized := strategy.NormalizeAddress(rawURL)

	if !d.seen {
		d.seen = true
		d.last = normalized
		return false
	}
	if normalized == d.last {
		return false
	}

	d.log.Info("conversation switch detected", "from", d.last, "to", normalized)
	d.last = normalized
	return true
}

// Current returns the last observed normalized address.
func (d *SwitchDetector) Current() string {
	return d.last
}

// Reset forgets the observed address, so the next navigation event starts a
// fresh comparison baseline.
func (d *SwitchDetector) Reset() {
	d.seen = false
	d.last = ""
}
