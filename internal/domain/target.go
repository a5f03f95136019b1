package domain

import (
	"errors"
	"time"
)

// TargetDescriptor is the static identity of one supported chat application.
type TargetDescriptor struct {
	// Name is the display name of the target.
	Name string `json:"name"`
	// Hostnames are the network addresses the target is served from. A page
	// belongs to the target when its hostname matches one of these exactly
	// or by substring.
	Hostnames []string `json:"hostnames"`
	// Debounce is how long the scheduler waits after a document change
	// before scanning.
	Debounce time.Duration `json:"debounce"`
	// Settle is how long the scheduler waits after detected streaming
	// activity before re-scanning.
	Settle time.Duration `json:"settle"`
}

// Validate validates the descriptor.
func (d *TargetDescriptor) Validate() error {
	if d.Name == "" {
		return errors.New("name is required")
	}
	if len(d.Hostnames) == 0 {
		return errors.New("at least one hostname is required")
	}
	if d.Debounce <= 0 {
		return errors.New("debounce must be positive")
	}
	if d.Settle <= 0 {
		return errors.New("settle must be positive")
	}
	return nil
}
