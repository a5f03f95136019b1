package scheduler

import (
	"sync"

	"github.com/jonesrussell/chatscrape/internal/dom"
)

// SnapshotHolder is the standard Provider: event sources deposit the latest
// rendered-document capture, the scheduler reads it at scan time.
type SnapshotHolder struct {
	mu   sync.RWMutex
	snap *dom.Snapshot
}

// NewSnapshotHolder creates an empty holder.
func NewSnapshotHolder() *SnapshotHolder {
	return &SnapshotHolder{}
}

// Set replaces the held snapshot.
func (h *SnapshotHolder) Set(snap *dom.Snapshot) {
	h.mu.Lock()
	h.snap = snap
	h.mu.Unlock()
}

// Current returns the held snapshot, or nil when none has arrived yet.
func (h *SnapshotHolder) Current() *dom.Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snap
}
