// Package pipeline drives one extraction pass: active strategy in, ordered
// record batch out. The pipeline owns no cross-call state; every invocation
// is a fresh derivation from the current document content.
package pipeline

import (
	"github.com/jonesrussell/chatscrape/internal/dom"
	"github.com/jonesrussell/chatscrape/internal/domain"
	"github.com/jonesrussell/chatscrape/internal/logger"
	"github.com/jonesrussell/chatscrape/internal/target"
)

// Pipeline is the target-agnostic extraction driver.
type Pipeline struct {
	log logger.Interface
}

// New creates a pipeline.
func New(log logger.Interface) *Pipeline {
	return &Pipeline{log: log.WithComponent("pipeline")}
}

// Run extracts a scan batch from the snapshot using the active strategy.
// The returned sequence is already ordered and deduplicated by the strategy;
// the pipeline passes it through unchanged.
func (p *Pipeline) Run(strategy target.Strategy, snap *dom.Snapshot) domain.ScanBatch {
	records := strategy.DiscoverMessages(snap)

	desc := strategy.Descriptor()
	batch := domain.NewScanBatch(
		desc.Name,
		strategy.NormalizeAddress(snap.URL),
		records,
		snap.CapturedAt,
	)

	p.log.Debug("scan complete",
		"target", desc.Name,
		"records", len(records),
		"conversation", batch.ConversationKey,
	)
	return batch
}
