// Package target defines the capability contract every supported chat
// application implements, plus the helpers the per-target strategies share.
// Strategies are a closed set of variants selected once per document context
// by address match; nothing dispatches on runtime type.
package target

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/chatscrape/internal/dom"
	"github.com/jonesrussell/chatscrape/internal/domain"
)

// Strategy converts one chat application's rendered document into message
// records. Implementations must be safe to call repeatedly; discovery never
// raises to the caller and degrades to an empty sequence on total failure.
type Strategy interface {
	// Descriptor returns the target's static identity and timing constants.
	Descriptor() domain.TargetDescriptor

	// IsActive reports whether the page address belongs to this target.
	IsActive(pageURL string) bool

	// ResolveContainer returns the best-available content root via an
	// ordered fallback chain. It never fails; the document root is the
	// universal fallback.
	ResolveContainer(snap *dom.Snapshot) *goquery.Selection

	// DiscoverMessages extracts the ordered turn sequence from the snapshot.
	// Failures on one candidate skip that candidate; total failure returns
	// an empty sequence.
	DiscoverMessages(snap *dom.Snapshot) []domain.MessageRecord

	// IsStreaming reports whether an assistant response is still being
	// generated, so the scheduler can postpone acting on the scan.
	IsStreaming(snap *dom.Snapshot) bool

	// NormalizeAddress canonicalizes a navigation address for
	// conversation-switch comparison.
	NormalizeAddress(raw string) string
}
