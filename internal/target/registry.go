package target

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/chatscrape/internal/dom"
	"github.com/jonesrussell/chatscrape/internal/domain"
	"github.com/jonesrussell/chatscrape/internal/logger"
)

// Select returns the strategy whose descriptor matches the page address, or
// nil when no target matches. With no active target the pipeline is inert.
func Select(pageURL string, strategies []Strategy) Strategy {
	for _, s := range strategies {
		if s.IsActive(pageURL) {
			return s
		}
	}
	return nil
}

// Guarded wraps a strategy so a whole-strategy failure inside discovery or
// streaming detection degrades to "no messages found" instead of reaching
// the scheduler.
func Guarded(log logger.Interface, s Strategy) Strategy {
	return &guarded{log: log.WithComponent("target." + s.Descriptor().Name), inner: s}
}

type guarded struct {
	log   logger.Interface
	inner Strategy
}

func (g *guarded) Descriptor() domain.TargetDescriptor {
	return g.inner.Descriptor()
}

func (g *guarded) IsActive(pageURL string) bool {
	return g.inner.IsActive(pageURL)
}

func (g *guarded) ResolveContainer(snap *dom.Snapshot) *goquery.Selection {
	return g.inner.ResolveContainer(snap)
}

func (g *guarded) DiscoverMessages(snap *dom.Snapshot) (records []domain.MessageRecord) {
	defer func() {
		if r := recover(); r != nil {
			g.log.Error("discovery failed, returning empty sequence", "panic", r)
			records = nil
		}
	}()
	return g.inner.DiscoverMessages(snap)
}

func (g *guarded) IsStreaming(snap *dom.Snapshot) (streaming bool) {
	defer func() {
		if r := recover(); r != nil {
			g.log.Error("streaming detection failed", "panic", r)
			streaming = false
		}
	}()
	return g.inner.IsStreaming(snap)
}

func (g *guarded) NormalizeAddress(raw string) string {
	return g.inner.NormalizeAddress(raw)
}
