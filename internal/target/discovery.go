package target

import (
	"sort"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/chatscrape/internal/dom"
	"github.com/jonesrussell/chatscrape/internal/domain"
	"github.com/jonesrussell/chatscrape/internal/logger"
)

// rejectSubstrings marks non-message elements by identifier/class substring:
// input affordances, controls, and pickers that selector drift can sweep
// into a candidate set.
var rejectSubstrings = []string{
	"composer",
	"prompt-textarea",
	"input-area",
	"toolbar",
	"language-picker",
	"model-picker",
	"sidebar",
	"sidenav",
	"upload",
	"attachment",
}

// Candidate is one message-bearing element found by a strategy's matchers,
// before ordering and deduplication.
type Candidate struct {
	Sel  *goquery.Selection
	Role domain.Role
	Text string
}

// Reject reports whether the element is a known non-message element.
func Reject(sel *goquery.Selection) bool {
	return dom.HasClassSubstring(sel, rejectSubstrings...)
}

// Finalize applies the binding ordering contract to a candidate set: sort by
// actual document position (discovery order is untrusted), drop duplicates
// and empty content, and re-assign order 0..N-1 after the sort.
func Finalize(snap *dom.Snapshot, candidates []Candidate, capturedAt time.Time) []domain.MessageRecord {
	kept := make([]Candidate, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if c.Sel == nil || c.Sel.Length() == 0 {
			continue
		}
		if !c.Role.Valid() || c.Text == "" {
			continue
		}
		key := string(c.Role) + "\x00" + c.Text
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, c)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return snap.Position(kept[i].Sel.Get(0)) < snap.Position(kept[j].Sel.Get(0))
	})

	records := make([]domain.MessageRecord, 0, len(kept))
	for i, c := range kept {
		records = append(records, domain.NewMessageRecord(
			c.Role, i, c.Text, dom.AnchorFor(c.Sel), capturedAt,
		))
	}
	return records
}

// EachSafe iterates a selection, recovering a failure on one element so the
// scan continues with the rest.
func EachSafe(log logger.Interface, sel *goquery.Selection, fn func(i int, s *goquery.Selection)) {
	sel.Each(func(i int, s *goquery.Selection) {
		defer func() {
			if r := recover(); r != nil {
				log.Warn("skipping candidate element", "index", i, "panic", r)
			}
		}()
		fn(i, s)
	})
}

// FirstNonEmpty resolves a container via an ordered selector chain, falling
// back to the document root when nothing matches.
func FirstNonEmpty(snap *dom.Snapshot, selectors ...string) *goquery.Selection {
	for _, s := range selectors {
		if s == "" {
			continue
		}
		found := snap.Doc.Find(s).First()
		if found.Length() > 0 {
			return found
		}
	}
	return snap.Root()
}
