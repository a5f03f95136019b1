// Package gemini implements the extraction strategy for Gemini. Gemini does
// not delimit assistant turns in its rendered document, so each user message
// is paired with its response by structural ascent and, failing that, by
// vertical-position inference.
package gemini

import (
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/chatscrape/internal/dom"
	"github.com/jonesrussell/chatscrape/internal/domain"
	"github.com/jonesrussell/chatscrape/internal/logger"
	"github.com/jonesrussell/chatscrape/internal/target"
)

// Timing constants for the scan scheduler. Gemini re-renders aggressively
// while streaming, so it gets the longest debounce and settle of the four
// targets.
const (
	debounce = 1000 * time.Millisecond
	settle   = 3000 * time.Millisecond
)

// userNodeSelectors locate user messages directly; these are the only turns
// Gemini delimits.
var userNodeSelectors = []string{
	"user-query",
	"[class*='user-query']",
	"[class*='query-content']",
}

// userTextSelectors extract the text of a user message.
var userTextSelectors = []string{
	".query-text",
	"[class*='query-text']",
	"[class*='user-query-bubble']",
}

// assistantSignatureSelectors identify response content, in priority order.
var assistantSignatureSelectors = []string{
	"model-response",
	"message-content",
	"[class*='model-response']",
	"[class*='response-content']",
	"[class*='markdown']",
}

// userClassSignatures mark elements that belong to the user side and must
// never be classified as response blocks.
var userClassSignatures = []string{"user", "query", "human"}

// streamingSelectors signal an in-progress response.
var streamingSelectors = []string{
	"[class*='streaming']",
	"[class*='generating']",
	".blinking-cursor",
	"model-response [class*='loading']",
	"blockquote[class*='thinking']",
}

// containerChain is the ordered container fallback: specific scroller,
// loosened match, generic landmark. The document root is the terminal
// fallback applied by the shared resolver.
var containerChain = []string{
	"chat-window infinite-scroller",
	"infinite-scroller",
	"[class*='chat-container']",
	"main",
}

// Strategy extracts conversations from Gemini snapshots.
type Strategy struct {
	log        logger.Interface
	desc       domain.TargetDescriptor
	heuristics target.Heuristics
}

// New creates the Gemini strategy.
func New(log logger.Interface, heuristics target.Heuristics) *Strategy {
	return &Strategy{
		log: log,
		desc: domain.TargetDescriptor{
			Name:      "gemini",
			Hostnames: []string{"gemini.google.com"},
			Debounce:  debounce,
			Settle:    settle,
		},
		heuristics: heuristics,
	}
}

// Descriptor returns the target's static identity.
func (s *Strategy) Descriptor() domain.TargetDescriptor {
	return s.desc
}

// IsActive reports whether the page address belongs to Gemini.
func (s *Strategy) IsActive(pageURL string) bool {
	return target.HostMatches(pageURL, s.desc.Hostnames)
}

// ResolveContainer returns the conversation scroller, falling back to the
// document root.
func (s *Strategy) ResolveContainer(snap *dom.Snapshot) *goquery.Selection {
	return target.FirstNonEmpty(snap, containerChain...)
}

// IsStreaming reports whether a response is still rendering.
func (s *Strategy) IsStreaming(snap *dom.Snapshot) bool {
	for _, sel := range streamingSelectors {
		if snap.Doc.Find(sel).Length() > 0 {
			return true
		}
	}
	return false
}

// NormalizeAddress canonicalizes a Gemini address to its conversation path.
// Gemini routes conversations under /app/<id>; the query string is noise.
func (s *Strategy) NormalizeAddress(raw string) string {
	return target.ConversationPath(raw, "/app/")
}

// DiscoverMessages finds user turns directly, reconstructs each paired
// response by inference, and returns the ordered record sequence.
func (s *Strategy) DiscoverMessages(snap *dom.Snapshot) []domain.MessageRecord {
	userNodes := s.findUserNodes(snap)
	if len(userNodes) == 0 {
		return nil
	}

	capturedAt := snap.CapturedAt
	candidates := make([]target.Candidate, 0, 2*len(userNodes))

	for i, user := range userNodes {
		text := dom.FirstText(user.sel, userTextSelectors...)
		if text == "" {
			text = dom.StripText(user.sel)
		}
		if text != "" {
			candidates = append(candidates, target.Candidate{
				Sel:  user.sel,
				Role: domain.RoleUser,
				Text: text,
			})
		}

		var next *userNode
		if i+1 < len(userNodes) {
			next = userNodes[i+1]
		}
		response := s.inferResponse(snap, user, next, userNodes)
		if response.text == "" {
			continue
		}
		candidates = append(candidates, target.Candidate{
			Sel:  response.sel,
			Role: domain.RoleAssistant,
			Text: response.text,
		})
	}

	return target.Finalize(snap, candidates, capturedAt)
}

// userNode is one directly discovered user message.
type userNode struct {
	sel *goquery.Selection
}

// findUserNodes resolves the ordered set of user messages via the selector
// cascade, deduplicating nested matches.
func (s *Strategy) findUserNodes(snap *dom.Snapshot) []*userNode {
	for _, selector := range userNodeSelectors {
		matches := snap.Doc.Find(selector)
		if matches.Length() == 0 {
			continue
		}

		nodes := make([]*userNode, 0, matches.Length())
		target.EachSafe(s.log, matches, func(_ int, m *goquery.Selection) {
			if target.Reject(m) {
				return
			}
			if dom.StripText(m) == "" {
				return
			}
			nodes = append(nodes, &userNode{sel: m})
		})
		if len(nodes) > 0 {
			return nodes
		}
	}
	return nil
}
