// Package claude implements the extraction strategy for Claude. Turns are
// distinguished by class families rather than a role attribute, so
// classification reads the class signature of the element itself.
package claude

import (
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/chatscrape/internal/dom"
	"github.com/jonesrussell/chatscrape/internal/domain"
	"github.com/jonesrussell/chatscrape/internal/logger"
	"github.com/jonesrussell/chatscrape/internal/target"
)

const (
	debounce = 300 * time.Millisecond
	settle   = 1500 * time.Millisecond
)

// messageMatchers locate message elements, in fallback order.
var messageMatchers = []string{
	"[data-testid='user-message'], div[class*='font-user-message'], " +
		"div[class*='font-claude-message'], div[data-is-streaming]",
	"div[class*='font-user'], div[class*='font-claude']",
	"main div[data-is-streaming], main div[class*='message']",
}

// contentSelectors extract the message body, in priority order.
var contentSelectors = []string{
	".standard-markdown",
	"[class*='prose']",
	"p.whitespace-pre-wrap",
}

var stripExtras = []string{
	"[class*='artifact-block']",
	"[class*='code-block-header']",
}

var containerChain = []string{
	"div[class*='conversation-container']",
	"main [class*='overflow-y']",
	"main",
}

var streamingSelectors = []string{
	"[data-is-streaming='true']",
	"button[aria-label*='Stop']",
	"[class*='thinking-indicator']",
}

// Strategy extracts conversations from Claude snapshots.
type Strategy struct {
	log  logger.Interface
	desc domain.TargetDescriptor
}

// New creates the Claude strategy.
func New(log logger.Interface) *Strategy {
	return &Strategy{
		log: log,
		desc: domain.TargetDescriptor{
			Name:      "claude",
			Hostnames: []string{"claude.ai"},
			Debounce:  debounce,
			Settle:    settle,
		},
	}
}

// Descriptor returns the target's static identity.
func (s *Strategy) Descriptor() domain.TargetDescriptor {
	return s.desc
}

// IsActive reports whether the page address belongs to Claude.
func (s *Strategy) IsActive(pageURL string) bool {
	return target.HostMatches(pageURL, s.desc.Hostnames)
}

// ResolveContainer returns the conversation container, falling back to the
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

// NormalizeAddress canonicalizes a Claude address to its conversation path.
// Conversations route under /chat/<id>.
func (s *Strategy) NormalizeAddress(raw string) string {
	return target.ConversationPath(raw, "/chat/")
}

// DiscoverMessages extracts the ordered turn sequence.
func (s *Strategy) DiscoverMessages(snap *dom.Snapshot) []domain.MessageRecord {
	var candidates []target.Candidate

	for _, matcher := range messageMatchers {
		matches := snap.Doc.Find(matcher)
		if matches.Length() == 0 {
			continue
		}

		target.EachSafe(s.log, matches, func(_ int, m *goquery.Selection) {
			if target.Reject(m) {
				return
			}
			role, ok := classify(m)
			if !ok {
				return
			}
			text := dom.FirstText(m, contentSelectors...)
			if text == "" {
				text = dom.StripText(m, stripExtras...)
			}
			if text == "" {
				return
			}
			candidates = append(candidates, target.Candidate{Sel: m, Role: role, Text: text})
		})

		if len(candidates) > 0 {
			break
		}
	}

	return target.Finalize(snap, candidates, snap.CapturedAt)
}

// classify resolves the turn author from test ids and class families.
// Elements carrying neither signal are discarded, never emitted roleless.
func classify(m *goquery.Selection) (domain.Role, bool) {
	if testID, ok := m.Attr("data-testid"); ok && testID == "user-message" {
		return domain.RoleUser, true
	}
	if dom.HasClassSubstring(m, "font-user", "user-message", "human-turn") {
		return domain.RoleUser, true
	}
	if dom.HasClassSubstring(m, "font-claude", "claude-message", "assistant") {
		return domain.RoleAssistant, true
	}
	if _, ok := m.Attr("data-is-streaming"); ok {
		return domain.RoleAssistant, true
	}
	return "", false
}
