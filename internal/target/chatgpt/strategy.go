// Package chatgpt implements the extraction strategy for ChatGPT. ChatGPT
// labels every turn with a data attribute carrying the author role, which
// makes it the most schema-like of the supported targets; the fallback
// chains exist for the intervals where that attribute drifts.
package chatgpt

import (
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/chatscrape/internal/dom"
	"github.com/jonesrussell/chatscrape/internal/domain"
	"github.com/jonesrussell/chatscrape/internal/logger"
	"github.com/jonesrussell/chatscrape/internal/target"
)

const (
	debounce = 500 * time.Millisecond
	settle   = 2000 * time.Millisecond

	// roleAttr carries the turn author on message elements.
	roleAttr = "data-message-author-role"
)

// messageMatchers locate message elements, in fallback order.
var messageMatchers = []string{
	"[" + roleAttr + "]",
	"div[data-testid^='conversation-turn']",
	"main article",
}

// contentSelectors extract the message body, in priority order. The shared
// clone-and-strip fallback applies when none match.
var contentSelectors = []string{
	".markdown",
	".whitespace-pre-wrap",
	"[class*='prose']",
}

// stripExtras are ChatGPT-specific control descendants removed by the
// clone-and-strip fallback on top of the shared interactive set.
var stripExtras = []string{
	".sr-only",
	"[class*='action']",
	"[class*='footer']",
}

var containerChain = []string{
	"main [class*='react-scroll-to-bottom']",
	"main [class*='conversation']",
	"main",
}

var streamingSelectors = []string{
	"button[data-testid='stop-button']",
	".result-streaming",
	"[class*='streaming']",
}

// Strategy extracts conversations from ChatGPT snapshots.
type Strategy struct {
	log  logger.Interface
	desc domain.TargetDescriptor
}

// New creates the ChatGPT strategy.
func New(log logger.Interface) *Strategy {
	return &Strategy{
		log: log,
		desc: domain.TargetDescriptor{
			Name:      "chatgpt",
			Hostnames: []string{"chatgpt.com", "chat.openai.com"},
			Debounce:  debounce,
			Settle:    settle,
		},
	}
}

// Descriptor returns the target's static identity.
func (s *Strategy) Descriptor() domain.TargetDescriptor {
	return s.desc
}

// IsActive reports whether the page address belongs to ChatGPT.
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

// NormalizeAddress canonicalizes a ChatGPT address to its conversation path.
// Conversations route under /c/<id>; the query string is noise.
func (s *Strategy) NormalizeAddress(raw string) string {
	return target.ConversationPath(raw, "/c/")
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
			role, ok := s.classify(m)
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

// classify resolves the turn author: the role attribute on the element or a
// descendant first, then the agent-turn class signature.
func (s *Strategy) classify(m *goquery.Selection) (domain.Role, bool) {
	role, exists := m.Attr(roleAttr)
	if !exists {
		role, exists = m.Find("[" + roleAttr + "]").First().Attr(roleAttr)
	}
	if exists {
		switch domain.Role(role) {
		case domain.RoleUser:
			return domain.RoleUser, true
		case domain.RoleAssistant:
			return domain.RoleAssistant, true
		}
		return "", false
	}

	if dom.HasClassSubstring(m, "agent-turn") || m.Find("[class*='agent-turn']").Length() > 0 {
		return domain.RoleAssistant, true
	}
	if dom.HasClassSubstring(m, "user-turn") {
		return domain.RoleUser, true
	}
	return "", false
}
