// Package deepseek implements the extraction strategy for DeepSeek. Its
// class names are build-time obfuscated, so role classification leans on
// structural signals: assistant turns carry a markdown-rendered body, user
// turns do not.
package deepseek

import (
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/chatscrape/internal/dom"
	"github.com/jonesrussell/chatscrape/internal/domain"
	"github.com/jonesrussell/chatscrape/internal/logger"
	"github.com/jonesrussell/chatscrape/internal/target"
)

const (
	debounce = 800 * time.Millisecond
	settle   = 2500 * time.Millisecond

	// minTurnTextLen filters structural wrappers picked up by the loose
	// matchers; obfuscated class names leave little else to filter on.
	minTurnTextLen = 2
)

// markdownSelectors identify an assistant body inside a turn.
var markdownSelectors = ".ds-markdown, [class*='markdown']"

// messageMatchers locate message elements, in fallback order. The generic
// div shapes are last because obfuscated classes churn every release.
var messageMatchers = []string{
	"[class*='chat-message']",
	"div[class*='message']",
	"[class*='chat'] > div > div",
}

// contentSelectors extract the message body, in priority order.
var contentSelectors = []string{
	".ds-markdown",
	"[class*='markdown']",
	"[class*='content']",
}

var containerChain = []string{
	"[class*='chat-content']",
	"[class*='scrollable']",
	"main",
}

var streamingSelectors = []string{
	".ds-loading",
	"[class*='generating']",
	"[class*='typing-indicator']",
}

// Strategy extracts conversations from DeepSeek snapshots.
type Strategy struct {
	log  logger.Interface
	desc domain.TargetDescriptor
}

// New creates the DeepSeek strategy.
func New(log logger.Interface) *Strategy {
	return &Strategy{
		log: log,
		desc: domain.TargetDescriptor{
			Name:      "deepseek",
			Hostnames: []string{"chat.deepseek.com"},
			Debounce:  debounce,
			Settle:    settle,
		},
	}
}

// Descriptor returns the target's static identity.
func (s *Strategy) Descriptor() domain.TargetDescriptor {
	return s.desc
}

// IsActive reports whether the page address belongs to DeepSeek.
func (s *Strategy) IsActive(pageURL string) bool {
	return target.HostMatches(pageURL, s.desc.Hostnames)
}

// ResolveContainer returns the chat scroller, falling back to the document
// root.
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

// NormalizeAddress canonicalizes a DeepSeek address to its conversation
// path. Conversations route under /a/chat/s/<id>.
func (s *Strategy) NormalizeAddress(raw string) string {
	return target.ConversationPath(raw, "/a/chat/s/")
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
			role := classify(m)
			text := extractContent(m, role)
			if len(text) < minTurnTextLen {
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

// classify resolves the turn author structurally: a markdown body marks an
// assistant turn, everything else that survives rejection is a user turn.
func classify(m *goquery.Selection) domain.Role {
	if m.Is(markdownSelectors) || m.Find(markdownSelectors).Length() > 0 {
		return domain.RoleAssistant
	}
	return domain.RoleUser
}

// extractContent runs the content cascade for a turn, ending at the
// clone-and-strip fallback.
func extractContent(m *goquery.Selection, role domain.Role) string {
	if role == domain.RoleAssistant {
		if text := dom.FirstText(m, contentSelectors...); text != "" {
			return text
		}
	}
	return dom.StripText(m)
}
