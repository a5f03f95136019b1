package gemini

import (
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/jonesrussell/chatscrape/internal/dom"
)

// block is one candidate fragment of an inferred response.
type block struct {
	sel  *goquery.Selection
	top  float64
	text string
}

// response is the assembled assistant turn paired with a user message.
type response struct {
	sel  *goquery.Selection
	text string
}

// inferResponse locates the assistant reply for one user message: structural
// ascent first, spatial fallback second, then aggregation of the matched
// blocks into a single turn.
func (s *Strategy) inferResponse(snap *dom.Snapshot, user, next *userNode, allUsers []*userNode) response {
	userSet := make(map[*html.Node]bool, len(allUsers))
	for _, u := range allUsers {
		if u.sel.Length() > 0 {
			userSet[u.sel.Get(0)] = true
		}
	}

	blocks := s.ascentBlocks(snap, user, userSet)
	if len(blocks) == 0 {
		blocks = s.spatialBlocks(snap, user, next)
	}
	if len(blocks) == 0 {
		return response{}
	}

	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].top < blocks[j].top })

	text := s.aggregate(blocks)
	if text == "" {
		return response{}
	}
	return response{sel: blocks[0].sel, text: text}
}

// ascentBlocks walks up the user node's ancestor chain up to a bounded
// depth. At each level it inspects the next few sibling subtrees, collecting
// response-signature descendants plus any sibling that is itself a large
// non-user content block. The ascent stops at the first level that yields
// anything; sibling scanning stops at the next known user node.
func (s *Strategy) ascentBlocks(snap *dom.Snapshot, user *userNode, userSet map[*html.Node]bool) []block {
	geom := snap.Geometry()
	current := user.sel

	for depth := 0; depth <= s.heuristics.MaxAscentDepth && current.Length() > 0; depth++ {
		var found []block

		sib := current.Next()
		for w := 0; w < s.heuristics.SiblingWindow && sib.Length() > 0; w++ {
			if containsUserNode(sib, userSet) {
				break
			}

			matched := false
			for _, sig := range assistantSignatureSelectors {
				if sib.Is(sig) {
					found = appendBlock(found, geom, sib)
					matched = true
					break
				}
			}
			sib.Find(strings.Join(assistantSignatureSelectors, ", ")).Each(func(_ int, m *goquery.Selection) {
				if dom.HasClassSubstring(m, userClassSignatures...) {
					return
				}
				found = appendBlock(found, geom, m)
				matched = true
			})

			if !matched && s.isLargeContentBlock(geom, sib) {
				found = appendBlock(found, geom, sib)
			}

			sib = sib.Next()
		}

		if len(found) > 0 {
			return found
		}
		current = current.Parent()
	}
	return nil
}

// spatialBlocks is the document-wide fallback: keep content-shaped
// candidates whose vertical extent lies strictly between this user node's
// bottom and the next user node's top (or end of document when last).
func (s *Strategy) spatialBlocks(snap *dom.Snapshot, user, next *userNode) []block {
	geom := snap.Geometry()

	userBox, ok := geom.Box(user.sel)
	if !ok {
		return nil
	}
	lower := userBox.Bottom
	upper := -1.0
	if next != nil {
		if nextBox, nextOK := geom.Box(next.sel); nextOK {
			upper = nextBox.Top
		}
	}

	inGap := func(sel *goquery.Selection) bool {
		box, boxOK := geom.Box(sel)
		if !boxOK {
			return false
		}
		if box.Top <= lower+s.heuristics.MinGap {
			return false
		}
		if upper >= 0 && box.Bottom >= upper {
			return false
		}
		return true
	}

	var found []block

	// Signature-bearing candidates first.
	snap.Doc.Find(strings.Join(assistantSignatureSelectors, ", ")).Each(func(_ int, m *goquery.Selection) {
		if !inGap(m) || dom.HasClassSubstring(m, userClassSignatures...) {
			return
		}
		found = appendBlock(found, geom, m)
	})
	if len(found) > 0 {
		return found
	}

	// Last resort: large, non-disclaimer blocks in the correct gap.
	snap.Doc.Find("div[class], p, section").Each(func(_ int, m *goquery.Selection) {
		if !inGap(m) || !s.isLargeContentBlock(geom, m) {
			return
		}
		if isDisclaimer(dom.StripText(m)) {
			return
		}
		found = appendBlock(found, geom, m)
	})
	return found
}

// isLargeContentBlock admits an unsigned element as response content when it
// carries enough text, renders tall enough, and does not look like a user or
// control element.
func (s *Strategy) isLargeContentBlock(geom *dom.Geometry, sel *goquery.Selection) bool {
	if dom.HasClassSubstring(sel, userClassSignatures...) {
		return false
	}
	text := dom.StripText(sel)
	if len(text) < s.heuristics.MinAssistantTextLen {
		return false
	}
	box, ok := geom.Box(sel)
	if !ok || box.Height() < s.heuristics.MinBlockHeight {
		return false
	}
	return true
}

func appendBlock(blocks []block, geom *dom.Geometry, sel *goquery.Selection) []block {
	text := dom.StripText(sel)
	if text == "" {
		return blocks
	}
	top := 0.0
	if box, ok := geom.Box(sel); ok {
		top = box.Top
	}
	return append(blocks, block{sel: sel, top: top, text: text})
}

// containsUserNode reports whether the selection is, or contains, one of the
// known user message nodes.
func containsUserNode(sel *goquery.Selection, userSet map[*html.Node]bool) bool {
	if sel.Length() == 0 {
		return false
	}
	root := sel.Get(0)

	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if userSet[n] {
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	return walk(root)
}
