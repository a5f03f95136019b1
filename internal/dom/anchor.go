package dom

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/jonesrussell/chatscrape/internal/domain"
)

// AnchorFor computes the child-index path from the document root to the
// element. The path counts element nodes only, so text and comment nodes do
// not shift it between captures.
func AnchorFor(sel *goquery.Selection) domain.Anchor {
	if sel == nil || sel.Length() == 0 {
		return domain.Anchor{}
	}

	var path []int
	for n := sel.Get(0); n != nil && n.Parent != nil; n = n.Parent {
		idx := 0
		for sib := n.Parent.FirstChild; sib != nil && sib != n; sib = sib.NextSibling {
			if sib.Type == html.ElementNode {
				idx++
			}
		}
		path = append([]int{idx}, path...)
	}
	return domain.Anchor{Path: path}
}

// ResolveAnchor re-validates an anchor against the current snapshot and
// returns the element it points at. The boolean is false when the path no
// longer resolves; callers must treat that as a stale anchor, not an error.
func ResolveAnchor(snap *Snapshot, anchor domain.Anchor) (*goquery.Selection, bool) {
	if anchor.IsZero() || snap == nil || len(snap.Doc.Nodes) == 0 {
		return nil, false
	}

	n := snap.Doc.Nodes[0]
	for _, want := range anchor.Path {
		idx := 0
		var next *html.Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if idx == want {
				next = c
				break
			}
			idx++
		}
		if next == nil {
			return nil, false
		}
		n = next
	}
	return snap.Doc.FindNodes(n), true
}
