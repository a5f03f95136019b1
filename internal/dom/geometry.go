package dom

import (
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Capture tooling annotates elements with their rendered bounding box. When
// the annotations are absent, positions are estimated from document order
// and text volume; the estimate is deliberately coarse and only has to
// preserve vertical ordering and rough block sizes.
const (
	// TopAttr carries the element's rendered top offset in pixels.
	TopAttr = "data-cs-top"
	// HeightAttr carries the element's rendered height in pixels.
	HeightAttr = "data-cs-height"

	// estimatedLineHeight approximates one rendered text line.
	estimatedLineHeight = 24.0
	// estimatedCharsPerLine approximates how many characters fit on a line.
	estimatedCharsPerLine = 80
)

// Box is the vertical extent of one rendered element.
type Box struct {
	Top    float64
	Bottom float64
}

// Height returns the box's vertical size.
func (b Box) Height() float64 {
	return b.Bottom - b.Top
}

// Geometry maps document nodes to vertical boxes for spatial heuristics.
type Geometry struct {
	boxes map[*html.Node]Box
}

// NewGeometry derives boxes for every element in the document, preferring
// capture annotations and falling back to a flow estimate.
func NewGeometry(doc *goquery.Document) *Geometry {
	g := &Geometry{boxes: make(map[*html.Node]Box)}

	cursor := 0.0
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type != html.ElementNode {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
			return
		}

		top := cursor
		if annotated, ok := attrFloat(n, TopAttr); ok {
			top = annotated
			cursor = annotated
		}

		if height, ok := attrFloat(n, HeightAttr); ok {
			g.boxes[n] = Box{Top: top, Bottom: top + height}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
			if bottom := top + height; bottom > cursor {
				cursor = bottom
			}
			return
		}

		if !hasElementChild(n) {
			height := estimateHeight(textLength(n))
			g.boxes[n] = Box{Top: top, Bottom: top + height}
			cursor = top + height
			return
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		bottom := cursor
		if bottom < top {
			bottom = top
		}
		g.boxes[n] = Box{Top: top, Bottom: bottom}
	}

	for _, root := range doc.Nodes {
		walk(root)
	}
	return g
}

// Box returns the vertical box for the selection's first node.
func (g *Geometry) Box(sel *goquery.Selection) (Box, bool) {
	if sel == nil || sel.Length() == 0 {
		return Box{}, false
	}
	box, ok := g.boxes[sel.Get(0)]
	return box, ok
}

// BoxForNode returns the vertical box for a node.
func (g *Geometry) BoxForNode(n *html.Node) (Box, bool) {
	box, ok := g.boxes[n]
	return box, ok
}

func attrFloat(n *html.Node, key string) (float64, bool) {
	for _, attr := range n.Attr {
		if attr.Key != key {
			continue
		}
		v, err := strconv.ParseFloat(attr.Val, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

func hasElementChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return true
		}
	}
	return false
}

func textLength(n *html.Node) int {
	total := 0
	var walk func(m *html.Node)
	walk = func(m *html.Node) {
		if m.Type == html.TextNode {
			total += len(m.Data)
		}
		for c := m.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return total
}

func estimateHeight(textLen int) float64 {
	if textLen == 0 {
		return 0
	}
	lines := (textLen + estimatedCharsPerLine - 1) / estimatedCharsPerLine
	return float64(lines) * estimatedLineHeight
}
