// Package dom provides read-only utilities over rendered-document snapshots.
// A snapshot is a parsed capture of a chat application's page; the engine
// only reads and clones subtrees, it never mutates the captured content.
package dom

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Snapshot is one rendered-document capture plus the address it was taken at.
type Snapshot struct {
	// Doc is the parsed document. Treated as read-only.
	Doc *goquery.Document
	// URL is the page address at capture time.
	URL string
	// CapturedAt is when the capture was taken.
	CapturedAt time.Time

	index    map[*html.Node]int
	geometry *Geometry
}

// NewSnapshot parses a rendered document capture.
func NewSnapshot(r io.Reader, pageURL string) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return &Snapshot{
		Doc:        doc,
		URL:        pageURL,
		CapturedAt: time.Now(),
	}, nil
}

// NewSnapshotFromString parses a rendered document capture from a string.
func NewSnapshotFromString(content, pageURL string) (*Snapshot, error) {
	return NewSnapshot(strings.NewReader(content), pageURL)
}

// Root returns the document root selection.
func (s *Snapshot) Root() *goquery.Selection {
	return s.Doc.Selection
}

// Position returns the pre-order document position of a node. Nodes outside
// the document (cloned subtrees, stale anchors) report -1.
func (s *Snapshot) Position(n *html.Node) int {
	if s.index == nil {
		s.index = buildNodeIndex(s.Doc)
	}
	pos, ok := s.index[n]
	if !ok {
		return -1
	}
	return pos
}

// Geometry returns the snapshot's node geometry, building it on first use.
func (s *Snapshot) Geometry() *Geometry {
	if s.geometry == nil {
		s.geometry = NewGeometry(s.Doc)
	}
	return s.geometry
}

// buildNodeIndex assigns pre-order positions to every node reachable from
// the document root.
func buildNodeIndex(doc *goquery.Document) map[*html.Node]int {
	index := make(map[*html.Node]int)
	pos := 0

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		index[n] = pos
		pos++
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, root := range doc.Nodes {
		walk(root)
	}
	return index
}
