package dom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/chatscrape/internal/dom"
	"github.com/jonesrussell/chatscrape/internal/domain"
)

func anchorWithPath(path ...int) domain.Anchor {
	return domain.Anchor{Path: path}
}

func TestSnapshotPositionFollowsDocumentOrder(t *testing.T) {
	t.Parallel()

	snap, err := dom.NewSnapshotFromString(`
		<div id="first">one</div>
		<div id="second">two</div>
		<div id="third">three</div>`, "https://example.com")
	require.NoError(t, err)

	first := snap.Position(snap.Doc.Find("#first").Get(0))
	second := snap.Position(snap.Doc.Find("#second").Get(0))
	third := snap.Position(snap.Doc.Find("#third").Get(0))

	assert.Less(t, first, second)
	assert.Less(t, second, third)
}

func TestSnapshotPositionUnknownNode(t *testing.T) {
	t.Parallel()

	snap, err := dom.NewSnapshotFromString(`<div id="a">x</div>`, "https://example.com")
	require.NoError(t, err)

	clone := snap.Doc.Find("#a").Clone()
	assert.Equal(t, -1, snap.Position(clone.Get(0)))
}

func TestAnchorRoundTrip(t *testing.T) {
	t.Parallel()

	snap, err := dom.NewSnapshotFromString(`
		<main>
			<div>skip</div>
			<div><p id="wanted">the turn</p></div>
		</main>`, "https://example.com")
	require.NoError(t, err)

	wanted := snap.Doc.Find("#wanted")
	anchor := dom.AnchorFor(wanted)
	require.False(t, anchor.IsZero())

	resolved, ok := dom.ResolveAnchor(snap, anchor)
	require.True(t, ok)
	assert.Equal(t, wanted.Get(0), resolved.Get(0))
}

func TestAnchorIgnoresTextSiblings(t *testing.T) {
	t.Parallel()

	// Extra text nodes between elements must not shift the path.
	withText, err := dom.NewSnapshotFromString(
		`<main>leading text<div>a</div>more<div id="x">b</div></main>`,
		"https://example.com")
	require.NoError(t, err)

	withoutText, err := dom.NewSnapshotFromString(
		`<main><div>a</div><div id="x">b</div></main>`,
		"https://example.com")
	require.NoError(t, err)

	a := dom.AnchorFor(withText.Doc.Find("#x"))
	b := dom.AnchorFor(withoutText.Doc.Find("#x"))
	assert.Equal(t, b.Path, a.Path)
}

func TestResolveAnchorStalePath(t *testing.T) {
	t.Parallel()

	snap, err := dom.NewSnapshotFromString(`<div><p>only</p></div>`, "https://example.com")
	require.NoError(t, err)

	_, ok := dom.ResolveAnchor(snap, anchorWithPath(0, 5, 9))
	assert.False(t, ok)
}

func TestResolveAnchorZero(t *testing.T) {
	t.Parallel()

	snap, err := dom.NewSnapshotFromString(`<div></div>`, "https://example.com")
	require.NoError(t, err)

	_, ok := dom.ResolveAnchor(snap, anchorWithPath())
	assert.False(t, ok)
}
