package dom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/chatscrape/internal/dom"
)

func TestCleanText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "hello", "hello"},
		{"internal runs", "hello   world\n\tnext", "hello world next"},
		{"surrounding whitespace", "  padded  ", "padded"},
		{"only whitespace", " \n\t ", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, dom.CleanText(tt.input))
		})
	}
}

func TestFirstTextFallsThroughCascade(t *testing.T) {
	t.Parallel()

	snap, err := dom.NewSnapshotFromString(`
		<div id="turn">
			<div class="empty"></div>
			<div class="body">  The   reply text </div>
		</div>`, "https://example.com")
	require.NoError(t, err)

	turn := snap.Doc.Find("#turn")

	got := dom.FirstText(turn, ".missing", ".empty", ".body")
	assert.Equal(t, "The reply text", got)
}

func TestFirstTextAllMiss(t *testing.T) {
	t.Parallel()

	snap, err := dom.NewSnapshotFromString(`<div id="turn"></div>`, "https://example.com")
	require.NoError(t, err)

	assert.Equal(t, "", dom.FirstText(snap.Doc.Find("#turn"), ".a", ".b"))
}

func TestStripTextRemovesInteractiveElements(t *testing.T) {
	t.Parallel()

	snap, err := dom.NewSnapshotFromString(`
		<div id="turn">
			<button>Copy</button>
			<div role="toolbar">Share Edit</div>
			<p>The actual answer.</p>
			<span aria-hidden="true">decoration</span>
		</div>`, "https://example.com")
	require.NoError(t, err)

	turn := snap.Doc.Find("#turn")
	assert.Equal(t, "The actual answer.", dom.StripText(turn))

	// The live document keeps its buttons; only the clone is stripped.
	assert.Equal(t, 1, snap.Doc.Find("#turn button").Length())
}

func TestStripTextExtraSelectors(t *testing.T) {
	t.Parallel()

	snap, err := dom.NewSnapshotFromString(`
		<div id="turn">
			<div class="avatar">U</div>
			<p>Question text.</p>
		</div>`, "https://example.com")
	require.NoError(t, err)

	got := dom.StripText(snap.Doc.Find("#turn"), ".avatar")
	assert.Equal(t, "Question text.", got)
}

func TestHasClassSubstring(t *testing.T) {
	t.Parallel()

	snap, err := dom.NewSnapshotFromString(
		`<div id="a" class="Query-Content-r9x"></div><div id="chat-sidebar"></div>`,
		"https://example.com")
	require.NoError(t, err)

	assert.True(t, dom.HasClassSubstring(snap.Doc.Find("#a"), "query-content"))
	assert.True(t, dom.HasClassSubstring(snap.Doc.Find("#chat-sidebar"), "sidebar"))
	assert.False(t, dom.HasClassSubstring(snap.Doc.Find("#a"), "response"))
}

func TestSelfOrAncestorHasClass(t *testing.T) {
	t.Parallel()

	snap, err := dom.NewSnapshotFromString(`
		<div class="user-query-wrapper">
			<div><p id="deep">text</p></div>
		</div>`, "https://example.com")
	require.NoError(t, err)

	deep := snap.Doc.Find("#deep")
	assert.True(t, dom.SelfOrAncestorHasClass(deep, 4, "user-query"))
	assert.False(t, dom.SelfOrAncestorHasClass(deep, 1, "user-query"))
}
