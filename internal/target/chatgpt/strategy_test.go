package chatgpt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/chatscrape/internal/dom"
	"github.com/jonesrussell/chatscrape/internal/domain"
	"github.com/jonesrussell/chatscrape/internal/logger"
	"github.com/jonesrussell/chatscrape/internal/target/chatgpt"
)

const conversationHTML = `
<html><body>
<main>
	<div class="react-scroll-to-bottom-xyz">
		<article>
			<div data-message-author-role="user" data-message-id="m1">
				<div class="whitespace-pre-wrap">What is the capital of France?</div>
			</div>
		</article>
		<article>
			<div data-message-author-role="assistant" data-message-id="m2">
				<div class="markdown"><p>The capital of France is Paris.</p></div>
				<div class="action-bar"><button>Copy</button></div>
			</div>
		</article>
	</div>
	<div id="composer-background" class="composer-parent">
		<textarea id="prompt-textarea">draft text</textarea>
	</div>
</main>
</body></html>`

func newStrategy() *chatgpt.Strategy {
	return chatgpt.New(logger.NewNoOp())
}

func TestDiscoverMessagesRoleAttribute(t *testing.T) {
	t.Parallel()

	snap, err := dom.NewSnapshotFromString(conversationHTML, "https://chatgpt.com/c/abc")
	require.NoError(t, err)

	records := newStrategy().DiscoverMessages(snap)
	require.Len(t, records, 2)

	assert.Equal(t, domain.RoleUser, records[0].Role)
	assert.Equal(t, "What is the capital of France?", records[0].FullContent)
	assert.Equal(t, domain.RoleAssistant, records[1].Role)
	assert.Equal(t, "The capital of France is Paris.", records[1].FullContent)

	for i, rec := range records {
		assert.Equal(t, i, rec.Order)
		assert.NotEmpty(t, rec.ID)
	}
}

func TestDiscoverMessagesIgnoresComposer(t *testing.T) {
	t.Parallel()

	snap, err := dom.NewSnapshotFromString(conversationHTML, "https://chatgpt.com/c/abc")
	require.NoError(t, err)

	for _, rec := range newStrategy().DiscoverMessages(snap) {
		assert.NotContains(t, rec.FullContent, "draft text")
	}
}

func TestDiscoverMessagesTestidFallback(t *testing.T) {
	t.Parallel()

	// Role attribute gone; the testid matcher plus class signatures carry.
	html := `
	<main>
		<div data-testid="conversation-turn-1" class="user-turn">
			<div class="whitespace-pre-wrap">hello there</div>
		</div>
		<div data-testid="conversation-turn-2" class="agent-turn">
			<div class="markdown">hi, how can I help?</div>
		</div>
	</main>`

	snap, err := dom.NewSnapshotFromString(html, "https://chatgpt.com/c/abc")
	require.NoError(t, err)

	records := newStrategy().DiscoverMessages(snap)
	require.Len(t, records, 2)
	assert.Equal(t, domain.RoleUser, records[0].Role)
	assert.Equal(t, domain.RoleAssistant, records[1].Role)
}

func TestDiscoverMessagesEmptyDocument(t *testing.T) {
	t.Parallel()

	snap, err := dom.NewSnapshotFromString("<html><body></body></html>", "https://chatgpt.com/")
	require.NoError(t, err)

	assert.Empty(t, newStrategy().DiscoverMessages(snap))
}

func TestIsStreaming(t *testing.T) {
	t.Parallel()

	streaming, err := dom.NewSnapshotFromString(
		`<main><button data-testid="stop-button">Stop</button></main>`,
		"https://chatgpt.com/c/abc")
	require.NoError(t, err)
	assert.True(t, newStrategy().IsStreaming(streaming))

	settled, err := dom.NewSnapshotFromString(`<main></main>`, "https://chatgpt.com/c/abc")
	require.NoError(t, err)
	assert.False(t, newStrategy().IsStreaming(settled))
}

func TestIsActive(t *testing.T) {
	t.Parallel()

	s := newStrategy()
	assert.True(t, s.IsActive("https://chatgpt.com/c/abc"))
	assert.True(t, s.IsActive("https://chat.openai.com/c/abc"))
	assert.False(t, s.IsActive("https://claude.ai/chat/abc"))
}

func TestNormalizeAddress(t *testing.T) {
	t.Parallel()

	s := newStrategy()
	assert.Equal(t, "/c/abc", s.NormalizeAddress("https://chatgpt.com/c/abc?model=auto"))
	assert.Equal(t,
		s.NormalizeAddress("https://chatgpt.com/c/abc?x=1"),
		s.NormalizeAddress("https://chatgpt.com/c/abc?x=2"))
}
