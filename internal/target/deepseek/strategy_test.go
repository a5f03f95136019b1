package deepseek_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/chatscrape/internal/dom"
	"github.com/jonesrussell/chatscrape/internal/domain"
	"github.com/jonesrussell/chatscrape/internal/logger"
	"github.com/jonesrussell/chatscrape/internal/target/deepseek"
)

// Class names mimic DeepSeek's build-time obfuscation: only the
// chat-message and markdown fragments are stable.
const conversationHTML = `
<html><body>
<div class="chat-content-a8f">
	<div class="chat-message-f72 _a1b2c3">
		<div class="_9d8e7f">Explain binary search please</div>
	</div>
	<div class="chat-message-f72 _d4e5f6">
		<div class="ds-markdown"><p>Binary search halves the interval each step.</p></div>
	</div>
</div>
</body></html>`

func newStrategy() *deepseek.Strategy {
	return deepseek.New(logger.NewNoOp())
}

func TestDiscoverMessagesStructuralClassification(t *testing.T) {
	t.Parallel()

	snap, err := dom.NewSnapshotFromString(conversationHTML, "https://chat.deepseek.com/a/chat/s/42")
	require.NoError(t, err)

	records := newStrategy().DiscoverMessages(snap)
	require.Len(t, records, 2)

	assert.Equal(t, domain.RoleUser, records[0].Role)
	assert.Equal(t, "Explain binary search please", records[0].FullContent)
	assert.Equal(t, domain.RoleAssistant, records[1].Role)
	assert.Equal(t, "Binary search halves the interval each step.", records[1].FullContent)
}

func TestDiscoverMessagesFiltersTinyWrappers(t *testing.T) {
	t.Parallel()

	html := `
	<div class="chat-content">
		<div class="chat-message-1"></div>
		<div class="chat-message-2"><div>Real question here</div></div>
	</div>`

	snap, err := dom.NewSnapshotFromString(html, "https://chat.deepseek.com/a/chat/s/42")
	require.NoError(t, err)

	records := newStrategy().DiscoverMessages(snap)
	require.Len(t, records, 1)
	assert.Equal(t, "Real question here", records[0].FullContent)
}

func TestIsStreaming(t *testing.T) {
	t.Parallel()

	streaming, err := dom.NewSnapshotFromString(
		`<div class="ds-loading">. . .</div>`, "https://chat.deepseek.com/a/chat/s/42")
	require.NoError(t, err)
	assert.True(t, newStrategy().IsStreaming(streaming))

	settled, err := dom.NewSnapshotFromString(conversationHTML, "https://chat.deepseek.com/a/chat/s/42")
	require.NoError(t, err)
	assert.False(t, newStrategy().IsStreaming(settled))
}

func TestNormalizeAddress(t *testing.T) {
	t.Parallel()

	s := newStrategy()
	assert.Equal(t, "/a/chat/s/42", s.NormalizeAddress("https://chat.deepseek.com/a/chat/s/42?share=1"))
}

func TestIsActive(t *testing.T) {
	t.Parallel()

	s := newStrategy()
	assert.True(t, s.IsActive("https://chat.deepseek.com/a/chat/s/42"))
	assert.False(t, s.IsActive("https://gemini.google.com/app/xyz"))
}
