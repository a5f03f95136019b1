package target_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/chatscrape/internal/target"
)

func TestSyntacticNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"strip fragment", "https://example.com/c/abc#latest", "https://example.com/c/abc"},
		{"strip trailing slash", "https://example.com/c/abc/", "https://example.com/c/abc"},
		{"both", "https://example.com/c/abc/#x", "https://example.com/c/abc"},
		{"untouched", "https://example.com/c/abc", "https://example.com/c/abc"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, target.SyntacticNormalize(tt.input))
		})
	}
}

func TestConversationPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		raw    string
		prefix string
		want   string
	}{
		{"plain conversation", "https://chatgpt.com/c/abc-123", "/c/", "/c/abc-123"},
		{"query stripped", "https://chatgpt.com/c/abc-123?model=auto", "/c/", "/c/abc-123"},
		{"fragment stripped", "https://chatgpt.com/c/abc-123#turn-9", "/c/", "/c/abc-123"},
		{"subpath trimmed", "https://claude.ai/chat/xyz/settings", "/chat/", "/chat/xyz"},
		{"no prefix falls back to path", "https://chatgpt.com/library?x=1", "/c/", "/library"},
		{"root", "https://chatgpt.com/", "/c/", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, target.ConversationPath(tt.raw, tt.prefix))
		})
	}
}

func TestConversationPathIgnoresQueryChanges(t *testing.T) {
	t.Parallel()

	a := target.ConversationPath("https://chatgpt.com/c/abc?tab=1", "/c/")
	b := target.ConversationPath("https://chatgpt.com/c/abc?tab=2", "/c/")
	assert.Equal(t, a, b)
}

func TestPathOnly(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/a/chat/s/42", target.PathOnly("https://chat.deepseek.com/a/chat/s/42?x=1"))
	assert.Equal(t, "/app/abc", target.PathOnly("https://gemini.google.com/app/abc/"))
}

func TestHostMatches(t *testing.T) {
	t.Parallel()

	hosts := []string{"chatgpt.com", "chat.openai.com"}

	assert.True(t, target.HostMatches("https://chatgpt.com/c/abc", hosts))
	assert.True(t, target.HostMatches("https://chat.openai.com/", hosts))
	assert.False(t, target.HostMatches("https://claude.ai/chat/x", hosts))
	assert.False(t, target.HostMatches("not a url at all\x00", hosts))
	assert.False(t, target.HostMatches("", hosts))
}
