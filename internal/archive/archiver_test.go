package archive_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/chatscrape/internal/archive"
	"github.com/jonesrussell/chatscrape/internal/domain"
	"github.com/jonesrussell/chatscrape/internal/logger"
	"github.com/jonesrussell/chatscrape/internal/relay"
)

func testBatch(conversationKey, content string) domain.ScanBatch {
	rec := domain.NewMessageRecord(domain.RoleUser, 0, content, domain.Anchor{}, time.Now())
	return domain.NewScanBatch("chatgpt", conversationKey, []domain.MessageRecord{rec}, time.Now())
}

func loadHistory(t *testing.T, store relay.Store) map[string][]domain.MessageRecord {
	t.Helper()
	values, err := store.Get(context.Background(), []string{relay.KeyMessages})
	require.NoError(t, err)

	history := make(map[string][]domain.MessageRecord)
	if raw := values[relay.KeyMessages]; raw != "" {
		require.NoError(t, json.Unmarshal([]byte(raw), &history))
	}
	return history
}

func waitForHistory(t *testing.T, store relay.Store, keys ...string) map[string][]domain.MessageRecord {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		history := loadHistory(t, store)
		if len(history) == len(keys) {
			return history
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("history never reached %d conversations", len(keys))
	return nil
}

func TestConsumeUpdatesLatest(t *testing.T) {
	t.Parallel()

	a := archive.New(logger.NewNoOp(), relay.NewMemoryStore())
	batch := testBatch("/c/abc", "hello")

	a.Consume(batch)
	assert.Equal(t, batch.ID, a.Latest().ID)
}

func TestConsumePersistsPerConversationHistory(t *testing.T) {
	t.Parallel()

	store := relay.NewMemoryStore()
	a := archive.New(logger.NewNoOp(), store)

	a.Consume(testBatch("/c/abc", "first conversation"))
	history := waitForHistory(t, store, "/c/abc")
	require.Len(t, history["/c/abc"], 1)

	a.Consume(testBatch("/c/def", "second conversation"))
	history = waitForHistory(t, store, "/c/abc", "/c/def")

	// The earlier conversation's history survives the later one.
	assert.Len(t, history["/c/abc"], 1)
	assert.Len(t, history["/c/def"], 1)
	assert.Equal(t, "first conversation", history["/c/abc"][0].FullContent)
}

func TestConsumeLaterScanReplacesConversation(t *testing.T) {
	t.Parallel()

	store := relay.NewMemoryStore()
	a := archive.New(logger.NewNoOp(), store)

	a.Consume(testBatch("/c/abc", "early capture"))
	waitForHistory(t, store, "/c/abc")

	later := testBatch("/c/abc", "later capture")
	a.Consume(later)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		history := loadHistory(t, store)
		if len(history["/c/abc"]) == 1 && history["/c/abc"][0].FullContent == "later capture" {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("later scan did not replace the conversation history")
}

func TestResetClearsLatest(t *testing.T) {
	t.Parallel()

	a := archive.New(logger.NewNoOp(), relay.NewMemoryStore())
	a.Consume(testBatch("/c/abc", "hello"))

	a.Reset("/c/def")
	latest := a.Latest()
	assert.True(t, latest.Empty())
	assert.Equal(t, "/c/def", latest.ConversationKey)
}

func TestEmptyBatchIsNotPersisted(t *testing.T) {
	t.Parallel()

	store := relay.NewMemoryStore()
	a := archive.New(logger.NewNoOp(), store)

	a.Consume(domain.NewScanBatch("chatgpt", "/c/abc", nil, time.Now()))
	time.Sleep(50 * time.Millisecond)

	assert.Empty(t, loadHistory(t, store))
}
