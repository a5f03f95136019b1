// Package archive is the downstream consumer of scan batches: it keeps the
// latest batch for the UI surface and persists per-conversation history
// through the relay, fire-and-forget.
package archive

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jonesrussell/chatscrape/internal/domain"
	"github.com/jonesrussell/chatscrape/internal/logger"
	"github.com/jonesrussell/chatscrape/internal/relay"
)

// persistTimeout bounds one relay round trip.
const persistTimeout = 5 * time.Second

// Archiver receives completed scan batches.
type Archiver struct {
	log   logger.Interface
	store relay.Store

	mu     sync.RWMutex
	latest domain.ScanBatch
}

// New creates an archiver over the given relay store.
func New(log logger.Interface, store relay.Store) *Archiver {
	return &Archiver{
		log:   log.WithComponent("archive"),
		store: store,
	}
}

// Consume accepts a completed batch. Persistence runs asynchronously; the
// extraction engine never waits on the relay.
func (a *Archiver) Consume(batch domain.ScanBatch) {
	a.mu.Lock()
	a.latest = batch
	a.mu.Unlock()

	go a.persist(batch)
}

// Latest returns the most recent batch.
func (a *Archiver) Latest() domain.ScanBatch {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.latest
}

// Reset discards accumulated per-conversation state after a conversation
// switch. Persisted history keeps its other conversations.
func (a *Archiver) Reset(conversationKey string) {
	a.mu.Lock()
	a.latest = domain.ScanBatch{ConversationKey: conversationKey}
	a.mu.Unlock()
	a.log.Debug("reset accumulated state", "conversation", conversationKey)
}

// persist merges the batch into the per-conversation history under the
// relay's messages key. Failures are logged and dropped; the next scan
// retries naturally.
func (a *Archiver) persist(batch domain.ScanBatch) {
	if batch.Empty() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	values, err := a.store.Get(ctx, []string{relay.KeyMessages})
	if err != nil {
		a.log.Warn("relay get failed", "error", err)
		return
	}

	// Missing key means empty history.
	history := make(map[string][]domain.MessageRecord)
	if raw := values[relay.KeyMessages]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &history); err != nil {
			a.log.Warn("corrupt history, starting fresh", "error", err)
			history = make(map[string][]domain.MessageRecord)
		}
	}
	history[batch.ConversationKey] = batch.Records

	encoded, err := json.Marshal(history)
	if err != nil {
		a.log.Warn("encode history failed", "error", err)
		return
	}
	if err := a.store.Set(ctx, map[string]string{relay.KeyMessages: string(encoded)}); err != nil {
		a.log.Warn("relay set failed", "error", err)
	}
}
