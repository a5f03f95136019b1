package domain

import (
	"time"

	"github.com/google/uuid"
)

// ScanBatch is the result of one completed, non-streaming scan. Batches are
// disposable value sequences recreated on every scan; persisting history
// across batches is the consumer's responsibility.
type ScanBatch struct {
	// ID uniquely identifies this batch.
	ID string `json:"id"`
	// Target is the name of the target the batch was extracted from.
	Target string `json:"target"`
	// ConversationKey is the normalized address the batch belongs to.
	ConversationKey string `json:"conversation_key"`
	// Records are the extracted turns in document order.
	Records []MessageRecord `json:"records"`
	// CapturedAt is when the scan ran.
	CapturedAt time.Time `json:"captured_at"`
}

// NewScanBatch builds a batch around a record sequence.
func NewScanBatch(target, conversationKey string, records []MessageRecord, capturedAt time.Time) ScanBatch {
	return ScanBatch{
		ID:              uuid.NewString(),
		Target:          target,
		ConversationKey: conversationKey,
		Records:         records,
		CapturedAt:      capturedAt,
	}
}

// Empty reports whether the batch carries no records.
func (b ScanBatch) Empty() bool {
	return len(b.Records) == 0
}
