// Package domain defines the core data types shared across the extraction engine.
package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

const (
	// PreviewLength is the maximum length of the Content preview field.
	PreviewLength = 200
	// fingerprintSourceLength is how much of the full content feeds the ID fingerprint.
	fingerprintSourceLength = 50
	// fingerprintLength is the final fingerprint length after whitespace stripping.
	fingerprintLength = 20
)

// Role identifies which party produced a conversation turn.
type Role string

const (
	// RoleUser marks a turn typed by the person using the chat application.
	RoleUser Role = "user"
	// RoleAssistant marks a turn generated by the chat application's model.
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// MessageRecord is one conversation turn extracted from a rendered document.
type MessageRecord struct {
	// ID is unique within a scan batch and deterministic for unchanged content.
	ID string `json:"id"`
	// Role is the turn's author; always user or assistant, never empty.
	Role Role `json:"role"`
	// Content is a bounded preview of FullContent.
	Content string `json:"content"`
	// FullContent is the normalized full text; never empty.
	FullContent string `json:"full_content"`
	// Anchor is a non-owning reference back to the document node the turn
	// came from. It must be re-resolved before use; tree mutation can
	// invalidate it at any time.
	Anchor Anchor `json:"anchor"`
	// Order is the zero-based position within the batch, derived from
	// document position rather than discovery order.
	Order int `json:"order"`
	// Timestamp is the capture time of the scan that produced this record.
	Timestamp time.Time `json:"timestamp"`
}

// NewMessageRecord builds a record from normalized content. The caller is
// responsible for normalizing content first; empty content is the caller's
// bug to reject before this point.
func NewMessageRecord(role Role, index int, fullContent string, anchor Anchor, capturedAt time.Time) MessageRecord {
	return MessageRecord{
		ID:          DeriveID(role, index, fullContent),
		Role:        role,
		Content:     Preview(fullContent),
		FullContent: fullContent,
		Anchor:      anchor,
		Order:       index,
		Timestamp:   capturedAt,
	}
}

// DeriveID produces the deterministic record identifier from role, positional
// index, and a content fingerprint, so re-scans of unchanged content
// reproduce the same ID.
func DeriveID(role Role, index int, content string) string {
	return fmt.Sprintf("%s-%d-%s", role, index, Fingerprint(content))
}

// Fingerprint derives the content portion of a record ID: the first ~50
// characters with whitespace stripped, truncated to 20.
func Fingerprint(content string) string {
	runes := []rune(content)
	if len(runes) > fingerprintSourceLength {
		runes = runes[:fingerprintSourceLength]
	}

	stripped := make([]rune, 0, len(runes))
	for _, r := range runes {
		if unicode.IsSpace(r) {
			continue
		}
		stripped = append(stripped, r)
	}
	if len(stripped) > fingerprintLength {
		stripped = stripped[:fingerprintLength]
	}
	return string(stripped)
}

// Preview truncates content to the preview bound.
func Preview(content string) string {
	runes := []rune(content)
	if len(runes) <= PreviewLength {
		return content
	}
	return strings.TrimSpace(string(runes[:PreviewLength]))
}
