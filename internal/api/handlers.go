package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/chatscrape/internal/archive"
	"github.com/jonesrussell/chatscrape/internal/dom"
	"github.com/jonesrussell/chatscrape/internal/logger"
	"github.com/jonesrussell/chatscrape/internal/scheduler"
)

// SnapshotRequest carries one rendered-document capture.
type SnapshotRequest struct {
	URL        string     `json:"url" binding:"required"`
	HTML       string     `json:"html" binding:"required"`
	CapturedAt *time.Time `json:"captured_at"`
}

// NavigationRequest carries an address change observed by the capturer.
type NavigationRequest struct {
	URL string `json:"url" binding:"required"`
}

// IngestHandler adapts capture requests into scheduler events.
type IngestHandler struct {
	log      logger.Interface
	holder   *scheduler.SnapshotHolder
	sched    *scheduler.Scheduler
	archiver *archive.Archiver
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(
	log logger.Interface,
	holder *scheduler.SnapshotHolder,
	sched *scheduler.Scheduler,
	archiver *archive.Archiver,
) *IngestHandler {
	return &IngestHandler{
		log:      log,
		holder:   holder,
		sched:    sched,
		archiver: archiver,
	}
}

// PostSnapshot handles POST /v1/snapshots.
func (h *IngestHandler) PostSnapshot(c *gin.Context) {
	var req SnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	snap, err := dom.NewSnapshotFromString(req.HTML, req.URL)
	if err != nil {
		h.log.Error("Failed to parse snapshot", "url", req.URL, "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unparseable document"})
		return
	}
	if req.CapturedAt != nil {
		snap.CapturedAt = *req.CapturedAt
	}

	h.holder.Set(snap)
	h.sched.DocumentChanged()

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// PostNavigation handles POST /v1/navigation.
func (h *IngestHandler) PostNavigation(c *gin.Context) {
	var req NavigationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	h.sched.AddressChanged(req.URL)

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// GetMessages handles GET /v1/messages.
func (h *IngestHandler) GetMessages(c *gin.Context) {
	batch := h.archiver.Latest()

	c.JSON(http.StatusOK, gin.H{
		"target":           batch.Target,
		"conversation_key": batch.ConversationKey,
		"captured_at":      batch.CapturedAt,
		"messages":         batch.Records,
	})
}
