package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/chatscrape/internal/api"
	"github.com/jonesrussell/chatscrape/internal/archive"
	"github.com/jonesrussell/chatscrape/internal/logger"
	"github.com/jonesrussell/chatscrape/internal/pipeline"
	"github.com/jonesrussell/chatscrape/internal/relay"
	"github.com/jonesrussell/chatscrape/internal/scheduler"
	"github.com/jonesrussell/chatscrape/internal/target"
	"github.com/jonesrussell/chatscrape/internal/target/chatgpt"
)

const snapshotHTML = `<main>
<div data-message-author-role="user"><div class="whitespace-pre-wrap">ping</div></div>
<div data-message-author-role="assistant"><div class="markdown">pong</div></div>
</main>`

func newTestServer(t *testing.T) (http.Handler, *archive.Archiver) {
	t.Helper()

	log := logger.NewNoOp()
	holder := scheduler.NewSnapshotHolder()
	archiver := archive.New(log, relay.NewMemoryStore())

	sched := scheduler.New(
		log,
		scheduler.Config{
			MaxSettleRetries: 2,
			TimingOverrides: map[string]scheduler.Timing{
				"chatgpt": {Debounce: 10 * time.Millisecond, Settle: 10 * time.Millisecond},
			},
		},
		pipeline.New(log),
		holder,
		[]target.Strategy{target.Guarded(log, chatgpt.New(log))},
		archiver.Consume,
		archiver.Reset,
	)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, sched.Start(ctx))
	t.Cleanup(func() {
		sched.Stop()
		cancel()
	})

	router := api.SetupRouter(log, api.NewIngestHandler(log, holder, sched, archiver))
	return router, archiver
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	encoded, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(encoded)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	handler, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestPostSnapshotSchedulesScan(t *testing.T) {
	t.Parallel()

	handler, archiver := newTestServer(t)

	w := postJSON(t, handler, "/v1/snapshots", api.SnapshotRequest{
		URL:  "https://chatgpt.com/c/abc",
		HTML: snapshotHTML,
	})
	assert.Equal(t, http.StatusAccepted, w.Code)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(archiver.Latest().Records) == 2 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.Len(t, archiver.Latest().Records, 2)
	assert.Equal(t, "/c/abc", archiver.Latest().ConversationKey)
}

func TestPostSnapshotRejectsBadPayload(t *testing.T) {
	t.Parallel()

	handler, _ := newTestServer(t)

	w := postJSON(t, handler, "/v1/snapshots", map[string]string{"url": "https://chatgpt.com/c/abc"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostNavigation(t *testing.T) {
	t.Parallel()

	handler, _ := newTestServer(t)

	w := postJSON(t, handler, "/v1/navigation", api.NavigationRequest{
		URL: "https://chatgpt.com/c/abc",
	})
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestPostNavigationRejectsMissingURL(t *testing.T) {
	t.Parallel()

	handler, _ := newTestServer(t)

	w := postJSON(t, handler, "/v1/navigation", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetMessages(t *testing.T) {
	t.Parallel()

	handler, archiver := newTestServer(t)

	postJSON(t, handler, "/v1/snapshots", api.SnapshotRequest{
		URL:  "https://chatgpt.com/c/abc",
		HTML: snapshotHTML,
	})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(archiver.Latest().Records) == 2 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/messages", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		Target          string `json:"target"`
		ConversationKey string `json:"conversation_key"`
		Messages        []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))

	assert.Equal(t, "chatgpt", payload.Target)
	assert.Equal(t, "/c/abc", payload.ConversationKey)
	require.Len(t, payload.Messages, 2)
	assert.Equal(t, "user", payload.Messages[0].Role)
	assert.Equal(t, "ping", payload.Messages[0].Content)
}
