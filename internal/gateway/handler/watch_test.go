package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmadnish/lets-vibe/internal/runlog"
)

func TestHandleWatch_ReplaysThenStreams(t *testing.T) {
	runLog := runlog.New()
	runLog.Append("run-1", "analysis", "replayed line")

	h := NewWatchHandler(runLog)
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWatch))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "?run_id=run-1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var replayed runlog.Event
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&replayed))
	assert.Equal(t, "replayed line", replayed.Message)
	assert.Equal(t, "analysis", replayed.Phase)

	runLog.Append("run-1", "generation", "live line")
	var live runlog.Event
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&live))
	assert.Equal(t, "live line", live.Message)
}

func TestHandleWatch_RequiresRunID(t *testing.T) {
	h := NewWatchHandler(runlog.New())
	req := httptest.NewRequest(http.MethodGet, "/api/runs/watch", nil)
	rec := httptest.NewRecorder()
	h.HandleWatch(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "run_id is required")
}
