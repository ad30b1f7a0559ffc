package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ahmadnish/lets-vibe/internal/runlog"
)

const (
	watchWSWriteWait = 10 * time.Second
	watchWSPongWait  = 60 * time.Second
	watchWSPingEvery = (watchWSPongWait * 9) / 10
)

var watchWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// WatchHandler streams a run's log events over a websocket. Already-recorded
// events are replayed first, then live events follow as phases progress.
type WatchHandler struct {
	runLog *runlog.Log
}

func NewWatchHandler(runLog *runlog.Log) *WatchHandler {
	return &WatchHandler{runLog: runLog}
}

func (h *WatchHandler) HandleWatch(w http.ResponseWriter, r *http.Request) {
	runID := strings.TrimSpace(r.URL.Query().Get("run_id"))
	if runID == "" {
		http.Error(w, "run_id is required", http.StatusBadRequest)
		return
	}

	conn, err := watchWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	events, unsubscribe := h.runLog.Subscribe(runID)
	defer unsubscribe()

	if err := conn.SetReadDeadline(time.Now().Add(watchWSPongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(watchWSPongWait))
	})

	// Drain reads so pongs and close frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				_ = conn.Close()
				return
			}
		}
	}()

	for _, evt := range h.runLog.Events(runID) {
		if !writeEvent(conn, evt) {
			return
		}
	}

	ticker := time.NewTicker(watchWSPingEvery)
	defer ticker.Stop()
	for {
		select {
		case evt, ok := <-events:
			if !ok {
				return
			}
			if !writeEvent(conn, evt) {
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(watchWSWriteWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}

func writeEvent(conn *websocket.Conn, evt runlog.Event) bool {
	if err := conn.SetWriteDeadline(time.Now().Add(watchWSWriteWait)); err != nil {
		return false
	}
	return conn.WriteJSON(evt) == nil
}
