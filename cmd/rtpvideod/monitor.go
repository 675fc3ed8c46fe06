package main

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/buldo/rtp-receiver/internal/logging"
)

var monitorLog = logging.DefaultLogger.WithTag("monitor")

// frameEvent is the JSON payload pushed to connected monitor clients each
// time a frame is reassembled.
type frameEvent struct {
	StreamSSRC uint32 `json:"stream_ssrc"`
	Codec      string `json:"codec"`
	Timestamp  uint32 `json:"timestamp"`
	Bytes      int    `json:"bytes"`
	KeyFrame   bool   `json:"key_frame"`
}

// monitorHub is a minimal websocket broadcaster: every connected client
// receives every frameEvent. It does not replay history to late joiners.
type monitorHub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func newMonitorHub() *monitorHub {
	return &monitorHub{
		clients: make(map[*websocket.Conn]bool),
	}
}

func (h *monitorHub) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		monitorLog.Warn("monitor: upgrade failed: %v", err)
		return
	}

	h.mu.Lock()
	h.clients[ws] = true
	h.mu.Unlock()

	monitorLog.Info("monitor: client connected (%s)", r.RemoteAddr)

	// Drain and discard whatever the client sends; we only care about the
	// connection closing.
	go func() {
		defer h.remove(ws)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *monitorHub) remove(ws *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, ws)
	h.mu.Unlock()
	ws.Close()
}

func (h *monitorHub) broadcast(ev frameEvent) {
	body, err := json.Marshal(ev)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ws := range h.clients {
		ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := ws.WriteMessage(websocket.TextMessage, body); err != nil {
			monitorLog.Debug("monitor: dropping client: %v", err)
			delete(h.clients, ws)
			ws.Close()
		}
	}
}
