package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/AnshRaj112/inkwell-backend/internal/logger"
	"github.com/AnshRaj112/inkwell-backend/internal/services"
	"github.com/AnshRaj112/inkwell-backend/pkg/utils"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 90 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is enforced at the HTTP layer and the socket needs a session token anyway.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Snapshot is pushed on connect and after every change. It always carries the full
// current list; clients replace what they show.
type Snapshot struct {
	Type        string              `json:"type"`
	Topic       string              `json:"topic"`
	Month       *services.MonthView `json:"month,omitempty"`
	Collections interface{}         `json:"collections,omitempty"`
	Error       string              `json:"error,omitempty"`
}

// Subscribe upgrades to a WebSocket that streams snapshots of one topic.
// topic=entries follows one month (month/year/day/tz as in ListEntries); topic=collections
// follows the user's collections. Closing the socket unsubscribes.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)
	topic := r.URL.Query().Get("topic")
	if topic != services.TopicEntries && topic != services.TopicCollections {
		writeError(w, r, &utils.ValidationError{Field: "topic", Message: "topic must be entries or collections"})
		return
	}

	var q services.MonthQuery
	if topic == services.TopicEntries {
		var err error
		if q, err = h.monthQuery(r); err != nil {
			writeError(w, r, err)
			return
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	events, unsubscribe := h.Hub.Subscribe(userID, topic)
	defer unsubscribe()

	go readUntilClosed(conn, cancel)

	snapshot := func() Snapshot {
		snap := Snapshot{Type: "snapshot", Topic: topic}
		var err error
		if topic == services.TopicEntries {
			snap.Month, err = h.Entries.Month(ctx, userID, q)
		} else {
			snap.Collections, err = h.Collections.List(ctx, userID)
		}
		if err != nil {
			logger.WithUser(userID).WithError(err).Warn("ws: snapshot query failed")
			return Snapshot{Type: "error", Topic: topic, Error: "failed to load " + topic}
		}
		return snap
	}

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	if !writeSnapshot(conn, snapshot()) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-events:
			if !writeSnapshot(conn, snapshot()) {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeSnapshot(conn *websocket.Conn, snap Snapshot) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(snap) == nil
}

// readUntilClosed drains client frames so pongs and close frames are processed,
// and cancels once the client goes away.
func readUntilClosed(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(4 * 1024)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
