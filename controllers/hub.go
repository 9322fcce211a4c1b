package controllers

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// hub tracks the open websocket connections per conversation room. Both the
// ws handler and the REST send path broadcast through it, so messages reach
// the other party no matter which path carried them in.
type hub struct {
	mu    sync.Mutex
	rooms map[string]map[*websocket.Conn]bool
}

func newHub() *hub {
	return &hub{rooms: map[string]map[*websocket.Conn]bool{}}
}

// rooms is process-wide, like the upgrader: one stub process, one hub.
var chatRooms = newHub()

func (h *hub) join(conversationID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[conversationID] == nil {
		h.rooms[conversationID] = map[*websocket.Conn]bool{}
	}
	h.rooms[conversationID][conn] = true
	log.Printf("[stub-ws] joined conversation %s (%d connected)", shortID(conversationID), len(h.rooms[conversationID]))
}

func (h *hub) leave(conversationID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if room := h.rooms[conversationID]; room != nil {
		delete(room, conn)
		if len(room) == 0 {
			delete(h.rooms, conversationID)
		}
	}
	log.Printf("[stub-ws] left conversation %s", shortID(conversationID))
}

// broadcast sends payload to every connection in the room except exclude.
// Dead connections are dropped from the room.
func (h *hub) broadcast(conversationID string, payload any, exclude *websocket.Conn) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.rooms[conversationID]))
	for conn := range h.rooms[conversationID] {
		if conn != exclude {
			conns = append(conns, conn)
		}
	}
	h.mu.Unlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(payload); err != nil {
			log.Printf("[stub-ws] broadcast write failed: %v", err)
			h.leave(conversationID, conn)
			_ = conn.Close()
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
