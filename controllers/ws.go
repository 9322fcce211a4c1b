package controllers

import (
	"UniChat/middleware"
	"UniChat/models"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS handled at HTTP level; allow WS here
		return true
	},
}

// Keepalive: the server pings, the peer's pong refreshes the read deadline.
// An escalated chat can sit quiet far longer than any read timeout, so the
// deadline only exists to reap dead peers, never idle ones. pingPeriod must
// stay below pongWait.
var (
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 40 * time.Second
)

type wsInbound struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	UserID  string `json:"user_id"`
}

// ChatWS is the per-conversation live channel of the stub backend.
// Client protocol (JSON messages):
//
//	-> {role, content, user_id}
//	<- {type: "message", message: {...}}        (other party's messages)
//	<- {type: "message_sent", message_id: id}   (ack of own send)
//	<- {type: "error", message: string}
func ChatWS(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Authenticate via ?token=JWT (ws dials cannot set headers)
		tokenStr := strings.TrimSpace(c.Query("token"))
		if tokenStr == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "missing token query"})
			return
		}
		if _, err := middleware.ParseSessionToken(tokenStr); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": err.Error()})
			return
		}

		convID := c.Param("conversation_id")
		var conv models.StoredConversation
		if err := db.First(&conv, "id = ?", convID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"msg": "conversation not found"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[stub-ws] upgrade error: %v", err)
			return
		}
		defer conn.Close()

		// Setup read limits and pong handler for keepalive
		conn.SetReadLimit(1 << 20) // 1MB
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})

		stop := make(chan struct{})
		defer close(stop)
		go pingLoop(conn, stop)

		chatRooms.join(convID, conn)
		defer chatRooms.leave(convID, conn)

		for {
			_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
				continue
			}

			var in wsInbound
			if err := json.Unmarshal(data, &in); err != nil {
				_ = conn.WriteJSON(gin.H{"type": "error", "message": "invalid frame"})
				continue
			}
			if in.Role == "" || strings.TrimSpace(in.Content) == "" {
				_ = conn.WriteJSON(gin.H{"type": "error", "message": "Missing required fields: role and content"})
				continue
			}
			if !models.Role(in.Role).Valid() {
				_ = conn.WriteJSON(gin.H{"type": "error", "message": "unknown role"})
				continue
			}

			msg := models.StoredMessage{
				ID:             uuid.NewString(),
				ConversationID: convID,
				Role:           in.Role,
				Content:        in.Content,
				ResponseType:   "live_chat",
				Timestamp:      time.Now().UTC(),
			}
			if err := db.Create(&msg).Error; err != nil {
				_ = conn.WriteJSON(gin.H{"type": "error", "message": "failed to save message"})
				continue
			}

			chatRooms.broadcast(convID, gin.H{"type": "message", "message": messageJSON(msg)}, conn)
			_ = conn.WriteJSON(gin.H{"type": "message_sent", "message_id": msg.ID})
		}
	}
}

// pingLoop keeps one connection's read deadline alive while the chat is
// idle. WriteControl is safe alongside the handler's WriteJSON calls.
func pingLoop(conn *websocket.Conn, stop <-chan struct{}) {
	t := time.NewTicker(wsPingPeriod)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}

// messageJSON is the wire shape of one message, shared by ws frames and REST
// responses so both delivery paths hand clients identical records.
func messageJSON(m models.StoredMessage) gin.H {
	return gin.H{
		"id":              m.ID,
		"conversation_id": m.ConversationID,
		"role":            m.Role,
		"content":         m.Content,
		"image_url":       m.ImageURL,
		"response_type":   m.ResponseType,
		"timestamp":       models.FormatTimestamp(m.Timestamp),
	}
}
