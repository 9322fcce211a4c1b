package controllers

import (
	"UniChat/middleware"
	"UniChat/models"
	"UniChat/pkg/bot"
	"UniChat/pkg/cache"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func currentUserID(c *gin.Context) uint {
	raw, _ := c.Get(middleware.ContextUserIDKey)
	s, _ := raw.(string)
	uid, _ := strconv.Atoi(s)
	return uint(uid)
}

func currentRole(c *gin.Context) string {
	raw, _ := c.Get(middleware.ContextRoleKey)
	s, _ := raw.(string)
	return s
}

// senderRole maps an account role onto the message role: agents (and the
// bot) render on the assistant side, students on the user side.
func senderRole(accountRole string) string {
	if accountRole == "agent" || accountRole == "admin" {
		return string(models.RoleAssistant)
	}
	return string(models.RoleStudent)
}

// CreateConversation opens a fresh conversation seeded with the bot greeting.
func CreateConversation(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := currentUserID(c)
		conv := models.StoredConversation{
			ID:     uuid.NewString(),
			UserID: uid,
			Title:  "Support chat",
			Status: models.ConversationStatusBot,
		}
		if err := db.Create(&conv).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to create conversation"})
			return
		}

		welcome := models.StoredMessage{
			ID:             uuid.NewString(),
			ConversationID: conv.ID,
			Role:           string(models.RoleAssistant),
			Content:        greeting(),
			ResponseType:   "text",
			Timestamp:      time.Now().UTC(),
		}
		if err := db.Create(&welcome).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to save greeting"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"id": conv.ID, "title": conv.Title, "status": conv.Status})
	}
}

// GetMessages returns the ordered message history of a conversation. This is
// the seed the client consumes once at view-mount before any live frames.
func GetMessages(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		convID := c.Param("conversation_id")
		var msgs []models.StoredMessage
		if err := db.Where("conversation_id = ?", convID).
			Order("timestamp asc").Find(&msgs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "db error"})
			return
		}
		out := make([]gin.H, 0, len(msgs))
		for _, m := range msgs {
			out = append(out, messageJSON(m))
		}
		c.JSON(http.StatusOK, out)
	}
}

// PostMessage is the REST fallback send. It persists the message, returns the
// authoritative record, and broadcasts it into the ws room so both delivery
// paths converge on the same live view. In the bot phase it also produces the
// bot's answer (and may escalate the conversation).
func PostMessage(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		convID := c.Param("conversation_id")
		var conv models.StoredConversation
		if err := db.First(&conv, "id = ?", convID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"msg": "conversation not found"})
			return
		}

		var body struct {
			Content string `json:"content"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Content) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "content is required"})
			return
		}

		role := senderRole(currentRole(c))
		msg := models.StoredMessage{
			ID:             uuid.NewString(),
			ConversationID: conv.ID,
			Role:           role,
			Content:        strings.TrimSpace(body.Content),
			ResponseType:   "text",
			Timestamp:      time.Now().UTC(),
		}
		if conv.Status == models.ConversationStatusEscalated {
			msg.ResponseType = "live_chat"
		}
		if err := db.Create(&msg).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to save message"})
			return
		}
		chatRooms.broadcast(conv.ID, gin.H{"type": "message", "message": messageJSON(msg)}, nil)

		// bot phase: answer locally, maybe escalate
		if conv.Status == models.ConversationStatusBot && role == string(models.RoleStudent) {
			reply, escalate := bot.Reply(msg.Content, bot.Catalog())
			if escalate {
				conv.Status = models.ConversationStatusEscalated
				if err := db.Save(&conv).Error; err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to escalate"})
					return
				}
				statusCache().Delete(statusKey(conv.ID))
			}
			if reply != "" {
				botMsg := models.StoredMessage{
					ID:             uuid.NewString(),
					ConversationID: conv.ID,
					Role:           string(models.RoleAssistant),
					Content:        reply,
					ResponseType:   "text",
					Timestamp:      time.Now().UTC(),
				}
				_ = db.Create(&botMsg).Error
				chatRooms.broadcast(conv.ID, gin.H{"type": "message", "message": messageJSON(botMsg)}, nil)
			}
		}

		c.JSON(http.StatusCreated, messageJSON(msg))
	}
}

// EscalationStatus reports the live-transport eligibility flags. Cached
// briefly: every open view polls this every few seconds.
func EscalationStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		convID := c.Param("conversation_id")
		if v, ok := statusCache().Get(statusKey(convID)); ok {
			c.JSON(http.StatusOK, v)
			return
		}

		var conv models.StoredConversation
		if err := db.First(&conv, "id = ?", convID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"msg": "conversation not found"})
			return
		}
		payload := gin.H{
			"escalated":    conv.Status == models.ConversationStatusEscalated,
			"agent_active": conv.Status == models.ConversationStatusEscalated && conv.AgentID != nil,
			"resolved":     conv.Status == models.ConversationStatusResolved,
		}
		statusCache().Set(statusKey(convID), payload, 2*time.Second)
		c.JSON(http.StatusOK, payload)
	}
}

// Escalate flips a bot conversation into the escalated-unassigned phase.
func Escalate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		convID := c.Param("conversation_id")
		var conv models.StoredConversation
		if err := db.First(&conv, "id = ?", convID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"msg": "conversation not found"})
			return
		}
		if conv.Status == models.ConversationStatusResolved {
			c.JSON(http.StatusConflict, gin.H{"msg": "conversation already resolved"})
			return
		}
		conv.Status = models.ConversationStatusEscalated
		if err := db.Save(&conv).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to escalate"})
			return
		}
		statusCache().Delete(statusKey(convID))
		c.JSON(http.StatusOK, gin.H{"msg": "escalated"})
	}
}

func statusCache() *cache.Cache { return cache.Default() }

func statusKey(conversationID string) string {
	return cache.KeyFromStrings("escalation-status", conversationID)
}

func greeting() string {
	key := cache.KeyFromStrings("bot-greeting")
	if v, ok := statusCache().Get(key); ok {
		if s, ok2 := v.(string); ok2 {
			return s
		}
	}
	g := bot.Greeting(bot.Catalog())
	statusCache().Set(key, g, 10*time.Minute)
	return g
}
