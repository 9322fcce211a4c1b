package controllers

import (
	"UniChat/models"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PendingRequests lists escalated, unassigned conversations for the agent
// queue, oldest first.
func PendingRequests(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var convs []models.StoredConversation
		if err := db.Where("status = ? AND agent_id IS NULL", models.ConversationStatusEscalated).
			Order("updated_at asc").Find(&convs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "db error"})
			return
		}
		out := make([]gin.H, 0, len(convs))
		for _, conv := range convs {
			out = append(out, gin.H{
				"conversation_id": conv.ID,
				"title":           conv.Title,
				"created_at":      models.FormatTimestamp(conv.CreatedAt),
			})
		}
		c.JSON(http.StatusOK, out)
	}
}

// TakeCase assigns a pending escalation to the requesting agent. Once taken,
// both parties become eligible for live transport.
func TakeCase(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		convID := c.Param("conversation_id")
		agentID := currentUserID(c)

		var conv models.StoredConversation
		if err := db.First(&conv, "id = ?", convID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"msg": "conversation not found"})
			return
		}
		if conv.Status != models.ConversationStatusEscalated {
			c.JSON(http.StatusConflict, gin.H{"msg": "conversation is not escalated"})
			return
		}
		if conv.AgentID != nil && *conv.AgentID != agentID {
			c.JSON(http.StatusConflict, gin.H{"msg": "case already taken"})
			return
		}
		conv.AgentID = &agentID
		if err := db.Save(&conv).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to take case"})
			return
		}
		statusCache().Delete(statusKey(convID))
		c.JSON(http.StatusOK, gin.H{"msg": "case taken"})
	}
}

// ResolveCase closes an escalated conversation. The clients observe the
// resolved phase on their next status poll and release their channels.
func ResolveCase(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		convID := c.Param("conversation_id")
		var conv models.StoredConversation
		if err := db.First(&conv, "id = ?", convID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"msg": "conversation not found"})
			return
		}
		if conv.Status != models.ConversationStatusEscalated {
			c.JSON(http.StatusConflict, gin.H{"msg": "conversation is not escalated"})
			return
		}
		conv.Status = models.ConversationStatusResolved
		if err := db.Save(&conv).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to resolve"})
			return
		}
		statusCache().Delete(statusKey(convID))
		c.JSON(http.StatusOK, gin.H{"msg": "resolved"})
	}
}
