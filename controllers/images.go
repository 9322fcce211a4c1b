package controllers

import (
	"UniChat/models"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const uploadsDir = "uploads"

// UploadImageMessage accepts a multipart message with a single image
// attachment. Content may be empty for an image-only message. Like the text
// path, the stored record is broadcast into the ws room.
func UploadImageMessage(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		convID := c.Param("conversation_id")
		var conv models.StoredConversation
		if err := db.First(&conv, "id = ?", convID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"msg": "conversation not found"})
			return
		}

		file, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "image file is required"})
			return
		}
		content := strings.TrimSpace(c.PostForm("content"))

		if err := os.MkdirAll(uploadsDir, 0o755); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to prepare uploads dir"})
			return
		}
		name := uuid.NewString() + filepath.Ext(file.Filename)
		dst := filepath.Join(uploadsDir, name)
		if err := c.SaveUploadedFile(file, dst); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to store image"})
			return
		}
		imageURL := fmt.Sprintf("/uploads/%s", name)

		msg := models.StoredMessage{
			ID:             uuid.NewString(),
			ConversationID: conv.ID,
			Role:           senderRole(currentRole(c)),
			Content:        content,
			ImageURL:       imageURL,
			ResponseType:   "image",
			Timestamp:      time.Now().UTC(),
		}
		if err := db.Create(&msg).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to save message"})
			return
		}
		chatRooms.broadcast(conv.ID, gin.H{"type": "message", "message": messageJSON(msg)}, nil)

		c.JSON(http.StatusCreated, gin.H{
			"message":   messageJSON(msg),
			"image_url": imageURL,
		})
	}
}
