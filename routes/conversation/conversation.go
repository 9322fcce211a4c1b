package conversation

import (
	"UniChat/controllers"
	"UniChat/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Register(g *gin.RouterGroup, db *gorm.DB) {
	g.POST("/conversations", controllers.CreateConversation(db))
	g.GET("/conversations/:conversation_id/messages", controllers.GetMessages(db))
	g.POST("/conversations/:conversation_id/messages", middleware.RateLimit(), controllers.PostMessage(db))
	g.POST("/conversations/:conversation_id/images", middleware.RateLimit(), controllers.UploadImageMessage(db))
	g.GET("/conversations/:conversation_id/escalation-status", controllers.EscalationStatus(db))
	g.POST("/conversations/:conversation_id/escalate", controllers.Escalate(db))
}
