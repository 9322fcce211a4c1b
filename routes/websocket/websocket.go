package websocket

import (
	"UniChat/controllers"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Register(r *gin.Engine, db *gorm.DB) {
	r.GET("/ws/chat/:conversation_id", controllers.ChatWS(db))
}
