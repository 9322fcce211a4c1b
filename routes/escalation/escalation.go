package escalation

import (
	"UniChat/controllers"
	"UniChat/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Agent-side case management.
func Register(g *gin.RouterGroup, db *gorm.DB) {
	agent := g.Group("/agent")
	agent.Use(middleware.RequireRole("agent"))
	agent.GET("/requests", controllers.PendingRequests(db))
	agent.POST("/requests/:conversation_id/take", controllers.TakeCase(db))
	agent.POST("/conversations/:conversation_id/resolve", controllers.ResolveCase(db))
}
