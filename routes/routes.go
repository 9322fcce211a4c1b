package routes

import (
	"UniChat/middleware"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	authRoutes "UniChat/routes/auth"
	convRoutes "UniChat/routes/conversation"
	escalationRoutes "UniChat/routes/escalation"
	faqRoutes "UniChat/routes/faq"
	uploadsRoutes "UniChat/routes/uploads"
	websocketRoutes "UniChat/routes/websocket"
)

// RegisterRoutes wires the stub backend surface: the contract the realtime
// client depends on, and nothing more.
func RegisterRoutes(r *gin.Engine, db *gorm.DB) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "UniChat stub backend running"})
	})

	uploadsRoutes.Register(r)
	websocketRoutes.Register(r, db)
	authRoutes.RegisterPublic(r, db)

	protected := r.Group("/")
	protected.Use(middleware.AuthMiddleware())
	authRoutes.RegisterProtected(protected, db)
	convRoutes.Register(protected, db)
	escalationRoutes.Register(protected, db)
	faqRoutes.Register(protected)
}
