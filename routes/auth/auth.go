package auth

import (
	"UniChat/controllers"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func RegisterPublic(r *gin.Engine, db *gorm.DB) {
	r.POST("/auth/login", controllers.Login(db))
}

func RegisterProtected(g *gin.RouterGroup, db *gorm.DB) {
	g.GET("/auth/me", controllers.Me(db))
	g.POST("/auth/logout", controllers.Logout())
}
