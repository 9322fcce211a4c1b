package faq

import (
	"UniChat/controllers"

	"github.com/gin-gonic/gin"
)

func Register(g *gin.RouterGroup) {
	g.GET("/faq/list-questions", controllers.ListFAQQuestions())
}
