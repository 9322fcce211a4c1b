package controllers

import (
	"UniChat/pkg/bot"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListFAQQuestions serves the quick-solution questions shown in the welcome
// message.
func ListFAQQuestions() gin.HandlerFunc {
	return func(c *gin.Context) {
		faqs := bot.Catalog()
		questions := make([]gin.H, 0, len(faqs))
		for _, f := range faqs {
			questions = append(questions, gin.H{"id": f.ID, "question": f.Question})
		}
		c.JSON(http.StatusOK, gin.H{"questions": questions})
	}
}
