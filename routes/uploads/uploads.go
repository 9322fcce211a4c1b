package uploads

import "github.com/gin-gonic/gin"

// Register serves the uploaded chat images statically.
func Register(r *gin.Engine) {
	r.Static("/uploads", "./uploads")
}
