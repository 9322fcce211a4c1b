package controllers

import (
	"UniChat/middleware"
	"UniChat/models"
	"UniChat/pkg/config"
	tokenstore "UniChat/pkg/token"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// The stub emulates the external identity provider: login hands out a signed
// session token carrying the account role, /auth/me resolves it back.

// Login handler
func Login(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid request"})
			return
		}
		email := strings.TrimSpace(strings.ToLower(body.Email))
		if email == "" || body.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Email and password are required"})
			return
		}

		var user models.User
		if err := db.Where("email = ?", email).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "invalid credentials"})
			return
		}
		if !user.CheckPassword(body.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "invalid credentials"})
			return
		}

		jti := uuid.NewString()
		claims := jwt.MapClaims{
			"sub":  strconv.Itoa(int(user.ID)),
			"role": user.AccountRole,
			"jti":  jti,
			"exp":  time.Now().Add(24 * time.Hour).Unix(),
			"iat":  time.Now().Unix(),
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString([]byte(config.JWTSecret))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to sign token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token": signed,
			"user": gin.H{
				"id":       strconv.Itoa(int(user.ID)),
				"username": user.Username,
				"role":     user.AccountRole,
			},
		})
	}
}

// Me resolves the current session to an identity.
func Me(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := currentUserID(c)
		var user models.User
		if err := db.First(&user, uid).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "unknown user"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"id":       strconv.Itoa(int(user.ID)),
			"username": user.Username,
			"role":     user.AccountRole,
		})
	}
}

// Logout revokes the current session token.
func Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		jtiRaw, _ := c.Get(middleware.ContextJTIKey)
		jti, _ := jtiRaw.(string)
		tokenstore.RevokeToken(jti)
		c.JSON(http.StatusOK, gin.H{"msg": "logged out"})
	}
}
