package middleware

import (
	"UniChat/pkg/config"
	tokenstore "UniChat/pkg/token"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ContextUserIDKey = "current_user_id"
	ContextRoleKey   = "current_user_role"
	ContextJTIKey    = "current_jti"
)

// AuthMiddleware validates the bearer session token the stub issued and puts
// the identity (id + account role) on the request context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "missing authorization header"})
			return
		}
		parts := strings.Fields(auth)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "invalid authorization header"})
			return
		}

		claims, err := ParseSessionToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": err.Error()})
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextRoleKey, claims.Role)
		c.Set(ContextJTIKey, claims.JTI)
		c.Next()
	}
}

// RequireRole gates a route group to one account role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got, _ := c.Get(ContextRoleKey)
		if got != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"msg": "insufficient role"})
			return
		}
		c.Next()
	}
}

// SessionClaims is the decoded identity of a stub session token.
type SessionClaims struct {
	UserID string
	Role   string
	JTI    string
}

// ParseSessionToken validates a JWT and extracts the session claims. Shared
// by the HTTP middleware and the websocket handler (which authenticates via
// ?token= query because browsers cannot set headers on ws dials).
func ParseSessionToken(tokenStr string) (SessionClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		// only accept HMAC signing
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return []byte(config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return SessionClaims{}, errInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return SessionClaims{}, errInvalidToken
	}

	jti, _ := claims["jti"].(string)
	if tokenstore.IsRevoked(jti) {
		return SessionClaims{}, errRevokedToken
	}

	var userID string
	if sub, ok := claims["sub"].(string); ok {
		userID = sub
	} else if subf, ok := claims["sub"].(float64); ok {
		// jwt lib may parse numeric as float64
		userID = strconv.Itoa(int(subf))
	}
	if userID == "" {
		return SessionClaims{}, errInvalidToken
	}

	role, _ := claims["role"].(string)
	return SessionClaims{UserID: userID, Role: role, JTI: jti}, nil
}
