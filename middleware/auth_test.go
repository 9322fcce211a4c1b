package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"UniChat/pkg/config"
	tokenstore "UniChat/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func sessionToken(t *testing.T, sub any, role string) (string, string) {
	t.Helper()
	jti := uuid.NewString()
	return signToken(t, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"jti":  jti,
		"exp":  time.Now().Add(time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	}, config.JWTSecret), jti
}

func TestParseSessionToken(t *testing.T) {
	tok, jti := sessionToken(t, "42", "student")
	claims, err := ParseSessionToken(tok)
	if err != nil {
		t.Fatalf("ParseSessionToken: %v", err)
	}
	if claims.UserID != "42" || claims.Role != "student" || claims.JTI != jti {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestParseSessionTokenNumericSub(t *testing.T) {
	tok, _ := sessionToken(t, 42, "agent")
	claims, err := ParseSessionToken(tok)
	if err != nil {
		t.Fatalf("ParseSessionToken: %v", err)
	}
	if claims.UserID != "42" {
		t.Fatalf("numeric sub should normalize to %q, got %q", "42", claims.UserID)
	}
}

func TestParseSessionTokenRejectsBadSignature(t *testing.T) {
	tok := signToken(t, jwt.MapClaims{
		"sub": "42",
		"exp": time.Now().Add(time.Hour).Unix(),
	}, config.JWTSecret+"-wrong")
	if _, err := ParseSessionToken(tok); err == nil {
		t.Fatalf("wrong signing key must be rejected")
	}
}

func TestParseSessionTokenRejectsExpired(t *testing.T) {
	tok, _ := func() (string, string) {
		jti := uuid.NewString()
		return signToken(t, jwt.MapClaims{
			"sub": "42",
			"jti": jti,
			"exp": time.Now().Add(-time.Hour).Unix(),
		}, config.JWTSecret), jti
	}()
	if _, err := ParseSessionToken(tok); err == nil {
		t.Fatalf("expired token must be rejected")
	}
}

func TestParseSessionTokenRejectsRevoked(t *testing.T) {
	tok, jti := sessionToken(t, "42", "student")
	tokenstore.RevokeToken(jti)
	if _, err := ParseSessionToken(tok); err == nil {
		t.Fatalf("revoked token must be rejected")
	}
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthMiddleware(), func(c *gin.Context) {
		uid, _ := c.Get(ContextUserIDKey)
		c.JSON(http.StatusOK, gin.H{"uid": uid})
	})

	// no header
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing header: status %d, want 401", w.Code)
	}

	// malformed header
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("malformed header: status %d, want 401", w.Code)
	}

	// valid token
	tok, _ := sessionToken(t, "7", "student")
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("valid token: status %d, body %s", w.Code, w.Body.String())
	}
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/agent-only", AuthMiddleware(), RequireRole("agent"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	studentTok, _ := sessionToken(t, "7", "student")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/agent-only", nil)
	req.Header.Set("Authorization", "Bearer "+studentTok)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("student on agent route: status %d, want 403", w.Code)
	}

	agentTok, _ := sessionToken(t, "9", "agent")
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/agent-only", nil)
	req.Header.Set("Authorization", "Bearer "+agentTok)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("agent on agent route: status %d, want 200", w.Code)
	}
}

func TestRateLimitExhaustion(t *testing.T) {
	gin.SetMode(gin.TestMode)
	SetRateLimitConfig(time.Hour, 3)
	defer SetRateLimitConfig(10*time.Second, 20)

	r := gin.New()
	r.POST("/limited", func(c *gin.Context) {
		c.Set(ContextUserIDKey, "rl-test-user")
		c.Next()
	}, RateLimit(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/limited", nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status %d, want 200", i+1, w.Code)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/limited", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("over-limit request: status %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("over-limit response should carry Retry-After")
	}
}
