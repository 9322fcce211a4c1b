// stubserver emulates the external support-chat backend contract so the
// realtime client can be exercised end to end in development: REST history,
// fallback send, escalation tickets, and per-conversation websocket rooms.
package main

import (
	"UniChat/middleware"
	"UniChat/models"
	"UniChat/pkg/config"
	"UniChat/routes"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	db, err := gorm.Open(sqlite.Open("stub.db"), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.StoredConversation{}, &models.StoredMessage{}); err != nil {
		log.Fatalf("failed migrate: %v", err)
	}
	seedUsers(db)

	middleware.SetRateLimitConfig(
		time.Duration(config.RateLimitWindowSeconds)*time.Second,
		config.RateLimitCapacity,
	)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, db)
	if err := r.Run(":" + config.Port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

// seedUsers creates one student and one agent account on first run so the
// client can log in immediately.
func seedUsers(db *gorm.DB) {
	var count int64
	db.Model(&models.User{}).Count(&count)
	if count > 0 {
		return
	}
	seeds := []struct {
		email, username, role, password string
	}{
		{"student@example.edu", "student", "student", "student123"},
		{"agent@example.edu", "agent", "agent", "agent123"},
	}
	for _, s := range seeds {
		u := models.User{Email: s.email, Username: s.username, AccountRole: s.role}
		if err := u.SetPassword(s.password); err != nil {
			log.Fatalf("failed to hash seed password: %v", err)
		}
		if err := db.Create(&u).Error; err != nil {
			log.Fatalf("failed to seed user %s: %v", s.email, err)
		}
		log.Printf("[stub] seeded %s account %s", s.role, s.email)
	}
}
