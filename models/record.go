package models

import "time"

// Persistence records for the stub backend (cmd/stubserver). Ids are uuid
// strings so the stub hands out the same opaque id format the real backend
// does; a client provisional id can therefore never collide with them.

type StoredConversation struct {
	ID        string `gorm:"primaryKey;size:40"`
	UserID    uint   `gorm:"index;not null"`
	Title     string `gorm:"size:200"`
	Status    string `gorm:"size:20;not null;default:bot"` // bot | escalated | resolved
	AgentID   *uint  `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Messages  []StoredMessage `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
}

const (
	ConversationStatusBot       = "bot"
	ConversationStatusEscalated = "escalated"
	ConversationStatusResolved  = "resolved"
)

type StoredMessage struct {
	ID             string `gorm:"primaryKey;size:40"`
	ConversationID string `gorm:"index;not null;size:40"`
	Role           string `gorm:"size:20;not null"` // "user" or "assistant"
	Content        string `gorm:"type:text"`
	ImageURL       string `gorm:"size:500"`
	ResponseType   string `gorm:"size:20"` // text | live_chat | image
	Timestamp      time.Time
}
