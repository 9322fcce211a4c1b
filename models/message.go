package models

import (
	"fmt"
	"time"
)

// Role identifies which side of a conversation authored a message. The wire
// protocol uses "user" for the student side; "assistant" covers everything
// rendered on the internal side (bot-authored and agent-authored alike).
// There is no third role.
type Role string

const (
	RoleStudent   Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleAssistant
}

// Other returns the opposite party of a conversation.
func (r Role) Other() Role {
	if r == RoleStudent {
		return RoleAssistant
	}
	return RoleStudent
}

// Message is the single canonical shape every chat utterance takes inside the
// client, no matter where it came from (history fetch, websocket frame, or
// local optimistic insert). Boundary adapters in pkg/api and pkg/transport
// produce it; nothing past those boundaries deals with raw wire records.
type Message struct {
	ID             string
	ConversationID string
	Role           Role
	Content        string
	ImageURL       string
	Timestamp      time.Time
	Delivery       DeliveryState
}

// timestamp layouts the backend is known to emit: RFC3339 (with or without
// fractional seconds) and naive UTC ISO without zone suffix.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// ParseTimestamp parses a backend timestamp string. Naive timestamps are
// interpreted as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// FormatTimestamp renders a timestamp the way the backend does.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
