package transport

import (
	"encoding/json"
	"errors"
	"fmt"

	"UniChat/models"
)

// Wire protocol (JSON frames):
//
//	-> {role, content, user_id}
//	<- {type: "message", message: {id, role, content, timestamp, image_url?}}
//	<- {type: "message_sent", message_id: string}
//	<- {type: "error", message: string}

type outboundFrame struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	UserID  string `json:"user_id"`
}

// inboundFrame keeps "message" raw because the error frame reuses the field
// as a plain string.
type inboundFrame struct {
	Type      string          `json:"type"`
	Message   json.RawMessage `json:"message,omitempty"`
	MessageID string          `json:"message_id,omitempty"`
}

type wireMessage struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id,omitempty"`
	Role           string `json:"role"`
	Content        string `json:"content"`
	ImageURL       string `json:"image_url,omitempty"`
	Timestamp      string `json:"timestamp"`
}

type frameKind int

const (
	frameMessage frameKind = iota
	frameAck
	frameError
	frameMalformed
)

// decodeFrame adapts one raw frame into the canonical message shape. Frames
// that fail to parse or lack required fields come back as frameMalformed.
func decodeFrame(data []byte) (models.Message, frameKind, error) {
	var f inboundFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return models.Message{}, frameMalformed, err
	}
	switch f.Type {
	case "message":
		var wm wireMessage
		if err := json.Unmarshal(f.Message, &wm); err != nil {
			return models.Message{}, frameMalformed, err
		}
		msg, err := wm.toModel()
		if err != nil {
			return models.Message{}, frameMalformed, err
		}
		return msg, frameMessage, nil
	case "message_sent":
		// ack of our own send; informational only
		return models.Message{ID: f.MessageID}, frameAck, nil
	case "error":
		var text string
		_ = json.Unmarshal(f.Message, &text)
		if text == "" {
			text = "unspecified server error"
		}
		return models.Message{}, frameError, errors.New(text)
	default:
		return models.Message{}, frameMalformed, fmt.Errorf("unknown frame type %q", f.Type)
	}
}

func (wm wireMessage) toModel() (models.Message, error) {
	if wm.ID == "" {
		return models.Message{}, errors.New("message frame missing id")
	}
	role := models.Role(wm.Role)
	if !role.Valid() {
		return models.Message{}, fmt.Errorf("message frame has invalid role %q", wm.Role)
	}
	ts, err := models.ParseTimestamp(wm.Timestamp)
	if err != nil {
		return models.Message{}, err
	}
	return models.Message{
		ID:             wm.ID,
		ConversationID: wm.ConversationID,
		Role:           role,
		Content:        wm.Content,
		ImageURL:       wm.ImageURL,
		Timestamp:      ts,
		Delivery:       models.DeliveryConfirmed,
	}, nil
}
