package api

import (
	"errors"

	"UniChat/models"
)

// wireMessage is the REST representation of a message; adapted into the
// canonical shape before it leaves this package.
type wireMessage struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id,omitempty"`
	Role           string `json:"role"`
	Content        string `json:"content"`
	ImageURL       string `json:"image_url,omitempty"`
	ResponseType   string `json:"response_type,omitempty"`
	Timestamp      string `json:"timestamp"`
}

func (wm wireMessage) toModel(conversationID string) (models.Message, error) {
	if wm.ID == "" {
		return models.Message{}, errors.New("message record missing id")
	}
	role := models.Role(wm.Role)
	if !role.Valid() {
		return models.Message{}, errors.New("message record has invalid role")
	}
	ts, err := models.ParseTimestamp(wm.Timestamp)
	if err != nil {
		return models.Message{}, err
	}
	convID := wm.ConversationID
	if convID == "" {
		convID = conversationID
	}
	return models.Message{
		ID:             wm.ID,
		ConversationID: convID,
		Role:           role,
		Content:        wm.Content,
		ImageURL:       wm.ImageURL,
		Timestamp:      ts,
		Delivery:       models.DeliveryConfirmed,
	}, nil
}
