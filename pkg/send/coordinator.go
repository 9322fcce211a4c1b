// Package send decides, per outgoing message, between the push channel and
// the REST fallback, applies the optimistic local insert, and repairs state
// when the authoritative path disagrees.
package send

import (
	"context"
	"io"
	"log"
	"strings"
	"time"

	"UniChat/models"
	"UniChat/pkg/identity"
)

// ChannelSender is the push path as seen by the coordinator.
type ChannelSender interface {
	State() models.ConnectionState
	Send(content string) bool
}

// FallbackSender is the REST path.
type FallbackSender interface {
	SendMessage(ctx context.Context, conversationID, content string) (models.Message, error)
	SendImageMessage(ctx context.Context, conversationID, content, filename string, image io.Reader) (models.Message, error)
}

// Sink is the transcript surface the coordinator mutates.
type Sink interface {
	ApplyOptimistic(models.Message) bool
	Promote(provisionalID string, authoritative models.Message) bool
	MarkFailed(id string) bool
}

// Config wires a coordinator to one conversation view.
type Config struct {
	ConversationID string
	SelfRole       models.Role
	UserID         string
	Transcript     Sink
	Channel        ChannelSender
	Fallback       FallbackSender
	// OnRestore hands the composed text back to the input so the user can
	// retry after a failed send. Composed text is never silently dropped.
	OnRestore func(content string)
	// OnNotice surfaces a recoverable, user-visible error.
	OnNotice func(text string)
}

// Coordinator serializes the dual-path send flow for one conversation.
type Coordinator struct {
	cfg Config
}

// New builds a coordinator. Transcript and Fallback are required; Channel may
// be nil for a view that never engages live transport.
func New(cfg Config) *Coordinator {
	return &Coordinator{cfg: cfg}
}

// Submit sends one user message. The optimistic insert happens synchronously
// before any network call, so the sender sees their own message with zero
// perceived latency no matter which path ends up succeeding.
func (co *Coordinator) Submit(ctx context.Context, content string) {
	// keep the exact composed text: a failed send restores it untrimmed
	composed := content
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}

	prov := co.provisional(content)
	if !co.cfg.Transcript.ApplyOptimistic(prov) {
		// provisional id collided with an existing id; dropped and logged by
		// the transcript, treated like a malformed frame
		return
	}

	if co.cfg.Channel != nil && co.cfg.Channel.State() == models.StateOpen {
		if co.cfg.Channel.Send(content) {
			// the provisional stays pending until the authoritative echo
			// collapses it
			return
		}
		log.Printf("[send] channel refused, falling back to HTTP")
	}

	auth, err := co.cfg.Fallback.SendMessage(ctx, co.cfg.ConversationID, content)
	co.finish(prov, composed, auth, err)
}

// SubmitImage sends a message with a single image attachment. Attachments
// always go over the REST path; the push channel carries text only.
func (co *Coordinator) SubmitImage(ctx context.Context, content, filename string, image io.Reader) {
	composed := content
	content = strings.TrimSpace(content)
	if image == nil {
		co.Submit(ctx, composed)
		return
	}

	prov := co.provisional(content)
	if !co.cfg.Transcript.ApplyOptimistic(prov) {
		return
	}

	auth, err := co.cfg.Fallback.SendImageMessage(ctx, co.cfg.ConversationID, content, filename, image)
	co.finish(prov, composed, auth, err)
}

func (co *Coordinator) provisional(content string) models.Message {
	return models.Message{
		ID:             identity.NewProvisionalID(),
		ConversationID: co.cfg.ConversationID,
		Role:           co.cfg.SelfRole,
		Content:        content,
		Timestamp:      time.Now().UTC(),
		Delivery:       models.DeliveryPending,
	}
}

func (co *Coordinator) finish(prov models.Message, composed string, auth models.Message, err error) {
	if err != nil {
		log.Printf("[send] fallback send failed: %v", err)
		co.cfg.Transcript.MarkFailed(prov.ID)
		if co.cfg.OnRestore != nil {
			co.cfg.OnRestore(composed)
		}
		if co.cfg.OnNotice != nil {
			co.cfg.OnNotice("message could not be sent; your text was restored")
		}
		return
	}
	auth.Delivery = models.DeliveryConfirmed
	co.cfg.Transcript.Promote(prov.ID, auth)
}
