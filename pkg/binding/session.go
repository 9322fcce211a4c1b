// Package binding wires the realtime core to its two consumers: the
// student-facing view and the agent-facing view. The two differ only in
// which side of the transcript is "self" and in the case-management actions
// available; the transcript, channel and send machinery underneath are
// identical.
package binding

import (
	"context"
	"log"
	"sync"
	"time"

	"UniChat/models"
	"UniChat/pkg/api"
	"UniChat/pkg/send"
	"UniChat/pkg/transcript"
)

// LiveChannel is the transport surface a session drives. Implemented by
// *transport.Channel.
type LiveChannel interface {
	Connect(conversationID string, selfRole models.Role, userID string)
	Disconnect()
	State() models.ConnectionState
	Send(content string) bool
	OnMessage(func(models.Message))
	Err() error
}

// Config assembles a session for one displayed conversation.
type Config struct {
	ConversationID string
	SelfRole       models.Role
	UserID         string
	API            *api.Client
	Channel        LiveChannel
	SelfEchoWindow time.Duration
	// eligibleFor decides, per phase, whether this role may hold an open
	// channel. Set by the role binding constructors.
	eligibleFor func(models.EscalationPhase) bool

	// OnMessage fires after a pushed message changed the transcript (render
	// hook). OnRestore/OnNotice are forwarded to the send coordinator.
	// OnDowngrade fires once when live transport is lost and sends silently
	// degrade to the fallback path.
	OnMessage   func(models.Message)
	OnRestore   func(string)
	OnNotice    func(string)
	OnDowngrade func(error)
}

// Session owns the transcript, channel and coordinator for the single
// conversation currently displayed. Exactly one session is live per role; its
// transcript is never shared with another session.
type Session struct {
	cfg   Config
	trans *transcript.Transcript
	coord *send.Coordinator

	mu       sync.Mutex
	phase    models.EscalationPhase
	eligible bool
	started  bool
	notified bool // downgrade notice shown
}

func newSession(cfg Config) *Session {
	if cfg.SelfEchoWindow <= 0 {
		cfg.SelfEchoWindow = time.Second
	}
	s := &Session{
		cfg:   cfg,
		trans: transcript.New(cfg.SelfRole, cfg.SelfEchoWindow),
	}
	s.coord = send.New(send.Config{
		ConversationID: cfg.ConversationID,
		SelfRole:       cfg.SelfRole,
		UserID:         cfg.UserID,
		Transcript:     s.trans,
		Channel:        cfg.Channel,
		Fallback:       cfg.API,
		OnRestore:      cfg.OnRestore,
		OnNotice:       cfg.OnNotice,
	})
	if cfg.Channel != nil {
		cfg.Channel.OnMessage(s.applyIncoming)
	}
	return s
}

// Start seeds the transcript from the history fetch and reads the initial
// escalation status. Live frames are only applied after the seed, so the
// transcript starts from the authoritative baseline.
func (s *Session) Start(ctx context.Context) error {
	history, err := s.cfg.API.History(ctx, s.cfg.ConversationID)
	if err != nil {
		return err
	}
	s.trans.Seed(history)

	st, err := s.cfg.API.EscalationStatus(ctx, s.cfg.ConversationID)
	if err != nil {
		return err
	}
	s.ApplyStatus(st)

	s.mu.Lock()
	s.started = true
	s.mu.Unlock()
	return nil
}

// ApplyStatus feeds a fresh escalation status into the phase machine. The
// session reacts to transitions of the eligibility flag by connecting or
// disconnecting; it never polls the flag itself.
func (s *Session) ApplyStatus(st api.EscalationStatus) {
	next := st.Phase()

	s.mu.Lock()
	prev := s.phase
	if next != prev {
		log.Printf("[session] %s: phase %s -> %s", shortID(s.cfg.ConversationID), prev, next)
		s.phase = next
	}
	wantEligible := s.cfg.eligibleFor != nil && s.cfg.eligibleFor(next)
	changed := wantEligible != s.eligible
	s.eligible = wantEligible
	s.mu.Unlock()

	if changed {
		s.setEngaged(wantEligible)
	}
}

// Phase returns the current engagement phase.
func (s *Session) Phase() models.EscalationPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Submit sends one composed message through the dual-path coordinator.
func (s *Session) Submit(ctx context.Context, content string) {
	s.coord.Submit(ctx, content)
	s.noteDowngrade()
}

// Coordinator exposes the send coordinator (image sends go through it
// directly).
func (s *Session) Coordinator() *send.Coordinator {
	return s.coord
}

// Transcript returns the display-ordered message snapshot.
func (s *Session) Transcript() []models.Message {
	return s.trans.Snapshot()
}

// Live reports whether the push channel is currently open.
func (s *Session) Live() bool {
	return s.cfg.Channel != nil && s.cfg.Channel.State() == models.StateOpen
}

// Close releases the channel. Safe on every teardown path.
func (s *Session) Close() {
	if s.cfg.Channel != nil {
		s.cfg.Channel.Disconnect()
	}
}

func (s *Session) setEngaged(engage bool) {
	if s.cfg.Channel == nil {
		return
	}
	if engage {
		s.mu.Lock()
		s.notified = false
		s.mu.Unlock()
		s.cfg.Channel.Connect(s.cfg.ConversationID, s.cfg.SelfRole, s.cfg.UserID)
		if err := s.cfg.Channel.Err(); err != nil {
			// degraded to fallback-only; sends still work over REST
			s.noteDowngrade()
		}
	} else {
		s.cfg.Channel.Disconnect()
	}
}

func (s *Session) applyIncoming(m models.Message) {
	// frames for a different conversation never reach this point (the channel
	// drops stale-generation frames), but the id check is cheap
	if m.ConversationID != "" && m.ConversationID != s.cfg.ConversationID {
		log.Printf("[session] dropping frame for foreign conversation %s", shortID(m.ConversationID))
		return
	}
	if s.trans.ApplyIncoming(m) && s.cfg.OnMessage != nil {
		s.cfg.OnMessage(m)
	}
}

// noteDowngrade surfaces the "live connection lost" condition once per
// engagement instead of leaving it in the logs only.
func (s *Session) noteDowngrade() {
	if s.cfg.Channel == nil || s.cfg.OnDowngrade == nil {
		return
	}
	err := s.cfg.Channel.Err()
	if err == nil {
		return
	}
	s.mu.Lock()
	if s.notified || !s.eligible {
		s.mu.Unlock()
		return
	}
	s.notified = true
	s.mu.Unlock()
	s.cfg.OnDowngrade(err)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
