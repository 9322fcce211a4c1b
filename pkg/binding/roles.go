package binding

import (
	"context"

	"UniChat/models"
	"UniChat/pkg/api"
)

// StudentBinding is the student-facing view: "self" is the student side, and
// live transport is engaged as soon as the conversation is marked escalated.
type StudentBinding struct {
	*Session
}

// NewStudent builds the student view over the shared core.
func NewStudent(cfg Config) *StudentBinding {
	cfg.SelfRole = models.RoleStudent
	cfg.eligibleFor = func(p models.EscalationPhase) bool {
		return p == models.PhaseEscalatedUnassigned || p == models.PhaseEscalatedAssigned
	}
	return &StudentBinding{Session: newSession(cfg)}
}

// RequestAgent escalates the conversation to human handling. A pure REST
// call; the channel engages once the status watcher observes the new phase.
func (b *StudentBinding) RequestAgent(ctx context.Context) error {
	if err := b.cfg.API.Escalate(ctx, b.cfg.ConversationID); err != nil {
		return err
	}
	st, err := b.cfg.API.EscalationStatus(ctx, b.cfg.ConversationID)
	if err != nil {
		return err
	}
	b.ApplyStatus(st)
	return nil
}

// AgentBinding is the agent-facing view: "self" renders on the assistant
// side, and live transport is engaged only while the case is actively
// assigned.
type AgentBinding struct {
	*Session
}

// NewAgent builds the agent view over the shared core.
func NewAgent(cfg Config) *AgentBinding {
	cfg.SelfRole = models.RoleAssistant
	cfg.eligibleFor = func(p models.EscalationPhase) bool {
		return p == models.PhaseEscalatedAssigned
	}
	return &AgentBinding{Session: newSession(cfg)}
}

// Take assigns the pending case to this agent and engages the channel.
func (b *AgentBinding) Take(ctx context.Context) error {
	if err := b.cfg.API.TakeCase(ctx, b.cfg.ConversationID); err != nil {
		return err
	}
	b.ApplyStatus(api.EscalationStatus{Escalated: true, AgentActive: true})
	return nil
}

// Resolve closes the case and releases the channel.
func (b *AgentBinding) Resolve(ctx context.Context) error {
	if err := b.cfg.API.ResolveCase(ctx, b.cfg.ConversationID); err != nil {
		return err
	}
	b.ApplyStatus(api.EscalationStatus{Resolved: true})
	return nil
}
