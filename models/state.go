package models

// DeliveryState tracks an outgoing message through the dual-path send flow.
type DeliveryState int

const (
	// DeliveryPending: optimistically inserted, awaiting confirmation from
	// whichever path was used.
	DeliveryPending DeliveryState = iota
	// DeliveryConfirmed: matched with the authoritative echo or HTTP response.
	DeliveryConfirmed
	// DeliveryFailed: the send attempt errored; the text was handed back to
	// the compose input for retry.
	DeliveryFailed
)

func (s DeliveryState) String() string {
	switch s {
	case DeliveryPending:
		return "pending"
	case DeliveryConfirmed:
		return "confirmed"
	case DeliveryFailed:
		return "failed"
	}
	return "unknown"
}

// ConnectionState is the lifecycle of one push-channel connection.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateOpen
	StateClosed
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// CanTransition reports whether moving from s to next is a legal lifecycle
// step. Reconnection happens only through an explicit connect, which is why
// closed may step back to connecting.
func (s ConnectionState) CanTransition(next ConnectionState) bool {
	switch s {
	case StateDisconnected:
		return next == StateConnecting
	case StateConnecting:
		return next == StateOpen || next == StateClosed
	case StateOpen:
		return next == StateClosed
	case StateClosed:
		return next == StateConnecting
	}
	return false
}

// EscalationPhase is the channel-engagement eligibility machine for a
// conversation: not-escalated -> escalated-unassigned ->
// escalated-assigned -> resolved.
type EscalationPhase int

const (
	PhaseBotOnly EscalationPhase = iota
	PhaseEscalatedUnassigned
	PhaseEscalatedAssigned
	PhaseResolved
)

func (p EscalationPhase) String() string {
	switch p {
	case PhaseBotOnly:
		return "not-escalated"
	case PhaseEscalatedUnassigned:
		return "escalated-unassigned"
	case PhaseEscalatedAssigned:
		return "escalated-assigned"
	case PhaseResolved:
		return "resolved"
	}
	return "unknown"
}
