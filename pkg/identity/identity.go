// Package identity normalizes message identity across the three delivery
// paths (history fetch, websocket push, local optimistic insert) and decides
// whether an incoming message duplicates one already known.
package identity

import (
	"strings"
	"time"

	"UniChat/models"

	"github.com/google/uuid"
)

// provisionalPrefix keeps locally generated ids visibly distinct from
// server-assigned ones. The backend assigns bare uuids, so the prefix alone
// already rules out a collision.
const provisionalPrefix = "local-"

// NewProvisionalID returns a high-entropy id for an optimistic insert. It
// must never collide with any plausible server id and must stay unique per
// process, which is why it is a random uuid and not a counter.
func NewProvisionalID() string {
	return provisionalPrefix + uuid.NewString()
}

// IsProvisional reports whether id was generated locally.
func IsProvisional(id string) bool {
	return strings.HasPrefix(id, provisionalPrefix)
}

// DedupeKey returns the stable identity token of a message.
func DedupeKey(m models.Message) string {
	return m.ID
}

// Match classifies how a candidate relates to an existing transcript entry.
type Match int

const (
	MatchNone Match = iota
	// MatchExactID: same id. Covers repeated delivery and the server echo of
	// a message whose authoritative id is already known.
	MatchExactID
	// MatchSelfEcho: different id, but the content+role+time-window heuristic
	// says the candidate is the authoritative copy of a message the local
	// party already inserted optimistically.
	MatchSelfEcho
)

// FindDuplicate scans existing for a duplicate of candidate and returns its
// index and the kind of match.
//
// The heuristic branch only applies when both candidate and the existing
// entry were authored by selfRole (self-echo suppression): the optimistic
// insert and the authoritative echo of the same outgoing message arrive as
// two objects with different ids but identical content. Cross-party messages
// are never collapsed by content, because two legitimate messages can share
// text.
func FindDuplicate(candidate models.Message, existing []models.Message, selfRole models.Role, window time.Duration) (int, Match) {
	for i := range existing {
		if existing[i].ID == candidate.ID {
			return i, MatchExactID
		}
	}
	if candidate.Role != selfRole {
		return -1, MatchNone
	}
	for i := range existing {
		m := existing[i]
		if m.Role != selfRole || m.Content != candidate.Content {
			continue
		}
		if absDuration(candidate.Timestamp.Sub(m.Timestamp)) < window {
			return i, MatchSelfEcho
		}
	}
	return -1, MatchNone
}

// IsDuplicate is the boolean convenience form of FindDuplicate.
func IsDuplicate(candidate models.Message, existing []models.Message, selfRole models.Role, window time.Duration) bool {
	_, match := FindDuplicate(candidate, existing, selfRole, window)
	return match != MatchNone
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
