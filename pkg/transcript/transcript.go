// Package transcript holds the ordered, deduplicated message list for the
// active conversation and merges the three delivery paths (history fetch,
// websocket push, optimistic insert) into one consistent view.
package transcript

import (
	"log"
	"sync"
	"time"

	"UniChat/models"
	"UniChat/pkg/identity"
)

type entry struct {
	msg models.Message
	seq uint64 // insertion sequence, tie-break for equal timestamps
}

// Transcript is owned by exactly one conversation view at a time. Mutations
// are synchronous replace-in-place operations; nothing here ever waits on the
// network, so two interleaved callbacks can never tear the sequence.
type Transcript struct {
	mu       sync.Mutex
	selfRole models.Role
	window   time.Duration
	entries  []entry
	nextSeq  uint64
	seeded   bool
}

// New builds an empty transcript. selfRole is the local party; window bounds
// the self-echo collapse heuristic.
func New(selfRole models.Role, window time.Duration) *Transcript {
	return &Transcript{selfRole: selfRole, window: window}
}

// Seed resets the transcript from a history fetch. Each record still funnels
// through the dedupe rules so a sloppy history response cannot introduce
// duplicates.
func (t *Transcript) Seed(history []models.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = t.entries[:0]
	for _, m := range history {
		if m.Delivery == models.DeliveryPending {
			m.Delivery = models.DeliveryConfirmed
		}
		t.applyIncomingLocked(m)
	}
	t.seeded = true
}

// Seeded reports whether the initial history load happened yet. The scroll
// policy treats the first load of a non-empty transcript specially.
func (t *Transcript) Seeded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seeded
}

// ApplyIncoming merges a pushed (or otherwise authoritative) message and
// reports whether the transcript changed.
func (t *Transcript) ApplyIncoming(m models.Message) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.applyIncomingLocked(m)
}

func (t *Transcript) applyIncomingLocked(m models.Message) bool {
	idx, match := identity.FindDuplicate(m, t.snapshotLocked(), t.selfRole, t.window)
	switch match {
	case identity.MatchExactID:
		// repeated delivery; nothing to do
		return false
	case identity.MatchSelfEcho:
		// keep the authoritative copy, preserve the provisional position
		prev := &t.entries[idx]
		prev.msg.ID = m.ID
		prev.msg.Timestamp = m.Timestamp
		if m.ImageURL != "" {
			prev.msg.ImageURL = m.ImageURL
		}
		prev.msg.Delivery = models.DeliveryConfirmed
		return true
	}
	if m.Delivery == models.DeliveryPending {
		m.Delivery = models.DeliveryConfirmed
	}
	t.insertLocked(m)
	return true
}

// ApplyOptimistic inserts a locally composed message before any network call
// is made. A provisional id that collides with an existing id is dropped and
// logged rather than silently overwriting a real message.
func (t *Transcript) ApplyOptimistic(m models.Message) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.entries {
		if t.entries[i].msg.ID == m.ID {
			log.Printf("[transcript] provisional id collision on %s, dropping", m.ID)
			return false
		}
	}
	m.Delivery = models.DeliveryPending
	t.insertLocked(m)
	return true
}

// Promote replaces a provisional message's identity with the authoritative
// record returned by the fallback path, in place. Confirmation never moves
// the message relative to its siblings unless the authoritative timestamp
// materially differs (beyond the dedupe window), in which case the
// authoritative timestamp wins and the message may reposition.
func (t *Transcript) Promote(provisionalID string, authoritative models.Message) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.entries {
		if t.entries[i].msg.ID != provisionalID {
			continue
		}
		e := &t.entries[i]
		reposition := absDuration(authoritative.Timestamp.Sub(e.msg.Timestamp)) > t.window
		e.msg.ID = authoritative.ID
		if !authoritative.Timestamp.IsZero() {
			e.msg.Timestamp = authoritative.Timestamp
		}
		if authoritative.Content != "" {
			e.msg.Content = authoritative.Content
		}
		if authoritative.ImageURL != "" {
			e.msg.ImageURL = authoritative.ImageURL
		}
		e.msg.Delivery = models.DeliveryConfirmed
		if reposition && !authoritative.Timestamp.IsZero() {
			moved := e.msg
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			t.insertLocked(moved)
		}
		return true
	}
	log.Printf("[transcript] promote: no message with provisional id %s", provisionalID)
	return false
}

// MarkFailed flips a message to the failed delivery state.
func (t *Transcript) MarkFailed(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.entries {
		if t.entries[i].msg.ID == id {
			t.entries[i].msg.Delivery = models.DeliveryFailed
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the messages in display order.
func (t *Transcript) Snapshot() []models.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Transcript) snapshotLocked() []models.Message {
	out := make([]models.Message, len(t.entries))
	for i := range t.entries {
		out[i] = t.entries[i].msg
	}
	return out
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// insertLocked positions exactly the new message; the rest of the sequence is
// never re-sorted. Order is by timestamp, with equal timestamps resolved by
// insertion sequence (new entry goes after existing equals).
func (t *Transcript) insertLocked(m models.Message) {
	e := entry{msg: m, seq: t.nextSeq}
	t.nextSeq++
	i := len(t.entries)
	for i > 0 && t.entries[i-1].msg.Timestamp.After(m.Timestamp) {
		i--
	}
	t.entries = append(t.entries, entry{})
	copy(t.entries[i+1:], t.entries[i:])
	t.entries[i] = e
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
