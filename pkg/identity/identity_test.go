package identity

import (
	"testing"
	"time"

	"UniChat/models"
)

func msg(id string, role models.Role, content string, at time.Time) models.Message {
	return models.Message{ID: id, Role: role, Content: content, Timestamp: at}
}

func TestProvisionalIDsAreUniqueAndMarked(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := NewProvisionalID()
		if !IsProvisional(id) {
			t.Fatalf("generated id %q not recognized as provisional", id)
		}
		if seen[id] {
			t.Fatalf("provisional id collision: %q", id)
		}
		seen[id] = true
	}
	if IsProvisional("550e8400-e29b-41d4-a716-446655440000") {
		t.Fatalf("server-style uuid misclassified as provisional")
	}
}

func TestFindDuplicateExactID(t *testing.T) {
	now := time.Now()
	existing := []models.Message{
		msg("a1", models.RoleAssistant, "hello", now),
		msg("b2", models.RoleStudent, "hi", now),
	}

	idx, match := FindDuplicate(msg("b2", models.RoleStudent, "different text", now.Add(time.Hour)), existing, models.RoleStudent, time.Second)
	if match != MatchExactID || idx != 1 {
		t.Fatalf("want exact-id match at 1, got match=%v idx=%d", match, idx)
	}

	// exact id wins regardless of role
	idx, match = FindDuplicate(msg("a1", models.RoleAssistant, "x", now), existing, models.RoleStudent, time.Second)
	if match != MatchExactID || idx != 0 {
		t.Fatalf("want exact-id match at 0, got match=%v idx=%d", match, idx)
	}
}

func TestFindDuplicateSelfEchoWithinWindow(t *testing.T) {
	now := time.Now()
	existing := []models.Message{
		msg(NewProvisionalID(), models.RoleStudent, "where is the library", now),
	}
	candidate := msg("srv-1", models.RoleStudent, "where is the library", now.Add(400*time.Millisecond))

	idx, match := FindDuplicate(candidate, existing, models.RoleStudent, time.Second)
	if match != MatchSelfEcho || idx != 0 {
		t.Fatalf("want self-echo match at 0, got match=%v idx=%d", match, idx)
	}
}

func TestFindDuplicateOutsideWindowIsNew(t *testing.T) {
	now := time.Now()
	existing := []models.Message{
		msg("srv-1", models.RoleStudent, "ok", now),
	}
	candidate := msg("srv-2", models.RoleStudent, "ok", now.Add(3*time.Second))

	if _, match := FindDuplicate(candidate, existing, models.RoleStudent, time.Second); match != MatchNone {
		t.Fatalf("identical text outside the window must be a new message, got %v", match)
	}
}

func TestFindDuplicateNeverCollapsesCrossParty(t *testing.T) {
	now := time.Now()
	existing := []models.Message{
		msg("srv-1", models.RoleAssistant, "thanks", now),
	}
	// same text, same instant, other party: two legitimate messages
	candidate := msg("srv-2", models.RoleStudent, "thanks", now)

	if _, match := FindDuplicate(candidate, existing, models.RoleStudent, time.Second); match != MatchNone {
		t.Fatalf("cross-party content match must not dedupe, got %v", match)
	}
	// and an assistant echo never collapses onto a student message
	if _, match := FindDuplicate(msg("srv-3", models.RoleAssistant, "thanks", now), existing, models.RoleStudent, time.Second); match != MatchNone {
		t.Fatalf("non-self candidate must not content-dedupe, got %v", match)
	}
}

func TestIsDuplicate(t *testing.T) {
	now := time.Now()
	existing := []models.Message{msg("a", models.RoleStudent, "yo", now)}
	if !IsDuplicate(msg("a", models.RoleStudent, "yo", now), existing, models.RoleStudent, time.Second) {
		t.Fatalf("exact id should be duplicate")
	}
	if IsDuplicate(msg("b", models.RoleAssistant, "yo", now), existing, models.RoleStudent, time.Second) {
		t.Fatalf("other-party message should not be duplicate")
	}
}
