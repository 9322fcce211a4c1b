package send

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"UniChat/models"
	"UniChat/pkg/identity"
)

// fakeSink records transcript mutations in call order.
type fakeSink struct {
	events     []string
	optimistic []models.Message
	promoted   map[string]models.Message
	failed     []string
}

func newFakeSink() *fakeSink {
	return &fakeSink{promoted: map[string]models.Message{}}
}

func (s *fakeSink) ApplyOptimistic(m models.Message) bool {
	s.events = append(s.events, "optimistic")
	s.optimistic = append(s.optimistic, m)
	return true
}

func (s *fakeSink) Promote(provisionalID string, auth models.Message) bool {
	s.events = append(s.events, "promote")
	s.promoted[provisionalID] = auth
	return true
}

func (s *fakeSink) MarkFailed(id string) bool {
	s.events = append(s.events, "failed")
	s.failed = append(s.failed, id)
	return true
}

type fakeChannel struct {
	state  models.ConnectionState
	accept bool
	sent   []string
}

func (c *fakeChannel) State() models.ConnectionState { return c.state }
func (c *fakeChannel) Send(content string) bool {
	c.sent = append(c.sent, content)
	return c.accept
}

type fakeFallback struct {
	events     *[]string
	calls      int
	imageCalls int
	err        error
	reply      models.Message
}

func (f *fakeFallback) SendMessage(_ context.Context, _, content string) (models.Message, error) {
	if f.events != nil {
		*f.events = append(*f.events, "rest")
	}
	f.calls++
	if f.err != nil {
		return models.Message{}, f.err
	}
	m := f.reply
	m.Content = content
	return m, nil
}

func (f *fakeFallback) SendImageMessage(_ context.Context, _, content, _ string, _ io.Reader) (models.Message, error) {
	f.imageCalls++
	if f.err != nil {
		return models.Message{}, f.err
	}
	m := f.reply
	m.Content = content
	return m, nil
}

func newCoordinator(sink *fakeSink, ch *fakeChannel, fb *fakeFallback) *Coordinator {
	fb.events = &sink.events
	return New(Config{
		ConversationID: "conv-1",
		SelfRole:       models.RoleStudent,
		UserID:         "7",
		Transcript:     sink,
		Channel:        ch,
		Fallback:       fb,
	})
}

func TestSubmitOverOpenChannelLeavesPending(t *testing.T) {
	sink := newFakeSink()
	ch := &fakeChannel{state: models.StateOpen, accept: true}
	fb := &fakeFallback{reply: models.Message{ID: "srv-1", Role: models.RoleStudent, Timestamp: time.Now()}}
	co := newCoordinator(sink, ch, fb)

	co.Submit(context.Background(), "hello")

	if len(ch.sent) != 1 || ch.sent[0] != "hello" {
		t.Fatalf("channel sends = %v, want [hello]", ch.sent)
	}
	if fb.calls != 0 {
		t.Fatalf("fallback must not fire when the channel accepted, got %d calls", fb.calls)
	}
	if len(sink.promoted) != 0 || len(sink.failed) != 0 {
		t.Fatalf("push path leaves the provisional pending until the echo arrives")
	}
	if len(sink.optimistic) != 1 {
		t.Fatalf("want one optimistic insert, got %d", len(sink.optimistic))
	}
	prov := sink.optimistic[0]
	if !identity.IsProvisional(prov.ID) {
		t.Fatalf("optimistic id %q should be provisional", prov.ID)
	}
	if prov.Role != models.RoleStudent || prov.ConversationID != "conv-1" {
		t.Fatalf("provisional not scoped to sender/conversation: %+v", prov)
	}
}

func TestSubmitFallsBackWhenChannelRefuses(t *testing.T) {
	sink := newFakeSink()
	ch := &fakeChannel{state: models.StateOpen, accept: false}
	fb := &fakeFallback{reply: models.Message{ID: "srv-1", Role: models.RoleStudent, Timestamp: time.Now()}}
	co := newCoordinator(sink, ch, fb)

	co.Submit(context.Background(), "hello")

	if fb.calls != 1 {
		t.Fatalf("fallback calls = %d, want exactly 1", fb.calls)
	}
	auth, ok := sink.promoted[sink.optimistic[0].ID]
	if !ok {
		t.Fatalf("provisional was not promoted after fallback success")
	}
	if auth.ID != "srv-1" || auth.Delivery != models.DeliveryConfirmed {
		t.Fatalf("promoted with %+v, want authoritative confirmed record", auth)
	}
}

func TestSubmitUsesFallbackWhenChannelClosed(t *testing.T) {
	sink := newFakeSink()
	ch := &fakeChannel{state: models.StateClosed}
	fb := &fakeFallback{reply: models.Message{ID: "srv-2", Role: models.RoleStudent, Timestamp: time.Now()}}
	co := newCoordinator(sink, ch, fb)

	co.Submit(context.Background(), "hello")

	if len(ch.sent) != 0 {
		t.Fatalf("closed channel must never be written to")
	}
	if fb.calls != 1 {
		t.Fatalf("fallback calls = %d, want 1", fb.calls)
	}
}

func TestOptimisticInsertPrecedesNetwork(t *testing.T) {
	sink := newFakeSink()
	ch := &fakeChannel{state: models.StateClosed}
	fb := &fakeFallback{reply: models.Message{ID: "srv-3", Role: models.RoleStudent, Timestamp: time.Now()}}
	co := newCoordinator(sink, ch, fb)

	co.Submit(context.Background(), "ordered")

	want := []string{"optimistic", "rest", "promote"}
	if len(sink.events) != len(want) {
		t.Fatalf("events = %v, want %v", sink.events, want)
	}
	for i := range want {
		if sink.events[i] != want[i] {
			t.Fatalf("events = %v, want %v", sink.events, want)
		}
	}
}

func TestFailedSendRestoresInput(t *testing.T) {
	sink := newFakeSink()
	ch := &fakeChannel{state: models.StateClosed}
	fb := &fakeFallback{err: errors.New("backend down")}

	var restored, notice string
	co := New(Config{
		ConversationID: "conv-1",
		SelfRole:       models.RoleStudent,
		Transcript:     sink,
		Channel:        ch,
		Fallback:       fb,
		OnRestore:      func(content string) { restored = content },
		OnNotice:       func(text string) { notice = text },
	})
	fb.events = &sink.events

	co.Submit(context.Background(), "  precious words  ")

	// the restore hands back exactly what the user typed, whitespace included
	if restored != "  precious words  " {
		t.Fatalf("restored %q, want the composed text verbatim", restored)
	}
	if notice == "" {
		t.Fatalf("failure must surface a user-visible notice")
	}
	if len(sink.failed) != 1 || sink.failed[0] != sink.optimistic[0].ID {
		t.Fatalf("provisional should be marked failed, got %v", sink.failed)
	}
	if len(sink.promoted) != 0 {
		t.Fatalf("failed send must not promote")
	}
}

func TestSubmitIgnoresBlankContent(t *testing.T) {
	sink := newFakeSink()
	fb := &fakeFallback{}
	co := newCoordinator(sink, &fakeChannel{state: models.StateOpen, accept: true}, fb)

	co.Submit(context.Background(), "   \n\t ")

	if len(sink.optimistic) != 0 || fb.calls != 0 {
		t.Fatalf("blank submit must be a no-op")
	}
}

func TestSubmitImageAlwaysUsesRest(t *testing.T) {
	sink := newFakeSink()
	ch := &fakeChannel{state: models.StateOpen, accept: true}
	fb := &fakeFallback{reply: models.Message{ID: "srv-img", Role: models.RoleStudent, ImageURL: "/uploads/x.png", Timestamp: time.Now()}}
	co := newCoordinator(sink, ch, fb)

	co.SubmitImage(context.Background(), "caption", "x.png", strings.NewReader("png-bytes"))

	if len(ch.sent) != 0 {
		t.Fatalf("attachments never go over the push channel")
	}
	if fb.imageCalls != 1 {
		t.Fatalf("image fallback calls = %d, want 1", fb.imageCalls)
	}
	auth := sink.promoted[sink.optimistic[0].ID]
	if auth.ImageURL != "/uploads/x.png" {
		t.Fatalf("promotion should carry the stored image url, got %q", auth.ImageURL)
	}
}

func TestSubmitImageWithoutReaderDegradesToText(t *testing.T) {
	sink := newFakeSink()
	ch := &fakeChannel{state: models.StateOpen, accept: true}
	fb := &fakeFallback{}
	co := newCoordinator(sink, ch, fb)

	co.SubmitImage(context.Background(), "just text", "", nil)

	if fb.imageCalls != 0 {
		t.Fatalf("nil image must not hit the multipart endpoint")
	}
	if len(ch.sent) != 1 {
		t.Fatalf("nil image should behave like a plain Submit")
	}
}
