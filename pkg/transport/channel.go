// Package transport owns the lifecycle of the push channel for one
// conversation: at most one open connection per client, always matching the
// currently displayed conversation.
package transport

import (
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"UniChat/models"

	"github.com/gorilla/websocket"
)

// Handler receives inbound chat messages in arrival order, one at a time, no
// batching.
type Handler = func(models.Message)

// Channel is an explicitly owned resource: construct on engage, disconnect on
// disengage. It performs no automatic reconnection; if the caller wants the
// channel back after a drop it must re-run Connect. Connection errors are
// reported through the Err side channel, never through panics or callbacks.
type Channel struct {
	wsBase string
	token  string
	dialer *websocket.Dialer

	mu       sync.Mutex
	state    models.ConnectionState
	conn     *websocket.Conn
	gen      uint64 // bumped on every connect/disconnect; stale read loops check it
	convID   string
	selfRole models.Role
	userID   string
	handler  Handler
	lastErr  error
}

// NewChannel builds a channel manager against a ws:// base address. token is
// passed as a query parameter on the dial (ws handshakes cannot carry
// headers from browsers, and the stub keeps the same contract); it may be
// empty.
func NewChannel(wsBase, token string) *Channel {
	return &Channel{
		wsBase: strings.TrimRight(wsBase, "/"),
		token:  token,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		state:  models.StateDisconnected,
	}
}

// OnMessage registers the single inbound handler. Must be set before Connect.
func (c *Channel) OnMessage(h Handler) {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
}

// Connect opens the channel for conversationID. No-op when already open for
// the same conversation; a prior connection for a different conversation is
// closed first, synchronously, so an inbound frame can never be applied to a
// transcript that has since switched conversations.
func (c *Channel) Connect(conversationID string, selfRole models.Role, userID string) {
	c.mu.Lock()
	if c.state == models.StateOpen && c.convID == conversationID {
		c.mu.Unlock()
		return
	}
	c.closeLocked()
	c.setStateLocked(models.StateConnecting)
	c.convID = conversationID
	c.selfRole = selfRole
	c.userID = userID
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	target := fmt.Sprintf("%s/ws/chat/%s", c.wsBase, conversationID)
	if c.token != "" {
		target += "?token=" + url.QueryEscape(c.token)
	}
	conn, _, err := c.dialer.Dial(target, nil)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen || c.state != models.StateConnecting {
		// Disconnect or another Connect raced the dial; this attempt lost.
		if err == nil {
			_ = conn.Close()
		}
		return
	}
	if err != nil {
		c.lastErr = err
		c.setStateLocked(models.StateClosed)
		log.Printf("[ws] connect %s failed: %v", conversationID, err)
		return
	}
	c.conn = conn
	c.lastErr = nil
	c.setStateLocked(models.StateOpen)
	log.Printf("[ws] connected to conversation %s", conversationID)
	go c.readLoop(conn, gen)
}

// Send pushes an outbound frame. It returns false immediately when the
// channel is not open or the write fails; the caller must treat false as
// "use the fallback path now" and must not retry the channel.
func (c *Channel) Send(content string) bool {
	c.mu.Lock()
	if c.state != models.StateOpen || c.conn == nil {
		c.mu.Unlock()
		return false
	}
	conn := c.conn
	out := outboundFrame{Role: string(c.selfRole), Content: content, UserID: c.userID}
	c.mu.Unlock()

	if err := conn.WriteJSON(out); err != nil {
		log.Printf("[ws] send failed: %v", err)
		c.mu.Lock()
		c.lastErr = err
		c.closeLocked()
		c.mu.Unlock()
		return false
	}
	return true
}

// Disconnect releases the connection. Safe to call any number of times and
// on every exit path.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.closeLocked()
}

// State returns the current lifecycle state.
func (c *Channel) State() models.ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err is the side-channel status flag: the last connection or frame error, or
// nil. Callers observe it and fall back to REST sends; it is never thrown.
func (c *Channel) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// ConversationID returns the conversation this channel is (or was last)
// scoped to.
func (c *Channel) ConversationID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.convID
}

func (c *Channel) setStateLocked(next models.ConnectionState) {
	if c.state == next {
		return
	}
	if !c.state.CanTransition(next) {
		// construction-time guard against an illegal lifecycle step
		panic(fmt.Sprintf("transport: illegal transition %s -> %s", c.state, next))
	}
	c.state = next
}

func (c *Channel) closeLocked() {
	if c.conn != nil {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = c.conn.Close()
		c.conn = nil
	}
	if c.state == models.StateOpen || c.state == models.StateConnecting {
		c.setStateLocked(models.StateClosed)
	}
}

// readLoop pumps inbound frames for one connection generation. It exits when
// the connection dies or the generation is superseded; frames from a stale
// generation are dropped, never delivered.
func (c *Channel) readLoop(conn *websocket.Conn, gen uint64) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			if c.gen == gen {
				if c.state == models.StateOpen {
					if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
						c.lastErr = err
					}
					c.closeLocked()
					log.Printf("[ws] connection closed: %v", err)
				}
			}
			c.mu.Unlock()
			return
		}
		c.deliver(gen, data)
	}
}

func (c *Channel) deliver(gen uint64, data []byte) {
	msg, kind, err := decodeFrame(data)
	switch kind {
	case frameMalformed:
		// dropped and logged; never crashes the transcript or the connection
		log.Printf("[ws] dropping malformed frame: %v", err)
		return
	case frameAck:
		log.Printf("[ws] send acknowledged: %s", msg.ID)
		return
	case frameError:
		c.mu.Lock()
		if c.gen == gen {
			c.lastErr = err
		}
		c.mu.Unlock()
		log.Printf("[ws] server error frame: %v", err)
		return
	}

	c.mu.Lock()
	if c.gen != gen || c.state != models.StateOpen {
		c.mu.Unlock()
		return
	}
	if msg.ConversationID == "" {
		msg.ConversationID = c.convID
	}
	handler := c.handler
	c.mu.Unlock()

	if handler != nil {
		handler(msg)
	}
}
