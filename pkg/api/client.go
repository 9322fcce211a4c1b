// Package api is the thin REST client over the support-chat backend: history
// fetch, fallback send, escalation status and case management. Every response
// is adapted into the canonical models.Message shape at this boundary.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"UniChat/models"
)

// Client talks to one backend base address with one bearer token.
type Client struct {
	base  string
	token string
	http  *http.Client
}

// NewClient builds a client. timeout bounds every request.
func NewClient(base, token string, timeout time.Duration) *Client {
	return &Client{
		base:  strings.TrimRight(base, "/"),
		token: token,
		http:  &http.Client{Timeout: timeout},
	}
}

// Identity is the black-box answer of the external identity provider.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// EscalationStatus mirrors the backend's escalation-status resource.
type EscalationStatus struct {
	Escalated   bool `json:"escalated"`
	AgentActive bool `json:"agent_active"`
	Resolved    bool `json:"resolved"`
}

// Phase folds the status flags into the engagement phase machine.
func (s EscalationStatus) Phase() models.EscalationPhase {
	switch {
	case s.Resolved:
		return models.PhaseResolved
	case s.Escalated && s.AgentActive:
		return models.PhaseEscalatedAssigned
	case s.Escalated:
		return models.PhaseEscalatedUnassigned
	default:
		return models.PhaseBotOnly
	}
}

// Conversation is the REST shape of a conversation header.
type Conversation struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// EscalationRequest is one pending case in the agent queue.
type EscalationRequest struct {
	ConversationID string `json:"conversation_id"`
	Title          string `json:"title"`
	CreatedAt      string `json:"created_at"`
}

// FAQ is one quick-solution question.
type FAQ struct {
	ID       int    `json:"id"`
	Question string `json:"question"`
}

// Me resolves the current session's identity.
func (c *Client) Me(ctx context.Context) (Identity, error) {
	var out Identity
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out)
	return out, err
}

// Login exchanges credentials for a session token (stub backend only; the
// real deployment resolves sessions out of band).
func (c *Client) Login(ctx context.Context, email, password string) (string, Identity, error) {
	body := map[string]string{"email": email, "password": password}
	var out struct {
		Token string   `json:"token"`
		User  Identity `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &out); err != nil {
		return "", Identity{}, err
	}
	c.token = out.Token
	return out.Token, out.User, nil
}

// CreateConversation starts a fresh conversation for the current student.
func (c *Client) CreateConversation(ctx context.Context) (Conversation, error) {
	var out Conversation
	err := c.do(ctx, http.MethodPost, "/conversations", map[string]string{}, &out)
	return out, err
}

// History fetches the ordered message list for a conversation. Consumed once
// at view-mount time to seed the transcript before any live frames apply.
func (c *Client) History(ctx context.Context, conversationID string) ([]models.Message, error) {
	var wire []wireMessage
	if err := c.do(ctx, http.MethodGet, "/conversations/"+conversationID+"/messages", nil, &wire); err != nil {
		return nil, err
	}
	out := make([]models.Message, 0, len(wire))
	for _, wm := range wire {
		m, err := wm.toModel(conversationID)
		if err != nil {
			// a single bad record must not sink the whole history
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// SendMessage is the REST fallback send. The response is the authoritative
// message record, server id and timestamp included.
func (c *Client) SendMessage(ctx context.Context, conversationID, content string) (models.Message, error) {
	body := map[string]string{"content": content}
	var wm wireMessage
	if err := c.do(ctx, http.MethodPost, "/conversations/"+conversationID+"/messages", body, &wm); err != nil {
		return models.Message{}, err
	}
	return wm.toModel(conversationID)
}

// SendImageMessage posts a message with a single image attachment as
// multipart form data. Content may be empty for image-only messages.
func (c *Client) SendImageMessage(ctx context.Context, conversationID, content, filename string, image io.Reader) (models.Message, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		return models.Message{}, err
	}
	if _, err := io.Copy(part, image); err != nil {
		return models.Message{}, err
	}
	if err := w.WriteField("content", content); err != nil {
		return models.Message{}, err
	}
	if err := w.Close(); err != nil {
		return models.Message{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.base+"/conversations/"+conversationID+"/images", &buf)
	if err != nil {
		return models.Message{}, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return models.Message{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.Message{}, apiError(resp)
	}
	var out struct {
		Message  wireMessage `json:"message"`
		ImageURL string      `json:"image_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.Message{}, err
	}
	m, err := out.Message.toModel(conversationID)
	if err != nil {
		return models.Message{}, err
	}
	if m.ImageURL == "" {
		m.ImageURL = out.ImageURL
	}
	return m, nil
}

// EscalationStatus reads the current escalation flags for a conversation.
func (c *Client) EscalationStatus(ctx context.Context, conversationID string) (EscalationStatus, error) {
	var out EscalationStatus
	err := c.do(ctx, http.MethodGet, "/conversations/"+conversationID+"/escalation-status", nil, &out)
	return out, err
}

// Escalate asks for a human agent on a bot-phase conversation.
func (c *Client) Escalate(ctx context.Context, conversationID string) error {
	return c.do(ctx, http.MethodPost, "/conversations/"+conversationID+"/escalate", map[string]string{}, nil)
}

// PendingRequests lists unassigned escalated cases for the agent queue.
func (c *Client) PendingRequests(ctx context.Context) ([]EscalationRequest, error) {
	var out []EscalationRequest
	err := c.do(ctx, http.MethodGet, "/agent/requests", nil, &out)
	return out, err
}

// TakeCase assigns a pending escalation to the current agent.
func (c *Client) TakeCase(ctx context.Context, conversationID string) error {
	return c.do(ctx, http.MethodPost, "/agent/requests/"+conversationID+"/take", map[string]string{}, nil)
}

// ResolveCase closes an assigned escalation.
func (c *Client) ResolveCase(ctx context.Context, conversationID string) error {
	return c.do(ctx, http.MethodPost, "/agent/conversations/"+conversationID+"/resolve", map[string]string{}, nil)
}

// FAQList fetches the quick-solution questions shown in the welcome message.
func (c *Client) FAQList(ctx context.Context) ([]FAQ, error) {
	var out struct {
		Questions []FAQ `json:"questions"`
	}
	err := c.do(ctx, http.MethodGet, "/faq/list-questions", nil, &out)
	return out.Questions, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func apiError(resp *http.Response) error {
	var payload struct {
		Msg string `json:"msg"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(data, &payload)
	if payload.Msg != "" {
		return fmt.Errorf("backend %d: %s", resp.StatusCode, payload.Msg)
	}
	return fmt.Errorf("backend returned status %d", resp.StatusCode)
}
