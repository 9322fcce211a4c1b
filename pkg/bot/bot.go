// Package bot is the stub backend's rule-based responder for the
// pre-escalation phase. It answers FAQ-shaped questions locally and detects
// the "talk to an agent" intent that flips a conversation into escalation.
package bot

import (
	"strconv"
	"strings"
)

// FAQ is one quick-solution entry the bot can answer directly.
type FAQ struct {
	ID       int    `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Catalog is the stub's quick-solution set. The real backend serves these
// from its own store; the stub only needs a stable, plausible list.
func Catalog() []FAQ {
	return []FAQ{
		{ID: 1, Question: "How do I reset my campus account password?",
			Answer: "Open the account portal, choose \"Forgot password\" and follow the email link. The link expires after 30 minutes."},
		{ID: 2, Question: "Where can I see my class schedule?",
			Answer: "Your schedule is published in the student portal under Academics > Timetable, updated every term."},
		{ID: 3, Question: "How do I request an enrollment certificate?",
			Answer: "Submit the request form in the student portal under Documents; certificates are issued within 3 working days."},
		{ID: 4, Question: "What are the library opening hours?",
			Answer: "The central library opens 08:00-22:00 on weekdays and 09:00-18:00 on weekends."},
	}
}

// escalation trigger words, matched case-insensitively as whole words
var escalationWords = []string{"agent", "agente", "human", "support agent"}

// Reply produces the bot answer for one student message and reports whether
// the conversation should escalate to a live agent instead.
func Reply(content string, faqs []FAQ) (string, bool) {
	text := strings.ToLower(strings.TrimSpace(content))
	if text == "" {
		return "", false
	}
	if wantsAgent(text) {
		return "I am connecting you with a support agent. Please wait a moment.", true
	}
	for _, f := range faqs {
		if matches(text, f.Question) {
			return f.Answer, false
		}
	}
	return "I could not find an answer for that. You can rephrase your question, or write 'agent' to talk to a support agent.", false
}

// Greeting builds the welcome message shown when a conversation starts.
func Greeting(faqs []FAQ) string {
	b := &strings.Builder{}
	b.WriteString("Hi! I am UniBot. These are some frequent questions I can answer:\n\n")
	for i, f := range faqs {
		b.WriteString(strconv.Itoa(i+1) + ". " + f.Question + "\n")
	}
	b.WriteString("\nYou can also ask me anything about the university, or write 'agent' to talk to a support agent.")
	return b.String()
}

func wantsAgent(text string) bool {
	for _, w := range escalationWords {
		if containsWord(text, w) {
			return true
		}
	}
	return false
}

// matches does a crude keyword overlap between the question and the message.
func matches(text, question string) bool {
	q := strings.ToLower(question)
	hits, total := 0, 0
	for _, w := range strings.Fields(q) {
		w = strings.Trim(w, "?,.")
		if len(w) < 4 {
			continue
		}
		total++
		if strings.Contains(text, w) {
			hits++
		}
	}
	return total > 0 && hits*2 >= total
}

func containsWord(text, word string) bool {
	idx := strings.Index(text, word)
	for idx >= 0 {
		before := idx == 0 || !isLetter(text[idx-1])
		afterIdx := idx + len(word)
		after := afterIdx >= len(text) || !isLetter(text[afterIdx])
		if before && after {
			return true
		}
		next := strings.Index(text[idx+1:], word)
		if next < 0 {
			return false
		}
		idx += 1 + next
	}
	return false
}

func isLetter(b byte) bool {
	return ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}
