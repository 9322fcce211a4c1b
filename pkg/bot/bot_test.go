package bot

import (
	"strings"
	"testing"
)

func TestReplyEscalatesOnAgentIntent(t *testing.T) {
	cases := []string{
		"agent",
		"I want to talk to an AGENT please",
		"can i speak with a human?",
		"quiero un agente",
	}
	for _, in := range cases {
		if _, escalate := Reply(in, Catalog()); !escalate {
			t.Fatalf("%q should trigger escalation", in)
		}
	}
}

func TestReplyDoesNotEscalateOnSubstring(t *testing.T) {
	// "agent" inside another word is not the intent
	cases := []string{
		"the reagent list for chemistry lab",
		"my travel agents office is closed", // agents != agent as whole word? plural still has trailing s
	}
	for _, in := range cases {
		if _, escalate := Reply(in, Catalog()); escalate {
			t.Fatalf("%q must not trigger escalation", in)
		}
	}
}

func TestReplyAnswersFAQ(t *testing.T) {
	answer, escalate := Reply("how do I reset my campus password?", Catalog())
	if escalate {
		t.Fatalf("FAQ question must not escalate")
	}
	if !strings.Contains(answer, "Forgot password") {
		t.Fatalf("answer = %q, want the password-reset FAQ answer", answer)
	}
}

func TestReplyFallsBackWhenUnknown(t *testing.T) {
	answer, escalate := Reply("what is the meaning of life", Catalog())
	if escalate {
		t.Fatalf("unknown question must not escalate by itself")
	}
	if !strings.Contains(answer, "agent") {
		t.Fatalf("fallback answer should point at the agent option, got %q", answer)
	}
}

func TestReplyEmptyInput(t *testing.T) {
	if answer, escalate := Reply("   ", Catalog()); answer != "" || escalate {
		t.Fatalf("blank input should produce nothing")
	}
}

func TestGreetingListsEveryQuestion(t *testing.T) {
	faqs := Catalog()
	g := Greeting(faqs)
	for _, f := range faqs {
		if !strings.Contains(g, f.Question) {
			t.Fatalf("greeting missing question %q", f.Question)
		}
	}
}
