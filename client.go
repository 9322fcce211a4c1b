package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"UniChat/models"
	"UniChat/pkg/api"
	"UniChat/pkg/binding"
	"UniChat/pkg/config"
	"UniChat/pkg/transport"

	"github.com/spf13/cobra"
)

type clientFlags struct {
	conversation string
	email        string
	password     string
}

func newStudentCmd() *cobra.Command {
	var flags clientFlags
	cmd := &cobra.Command{
		Use:   "student",
		Short: "Chat with the support bot, escalate to a live agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStudent(cmd, flags)
		},
	}
	cmd.Flags().StringVar(&flags.conversation, "conversation", "", "resume an existing conversation id")
	cmd.Flags().StringVar(&flags.email, "email", "", "login email (when SESSION_TOKEN is not set)")
	cmd.Flags().StringVar(&flags.password, "password", "", "login password")
	return cmd
}

func newAgentCmd() *cobra.Command {
	var flags clientFlags
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Take a pending escalation and chat with the student",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgent(cmd, flags)
		},
	}
	cmd.Flags().StringVar(&flags.conversation, "conversation", "", "take a specific conversation id")
	cmd.Flags().StringVar(&flags.email, "email", "", "login email (when SESSION_TOKEN is not set)")
	cmd.Flags().StringVar(&flags.password, "password", "", "login password")
	return cmd
}

// connect resolves a session (env token or login) and returns the client and
// identity.
func connect(ctx context.Context, flags clientFlags) (*api.Client, api.Identity, string, error) {
	timeout := time.Duration(config.HTTPTimeoutSeconds) * time.Second
	token := config.SessionToken
	client := api.NewClient(config.BackendBaseURL, token, timeout)

	if token == "" {
		if flags.email == "" || flags.password == "" {
			return nil, api.Identity{}, "", fmt.Errorf("set SESSION_TOKEN or pass --email/--password")
		}
		t, _, err := client.Login(ctx, flags.email, flags.password)
		if err != nil {
			return nil, api.Identity{}, "", fmt.Errorf("login failed: %w", err)
		}
		token = t
	}

	me, err := client.Me(ctx)
	if err != nil {
		return nil, api.Identity{}, "", fmt.Errorf("identity lookup failed: %w", err)
	}
	return client, me, token, nil
}

func runStudent(cmd *cobra.Command, flags clientFlags) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	out := cmd.OutOrStdout()

	client, me, token, err := connect(ctx, flags)
	if err != nil {
		return err
	}

	convID := flags.conversation
	if convID == "" {
		conv, err := client.CreateConversation(ctx)
		if err != nil {
			return fmt.Errorf("could not start conversation: %w", err)
		}
		convID = conv.ID
		fmt.Fprintf(out, "started conversation %s\n", convID)
		if faqs, err := client.FAQList(ctx); err == nil && len(faqs) > 0 {
			fmt.Fprintln(out, "quick solutions:")
			for _, f := range faqs {
				fmt.Fprintf(out, "  %d. %s\n", f.ID, f.Question)
			}
		}
	}

	channel := transport.NewChannel(config.WSBaseURL, token)
	b := binding.NewStudent(sessionConfig(convID, me.ID, client, channel, out))
	defer b.Close()

	if err := b.Start(ctx); err != nil {
		return fmt.Errorf("could not load conversation: %w", err)
	}
	go binding.WatchStatus(ctx, b.Session, time.Duration(config.EscalationPollSeconds)*time.Second)

	printTranscript(out, b.Session, models.RoleStudent)
	fmt.Fprintln(out, "type a message; /agent to request a human, /image <path> [caption], /quit to exit")
	return chatLoop(ctx, cmd, b.Session, func(line string) (bool, error) {
		switch {
		case line == "/agent":
			if err := b.RequestAgent(ctx); err != nil {
				fmt.Fprintf(out, "! escalation failed: %v\n", err)
			}
			return true, nil
		}
		return false, nil
	})
}

func runAgent(cmd *cobra.Command, flags clientFlags) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	out := cmd.OutOrStdout()

	client, me, token, err := connect(ctx, flags)
	if err != nil {
		return err
	}

	convID := flags.conversation
	if convID == "" {
		pending, err := client.PendingRequests(ctx)
		if err != nil {
			return fmt.Errorf("could not list pending requests: %w", err)
		}
		if len(pending) == 0 {
			fmt.Fprintln(out, "no pending escalations")
			return nil
		}
		for _, p := range pending {
			fmt.Fprintf(out, "pending: %s (%s)\n", p.ConversationID, p.Title)
		}
		convID = pending[0].ConversationID
	}

	channel := transport.NewChannel(config.WSBaseURL, token)
	b := binding.NewAgent(sessionConfig(convID, me.ID, client, channel, out))
	defer b.Close()

	if err := b.Take(ctx); err != nil {
		return fmt.Errorf("could not take case %s: %w", convID, err)
	}
	fmt.Fprintf(out, "took case %s\n", convID)

	if err := b.Start(ctx); err != nil {
		return fmt.Errorf("could not load conversation: %w", err)
	}
	go binding.WatchStatus(ctx, b.Session, time.Duration(config.EscalationPollSeconds)*time.Second)

	printTranscript(out, b.Session, models.RoleAssistant)
	fmt.Fprintln(out, "type a message; /resolve to close the case, /image <path> [caption], /quit to exit")
	return chatLoop(ctx, cmd, b.Session, func(line string) (bool, error) {
		switch {
		case line == "/resolve":
			if err := b.Resolve(ctx); err != nil {
				fmt.Fprintf(out, "! resolve failed: %v\n", err)
				return true, nil
			}
			fmt.Fprintln(out, "case resolved")
			return true, errQuit
		}
		return false, nil
	})
}

var errQuit = fmt.Errorf("quit")

func sessionConfig(convID, userID string, client *api.Client, channel *transport.Channel, out io.Writer) binding.Config {
	return binding.Config{
		ConversationID: convID,
		UserID:         userID,
		API:            client,
		Channel:        channel,
		SelfEchoWindow: time.Duration(config.SelfEchoWindowMS) * time.Millisecond,
		OnMessage: func(m models.Message) {
			fmt.Fprintf(out, "\n[%s] %s\n> ", m.Role, renderContent(m))
		},
		OnRestore: func(content string) {
			fmt.Fprintf(out, "! your message was not sent; it is kept below so you can retry:\n  %s\n", content)
		},
		OnNotice: func(text string) {
			fmt.Fprintf(out, "! %s\n", text)
		},
		OnDowngrade: func(err error) {
			fmt.Fprintf(out, "! live connection lost (%v); messages now go over HTTP\n", err)
		},
	}
}

func chatLoop(ctx context.Context, cmd *cobra.Command, s *binding.Session, handle func(string) (bool, error)) error {
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case line == "/quit":
			return nil
		case strings.HasPrefix(line, "/image "):
			submitImage(ctx, out, s, strings.TrimPrefix(line, "/image "))
		default:
			handled, err := handle(line)
			if err == errQuit {
				return nil
			}
			if !handled {
				s.Submit(ctx, line)
			}
		}
		fmt.Fprint(out, "> ")
	}
	return scanner.Err()
}

func submitImage(ctx context.Context, out io.Writer, s *binding.Session, rest string) {
	parts := strings.SplitN(strings.TrimSpace(rest), " ", 2)
	path := parts[0]
	caption := ""
	if len(parts) == 2 {
		caption = parts[1]
	}
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(out, "! cannot open image: %v\n", err)
		return
	}
	defer f.Close()
	s.Coordinator().SubmitImage(ctx, caption, filepath.Base(path), f)
}

func printTranscript(out io.Writer, s *binding.Session, self models.Role) {
	for _, m := range s.Transcript() {
		marker := " "
		if m.Role == self {
			marker = "*"
		}
		fmt.Fprintf(out, "%s [%s] %s\n", marker, m.Role, renderContent(m))
	}
}

func renderContent(m models.Message) string {
	if m.ImageURL != "" && m.Content == "" {
		return "(image) " + m.ImageURL
	}
	if m.ImageURL != "" {
		return m.Content + " (image: " + m.ImageURL + ")"
	}
	return m.Content
}
