/*
Package main is the entry point for the mentorchat terminal client.

It is responsible for loading configuration, initializing the global logging
system, deriving the current user's identity from the configured bearer
token, starting the conversation container, and gracefully handling operating
system interrupt signals (SIGINT, SIGTERM) so the live transport is always
force-closed on exit.
*/
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"mentorchat/internal/app/api"
	"mentorchat/internal/app/chat"
	"mentorchat/internal/configs"
	"mentorchat/internal/pkg/auth"
	"mentorchat/internal/pkg/errs"
	"mentorchat/internal/pkg/logx"
)

// eventQueueSize buffers session events between the pumps and the container
// Run loop.
const eventQueueSize = 64

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.Environment == "development")

	identity, err := auth.FromToken(cfg.AuthToken)
	if err != nil {
		logx.Fatal(err, "Could not derive the current user from AUTH_TOKEN")
	}

	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Str("api_base_url", cfg.APIBaseURL).
		Str("ws_base_url", cfg.WSBaseURL).
		Str("user_id", identity.UserID).
		Str("role", identity.Role).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	apiClient := api.NewClient(cfg.APIBaseURL, cfg.AuthToken, cfg.HTTPTimeout)

	events := make(chan chat.Event, eventQueueSize)
	session := chat.NewSession(chat.SessionConfig{
		WSBaseURL: cfg.WSBaseURL,
		AuthToken: cfg.AuthToken,
		SendRate:  cfg.SendRate,
		SendBurst: cfg.SendBurst,
	}, events)

	conversation := chat.NewConversation(chat.ConversationConfig{
		Identity:  identity,
		History:   apiClient,
		Roster:    apiClient,
		Transport: session,
		Events:    events,
	})

	go conversation.Run(ctx)

	if err := conversation.LoadRoster(ctx); err != nil {
		fmt.Printf("!! %s\n", err.Message)
	}

	printRoster(conversation, identity)
	printHelp()

	// re-render whenever the container reports a change
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-conversation.Changed():
				render(conversation)
			}
		}
	}()

	runInputLoop(ctx, stop, conversation, identity)

	logx.Info("Client stopped.")
}

// runInputLoop reads commands and message text from stdin until EOF or
// interrupt. Plain lines send as text; /attach stages a file for one send.
func runInputLoop(ctx context.Context, stop context.CancelFunc, conversation *chat.Conversation, identity auth.Identity) {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 64*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case line == "/quit":
			stop()
			return

		case line == "/help":
			printHelp()

		case line == "/contacts":
			printRoster(conversation, identity)

		case strings.HasPrefix(line, "/open "):
			openRoom(ctx, conversation, strings.TrimSpace(strings.TrimPrefix(line, "/open ")))

		case strings.HasPrefix(line, "/attach "):
			sendAttachment(conversation, strings.TrimSpace(strings.TrimPrefix(line, "/attach ")))

		case strings.HasPrefix(line, "/"):
			fmt.Printf("Unknown command %q. Type /help.\n", line)

		default:
			if err := conversation.SendText(line); err != nil {
				// the drafted text stays on screen; nothing is discarded
				fmt.Printf("!! %s\n", err.Message)
			}
		}
	}
}

// openRoom resolves the argument as a roster index or a raw room id and
// selects it.
func openRoom(ctx context.Context, conversation *chat.Conversation, arg string) {
	rooms, rosterErr := conversation.Rooms()
	if rosterErr != nil {
		fmt.Printf("!! %s\n", rosterErr.Message)
		return
	}

	roomID := arg
	if idx, err := strconv.Atoi(arg); err == nil {
		if idx < 1 || idx > len(rooms) {
			fmt.Printf("No contact #%d.\n", idx)
			return
		}
		roomID = rooms[idx-1].RoomID
	}

	if err := conversation.SelectRoom(ctx, roomID); err != nil {
		fmt.Printf("!! %s\n", err.Message)
	}
}

// sendAttachment reads a local file, stages it, and sends it with an
// optional caption ("/attach <path> [caption...]"). A file that cannot be
// read surfaces as a non-fatal send failure.
func sendAttachment(conversation *chat.Conversation, arg string) {
	path := arg
	caption := ""
	if i := strings.IndexByte(arg, ' '); i > 0 {
		path = arg[:i]
		caption = strings.TrimSpace(arg[i+1:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logx.Warn("Failed to read attachment file.", "path", path, "error", err.Error())
		fmt.Printf("!! %s\n", errs.NewError(errs.ErrEncoding).Message)
		return
	}

	staged := &chat.StagedAttachment{
		Name:     filepath.Base(path),
		MimeType: chat.MIMETypeForFile(path),
		Data:     data,
	}

	if sendErr := conversation.SendAttachment(caption, staged); sendErr != nil {
		fmt.Printf("!! %s\n", sendErr.Message)
	}
}

// render prints the current transcript snapshot.
func render(conversation *chat.Conversation) {
	vm := conversation.Snapshot()
	fmt.Print(chat.RenderTranscript(vm, time.Now()))
}

// printRoster lists the counterparts the current user may chat with.
func printRoster(conversation *chat.Conversation, identity auth.Identity) {
	rooms, rosterErr := conversation.Rooms()
	if rosterErr != nil {
		fmt.Printf("!! %s\n", rosterErr.Message)
		return
	}

	fmt.Printf("%s:\n", auth.CounterpartLabel(identity.Role))
	for i, room := range rooms {
		fmt.Printf("  %d. %s <%s>\n", i+1, room.Counterpart.DisplayName, room.Counterpart.Email)
	}
	if len(rooms) == 0 {
		fmt.Println("  (no contacts yet)")
	}
}

func printHelp() {
	fmt.Println("Commands: /contacts  /open <n|room-id>  /attach <path> [caption]  /help  /quit")
	fmt.Println("Anything else is sent as a message to the open conversation.")
}
