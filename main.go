package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"dv-relay/internal/assistant/processor"
	"dv-relay/internal/bootstrap"
	"dv-relay/internal/config"
	"dv-relay/internal/observability"
	"dv-relay/internal/server"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// Assistant answers one conversational turn.
type Assistant interface {
	GetResponse(ctx context.Context, sessionID, utterance string) processor.Response
	EndSession(ctx context.Context, sessionID string)
}

// AssistantFactory builds an assistant and a cleanup func.
type AssistantFactory func(ctx context.Context, cfg *config.Config, logger *observability.Logger) (Assistant, func(), error)

// DefaultAssistantFactory wires the full dependency graph.
func DefaultAssistantFactory(ctx context.Context, cfg *config.Config, logger *observability.Logger) (Assistant, func(), error) {
	deps, err := bootstrap.Initialize(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return deps.Assistant, deps.Cleanup, nil
}

// ChatOptions for running the chat REPL with custom dependencies
type ChatOptions struct {
	Factory AssistantFactory
	Config  *config.Config
	Logger  *observability.Logger
	Stdin   io.Reader
	Stdout  io.Writer

	SessionID string
	Channel   string
	Message   string
}

var rootCmd = &cobra.Command{
	Use:   "dv-relay",
	Short: "dv-relay - voice, SMS and web assistant for domestic violence support resources",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server (web chat + Twilio webhooks)",
	RunE:  runServe,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant from the terminal",
	RunE:  runChat,
}

var (
	sessionFlag string
	channelFlag string
	messageFlag string
)

func init() {
	chatCmd.Flags().StringVarP(&sessionFlag, "session", "s", "", "Session id (random when empty)")
	chatCmd.Flags().StringVarP(&channelFlag, "channel", "c", "web", "Rendering to print: voice, sms or web")
	chatCmd.Flags().StringVarP(&messageFlag, "message", "m", "", "Single message to send")
	rootCmd.AddCommand(serveCmd, chatCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	logger := observability.NewLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Error(ctx, "failed to load config", err)
		return err
	}

	deps, err := bootstrap.Initialize(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "failed to initialize dependencies", err)
		return err
	}

	srv := server.New(cfg, deps, logger)
	srv.Setup()
	if err := srv.Start(ctx); err != nil {
		deps.Cleanup()
		return err
	}
	return srv.WaitForShutdown(ctx)
}

func runChat(cmd *cobra.Command, args []string) error {
	return runChatWithOptions(cmd.Context(), ChatOptions{
		SessionID: sessionFlag,
		Channel:   channelFlag,
		Message:   messageFlag,
	})
}

// runChatWithOptions runs the REPL with injectable dependencies for testing
func runChatWithOptions(ctx context.Context, opts ChatOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	logger := opts.Logger
	if logger == nil {
		logger = observability.NewNopLogger()
	}

	cfg := opts.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Load(); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}

	factory := opts.Factory
	if factory == nil {
		factory = DefaultAssistantFactory
	}

	assistant, cleanup, err := factory(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("create assistant: %w", err)
	}
	if cleanup != nil {
		defer cleanup()
	}

	stdin := opts.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = "cli:" + uuid.NewString()
	}

	render := func(resp processor.Response) {
		fmt.Fprintln(stdout, pick(resp, opts.Channel))
		fmt.Fprintf(stdout, "[%s]\n", resp.Source)
	}

	// Single message mode
	if opts.Message != "" {
		render(assistant.GetResponse(ctx, sessionID, opts.Message))
		return nil
	}

	fmt.Fprintln(stdout, "dv-relay chat (type 'reset' to start over, 'exit' to quit)")
	scanner := bufio.NewScanner(stdin)
	for {
		fmt.Fprint(stdout, "\n> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		switch strings.ToLower(input) {
		case "exit", "quit":
			assistant.EndSession(ctx, sessionID)
			return nil
		case "reset":
			assistant.EndSession(ctx, sessionID)
			fmt.Fprintln(stdout, "Session cleared.")
			continue
		}

		render(assistant.GetResponse(ctx, sessionID, input))
	}
	return scanner.Err()
}

func pick(resp processor.Response, channel string) string {
	switch strings.ToLower(channel) {
	case "voice":
		return resp.Voice
	case "sms":
		return resp.SMS
	default:
		return resp.Web
	}
}
