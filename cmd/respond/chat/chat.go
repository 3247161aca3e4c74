// Package chatcmder provides the chat command for interactive sessions
// against the Responses API.
package chatcmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/papercomputeco/respond/cmd/respond/session"
	"github.com/papercomputeco/respond/pkg/client"
	"github.com/papercomputeco/respond/pkg/cliui"
	"github.com/papercomputeco/respond/pkg/config"
	"github.com/papercomputeco/respond/pkg/logger"
	"github.com/papercomputeco/respond/pkg/responses"
	"github.com/papercomputeco/respond/pkg/stream"
	"github.com/papercomputeco/respond/pkg/utils"
)

var (
	userPrompt      = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	assistantPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("assistant> ")
)

type chatCommander struct {
	model        string
	baseURL      string
	organization string
	timeout      uint
	debug        bool

	configDir string
	viper     *viper.Viper
	logger    *zap.Logger
}

var chatFlagKeys = []string{
	config.FlagModel,
	config.FlagBaseURL,
	config.FlagOrganization,
	config.FlagTimeout,
}

const chatLongDesc string = `Start an interactive chat session against the Responses API.

Each turn streams the model's answer to the terminal as it is generated.
Conversation state is threaded server-side via previous_response_id, so
the full history is never resent.

Examples:
  respond chat
  respond chat --model o4-mini
  respond chat --base-url http://localhost:8099    Chat against a replay server`

const chatShortDesc string = "Interactive chat against the Responses API"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.DefaultFlags, chatFlagKeys)
			cmder.viper = v

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.DefaultFlags, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, config.DefaultFlags, config.FlagBaseURL, &cmder.baseURL)
	config.AddStringFlag(cmd, config.DefaultFlags, config.FlagOrganization, &cmder.organization)
	config.AddUintFlag(cmd, config.DefaultFlags, config.FlagTimeout, &cmder.timeout)

	return cmd
}

func (c *chatCommander) run(ctx context.Context) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	cl, err := session.NewClient(c.viper, c.configDir, c.logger)
	if err != nil {
		return err
	}
	defer func() { _ = cl.Close() }()

	model := c.viper.GetString("client.model")

	fmt.Println()
	fmt.Printf("  %s %s\n\n",
		cliui.KeyStyle.Render("Model:"),
		cliui.NameStyle.Render(model),
	)
	fmt.Printf("  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(os.Stdin)

	// previousID threads the conversation across turns
	var previousID string

	for {
		fmt.Print(userPrompt)
		if !scanner.Scan() {
			// EOF or error
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/exit" {
			break
		}

		responseID, err := c.sendAndStream(ctx, cl, model, input, previousID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s %v\n", cliui.FailMark, err)
			continue
		}

		if responseID != "" {
			previousID = responseID
		}

		fmt.Println()
		fmt.Println()
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Println()
	return nil
}

// sendAndStream sends one turn and streams the answer to stdout. Returns the
// response id to thread the next turn from.
func (c *chatCommander) sendAndStream(ctx context.Context, cl *client.Client, model, input, previousID string) (string, error) {
	req := responses.NewTextRequest(model, input)
	req.PreviousResponseID = previousID

	c.logger.Debug("sending chat turn",
		zap.String("model", model),
		zap.String("previous_response_id", utils.Truncate(previousID, 16)),
	)

	s, err := cl.StreamResponse(ctx, req)
	if err != nil {
		return "", err
	}
	defer func() { _ = s.Close() }()

	fmt.Print(assistantPrompt)

	var responseID string
	for {
		sr, err := s.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return responseID, err
		}

		switch stream.Classify(sr.EventType, "") {
		case stream.CategoryLifecycle:
			if sr.ID != "" {
				responseID = sr.ID
			}
		case stream.CategoryDelta:
			fmt.Print(sr.GetText())
		case stream.CategoryError:
			return responseID, fmt.Errorf("stream error: %s", sr.GetText())
		}
	}

	return responseID, nil
}
