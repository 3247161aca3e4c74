// Package askcmder provides the ask command for one-shot prompts against
// the Responses API.
package askcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

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
)

type askCommander struct {
	model        string
	baseURL      string
	organization string
	timeout      uint
	cacheEnabled bool
	cacheDriver  string
	sqlitePath   string
	postgresURL  string
	noStream     bool
	raw          bool
	record       string
	debug        bool

	configDir string
	viper     *viper.Viper
	logger    *zap.Logger
}

var askFlagKeys = []string{
	config.FlagModel,
	config.FlagBaseURL,
	config.FlagOrganization,
	config.FlagTimeout,
	config.FlagCacheEnabled,
	config.FlagCacheDriver,
	config.FlagSQLite,
	config.FlagPostgres,
}

const askLongDesc string = `Send a one-shot prompt to the Responses API and print the answer.

By default the response is streamed to stdout as it is generated. With
--no-stream the full response is fetched in one request and rendered as
markdown; combine with --raw to skip rendering.

Identical prompts are served from the local response cache when caching
is enabled (--cache or "respond config set cache.enabled true").

With --record the raw SSE bytes of a streamed response are written to a
transcript file that "respond replay" can serve back later.

Examples:
  respond ask "What is the capital of France?"
  respond ask --model o4-mini "Explain generics in Go"
  respond ask --no-stream --cache "Summarize RFC 9110"
  respond ask --record weather.sse "What's the weather in Paris?"
  echo "prompt" | xargs respond ask`

const askShortDesc string = "Send a one-shot prompt to the Responses API"

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <prompt>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(cmd.Context(), strings.Join(args, " "))
		},
	}

	config.AddStringFlag(cmd, config.DefaultFlags, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, config.DefaultFlags, config.FlagBaseURL, &cmder.baseURL)
	config.AddStringFlag(cmd, config.DefaultFlags, config.FlagOrganization, &cmder.organization)
	config.AddUintFlag(cmd, config.DefaultFlags, config.FlagTimeout, &cmder.timeout)
	config.AddBoolFlag(cmd, config.DefaultFlags, config.FlagCacheEnabled, &cmder.cacheEnabled)
	config.AddStringFlag(cmd, config.DefaultFlags, config.FlagCacheDriver, &cmder.cacheDriver)
	config.AddStringFlag(cmd, config.DefaultFlags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.DefaultFlags, config.FlagPostgres, &cmder.postgresURL)

	cmd.Flags().BoolVar(&cmder.noStream, "no-stream", false, "Wait for the full response instead of streaming")
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print the response without markdown rendering")
	cmd.Flags().StringVar(&cmder.record, "record", "", "Write the raw SSE bytes to this transcript file while streaming")

	return cmd
}

// setup wires flags into the viper precedence chain (flag > env > config
// file > default).
func (c *askCommander) setup(cmd *cobra.Command) error {
	c.configDir, _ = cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(c.configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	config.BindRegisteredFlags(v, cmd, config.DefaultFlags, askFlagKeys)
	c.viper = v

	return nil
}

func (c *askCommander) run(ctx context.Context, prompt string) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	cl, err := session.NewClient(c.viper, c.configDir, c.logger)
	if err != nil {
		return err
	}
	defer func() { _ = cl.Close() }()

	req := responses.NewTextRequest(c.viper.GetString("client.model"), prompt)

	if c.noStream {
		return c.runComplete(ctx, cl, req)
	}

	return c.runStream(ctx, cl, req)
}

// runComplete fetches the whole response in one request and renders it.
func (c *askCommander) runComplete(ctx context.Context, cl *client.Client, req *responses.Request) error {
	resp, err := cl.CreateResponse(ctx, req)
	if err != nil {
		return err
	}

	text := resp.GetText()
	if c.raw {
		fmt.Println(text)
		return nil
	}

	rendered, err := cliui.RenderMarkdown(text)
	if err != nil {
		// Rendering failures degrade to plain text
		fmt.Println(text)
		return nil
	}

	fmt.Print(rendered)
	return nil
}

// runStream prints text fragments as they arrive, recording the raw stream
// to a transcript when --record names a file.
func (c *askCommander) runStream(ctx context.Context, cl *client.Client, req *responses.Request) error {
	var s *client.Stream
	var err error

	if c.record != "" {
		f, createErr := os.Create(c.record)
		if createErr != nil {
			return fmt.Errorf("creating transcript: %w", createErr)
		}
		defer func() { _ = f.Close() }()

		s, err = cl.RecordStreamResponse(ctx, req, f)
	} else {
		s, err = cl.StreamResponse(ctx, req)
	}
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	for {
		sr, err := s.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		switch stream.Classify(sr.EventType, "") {
		case stream.CategoryDelta:
			fmt.Print(sr.GetText())
		case stream.CategoryError:
			fmt.Fprintf(os.Stderr, "\n  %s %s\n", cliui.FailMark, sr.GetText())
		}
	}

	fmt.Println()
	return nil
}
