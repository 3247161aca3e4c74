// Package replaycmder provides the replay command for serving recorded
// SSE transcripts as a local stand-in for the Responses API.
package replaycmder

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/respond/pkg/config"
	"github.com/papercomputeco/respond/pkg/logger"
	"github.com/papercomputeco/respond/pkg/replay"
)

type replayCommander struct {
	listen      string
	transcripts string
	debug       bool

	logger *zap.Logger
}

var replayFlagKeys = []string{
	config.FlagReplayListen,
	config.FlagTranscripts,
}

const replayLongDesc string = `Serve recorded SSE transcripts as a local Responses API stand-in.

The replay server watches a directory of .sse transcript files and exposes
them over HTTP. POST /responses streams the transcript whose file name
matches the requested model, so clients can run against recorded sessions
without network access or API keys:

  respond config set client.base_url http://localhost:8099
  respond ask --model <transcript-name> "anything"

Transcripts added, changed, or removed while the server runs are picked up
automatically.

Endpoints:
  GET  /transcripts          List available transcripts
  GET  /transcripts/<name>   Replay one transcript
  POST /responses            Stream the transcript matching the model field

Examples:
  respond replay --transcripts ./transcripts
  respond replay --listen :9000 --transcripts ./transcripts`

const replayShortDesc string = "Serve recorded SSE transcripts"

func NewReplayCmd() *cobra.Command {
	cmder := &replayCommander{}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: replayShortDesc,
		Long:  replayLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.DefaultFlags, replayFlagKeys)

			cmder.listen = v.GetString("replay.listen")
			cmder.transcripts = v.GetString("replay.transcripts")

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.DefaultFlags, config.FlagReplayListen, &cmder.listen)
	config.AddStringFlag(cmd, config.DefaultFlags, config.FlagTranscripts, &cmder.transcripts)

	return cmd
}

func (c *replayCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	if c.transcripts == "" {
		return fmt.Errorf("transcripts directory required; pass --transcripts or set replay.transcripts")
	}

	server, err := replay.New(replay.Config{
		ListenAddr:     c.listen,
		TranscriptsDir: c.transcripts,
		Logger:         c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating replay server: %w", err)
	}
	defer func() { _ = server.Close() }()

	c.logger.Info("starting replay server",
		zap.String("listen", c.listen),
		zap.String("transcripts", c.transcripts),
		zap.Int("count", len(server.Names())),
	)

	errChan := make(chan error, 1)

	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("replay server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return nil
	}
}
