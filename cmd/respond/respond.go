// Package respondcmder
package respondcmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/respond/cmd/respond/ask"
	authcmder "github.com/papercomputeco/respond/cmd/respond/auth"
	chatcmder "github.com/papercomputeco/respond/cmd/respond/chat"
	configcmder "github.com/papercomputeco/respond/cmd/respond/config"
	initcmder "github.com/papercomputeco/respond/cmd/respond/init"
	replaycmder "github.com/papercomputeco/respond/cmd/respond/replay"
	versioncmder "github.com/papercomputeco/respond/cmd/version"
)

const respondLongDesc string = `Respond is a streaming client for the OpenAI Responses API.

Ask questions, hold interactive chats, cache identical responses locally,
and replay recorded SSE transcripts for offline development:
  respond ask       Send a one-shot prompt
  respond chat      Start an interactive chat session
  respond replay    Serve recorded transcripts as a local API stand-in`

const respondShortDesc string = "Respond - Responses API client"

func NewRespondCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "respond",
		Short: respondShortDesc,
		Long:  respondLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to the .respond/ config directory")

	// Add subcommands
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(replaycmder.NewReplayCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
