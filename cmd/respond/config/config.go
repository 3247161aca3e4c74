// Package configcmder provides the config command for managing persistent
// respond configuration stored in the .respond/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent respond configuration.

Configuration is stored as config.toml in the .respond/ directory and provides
default values for command flags. CLI flags always take precedence over
config file values.

Keys use dotted notation matching the TOML section structure:
  client.base_url, client.model, client.organization, client.timeout_seconds,
  cache.enabled, cache.driver, cache.sqlite_path, cache.postgres_url,
  replay.listen, replay.transcripts

Use subcommands to get, set, or list configuration values:
  respond config set <key> <value>    Set a configuration value
  respond config get <key>            Get a configuration value
  respond config list                 List all configuration values

Examples:
  respond config set client.model o4-mini
  respond config set cache.enabled true
  respond config get client.base_url
  respond config list`

const configShortDesc string = "Manage persistent respond configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
