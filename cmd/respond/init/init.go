// Package initcmder provides the init command for initializing a local
// .respond directory in the current working directory.
package initcmder

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/respond/pkg/config"
)

const (
	dirName    = ".respond"
	configFile = "config.toml"
)

const initLongDesc string = `Initialize a new .respond/ directory in the current working directory.

Creates a local .respond/ directory that takes precedence over the default
~/.respond/ directory for configuration, credentials, and the response cache.
A config.toml with default values is written when none exists.

This is useful for maintaining separate respond state per project or directory.

With --preset, the config.toml is written from a named preset or fetched
from a remote URL. Named presets: openai, replay.

Examples:
  respond init
  respond init --preset openai
  respond init --preset replay
  respond init --preset https://example.com/team-config.toml`

const initShortDesc string = "Initialize a local .respond/ directory"

func NewInitCmd() *cobra.Command {
	var preset string

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit(preset)
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "", "Config preset name (openai, replay) or URL to a config.toml")

	return cmd
}

func runInit(preset string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating .respond directory: %w", err)
	}

	configPath := filepath.Join(dir, configFile)

	if preset != "" {
		cfg, err := resolvePreset(preset)
		if err != nil {
			return err
		}

		if err := writeConfig(dir, cfg); err != nil {
			return err
		}

		fmt.Printf("Initialized .respond directory: %s (preset: %s)\n", dir, preset)
		return nil
	}

	// Plain init never clobbers an existing config
	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Already initialized: %s\n", dir)
		return nil
	}

	if err := writeConfig(dir, config.NewDefaultConfig()); err != nil {
		return err
	}

	fmt.Printf("Initialized .respond directory: %s\n", dir)
	return nil
}

// resolvePreset maps a preset argument to a Config: a named preset, or a
// remote config.toml fetched over HTTP.
func resolvePreset(preset string) (*config.Config, error) {
	if strings.HasPrefix(preset, "http://") || strings.HasPrefix(preset, "https://") {
		return fetchRemoteConfig(preset)
	}

	return config.PresetConfig(preset)
}

func fetchRemoteConfig(url string) (*config.Config, error) {
	client := &http.Client{Timeout: 30 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching remote config: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading remote config: %w", err)
	}

	return config.ParseConfigTOML(data)
}

func writeConfig(dir string, cfg *config.Config) error {
	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}

	if err := cfger.SaveConfig(cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
