// Package session builds a configured API client for the respond commands.
// It resolves the API key from stored credentials or the environment, and
// wires up the response cache when one is enabled.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/papercomputeco/respond/cmd/respond/cachepath"
	"github.com/papercomputeco/respond/pkg/cache"
	"github.com/papercomputeco/respond/pkg/cache/inmemory"
	"github.com/papercomputeco/respond/pkg/cache/postgres"
	"github.com/papercomputeco/respond/pkg/cache/sqlite"
	"github.com/papercomputeco/respond/pkg/client"
	"github.com/papercomputeco/respond/pkg/credentials"
)

const provider = "openai"

// APIKey resolves the OpenAI API key: stored credentials first, then the
// OPENAI_API_KEY environment variable.
func APIKey(configDir string) (string, error) {
	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return "", fmt.Errorf("loading credentials: %w", err)
	}

	key, err := mgr.GetKey(provider)
	if err == nil && key != "" {
		return key, nil
	}

	if envKey := os.Getenv(credentials.EnvVarForProvider(provider)); envKey != "" {
		return envKey, nil
	}

	return "", errors.New("no API key found; run 'respond auth openai' or set OPENAI_API_KEY")
}

// NewClient builds a client.Client from the effective viper configuration.
// The caller owns the returned client and must Close it to drain pending
// cache writes.
func NewClient(v *viper.Viper, configDir string, logger *zap.Logger) (*client.Client, error) {
	apiKey, err := APIKey(configDir)
	if err != nil {
		return nil, err
	}

	driver, err := newCacheDriver(v, logger)
	if err != nil {
		return nil, err
	}

	timeout := v.GetUint("client.timeout_seconds")

	c, err := client.New(client.Config{
		BaseURL:      v.GetString("client.base_url"),
		APIKey:       apiKey,
		Organization: v.GetString("client.organization"),
		Cache:        driver,
		HTTPClient: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}

	return c, nil
}

// newCacheDriver constructs the configured cache driver, or nil when
// caching is disabled.
func newCacheDriver(v *viper.Viper, logger *zap.Logger) (cache.Driver, error) {
	if !v.GetBool("cache.enabled") {
		return nil, nil
	}

	switch name := v.GetString("cache.driver"); name {
	case "sqlite":
		path, err := cachepath.ResolveCachePath(v.GetString("cache.sqlite_path"))
		if err != nil {
			return nil, err
		}
		logger.Debug("using sqlite cache", zap.String("path", path))
		return sqlite.NewDriver(path)

	case "postgres":
		connStr := v.GetString("cache.postgres_url")
		if connStr == "" {
			return nil, errors.New("cache.postgres_url is required for the postgres cache driver")
		}
		logger.Debug("using postgres cache")
		return postgres.NewDriver(context.Background(), connStr)

	case "memory":
		logger.Debug("using in-memory cache")
		return inmemory.NewDriver(), nil

	default:
		return nil, fmt.Errorf("unknown cache driver: %q (available: sqlite, postgres, memory)", name)
	}
}
