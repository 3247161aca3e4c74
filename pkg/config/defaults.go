package config

const (
	defaultBaseURL        = "https://api.openai.com/v1"
	defaultModel          = "gpt-4o"
	defaultTimeoutSeconds = 300

	defaultCacheDriver = "sqlite"

	defaultReplayListen = ":8099"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Client: ClientConfig{
			BaseURL:        defaultBaseURL,
			Model:          defaultModel,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Cache: CacheConfig{
			Enabled: false,
			Driver:  defaultCacheDriver,
		},
		Replay: ReplayConfig{
			Listen: defaultReplayListen,
		},
	}
}
