package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/respond/pkg/config"
)

var _ = Describe("NewDefaultConfig", func() {
	It("populates every section", func() {
		cfg := config.NewDefaultConfig()
		Expect(cfg.Client.BaseURL).To(Equal("https://api.openai.com/v1"))
		Expect(cfg.Client.Model).To(Equal("gpt-4o"))
		Expect(cfg.Client.TimeoutSeconds).To(Equal(uint(300)))
		Expect(cfg.Cache.Enabled).To(BeFalse())
		Expect(cfg.Cache.Driver).To(Equal("sqlite"))
		Expect(cfg.Replay.Listen).To(Equal(":8099"))
	})
})

var _ = Describe("ParseConfigTOML", func() {
	It("parses a full config file", func() {
		data := []byte(`version = 0

[client]
base_url = "http://localhost:8099"
model = "o4-mini"
timeout_seconds = 60

[cache]
enabled = true
driver = "postgres"
postgres_url = "postgres://localhost/respond"

[replay]
listen = ":9000"
transcripts = "/tmp/transcripts"
`)
		cfg, err := config.ParseConfigTOML(data)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Client.BaseURL).To(Equal("http://localhost:8099"))
		Expect(cfg.Client.Model).To(Equal("o4-mini"))
		Expect(cfg.Client.TimeoutSeconds).To(Equal(uint(60)))
		Expect(cfg.Cache.Enabled).To(BeTrue())
		Expect(cfg.Cache.Driver).To(Equal("postgres"))
		Expect(cfg.Cache.PostgresURL).To(Equal("postgres://localhost/respond"))
		Expect(cfg.Replay.Listen).To(Equal(":9000"))
		Expect(cfg.Replay.Transcripts).To(Equal("/tmp/transcripts"))
	})

	It("rejects an unsupported version", func() {
		_, err := config.ParseConfigTOML([]byte("version = 99"))
		Expect(err).To(MatchError(ContainSubstring("unsupported config version")))
	})

	It("rejects malformed TOML", func() {
		_, err := config.ParseConfigTOML([]byte("not valid [[["))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Configer", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
	})

	Describe("LoadConfig", func() {
		It("returns defaults when no config file exists", func() {
			cfger, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Client.Model).To(Equal("gpt-4o"))
		})

		It("fills zero-value fields from defaults", func() {
			data := `[client]
model = "o4-mini"
`
			Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())

			cfger, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Client.Model).To(Equal("o4-mini"))
			Expect(cfg.Client.BaseURL).To(Equal("https://api.openai.com/v1"))
			Expect(cfg.Client.TimeoutSeconds).To(Equal(uint(300)))
		})
	})

	Describe("SaveConfig", func() {
		It("round-trips the config with restricted permissions", func() {
			cfger, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())

			cfg := config.NewDefaultConfig()
			cfg.Client.Model = "o4-mini"
			Expect(cfger.SaveConfig(cfg)).To(Succeed())

			info, err := os.Stat(filepath.Join(tmpDir, "config.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))

			loaded, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Client.Model).To(Equal("o4-mini"))
		})

		It("rejects a nil config", func() {
			cfger, err := config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfger.SaveConfig(nil)).To(HaveOccurred())
		})
	})

	Describe("SetConfigValue and GetConfigValue", func() {
		var cfger *config.Configer

		BeforeEach(func() {
			var err error
			cfger, err = config.NewConfiger(tmpDir)
			Expect(err).NotTo(HaveOccurred())
		})

		It("sets and gets a string key", func() {
			Expect(cfger.SetConfigValue("client.model", "o4-mini")).To(Succeed())

			val, err := cfger.GetConfigValue("client.model")
			Expect(err).NotTo(HaveOccurred())
			Expect(val).To(Equal("o4-mini"))
		})

		It("sets and gets a bool key", func() {
			Expect(cfger.SetConfigValue("cache.enabled", "true")).To(Succeed())

			val, err := cfger.GetConfigValue("cache.enabled")
			Expect(err).NotTo(HaveOccurred())
			Expect(val).To(Equal("true"))
		})

		It("sets and gets a numeric key", func() {
			Expect(cfger.SetConfigValue("client.timeout_seconds", "120")).To(Succeed())

			val, err := cfger.GetConfigValue("client.timeout_seconds")
			Expect(err).NotTo(HaveOccurred())
			Expect(val).To(Equal("120"))
		})

		It("rejects invalid values for typed keys", func() {
			Expect(cfger.SetConfigValue("cache.enabled", "maybe")).To(HaveOccurred())
			Expect(cfger.SetConfigValue("client.timeout_seconds", "fast")).To(HaveOccurred())
		})

		It("rejects unknown keys", func() {
			Expect(cfger.SetConfigValue("nope.nope", "x")).To(MatchError(ContainSubstring("unknown config key")))

			_, err := cfger.GetConfigValue("nope.nope")
			Expect(err).To(MatchError(ContainSubstring("unknown config key")))
		})
	})
})

var _ = Describe("ValidConfigKeys", func() {
	It("covers every registered key exactly once", func() {
		keys := config.ValidConfigKeys()
		seen := map[string]bool{}
		for _, k := range keys {
			Expect(seen[k]).To(BeFalse(), "duplicate key %s", k)
			seen[k] = true
			Expect(config.IsValidConfigKey(k)).To(BeTrue())
		}
		Expect(keys).To(ContainElements(
			"client.base_url", "client.model", "cache.driver", "replay.listen",
		))
	})
})

var _ = Describe("PresetConfig", func() {
	It("builds the openai preset with caching on", func() {
		cfg, err := config.PresetConfig("openai")
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Client.BaseURL).To(Equal("https://api.openai.com/v1"))
		Expect(cfg.Cache.Enabled).To(BeTrue())
	})

	It("builds the replay preset pointed at the local server", func() {
		cfg, err := config.PresetConfig("replay")
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Client.BaseURL).To(Equal("http://localhost:8099"))
	})

	It("rejects unknown presets", func() {
		_, err := config.PresetConfig("azure")
		Expect(err).To(MatchError(ContainSubstring("unknown preset")))
	})
})

var _ = Describe("InitViper", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
	})

	It("applies defaults when no config file exists", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetString("client.model")).To(Equal("gpt-4o"))
		Expect(v.GetString("client.base_url")).To(Equal("https://api.openai.com/v1"))
	})

	It("reads values from config.toml", func() {
		data := `[client]
model = "o4-mini"
`
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetString("client.model")).To(Equal("o4-mini"))
	})

	It("lets environment variables override the file", func() {
		data := `[client]
model = "o4-mini"
`
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())
		Expect(os.Setenv("RESPOND_CLIENT_MODEL", "gpt-5")).To(Succeed())
		DeferCleanup(func() { os.Unsetenv("RESPOND_CLIENT_MODEL") })

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetString("client.model")).To(Equal("gpt-5"))
	})
})

var _ = Describe("Flag registry", func() {
	fs := config.FlagSet{
		config.FlagModel: {
			Name:        "model",
			Shorthand:   "m",
			ViperKey:    "client.model",
			Description: "model to use",
		},
	}

	It("registers a flag with the default from the config defaults", func() {
		cmd := &cobra.Command{Use: "test"}
		var model string
		config.AddStringFlag(cmd, fs, config.FlagModel, &model)

		f := cmd.Flags().Lookup("model")
		Expect(f).NotTo(BeNil())
		Expect(f.DefValue).To(Equal("gpt-4o"))
		Expect(f.Shorthand).To(Equal("m"))
	})

	It("binds flags into the viper precedence chain", func() {
		tmpDir := GinkgoT().TempDir()

		cmd := &cobra.Command{Use: "test"}
		var model string
		config.AddStringFlag(cmd, fs, config.FlagModel, &model)
		Expect(cmd.Flags().Set("model", "o4-mini")).To(Succeed())

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		config.BindRegisteredFlags(v, cmd, fs, []string{config.FlagModel})
		Expect(v.GetString("client.model")).To(Equal("o4-mini"))
	})
})
