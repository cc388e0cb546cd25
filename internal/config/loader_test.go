package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/teampicker/internal/config"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		_ = os.Setenv("TEAMPICKER_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 256)
				convey.So(cfg.CommandPrefix, convey.ShouldEqual, "!")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("TEAMPICKER_ADDR", ":8080")
			_ = os.Setenv("TEAMPICKER_SHARD_COUNT", "3")
			_ = os.Setenv("TEAMPICKER_COMMAND_PREFIX", "?")
			_ = os.Setenv("TEAMPICKER_DISCORD_TOKEN", "secret")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ShardCount, convey.ShouldEqual, 3)
				convey.So(cfg.CommandPrefix, convey.ShouldEqual, "?")
				convey.So(cfg.DiscordToken, convey.ShouldEqual, "secret")
			})
		})

		convey.Convey("When loading config with a YAML file and env overrides", func() {
			tmpFile := createTempConfigFile(t, `
addr: ":9090"
queue_size: 64
dedupe_size: 100
tiers:
  rookie: 500
  pro: 1500
`)
			_ = os.Setenv("TEAMPICKER_CONFIG", tmpFile)
			_ = os.Setenv("TEAMPICKER_ADDR", ":7070")

			cfg, err := config.Load(ctx)

			convey.Convey("Then env wins over the file and the file over defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 100)
				convey.So(cfg.CommandTimeoutMS, convey.ShouldEqual, 5_000)
				convey.So(cfg.Tiers, convey.ShouldResemble, map[string]int{"rookie": 500, "pro": 1500})
			})
		})

		convey.Convey("When a .env file is present", func() {
			dotenv := filepath.Join(t.TempDir(), "test.env")
			convey.So(os.WriteFile(dotenv, []byte("TEAMPICKER_DISCORD_TOKEN=from-dotenv\nTEAMPICKER_ADDR=:6060\n"), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("TEAMPICKER_ENV_FILE", dotenv)
			_ = os.Setenv("TEAMPICKER_ADDR", ":5050")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it fills in values without overriding the environment", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DiscordToken, convey.ShouldEqual, "from-dotenv")
				convey.So(cfg.Addr, convey.ShouldEqual, ":5050")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			_ = os.Setenv("TEAMPICKER_CONFIG", createTempConfigFile(t, `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("TEAMPICKER_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("TEAMPICKER_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// clearConfigEnvVars clears every variable the loader reads.
func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "TEAMPICKER_") {
			_ = os.Unsetenv(key)
		}
	}
}

// createTempConfigFile writes content to a temporary YAML file.
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
