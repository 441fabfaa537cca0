package main

import (
	"os"
	"time"

	"github.com/lodthe/tagwatch/internal/watcher"
	"github.com/lodthe/tagwatch/pkg/dockerhub"

	gconfig "github.com/gookit/config/v2"
	gyaml "github.com/gookit/config/v2/yaml"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

const DefaultConfigPath = "config.yaml"

const (
	JSONLogFormat   = "json"
	PrettyLogFormat = "pretty"
)

type Config struct {
	Discord Discord `mapstructure:"discord"`

	DockerHub DockerHub `mapstructure:"dockerhub"`

	Docker Docker `mapstructure:"docker"`

	PollInterval time.Duration `mapstructure:"poll_interval"`

	StatePath string `mapstructure:"state_path"`

	OpsAddress              string `mapstructure:"ops_address"`
	PrometheusExportAddress string `mapstructure:"prometheus_address"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

type Discord struct {
	Token     string `mapstructure:"token"`
	ChannelID string `mapstructure:"channel_id"`
}

type DockerHub struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	MaxRPS   int    `mapstructure:"max_rps"`
}

type Docker struct {
	DaemonURL string `mapstructure:"daemon_url"`
}

func LoadConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = DefaultConfigPath
	}

	gconfig.WithOptions(
		gconfig.ParseEnv,
		gconfig.Readonly,
		func(opts *gconfig.Options) {
			opts.DecoderConfig = &mapstructure.DecoderConfig{
				TagName:          "mapstructure",
				WeaklyTypedInput: true,
				DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
			}
		},
	)
	gconfig.AddDriver(gyaml.Driver)

	err := gconfig.LoadFiles(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}

	cfg := new(Config)
	err = gconfig.BindStruct("", cfg)
	if err != nil {
		return nil, errors.Wrap(err, "config binding failed")
	}

	err = cfg.validate()
	if err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return cfg, nil
}

// validate verifies the loaded config and sets default values for missed fields.
func (c *Config) validate() error {
	if c.Discord.Token == "" {
		return errors.New("discord.token is required")
	}
	if c.Discord.ChannelID == "" {
		return errors.New("discord.channel_id is required")
	}

	if c.DockerHub.MaxRPS == 0 {
		c.DockerHub.MaxRPS = dockerhub.DefaultMaxRPS
	}

	if c.PollInterval == 0 {
		c.PollInterval = watcher.DefaultInterval
	}

	if c.StatePath == "" {
		c.StatePath = "tagwatch.db"
	}

	if c.OpsAddress == "" {
		c.OpsAddress = ":9100"
	}
	if c.PrometheusExportAddress == "" {
		c.PrometheusExportAddress = ":2112"
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	switch c.LogFormat {
	case JSONLogFormat, PrettyLogFormat:

	case "":
		c.LogFormat = JSONLogFormat

	default:
		return errors.Errorf("unknown log format %s (supported: %s, %s)", c.LogFormat, JSONLogFormat, PrettyLogFormat)
	}

	return nil
}
