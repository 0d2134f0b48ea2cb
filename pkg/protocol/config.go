package protocol

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/gamesrv/driftwatch/pkg/consts"
	derr "github.com/gamesrv/driftwatch/pkg/errors"
)

// Config is the root configuration. It is loaded once at startup and
// never mutated afterwards; the engine receives it by pointer and treats
// it as read-only.
type Config struct {
	Registry      RegistryConfig      `yaml:"registry" validate:"required"`
	Packages      []PackageRef        `yaml:"packages" validate:"required,min=1,dive"`
	Process       ProcessConfig       `yaml:"process" validate:"required"`
	Update        UpdateConfig        `yaml:"update"`
	Console       ConsoleConfig       `yaml:"console"`
	Signal        SignalConfig        `yaml:"signal"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type RegistryConfig struct {
	BaseURL        string `yaml:"base_url" validate:"required,url"`
	Branch         string `yaml:"branch"`
	TimeoutSeconds int    `yaml:"timeout_seconds" validate:"gte=0"`
}

// ProcessConfig tells the orchestrator how to find the supervised
// process. The pid file is read exactly once, at startup.
type ProcessConfig struct {
	PIDFile string `yaml:"pid_file" validate:"required"`
}

type UpdateConfig struct {
	Mode                string `yaml:"mode" validate:"omitempty,oneof=immediate graceful announce"`
	PollIntervalSeconds int    `yaml:"poll_interval_seconds" validate:"gte=0"`
	GracePeriodSeconds  int    `yaml:"grace_period_seconds" validate:"gte=0"`
}

// ConsoleConfig names the line-oriented control channel of the game
// server. With an empty target, warnings are only logged.
type ConsoleConfig struct {
	TmuxTarget string `yaml:"tmux_target"`
}

// SignalConfig configures the grace-extension signal channel.
type SignalConfig struct {
	// MarkerPath is the well-known path whose presence requests one
	// grace extension. Used by the poll and watch transports.
	MarkerPath string `yaml:"marker_path"`
	// Transport is one of "poll" (default), "watch" (inotify) or
	// "socket" (unix socket; a connection requests an extension).
	Transport  string `yaml:"transport" validate:"omitempty,oneof=poll watch socket"`
	SocketPath string `yaml:"socket_path"`
}

type ObservabilityConfig struct {
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Mode returns the configured update mode with the default applied.
func (c *Config) Mode() consts.UpdateMode {
	if c.Update.Mode == "" {
		return consts.DefaultMode
	}
	return consts.UpdateMode(c.Update.Mode)
}

func (c *Config) applyDefaults() {
	if c.Registry.Branch == "" {
		c.Registry.Branch = consts.DefaultBranch
	}
	if c.Update.PollIntervalSeconds == 0 {
		c.Update.PollIntervalSeconds = consts.DefaultPollInterval
	}
	if c.Update.GracePeriodSeconds == 0 {
		c.Update.GracePeriodSeconds = consts.DefaultGracePeriod
	}
	if c.Signal.Transport == "" {
		c.Signal.Transport = "poll"
	}
	if c.Signal.MarkerPath == "" {
		c.Signal.MarkerPath = "/tmp/driftwatch-extend"
	}
}

// Load reads, defaults and validates a configuration file. Any failure
// here is the fail-fast class: the orchestrator must not enter its poll
// loop on a broken configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, derr.New(derr.ErrCodeConfigInvalid, "config.load", "reading config file", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, derr.New(derr.ErrCodeConfigInvalid, "config.load", "parsing config file", err)
	}
	cfg.applyDefaults()

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, derr.New(derr.ErrCodeConfigInvalid, "config.validate", "invalid configuration", err)
	}
	if cfg.Signal.Transport == "socket" && cfg.Signal.SocketPath == "" {
		return nil, derr.New(derr.ErrCodeConfigInvalid, "config.validate", "signal.socket_path required for socket transport", nil)
	}
	return &cfg, nil
}
