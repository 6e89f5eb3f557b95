package config

import (
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/bcdannyboy/bsmrisk/mispricing"
	"github.com/bcdannyboy/bsmrisk/pricing"
	"github.com/bcdannyboy/bsmrisk/surface"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/cpu"
	"gopkg.in/yaml.v2"
)

const DefaultPath = "config.yaml"

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
	Format   string `yaml:"format"`
}

type MispricingConfig struct {
	Band float64 `yaml:"band"`
}

// SurfaceConfig sizes the sensitivity grid and its worker pool.
type SurfaceConfig struct {
	VolMin     float64 `yaml:"vol_min"`
	VolMax     float64 `yaml:"vol_max"`
	VolSteps   int     `yaml:"vol_steps"`
	TimePoints int     `yaml:"time_points"`
	MaxCells   int     `yaml:"max_cells"`
	Workers    int     `yaml:"workers"`
}

type PositionConfig struct {
	Contracts int `yaml:"contracts"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type SlackConfig struct {
	AppToken string `yaml:"app_token"`
	BotToken string `yaml:"bot_token"`
	Debug    bool   `yaml:"debug"`
}

type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Pricing    pricing.Config   `yaml:"pricing"`
	Mispricing MispricingConfig `yaml:"mispricing"`
	Surface    SurfaceConfig    `yaml:"surface"`
	Position   PositionConfig   `yaml:"position"`
	Server     ServerConfig     `yaml:"server"`
	Slack      SlackConfig      `yaml:"slack"`
}

func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			LogLevel: "info",
			Format:   "console",
		},
		Pricing:    pricing.DefaultConfig(),
		Mispricing: MispricingConfig{Band: mispricing.DefaultThreshold},
		Surface: SurfaceConfig{
			VolMin:     surface.DefaultVolMin,
			VolMax:     surface.DefaultVolMax,
			VolSteps:   surface.DefaultVolSteps,
			TimePoints: surface.DefaultTimePoints,
			MaxCells:   surface.DefaultMaxCells,
			Workers:    defaultWorkers(),
		},
		Position: PositionConfig{Contracts: 1},
		Server:   ServerConfig{Port: "8080"},
	}
}

// Load builds the configuration from defaults, then the YAML file at path,
// then .env and process environment. An empty path reads DefaultPath if it
// exists; an explicit path must exist.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "loading .env")
	}

	cfg := Default()
	required := path != ""
	if !required {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parsing %s", path)
		}
	case required || !os.IsNotExist(err):
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Logging.LogLevel = getEnv("BSM_LOG_LEVEL", c.Logging.LogLevel)
	c.Logging.LogFile = getEnv("BSM_LOG_FILE", c.Logging.LogFile)
	c.Logging.Format = getEnv("BSM_LOG_FORMAT", c.Logging.Format)
	c.Mispricing.Band = getEnvFloat("BSM_MISPRICING_BAND", c.Mispricing.Band)
	c.Surface.Workers = getEnvInt("BSM_WORKERS", c.Surface.Workers)
	c.Surface.MaxCells = getEnvInt("BSM_MAX_CELLS", c.Surface.MaxCells)
	c.Position.Contracts = getEnvInt("BSM_CONTRACTS", c.Position.Contracts)
	c.Server.Port = getEnv("BSM_PORT", c.Server.Port)
	c.Slack.AppToken = getEnv("SLACK_APP_TOKEN", c.Slack.AppToken)
	c.Slack.BotToken = getEnv("SLACK_BOT_TOKEN", c.Slack.BotToken)
	c.Slack.Debug = getEnvBool("BSM_SLACK_DEBUG", c.Slack.Debug)
}

func (c *Config) Validate() error {
	if err := c.Pricing.Validate(); err != nil {
		return err
	}
	if err := c.Bands().Validate(); err != nil {
		return err
	}
	s := c.Surface
	switch {
	case s.VolMin < 0 || s.VolMax < s.VolMin:
		return errors.Errorf("config: surface vol range [%g, %g] is invalid", s.VolMin, s.VolMax)
	case s.VolSteps < 1:
		return errors.Errorf("config: surface vol steps must be >= 1, got %d", s.VolSteps)
	case s.TimePoints < 1:
		return errors.Errorf("config: surface time points must be >= 1, got %d", s.TimePoints)
	case s.MaxCells < 1:
		return errors.Errorf("config: surface max cells must be >= 1, got %d", s.MaxCells)
	case s.Workers < 1:
		return errors.Errorf("config: surface workers must be >= 1, got %d", s.Workers)
	case c.Position.Contracts < 1:
		return errors.Errorf("config: position contracts must be >= 1, got %d", c.Position.Contracts)
	}
	switch strings.ToLower(c.Logging.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return errors.Errorf("config: unknown log level %q", c.Logging.LogLevel)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return errors.Errorf("config: unknown log format %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) Bands() mispricing.Bands {
	return mispricing.Bands{Expensive: c.Mispricing.Band, Cheap: -c.Mispricing.Band}
}

func (c *Config) SurfaceOptions() surface.Options {
	return surface.Options{
		VolMultipliers: surface.Range{Min: c.Surface.VolMin, Max: c.Surface.VolMax, Steps: c.Surface.VolSteps},
		TimePoints:     c.Surface.TimePoints,
		Workers:        c.Surface.Workers,
		MaxCells:       c.Surface.MaxCells,
	}
}

func defaultWorkers() int {
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
