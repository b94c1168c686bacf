package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"wifilayer/internal/model"
)

const (
	DefaultDetectMode     = "mock"
	DefaultDetectDelay    = "1s"
	DefaultSTUNTimeout    = "3s"
	DefaultLogLevel       = "info"
	DefaultAPIListen      = "127.0.0.1:8080"
	DefaultRateLimitRPS   = 5.0
	DefaultRateLimitBurst = 10

	DetectModeMock   = "mock"
	DetectModeStatic = "static"
)

// Config holds all wifilayer settings.
type Config struct {
	LogLevel string       `yaml:"log_level"`
	Detect   DetectConfig `yaml:"detect"`
	Tunnel   TunnelConfig `yaml:"tunnel"`
	API      APIConfig    `yaml:"api"`
}

// DetectConfig selects the network describer.
type DetectConfig struct {
	Mode        string                    `yaml:"mode"`
	Seed        int64                     `yaml:"seed,omitempty"`
	Delay       string                    `yaml:"delay"`
	Static      *model.NetworkObservation `yaml:"static,omitempty"`
	STUNServers []string                  `yaml:"stun_servers,omitempty"`
	STUNTimeout string                    `yaml:"stun_timeout"`
}

// TunnelConfig holds defaults applied to tunnel requests before user input.
type TunnelConfig struct {
	ClientName    string `yaml:"client_name"`
	AllowedRoutes string `yaml:"allowed_routes"`
	ClientAddress string `yaml:"client_address,omitempty"`
	DNSServer     string `yaml:"dns_server,omitempty"`
	OutputDir     string `yaml:"output_dir,omitempty"`
}

// APIConfig is used by the HTTP server.
type APIConfig struct {
	Listen         string  `yaml:"listen"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

// Default returns a config with every default applied.
func Default() Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return cfg
}

// Load reads and parses a YAML config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	ApplyDefaults(&cfg)
	return cfg, nil
}

// Save writes a YAML config file to disk.
func Save(path string, cfg Config) error {
	ApplyDefaults(&cfg)
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Validate checks field values that defaults cannot repair.
func Validate(cfg Config) error {
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	switch cfg.Detect.Mode {
	case DetectModeMock:
	case DetectModeStatic:
		if cfg.Detect.Static != nil && cfg.Detect.Static.Connected && cfg.Detect.Static.SSID == "" {
			return fmt.Errorf("detect.static.ssid is required when connected")
		}
	default:
		return fmt.Errorf("detect.mode must be %q or %q, got %q", DetectModeMock, DetectModeStatic, cfg.Detect.Mode)
	}
	if _, err := time.ParseDuration(cfg.Detect.Delay); err != nil {
		return fmt.Errorf("detect.delay: %w", err)
	}
	if _, err := time.ParseDuration(cfg.Detect.STUNTimeout); err != nil {
		return fmt.Errorf("detect.stun_timeout: %w", err)
	}
	if cfg.API.Listen == "" {
		return fmt.Errorf("api.listen is required")
	}
	if cfg.API.RateLimitRPS < 0 || cfg.API.RateLimitBurst < 0 {
		return fmt.Errorf("api rate limit must not be negative")
	}
	return nil
}

// ApplyDefaults fills in default values when empty.
func ApplyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.Detect.Mode == "" {
		cfg.Detect.Mode = DefaultDetectMode
	}
	if cfg.Detect.Delay == "" {
		cfg.Detect.Delay = DefaultDetectDelay
	}
	if cfg.Detect.STUNTimeout == "" {
		cfg.Detect.STUNTimeout = DefaultSTUNTimeout
	}
	if cfg.Tunnel.ClientName == "" {
		cfg.Tunnel.ClientName = model.DefaultClientName
	}
	if cfg.Tunnel.AllowedRoutes == "" {
		cfg.Tunnel.AllowedRoutes = model.DefaultAllowedRoutes
	}
	if cfg.API.Listen == "" {
		cfg.API.Listen = DefaultAPIListen
	}
	if cfg.API.RateLimitRPS == 0 {
		cfg.API.RateLimitRPS = DefaultRateLimitRPS
	}
	if cfg.API.RateLimitBurst == 0 {
		cfg.API.RateLimitBurst = DefaultRateLimitBurst
	}
}

// DetectDelay returns the parsed simulated detection delay.
func (c DetectConfig) DetectDelay() time.Duration {
	d, _ := time.ParseDuration(c.Delay)
	return d
}

// STUNTimeoutDuration returns the parsed per-server STUN timeout.
func (c DetectConfig) STUNTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.STUNTimeout)
	return d
}

// TunnelRequest returns a draft seeded from the tunnel defaults.
func (c TunnelConfig) TunnelRequest() model.TunnelRequest {
	req := model.DefaultTunnelRequest()
	if c.ClientName != "" {
		req.ClientName = c.ClientName
	}
	if c.AllowedRoutes != "" {
		req.AllowedRoutes = c.AllowedRoutes
	}
	req.ClientAddress = c.ClientAddress
	req.DNSServer = c.DNSServer
	return req
}

// LoadTunnelRequest reads a YAML tunnel request, layering it over base.
func LoadTunnelRequest(path string, base model.TunnelRequest) (model.TunnelRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.TunnelRequest{}, err
	}
	req := base
	if err := yaml.Unmarshal(data, &req); err != nil {
		return model.TunnelRequest{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return req, nil
}
