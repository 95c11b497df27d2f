package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration accepts "30s" style values in yaml, which the yaml package does
// not do for time.Duration on its own.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

type Config struct {
	App         AppConfig         `yaml:"app"`
	Server      ServerConfig      `yaml:"server"`
	ReconAPI    ReconAPIConfig    `yaml:"recon_api"`
	EmailBridge EmailBridgeConfig `yaml:"email_bridge"`
	Logging     LoggingConfig     `yaml:"logging"`
	Debug       bool              `yaml:"debug"`
}

type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Env     string `yaml:"env"`
}

type ServerConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

type ReconAPIConfig struct {
	// BaseURL is the recon API root (e.g. https://recon.benow.in/api/recon).
	BaseURL  string `yaml:"base_url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// MetadataTimeout bounds login, mapping and status calls.
	// TransferTimeout bounds uploads and downloads, which can be large.
	MetadataTimeout Duration `yaml:"metadata_timeout"`
	TransferTimeout Duration `yaml:"transfer_timeout"`
}

type EmailBridgeConfig struct {
	BaseURL string   `yaml:"base_url"`
	Timeout Duration `yaml:"timeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Validation is the result of checking the loaded configuration. Errors
// prevent startup; warnings are logged and ignored.
type Validation struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

const (
	defaultBaseURL       = "https://recon.benow.in/api/recon"
	defaultBridgeURL     = "http://localhost:8080"
	defaultPort          = 8000
	defaultMetadataTime  = 30 * time.Second
	defaultTransferTime  = 120 * time.Second
	defaultBridgeTimeout = 30 * time.Second
	defaultShutdownTime  = 10 * time.Second
	defaultReadWriteTime = 30 * time.Second
)

// Load reads an optional config file (CONFIG_PATH, default config.yaml),
// fills in defaults, then applies environment overrides. Environment wins
// so deployments can configure the remote API and credentials without a file.
func Load() (*Config, error) {
	config := &Config{}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err == nil {
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config.applyDefaults()
	config.applyEnv()

	return config, nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "giarecon"
	}
	if c.App.Version == "" {
		c.App.Version = "0.1.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(defaultReadWriteTime)
	}
	if c.Server.WriteTimeout == 0 {
		// Downloads are proxied synchronously, so the write timeout must
		// cover a full transfer.
		c.Server.WriteTimeout = Duration(defaultTransferTime + defaultReadWriteTime)
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(defaultShutdownTime)
	}
	if c.ReconAPI.BaseURL == "" {
		c.ReconAPI.BaseURL = defaultBaseURL
	}
	if c.ReconAPI.MetadataTimeout == 0 {
		c.ReconAPI.MetadataTimeout = Duration(defaultMetadataTime)
	}
	if c.ReconAPI.TransferTimeout == 0 {
		c.ReconAPI.TransferTimeout = Duration(defaultTransferTime)
	}
	if c.EmailBridge.BaseURL == "" {
		c.EmailBridge.BaseURL = defaultBridgeURL
	}
	if c.EmailBridge.Timeout == 0 {
		c.EmailBridge.Timeout = Duration(defaultBridgeTimeout)
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("RECON_API_BASE_URL"); v != "" {
		c.ReconAPI.BaseURL = v
	}
	if v := os.Getenv("RECON_USERNAME"); v != "" {
		c.ReconAPI.Username = v
	}
	if v := os.Getenv("RECON_PASSWORD"); v != "" {
		c.ReconAPI.Password = v
	}
	if v := os.Getenv("EMAIL_BRIDGE_API_URL"); v != "" {
		c.EmailBridge.BaseURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("DEBUG"); v != "" {
		c.Debug = strings.EqualFold(v, "true")
	}
	if c.Debug {
		c.Logging.Level = "debug"
	}

	c.ReconAPI.BaseURL = strings.TrimRight(c.ReconAPI.BaseURL, "/")
	c.EmailBridge.BaseURL = strings.TrimRight(c.EmailBridge.BaseURL, "/")
}

// Validate checks the configuration the way startup diagnostics expect:
// a bad base URL is fatal, missing credentials only mean authentication
// needs explicit credentials at call time.
func (c *Config) Validate() Validation {
	var result Validation

	if c.ReconAPI.BaseURL == "" {
		result.Errors = append(result.Errors, "RECON_API_BASE_URL is not set")
	} else if !strings.HasPrefix(c.ReconAPI.BaseURL, "http://") && !strings.HasPrefix(c.ReconAPI.BaseURL, "https://") {
		result.Errors = append(result.Errors, "RECON_API_BASE_URL must start with http:// or https://")
	}

	if c.ReconAPI.Username == "" {
		result.Warnings = append(result.Warnings, "RECON_USERNAME is not set - authentication will require credentials at runtime")
	}
	if c.ReconAPI.Password == "" {
		result.Warnings = append(result.Warnings, "RECON_PASSWORD is not set - authentication will require credentials at runtime")
	}

	result.Valid = len(result.Errors) == 0
	return result
}
