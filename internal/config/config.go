package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/jsonviewer/internal/errors"
	"github.com/mcncl/jsonviewer/internal/parser"
	"github.com/mcncl/jsonviewer/internal/viewer"
)

// Config represents the complete configuration for jsonviewer
type Config struct {
	Render RenderConfig `yaml:"render" toml:"render"`
	Page   PageConfig   `yaml:"page" toml:"page"`
	Parser ParserConfig `yaml:"parser" toml:"parser"`
	Server ServerConfig `yaml:"server" toml:"server"`
	Dev    DevConfig    `yaml:"dev" toml:"dev"`
}

// RenderConfig mirrors the viewer options
type RenderConfig struct {
	Collapsed             bool   `yaml:"collapsed" toml:"collapsed"`
	RootCollapsable       bool   `yaml:"root_collapsable" toml:"root_collapsable"`
	WithQuotes            bool   `yaml:"with_quotes" toml:"with_quotes"`
	WithLinks             bool   `yaml:"with_links" toml:"with_links"`
	BigNumbers            bool   `yaml:"big_numbers" toml:"big_numbers"`
	StringLengthThreshold int    `yaml:"string_length_threshold" toml:"string_length_threshold"`
	MaxDepth              int    `yaml:"max_depth" toml:"max_depth"`
	KeyNaming             string `yaml:"key_naming" toml:"key_naming"`
}

// PageConfig controls the generated HTML page
type PageConfig struct {
	Title        string `yaml:"title" toml:"title"`
	Fragment     bool   `yaml:"fragment" toml:"fragment"`
	ElapsedLabel bool   `yaml:"elapsed_label" toml:"elapsed_label"`

	// Script embeds the click handlers and label updater in full pages.
	// Without it a page is a static snapshot.
	Script bool `yaml:"script" toml:"script"`
}

// ParserConfig controls JSON decoding
type ParserConfig struct {
	LosslessNumbers bool `yaml:"lossless_numbers" toml:"lossless_numbers"`
	Canonical       bool `yaml:"canonical" toml:"canonical"`
}

// ServerConfig controls the HTTP server
type ServerConfig struct {
	Addr            string        `yaml:"addr" toml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" toml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" toml:"max_body_bytes"`

	// H2C accepts HTTP/2 without TLS in addition to HTTP/1.1
	H2C bool `yaml:"h2c" toml:"h2c"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug   bool `yaml:"debug" toml:"debug"`
	Verbose bool `yaml:"verbose" toml:"verbose"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	defaults := viewer.DefaultOptions()
	return &Config{
		Render: RenderConfig{
			Collapsed:             defaults.Collapsed,
			RootCollapsable:       defaults.RootCollapsable,
			WithQuotes:            defaults.WithQuotes,
			WithLinks:             defaults.WithLinks,
			BigNumbers:            defaults.BigNumbers,
			StringLengthThreshold: defaults.StringLengthThreshold,
			MaxDepth:              0,
			KeyNaming:             viewer.KeyNamingNone,
		},
		Page: PageConfig{
			Title:        "JSON Viewer",
			Fragment:     false,
			ElapsedLabel: true,
			Script:       true,
		},
		Parser: ParserConfig{
			LosslessNumbers: false,
			Canonical:       false,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			MaxBodyBytes:    10 << 20,
		},
		Dev: DevConfig{
			Debug:   false,
			Verbose: false,
		},
	}
}

// LoadConfig loads configuration from a YAML or TOML file, chosen by the
// file extension
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return cfg, nil
}

// ConfigNames are the file names FindConfigFile looks for, in order
var ConfigNames = []string{".jsonviewer.yml", ".jsonviewer.yaml", ".jsonviewer.toml", "jsonviewer.yml", "jsonviewer.yaml", "jsonviewer.toml"}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up the directory tree
	for {
		for _, name := range ConfigNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// ParserOptions converts the parser section into parser options
func (c *Config) ParserOptions() []parser.Option {
	return c.Parser.Options()
}

// Options converts p into parser options.
func (p ParserConfig) Options() []parser.Option {
	var opts []parser.Option
	if p.LosslessNumbers {
		opts = append(opts, parser.WithLosslessNumbers())
	}
	if p.Canonical {
		opts = append(opts, parser.WithCanonicalForm())
	}
	return opts
}

// ViewerOptions converts the render section into viewer options
func (c *Config) ViewerOptions() viewer.Options {
	return viewer.Options{
		Collapsed:             c.Render.Collapsed,
		RootCollapsable:       c.Render.RootCollapsable,
		WithQuotes:            c.Render.WithQuotes,
		WithLinks:             c.Render.WithLinks,
		BigNumbers:            c.Render.BigNumbers,
		StringLengthThreshold: c.Render.StringLengthThreshold,
		MaxDepth:              c.Render.MaxDepth,
		KeyNaming:             c.Render.KeyNaming,
	}
}

// Validate checks values that would otherwise be clamped or ignored
func (c *Config) Validate() error {
	if err := c.ViewerOptions().Validate(); err != nil {
		return err
	}
	if c.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("server max_body_bytes %d is negative", c.Server.MaxBodyBytes)
	}
	// Nothing could reveal the hidden content of a collapsed static page.
	if c.Render.Collapsed && !c.Page.Script && !c.Page.Fragment {
		return fmt.Errorf("collapsed pages need the page script: %w", errors.ErrInvalidOption)
	}
	return nil
}

// Overrides holds values given on the command line. Boolean fields only
// take effect when set; numeric fields use -1 for "not given".
type Overrides struct {
	Collapsed         bool
	NoRootCollapsable bool
	WithQuotes        bool
	NoLinks           bool
	BigNumbers        bool
	Threshold         int
	MaxDepth          int
	Title             string
	Fragment          bool
	NoElapsedLabel    bool
	NoScript          bool
	LosslessNumbers   bool
	Canonical         bool
	Addr              string
	Debug             bool
}

// NoOverrides returns an Overrides value that changes nothing
func NoOverrides() Overrides {
	return Overrides{Threshold: -1, MaxDepth: -1}
}

// ApplyOverrides merges CLI values into c
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Collapsed {
		c.Render.Collapsed = true
	}
	if o.NoRootCollapsable {
		c.Render.RootCollapsable = false
	}
	if o.WithQuotes {
		c.Render.WithQuotes = true
	}
	if o.NoLinks {
		c.Render.WithLinks = false
	}
	if o.BigNumbers {
		c.Render.BigNumbers = true
	}
	if o.Threshold >= 0 {
		c.Render.StringLengthThreshold = o.Threshold
	}
	if o.MaxDepth >= 0 {
		c.Render.MaxDepth = o.MaxDepth
	}
	if o.Title != "" {
		c.Page.Title = o.Title
	}
	if o.Fragment {
		c.Page.Fragment = true
	}
	if o.NoElapsedLabel {
		c.Page.ElapsedLabel = false
	}
	if o.NoScript {
		c.Page.Script = false
	}
	if o.LosslessNumbers {
		c.Parser.LosslessNumbers = true
	}
	if o.Canonical {
		c.Parser.Canonical = true
	}
	if o.Addr != "" {
		c.Server.Addr = o.Addr
	}
	if o.Debug {
		c.Dev.Debug = true
	}
}

// LoadConfigWithCLI loads config with CLI argument precedence
func LoadConfigWithCLI(configPath string, o Overrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	cfg.ApplyOverrides(o)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
