// Package config loads the client configuration: a YAML file validated
// against an embedded CUE schema. Absent files and absent fields fall
// back to defaults; present-but-invalid values fail loading.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Config is the full client configuration.
type Config struct {
	API      APIConfig      `yaml:"api" json:"api"`
	Store    StoreConfig    `yaml:"store" json:"store"`
	Explorer ExplorerConfig `yaml:"explorer" json:"explorer"`
	Checkout CheckoutConfig `yaml:"checkout" json:"checkout"`
}

// APIConfig configures the remote catalog client.
type APIConfig struct {
	BaseURL        string `yaml:"base_url" json:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// Timeout returns the request timeout as a duration.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// StoreConfig configures durable storage.
type StoreConfig struct {
	Path string `yaml:"path" json:"path"`
}

// ExplorerConfig configures the catalog query engine.
type ExplorerConfig struct {
	PageSize   int `yaml:"page_size" json:"page_size"`
	DebounceMS int `yaml:"debounce_ms" json:"debounce_ms"`
}

// Debounce returns the quiet period as a duration.
func (c ExplorerConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// CheckoutConfig configures the checkout state machine.
type CheckoutConfig struct {
	DelayMS int `yaml:"delay_ms" json:"delay_ms"`
}

// SubmitDelay returns the simulated submission latency as a duration.
func (c CheckoutConfig) SubmitDelay() time.Duration {
	return time.Duration(c.DelayMS) * time.Millisecond
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL:        "https://dummyjson.com/products",
			TimeoutSeconds: 10,
		},
		Store: StoreConfig{
			Path: defaultStorePath(),
		},
		Explorer: ExplorerConfig{
			PageSize:   12,
			DebounceMS: 500,
		},
		Checkout: CheckoutConfig{
			DelayMS: 2000,
		},
	}
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "merch.db"
	}
	return filepath.Join(home, ".merch", "merch.db")
}

// Load reads and validates a configuration file. An empty path or a
// missing file yields Default(); any present file must parse and
// validate.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML on top of the defaults and validates the result
// against the embedded CUE schema.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate unifies the configuration with the #Config schema definition.
func validate(cfg Config) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	def := schema.LookupPath(cue.ParsePath("#Config"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("lookup config schema: %w", err)
	}

	unified := def.Unify(ctx.Encode(cfg))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
