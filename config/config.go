// Package config loads engine settings from YAML and the environment.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (CLOAK_POLICY, CLOAK_MAX_DEPTH, ...)
//  2. YAML document
//  3. Defaults
//
// Example document:
//
//	policy: fail-closed
//	max_depth: 64
//	quoted: false
//	codec: json
//	aliases:
//	  MOBILE: PHONE
//	disabled:
//	  - ADDRESS
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/zoobzio/cloak"
	bsoncodec "github.com/zoobzio/cloak/bson"
	jsoncodec "github.com/zoobzio/cloak/json"
	msgpackcodec "github.com/zoobzio/cloak/msgpack"
	xmlcodec "github.com/zoobzio/cloak/xml"
	yamlcodec "github.com/zoobzio/cloak/yaml"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "CLOAK_"

	maxConfigSize = 1024 * 1024 // 1MB
)

// Config holds engine settings.
type Config struct {
	Policy   string            `koanf:"policy"`
	MaxDepth int               `koanf:"max_depth"`
	Quoted   bool              `koanf:"quoted"`
	Codec    string            `koanf:"codec"`
	Aliases  map[string]string `koanf:"aliases"`
	Disabled []string          `koanf:"disabled"`
}

// Default returns the settings New uses when nothing is configured.
func Default() *Config {
	return &Config{
		Policy:   cloak.FailOpen.String(),
		MaxDepth: cloak.DefaultMaxDepth,
		Codec:    "json",
	}
}

var codecs = map[string]func() cloak.Codec{
	"json":    func() cloak.Codec { return jsoncodec.New() },
	"yaml":    func() cloak.Codec { return yamlcodec.New() },
	"msgpack": func() cloak.Codec { return msgpackcodec.New() },
	"xml":     func() cloak.Codec { return xmlcodec.New() },
	"bson":    func() cloak.Codec { return bsoncodec.New() },
}

// Codecs returns the accepted codec names, sorted.
func Codecs() []string {
	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load parses a YAML document, applies environment overrides and validates
// the result. An empty document yields the defaults plus overrides.
func Load(data []byte) (*Config, error) {
	if len(data) > maxConfigSize {
		return nil, fmt.Errorf("config exceeds %d bytes", maxConfigSize)
	}

	k := koanf.New(".")

	if len(data) > 0 {
		if err := k.Load(rawbytes.Provider(data), kyaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// CLOAK_MAX_DEPTH -> max_depth
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// LoadFile reads path and passes its content to Load.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxConfigSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Load(data)
}

// Validate reports every problem with the settings at once.
func (c *Config) Validate() error {
	var errs []error

	if _, err := cloak.ParsePolicy(c.Policy); err != nil {
		errs = append(errs, err)
	}
	if c.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth))
	}
	if _, ok := codecs[strings.ToLower(c.Codec)]; !ok && c.Codec != "" {
		errs = append(errs, fmt.Errorf("unknown codec %q (want one of %s)", c.Codec, strings.Join(Codecs(), ", ")))
	}

	disabled := make(map[string]bool, len(c.Disabled))
	for _, name := range c.Disabled {
		if !cloak.IsBuiltin(name) {
			errs = append(errs, fmt.Errorf("cannot disable %q: not a built-in strategy", name))
		}
		disabled[name] = true
	}

	for _, alias := range sortedKeys(c.Aliases) {
		target := c.Aliases[alias]
		switch {
		case alias == "":
			errs = append(errs, errors.New("alias name must not be empty"))
		case !cloak.IsBuiltin(target):
			errs = append(errs, fmt.Errorf("alias %q targets unknown strategy %q", alias, target))
		case disabled[target]:
			errs = append(errs, fmt.Errorf("alias %q targets disabled strategy %q", alias, target))
		}
	}

	return errors.Join(errs...)
}

// Registry builds a built-in registry with the configured strategies
// removed and aliases added.
func (c *Config) Registry() (*cloak.Registry, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	r := cloak.NewBuiltinRegistry()
	for _, name := range c.Disabled {
		r.Unregister(name)
	}
	for _, alias := range sortedKeys(c.Aliases) {
		r.Alias(alias, c.Aliases[alias])
	}
	return r, nil
}

// Options converts the settings to engine options. Callers append their
// own options, such as a logger, after these.
func (c *Config) Options() ([]cloak.Option, error) {
	r, err := c.Registry()
	if err != nil {
		return nil, err
	}
	policy, _ := cloak.ParsePolicy(c.Policy)

	opts := []cloak.Option{
		cloak.WithRegistry(r),
		cloak.WithPolicy(policy),
		cloak.WithMaxDepth(c.MaxDepth),
	}
	if c.Quoted {
		opts = append(opts, cloak.WithQuotedStrings())
	}
	if c.Codec != "" {
		opts = append(opts, cloak.WithCodec(codecs[strings.ToLower(c.Codec)]()))
	}
	return opts, nil
}

// Engine builds an engine from the settings followed by extra.
func (c *Config) Engine(extra ...cloak.Option) (*cloak.Engine, error) {
	opts, err := c.Options()
	if err != nil {
		return nil, err
	}
	return cloak.New(append(opts, extra...)...), nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
