// Package config resolves checker settings from defaults, an optional YAML
// file and the environment. Command-line flags are applied last by the CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	dupkeys "github.com/reoring/dupkeys"
)

// DefaultFile is read when no config file is named explicitly and it exists
// in the working directory.
const DefaultFile = "dupkeys.yaml"

const envPrefix = "DUPKEYS_"

// Config holds every tunable of the dupkeys command.
type Config struct {
	Driver      string `yaml:"driver"`
	Concurrency int    `yaml:"concurrency"`
	Lang        string `yaml:"lang"`
	OnDuplicate string `yaml:"on_duplicate"`
	MaxDepth    int    `yaml:"max_depth"`
	MaxBytes    int64  `yaml:"max_bytes"`
	SuppressOK  bool   `yaml:"suppress_ok"`
	Format      string `yaml:"format"`
	Verbose     bool   `yaml:"verbose"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Driver:      "json",
		Concurrency: 8,
		Lang:        "en",
		OnDuplicate: "error",
		Format:      "json",
	}
}

// Load applies, in order, the defaults, the YAML file, a .env file in the
// working directory and DUPKEYS_* environment variables. An empty file name
// reads DefaultFile when present; a named file must exist.
func Load(file string) (Config, error) {
	cfg := Default()

	explicit := file != ""
	if !explicit {
		file = DefaultFile
	}
	data, err := os.ReadFile(file)
	switch {
	case err == nil:
		if err := cfg.decodeYAML(data); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", file, err)
		}
	case explicit || !errors.Is(err, fs.ErrNotExist):
		return Config{}, fmt.Errorf("config: %w", err)
	}

	// .env is optional; variables already set in the process win.
	_ = godotenv.Load()

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) decodeYAML(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides fields from DUPKEYS_* variables found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(envPrefix + name)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}
	if v, ok := get("DRIVER"); ok {
		c.Driver = v
	}
	if v, ok := get("LANG"); ok {
		c.Lang = v
	}
	if v, ok := get("ON_DUPLICATE"); ok {
		c.OnDuplicate = v
	}
	if v, ok := get("FORMAT"); ok {
		c.Format = v
	}
	if v, ok := get("CONCURRENCY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %sCONCURRENCY: %w", envPrefix, err)
		}
		c.Concurrency = n
	}
	if v, ok := get("MAX_DEPTH"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %sMAX_DEPTH: %w", envPrefix, err)
		}
		c.MaxDepth = n
	}
	if v, ok := get("MAX_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: %sMAX_BYTES: %w", envPrefix, err)
		}
		c.MaxBytes = n
	}
	if v, ok := get("SUPPRESS_OK"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %sSUPPRESS_OK: %w", envPrefix, err)
		}
		c.SuppressOK = b
	}
	return nil
}

// Validate rejects settings the checker cannot run with.
func (c Config) Validate() error {
	switch c.Driver {
	case "json", "gojson":
	default:
		return fmt.Errorf("config: unknown driver %q (want json or gojson)", c.Driver)
	}
	switch c.Format {
	case "json", "text":
	default:
		return fmt.Errorf("config: unknown format %q (want json or text)", c.Format)
	}
	if _, ok := dupkeys.ParseSeverity(c.OnDuplicate); !ok {
		return fmt.Errorf("config: unknown on_duplicate %q (want error, warn or ignore)", c.OnDuplicate)
	}
	if c.Concurrency < 0 || c.MaxDepth < 0 || c.MaxBytes < 0 {
		return errors.New("config: concurrency and limits must not be negative")
	}
	return nil
}

// Severity returns the parsed on_duplicate setting.
func (c Config) Severity() dupkeys.Severity {
	s, _ := dupkeys.ParseSeverity(c.OnDuplicate)
	return s
}
