// Package config holds the resolver configuration.
//
// The configuration is a small YAML document:
//
//	hides_members: [forEach, addSuppressed]
//	invoke_name: invoke
//	scheduler:
//	  defer_invoke: false
//	log:
//	  level: info
//	  format: text
//
// Every field is optional; missing fields take the defaults from constants.go.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config represents a tower.yaml configuration.
type Config struct {
	// HidesMembers lists the function names for which top-level extensions
	// are searched before the members of any receiver.
	HidesMembers []string `yaml:"hides_members,omitempty"`

	// InvokeName is the operator name used for `x(args)` on values.
	InvokeName string `yaml:"invoke_name,omitempty"`

	// Scheduler tunes the task queue that drives resolution.
	Scheduler Scheduler `yaml:"scheduler,omitempty"`

	// Log selects the logger level and handler format.
	Log Log `yaml:"log,omitempty"`

	hidesMembers map[string]bool
}

// Scheduler holds task queue options.
type Scheduler struct {
	// DeferInvoke starts the invoke fallback only after the primary
	// resolution path finished without a successful candidate. By default
	// both run side by side and merge by priority.
	DeferInvoke bool `yaml:"defer_invoke,omitempty"`
}

// Log holds logger options.
type Log struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	return Parse(data, path)
}

// Parse parses configuration content from bytes.
// The path argument is used only for error messages.
func Parse(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// Find looks for tower.yaml in dir and its parents.
// Returns an empty path and nil error when nothing is found.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrap(err, "resolving directory")
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Normalize fills missing fields with defaults. Configurations built as Go
// literals must be normalized before they are shared between goroutines.
func (c *Config) Normalize() *Config {
	c.setDefaults()
	return c
}

// IsHidesMembersName reports whether top-level extensions named name take
// priority over members.
func (c *Config) IsHidesMembersName(name string) bool {
	if c.hidesMembers == nil {
		c.setDefaults()
	}
	return c.hidesMembers[name]
}

func (c *Config) validate(path string) error {
	seen := make(map[string]bool)
	for i, name := range c.HidesMembers {
		name = strings.TrimSpace(name)
		if name == "" {
			return errors.Errorf("%s: hides_members[%d]: empty name", path, i)
		}
		if seen[name] {
			return errors.Errorf("%s: hides_members[%d]: duplicate name %q", path, i, name)
		}
		seen[name] = true
	}
	if strings.ContainsAny(c.InvokeName, " \t.") {
		return errors.Errorf("%s: invoke_name: invalid identifier %q", path, c.InvokeName)
	}
	if err := c.Log.validate(); err != nil {
		return errors.Wrap(err, path)
	}
	return nil
}

// OverrideLog replaces the non-empty logging options after checking them
// like the log section of a file.
func (c *Config) OverrideLog(level, format string) error {
	log := c.Log
	if level != "" {
		log.Level = level
	}
	if format != "" {
		log.Format = format
	}
	if err := log.validate(); err != nil {
		return err
	}
	c.Log = log
	return nil
}

func (l Log) validate() error {
	switch strings.ToLower(l.Format) {
	case "", TextLogFormat, JSONLogFormat:
	default:
		return errors.Errorf("log.format: unknown format %q (want %s or %s)", l.Format, TextLogFormat, JSONLogFormat)
	}
	switch strings.ToUpper(l.Level) {
	case "", "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return errors.Errorf("log.level: unknown level %q", l.Level)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.HidesMembers == nil {
		c.HidesMembers = append([]string(nil), DefaultHidesMembers...)
	}
	if c.InvokeName == "" {
		c.InvokeName = InvokeName
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	c.hidesMembers = make(map[string]bool, len(c.HidesMembers))
	for _, name := range c.HidesMembers {
		c.hidesMembers[strings.TrimSpace(name)] = true
	}
}
