package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/brettbedarf/ffs/internal/util"
)

// Backend names accepted for [Config.Backend]
const (
	OSBackend     = "os"
	MemoryBackend = "memory"
)

// CLI verbosity values; see [util.VerboseToLevel]
const (
	ErrorVerbose = iota + 1
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

// Default configuration constants. See [Config] for field descriptions.
const (
	// DefaultStoreDir is created relative to the working directory if missing
	DefaultStoreDir = "A2dir"

	DefaultBackend = OSBackend

	// DefaultLogLvl keeps stderr quiet during interactive use
	DefaultLogLvl = util.WarnLevel

	DefaultPrompt = "ffs> "

	// DefaultIndent is the number of spaces per level in `tree` output
	DefaultIndent = 4

	// DefaultEchoCommands echoes prompt+command when input is not a terminal
	DefaultEchoCommands = true

	// DefaultHostListCmd is run in the store directory by `rls`
	DefaultHostListCmd = "ls -l"
)

// Environment variables read by [LoadEnvOverride]
const (
	EnvStoreDir     = "FFS_STORE_DIR"
	EnvBackend      = "FFS_BACKEND"
	EnvVerbose      = "FFS_VERBOSE"
	EnvPrompt       = "FFS_PROMPT"
	EnvIndent       = "FFS_INDENT"
	EnvEchoCommands = "FFS_ECHO_COMMANDS"
	EnvHostListCmd  = "FFS_HOST_LIST_CMD"
)

// Config contains runtime configuration values for the shell.
type Config struct {
	StoreDir     string        // Directory holding the flat files (Default "A2dir")
	Backend      string        // Flat store backend, "os" or "memory" (Default "os")
	LogLvl       util.LogLevel // Internal log level (Default warn)
	Prompt       string        // Prompt shown before each command (Default "ffs> ")
	Indent       int           // Spaces per depth level in tree output (Default 4)
	EchoCommands bool          // Echo prompt+command for non-terminal input (Default true)
	HostListCmd  string        // Host command run by `rls` in the store directory (Default "ls -l")
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
//
// LogLvl is a CLI style verbosity between 1 (error) and 5 (trace).
type ConfigOverride struct {
	StoreDir     *string `yaml:"store_dir,omitempty" json:"store_dir,omitempty"`
	Backend      *string `yaml:"backend,omitempty" json:"backend,omitempty"`
	LogLvl       *int    `yaml:"verbose,omitempty" json:"verbose,omitempty"`
	Prompt       *string `yaml:"prompt,omitempty" json:"prompt,omitempty"`
	Indent       *int    `yaml:"indent,omitempty" json:"indent,omitempty"`
	EchoCommands *bool   `yaml:"echo_commands,omitempty" json:"echo_commands,omitempty"`
	HostListCmd  *string `yaml:"host_list_cmd,omitempty" json:"host_list_cmd,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		StoreDir:     DefaultStoreDir,
		Backend:      DefaultBackend,
		LogLvl:       DefaultLogLvl,
		Prompt:       DefaultPrompt,
		Indent:       DefaultIndent,
		EchoCommands: DefaultEchoCommands,
		HostListCmd:  DefaultHostListCmd,
	}
}

// NewConfig creates a default Config and merges override onto it if not nil
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override == nil {
		return
	}
	if override.StoreDir != nil {
		c.StoreDir = *override.StoreDir
	}
	if override.Backend != nil {
		c.Backend = *override.Backend
	}
	if override.LogLvl != nil {
		c.LogLvl = util.VerboseToLevel(*override.LogLvl)
	}
	if override.Prompt != nil {
		c.Prompt = *override.Prompt
	}
	if override.Indent != nil {
		c.Indent = *override.Indent
	}
	if override.EchoCommands != nil {
		c.EchoCommands = *override.EchoCommands
	}
	if override.HostListCmd != nil {
		c.HostListCmd = *override.HostListCmd
	}
}

// Validate reports values the shell cannot run with
func (c *Config) Validate() error {
	if c.Indent < 0 {
		return fmt.Errorf("indent must not be negative: %d", c.Indent)
	}
	if c.Backend == OSBackend && strings.TrimSpace(c.StoreDir) == "" {
		return fmt.Errorf("store_dir is required for the %q backend", OSBackend)
	}
	return nil
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
// This is a convenience function that combines NewDefaultConfig, LoadConfigOverrideFile, and Merge.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	cfg.Merge(override)
	return cfg, nil
}

// LoadEnvOverride reads FFS_* variables into an override. With a path the
// variables come from that dotenv file only; without one, from the process
// environment. Unset variables leave the matching field nil.
func LoadEnvOverride(path string) (*ConfigOverride, error) {
	lookup := os.LookupEnv
	if path != "" {
		vars, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read env file: %w", err)
		}
		lookup = func(key string) (string, bool) {
			v, ok := vars[key]
			return v, ok
		}
	}
	return overrideFromEnv(lookup)
}

func overrideFromEnv(lookup func(string) (string, bool)) (*ConfigOverride, error) {
	var o ConfigOverride
	if v, ok := lookup(EnvStoreDir); ok {
		o.StoreDir = util.Pointer(v)
	}
	if v, ok := lookup(EnvBackend); ok {
		o.Backend = util.Pointer(v)
	}
	if v, ok := lookup(EnvPrompt); ok {
		o.Prompt = util.Pointer(v)
	}
	if v, ok := lookup(EnvHostListCmd); ok {
		o.HostListCmd = util.Pointer(v)
	}
	if v, ok := lookup(EnvVerbose); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvVerbose, err)
		}
		o.LogLvl = &n
	}
	if v, ok := lookup(EnvIndent); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvIndent, err)
		}
		o.Indent = &n
	}
	if v, ok := lookup(EnvEchoCommands); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvEchoCommands, err)
		}
		o.EchoCommands = &b
	}
	return &o, nil
}
