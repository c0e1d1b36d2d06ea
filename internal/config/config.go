// Package config provides configuration management for polysafe.
// Configuration is loaded from (highest to lowest priority):
// 1. Command-line flags
// 2. Environment variables (POLYSAFE_*)
// 3. Project config (.polysafe/config.yaml in the nearest ancestor of cwd
//    holding a .polysafe directory, else cwd; POLYSAFE_CONFIG replaces it)
// 4. Home config (~/.polysafe/config.yaml)
// 5. Defaults
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/polysafe/polysafe/pkg/projectroot"
	"gopkg.in/yaml.v3"
)

// Config holds all polysafe configuration.
type Config struct {
	// RootDir is the directory a DirCapability is rooted at when none is
	// given explicitly on the command line.
	RootDir string `yaml:"root_dir" json:"root_dir"`

	// Permissions names the default permission set granted to the root
	// capability: "full", "read_only" or "read_write".
	Permissions string `yaml:"permissions" json:"permissions"`

	// AuditLog is the path to the hash-chained audit log file.
	AuditLog string `yaml:"audit_log" json:"audit_log"`

	// LogLevel controls structured log verbosity: "debug", "info", "warn"
	// or "error".
	LogLevel string `yaml:"log_level" json:"log_level"`

	// Verbose enables verbose (development-mode) logging output; the level
	// is still taken from LogLevel.
	Verbose bool `yaml:"verbose" json:"verbose"`
}

// Default config values (used in resolution and validation).
const (
	defaultRootDir     = "."
	defaultPermissions = "read_only"
	defaultAuditLog    = ".polysafe/audit.jsonl"
	defaultLogLevel    = "info"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		RootDir:     defaultRootDir,
		Permissions: defaultPermissions,
		AuditLog:    defaultAuditLog,
		LogLevel:    defaultLogLevel,
		Verbose:     false,
	}
}

// Load loads configuration with proper precedence.
// Priority: flags > env > project > home > defaults
func Load(flagOverrides *Config) (*Config, error) {
	cfg := Default()

	homeConfig, _ := loadFromPath(homeConfigPath())
	if homeConfig != nil {
		cfg = merge(cfg, homeConfig)
	}

	projectConfig, _ := loadFromPath(projectConfigPath())
	if projectConfig != nil {
		cfg = merge(cfg, projectConfig)
	}

	cfg = applyEnv(cfg)

	if flagOverrides != nil {
		cfg = merge(cfg, flagOverrides)
	}

	return cfg, nil
}

// homeConfigPath returns the home config path.
func homeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".polysafe", "config.yaml")
}

// projectConfigPath returns the project config path. It walks up from the
// current directory looking for a .polysafe marker, the same way
// projectConfigPath's caller expects git-style discovery rather than a
// cwd-only check.
func projectConfigPath() string {
	if override := strings.TrimSpace(os.Getenv("POLYSAFE_CONFIG")); override != "" {
		return override
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	root := projectroot.Detect(cwd)
	if root == "" {
		root = cwd
	}
	return filepath.Join(root, ".polysafe", "config.yaml")
}

// loadFromPath loads config from a YAML file.
func loadFromPath(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv applies environment variable overrides.
func applyEnv(cfg *Config) *Config {
	if v := os.Getenv("POLYSAFE_ROOT"); v != "" {
		cfg.RootDir = v
	}
	if v := os.Getenv("POLYSAFE_PERMISSIONS"); v != "" {
		cfg.Permissions = v
	}
	if v := os.Getenv("POLYSAFE_AUDIT_LOG"); v != "" {
		cfg.AuditLog = v
	}
	if v := os.Getenv("POLYSAFE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("POLYSAFE_VERBOSE"); v == "true" || v == "1" {
		cfg.Verbose = true
	}
	return cfg
}

// merge merges src into dst, with src values taking precedence.
func merge(dst, src *Config) *Config {
	if src.RootDir != "" {
		dst.RootDir = src.RootDir
	}
	if src.Permissions != "" {
		dst.Permissions = src.Permissions
	}
	if src.AuditLog != "" {
		dst.AuditLog = src.AuditLog
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.Verbose {
		dst.Verbose = true
	}
	return dst
}

// Source represents where a config value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceHome    Source = "~/.polysafe/config.yaml"
	SourceProject Source = ".polysafe/config.yaml"
	SourceEnv     Source = "environment"
	SourceFlag    Source = "flag"
)

// getEnvString returns the value and whether the env var was set.
func getEnvString(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

// getEnvBool returns the boolean value and whether it was truthy.
func getEnvBool(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "true" || v == "1" {
		return true, true
	}
	return false, false
}

// resolveStringField resolves a string through the precedence chain.
// Returns the resolved value and its source.
func resolveStringField(home, project, env, flag, def string) resolved {
	result := resolved{Value: def, Source: SourceDefault}

	if home != "" {
		result = resolved{Value: home, Source: SourceHome}
	}
	if project != "" {
		result = resolved{Value: project, Source: SourceProject}
	}
	if env != "" {
		result = resolved{Value: env, Source: SourceEnv}
	}
	if flag != "" {
		result = resolved{Value: flag, Source: SourceFlag}
	}

	return result
}

// ResolvedConfig shows config values with their sources, for `polysafe
// config --show`.
type ResolvedConfig struct {
	RootDir     resolved `json:"root_dir"`
	Permissions resolved `json:"permissions"`
	AuditLog    resolved `json:"audit_log"`
	LogLevel    resolved `json:"log_level"`
	Verbose     resolved `json:"verbose"`
}

type resolved struct {
	Value  interface{} `json:"value"`
	Source Source      `json:"source"`
}

// Resolve returns configuration with source tracking.
// Uses precedence chain: flags > env > project > home > defaults.
func Resolve(flagRootDir, flagPermissions, flagAuditLog, flagLogLevel string, flagVerbose bool) *ResolvedConfig {
	homeConfig, _ := loadFromPath(homeConfigPath())
	projectConfig, _ := loadFromPath(projectConfigPath())

	var homeRootDir, homePermissions, homeAuditLog, homeLogLevel string
	var homeVerbose bool
	if homeConfig != nil {
		homeRootDir = homeConfig.RootDir
		homePermissions = homeConfig.Permissions
		homeAuditLog = homeConfig.AuditLog
		homeLogLevel = homeConfig.LogLevel
		homeVerbose = homeConfig.Verbose
	}

	var projectRootDir, projectPermissions, projectAuditLog, projectLogLevel string
	var projectVerbose bool
	if projectConfig != nil {
		projectRootDir = projectConfig.RootDir
		projectPermissions = projectConfig.Permissions
		projectAuditLog = projectConfig.AuditLog
		projectLogLevel = projectConfig.LogLevel
		projectVerbose = projectConfig.Verbose
	}

	envRootDir, _ := getEnvString("POLYSAFE_ROOT")
	envPermissions, _ := getEnvString("POLYSAFE_PERMISSIONS")
	envAuditLog, _ := getEnvString("POLYSAFE_AUDIT_LOG")
	envLogLevel, _ := getEnvString("POLYSAFE_LOG_LEVEL")
	envVerbose, envVerboseSet := getEnvBool("POLYSAFE_VERBOSE")

	rc := &ResolvedConfig{
		RootDir:     resolveStringField(homeRootDir, projectRootDir, envRootDir, flagRootDir, defaultRootDir),
		Permissions: resolveStringField(homePermissions, projectPermissions, envPermissions, flagPermissions, defaultPermissions),
		AuditLog:    resolveStringField(homeAuditLog, projectAuditLog, envAuditLog, flagAuditLog, defaultAuditLog),
		LogLevel:    resolveStringField(homeLogLevel, projectLogLevel, envLogLevel, flagLogLevel, defaultLogLevel),
		Verbose:     resolved{Value: false, Source: SourceDefault},
	}

	if homeVerbose {
		rc.Verbose = resolved{Value: true, Source: SourceHome}
	}
	if projectVerbose {
		rc.Verbose = resolved{Value: true, Source: SourceProject}
	}
	if envVerboseSet && envVerbose {
		rc.Verbose = resolved{Value: true, Source: SourceEnv}
	}
	if flagVerbose {
		rc.Verbose = resolved{Value: true, Source: SourceFlag}
	}

	return rc
}
