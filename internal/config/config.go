// Package config loads ownergen settings from .ownergen/config.json (or an
// explicit file), applies OWNERGEN_* environment overrides and validates the
// result.
package config

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"ownergen/internal/codeowners"
	"ownergen/internal/errors"
	"ownergen/internal/history"
	"ownergen/internal/ownership"
	"ownergen/internal/slogutil"
)

// CurrentVersion is the config schema version written by Save.
const CurrentVersion = 1

// Dir is the per-repository settings directory.
const Dir = ".ownergen"

// FileName is the config file name inside Dir.
const FileName = "config.json"

// Config is the complete ownergen configuration.
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	// Scoring
	Strategy          string  `json:"strategy" mapstructure:"strategy"`
	Threshold         float64 `json:"threshold" mapstructure:"threshold"`
	MinOwners         int     `json:"minOwners" mapstructure:"minOwners"`
	MaxOwners         int     `json:"maxOwners" mapstructure:"maxOwners"`
	MinCommits        uint    `json:"minCommits" mapstructure:"minCommits"`
	MinLines          uint    `json:"minLines" mapstructure:"minLines"`
	CommitsWeight     float64 `json:"commitsWeight" mapstructure:"commitsWeight"`
	LinesWeight       float64 `json:"linesWeight" mapstructure:"linesWeight"`
	TimeDecay         bool    `json:"timeDecay" mapstructure:"timeDecay"`
	Decay             string  `json:"decay" mapstructure:"decay"`
	DecayHalfLifeDays int     `json:"decayHalfLifeDays" mapstructure:"decayHalfLifeDays"`

	// Rule synthesis
	GroupBy          string   `json:"groupBy" mapstructure:"groupBy"`
	GranularityLevel int      `json:"granularityLevel" mapstructure:"granularityLevel"`
	ExcludePaths     []string `json:"excludePaths" mapstructure:"excludePaths"`
	ExcludePatterns  []string `json:"excludePatterns" mapstructure:"excludePatterns"`
	UsernameMapping  string   `json:"usernameMapping" mapstructure:"usernameMapping"`

	// History
	Since             string `json:"since" mapstructure:"since"`
	Branch            string `json:"branch" mapstructure:"branch"`
	GitTimeoutSeconds int    `json:"gitTimeoutSeconds" mapstructure:"gitTimeoutSeconds"`

	// Output
	Output string `json:"output" mapstructure:"output"`
	Format string `json:"format" mapstructure:"format"`

	// Workers bounds concurrent file scoring. Zero means GOMAXPROCS.
	Workers int `json:"workers" mapstructure:"workers"`

	Cache   CacheConfig   `json:"cache" mapstructure:"cache"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// CacheConfig contains result cache configuration
type CacheConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Dir     string `json:"dir" mapstructure:"dir"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `json:"level" mapstructure:"level"`
	File       string `json:"file" mapstructure:"file"`
	MaxSize    string `json:"maxSize" mapstructure:"maxSize"`
	MaxBackups int    `json:"maxBackups" mapstructure:"maxBackups"`
}

// Decay policy names.
const (
	DecayNone     = "none"
	DecayHalfLife = "half-life"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:           CurrentVersion,
		Strategy:          string(ownership.StrategyCommits),
		Threshold:         0.1,
		MinOwners:         1,
		MaxOwners:         2,
		CommitsWeight:     ownership.DefaultCommitsWeight,
		LinesWeight:       ownership.DefaultLinesWeight,
		TimeDecay:         true,
		Decay:             DecayNone,
		DecayHalfLifeDays: ownership.DefaultHalfLifeDays,
		GroupBy:           string(codeowners.GroupDirectory),
		GranularityLevel:  1,
		ExcludePaths:      []string{},
		ExcludePatterns:   []string{},
		GitTimeoutSeconds: int(history.DefaultTimeout / time.Second),
		Output:            ".gitlab/CODEOWNERS",
		Format:            string(codeowners.FormatCodeowners),
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".ownergen-cache",
		},
		Logging: LoggingConfig{
			Level:      "warn",
			MaxSize:    "10MB",
			MaxBackups: 3,
		},
	}
}

// LoadResult describes where the effective configuration came from.
type LoadResult struct {
	Config       *Config
	ConfigPath   string
	UsedDefaults bool
	EnvOverrides []EnvOverride
}

// LoadConfig loads the configuration for repoRoot. See LoadConfigWithDetails.
func LoadConfig(repoRoot, explicitPath string) (*Config, error) {
	result, err := LoadConfigWithDetails(repoRoot, explicitPath)
	if err != nil {
		return nil, err
	}
	return result.Config, nil
}

// LoadConfigWithDetails reads explicitPath, or OWNERGEN_CONFIG_PATH, or
// <repoRoot>/.ownergen/config.json, in that order. Only the first must
// exist; a missing default file yields DefaultConfig. Keys absent from the
// file keep their defaults. Environment overrides are applied last.
func LoadConfigWithDetails(repoRoot, explicitPath string) (*LoadResult, error) {
	if explicitPath == "" {
		explicitPath = os.Getenv(EnvConfigPath)
	}

	v := viper.New()
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return nil, errors.New(errors.ConfigFileError, "config file not found: "+explicitPath, err)
		}
		v.SetConfigFile(explicitPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("json")
		v.AddConfigPath(filepath.Join(repoRoot, Dir))
	}

	cfg := DefaultConfig()
	result := &LoadResult{Config: cfg}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) {
			return nil, errors.New(errors.ConfigFileError, "failed to read config", err)
		}
		result.UsedDefaults = true
	} else {
		result.ConfigPath = v.ConfigFileUsed()
		if err := v.Unmarshal(cfg); err != nil {
			return nil, errors.New(errors.ConfigFileError, "failed to decode config "+result.ConfigPath, err)
		}
	}

	result.EnvOverrides = ApplyEnvOverrides(cfg)
	return result, nil
}

// Save writes the configuration to .ownergen/config.json
func (c *Config) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, FileName), append(data, '\n'), 0o644)
}

// ScoreOptions translates the scoring settings. since is the parsed Since;
// now is the clock for recency windows and decay (nil means time.Now).
func (c *Config) ScoreOptions(since time.Time, now func() time.Time) ownership.ScoreOptions {
	opts := ownership.ScoreOptions{
		Strategy:      ownership.Strategy(c.Strategy),
		Since:         since,
		Now:           now,
		CommitsWeight: c.CommitsWeight,
		LinesWeight:   c.LinesWeight,
		TimeDecay:     c.TimeDecay,
		Decay:         ownership.NoDecay,
	}
	if c.Decay == DecayHalfLife {
		opts.Decay = ownership.HalfLifeDecay(time.Duration(c.DecayHalfLifeDays)*24*time.Hour, now)
	}
	return opts
}

// DecayActive reports whether a clock-dependent decay affects scores.
func (c *Config) DecayActive() bool {
	return c.Decay == DecayHalfLife && c.TimeDecay && c.Since != "" &&
		c.Strategy == string(ownership.StrategyWeighted)
}

// GitTimeout returns the per-command git timeout.
func (c *Config) GitTimeout() time.Duration {
	return time.Duration(c.GitTimeoutSeconds) * time.Second
}

// Validate checks if the configuration is valid. Every failure is an
// InvalidArgument error wrapping a *ConfigError naming the field.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return invalid("version", fmt.Sprintf("unsupported config version %d", c.Version))
	}

	if _, err := ownership.ParseStrategy(c.Strategy); err != nil {
		return invalid("strategy", err.Error())
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return invalid("threshold", fmt.Sprintf("must be within [0,1], got %g", c.Threshold))
	}
	if c.MinOwners < 0 {
		return invalid("minOwners", fmt.Sprintf("must be >= 0, got %d", c.MinOwners))
	}
	if c.MaxOwners < 1 {
		return invalid("maxOwners", fmt.Sprintf("must be >= 1, got %d", c.MaxOwners))
	}
	if c.CommitsWeight < 0 || c.LinesWeight < 0 {
		return invalid("commitsWeight", "weights must be >= 0")
	}
	if c.Strategy == string(ownership.StrategyWeighted) && c.CommitsWeight+c.LinesWeight == 0 {
		return invalid("commitsWeight", "commitsWeight + linesWeight must be > 0")
	}
	switch c.Decay {
	case DecayNone, "":
	case DecayHalfLife:
		if c.DecayHalfLifeDays < 1 {
			return invalid("decayHalfLifeDays", fmt.Sprintf("must be >= 1, got %d", c.DecayHalfLifeDays))
		}
	default:
		return invalid("decay", fmt.Sprintf("unknown decay %q (want none or half-life)", c.Decay))
	}

	if _, err := codeowners.ParseGroupBy(c.GroupBy); err != nil {
		return invalid("groupBy", err.Error())
	}
	if c.GranularityLevel < 1 {
		return invalid("granularityLevel", fmt.Sprintf("must be >= 1, got %d", c.GranularityLevel))
	}
	if _, err := ownership.NewFilter(c.ExcludePaths, c.ExcludePatterns); err != nil {
		return invalid("excludePatterns", err.Error())
	}

	if c.Since != "" {
		if _, err := history.ParseSince(c.Since, time.Now()); err != nil {
			return invalid("since", err.Error())
		}
	}
	if c.GitTimeoutSeconds < 1 {
		return invalid("gitTimeoutSeconds", fmt.Sprintf("must be >= 1, got %d", c.GitTimeoutSeconds))
	}

	if _, err := codeowners.ParseFormat(c.Format); err != nil {
		return invalid("format", err.Error())
	}
	if c.Output == "" {
		return invalid("output", "must not be empty")
	}
	if c.Workers < 0 {
		return invalid("workers", fmt.Sprintf("must be >= 0, got %d", c.Workers))
	}
	if c.Cache.Enabled && c.Cache.Dir == "" {
		return invalid("cache.dir", "must not be empty when the cache is enabled")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error", "silent":
	default:
		return invalid("logging.level", fmt.Sprintf("unknown level %q", c.Logging.Level))
	}
	if c.Logging.MaxSize != "" {
		if slogutil.ParseSize(c.Logging.MaxSize) <= 0 {
			return invalid("logging.maxSize", fmt.Sprintf("invalid size %q (want e.g. 10MB)", c.Logging.MaxSize))
		}
	}
	return nil
}

func invalid(field, message string) error {
	cause := &ConfigError{Field: field, Message: message}
	return errors.New(errors.InvalidArgument, cause.Error(), cause).
		WithDetails(map[string]string{"field": field})
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
