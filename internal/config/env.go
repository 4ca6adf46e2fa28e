package config

import (
	"os"
	"sort"
	"strconv"
	"strings"
)

// EnvConfigPath names an explicit config file.
const EnvConfigPath = "OWNERGEN_CONFIG_PATH"

// EnvOverride records one environment variable applied to the config.
type EnvOverride struct {
	EnvVar string `json:"envVar"`
	Path   string `json:"path"`
	Value  string `json:"value"`
}

// envVarMappings maps environment variables to config key paths.
var envVarMappings = map[string]string{
	"OWNERGEN_STRATEGY":             "strategy",
	"OWNERGEN_THRESHOLD":            "threshold",
	"OWNERGEN_MIN_OWNERS":           "minOwners",
	"OWNERGEN_MAX_OWNERS":           "maxOwners",
	"OWNERGEN_MIN_COMMITS":          "minCommits",
	"OWNERGEN_MIN_LINES":            "minLines",
	"OWNERGEN_COMMITS_WEIGHT":       "commitsWeight",
	"OWNERGEN_LINES_WEIGHT":         "linesWeight",
	"OWNERGEN_TIME_DECAY":           "timeDecay",
	"OWNERGEN_DECAY":                "decay",
	"OWNERGEN_DECAY_HALF_LIFE_DAYS": "decayHalfLifeDays",
	"OWNERGEN_GROUP_BY":             "groupBy",
	"OWNERGEN_GRANULARITY_LEVEL":    "granularityLevel",
	"OWNERGEN_EXCLUDE_PATHS":        "excludePaths",
	"OWNERGEN_EXCLUDE_PATTERNS":     "excludePatterns",
	"OWNERGEN_USERNAME_MAPPING":     "usernameMapping",
	"OWNERGEN_SINCE":                "since",
	"OWNERGEN_BRANCH":               "branch",
	"OWNERGEN_GIT_TIMEOUT":          "gitTimeoutSeconds",
	"OWNERGEN_OUTPUT":               "output",
	"OWNERGEN_FORMAT":               "format",
	"OWNERGEN_WORKERS":              "workers",
	"OWNERGEN_CACHE_ENABLED":        "cache.enabled",
	"OWNERGEN_CACHE_DIR":            "cache.dir",
	"OWNERGEN_LOG_LEVEL":            "logging.level",
	"OWNERGEN_LOG_FILE":             "logging.file",
}

// EnvVarTarget returns the config key an environment variable overrides.
func EnvVarTarget(name string) (string, bool) {
	if name == EnvConfigPath {
		return "(config file path)", true
	}
	path, ok := envVarMappings[name]
	return path, ok
}

// SupportedEnvVars returns every recognized environment variable, sorted.
func SupportedEnvVars() []string {
	vars := []string{EnvConfigPath}
	for name := range envVarMappings {
		vars = append(vars, name)
	}
	sort.Strings(vars)
	return vars
}

// ApplyEnvOverrides applies set OWNERGEN_* variables to cfg. Values that do
// not parse for their field are ignored. List keys take comma-separated
// values.
func ApplyEnvOverrides(cfg *Config) []EnvOverride {
	names := make([]string, 0, len(envVarMappings))
	for name := range envVarMappings {
		names = append(names, name)
	}
	sort.Strings(names)

	var applied []EnvOverride
	for _, name := range names {
		value, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		path := envVarMappings[name]
		if applyOverride(cfg, path, value) {
			applied = append(applied, EnvOverride{EnvVar: name, Path: path, Value: value})
		}
	}
	return applied
}

// applyOverride sets one key path. It reports false for unknown paths and
// unparsable values.
func applyOverride(cfg *Config, path, value string) bool {
	value = strings.TrimSpace(value)

	switch path {
	case "strategy":
		cfg.Strategy = value
	case "decay":
		cfg.Decay = value
	case "groupBy":
		cfg.GroupBy = value
	case "usernameMapping":
		cfg.UsernameMapping = value
	case "since":
		cfg.Since = value
	case "branch":
		cfg.Branch = value
	case "output":
		cfg.Output = value
	case "format":
		cfg.Format = value
	case "cache.dir":
		cfg.Cache.Dir = value
	case "logging.level":
		cfg.Logging.Level = value
	case "logging.file":
		cfg.Logging.File = value
	case "excludePaths":
		cfg.ExcludePaths = splitList(value)
	case "excludePatterns":
		cfg.ExcludePatterns = splitList(value)

	case "threshold":
		return setFloat(&cfg.Threshold, value)
	case "minOwners":
		return setInt(&cfg.MinOwners, value)
	case "maxOwners":
		return setInt(&cfg.MaxOwners, value)
	case "granularityLevel":
		return setInt(&cfg.GranularityLevel, value)
	case "decayHalfLifeDays":
		return setInt(&cfg.DecayHalfLifeDays, value)
	case "commitsWeight":
		return setFloat(&cfg.CommitsWeight, value)
	case "linesWeight":
		return setFloat(&cfg.LinesWeight, value)
	case "gitTimeoutSeconds":
		return setInt(&cfg.GitTimeoutSeconds, value)
	case "workers":
		return setInt(&cfg.Workers, value)
	case "minCommits":
		return setUint(&cfg.MinCommits, value)
	case "minLines":
		return setUint(&cfg.MinLines, value)
	case "cache.enabled":
		return setBool(&cfg.Cache.Enabled, value)
	case "timeDecay":
		return setBool(&cfg.TimeDecay, value)

	default:
		return false
	}
	return true
}

// splitList splits a comma-separated value, dropping empty items. An empty
// value clears the list.
func splitList(value string) []string {
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func setBool(dst *bool, value string) bool {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false
	}
	*dst = b
	return true
}

func setInt(dst *int, value string) bool {
	n, err := strconv.Atoi(value)
	if err != nil {
		return false
	}
	*dst = n
	return true
}

func setUint(dst *uint, value string) bool {
	n, err := strconv.ParseUint(value, 10, 0)
	if err != nil {
		return false
	}
	*dst = uint(n)
	return true
}

func setFloat(dst *float64, value string) bool {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return false
	}
	*dst = f
	return true
}
