package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"ownergen/internal/config"
	"ownergen/internal/errors"
)

var (
	configJSON     bool
	configShowDiff bool
	configForce    bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage ownergen configuration",
	Long:  "View and manage ownergen configuration stored in .ownergen/config.json",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Display the configuration after the config file and environment
overrides are applied.

Examples:
  ownergen config show          # All settings, modified ones annotated
  ownergen config show --json   # Raw JSON output
  ownergen config show --diff   # Only show non-default values`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configEnvCmd = &cobra.Command{
	Use:   "env",
	Short: "List supported environment variables",
	Args:  cobra.NoArgs,
	Run:   runConfigEnv,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .ownergen/config.json",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func init() {
	configShowCmd.Flags().BoolVar(&configJSON, "json", false, "Output JSON")
	configShowCmd.Flags().BoolVar(&configShowDiff, "diff", false, "Only show non-default values")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEnvCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

// ConfigShowResponse is the response format for config show
type ConfigShowResponse struct {
	ConfigPath   string                 `json:"configPath,omitempty"`
	UsedDefaults bool                   `json:"usedDefaults"`
	EnvOverrides []config.EnvOverride   `json:"envOverrides,omitempty"`
	Config       map[string]interface{} `json:"config"`
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	current, err := toMap(s.cfg)
	if err != nil {
		return err
	}
	defaults, err := toMap(config.DefaultConfig())
	if err != nil {
		return err
	}
	if configShowDiff {
		current = computeDiff(current, defaults)
	}

	if configJSON {
		return printJSON(os.Stdout, ConfigShowResponse{
			ConfigPath:   s.load.ConfigPath,
			UsedDefaults: s.load.UsedDefaults,
			EnvOverrides: s.load.EnvOverrides,
			Config:       current,
		})
	}
	outputConfigHuman(os.Stdout, s.load, current, defaults, configShowDiff)
	return nil
}

func toMap(cfg *config.Config) (map[string]interface{}, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, errors.New(errors.InternalError, "failed to marshal config", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.New(errors.InternalError, "failed to unmarshal config", err)
	}
	return m, nil
}

func outputConfigHuman(w io.Writer, result *config.LoadResult, current, defaults map[string]interface{}, diffOnly bool) {
	fmt.Fprintln(w, "ownergen configuration")
	fmt.Fprintln(w, strings.Repeat("─", 50))

	fmt.Fprintf(w, "Source: %s\n", valueOrDefault(result.ConfigPath, "defaults (no config file found)"))

	if len(result.EnvOverrides) > 0 {
		fmt.Fprintln(w, "\nEnvironment overrides:")
		for _, ov := range result.EnvOverrides {
			fmt.Fprintf(w, "  %s=%s → %s\n", ov.EnvVar, ov.Value, ov.Path)
		}
	}
	fmt.Fprintln(w)

	lines := flattenConfig(current, defaults, "")
	if diffOnly {
		fmt.Fprintln(w, "Modified settings (differs from defaults):")
		if len(lines) == 0 {
			fmt.Fprintln(w, "  (no modifications - using all defaults)")
		}
	}
	for _, line := range lines {
		fmt.Fprintf(w, "  %s\n", line)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Use 'ownergen config show --json' for machine-readable output")
	fmt.Fprintln(w, "Use 'ownergen config env' to see supported environment variables")
}

// flattenConfig renders nested settings as sorted "a.b: value" lines,
// annotating values that differ from their default.
func flattenConfig(current, defaults map[string]interface{}, prefix string) []string {
	keys := make([]string, 0, len(current))
	for k := range current {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var lines []string
	for _, key := range keys {
		value := current[key]
		def, hasDefault := defaults[key]
		if nested, ok := value.(map[string]interface{}); ok {
			nestedDefaults, _ := def.(map[string]interface{})
			lines = append(lines, flattenConfig(nested, nestedDefaults, prefix+key+".")...)
			continue
		}
		line := fmt.Sprintf("%s%s: %v", prefix, key, value)
		if hasDefault && !isEqual(value, def) {
			line += fmt.Sprintf(" (default: %v)", def)
		}
		lines = append(lines, line)
	}
	return lines
}

func runConfigEnv(cmd *cobra.Command, args []string) {
	printEnvVars(os.Stdout)
}

func printEnvVars(w io.Writer) {
	fmt.Fprintln(w, "Supported ownergen environment variables")
	fmt.Fprintln(w, strings.Repeat("─", 50))
	fmt.Fprintln(w)
	for _, name := range config.SupportedEnvVars() {
		target, _ := config.EnvVarTarget(name)
		fmt.Fprintf(w, "  %-30s %s\n", name, target)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Example usage:")
	fmt.Fprintln(w, "  OWNERGEN_STRATEGY=weighted ownergen generate --dry-run")
	fmt.Fprintln(w, "  OWNERGEN_CONFIG_PATH=/etc/ownergen.yaml ownergen check")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	path := filepath.Join(s.repoRoot, config.Dir, config.FileName)
	if _, err := os.Stat(path); err == nil && !configForce {
		return errors.New(errors.InvalidArgument, path+" already exists (use --force to overwrite)", nil)
	}
	if err := config.DefaultConfig().Save(s.repoRoot); err != nil {
		return errors.New(errors.ConfigFileError, "failed to write "+path, err)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func valueOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}

func isEqual(a, b interface{}) bool {
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func computeDiff(current, defaults map[string]interface{}) map[string]interface{} {
	diff := make(map[string]interface{})
	computeDiffRecursive(current, defaults, diff)
	return diff
}

func computeDiffRecursive(current, defaults, diff map[string]interface{}) {
	for key, currentVal := range current {
		defaultVal, exists := defaults[key]
		if !exists {
			diff[key] = currentVal
			continue
		}

		currentMap, currentIsMap := currentVal.(map[string]interface{})
		defaultMap, defaultIsMap := defaultVal.(map[string]interface{})
		if currentIsMap && defaultIsMap {
			nested := make(map[string]interface{})
			computeDiffRecursive(currentMap, defaultMap, nested)
			if len(nested) > 0 {
				diff[key] = nested
			}
		} else if !isEqual(currentVal, defaultVal) {
			diff[key] = currentVal
		}
	}
}
