package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zero-day-ai/graphmap/cmd/graphmap/internal"
)

// GlobalFlags holds global flags available to all commands
type GlobalFlags struct {
	Verbose      bool
	Quiet        bool
	OutputFormat string
	ConfigFile   string
	HomeDir      string
}

// RegisterGlobalFlags registers persistent flags on the root command
func RegisterGlobalFlags(cmd *cobra.Command, f *GlobalFlags) {
	cmd.PersistentFlags().BoolVarP(&f.Verbose, "verbose", "v", false, "Enable verbose output (debug logging)")
	cmd.PersistentFlags().BoolVarP(&f.Quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVarP(&f.OutputFormat, "output", "o", "text", "Output format (text|json)")
	cmd.PersistentFlags().StringVar(&f.ConfigFile, "config", "", "Path to config file (default: $GRAPHMAP_HOME/config.yaml)")
	cmd.PersistentFlags().StringVar(&f.HomeDir, "home", "", "Graphmap home directory (default: ~/.graphmap)")
}

// Validate checks flag combinations.
func (f *GlobalFlags) Validate() error {
	if f.OutputFormat != string(internal.FormatText) && f.OutputFormat != string(internal.FormatJSON) {
		return internal.NewCLIError(internal.ExitError,
			fmt.Sprintf("invalid --output %q: must be text or json", f.OutputFormat))
	}
	if f.Verbose && f.Quiet {
		return internal.NewCLIError(internal.ExitError, "--verbose and --quiet cannot be used together")
	}
	return nil
}

// GetOutputFormat returns the parsed OutputFormat enum
func (f *GlobalFlags) GetOutputFormat() internal.OutputFormat {
	if f.OutputFormat == string(internal.FormatJSON) {
		return internal.FormatJSON
	}
	return internal.FormatText
}

// IsVerbose returns true if verbose mode is enabled
func (f *GlobalFlags) IsVerbose() bool {
	return f.Verbose && !f.Quiet
}

// IsQuiet returns true if quiet mode is enabled
func (f *GlobalFlags) IsQuiet() bool {
	return f.Quiet
}

// parseAssignments turns repeated key=value flags into attributes. Values
// are read as YAML scalars or flow collections, so 443 is an integer, true
// a boolean and [a, b] a list; anything unparsable stays a string.
func parseAssignments(flag string, pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, internal.NewCLIError(internal.ExitError,
				fmt.Sprintf("invalid --%s %q: expected key=value", flag, pair))
		}
		out[key] = parseValue(raw)
	}
	return out, nil
}

// parseValue reads one command-line value the way a seed file would.
func parseValue(raw string) any {
	if strings.TrimSpace(raw) == "" {
		return raw
	}
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil || v == nil {
		return raw
	}
	if _, isMap := v.(map[string]any); isMap {
		return raw
	}
	return v
}

// parseNodeKey splits "Type/uid". The uid is parsed like any other value.
func parseNodeKey(s string) (string, any, error) {
	typ, uid, ok := strings.Cut(s, "/")
	if !ok || typ == "" || uid == "" {
		return "", nil, internal.NewCLIError(internal.ExitError,
			fmt.Sprintf("invalid node %q: expected Type/uid", s))
	}
	return typ, parseValue(uid), nil
}
