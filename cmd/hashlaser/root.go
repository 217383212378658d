package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	hashlaser "github.com/mattkeenan/hashlaser/pkg"
)

const version = "v1.0.0"

// shutdownChan is closed by the signal handler; nil when no handler is installed
var shutdownChan <-chan struct{}

// app is the per-invocation state shared by all commands
type app struct {
	config  *hashlaser.Config
	console *console
	out     io.Writer // data output: groups, JSON, fdupes lists
	format  string
}

// newRootCmd builds the command tree. A fresh tree per call keeps flag state
// from leaking between invocations.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hashlaser",
		Short: "Find, report and remove duplicate files by content",
		Long: `hashlaser fingerprints every file under a directory with SHA-256 and groups
files whose content is identical, regardless of name or location.

Exit Codes:
  0  - Success
  1  - Usage error or command failure`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New("not enough arguments: a command is required")
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.CountP("verbose", "v", "Enable verbose output (repeat for more, up to -vvv)")
	pf.String("debug", "", "Comma-separated debug flags (scan,hash,traverse,filter,delete,report)")
	pf.String("config", "", "Read settings from this INI file")
	pf.StringArray("set", nil, "Override a setting as key:value (repeatable)")
	pf.String("hash", "", "Hash algorithm: sha256, sha1, sha512")
	pf.Int("workers", 0, "Number of concurrent hash workers (default: one per CPU)")
	pf.String("symlinks", "", "Symlinked directories: none, contained, all")
	pf.Bool("no-color", false, "Disable colored output")
	pf.BoolP("quiet", "q", false, "Suppress the banner and informational messages")

	rootCmd.AddCommand(
		newCompareCmd(),
		newScanCmd(),
		newReportCmd(),
		newDeleteCmd(),
		newFilterCmd(),
		newConfigCmd(),
	)

	return rootCmd
}

// addFilterFlags registers the file filter flags on a command
func addFilterFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("min", "", "Minimum file size in bytes (accepts units: 10K, 2MiB)")
	f.String("max", "", "Maximum file size in bytes (accepts units: 10K, 2MiB)")
	f.String("ext", "", "Comma-separated list of allowed extensions (e.g. txt,csv)")
	f.String("regex", "", "Regular expression the file name must match")
	f.StringArray("exclude", nil, "Skip paths matching this regular expression (repeatable)")
	f.String("ignore-file", "", "Read exclude patterns from this file")
}

// newApp resolves configuration for one command invocation. Precedence, lowest
// first: built-in defaults, --config file, --set overrides, dedicated flags.
func newApp(cmd *cobra.Command) (*app, error) {
	flags := cmd.Flags()

	var cfg *hashlaser.Config
	configPath, _ := flags.GetString("config")
	if configPath != "" {
		loaded, err := hashlaser.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = hashlaser.DefaultConfig()
	}

	overrides, _ := flags.GetStringArray("set")
	for _, mapping := range []struct{ flag, key string }{
		{"hash", "default"},
		{"symlinks", "mode"},
		{"format", "format"},
		{"keep", "keep"},
		{"debug", "debug"},
	} {
		if flags.Lookup(mapping.flag) != nil && flags.Changed(mapping.flag) {
			value, _ := flags.GetString(mapping.flag)
			overrides = append(overrides, mapping.key+":"+value)
		}
	}
	if flags.Changed("workers") {
		workers, _ := flags.GetInt("workers")
		overrides = append(overrides, fmt.Sprintf("hash_workers:%d", workers))
	}
	if flags.Changed("verbose") {
		level, _ := flags.GetCount("verbose")
		if level > 3 {
			level = 3
		}
		overrides = append(overrides, fmt.Sprintf("level:%d", level))
	}
	if len(overrides) > 0 {
		if err := cfg.ApplyOverrides(overrides); err != nil {
			return nil, err
		}
	}

	verboseConfig := cfg.GetVerboseConfig()
	hashlaser.SetVerboseLevel(verboseConfig.Level)
	hashlaser.SetDebugFlags(verboseConfig.Debug)
	if cfg.Path() != "" {
		hashlaser.VerboseLog(1, "loaded config from %s", cfg.Path())
	}

	noColor, _ := flags.GetBool("no-color")
	quiet, _ := flags.GetBool("quiet")
	if _, set := os.LookupEnv("NO_COLOR"); set {
		noColor = true
	}

	// Commands without --format always talk to humans
	format := hashlaser.FormatHuman
	if flags.Lookup("format") != nil {
		format = strings.ToLower(cfg.GetOutputConfig().Format)
	}

	// Machine-readable output owns stdout; messages move to stderr
	messages := cmd.OutOrStdout()
	if format != hashlaser.FormatHuman {
		messages = cmd.ErrOrStderr()
		quiet = true
	}

	return &app{
		config:  cfg,
		console: newConsole(messages, cmd.ErrOrStderr(), noColor, quiet),
		out:     cmd.OutOrStdout(),
		format:  format,
	}, nil
}

// newScanner builds a scanner from the resolved configuration and the
// command's ignore flags
func (a *app) newScanner(cmd *cobra.Command) (*hashlaser.Scanner, error) {
	opts, err := a.config.ScanOptions()
	if err != nil {
		return nil, err
	}

	ignore, err := ignoreListFromFlags(cmd)
	if err != nil {
		return nil, err
	}
	opts.Ignore = ignore
	opts.ShutdownChan = shutdownChan

	return hashlaser.NewScanner(opts)
}

// filterFromFlags parses --min, --max, --ext and --regex
func filterFromFlags(cmd *cobra.Command) (*hashlaser.FilterCriteria, error) {
	flags := cmd.Flags()
	minSize, _ := flags.GetString("min")
	maxSize, _ := flags.GetString("max")
	ext, _ := flags.GetString("ext")
	pattern, _ := flags.GetString("regex")
	return hashlaser.ParseFilterCriteria(minSize, maxSize, ext, pattern)
}

// ignoreListFromFlags parses --exclude and --ignore-file
func ignoreListFromFlags(cmd *cobra.Command) (*hashlaser.IgnoreList, error) {
	flags := cmd.Flags()
	if flags.Lookup("exclude") == nil {
		return nil, nil
	}

	excludes, _ := flags.GetStringArray("exclude")
	ignore, err := hashlaser.NewIgnoreList(excludes...)
	if err != nil {
		return nil, fmt.Errorf("invalid --exclude: %w", err)
	}

	ignoreFile, _ := flags.GetString("ignore-file")
	if ignoreFile != "" {
		if err := ignore.LoadIgnoreFile(ignoreFile); err != nil {
			return nil, err
		}
	}
	return ignore, nil
}

// scanDirectory runs the filtered scan shared by scan, report, delete and filter
func (a *app) scanDirectory(cmd *cobra.Command, dir string) (*hashlaser.ScanResult, error) {
	criteria, err := filterFromFlags(cmd)
	if err != nil {
		return nil, err
	}

	scanner, err := a.newScanner(cmd)
	if err != nil {
		return nil, err
	}

	hashlaser.VerboseLog(1, "scanning %s with %s on %d workers", dir, scanner.Algorithm().Name, scanner.HashWorkers())
	result, err := scanner.ScanDirectory(dir, criteria)
	if err != nil {
		return nil, fmt.Errorf("scan of %s failed: %w", dir, err)
	}

	hashlaser.VerboseLog(1, "scan stats: %s", result.Stats)
	if len(result.Skipped) > 0 {
		a.console.Warning("%d file(s) could not be read and were skipped", len(result.Skipped))
		for _, skipped := range result.Skipped {
			hashlaser.VerboseLog(1, "skipped %s (%s): %v", skipped.Path, skipped.Reason, skipped.Err)
		}
	}
	return result, nil
}
