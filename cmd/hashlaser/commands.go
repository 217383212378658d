package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	hashlaser "github.com/mattkeenan/hashlaser/pkg"
)

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <file1> <file2>",
		Short: "Compare two files by content",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			a.console.Banner(version)

			algorithm, err := hashlaser.GetHashAlgorithm(a.config.GetHashConfig().Default)
			if err != nil {
				return err
			}

			identical, err := hashlaser.CompareFiles(args[0], args[1], algorithm)
			if err != nil {
				return fmt.Errorf("error comparing files: %w", err)
			}

			if identical {
				a.console.Success("Files are identical.")
			} else {
				a.console.Warning("Files are different.")
			}
			return nil
		},
	}
}

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <dir>",
		Short: "Scan a directory for duplicate files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			a.console.Banner(version)
			a.console.Info("📁 Scanning directory: %s", args[0])

			result, err := a.scanDirectory(cmd, args[0])
			if err != nil {
				return err
			}

			groups := hashlaser.SortedDuplicates(result.Grouping)
			return a.printGroups(groups, "🔍 Duplicate files found:", "No duplicates found.")
		},
	}
	addFilterFlags(cmd)
	cmd.Flags().String("format", hashlaser.FormatHuman, "Output format: human, json, fdupes")
	return cmd
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <dir> <output.json>",
		Short: "Write a JSON report of duplicate files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			a.console.Banner(version)
			a.console.Info("📄 Generating report for: %s", args[0])

			result, err := a.scanDirectory(cmd, args[0])
			if err != nil {
				return err
			}

			if err := hashlaser.WriteJSONReport(result.Grouping, args[1]); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			a.console.Success("Report saved to `%s`", args[1])
			return nil
		},
	}
	addFilterFlags(cmd)
	return cmd
}

func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <dir>",
		Short: "Delete all but one copy of each duplicate file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			a.console.Banner(version)
			a.console.Info("🧼 Deleting duplicates in `%s` (dry-run = %t)", args[0], dryRun)

			result, err := a.scanDirectory(cmd, args[0])
			if err != nil {
				return err
			}

			groups := hashlaser.SortedDuplicates(result.Grouping)
			if len(groups) == 0 {
				a.console.Success("No duplicates to delete.")
				return nil
			}

			res, err := hashlaser.DeleteDuplicates(groups, hashlaser.DeleteOptions{
				DryRun: dryRun,
				Keep:   a.config.GetDeleteConfig().Keep,
			})
			if err != nil {
				return err
			}

			a.printDeleteActions(res)

			if failed := res.Failed(); len(failed) > 0 {
				return fmt.Errorf("failed to delete %d of %d file(s)", len(failed), len(res.Actions))
			}
			if dryRun {
				a.console.Success("Dry run complete. No files were deleted.")
			} else {
				a.console.Success("Duplicate files deleted successfully.")
			}
			return nil
		},
	}
	addFilterFlags(cmd)
	cmd.Flags().Bool("dry-run", false, "Show what would be deleted without deleting")
	cmd.Flags().String("keep", hashlaser.KeepFirst, "Which copy to keep: first (worker merge order, varies between runs), lexical")
	return cmd
}

func newFilterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter <dir>",
		Short: "List files matching the filters, grouped by content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			a.console.Banner(version)
			a.console.Info("🎯 Filtering directory: %s", args[0])

			result, err := a.scanDirectory(cmd, args[0])
			if err != nil {
				return err
			}

			if len(result.Grouping) == 0 {
				a.console.Success("No matching files found.")
				return nil
			}

			return a.printMatches(result.Grouping)
		},
	}
	addFilterFlags(cmd)
	cmd.Flags().String("format", hashlaser.FormatHuman, "Output format: human, json, fdupes")
	return cmd
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create configuration files",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			all := a.config.GetAllConfig()
			source := a.config.Path()
			if source == "" {
				source = "(built-in defaults)"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# source: %s\n", source)
			fmt.Fprintf(out, "[filehash]\ndefault = %s\n\n", all.Hash.Default)
			fmt.Fprintf(out, "[output]\nformat = %s\n\n", all.Output.Format)
			fmt.Fprintf(out, "[verbose]\nlevel = %d\ndebug = %s\n\n", all.Verbose.Level, all.Verbose.Debug)
			fmt.Fprintf(out, "[symlink]\nmode = %s\n\n", all.Symlink.Mode)
			fmt.Fprintf(out, "[performance]\nhash_workers = %d\nhash_buffer = %s\n\n",
				all.Performance.HashWorkers, all.Performance.HashBuffer)
			fmt.Fprintf(out, "[delete]\nkeep = %s\n", all.Delete.Keep)
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init <path>",
		Short: "Write a configuration file with the default settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			path := args[0]
			force, _ := cmd.Flags().GetBool("force")
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("failed to check %s: %w", path, err)
			}

			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("failed to create config directory %s: %w", dir, err)
				}
			}
			if err := hashlaser.DefaultConfig().SaveTo(path); err != nil {
				return err
			}
			a.console.Success("Config written to `%s`", path)
			return nil
		},
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing file")

	configCmd.AddCommand(showCmd, initCmd)
	return configCmd
}

// printGroups renders duplicate groups in the selected output format
func (a *app) printGroups(groups []hashlaser.DuplicateGroup, heading, none string) error {
	switch a.format {
	case hashlaser.FormatJSON:
		data, err := hashlaser.NewReport(groups).Bytes()
		if err != nil {
			return err
		}
		_, err = a.out.Write(data)
		return err
	case hashlaser.FormatFdupes:
		for i, group := range groups {
			if i > 0 {
				fmt.Fprintln(a.out)
			}
			for _, f := range group.Files {
				fmt.Fprintln(a.out, f)
			}
		}
		return nil
	}

	if len(groups) == 0 {
		a.console.Success("%s", none)
		return nil
	}

	a.console.Heading("%s", heading)
	for _, group := range groups {
		a.console.Heading("\n🧬 Hash: %s", group.Hash)
		a.console.List(group.Files)
	}
	a.console.Heading("")
	a.printSummary(groups)
	return nil
}

// matchReport is the JSON shape of a filtered listing; it holds groups of any size
type matchReport struct {
	Groups []hashlaser.DuplicateGroup `json:"groups"`
}

// printMatches renders every group of a filtered scan; duplicate groups are
// marked in human output
func (a *app) printMatches(g hashlaser.Grouping) error {
	switch a.format {
	case hashlaser.FormatJSON:
		groups := make([]hashlaser.DuplicateGroup, 0, len(g))
		hashlaser.SortedGroups(g, func(group hashlaser.DuplicateGroup, context string) bool {
			groups = append(groups, group)
			return true
		})
		data, err := json.MarshalIndent(matchReport{Groups: groups}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode matches: %w", err)
		}
		_, err = a.out.Write(append(data, '\n'))
		return err
	case hashlaser.FormatFdupes:
		first := true
		hashlaser.SortedGroups(g, func(group hashlaser.DuplicateGroup, context string) bool {
			if !first {
				fmt.Fprintln(a.out)
			}
			first = false
			for _, f := range group.Files {
				fmt.Fprintln(a.out, f)
			}
			return true
		})
		return nil
	}

	duplicates := 0
	a.console.Heading("🔍 Matching files:")
	hashlaser.SortedGroups(g, func(group hashlaser.DuplicateGroup, context string) bool {
		if context == hashlaser.DuplicateContext {
			duplicates++
			a.console.Heading("\n🧬 Hash: %s (%d copies)", group.Hash, group.Count())
		} else {
			a.console.Heading("\n🧬 Hash: %s", group.Hash)
		}
		a.console.List(group.Files)
		return true
	})
	a.console.Heading("")

	if duplicates == 0 {
		a.console.Success("No duplicate files matched the given filters.")
	}
	return nil
}

// printSummary reports how much space removing the redundant copies would free
func (a *app) printSummary(groups []hashlaser.DuplicateGroup) {
	var wasted int64
	redundant := 0
	for _, group := range groups {
		info, err := os.Stat(group.Files[0])
		if err != nil {
			continue
		}
		wasted += group.WastedBytes(info.Size())
		redundant += group.Count() - 1
	}
	a.console.Muted("%d group(s), %d redundant file(s), %s reclaimable",
		len(groups), redundant, humanize.IBytes(uint64(wasted)))
}

// printDeleteActions prints the per-group outcome of a deletion batch
func (a *app) printDeleteActions(res *hashlaser.DeleteResult) {
	lastHash := ""
	for _, action := range res.Actions {
		if action.Hash != lastHash {
			a.console.Heading("\n🧬 Duplicate group (Hash: %s)", action.Hash)
			a.console.Heading("📂 Keeping: %s", action.Kept)
			lastHash = action.Hash
		}

		switch {
		case action.Err != nil:
			a.console.Error("%v", action.Err)
		case action.Skipped:
			a.console.Warning("Skipped (same file as kept copy): %s", action.Path)
		case action.DryRun:
			a.console.Heading("🧪 Would delete: %s", action.Path)
		default:
			a.console.Heading("🗑️ Deleted: %s", action.Path)
		}
	}
	a.console.Heading("")
}
