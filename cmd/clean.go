package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/meysamhadeli/localepack/constants/lipgloss"
	"github.com/meysamhadeli/localepack/extractor"
	"github.com/meysamhadeli/localepack/utils"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the staging directory of the locale chunks",
	Long: `The 'clean' command removes the staging directory (tmp_dir) holding the extracted
locale chunks and the runtime loader. The next extracting build writes them again.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		stats, _ := cmd.Flags().GetBool("stats")

		rootDependencies, err := handleRootCommand(cmd)
		if err != nil {
			return err
		}
		return handleCleanCommand(rootDependencies, force, stats, os.Stdin)
	},
}

func init() {
	// Define command-specific flags
	cleanCmd.Flags().BoolP("force", "f", false, "Remove without confirmation")
	cleanCmd.Flags().BoolP("stats", "s", false, "Show the staging directory statistics instead of removing it")

	rootCmd.AddCommand(cleanCmd)
}

// stagingStats describes the content of the staging directory.
type stagingStats struct {
	Chunks    int
	TotalSize int64
	Runtime   bool
}

func handleCleanCommand(deps *RootDependencies, force, showStats bool, in io.Reader) error {
	tmpDir, err := extractor.ResolveTmpDir(deps.Config.TmpDir, deps.Cwd)
	if err != nil {
		return err
	}
	if rel, err := filepath.Rel(deps.Cwd, tmpDir); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: refusing to remove a directory outside the project: %s", extractor.ErrInvalidTmpDir, tmpDir)
	}
	display := utils.NormalizePath(tmpDir, deps.Cwd)

	stats, err := readStagingStats(tmpDir)
	if os.IsNotExist(err) {
		fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Nothing to clean: %s does not exist.", display)))
		return nil
	}
	if err != nil {
		return err
	}

	if showStats {
		fmt.Println(lipgloss.Info.Render("Staging Statistics:"))
		fmt.Printf("  Directory: %s\n", display)
		fmt.Printf("  Locale Chunks: %d\n", stats.Chunks)
		fmt.Printf("  Total Size: %.2f KB\n", float64(stats.TotalSize)/1024)
		fmt.Printf("  Runtime Loader: %t\n", stats.Runtime)
		return nil
	}

	if !force {
		reader := bufio.NewReader(in)
		fmt.Printf("Are you sure you want to remove %s? (y/N): ", display)
		response, _ := reader.ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Println(lipgloss.Yellow.Render("Clean cancelled."))
			return nil
		}
	}

	spinner := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgCyan)).
		WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").
		WithDelay(100).WithRemoveWhenDone(true)
	spinnerInstance, _ := spinner.Start("Removing staging directory...")

	err = os.RemoveAll(tmpDir)
	if spinnerInstance != nil {
		spinnerInstance.Stop()
	}
	fmt.Print("\r")
	if err != nil {
		return fmt.Errorf("error removing %s: %w", display, err)
	}
	if deps.Cache != nil {
		deps.Cache.ClearCache()
	}

	fmt.Println(lipgloss.Green.Render(fmt.Sprintf("✓ Removed %s (%d locale chunks)", display, stats.Chunks)))
	return nil
}

func readStagingStats(dir string) (stagingStats, error) {
	var stats stagingStats
	entries, err := os.ReadDir(dir)
	if err != nil {
		return stats, err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return stats, err
		}
		switch {
		case entry.Name() == extractor.RuntimeFileName:
			stats.Runtime = true
		case strings.HasSuffix(entry.Name(), ".json"):
			stats.Chunks++
		default:
			continue
		}
		stats.TotalSize += info.Size()
	}
	return stats, nil
}
