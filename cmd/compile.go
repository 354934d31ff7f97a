package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/meysamhadeli/localepack/code_analyzer"
	"github.com/meysamhadeli/localepack/constants/lipgloss"
	"github.com/meysamhadeli/localepack/utils"
	"github.com/meysamhadeli/localepack/watch"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// compileCmd: localepack compile
var compileCmd = &cobra.Command{
	Use:   "compile [files...]",
	Short: "Compile locale sources into locale data modules.",
	Long: `The 'compile' subcommand resolves the includes of every locale source, merges the
messages and generates the locale data module of each source. Without arguments every
locale source below the source directory is compiled. When extraction is enabled the
messages are written to the locale chunks of the staging directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDependencies, err := handleRootCommand(cmd)
		if err != nil {
			return err
		}
		watchMode, _ := cmd.Flags().GetBool("watch")
		verify, _ := cmd.Flags().GetBool("verify")
		outDir, _ := cmd.Flags().GetString("out_dir")

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		return handleCompileCommand(ctx, rootDependencies, args, compileOptions{
			Watch:  watchMode,
			Verify: verify,
			OutDir: outDir,
		})
	},
}

type compileOptions struct {
	Watch  bool
	Verify bool
	OutDir string
}

func init() {
	compileCmd.Flags().BoolP("watch", "w", false, "Recompile the affected modules when a locale source changes")
	compileCmd.Flags().Bool("verify", false, "Parse every generated module before accepting it")
	compileCmd.Flags().StringP("out_dir", "o", "", "Write the generated modules below this directory")

	rootCmd.AddCommand(compileCmd)
}

func handleCompileCommand(ctx context.Context, deps *RootDependencies, args []string, opts compileOptions) error {
	sources, err := collectSources(deps, args)
	if err != nil {
		return err
	}

	p, err := newPipeline(deps, opts.Verify)
	if err != nil {
		return err
	}
	defer p.close()
	if err := p.start(); err != nil {
		return err
	}

	spinner := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgCyan)).
		WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").
		WithDelay(100).WithRemoveWhenDone(true)
	spinnerInstance, _ := spinner.Start(fmt.Sprintf("Compiling %d locale sources...", len(sources)))

	graph := watch.NewDependencyGraph()
	results, err := p.compileAll(ctx, sources)
	if spinnerInstance != nil {
		spinnerInstance.Stop()
	}
	fmt.Print("\r")
	if err != nil {
		return err
	}

	failed := p.handleResults(results, graph, opts.OutDir)
	p.printSummary(len(results), failed)

	if !opts.Watch {
		if failed > 0 {
			return fmt.Errorf("%d of %d locale modules failed to compile", failed, len(results))
		}
		return nil
	}
	return p.watch(ctx, graph, opts.OutDir)
}

// collectSources returns the files named on the command line, or every locale
// source below the configured source directory.
func collectSources(deps *RootDependencies, args []string) ([]string, error) {
	if len(args) == 0 {
		sources, err := deps.Analyzer.FindLocaleSources(deps.Config.SrcDir)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", deps.Config.SrcDir, err)
		}
		return sources, nil
	}
	sources := make([]string, 0, len(args))
	for _, arg := range args {
		if !filepath.IsAbs(arg) {
			arg = filepath.Join(deps.Cwd, arg)
		}
		sources = append(sources, filepath.Clean(arg))
	}
	return sources, nil
}

// handleResults reports every result, records its dependencies in graph and
// writes the compiled modules. It returns the number of failures.
func (p *pipeline) handleResults(results []compiled, graph *watch.DependencyGraph, outDir string) int {
	failed := 0
	for _, result := range results {
		if result.Module != nil && len(result.Module.Dependencies) > 0 {
			if err := graph.Update(result.Path, result.Module.Dependencies); err != nil {
				p.deps.Logger.Warn("failed to record dependencies", "module", result.Path, "error", err)
			}
		}
		if !p.report(result) {
			failed++
			continue
		}
		if outDir == "" {
			continue
		}
		if _, err := p.writeModule(outDir, result); err != nil {
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error writing module: %v", err)))
			failed++
		}
	}
	return failed
}

func (p *pipeline) printSummary(total, failed int) {
	summary := fmt.Sprintf("%d compiled, %d failed", total-failed, failed)
	if p.engine != nil {
		stats := p.engine.Stats()
		summary += fmt.Sprintf("\nlocale chunks: %d written, %d unchanged, %d removed",
			stats.Writes, stats.Skipped, stats.Removes)
	}
	fmt.Println(lipgloss.BoxStyle.Render(summary))

	if p.deps.Cache != nil {
		perf := p.deps.Cache.GetPerformanceStats()
		p.deps.Logger.Debug("source cache",
			"hits", perf["cache_hits"],
			"misses", perf["cache_misses"],
			"evictions", perf["evictions"],
			"hit_rate_percent", perf["hit_rate_percent"])
	}
}

// watch recompiles the modules affected by file changes until ctx is done.
func (p *pipeline) watch(ctx context.Context, graph *watch.DependencyGraph, outDir string) error {
	srcDir := p.deps.Config.SrcDir
	if !filepath.IsAbs(srcDir) {
		srcDir = filepath.Join(p.deps.Cwd, srcDir)
	}
	var roots []string
	if info, err := os.Stat(srcDir); err == nil && info.IsDir() {
		roots = append(roots, srcDir)
	}

	watcher, err := watch.NewWatcher(graph, watch.Options{
		Roots:    roots,
		IsSource: code_analyzer.IsLocaleSource,
		Logger:   p.deps.Logger,
	})
	if err != nil {
		return err
	}

	fmt.Println(lipgloss.Info.Render("Watching for changes. Press Ctrl+C to stop."))
	return watcher.Run(ctx, func(ctx context.Context, batch watch.Batch) error {
		return p.rebuild(ctx, graph, batch, outDir)
	})
}

// rebuild applies one batch of changes.
func (p *pipeline) rebuild(ctx context.Context, graph *watch.DependencyGraph, batch watch.Batch, outDir string) error {
	for _, removed := range batch.Removed {
		if err := p.loader.Forget(ctx, removed); err != nil {
			return err
		}
		if err := graph.Remove(removed); err != nil {
			p.deps.Logger.Warn("failed to drop module", "module", removed, "error", err)
		}
		fmt.Println(lipgloss.Yellow.Render("- " + utils.NormalizePath(removed, p.deps.Cwd)))
	}

	modules := append(append([]string(nil), batch.Modules...), batch.Created...)
	if len(modules) == 0 {
		return nil
	}
	for _, module := range modules {
		if p.deps.Cache != nil {
			p.deps.Cache.Invalidate(module)
		}
	}

	results, err := p.compileAll(ctx, modules)
	if err != nil {
		return err
	}
	if failed := p.handleResults(results, graph, outDir); failed > 0 {
		p.deps.Logger.Warn("rebuild finished with errors", "failed", failed, "modules", len(results))
	}
	return nil
}
