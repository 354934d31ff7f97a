package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/meysamhadeli/localepack/constants/lipgloss"
	"github.com/meysamhadeli/localepack/esbuildplugin"
	"github.com/meysamhadeli/localepack/utils"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// bundleCmd: localepack bundle
var bundleCmd = &cobra.Command{
	Use:   "bundle <entry...>",
	Short: "Bundle an application with esbuild, compiling the locale sources it imports.",
	Long: `The 'bundle' subcommand runs esbuild over the given entry points with the localepack
plugin registered. Imported .yml and .yaml files become locale modules; in extract mode
their messages are split into lazily loaded locale chunks.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDependencies, err := handleRootCommand(cmd)
		if err != nil {
			return err
		}
		var opts bundleOptions
		opts.OutDir, _ = cmd.Flags().GetString("outdir")
		opts.Minify, _ = cmd.Flags().GetBool("minify")
		opts.Sourcemap, _ = cmd.Flags().GetBool("sourcemap")
		opts.External, _ = cmd.Flags().GetStringSlice("external")
		opts.Verify, _ = cmd.Flags().GetBool("verify")

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		return handleBundleCommand(ctx, rootDependencies, args, opts)
	},
}

type bundleOptions struct {
	OutDir    string
	Minify    bool
	Sourcemap bool
	External  []string
	Verify    bool
}

func init() {
	bundleCmd.Flags().String("outdir", "dist", "Output directory of the bundle")
	bundleCmd.Flags().Bool("minify", false, "Minify the output")
	bundleCmd.Flags().Bool("sourcemap", false, "Emit source maps")
	bundleCmd.Flags().StringSlice("external", nil, "Packages left out of the bundle")
	bundleCmd.Flags().Bool("verify", false, "Parse every generated module before handing it to esbuild")

	rootCmd.AddCommand(bundleCmd)
}

func handleBundleCommand(ctx context.Context, deps *RootDependencies, entries []string, opts bundleOptions) error {
	p, err := newPipeline(deps, opts.Verify)
	if err != nil {
		return err
	}
	defer p.close()

	buildOptions := p.buildOptions(ctx, entries, opts)

	spinner := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgCyan)).
		WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").
		WithDelay(100).WithRemoveWhenDone(true)
	spinnerInstance, _ := spinner.Start("Bundling...")

	result := api.Build(buildOptions)

	if spinnerInstance != nil {
		spinnerInstance.Stop()
	}
	fmt.Print("\r")

	printMessages(result.Warnings, api.WarningMessage)
	if len(result.Errors) > 0 {
		printMessages(result.Errors, api.ErrorMessage)
		return fmt.Errorf("bundle failed with %d errors", len(result.Errors))
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var total int
	for _, file := range result.OutputFiles {
		if err := utils.WriteFile(file.Path, file.Contents); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.Path, err)
		}
		total += len(file.Contents)
		fmt.Println(lipgloss.Green.Render("✓ "+utils.NormalizePath(file.Path, deps.Cwd)) + " " +
			lipgloss.Info.Render(fmt.Sprintf("%.1f KB", float64(len(file.Contents))/1024)))
	}
	fmt.Println(lipgloss.BoxStyle.Render(fmt.Sprintf("%d files, %.1f KB", len(result.OutputFiles), float64(total)/1024)))
	return nil
}

// buildOptions configures esbuild for entries with the locale plugin registered.
// Splitting, and with it lazily loaded locale chunks, needs ES modules.
func (p *pipeline) buildOptions(ctx context.Context, entries []string, opts bundleOptions) api.BuildOptions {
	cfg := p.deps.Config
	outDir := opts.OutDir
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(p.deps.Cwd, outDir)
	}

	format := api.FormatCommonJS
	if cfg.EsModule {
		format = api.FormatESModule
	}
	sourcemap := api.SourceMapNone
	if opts.Sourcemap {
		sourcemap = api.SourceMapLinked
	}

	buildOptions := api.BuildOptions{
		EntryPoints:       entries,
		AbsWorkingDir:     p.deps.Cwd,
		Bundle:            true,
		Write:             false,
		Outdir:            outDir,
		Format:            format,
		Splitting:         cfg.EsModule,
		Platform:          api.PlatformBrowser,
		MinifyWhitespace:  opts.Minify,
		MinifyIdentifiers: opts.Minify,
		MinifySyntax:      opts.Minify,
		Sourcemap:         sourcemap,
		External:          opts.External,
		ChunkNames:        chunkNames(cfg.OutputDir),
		LogLevel:          api.LogLevelSilent,
		Loader: map[string]api.Loader{
			".json": api.LoaderJSON,
		},
	}
	esbuildplugin.Register(&buildOptions, esbuildplugin.NewWithContext(ctx, p.loader))
	return buildOptions
}

// chunkNames places split chunks, the locale chunks among them, in the
// configured locale output directory.
func chunkNames(outputDir string) string {
	dir := strings.Trim(filepath.ToSlash(outputDir), "/")
	dir = strings.TrimPrefix(dir, "./")
	if dir == "" {
		return "[name]-[hash]"
	}
	return dir + "/[name]-[hash]"
}

func printMessages(messages []api.Message, kind api.MessageKind) {
	if len(messages) == 0 {
		return
	}
	formatted := api.FormatMessages(messages, api.FormatMessagesOptions{
		Kind:          kind,
		Color:         true,
		TerminalWidth: 100,
	})
	for _, msg := range formatted {
		fmt.Fprint(os.Stderr, msg)
	}
}
