package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/meysamhadeli/localepack/code_analyzer"
	"github.com/meysamhadeli/localepack/constants/lipgloss"
	"github.com/meysamhadeli/localepack/esbuildplugin"
	"github.com/meysamhadeli/localepack/utils"
	"github.com/spf13/cobra"
)

// inspectCmd: localepack inspect
var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Print the modules generated for one locale source.",
	Long: `The 'inspect' subcommand compiles a single locale source and prints the files it
depends on, in merge order, followed by the highlighted locale data module. With
--component the component module is printed as well, and --verify parses the
generated code and lists its imports and exports.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDependencies, err := handleRootCommand(cmd)
		if err != nil {
			return err
		}
		var opts inspectOptions
		opts.Component, _ = cmd.Flags().GetBool("component")
		opts.Verify, _ = cmd.Flags().GetBool("verify")
		opts.Plain, _ = cmd.Flags().GetBool("plain")

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		return handleInspectCommand(ctx, rootDependencies, args[0], opts)
	},
}

type inspectOptions struct {
	Component bool
	Verify    bool
	Plain     bool
}

func init() {
	inspectCmd.Flags().Bool("component", false, "Also print the component module")
	inspectCmd.Flags().Bool("verify", false, "Parse the generated code and report its imports, exports and syntax errors")
	inspectCmd.Flags().Bool("plain", false, "Print the code without highlighting")

	rootCmd.AddCommand(inspectCmd)
}

func handleInspectCommand(ctx context.Context, deps *RootDependencies, file string, opts inspectOptions) error {
	sources, err := collectSources(deps, []string{file})
	if err != nil {
		return err
	}
	path := sources[0]

	p, err := newPipeline(deps, false)
	if err != nil {
		return err
	}
	defer p.close()
	if err := p.start(); err != nil {
		return err
	}

	module, err := p.loader.Compile(ctx, path)
	if module != nil {
		printWarnings(module.Warnings)
		fmt.Println(lipgloss.Info.Render("Dependencies:"))
		for i, dep := range module.Dependencies {
			fmt.Printf("  %d. %s\n", i+1, utils.NormalizePath(dep, deps.Cwd))
		}
	}
	if err != nil {
		return err
	}

	if err := p.printCode(ctx, "Locale data module", module.Code, opts); err != nil {
		return err
	}
	if !opts.Component {
		return nil
	}
	component, err := p.loader.ComponentModule(path, "./"+filepath.Base(path)+esbuildplugin.DataQuery)
	if err != nil {
		return err
	}
	return p.printCode(ctx, "Component module", component, opts)
}

// printCode prints code under title, followed by its analysis when verifying.
func (p *pipeline) printCode(ctx context.Context, title, code string, opts inspectOptions) error {
	fmt.Println(lipgloss.BoxStyle.Render(title))
	if opts.Plain {
		fmt.Println(code)
	} else if err := utils.RenderCodeWithContext(ctx, os.Stdout, code, "javascript", p.deps.Config.Theme); err != nil {
		return err
	}
	if !opts.Verify {
		return nil
	}

	report, err := p.deps.Analyzer.AnalyzeModule(ctx, []byte(code))
	if err != nil {
		return err
	}
	fmt.Println(lipgloss.Info.Render("Imports: ") + strings.Join(report.Imports, ", "))
	exports := append([]string(nil), report.Exports...)
	if report.ModuleExports {
		exports = append(exports, "module.exports")
	}
	fmt.Println(lipgloss.Info.Render("Exports: ") + strings.Join(exports, ", "))
	if len(report.Errors) == 0 {
		fmt.Println(lipgloss.Green.Render("✓ valid JavaScript"))
		return nil
	}
	for _, syntaxErr := range report.Errors {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("✗ %d:%d near %q", syntaxErr.Line, syntaxErr.Column, syntaxErr.Text)))
	}
	return fmt.Errorf("%s: %w", title, code_analyzer.ErrSyntax)
}
