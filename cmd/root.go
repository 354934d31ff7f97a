package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/meysamhadeli/localepack/code_analyzer"
	"github.com/meysamhadeli/localepack/code_analyzer/contracts"
	"github.com/meysamhadeli/localepack/config"
	"github.com/meysamhadeli/localepack/constants/lipgloss"
	"github.com/meysamhadeli/localepack/utils"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// Version of the localepack CLI.
const Version = "0.4.0"

// RootDependencies holds what every subcommand needs.
type RootDependencies struct {
	Cwd      string
	Config   *config.Config
	Logger   *slog.Logger
	BuildID  string
	Cache    *code_analyzer.CacheManager
	Analyzer contracts.ISourceAnalyzer
}

var rootCmd = &cobra.Command{
	Use:   "localepack",
	Short: "Compile YAML locale sources into JavaScript modules and lazily loaded locale chunks.",
	Long: `localepack resolves the #include directives of YAML locale files, merges their
messages per locale and generates the modules a UI runtime imports. In production
builds the messages are extracted to one JSON chunk per locale.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if version, _ := cmd.Flags().GetBool("version"); version {
			fmt.Println(lipgloss.BlueSky.Render(fmt.Sprintf("localepack %s", Version)))
			return nil
		}
		return cmd.Help()
	},
}

func init() {
	config.InitFlags(rootCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(lipgloss.Red.Render(err.Error()))
		os.Exit(1)
	}
}

// handleRootCommand loads the configuration and builds the shared dependencies.
func handleRootCommand(cmd *cobra.Command) (*RootDependencies, error) {
	cwd, err := utils.RealCwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return newRootDependencies(cmd, cwd)
}

func newRootDependencies(cmd *cobra.Command, cwd string) (*RootDependencies, error) {
	cfg, err := config.LoadConfigs(cmd, cwd)
	if err != nil {
		return nil, err
	}
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}

	buildID := uuid.NewString()
	logger := newLogger(level).With("build_id", buildID)
	cache := code_analyzer.NewCacheManager()

	return &RootDependencies{
		Cwd:      cwd,
		Config:   cfg,
		Logger:   logger,
		BuildID:  buildID,
		Cache:    cache,
		Analyzer: code_analyzer.NewSourceAnalyzer(cwd, cache),
	}, nil
}

// newLogger returns a slog logger printing through pterm on stderr.
func newLogger(level slog.Level) *slog.Logger {
	ptermLevel := pterm.LogLevelInfo
	switch {
	case level <= slog.LevelDebug:
		ptermLevel = pterm.LogLevelDebug
	case level >= slog.LevelError:
		ptermLevel = pterm.LogLevelError
	case level >= slog.LevelWarn:
		ptermLevel = pterm.LogLevelWarn
	}
	logger := pterm.DefaultLogger.WithLevel(ptermLevel).WithWriter(os.Stderr)
	return slog.New(pterm.NewSlogHandler(logger))
}
