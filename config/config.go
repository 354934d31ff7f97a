package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/meysamhadeli/localepack/extractor"
	"github.com/meysamhadeli/localepack/loader"
	"github.com/meysamhadeli/localepack/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ConfigName is the base name of the configuration file looked up in the working directory.
const ConfigName = "localepack-config"

// Values of the extract setting.
const (
	ExtractAuto = "auto"
	ExtractOn   = "true"
	ExtractOff  = "false"
)

var (
	ErrInvalidMode     = errors.New("config: mode must be production or development")
	ErrInvalidExtract  = errors.New("config: extract must be auto, true or false")
	ErrUnsupportedFile = errors.New("config: configuration file must be JSON or YAML")
)

// Config represents the structure of the configuration file
type Config struct {
	EsModule     bool   `mapstructure:"es_module"`
	Extract      string `mapstructure:"extract"`
	OutputDir    string `mapstructure:"output_dir"`
	TmpDir       string `mapstructure:"tmp_dir"`
	Preload      string `mapstructure:"preload"`
	PreloadEager bool   `mapstructure:"preload_eager_mode"`
	Optimize     bool   `mapstructure:"optimize"`
	Mode         string `mapstructure:"mode"`
	SrcDir       string `mapstructure:"src_dir"`
	ModuleRoot   string `mapstructure:"module_root"`
	Theme        string `mapstructure:"theme"`
	LogLevel     string `mapstructure:"log_level"`

	// Older names of TmpDir and OutputDir. They apply when the newer key is unset.
	CacheDir   string `mapstructure:"cache_dir"`
	OutputPath string `mapstructure:"output_path"`
}

// DefaultConfig values. TmpDir, OutputDir and Preload are resolved after loading
// so that their aliases and the environment can take part.
var DefaultConfig = Config{
	EsModule:   true,
	Extract:    ExtractAuto,
	Mode:       loader.ModeProduction,
	SrcDir:     "src",
	ModuleRoot: "node_modules",
	Theme:      "dracula",
	LogLevel:   "info",
}

// LoadConfigs initializes the configuration from file, flags, and environment variables, and returns the final config.
func LoadConfigs(rootCmd *cobra.Command, cwd string) (*Config, error) {
	v := viper.New()

	setDefaults(v)
	bindEnv(v)

	var cfgFile string
	if flag := lookupFlag(rootCmd, "config"); flag != nil {
		cfgFile = flag.Value.String()
	}
	if cfgFile != "" {
		if GetConfigFileType(cfgFile) == "" {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, cfgFile)
		}
		if !filepath.IsAbs(cfgFile) {
			cfgFile = filepath.Join(cwd, cfgFile)
		}
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: error reading config file: %w", err)
		}
	} else if file := findConfigFile(cwd); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: error reading config file: %w", err)
		}
	}

	if err := bindFlags(v, rootCmd); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("config: unable to decode into struct: %w", err)
	}
	if err := config.resolve(cwd); err != nil {
		return nil, err
	}
	return &config, nil
}

// setDefaults sets all default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("es_module", DefaultConfig.EsModule)
	v.SetDefault("extract", DefaultConfig.Extract)
	v.SetDefault("mode", DefaultConfig.Mode)
	v.SetDefault("src_dir", DefaultConfig.SrcDir)
	v.SetDefault("module_root", DefaultConfig.ModuleRoot)
	v.SetDefault("theme", DefaultConfig.Theme)
	v.SetDefault("log_level", DefaultConfig.LogLevel)
	v.SetDefault("preload_eager_mode", false)
	v.SetDefault("optimize", false)
}

// bindEnv explicitly binds environment variables to configuration keys
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("es_module", "LOCALEPACK_ES_MODULE")
	_ = v.BindEnv("extract", "LOCALEPACK_EXTRACT")
	_ = v.BindEnv("output_dir", "LOCALEPACK_OUTPUT_DIR")
	_ = v.BindEnv("tmp_dir", "LOCALEPACK_TMP_DIR")
	_ = v.BindEnv("preload", "LOCALEPACK_PRELOAD")
	_ = v.BindEnv("optimize", "LOCALEPACK_OPTIMIZE")
	_ = v.BindEnv("mode", "LOCALEPACK_MODE")
	_ = v.BindEnv("theme", "THEME")
	_ = v.BindEnv("log_level", "LOCALEPACK_LOG_LEVEL")
}

// bindFlags binds the CLI flags to configuration values.
func bindFlags(v *viper.Viper, rootCmd *cobra.Command) error {
	for _, name := range []string{
		"es_module", "extract", "output_dir", "tmp_dir", "preload", "preload_eager_mode",
		"optimize", "mode", "src_dir", "module_root", "theme", "log_level",
	} {
		flag := lookupFlag(rootCmd, name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(name, flag); err != nil {
			return fmt.Errorf("config: failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// lookupFlag finds name among the local, persistent and inherited flags of cmd.
func lookupFlag(cmd *cobra.Command, name string) *pflag.Flag {
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag
	}
	return cmd.InheritedFlags().Lookup(name)
}

// InitFlags initializes the flags for the root command.
func InitFlags(rootCmd *cobra.Command) {
	// Use PersistentFlags so that these flags are available in all subcommands
	rootCmd.PersistentFlags().StringP("config", "c", "", "Specifies the path to a configuration file (JSON or YAML) that contains all the settings for the application.")

	rootCmd.PersistentFlags().Bool("es_module", DefaultConfig.EsModule, "Emit ES modules instead of CommonJS.")
	rootCmd.PersistentFlags().String("extract", DefaultConfig.Extract, "Split locale data into lazily loaded chunks: 'auto' (production only), 'true' or 'false'.")
	rootCmd.PersistentFlags().String("output_dir", "", "Directory of the locale chunks inside the build output (default 'locales').")
	rootCmd.PersistentFlags().String("tmp_dir", "", "Staging directory for locale chunks and the runtime loader (default 'src/.locales').")
	rootCmd.PersistentFlags().String("preload", "", "Locale bundled together with the runtime loader.")
	rootCmd.PersistentFlags().Bool("preload_eager_mode", false, "Import the preload chunk eagerly.")
	rootCmd.PersistentFlags().Bool("optimize", false, "Write locale chunks in the dictionary format.")
	rootCmd.PersistentFlags().String("mode", DefaultConfig.Mode, "Build mode: 'production' or 'development'.")
	rootCmd.PersistentFlags().String("src_dir", DefaultConfig.SrcDir, "Directory searched for locale sources.")
	rootCmd.PersistentFlags().String("module_root", DefaultConfig.ModuleRoot, "Root of <package> include directives.")
	rootCmd.PersistentFlags().String("theme", DefaultConfig.Theme, "Set customize theme for printed code. (e.g., 'dracula', 'github', 'monokai')")
	rootCmd.PersistentFlags().String("log_level", DefaultConfig.LogLevel, "Log level: 'debug', 'info', 'warn' or 'error'.")

	// Version flag
	rootCmd.Flags().BoolP("version", "v", false, "Specifies the version of the application.")
}

// GetConfigFileType returns the type of the configuration file based on its extension
func GetConfigFileType(filename string) string {
	if strings.HasSuffix(filename, ".json") {
		return "json"
	} else if strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml") {
		return "yaml"
	}
	return ""
}

// findConfigFile returns the first configuration file present in cwd.
func findConfigFile(cwd string) string {
	for _, ext := range []string{".yml", ".yaml", ".json"} {
		path := filepath.Join(cwd, ConfigName+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// resolve applies aliases and environment fallbacks, then validates the result.
func (c *Config) resolve(cwd string) error {
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	if c.Mode != loader.ModeProduction && c.Mode != loader.ModeDevelopment {
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Mode)
	}
	c.Extract = strings.ToLower(strings.TrimSpace(c.Extract))
	switch c.Extract {
	case "", ExtractAuto:
		c.Extract = ExtractAuto
	case ExtractOn, ExtractOff:
	case "1", "0":
		// YAML booleans arrive weakly decoded
		c.Extract = map[string]string{"1": ExtractOn, "0": ExtractOff}[c.Extract]
	default:
		return fmt.Errorf("%w: %q", ErrInvalidExtract, c.Extract)
	}

	if c.TmpDir == "" {
		c.TmpDir = c.CacheDir
	}
	if c.OutputDir == "" {
		c.OutputDir = c.OutputPath
	}
	defaults := extractor.DefaultOptions()
	if c.TmpDir == "" {
		c.TmpDir = defaults.TmpDir
	}
	if c.OutputDir == "" {
		c.OutputDir = defaults.OutputDir
	}

	if c.Preload == "" {
		c.Preload = preloadFromEnv(cwd)
	}
	if c.Preload != "" {
		if err := utils.CheckLocale(c.Preload); err != nil {
			return fmt.Errorf("config: invalid preload locale: %w", err)
		}
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// preloadFromEnv reads the framework locale variables from the process
// environment first and from the project's .env file second.
func preloadFromEnv(cwd string) string {
	for _, key := range extractor.PreloadEnv {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	dotenv, err := godotenv.Read(filepath.Join(cwd, ".env"))
	if err != nil {
		return ""
	}
	for _, key := range extractor.PreloadEnv {
		if v := dotenv[key]; v != "" {
			return v
		}
	}
	return ""
}

// ShouldExtract reports whether locale data goes to split chunks. In auto mode
// only production builds extract.
func (c *Config) ShouldExtract() bool {
	switch c.Extract {
	case ExtractOn:
		return true
	case ExtractOff:
		return false
	default:
		return c.Mode == loader.ModeProduction
	}
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// ExtractorOptions maps the configuration onto extractor options.
func (c *Config) ExtractorOptions(cwd string, logger *slog.Logger) extractor.Options {
	return extractor.Options{
		Cwd:          cwd,
		TmpDir:       c.TmpDir,
		OutputDir:    c.OutputDir,
		Preload:      c.Preload,
		PreloadEager: c.PreloadEager,
		EsModule:     c.EsModule,
		Optimize:     c.Optimize,
		Logger:       logger,
	}
}

// LoaderOptions maps the configuration onto loader options. Collaborators
// such as the extractor and the cache are left to the caller.
func (c *Config) LoaderOptions(cwd string, logger *slog.Logger) loader.Options {
	return loader.Options{
		EsModule:   c.EsModule,
		Extract:    c.ShouldExtract(),
		Mode:       c.Mode,
		Cwd:        cwd,
		ModuleRoot: c.ModuleRoot,
		Logger:     logger,
	}
}
