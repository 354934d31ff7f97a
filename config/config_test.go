package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/meysamhadeli/localepack/extractor"
	"github.com/meysamhadeli/localepack/loader"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "localepack"}
	InitFlags(cmd)
	return cmd
}

func clearPreloadEnv(t *testing.T) {
	for _, key := range extractor.PreloadEnv {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, dir, name, content string) {
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadConfigsDefaults(t *testing.T) {
	clearPreloadEnv(t)
	cwd := t.TempDir()

	cfg, err := LoadConfigs(newCommand(), cwd)
	require.NoError(t, err)

	assert.True(t, cfg.EsModule)
	assert.Equal(t, ExtractAuto, cfg.Extract)
	assert.Equal(t, loader.ModeProduction, cfg.Mode)
	assert.Equal(t, "src/.locales", cfg.TmpDir)
	assert.Equal(t, "locales", cfg.OutputDir)
	assert.Equal(t, "src", cfg.SrcDir)
	assert.Equal(t, "node_modules", cfg.ModuleRoot)
	assert.Equal(t, "dracula", cfg.Theme)
	assert.Empty(t, cfg.Preload)
	assert.True(t, cfg.ShouldExtract())
}

func TestLoadConfigsFromYAMLFile(t *testing.T) {
	clearPreloadEnv(t)
	cwd := t.TempDir()
	writeConfig(t, cwd, "localepack-config.yml", `
es_module: false
mode: development
cache_dir: build/.locales
output_path: static/i18n
preload: zh-CN
optimize: true
`)

	cfg, err := LoadConfigs(newCommand(), cwd)
	require.NoError(t, err)

	assert.False(t, cfg.EsModule)
	assert.Equal(t, loader.ModeDevelopment, cfg.Mode)
	assert.Equal(t, "build/.locales", cfg.TmpDir)
	assert.Equal(t, "static/i18n", cfg.OutputDir)
	assert.Equal(t, "zh-CN", cfg.Preload)
	assert.True(t, cfg.Optimize)
	assert.False(t, cfg.ShouldExtract())
}

func TestLoadConfigsNewKeysWinOverAliases(t *testing.T) {
	clearPreloadEnv(t)
	cwd := t.TempDir()
	writeConfig(t, cwd, "localepack-config.json", `{"tmp_dir": "a/.locales", "cache_dir": "b/.locales"}`)

	cfg, err := LoadConfigs(newCommand(), cwd)
	require.NoError(t, err)
	assert.Equal(t, "a/.locales", cfg.TmpDir)
}

func TestLoadConfigsFlagsOverrideFile(t *testing.T) {
	clearPreloadEnv(t)
	cwd := t.TempDir()
	writeConfig(t, cwd, "localepack-config.yaml", "mode: development\nextract: \"false\"\n")

	cmd := newCommand()
	require.NoError(t, cmd.PersistentFlags().Set("extract", "true"))
	require.NoError(t, cmd.PersistentFlags().Set("tmp_dir", "web/.locales"))

	cfg, err := LoadConfigs(cmd, cwd)
	require.NoError(t, err)
	assert.Equal(t, loader.ModeDevelopment, cfg.Mode)
	assert.Equal(t, ExtractOn, cfg.Extract)
	assert.Equal(t, "web/.locales", cfg.TmpDir)
	assert.True(t, cfg.ShouldExtract())
}

func TestLoadConfigsEnvOverridesFile(t *testing.T) {
	clearPreloadEnv(t)
	t.Setenv("LOCALEPACK_MODE", "development")
	cwd := t.TempDir()
	writeConfig(t, cwd, "localepack-config.yml", "mode: production\n")

	cfg, err := LoadConfigs(newCommand(), cwd)
	require.NoError(t, err)
	assert.Equal(t, loader.ModeDevelopment, cfg.Mode)
}

func TestLoadConfigsExplicitFile(t *testing.T) {
	clearPreloadEnv(t)
	cwd := t.TempDir()
	writeConfig(t, cwd, "custom.json", `{"theme": "github"}`)

	cmd := newCommand()
	require.NoError(t, cmd.PersistentFlags().Set("config", "custom.json"))
	cfg, err := LoadConfigs(cmd, cwd)
	require.NoError(t, err)
	assert.Equal(t, "github", cfg.Theme)

	require.NoError(t, cmd.PersistentFlags().Set("config", "custom.toml"))
	_, err = LoadConfigs(cmd, cwd)
	assert.ErrorIs(t, err, ErrUnsupportedFile)

	require.NoError(t, cmd.PersistentFlags().Set("config", "missing.yml"))
	_, err = LoadConfigs(cmd, cwd)
	assert.Error(t, err)
}

func TestLoadConfigsPreloadFromEnvironment(t *testing.T) {
	clearPreloadEnv(t)
	cwd := t.TempDir()
	writeConfig(t, cwd, ".env", "VUE_APP_DEFAULT_LOCALE=en-US\n")

	cfg, err := LoadConfigs(newCommand(), cwd)
	require.NoError(t, err)
	assert.Equal(t, "en-US", cfg.Preload)

	t.Setenv("REACT_APP_FALLBACK_LOCALE", "ja")
	cfg, err = LoadConfigs(newCommand(), cwd)
	require.NoError(t, err)
	assert.Equal(t, "ja", cfg.Preload)
}

func TestLoadConfigsValidation(t *testing.T) {
	clearPreloadEnv(t)

	tests := []struct {
		name    string
		content string
		err     error
	}{
		{name: "mode", content: "mode: staging\n", err: ErrInvalidMode},
		{name: "extract", content: "extract: sometimes\n", err: ErrInvalidExtract},
		{name: "preload", content: "preload: \"not a locale!\"\n"},
		{name: "log level", content: "log_level: loud\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cwd := t.TempDir()
			writeConfig(t, cwd, "localepack-config.yml", tt.content)
			_, err := LoadConfigs(newCommand(), cwd)
			require.Error(t, err)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}

func TestOptionsMapping(t *testing.T) {
	cfg := &Config{
		EsModule:     false,
		Extract:      ExtractAuto,
		Mode:         loader.ModeProduction,
		TmpDir:       "src/.locales",
		OutputDir:    "i18n",
		Preload:      "de",
		PreloadEager: true,
		Optimize:     true,
		ModuleRoot:   "vendor",
		LogLevel:     "debug",
	}

	eo := cfg.ExtractorOptions("/project", nil)
	assert.Equal(t, "/project", eo.Cwd)
	assert.Equal(t, "i18n", eo.OutputDir)
	assert.Equal(t, "de", eo.Preload)
	assert.True(t, eo.PreloadEager)
	assert.True(t, eo.Optimize)
	assert.False(t, eo.EsModule)

	lo := cfg.LoaderOptions("/project", nil)
	assert.True(t, lo.Extract)
	assert.Equal(t, "vendor", lo.ModuleRoot)
	assert.Equal(t, loader.ModeProduction, lo.Mode)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", level.String())
}

func TestGetConfigFileType(t *testing.T) {
	assert.Equal(t, "json", GetConfigFileType("a.json"))
	assert.Equal(t, "yaml", GetConfigFileType("a.yml"))
	assert.Equal(t, "yaml", GetConfigFileType("a.yaml"))
	assert.Equal(t, "", GetConfigFileType("a.toml"))
}
