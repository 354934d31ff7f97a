package code_analyzer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func TestFindLocaleSources(t *testing.T) {
	cwd := t.TempDir()
	writeTree(t, cwd, map[string]string{
		"src/lang/en.yml":             "a: 1",
		"src/lang/fr.yaml":            "a: 2",
		"src/lang/readme.md":          "# docs",
		"src/.locales/runtime.yml":    "x: 1",
		"src/legacy/old.yml":          "x: 1",
		"src/node_modules/pkg/a.yml":  "x: 1",
		".localeignore":               "# legacy sources\nsrc/legacy/\n",
		"outside/not-scanned/de.yaml": "a: 3",
	})

	analyzer := NewSourceAnalyzer(cwd, nil)
	sources, err := analyzer.FindLocaleSources("src")
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(cwd, "src", "lang", "en.yml"),
		filepath.Join(cwd, "src", "lang", "fr.yaml"),
	}, sources)
}

func TestFindLocaleSources_MissingRoot(t *testing.T) {
	analyzer := NewSourceAnalyzer(t.TempDir(), nil)
	_, err := analyzer.FindLocaleSources("src")
	assert.Error(t, err)
}

func TestAnalyzeModule_EsModule(t *testing.T) {
	analyzer := NewSourceAnalyzer(t.TempDir(), nil)
	code := []byte(`import asyncLoader from "/tmp/.locales/runtime.js"
export default asyncLoader("a1b2c3")
`)

	report, err := analyzer.AnalyzeModule(context.Background(), code)
	require.NoError(t, err)

	assert.Equal(t, []string{"/tmp/.locales/runtime.js"}, report.Imports)
	assert.Equal(t, []string{"default"}, report.Exports)
	assert.True(t, report.HasDefaultExport())
	assert.False(t, report.ModuleExports)
	assert.Empty(t, report.Errors)
}

func TestAnalyzeModule_CommonJS(t *testing.T) {
	analyzer := NewSourceAnalyzer(t.TempDir(), nil)
	code := []byte(`const asyncLoader = require("./runtime.js")
module.exports = asyncLoader("a1b2c3")
`)

	report, err := analyzer.AnalyzeModule(context.Background(), code)
	require.NoError(t, err)

	assert.Equal(t, []string{"./runtime.js"}, report.Imports)
	assert.Empty(t, report.Exports)
	assert.True(t, report.ModuleExports)
}

func TestAnalyzeModule_NamedExports(t *testing.T) {
	analyzer := NewSourceAnalyzer(t.TempDir(), nil)
	code := []byte(`import definitions from "./en.yml?locale-data"
export const Translate = 1
export { definitions, Translate as default }
export { setLocale } from "@ices/react-locale"
`)

	report, err := analyzer.AnalyzeModule(context.Background(), code)
	require.NoError(t, err)

	assert.Equal(t, []string{"./en.yml?locale-data", "@ices/react-locale"}, report.Imports)
	assert.Equal(t, []string{"Translate", "definitions", "default", "setLocale"}, report.Exports)
	assert.True(t, report.HasDefaultExport())
}

func TestVerifyModule(t *testing.T) {
	cacheManager := NewCacheManager()
	analyzer := NewSourceAnalyzer(t.TempDir(), cacheManager)
	ctx := context.Background()

	assert.NoError(t, analyzer.VerifyModule(ctx, []byte(`export default {"en":{"a":"b"}}`)))

	err := analyzer.VerifyModule(ctx, []byte("export default {\"en\": \n"))
	require.ErrorIs(t, err, ErrSyntax)

	// Reports are cached by content
	_, err = analyzer.AnalyzeModule(ctx, []byte(`export default {"en":{"a":"b"}}`))
	require.NoError(t, err)
	assert.Equal(t, int64(1), cacheManager.GetPerformanceStats()["cache_hits"])
}
