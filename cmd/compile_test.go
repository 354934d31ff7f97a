package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/meysamhadeli/localepack/config"
	"github.com/meysamhadeli/localepack/esbuildplugin"
	"github.com/meysamhadeli/localepack/extractor"
	"github.com/meysamhadeli/localepack/watch"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func newTestDependencies(t *testing.T, cwd string, flags map[string]string) *RootDependencies {
	t.Helper()
	for _, key := range extractor.PreloadEnv {
		t.Setenv(key, "")
	}
	cmd := &cobra.Command{Use: "localepack"}
	config.InitFlags(cmd)
	for name, value := range flags {
		require.NoError(t, cmd.PersistentFlags().Set(name, value))
	}
	deps, err := newRootDependencies(cmd, cwd)
	require.NoError(t, err)
	return deps
}

func TestCompileCommandInline(t *testing.T) {
	cwd := t.TempDir()
	writeFiles(t, cwd, map[string]string{
		"src/i18n/common.yml": "en:\n  ok: OK\n",
		"src/i18n/app.yml":    "#include \"./common\"\nen:\n  title: Title\n",
	})
	deps := newTestDependencies(t, cwd, map[string]string{"mode": "development"})
	require.False(t, deps.Config.ShouldExtract())

	err := handleCompileCommand(context.Background(), deps, nil, compileOptions{OutDir: "out"})
	require.NoError(t, err)

	code, err := os.ReadFile(filepath.Join(cwd, "out", "src", "i18n", "app.yml.js"))
	require.NoError(t, err)
	assert.Equal(t, "/** ./src/i18n/app.yml **/\nexport default {\"en\":{\"ok\":\"OK\",\"title\":\"Title\"}}\n", string(code))
	assert.FileExists(t, filepath.Join(cwd, "out", "src", "i18n", "common.yml.js"))
	assert.NoDirExists(t, filepath.Join(cwd, "src", ".locales"))
}

func TestCompileCommandExtract(t *testing.T) {
	cwd := t.TempDir()
	writeFiles(t, cwd, map[string]string{
		"src/i18n/app.yml": "en:\n  title: Title\nzh:\n  title: 标题\n",
	})
	deps := newTestDependencies(t, cwd, map[string]string{"tmp_dir": ".locales"})
	require.True(t, deps.Config.ShouldExtract())

	err := handleCompileCommand(context.Background(), deps, []string{"src/i18n/app.yml"}, compileOptions{OutDir: "out"})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(cwd, ".locales", extractor.RuntimeFileName))
	assert.FileExists(t, filepath.Join(cwd, ".locales", "en.json"))
	assert.FileExists(t, filepath.Join(cwd, ".locales", "zh.json"))

	code, err := os.ReadFile(filepath.Join(cwd, "out", "src", "i18n", "app.yml.js"))
	require.NoError(t, err)
	assert.Contains(t, string(code), "(extracted)")
	assert.Contains(t, string(code), "asyncLoader")
}

func TestCompileCommandReportsFailures(t *testing.T) {
	cwd := t.TempDir()
	writeFiles(t, cwd, map[string]string{
		"src/good.yml":   "en:\n  a: A\n",
		"src/broken.yml": "#include \"./missing\"\nen:\n  b: B\n",
	})
	deps := newTestDependencies(t, cwd, map[string]string{"mode": "development"})

	err := handleCompileCommand(context.Background(), deps, nil, compileOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")
}

func TestCompileCommandInvalidTmpDir(t *testing.T) {
	cwd := t.TempDir()
	writeFiles(t, cwd, map[string]string{"src/en.yml": "a: A\n"})
	deps := newTestDependencies(t, cwd, map[string]string{"tmp_dir": "src"})

	err := handleCompileCommand(context.Background(), deps, nil, compileOptions{})
	assert.ErrorIs(t, err, extractor.ErrInvalidTmpDir)
}

func TestPipelineRebuild(t *testing.T) {
	cwd := t.TempDir()
	writeFiles(t, cwd, map[string]string{
		"src/common.yml": "en:\n  ok: OK\n",
		"src/app.yml":    "#include \"./common\"\nen:\n  title: Title\n",
	})
	deps := newTestDependencies(t, cwd, map[string]string{"mode": "development"})
	p, err := newPipeline(deps, false)
	require.NoError(t, err)
	defer p.close()

	ctx := context.Background()
	app := filepath.Join(cwd, "src", "app.yml")
	common := filepath.Join(cwd, "src", "common.yml")

	graph := watch.NewDependencyGraph()
	results, err := p.compileAll(ctx, []string{app})
	require.NoError(t, err)
	require.Equal(t, 0, p.handleResults(results, graph, "out"))
	assert.Equal(t, []string{app}, graph.Affected(common))

	writeFiles(t, cwd, map[string]string{"src/common.yml": "en:\n  ok: Okay\n"})
	require.NoError(t, p.rebuild(ctx, graph, watch.Batch{Modules: graph.Affected(common)}, "out"))

	code, err := os.ReadFile(filepath.Join(cwd, "out", "src", "app.yml.js"))
	require.NoError(t, err)
	assert.Contains(t, string(code), `"ok":"Okay"`)

	require.NoError(t, os.Remove(app))
	require.NoError(t, p.rebuild(ctx, graph, watch.Batch{Removed: []string{app}}, "out"))
	assert.False(t, graph.IsModule(app))
	assert.Empty(t, graph.Affected(common))
}

func TestBuildOptionsRegistersPlugin(t *testing.T) {
	cwd := t.TempDir()
	deps := newTestDependencies(t, cwd, map[string]string{"mode": "development", "output_dir": "./i18n/"})
	p, err := newPipeline(deps, false)
	require.NoError(t, err)
	defer p.close()

	opts := p.buildOptions(context.Background(), []string{"src/index.js"}, bundleOptions{OutDir: "dist"})

	require.Len(t, opts.Plugins, 1)
	assert.Equal(t, esbuildplugin.Name, opts.Plugins[0].Name)
	assert.Equal(t, filepath.Join(cwd, "dist"), opts.Outdir)
	assert.True(t, opts.Splitting)
	assert.Equal(t, "i18n/[name]-[hash]", opts.ChunkNames)
}

func TestChunkNames(t *testing.T) {
	assert.Equal(t, "locales/[name]-[hash]", chunkNames("locales"))
	assert.Equal(t, "static/locales/[name]-[hash]", chunkNames("./static/locales/"))
	assert.Equal(t, "[name]-[hash]", chunkNames(""))
}

func TestCleanCommand(t *testing.T) {
	cwd := t.TempDir()
	writeFiles(t, cwd, map[string]string{
		".locales/en.json": "{}",
		".locales/zh.json": "{}",
	})
	writeFiles(t, cwd, map[string]string{".locales/" + extractor.RuntimeFileName: "export default null\n"})
	deps := newTestDependencies(t, cwd, map[string]string{"tmp_dir": ".locales"})
	tmpDir := filepath.Join(cwd, ".locales")

	stats, err := readStagingStats(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Chunks)
	assert.True(t, stats.Runtime)

	require.NoError(t, handleCleanCommand(deps, false, true, strings.NewReader("")))
	assert.DirExists(t, tmpDir)

	require.NoError(t, handleCleanCommand(deps, false, false, strings.NewReader("n\n")))
	assert.DirExists(t, tmpDir)

	require.NoError(t, handleCleanCommand(deps, false, false, strings.NewReader("y\n")))
	assert.NoDirExists(t, tmpDir)

	// Nothing left to remove
	require.NoError(t, handleCleanCommand(deps, true, false, strings.NewReader("")))
}

func TestCleanCommandRejectsOutsideProject(t *testing.T) {
	cwd := t.TempDir()
	deps := newTestDependencies(t, cwd, map[string]string{"tmp_dir": "../elsewhere"})

	err := handleCleanCommand(deps, true, false, strings.NewReader(""))
	assert.ErrorIs(t, err, extractor.ErrInvalidTmpDir)
}
