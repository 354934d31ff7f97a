package esbuildplugin

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/meysamhadeli/localepack/extractor"
	"github.com/meysamhadeli/localepack/loader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loadScript prints the messages of app.yml for en, then requests fr twice at
// once and finally zh.
const loadScript = `import load from './app.yml?locale-data'

const show = (label, value) => console.log(label + ' ' + JSON.stringify(value))

const run = async () => {
  const en = await load('en')
  show('en', en.en)
  const [first, second] = await Promise.all([load('fr'), load('fr')])
  show('fr', [first.fr, second.fr])
  const zh = await load('zh')
  show('zh', zh.zh)
}

run().catch((err) => console.log('rejected ' + err.message))
`

func newTestEngine(t *testing.T, cwd string, mutate func(*extractor.Options)) *extractor.Engine {
	t.Helper()
	opts := extractor.Options{Cwd: cwd, TmpDir: ".locales", OutputDir: "locales", EsModule: true}
	if mutate != nil {
		mutate(&opts)
	}
	engine, err := extractor.New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })
	return engine
}

// runBundle bundles src/index.js with the locale data extracted to engine,
// runs the bundle with node and returns what it printed.
func runBundle(t *testing.T, cwd string, engine *extractor.Engine) (stdout, stderr string) {
	t.Helper()
	node, err := exec.LookPath("node")
	if err != nil {
		t.Skip("node is not installed")
	}

	l := newLoader(t, cwd, func(o *loader.Options) {
		o.Extract = true
		o.Extractor = engine
	})
	outfile := filepath.Join(cwd, "out", "bundle.mjs")
	opts := api.BuildOptions{
		EntryPoints:   []string{filepath.Join(cwd, "src", "index.js")},
		AbsWorkingDir: cwd,
		Bundle:        true,
		Write:         false,
		Format:        api.FormatESModule,
		Outfile:       outfile,
		Define:        map[string]string{"process.env.NODE_ENV": `"development"`},
		LogLevel:      api.LogLevelSilent,
	}
	Register(&opts, New(l))
	result := api.Build(opts)
	require.Empty(t, result.Errors)
	require.Len(t, result.OutputFiles, 1)
	require.NoError(t, os.MkdirAll(filepath.Dir(outfile), 0755))
	require.NoError(t, os.WriteFile(outfile, result.OutputFiles[0].Contents, 0644))

	var out, errOut bytes.Buffer
	cmd := exec.Command(node, outfile)
	cmd.Dir = cwd
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	require.NoError(t, cmd.Run(), errOut.String())
	return out.String(), errOut.String()
}

func TestRuntime_LoadsExtractedLocales(t *testing.T) {
	cwd := t.TempDir()
	writeFiles(t, cwd, map[string]string{
		"src/index.js": loadScript,
		"src/app.yml":  "en:\n  hello: Hello\n  bye: Bye\nzh:\n  hello: 你好\n",
	})

	stdout, stderr := runBundle(t, cwd, newTestEngine(t, cwd, nil))

	assert.Equal(t, "en {\"bye\":\"Bye\",\"hello\":\"Hello\"}\nfr [{},{}]\nzh {\"hello\":\"你好\"}\n", stdout)
	// Concurrent requests for one locale share a single fetch
	assert.Equal(t, 1, strings.Count(stderr, "Language module not found: fr"))
}

func TestRuntime_DecodesOptimizedChunks(t *testing.T) {
	cwd := t.TempDir()
	writeFiles(t, cwd, map[string]string{
		"src/index.js": loadScript,
		"src/app.yml":  "en:\n  ok: OK\n  confirm: OK\n  count: 3\n  enabled: true\n  title: Title\n",
	})

	stdout, _ := runBundle(t, cwd, newTestEngine(t, cwd, func(o *extractor.Options) { o.Optimize = true }))

	raw, err := os.ReadFile(filepath.Join(cwd, ".locales", "en.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"k": [`)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3, stdout)
	assert.JSONEq(t, `{"ok":"OK","confirm":"OK","count":3,"enabled":true,"title":"Title"}`, strings.TrimPrefix(lines[0], "en "))
	assert.Equal(t, "fr [{},{}]", lines[1])
	assert.Equal(t, "zh {}", lines[2])

	// The runtime expansion agrees with Decode
	decoded, err := extractor.Decode(raw)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	for _, messages := range decoded {
		expected, err := json.Marshal(messages)
		require.NoError(t, err)
		assert.JSONEq(t, string(expected), strings.TrimPrefix(lines[0], "en "))
	}
}

func TestRuntime_Preload(t *testing.T) {
	cwd := t.TempDir()
	writeFiles(t, cwd, map[string]string{
		"src/index.js": loadScript,
		"src/app.yml":  "en:\n  hello: Hello\n",
	})

	engine := newTestEngine(t, cwd, func(o *extractor.Options) { o.Preload = "en" })
	stdout, stderr := runBundle(t, cwd, engine)

	assert.Equal(t, "en {\"hello\":\"Hello\"}\nfr [{},{}]\nzh {}\n", stdout)
	assert.NotContains(t, stderr, "Language module not found: en")
}
