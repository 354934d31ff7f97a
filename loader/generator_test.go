package loader

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReactLocale_EsModule(t *testing.T) {
	code, err := ReactLocale{}.ModuleCode(GeneratorOptions{
		EsModule:     true,
		ResourcePath: "./src/en.yml",
		Module:       "./en.yml?locale-data",
	})
	require.NoError(t, err)

	assert.Contains(t, code, "/** ./src/en.yml **/\n")
	assert.Contains(t, code, `import definitions from "./en.yml?locale-data"`)
	assert.Contains(t, code, `export { setLocale, getLocale, utils, plugins, subscribe } from "@ices/react-locale"`)
	assert.Contains(t, code, "export { definitions, useLocale as default }")
}

func TestReactLocale_CommonJS(t *testing.T) {
	code, err := ReactLocale{Runtime: "my-locale"}.ModuleCode(GeneratorOptions{
		ResourcePath: "./src/en.yml",
		Module:       "./en.yml?locale-data",
	})
	require.NoError(t, err)

	assert.Contains(t, code, `const definitions = require("./en.yml?locale-data")`)
	assert.Contains(t, code, `const runtime = require("my-locale")`)
	assert.Contains(t, code, "Object.assign(module.exports = exports = useLocale, {")
}

func TestReactLocale_MissingModule(t *testing.T) {
	_, err := ReactLocale{}.ModuleCode(GeneratorOptions{ResourcePath: "./src/en.yml"})
	assert.Error(t, err)
}

func TestComponentModule(t *testing.T) {
	cwd := t.TempDir()
	var got GeneratorOptions
	l := newLoader(t, cwd, func(o *Options) {
		o.Mode = ModeDevelopment
		o.Generator = GeneratorFunc(func(opts GeneratorOptions) (string, error) {
			got = opts
			return "export default 1", nil
		})
	})

	code, err := l.ComponentModule(filepath.Join(cwd, "src", "en.yml"), "./en.yml?locale-data")
	require.NoError(t, err)
	assert.Equal(t, "export default 1", code)
	assert.Equal(t, GeneratorOptions{
		EsModule:     true,
		RootContext:  cwd,
		ResourcePath: "./src/en.yml",
		Module:       "./en.yml?locale-data",
		Hot:          true,
	}, got)
}
