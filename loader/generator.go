package loader

import (
	"fmt"
	"strings"
)

// DefaultComponentRuntime is the package providing the React bindings.
const DefaultComponentRuntime = "@ices/react-locale"

// GeneratorOptions describes the component module to generate.
type GeneratorOptions struct {
	EsModule bool
	// RootContext is the project directory.
	RootContext string
	// ResourcePath is the locale source relative to RootContext.
	ResourcePath string
	// Module is the import request of the locale data module.
	Module string
	// Hot is set for development builds with hot reloading.
	Hot bool
}

// ComponentGenerator produces the UI component module wrapping a locale data module.
type ComponentGenerator interface {
	ModuleCode(opts GeneratorOptions) (string, error)
}

// GeneratorFunc adapts a function to ComponentGenerator.
type GeneratorFunc func(opts GeneratorOptions) (string, error)

func (f GeneratorFunc) ModuleCode(opts GeneratorOptions) (string, error) { return f(opts) }

// ReactLocale generates modules exposing the hooks and components of a React
// locale runtime bound to the locale data.
type ReactLocale struct {
	// Runtime is the package imported for the bindings, DefaultComponentRuntime when empty.
	Runtime string
}

func (g ReactLocale) ModuleCode(opts GeneratorOptions) (string, error) {
	if opts.Module == "" {
		return "", fmt.Errorf("loader: missing locale data module for %s", opts.ResourcePath)
	}
	runtime := g.Runtime
	if runtime == "" {
		runtime = DefaultComponentRuntime
	}
	request := quote(opts.Module)
	rt := quote(runtime)

	var b strings.Builder
	if opts.EsModule {
		fmt.Fprintf(&b, "/** %s **/\n", opts.ResourcePath)
		fmt.Fprintf(&b, "import definitions from %s\n", request)
		fmt.Fprintf(&b, "import { withDefinitionsComponent, withDefinitionsHook } from %s\n", rt)
		fmt.Fprintf(&b, "export { setLocale, getLocale, utils, plugins, subscribe } from %s\n", rt)
		b.WriteString("export const Translate = withDefinitionsComponent(definitions)\n")
		b.WriteString("export const Trans = Translate\n")
		b.WriteString("export const useLocale = withDefinitionsHook(definitions)\n")
		b.WriteString("export { definitions, useLocale as default }\n")
		return b.String(), nil
	}

	fmt.Fprintf(&b, "/** %s **/\n", opts.ResourcePath)
	fmt.Fprintf(&b, "const definitions = require(%s)\n", request)
	fmt.Fprintf(&b, "const runtime = require(%s)\n", rt)
	b.WriteString("const { withDefinitionsComponent, withDefinitionsHook, setLocale, getLocale, utils, plugins, subscribe } = runtime\n")
	b.WriteString("const useLocale = withDefinitionsHook(definitions)\n")
	b.WriteString("const Translate = withDefinitionsComponent(definitions)\n")
	b.WriteString("const Trans = Translate\n")
	b.WriteString("Object.assign(module.exports = exports = useLocale, {\n")
	b.WriteString("  setLocale, getLocale, subscribe,\n")
	b.WriteString("  useLocale, Translate, Trans,\n")
	b.WriteString("  utils, plugins, definitions\n")
	b.WriteString("})\n")
	return b.String(), nil
}
