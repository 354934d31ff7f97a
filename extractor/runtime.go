package extractor

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/meysamhadeli/localepack/utils"
)

// RuntimeFileName is the loader module generated into the staging directory.
const RuntimeFileName = "runtime.js"

var runtimeTemplate = template.Must(template.New("runtime").Parse(`/**
 * This file is generated by tools.
 * Please do not modify the contents of this file anyway.
 */

/* eslint-disable */
// @ts-nocheck

const storage = {
  namespaces: {},
  locales: {}
}

// webpack marks a missing chunk with a code, esbuild only with the message.
const isNotFound = (err) =>
  !!err && (err.code === 'MODULE_NOT_FOUND' || /^Module not found/.test(err.message))

// load may throw synchronously, esbuild does so for a glob miss.
const formatRes = (load, locale) =>
  new Promise((resolve) => resolve(load()))
    .then((res) => (res && typeof res === 'object' && (res.__esModule || 'default' in res) ? res.default : res))
    .then((res) => (!res || typeof res !== 'object' ? {} : res))
    .catch((err) => {
      delete storage.locales[locale]
      if (isNotFound(err)) {
        if (process.env.NODE_ENV === 'development') {
          console.error(` + "`Language module not found: ${locale}`" + `)
        }
        return {}
      }
      throw err
    })
{{- if .Preload}}

;(async () => {
  const promise = formatRes(
    () => import(
      /* webpackChunkName: {{.PreloadChunk}} */
      /* webpackMode: "{{.PreloadMode}}" */
      /* webpackPreload: true */
      {{.PreloadRequest}}
    ), {{.PreloadLocale}}
  )
  storage.locales[{{.PreloadLocale}}] = promise
  storage.locales[{{.PreloadLocale}}] = await promise
})()
{{- end}}

const fetchLocale = async (locale) => {
  const promise = formatRes(
    () => import(
      /* webpackInclude: /{{.Exclude}}\.json$/ */
      /* webpackChunkName: {{.Chunk}} */
      /* webpackMode: "lazy" */
      ` + "`{{.Prefix}}${locale}.json`" + `
    ), locale
  )
  storage.locales[locale] = promise
  storage.locales[locale] = await promise
}

const assemble = (namespace) => {
  const namespaceData = storage.namespaces[namespace] || {}
  for (const [locale, data] of Object.entries(storage.locales)) {
    if (data instanceof Promise) {
      continue
    }
    if (!namespaceData[locale]) {
{{- if .Optimize}}
      const dataSet = data[namespace] || {}
      const decoded = {}
      for (const [key, val] of Object.entries(dataSet)) {
        decoded[data.k[key]] = data.v[val]
      }
      namespaceData[locale] = decoded
{{- else}}
      namespaceData[locale] = data[namespace] || {}
{{- end}}
    }
  }
  storage.namespaces[namespace] = namespaceData
  return { ...namespaceData }
}

const asyncLoader = (namespace) => async (locale) => {
  const namespaceData = storage.namespaces[namespace]
  if (namespaceData && namespaceData[locale]) {
    return namespaceData
  }
  let localeData = storage.locales[locale]
  if (!localeData) {
    localeData = fetchLocale(locale)
  }
  if (localeData instanceof Promise) {
    await localeData
  }
  return assemble(namespace)
}

{{.Export}}asyncLoader
`))

type runtimeParams struct {
	Preload        bool
	PreloadLocale  string
	PreloadChunk   string
	PreloadMode    string
	PreloadRequest string
	Exclude        string
	Chunk          string
	Prefix         string
	Optimize       bool
	Export         string
}

var chunkEdges = regexp.MustCompile(`^\.?/+|/+$`)

// chunkName turns outputDir into the chunk name prefix, "locales/" by default.
func chunkName(outputDir string) string {
	name := chunkEdges.ReplaceAllString(strings.ReplaceAll(outputDir, "\\", "/"), "")
	return name + "/"
}

// renderRuntime builds the loader module source for the engine options.
func renderRuntime(opts Options, tmpDir, preloadLocale string) (string, error) {
	chunk := chunkName(opts.OutputDir)
	prefix := strings.TrimRight(utils.NormalizePath(tmpDir, filepath.Dir(filepath.Join(tmpDir, RuntimeFileName))), "/") + "/"

	params := runtimeParams{
		Chunk:    quote(chunk),
		Prefix:   prefix,
		Optimize: opts.Optimize,
		Export:   "module.exports = ",
	}
	if opts.EsModule {
		params.Export = "export default "
	}
	if preloadLocale != "" {
		params.Preload = true
		params.PreloadLocale = quote(preloadLocale)
		params.PreloadChunk = quote(chunk + "p")
		params.PreloadRequest = quote(prefix + preloadLocale + ".json")
		params.PreloadMode = "lazy"
		if opts.PreloadEager {
			params.PreloadMode = "eager"
		}
		params.Exclude = "(?<!" + utils.EscapeRegExp(preloadLocale) + ")"
	}

	var buf bytes.Buffer
	if err := runtimeTemplate.Execute(&buf, params); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
