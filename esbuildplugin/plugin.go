// Package esbuildplugin binds the locale loader to esbuild.
//
// Importing a .yml or .yaml file yields the component module produced by the
// loader's generator. That module imports "<file>?locale-data", which loads as
// the compiled locale data module, inline or extracted.
package esbuildplugin

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/meysamhadeli/localepack/loader"
	"github.com/meysamhadeli/localepack/models"
	"github.com/meysamhadeli/localepack/utils"
)

const (
	// Name is the plugin name reported by esbuild.
	Name = "localepack"
	// DataNamespace holds the compiled locale data modules.
	DataNamespace = "locale-data"
	// DataQuery marks an import of the data module of a locale source.
	DataQuery = "?" + DataNamespace
)

var (
	sourceFilter = `\.ya?ml$`
	dataFilter   = `\` + DataQuery + `$`
)

// New creates the plugin for l.
func New(l *loader.Loader) api.Plugin {
	return NewWithContext(context.Background(), l)
}

// NewWithContext creates the plugin for l. Module compilation stops once ctx is done.
func NewWithContext(ctx context.Context, l *loader.Loader) api.Plugin {
	return api.Plugin{
		Name: Name,
		Setup: func(build api.PluginBuild) {
			build.OnStart(func() (api.OnStartResult, error) {
				if ex := l.Extractor(); ex != nil {
					if err := ex.Initialize(); err != nil {
						return api.OnStartResult{Errors: []api.Message{{Text: err.Error()}}}, nil
					}
				}
				return api.OnStartResult{}, nil
			})

			build.OnLoad(api.OnLoadOptions{Filter: sourceFilter, Namespace: "file"},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					request := "./" + filepath.Base(args.Path) + DataQuery
					code, err := l.ComponentModule(args.Path, request)
					if err != nil {
						return api.OnLoadResult{Errors: []api.Message{{Text: err.Error()}}}, nil
					}
					return api.OnLoadResult{
						Contents:   &code,
						ResolveDir: filepath.Dir(args.Path),
						Loader:     api.LoaderJS,
					}, nil
				})

			build.OnResolve(api.OnResolveOptions{Filter: dataFilter},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					path := strings.TrimSuffix(args.Path, DataQuery)
					if !filepath.IsAbs(path) {
						path = filepath.Join(args.ResolveDir, path)
					}
					return api.OnResolveResult{Path: filepath.Clean(path), Namespace: DataNamespace}, nil
				})

			build.OnLoad(api.OnLoadOptions{Filter: `.*`, Namespace: DataNamespace},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					module, err := l.Compile(ctx, args.Path)
					result := api.OnLoadResult{
						ResolveDir: filepath.Dir(args.Path),
						Loader:     api.LoaderJS,
						Warnings:   messages(module.Warnings, l.Cwd()),
						WatchFiles: module.Dependencies,
					}
					if err != nil {
						result.Errors = []api.Message{{
							Text:     err.Error(),
							Location: &api.Location{File: utils.NormalizePath(args.Path, l.Cwd())},
						}}
						return result, nil
					}
					result.Contents = &module.Code
					return result, nil
				})
		},
	}
}

// messages converts warnings to esbuild messages located at their file.
func messages(warnings []models.Warning, cwd string) []api.Message {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]api.Message, 0, len(warnings))
	for _, w := range warnings {
		msg := api.Message{Text: fmt.Sprintf("(%s) %s", w.Source, w.Message)}
		if w.File != "" {
			msg.Location = &api.Location{File: utils.NormalizePath(w.File, cwd)}
		}
		out = append(out, msg)
	}
	return out
}
