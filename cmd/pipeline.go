package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/meysamhadeli/localepack/constants/lipgloss"
	"github.com/meysamhadeli/localepack/extractor"
	"github.com/meysamhadeli/localepack/loader"
	"github.com/meysamhadeli/localepack/models"
	"github.com/meysamhadeli/localepack/utils"
	"golang.org/x/sync/errgroup"
)

// pipeline is one configured loader, with its extractor when extracting.
type pipeline struct {
	deps   *RootDependencies
	loader *loader.Loader
	engine *extractor.Engine
}

// compiled is the outcome of one module compilation.
type compiled struct {
	Path   string
	Module *loader.Module
	Err    error
}

// newPipeline wires the extractor and the loader from the configuration. With
// verify set, every generated module is parsed before it is accepted.
func newPipeline(deps *RootDependencies, verify bool) (*pipeline, error) {
	cfg := deps.Config
	p := &pipeline{deps: deps}

	opts := cfg.LoaderOptions(deps.Cwd, deps.Logger)
	if opts.Extract {
		engine, err := extractor.New(cfg.ExtractorOptions(deps.Cwd, deps.Logger))
		if err != nil {
			return nil, err
		}
		p.engine = engine
		opts.Extractor = engine
	}
	opts.Generator = loader.ReactLocale{}
	opts.Cache = deps.Cache
	if verify {
		opts.Verifier = deps.Analyzer
	}

	l, err := loader.New(opts)
	if err != nil {
		if p.engine != nil {
			p.engine.Close()
		}
		return nil, err
	}
	p.loader = l
	return p, nil
}

// start resets the locale store for a fresh build.
func (p *pipeline) start() error {
	if p.engine == nil {
		return nil
	}
	return p.engine.Initialize()
}

func (p *pipeline) close() {
	if p.engine != nil {
		p.engine.Close()
	}
}

// compileAll compiles paths concurrently. A failing module does not stop the
// others; only a done context does.
func (p *pipeline) compileAll(ctx context.Context, paths []string) ([]compiled, error) {
	results := make([]compiled, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, path := range paths {
		g.Go(func() error {
			module, err := p.loader.Compile(gctx, path)
			results[i] = compiled{Path: path, Module: module, Err: err}
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// writeModule stores the code of a compiled module below outDir, mirroring its
// path relative to the project.
func (p *pipeline) writeModule(outDir string, result compiled) (string, error) {
	rel := utils.NormalizePath(result.Path, p.deps.Cwd)
	rel = strings.TrimPrefix(rel, "./")
	if strings.HasPrefix(rel, "../") || filepath.IsAbs(rel) {
		rel = filepath.Base(result.Path)
	}
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(p.deps.Cwd, outDir)
	}
	target := filepath.Join(outDir, filepath.FromSlash(rel)+".js")
	if err := utils.WriteFile(target, []byte(result.Module.Code)); err != nil {
		return "", err
	}
	return target, nil
}

// report prints the warnings and the error of a compilation. It returns
// whether the module compiled.
func (p *pipeline) report(result compiled) bool {
	rel := utils.NormalizePath(result.Path, p.deps.Cwd)
	if result.Module != nil {
		printWarnings(result.Module.Warnings)
	}
	if result.Err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("✗ %s: %v", rel, result.Err)))
		return false
	}
	detail := "inline"
	if result.Module.Extracted {
		detail = "namespace " + result.Module.Namespace
	}
	fmt.Println(lipgloss.Green.Render("✓ "+rel) + " " + lipgloss.Info.Render(detail))
	return true
}

func printWarnings(warnings []models.Warning) {
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, lipgloss.Yellow.Render(fmt.Sprintf("⚠ (%s) %s", w.Source, w.Message)))
	}
}
