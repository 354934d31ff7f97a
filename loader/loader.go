package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/meysamhadeli/localepack/extractor/contracts"
	"github.com/meysamhadeli/localepack/include"
	"github.com/meysamhadeli/localepack/merge"
	"github.com/meysamhadeli/localepack/models"
	"github.com/meysamhadeli/localepack/resource"
	"github.com/meysamhadeli/localepack/utils"
)

// Loader compiles locale sources. It is safe for concurrent use; each call
// works on its own resolution pass and the extractor serializes the store.
type Loader struct {
	opts      Options
	cwd       string
	resolver  *include.Resolver
	parser    *resource.Parser
	extractor contracts.IExtractor
	logger    *slog.Logger

	mu         sync.Mutex
	namespaces map[string]string
}

// New validates the options and creates a loader. A missing generator, or an
// enabled extraction without extractor, is a configuration error.
func New(opts Options) (*Loader, error) {
	if opts.Generator == nil {
		return nil, ErrMissingGenerator
	}
	if opts.Extract && opts.Extractor == nil {
		return nil, ErrMissingExtractor
	}

	cwd := opts.Cwd
	if cwd == "" {
		var err error
		if cwd, err = utils.RealCwd(); err != nil {
			return nil, fmt.Errorf("loader: failed to get working directory: %w", err)
		}
	}
	if opts.Mode == "" {
		opts.Mode = ModeProduction
	}

	resolver, err := include.NewResolver(include.Options{
		Cwd:        cwd,
		ModuleRoot: opts.ModuleRoot,
		FS:         opts.FS,
	})
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	l := &Loader{
		opts:       opts,
		cwd:        cwd,
		resolver:   resolver,
		parser:     resource.NewParser(cwd),
		logger:     logger,
		namespaces: make(map[string]string),
	}
	if opts.Extract {
		l.extractor = opts.Extractor
	}
	return l, nil
}

// Extracting reports whether modules load their data from locale chunks.
func (l *Loader) Extracting() bool { return l.extractor != nil }

// Extractor returns the extractor modules are extracted to, nil for inline builds.
func (l *Loader) Extractor() contracts.IExtractor { return l.extractor }

// Cwd returns the project directory.
func (l *Loader) Cwd() string { return l.cwd }

// ResolveIncludes expands the includes of the entry file.
func (l *Loader) ResolveIncludes(ctx context.Context, path string) *include.Result {
	return l.resolver.Resolve(ctx, l.abs(path))
}

// GenerateModule parses and merges files, in order, and emits the module code
// for resourcePath. The returned module is never nil; on error it still carries
// the dependencies and warnings.
func (l *Loader) GenerateModule(ctx context.Context, files []models.SourceFile, resourcePath string) (*Module, error) {
	resourcePath = l.abs(resourcePath)
	module := &Module{Export: ExportValue{Kind: ExportNamed}}
	if l.opts.EsModule {
		module.Export.Kind = ExportDefault
	}
	for _, file := range files {
		module.Dependencies = append(module.Dependencies, file.Path)
	}
	if len(module.Dependencies) == 0 {
		module.Dependencies = []string{resourcePath}
	}

	fragments := make([]models.Fragment, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return module, err
		}
		result := l.parse(file)
		module.Warnings = append(module.Warnings, result.Warnings...)
		fragments = append(fragments, result.Fragment())
	}
	module.Export.Value = merge.Merge(fragments)

	header := utils.NormalizePath(resourcePath, l.cwd)
	if l.extractor != nil {
		namespace, code, err := l.extract(ctx, module.Export.Value, resourcePath)
		if err != nil {
			return module, err
		}
		module.Namespace = namespace
		module.Extracted = true
		module.Code = fmt.Sprintf("/** %s (extracted) **/\n%s", header, code)
	} else {
		data, err := encodeData(module.Export.Value)
		if err != nil {
			return module, fmt.Errorf("loader: encode %s: %w", header, err)
		}
		module.Code = fmt.Sprintf("/** %s **/\n%s%s\n", header, module.Export.Statement(), data)
	}

	if l.opts.Verifier != nil {
		if err := l.opts.Verifier.VerifyModule(ctx, []byte(module.Code)); err != nil {
			return module, fmt.Errorf("%w: %s: %v", ErrInvalidModule, header, err)
		}
	}

	l.logger.Debug("module generated",
		"path", header,
		"files", len(files),
		"locales", len(module.Export.Value),
		"extracted", module.Extracted,
		"namespace", module.Namespace)
	return module, nil
}

// Compile resolves the includes of path and generates its module.
func (l *Loader) Compile(ctx context.Context, path string) (*Module, error) {
	path = l.abs(path)
	resolved := l.ResolveIncludes(ctx, path)
	if resolved.Err != nil {
		return &Module{
			Dependencies: resolved.Paths(),
			Warnings:     resolved.Warnings,
		}, resolved.Err
	}

	module, err := l.GenerateModule(ctx, resolved.Files, path)
	module.Warnings = append(append([]models.Warning(nil), resolved.Warnings...), module.Warnings...)
	return module, err
}

// ComponentModule generates the component module of resourcePath, importing
// its data through request.
func (l *Loader) ComponentModule(resourcePath, request string) (string, error) {
	return l.opts.Generator.ModuleCode(GeneratorOptions{
		EsModule:     l.opts.EsModule,
		RootContext:  l.cwd,
		ResourcePath: utils.NormalizePath(l.abs(resourcePath), l.cwd),
		Module:       request,
		Hot:          l.opts.Mode == ModeDevelopment,
	})
}

// Forget drops the namespace of a module that no longer exists.
func (l *Loader) Forget(ctx context.Context, path string) error {
	if l.extractor == nil {
		return nil
	}
	path = l.abs(path)
	l.mu.Lock()
	namespace, ok := l.namespaces[path]
	delete(l.namespaces, path)
	shared := ok && l.namespaceUsed(namespace)
	l.mu.Unlock()
	if !ok || shared {
		return nil
	}
	return l.extractor.Forget(ctx, namespace)
}

// extract moves data into the locale chunks. A module whose namespace changed
// releases the old one unless another module still shares it.
func (l *Loader) extract(ctx context.Context, data models.LocaleDataSet, resourcePath string) (string, string, error) {
	source := resourcePath
	if l.opts.Mode != ModeDevelopment {
		content, err := json.Marshal(data)
		if err != nil {
			return "", "", fmt.Errorf("loader: hash %s: %w", resourcePath, err)
		}
		source = string(content)
	}
	namespace := l.extractor.Namespace(source)

	code, err := l.extractor.Extract(ctx, data, namespace)
	if err != nil {
		return "", "", err
	}

	l.mu.Lock()
	previous, ok := l.namespaces[resourcePath]
	l.namespaces[resourcePath] = namespace
	stale := ok && previous != namespace && !l.namespaceUsed(previous)
	l.mu.Unlock()

	if stale {
		if err := l.extractor.Forget(ctx, previous); err != nil {
			return "", "", err
		}
	}
	return namespace, code, nil
}

// namespaceUsed must be called with l.mu held.
func (l *Loader) namespaceUsed(namespace string) bool {
	for _, ns := range l.namespaces {
		if ns == namespace {
			return true
		}
	}
	return false
}

func (l *Loader) parse(file models.SourceFile) *resource.Result {
	source := []byte(file.Source)
	if l.opts.Cache != nil {
		if result, found := l.opts.Cache.GetResourceCache(file.Path, source); found {
			return result
		}
	}
	result := l.parser.Parse(source, file.Path)
	if l.opts.Cache != nil {
		l.opts.Cache.SetResourceCache(file.Path, source, result)
	}
	return result
}

func (l *Loader) abs(path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.cwd, path)
	}
	return filepath.Clean(path)
}

// encodeData renders a data set as a JSON literal with sorted keys.
func encodeData(data models.LocaleDataSet) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
