package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/meysamhadeli/localepack/extractor/contracts"
	"github.com/meysamhadeli/localepack/models"
	"github.com/meysamhadeli/localepack/utils"
	"github.com/zeebo/xxh3"
)

// PreloadEnv are consulted, in order, for the default preload locale.
var PreloadEnv = []string{
	"REACT_APP_FALLBACK_LOCALE",
	"VUE_APP_FALLBACK_LOCALE",
	"REACT_APP_DEFAULT_LOCALE",
	"VUE_APP_DEFAULT_LOCALE",
}

// NamespaceLength is the number of hex digits of a module namespace.
const NamespaceLength = 6

// Options configures an Engine.
type Options struct {
	// Cwd anchors relative paths and the tmpdir checks. Defaults to the working directory.
	Cwd string
	// TmpDir receives the locale chunks and the runtime loader.
	TmpDir string
	// OutputDir is the chunk directory inside the build output.
	OutputDir string
	// Preload is the locale bundled eagerly with the runtime.
	Preload      string
	PreloadEager bool
	EsModule     bool
	Optimize     bool
	Logger       *slog.Logger
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	opts := Options{
		TmpDir:    "src/.locales",
		OutputDir: "locales",
		EsModule:  true,
	}
	for _, key := range PreloadEnv {
		if v := os.Getenv(key); v != "" {
			opts.Preload = v
			break
		}
	}
	return opts
}

// Stats counts the disk activity of an engine.
type Stats struct {
	Writes  int
	Skipped int
	Removes int
}

// Engine accumulates the locale data of every extracted module in one store and
// mirrors it to one JSON chunk per locale. All mutations are serialized and
// written through before they return.
type Engine struct {
	opts          Options
	cwd           string
	tmpDir        string
	runtimePath   string
	runtime       string
	preloadLocale string
	preloadFile   string
	namer         *Namer
	logger        *slog.Logger

	mu      sync.Mutex
	locales map[string]map[string]models.LocaleData
	digests map[string]uint64
	stats   Stats
	closed  bool
}

var _ contracts.IExtractor = (*Engine)(nil)

// New validates the options and writes the runtime loader. An unusable tmpdir or
// outputDir fails here, before any module is processed.
func New(opts Options) (*Engine, error) {
	cwd := opts.Cwd
	if cwd == "" {
		var err error
		if cwd, err = utils.RealCwd(); err != nil {
			return nil, fmt.Errorf("extractor: failed to get working directory: %w", err)
		}
	}
	if opts.TmpDir == "" {
		opts.TmpDir = "src/.locales"
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "locales"
	}

	tmpDir, err := ResolveTmpDir(opts.TmpDir, cwd)
	if err != nil {
		return nil, err
	}
	if err := checkOutputDir(opts.OutputDir); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	e := &Engine{
		opts:        opts,
		cwd:         cwd,
		tmpDir:      tmpDir,
		runtimePath: filepath.Join(tmpDir, RuntimeFileName),
		namer:       NewNamer(NamespaceLength),
		logger:      logger,
		locales:     make(map[string]map[string]models.LocaleData),
		digests:     make(map[string]uint64),
	}
	if preload, _, _ := utils.NormalizeLocale(opts.Preload); preload != "" {
		if err := utils.CheckLocale(preload); err != nil {
			logger.Warn("preload locale looks unusual", "locale", preload, "error", err)
		}
		e.preloadLocale = preload
		e.preloadFile = filepath.Join(tmpDir, preload+".json")
	}

	runtime, err := renderRuntime(opts, tmpDir, e.preloadLocale)
	if err != nil {
		return nil, fmt.Errorf("extractor: render runtime: %w", err)
	}
	if err := utils.WriteFile(e.runtimePath, []byte(runtime)); err != nil {
		return nil, fmt.Errorf("extractor: write runtime: %w", err)
	}
	e.runtime = runtime
	return e, nil
}

// RuntimePath returns the absolute path of the generated loader module.
func (e *Engine) RuntimePath() string { return e.runtimePath }

// RuntimeSource returns the generated loader module.
func (e *Engine) RuntimeSource() string { return e.runtime }

// TmpDir returns the absolute staging directory.
func (e *Engine) TmpDir() string { return e.tmpDir }

// PreloadLocale returns the canonical preload locale, if any.
func (e *Engine) PreloadLocale() string { return e.preloadLocale }

// Namespace returns the short namespace name bound to source.
func (e *Engine) Namespace(source string) string { return e.namer.Name(source) }

// Stats returns a snapshot of the disk activity counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Initialize starts a fresh build: the store is emptied and the preload chunk,
// if configured, is written as an empty object.
func (e *Engine) Initialize() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}

	e.locales = make(map[string]map[string]models.LocaleData)
	e.digests = make(map[string]uint64)
	e.stats = Stats{}
	if e.preloadFile != "" {
		return e.writeChunk(e.preloadFile, []byte("{}"))
	}
	return nil
}

// Extract stores data under namespace, rewrites the affected chunks and returns
// the module code loading the namespace through the runtime.
func (e *Engine) Extract(ctx context.Context, data models.LocaleDataSet, namespace string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return "", ErrClosed
	}

	present := make(map[string]bool, len(data))
	for locale, messages := range data {
		code, _, _ := utils.NormalizeLocale(locale)
		if code == "" {
			continue
		}
		present[code] = true
		store, ok := e.locales[code]
		if !ok {
			store = make(map[string]models.LocaleData)
			e.locales[code] = store
		}
		store[namespace] = maps.Clone(messages)
	}
	for code, store := range e.locales {
		if !present[code] {
			delete(store, namespace)
		}
	}

	if err := e.sync(ctx); err != nil {
		return "", err
	}
	return e.moduleCode(namespace), nil
}

// Forget removes namespace from every locale and rewrites the chunks.
func (e *Engine) Forget(ctx context.Context, namespace string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	for _, store := range e.locales {
		delete(store, namespace)
	}
	return e.sync(ctx)
}

// Flush writes every chunk whose content differs from the last write.
func (e *Engine) Flush(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	return e.sync(ctx)
}

// Close drops the store and the namespace names. The chunks stay on disk.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.locales = nil
	e.digests = nil
	e.namer.Reset()
	return nil
}

func (e *Engine) moduleCode(namespace string) string {
	runtime := quote(e.runtimePath)
	ns := quote(namespace)
	if e.opts.EsModule {
		return fmt.Sprintf("import asyncLoader from %s\nexport default asyncLoader(%s)\n", runtime, ns)
	}
	return fmt.Sprintf("const asyncLoader = require(%s)\nmodule.exports = asyncLoader(%s)\n", runtime, ns)
}

// sync mirrors the store to disk. Locales left without namespaces are dropped and
// their chunks removed, except the preload chunk which stays as an empty object.
// Any other .json file in the staging directory is stale and removed too.
func (e *Engine) sync(ctx context.Context) error {
	valid := make(map[string]bool, len(e.locales)+1)

	codes := make([]string, 0, len(e.locales))
	for code := range e.locales {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		if err := ctx.Err(); err != nil {
			return err
		}
		file := filepath.Join(e.tmpDir, code+".json")
		store := e.locales[code]
		if len(store) == 0 {
			delete(e.locales, code)
			delete(e.digests, file)
			continue
		}

		var chunk any = store
		if e.opts.Optimize {
			chunk = optimizeLocale(store)
		}
		content, err := encodeChunk(chunk)
		if err != nil {
			return fmt.Errorf("extractor: encode %s: %w", code, err)
		}
		valid[file] = true
		if err := e.writeChunk(file, content); err != nil {
			return err
		}
	}

	if e.preloadFile != "" && !valid[e.preloadFile] {
		valid[e.preloadFile] = true
		if err := e.writeChunk(e.preloadFile, []byte("{}")); err != nil {
			return err
		}
	}

	entries, err := os.ReadDir(e.tmpDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("extractor: read tmpdir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		file := filepath.Join(e.tmpDir, entry.Name())
		if valid[file] {
			continue
		}
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("extractor: remove %s: %w", entry.Name(), err)
		}
		delete(e.digests, file)
		e.stats.Removes++
		e.logger.Debug("locale chunk removed", "file", utils.NormalizePath(file, e.cwd))
	}
	return nil
}

// writeChunk skips the write when content hashes to the last written digest.
func (e *Engine) writeChunk(file string, content []byte) error {
	sum := xxh3.Hash(content)
	if prev, ok := e.digests[file]; ok && prev == sum {
		e.stats.Skipped++
		return nil
	}
	if err := utils.WriteFile(file, content); err != nil {
		return fmt.Errorf("extractor: write %s: %w", filepath.Base(file), err)
	}
	e.digests[file] = sum
	e.stats.Writes++
	e.logger.Debug("locale chunk written", "file", utils.NormalizePath(file, e.cwd), "bytes", len(content))
	return nil
}

// encodeChunk renders a chunk as indented JSON with object keys in sorted order.
func encodeChunk(chunk any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(chunk); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
