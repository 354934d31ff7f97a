package include

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/meysamhadeli/localepack/models"
	"github.com/meysamhadeli/localepack/utils"
)

// ResolveExtensions are probed, in order, for paths and index files.
var ResolveExtensions = []string{".yml", ".yaml"}

// Options configures a Resolver.
type Options struct {
	// Cwd is the directory paths are printed relative to. Defaults to the working directory.
	Cwd string
	// ModuleRoot is the root of <...> directives. Defaults to Cwd/node_modules.
	ModuleRoot string
	FS         FileSystem
}

// Resolver expands the includes of locale source files. It keeps no state between
// calls and may be used concurrently.
type Resolver struct {
	cwd        string
	moduleRoot string
	fs         FileSystem
}

// Result is the outcome of one resolution pass.
type Result struct {
	// Files lists the sources in merge order. On failure it holds every file
	// discovered before the error so callers can still watch them.
	Files    []models.SourceFile
	Warnings []models.Warning
	Err      error
}

// Paths returns the paths of the resolved files.
func (r *Result) Paths() []string {
	paths := make([]string, 0, len(r.Files))
	for _, f := range r.Files {
		paths = append(paths, f.Path)
	}
	return paths
}

// FileNode is one file met during a pass. Children refer to other nodes by path.
type FileNode struct {
	Path     string
	Context  string
	Exists   bool
	IsDir    bool
	Source   string
	Children []ChildRef
	Warnings []models.Warning
}

// ChildRef points at a node of the pass table. Cyclic marks a file that was
// already being resolved when the directive was met.
type ChildRef struct {
	Path   string
	Cyclic bool
}

// NewResolver creates a resolver.
func NewResolver(opts Options) (*Resolver, error) {
	cwd := opts.Cwd
	if cwd == "" {
		var err error
		if cwd, err = utils.RealCwd(); err != nil {
			return nil, fmt.Errorf("include: failed to get working directory: %w", err)
		}
	}
	moduleRoot := opts.ModuleRoot
	if moduleRoot == "" {
		moduleRoot = filepath.Join(cwd, "node_modules")
	} else if !filepath.IsAbs(moduleRoot) {
		moduleRoot = filepath.Join(cwd, moduleRoot)
	}
	fileSystem := opts.FS
	if fileSystem == nil {
		fileSystem = OSFileSystem{}
	}
	return &Resolver{cwd: cwd, moduleRoot: moduleRoot, fs: fileSystem}, nil
}

// Resolve expands the includes of entry.
func (r *Resolver) Resolve(ctx context.Context, entry string) *Result {
	if !filepath.IsAbs(entry) {
		entry = filepath.Join(r.cwd, entry)
	}
	p := &pass{
		Resolver: r,
		ctx:      ctx,
		nodes:    make(map[string]*FileNode),
		aliases:  make(map[string]string),
	}

	root, err := p.readFile(filepath.Clean(entry))
	if err != nil {
		return &Result{Err: err}
	}
	p.store(root)
	if !root.Exists || root.IsDir {
		return &Result{
			Files: p.sourceFiles([]string{root.Path}),
			Err:   fmt.Errorf("%w: %s", ErrEntryNotFound, utils.NormalizePath(root.Path, r.cwd)),
		}
	}

	refs, err := p.parse(root, nil)
	if err != nil {
		// Everything seen so far, entry first, so the caller can watch it
		return &Result{
			Files:    p.sourceFiles(p.serialize(p.tableRefs())),
			Warnings: p.warnings(),
			Err:      err,
		}
	}
	return &Result{
		Files:    p.sourceFiles(p.serialize(append(refs, ChildRef{Path: root.Path}))),
		Warnings: p.warnings(),
	}
}

// pass is the arena of one resolution: nodes keyed by canonical path in insertion order.
type pass struct {
	*Resolver
	ctx     context.Context
	nodes   map[string]*FileNode
	order   []string
	aliases map[string]string
}

func (p *pass) store(node *FileNode) {
	if _, ok := p.nodes[node.Path]; !ok {
		p.nodes[node.Path] = node
		p.order = append(p.order, node.Path)
	}
}

func (p *pass) lookup(includePath string) *FileNode {
	if canonical, ok := p.aliases[includePath]; ok {
		return p.nodes[canonical]
	}
	return p.nodes[includePath]
}

// parse resolves the directives of node depth first and returns the flattened
// list of files it depends on followed by node itself.
func (p *pass) parse(node, parent *FileNode) ([]ChildRef, error) {
	source := []rune(node.Source)
	directives := ParseDirectives(source)

	for _, d := range directives {
		var includePath string
		if d.ContextPath != "" {
			includePath = filepath.Join(node.Context, d.ContextPath)
		} else {
			includePath = filepath.Join(p.moduleRoot, d.ModulePath)
		}

		resolved := p.lookup(includePath)
		if resolved == nil {
			var err error
			if resolved, err = p.resolveFile(includePath); err != nil {
				return nil, err
			}
		}
		prev := p.nodes[resolved.Path]
		if prev != nil {
			resolved = prev
		}
		p.aliases[includePath] = resolved.Path
		p.store(resolved)

		if resolved.Path == node.Path {
			continue
		}
		if !resolved.Exists || resolved.IsDir {
			return nil, &IncludeError{
				Directive:  strings.TrimSpace(d.Text),
				File:       utils.NormalizePath(resolved.Path, p.cwd),
				IncludedBy: utils.NormalizePath(node.Path, p.cwd),
			}
		}
		if prev != nil {
			// Known already, possibly still being resolved higher up
			node.Children = append(node.Children, ChildRef{Path: resolved.Path, Cyclic: true})
			continue
		}

		refs, err := p.parse(resolved, node)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, refs...)
	}

	if suspects := SuspectDirectives(stripDirectives(source, directives)); len(suspects) > 0 {
		quoted := make([]string, 0, len(suspects))
		for _, s := range suspects {
			quoted = append(quoted, "["+s+"]")
		}
		node.Warnings = append(node.Warnings, models.Warning{
			Source:  models.SourceInclude,
			File:    node.Path,
			Message: fmt.Sprintf("Directive syntax error: %s\n%s", strings.Join(quoted, " "), p.printPath(node, parent)),
		})
	}

	seen := make(map[string]bool, len(node.Children)+1)
	refs := make([]ChildRef, 0, len(node.Children)+1)
	for _, child := range node.Children {
		if child.Cyclic || !seen[child.Path] {
			refs = append(refs, child)
			seen[child.Path] = true
		}
	}
	return append(refs, ChildRef{Path: node.Path}), nil
}

// serialize linearizes refs, dropping duplicates. A cyclic marker contributes the
// children its node has resolved so far; the node itself is emitted at its own position.
func (p *pass) serialize(refs []ChildRef) []string {
	var files []string
	listed := make(map[string]bool)
	add := func(path string) {
		if !listed[path] {
			listed[path] = true
			files = append(files, path)
		}
	}
	for _, ref := range refs {
		if !ref.Cyclic {
			add(ref.Path)
			continue
		}
		if node := p.nodes[ref.Path]; node != nil {
			for _, child := range node.Children {
				if !child.Cyclic && child.Path != ref.Path {
					add(child.Path)
				}
			}
		}
	}
	return files
}

func (p *pass) tableRefs() []ChildRef {
	refs := make([]ChildRef, 0, len(p.order))
	for _, path := range p.order {
		refs = append(refs, ChildRef{Path: path})
	}
	return refs
}

func (p *pass) sourceFiles(paths []string) []models.SourceFile {
	files := make([]models.SourceFile, 0, len(paths))
	for _, path := range paths {
		node := p.nodes[path]
		files = append(files, models.SourceFile{Path: node.Path, Context: node.Context, Source: node.Source})
	}
	return files
}

// warnings collects node warnings in table order.
func (p *pass) warnings() []models.Warning {
	var warnings []models.Warning
	for _, path := range p.order {
		warnings = append(warnings, p.nodes[path].Warnings...)
	}
	return warnings
}

func (p *pass) printPath(node, parent *FileNode) string {
	path := utils.NormalizePath(node.Path, p.cwd)
	if parent != nil {
		path += fmt.Sprintf(" (included by: %s)", utils.NormalizePath(parent.Path, p.cwd))
	}
	return path
}

// resolveFile reads file, probing index files for directories and known
// extensions for missing paths.
func (p *pass) resolveFile(file string) (*FileNode, error) {
	node, err := p.readFile(file)
	if err != nil {
		return nil, err
	}
	switch {
	case node.IsDir:
		for _, ext := range ResolveExtensions {
			index, err := p.readFile(filepath.Join(node.Path, "index"+ext))
			if err != nil {
				return nil, err
			}
			if index.Exists && !index.IsDir {
				return index, nil
			}
		}
	case !node.Exists:
		current := filepath.Ext(node.Path)
		for _, ext := range ResolveExtensions {
			if ext == current {
				continue
			}
			candidate, err := p.readFile(node.Path + ext)
			if err != nil {
				return nil, err
			}
			if candidate.Exists && !candidate.IsDir {
				return candidate, nil
			}
		}
	}
	return node, nil
}

// readFile loads one path, following symbolic links to their target. Only a
// cancelled context is an error; missing files come back with Exists unset.
func (p *pass) readFile(file string) (*FileNode, error) {
	if err := p.ctx.Err(); err != nil {
		return nil, err
	}
	node := &FileNode{Path: file, Context: filepath.Dir(file)}

	info, err := p.fs.Lstat(file)
	if err != nil {
		return node, nil
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		real, err := p.fs.EvalSymlinks(file)
		if err != nil {
			return node, nil
		}
		if real != file {
			return p.readFile(real)
		}
	}

	node.IsDir = info.IsDir()
	if !node.IsDir {
		source, err := p.fs.ReadFile(file)
		if err != nil {
			return node, nil
		}
		node.Source = string(source)
	}
	node.Exists = true
	return node, nil
}
