// Package watch recompiles locale modules when their sources change.
package watch

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	graphlib "github.com/dominikbraun/graph"
)

// DependencyGraph records which files every compiled module depends on.
// Edges point from a module to the files it merges.
type DependencyGraph struct {
	mu      sync.RWMutex
	graph   graphlib.Graph[string, string]
	modules map[string]bool
}

// NewDependencyGraph creates an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		graph:   graphlib.New(graphlib.StringHash, graphlib.Directed()),
		modules: make(map[string]bool),
	}
}

// Update replaces the dependencies of module.
func (d *DependencyGraph) Update(module string, deps []string) error {
	module = filepath.Clean(module)
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.addVertex(module); err != nil {
		return err
	}
	d.modules[module] = true

	previous, err := d.targets(module)
	if err != nil {
		return err
	}
	next := make(map[string]bool, len(deps))
	for _, dep := range deps {
		dep = filepath.Clean(dep)
		if dep == module || next[dep] {
			continue
		}
		next[dep] = true
		if err := d.addVertex(dep); err != nil {
			return err
		}
		if err := d.graph.AddEdge(module, dep); err != nil && !errors.Is(err, graphlib.ErrEdgeAlreadyExists) {
			return fmt.Errorf("watch: add edge %s -> %s: %w", module, dep, err)
		}
	}
	for _, dep := range previous {
		if next[dep] {
			continue
		}
		if err := d.graph.RemoveEdge(module, dep); err != nil && !errors.Is(err, graphlib.ErrEdgeNotFound) {
			return fmt.Errorf("watch: remove edge %s -> %s: %w", module, dep, err)
		}
		d.prune(dep)
	}
	return nil
}

// Remove forgets module and every file only it depended on.
func (d *DependencyGraph) Remove(module string) error {
	module = filepath.Clean(module)
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.modules[module] {
		return nil
	}
	delete(d.modules, module)

	deps, err := d.targets(module)
	if err != nil {
		return err
	}
	for _, dep := range deps {
		if err := d.graph.RemoveEdge(module, dep); err != nil && !errors.Is(err, graphlib.ErrEdgeNotFound) {
			return fmt.Errorf("watch: remove edge %s -> %s: %w", module, dep, err)
		}
		d.prune(dep)
	}
	d.prune(module)
	return nil
}

// Affected returns, sorted, the modules to rebuild when file changes: every
// module depending on it, and file itself when it is a module.
func (d *DependencyGraph) Affected(file string) []string {
	file = filepath.Clean(file)
	d.mu.RLock()
	defer d.mu.RUnlock()

	var affected []string
	if d.modules[file] {
		affected = append(affected, file)
	}
	predecessors, err := d.graph.PredecessorMap()
	if err != nil {
		return affected
	}
	for module := range predecessors[file] {
		affected = append(affected, module)
	}
	sort.Strings(affected)
	return affected
}

// IsModule reports whether path was registered as a module.
func (d *DependencyGraph) IsModule(path string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.modules[filepath.Clean(path)]
}

// Modules returns the registered modules, sorted.
func (d *DependencyGraph) Modules() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	modules := make([]string, 0, len(d.modules))
	for module := range d.modules {
		modules = append(modules, module)
	}
	sort.Strings(modules)
	return modules
}

// Files returns every module and dependency in the graph, sorted.
func (d *DependencyGraph) Files() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	adjacency, err := d.graph.AdjacencyMap()
	if err != nil {
		return nil
	}
	files := make([]string, 0, len(adjacency))
	for file := range adjacency {
		files = append(files, file)
	}
	sort.Strings(files)
	return files
}

func (d *DependencyGraph) addVertex(file string) error {
	if err := d.graph.AddVertex(file); err != nil && !errors.Is(err, graphlib.ErrVertexAlreadyExists) {
		return fmt.Errorf("watch: add vertex %s: %w", file, err)
	}
	return nil
}

func (d *DependencyGraph) targets(module string) ([]string, error) {
	adjacency, err := d.graph.AdjacencyMap()
	if err != nil {
		return nil, fmt.Errorf("watch: adjacency of %s: %w", module, err)
	}
	targets := make([]string, 0, len(adjacency[module]))
	for target := range adjacency[module] {
		targets = append(targets, target)
	}
	return targets, nil
}

// prune drops file once it is neither a module nor a dependency.
func (d *DependencyGraph) prune(file string) {
	if d.modules[file] {
		return
	}
	predecessors, err := d.graph.PredecessorMap()
	if err != nil || len(predecessors[file]) > 0 {
		return
	}
	adjacency, err := d.graph.AdjacencyMap()
	if err != nil || len(adjacency[file]) > 0 {
		return
	}
	_ = d.graph.RemoveVertex(file)
}
