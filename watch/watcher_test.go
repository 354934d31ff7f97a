package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, g *DependencyGraph, opts Options) <-chan Batch {
	t.Helper()
	opts.Debounce = 20 * time.Millisecond
	w, err := NewWatcher(g, opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	batches := make(chan Batch, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx, func(_ context.Context, b Batch) error {
			batches <- b
			return nil
		})
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return batches
}

func nextBatch(t *testing.T, batches <-chan Batch) Batch {
	t.Helper()
	select {
	case b := <-batches:
		return b
	case <-time.After(5 * time.Second):
		t.Fatal("no batch received")
		return Batch{}
	}
}

func TestWatcher_RebuildsDependents(t *testing.T) {
	dir := t.TempDir()
	en := filepath.Join(dir, "en.yml")
	common := filepath.Join(dir, "common.yml")
	require.NoError(t, os.WriteFile(en, []byte("#include \"./common\"\n"), 0644))
	require.NoError(t, os.WriteFile(common, []byte("en:\n  a: 1\n"), 0644))

	g := NewDependencyGraph()
	require.NoError(t, g.Update(en, []string{common, en}))
	batches := startWatcher(t, g, Options{})

	require.NoError(t, os.WriteFile(common, []byte("en:\n  a: 2\n"), 0644))

	b := nextBatch(t, batches)
	assert.Equal(t, []string{en}, b.Modules)
	assert.Empty(t, b.Removed)
}

func TestWatcher_RemovedAndCreated(t *testing.T) {
	dir := t.TempDir()
	en := filepath.Join(dir, "en.yml")
	require.NoError(t, os.WriteFile(en, []byte("a: 1\n"), 0644))

	g := NewDependencyGraph()
	require.NoError(t, g.Update(en, []string{en}))
	batches := startWatcher(t, g, Options{
		Roots:    []string{dir},
		IsSource: func(path string) bool { return strings.HasSuffix(path, ".yml") },
	})

	require.NoError(t, os.Remove(en))
	b := nextBatch(t, batches)
	assert.Equal(t, []string{en}, b.Removed)
	assert.Empty(t, b.Modules)

	fr := filepath.Join(dir, "fr.yml")
	require.NoError(t, os.WriteFile(fr, []byte("a: 1\n"), 0644))
	b = nextBatch(t, batches)
	assert.Equal(t, []string{fr}, b.Created)
}
