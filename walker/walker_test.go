package walker

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/sg/lang"
	golanglang "github.com/oxhq/sg/lang/golang"
)

func newGoRegistry() *lang.Registry {
	reg := lang.NewRegistry()
	reg.Register(golanglang.New())
	return reg
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWalk_FiltersByRegisteredExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.go"), "package a\n")
	writeFile(t, filepath.Join(dir, "b.py"), "x = 1\n")
	writeFile(t, filepath.Join(dir, "c.txt"), "not code\n")

	w := New()
	results, err := w.Walk(context.Background(), Scope{Path: dir, Languages: newGoRegistry()})
	require.NoError(t, err)

	var got []string
	for r := range results {
		require.NoError(t, r.Error)
		got = append(got, filepath.Base(r.Path))
	}
	sort.Strings(got)
	assert.Equal(t, []string{"a.go"}, got)
}

func TestWalk_ExcludeGlobWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "keep.go"), "package a\n")
	writeFile(t, filepath.Join(dir, "vendor", "skip.go"), "package v\n")

	w := New()
	results, err := w.Walk(context.Background(), Scope{
		Path:      dir,
		Languages: newGoRegistry(),
		Exclude:   []string{"**/vendor/**"},
	})
	require.NoError(t, err)

	var got []string
	for r := range results {
		got = append(got, filepath.Base(r.Path))
	}
	assert.Equal(t, []string{"keep.go"}, got)
}

func TestWalk_RespectsIgnoreFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "keep.go"), "package a\n")
	writeFile(t, filepath.Join(dir, "generated.go"), "package a\n")
	writeFile(t, filepath.Join(dir, ".sgignore"), "generated.go\n")

	w := New()
	results, err := w.Walk(context.Background(), Scope{
		Path:        dir,
		Languages:   newGoRegistry(),
		IgnoreFiles: []string{".sgignore"},
	})
	require.NoError(t, err)

	var got []string
	for r := range results {
		got = append(got, filepath.Base(r.Path))
	}
	assert.Equal(t, []string{"keep.go"}, got)
}

func TestWalk_IgnoreFileNegationReincludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "keep.go"), "package a\n")
	writeFile(t, filepath.Join(dir, "drop.go"), "package a\n")
	writeFile(t, filepath.Join(dir, ".sgignore"), "*.go\n!keep.go\n")

	w := New()
	results, err := w.Walk(context.Background(), Scope{
		Path:        dir,
		Languages:   newGoRegistry(),
		IgnoreFiles: []string{".sgignore"},
	})
	require.NoError(t, err)

	var got []string
	for r := range results {
		got = append(got, filepath.Base(r.Path))
	}
	assert.Equal(t, []string{"keep.go"}, got)
}

func TestWalk_MaxDepth(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "top.go"), "package a\n")
	writeFile(t, filepath.Join(dir, "nested", "deep.go"), "package a\n")

	w := New()
	results, err := w.Walk(context.Background(), Scope{
		Path:      dir,
		Languages: newGoRegistry(),
		MaxDepth:  0,
	})
	require.NoError(t, err)
	count := 0
	for range results {
		count++
	}
	assert.Equal(t, 2, count)
}

func TestWalk_RejectsNonDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.go")
	writeFile(t, file, "package a\n")

	w := New()
	_, err := w.Walk(context.Background(), Scope{Path: file})
	assert.Error(t, err)
}

func TestWalk_RejectsEmptyPath(t *testing.T) {
	w := New()
	_, err := w.Walk(context.Background(), Scope{})
	assert.Error(t, err)
}
