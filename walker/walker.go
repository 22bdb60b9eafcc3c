// Package walker is the parallel file-system traversal collaborator
// spec.md §1 and §5 describe: one goroutine scans directories and feeds
// candidate paths to N worker goroutines (N = min(logical-CPUs, 12)), which
// stat each file, detect its language and feed a single results channel,
// with glob include/exclude and ignore-file semantics applied during the
// directory scan. Grounded on the teacher's core.FileWalker, adapted to
// drop the AgentQuery-era language-detection map in favour of the engine's
// own lang.Registry, and to add .gitignore-style ignore-file parsing (the
// teacher's walker only does glob include/exclude).
package walker

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/oxhq/sg/lang"
)

// maxWorkers is the spec.md §5 bound on walker parallelism.
const maxWorkers = 12

// Scope describes what to traverse and which files qualify.
type Scope struct {
	Path           string
	Include        []string // glob patterns; empty means "all languages known to Registry"
	Exclude        []string // glob patterns, checked before ignore files
	Languages      *lang.Registry
	IgnoreFiles    []string // e.g. ".gitignore", ".sgignore"; read relative to each directory
	FollowSymlinks bool
	MaxDepth       int // 0 = unlimited
	MaxFiles       int // 0 = unlimited
}

// Result is one discovered file.
type Result struct {
	Path     string
	Info     fs.FileInfo
	Language lang.Language
	Error    error
}

// Walker performs parallel directory traversal honoring globs and ignore
// files.
type Walker struct {
	workers    int
	bufferSize int
}

// New creates a walker sized per spec.md §5.
func New() *Walker {
	workers := runtime.NumCPU()
	if workers > maxWorkers {
		workers = maxWorkers
	}
	if workers < 1 {
		workers = 1
	}
	return &Walker{workers: workers, bufferSize: 1000}
}

// Walk starts the scan and returns a channel of discovered files. The
// channel closes once traversal and all workers finish.
func (w *Walker) Walk(ctx context.Context, scope Scope) (<-chan Result, error) {
	if scope.Path == "" {
		return nil, errRequired("path")
	}
	info, err := os.Stat(scope.Path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errNotDir(scope.Path)
	}

	results := make(chan Result, w.bufferSize)
	paths := make(chan string, w.bufferSize)

	var wg sync.WaitGroup
	for i := 0; i < w.workers; i++ {
		wg.Add(1)
		go w.worker(ctx, paths, results, scope, &wg)
	}

	go func() {
		defer close(paths)
		processed := 0
		ig := loadIgnoreSet(scope.Path, scope.IgnoreFiles)
		var visited map[string]struct{}
		if scope.FollowSymlinks {
			visited = make(map[string]struct{})
		}
		w.scanDir(ctx, scope.Path, scope, ig, paths, 0, &processed, visited)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results, nil
}

func (w *Walker) worker(ctx context.Context, paths <-chan string, results chan<- Result, scope Scope, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-paths:
			if !ok {
				return
			}
			r := w.stat(path, scope)
			select {
			case <-ctx.Done():
				return
			case results <- r:
			}
		}
	}
}

func (w *Walker) stat(path string, scope Scope) Result {
	info, err := os.Stat(path)
	if err != nil {
		return Result{Path: path, Error: err}
	}
	l := detectLanguage(path, scope.Languages)
	return Result{Path: path, Info: info, Language: l}
}

func (w *Walker) scanDir(
	ctx context.Context,
	dir string,
	scope Scope,
	parent *ignoreSet,
	paths chan<- string,
	depth int,
	processed *int,
	visited map[string]struct{},
) {
	if scope.MaxFiles > 0 && *processed >= scope.MaxFiles {
		return
	}
	select {
	case <-ctx.Done():
		return
	default:
	}
	if scope.MaxDepth > 0 && depth > scope.MaxDepth {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	ig := parent.extend(dir, scope.IgnoreFiles)

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return
		default:
		}

		full := filepath.Join(dir, entry.Name())
		rel, _ := filepath.Rel(scope.Path, full)
		rel = filepath.ToSlash(rel)

		if matchAny(full, scope.Exclude) {
			continue
		}
		if ig.matches(rel, entry.IsDir()) {
			continue
		}

		if entry.Type()&os.ModeSymlink != 0 && scope.FollowSymlinks {
			resolved, err := filepath.EvalSymlinks(full)
			if err != nil || resolved == "" {
				continue
			}
			info, err := os.Stat(resolved)
			if err != nil {
				continue
			}
			if info.IsDir() {
				if visited != nil {
					if _, seen := visited[resolved]; seen {
						continue
					}
					visited[resolved] = struct{}{}
				}
				w.scanDir(ctx, full, scope, ig, paths, depth+1, processed, visited)
			}
			continue
		}

		if entry.IsDir() {
			w.scanDir(ctx, full, scope, ig, paths, depth+1, processed, visited)
			continue
		}

		if w.included(full, scope) {
			if scope.MaxFiles > 0 && *processed >= scope.MaxFiles {
				return
			}
			select {
			case <-ctx.Done():
				return
			case paths <- full:
				*processed++
			}
		}
	}
}

func (w *Walker) included(path string, scope Scope) bool {
	if len(scope.Include) > 0 {
		return matchAny(path, scope.Include)
	}
	if scope.Languages == nil {
		return true
	}
	_, ok := scope.Languages.GetByExtension(strings.ToLower(filepath.Ext(path)))
	return ok
}

func matchAny(path string, patterns []string) bool {
	for _, p := range patterns {
		if matched, err := doublestar.PathMatch(p, path); err == nil && matched {
			return true
		}
		if !strings.Contains(p, "/") {
			if matched, err := doublestar.PathMatch(p, filepath.Base(path)); err == nil && matched {
				return true
			}
		}
	}
	return false
}

func detectLanguage(path string, reg *lang.Registry) lang.Language {
	if reg == nil {
		return nil
	}
	l, _ := reg.GetByExtension(strings.ToLower(filepath.Ext(path)))
	return l
}
