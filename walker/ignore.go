package walker

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ignoreSet accumulates .gitignore-style patterns from a directory and all
// of its ancestors, giving the walker the "directory traversal with
// ignore-file semantics" spec.md §1 calls for (the teacher's FileWalker has
// no equivalent; this is new, reusing the same doublestar matcher).
type ignoreSet struct {
	parent   *ignoreSet
	baseDir  string // directory this set's patterns are relative to
	patterns []ignorePattern
}

type ignorePattern struct {
	raw      string
	negate   bool
	dirOnly  bool
	anchored bool // pattern contains '/' other than a trailing one
}

func loadIgnoreSet(root string, files []string) *ignoreSet {
	return (&ignoreSet{}).extend(root, files)
}

// extend reads each named ignore file in dir and returns a new set chained
// to the receiver, so patterns accumulate root-to-leaf like gitignore.
func (s *ignoreSet) extend(dir string, files []string) *ignoreSet {
	next := &ignoreSet{parent: s, baseDir: dir}
	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		next.patterns = append(next.patterns, parseIgnoreLines(string(data))...)
	}
	if len(next.patterns) == 0 && s != nil {
		return s.shallowCopyAt(dir)
	}
	return next
}

// shallowCopyAt avoids growing a long chain of empty sets when a directory
// contributes no new patterns.
func (s *ignoreSet) shallowCopyAt(dir string) *ignoreSet {
	if s == nil {
		return &ignoreSet{baseDir: dir}
	}
	return s
}

func parseIgnoreLines(content string) []ignorePattern {
	var out []ignorePattern
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		p := ignorePattern{raw: trimmed}
		if strings.HasPrefix(p.raw, "!") {
			p.negate = true
			p.raw = p.raw[1:]
		}
		if strings.HasSuffix(p.raw, "/") {
			p.dirOnly = true
			p.raw = strings.TrimSuffix(p.raw, "/")
		}
		if strings.Contains(strings.TrimSuffix(p.raw, "/"), "/") {
			p.anchored = true
		}
		out = append(out, p)
	}
	return out
}

// matches reports whether relPath (slash-separated, relative to the walk
// root) should be skipped, consulting this set and every ancestor in
// root-to-leaf order so a later (more specific) negation can override an
// earlier exclusion, matching gitignore precedence.
func (s *ignoreSet) matches(relPath string, isDir bool) bool {
	if s == nil {
		return false
	}
	chain := s.chain()
	ignored := false
	for _, set := range chain {
		for _, p := range set.patterns {
			if p.dirOnly && !isDir {
				continue
			}
			if matchIgnorePattern(p, relPath) {
				ignored = !p.negate
			}
		}
	}
	return ignored
}

func (s *ignoreSet) chain() []*ignoreSet {
	var chain []*ignoreSet
	for cur := s; cur != nil; cur = cur.parent {
		chain = append([]*ignoreSet{cur}, chain...)
	}
	return chain
}

func matchIgnorePattern(p ignorePattern, relPath string) bool {
	base := filepath.Base(relPath)
	pattern := p.raw
	if p.anchored {
		matched, _ := doublestar.Match(strings.TrimPrefix(pattern, "/"), relPath)
		return matched
	}
	matched, _ := doublestar.Match(pattern, base)
	if matched {
		return true
	}
	matched, _ = doublestar.Match("**/"+pattern, relPath)
	return matched
}

func errRequired(field string) error { return fmt.Errorf("%s is required", field) }
func errNotDir(path string) error    { return fmt.Errorf("path %s is not a directory", path) }
