// Package scan walks a parsed document once per rule set, collecting every
// match and diagnostic while honoring ast-grep-ignore suppression comments
// and resolving overlapping matches by a pre-order preference (spec.md §5
// "combined scanner"). This is genuinely new relative to the teacher,
// whose findTargets (providers/golang/transform.go) walks for one target
// query at a time with no suppression or overlap handling at all; the
// walk shape (recursive descent accumulating into a slice) is kept from
// there, generalized to many rules and potential_kinds pruning.
package scan

import (
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/sg/lang"
	"github.com/oxhq/sg/menv"
	"github.com/oxhq/sg/rule"
	"github.com/oxhq/sg/transform"
)

// Match is one rule firing against one node, with the bindings it produced.
type Match struct {
	RuleID string
	Rule   *rule.Core
	Node   *sitter.Node
	Env    *menv.Env
}

// Scanner runs a fixed set of named rules against documents.
type Scanner struct {
	rules    []namedRule
	byID     map[string]*rule.Core
	language lang.Language
}

type namedRule struct {
	id   string
	core *rule.Core
}

// New builds a Scanner over rules, keyed by id, for language.
func New(language lang.Language, rules map[string]*rule.Core) *Scanner {
	s := &Scanner{language: language, byID: rules}
	for id, core := range rules {
		s.rules = append(s.rules, namedRule{id: id, core: core})
	}
	// Deterministic order: lexicographic by id, which makes scan output
	// order reproducible. No fixer-first ordering is applied here or in
	// rewrite.Plan, which only ever sees fixer-carrying matches.
	sort.Slice(s.rules, func(i, j int) bool { return s.rules[i].id < s.rules[j].id })
	return s
}

// Scan walks root, returning every accepted match after suppression and
// overlap resolution. For the duration of the walk, Scan installs itself as
// transform.ActiveResolver so any rule.Core whose Transforms include a
// "rewrite" step can resolve its named sub-rules against this Scanner's own
// rule set (spec.md §4.6), restoring whatever resolver was previously active
// (if any) before returning - recursive rewrites nest correctly since
// resolveRewrite itself calls Scan.
func (s *Scanner) Scan(root *sitter.Node, source []byte) []Match {
	prev := transform.ActiveResolver
	transform.ActiveResolver = s.resolveRewrite
	defer func() { transform.ActiveResolver = prev }()

	suppressed := collectSuppressions(root, source)

	var all []Match
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		for _, r := range s.rules {
			if !potentiallyMatches(r.core, n, s.language) {
				continue
			}
			if suppressed.ruleSuppressed(n, r.id) {
				continue
			}
			env, ok := r.core.Match(n, source)
			if !ok {
				continue
			}
			all = append(all, Match{RuleID: r.id, Rule: r.core, Node: n, Env: env})
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)

	return resolveOverlaps(all)
}

// resolveRewrite is transform.ActiveResolver's implementation for this
// Scanner: it runs ruleIDs (restricted to rules this Scanner actually knows
// about) over each of nodes in turn and joins the rewritten text with
// joinBy, or splices the nodes' original text unchanged (joinBy's documented
// default) when none of ruleIDs resolve to a known rule.
func (s *Scanner) resolveRewrite(ruleIDs []string, nodes []*sitter.Node, joinBy string, source []byte) []byte {
	subset := map[string]*rule.Core{}
	for _, id := range ruleIDs {
		if c, ok := s.byID[id]; ok {
			subset[id] = c
		}
	}

	parts := make([]string, len(nodes))
	if len(subset) == 0 {
		for i, n := range nodes {
			parts[i] = string(source[n.StartByte():n.EndByte()])
		}
	} else {
		sub := New(s.language, subset)
		for i, n := range nodes {
			parts[i] = sub.rewriteSubtree(n, source)
		}
	}

	if joinBy == "" {
		return []byte(strings.Join(parts, ""))
	}
	return []byte(strings.Join(parts, joinBy))
}

// rewriteSubtree scans n (not the whole document) with s's rules, splices
// every resulting fix into n's own text, and returns the rewritten result;
// nodes with no fix keep their original text.
func (s *Scanner) rewriteSubtree(n *sitter.Node, source []byte) string {
	matches := s.Scan(n, source)
	base := n.StartByte()
	nodeText := source[base:n.EndByte()]

	type localEdit struct {
		start, end uint32
		text       []byte
	}
	var edits []localEdit
	for _, m := range matches {
		if m.Rule.Fixer == nil {
			continue
		}
		edits = append(edits, localEdit{
			start: m.Node.StartByte() - base,
			end:   m.Node.EndByte() - base,
			text:  []byte(m.Rule.Fixer.Generate(m.Env, source)),
		})
	}
	sort.Slice(edits, func(i, j int) bool { return edits[i].start < edits[j].start })

	out := make([]byte, 0, len(nodeText))
	cursor := uint32(0)
	for _, e := range edits {
		if e.start < cursor {
			continue // overlapping sub-rewrite; keep the earlier one
		}
		out = append(out, nodeText[cursor:e.start]...)
		out = append(out, e.text...)
		cursor = e.end
	}
	out = append(out, nodeText[cursor:]...)
	return string(out)
}

func potentiallyMatches(core *rule.Core, n *sitter.Node, language lang.Language) bool {
	kinds := core.Matcher.PotentialKinds(language)
	if kinds == nil {
		return true
	}
	id, ok := language.KindToID(n.Type())
	if !ok {
		return false
	}
	return kinds[id]
}

// resolveOverlaps keeps, among matches whose node ranges overlap, the one
// whose node occurs earliest in a pre-order traversal (i.e. the outermost
// enclosing match), matching ast-grep's "outer match wins" fixpoint rule
// for nested rewrites (spec.md §5).
func resolveOverlaps(matches []Match) []Match {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Node.StartByte() != matches[j].Node.StartByte() {
			return matches[i].Node.StartByte() < matches[j].Node.StartByte()
		}
		return matches[i].Node.EndByte() > matches[j].Node.EndByte()
	})

	var out []Match
	var lastEnd uint32
	first := true
	for _, m := range matches {
		if !first && m.Node.StartByte() < lastEnd {
			continue
		}
		out = append(out, m)
		lastEnd = m.Node.EndByte()
		first = false
	}
	return out
}

// suppressionIndex records, per suppressed node range, which rule ids (if
// any restriction was given) are suppressed there.
type suppressionIndex struct {
	entries []suppressionEntry
}

type suppressionEntry struct {
	start, end uint32
	ruleIDs    map[string]bool // nil means "suppress every rule"
}

func (s *suppressionIndex) ruleSuppressed(n *sitter.Node, ruleID string) bool {
	for _, e := range s.entries {
		if n.StartByte() < e.start || n.StartByte() >= e.end {
			continue
		}
		if e.ruleIDs == nil || e.ruleIDs[ruleID] {
			return true
		}
	}
	return false
}

// collectSuppressions performs the dedicated first pass spec.md §5
// describes: find every "ast-grep-ignore" comment, same-line or on the
// line immediately above, optionally followed by ": id1, id2", and record
// the node range it suppresses (the statement/node the comment attaches to).
func collectSuppressions(root *sitter.Node, source []byte) *suppressionIndex {
	idx := &suppressionIndex{}
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "comment" {
			text := string(source[n.StartByte():n.EndByte()])
			if ids, ok := parseIgnoreComment(text); ok {
				target := suppressionTarget(n)
				idx.entries = append(idx.entries, suppressionEntry{
					start:   target.StartByte(),
					end:     target.EndByte(),
					ruleIDs: ids,
				})
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return idx
}

// suppressionTarget finds the node a suppression comment applies to: the
// next sibling after the comment if one exists (covers the "comment on the
// line above" case), otherwise the comment's own parent (covers a
// same-line trailing comment, whose parent is the statement it trails).
func suppressionTarget(comment *sitter.Node) *sitter.Node {
	if next := comment.NextSibling(); next != nil {
		return next
	}
	if parent := comment.Parent(); parent != nil {
		return parent
	}
	return comment
}

func parseIgnoreComment(text string) (map[string]bool, bool) {
	idx := strings.Index(text, "ast-grep-ignore")
	if idx < 0 {
		return nil, false
	}
	rest := text[idx+len("ast-grep-ignore"):]
	rest = strings.TrimLeft(rest, " \t*/-")
	if !strings.HasPrefix(rest, ":") {
		return nil, true // no id list: suppress every rule here
	}
	rest = strings.TrimPrefix(rest, ":")
	rest = strings.TrimRight(rest, " \t*/")
	ids := map[string]bool{}
	for _, part := range strings.Split(rest, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			ids[part] = true
		}
	}
	return ids, true
}
