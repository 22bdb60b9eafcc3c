// Package rewrite composes accepted matches into the edits applied to a
// document: sort by position, splice each fixer's generated text in place
// of its matched range, and return the rewritten source bytes
// (spec.md §5 "Rewriter").
package rewrite

import (
	"fmt"
	"sort"

	"github.com/oxhq/sg/scan"
)

// Edit describes one substitution: replace source[Start:End) with Text.
type Edit struct {
	Start, End uint32
	Text       []byte
	RuleID     string
}

// Plan builds the ordered, non-overlapping edit list for matches that
// carry a fix (matches with no Fixer contribute diagnostics only, not
// edits). Matches must already be overlap-resolved (scan.Scanner does
// this); Plan orders edits by start position, breaks ties lexicographically
// by rule id, and returns an error if two edits overlap.
func Plan(matches []scan.Match, source []byte) ([]Edit, error) {
	var edits []Edit
	for _, m := range matches {
		if m.Rule.Fixer == nil {
			continue
		}
		edits = append(edits, Edit{
			Start:  m.Node.StartByte(),
			End:    m.Node.EndByte(),
			Text:   []byte(m.Rule.Fixer.Generate(m.Env, source)),
			RuleID: m.RuleID,
		})
	}

	sort.Slice(edits, func(i, j int) bool {
		if edits[i].Start != edits[j].Start {
			return edits[i].Start < edits[j].Start
		}
		return edits[i].RuleID < edits[j].RuleID
	})

	for i := 1; i < len(edits); i++ {
		if edits[i].Start < edits[i-1].End {
			return nil, fmt.Errorf("rewrite: overlapping edits from rules %q and %q", edits[i-1].RuleID, edits[i].RuleID)
		}
	}
	return edits, nil
}

// Apply concatenates source with every edit spliced in, left to right.
func Apply(source []byte, edits []Edit) []byte {
	out := make([]byte, 0, len(source))
	cursor := uint32(0)
	for _, e := range edits {
		out = append(out, source[cursor:e.Start]...)
		out = append(out, e.Text...)
		cursor = e.End
	}
	out = append(out, source[cursor:]...)
	return out
}
