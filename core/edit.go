package core

// Edit is a single splice over a document's source bytes, expressed in the
// document's native unit (spec.md §3).
type Edit struct {
	Position      int
	DeletedLength int
	InsertedBytes []byte
}

// End is the position one past the deleted span.
func (e Edit) End() int { return e.Position + e.DeletedLength }

// Apply returns the result of splicing e into source, without touching any
// parsed tree. Document.Edit uses this for the byte-level half of the edit;
// the tree-sitter half is driven separately so the old tree can inform the
// incremental re-parse.
func (e Edit) Apply(source []byte) []byte {
	out := make([]byte, 0, len(source)-e.DeletedLength+len(e.InsertedBytes))
	out = append(out, source[:e.Position]...)
	out = append(out, e.InsertedBytes...)
	out = append(out, source[e.End():]...)
	return out
}
