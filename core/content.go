// Package core holds the document model the matching engine operates on:
// an immutable source buffer paired with its parsed tree, plus the Content
// abstraction that lets the rest of the engine stay agnostic of whether
// positions are counted in UTF-8 bytes or UTF-16 code units.
package core

import "unicode/utf16"

// Content abstracts over how a document's columns are counted. Both
// concrete implementations address the source by byte offset for Slice,
// Decode and Len; they differ only in ColumnAt, so that a UTF-16 front end
// (e.g. a JavaScript-facing API) can report UTF-16 columns.
type Content interface {
	// Slice returns the source bytes in the byte range [start, end).
	Slice(start, end int) []byte
	// Decode turns a byte range into a UTF-8 string.
	Decode(start, end int) string
	// Len returns the source length in bytes.
	Len() int
	// ColumnAt converts a byte offset within a line into the Content's
	// native column numbering (e.g. UTF-16 code units for JS-style APIs).
	ColumnAt(lineStart, byteOffset int) int
}

// UTF8Content is the default realisation: positions are raw byte offsets.
type UTF8Content struct {
	bytes []byte
}

// NewUTF8Content wraps source bytes for byte-addressed documents.
func NewUTF8Content(source []byte) *UTF8Content {
	return &UTF8Content{bytes: source}
}

func (c *UTF8Content) Slice(start, end int) []byte {
	if start < 0 {
		start = 0
	}
	if end > len(c.bytes) {
		end = len(c.bytes)
	}
	if start > end {
		start = end
	}
	return c.bytes[start:end]
}

func (c *UTF8Content) Decode(start, end int) string {
	return string(c.Slice(start, end))
}

func (c *UTF8Content) Len() int { return len(c.bytes) }

// ColumnAt for byte content is simply the byte offset within the line.
func (c *UTF8Content) ColumnAt(lineStart, byteOffset int) int {
	return byteOffset - lineStart
}

// UTF16Content exposes the same bytes but reports columns in UTF-16 code
// units, matching the column semantics used by LSP clients such as VS Code.
type UTF16Content struct {
	bytes []byte
}

// NewUTF16Content wraps source bytes for consumers that need UTF-16 columns.
func NewUTF16Content(source []byte) *UTF16Content {
	return &UTF16Content{bytes: source}
}

func (c *UTF16Content) Slice(start, end int) []byte {
	if start < 0 {
		start = 0
	}
	if end > len(c.bytes) {
		end = len(c.bytes)
	}
	if start > end {
		start = end
	}
	return c.bytes[start:end]
}

func (c *UTF16Content) Decode(start, end int) string {
	return string(c.Slice(start, end))
}

func (c *UTF16Content) Len() int { return len(c.bytes) }

// ColumnAt re-encodes the line prefix as UTF-16 to count code units rather
// than bytes, so a multi-byte rune counts as one or two columns instead of
// its byte width.
func (c *UTF16Content) ColumnAt(lineStart, byteOffset int) int {
	if byteOffset <= lineStart {
		return 0
	}
	prefix := string(c.bytes[lineStart:byteOffset])
	return len(utf16.Encode([]rune(prefix)))
}
