package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	golanglang "github.com/oxhq/sg/lang/golang"
	"github.com/oxhq/sg/menv"
	"github.com/oxhq/sg/pattern"
)

func compileGo(t *testing.T, example, selector string) *pattern.Node {
	t.Helper()
	backend := golanglang.New()
	node, _, err := pattern.Compile(backend, example, selector)
	require.NoError(t, err)
	return node
}

func parseGo(t *testing.T, source string) *document {
	t.Helper()
	return newDocument(t, golanglang.New(), source)
}

func TestPatternMatch_CapturesSingleMetaVar(t *testing.T) {
	p := compileGo(t, "fmt.Println($ARG)", "call_expression")
	doc := parseGo(t, `package p

func f() { fmt.Println("hi") }
`)
	call := findFirst(doc.root, "call_expression")
	require.NotNil(t, call)

	m := NewPattern(p, Smart)
	env, ok := m.Match(call, doc.source, menv.New())
	require.True(t, ok)

	b, ok := env.Get("ARG")
	require.True(t, ok)
	assert.Equal(t, `"hi"`, b.Text(doc.source))
}

func TestPatternMatch_RejectsDifferentCallee(t *testing.T) {
	p := compileGo(t, "fmt.Println($ARG)", "call_expression")
	doc := parseGo(t, `package p

func f() { fmt.Printf("hi") }
`)
	call := findFirst(doc.root, "call_expression")
	require.NotNil(t, call)

	m := NewPattern(p, Smart)
	_, ok := m.Match(call, doc.source, menv.New())
	assert.False(t, ok)
}

func TestPatternMatch_ConsistencyAcrossRepeatedMetaVar(t *testing.T) {
	p := compileGo(t, "$X = $X", "assignment_statement")
	doc := parseGo(t, `package p

func f() { a := 1; a = a }
`)
	assign := findFirst(doc.root, "assignment_statement")
	require.NotNil(t, assign)

	m := NewPattern(p, Smart)
	_, ok := m.Match(assign, doc.source, menv.New())
	assert.True(t, ok)
}

func TestInsideMatcher_FindsEnclosingFunction(t *testing.T) {
	doc := parseGo(t, `package p

func outer() { fmt.Println("x") }
`)
	call := findFirst(doc.root, "call_expression")
	require.NotNil(t, call)

	inside := Inside{Sub: KindMatcher{Kind: "function_declaration"}}
	_, ok := inside.Match(call, doc.source, menv.New())
	assert.True(t, ok)
}

func TestNotMatcher_InvertsSub(t *testing.T) {
	doc := parseGo(t, `package p

func outer() {}
`)
	fn := findFirst(doc.root, "function_declaration")
	require.NotNil(t, fn)

	not := Not{Matcher: KindMatcher{Kind: "call_expression"}}
	_, ok := not.Match(fn, doc.source, menv.New())
	assert.True(t, ok)
}
