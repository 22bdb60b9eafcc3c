package rule

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	golanglang "github.com/oxhq/sg/lang/golang"
)

func parse(t *testing.T, source string) (*sitter.Node, []byte) {
	t.Helper()
	parser := sitter.NewParser()
	parser.SetLanguage(golanglang.New().TSLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, []byte(source))
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree.RootNode(), []byte(source)
}

func TestCompile_SimplePatternRuleMatchesAndFixes(t *testing.T) {
	cfg := &Config{
		ID:       "no-printf-debug",
		Language: "go",
		Rule:     MatcherSpec{Pattern: "fmt.Println($ARG)", Selector: "call_expression"},
		Fix:      "log.Debug($ARG)",
	}
	core, err := Compile(cfg, golanglang.New())
	require.NoError(t, err)

	root, source := parse(t, `package p

func f() { fmt.Println("hi") }
`)
	var call *sitter.Node
	var find func(n *sitter.Node)
	find = func(n *sitter.Node) {
		if n.Type() == "call_expression" {
			call = n
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			find(n.Child(i))
		}
	}
	find(root)
	require.NotNil(t, call)

	env, ok := core.Match(call, source)
	require.True(t, ok)
	assert.Equal(t, `log.Debug("hi")`, core.Fixer.Generate(env, source))
}

func TestConfig_Validate_RejectsEmptyMatcher(t *testing.T) {
	cfg := &Config{ID: "x", Language: "go"}
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_RejectsCyclicUtils(t *testing.T) {
	cfg := &Config{
		ID:       "x",
		Language: "go",
		Rule:     MatcherSpec{Matches: "a"},
		Utils: map[string]MatcherSpec{
			"a": {Matches: "b"},
			"b": {Matches: "a"},
		},
	}
	assert.Error(t, cfg.Validate())
}
