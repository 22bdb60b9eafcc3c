package transform

import (
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/sg/menv"
)

func bindText(env *menv.Env, name, text string) {
	env.BindDerived(name, []byte(text))
}

func TestConvert_PascalCaseFromSnakeCase(t *testing.T) {
	env := menv.New()
	bindText(env, "OLD", "user_name")

	c := Convert{Target: "NEW", Source: "OLD", ToCase: "pascalCase"}
	require.NoError(t, c.Apply(env, nil))

	b, ok := env.Get("NEW")
	require.True(t, ok)
	assert.Equal(t, "UserName", b.Text(nil))
}

func TestConvert_AllCaseTargets(t *testing.T) {
	cases := []struct {
		toCase string
		want   string
	}{
		{"lowerCase", "username"},
		{"upperCase", "USERNAME"},
		{"capitalize", "Username"},
		{"camelCase", "userName"},
		{"pascalCase", "UserName"},
		{"snakeCase", "user_name"},
		{"kebabCase", "user-name"},
	}
	for _, tc := range cases {
		env := menv.New()
		bindText(env, "OLD", "user_name")
		c := Convert{Target: "NEW", Source: "OLD", ToCase: tc.toCase}
		require.NoError(t, c.Apply(env, nil))
		b, _ := env.Get("NEW")
		assert.Equal(t, tc.want, b.Text(nil), "toCase=%s", tc.toCase)
	}
}

func TestConvert_SeparatedByRestrictsSplitting(t *testing.T) {
	env := menv.New()
	bindText(env, "OLD", "user-name_field")

	// only split on dash: "name_field" stays one word.
	c := Convert{Target: "NEW", Source: "OLD", ToCase: "camelCase", SeparatedBy: []string{"dash"}}
	require.NoError(t, c.Apply(env, nil))
	b, _ := env.Get("NEW")
	assert.Equal(t, "userName_field", b.Text(nil))
}

func TestConvert_UnknownCaseIsAnError(t *testing.T) {
	env := menv.New()
	bindText(env, "OLD", "user_name")
	c := Convert{Target: "NEW", Source: "OLD", ToCase: "not-a-case"}
	assert.Error(t, c.Apply(env, nil))
}

func TestTopoSort_OrdersByDependency(t *testing.T) {
	a := Substring{Target: "A", Source: "RAW"}
	b := Convert{Target: "B", Source: "A", ToCase: "upperCase"}

	ordered, err := TopoSort([]Transform{b, a})
	require.NoError(t, err)
	require.Len(t, ordered, 2)
	assert.Equal(t, "A", ordered[0].TargetName())
	assert.Equal(t, "B", ordered[1].TargetName())
}

func TestTopoSort_DetectsCycle(t *testing.T) {
	a := Substring{Target: "A", Source: "B"}
	b := Substring{Target: "B", Source: "A"}
	_, err := TopoSort([]Transform{a, b})
	assert.Error(t, err)
}

func TestRewrite_NoResolverBindsNothing(t *testing.T) {
	ActiveResolver = nil
	env := menv.New()
	env.BindSingle("NODE", &sitter.Node{}, nil)

	r := Rewrite{Target: "OUT", Source: "NODE", RuleIDs: []string{"some-rule"}}
	require.NoError(t, r.Apply(env, nil))
	_, ok := env.Get("OUT")
	assert.False(t, ok)
}

func TestRewrite_UsesInstalledResolver(t *testing.T) {
	var gotIDs []string
	var gotJoinBy string
	ActiveResolver = func(ruleIDs []string, nodes []*sitter.Node, joinBy string, source []byte) []byte {
		gotIDs = ruleIDs
		gotJoinBy = joinBy
		return []byte("rewritten")
	}
	t.Cleanup(func() { ActiveResolver = nil })

	env := menv.New()
	env.BindSingle("NODE", &sitter.Node{}, nil)
	r := Rewrite{Target: "OUT", Source: "NODE", RuleIDs: []string{"inner"}, JoinBy: ", "}
	require.NoError(t, r.Apply(env, nil))

	b, ok := env.Get("OUT")
	require.True(t, ok)
	assert.Equal(t, "rewritten", b.Text(nil))
	assert.Equal(t, []string{"inner"}, gotIDs)
	assert.Equal(t, ", ", gotJoinBy)
}
