package rule

import (
	"fmt"
	"regexp"

	"github.com/oxhq/sg/fix"
	"github.com/oxhq/sg/lang"
	"github.com/oxhq/sg/matcher"
	"github.com/oxhq/sg/pattern"
	"github.com/oxhq/sg/transform"
)

// Compile validates c and builds its Core against language, resolving
// pattern strings into PatternMatchers, utils into a lookup table Matches
// nodes can reference, and the fix template (if any) into a Fixer.
func Compile(c *Config, language lang.Language) (*Core, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	utils := map[string]matcher.Matcher{}
	for name, spec := range c.Utils {
		m, err := compileMatcher(spec, language, utils)
		if err != nil {
			return nil, fmt.Errorf("rule %s: util %s: %w", c.ID, name, err)
		}
		utils[name] = m
	}

	m, err := compileMatcher(c.Rule, language, utils)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", c.ID, err)
	}

	var transforms []transform.Transform
	for name, spec := range c.Transform {
		t, err := compileTransform(name, spec)
		if err != nil {
			return nil, fmt.Errorf("rule %s: transform %s: %w", c.ID, name, err)
		}
		transforms = append(transforms, t)
	}

	var fixer *fix.Fixer
	if c.Fix != "" {
		fixer, err = fix.Compile(c.Fix)
		if err != nil {
			return nil, fmt.Errorf("rule %s: fix: %w", c.ID, err)
		}
	}

	severity := c.Severity
	if severity == "" {
		severity = SeverityWarning
	}
	return &Core{Matcher: m, Transforms: transforms, Fixer: fixer, Severity: severity, Message: c.Message}, nil
}

func compileMatcher(spec MatcherSpec, language lang.Language, utils map[string]matcher.Matcher) (matcher.Matcher, error) {
	switch {
	case spec.Pattern != "":
		node, _, err := pattern.Compile(language, spec.Pattern, spec.Selector)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", spec.Pattern, err)
		}
		return matcher.NewPattern(node, strictnessFromString(spec.Strictness)), nil

	case spec.Kind != "":
		return matcher.KindMatcher{Kind: spec.Kind}, nil

	case spec.Regex != "":
		re, err := regexp.Compile(spec.Regex)
		if err != nil {
			return nil, fmt.Errorf("regex %q: %w", spec.Regex, err)
		}
		return matcher.RegexMatcher{Expr: re}, nil

	case spec.NthChild != nil:
		return matcher.NthChildMatcher{N: *spec.NthChild, OfKind: spec.NthChildOfKind}, nil

	case len(spec.All) > 0:
		subs := make([]matcher.Matcher, 0, len(spec.All))
		for _, s := range spec.All {
			sub, err := compileMatcher(s, language, utils)
			if err != nil {
				return nil, err
			}
			subs = append(subs, sub)
		}
		return matcher.All{Matchers: subs}, nil

	case len(spec.Any) > 0:
		subs := make([]matcher.Matcher, 0, len(spec.Any))
		for _, s := range spec.Any {
			sub, err := compileMatcher(s, language, utils)
			if err != nil {
				return nil, err
			}
			subs = append(subs, sub)
		}
		return matcher.Any{Matchers: subs}, nil

	case spec.Not != nil:
		sub, err := compileMatcher(*spec.Not, language, utils)
		if err != nil {
			return nil, err
		}
		return matcher.Not{Matcher: sub}, nil

	case spec.Matches != "":
		return matcher.Matches{Utils: utils, Name: spec.Matches}, nil

	case spec.Inside != nil:
		return compileRelation(*spec.Inside, language, utils, func(sub matcher.Matcher, immediate bool, until matcher.Matcher) matcher.Matcher {
			return matcher.Inside{Sub: sub, Immediate: immediate, Until: until}
		})

	case spec.Has != nil:
		return compileRelation(*spec.Has, language, utils, func(sub matcher.Matcher, immediate bool, until matcher.Matcher) matcher.Matcher {
			return matcher.Has{Sub: sub, Immediate: immediate, Until: until}
		})

	case spec.Precedes != nil:
		return compileRelation(*spec.Precedes, language, utils, func(sub matcher.Matcher, immediate bool, _ matcher.Matcher) matcher.Matcher {
			return matcher.Precedes{Sub: sub, Immediate: immediate}
		})

	case spec.Follows != nil:
		return compileRelation(*spec.Follows, language, utils, func(sub matcher.Matcher, immediate bool, _ matcher.Matcher) matcher.Matcher {
			return matcher.Follows{Sub: sub, Immediate: immediate}
		})

	default:
		return nil, fmt.Errorf("empty matcher spec")
	}
}

func compileRelation(
	rel RelationSpec,
	language lang.Language,
	utils map[string]matcher.Matcher,
	build func(sub matcher.Matcher, immediate bool, until matcher.Matcher) matcher.Matcher,
) (matcher.Matcher, error) {
	sub, err := compileMatcher(rel.MatcherSpec, language, utils)
	if err != nil {
		return nil, err
	}
	var until matcher.Matcher
	if rel.Until != nil {
		until, err = compileMatcher(*rel.Until, language, utils)
		if err != nil {
			return nil, err
		}
	}
	return build(sub, rel.Immediate, until), nil
}

func strictnessFromString(s string) matcher.Strictness {
	switch s {
	case "cst":
		return matcher.Cst
	case "ast":
		return matcher.AST
	case "relaxed":
		return matcher.Relaxed
	case "signature":
		return matcher.Signature
	default:
		return matcher.Smart
	}
}

func compileTransform(name string, spec TransformSpec) (transform.Transform, error) {
	switch {
	case spec.Substring != nil:
		return transform.Substring{
			Target: name,
			Source: spec.Substring.Source,
			Start:  spec.Substring.StartChar,
			End:    spec.Substring.EndChar,
		}, nil
	case spec.Replace != nil:
		re, err := regexp.Compile(spec.Replace.Replace)
		if err != nil {
			return nil, fmt.Errorf("replace regex %q: %w", spec.Replace.Replace, err)
		}
		return transform.Replace{
			Target: name,
			Source: spec.Replace.Source,
			Match:  re,
			By:     spec.Replace.By,
		}, nil
	case spec.Convert != nil:
		return transform.Convert{
			Target:      name,
			Source:      spec.Convert.Source,
			ToCase:      spec.Convert.ToCase,
			SeparatedBy: spec.Convert.SeparatedBy,
		}, nil
	case spec.Rewrite != nil:
		return transform.Rewrite{
			Target:  name,
			Source:  spec.Rewrite.Source,
			RuleIDs: spec.Rewrite.Rewriters,
			JoinBy:  spec.Rewrite.JoinBy,
		}, nil
	default:
		return nil, fmt.Errorf("empty transform spec")
	}
}
