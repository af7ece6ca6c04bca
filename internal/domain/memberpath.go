// Package domain contains the core namespace-to-module conversion logic.
package domain

import (
	m "modulize.dev/pkg/modulize/internal/model"
)

// ResolveMemberPath resolves an expression into a MemberPath. It walks the
// static access chain from the outermost property access down to the
// innermost identifier; any computed segment makes the chain unresolvable.
// A leading global-scope alias is discarded, then a recognized root-object
// name is stripped and reported through rooted.
//
// Resolving `globalAlias.Foo.Bar` and `Foo.Bar` yields the same path.
func ResolveMemberPath(expr *m.Expr, roots, aliases []string) (path m.MemberPath, rooted bool, ok bool) {
	segments, ok := flattenChain(expr)
	if !ok || len(segments) == 0 {
		return nil, false, false
	}

	if contains(aliases, segments[0]) {
		segments = segments[1:]
		if len(segments) == 0 {
			return nil, false, false
		}
	}

	if contains(roots, segments[0]) {
		segments = segments[1:]
		rooted = true

		if len(segments) == 0 {
			return nil, true, false
		}
	}

	return m.MemberPath(segments), rooted, true
}

// InnermostIdent returns the identifier at the base of a member chain,
// or "" when the base is not a plain identifier. It works on chains the
// resolver rejects, which is how computed accesses rooted at a namespace
// root get flagged instead of silently skipped.
func InnermostIdent(expr *m.Expr) string {
	for expr != nil {
		switch expr.Kind {
		case m.ExprIdentifier:
			return expr.Name
		case m.ExprMember:
			expr = expr.Object
		default:
			return ""
		}
	}

	return ""
}

func flattenChain(expr *m.Expr) ([]string, bool) {
	var reversed []string

	for expr != nil {
		switch expr.Kind {
		case m.ExprIdentifier:
			reversed = append(reversed, expr.Name)

			segments := make([]string, 0, len(reversed))
			for i := len(reversed) - 1; i >= 0; i-- {
				segments = append(segments, reversed[i])
			}

			return segments, true
		case m.ExprMember:
			if expr.Computed || expr.Property == "" {
				return nil, false
			}

			reversed = append(reversed, expr.Property)
			expr = expr.Object
		default:
			return nil, false
		}
	}

	return nil, false
}

func contains(names []string, name string) bool {
	for _, candidate := range names {
		if candidate == name {
			return true
		}
	}

	return false
}
