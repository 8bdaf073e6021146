package config

import "github.com/bmatcuk/doublestar/v4"

// WildcardExternal builds an ExternalMatcher from a glob pattern, the same
// `*`-wildcard convention esbuild's own --external flag documents (e.g.
// "external:react*" excludes every specifier starting with "react" from
// the bundle). Matching is delegated to doublestar rather than hand-rolled,
// since doublestar already implements `**`/`*`/`?` glob semantics the
// pack's other tools rely on.
func WildcardExternal(pattern string) ExternalMatcher {
	return func(specifier string, _ string, _ bool) bool {
		ok, err := doublestar.Match(pattern, specifier)
		return err == nil && ok
	}
}
