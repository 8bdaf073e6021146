// Package berrors defines the bundler's exhaustive error kinds (§7). Every
// one is fatal: the first error encountered stops further scheduling and
// already-finished work is discarded, so these are plain error values
// rather than a retryable or partial-failure type.
package berrors

import "fmt"

// ResolveError: no plugin resolved the specifier and it is neither
// absolute, relative, nor declared external.
type ResolveError struct {
	Specifier string
	Importer  string
}

func (e *ResolveError) Error() string {
	if e.Importer == "" {
		return fmt.Sprintf("could not resolve entry %q", e.Specifier)
	}
	return fmt.Sprintf("could not resolve %q from %q", e.Specifier, e.Importer)
}

// LoadError: the filesystem or a plugin reported failure reading a module.
type LoadError struct {
	Id         string
	Underlying error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %q: %v", e.Id, e.Underlying)
}
func (e *LoadError) Unwrap() error { return e.Underlying }

// ParseError is surfaced from the parser verbatim, with the id attached so
// the orchestrator can render an importer chain back to an entry.
type ParseError struct {
	Id      string
	Message string
}

func (e *ParseError) Error() string { return fmt.Sprintf("%s: %s", e.Id, e.Message) }

// ScanError: duplicate declaration, illegal `export default` shape, etc.
type ScanError struct {
	Id     string
	Reason string
}

func (e *ScanError) Error() string { return fmt.Sprintf("%s: %s", e.Id, e.Reason) }

// LinkError: an import names a symbol that does not exist in the resolved
// target, after chasing re-exports.
type LinkError struct {
	Importer   string
	Source     string
	Original   string
	Suggestion string
}

func (e *LinkError) Error() string {
	msg := fmt.Sprintf("%q does not export %q, imported from %q", e.Source, e.Original, e.Importer)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

// DuplicateExport: two `export *` sources contribute the same name with
// different underlying marks.
type DuplicateExport struct {
	Module          string
	Name            string
	Source1, Source2 string
}

func (e *DuplicateExport) Error() string {
	return fmt.Sprintf("%q: ambiguous export %q: both %q and %q export this name", e.Module, e.Name, e.Source1, e.Source2)
}
