// Package diag defines the diagnostic types produced by the parser and
// the semantic pipeline. The design mirrors cue/errors — an Error
// interface plus a List aggregator — narrowed to the five pipeline
// error kinds plus a parser SyntaxError code, rendered in the
// "file:line:col: error: message" form the CLI contract requires.
package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dfrunza/ashp4c-go/token"
)

// Code classifies a diagnostic. Every fatal condition the pipeline can
// raise maps to exactly one Code; there is no recovery path, so a
// pipeline run either produces zero diagnostics or aborts on the first
// one encountered by the deterministic pre-order pass traversal.
type Code int

const (
	// UnresolvedName: a NAMEREF (or a VAR-namespace name reference)
	// whose lookup returns no declaration.
	UnresolvedName Code = iota + 1
	// AmbiguousName: lookup returned a namespace chain of length > 1.
	AmbiguousName
	// AliasCycle: typedef resolution looped back on itself.
	AliasCycle
	// TypeMismatch: type selection found no TypeSet member compatible
	// with the expected type.
	TypeMismatch
	// AmbiguousType: type selection could not narrow a TypeSet to a
	// single member.
	AmbiguousType
	// SyntaxError: the parser encountered a token it could not fit any
	// production it was attempting.
	SyntaxError
)

func (c Code) String() string {
	switch c {
	case UnresolvedName:
		return "unresolved name"
	case AmbiguousName:
		return "ambiguous name"
	case AliasCycle:
		return "type aliasing cycle"
	case TypeMismatch:
		return "type mismatch"
	case AmbiguousType:
		return "ambiguous type"
	case SyntaxError:
		return "syntax error"
	default:
		return "error"
	}
}

// Error is a single diagnostic with a source position and a classification.
type Error struct {
	Pos  token.Position
	Code Code
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: error: %s", e.Pos, e.Msg)
}

// Newf builds an Error at pos with the given Code and formatted message.
func Newf(pos token.Position, code Code, format string, args ...interface{}) *Error {
	return &Error{Pos: pos, Code: code, Msg: fmt.Sprintf(format, args...)}
}

// List aggregates diagnostics in encounter order. Most callers only
// ever append the first error before aborting — there is no error
// recovery — but List exists so the CLI and tests can inspect every
// diagnostic emitted before the pass that aborted returned.
type List []*Error

func (l List) Error() string {
	var b strings.Builder
	for i, e := range l {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.Error())
	}
	return b.String()
}

// Add appends err to the list.
func (l *List) Add(err *Error) {
	*l = append(*l, err)
}

// Sorted returns a copy of l ordered by source position.
func (l List) Sorted() List {
	out := make(List, len(l))
	copy(out, l)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Pos.Compare(out[j].Pos) < 0
	})
	return out
}

// First returns the first diagnostic in encounter order, or nil.
func (l List) First() *Error {
	if len(l) == 0 {
		return nil
	}
	return l[0]
}
