/*
** Copyright (C) 2026 the Oberon parser and pretty printer project
**
** This file is part of the Oberon parser and pretty printer project.
**
** GNU Lesser General Public License Usage
** This file may be used under the terms of the GNU Lesser
** General Public License version 2.1 or version 3 as published by the Free
** Software Foundation and appearing in the file LICENSE.LGPLv21 and
** LICENSE.LGPLv3 included in the packaging of this file. Please review the
** following information to ensure the GNU Lesser General Public License
** requirements will be met: https://www.gnu.org/licenses/lgpl.html and
** http://www.gnu.org/licenses/old-licenses/lgpl-2.1.html.
 */

package Oberon

import (
	"fmt"
	"strings"
)

// ErrKind tags a resolution error for programmatic inspection. The set is
// exhaustive and the names are stable.
type ErrKind int

const (
	UnknownModule ErrKind = iota
	UnknownLocal
	UnknownImport
	AmbiguousParses
	AmbiguousDeclaration
	AmbiguousDesignator
	AmbiguousExpression
	AmbiguousRecord
	AmbiguousStatement
	InvalidExpression
	InvalidFunctionParameters
	InvalidRecord
	InvalidStatement
	NotARecord
	NotAType
	NotAValue
	ClashingImports
	UnparseableModule
)

var errKindNames = []string{
	"UnknownModule",
	"UnknownLocal",
	"UnknownImport",
	"AmbiguousParses",
	"AmbiguousDeclaration",
	"AmbiguousDesignator",
	"AmbiguousExpression",
	"AmbiguousRecord",
	"AmbiguousStatement",
	"InvalidExpression",
	"InvalidFunctionParameters",
	"InvalidRecord",
	"InvalidStatement",
	"NotARecord",
	"NotAType",
	"NotAValue",
	"ClashingImports",
	"UnparseableModule",
}

func (k ErrKind) String() string {
	if k < 0 || int(k) >= len(errKindNames) {
		return fmt.Sprintf("ErrKind(%d)", int(k))
	}
	return errKindNames[k]
}

// Error is one positioned resolution diagnostic. Name carries the subject
// identifier where the kind has one; Wrapped carries the retained
// sub-errors of rejected alternatives for the Invalid… kinds; Text carries
// free-form detail (e.g. the surviving alternative count of an Ambiguous…
// kind, or the parser message of an UnparseableModule).
type Error struct {
	Kind    ErrKind
	Pos     Pos
	Name    QualIdent
	Text    string
	Wrapped Errors
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "offset %d: %s", int(e.Pos), e.Kind)
	if e.Name != (QualIdent{}) {
		fmt.Fprintf(&b, " '%s'", e.Name)
	}
	if e.Text != "" {
		fmt.Fprintf(&b, ": %s", e.Text)
	}
	for _, sub := range e.Wrapped {
		b.WriteString("\n\t")
		b.WriteString(strings.ReplaceAll(sub.Error(), "\n", "\n\t"))
	}
	return b.String()
}

// Errors is an ordered list of diagnostics.
type Errors []*Error

func (es Errors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// Has reports whether the list, including wrapped sub-errors, contains a
// diagnostic of the given kind.
func (es Errors) Has(kind ErrKind) bool {
	for _, e := range es {
		if e.Kind == kind || e.Wrapped.Has(kind) {
			return true
		}
	}
	return false
}

// Find returns the first diagnostic of the given kind, searching wrapped
// sub-errors depth-first, or nil.
func (es Errors) Find(kind ErrKind) *Error {
	for _, e := range es {
		if e.Kind == kind {
			return e
		}
		if sub := e.Wrapped.Find(kind); sub != nil {
			return sub
		}
	}
	return nil
}

func errName(kind ErrKind, pos Pos, q QualIdent) *Error {
	return &Error{Kind: kind, Pos: pos, Name: q}
}

func errWrap(kind ErrKind, pos Pos, sub Errors) *Error {
	return &Error{Kind: kind, Pos: pos, Wrapped: sub}
}

func errAmbiguous(kind ErrKind, pos Pos, survivors int) *Error {
	return &Error{Kind: kind, Pos: pos, Text: fmt.Sprintf("%d valid interpretations", survivors)}
}

// ParseFailure wraps a front-end parse failure into the diagnostic
// taxonomy, so that a multi-module build can report unparseable and
// unresolvable modules uniformly.
func ParseFailure(pos Pos, text string) Errors {
	return Errors{{Kind: UnparseableModule, Pos: pos, Text: text}}
}
