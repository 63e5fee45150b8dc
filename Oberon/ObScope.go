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

// RHSKind discriminates DeclarationRHS.
type RHSKind int

const (
	RHSConst RHSKind = iota
	RHSType
	RHSVar
	RHSProc
)

var rhsKindNames = []string{"constant", "type", "variable", "procedure"}

func (k RHSKind) String() string {
	return rhsKindNames[k]
}

// DeclarationRHS describes what a name denotes. The embedded nodes are
// resolved: their identifier references have been name-checked and every
// wrapped site reduced to a single interpretation.
type DeclarationRHS struct {
	Kind    RHSKind
	Expr    *Node[Expression] // RHSConst
	Type    *Node[Type]       // RHSType, RHSVar
	Builtin bool              // RHSProc: accepts types as arguments
	Params  *FormalParams     // RHSProc, optional
}

// cellState tracks the lazy resolution of one binding.
type cellState int

const (
	cellPending cellState = iota
	cellInProgress
	cellDone
	cellFailed
)

// cell is one scope binding. The declared kind and builtin mark are known
// syntactically at registration time and may be read without forcing the
// right-hand side; force runs the resolve closure once and memoizes.
// A lookup never observes an in-progress binding: re-entry fails the cell,
// which is only reachable through a constant whose value cycles into
// itself (types and procedures complete before their references are
// chased).
type cell struct {
	name    Ident
	pos     Pos
	kind    RHSKind
	builtin bool
	state   cellState
	resolve func() (*DeclarationRHS, Errors)
	rhs     *DeclarationRHS
	errs    Errors
}

func (c *cell) force() (*DeclarationRHS, Errors) {
	switch c.state {
	case cellDone:
		return c.rhs, nil
	case cellFailed:
		return nil, c.errs
	case cellInProgress:
		c.state = cellFailed
		c.errs = Errors{errName(UnknownLocal, c.pos, Unqual(c.name))}
		return nil, c.errs
	}
	c.state = cellInProgress
	rhs, errs := c.resolve()
	if c.state == cellFailed {
		// re-entered while resolving; keep the cycle diagnostic
		return nil, c.errs
	}
	if len(errs) > 0 {
		c.state = cellFailed
		c.errs = errs
		return nil, errs
	}
	c.state = cellDone
	c.rhs = rhs
	return rhs, nil
}

// Scope maps identifiers to declarations. Scopes chain through parent;
// lookup consults the innermost scope first. A scope is immutable once its
// region has been built; bindings resolve lazily but each observes only
// the completed name set.
type Scope struct {
	parent *Scope
	names  []Ident
	elems  map[Ident]*cell
}

// NewScope creates an empty scope over parent.
func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent, elems: make(map[Ident]*cell)}
}

// Parent returns the enclosing scope, or nil.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// insert registers a binding. It reports false if the name is already
// bound in this scope; the caller turns the collision into a diagnostic.
func (s *Scope) insert(c *cell) bool {
	if _, dup := s.elems[c.name]; dup {
		return false
	}
	s.elems[c.name] = c
	s.names = append(s.names, c.name)
	return true
}

// insertDone registers an already-resolved binding.
func (s *Scope) insertDone(name Ident, pos Pos, rhs *DeclarationRHS) bool {
	return s.insert(&cell{
		name:    name,
		pos:     pos,
		kind:    rhs.Kind,
		builtin: rhs.Builtin,
		state:   cellDone,
		rhs:     rhs,
	})
}

// insertFailed registers a binding whose declaration could not resolve;
// every lookup of the name surfaces the same diagnostics.
func (s *Scope) insertFailed(name Ident, pos Pos, kind RHSKind, errs Errors) {
	old, dup := s.elems[name]
	if dup {
		old.state = cellFailed
		old.errs = errs
		return
	}
	s.insert(&cell{name: name, pos: pos, kind: kind, state: cellFailed, errs: errs})
}

// Lookup resolves name against the scope chain, innermost first. The third
// result is false when no scope binds the name. A binding in an error
// state surfaces its own diagnostics.
func (s *Scope) Lookup(name Ident) (*DeclarationRHS, Errors, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if c, ok := sc.elems[name]; ok {
			rhs, errs := c.force()
			return rhs, errs, true
		}
	}
	return nil, nil, false
}

// LookupLocal resolves name in this scope only.
func (s *Scope) LookupLocal(name Ident) (*DeclarationRHS, Errors, bool) {
	if c, ok := s.elems[name]; ok {
		rhs, errs := c.force()
		return rhs, errs, true
	}
	return nil, nil, false
}

// kindOf reports the declared kind of name without forcing its right-hand
// side. This is what lets recursive types and mutually recursive
// procedures tie the knot: a type reference only needs the referent's
// existence and kind.
func (s *Scope) kindOf(name Ident) (RHSKind, bool, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if c, ok := sc.elems[name]; ok {
			return c.kind, c.builtin, true
		}
	}
	return 0, false, false
}

func (s *Scope) kindOfLocal(name Ident) (RHSKind, bool, bool) {
	if c, ok := s.elems[name]; ok {
		return c.kind, c.builtin, true
	}
	return 0, false, false
}

// Names lists the names bound in this scope, in declaration order.
func (s *Scope) Names() []Ident {
	return append([]Ident(nil), s.names...)
}

// String renders the scope chain for debugging.
func (s *Scope) String() string {
	var b strings.Builder
	s.writeTo(&b, 0)
	return b.String()
}

func (s *Scope) writeTo(b *strings.Builder, depth int) {
	prefix := strings.Repeat("  ", depth)
	fmt.Fprintf(b, "%sscope {\n", prefix)
	for _, name := range s.names {
		c := s.elems[name]
		state := ""
		if c.state == cellFailed {
			state = " (failed)"
		}
		fmt.Fprintf(b, "%s  %s: %s%s\n", prefix, name, c.kind, state)
	}
	if s.parent != nil {
		s.parent.writeTo(b, depth+1)
	}
	fmt.Fprintf(b, "%s}\n", prefix)
}
