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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intRHS(kind RHSKind) *DeclarationRHS {
	return &DeclarationRHS{Kind: kind, Type: NamedType(0, Unqual("INTEGER"))}
}

func TestScopeLookupChain(t *testing.T) {
	parent := NewScope(nil)
	parent.insertDone("a", 0, intRHS(RHSConst))
	child := NewScope(parent)
	child.insertDone("b", 0, intRHS(RHSVar))

	rhs, errs, found := child.Lookup("a")
	require.True(t, found)
	require.Empty(t, errs)
	assert.Equal(t, RHSConst, rhs.Kind)

	rhs, _, found = child.Lookup("b")
	require.True(t, found)
	assert.Equal(t, RHSVar, rhs.Kind)

	_, _, found = parent.Lookup("b")
	assert.False(t, found, "parent must not see child bindings")
}

func TestScopeInnerWins(t *testing.T) {
	parent := NewScope(nil)
	parent.insertDone("n", 0, intRHS(RHSConst))
	child := NewScope(parent)
	child.insertDone("n", 0, intRHS(RHSVar))

	rhs, _, found := child.Lookup("n")
	require.True(t, found)
	assert.Equal(t, RHSVar, rhs.Kind, "inner binding shadows outer")

	rhs, _, _ = parent.Lookup("n")
	assert.Equal(t, RHSConst, rhs.Kind)
}

func TestScopeDuplicateInsert(t *testing.T) {
	s := NewScope(nil)
	assert.True(t, s.insertDone("x", 0, intRHS(RHSVar)))
	assert.False(t, s.insertDone("x", 0, intRHS(RHSConst)))

	rhs, _, _ := s.Lookup("x")
	assert.Equal(t, RHSVar, rhs.Kind, "first binding stays")
}

func TestScopeKindOfDoesNotForce(t *testing.T) {
	s := NewScope(nil)
	forced := false
	s.insert(&cell{
		name: "T",
		kind: RHSType,
		resolve: func() (*DeclarationRHS, Errors) {
			forced = true
			return intRHS(RHSType), nil
		},
	})

	kind, builtin, found := s.kindOf("T")
	require.True(t, found)
	assert.Equal(t, RHSType, kind)
	assert.False(t, builtin)
	assert.False(t, forced, "kindOf must not resolve the right-hand side")

	_, errs, _ := s.Lookup("T")
	require.Empty(t, errs)
	assert.True(t, forced)
}

func TestScopeLookupMemoizes(t *testing.T) {
	s := NewScope(nil)
	calls := 0
	s.insert(&cell{
		name: "x",
		kind: RHSVar,
		resolve: func() (*DeclarationRHS, Errors) {
			calls++
			return intRHS(RHSVar), nil
		},
	})
	first, _, _ := s.Lookup("x")
	second, _, _ := s.Lookup("x")
	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestScopeFailedBindingSurfacesError(t *testing.T) {
	s := NewScope(nil)
	s.insertFailed("bad", 7, RHSVar, Errors{errName(UnknownLocal, 7, Unqual("gone"))})

	rhs, errs, found := s.Lookup("bad")
	require.True(t, found)
	assert.Nil(t, rhs)
	assert.True(t, errs.Has(UnknownLocal))

	_, errs2, _ := s.Lookup("bad")
	assert.Equal(t, errs, errs2, "failure is memoized")
}

func TestScopeCycleFailsCell(t *testing.T) {
	s := NewScope(nil)
	s.insert(&cell{
		name: "a",
		pos:  3,
		kind: RHSConst,
		resolve: func() (*DeclarationRHS, Errors) {
			_, errs, _ := s.Lookup("a")
			return nil, errs
		},
	})

	rhs, errs, found := s.Lookup("a")
	require.True(t, found)
	assert.Nil(t, rhs)
	require.True(t, errs.Has(UnknownLocal))
	assert.Equal(t, Pos(3), errs.Find(UnknownLocal).Pos)
}

func TestScopeNamesKeepDeclarationOrder(t *testing.T) {
	s := NewScope(nil)
	s.insertDone("c", 0, intRHS(RHSConst))
	s.insertDone("a", 0, intRHS(RHSVar))
	s.insertDone("b", 0, intRHS(RHSType))
	assert.Equal(t, []Ident{"c", "a", "b"}, s.Names())
}

func TestScopeString(t *testing.T) {
	parent := NewScope(nil)
	parent.insertDone("T", 0, intRHS(RHSType))
	child := NewScope(parent)
	child.insertDone("x", 0, intRHS(RHSVar))

	out := child.String()
	assert.Contains(t, out, "x: variable")
	assert.Contains(t, out, "T: type")
}

func TestPredefinedEnvironment(t *testing.T) {
	for _, name := range []Ident{"BOOLEAN", "CHAR", "SHORTINT", "INTEGER", "LONGINT", "REAL", "LONGREAL", "SET"} {
		rhs, errs, found := Predefined().Lookup(name)
		require.True(t, found, name)
		require.Empty(t, errs, name)
		assert.Equal(t, RHSType, rhs.Kind, name)
	}
	for _, name := range []Ident{"TRUE", "FALSE"} {
		rhs, _, found := Predefined().Lookup(name)
		require.True(t, found, name)
		assert.Equal(t, RHSConst, rhs.Kind, name)
	}
	for _, name := range []Ident{"ABS", "ASH", "CAP", "LEN", "MAX", "MIN", "ODD", "SIZE", "ORD", "CHR", "SHORT", "LONG", "ENTIER", "INC", "DEC", "INCL", "EXCL", "COPY", "NEW", "HALT"} {
		rhs, _, found := Predefined().Lookup(name)
		require.True(t, found, name)
		require.Equal(t, RHSProc, rhs.Kind, name)
		assert.Equal(t, builtinProcNames[name], rhs.Builtin, name)
	}
}

func TestPredefined2AddsAssert(t *testing.T) {
	_, _, found := Predefined().Lookup("ASSERT")
	assert.False(t, found)

	rhs, _, found := Predefined2().Lookup("ASSERT")
	require.True(t, found)
	assert.Equal(t, RHSProc, rhs.Kind)
	assert.False(t, rhs.Builtin)
}

func TestLanguageVariants(t *testing.T) {
	assert.Equal(t, "Oberon", Oberon.Name())
	assert.Equal(t, "Oberon-2", Oberon2.Name())
	assert.False(t, Oberon.TypeBound())
	assert.True(t, Oberon2.TypeBound())
	assert.Same(t, Predefined(), Oberon.Predefined())
	assert.Same(t, Predefined2(), Oberon2.Predefined())
	assert.True(t, Oberon.IsBuiltinProcedureName("SIZE"))
	assert.False(t, Oberon.IsBuiltinProcedureName("ABS"))
}

func TestErrorFormatting(t *testing.T) {
	e := errName(UnknownImport, 12, Qual("A", "t"))
	assert.Equal(t, "offset 12: UnknownImport 'A.t'", e.Error())

	wrapped := errWrap(InvalidExpression, 5, Errors{errName(UnknownLocal, 6, Unqual("x"))})
	assert.Contains(t, wrapped.Error(), "InvalidExpression")
	assert.Contains(t, wrapped.Error(), "UnknownLocal 'x'")

	es := Errors{e, wrapped}
	assert.True(t, es.Has(UnknownLocal))
	assert.False(t, es.Has(NotAType))
	assert.Equal(t, Unqual("x"), es.Find(UnknownLocal).Name)
}

func TestParseFailure(t *testing.T) {
	errs := ParseFailure(0, "unexpected token END")
	assert.True(t, errs.Has(UnparseableModule))
	assert.Contains(t, errs.Error(), "unexpected token END")
}
