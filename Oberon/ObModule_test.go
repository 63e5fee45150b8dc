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

func recordType() *Node[Type] {
	return One(0, Type{Kind: TypeRecord})
}

func TestImportedTypeResolves(t *testing.T) {
	// MODULE A; TYPE t* = RECORD END; END A.
	// MODULE B; IMPORT A; VAR v: A.t; END B.
	a := &Module{
		Name:  "A",
		Decls: []*Node[Declaration]{typeDecl(Export("t"), recordType())},
	}
	b := &Module{
		Name:    "B",
		Imports: []Import{{Module: "A"}},
		Decls:   []*Node[Declaration]{varDeclQ("v", Qual("A", "t"))},
	}
	resolved, failed := ResolveModules(Predefined(), map[Ident]*Module{"A": a, "B": b})
	require.Empty(t, failed)
	require.Len(t, resolved, 2)

	rhs, errs, found := resolved["A"].Exports.LookupLocal("t")
	require.True(t, found)
	require.Empty(t, errs)
	assert.Equal(t, RHSType, rhs.Kind)

	v, _, _ := resolved["B"].Globals.Lookup("v")
	assert.Equal(t, RHSVar, v.Kind)
	assert.Equal(t, Qual("A", "t"), v.Type.First().Name)
}

func TestPrivateNamesAreNotExported(t *testing.T) {
	a := &Module{
		Name: "A",
		Decls: []*Node[Declaration]{
			varDecl("p", "INTEGER"),
			One(0, Declaration{Kind: DeclVar, Names: []IdentDef{Export("q")}, Type: NamedType(0, Unqual("INTEGER"))}),
		},
	}
	b := &Module{
		Name:    "B",
		Imports: []Import{{Module: "A"}},
		Body: []*Node[Statement]{
			assignStmt(10, "x", readName(14, Qual("A", "p"))),
		},
		Decls: []*Node[Declaration]{varDecl("x", "INTEGER")},
	}
	_, failed := ResolveModules(Predefined(), map[Ident]*Module{"A": a, "B": b})
	require.Contains(t, failed, Ident("B"))
	e := failed["B"].Find(UnknownImport)
	require.NotNil(t, e)
	assert.Equal(t, Qual("A", "p"), e.Name)
}

func TestReadOnlyExportIsVisible(t *testing.T) {
	a := &Module{
		Name: "A",
		Decls: []*Node[Declaration]{
			One(0, Declaration{
				Kind:  DeclVar,
				Names: []IdentDef{{Name: "count", Access: ExportedReadOnly}},
				Type:  NamedType(0, Unqual("INTEGER")),
			}),
		},
	}
	b := &Module{
		Name:    "B",
		Imports: []Import{{Module: "A"}},
		Decls:   []*Node[Declaration]{varDecl("x", "INTEGER")},
		Body:    []*Node[Statement]{assignStmt(10, "x", readName(14, Qual("A", "count")))},
	}
	_, failed := ResolveModules(Predefined(), map[Ident]*Module{"A": a, "B": b})
	assert.Empty(t, failed)
}

func TestImportAlias(t *testing.T) {
	a := &Module{
		Name:  "A",
		Decls: []*Node[Declaration]{typeDecl(Export("t"), recordType())},
	}
	b := &Module{
		Name:    "B",
		Imports: []Import{{Alias: "X", Module: "A"}},
		Decls:   []*Node[Declaration]{varDeclQ("v", Qual("X", "t"))},
	}
	_, failed := ResolveModules(Predefined(), map[Ident]*Module{"A": a, "B": b})
	assert.Empty(t, failed)

	// under an alias, the original module name is not visible
	c := &Module{
		Name:    "C",
		Imports: []Import{{Alias: "X", Module: "A"}},
		Decls:   []*Node[Declaration]{varDeclQ("v", Qual("A", "t"))},
	}
	_, failed = ResolveModules(Predefined(), map[Ident]*Module{"A": a, "C": c})
	require.Contains(t, failed, Ident("C"))
	assert.True(t, failed["C"].Has(UnknownModule))
}

func TestClashingImports(t *testing.T) {
	a := &Module{Name: "A"}
	b := &Module{Name: "B"}
	m := &Module{
		Name: "M",
		Imports: []Import{
			{Module: "A"},
			{Pos: 9, Alias: "A", Module: "B"},
		},
	}
	_, failed := ResolveModules(Predefined(), map[Ident]*Module{"A": a, "B": b, "M": m})
	require.Contains(t, failed, Ident("M"))
	e := failed["M"].Find(ClashingImports)
	require.NotNil(t, e)
	assert.Equal(t, Unqual("A"), e.Name)
	assert.Equal(t, Pos(9), e.Pos)
}

func TestEmptyAliasEntryIsDropped(t *testing.T) {
	// the unnamed self-import convention: an entry keyed by the empty
	// string disappears from the import map
	m := &Module{
		Name:    "M",
		Imports: []Import{{Alias: "", Module: ""}},
		Decls:   []*Node[Declaration]{varDecl("x", "INTEGER")},
		Body:    []*Node[Statement]{assignStmt(10, "x", intLit(1))},
	}
	rm, errs := ResolveModule(Predefined(), nil, m)
	require.Empty(t, errs)
	require.NotNil(t, rm)
}

func TestUnknownModuleImport(t *testing.T) {
	b := &Module{
		Name:    "B",
		Imports: []Import{{Module: "Z"}},
	}
	_, failed := ResolveModules(Predefined(), map[Ident]*Module{"B": b})
	require.Contains(t, failed, Ident("B"))
	e := failed["B"].Find(UnknownModule)
	require.NotNil(t, e)
	assert.Equal(t, Unqual("Z"), e.Name)
}

func TestMutuallyImportingModules(t *testing.T) {
	// A and B each use a type exported by the other; lazy export scopes
	// let the cycle resolve.
	a := &Module{
		Name:    "A",
		Imports: []Import{{Module: "B"}},
		Decls: []*Node[Declaration]{
			typeDecl(Export("t"), recordType()),
			varDeclQ("x", Qual("B", "u")),
		},
	}
	b := &Module{
		Name:    "B",
		Imports: []Import{{Module: "A"}},
		Decls: []*Node[Declaration]{
			typeDecl(Export("u"), recordType()),
			varDeclQ("y", Qual("A", "t")),
		},
	}
	resolved, failed := ResolveModules(Predefined(), map[Ident]*Module{"A": a, "B": b})
	require.Empty(t, failed)
	assert.Len(t, resolved, 2)
}

func TestCrossModuleConstant(t *testing.T) {
	a := &Module{
		Name:  "A",
		Decls: []*Node[Declaration]{constDecl(Export("c"), intLit(1))},
	}
	b := &Module{
		Name:    "B",
		Imports: []Import{{Module: "A"}},
		Decls: []*Node[Declaration]{
			constDecl(Def("d"), One(10, Binary("+", readName(14, Qual("A", "c")), intLit(1)))),
		},
	}
	resolved, failed := ResolveModules(Predefined(), map[Ident]*Module{"A": a, "B": b})
	require.Empty(t, failed)

	d, errs, _ := resolved["B"].Globals.Lookup("d")
	require.Empty(t, errs)
	assert.Equal(t, RHSConst, d.Kind)
}

func TestResolveModuleAgainstTable(t *testing.T) {
	a := &Module{
		Name:  "A",
		Decls: []*Node[Declaration]{typeDecl(Export("t"), recordType())},
	}
	rmA, errs := ResolveModule(Predefined(), nil, a)
	require.Empty(t, errs)

	b := &Module{
		Name:    "B",
		Imports: []Import{{Module: "A"}},
		Decls:   []*Node[Declaration]{varDeclQ("v", Qual("A", "t"))},
	}
	rmB, errs := ResolveModule(Predefined(), map[Ident]*Scope{"A": rmA.Exports}, b)
	require.Empty(t, errs)
	assert.Equal(t, Qual("A", "t"), rmB.Decls[0].First().Type.First().Name)
}

func TestPredefinedOnlyModule(t *testing.T) {
	// resolution against the empty module table succeeds iff only
	// predefined and local names are used
	m := &Module{
		Name:  "M",
		Decls: []*Node[Declaration]{varDecl("x", "INTEGER")},
		Body: []*Node[Statement]{
			assignStmt(10, "x", One[Expression](14, Call(NameRef(14, Unqual("ABS")), readName(18, Unqual("x"))))),
		},
	}
	rm, errs := ResolveModule(Predefined(), nil, m)
	require.Empty(t, errs)
	require.NotNil(t, rm)

	bad := &Module{
		Name: "M",
		Body: []*Node[Statement]{assignStmt(10, "x", intLit(1))},
	}
	_, errs = ResolveModule(Predefined(), nil, bad)
	assert.True(t, errs.Has(UnknownLocal))
}

func TestSystemModuleProceduresAreBuiltin(t *testing.T) {
	// procedures declared in a module named SYSTEM accept types as
	// arguments at their use sites
	system := &Module{
		Name: "SYSTEM",
		Decls: []*Node[Declaration]{
			One(0, Declaration{
				Kind: DeclProcedure,
				Head: One(0, ProcHeading{Name: Export("VAL")}),
				Body: One(0, ProcBody{}),
			}),
		},
	}
	m := &Module{
		Name:    "M",
		Imports: []Import{{Module: "SYSTEM"}},
		Decls:   []*Node[Declaration]{varDecl("n", "INTEGER")},
		Body: []*Node[Statement]{
			assignStmt(20, "n", One[Expression](24,
				Call(NameRef(24, Qual("SYSTEM", "VAL")), readName(35, Unqual("INTEGER"))))),
		},
	}
	_, failed := ResolveModules(Predefined(), map[Ident]*Module{"SYSTEM": system, "M": m})
	assert.Empty(t, failed)
}

func TestPerModuleErrorLists(t *testing.T) {
	good := &Module{
		Name:  "Good",
		Decls: []*Node[Declaration]{varDecl("x", "INTEGER")},
	}
	bad := &Module{
		Name: "Bad",
		Body: []*Node[Statement]{assignStmt(10, "gone", intLit(1))},
	}
	resolved, failed := ResolveModules(Predefined(), map[Ident]*Module{"Good": good, "Bad": bad})
	assert.Contains(t, resolved, Ident("Good"))
	assert.NotContains(t, resolved, Ident("Bad"))
	require.Contains(t, failed, Ident("Bad"))
	assert.True(t, failed["Bad"].Has(UnknownLocal))
}
