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

// Language abstracts the differences between the Oberon and Oberon-2
// dialects that matter to name resolution: which environment is
// predefined, which of its procedures accept types as arguments, and
// whether type-bound procedure headings exist.
type Language interface {
	Name() string
	Predefined() *Scope
	IsBuiltinProcedureName(name Ident) bool
	TypeBound() bool
}

type oberon1 struct{}

func (oberon1) Name() string       { return "Oberon" }
func (oberon1) Predefined() *Scope { return predefined }
func (oberon1) TypeBound() bool    { return false }
func (oberon1) IsBuiltinProcedureName(name Ident) bool {
	return builtinProcNames[name]
}

type oberon2 struct{}

func (oberon2) Name() string       { return "Oberon-2" }
func (oberon2) Predefined() *Scope { return predefined2 }
func (oberon2) TypeBound() bool    { return true }
func (oberon2) IsBuiltinProcedureName(name Ident) bool {
	return builtinProcNames[name]
}

// Oberon and Oberon2 are the two supported language variants.
var (
	Oberon  Language = oberon1{}
	Oberon2 Language = oberon2{}
)

// Predefined returns the Oberon environment: the basic types, TRUE and
// FALSE, and the standard procedures.
func Predefined() *Scope { return predefined }

// Predefined2 returns the Oberon-2 environment: Predefined plus ASSERT.
func Predefined2() *Scope { return predefined2 }

var predefTypeNames = []Ident{
	"BOOLEAN", "CHAR", "SHORTINT", "INTEGER", "LONGINT", "REAL", "LONGREAL", "SET",
}

// builtinProcNames marks the predefined procedures that accept types as
// arguments, e.g. SIZE(INTEGER).
var builtinProcNames = map[Ident]bool{
	"MAX":  true,
	"MIN":  true,
	"SIZE": true,
}

// predefProcs lists the standard procedures with placeholder signatures.
// The parameter types only participate in the resolution machinery; ARRAY
// and POINTER are opaque pseudo-type references that are never entered in
// any scope and never resolved.
var predefProcs = []struct {
	name   Ident
	params []Ident
}{
	{"ABS", []Ident{"INTEGER"}},
	{"ASH", []Ident{"INTEGER", "INTEGER"}},
	{"CAP", []Ident{"CHAR"}},
	{"LEN", []Ident{"ARRAY", "INTEGER"}},
	{"MAX", []Ident{"INTEGER"}},
	{"MIN", []Ident{"INTEGER"}},
	{"ODD", []Ident{"INTEGER"}},
	{"SIZE", []Ident{"INTEGER"}},
	{"ORD", []Ident{"CHAR"}},
	{"CHR", []Ident{"INTEGER"}},
	{"SHORT", []Ident{"INTEGER"}},
	{"LONG", []Ident{"INTEGER"}},
	{"ENTIER", []Ident{"REAL"}},
	{"INC", []Ident{"INTEGER"}},
	{"DEC", []Ident{"INTEGER"}},
	{"INCL", []Ident{"SET", "INTEGER"}},
	{"EXCL", []Ident{"SET", "INTEGER"}},
	{"COPY", []Ident{"ARRAY", "ARRAY"}},
	{"NEW", []Ident{"POINTER"}},
	{"HALT", []Ident{"INTEGER"}},
}

var (
	predefined  *Scope
	predefined2 *Scope
)

func init() {
	predefined = newPredefined(false)
	predefined2 = newPredefined(true)
}

func newPredefined(withAssert bool) *Scope {
	s := NewScope(nil)
	for _, name := range predefTypeNames {
		s.insertDone(name, 0, &DeclarationRHS{
			Kind: RHSType,
			Type: NamedType(0, Unqual(name)),
		})
	}
	s.insertDone("TRUE", 0, &DeclarationRHS{Kind: RHSConst, Expr: One(0, Literal(true))})
	s.insertDone("FALSE", 0, &DeclarationRHS{Kind: RHSConst, Expr: One(0, Literal(false))})
	for _, p := range predefProcs {
		addPredefProc(s, p.name, p.params)
	}
	if withAssert {
		addPredefProc(s, "ASSERT", []Ident{"BOOLEAN"})
	}
	return s
}

func addPredefProc(s *Scope, name Ident, params []Ident) {
	sections := make([]FPSection, len(params))
	argNames := []Ident{"x", "y", "z"}
	for i, p := range params {
		sections[i] = FPSection{
			Names: []Ident{argNames[i%len(argNames)]},
			Type:  NamedType(0, Unqual(p)),
		}
	}
	s.insertDone(name, 0, &DeclarationRHS{
		Kind:    RHSProc,
		Builtin: builtinProcNames[name],
		Params:  &FormalParams{Sections: sections},
	})
}
