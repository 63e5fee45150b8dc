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

// Ident is a case-sensitive identifier. The empty string is reserved to
// mean "no alias" on unrenamed imports.
type Ident = string

// Pos is an offset into the source text, attached to every node by the
// front-end.
type Pos int

// Node wraps an AST site together with every grammatically valid
// interpretation the front-end admitted for it. Alts is never empty; after
// resolution it holds exactly one element.
type Node[T any] struct {
	Pos  Pos
	Alts []T
}

// One wraps a single interpretation.
func One[T any](pos Pos, alt T) *Node[T] {
	return &Node[T]{Pos: pos, Alts: []T{alt}}
}

// Amb wraps several alternative interpretations of the same site.
func Amb[T any](pos Pos, alts ...T) *Node[T] {
	return &Node[T]{Pos: pos, Alts: alts}
}

// First returns the first alternative.
func (n *Node[T]) First() T {
	return n.Alts[0]
}

// Len returns the number of alternatives.
func (n *Node[T]) Len() int {
	return len(n.Alts)
}

// Placed is a position-annotated node with exactly one interpretation;
// the shape of every node in a resolved tree.
type Placed[T any] struct {
	Pos Pos
	It  T
}

// Placed views a resolved node as its unique interpretation.
func (n *Node[T]) Placed() Placed[T] {
	return Placed[T]{Pos: n.Pos, It: n.Alts[0]}
}

// QualIdent is a possibly module-qualified identifier. Module is empty for
// a bare name.
type QualIdent struct {
	Module Ident
	Name   Ident
}

// Unqual makes an unqualified identifier.
func Unqual(name Ident) QualIdent {
	return QualIdent{Name: name}
}

// Qual makes a module-qualified identifier.
func Qual(module, name Ident) QualIdent {
	return QualIdent{Module: module, Name: name}
}

// IsQualified reports whether q carries a module part.
func (q QualIdent) IsQualified() bool {
	return q.Module != ""
}

func (q QualIdent) String() string {
	if q.IsQualified() {
		return string(q.Module) + "." + string(q.Name)
	}
	return string(q.Name)
}

// AccessMode is the export mark attached to a declared name.
type AccessMode int

const (
	PrivateOnly AccessMode = iota
	Exported
	ExportedReadOnly
)

// IdentDef is a declared name together with its export mark.
type IdentDef struct {
	Name   Ident
	Access AccessMode
}

// Def is shorthand for an unexported IdentDef.
func Def(name Ident) IdentDef {
	return IdentDef{Name: name}
}

// Export is shorthand for an exported IdentDef.
func Export(name Ident) IdentDef {
	return IdentDef{Name: name, Access: Exported}
}

// Import is one entry of a module's import list. Alias is empty when the
// module is imported under its own name.
type Import struct {
	Pos    Pos
	Alias  Ident
	Module Ident
}

// Module is a compilation unit as produced by the front-end.
type Module struct {
	Name    Ident
	Imports []Import
	Decls   []*Node[Declaration]
	Body    []*Node[Statement]
}

// DeclKind discriminates Declaration.
type DeclKind int

const (
	DeclConst DeclKind = iota
	DeclType
	DeclVar
	DeclProcedure
	DeclForward
)

// Declaration is one entry of a declaration sequence. The populated fields
// depend on Kind: constants carry Name and Expr, types Name and Type,
// variables Names and Type, procedures Head and Body, forward declarations
// Head only.
type Declaration struct {
	Kind  DeclKind
	Name  IdentDef
	Names []IdentDef
	Type  *Node[Type]
	Expr  *Node[Expression]
	Head  *Node[ProcHeading]
	Body  *Node[ProcBody]
}

// BoundNames lists the names a declaration introduces into its scope.
func (d Declaration) BoundNames() []IdentDef {
	switch d.Kind {
	case DeclVar:
		return d.Names
	case DeclProcedure, DeclForward:
		return []IdentDef{d.Head.First().Name}
	default:
		return []IdentDef{d.Name}
	}
}

// TypeKind discriminates Type.
type TypeKind int

const (
	TypeName TypeKind = iota
	TypeArray
	TypeRecord
	TypePointer
	TypeProc
)

// Type is a type constructor. A TypeName stays a name reference after
// resolution; it is name-checked, not inlined.
type Type struct {
	Kind   TypeKind
	Name   QualIdent         // TypeName
	Len    *Node[Expression] // TypeArray; nil for an open array
	Elem   *Node[Type]       // TypeArray element, TypePointer base
	Base   *QualIdent        // TypeRecord base type
	Fields []FieldList       // TypeRecord
	Params *FormalParams     // TypeProc
}

// NamedType builds a TypeName node.
func NamedType(pos Pos, q QualIdent) *Node[Type] {
	return One(pos, Type{Kind: TypeName, Name: q})
}

// FieldList is one field group of a record type.
type FieldList struct {
	Names []IdentDef
	Type  *Node[Type]
}

// ExprKind discriminates Expression.
type ExprKind int

const (
	ExprRead ExprKind = iota
	ExprCall
	ExprIsA
	ExprBinary
	ExprUnary
	ExprLiteral
	ExprSet
)

// Expression is an expression node. Read carries Des; Call carries Des and
// Args; IsA carries Lhs and Test; Binary carries Op, Lhs, Rhs; Unary Op and
// Lhs; Literal Val; Set Elems (ranges appear as ".." binary nodes).
type Expression struct {
	Kind  ExprKind
	Des   *Node[Designator]
	Args  []*Node[Expression]
	Op    string
	Lhs   *Node[Expression]
	Rhs   *Node[Expression]
	Test  QualIdent
	Val   interface{}
	Elems []*Node[Expression]
}

// Read builds an expression reading a designator.
func Read(des *Node[Designator]) Expression {
	return Expression{Kind: ExprRead, Des: des}
}

// Call builds a function-call expression.
func Call(des *Node[Designator], args ...*Node[Expression]) Expression {
	return Expression{Kind: ExprCall, Des: des, Args: args}
}

// Literal builds a literal expression.
func Literal(val interface{}) Expression {
	return Expression{Kind: ExprLiteral, Val: val}
}

// Binary builds a binary expression.
func Binary(op string, lhs, rhs *Node[Expression]) Expression {
	return Expression{Kind: ExprBinary, Op: op, Lhs: lhs, Rhs: rhs}
}

// DesigKind discriminates Designator.
type DesigKind int

const (
	DesigName DesigKind = iota
	DesigField
	DesigIndex
	DesigDeref
	DesigGuard
	DesigCall
)

// Designator denotes a storage location: a named entity, a record field,
// an array element, a pointer dereference, a type guard, or a call whose
// result is selected further. The resolver fills Decl on every DesigName,
// binding the use to its declaration.
type Designator struct {
	Kind  DesigKind
	Name  QualIdent           // DesigName
	Decl  *DeclarationRHS     // DesigName, set by resolution
	Base  *Node[Designator]   // all other kinds
	Field Ident               // DesigField
	Index []*Node[Expression] // DesigIndex
	Guard QualIdent           // DesigGuard subtype
	Args  []*Node[Expression] // DesigCall
}

// NameRef builds a bare-name designator node.
func NameRef(pos Pos, q QualIdent) *Node[Designator] {
	return One(pos, Designator{Kind: DesigName, Name: q})
}

// StmtKind discriminates Statement.
type StmtKind int

const (
	StmtAssign StmtKind = iota
	StmtCall
	StmtIf
	StmtWhile
	StmtRepeat
	StmtLoop
	StmtExit
	StmtReturn
	StmtFor
	StmtWith
)

// Elsif is one ELSIF arm of an IF statement.
type Elsif struct {
	Cond *Node[Expression]
	Body []*Node[Statement]
}

// Statement is a statement node. Assign carries Des and Expr; Call Des and
// Args; If Expr, Body, Elsifs, Else; While/Repeat Expr and Body; For Des,
// Expr, Limit, By, Body; With Des, Guard, Body, Else; Return an optional
// Expr.
type Statement struct {
	Kind   StmtKind
	Des    *Node[Designator]
	Args   []*Node[Expression]
	Expr   *Node[Expression]
	Limit  *Node[Expression]
	By     *Node[Expression]
	Guard  QualIdent
	Body   []*Node[Statement]
	Elsifs []Elsif
	Else   []*Node[Statement]
}

// Assign builds an assignment statement.
func Assign(des *Node[Designator], rhs *Node[Expression]) Statement {
	return Statement{Kind: StmtAssign, Des: des, Expr: rhs}
}

// CallStmt builds a procedure-call statement.
func CallStmt(des *Node[Designator], args ...*Node[Expression]) Statement {
	return Statement{Kind: StmtCall, Des: des, Args: args}
}

// Receiver is the receiver section of an Oberon-2 type-bound procedure
// heading. Type names a record or pointer type declared in the same module.
type Receiver struct {
	Name Ident
	Type Ident
	Var  bool
}

// FPSection is one group of formal parameters sharing a type.
type FPSection struct {
	Var   bool
	Names []Ident
	Type  *Node[Type]
}

// FormalParams is the formal parameter list of a procedure heading or
// procedure type.
type FormalParams struct {
	Sections []FPSection
}

// ProcHeading is a procedure heading, plain or type-bound.
type ProcHeading struct {
	Receiver *Receiver
	Name     IdentDef
	Params   *FormalParams
	Return   *QualIdent
}

// ProcBody is a procedure body: local declarations, a statement sequence
// and an optional RETURN expression.
type ProcBody struct {
	Decls  []*Node[Declaration]
	Stmts  []*Node[Statement]
	Return *Node[Expression]
}
