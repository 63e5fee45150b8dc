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

// ResolutionState tells an identifier lookup what the surrounding
// production expects. A type name in an expression-like position is a
// value error unless the state is ExpressionOrTypeState, which arises for
// the arguments of builtin procedures. The subtype of a type guard is
// resolved as a type name directly and needs no state.
type ResolutionState int

const (
	ModuleState ResolutionState = iota
	DeclarationState
	StatementState
	ExpressionState
	ExpressionOrTypeState
)

// resolver carries the context of one module's resolution: the table of
// visible imported modules (keyed by local import name) and the per-node
// memo of disambiguated declarations. Scopes travel as parameters.
type resolver struct {
	mods     map[Ident]*Scope
	declMemo map[*Node[Declaration]]*declBinding
}

func newResolver(mods map[Ident]*Scope) *resolver {
	return &resolver{
		mods:     mods,
		declMemo: make(map[*Node[Declaration]]*declBinding),
	}
}

// errNone marks a reduction site whose zero-success failure propagates the
// aggregated alternative errors unwrapped.
const errNone ErrKind = -1

// reduce drives disambiguation of one wrapped site: every alternative is
// attempted, a unique success is selected, zero successes fail with the
// retained error sets of all alternatives, and multiple successes fail as
// ambiguous. A single-alternative node is trivially disambiguated and its
// failure propagates unwrapped.
func reduce[T any](n *Node[T], try func(Pos, T) (T, Errors), invalid, ambiguous ErrKind) (*Node[T], Errors) {
	if len(n.Alts) == 0 {
		return nil, Errors{{Kind: AmbiguousParses, Pos: n.Pos, Text: "node without alternatives"}}
	}
	if len(n.Alts) == 1 {
		out, errs := try(n.Pos, n.Alts[0])
		if len(errs) > 0 {
			return nil, errs
		}
		return One(n.Pos, out), nil
	}
	var chosen []T
	var all Errors
	for _, alt := range n.Alts {
		out, errs := try(n.Pos, alt)
		if len(errs) > 0 {
			all = append(all, errs...)
			continue
		}
		chosen = append(chosen, out)
	}
	switch len(chosen) {
	case 1:
		return One(n.Pos, chosen[0]), nil
	case 0:
		if invalid == errNone {
			return nil, all
		}
		return nil, Errors{errWrap(invalid, n.Pos, all)}
	default:
		return nil, Errors{errAmbiguous(ambiguous, n.Pos, len(chosen))}
	}
}

// resolveName resolves a qualified or unqualified identifier use. A
// binding present but in an error state surfaces its own diagnostics.
func (r *resolver) resolveName(sc *Scope, pos Pos, q QualIdent) (*DeclarationRHS, Errors) {
	if q.IsQualified() {
		exp, ok := r.mods[q.Module]
		if !ok {
			return nil, Errors{errName(UnknownModule, pos, q)}
		}
		rhs, errs, found := exp.LookupLocal(q.Name)
		if !found {
			return nil, Errors{errName(UnknownImport, pos, q)}
		}
		if len(errs) > 0 {
			return nil, errs
		}
		return rhs, nil
	}
	rhs, errs, found := sc.Lookup(q.Name)
	if !found {
		return nil, Errors{errName(UnknownLocal, pos, Unqual(q.Name))}
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return rhs, nil
}

// resolveTypeName resolves q and requires the result to denote a type.
func (r *resolver) resolveTypeName(sc *Scope, pos Pos, q QualIdent) Errors {
	rhs, errs := r.resolveName(sc, pos, q)
	if len(errs) > 0 {
		return errs
	}
	if rhs.Kind != RHSType {
		return Errors{errName(NotAType, pos, q)}
	}
	return nil
}

// checkTypeName name-checks a type reference without forcing the
// referent's right-hand side, so that recursive type declarations tie the
// knot instead of cycling.
func (r *resolver) checkTypeName(sc *Scope, pos Pos, q QualIdent) Errors {
	if q.IsQualified() {
		exp, ok := r.mods[q.Module]
		if !ok {
			return Errors{errName(UnknownModule, pos, q)}
		}
		kind, _, found := exp.kindOfLocal(q.Name)
		if !found {
			return Errors{errName(UnknownImport, pos, q)}
		}
		if kind != RHSType {
			return Errors{errName(NotAType, pos, q)}
		}
		return nil
	}
	kind, _, found := sc.kindOf(q.Name)
	if !found {
		return Errors{errName(UnknownLocal, pos, Unqual(q.Name))}
	}
	if kind != RHSType {
		return Errors{errName(NotAType, pos, q)}
	}
	return nil
}

// ----------------------------------------------------------------------
// Designators

func (r *resolver) designator(sc *Scope, st ResolutionState, n *Node[Designator]) (*Node[Designator], Errors) {
	return reduce(n, func(pos Pos, d Designator) (Designator, Errors) {
		return r.desigAlt(sc, st, pos, d)
	}, errNone, AmbiguousDesignator)
}

func (r *resolver) desigAlt(sc *Scope, st ResolutionState, pos Pos, d Designator) (Designator, Errors) {
	switch d.Kind {
	case DesigName:
		rhs, errs := r.resolveName(sc, pos, d.Name)
		if len(errs) > 0 {
			return d, errs
		}
		if rhs.Kind == RHSType && st != ExpressionOrTypeState {
			return d, Errors{errName(NotAValue, pos, d.Name)}
		}
		d.Decl = rhs
		return d, nil

	case DesigField:
		base, errs := r.designator(sc, st, d.Base)
		if len(errs) > 0 {
			return d, errs
		}
		d.Base = base
		return d, nil

	case DesigDeref:
		base, errs := r.designator(sc, st, d.Base)
		if len(errs) > 0 {
			return d, errs
		}
		d.Base = base
		return d, nil

	case DesigGuard:
		base, errs := r.record(sc, d.Base)
		if len(errs) > 0 {
			return d, errs
		}
		if errs := r.resolveTypeName(sc, pos, d.Guard); len(errs) > 0 {
			return d, errs
		}
		d.Base = base
		return d, nil

	case DesigIndex:
		base, errs := r.designator(sc, st, d.Base)
		if len(errs) > 0 {
			return d, errs
		}
		index, errs := r.expressions(sc, ExpressionState, d.Index)
		if len(errs) > 0 {
			return d, errs
		}
		d.Base = base
		d.Index = index
		return d, nil

	default: // DesigCall
		base, errs := r.designator(sc, st, d.Base)
		if len(errs) > 0 {
			return d, errs
		}
		args, errs := r.expressions(sc, ExpressionState, d.Args)
		if len(errs) > 0 {
			return d, errs
		}
		d.Base = base
		d.Args = args
		return d, nil
	}
}

// record resolves a designator required to denote a record-valued
// location: a type is still a value error here, and a procedure is
// NotARecord.
func (r *resolver) record(sc *Scope, n *Node[Designator]) (*Node[Designator], Errors) {
	return reduce(n, func(pos Pos, d Designator) (Designator, Errors) {
		return r.recordAlt(sc, pos, d)
	}, InvalidRecord, AmbiguousRecord)
}

func (r *resolver) recordAlt(sc *Scope, pos Pos, d Designator) (Designator, Errors) {
	if d.Kind != DesigName {
		return r.desigAlt(sc, ExpressionState, pos, d)
	}
	rhs, errs := r.resolveName(sc, pos, d.Name)
	if len(errs) > 0 {
		return d, errs
	}
	switch rhs.Kind {
	case RHSType:
		return d, Errors{errName(NotAValue, pos, d.Name)}
	case RHSProc:
		return d, Errors{errName(NotARecord, pos, d.Name)}
	}
	d.Decl = rhs
	return d, nil
}

// ----------------------------------------------------------------------
// Expressions

func (r *resolver) expression(sc *Scope, st ResolutionState, n *Node[Expression]) (*Node[Expression], ResolutionState, Errors) {
	out, errs := reduce(n, func(pos Pos, e Expression) (Expression, Errors) {
		return r.exprAlt(sc, st, pos, e)
	}, InvalidExpression, AmbiguousExpression)
	// A Read keeps the incoming state; refinement stays local to calls.
	return out, st, errs
}

func (r *resolver) expressions(sc *Scope, st ResolutionState, list []*Node[Expression]) ([]*Node[Expression], Errors) {
	var all Errors
	out := make([]*Node[Expression], len(list))
	for i, e := range list {
		resolved, _, errs := r.expression(sc, st, e)
		if len(errs) > 0 {
			all = append(all, errs...)
			continue
		}
		out[i] = resolved
	}
	if len(all) > 0 {
		return nil, all
	}
	return out, nil
}

func (r *resolver) exprAlt(sc *Scope, st ResolutionState, pos Pos, e Expression) (Expression, Errors) {
	switch e.Kind {
	case ExprRead:
		des, errs := r.designator(sc, st, e.Des)
		if len(errs) > 0 {
			return e, errs
		}
		e.Des = des
		return e, nil

	case ExprCall:
		return r.callAlt(sc, st, pos, e)

	case ExprIsA:
		lhs, _, errs := r.expression(sc, ExpressionState, e.Lhs)
		if len(errs) > 0 {
			return e, errs
		}
		if errs := r.resolveTypeName(sc, pos, e.Test); len(errs) > 0 {
			return e, errs
		}
		e.Lhs = lhs
		return e, nil

	case ExprBinary:
		lhs, _, errs := r.expression(sc, ExpressionState, e.Lhs)
		if len(errs) > 0 {
			return e, errs
		}
		rhs, _, errs := r.expression(sc, ExpressionState, e.Rhs)
		if len(errs) > 0 {
			return e, errs
		}
		e.Lhs = lhs
		e.Rhs = rhs
		return e, nil

	case ExprUnary:
		lhs, _, errs := r.expression(sc, ExpressionState, e.Lhs)
		if len(errs) > 0 {
			return e, errs
		}
		e.Lhs = lhs
		return e, nil

	case ExprSet:
		elems, errs := r.expressions(sc, ExpressionState, e.Elems)
		if len(errs) > 0 {
			return e, errs
		}
		e.Elems = elems
		return e, nil

	default: // ExprLiteral
		return e, nil
	}
}

// callAlt resolves a call expression. A callee that is a bare name
// denoting a builtin procedure accepts types among its arguments, so the
// argument context is promoted to ExpressionOrTypeState; a non-builtin
// callee whose arguments fail reports InvalidFunctionParameters wrapping
// the argument errors.
func (r *resolver) callAlt(sc *Scope, st ResolutionState, pos Pos, e Expression) (Expression, Errors) {
	des, errs := r.designator(sc, st, e.Des)
	if len(errs) > 0 {
		return e, errs
	}
	builtin := r.isBuiltinCallee(sc, des)
	argSt := ExpressionState
	if builtin {
		argSt = ExpressionOrTypeState
	}
	args, argErrs := r.expressions(sc, argSt, e.Args)
	if len(argErrs) > 0 {
		if builtin {
			return e, argErrs
		}
		return e, Errors{errWrap(InvalidFunctionParameters, pos, argErrs)}
	}
	e.Des = des
	e.Args = args
	return e, nil
}

func (r *resolver) isBuiltinCallee(sc *Scope, des *Node[Designator]) bool {
	if des.Len() != 1 || des.First().Kind != DesigName {
		return false
	}
	rhs, errs := r.resolveName(sc, des.Pos, des.First().Name)
	if len(errs) > 0 {
		return false
	}
	return rhs.Kind == RHSProc && rhs.Builtin
}

// ----------------------------------------------------------------------
// Statements

func (r *resolver) statement(sc *Scope, n *Node[Statement]) (*Node[Statement], Errors) {
	return reduce(n, func(pos Pos, s Statement) (Statement, Errors) {
		return r.stmtAlt(sc, pos, s)
	}, InvalidStatement, AmbiguousStatement)
}

func (r *resolver) statements(sc *Scope, list []*Node[Statement]) ([]*Node[Statement], Errors) {
	var all Errors
	out := make([]*Node[Statement], len(list))
	for i, s := range list {
		resolved, errs := r.statement(sc, s)
		if len(errs) > 0 {
			all = append(all, errs...)
			continue
		}
		out[i] = resolved
	}
	if len(all) > 0 {
		return nil, all
	}
	return out, nil
}

func (r *resolver) stmtAlt(sc *Scope, pos Pos, s Statement) (Statement, Errors) {
	switch s.Kind {
	case StmtAssign:
		des, errs := r.designator(sc, ExpressionState, s.Des)
		if len(errs) > 0 {
			return s, errs
		}
		rhs, _, errs := r.expression(sc, ExpressionState, s.Expr)
		if len(errs) > 0 {
			return s, errs
		}
		s.Des = des
		s.Expr = rhs
		return s, nil

	case StmtCall:
		des, errs := r.designator(sc, StatementState, s.Des)
		if len(errs) > 0 {
			return s, errs
		}
		argSt := ExpressionState
		builtin := r.isBuiltinCallee(sc, des)
		if builtin {
			argSt = ExpressionOrTypeState
		}
		args, argErrs := r.expressions(sc, argSt, s.Args)
		if len(argErrs) > 0 {
			if builtin {
				return s, argErrs
			}
			return s, Errors{errWrap(InvalidFunctionParameters, pos, argErrs)}
		}
		s.Des = des
		s.Args = args
		return s, nil

	case StmtIf:
		cond, _, errs := r.expression(sc, ExpressionState, s.Expr)
		if len(errs) > 0 {
			return s, errs
		}
		body, errs := r.statements(sc, s.Body)
		if len(errs) > 0 {
			return s, errs
		}
		elsifs := make([]Elsif, len(s.Elsifs))
		for i, arm := range s.Elsifs {
			c, _, errs := r.expression(sc, ExpressionState, arm.Cond)
			if len(errs) > 0 {
				return s, errs
			}
			b, errs := r.statements(sc, arm.Body)
			if len(errs) > 0 {
				return s, errs
			}
			elsifs[i] = Elsif{Cond: c, Body: b}
		}
		els, errs := r.statements(sc, s.Else)
		if len(errs) > 0 {
			return s, errs
		}
		s.Expr = cond
		s.Body = body
		s.Elsifs = elsifs
		s.Else = els
		return s, nil

	case StmtWhile, StmtRepeat:
		cond, _, errs := r.expression(sc, ExpressionState, s.Expr)
		if len(errs) > 0 {
			return s, errs
		}
		body, errs := r.statements(sc, s.Body)
		if len(errs) > 0 {
			return s, errs
		}
		s.Expr = cond
		s.Body = body
		return s, nil

	case StmtLoop:
		body, errs := r.statements(sc, s.Body)
		if len(errs) > 0 {
			return s, errs
		}
		s.Body = body
		return s, nil

	case StmtExit:
		return s, nil

	case StmtReturn:
		if s.Expr == nil {
			return s, nil
		}
		val, _, errs := r.expression(sc, ExpressionState, s.Expr)
		if len(errs) > 0 {
			return s, errs
		}
		s.Expr = val
		return s, nil

	case StmtFor:
		des, errs := r.designator(sc, ExpressionState, s.Des)
		if len(errs) > 0 {
			return s, errs
		}
		from, _, errs := r.expression(sc, ExpressionState, s.Expr)
		if len(errs) > 0 {
			return s, errs
		}
		limit, _, errs := r.expression(sc, ExpressionState, s.Limit)
		if len(errs) > 0 {
			return s, errs
		}
		by := s.By
		if by != nil {
			var errs Errors
			by, _, errs = r.expression(sc, ExpressionState, by)
			if len(errs) > 0 {
				return s, errs
			}
		}
		body, errs := r.statements(sc, s.Body)
		if len(errs) > 0 {
			return s, errs
		}
		s.Des = des
		s.Expr = from
		s.Limit = limit
		s.By = by
		s.Body = body
		return s, nil

	default: // StmtWith
		des, errs := r.record(sc, s.Des)
		if len(errs) > 0 {
			return s, errs
		}
		if errs := r.resolveTypeName(sc, pos, s.Guard); len(errs) > 0 {
			return s, errs
		}
		body, errs := r.statements(sc, s.Body)
		if len(errs) > 0 {
			return s, errs
		}
		els, errs := r.statements(sc, s.Else)
		if len(errs) > 0 {
			return s, errs
		}
		s.Des = des
		s.Body = body
		s.Else = els
		return s, nil
	}
}

// ----------------------------------------------------------------------
// Types

func (r *resolver) typ(sc *Scope, n *Node[Type]) (*Node[Type], Errors) {
	return reduce(n, func(pos Pos, t Type) (Type, Errors) {
		return r.typAlt(sc, pos, t)
	}, errNone, AmbiguousParses)
}

func (r *resolver) typAlt(sc *Scope, pos Pos, t Type) (Type, Errors) {
	switch t.Kind {
	case TypeName:
		return t, r.checkTypeName(sc, pos, t.Name)

	case TypeArray:
		if t.Len != nil {
			length, _, errs := r.expression(sc, ExpressionState, t.Len)
			if len(errs) > 0 {
				return t, errs
			}
			t.Len = length
		}
		elem, errs := r.typ(sc, t.Elem)
		if len(errs) > 0 {
			return t, errs
		}
		t.Elem = elem
		return t, nil

	case TypeRecord:
		if t.Base != nil {
			if errs := r.checkTypeName(sc, pos, *t.Base); len(errs) > 0 {
				return t, errs
			}
		}
		fields := make([]FieldList, len(t.Fields))
		for i, fl := range t.Fields {
			ft, errs := r.typ(sc, fl.Type)
			if len(errs) > 0 {
				return t, errs
			}
			fields[i] = FieldList{Names: fl.Names, Type: ft}
		}
		t.Fields = fields
		return t, nil

	case TypePointer:
		elem, errs := r.typ(sc, t.Elem)
		if len(errs) > 0 {
			return t, errs
		}
		t.Elem = elem
		return t, nil

	default: // TypeProc
		params, errs := r.formalParams(sc, t.Params)
		if len(errs) > 0 {
			return t, errs
		}
		t.Params = params
		return t, nil
	}
}

func (r *resolver) formalParams(sc *Scope, fp *FormalParams) (*FormalParams, Errors) {
	if fp == nil {
		return nil, nil
	}
	sections := make([]FPSection, len(fp.Sections))
	for i, sec := range fp.Sections {
		t, errs := r.typ(sc, sec.Type)
		if len(errs) > 0 {
			return nil, errs
		}
		sections[i] = FPSection{Var: sec.Var, Names: sec.Names, Type: t}
	}
	return &FormalParams{Sections: sections}, nil
}

// ----------------------------------------------------------------------
// Procedure headings and bodies

func (r *resolver) heading(sc *Scope, n *Node[ProcHeading]) (*Node[ProcHeading], Errors) {
	return reduce(n, func(pos Pos, h ProcHeading) (ProcHeading, Errors) {
		return r.headingAlt(sc, pos, h)
	}, errNone, AmbiguousParses)
}

func (r *resolver) headingAlt(sc *Scope, pos Pos, h ProcHeading) (ProcHeading, Errors) {
	if h.Receiver != nil {
		if errs := r.checkTypeName(sc, pos, Unqual(h.Receiver.Type)); len(errs) > 0 {
			return h, errs
		}
	}
	params, errs := r.formalParams(sc, h.Params)
	if len(errs) > 0 {
		return h, errs
	}
	if h.Return != nil {
		if errs := r.checkTypeName(sc, pos, *h.Return); len(errs) > 0 {
			return h, errs
		}
	}
	h.Params = params
	return h, nil
}

// headingScope builds the scope a procedure body opens over: one variable
// binding per formal parameter, plus the receiver of a type-bound
// procedure.
func (r *resolver) headingScope(outer *Scope, pos Pos, h ProcHeading) (*Scope, Errors) {
	hs := NewScope(outer)
	var errs Errors
	if h.Receiver != nil {
		recv := &DeclarationRHS{Kind: RHSVar, Type: NamedType(pos, Unqual(h.Receiver.Type))}
		hs.insertDone(h.Receiver.Name, pos, recv)
	}
	if h.Params != nil {
		for _, sec := range h.Params.Sections {
			for _, name := range sec.Names {
				rhs := &DeclarationRHS{Kind: RHSVar, Type: sec.Type}
				if !hs.insertDone(name, pos, rhs) {
					errs = append(errs, errName(ClashingImports, pos, Unqual(name)))
				}
			}
		}
	}
	return hs, errs
}

func (r *resolver) procBody(outer *Scope, n *Node[ProcBody]) (*Node[ProcBody], Errors) {
	return reduce(n, func(pos Pos, pb ProcBody) (ProcBody, Errors) {
		return r.bodyAlt(outer, pos, pb)
	}, errNone, AmbiguousParses)
}

func (r *resolver) bodyAlt(outer *Scope, pos Pos, pb ProcBody) (ProcBody, Errors) {
	ls, errs := r.localScope("", pb.Decls, outer)
	if len(errs) > 0 {
		return pb, errs
	}
	decls := make([]*Node[Declaration], len(pb.Decls))
	var all Errors
	for i, d := range pb.Decls {
		resolved, errs := r.declaration(ls, "", d)
		if len(errs) > 0 {
			all = append(all, errs...)
			continue
		}
		decls[i] = resolved
	}
	stmts, errs := r.statements(ls, pb.Stmts)
	all = append(all, errs...)
	var ret *Node[Expression]
	if pb.Return != nil {
		var errs Errors
		ret, _, errs = r.expression(ls, ExpressionState, pb.Return)
		all = append(all, errs...)
	}
	if len(all) > 0 {
		return pb, all
	}
	pb.Decls = decls
	pb.Stmts = stmts
	pb.Return = ret
	return pb, nil
}

// ----------------------------------------------------------------------
// Declarations and the scope builder

// declBinding memoizes the disambiguation of one declaration site: the
// chosen alternative with its right-hand side resolved, and the resulting
// binding per declared name. The procedure body, if any, is resolved later
// in the tree-production phase so that mutually recursive procedures can
// call each other through completed bindings.
type declBinding struct {
	done    bool
	running bool
	chosen  Declaration
	errs    Errors
	rhs     map[Ident]*DeclarationRHS
}

func (r *resolver) binding(n *Node[Declaration]) *declBinding {
	b, ok := r.declMemo[n]
	if !ok {
		b = &declBinding{}
		r.declMemo[n] = b
	}
	return b
}

func (r *resolver) bindDecl(n *Node[Declaration], sc *Scope, moduleName Ident, b *declBinding) {
	if b.done || b.running {
		return
	}
	b.running = true
	defer func() { b.running = false; b.done = true }()

	chosen, errs := reduce(n, func(pos Pos, d Declaration) (Declaration, Errors) {
		return r.bindAlt(sc, pos, d)
	}, errNone, AmbiguousDeclaration)
	if len(errs) > 0 {
		b.errs = errs
		return
	}
	b.chosen = chosen.First()
	b.rhs = make(map[Ident]*DeclarationRHS)
	d := b.chosen
	switch d.Kind {
	case DeclConst:
		b.rhs[d.Name.Name] = &DeclarationRHS{Kind: RHSConst, Expr: d.Expr}
	case DeclType:
		b.rhs[d.Name.Name] = &DeclarationRHS{Kind: RHSType, Type: d.Type}
	case DeclVar:
		for _, id := range d.Names {
			b.rhs[id.Name] = &DeclarationRHS{Kind: RHSVar, Type: d.Type}
		}
	default: // DeclProcedure, DeclForward
		h := d.Head.First()
		b.rhs[h.Name.Name] = &DeclarationRHS{
			Kind:    RHSProc,
			Builtin: d.Kind == DeclProcedure && moduleName == "SYSTEM",
			Params:  h.Params,
		}
	}
}

// bindAlt resolves the binding parts of one declaration alternative: the
// constant expression, the declared type, or the procedure heading.
func (r *resolver) bindAlt(sc *Scope, pos Pos, d Declaration) (Declaration, Errors) {
	switch d.Kind {
	case DeclConst:
		expr, _, errs := r.expression(sc, ExpressionState, d.Expr)
		if len(errs) > 0 {
			return d, errs
		}
		d.Expr = expr
		return d, nil

	case DeclType, DeclVar:
		t, errs := r.typ(sc, d.Type)
		if len(errs) > 0 {
			return d, errs
		}
		d.Type = t
		return d, nil

	default: // DeclProcedure, DeclForward
		h, errs := r.heading(sc, d.Head)
		if len(errs) > 0 {
			return d, errs
		}
		d.Head = h
		return d, nil
	}
}

// rhsKindOf reports the binding kind a declaration alternative will
// produce, without resolving anything.
func rhsKindOf(d Declaration) RHSKind {
	switch d.Kind {
	case DeclConst:
		return RHSConst
	case DeclType:
		return RHSType
	case DeclVar:
		return RHSVar
	default:
		return RHSProc
	}
}

// localScope builds the scope of one declaration sequence over outer. All
// names are registered first, then each right-hand side resolves lazily
// against the completed scope, so declaration order never matters and
// mutual recursion works. The returned errors are the structural ones:
// names bound twice in the same sequence.
func (r *resolver) localScope(moduleName Ident, decls []*Node[Declaration], outer *Scope) (*Scope, Errors) {
	s := NewScope(outer)
	var errs Errors
	for _, n := range decls {
		n := n
		b := r.binding(n)
		first := n.First()
		kind := rhsKindOf(first)
		builtin := first.Kind == DeclProcedure && moduleName == "SYSTEM"
		for _, id := range first.BoundNames() {
			name := id.Name
			c := &cell{
				name:    name,
				pos:     n.Pos,
				kind:    kind,
				builtin: builtin,
				resolve: func() (*DeclarationRHS, Errors) {
					r.bindDecl(n, s, moduleName, b)
					if !b.done {
						// re-entered the binding currently being
						// resolved: a value cycling into itself
						return nil, Errors{errName(UnknownLocal, n.Pos, Unqual(name))}
					}
					if len(b.errs) > 0 {
						return nil, b.errs
					}
					return b.rhs[name], nil
				},
			}
			if !s.insert(c) {
				clash := errName(ClashingImports, n.Pos, Unqual(name))
				errs = append(errs, clash)
				s.insertFailed(name, n.Pos, kind, Errors{clash})
			}
		}
	}
	return s, errs
}

// declaration materializes one declaration site in the output tree: the
// memoized binding resolution picks the alternative, and a procedure's
// body is resolved here, in a fresh scope over the heading scope.
func (r *resolver) declaration(sc *Scope, moduleName Ident, n *Node[Declaration]) (*Node[Declaration], Errors) {
	b := r.binding(n)
	r.bindDecl(n, sc, moduleName, b)
	if len(b.errs) > 0 {
		return nil, b.errs
	}
	chosen := b.chosen
	if chosen.Kind == DeclProcedure {
		h := chosen.Head.First()
		hs, errs := r.headingScope(sc, chosen.Head.Pos, h)
		if len(errs) > 0 {
			return nil, errs
		}
		body, errs := r.procBody(hs, chosen.Body)
		if len(errs) > 0 {
			return nil, errs
		}
		chosen.Body = body
	}
	return One(n.Pos, chosen), nil
}
