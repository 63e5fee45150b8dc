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

import "sort"

// ResolvedModule is the output of resolving one module: the disambiguated
// tree, the module's global scope over the predefined environment, and the
// scope of its exported names.
type ResolvedModule struct {
	Name    Ident
	Imports []Import
	Decls   []*Node[Declaration]
	Body    []*Node[Statement]
	Globals *Scope
	Exports *Scope
}

// importMap keys each imported module by its alias if present, else by its
// own name. An entry whose effective key is the empty string is silently
// discarded (the convention for an unnamed self-import). Two imports
// colliding under one local name yield ClashingImports.
func importMap(m *Module) (map[Ident]Ident, Errors) {
	out := make(map[Ident]Ident)
	var errs Errors
	for _, imp := range m.Imports {
		key := imp.Alias
		if key == "" {
			key = imp.Module
		}
		if key == "" {
			continue
		}
		if _, dup := out[key]; dup {
			errs = append(errs, errName(ClashingImports, imp.Pos, Unqual(key)))
			continue
		}
		out[key] = imp.Module
	}
	return out, errs
}

// exportedNames lists the top-level names of m whose access mode is not
// PrivateOnly, with the binding kind each will carry.
func exportedNames(m *Module) []*cell {
	var out []*cell
	for _, n := range m.Decls {
		first := n.First()
		kind := rhsKindOf(first)
		for _, id := range first.BoundNames() {
			if id.Access == PrivateOnly {
				continue
			}
			out = append(out, &cell{
				name:    id.Name,
				pos:     n.Pos,
				kind:    kind,
				builtin: first.Kind == DeclProcedure && m.Name == "SYSTEM",
			})
		}
	}
	return out
}

// exportScope builds the scope of m's exported names. globals is consulted
// lazily, binding by binding, so that mutually importing modules resolve
// coherently: an export is only forced when another module actually uses
// it.
func exportScope(m *Module, globals func() *Scope) *Scope {
	s := NewScope(nil)
	for _, c := range exportedNames(m) {
		c := c
		name := c.name
		c.resolve = func() (*DeclarationRHS, Errors) {
			rhs, errs, found := globals().LookupLocal(name)
			if !found {
				return nil, Errors{errName(UnknownImport, c.pos, Qual(m.Name, name))}
			}
			return rhs, errs
		}
		s.insert(c)
	}
	return s
}

// materialize produces the resolved tree of m against its completed global
// scope: every declaration disambiguated and every body statement
// resolved. No resolution state is carried at module level; each
// statement sets the state of its own designators and expressions. All
// diagnostics of the module are aggregated into one list.
func materialize(r *resolver, m *Module, globals *Scope) ([]*Node[Declaration], []*Node[Statement], Errors) {
	var all Errors
	decls := make([]*Node[Declaration], len(m.Decls))
	for i, d := range m.Decls {
		resolved, errs := r.declaration(globals, m.Name, d)
		if len(errs) > 0 {
			all = append(all, errs...)
			continue
		}
		decls[i] = resolved
	}
	body, errs := r.statements(globals, m.Body)
	all = append(all, errs...)
	return decls, body, all
}

// ResolveModule resolves one module against a table of already-computed
// export scopes, keyed by module name. The module's own global scope is
// built over predef.
func ResolveModule(predef *Scope, table map[Ident]*Scope, m *Module) (*ResolvedModule, Errors) {
	im, errs := importMap(m)
	mods := make(map[Ident]*Scope)
	keys := make([]Ident, 0, len(im))
	for key := range im {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		exp, ok := table[im[key]]
		if !ok {
			errs = append(errs, errName(UnknownModule, 0, Unqual(im[key])))
			continue
		}
		mods[key] = exp
	}

	r := newResolver(mods)
	globals, serrs := r.localScope(m.Name, m.Decls, predef)
	errs = append(errs, serrs...)

	decls, body, merrs := materialize(r, m, globals)
	errs = append(errs, merrs...)
	if len(errs) > 0 {
		return nil, errs
	}

	return &ResolvedModule{
		Name:    m.Name,
		Imports: m.Imports,
		Decls:   decls,
		Body:    body,
		Globals: globals,
		Exports: exportScope(m, func() *Scope { return globals }),
	}, nil
}

// ResolveModules resolves a set of modules that may import each other.
// Export scopes are materialized lazily, so cycles in the import graph
// resolve coherently as long as no exported binding ultimately requires
// its own value. Results are keyed by module name; a module that fails
// appears in the error map instead.
func ResolveModules(predef *Scope, mods map[Ident]*Module) (map[Ident]*ResolvedModule, map[Ident]Errors) {
	type modState struct {
		r       *resolver
		globals *Scope
		errs    Errors
		built   bool
	}
	states := make(map[Ident]*modState)
	exports := make(map[Ident]*Scope)

	names := make([]Ident, 0, len(mods))
	for name := range mods {
		names = append(names, name)
		states[name] = &modState{}
	}
	sort.Strings(names)

	var ensure func(name Ident) *modState
	ensure = func(name Ident) *modState {
		st := states[name]
		if st.built {
			return st
		}
		st.built = true
		m := mods[name]
		im, errs := importMap(m)
		st.errs = errs
		table := make(map[Ident]*Scope)
		keys := make([]Ident, 0, len(im))
		for key := range im {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			target := im[key]
			exp, ok := exports[target]
			if !ok {
				st.errs = append(st.errs, errName(UnknownModule, 0, Unqual(target)))
				continue
			}
			table[key] = exp
		}
		st.r = newResolver(table)
		globals, serrs := st.r.localScope(m.Name, m.Decls, predef)
		st.globals = globals
		st.errs = append(st.errs, serrs...)
		return st
	}

	for _, name := range names {
		name := name
		exports[name] = exportScope(mods[name], func() *Scope {
			return ensure(name).globals
		})
	}

	resolved := make(map[Ident]*ResolvedModule)
	failed := make(map[Ident]Errors)
	for _, name := range names {
		st := ensure(name)
		m := mods[name]
		decls, body, merrs := materialize(st.r, m, st.globals)
		errs := append(append(Errors{}, st.errs...), merrs...)
		if len(errs) > 0 {
			failed[name] = errs
			continue
		}
		resolved[name] = &ResolvedModule{
			Name:    m.Name,
			Imports: m.Imports,
			Decls:   decls,
			Body:    body,
			Globals: st.globals,
			Exports: exports[name],
		}
	}
	return resolved, failed
}
