// Declaration lowering: specifier combination, declarator application,
// tag handling, and the global/local declaration entry points.
package cgen

import (
	"fmt"

	"github.com/c16lang/c16cc/pkg/cabs"
	"github.com/c16lang/c16cc/pkg/ctypes"
	"github.com/c16lang/c16cc/pkg/diag"
	"github.com/c16lang/c16cc/pkg/ir"
	"github.com/c16lang/c16cc/pkg/scope"
)

// declStorage carries the storage-class outcome of a specifier list.
type declStorage struct {
	typedef bool
	static  bool
	extern  bool
}

// typeFromSpecs combines a declaration-specifier list into a base type
// plus storage classes. Tag specifiers with bodies define their types
// as a side effect.
func (g *Generator) typeFromSpecs(specs []cabs.Spec) (ctypes.Type, declStorage, error) {
	var st declStorage
	var pos diag.Pos
	var nVoid, nChar, nShort, nInt, nLong, nSigned, nUnsigned, nBool, nVaList int
	var rec *cabs.RecSpec
	var enum *cabs.EnumSpec
	var typedefName string

	ordClass := -1
	var ordKind cabs.SpecKind
	for _, s := range specs {
		pos = s.Pos
		if c := specOrderClass(s.Kind); c < ordClass {
			g.rep.Warnf(s.Pos, "'%s' should come before '%s'", s.Kind, ordKind)
		} else if c > ordClass {
			ordClass, ordKind = c, s.Kind
		}
		switch s.Kind {
		case cabs.SpecTypedef:
			if st.typedef {
				g.rep.Warnf(s.Pos, "duplicate 'typedef'")
			}
			st.typedef = true
		case cabs.SpecStatic:
			if st.static {
				g.rep.Warnf(s.Pos, "duplicate 'static'")
			}
			st.static = true
		case cabs.SpecExtern:
			if st.extern {
				g.rep.Warnf(s.Pos, "duplicate 'extern'")
			}
			st.extern = true
		case cabs.SpecAuto, cabs.SpecRegister:
			if g.scope.IsFile() {
				return nil, st, g.rep.Errorf(s.Pos, "illegal storage class '%s' at file scope", s.Kind)
			}
		case cabs.SpecConst, cabs.SpecVolatile:
			// Qualifiers are accepted and dropped; the IR has no
			// qualified loads or stores.
		case cabs.SpecVoid:
			nVoid++
		case cabs.SpecChar:
			nChar++
		case cabs.SpecShort:
			nShort++
		case cabs.SpecInt:
			nInt++
		case cabs.SpecLong:
			nLong++
		case cabs.SpecSigned:
			nSigned++
		case cabs.SpecUnsigned:
			nUnsigned++
		case cabs.SpecBool:
			nBool++
		case cabs.SpecFloat, cabs.SpecDouble:
			return nil, st, g.rep.Errorf(s.Pos, "floating-point types are not supported on this target")
		case cabs.SpecVaList:
			nVaList++
		case cabs.SpecStruct:
			rec = s.Rec
		case cabs.SpecEnum:
			enum = s.Enum
		case cabs.SpecName:
			typedefName = s.Name
		}
	}

	if st.typedef && (st.static || st.extern) {
		return nil, st, g.rep.Errorf(pos, "'typedef' may not be combined with a storage class")
	}
	if st.static && st.extern {
		return nil, st, g.rep.Errorf(pos, "'static' and 'extern' are mutually exclusive")
	}

	nBase := b2i(nVoid > 0) + b2i(nChar > 0) + b2i(nBool > 0) + b2i(nVaList > 0) +
		b2i(rec != nil) + b2i(enum != nil) + b2i(typedefName != "")
	if nBase > 1 || (nBase == 1 && (nShort > 0 || nLong > 0) && nChar == 0) ||
		(nBase == 1 && nInt > 0) {
		return nil, st, g.rep.Errorf(pos, "invalid combination of type specifiers")
	}
	if nSigned > 0 && nUnsigned > 0 {
		return nil, st, g.rep.Errorf(pos, "both 'signed' and 'unsigned' given")
	}
	if nSigned > 1 || nUnsigned > 1 || nVoid > 1 || nChar > 1 || nShort > 1 || nInt > 1 || nBool > 1 {
		return nil, st, g.rep.Errorf(pos, "duplicate type specifier")
	}
	if nInt > 0 && (nShort > 0 || nLong > 0) {
		g.rep.Warnf(pos, "superfluous 'int' in type specifiers")
	}
	unsigned := nUnsigned > 0

	switch {
	case rec != nil:
		t, err := g.recordSpecType(rec)
		return t, st, err
	case enum != nil:
		t, err := g.enumSpecType(enum)
		return t, st, err
	case typedefName != "":
		if nSigned > 0 || nUnsigned > 0 {
			return nil, st, g.rep.Errorf(pos, "'%s' cannot be combined with signedness", typedefName)
		}
		m := g.scope.Lookup(typedefName)
		if m == nil || m.Kind != scope.KTypedef {
			return nil, st, g.rep.Errorf(pos, "unknown type name '%s'", typedefName)
		}
		m.Used = true
		return ctypes.Clone(m.Type), st, nil
	case nVoid > 0:
		if nSigned > 0 || nUnsigned > 0 {
			return nil, st, g.rep.Errorf(pos, "invalid combination of type specifiers")
		}
		return ctypes.Void(), st, nil
	case nVaList > 0:
		return ctypes.VaList(), st, nil
	case nBool > 0:
		if nSigned > 0 || nUnsigned > 0 {
			return nil, st, g.rep.Errorf(pos, "invalid combination of type specifiers")
		}
		return ctypes.Bool(), st, nil
	case nChar > 0:
		if nShort > 0 || nLong > 0 {
			return nil, st, g.rep.Errorf(pos, "invalid combination of type specifiers")
		}
		if unsigned {
			return ctypes.UChar(), st, nil
		}
		return ctypes.Char(), st, nil
	case nShort > 0:
		if nLong > 0 {
			return nil, st, g.rep.Errorf(pos, "both 'short' and 'long' given")
		}
		if unsigned {
			return ctypes.UShort(), st, nil
		}
		return ctypes.Short(), st, nil
	case nLong == 1:
		if unsigned {
			return ctypes.ULong(), st, nil
		}
		return ctypes.Long(), st, nil
	case nLong == 2:
		if unsigned {
			return ctypes.ULongLong(), st, nil
		}
		return ctypes.LongLong(), st, nil
	case nLong > 2:
		return nil, st, g.rep.Errorf(pos, "too many 'long' specifiers")
	case nInt > 0 || nSigned > 0 || nUnsigned > 0:
		if unsigned {
			return ctypes.UInt(), st, nil
		}
		return ctypes.Int(), st, nil
	}
	return nil, st, g.rep.Errorf(pos, "type specifier expected")
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// specOrderClass ranks specifier atoms by their canonical source order:
// storage class, qualifiers, signedness, size, base type. A later atom
// from an earlier class is a style warning, never an error.
func specOrderClass(k cabs.SpecKind) int {
	switch k {
	case cabs.SpecTypedef, cabs.SpecExtern, cabs.SpecStatic, cabs.SpecAuto, cabs.SpecRegister:
		return 0
	case cabs.SpecConst, cabs.SpecVolatile:
		return 1
	case cabs.SpecSigned, cabs.SpecUnsigned:
		return 2
	case cabs.SpecShort, cabs.SpecLong:
		return 3
	}
	return 4
}

// recordSpecType resolves a struct/union specifier: a tag reference or
// a definition with a body.
func (g *Generator) recordSpecType(rs *cabs.RecSpec) (ctypes.Type, error) {
	kind := ctypes.Struct
	if rs.Union {
		kind = ctypes.Union
	}

	if !rs.HasBody {
		if rs.Tag == "" {
			return nil, g.rep.Errorf(rs.Pos, "anonymous %s must have a body", kind)
		}
		if m := g.scope.LookupTag(rs.Tag); m != nil {
			if m.Kind != scope.KRecordTag || m.Rec.Kind != kind {
				return nil, g.rep.Errorf(rs.Pos, "'%s' is not a %s tag", rs.Tag, kind)
			}
			m.Used = true
			return ctypes.RecordType(m.Rec), nil
		}
		// A bare reference introduces the tag, incomplete, in the
		// current scope.
		r := g.records.New(kind, rs.Tag)
		g.scope.Insert(&scope.Member{Kind: scope.KRecordTag, Name: rs.Tag, Rec: r,
			Used: true, Pos: rs.Pos})
		return ctypes.RecordType(r), nil
	}

	var r *ctypes.Record
	if rs.Tag != "" {
		if m := g.scope.LookupTagLocal(rs.Tag); m != nil {
			if m.Kind != scope.KRecordTag || m.Rec.Kind != kind {
				return nil, g.rep.Errorf(rs.Pos, "'%s' already declared as a different tag kind", rs.Tag)
			}
			if m.Rec.Completed {
				return nil, g.rep.Errorf(rs.Pos, "redefinition of %s", m.Rec)
			}
			if m.Rec.Defining {
				return nil, g.rep.Errorf(rs.Pos, "nested redefinition of %s", m.Rec)
			}
			r = m.Rec
			m.Used = true
		}
	}
	if r == nil {
		r = g.records.New(kind, rs.Tag)
		if rs.Tag != "" {
			shadowed, err := g.scope.Insert(&scope.Member{Kind: scope.KRecordTag,
				Name: rs.Tag, Rec: r, Used: true, Pos: rs.Pos})
			if err != nil {
				return nil, g.rep.Errorf(rs.Pos, "%v", err)
			}
			if shadowed != nil {
				g.rep.Warnf(rs.Pos, "%s defined inside a block hides an outer declaration", r)
			}
		}
	}

	g.warnTagScope(r.String(), rs.Pos)

	r.Defining = true
	g.recDepth++
	err := g.recordBody(r, kind, rs.Body)
	g.recDepth--
	r.Defining = false
	if err != nil {
		return nil, err
	}
	r.Completed = true
	if len(r.Elems) == 0 {
		g.rep.Warnf(rs.Pos, "%s has no members", r)
	}
	g.emitRecordDecl(r)
	return ctypes.RecordType(r), nil
}

func (g *Generator) recordBody(r *ctypes.Record, kind ctypes.RecordKind, body []cabs.RecField) error {
	for _, f := range body {
		base, st, err := g.typeFromSpecs(f.Specs)
		if err != nil {
			return err
		}
		if st.typedef || st.static || st.extern {
			return g.rep.Errorf(f.Pos, "storage class in %s member declaration", kind)
		}
		for _, fd := range f.Decls {
			ft, err := g.applyDeclarator(ctypes.Clone(base), fd)
			if err != nil {
				return err
			}
			if fd.Name == "" {
				return g.rep.Errorf(fd.Pos, "member name expected")
			}
			if _, isFn := ft.(ctypes.Tfunction); isFn {
				return g.rep.Errorf(fd.Pos, "member '%s' has function type", fd.Name)
			}
			if _, err := ctypes.SizeOf(ft); err != nil {
				return g.rep.Errorf(fd.Pos, "member '%s' has incomplete type %s", fd.Name, ft)
			}
			if err := r.AddElem(fd.Name, ft); err != nil {
				return g.rep.Errorf(fd.Pos, "%v", err)
			}
		}
	}
	return nil
}

// warnTagScope flags a type defined somewhere its visibility or
// lifetime is likely to surprise: inside another record's body, inside
// a parameter list, or below file scope. Each place gets its own
// message so the reader knows which rule fired.
func (g *Generator) warnTagScope(what string, pos diag.Pos) {
	switch {
	case g.recDepth > 0:
		g.rep.Warnf(pos, "%s defined inside another struct or union definition", what)
	case g.paramDepth > 0:
		g.rep.Warnf(pos, "%s defined inside a parameter list is not visible to callers", what)
	case !g.scope.IsFile():
		g.rep.Warnf(pos, "%s defined in a non-global scope", what)
	}
}

// emitRecordDecl mirrors a completed record definition into the module
// so the IR is self-describing.
func (g *Generator) emitRecordDecl(r *ctypes.Record) {
	decl := &ir.RecordDecl{Name: r.IRName, Union: r.Kind == ctypes.Union}
	for _, e := range r.Elems {
		off, _ := r.Offset(e.Name)
		sz, _ := ctypes.SizeOf(e.Type)
		decl.Fields = append(decl.Fields, ir.RecordField{Name: e.Name, Offset: off, Size: sz})
	}
	g.mod.Records = append(g.mod.Records, decl)
}

// enumSpecType resolves an enum specifier. Unlike records, a bare enum
// tag must reference a completed definition.
func (g *Generator) enumSpecType(es *cabs.EnumSpec) (ctypes.Type, error) {
	if !es.HasBody {
		if es.Tag == "" {
			return nil, g.rep.Errorf(es.Pos, "anonymous enum must have a body")
		}
		m := g.scope.LookupTag(es.Tag)
		if m == nil || m.Kind != scope.KEnumTag {
			return nil, g.rep.Errorf(es.Pos, "unknown enum tag '%s'", es.Tag)
		}
		m.Used = true
		m.Enum.Named = true
		return ctypes.EnumType(m.Enum), nil
	}

	if es.Tag != "" {
		if m := g.scope.LookupTagLocal(es.Tag); m != nil {
			if m.Kind != scope.KEnumTag {
				return nil, g.rep.Errorf(es.Pos, "'%s' already declared as a different tag kind", es.Tag)
			}
			if m.Enum.Defined {
				return nil, g.rep.Errorf(es.Pos, "redefinition of %s", m.Enum)
			}
		}
	}
	e := g.enums.New(es.Tag)
	if es.Tag != "" {
		shadowed, err := g.scope.Insert(&scope.Member{Kind: scope.KEnumTag,
			Name: es.Tag, Enum: e, Used: true, Pos: es.Pos})
		if err != nil {
			return nil, g.rep.Errorf(es.Pos, "%v", err)
		}
		if shadowed != nil {
			g.rep.Warnf(es.Pos, "%s defined inside a block hides an outer declaration", e)
		}
		e.Named = true
	}
	g.warnTagScope(e.String(), es.Pos)

	for _, item := range es.Items {
		var v int64
		if item.Value != nil {
			c, err := g.constExpr(item.Value)
			if err != nil {
				return nil, err
			}
			if err := e.Add(item.Name, c); err != nil {
				return nil, g.rep.Errorf(item.Pos, "%v", err)
			}
			v = c
		} else {
			nv, err := e.AddNext(item.Name)
			if err != nil {
				return nil, g.rep.Errorf(item.Pos, "%v", err)
			}
			v = nv
		}
		if v < -(1<<15) || v >= 1<<15 {
			g.rep.Warnf(item.Pos, "enumerator value %d is out of range for int", v)
		}
		shadowed, err := g.scope.Insert(&scope.Member{Kind: scope.KEnumElem,
			Name: item.Name, Enum: e, Value: v, Used: true, Pos: item.Pos})
		if err != nil {
			return nil, g.rep.Errorf(item.Pos, "%v", err)
		}
		if shadowed != nil {
			g.rep.Warnf(item.Pos, "enumerator '%s' shadows a previous declaration", item.Name)
		}
	}
	e.Defined = true
	return ctypes.EnumType(e), nil
}

// applyDeclarator wraps base in the declarator's modifiers. Mods[0]
// binds closest to the name, so construction runs from the end of the
// list inward.
func (g *Generator) applyDeclarator(base ctypes.Type, d cabs.Declarator) (ctypes.Type, error) {
	t := base
	for i := len(d.Mods) - 1; i >= 0; i-- {
		mod := d.Mods[i]
		switch mod.Kind {
		case cabs.ModPointer:
			t = ctypes.Pointer(t)

		case cabs.ModArray:
			if _, isFn := t.(ctypes.Tfunction); isFn {
				return nil, g.rep.Errorf(mod.Pos, "array of functions")
			}
			if _, isVoid := t.(ctypes.Tvoid); isVoid {
				return nil, g.rep.Errorf(mod.Pos, "array of void")
			}
			size := int64(-1)
			var index ctypes.Type
			if mod.Size != nil {
				c, ct, err := g.constExprTyped(mod.Size)
				if err != nil {
					return nil, err
				}
				if c <= 0 {
					return nil, g.rep.Errorf(mod.Pos, "array size must be positive, got %d", c)
				}
				size = c
				// An extent spelled with an enumerator marks the array
				// as indexed by that enum; indexing it with a different
				// enum warns.
				if _, isEnum := ct.(ctypes.Tenum); isEnum {
					index = ctypes.Clone(ct)
				}
			}
			if size >= 0 {
				if _, err := ctypes.SizeOf(t); err != nil {
					return nil, g.rep.Errorf(mod.Pos, "array of incomplete type %s", t)
				}
			}
			t = ctypes.Tarray{Elem: t, Size: size, Index: index}

		case cabs.ModFunc:
			switch t.(type) {
			case ctypes.Tarray:
				return nil, g.rep.Errorf(mod.Pos, "function returning an array")
			case ctypes.Tfunction:
				return nil, g.rep.Errorf(mod.Pos, "function returning a function")
			}
			params, err := g.paramTypes(mod.Params)
			if err != nil {
				return nil, err
			}
			t = ctypes.Function(t, params, mod.Variadic)
		}
	}
	return t, nil
}

// paramTypes resolves a parameter list to its types. nil means no
// prototype; a non-nil empty list is the explicit (void) prototype.
func (g *Generator) paramTypes(params []cabs.ParamDecl) ([]ctypes.Type, error) {
	if len(params) == 0 {
		return nil, nil
	}
	if len(params) == 1 && isVoidParam(params[0]) {
		return []ctypes.Type{}, nil
	}
	g.paramDepth++
	defer func() { g.paramDepth-- }()
	var out []ctypes.Type
	for _, p := range params {
		base, st, err := g.typeFromSpecs(p.Specs)
		if err != nil {
			return nil, err
		}
		if st.typedef || st.static || st.extern {
			return nil, g.rep.Errorf(p.Pos, "storage class in parameter declaration")
		}
		t, err := g.applyDeclarator(ctypes.Clone(base), p.Decl)
		if err != nil {
			return nil, err
		}
		if _, isVoid := t.(ctypes.Tvoid); isVoid {
			return nil, g.rep.Errorf(p.Pos, "parameter has void type")
		}
		out = append(out, t)
	}
	return out, nil
}

// typeFromTypeName resolves an abstract type name, as used in casts and
// sizeof.
func (g *Generator) typeFromTypeName(tn cabs.TypeName) (ctypes.Type, error) {
	base, st, err := g.typeFromSpecs(tn.Specs)
	if err != nil {
		return nil, err
	}
	if st.typedef || st.static || st.extern {
		return nil, g.rep.Errorf(tn.Pos, "storage class in type name")
	}
	if tn.Decl.Name != "" {
		return nil, g.rep.Errorf(tn.Pos, "unexpected identifier '%s' in type name", tn.Decl.Name)
	}
	return g.applyDeclarator(base, tn.Decl)
}

// GlobalDecl lowers one file-scope declaration.
func (g *Generator) GlobalDecl(d *cabs.Declaration) error {
	base, st, err := g.typeFromSpecs(d.Specs)
	if err != nil {
		return err
	}
	if len(d.Decls) == 0 {
		if !declaresTag(d.Specs) {
			g.rep.Warnf(d.Pos, "declaration does not declare anything")
		}
		return nil
	}
	for _, id := range d.Decls {
		if err := g.globalOne(base, st, id); err != nil {
			return err
		}
	}
	return nil
}

func declaresTag(specs []cabs.Spec) bool {
	for _, s := range specs {
		switch s.Kind {
		case cabs.SpecStruct, cabs.SpecEnum:
			return true
		}
	}
	return false
}

func (g *Generator) globalOne(base ctypes.Type, st declStorage, id cabs.InitDecl) error {
	if id.Decl.Name == "" {
		return g.rep.Errorf(id.Pos, "identifier expected in declaration")
	}
	t, err := g.applyDeclarator(ctypes.Clone(base), id.Decl)
	if err != nil {
		return err
	}

	if st.typedef {
		if id.Init != nil {
			return g.rep.Errorf(id.Pos, "typedef '%s' has an initializer", id.Decl.Name)
		}
		return g.insertTypedef(id.Decl.Name, t, id.Pos)
	}

	if _, isFn := t.(ctypes.Tfunction); isFn {
		if id.Init != nil {
			return g.rep.Errorf(id.Pos, "function '%s' initialized like a variable", id.Decl.Name)
		}
		_, err := g.declareGlobal(id.Decl.Name, t, st, id.Pos)
		return err
	}

	sym, err := g.declareGlobal(id.Decl.Name, t, st, id.Pos)
	if err != nil {
		return err
	}

	if id.Init != nil {
		if st.extern {
			g.rep.Warnf(id.Pos, "'extern' variable '%s' has an initializer", id.Decl.Name)
		}
		if sym.Defined {
			return g.rep.Errorf(id.Pos, "redefinition of '%s'", id.Decl.Name)
		}
		completed, size, data, relocs, err := g.globalInit(sym.Type, id.Init)
		if err != nil {
			return err
		}
		sym.Type = completed
		sym.Defined = true
		delete(g.tentative, sym)
		g.mod.Globals = append(g.mod.Globals, &ir.Global{
			Name: sym.IRName, Size: size, Data: data, Relocs: relocs, Static: sym.Static,
		})
		return nil
	}

	if !st.extern && !sym.Defined {
		if _, err := ctypes.SizeOf(sym.Type); err != nil {
			return g.rep.Errorf(id.Pos, "storage size of '%s' is not known", id.Decl.Name)
		}
		g.tentative[sym] = true
	}
	return nil
}

// declareGlobal finds or creates the directory symbol for a file-scope
// name, composes the types of repeated declarations, and makes the name
// visible in the file scope.
func (g *Generator) declareGlobal(name string, t ctypes.Type, st declStorage, pos diag.Pos) (*scope.Symbol, error) {
	kind := scope.SymVar
	if _, isFn := t.(ctypes.Tfunction); isFn {
		kind = scope.SymFunc
	}
	sym, created := g.syms.Declare(name, kind)
	if !created {
		if sym.Kind != kind {
			return nil, g.rep.Errorf(pos, "'%s' redeclared as a different kind of symbol", name)
		}
		if sym.Type != nil {
			composed, err := ctypes.Compose(sym.Type, t)
			if err != nil {
				return nil, g.rep.Errorf(pos, "conflicting declarations for '%s': %v", name, err)
			}
			t = composed
		}
		if st.static && !sym.Static {
			g.rep.Warnf(pos, "'%s' was previously declared without 'static'", name)
		}
	}
	sym.Type = t
	if st.static {
		sym.Static = true
	}
	if st.extern {
		sym.Extern = true
	}
	if m := g.scope.LookupLocal(name); m == nil {
		g.scope.Insert(&scope.Member{Kind: scope.KGlobal, Name: name,
			Type: ctypes.Clone(t), Sym: sym, Used: true, Pos: pos})
	} else if m.Kind == scope.KGlobal {
		m.Type = ctypes.Clone(t)
	} else {
		return nil, g.rep.Errorf(pos, "'%s' already declared in this scope as %s", name, m.Kind)
	}
	return sym, nil
}

func (g *Generator) insertTypedef(name string, t ctypes.Type, pos diag.Pos) error {
	if e, ok := t.(ctypes.Tenum); ok {
		e.Def.Named = true
	}
	shadowed, err := g.scope.Insert(&scope.Member{Kind: scope.KTypedef, Name: name,
		Type: t, Pos: pos, Used: g.scope.IsFile()})
	if err != nil {
		return g.rep.Errorf(pos, "%v", err)
	}
	if shadowed != nil {
		g.rep.Warnf(pos, "typedef '%s' shadows a previous declaration", name)
	}
	return nil
}

// localDecl lowers one block-scope declaration.
func (g *Generator) localDecl(d *cabs.Declaration) error {
	base, st, err := g.typeFromSpecs(d.Specs)
	if err != nil {
		return err
	}
	if len(d.Decls) == 0 {
		if !declaresTag(d.Specs) {
			g.rep.Warnf(d.Pos, "declaration does not declare anything")
		}
		return nil
	}
	for _, id := range d.Decls {
		if err := g.localOne(base, st, id); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) localOne(base ctypes.Type, st declStorage, id cabs.InitDecl) error {
	if id.Decl.Name == "" {
		return g.rep.Errorf(id.Pos, "identifier expected in declaration")
	}
	t, err := g.applyDeclarator(ctypes.Clone(base), id.Decl)
	if err != nil {
		return err
	}

	if st.typedef {
		if id.Init != nil {
			return g.rep.Errorf(id.Pos, "typedef '%s' has an initializer", id.Decl.Name)
		}
		return g.insertTypedef(id.Decl.Name, t, id.Pos)
	}

	if _, isFn := t.(ctypes.Tfunction); isFn {
		_, err := g.declareGlobal(id.Decl.Name, t, st, id.Pos)
		return err
	}

	if st.extern {
		if id.Init != nil {
			return g.rep.Errorf(id.Pos, "block-scope 'extern' variable '%s' has an initializer", id.Decl.Name)
		}
		_, err := g.declareGlobal(id.Decl.Name, t, st, id.Pos)
		return err
	}

	if st.static {
		return g.staticLocal(t, id)
	}

	t, err = g.completeFromInit(t, id.Init, id.Pos)
	if err != nil {
		return err
	}
	size, err := ctypes.SizeOf(t)
	if err != nil {
		return g.rep.Errorf(id.Pos, "storage size of '%s' is not known", id.Decl.Name)
	}

	operand := fmt.Sprintf("%s_%d", id.Decl.Name, len(g.proc.Locals))
	g.proc.Locals = append(g.proc.Locals, ir.Local{Name: operand, Size: size})
	m := &scope.Member{Kind: scope.KLocal, Name: id.Decl.Name,
		Type: ctypes.Clone(t), Operand: operand, Pos: id.Pos}
	shadowed, err := g.scope.Insert(m)
	if err != nil {
		return g.rep.Errorf(id.Pos, "%v", err)
	}
	if shadowed != nil {
		g.rep.Warnf(id.Pos, "declaration of '%s' shadows a previous declaration", id.Decl.Name)
	}

	if id.Init != nil {
		addr := g.newVR()
		g.emit(ir.Instr{Op: ir.Addr, Width: 16, Dest: addr, A: varOp(operand)})
		return g.localInit(varOp(addr), t, id.Init)
	}
	return nil
}

// staticLocal gives a block-scope static its own module global, named
// after the enclosing procedure so distinct functions never collide.
func (g *Generator) staticLocal(t ctypes.Type, id cabs.InitDecl) error {
	var err error
	t, err = g.completeFromInit(t, id.Init, id.Pos)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("%s_%s_%d", g.proc.Name, id.Decl.Name, len(g.mod.Globals))
	glob := &ir.Global{Name: name, Static: true}
	if id.Init != nil {
		completed, size, data, relocs, err := g.globalInit(t, id.Init)
		if err != nil {
			return err
		}
		t = completed
		glob.Size = size
		glob.Data = data
		glob.Relocs = relocs
	} else {
		size, err := ctypes.SizeOf(t)
		if err != nil {
			return g.rep.Errorf(id.Pos, "storage size of '%s' is not known", id.Decl.Name)
		}
		glob.Size = size
	}
	g.mod.Globals = append(g.mod.Globals, glob)

	sym := &scope.Symbol{Ident: id.Decl.Name, IRName: name, Kind: scope.SymVar,
		Defined: true, Static: true, Type: t}
	m := &scope.Member{Kind: scope.KGlobal, Name: id.Decl.Name,
		Type: ctypes.Clone(t), Sym: sym, Used: true, Pos: id.Pos}
	shadowed, err := g.scope.Insert(m)
	if err != nil {
		return g.rep.Errorf(id.Pos, "%v", err)
	}
	if shadowed != nil {
		g.rep.Warnf(id.Pos, "declaration of '%s' shadows a previous declaration", id.Decl.Name)
	}
	return nil
}
