// Initializer lowering. Globals build a byte image with relocations;
// locals turn the initializer tree into addressed stores. Both walk
// the same designator rules: a designator moves the implicit cursor,
// everything after continues from there.
package cgen

import (
	"fmt"

	"github.com/c16lang/c16cc/pkg/cabs"
	"github.com/c16lang/c16cc/pkg/ctypes"
	"github.com/c16lang/c16cc/pkg/diag"
	"github.com/c16lang/c16cc/pkg/ir"
)

// --- String literals ---

// lowerStrLit materializes a string literal as an anonymous static
// global and yields the char-array lvalue referencing it.
func (g *Generator) lowerStrLit(n cabs.StrLit) (*value, error) {
	if n.Wide {
		return nil, g.rep.Errorf(n.Pos, "wide string literals are not supported")
	}
	bytes, err := g.decodeEscapes(n.Raw, n.Pos)
	if err != nil {
		return nil, err
	}
	bytes = append(bytes, 0)

	name := fmt.Sprintf("str_%d", g.nextStr)
	g.nextStr++
	g.mod.Globals = append(g.mod.Globals, &ir.Global{
		Name: name, Size: int64(len(bytes)), Data: bytes, Static: true,
	})
	return &value{
		op:   ir.Sym{Name: name},
		kind: lval,
		typ:  ctypes.ArrayOf(ctypes.Char(), int64(len(bytes))),
		pos:  n.Pos,
	}, nil
}

// decodeEscapes resolves the escape sequences of a string literal body.
func (g *Generator) decodeEscapes(raw string, pos diag.Pos) ([]byte, error) {
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' {
			out = append(out, c)
			continue
		}
		i++
		if i >= len(raw) {
			return nil, g.rep.Errorf(pos, "unterminated escape sequence")
		}
		switch raw[i] {
		case 'n':
			out = append(out, '\n')
		case 't':
			out = append(out, '\t')
		case 'r':
			out = append(out, '\r')
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case 'v':
			out = append(out, '\v')
		case 'a':
			out = append(out, 7)
		case '\\':
			out = append(out, '\\')
		case '\'':
			out = append(out, '\'')
		case '"':
			out = append(out, '"')
		case '?':
			out = append(out, '?')
		case 'x':
			var v, n int
			for i+1 < len(raw) && isHex(raw[i+1]) {
				i++
				v = v*16 + hexVal(raw[i])
				n++
			}
			if n == 0 {
				return nil, g.rep.Errorf(pos, "\\x with no hex digits")
			}
			if v > 0xff {
				g.rep.Warnf(pos, "hex escape value %#x truncated to a byte", v)
			}
			out = append(out, byte(v))
		case '0', '1', '2', '3', '4', '5', '6', '7':
			v := int(raw[i] - '0')
			for n := 1; n < 3 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
				i++
				v = v*8 + int(raw[i]-'0')
			}
			if v > 0xff {
				g.rep.Warnf(pos, "octal escape value %#o truncated to a byte", v)
			}
			out = append(out, byte(v))
		default:
			g.rep.Warnf(pos, "unknown escape sequence '\\%c'", raw[i])
			out = append(out, raw[i])
		}
	}
	return out, nil
}

func isHex(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	default:
		return int(c-'A') + 10
	}
}

// --- Array size completion ---

// completeFromInit fills in an incomplete array size from its
// initializer: a string literal or the extent of a brace list.
func (g *Generator) completeFromInit(t ctypes.Type, init *cabs.InitItem, pos diag.Pos) (ctypes.Type, error) {
	arr, ok := t.(ctypes.Tarray)
	if !ok || arr.Size >= 0 || init == nil {
		return t, nil
	}
	if s, ok := init.Expr.(cabs.StrLit); !init.IsList && ok {
		bytes, err := g.decodeEscapes(s.Raw, s.Pos)
		if err != nil {
			return nil, err
		}
		return ctypes.ArrayOf(arr.Elem, int64(len(bytes))+1), nil
	}
	if !init.IsList {
		return nil, g.rep.Errorf(pos, "brace-enclosed initializer required for an array")
	}
	count, err := g.initArrayCount(init.List)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, g.rep.Errorf(pos, "empty initializer for an array of unknown size")
	}
	return ctypes.ArrayOf(arr.Elem, count), nil
}

// initArrayCount computes the extent a brace list gives an array,
// honoring index designators.
func (g *Generator) initArrayCount(items []cabs.InitItem) (int64, error) {
	var cursor, max int64
	for _, it := range items {
		if len(it.Designators) > 0 {
			d := it.Designators[0]
			if d.Index == nil {
				return 0, g.rep.Errorf(d.Pos, "field designator in array initializer")
			}
			idx, err := g.constExpr(d.Index)
			if err != nil {
				return 0, err
			}
			if idx < 0 {
				return 0, g.rep.Errorf(d.Pos, "negative array designator %d", idx)
			}
			cursor = idx
		}
		cursor++
		if cursor > max {
			max = cursor
		}
	}
	return max, nil
}

// --- Global initializers ---

// dataImage accumulates the byte image and relocations of one global.
type dataImage struct {
	data   []byte
	relocs []ir.Reloc
}

func (d *dataImage) grow(n int64) {
	for int64(len(d.data)) < n {
		d.data = append(d.data, 0)
	}
}

// putInt stores an integer little-endian at off.
func (d *dataImage) putInt(off int64, width int, v int64) {
	n := int64(width / 8)
	d.grow(off + n)
	for i := int64(0); i < n; i++ {
		d.data[off+i] = byte(v >> (8 * i))
	}
}

// putSym records a relocation at off.
func (d *dataImage) putSym(off int64, width int, sym string, addend int64) {
	d.grow(off + int64(width/8))
	d.relocs = append(d.relocs, ir.Reloc{Offset: off, Sym: sym, Addend: addend, Width: width})
}

// globalInit builds the data image for a global object's initializer.
// The returned type has any incomplete array size filled in.
func (g *Generator) globalInit(t ctypes.Type, init *cabs.InitItem) (ctypes.Type, int64, []byte, []ir.Reloc, error) {
	t, err := g.completeFromInit(t, init, init.Pos)
	if err != nil {
		return nil, 0, nil, nil, err
	}
	img := &dataImage{}
	if err := g.fillGlobal(img, t, init, 0); err != nil {
		return nil, 0, nil, nil, err
	}
	size, err := ctypes.SizeOf(t)
	if err != nil {
		return nil, 0, nil, nil, g.rep.Errorf(init.Pos, "cannot initialize incomplete type %s", t)
	}
	img.grow(size)
	return t, size, img.data, img.relocs, nil
}

// fillGlobal writes one initializer item for an object of type t at
// image offset off.
func (g *Generator) fillGlobal(img *dataImage, t ctypes.Type, item *cabs.InitItem, off int64) error {
	switch typ := t.(type) {
	case ctypes.Tarray:
		if s, ok := item.Expr.(cabs.StrLit); !item.IsList && ok {
			return g.fillGlobalString(img, typ, s, off)
		}
		if !item.IsList {
			return g.rep.Errorf(item.Pos, "brace-enclosed initializer required for %s", t)
		}
		return g.fillGlobalArray(img, typ, item, off)

	case ctypes.Trecord:
		if !item.IsList {
			return g.rep.Errorf(item.Pos, "brace-enclosed initializer required for %s", t)
		}
		return g.fillGlobalRecord(img, typ, item, off)
	}
	return g.fillGlobalScalar(img, t, item, off)
}

func (g *Generator) fillGlobalString(img *dataImage, arr ctypes.Tarray, s cabs.StrLit, off int64) error {
	if ctypes.BitWidth(arr.Elem) != 8 {
		return g.rep.Errorf(s.Pos, "string initializer for an array of %s", arr.Elem)
	}
	bytes, err := g.decodeEscapes(s.Raw, s.Pos)
	if err != nil {
		return err
	}
	bytes = append(bytes, 0)
	n := int64(len(bytes))
	switch {
	case n-1 == arr.Size:
		// Exactly full without the terminator: legal, drop the NUL.
		bytes = bytes[:n-1]
		n--
	case n > arr.Size:
		return g.rep.Errorf(s.Pos, "string of length %d does not fit in %s", n-1, arr)
	}
	img.grow(off + arr.Size)
	copy(img.data[off:], bytes)
	return nil
}

func (g *Generator) fillGlobalArray(img *dataImage, arr ctypes.Tarray, item *cabs.InitItem, off int64) error {
	elemSize, err := ctypes.SizeOf(arr.Elem)
	if err != nil {
		return g.rep.Errorf(item.Pos, "array of incomplete type %s", arr.Elem)
	}
	var cursor int64
	for i := range item.List {
		sub := &item.List[i]
		if len(sub.Designators) > 0 {
			return g.fillGlobalArrayDesignated(img, arr, item, off, i, elemSize, cursor)
		}
		if cursor >= arr.Size {
			return g.rep.Errorf(sub.Pos, "too many initializers for %s", arr)
		}
		if err := g.fillGlobal(img, arr.Elem, sub, off+cursor*elemSize); err != nil {
			return err
		}
		cursor++
	}
	return nil
}

// fillGlobalArrayDesignated continues an array brace list from the
// first designated item onward.
func (g *Generator) fillGlobalArrayDesignated(img *dataImage, arr ctypes.Tarray, item *cabs.InitItem, off int64, start int, elemSize, cursor int64) error {
	for i := start; i < len(item.List); i++ {
		sub := &item.List[i]
		rest := sub.Designators
		if len(rest) > 0 {
			d := rest[0]
			if d.Index == nil {
				return g.rep.Errorf(d.Pos, "field designator in array initializer")
			}
			idx, err := g.constExpr(d.Index)
			if err != nil {
				return err
			}
			if idx < 0 || idx >= arr.Size {
				return g.rep.Errorf(d.Pos, "array designator index %d out of bounds for %s", idx, arr)
			}
			cursor = idx
			if len(rest) > 1 {
				if err := g.fillGlobalChain(img, arr.Elem, sub, rest[1:], off+cursor*elemSize); err != nil {
					return err
				}
				cursor++
				continue
			}
		}
		if cursor >= arr.Size {
			return g.rep.Errorf(sub.Pos, "too many initializers for %s", arr)
		}
		if err := g.fillGlobal(img, arr.Elem, sub, off+cursor*elemSize); err != nil {
			return err
		}
		cursor++
	}
	return nil
}

// fillGlobalChain descends through the remaining designators of one
// item, as in [2].x = 1.
func (g *Generator) fillGlobalChain(img *dataImage, t ctypes.Type, item *cabs.InitItem, desigs []cabs.Designator, off int64) error {
	if len(desigs) == 0 {
		return g.fillGlobal(img, t, item, off)
	}
	d := desigs[0]
	if d.Index != nil {
		arr, ok := t.(ctypes.Tarray)
		if !ok {
			return g.rep.Errorf(d.Pos, "array designator for non-array type %s", t)
		}
		idx, err := g.constExpr(d.Index)
		if err != nil {
			return err
		}
		if idx < 0 || idx >= arr.Size {
			return g.rep.Errorf(d.Pos, "array designator index %d out of bounds for %s", idx, arr)
		}
		elemSize, err := ctypes.SizeOf(arr.Elem)
		if err != nil {
			return err
		}
		return g.fillGlobalChain(img, arr.Elem, item, desigs[1:], off+idx*elemSize)
	}
	rec, ok := t.(ctypes.Trecord)
	if !ok {
		return g.rep.Errorf(d.Pos, "field designator for non-record type %s", t)
	}
	elem, found := rec.Def.Elem(d.Field)
	if !found {
		return g.rep.Errorf(d.Pos, "no member '%s' in %s", d.Field, rec.Def)
	}
	fieldOff, err := rec.Def.Offset(d.Field)
	if err != nil {
		return err
	}
	return g.fillGlobalChain(img, elem.Type, item, desigs[1:], off+fieldOff)
}

func (g *Generator) fillGlobalRecord(img *dataImage, rec ctypes.Trecord, item *cabs.InitItem, off int64) error {
	def := rec.Def
	if !def.Completed {
		return g.rep.Errorf(item.Pos, "initializer for incomplete %s", def)
	}
	cursor := 0
	seen := false
	for i := range item.List {
		sub := &item.List[i]
		if len(sub.Designators) > 0 {
			d := sub.Designators[0]
			if d.Field == "" {
				return g.rep.Errorf(d.Pos, "array designator in %s initializer", def.Kind)
			}
			idx := -1
			for j, e := range def.Elems {
				if e.Name == d.Field {
					idx = j
					break
				}
			}
			if idx < 0 {
				return g.rep.Errorf(d.Pos, "no member '%s' in %s", d.Field, def)
			}
			cursor = idx
			if len(sub.Designators) > 1 {
				fieldOff, err := def.Offset(d.Field)
				if err != nil {
					return err
				}
				if err := g.fillGlobalChain(img, def.Elems[idx].Type, sub, sub.Designators[1:], off+fieldOff); err != nil {
					return err
				}
				cursor++
				seen = true
				continue
			}
		}
		if cursor >= len(def.Elems) {
			return g.rep.Errorf(sub.Pos, "too many initializers for %s", def)
		}
		if def.Kind == ctypes.Union && seen {
			g.rep.Warnf(sub.Pos, "initializer overwrites prior initialization of %s", def)
		}
		e := def.Elems[cursor]
		fieldOff, err := def.Offset(e.Name)
		if err != nil {
			return err
		}
		if err := g.fillGlobal(img, e.Type, sub, off+fieldOff); err != nil {
			return err
		}
		cursor++
		seen = true
	}
	return nil
}

func (g *Generator) fillGlobalScalar(img *dataImage, t ctypes.Type, item *cabs.InitItem, off int64) error {
	if item.IsList {
		if len(item.List) != 1 || len(item.List[0].Designators) > 0 {
			return g.rep.Errorf(item.Pos, "invalid braced initializer for %s", t)
		}
		g.rep.Warnf(item.Pos, "braces around scalar initializer")
		return g.fillGlobalScalar(img, t, &item.List[0], off)
	}
	v, err := g.constInitValue(item.Expr)
	if err != nil {
		return err
	}

	width := ctypes.BitWidth(t)
	if v.cv.Sym != "" {
		if _, isPtr := t.(ctypes.Tpointer); !isPtr {
			return g.rep.Errorf(item.Pos, "address constant in %s initializer", t)
		}
		img.putSym(off, width, v.cv.Sym, v.cv.V)
		return nil
	}

	switch t.(type) {
	case ctypes.Tint, ctypes.Tenum, ctypes.Tpointer:
	default:
		return g.rep.Errorf(item.Pos, "cannot initialize %s from %s", t, v.typ)
	}
	if _, isPtr := t.(ctypes.Tpointer); isPtr && v.cv.V != 0 {
		g.rep.Warnf(item.Pos, "pointer initialized from non-zero integer constant")
	}
	folded := truncConst(v.cv.V, width, ctypes.IsSigned(t))
	if folded != v.cv.V {
		g.rep.Warnf(item.Pos, "initializer value %d changes to %d when converted to %s", v.cv.V, folded, t)
	}
	img.putInt(off, width, folded)
	return nil
}

// --- Local initializers ---

// localInit lowers an initializer for the object at addr. Brace lists
// zero the elements they leave uncovered, matching the static rules.
func (g *Generator) localInit(addr ir.Operand, t ctypes.Type, item *cabs.InitItem) error {
	switch typ := t.(type) {
	case ctypes.Tarray:
		if s, ok := item.Expr.(cabs.StrLit); !item.IsList && ok {
			return g.localInitString(addr, typ, s)
		}
		if !item.IsList {
			return g.rep.Errorf(item.Pos, "brace-enclosed initializer required for %s", t)
		}
		return g.localInitArray(addr, typ, item)

	case ctypes.Trecord:
		if !item.IsList {
			// Initialization from another record value.
			v, err := g.exprRval(item.Expr)
			if err != nil {
				return err
			}
			src, ok := v.typ.(ctypes.Trecord)
			if !ok || src.Def != typ.Def {
				return g.rep.Errorf(item.Pos, "cannot initialize %s from %s", t, v.typ)
			}
			g.emit(ir.Instr{Op: ir.Copy, A: addr, B: v.op, Type: typeExpr(t)})
			return nil
		}
		return g.localInitRecord(addr, typ, item)
	}
	return g.localInitScalar(addr, t, item)
}

// localInitString copies a string literal into a local char array by
// materializing the full array image as a static global.
func (g *Generator) localInitString(addr ir.Operand, arr ctypes.Tarray, s cabs.StrLit) error {
	if ctypes.BitWidth(arr.Elem) != 8 {
		return g.rep.Errorf(s.Pos, "string initializer for an array of %s", arr.Elem)
	}
	bytes, err := g.decodeEscapes(s.Raw, s.Pos)
	if err != nil {
		return err
	}
	bytes = append(bytes, 0)
	n := int64(len(bytes))
	switch {
	case n-1 == arr.Size:
		bytes = bytes[:n-1]
	case n > arr.Size:
		return g.rep.Errorf(s.Pos, "string of length %d does not fit in %s", n-1, arr)
	default:
		for int64(len(bytes)) < arr.Size {
			bytes = append(bytes, 0)
		}
	}
	name := fmt.Sprintf("str_%d", g.nextStr)
	g.nextStr++
	g.mod.Globals = append(g.mod.Globals, &ir.Global{
		Name: name, Size: arr.Size, Data: bytes, Static: true,
	})
	g.emit(ir.Instr{Op: ir.Copy, A: addr, B: ir.Sym{Name: name}, Type: typeExpr(arr)})
	return nil
}

func (g *Generator) localInitArray(addr ir.Operand, arr ctypes.Tarray, item *cabs.InitItem) error {
	covered := make(map[int64]bool, len(item.List))
	var cursor int64
	for i := range item.List {
		sub := &item.List[i]
		rest := sub.Designators
		if len(rest) > 0 {
			d := rest[0]
			if d.Index == nil {
				return g.rep.Errorf(d.Pos, "field designator in array initializer")
			}
			idx, err := g.constExpr(d.Index)
			if err != nil {
				return err
			}
			if idx < 0 || idx >= arr.Size {
				return g.rep.Errorf(d.Pos, "array designator index %d out of bounds for %s", idx, arr)
			}
			cursor = idx
			if len(rest) > 1 {
				elemAddr := g.elemAddr(addr, cursor, arr.Elem)
				if err := g.localInitChain(elemAddr, arr.Elem, sub, rest[1:]); err != nil {
					return err
				}
				covered[cursor] = true
				cursor++
				continue
			}
		}
		if cursor >= arr.Size {
			return g.rep.Errorf(sub.Pos, "too many initializers for %s", arr)
		}
		elemAddr := g.elemAddr(addr, cursor, arr.Elem)
		if err := g.localInit(elemAddr, arr.Elem, sub); err != nil {
			return err
		}
		covered[cursor] = true
		cursor++
	}
	for i := int64(0); i < arr.Size; i++ {
		if !covered[i] {
			g.zeroFill(g.elemAddr(addr, i, arr.Elem), arr.Elem)
		}
	}
	return nil
}

// elemAddr computes the address of element idx.
func (g *Generator) elemAddr(base ir.Operand, idx int64, elem ctypes.Type) ir.Operand {
	dest := g.newVR()
	g.emit(ir.Instr{Op: ir.PtrIdx, Width: 16, Dest: dest,
		A: base, B: immOp(idx), Type: typeExpr(elem)})
	return varOp(dest)
}

// fieldAddr computes the address of a record member.
func (g *Generator) fieldAddr(base ir.Operand, rec *ctypes.Record, field string) ir.Operand {
	dest := g.newVR()
	g.emit(ir.Instr{Op: ir.Member, Width: 16, Dest: dest, A: base,
		Field: field, Type: &ir.TypeExpr{Kind: ir.TRec, Rec: rec.IRName}})
	return varOp(dest)
}

// localInitChain descends the remaining designators of one item.
func (g *Generator) localInitChain(addr ir.Operand, t ctypes.Type, item *cabs.InitItem, desigs []cabs.Designator) error {
	if len(desigs) == 0 {
		return g.localInit(addr, t, item)
	}
	d := desigs[0]
	if d.Index != nil {
		arr, ok := t.(ctypes.Tarray)
		if !ok {
			return g.rep.Errorf(d.Pos, "array designator for non-array type %s", t)
		}
		idx, err := g.constExpr(d.Index)
		if err != nil {
			return err
		}
		if idx < 0 || idx >= arr.Size {
			return g.rep.Errorf(d.Pos, "array designator index %d out of bounds for %s", idx, arr)
		}
		return g.localInitChain(g.elemAddr(addr, idx, arr.Elem), arr.Elem, item, desigs[1:])
	}
	rec, ok := t.(ctypes.Trecord)
	if !ok {
		return g.rep.Errorf(d.Pos, "field designator for non-record type %s", t)
	}
	elem, found := rec.Def.Elem(d.Field)
	if !found {
		return g.rep.Errorf(d.Pos, "no member '%s' in %s", d.Field, rec.Def)
	}
	return g.localInitChain(g.fieldAddr(addr, rec.Def, d.Field), elem.Type, item, desigs[1:])
}

func (g *Generator) localInitRecord(addr ir.Operand, rec ctypes.Trecord, item *cabs.InitItem) error {
	def := rec.Def
	if !def.Completed {
		return g.rep.Errorf(item.Pos, "initializer for incomplete %s", def)
	}
	covered := make(map[string]bool, len(def.Elems))
	cursor := 0
	seen := false
	for i := range item.List {
		sub := &item.List[i]
		if len(sub.Designators) > 0 {
			d := sub.Designators[0]
			if d.Field == "" {
				return g.rep.Errorf(d.Pos, "array designator in %s initializer", def.Kind)
			}
			idx := -1
			for j, e := range def.Elems {
				if e.Name == d.Field {
					idx = j
					break
				}
			}
			if idx < 0 {
				return g.rep.Errorf(d.Pos, "no member '%s' in %s", d.Field, def)
			}
			cursor = idx
			if len(sub.Designators) > 1 {
				e := def.Elems[idx]
				if err := g.localInitChain(g.fieldAddr(addr, def, e.Name), e.Type, sub, sub.Designators[1:]); err != nil {
					return err
				}
				covered[e.Name] = true
				cursor++
				seen = true
				continue
			}
		}
		if cursor >= len(def.Elems) {
			return g.rep.Errorf(sub.Pos, "too many initializers for %s", def)
		}
		if def.Kind == ctypes.Union && seen {
			g.rep.Warnf(sub.Pos, "initializer overwrites prior initialization of %s", def)
		}
		e := def.Elems[cursor]
		if err := g.localInit(g.fieldAddr(addr, def, e.Name), e.Type, sub); err != nil {
			return err
		}
		covered[e.Name] = true
		cursor++
		seen = true
	}
	if def.Kind == ctypes.Struct {
		for _, e := range def.Elems {
			if !covered[e.Name] {
				g.zeroFill(g.fieldAddr(addr, def, e.Name), e.Type)
			}
		}
	}
	return nil
}

func (g *Generator) localInitScalar(addr ir.Operand, t ctypes.Type, item *cabs.InitItem) error {
	if item.IsList {
		if len(item.List) != 1 || len(item.List[0].Designators) > 0 {
			return g.rep.Errorf(item.Pos, "invalid braced initializer for %s", t)
		}
		g.rep.Warnf(item.Pos, "braces around scalar initializer")
		return g.localInitScalar(addr, t, &item.List[0])
	}
	v, err := g.exprRval(item.Expr)
	if err != nil {
		return err
	}
	if err := g.convert(v, t, convImplicit, item.Pos); err != nil {
		return err
	}
	g.emit(ir.Instr{Op: ir.Write, Width: ctypes.BitWidth(t), A: addr, B: v.op})
	return nil
}

// zeroFill stores zeros over every scalar reachable in t.
func (g *Generator) zeroFill(addr ir.Operand, t ctypes.Type) {
	switch typ := t.(type) {
	case ctypes.Tarray:
		for i := int64(0); i < typ.Size; i++ {
			g.zeroFill(g.elemAddr(addr, i, typ.Elem), typ.Elem)
		}
	case ctypes.Trecord:
		if typ.Def.Kind == ctypes.Union {
			if len(typ.Def.Elems) > 0 {
				e := typ.Def.Elems[0]
				g.zeroFill(g.fieldAddr(addr, typ.Def, e.Name), e.Type)
			}
			return
		}
		for _, e := range typ.Def.Elems {
			g.zeroFill(g.fieldAddr(addr, typ.Def, e.Name), e.Type)
		}
	default:
		g.emit(ir.Instr{Op: ir.Write, Width: ctypes.BitWidth(t), A: addr, B: immOp(0)})
	}
}
