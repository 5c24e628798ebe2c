// Copyright © 2020 The Pea Authors under an MIT-style license.

package ast

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"fortio.org/safecast"
	"github.com/eaburns/el/loc"
	"github.com/eaburns/el/types"
)

// header begins every tree file.
const header = "el-tree 1"

const (
	nilTag = iota
	declTag
	typeDeclTag
	exprStmtTag
	blockTag
	onErrTag
	returnTag
	errReturnTag
	ifTag
	loopTag
	breakTag
	continueTag
	switchTag
	labelStmtTag
	constTag
	identTag
	callTag
	unaryTag
	binaryTag
	castTag
	initExprTag
	sizeofTag
	offsetofTag
	getParentTag
	elemTag
	indexTag
	bodyTag
	initArgsTag
	getArgTag
	enumValTag
	ternTag
)

// Write writes a unit.
//
// Types, declarations, and labels are numbered objects.
// The first time an object is written, its number is followed by its fields;
// after that, only its number is written.
// This preserves sharing, for example between a switch case
// and the label statement that places it.
func Write(w io.Writer, u *Unit) (err error) {
	defer func() {
		x := recover()
		if x == nil {
			return
		}
		if ioErr, ok := x.(ioError); !ok {
			panic(x)
		} else {
			err = ioErr.err
		}
	}()
	writeString(w, header)
	writeString(w, u.Path)
	objs := &outObjs{num: make(map[interface{}]int)}
	writeInt(w, len(u.Stmts))
	for _, s := range u.Stmts {
		writeStmt(w, objs, s)
	}
	return nil
}

// Read reads a unit written by Write.
func Read(r io.Reader) (u *Unit, err error) {
	defer func() {
		x := recover()
		if x == nil {
			return
		}
		if ioErr, ok := x.(ioError); !ok {
			panic(x)
		} else {
			err = ioErr.err
		}
	}()
	if h := readString(r); h != header {
		return nil, fmt.Errorf("bad tree header %q", h)
	}
	u = &Unit{Path: readString(r)}
	objs := &inObjs{obj: make(map[int]interface{})}
	n := readInt(r)
	for i := 0; i < n; i++ {
		u.Stmts = append(u.Stmts, readStmt(r, objs))
	}
	return u, nil
}

type outObjs struct {
	num map[interface{}]int
}

// number returns the number of an object
// and whether it was already numbered.
func (objs *outObjs) number(o interface{}) (int, bool) {
	if n, ok := objs.num[o]; ok {
		return n, true
	}
	n := len(objs.num)
	objs.num[o] = n
	return n, false
}

type inObjs struct {
	obj map[int]interface{}
}

func writeStmt(w io.Writer, objs *outObjs, s Stmt) {
	switch s := s.(type) {
	case *Decl:
		writeInt(w, declTag)
		writeDecl(w, objs, s)
	case *TypeDecl:
		writeInt(w, typeDeclTag)
		writeLoc(w, s.Loc)
		writeString(w, s.Name)
		writeInt(w, int(s.Vis))
		writeType(w, objs, s.T)
	case *ExprStmt:
		writeInt(w, exprStmtTag)
		writeLoc(w, s.Loc)
		writeExpr(w, objs, s.Expr)
	case *Block:
		writeInt(w, blockTag)
		writeBlock(w, objs, s)
	case *OnErr:
		writeInt(w, onErrTag)
		writeLoc(w, s.Loc)
		writeBlock(w, objs, s.Block)
	case *Return:
		writeInt(w, returnTag)
		writeLoc(w, s.Loc)
		writeExpr(w, objs, s.Expr)
	case *ErrReturn:
		writeInt(w, errReturnTag)
		writeLoc(w, s.Loc)
		writeExpr(w, objs, s.Expr)
	case *If:
		writeInt(w, ifTag)
		writeLoc(w, s.Loc)
		writeExpr(w, objs, s.Cond)
		writeBlock(w, objs, s.Then)
		writeBlock(w, objs, s.Else)
	case *Loop:
		writeInt(w, loopTag)
		writeLoc(w, s.Loc)
		writeBool(w, s.Post)
		writeExpr(w, objs, s.Init)
		writeExpr(w, objs, s.Cond)
		writeExpr(w, objs, s.Inc)
		writeBlock(w, objs, s.Body)
	case *Break:
		writeInt(w, breakTag)
		writeLoc(w, s.Loc)
		writeInt(w, s.Level)
	case *Continue:
		writeInt(w, continueTag)
		writeLoc(w, s.Loc)
		writeInt(w, s.Level)
	case *Switch:
		writeInt(w, switchTag)
		writeLoc(w, s.Loc)
		writeExpr(w, objs, s.Eval)
		writeInt(w, len(s.Cases))
		for _, c := range s.Cases {
			writeLoc(w, c.Loc)
			writeExpr(w, objs, c.Expr)
			writeLabel(w, objs, c.Label)
		}
		writeBlock(w, objs, s.Block)
	case *LabelStmt:
		writeInt(w, labelStmtTag)
		writeLoc(w, s.Loc)
		writeLabel(w, objs, s.Label)
	default:
		panic(fmt.Sprintf("impossible statement: %T", s))
	}
}

func readStmt(r io.Reader, objs *inObjs) Stmt {
	switch tag := readInt(r); tag {
	case declTag:
		return readDecl(r, objs)
	case typeDeclTag:
		var s TypeDecl
		s.Loc = readLoc(r)
		s.Name = readString(r)
		s.Vis = Vis(readInt(r))
		s.T = readType(r, objs)
		return &s
	case exprStmtTag:
		var s ExprStmt
		s.Loc = readLoc(r)
		s.Expr = readExpr(r, objs)
		return &s
	case blockTag:
		b := readBlock(r, objs)
		if b == nil {
			panic(ioError{errors.New("nil block statement")})
		}
		return b
	case onErrTag:
		var s OnErr
		s.Loc = readLoc(r)
		s.Block = readBlock(r, objs)
		return &s
	case returnTag:
		var s Return
		s.Loc = readLoc(r)
		s.Expr = readExpr(r, objs)
		return &s
	case errReturnTag:
		var s ErrReturn
		s.Loc = readLoc(r)
		s.Expr = readExpr(r, objs)
		return &s
	case ifTag:
		var s If
		s.Loc = readLoc(r)
		s.Cond = readExpr(r, objs)
		s.Then = readBlock(r, objs)
		s.Else = readBlock(r, objs)
		return &s
	case loopTag:
		var s Loop
		s.Loc = readLoc(r)
		s.Post = readBool(r)
		s.Init = readExpr(r, objs)
		s.Cond = readExpr(r, objs)
		s.Inc = readExpr(r, objs)
		s.Body = readBlock(r, objs)
		return &s
	case breakTag:
		var s Break
		s.Loc = readLoc(r)
		s.Level = readInt(r)
		return &s
	case continueTag:
		var s Continue
		s.Loc = readLoc(r)
		s.Level = readInt(r)
		return &s
	case switchTag:
		var s Switch
		s.Loc = readLoc(r)
		s.Eval = readExpr(r, objs)
		n := readInt(r)
		for i := 0; i < n; i++ {
			var c Case
			c.Loc = readLoc(r)
			c.Expr = readExpr(r, objs)
			c.Label = readLabel(r, objs)
			s.Cases = append(s.Cases, &c)
		}
		s.Block = readBlock(r, objs)
		return &s
	case labelStmtTag:
		var s LabelStmt
		s.Loc = readLoc(r)
		s.Label = readLabel(r, objs)
		return &s
	default:
		panic(ioError{fmt.Errorf("bad statement tag %d", tag)})
	}
}

// writeDecl writes the Decl number, then, the first time, the fields:
// 	Loc
// 	Name
// 	Flags
// 	Vis
// 	T
// 	Expr
// 	Captured
func writeDecl(w io.Writer, objs *outObjs, d *Decl) {
	n, seen := objs.number(d)
	writeInt(w, n)
	if seen {
		return
	}
	writeLoc(w, d.Loc)
	writeString(w, d.Name)
	writeInt(w, int(d.Flags))
	writeInt(w, int(d.Vis))
	writeType(w, objs, d.T)
	writeExpr(w, objs, d.Expr)
	writeBool(w, d.Captured)
}

func readDecl(r io.Reader, objs *inObjs) *Decl {
	n := readInt(r)
	if o, ok := objs.obj[n]; ok {
		d, ok := o.(*Decl)
		if !ok {
			panic(ioError{fmt.Errorf("object %d is %T, not a declaration", n, o)})
		}
		return d
	}
	d := &Decl{}
	objs.obj[n] = d
	d.Loc = readLoc(r)
	d.Name = readString(r)
	d.Flags = Flags(readInt(r))
	d.Vis = Vis(readInt(r))
	d.T = readType(r, objs)
	d.Expr = readExpr(r, objs)
	d.Captured = readBool(r)
	return d
}

func writeLabel(w io.Writer, objs *outObjs, l *Label) {
	n, seen := objs.number(l)
	writeInt(w, n)
	if seen {
		return
	}
	writeLoc(w, l.Loc)
	writeString(w, l.Name)
}

func readLabel(r io.Reader, objs *inObjs) *Label {
	n := readInt(r)
	if o, ok := objs.obj[n]; ok {
		l, ok := o.(*Label)
		if !ok {
			panic(ioError{fmt.Errorf("object %d is %T, not a label", n, o)})
		}
		return l
	}
	l := &Label{}
	objs.obj[n] = l
	l.Loc = readLoc(r)
	l.Name = readString(r)
	return l
}

// writeBlock writes whether the block is non-nil,
// then its location and statements.
func writeBlock(w io.Writer, objs *outObjs, b *Block) {
	writeBool(w, b != nil)
	if b == nil {
		return
	}
	writeLoc(w, b.Loc)
	writeInt(w, len(b.Stmts))
	for _, s := range b.Stmts {
		writeStmt(w, objs, s)
	}
}

func readBlock(r io.Reader, objs *inObjs) *Block {
	if !readBool(r) {
		return nil
	}
	var b Block
	b.Loc = readLoc(r)
	n := readInt(r)
	for i := 0; i < n; i++ {
		b.Stmts = append(b.Stmts, readStmt(r, objs))
	}
	return &b
}

// writeExpr writes the tag, location, and type of an expression,
// then the fields of its kind.
// A nil expression is written as nilTag alone.
func writeExpr(w io.Writer, objs *outObjs, e Expr) {
	if e == nil {
		writeInt(w, nilTag)
		return
	}
	switch e := e.(type) {
	case *Const:
		writeInt(w, constTag)
		writeExprHead(w, objs, e)
		writeInt(w, int(e.Kind))
		writeInt(w, int(e.Int))
		writeNum(w, e.Num)
		writeBool(w, e.Bool)
		writeString(w, e.Str)
	case *Ident:
		writeInt(w, identTag)
		writeExprHead(w, objs, e)
		writeString(w, e.Name)
		writeInt(w, int(e.Ref))
		writeBool(w, e.Decl != nil)
		if e.Decl != nil {
			writeDecl(w, objs, e.Decl)
		}
		writeInt(w, e.Param)
	case *Call:
		writeInt(w, callTag)
		writeExprHead(w, objs, e)
		writeBool(w, e.Deref)
		writeExpr(w, objs, e.Func)
		writeExprs(w, objs, e.Args)
	case *Unary:
		writeInt(w, unaryTag)
		writeExprHead(w, objs, e)
		writeInt(w, int(e.Op))
		writeExpr(w, objs, e.X)
	case *Binary:
		writeInt(w, binaryTag)
		writeExprHead(w, objs, e)
		writeInt(w, int(e.Op))
		writeExpr(w, objs, e.L)
		writeExpr(w, objs, e.R)
	case *Cast:
		writeInt(w, castTag)
		writeExprHead(w, objs, e)
		writeExpr(w, objs, e.X)
	case *InitExpr:
		writeInt(w, initExprTag)
		writeExprHead(w, objs, e)
		writeInits(w, objs, e.Entries)
		writeExpr(w, objs, e.Cast)
	case *Sizeof:
		writeInt(w, sizeofTag)
		writeExprHead(w, objs, e)
		writeType(w, objs, e.Of)
		writeExpr(w, objs, e.X)
	case *Offsetof:
		writeInt(w, offsetofTag)
		writeExprHead(w, objs, e)
		writeType(w, objs, e.Of)
		writeString(w, e.Field)
	case *GetParent:
		writeInt(w, getParentTag)
		writeExprHead(w, objs, e)
		writeExpr(w, objs, e.X)
		writeType(w, objs, e.Of)
		writeString(w, e.Field)
		writeInt(w, e.Off)
	case *Elem:
		writeInt(w, elemTag)
		writeExprHead(w, objs, e)
		writeBool(w, e.Deref)
		writeExpr(w, objs, e.Base)
		writeString(w, e.Name)
		writeInt(w, e.Idx)
	case *Index:
		writeInt(w, indexTag)
		writeExprHead(w, objs, e)
		writeExpr(w, objs, e.Base)
		writeExpr(w, objs, e.Off)
	case *Body:
		writeInt(w, bodyTag)
		writeExprHead(w, objs, e)
		writeType(w, objs, e.Sig)
		writeBlock(w, objs, e.Block)
	case *InitArgs:
		writeInt(w, initArgsTag)
		writeExprHead(w, objs, e)
	case *GetArg:
		writeInt(w, getArgTag)
		writeExprHead(w, objs, e)
		writeExpr(w, objs, e.Args)
		writeType(w, objs, e.Of)
	case *EnumVal:
		writeInt(w, enumValTag)
		writeExprHead(w, objs, e)
		writeString(w, e.TypeName)
		writeString(w, e.Name)
		writeInt64(w, e.Val)
	case *Tern:
		writeInt(w, ternTag)
		writeExprHead(w, objs, e)
		writeExpr(w, objs, e.Cond)
		writeExpr(w, objs, e.True)
		writeExpr(w, objs, e.False)
	default:
		panic(fmt.Sprintf("impossible expression: %T", e))
	}
}

func readExpr(r io.Reader, objs *inObjs) Expr {
	tag := readInt(r)
	if tag == nilTag {
		return nil
	}
	l := readLoc(r)
	t := readType(r, objs)
	pos, typed := At(l), Typed{T: t}
	switch tag {
	case constTag:
		e := &Const{Pos: pos, Typed: typed}
		e.Kind = ConstKind(readInt(r))
		e.Int = types.Kind(readInt(r))
		e.Num = readNum(r)
		e.Bool = readBool(r)
		e.Str = readString(r)
		return e
	case identTag:
		e := &Ident{Pos: pos, Typed: typed}
		e.Name = readString(r)
		e.Ref = Ref(readInt(r))
		if readBool(r) {
			e.Decl = readDecl(r, objs)
		}
		e.Param = readInt(r)
		return e
	case callTag:
		e := &Call{Pos: pos, Typed: typed}
		e.Deref = readBool(r)
		e.Func = readExpr(r, objs)
		e.Args = readExprs(r, objs)
		return e
	case unaryTag:
		e := &Unary{Pos: pos, Typed: typed}
		e.Op = UnOp(readInt(r))
		e.X = readExpr(r, objs)
		return e
	case binaryTag:
		e := &Binary{Pos: pos, Typed: typed}
		e.Op = BinOp(readInt(r))
		e.L = readExpr(r, objs)
		e.R = readExpr(r, objs)
		return e
	case castTag:
		e := &Cast{Pos: pos, Typed: typed}
		e.X = readExpr(r, objs)
		return e
	case initExprTag:
		e := &InitExpr{Pos: pos, Typed: typed}
		e.Entries = readInits(r, objs)
		e.Cast = readExpr(r, objs)
		return e
	case sizeofTag:
		e := &Sizeof{Pos: pos, Typed: typed}
		e.Of = readType(r, objs)
		e.X = readExpr(r, objs)
		return e
	case offsetofTag:
		e := &Offsetof{Pos: pos, Typed: typed}
		e.Of = readType(r, objs)
		e.Field = readString(r)
		return e
	case getParentTag:
		e := &GetParent{Pos: pos, Typed: typed}
		e.X = readExpr(r, objs)
		e.Of = readType(r, objs)
		e.Field = readString(r)
		e.Off = readInt(r)
		return e
	case elemTag:
		e := &Elem{Pos: pos, Typed: typed}
		e.Deref = readBool(r)
		e.Base = readExpr(r, objs)
		e.Name = readString(r)
		e.Idx = readInt(r)
		return e
	case indexTag:
		e := &Index{Pos: pos, Typed: typed}
		e.Base = readExpr(r, objs)
		e.Off = readExpr(r, objs)
		return e
	case bodyTag:
		e := &Body{Pos: pos, Typed: typed}
		e.Sig = readType(r, objs)
		e.Block = readBlock(r, objs)
		return e
	case initArgsTag:
		return &InitArgs{Pos: pos, Typed: typed}
	case getArgTag:
		e := &GetArg{Pos: pos, Typed: typed}
		e.Args = readExpr(r, objs)
		e.Of = readType(r, objs)
		return e
	case enumValTag:
		e := &EnumVal{Pos: pos, Typed: typed}
		e.TypeName = readString(r)
		e.Name = readString(r)
		e.Val = readInt64(r)
		return e
	case ternTag:
		e := &Tern{Pos: pos, Typed: typed}
		e.Cond = readExpr(r, objs)
		e.True = readExpr(r, objs)
		e.False = readExpr(r, objs)
		return e
	default:
		panic(ioError{fmt.Errorf("bad expression tag %d", tag)})
	}
}

func writeExprHead(w io.Writer, objs *outObjs, e Expr) {
	writeLoc(w, e.GetLoc())
	writeType(w, objs, e.Type())
}

func writeExprs(w io.Writer, objs *outObjs, es []Expr) {
	writeInt(w, len(es))
	for _, e := range es {
		writeExpr(w, objs, e)
	}
}

func readExprs(r io.Reader, objs *inObjs) []Expr {
	var es []Expr
	n := readInt(r)
	for i := 0; i < n; i++ {
		es = append(es, readExpr(r, objs))
	}
	return es
}

// writeInits writes the number of entries, then for each:
// 	Name
// 	Idx
// 	Expr
// 	Nest
func writeInits(w io.Writer, objs *outObjs, inits []*Init) {
	writeInt(w, len(inits))
	for _, in := range inits {
		writeString(w, in.Name)
		writeInt(w, in.Idx)
		writeExpr(w, objs, in.Expr)
		writeInits(w, objs, in.Nest)
	}
}

func readInits(r io.Reader, objs *inObjs) []*Init {
	var inits []*Init
	n := readInt(r)
	for i := 0; i < n; i++ {
		var in Init
		in.Name = readString(r)
		in.Idx = readInt(r)
		in.Expr = readExpr(r, objs)
		in.Nest = readInits(r, objs)
		inits = append(inits, &in)
	}
	return inits
}

// writeType writes -1 for a nil type.
// Otherwise it writes the Type number, then, the first time, the fields:
// 	Kind
// 	Const
// 	Sub
// 	Len
// 	Name
// 	Func, Rec, and Enum, each preceded by whether it is non-nil.
// It does not write Func.Check, which is only set on builtins.
func writeType(w io.Writer, objs *outObjs, t *types.Type) {
	if t == nil {
		writeInt(w, -1)
		return
	}
	n, seen := objs.number(t)
	writeInt(w, n)
	if seen {
		return
	}
	writeInt(w, int(t.Kind))
	writeBool(w, t.Const)
	writeType(w, objs, t.Sub)
	writeInt(w, t.Len)
	writeString(w, t.Name)

	writeBool(w, t.Func != nil)
	if f := t.Func; f != nil {
		writeType(w, objs, f.Ret)
		writeInt(w, len(f.Params))
		for _, p := range f.Params {
			writeString(w, p.Name)
			writeType(w, objs, p.Type)
		}
		writeBool(w, f.Variadic)
	}
	writeBool(w, t.Rec != nil)
	if rec := t.Rec; rec != nil {
		writeString(w, rec.Name)
		writeBool(w, rec.Populated)
		writeInt(w, len(rec.Fields))
		for _, f := range rec.Fields {
			writeString(w, f.Name)
			writeType(w, objs, f.Type)
		}
	}
	writeBool(w, t.Enum != nil)
	if e := t.Enum; e != nil {
		writeString(w, e.Name)
		writeInt(w, len(e.Values))
		for _, v := range e.Values {
			writeString(w, v.Name)
			writeInt64(w, v.Val)
		}
	}
}

// readType registers the Type before reading its fields,
// so self-referential types read back with their cycles.
func readType(r io.Reader, objs *inObjs) *types.Type {
	n := readInt(r)
	if n < 0 {
		return nil
	}
	if o, ok := objs.obj[n]; ok {
		t, ok := o.(*types.Type)
		if !ok {
			panic(ioError{fmt.Errorf("object %d is %T, not a type", n, o)})
		}
		return t
	}
	t := &types.Type{}
	objs.obj[n] = t
	t.Kind = types.Kind(readInt(r))
	t.Const = readBool(r)
	t.Sub = readType(r, objs)
	t.Len = readInt(r)
	t.Name = readString(r)

	if readBool(r) {
		var f types.Func
		f.Ret = readType(r, objs)
		if n := readInt(r); n > 0 {
			f.Params = make([]types.Param, n)
			for i := range f.Params {
				f.Params[i].Name = readString(r)
				f.Params[i].Type = readType(r, objs)
			}
		}
		f.Variadic = readBool(r)
		t.Func = &f
	}
	if readBool(r) {
		var rec types.Record
		rec.Name = readString(r)
		rec.Populated = readBool(r)
		if n := readInt(r); n > 0 {
			rec.Fields = make([]types.Field, n)
			for i := range rec.Fields {
				rec.Fields[i].Name = readString(r)
				rec.Fields[i].Type = readType(r, objs)
			}
		}
		t.Rec = &rec
	}
	if readBool(r) {
		var e types.Enum
		e.Name = readString(r)
		if n := readInt(r); n > 0 {
			e.Values = make([]types.EnumValue, n)
			for i := range e.Values {
				e.Values[i].Name = readString(r)
				e.Values[i].Val = readInt64(r)
			}
		}
		t.Enum = &e
	}
	return t
}

func writeLoc(w io.Writer, l loc.Loc) {
	writeString(w, l.Path)
	writeInt(w, l.Line)
	writeInt(w, l.Col)
}

func readLoc(r io.Reader) loc.Loc {
	var l loc.Loc
	l.Path = readString(r)
	l.Line = readInt(r)
	l.Col = readInt(r)
	return l
}

// writeNum writes an arbitrary-precision integer in decimal.
// A nil integer is the empty string.
func writeNum(w io.Writer, n *big.Int) {
	if n == nil {
		writeString(w, "")
		return
	}
	writeString(w, n.String())
}

func readNum(r io.Reader) *big.Int {
	s := readString(r)
	if s == "" {
		return nil
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic(ioError{fmt.Errorf("bad numeral %q", s)})
	}
	return n
}

type ioError struct {
	err error
}

func writeBool(w io.Writer, b bool) {
	var bs [1]byte
	if b {
		bs[0] = 1
	}
	if _, err := w.Write(bs[:]); err != nil {
		panic(ioError{err})
	}
}

func readBool(r io.Reader) bool {
	var bs [1]byte
	if _, err := io.ReadFull(r, bs[:]); err != nil {
		panic(ioError{err})
	}
	return bs[0] == 1
}

func writeInt(w io.Writer, n int) {
	i, err := safecast.Convert[int32](n)
	if err != nil {
		panic(ioError{err})
	}
	if _, err := w.Write([]byte{
		byte(0xFF & i),
		byte(0xFF & (i >> 8)),
		byte(0xFF & (i >> 16)),
		byte(0xFF & (i >> 24)),
	}); err != nil {
		panic(ioError{err})
	}
}

func readInt(r io.Reader) int {
	var bs [4]byte
	if _, err := io.ReadFull(r, bs[:]); err != nil {
		panic(ioError{err})
	}
	var i int32
	i |= int32(bs[0]) << 0
	i |= int32(bs[1]) << 8
	i |= int32(bs[2]) << 16
	i |= int32(bs[3]) << 24
	return int(i)
}

func writeInt64(w io.Writer, n int64) {
	var bs [8]byte
	for i := range bs {
		bs[i] = byte(0xFF & (n >> (8 * i)))
	}
	if _, err := w.Write(bs[:]); err != nil {
		panic(ioError{err})
	}
}

func readInt64(r io.Reader) int64 {
	var bs [8]byte
	if _, err := io.ReadFull(r, bs[:]); err != nil {
		panic(ioError{err})
	}
	var n int64
	for i := range bs {
		n |= int64(bs[i]) << (8 * i)
	}
	return n
}

func writeString(w io.Writer, s string) {
	writeInt(w, len(s))
	if _, err := io.WriteString(w, s); err != nil {
		panic(ioError{err})
	}
}

func readString(r io.Reader) string {
	n := readInt(r)
	if n < 0 {
		panic(ioError{fmt.Errorf("bad string length %d", n)})
	}
	bs := make([]byte, n)
	if _, err := io.ReadFull(r, bs); err != nil {
		panic(ioError{err})
	}
	return string(bs)
}
