package plg

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/oklog/ulid/v2"

	"github.com/fzipp/pl0-compiler/files"
	"github.com/fzipp/pl0-compiler/plb"
	"github.com/fzipp/pl0-compiler/pls"
)

// VersionKey identifies the object file format.
const VersionKey = 1

const objTag = 'P'

// Object is the content of an object file: the code of one compilation unit
// together with its symbol table.
type Object struct {
	Name    string
	ID      ulid.ULID
	Unit    int32 // code address units per instruction
	Code    []Instruction
	Symbols []plb.Symbol
}

// Object file layout:
//
//	name string, version byte, id [16]byte, unit byte,
//	n num, n × (op byte, l num, m num),
//	k num, k × (kind byte, name string, val num, level num, addr num, closed byte),
//	tag byte 'P'

// WriteObject writes obj. All operands must be resolved.
func WriteObject(w io.Writer, obj *Object) (err error) {
	for pc, i := range obj.Code {
		if i.M.Pending() {
			return fmt.Errorf("instruction %d: unresolved operand %v", pc, i.M)
		}
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = rec.(error)
		}
	}()
	bw := bufio.NewWriter(w)
	files.WriteString(bw, obj.Name)
	files.WriteByte(bw, VersionKey)
	files.WriteBytes(bw, obj.ID[:])
	files.WriteByte(bw, byte(obj.Unit))
	files.WriteNum(bw, int32(len(obj.Code)))
	for _, i := range obj.Code {
		files.WriteByte(bw, byte(i.Op))
		files.WriteNum(bw, i.L)
		files.WriteNum(bw, i.M.Value())
	}
	files.WriteNum(bw, int32(len(obj.Symbols)))
	for _, s := range obj.Symbols {
		files.WriteByte(bw, byte(s.Kind))
		files.WriteString(bw, string(s.Name))
		files.WriteNum(bw, s.Val)
		files.WriteNum(bw, s.Level)
		files.WriteNum(bw, s.Addr)
		files.WriteBool(bw, s.Closed)
	}
	files.WriteByte(bw, objTag)
	return bw.Flush()
}

var errBadObject = errors.New("not a PL/0 object file")

// ReadObject reads an object file written by WriteObject.
func ReadObject(r io.Reader) (obj *Object, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			obj, err = nil, rec.(error)
		}
	}()
	br := bufio.NewReader(r)
	obj = &Object{Name: files.ReadString(br)}
	if v := files.ReadByte(br); v != VersionKey {
		return nil, fmt.Errorf("%w: version %d", errBadObject, v)
	}
	files.ReadBytes(br, obj.ID[:])
	obj.Unit = int32(files.ReadByte(br))
	n := files.ReadNum(br)
	if n < 0 {
		return nil, errBadObject
	}
	obj.Code = make([]Instruction, 0, min(n, 1<<16))
	for ; n > 0; n-- {
		op := Opcode(files.ReadByte(br))
		l := files.ReadNum(br)
		m := files.ReadNum(br)
		obj.Code = append(obj.Code, Instruction{Op: op, L: l, M: Resolved(m)})
	}
	k := files.ReadNum(br)
	if k < 0 {
		return nil, errBadObject
	}
	for ; k > 0; k-- {
		obj.Symbols = append(obj.Symbols, plb.Symbol{
			Kind:   plb.Kind(files.ReadByte(br)),
			Name:   pls.Ident(files.ReadString(br)),
			Val:    files.ReadNum(br),
			Level:  files.ReadNum(br),
			Addr:   files.ReadNum(br),
			Closed: files.ReadBool(br),
		})
	}
	if files.ReadByte(br) != objTag {
		return nil, errBadObject
	}
	return obj, nil
}
