// Package plg contains the code generator for the PL/0 compiler.
//
// The target is the PM/0 stack machine. Each procedure activation gets a frame
// whose first three slots hold the static link, the dynamic link and the
// return address; load, store and call instructions address their operand
// through L static links. Calls are emitted before the callee's address may be
// known, so their operand refers to the callee's symbol until Resolve replaces
// it with the address recorded in the symbol table.
package plg

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/fzipp/pl0-compiler/plb"
)

type Opcode int32

// opcodes
const (
	OpLit Opcode = 1 + iota // push literal M
	OpOpr                   // stack operation or return, M selects
	OpLod                   // push frame slot M, L levels down
	OpSto                   // pop into frame slot M, L levels down
	OpCal                   // call procedure at M, L levels down
	OpInc                   // reserve M stack slots
	OpJmp                   // jump to M
	OpJpc                   // pop, jump to M if zero
	OpSys                   // system call M
)

// OPR functions
const (
	OprRtn int32 = iota
	OprAdd
	OprSub
	OprMul
	OprDiv
	OprEql
	OprNeq
	OprLss
	OprLeq
	OprGtr
	OprGeq
)

// SYS functions
const (
	SysWrt int32 = 1 + iota
	SysRed
	SysHlt
)

// FrameHeader is the number of slots at the start of every activation record.
const FrameHeader = 3

// WordsPerInstr is the size of an instruction in PM/0 code memory.
const WordsPerInstr = 3

// Operand is the M field of an instruction: either a resolved value or, for
// calls not yet fixed up, the index of the callee in the symbol table.
type Operand struct {
	v       int32
	pending bool
}

func Resolved(v int32) Operand {
	return Operand{v: v}
}

func PendingSymbol(index int) Operand {
	return Operand{v: int32(index), pending: true}
}

// Value returns the resolved value of m. It is 0 for a pending operand.
func (m Operand) Value() int32 {
	if m.pending {
		return 0
	}
	return m.v
}

// Symbol returns the symbol index of a pending operand.
func (m Operand) Symbol() (index int, ok bool) {
	return int(m.v), m.pending
}

func (m Operand) Pending() bool {
	return m.pending
}

func (m Operand) String() string {
	if m.pending {
		return fmt.Sprintf("sym#%d", m.v)
	}
	return fmt.Sprint(m.v)
}

type Instruction struct {
	Op Opcode
	L  int32
	M  Operand
}

var oprNames = [...]string{"RTN", "ADD", "SUB", "MUL", "DIV", "EQL", "NEQ", "LSS", "LEQ", "GTR", "GEQ"}

// Mnemonic returns the assembler name of i. OPR and SYS are named after
// their function.
func (i Instruction) Mnemonic() string {
	switch i.Op {
	case OpLit:
		return "LIT"
	case OpOpr:
		if f := i.M.Value(); !i.M.pending && f >= 0 && int(f) < len(oprNames) {
			return oprNames[f]
		}
	case OpLod:
		return "LOD"
	case OpSto:
		return "STO"
	case OpCal:
		return "CAL"
	case OpInc:
		return "INC"
	case OpJmp:
		return "JMP"
	case OpJpc:
		return "JPC"
	case OpSys:
		switch i.M.Value() {
		case SysWrt:
			return "WRT"
		case SysRed:
			return "RED"
		case SysHlt:
			return "HLT"
		}
	}
	return "err"
}

func (i Instruction) String() string {
	return fmt.Sprintf("%s %d %v", i.Mnemonic(), i.L, i.M)
}

// Generator
// Procedural interface to the parser PLP; result in "code".
type Generator struct {
	unit int32 // code address units per instruction
	code []Instruction
}

// NewGenerator returns a generator whose code addresses count instructions,
// or PM/0 words if wordAddressing is set.
func NewGenerator(wordAddressing bool) *Generator {
	g := &Generator{unit: 1}
	if wordAddressing {
		g.unit = WordsPerInstr
	}
	return g
}

// Unit returns the number of address units per instruction.
func (g *Generator) Unit() int32 {
	return g.unit
}

// Here returns the index of the next instruction.
func (g *Generator) Here() int {
	return len(g.code)
}

// Addr returns the code address of the next instruction.
func (g *Generator) Addr() int32 {
	return int32(len(g.code)) * g.unit
}

func (g *Generator) Emit(op Opcode, l int32, m Operand) int {
	g.code = append(g.code, Instruction{Op: op, L: l, M: m})
	return len(g.code) - 1
}

// Patch replaces the operand of the instruction at index at.
func (g *Generator) Patch(at int, m Operand) {
	g.code[at].M = m
}

func (g *Generator) Lit(val int32) {
	g.Emit(OpLit, 0, Resolved(val))
}

func (g *Generator) Load(levelDiff, adr int32) {
	g.Emit(OpLod, levelDiff, Resolved(adr))
}

func (g *Generator) Store(levelDiff, adr int32) {
	g.Emit(OpSto, levelDiff, Resolved(adr))
}

// Call emits a call of the procedure with the given symbol index.
func (g *Generator) Call(levelDiff int32, proc int) {
	g.Emit(OpCal, levelDiff, PendingSymbol(proc))
}

// Enter reserves the activation record of a block.
func (g *Generator) Enter(size int32) {
	g.Emit(OpInc, 0, Resolved(size))
}

// Jump emits an unconditional jump and returns its index for patching.
func (g *Generator) Jump(target int32) int {
	return g.Emit(OpJmp, 0, Resolved(target))
}

func (g *Generator) Return() {
	g.Emit(OpOpr, 0, Resolved(OprRtn))
}

func (g *Generator) Read() {
	g.Emit(OpSys, 0, Resolved(SysRed))
}

func (g *Generator) Halt() {
	g.Emit(OpSys, 0, Resolved(SysHlt))
}

// Resolve replaces every pending call operand with the address of the
// procedure it refers to.
func (g *Generator) Resolve(tab *plb.Table) error {
	for pc := range g.code {
		i, ok := g.code[pc].M.Symbol()
		if !ok {
			continue
		}
		if i < 0 || i >= tab.Len() || tab.At(i).Kind != plb.KindProc {
			return fmt.Errorf("instruction %d: operand refers to symbol %d, not a procedure", pc, i)
		}
		g.code[pc].M = Resolved(tab.At(i).Addr)
	}
	return nil
}

// Code returns a copy of the instructions emitted so far.
func (g *Generator) Code() []Instruction {
	return slices.Clone(g.code)
}
