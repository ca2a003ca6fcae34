// Package plb contains the symbol table of the PL/0 compiler.
//
// The table is one append-only list of symbols in declaration order. Scopes
// are not separate structures: every symbol records the nesting level it was
// declared at, and closing a scope only marks its symbols as closed, so that
// indices stay stable for the fixup of procedure calls after parsing and the
// complete table remains available for inspection.
package plb

import (
	"golang.org/x/exp/slices"

	"github.com/fzipp/pl0-compiler/pls"
)

type Kind byte

// kind values; the numbers appear in listings and object files
const (
	KindConst Kind = 1 + iota
	KindVar
	KindProc
)

func (k Kind) String() string {
	switch k {
	case KindConst:
		return "const"
	case KindVar:
		return "var"
	case KindProc:
		return "procedure"
	}
	return "kind?"
}

type Symbol struct {
	Kind   Kind
	Name   pls.Ident
	Val    int32
	Level  int32
	Addr   int32
	Closed bool // scope finished; invisible to lookups
}

// Symbol kinds and the meaning of "Val" and "Addr":
//    Kind        Val      Addr
//    ---------------------------------------------
//    KindConst   value    -
//    KindVar     -        offset in activation record
//    KindProc    -        code address of the body, set by the parser

// Table is the symbol table. The zero value is an empty table.
type Table struct {
	syms []Symbol
}

// Declare appends a new open symbol and returns its index. It does not check
// for multiple declarations; see CheckDuplicate.
func (t *Table) Declare(kind Kind, name pls.Ident, val, level, addr int32) int {
	t.syms = append(t.syms, Symbol{
		Kind:  kind,
		Name:  name,
		Val:   val,
		Level: level,
		Addr:  addr,
	})
	return len(t.syms) - 1
}

// CheckDuplicate returns the index of an open symbol named name declared at
// exactly the given level.
func (t *Table) CheckDuplicate(name pls.Ident, level int32) (int, bool) {
	i := slices.IndexFunc(t.syms, func(s Symbol) bool {
		return !s.Closed && s.Level == level && s.Name == name
	})
	return i, i >= 0
}

// Lookup returns the index of the open symbol of the given kind and name with
// the highest level, i.e. the one of the innermost enclosing scope.
func (t *Table) Lookup(name pls.Ident, kind Kind) (int, bool) {
	found := -1
	for i, s := range t.syms {
		if s.Closed || s.Kind != kind || s.Name != name {
			continue
		}
		if found < 0 || s.Level > t.syms[found].Level {
			found = i
		}
	}
	return found, found >= 0
}

// CloseScope closes the symbols of the scope at the given level. It scans
// backwards from the latest symbol, skipping closed ones, and stops at the
// first open symbol of a shallower level.
func (t *Table) CloseScope(level int32) {
	for i := len(t.syms) - 1; i >= 0; i-- {
		s := &t.syms[i]
		if s.Closed {
			continue
		}
		if s.Level < level {
			return
		}
		s.Closed = true
	}
}

func (t *Table) Len() int {
	return len(t.syms)
}

func (t *Table) At(i int) Symbol {
	return t.syms[i]
}

func (t *Table) SetAddr(i int, addr int32) {
	t.syms[i].Addr = addr
}

// Symbols returns a copy of all symbols in declaration order.
func (t *Table) Symbols() []Symbol {
	return slices.Clone(t.syms)
}
