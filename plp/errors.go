package plp

import (
	"fmt"

	"github.com/fzipp/pl0-compiler/pls"
)

// Kind classifies a compilation error.
type Kind int

const (
	ExpectedTokenMissing Kind = 1 + iota
	DuplicateDeclaration
	UndeclaredIdentifier
	WrongKindForUse
	MissingSeparator
	MissingClosingDelimiter
	InvalidExpression
)

func (k Kind) String() string {
	switch k {
	case ExpectedTokenMissing:
		return "expected token missing"
	case DuplicateDeclaration:
		return "duplicate declaration"
	case UndeclaredIdentifier:
		return "undeclared identifier"
	case WrongKindForUse:
		return "wrong kind for use"
	case MissingSeparator:
		return "missing separator"
	case MissingClosingDelimiter:
		return "missing closing delimiter"
	case InvalidExpression:
		return "invalid expression"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Context is the construct in which an error was detected.
type Context int

const (
	CtxNone      Context = iota
	CtxProgram           // end of program
	CtxConst             // constant declaration
	CtxVar               // variable declaration
	CtxProcedure         // procedure declaration
	CtxAssign            // def statement
	CtxCall              // call statement
	CtxRead              // read statement
	CtxBegin             // begin-end sequence
	CtxArith             // operand of an expression
)

// Error is a compilation error. Pos is the index of the offending token in
// the token list; it equals the length of the list if the input ended early.
// Want is the expected token for ExpectedTokenMissing, MissingSeparator and
// MissingClosingDelimiter. Name is the identifier the error refers to, if any.
type Error struct {
	Kind    Kind
	Context Context
	Want    pls.Sym
	Pos     int
	Name    pls.Ident
}

// Code returns the error number and case number of the classic PL/0 parser
// error table. Case is 0 for errors without cases.
func (e *Error) Code() (code, cas int) {
	switch e.Kind {
	case ExpectedTokenMissing:
		switch e.Want {
		case pls.SymPeriod:
			return 1, 0
		case pls.SymIdent:
			return 2, map[Context]int{CtxConst: 1, CtxVar: 2, CtxProcedure: 3, CtxCall: 4, CtxRead: 5, CtxAssign: 6}[e.Context]
		case pls.SymBecomes:
			return 4, map[Context]int{CtxConst: 1, CtxAssign: 2}[e.Context]
		case pls.SymNumber:
			return 5, 0
		case pls.SymSemicolon:
			return 6, map[Context]int{CtxConst: 1, CtxVar: 2}[e.Context]
		case pls.SymLbrace:
			return 14, 0
		}
	case DuplicateDeclaration:
		return 3, 0
	case WrongKindForUse:
		return map[Context]int{CtxAssign: 7, CtxCall: 9, CtxRead: 13, CtxArith: 17}[e.Context], 0
	case UndeclaredIdentifier:
		return 8, map[Context]int{CtxAssign: 1, CtxCall: 2, CtxRead: 3, CtxArith: 4}[e.Context]
	case MissingSeparator:
		return 6, 3
	case MissingClosingDelimiter:
		if e.Context == CtxProcedure {
			return 15, 0
		}
		return 10, 0
	case InvalidExpression:
		return 19, 0
	}
	return 0, 0
}

var useNames = map[Context]string{
	CtxAssign: "assignment statement",
	CtxCall:   "call statement",
	CtxRead:   "read statement",
	CtxArith:  "arithmetic expression",
}

var declNames = map[Context]string{
	CtxConst:     "constant declaration",
	CtxVar:       "variable declaration",
	CtxProcedure: "procedure declaration",
	CtxAssign:    "assignment statement",
	CtxCall:      "call statement",
	CtxRead:      "read statement",
	CtxProgram:   "program",
}

// Message returns a description of the error without position.
func (e *Error) Message() string {
	switch e.Kind {
	case ExpectedTokenMissing:
		return fmt.Sprintf("missing %s in %s", e.Want, declNames[e.Context])
	case DuplicateDeclaration:
		return fmt.Sprintf("identifier %s is declared multiple times by a procedure", e.Name)
	case UndeclaredIdentifier:
		return fmt.Sprintf("undeclared identifier %s used in %s", e.Name, useNames[e.Context])
	case WrongKindForUse:
		switch e.Context {
		case CtxAssign:
			return fmt.Sprintf("%s: procedures and constants cannot be assigned to", e.Name)
		case CtxCall:
			return fmt.Sprintf("%s: variables and constants cannot be called", e.Name)
		case CtxRead:
			return fmt.Sprintf("%s: procedures and constants cannot be read", e.Name)
		case CtxArith:
			return fmt.Sprintf("%s: procedures cannot be used in arithmetic", e.Name)
		}
	case MissingSeparator:
		return "missing ; after statement in begin-end"
	case MissingClosingDelimiter:
		if e.Context == CtxProcedure {
			return "{ must be followed by }"
		}
		return "begin must be followed by end"
	case InvalidExpression:
		return "invalid expression"
	}
	return e.Kind.String()
}

func (e *Error) Error() string {
	code, cas := e.Code()
	if cas != 0 {
		return fmt.Sprintf("token %d: parser error %d-%d: %s", e.Pos, code, cas, e.Message())
	}
	return fmt.Sprintf("token %d: parser error %d: %s", e.Pos, code, e.Message())
}
