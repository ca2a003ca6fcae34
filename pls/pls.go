// Package pls contains the token stream for the PL/0 compiler.
//
// The compiler does not read source text. Its input is a token file produced
// by an external lexer: a whitespace separated sequence of token codes, where
// the code of an identifier is followed by its name and the code of a number
// by its value. Read materializes such a file; Scanner delivers the tokens one
// at a time to the parser.
package pls

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// IdLen is the maximum length of an identifier in bytes.
const IdLen = 11

type Sym int

// token codes; the values are fixed by the token file format
const (
	SymEot Sym = iota // end of text; not a token file code
	SymIdent
	SymNumber
	SymConst
	SymVar
	SymProcedure
	SymCall
	SymBegin
	SymEnd
	SymIf
	SymThen
	SymElse
	SymWhile
	SymDo
	SymRead
	SymWrite
	SymDef
	SymPeriod
	SymBecomes
	SymMinus
	SymSemicolon
	SymLbrace
	SymRbrace
	SymEql
	SymNeq
	SymLss
	SymLeq
	SymGtr
	SymGeq
	SymPlus
	SymTimes
	SymDiv
	SymLparen
	SymRparen
)

var symNames = [...]string{
	SymEot:       "end of text",
	SymIdent:     "identifier",
	SymNumber:    "number",
	SymConst:     "const",
	SymVar:       "var",
	SymProcedure: "procedure",
	SymCall:      "call",
	SymBegin:     "begin",
	SymEnd:       "end",
	SymIf:        "if",
	SymThen:      "then",
	SymElse:      "else",
	SymWhile:     "while",
	SymDo:        "do",
	SymRead:      "read",
	SymWrite:     "write",
	SymDef:       "def",
	SymPeriod:    ".",
	SymBecomes:   ":=",
	SymMinus:     "-",
	SymSemicolon: ";",
	SymLbrace:    "{",
	SymRbrace:    "}",
	SymEql:       "=",
	SymNeq:       "<>",
	SymLss:       "<",
	SymLeq:       "<=",
	SymGtr:       ">",
	SymGeq:       ">=",
	SymPlus:      "+",
	SymTimes:     "*",
	SymDiv:       "/",
	SymLparen:    "(",
	SymRparen:    ")",
}

func (s Sym) String() string {
	if s >= 0 && int(s) < len(symNames) {
		return symNames[s]
	}
	return "Sym(" + strconv.Itoa(int(s)) + ")"
}

// Valid reports whether s may appear in a token file.
func (s Sym) Valid() bool {
	return s >= SymIdent && s <= SymRparen
}

type Ident string

// Token is one classified token. Name is set for SymIdent, Val for SymNumber.
type Token struct {
	Sym  Sym
	Name Ident
	Val  int32
}

func (t Token) String() string {
	switch t.Sym {
	case SymIdent:
		return string(t.Name)
	case SymNumber:
		return strconv.Itoa(int(t.Val))
	}
	return t.Sym.String()
}

// ErrIncomplete is reported by Read when the input ends in the middle of a
// token, i.e. after an identifier or number code without its operand.
var ErrIncomplete = errors.New("incomplete token")

// Read reads a whole token file.
func Read(r io.Reader) ([]Token, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	var toks []Token
	for sc.Scan() {
		n := len(toks)
		code, err := strconv.Atoi(sc.Text())
		if err != nil || !Sym(code).Valid() {
			return nil, fmt.Errorf("token %d: invalid token code %q", n, sc.Text())
		}
		t := Token{Sym: Sym(code)}
		switch t.Sym {
		case SymIdent:
			if !sc.Scan() {
				return nil, fmt.Errorf("token %d: identifier without name: %w", n, ErrIncomplete)
			}
			if len(sc.Text()) > IdLen {
				return nil, fmt.Errorf("token %d: identifier %q longer than %d", n, sc.Text(), IdLen)
			}
			t.Name = Ident(sc.Text())
		case SymNumber:
			if !sc.Scan() {
				return nil, fmt.Errorf("token %d: number without value: %w", n, ErrIncomplete)
			}
			v, err := strconv.ParseInt(sc.Text(), 10, 32)
			if err != nil {
				return nil, fmt.Errorf("token %d: bad number %q", n, sc.Text())
			}
			t.Val = int32(v)
		}
		toks = append(toks, t)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return toks, nil
}

// Write writes toks in the token file format, one token per line.
func Write(w io.Writer, toks []Token) error {
	bw := bufio.NewWriter(w)
	for _, t := range toks {
		switch t.Sym {
		case SymIdent:
			fmt.Fprintf(bw, "%d %s\n", t.Sym, t.Name)
		case SymNumber:
			fmt.Fprintf(bw, "%d %d\n", t.Sym, t.Val)
		default:
			fmt.Fprintf(bw, "%d\n", t.Sym)
		}
	}
	return bw.Flush()
}

// Scanner delivers the tokens of a materialized token list.
// Get advances to the next token; if it delivers SymIdent, the name is in
// field Id, if SymNumber, the value is in Ival. Past the last token Get
// delivers SymEot.
type Scanner struct {
	// results of Get
	Id   Ident
	Ival int32

	toks []Token
	pos  int
}

func NewScanner(toks []Token) *Scanner {
	return &Scanner{toks: toks, pos: -1}
}

// Pos returns the index of the token last delivered by Get.
func (s *Scanner) Pos() int {
	return s.pos
}

func (s *Scanner) Get() Sym {
	if s.pos < len(s.toks) {
		s.pos++
	}
	if s.pos == len(s.toks) {
		s.Id, s.Ival = "", 0
		return SymEot
	}
	t := s.toks[s.pos]
	s.Id, s.Ival = t.Name, t.Val
	return t.Sym
}
