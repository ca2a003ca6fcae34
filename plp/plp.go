// Package plp contains the parser of the PL/0 compiler.
//
// The parser is a recursive descent over the token list delivered by the
// scanner PLS. It enters declarations into the symbol table PLB and emits
// code through the generator PLG in a single pass. Grammar:
//
//	program     = block "." .
//	block       = declarations { "procedure" ident "{" block "}" } statement .
//	declarations = { "const" ident ":=" ["-"] number ";" | "var" ident ";" } .
//	statement   = [ "def" ident ":=" factor
//	              | "call" ident
//	              | "begin" statement { ";" statement } "end"
//	              | "read" ident ] .
//	factor      = ident | number .
//
// The first error ends the compilation.
package plp

import (
	"io"
	"os"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/fzipp/pl0-compiler/plb"
	"github.com/fzipp/pl0-compiler/plg"
	"github.com/fzipp/pl0-compiler/pls"
)

// MainName is the name of the procedure symbol of the main program.
const MainName = "main"

// Parser of the PL/0 compiler. Uses Scanner PLS to obtain symbols (tokens),
// the symbol table PLB and generator PLG. All compilation state lives here.
type Parser struct {
	pls *pls.Scanner
	plb *plb.Table
	plg *plg.Generator
	log *logrus.Entry

	sym   pls.Sym // last symbol read
	level int32
}

type bailout struct {
	err *Error
}

func NewParser(s *pls.Scanner, t *plb.Table, g *plg.Generator, log *logrus.Entry) *Parser {
	return &Parser{pls: s, plb: t, plg: g, log: log}
}

func (p *Parser) nextSym() {
	p.sym = p.pls.Get()
}

// mark reports an error at the current token and abandons the compilation.
func (p *Parser) mark(kind Kind, ctx Context, want pls.Sym) {
	e := &Error{
		Kind:    kind,
		Context: ctx,
		Want:    want,
		Pos:     p.pls.Pos(),
	}
	if p.sym == pls.SymIdent {
		e.Name = p.pls.Id
	}
	panic(bailout{e})
}

func (p *Parser) check(s pls.Sym, ctx Context) {
	if p.sym == s {
		p.nextSym()
	} else {
		p.mark(ExpectedTokenMissing, ctx, s)
	}
}

// ident checks for an identifier without consuming it.
func (p *Parser) ident(ctx Context) pls.Ident {
	if p.sym != pls.SymIdent {
		p.mark(ExpectedTokenMissing, ctx, pls.SymIdent)
	}
	return p.pls.Id
}

func (p *Parser) checkDuplicate(id pls.Ident) {
	if _, dup := p.plb.CheckDuplicate(id, p.level); dup {
		p.mark(DuplicateDeclaration, CtxNone, 0)
	}
}

// qualIdent resolves the current identifier as a symbol of the given kind.
// If there is none, the error tells whether the name is undeclared or
// declared with another kind.
func (p *Parser) qualIdent(kind plb.Kind, ctx Context) int {
	id := p.pls.Id
	if i, ok := p.plb.Lookup(id, kind); ok {
		return i
	}
	for k := plb.KindConst; k <= plb.KindProc; k++ {
		if _, ok := p.plb.Lookup(id, k); ok && k != kind {
			p.mark(WrongKindForUse, ctx, 0)
		}
	}
	p.mark(UndeclaredIdentifier, ctx, 0)
	return -1
}

func (p *Parser) levelDiff(i int) int32 {
	return p.level - p.plb.At(i).Level
}

// expressions

func (p *Parser) factor() {
	switch p.sym {
	case pls.SymIdent:
		id := p.pls.Id
		c, isConst := p.plb.Lookup(id, plb.KindConst)
		v, isVar := p.plb.Lookup(id, plb.KindVar)
		switch {
		case !isConst && !isVar:
			if _, ok := p.plb.Lookup(id, plb.KindProc); ok {
				p.mark(WrongKindForUse, CtxArith, 0)
			}
			p.mark(UndeclaredIdentifier, CtxArith, 0)
		case isVar && (!isConst || p.plb.At(v).Level >= p.plb.At(c).Level):
			p.plg.Load(p.levelDiff(v), p.plb.At(v).Addr)
		default:
			p.plg.Lit(p.plb.At(c).Val)
		}
		p.nextSym()
	case pls.SymNumber:
		p.plg.Lit(p.pls.Ival)
		p.nextSym()
	default:
		p.mark(InvalidExpression, CtxArith, 0)
	}
}

// statements

func startsStatement(sym pls.Sym) bool {
	switch sym {
	case pls.SymIdent, pls.SymCall, pls.SymBegin, pls.SymRead, pls.SymDef:
		return true
	}
	return false
}

func (p *Parser) statement() {
	switch p.sym {
	case pls.SymDef:
		// assignment
		p.nextSym()
		p.ident(CtxAssign)
		v := p.qualIdent(plb.KindVar, CtxAssign)
		p.nextSym()
		p.check(pls.SymBecomes, CtxAssign)
		p.factor()
		p.plg.Store(p.levelDiff(v), p.plb.At(v).Addr)
	case pls.SymCall:
		p.nextSym()
		p.ident(CtxCall)
		proc := p.qualIdent(plb.KindProc, CtxCall)
		p.nextSym()
		// the address is fixed up after parsing
		p.plg.Call(p.levelDiff(proc), proc)
	case pls.SymBegin:
		for {
			p.nextSym()
			p.statement()
			if p.sym != pls.SymSemicolon {
				break
			}
		}
		if p.sym != pls.SymEnd {
			if startsStatement(p.sym) {
				p.mark(MissingSeparator, CtxBegin, pls.SymSemicolon)
			}
			p.mark(MissingClosingDelimiter, CtxBegin, pls.SymEnd)
		}
		p.nextSym()
	case pls.SymRead:
		p.nextSym()
		p.ident(CtxRead)
		v := p.qualIdent(plb.KindVar, CtxRead)
		p.nextSym()
		p.plg.Read()
		p.plg.Store(p.levelDiff(v), p.plb.At(v).Addr)
	}
	// anything else is the empty statement
}

// declarations

func (p *Parser) constDecl() {
	p.nextSym()
	id := p.ident(CtxConst)
	p.checkDuplicate(id)
	p.nextSym()
	p.check(pls.SymBecomes, CtxConst)
	neg := false
	if p.sym == pls.SymMinus {
		neg = true
		p.nextSym()
	}
	if p.sym != pls.SymNumber {
		p.mark(ExpectedTokenMissing, CtxConst, pls.SymNumber)
	}
	val := p.pls.Ival
	if neg {
		val = -val
	}
	p.nextSym()
	p.plb.Declare(plb.KindConst, id, val, p.level, 0)
	p.check(pls.SymSemicolon, CtxConst)
}

func (p *Parser) varDecl(nOfVars int32) {
	p.nextSym()
	id := p.ident(CtxVar)
	p.checkDuplicate(id)
	p.nextSym()
	p.plb.Declare(plb.KindVar, id, 0, p.level, plg.FrameHeader+nOfVars)
	p.check(pls.SymSemicolon, CtxVar)
}

// declarations parses constant and variable declarations and returns the
// size of the activation record.
func (p *Parser) declarations() int32 {
	nOfVars := int32(0)
	for {
		switch p.sym {
		case pls.SymConst:
			p.constDecl()
		case pls.SymVar:
			p.varDecl(nOfVars)
			nOfVars++
		default:
			return plg.FrameHeader + nOfVars
		}
	}
}

func (p *Parser) procedureDecls() {
	for p.sym == pls.SymProcedure {
		p.nextSym()
		id := p.ident(CtxProcedure)
		p.checkDuplicate(id)
		p.nextSym()
		proc := p.plb.Declare(plb.KindProc, id, 0, p.level, 0)
		p.check(pls.SymLbrace, CtxProcedure)
		p.block(proc)
		p.plg.Return()
		if p.sym != pls.SymRbrace {
			p.mark(MissingClosingDelimiter, CtxProcedure, pls.SymRbrace)
		}
		p.nextSym()
	}
}

// block compiles the body of the procedure with symbol index proc and
// records its code address there.
func (p *Parser) block(proc int) {
	p.level++
	size := p.declarations()
	p.procedureDecls()
	adr := p.plg.Addr()
	p.plb.SetAddr(proc, adr)
	p.log.WithFields(logrus.Fields{
		"proc":  p.plb.At(proc).Name,
		"level": p.level,
		"addr":  adr,
		"frame": size,
	}).Debug("procedure body")
	p.plg.Enter(size)
	p.statement()
	p.plb.CloseScope(p.level)
	p.level--
}

func (p *Parser) program() error {
	main := p.plb.Declare(plb.KindProc, MainName, 0, 0, 0)
	p.level = -1
	entry := p.plg.Jump(0)
	p.nextSym()
	p.block(main)
	if p.sym != pls.SymPeriod {
		p.mark(ExpectedTokenMissing, CtxProgram, pls.SymPeriod)
	}
	if err := p.plg.Resolve(p.plb); err != nil {
		return err
	}
	p.plg.Patch(entry, plg.Resolved(p.plb.At(main).Addr))
	p.plg.Halt()
	return nil
}

// Options configure a compilation.
type Options struct {
	// WordAddressing makes code addresses count PM/0 words (three per
	// instruction) instead of instructions.
	WordAddressing bool
	// Logger receives debug output; nil means the standard logrus logger.
	Logger *logrus.Logger
}

// Result holds the output of a successful compilation.
type Result struct {
	ID      ulid.ULID
	Unit    int32 // code address units per instruction
	Code    []plg.Instruction
	Symbols []plb.Symbol
}

// Object returns the result as the content of an object file.
func (r *Result) Object(name string) *plg.Object {
	return &plg.Object{
		Name:    name,
		ID:      r.ID,
		Unit:    r.Unit,
		Code:    r.Code,
		Symbols: r.Symbols,
	}
}

func CompileFile(path string, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return CompileReader(f, opts)
}

// CompileReader compiles a token file.
func CompileReader(r io.Reader, opts Options) (*Result, error) {
	toks, err := pls.Read(r)
	if err != nil {
		return nil, err
	}
	return Compile(toks, opts)
}

// Compile compiles a program given as a token list. Compilation errors are
// of type *Error.
func Compile(toks []pls.Token, opts Options) (res *Result, err error) {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	id := ulid.Make()
	log := logger.WithField("id", id.String())

	var tab plb.Table
	g := plg.NewGenerator(opts.WordAddressing)
	p := NewParser(pls.NewScanner(toks), &tab, g, log)

	defer func() {
		if rec := recover(); rec != nil {
			b, ok := rec.(bailout)
			if !ok {
				panic(rec)
			}
			log.WithField("pos", b.err.Pos).Debug(b.err.Message())
			res, err = nil, b.err
		}
	}()
	if err := p.program(); err != nil {
		return nil, err
	}
	res = &Result{
		ID:      id,
		Unit:    g.Unit(),
		Code:    g.Code(),
		Symbols: tab.Symbols(),
	}
	if logger.IsLevelEnabled(logrus.DebugLevel) {
		var sb strings.Builder
		_ = plg.WriteListing(&sb, res.Code)
		log.Debugln(sb.String())
	}
	return res, nil
}
