package plg

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"

	"github.com/fzipp/pl0-compiler/plb"
)

func TestEmitAndPatch(t *testing.T) {
	g := NewGenerator(false)
	if at := g.Jump(0); at != 0 {
		t.Fatalf("Jump at %d, want 0", at)
	}
	g.Enter(FrameHeader + 1)
	g.Lit(5)
	g.Store(0, 3)
	if g.Here() != 4 || g.Addr() != 4 {
		t.Errorf("Here() = %d, Addr() = %d, want 4, 4", g.Here(), g.Addr())
	}
	g.Patch(0, Resolved(1))
	g.Halt()

	want := []Instruction{
		{OpJmp, 0, Resolved(1)},
		{OpInc, 0, Resolved(4)},
		{OpLit, 0, Resolved(5)},
		{OpSto, 0, Resolved(3)},
		{OpSys, 0, Resolved(SysHlt)},
	}
	if got := g.Code(); !reflect.DeepEqual(got, want) {
		t.Errorf("Code() = %v, want %v", got, want)
	}
}

func TestWordAddressing(t *testing.T) {
	g := NewGenerator(true)
	g.Jump(0)
	g.Enter(3)
	if g.Unit() != WordsPerInstr || g.Addr() != 2*WordsPerInstr {
		t.Errorf("Unit() = %d, Addr() = %d", g.Unit(), g.Addr())
	}
}

func TestResolve(t *testing.T) {
	var tab plb.Table
	tab.Declare(plb.KindProc, "main", 0, 0, 0)
	p := tab.Declare(plb.KindProc, "p", 0, 0, 0)

	g := NewGenerator(false)
	g.Jump(0)
	g.Call(0, p)
	if !g.Code()[1].M.Pending() {
		t.Fatal("call operand should be pending before Resolve")
	}
	if i, ok := g.Code()[1].M.Symbol(); !ok || i != p {
		t.Fatalf("Symbol() = %d, %v, want %d", i, ok, p)
	}
	tab.SetAddr(p, 7)
	if err := g.Resolve(&tab); err != nil {
		t.Fatal(err)
	}
	m := g.Code()[1].M
	if m.Pending() || m.Value() != 7 {
		t.Errorf("resolved operand = %v, want 7", m)
	}
	if g.Code()[0].M.Value() != 0 {
		t.Error("Resolve changed a non-call operand")
	}
}

func TestResolveRejectsNonProcedure(t *testing.T) {
	var tab plb.Table
	tab.Declare(plb.KindProc, "main", 0, 0, 0)
	x := tab.Declare(plb.KindVar, "x", 0, 0, 3)
	for _, sym := range []int{x, 5} {
		g := NewGenerator(false)
		g.Call(0, sym)
		if err := g.Resolve(&tab); err == nil {
			t.Errorf("Resolve with call to symbol %d: expected error", sym)
		}
	}
}

func TestMnemonic(t *testing.T) {
	tests := []struct {
		i    Instruction
		want string
	}{
		{Instruction{OpLit, 0, Resolved(2)}, "LIT"},
		{Instruction{OpOpr, 0, Resolved(OprRtn)}, "RTN"},
		{Instruction{OpOpr, 0, Resolved(OprGeq)}, "GEQ"},
		{Instruction{OpOpr, 0, Resolved(11)}, "err"},
		{Instruction{OpLod, 1, Resolved(3)}, "LOD"},
		{Instruction{OpSto, 1, Resolved(3)}, "STO"},
		{Instruction{OpCal, 0, PendingSymbol(1)}, "CAL"},
		{Instruction{OpInc, 0, Resolved(4)}, "INC"},
		{Instruction{OpJmp, 0, Resolved(4)}, "JMP"},
		{Instruction{OpJpc, 0, Resolved(4)}, "JPC"},
		{Instruction{OpSys, 0, Resolved(SysWrt)}, "WRT"},
		{Instruction{OpSys, 0, Resolved(SysRed)}, "RED"},
		{Instruction{OpSys, 0, Resolved(SysHlt)}, "HLT"},
		{Instruction{OpSys, 0, Resolved(9)}, "err"},
		{Instruction{Opcode(42), 0, Resolved(0)}, "err"},
	}
	for _, tt := range tests {
		if got := tt.i.Mnemonic(); got != tt.want {
			t.Errorf("%v.Mnemonic() = %q, want %q", tt.i, got, tt.want)
		}
	}
}

func TestWriteListing(t *testing.T) {
	code := []Instruction{
		{OpJmp, 0, Resolved(1)},
		{OpInc, 0, Resolved(3)},
		{OpSys, 0, Resolved(SysHlt)},
	}
	var sb strings.Builder
	if err := WriteListing(&sb, code); err != nil {
		t.Fatal(err)
	}
	want := "Assembly Code:\n" +
		"Line\tOP Code\tOP Name\tL\tM\n" +
		"0\t7\tJMP\t0\t1\n" +
		"1\t6\tINC\t0\t3\n" +
		"2\t9\tHLT\t0\t3\n" +
		"\n"
	if got := sb.String(); got != want {
		t.Errorf("WriteListing =\n%q\nwant\n%q", got, want)
	}
}

func TestWriteText(t *testing.T) {
	code := []Instruction{
		{OpJmp, 0, Resolved(1)},
		{OpLod, 1, Resolved(4)},
	}
	var sb strings.Builder
	if err := WriteText(&sb, code); err != nil {
		t.Fatal(err)
	}
	if got, want := sb.String(), "7 0 1\n3 1 4\n"; got != want {
		t.Errorf("WriteText = %q, want %q", got, want)
	}
	code = append(code, Instruction{OpCal, 0, PendingSymbol(0)})
	if err := WriteText(&sb, code); err == nil {
		t.Error("WriteText with pending operand: expected error")
	}
}

func TestObjectRoundTrip(t *testing.T) {
	obj := &Object{
		Name: "prog",
		ID:   ulid.Make(),
		Unit: WordsPerInstr,
		Code: []Instruction{
			{OpJmp, 0, Resolved(6)},
			{OpInc, 0, Resolved(4)},
			{OpLit, 0, Resolved(-70000)},
			{OpSto, 0, Resolved(3)},
			{OpSys, 0, Resolved(SysHlt)},
		},
		Symbols: []plb.Symbol{
			{Kind: plb.KindProc, Name: "main", Addr: 3, Closed: true},
			{Kind: plb.KindConst, Name: "a", Val: -5, Closed: true},
			{Kind: plb.KindVar, Name: "b", Level: 1, Addr: 3},
		},
	}
	var buf bytes.Buffer
	if err := WriteObject(&buf, obj); err != nil {
		t.Fatal(err)
	}
	got, err := ReadObject(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, obj) {
		t.Errorf("ReadObject = %+v, want %+v", got, obj)
	}
}

func TestObjectErrors(t *testing.T) {
	obj := &Object{Name: "p", Code: []Instruction{{OpCal, 0, PendingSymbol(0)}}}
	if err := WriteObject(&bytes.Buffer{}, obj); err == nil {
		t.Error("WriteObject with pending operand: expected error")
	}

	var buf bytes.Buffer
	if err := WriteObject(&buf, &Object{Name: "p", Unit: 1}); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()
	if _, err := ReadObject(bytes.NewReader(data[:len(data)-1])); err == nil {
		t.Error("ReadObject of truncated file: expected error")
	}
	bad := bytes.Clone(data)
	bad[2] = VersionKey + 1
	if _, err := ReadObject(bytes.NewReader(bad)); err == nil {
		t.Error("ReadObject with wrong version: expected error")
	}
}
