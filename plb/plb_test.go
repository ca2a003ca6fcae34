package plb

import (
	"strings"
	"testing"

	"github.com/fzipp/pl0-compiler/pls"
)

func TestDeclareIndices(t *testing.T) {
	var tab Table
	for i, name := range []string{"main", "a", "b"} {
		if got := tab.Declare(KindVar, pls.Ident(name), 0, 0, 0); got != i {
			t.Errorf("Declare(%s) = %d, want %d", name, got, i)
		}
	}
	if tab.Len() != 3 {
		t.Errorf("Len() = %d, want 3", tab.Len())
	}
}

func TestCheckDuplicate(t *testing.T) {
	var tab Table
	tab.Declare(KindProc, "main", 0, 0, 0)
	a := tab.Declare(KindConst, "a", 5, 0, 0)
	tab.Declare(KindProc, "p", 0, 0, 0)
	tab.Declare(KindVar, "x", 0, 1, 3)

	tests := []struct {
		name  string
		level int32
		want  int
		ok    bool
	}{
		{"a", 0, a, true},
		{"a", 1, -1, false},
		{"x", 1, 3, true},
		{"x", 0, -1, false},
		{"y", 0, -1, false},
	}
	for _, tt := range tests {
		got, ok := tab.CheckDuplicate(pls.Ident(tt.name), tt.level)
		if got != tt.want || ok != tt.ok {
			t.Errorf("CheckDuplicate(%s, %d) = %d, %v, want %d, %v", tt.name, tt.level, got, ok, tt.want, tt.ok)
		}
	}

	tab.CloseScope(1)
	if _, ok := tab.CheckDuplicate("x", 1); ok {
		t.Error("closed symbol reported as duplicate")
	}
}

func TestLookupPrefersInnermost(t *testing.T) {
	var tab Table
	tab.Declare(KindProc, "main", 0, 0, 0)
	tab.Declare(KindVar, "x", 0, 0, 3)
	tab.Declare(KindProc, "p", 0, 0, 0)
	inner := tab.Declare(KindVar, "x", 0, 1, 3)
	tab.Declare(KindProc, "q", 0, 1, 0)

	i, ok := tab.Lookup("x", KindVar)
	if !ok || i != inner {
		t.Errorf("Lookup(x) = %d, %v, want %d", i, ok, inner)
	}
	for n := 0; n < 3; n++ {
		if j, _ := tab.Lookup("x", KindVar); j != i {
			t.Errorf("repeated Lookup(x) = %d, want %d", j, i)
		}
	}
	if _, ok := tab.Lookup("x", KindConst); ok {
		t.Error("Lookup(x, const) found a variable")
	}
	if _, ok := tab.Lookup("nope", KindVar); ok {
		t.Error("Lookup(nope) found something")
	}
}

func TestLookupShadowingAcrossKinds(t *testing.T) {
	var tab Table
	tab.Declare(KindProc, "main", 0, 0, 0)
	c := tab.Declare(KindConst, "x", 7, 0, 0)
	tab.Declare(KindProc, "p", 0, 0, 0)
	v := tab.Declare(KindVar, "x", 0, 1, 3)

	ci, _ := tab.Lookup("x", KindConst)
	vi, _ := tab.Lookup("x", KindVar)
	if ci != c || vi != v {
		t.Fatalf("Lookup = %d, %d, want %d, %d", ci, vi, c, v)
	}
	if tab.At(vi).Level <= tab.At(ci).Level {
		t.Error("variable should be the more local declaration")
	}
}

func TestCloseScope(t *testing.T) {
	var tab Table
	tab.Declare(KindProc, "main", 0, 0, 0) // 0
	tab.Declare(KindVar, "g", 0, 0, 3)     // 1
	tab.Declare(KindProc, "p", 0, 0, 0)    // 2
	tab.Declare(KindVar, "a", 0, 1, 3)     // 3
	tab.Declare(KindProc, "q", 0, 1, 0)    // 4
	tab.Declare(KindVar, "b", 0, 2, 3)     // 5
	tab.CloseScope(2)                      // end of q
	tab.Declare(KindConst, "c", 1, 1, 0)   // 6
	tab.CloseScope(1)                      // end of p

	wantClosed := []bool{false, false, false, true, true, true, true}
	for i, want := range wantClosed {
		if got := tab.At(i).Closed; got != want {
			t.Errorf("symbol %d (%s) closed = %v, want %v", i, tab.At(i).Name, got, want)
		}
	}

	// p is visible again for redeclaration checks at level 0,
	// its locals may be declared anew at level 1
	if _, ok := tab.CheckDuplicate("p", 0); !ok {
		t.Error("p should still be open")
	}
	if _, ok := tab.CheckDuplicate("a", 1); ok {
		t.Error("a should be closed")
	}

	tab.CloseScope(0)
	for i := 0; i < tab.Len(); i++ {
		if !tab.At(i).Closed {
			t.Errorf("symbol %d open after closing level 0", i)
		}
	}
	if tab.Len() != 7 {
		t.Errorf("closing removed symbols: Len() = %d", tab.Len())
	}
}

func TestSymbolsIsCopy(t *testing.T) {
	var tab Table
	i := tab.Declare(KindProc, "main", 0, 0, 0)
	syms := tab.Symbols()
	syms[0].Addr = 99
	if tab.At(i).Addr != 0 {
		t.Errorf("modifying Symbols() changed the table")
	}
	tab.SetAddr(i, 4)
	if tab.At(i).Addr != 4 {
		t.Errorf("Addr = %d, want 4", tab.At(i).Addr)
	}
}

func TestWriteTable(t *testing.T) {
	syms := []Symbol{
		{Kind: KindProc, Name: "main", Level: 0, Addr: 1, Closed: true},
		{Kind: KindConst, Name: "a", Val: 5, Closed: true},
	}
	var sb strings.Builder
	if err := WriteTable(&sb, syms); err != nil {
		t.Fatal(err)
	}
	want := "Symbol Table:\n" +
		"Kind | Name        | Value | Level | Address | Mark\n" +
		"---------------------------------------------------\n" +
		"   3 |        main |     0 |     0 |     1 |     1\n" +
		"   1 |           a |     5 |     0 |     0 |     1\n" +
		"\n"
	if got := sb.String(); got != want {
		t.Errorf("WriteTable =\n%s\nwant\n%s", got, want)
	}
}
