package plb

import (
	"bufio"
	"fmt"
	"io"
)

// WriteTable prints syms as a table with one row per symbol in declaration
// order. The Mark column is 1 for closed symbols.
func WriteTable(w io.Writer, syms []Symbol) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "Symbol Table:")
	fmt.Fprintln(bw, "Kind | Name        | Value | Level | Address | Mark")
	fmt.Fprintln(bw, "---------------------------------------------------")
	for _, s := range syms {
		mark := 0
		if s.Closed {
			mark = 1
		}
		fmt.Fprintf(bw, "%4d | %11s | %5d | %5d | %5d | %5d\n", s.Kind, s.Name, s.Val, s.Level, s.Addr, mark)
	}
	fmt.Fprintln(bw)
	return bw.Flush()
}
