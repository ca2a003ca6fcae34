package plg

import (
	"bufio"
	"fmt"
	"io"
)

// WriteListing prints code as an assembly listing, one numbered line per
// instruction.
func WriteListing(w io.Writer, code []Instruction) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "Assembly Code:")
	fmt.Fprintln(bw, "Line\tOP Code\tOP Name\tL\tM")
	for pc, i := range code {
		fmt.Fprintf(bw, "%d\t%d\t%s\t%d\t%v\n", pc, i.Op, i.Mnemonic(), i.L, i.M)
	}
	fmt.Fprintln(bw)
	return bw.Flush()
}

// WriteText writes code in the PM/0 loader format: "op l m" per line.
func WriteText(w io.Writer, code []Instruction) error {
	bw := bufio.NewWriter(w)
	for pc, i := range code {
		if i.M.Pending() {
			return fmt.Errorf("instruction %d: unresolved operand %v", pc, i.M)
		}
		fmt.Fprintf(bw, "%d %d %d\n", i.Op, i.L, i.M.Value())
	}
	return bw.Flush()
}
