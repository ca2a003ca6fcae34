package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/fzipp/pl0-compiler/plp"
	"github.com/fzipp/pl0-compiler/pls"
)

const (
	promptMain  = "pl0> "
	promptCont  = "...> "
	historyFile = ".pl0_history"
)

func repl(opts plp.Options) error {
	printVersion()
	fmt.Println("Enter token codes; a program ends with the period token (17)")
	fmt.Println("or an empty line. Type :quit to exit.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		src, ok := readProgram(ln)
		if !ok {
			fmt.Println()
			return nil
		}
		if src == ":quit" {
			return nil
		}
		if src == "" {
			continue
		}
		ln.AppendHistory(src)
		toks, err := pls.Read(strings.NewReader(src))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		res, err := plp.Compile(toks, opts)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if err := printResult(os.Stdout, res.Code, res.Symbols); err != nil {
			return err
		}
	}
}

// readProgram keeps prompting with the continuation prompt while the input
// is incomplete: it ends in the middle of a token or has no period token yet.
// An empty continuation line submits the input as it is.
func readProgram(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return "", false
		}
		if err != nil {
			return "", true
		}
		line = strings.TrimSpace(line)
		if b.Len() == 0 && line == ":quit" {
			return line, true
		}
		if line == "" {
			return b.String(), true
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(line)

		toks, err := pls.Read(strings.NewReader(b.String()))
		if errors.Is(err, pls.ErrIncomplete) {
			continue
		}
		if err != nil || (len(toks) > 0 && toks[len(toks)-1].Sym == pls.SymPeriod) {
			return b.String(), true
		}
	}
}
