package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/fzipp/pl0-compiler/plb"
	"github.com/fzipp/pl0-compiler/plg"
	"github.com/fzipp/pl0-compiler/plp"
)

func usage() {
	printVersion()
	fail(`
Compiles PL/0 programs given as token files to object files for the
PM/0 stack machine (.pco) and prints their code and symbol table.

Usage:
    pc [-v] [-w] [-t] [-o dir] tokenfile...
    pc -d objfile...
    pc -i [-w]

Flags:
    -v  Logs debug output (procedure addresses, disassembly).
    -w  Counts code addresses in PM/0 words, 3 per instruction.
    -t  Also writes PM/0 loader text (.pm0): "op l m" per line.
    -o  Directory for output files (default ".").
    -d  Prints code and symbol table of object files.
    -i  Reads token codes interactively.

Examples:
    pc prog.tok
    pc -w -t -o out a.tok b.tok
    pc -d prog.pco`)
}

func main() {
	verbose := flag.Bool("v", false, "logs debug output")
	words := flag.Bool("w", false, "counts code addresses in PM/0 words")
	text := flag.Bool("t", false, "also writes PM/0 loader text")
	outDir := flag.String("o", ".", "directory for output files")
	dump := flag.Bool("d", false, "prints the content of object files")
	interactive := flag.Bool("i", false, "reads token codes interactively")
	flag.Usage = usage
	flag.Parse()

	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	opts := plp.Options{WordAddressing: *words}

	if *interactive {
		check(repl(opts))
		return
	}
	if flag.NArg() < 1 {
		usage()
	}
	printVersion()
	if *dump {
		check(dumpFiles(flag.Args()))
		return
	}
	check(compileFiles(flag.Args(), opts, *outDir, *text))
}

func compileFiles(paths []string, opts plp.Options, outDir string, text bool) error {
	var errs *multierror.Error
	for _, path := range paths {
		if err := compileFile(path, opts, outDir, text); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", path, err))
		}
	}
	return errs.ErrorOrNil()
}

func compileFile(path string, opts plp.Options, outDir string, text bool) error {
	log := logrus.WithField("file", path)
	res, err := plp.CompileFile(path, opts)
	if err != nil {
		log.WithError(err).Debug("compilation failed")
		return err
	}
	if err := printResult(os.Stdout, res.Code, res.Symbols); err != nil {
		return err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	objPath := filepath.Join(outDir, name+".pco")
	err = writeFile(objPath, func(w io.Writer) error {
		return plg.WriteObject(w, res.Object(name))
	})
	if err != nil {
		return err
	}
	if text {
		err = writeFile(filepath.Join(outDir, name+".pm0"), func(w io.Writer) error {
			return plg.WriteText(w, res.Code)
		})
		if err != nil {
			return err
		}
	}
	log.WithFields(logrus.Fields{
		"id":           res.ID.String(),
		"instructions": len(res.Code),
		"symbols":      len(res.Symbols),
		"object":       objPath,
	}).Info("compiled")
	return nil
}

func dumpFiles(paths []string) error {
	var errs *multierror.Error
	for _, path := range paths {
		if err := dumpFile(path); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", path, err))
		}
	}
	return errs.ErrorOrNil()
}

func dumpFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	obj, err := plg.ReadObject(f)
	if err != nil {
		return err
	}
	fmt.Printf("Object %s  id %s  %d address unit(s) per instruction\n\n", obj.Name, obj.ID, obj.Unit)
	return printResult(os.Stdout, obj.Code, obj.Symbols)
}

func printResult(w io.Writer, code []plg.Instruction, syms []plb.Symbol) error {
	if err := plg.WriteListing(w, code); err != nil {
		return err
	}
	return plb.WriteTable(w, syms)
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}

func printVersion() {
	fmt.Println("PL/0 Compiler for PM/0")
}

func check(err error) {
	if err != nil {
		fail(err)
	}
}

func fail(msg interface{}) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
