// Package asm implements the FRISC two-pass assembler driver: pass 1 builds
// the label/equate symbol table and per-line byte addresses, pass 2 invokes
// the grammar's encoders with the completed table and writes a .p listing.
package asm

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/frisc-toolchain/frisc/internal/ferr"
	"github.com/frisc-toolchain/frisc/internal/grammar"
	"github.com/frisc-toolchain/frisc/internal/lexer"
	"github.com/frisc-toolchain/frisc/internal/peg"
)

// AssemblerConfig holds assembler options supplied at construction time instead of
// being read from package-level state.
type AssemblerConfig struct {
	// OutputPath overrides the default "<input base name>.p" listing path.
	OutputPath string
}

// Assembler assembles one FRISC source file into a .p listing, accumulating
// the merged label/equate table as it goes.
type Assembler struct {
	cfg     AssemblerConfig
	symbols *SymbolTable
}

func New(cfg AssemblerConfig) *Assembler {
	return &Assembler{cfg: cfg, symbols: newSymbolTable()}
}

type compiledLine struct {
	number   int
	original string
	blank    bool
	node     peg.Node
	addr     uint32
	emit     bool // true if this line gets an address + machine-code row
}

// roundToWord rounds a byte count up to the next multiple of 4, matching
// DS's "reserve whole words" semantics.
func roundToWord(n uint32) uint32 {
	if n%4 != 0 {
		return (n/4 + 1) * 4
	}
	return n
}

// Assemble assembles the file at path, writing its listing alongside it (or
// at cfg.OutputPath). It returns a (message, success) pair: on any syntax,
// encode, or label error the message names the failure and ok is false, and
// no listing file is written — mirroring the reference assembler's
// contract exactly.
func (a *Assembler) Assemble(path string) (string, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return (&ferr.LoadErr{Path: path, Detail: err.Error()}).Error(), false
	}
	sourceLines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")

	lines, msg, ok := a.pass1(sourceLines)
	if !ok {
		return msg, false
	}

	out, msg, ok := a.pass2(lines)
	if !ok {
		return msg, false
	}

	outPath := a.cfg.OutputPath
	if outPath == "" {
		outPath = defaultListingPath(path)
	}
	if err := os.WriteFile(outPath, []byte(out), 0o644); err != nil {
		return (&ferr.LoadErr{Path: outPath, Detail: err.Error()}).Error(), false
	}
	return fmt.Sprintf("assembled %d line(s) to %s", len(sourceLines), outPath), true
}

func defaultListingPath(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[:i] + ".p"
	}
	return path + ".p"
}

// pass1 lexes and parses every line, builds the symbol table, and assigns
// each code-bearing line its byte address.
func (a *Assembler) pass1(sourceLines []string) ([]compiledLine, string, bool) {
	var lines []compiledLine
	current := uint32(0)

	for i, raw := range sourceLines {
		number := i + 1
		lx := lexer.Tokenize(raw)
		if lx.Comment {
			lines = append(lines, compiledLine{number: number, original: raw, blank: true})
			continue
		}

		node, err := grammar.Parse(lx.Tokens)
		if err != nil {
			return nil, (&ferr.SyntaxErr{Line: number, Lexeme: syntaxLexeme(err)}).Error(), false
		}
		cl := compiledLine{number: number, original: raw, node: node}

		switch node.Kind {
		case grammar.KindOrgPseudo:
			if err := a.bindLabel(lx.Label, int64(current), number); err != nil {
				return nil, err.Error(), false
			}
			v, err := grammar.NumericValue(node.Children[1])
			if err != nil {
				return nil, (&ferr.SyntaxErr{Line: number, Lexeme: raw}).Error(), false
			}
			current = uint32(v)

		case grammar.KindEquPseudo:
			v, err := grammar.NumericValue(node.Children[1])
			if err != nil {
				return nil, (&ferr.SyntaxErr{Line: number, Lexeme: raw}).Error(), false
			}
			if err := a.bindLabel(lx.Label, v, number); err != nil {
				return nil, err.Error(), false
			}

		case grammar.KindSpacePseudo:
			if err := a.bindLabel(lx.Label, int64(current), number); err != nil {
				return nil, err.Error(), false
			}
			v, err := grammar.NumericValue(node.Children[1])
			if err != nil {
				return nil, (&ferr.SyntaxErr{Line: number, Lexeme: raw}).Error(), false
			}
			current += roundToWord(uint32(v))

		case grammar.KindDataPseudo:
			if err := a.bindLabel(lx.Label, int64(current), number); err != nil {
				return nil, err.Error(), false
			}
			cl.addr = current
			cl.emit = true
			width := grammar.DataWidth(node.Children[0].Text) / 8
			count := len(node.Children) - 1
			current += uint32(width * count)

		default:
			if err := a.bindLabel(lx.Label, int64(current), number); err != nil {
				return nil, err.Error(), false
			}
			cl.addr = current
			cl.emit = true
			current += 4
		}

		lines = append(lines, cl)
	}
	return lines, "", true
}

// bindLabel binds name (if non-empty) to value at line. EQU lines call this
// directly with the equate's value; every other kind calls it with the
// line's address before advancing the address counter, per spec §4.5.
func (a *Assembler) bindLabel(name string, value int64, line int) error {
	if name == "" {
		return nil
	}
	return a.symbols.Define(name, value, line)
}

func syntaxLexeme(err error) string {
	if se, ok := err.(*peg.SyntaxError); ok {
		return se.Lexeme
	}
	return err.Error()
}

// pass2 re-walks the compiled lines, now with a complete symbol table,
// encoding each code-bearing line and assembling the listing text.
func (a *Assembler) pass2(lines []compiledLine) (string, string, bool) {
	var b strings.Builder
	symbols := a.symbols.AsInt64Map()

	for _, cl := range lines {
		if cl.blank || !cl.emit {
			b.WriteString(listingRow("", nil, cl.original))
			continue
		}
		words, err := grammar.Encode(cl.node, symbols, cl.addr)
		if err != nil {
			// The encoders only know the byte address; report the source line.
			var ee *ferr.EncodeErr
			var ul *ferr.UndefinedLabelErr
			switch {
			case errors.As(err, &ee):
				ee.Line = cl.number
			case errors.As(err, &ul):
				ul.Line = cl.number
			default:
				return "", fmt.Sprintf("line %d: %s", cl.number, err.Error()), false
			}
			return "", err.Error(), false
		}
		b.WriteString(listingRow(fmt.Sprintf("%08X", cl.addr), words, cl.original))
	}
	return b.String(), "", true
}

// Symbols returns the completed label/equate table, truncated to uint32 —
// a convenience beyond spec.md's literal Assemble surface, for tooling like
// cmd/friscasm's -syms flag.
func (a *Assembler) Symbols() map[string]uint32 {
	out := make(map[string]uint32, len(a.symbols.values))
	for k, v := range a.symbols.values {
		out[k] = uint32(v)
	}
	return out
}
