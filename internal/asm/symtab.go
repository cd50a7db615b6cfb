package asm

import "github.com/frisc-toolchain/frisc/internal/ferr"

// SymbolTable is the merged label/equate table spec §3's SymbolTable type
// describes: a label maps to the byte address it was bound at; an EQU name
// maps to its literal value instead. Built once in pass 1, read-only in
// pass 2.
type SymbolTable struct {
	values     map[string]int64
	firstLines map[string]int
}

func newSymbolTable() *SymbolTable {
	return &SymbolTable{values: map[string]int64{}, firstLines: map[string]int{}}
}

// Define binds name to value at the given source line, failing with a
// DuplicateLabelErr if name was already bound.
func (s *SymbolTable) Define(name string, value int64, line int) error {
	if first, ok := s.firstLines[name]; ok {
		return &ferr.DuplicateLabelErr{Name: name, FirstLine: first, SecondLine: line}
	}
	s.values[name] = value
	s.firstLines[name] = line
	return nil
}

// AsInt64Map exposes the table in the form grammar.Encode consumes.
func (s *SymbolTable) AsInt64Map() map[string]int64 {
	return s.values
}
