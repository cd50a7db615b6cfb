package asm

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSource(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writeSource: %v", err)
	}
	return path
}

// TestAssembleScenario1 is spec §8 Scenario 1: ORG 100, a labeled MOVE, then
// HALT, assembling to two words at 0x64 and 0x68.
func TestAssembleScenario1(t *testing.T) {
	dir := t.TempDir()
	src := "        ORG %D100\n" +
		"LAB     MOVE %D5, R1\n" +
		"        HALT\n"
	path := writeSource(t, dir, "scenario1.frisc", src)

	a := New(AssemblerConfig{})
	msg, ok := a.Assemble(path)
	if !ok {
		t.Fatalf("Assemble failed: %s", msg)
	}

	if got := a.Symbols()["LAB"]; got != 0x64 {
		t.Fatalf("LAB = 0x%X, want 0x64", got)
	}

	out, err := os.ReadFile(filepath.Join(dir, "scenario1.p"))
	if err != nil {
		t.Fatalf("reading listing: %v", err)
	}
	listing := string(out)
	if !strings.Contains(listing, "00000064") {
		t.Errorf("listing missing address 0x64:\n%s", listing)
	}
	if !strings.Contains(listing, "00000068") {
		t.Errorf("listing missing address 0x68:\n%s", listing)
	}
}

// TestAssembleEquAndDS checks that EQU binds its label to the literal value
// (not an address) and that DS both binds its label to the address *before*
// advancing and rounds its reservation up to a whole word.
func TestAssembleEquAndDS(t *testing.T) {
	dir := t.TempDir()
	src := "N       EQU %D10\n" +
		"BUF     DS %D10\n" +
		"X       MOVE %D1, R1\n"
	path := writeSource(t, dir, "equds.frisc", src)

	a := New(AssemblerConfig{})
	if _, ok := a.Assemble(path); !ok {
		t.Fatalf("Assemble failed")
	}

	syms := a.Symbols()
	if syms["N"] != 10 {
		t.Errorf("N = %d, want 10", syms["N"])
	}
	if syms["BUF"] != 0 {
		t.Errorf("BUF = 0x%X, want 0 (bound before DS advances)", syms["BUF"])
	}
	if syms["X"] != 12 {
		t.Errorf("X = %d, want 12 (10 rounded up to 12)", syms["X"])
	}
}

// TestAssembleDataPseudoListingRow is spec §8 Scenario 6: DW at address
// 0x10 produces little-endian bytes DD CC BB AA.
func TestAssembleDataPseudoListingRow(t *testing.T) {
	dir := t.TempDir()
	src := "        ORG %D16\n" +
		"        DW 0AABBCCDDH\n"
	path := writeSource(t, dir, "data.frisc", src)

	a := New(AssemblerConfig{})
	if _, ok := a.Assemble(path); !ok {
		t.Fatalf("Assemble failed")
	}
	out, err := os.ReadFile(filepath.Join(dir, "data.p"))
	if err != nil {
		t.Fatalf("reading listing: %v", err)
	}
	listing := string(out)
	if !strings.Contains(listing, "00000010") {
		t.Errorf("listing missing address:\n%s", listing)
	}
	if !strings.Contains(listing, "DD CC BB AA") {
		t.Errorf("listing missing little-endian bytes:\n%s", listing)
	}
}

func TestAssembleDuplicateLabelAborts(t *testing.T) {
	dir := t.TempDir()
	src := "LAB     MOVE %D1, R1\n" +
		"LAB     MOVE %D2, R2\n"
	path := writeSource(t, dir, "dup.frisc", src)

	a := New(AssemblerConfig{})
	msg, ok := a.Assemble(path)
	if ok {
		t.Fatalf("Assemble succeeded, want duplicate-label failure")
	}
	if !strings.Contains(msg, "redefined") {
		t.Errorf("message = %q, want mention of redefinition", msg)
	}
	if _, err := os.Stat(filepath.Join(dir, "dup.p")); err == nil {
		t.Errorf("listing file was written despite failure")
	}
}

func TestAssembleSyntaxErrorAbortsWithNoOutput(t *testing.T) {
	dir := t.TempDir()
	src := "        FROBNICATE R1,R2,R3\n"
	path := writeSource(t, dir, "bad.frisc", src)

	a := New(AssemblerConfig{})
	_, ok := a.Assemble(path)
	if ok {
		t.Fatalf("Assemble succeeded, want syntax-error failure")
	}
	if _, err := os.Stat(filepath.Join(dir, "bad.p")); err == nil {
		t.Errorf("listing file was written despite failure")
	}
}

func TestAssembleBlankAndCommentLinesEchoedWithNoCode(t *testing.T) {
	dir := t.TempDir()
	src := "; a header comment\n" +
		"\n" +
		"        HALT\n"
	path := writeSource(t, dir, "blank.frisc", src)

	a := New(AssemblerConfig{})
	if _, ok := a.Assemble(path); !ok {
		t.Fatalf("Assemble failed")
	}
	out, err := os.ReadFile(filepath.Join(dir, "blank.p"))
	if err != nil {
		t.Fatalf("reading listing: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("listing has %d rows, want 3 (one per source line): %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], "a header comment") {
		t.Errorf("row 0 = %q, want the comment text preserved", lines[0])
	}
}

func TestAssembleOutputPathOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "x.frisc", "        HALT\n")
	customPath := filepath.Join(dir, "custom.listing")

	a := New(AssemblerConfig{OutputPath: customPath})
	if _, ok := a.Assemble(path); !ok {
		t.Fatalf("Assemble failed")
	}
	if _, err := os.Stat(customPath); err != nil {
		t.Errorf("custom output path not written: %v", err)
	}
}
