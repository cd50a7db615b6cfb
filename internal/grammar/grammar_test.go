package grammar

import "testing"

// field extracts a bit range from a word using the MSB-first, bit-0-is-MSB
// convention the encoder packs with (the inverse of place in values.go).
func field(word uint32, startBit, width int) uint32 {
	shift := 32 - startBit - width
	mask := uint32(1)<<uint(width) - 1
	return (word >> uint(shift)) & mask
}

func parseAndEncode(t *testing.T, tokens []string, symbols map[string]int64, addr uint32) uint32 {
	t.Helper()
	n, err := Parse(tokens)
	if err != nil {
		t.Fatalf("Parse(%v): %v", tokens, err)
	}
	words, err := Encode(n, symbols, addr)
	if err != nil {
		t.Fatalf("Encode(%v): %v", tokens, err)
	}
	if len(words) != 1 {
		t.Fatalf("Encode(%v) = %d words, want 1", tokens, len(words))
	}
	return words[0]
}

// TestEncodeALThreeOperandForm exercises the exact instruction from scenario
// 2: "ADD R1,R2,R3" reads as src1=R1, operand2=R2, dst=R3.
func TestEncodeALThreeOperandForm(t *testing.T) {
	word := parseAndEncode(t, []string{"ADD", "R1", ",", "R2", ",", "R3"}, nil, 0)
	if got := field(word, 0, 5); got != alOpcodes["ADD"] {
		t.Errorf("opcode = %05b, want %05b", got, alOpcodes["ADD"])
	}
	if got := field(word, 5, 1); got != 0 {
		t.Errorf("fn = %d, want 0 (register operand2)", got)
	}
	if got := field(word, 6, 3); got != 3 {
		t.Errorf("dst = %d, want 3 (R3)", got)
	}
	if got := field(word, 9, 3); got != 1 {
		t.Errorf("src1 = %d, want 1 (R1)", got)
	}
	if got := field(word, 12, 3); got != 2 {
		t.Errorf("operand2 = %d, want 2 (R2)", got)
	}
}

// TestEncodeALTwoOperandFormDefaultsDst covers the accumulate-in-place form
// (no third register): dst defaults to src1.
func TestEncodeALTwoOperandFormDefaultsDst(t *testing.T) {
	word := parseAndEncode(t, []string{"CMP", "R1", ",", "R2"}, nil, 0)
	if got := field(word, 0, 5); got != alOpcodes["CMP"] {
		t.Errorf("opcode = %05b, want %05b", got, alOpcodes["CMP"])
	}
	if got := field(word, 6, 3); got != 1 {
		t.Errorf("dst = %d, want 1 (defaults to src1 = R1)", got)
	}
	if got := field(word, 9, 3); got != 1 {
		t.Errorf("src1 = %d, want 1 (R1)", got)
	}
	if got := field(word, 12, 3); got != 2 {
		t.Errorf("operand2 = %d, want 2 (R2)", got)
	}
}

func TestEncodeALImmediateOperand(t *testing.T) {
	word := parseAndEncode(t, []string{"ADD", "R1", ",", "%D5", ",", "R2"}, nil, 0)
	if got := field(word, 5, 1); got != 1 {
		t.Errorf("fn = %d, want 1 (immediate operand2)", got)
	}
	if got := field(word, 12, 20); got != 5 {
		t.Errorf("imm20 = %d, want 5", got)
	}
}

func TestEncodeALImmediateViaLabel(t *testing.T) {
	word := parseAndEncode(t, []string{"ADD", "R1", ",", "N", ",", "R2"}, map[string]int64{"N": 10}, 0)
	if got := field(word, 5, 1); got != 1 {
		t.Errorf("fn = %d, want 1 (label resolves to an immediate)", got)
	}
	if got := field(word, 12, 20); got != 10 {
		t.Errorf("imm20 = %d, want 10", got)
	}
}

func TestEncodeALImmediateOverflowIsEncodeError(t *testing.T) {
	n, err := Parse([]string{"ADD", "R1", ",", "%D9999999", ",", "R2"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := Encode(n, nil, 0); err == nil {
		t.Fatalf("expected an encode error for an out-of-range immediate")
	}
}

func TestEncodeMemIndexedAddressing(t *testing.T) {
	word := parseAndEncode(t, []string{"LOAD", "R1", ",", "(", "R2", "+", "%D4", ")"}, nil, 0)
	if got := field(word, 0, 5); got != memOpcodes["LOAD"] {
		t.Errorf("opcode = %05b, want %05b", got, memOpcodes["LOAD"])
	}
	if got := field(word, 5, 1); got != 1 {
		t.Errorf("fn = %d, want 1 (indexed)", got)
	}
	if got := field(word, 6, 3); got != 1 {
		t.Errorf("dst = %d, want 1 (R1)", got)
	}
	if got := field(word, 9, 3); got != 2 {
		t.Errorf("base = %d, want 2 (R2)", got)
	}
	if got := field(word, 12, 20); got != 4 {
		t.Errorf("disp = %d, want 4", got)
	}
}

func TestEncodeMemIndexedAddressingNegativeOffset(t *testing.T) {
	word := parseAndEncode(t, []string{"LOAD", "R1", ",", "(", "R2", "-", "%D4", ")"}, nil, 0)
	imm := field(word, 12, 20)
	if int32(imm<<12)>>12 != -4 {
		t.Errorf("disp = %d (sign-extended), want -4", int32(imm<<12)>>12)
	}
}

func TestEncodeMemRegisterIndirect(t *testing.T) {
	word := parseAndEncode(t, []string{"STORE", "R3", ",", "(", "R4", ")"}, nil, 0)
	if got := field(word, 0, 5); got != memOpcodes["STORE"] {
		t.Errorf("opcode = %05b, want %05b", got, memOpcodes["STORE"])
	}
	if got := field(word, 5, 1); got != 0 {
		t.Errorf("fn = %d, want 0 (register-indirect)", got)
	}
	if got := field(word, 6, 3); got != 3 {
		t.Errorf("dst = %d, want 3 (R3)", got)
	}
	if got := field(word, 9, 3); got != 4 {
		t.Errorf("base = %d, want 4 (R4)", got)
	}
}

func TestEncodeMemDirectAddressing(t *testing.T) {
	word := parseAndEncode(t, []string{"LOAD", "R1", ",", "(", "%D100", ")"}, nil, 0)
	if got := field(word, 5, 1); got != 1 {
		t.Errorf("fn = %d, want 1 (direct)", got)
	}
	if got := field(word, 9, 3); got != 0 {
		t.Errorf("base field = %d, want 0 (no base register)", got)
	}
	if got := field(word, 12, 20); got != 100 {
		t.Errorf("disp = %d, want 100", got)
	}
}

func TestEncodeMoveImmediateSource(t *testing.T) {
	word := parseAndEncode(t, []string{"MOVE", "%D5", ",", "R1"}, nil, 0)
	if got := field(word, 0, 5); got != 0 {
		t.Errorf("opcode = %05b, want 00000", got)
	}
	if got := field(word, 5, 1); got != 1 {
		t.Errorf("fn = %d, want 1 (immediate source)", got)
	}
	if got := field(word, 6, 3); got != 1 {
		t.Errorf("dst = %d, want 1 (R1)", got)
	}
	if got := field(word, 12, 20); got != 5 {
		t.Errorf("imm20 = %d, want 5", got)
	}
}

func TestEncodeMoveRegisterToRegister(t *testing.T) {
	word := parseAndEncode(t, []string{"MOVE", "R2", ",", "R1"}, nil, 0)
	if got := field(word, 5, 1); got != 0 {
		t.Errorf("fn = %d, want 0 (register source)", got)
	}
	if got := field(word, 6, 3); got != 1 {
		t.Errorf("dst = %d, want 1 (R1)", got)
	}
	if got := field(word, 12, 3); got != 2 {
		t.Errorf("src reg field = %d, want 2 (R2)", got)
	}
}

func TestEncodeMoveToStatusRegister(t *testing.T) {
	word := parseAndEncode(t, []string{"MOVE", "R1", ",", "SR"}, nil, 0)
	if got := field(word, 11, 1); got != 1 {
		t.Errorf("dstSR flag = %d, want 1", got)
	}
	if got := field(word, 10, 1); got != 0 {
		t.Errorf("srcSR flag = %d, want 0", got)
	}
	if got := field(word, 12, 3); got != 1 {
		t.Errorf("src reg field = %d, want 1 (R1)", got)
	}
}

func TestEncodeMoveFromStatusRegister(t *testing.T) {
	word := parseAndEncode(t, []string{"MOVE", "SR", ",", "R1"}, nil, 0)
	if got := field(word, 10, 1); got != 1 {
		t.Errorf("srcSR flag = %d, want 1", got)
	}
	if got := field(word, 6, 3); got != 1 {
		t.Errorf("dst = %d, want 1 (R1)", got)
	}
}

func TestEncodeStack(t *testing.T) {
	word := parseAndEncode(t, []string{"PUSH", "R1"}, nil, 0)
	if got := field(word, 0, 5); got != stackOpcodes["PUSH"] {
		t.Errorf("opcode = %05b, want %05b", got, stackOpcodes["PUSH"])
	}
	if got := field(word, 6, 3); got != 1 {
		t.Errorf("reg = %d, want 1 (R1)", got)
	}

	word = parseAndEncode(t, []string{"POP", "R2"}, nil, 0)
	if got := field(word, 0, 5); got != stackOpcodes["POP"] {
		t.Errorf("opcode = %05b, want %05b", got, stackOpcodes["POP"])
	}
}

func TestEncodeJumpConditionalToLabel(t *testing.T) {
	word := parseAndEncode(t, []string{"JP", "_", "EQ", "LOOP"}, map[string]int64{"LOOP": 40}, 0)
	if got := field(word, 0, 5); got != jumpOpcodes["JP"] {
		t.Errorf("opcode = %05b, want %05b", got, jumpOpcodes["JP"])
	}
	if got := field(word, 6, 4); got != uint32(ConditionCodes["EQ"]) {
		t.Errorf("cond = %d, want %d", got, ConditionCodes["EQ"])
	}
	if got := field(word, 5, 1); got != 1 {
		t.Errorf("fn = %d, want 1 (immediate target)", got)
	}
	if got := field(word, 12, 20); got != 40 {
		t.Errorf("target = %d, want 40", got)
	}
}

func TestEncodeJumpUnconditionalIndirect(t *testing.T) {
	word := parseAndEncode(t, []string{"CALL", "(", "R3", ")"}, nil, 0)
	if got := field(word, 0, 5); got != jumpOpcodes["CALL"] {
		t.Errorf("opcode = %05b, want %05b", got, jumpOpcodes["CALL"])
	}
	if got := field(word, 6, 4); got != 0 {
		t.Errorf("cond = %d, want 0 (unconditional)", got)
	}
	if got := field(word, 5, 1); got != 0 {
		t.Errorf("fn = %d, want 0 (register target)", got)
	}
	if got := field(word, 12, 3); got != 3 {
		t.Errorf("target reg = %d, want 3 (R3)", got)
	}
}

// TestEncodeJROwnOpcode documents the resolved JR/JP opcode collision: JR
// gets its own opcode rather than sharing JP's.
func TestEncodeJROwnOpcode(t *testing.T) {
	word := parseAndEncode(t, []string{"JR", "LOOP"}, map[string]int64{"LOOP": 20}, 8)
	if got := field(word, 0, 5); got != opJR {
		t.Errorf("opcode = %05b, want %05b", got, uint32(opJR))
	}
	if got := field(word, 0, 5); got == jumpOpcodes["JP"] {
		t.Errorf("JR must not share JP's opcode %05b", jumpOpcodes["JP"])
	}
	// disp = target - (addr+4) = 20 - 12 = 8
	if got := field(word, 12, 20); got != 8 {
		t.Errorf("disp = %d, want 8", got)
	}
}

func TestEncodeJRDisplacementOverflowIsEncodeError(t *testing.T) {
	n, err := Parse([]string{"JR", "TARGET"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	symbols := map[string]int64{"TARGET": 10_000_000}
	if _, err := Encode(n, symbols, 0); err == nil {
		t.Fatalf("expected an encode error for an overflowing JR displacement")
	}
}

func TestEncodeRetVariants(t *testing.T) {
	cases := []struct {
		mnemonic string
		opcode   uint32
		tail     uint32
	}{
		{"RET", opRet, 0b00},
		{"RETI", opRet, 0b01},
		{"RETN", opRet, 0b11},
		{"HALT", opHalt, 0b00},
	}
	for _, c := range cases {
		word := parseAndEncode(t, []string{c.mnemonic}, nil, 0)
		if got := field(word, 0, 5); got != c.opcode {
			t.Errorf("%s: opcode = %05b, want %05b", c.mnemonic, got, c.opcode)
		}
		if got := field(word, 30, 2); got != c.tail {
			t.Errorf("%s: tail = %02b, want %02b", c.mnemonic, got, c.tail)
		}
	}
}

func TestEncodeRetWithCondition(t *testing.T) {
	word := parseAndEncode(t, []string{"RET", "_", "NZ"}, nil, 0)
	if got := field(word, 6, 4); got != uint32(ConditionCodes["NZ"]) {
		t.Errorf("cond = %d, want %d", got, ConditionCodes["NZ"])
	}
}

func TestEncodeDataPacksLittleEndianAndPads(t *testing.T) {
	n, err := Parse([]string{"DB", "%D1", ",", "%D2", ",", "%D3"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	words, err := Encode(n, nil, 0)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(words) != 1 {
		t.Fatalf("got %d words, want 1 (3 bytes padded to one word)", len(words))
	}
	want := uint32(1) | uint32(2)<<8 | uint32(3)<<16
	if words[0] != want {
		t.Errorf("word = 0x%08X, want 0x%08X", words[0], want)
	}
}

func TestEncodeDataHalfWords(t *testing.T) {
	n, err := Parse([]string{"DH", "%D1", ",", "%D2"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	words, err := Encode(n, nil, 0)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(words) != 1 {
		t.Fatalf("got %d words, want 1", len(words))
	}
	want := uint32(1) | uint32(2)<<16
	if words[0] != want {
		t.Errorf("word = 0x%08X, want 0x%08X", words[0], want)
	}
}

func TestNumericValueAllBases(t *testing.T) {
	cases := []struct {
		tokens []string
		want   int64
	}{
		{[]string{"%B101"}, 5},
		{[]string{"%O17"}, 15},
		{[]string{"%D42"}, 42},
		{[]string{"2AH"}, 0x2A},
		{[]string{"%H2A"}, 0x2A},
	}
	for _, c := range cases {
		n, rest, err := tNumeric.Match(c.tokens)
		if err != nil {
			t.Fatalf("tNumeric.Match(%v): %v", c.tokens, err)
		}
		if len(rest) != 0 {
			t.Fatalf("leftover tokens %v", rest)
		}
		v, err := NumericValue(n)
		if err != nil {
			t.Fatalf("NumericValue(%+v): %v", n, err)
		}
		if v != c.want {
			t.Errorf("NumericValue(%v) = %d, want %d", c.tokens, v, c.want)
		}
	}
}

func TestParseRejectsUnknownMnemonic(t *testing.T) {
	if _, err := Parse([]string{"NOPE", "R1"}); err == nil {
		t.Fatalf("expected a syntax error for an unrecognized mnemonic")
	}
}

func TestParseRejectsTrailingGarbage(t *testing.T) {
	if _, err := Parse([]string{"PUSH", "R1", "R2"}); err == nil {
		t.Fatalf("expected a syntax error for trailing tokens after a complete instruction")
	}
}
