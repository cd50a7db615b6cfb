package grammar

import (
	"fmt"

	"github.com/frisc-toolchain/frisc/internal/bitvec"
	"github.com/frisc-toolchain/frisc/internal/ferr"
	"github.com/frisc-toolchain/frisc/internal/peg"
)

// Opcode values, 5 bits, MSB-first (bit 0 of the word). JR is assigned its
// own opcode 0b11010 rather than sharing 0b11000 with JP — see DESIGN.md:
// spec.md's own field-extraction table leaves no bit to distinguish a
// PC-relative JR word from an absolute-target JP word once both have
// fn=1, and the canonical FRISC encoding (and this repo's original_source
// reference) gives JR a distinct opcode. This is the only literal
// deviation from spec.md's §4.4 table.
var alOpcodes = map[string]uint32{
	"OR": 0b00001, "AND": 0b00010, "XOR": 0b00011,
	"ADD": 0b00100, "ADC": 0b00101, "SUB": 0b00110, "SBC": 0b00111,
	"ROTL": 0b01000, "ROTR": 0b01001, "SHL": 0b01010, "SHR": 0b01011,
	"ASHR": 0b01100, "CMP": 0b01101,
}

var memOpcodes = map[string]uint32{
	"LOADB": 0b10010, "STOREB": 0b10011,
	"LOADH": 0b10100, "STOREH": 0b10101,
	"LOAD": 0b10110, "STORE": 0b10111,
}

var stackOpcodes = map[string]uint32{"POP": 0b10000, "PUSH": 0b10001}

var jumpOpcodes = map[string]uint32{"JP": 0b11000, "CALL": 0b11001}

const opJR = 0b11010
const opRet = 0b11011
const opHalt = 0b11111

var retTailBits = map[string]uint32{"RET": 0b00, "RETI": 0b01, "RETN": 0b11, "HALT": 0b00}

// resolveConstant evaluates a Label or Numeric leaf to an integer value.
func resolveConstant(n peg.Node, symbols map[string]int64, addr uint32) (int64, error) {
	if n.Kind == KindLabel {
		v, ok := symbols[n.Text]
		if !ok {
			return 0, &ferr.UndefinedLabelErr{Line: int(addr), Name: n.Text}
		}
		return v, nil
	}
	return NumericValue(n)
}

func condCode(n peg.Node, present bool) uint32 {
	if !present {
		return 0
	}
	return uint32(ConditionCodes[n.Text])
}

func fitsImm20(addr uint32, v int64) (uint32, error) {
	if !bitvec.FitsSigned20(v) {
		return 0, &ferr.EncodeErr{Line: int(addr), Reason: fmt.Sprintf("constant %d cannot fit into 20 bits immediate", v)}
	}
	return bitvec.Imm20(v), nil
}

// Encode turns one parsed instruction node into its machine words. symbols
// is the completed label+equate table (read-only); addr is the byte
// address this instruction starts at, used for JR's PC-relative math and
// for error reporting. Pseudo-instructions that emit no instruction word
// (ORG/EQU/DS) return a nil, nil pair; callers should have already special-
// cased them during address computation and not call Encode on them, but
// Encode tolerates it defensively.
func Encode(n peg.Node, symbols map[string]int64, addr uint32) ([]uint32, error) {
	switch n.Kind {
	case KindALInstr:
		return encodeAL(n, symbols, addr)
	case KindMemInstr:
		return encodeMem(n, symbols, addr)
	case KindMoveInstr:
		return encodeMove(n, symbols, addr)
	case KindStackInstr:
		return encodeStack(n, addr)
	case KindJumpInstr:
		return encodeJump(n, symbols, addr)
	case KindJRInstr:
		return encodeJR(n, symbols, addr)
	case KindRetInstr:
		return encodeRet(n)
	case KindDataPseudo:
		return encodeData(n, symbols, addr)
	case KindOrgPseudo, KindEquPseudo, KindSpacePseudo:
		return nil, nil
	}
	return nil, &ferr.EncodeErr{Line: int(addr), Reason: "unknown instruction kind " + n.Kind}
}

// encodeAL lays out AL/CMP words as dst(bits6-8)=src1(bits9-11) OP
// operand2(bits12-31). The grammar's "ALname GenReg, (GenReg|Constant)
// [, GenReg]" reads left-to-right as src1, operand2, dst — the third,
// optional register is the destination, defaulting to src1 itself (the
// usual accumulate-in-place two-operand form) when omitted. This mapping
// is pinned down by spec.md §8 scenario 2 ("ADD R1,R2,R3" with R1=3, R2=4
// leaves R3=7): the first two tokens are sources, the third is where the
// result lands.
func encodeAL(n peg.Node, symbols map[string]int64, addr uint32) ([]uint32, error) {
	mnemonic := n.Children[0].Text
	opcode, ok := alOpcodes[mnemonic]
	if !ok {
		return nil, &ferr.EncodeErr{Line: int(addr), Reason: "unknown AL mnemonic " + mnemonic}
	}
	src1 := n.Children[1]
	operand2 := n.Children[2]
	rest := n.Children[3:]

	dst := src1
	if len(rest) > 0 {
		dst = rest[0]
	}

	word := place(opcode, 0, 5)
	word |= place(regCode(dst), 6, 3)
	word |= place(regCode(src1), 9, 3)

	if isConstantKind(operand2.Kind) {
		word |= place(1, 5, 1)
		val, err := resolveConstant(operand2, symbols, addr)
		if err != nil {
			return nil, err
		}
		imm, err := fitsImm20(addr, val)
		if err != nil {
			return nil, err
		}
		word |= place(imm, 12, 20)
	} else {
		word |= place(regCode(operand2), 12, 3)
	}
	return []uint32{word}, nil
}

func encodeMem(n peg.Node, symbols map[string]int64, addr uint32) ([]uint32, error) {
	mnemonic := n.Children[0].Text
	opcode, ok := memOpcodes[mnemonic]
	if !ok {
		return nil, &ferr.EncodeErr{Line: int(addr), Reason: "unknown memory mnemonic " + mnemonic}
	}
	dst := n.Children[1]
	inner := n.Children[2:]

	word := place(opcode, 0, 5)
	word |= place(regCode(dst), 6, 3)

	switch {
	case len(inner) >= 2 && inner[0].Kind == KindGeneralRegister && inner[1].Kind == KindSign:
		base := inner[0]
		sign := inner[1].Text
		val, err := NumericValue(inner[2])
		if err != nil {
			return nil, err
		}
		if sign == "-" {
			val = -val
		}
		imm, err := fitsImm20(addr, val)
		if err != nil {
			return nil, err
		}
		word |= place(1, 5, 1)
		word |= place(regCode(base), 9, 3)
		word |= place(imm, 12, 20)
	case inner[0].Kind == KindGeneralRegister:
		word |= place(regCode(inner[0]), 9, 3)
	default:
		val, err := resolveConstant(inner[0], symbols, addr)
		if err != nil {
			return nil, err
		}
		imm, err := fitsImm20(addr, val)
		if err != nil {
			return nil, err
		}
		word |= place(1, 5, 1)
		word |= place(imm, 12, 20)
	}
	return []uint32{word}, nil
}

func encodeMove(n peg.Node, symbols map[string]int64, addr uint32) ([]uint32, error) {
	src := n.Children[1]
	dst := n.Children[2]

	word := place(0, 0, 5)
	word |= place(regCode(dst), 6, 3)
	if dst.Kind == KindStatusRegister {
		word |= place(1, 11, 1)
	}

	if src.Kind == KindStatusRegister {
		word |= place(1, 10, 1)
		word |= place(regCode(src), 12, 3)
		return []uint32{word}, nil
	}
	if src.Kind == KindGeneralRegister {
		word |= place(regCode(src), 12, 3)
		return []uint32{word}, nil
	}

	// Constant (Label or Numeric) source: fn=1, 20-bit immediate.
	word |= place(1, 5, 1)
	val, err := resolveConstant(src, symbols, addr)
	if err != nil {
		return nil, err
	}
	imm, err := fitsImm20(addr, val)
	if err != nil {
		return nil, err
	}
	word |= place(imm, 12, 20)
	return []uint32{word}, nil
}

func encodeStack(n peg.Node, addr uint32) ([]uint32, error) {
	mnemonic := n.Children[0].Text
	opcode, ok := stackOpcodes[mnemonic]
	if !ok {
		return nil, &ferr.EncodeErr{Line: int(addr), Reason: "unknown stack mnemonic " + mnemonic}
	}
	word := place(opcode, 0, 5)
	word |= place(regCode(n.Children[1]), 6, 3)
	return []uint32{word}, nil
}

func encodeJump(n peg.Node, symbols map[string]int64, addr uint32) ([]uint32, error) {
	mnemonic := n.Children[0].Text
	opcode, ok := jumpOpcodes[mnemonic]
	if !ok {
		return nil, &ferr.EncodeErr{Line: int(addr), Reason: "unknown jump mnemonic " + mnemonic}
	}
	rest := n.Children[1:]
	hasCond := len(rest) > 0 && rest[0].Kind == KindCondition
	word := place(opcode, 0, 5)
	if hasCond {
		word |= place(condCode(rest[0], true), 6, 4)
		rest = rest[1:]
	}

	target := rest[0]
	if target.Kind == KindGeneralRegister {
		word |= place(regCode(target), 12, 3)
		return []uint32{word}, nil
	}
	word |= place(1, 5, 1)
	val, err := resolveConstant(target, symbols, addr)
	if err != nil {
		return nil, err
	}
	imm, err := fitsImm20(addr, val)
	if err != nil {
		return nil, err
	}
	word |= place(imm, 12, 20)
	return []uint32{word}, nil
}

func encodeJR(n peg.Node, symbols map[string]int64, addr uint32) ([]uint32, error) {
	rest := n.Children[1:]
	word := place(opJR, 0, 5)
	word |= place(1, 5, 1)
	hasCond := len(rest) > 0 && rest[0].Kind == KindCondition
	if hasCond {
		word |= place(condCode(rest[0], true), 6, 4)
		rest = rest[1:]
	}
	target := rest[0]
	val, err := resolveConstant(target, symbols, addr)
	if err != nil {
		return nil, err
	}
	disp := val
	if target.Kind == KindLabel {
		disp = val - int64(addr+4)
	}
	if !bitvec.FitsSigned20(disp) {
		return nil, &ferr.EncodeErr{Line: int(addr), Reason: fmt.Sprintf("JR displacement %d cannot fit into 20 bits immediate", disp)}
	}
	word |= place(bitvec.Imm20(disp), 12, 20)
	return []uint32{word}, nil
}

func encodeRet(n peg.Node) ([]uint32, error) {
	mnemonic := n.Children[0].Text
	var opcode uint32
	if mnemonic == "HALT" {
		opcode = opHalt
	} else {
		opcode = opRet
	}
	rest := n.Children[1:]
	word := place(opcode, 0, 5)
	if len(rest) > 0 && rest[0].Kind == KindCondition {
		word |= place(condCode(rest[0], true), 6, 4)
	}
	word |= place(retTailBits[mnemonic], 30, 2)
	return []uint32{word}, nil
}

// DataWidth returns the per-element bit width of a DB/DH/DW pseudo.
func DataWidth(mnemonic string) int {
	switch mnemonic {
	case "DW":
		return 32
	case "DH":
		return 16
	case "DB":
		return 8
	}
	return 0
}

func encodeData(n peg.Node, symbols map[string]int64, addr uint32) ([]uint32, error) {
	mnemonic := n.Children[0].Text
	width := DataWidth(mnemonic)
	if width == 0 {
		return nil, &ferr.EncodeErr{Line: int(addr), Reason: "unknown data pseudo " + mnemonic}
	}
	values := n.Children[1:]

	// Pack elements little-endian into a stream of bytes, then split into
	// 32-bit words, zero-padding the final word's high end.
	var bytes []byte
	for _, v := range values {
		val, err := resolveConstant(v, symbols, addr)
		if err != nil {
			return nil, err
		}
		u := uint32(val)
		switch width {
		case 8:
			bytes = append(bytes, byte(u))
		case 16:
			bytes = append(bytes, byte(u), byte(u>>8))
		case 32:
			bytes = append(bytes, byte(u), byte(u>>8), byte(u>>16), byte(u>>24))
		}
	}
	for len(bytes)%4 != 0 {
		bytes = append(bytes, 0)
	}
	words := make([]uint32, 0, len(bytes)/4)
	for i := 0; i < len(bytes); i += 4 {
		w := uint32(bytes[i]) | uint32(bytes[i+1])<<8 | uint32(bytes[i+2])<<16 | uint32(bytes[i+3])<<24
		words = append(words, w)
	}
	return words, nil
}
