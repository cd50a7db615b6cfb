package sim

import "fmt"

var aluMnemonics = map[uint32]string{
	opOR: "OR", opAND: "AND", opXOR: "XOR",
	opADD: "ADD", opADC: "ADC", opSUB: "SUB", opSBC: "SBC",
	opROTL: "ROTL", opROTR: "ROTR", opSHL: "SHL", opSHR: "SHR", opASHR: "ASHR",
	opCMP: "CMP",
}

var memMnemonics = map[uint32]string{
	opPOP: "POP", opPUSH: "PUSH",
	opLOADB: "LOADB", opSTOREB: "STOREB",
	opLOADH: "LOADH", opSTOREH: "STOREH",
	opLOAD: "LOAD", opSTORE: "STORE",
}

var controlMnemonics = map[uint32]string{
	opJP: "JP", opCALL: "CALL", opJR: "JR", opRET: "RET", opHALT: "HALT",
}

var conditionSuffixes = map[uint32]string{
	0x0: "", 0x1: "_N", 0x2: "_NN", 0x3: "_C", 0x4: "_NC",
	0x5: "_V", 0x6: "_NV", 0x7: "_EQ", 0x8: "_NE",
	0x9: "_ULE", 0xA: "_UGT", 0xB: "_SLT", 0xC: "_SLE", 0xD: "_SGE", 0xE: "_SGT",
}

func regName(i uint32) string { return fmt.Sprintf("R%d", i) }

// Disassemble renders a single instruction word as FRISC assembly text. It
// is a read-only, stateless convenience for debugger UIs (§4.6's annotation
// feature extended to raw words instead of listing text); it never touches
// simulator state.
func Disassemble(word uint32) string {
	d := decode(word)

	if d.opcode == opMove {
		toSR := field(word, 11, 1) != 0
		fromSR := field(word, 10, 1) != 0
		src := regName(d.src2reg)
		if d.fn {
			src = fmt.Sprintf("%d", d.imm20)
		} else if fromSR {
			src = "SR"
		}
		dst := regName(d.dst)
		if toSR {
			dst = "SR"
		}
		return fmt.Sprintf("MOVE %s, %s", src, dst)
	}

	if d.opcode&0b10000 == 0 {
		name, ok := aluMnemonics[d.opcode]
		if !ok {
			return fmt.Sprintf(".WORD 0x%08X", word)
		}
		src2 := regName(d.src2reg)
		if d.fn {
			src2 = fmt.Sprintf("%d", d.imm20)
		}
		if d.opcode == opCMP {
			return fmt.Sprintf("CMP %s, %s", regName(d.src1), src2)
		}
		return fmt.Sprintf("%s %s, %s, %s", name, regName(d.src1), src2, regName(d.dst))
	}

	if d.opcode>>3 == 0b10 {
		name, ok := memMnemonics[d.opcode]
		if !ok {
			return fmt.Sprintf(".WORD 0x%08X", word)
		}
		if d.opcode == opPOP || d.opcode == opPUSH {
			return fmt.Sprintf("%s %s", name, regName(d.dst))
		}
		addr := regName(d.src1)
		if d.fn {
			addr = fmt.Sprintf("(%s)%+d", addr, d.imm20)
		} else {
			addr = fmt.Sprintf("(%s)", addr)
		}
		return fmt.Sprintf("%s %s, %s", name, regName(d.dst), addr)
	}

	if d.opcode>>3 == 0b11 {
		name, ok := controlMnemonics[d.opcode]
		if !ok {
			return fmt.Sprintf(".WORD 0x%08X", word)
		}
		name += conditionSuffixes[d.cond]
		switch d.opcode {
		case opRET, opHALT:
			return name
		case opJR:
			return fmt.Sprintf("%s %+d", name, d.imm20)
		default:
			target := regName(d.src2reg)
			if d.fn {
				target = fmt.Sprintf("0x%X", uint32(d.imm20))
			}
			return fmt.Sprintf("%s %s", name, target)
		}
	}

	return fmt.Sprintf(".WORD 0x%08X", word)
}
