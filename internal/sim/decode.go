package sim

import "github.com/frisc-toolchain/frisc/internal/bitvec"

// field extracts a bitWidth-wide field starting at startBit, using bit 0 =
// MSB numbering — the inverse of the grammar package's place() helper, so
// decode and encode agree on every field's position.
func field(word uint32, startBit, width int) uint32 {
	shift := uint(32 - startBit - width)
	mask := uint32(1)<<uint(width) - 1
	return (word >> shift) & mask
}

// decoded holds every field the §4.6 fetch-decode-execute cycle names.
type decoded struct {
	word     uint32
	opcode   uint32
	fn       bool
	dst      uint32
	src1     uint32
	src2reg  uint32
	imm20    int32
	cond     uint32
	retType  uint32
}

func decode(word uint32) decoded {
	return decoded{
		word:    word,
		opcode:  field(word, 0, 5),
		fn:      field(word, 5, 1) != 0,
		dst:     field(word, 6, 3),
		src1:    field(word, 9, 3),
		src2reg: field(word, 12, 3),
		imm20:   bitvec.SignExtend20(field(word, 12, 20)),
		cond:    field(word, 6, 4),
		retType: field(word, 30, 2),
	}
}
