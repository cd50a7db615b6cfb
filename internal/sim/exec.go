package sim

import (
	"github.com/frisc-toolchain/frisc/internal/bitvec"
	"github.com/frisc-toolchain/frisc/internal/ferr"
)

// Opcode values, mirroring internal/grammar/encode.go's tables exactly so
// the decoder and encoder agree on every instruction word's shape.
const (
	opMove = 0b00000

	opOR = 0b00001
	opAND = 0b00010
	opXOR = 0b00011
	opADD = 0b00100
	opADC = 0b00101
	opSUB = 0b00110
	opSBC = 0b00111
	opROTL = 0b01000
	opROTR = 0b01001
	opSHL = 0b01010
	opSHR = 0b01011
	opASHR = 0b01100
	opCMP = 0b01101

	opPOP    = 0b10000
	opPUSH   = 0b10001
	opLOADB  = 0b10010
	opSTOREB = 0b10011
	opLOADH  = 0b10100
	opSTOREH = 0b10101
	opLOAD   = 0b10110
	opSTORE  = 0b10111

	opJP   = 0b11000
	opCALL = 0b11001
	opJR   = 0b11010
	opRET  = 0b11011
	opHALT = 0b11111
)

// conditionMatches implements spec §4.6's condition table directly against
// named flags, independent of how SR packs them into bits.
func conditionMatches(cond uint32, f bitvec.Flags) bool {
	slt := f.N != f.V
	sge := f.N == f.V
	switch cond {
	case 0x0:
		return true
	case 0x1:
		return f.N
	case 0x2:
		return !f.N
	case 0x3:
		return f.C
	case 0x4:
		return !f.C
	case 0x5:
		return f.V
	case 0x6:
		return !f.V
	case 0x7:
		return f.Z
	case 0x8:
		return !f.Z
	case 0x9: // ULE
		return !f.C || f.Z
	case 0xA: // UGT
		return f.C && !f.Z
	case 0xB: // SLT
		return slt
	case 0xC: // SLE
		return slt || f.Z
	case 0xD: // SGE
		return sge
	case 0xE: // SGT
		return sge && !f.Z
	}
	return false
}

func (s *Simulator) operand1(d decoded) uint32 { return s.Regs.Get(int(d.src1)) }

func (s *Simulator) operand2(d decoded) uint32 {
	if d.fn {
		return uint32(d.imm20)
	}
	return s.Regs.Get(int(d.src2reg))
}

// executeSingle runs the instruction at the current PC: fetch, advance PC
// by 4, decode, dispatch. Mirrors spec §4.6's cycle exactly.
func (s *Simulator) executeSingle() error {
	word, err := s.Memory.ReadWord(s.Regs.PC)
	if err != nil {
		return err
	}
	pc := s.Regs.PC
	s.Regs.PC += 4
	d := decode(word)

	switch {
	case d.opcode == opMove:
		return s.execMove(d)
	case d.opcode&0b10000 == 0:
		return s.execALU(d, pc)
	case d.opcode>>3 == 0b10:
		return s.execMem(d, pc)
	case d.opcode>>3 == 0b11:
		return s.execControl(d, pc)
	}
	return &ferr.UnknownOpcodeErr{Word: word, PC: pc}
}

// execMove implements the move family (opcode 00000): operand2 moves into
// the resolved destination, which may be SR instead of a general register,
// and operand2 itself may be read from SR instead of a register/immediate.
// The SR-destination and SR-source flags sit at bits 11 and 10
// unconditionally — see DESIGN.md: spec.md's "if src1 != R0" gate doesn't
// apply here, since the encoder never encodes a src1 field for MOVE at all
// (it stays R0/0), which would make the flags permanently unreachable if
// the gate were honored literally.
func (s *Simulator) execMove(d decoded) error {
	dst := int(d.dst)
	value := s.operand2(d)
	toSR := field(d.word, 11, 1) != 0
	fromSR := field(d.word, 10, 1) != 0
	if fromSR {
		value = s.Regs.SR
	}
	if toSR {
		s.Regs.SR = value
		return nil
	}
	s.Regs.Set(dst, value)
	return nil
}

func (s *Simulator) execALU(d decoded, pc uint32) error {
	a := bitvec.FromBits(bitvec.W32, s.operand1(d))
	b := bitvec.FromBits(bitvec.W32, s.operand2(d))
	cin := s.Regs.Flags().C

	var result bitvec.Vector
	switch d.opcode {
	case opOR:
		result = a.Or(b)
	case opAND:
		result = a.And(b)
	case opXOR:
		result = a.Xor(b)
	case opADD:
		result = a.Add(b)
	case opADC:
		result = a.Adc(b, cin)
	case opSUB:
		result = a.Sub(b)
	case opSBC:
		result = a.Sbc(b, cin)
	case opROTL:
		result = a.Rotl(int(b.Bits()))
	case opROTR:
		result = a.Rotr(int(b.Bits()))
	case opSHL:
		result = a.Shl(int(b.Bits()))
	case opSHR:
		result = a.Shr(int(b.Bits()))
	case opASHR:
		result = a.Ashr(int(b.Bits()))
	case opCMP:
		result = a.Sub(b)
	default:
		return &ferr.UnknownOpcodeErr{Word: d.word, PC: pc}
	}
	if d.opcode != opCMP {
		s.Regs.Set(int(d.dst), result.Bits())
	}
	s.Regs.SetFlags(result.Flags)
	return nil
}

// memAddress computes the effective address per spec §4.6, corrected per
// DESIGN.md: fn selects whether an immediate displacement is added to
// operand1, not whether operand1 participates at all — spec.md's literal
// "fn==0 ? imm20 : operand1+imm20" is backwards from what the encoder
// actually produces (a register-indirect word has fn=0 and a base register
// in src1 with no immediate; a direct/indexed word has fn=1 with the
// immediate in bits 12..31 and, for a bare direct address, src1=R0 so
// operand1 contributes zero).
func (s *Simulator) memAddress(d decoded) uint32 {
	base := s.operand1(d)
	if !d.fn {
		return base
	}
	return base + uint32(d.imm20)
}

func (s *Simulator) execMem(d decoded, pc uint32) error {
	dst := int(d.dst)
	switch d.opcode {
	case opPOP:
		v, err := s.Memory.ReadWord(s.Regs.Get(7))
		if err != nil {
			return err
		}
		s.Regs.Set(dst, v)
		s.Regs.Set(7, s.Regs.Get(7)+WordSizeBytes)
		return nil
	case opPUSH:
		s.Regs.Set(7, s.Regs.Get(7)-WordSizeBytes)
		return s.Memory.WriteWord(s.Regs.Get(7), s.Regs.Get(dst))
	case opLOADB:
		addr := s.memAddress(d)
		v, err := s.Memory.ReadByte(addr)
		if err != nil {
			return err
		}
		s.Regs.Set(dst, uint32(v))
		return nil
	case opSTOREB:
		return s.Memory.WriteByte(s.memAddress(d), byte(s.Regs.Get(dst)))
	case opLOADH:
		addr := s.memAddress(d)
		v, err := s.Memory.ReadHalf(addr)
		if err != nil {
			return err
		}
		s.Regs.Set(dst, uint32(v))
		return nil
	case opSTOREH:
		return s.Memory.WriteHalf(s.memAddress(d), uint16(s.Regs.Get(dst)))
	case opLOAD:
		addr := s.memAddress(d)
		v, err := s.Memory.ReadWord(addr)
		if err != nil {
			return err
		}
		s.Regs.Set(dst, v)
		return nil
	case opSTORE:
		return s.Memory.WriteWord(s.memAddress(d), s.Regs.Get(dst))
	}
	return &ferr.UnknownOpcodeErr{Word: d.word, PC: pc}
}

func (s *Simulator) pushPC() error {
	s.Regs.Set(7, s.Regs.Get(7)-WordSizeBytes)
	return s.Memory.WriteWord(s.Regs.Get(7), s.Regs.PC)
}

func (s *Simulator) popPC() error {
	v, err := s.Memory.ReadWord(s.Regs.Get(7))
	if err != nil {
		return err
	}
	s.Regs.Set(7, s.Regs.Get(7)+WordSizeBytes)
	s.Regs.PC = v
	return nil
}

// execControl implements the jump/call/return family. A condition that
// fails makes the instruction a no-op; PC has already been advanced by the
// fetch step, so nothing further happens.
func (s *Simulator) execControl(d decoded, pc uint32) error {
	if !conditionMatches(d.cond, s.Regs.Flags()) {
		return nil
	}
	switch d.opcode {
	case opJP:
		s.Regs.PC = s.operand2(d)
		return nil
	case opCALL:
		if err := s.pushPC(); err != nil {
			return err
		}
		s.Regs.PC = s.operand2(d)
		return nil
	case opJR:
		s.Regs.PC = uint32(int32(s.Regs.PC) + d.imm20)
		return nil
	case opRET:
		if err := s.popPC(); err != nil {
			return err
		}
		switch d.retType {
		case 0b01:
			s.Regs.SetInterruptBit()
		case 0b11:
			s.Regs.InterruptsEnabled = true
		}
		return nil
	case opHALT:
		s.state = Terminated
		return nil
	}
	return &ferr.UnknownOpcodeErr{Word: d.word, PC: pc}
}
