package sim

import "github.com/frisc-toolchain/frisc/internal/bitvec"

// SR bit positions (bit 0 = MSB, matching the encoder's convention). The
// reference implementation's own flag-packing is internally inconsistent
// with its condition-table comment (see DESIGN.md); this module follows
// spec §3's explicit "bit 31 = Z; bit 30 = C" clarification and fills the
// remaining two positions, in the order spec §3 lists the four flags
// (N, C, V, Z), with N and V.
const (
	srBitN = 28
	srBitV = 29
	srBitC = 30
	srBitZ = 31
	// srBitI is RETI's status bit, set one position above the flag
	// nibble, per original_source/v1/simulators/frisc_simulator.py.
	srBitI = 27
)

func srShift(bit int) uint { return uint(32 - bit - 1) }

// Registers holds the FRISC register file: PC, SR, and the eight general
// registers. R0 always reads as zero.
type Registers struct {
	PC                uint32
	SR                uint32
	R                 [8]uint32
	InterruptsEnabled bool // set by RETN; mirrors the simulator-level IIF flag
}

// Get returns the value of general register i. R0 always reads as zero.
func (r *Registers) Get(i int) uint32 {
	if i == 0 {
		return 0
	}
	return r.R[i]
}

// Set stores v into general register i. Writes to R0 are retained but never
// observable through Get, matching spec §3's "R0 reads as zero" wording.
func (r *Registers) Set(i int, v uint32) {
	r.R[i] = v
}

// Flags unpacks the four condition flags from the SR register.
func (r *Registers) Flags() bitvec.Flags {
	return bitvec.Flags{
		N: r.SR&(1<<srShift(srBitN)) != 0,
		V: r.SR&(1<<srShift(srBitV)) != 0,
		C: r.SR&(1<<srShift(srBitC)) != 0,
		Z: r.SR&(1<<srShift(srBitZ)) != 0,
	}
}

// SetFlags packs f into the SR register's flag nibble, leaving all other
// bits untouched.
func (r *Registers) SetFlags(f bitvec.Flags) {
	clearMask := uint32(1)<<srShift(srBitN) | uint32(1)<<srShift(srBitV) |
		uint32(1)<<srShift(srBitC) | uint32(1)<<srShift(srBitZ)
	r.SR &^= clearMask
	r.SR |= boolBit(f.N) << srShift(srBitN)
	r.SR |= boolBit(f.V) << srShift(srBitV)
	r.SR |= boolBit(f.C) << srShift(srBitC)
	r.SR |= boolBit(f.Z) << srShift(srBitZ)
}

// SetInterruptBit sets RETI's status bit in SR.
func (r *Registers) SetInterruptBit() {
	r.SR |= 1 << srShift(srBitI)
}

func boolBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// byName maps a register name (as accepted by read_register) to an
// accessor. PC and SR are addressed directly; R0..R7 through Get/Set.
func (r *Registers) byName(name string) (get func() uint32, set func(uint32), ok bool) {
	switch name {
	case "PC":
		return func() uint32 { return r.PC }, func(v uint32) { r.PC = v }, true
	case "SR":
		return func() uint32 { return r.SR }, func(v uint32) { r.SR = v }, true
	}
	if len(name) == 2 && name[0] == 'R' && name[1] >= '0' && name[1] <= '7' {
		i := int(name[1] - '0')
		return func() uint32 { return r.Get(i) }, func(v uint32) { r.Set(i, v) }, true
	}
	return nil, nil, false
}
