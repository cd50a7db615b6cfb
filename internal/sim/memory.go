package sim

import "github.com/frisc-toolchain/frisc/internal/ferr"

// DefaultMemorySize is MEMORY_SIZE_BYTES's default per spec §6.
const DefaultMemorySize = 65536

const (
	WordSizeBytes = 4
	HalfwordBytes = 2
)

// Memory is byte-addressable, little-endian storage: the byte at address a
// is the least significant byte of the word stored at a.
type Memory struct {
	bytes []byte
}

func newMemory(size int) *Memory {
	if size <= 0 {
		size = DefaultMemorySize
	}
	return &Memory{bytes: make([]byte, size)}
}

func (m *Memory) Size() int { return len(m.bytes) }

func (m *Memory) inBounds(addr uint32, width int) bool {
	return int(addr)+width <= len(m.bytes)
}

func (m *Memory) ReadByte(addr uint32) (byte, error) {
	if !m.inBounds(addr, 1) {
		return 0, &ferr.InvalidAddressErr{Addr: addr}
	}
	return m.bytes[addr], nil
}

func (m *Memory) WriteByte(addr uint32, v byte) error {
	if !m.inBounds(addr, 1) {
		return &ferr.InvalidAddressErr{Addr: addr}
	}
	m.bytes[addr] = v
	return nil
}

// ReadHalf reads a little-endian 16-bit halfword. addr is rounded down to
// the nearest even address, per spec §4.6's alignment rule for LOADH/STOREH.
func (m *Memory) ReadHalf(addr uint32) (uint16, error) {
	addr &^= 1
	if !m.inBounds(addr, HalfwordBytes) {
		return 0, &ferr.InvalidAddressErr{Addr: addr}
	}
	return uint16(m.bytes[addr]) | uint16(m.bytes[addr+1])<<8, nil
}

func (m *Memory) WriteHalf(addr uint32, v uint16) error {
	addr &^= 1
	if !m.inBounds(addr, HalfwordBytes) {
		return &ferr.InvalidAddressErr{Addr: addr}
	}
	m.bytes[addr] = byte(v)
	m.bytes[addr+1] = byte(v >> 8)
	return nil
}

// ReadWord reads a little-endian 32-bit word. addr is rounded down to the
// nearest multiple of 4, per spec §4.6's alignment rule for LOAD/STORE.
func (m *Memory) ReadWord(addr uint32) (uint32, error) {
	addr &^= 3
	if !m.inBounds(addr, WordSizeBytes) {
		return 0, &ferr.InvalidAddressErr{Addr: addr}
	}
	return uint32(m.bytes[addr]) |
		uint32(m.bytes[addr+1])<<8 |
		uint32(m.bytes[addr+2])<<16 |
		uint32(m.bytes[addr+3])<<24, nil
}

func (m *Memory) WriteWord(addr uint32, v uint32) error {
	addr &^= 3
	if !m.inBounds(addr, WordSizeBytes) {
		return &ferr.InvalidAddressErr{Addr: addr}
	}
	m.bytes[addr] = byte(v)
	m.bytes[addr+1] = byte(v >> 8)
	m.bytes[addr+2] = byte(v >> 16)
	m.bytes[addr+3] = byte(v >> 24)
	return nil
}

// ReadBytes returns a copy of n bytes starting at addr, for host inspection
// (sim.ReadMemory); it does not require word alignment.
func (m *Memory) ReadBytes(addr uint32, n int) ([]byte, error) {
	if !m.inBounds(addr, n) {
		return nil, &ferr.InvalidAddressErr{Addr: addr}
	}
	out := make([]byte, n)
	copy(out, m.bytes[addr:int(addr)+n])
	return out, nil
}
