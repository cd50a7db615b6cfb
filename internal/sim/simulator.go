// Package sim implements the FRISC cycle-accurate simulator: memory,
// registers, the status register's flags, the run/pause/step state machine,
// and the fetch-decode-execute loop (§4.6).
package sim

import (
	"github.com/frisc-toolchain/frisc/internal/ferr"
)

// SimulatorConfig holds simulator options supplied at construction time.
type SimulatorConfig struct {
	// MemorySize is the addressable byte count. Zero selects DefaultMemorySize.
	MemorySize int
	// LittleEndianOnly documents that big-endian hosts are an explicit
	// Non-goal; it is not read anywhere, since le_check.go/be_unsupported.go
	// enforce the same thing at compile time.
	LittleEndianOnly bool
}

// Simulator runs one FRISC program loaded from a .p listing. It is
// single-threaded and synchronous: Run and Step are the only ways
// instructions execute, and Pause/Stop are cooperative signals checked
// between instructions, not preemptive interrupts (§5).
type Simulator struct {
	cfg         SimulatorConfig
	Regs        *Registers
	Memory      *Memory
	state       State
	breakpoints map[uint32]bool
	annotations map[uint32]string
	stopReq     bool
}

// New constructs a Simulator in the Initialized state.
func New(cfg SimulatorConfig) *Simulator {
	return &Simulator{
		cfg:         cfg,
		Regs:        &Registers{},
		Memory:      newMemory(cfg.MemorySize),
		state:       Initialized,
		breakpoints: make(map[uint32]bool),
		annotations: make(map[uint32]string),
	}
}

// State returns the simulator's current lifecycle state.
func (s *Simulator) State() State { return s.state }

// Annotation returns the source-line text recorded for addr by Load, or the
// empty string if addr has none.
func (s *Simulator) Annotation(addr uint32) string { return s.annotations[addr] }

func (s *Simulator) transition(next State) error {
	if !s.state.canTransitionTo(next) {
		return &ferr.InvalidStateErr{Current: s.state.String(), Required: next.String()}
	}
	s.state = next
	return nil
}

// Run executes instructions until a breakpoint is hit, Pause or Stop is
// called, HALT executes, or an execution error occurs. It requires
// state == Loaded or Paused.
func (s *Simulator) Run() error {
	if s.state != Loaded && s.state != Paused {
		return &ferr.InvalidStateErr{Current: s.state.String(), Required: Loaded.String()}
	}
	if err := s.transition(Running); err != nil {
		return err
	}
	s.stopReq = false

	for s.state == Running {
		if s.breakpoints[s.Regs.PC] {
			return s.transition(Paused)
		}
		if err := s.executeSingle(); err != nil {
			return err
		}
		if s.state == Terminated {
			return nil
		}
		if s.stopReq {
			s.stopReq = false
			return s.transition(Paused)
		}
	}
	return nil
}

// Step executes exactly one instruction and returns to Paused, unless that
// instruction was HALT. Requires state == Loaded or Paused.
func (s *Simulator) Step() error {
	if s.state != Loaded && s.state != Paused {
		return &ferr.InvalidStateErr{Current: s.state.String(), Required: Loaded.String()}
	}
	if err := s.executeSingle(); err != nil {
		return err
	}
	if s.state == Terminated {
		return nil
	}
	return s.transition(Paused)
}

// Pause requests that a Run loop in progress stop before its next
// instruction. It is a cooperative flag, not a preemptive interrupt (§5).
func (s *Simulator) Pause() {
	s.stopReq = true
}

// Stop halts a Run loop in progress and marks the simulator Terminated.
func (s *Simulator) Stop() error {
	if s.state != Running && s.state != Paused {
		return &ferr.InvalidStateErr{Current: s.state.String(), Required: Running.String()}
	}
	s.state = Terminated
	return nil
}

// ToggleBreakpoint flips a word-addressed breakpoint at addr.
func (s *Simulator) ToggleBreakpoint(addr uint32) error {
	if addr%WordSizeBytes != 0 {
		return &ferr.InvalidAddressErr{Addr: addr}
	}
	if s.breakpoints[addr] {
		delete(s.breakpoints, addr)
	} else {
		s.breakpoints[addr] = true
	}
	return nil
}

// ReadRegister returns the named register's value: PC, SR, or R0..R7.
func (s *Simulator) ReadRegister(name string) (uint32, error) {
	get, _, ok := s.Regs.byName(name)
	if !ok {
		return 0, &ferr.UnknownRegisterErr{Name: name}
	}
	return get(), nil
}

// WriteRegister sets the named register's value: PC, SR, or R0..R7.
func (s *Simulator) WriteRegister(name string, value uint32) error {
	_, set, ok := s.Regs.byName(name)
	if !ok {
		return &ferr.UnknownRegisterErr{Name: name}
	}
	set(value)
	return nil
}

// ReadMemory returns a copy of length bytes starting at addr.
func (s *Simulator) ReadMemory(addr uint32, length int) ([]byte, error) {
	return s.Memory.ReadBytes(addr, length)
}
