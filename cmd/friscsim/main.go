// Command friscsim loads and runs a FRISC .p listing, either as a scripted
// batch run, a line-oriented debugger REPL, or (with -keys) a single
// keystroke stepper modeled on the raw-terminal-mode pattern used elsewhere
// in this codebase for character-at-a-time input.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/frisc-toolchain/frisc/internal/script"
	"github.com/frisc-toolchain/frisc/internal/sim"
)

func main() {
	memSize := flag.Int("mem", sim.DefaultMemorySize, "Memory size in bytes")
	scriptPath := flag.String("script", "", "Run a Lua script against the loaded program instead of an interactive session")
	keys := flag.Bool("keys", false, "Single-keystroke stepping: space steps, r runs, q quits")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: friscsim [options] program.p\n\nLoads and runs a FRISC program.\n\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  friscsim prog.p\n")
		fmt.Fprintf(os.Stderr, "  friscsim -script debug.lua prog.p\n")
		fmt.Fprintf(os.Stderr, "  friscsim -keys prog.p\n")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	s := sim.New(sim.SimulatorConfig{MemorySize: *memSize})
	if err := s.Load(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *scriptPath != "":
		runScript(s, *scriptPath)
	case *keys:
		runKeystroke(s)
	default:
		runREPL(s)
	}
}

func runScript(s *sim.Simulator, path string) {
	h := script.New(s)
	defer h.Close()
	if err := h.RunFile(path); err != nil {
		fmt.Fprintf(os.Stderr, "script error: %v\n", err)
		os.Exit(1)
	}
}

// runREPL is a line-oriented command loop: run/step/pause/stop/reg/break/
// state/quit (or exit). term.IsTerminal decides whether to print a prompt, so
// piped input (e.g. `echo run | friscsim prog.p`) stays quiet.
func runREPL(s *sim.Simulator) {
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	scan := bufio.NewScanner(os.Stdin)
	for {
		if interactive {
			fmt.Print("frisc> ")
		}
		if !scan.Scan() {
			return
		}
		if !runCommand(s, strings.TrimSpace(scan.Text())) {
			return
		}
	}
}

func runCommand(s *sim.Simulator, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}
	switch fields[0] {
	case "quit", "exit":
		return false
	case "run":
		reportErr(s.Run())
	case "step":
		reportErr(s.Step())
	case "pause":
		s.Pause()
	case "stop":
		reportErr(s.Stop())
	case "state":
		fmt.Println(s.State())
	case "reg":
		if len(fields) < 2 {
			fmt.Println("usage: reg <name> [value]")
			return true
		}
		if len(fields) >= 3 {
			v, err := strconv.ParseUint(fields[2], 0, 32)
			if err != nil {
				fmt.Println(err)
				return true
			}
			reportErr(s.WriteRegister(fields[1], uint32(v)))
			return true
		}
		v, err := s.ReadRegister(fields[1])
		if err != nil {
			fmt.Println(err)
			return true
		}
		fmt.Printf("%s = 0x%08X\n", fields[1], v)
	case "break":
		if len(fields) < 2 {
			fmt.Println("usage: break <addr>")
			return true
		}
		addr, err := strconv.ParseUint(fields[1], 0, 32)
		if err != nil {
			fmt.Println(err)
			return true
		}
		reportErr(s.ToggleBreakpoint(uint32(addr)))
	default:
		fmt.Printf("unknown command %q\n", fields[0])
	}
	return true
}

func reportErr(err error) {
	if err != nil {
		fmt.Println(err)
	}
}

// runKeystroke puts stdin in raw mode and reads one byte at a time, the
// same MakeRaw/Restore discipline as the host's raw-terminal character
// router, but driving the simulator instead of a terminal MMIO device.
func runKeystroke(s *sim.Simulator) {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to set raw mode: %v\n", err)
		os.Exit(1)
	}
	defer term.Restore(fd, oldState)

	fmt.Print("space=step  r=run  q=quit\r\n")
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if n == 0 || err != nil {
			return
		}
		switch buf[0] {
		case ' ':
			if err := s.Step(); err != nil {
				fmt.Printf("%v\r\n", err)
			}
			fmt.Printf("pc=0x%08X state=%s\r\n", s.Regs.PC, s.State())
		case 'r':
			if err := s.Run(); err != nil {
				fmt.Printf("%v\r\n", err)
			}
			fmt.Printf("pc=0x%08X state=%s\r\n", s.Regs.PC, s.State())
		case 'q':
			return
		}
		if s.State() == sim.Terminated {
			fmt.Print("terminated\r\n")
			return
		}
	}
}
