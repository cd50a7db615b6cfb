package sim

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/frisc-toolchain/frisc/internal/ferr"
)

// parseListingLine splits one .p row into its address field (columns 0..9),
// code field (columns 10..20, the "XX XX XX XX" group), and annotation
// (columns 23 onward) — the exact column discipline internal/asm/listing.go
// writes. A continuation row simply ends before column 23, so its
// annotation comes back empty.
func parseListingLine(line string) (addrField, codeField, annotation string) {
	for len(line) < 23 {
		line += " "
	}
	addrField = strings.TrimSpace(line[0:10])
	codeField = strings.TrimSpace(line[10:21])
	if len(line) > 23 {
		annotation = line[23:]
	}
	return
}

// Load reads a .p listing file, placing its machine-code bytes into memory
// at the addresses the listing names (continuation rows inherit the
// previous word's address + 4) and recording each row's source text as an
// annotation. Requires state == Initialized; transitions to Loaded.
func (s *Simulator) Load(path string) error {
	if s.state != Initialized {
		return &ferr.InvalidStateErr{Current: s.state.String(), Required: Initialized.String()}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return &ferr.LoadErr{Path: path, Detail: err.Error()}
	}

	var lastWordAddr uint32
	haveLastWord := false

	for _, line := range strings.Split(string(raw), "\n") {
		addrField, codeField, annotation := parseListingLine(line)
		if addrField == "" && codeField == "" {
			continue
		}

		var addr uint32
		if addrField != "" {
			v, err := strconv.ParseUint(addrField, 16, 32)
			if err != nil {
				return &ferr.LoadErr{Path: path, Detail: fmt.Sprintf("bad address %q: %v", addrField, err)}
			}
			addr = uint32(v)
		} else {
			if !haveLastWord {
				return &ferr.LoadErr{Path: path, Detail: "continuation row with no preceding address"}
			}
			addr = lastWordAddr + WordSizeBytes
		}

		if codeField != "" {
			bytes, err := parseCodeBytes(codeField)
			if err != nil {
				return &ferr.LoadErr{Path: path, Detail: err.Error()}
			}
			for i, b := range bytes {
				if err := s.Memory.WriteByte(addr+uint32(i), b); err != nil {
					return err
				}
			}
			lastWordAddr = addr
			haveLastWord = true
		}

		if addrField != "" {
			s.annotations[addr] = annotation
		}
	}

	s.state = Loaded
	return nil
}

// parseCodeBytes parses a "XX XX XX XX" hex-byte group into its bytes.
func parseCodeBytes(field string) ([]byte, error) {
	groups := strings.Fields(field)
	out := make([]byte, len(groups))
	for i, g := range groups {
		v, err := strconv.ParseUint(g, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("bad machine-code byte %q: %w", g, err)
		}
		out[i] = byte(v)
	}
	return out, nil
}
