package grammar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/frisc-toolchain/frisc/internal/peg"
)

// NumericValue evaluates a numeric literal leaf node (Binary/Octal/Decimal/
// Hex) to its integer value. The lexer has already re-merged the %B/%O/%D/%H
// prefix into the token text, so it is stripped here; hex literals may also
// carry a trailing 'H' (e.g. "1AH"), matching FRISC source conventions.
func NumericValue(n peg.Node) (int64, error) {
	text := n.Text
	var base int
	switch n.Kind {
	case KindBinary:
		base = 2
		text = strings.TrimPrefix(text, "%B")
	case KindOctal:
		base = 8
		text = strings.TrimPrefix(text, "%O")
	case KindDecimal:
		base = 10
		text = strings.TrimPrefix(text, "%D")
	case KindHex:
		base = 16
		text = strings.TrimSuffix(strings.TrimPrefix(text, "%H"), "H")
	default:
		return 0, fmt.Errorf("grammar: %q is not a numeric literal", n.Kind)
	}
	v, err := strconv.ParseInt(text, base, 64)
	if err != nil {
		return 0, fmt.Errorf("grammar: invalid numeric literal %q: %w", n.Text, err)
	}
	return v, nil
}

// regCode returns the 3-bit register field for a GeneralRegister or
// StatusRegister leaf. SP encodes as R7 == 111; SR always encodes as 000.
func regCode(n peg.Node) uint32 {
	switch n.Text {
	case "SP":
		return 7
	case "SR":
		return 0
	default:
		return uint32(n.Text[1] - '0')
	}
}

// place lays value (its low `width` bits) into a 32-bit word at bit
// position [startBit, startBit+width), counting bit 0 as the MSB — the
// convention spec.md's field-extraction table uses throughout.
func place(value uint32, startBit, width int) uint32 {
	shift := 32 - startBit - width
	mask := uint32(1)<<uint(width) - 1
	return (value & mask) << uint(shift)
}
