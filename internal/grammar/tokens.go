// Package grammar layers FRISC-specific productions over the peg engine:
// numerics, labels, registers, conditions, the eleven instruction and
// pseudo-instruction forms, and the bit-exact encoder for each.
package grammar

import "github.com/frisc-toolchain/frisc/internal/peg"

// Node kinds produced by the leaf tokens and instruction groups. Exported
// so the assembler package can switch on them without re-declaring string
// literals.
const (
	KindBinary  = "Binary"
	KindOctal   = "Octal"
	KindDecimal = "Decimal"
	KindHex     = "Hex"
	KindLabel   = "Label"

	KindGeneralRegister = "GeneralRegister"
	KindStatusRegister  = "StatusRegister"
	KindCondition       = "Condition"

	KindALInstr    = "ALInstr"
	KindMemInstr   = "MemInstr"
	KindMoveInstr  = "MoveInstr"
	KindStackInstr = "StackInstr"
	KindJumpInstr  = "JumpInstr"
	KindJRInstr    = "JRInstr"
	KindRetInstr   = "RetInstr"

	KindOrgPseudo   = "OrgPseudoInstr"
	KindEquPseudo   = "EquPseudoInstr"
	KindSpacePseudo = "SpacePseudoInstr"
	KindDataPseudo  = "DataPseudoInstr"

	KindMnemonic  = "Mnemonic"
	KindIndirect  = "Indirect" // not produced: a "( GeneralRegister )" jump/call target is spliced in as a bare GeneralRegister
	KindSign      = "Sign"
	KindOperandHi = "OperandHi" // not produced by any current production
)

// isNumericKind reports whether a leaf node kind is one of the four numeric
// literal forms.
func isNumericKind(kind string) bool {
	switch kind {
	case KindBinary, KindOctal, KindDecimal, KindHex:
		return true
	}
	return false
}

// isConstantKind reports whether a leaf node kind is a Constant (Label or
// Numeric) rather than a bare register.
func isConstantKind(kind string) bool {
	return kind == KindLabel || isNumericKind(kind)
}

// ConditionCodes maps every condition mnemonic to its 4-bit encoding, as
// used by JP/CALL/JR/RET. Unconditional forms default to 0000.
var ConditionCodes = map[string]uint8{
	"C": 0x3, "NC": 0x4, "Z": 0x7, "NZ": 0x8, "V": 0x5, "NV": 0x6,
	"N": 0x1, "NN": 0x2, "M": 0x1, "P": 0x2, "EQ": 0x7, "NE": 0x8,
	"UGT": 0xA, "UGE": 0x3, "ULE": 0x9, "ULT": 0x4,
	"SGT": 0xE, "SGE": 0xD, "SLE": 0xC, "SLT": 0xB,
}

var (
	// tNumeric matches a numeric literal as the lexer hands it over: the
	// %B/%O/%D/%H prefix, if any, already re-merged into the same token as
	// the digits that follow it (see lexer.mergeNumericPrefixes).
	tNumeric = peg.Or(
		peg.Token(KindBinary, `%B[01]+`),
		peg.Token(KindOctal, `%O[0-7]+`),
		peg.Token(KindDecimal, `%D[0-9]+`),
		peg.Token(KindHex, `(%H)?[0-9][0-9A-F]*H?`),
	)

	tLabel   = peg.Token(KindLabel, `[A-Z_][A-Z0-9_]*`)
	tConst   = peg.Or(tLabel, tNumeric)
	tGenReg  = peg.Token(KindGeneralRegister, `R[0-7]|SP`)
	tStatReg = peg.Token(KindStatusRegister, `SR`)
	tReg     = peg.Or(tGenReg, tStatReg)
	tCond    = peg.Token(KindCondition, `C|NC|Z|NZ|V|NV|N|NN|M|P|EQ|NE|UGT|UGE|ULE|ULT|SGT|SGE|SLE|SLT`)

	tComma  = peg.Forgetable(peg.Token("", `,`))
	tLParen = peg.Forgetable(peg.Token("", `\(`))
	tRParen = peg.Forgetable(peg.Token("", `\)`))
	tUnders = peg.Forgetable(peg.Token("", `_`))
	tSign   = peg.Token(KindSign, `\+|-`)
)
