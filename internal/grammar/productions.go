package grammar

import "github.com/frisc-toolchain/frisc/internal/peg"

var (
	nALName   = peg.Token(KindMnemonic, `ADD|ADC|SUB|SBC|AND|OR|XOR|SHL|SHR|ASHR|ROTL|ROTR|CMP`)
	nMemName  = peg.Token(KindMnemonic, `LOAD(B|H)?|STORE(B|H)?`)
	nRetName  = peg.Token(KindMnemonic, `HALT|RET(I|N)?`)
	nStckName = peg.Token(KindMnemonic, `PUSH|POP`)
	nJmpName  = peg.Token(KindMnemonic, `JP|CALL`)
	nDataName = peg.Token(KindMnemonic, `D(B|H|W)`)

	nCondSuffix = peg.Optional(peg.Sequence(tUnders, tCond))

	pAL = peg.Group(KindALInstr, peg.Sequence(
		nALName, tGenReg, tComma, peg.Or(tGenReg, tConst),
		peg.Optional(peg.Sequence(tComma, tGenReg)),
	))

	pMemInner = peg.Or(
		peg.Sequence(tGenReg, tSign, tNumeric),
		tGenReg,
		tConst,
	)

	pMem = peg.Group(KindMemInstr, peg.Sequence(
		nMemName, tGenReg, tComma, tLParen, pMemInner, tRParen,
	))

	pMove = peg.Group(KindMoveInstr, peg.Sequence(
		peg.Token(KindMnemonic, `MOVE`), peg.Or(tReg, tConst), tComma, tReg,
	))

	pStack = peg.Group(KindStackInstr, peg.Sequence(nStckName, tGenReg))

	pJumpTarget = peg.Or(tConst, peg.Sequence(tLParen, tGenReg, tRParen))

	pJump = peg.Group(KindJumpInstr, peg.Sequence(nJmpName, nCondSuffix, pJumpTarget))

	pJR = peg.Group(KindJRInstr, peg.Sequence(peg.Token(KindMnemonic, `JR`), nCondSuffix, tConst))

	pRet = peg.Group(KindRetInstr, peg.Sequence(nRetName, nCondSuffix))

	pOrg   = peg.Group(KindOrgPseudo, peg.Sequence(peg.Token(KindMnemonic, `ORG`), tNumeric))
	pEqu   = peg.Group(KindEquPseudo, peg.Sequence(peg.Token(KindMnemonic, `EQU`), tNumeric))
	pSpace = peg.Group(KindSpacePseudo, peg.Sequence(peg.Token(KindMnemonic, `DS`), tNumeric))

	pData = peg.Group(KindDataPseudo, peg.Sequence(
		nDataName, tNumeric, peg.Multiple(peg.Sequence(tComma, tNumeric)),
	))

	friscInstr = peg.Or(pAL, pMem, pMove, pStack, pJump, pJR, pRet, pOrg, pEqu, pSpace, pData)
)

// Parse parses one line's tokens into a single instruction Node (one of the
// Kind* instruction constants). An empty token slice is an error — callers
// should check for blank/comment-only lines before calling Parse.
func Parse(tokens []string) (peg.Node, error) {
	n, rest, err := friscInstr.Match(tokens)
	if err != nil {
		return peg.Node{}, err
	}
	if len(rest) != 0 {
		return peg.Node{}, &peg.SyntaxError{Lexeme: rest[0]}
	}
	return n, nil
}
