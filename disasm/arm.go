package disasm

import "fmt"

// armEntry is one row of the ARM A32 dispatch table. Like the Thumb
// tables, armTable is tried in declaration order and the first row whose
// (instr & mask) == match wins.
type armEntry struct {
	mask, match uint32
	handler     func(s *State, instr uint32) bool
}

// armTable dispatches on bits 27:25 (the primary group) plus the
// secondary discriminators the ARM reference manual uses within each
// group (bit 4 and bit 7 for register-vs-immediate shift, bits 24:23 for
// the multiply/extra-load-store block, and so on). This table is
// rebuilt from the per-opcode handler bodies and the primary/secondary
// dispatch description rather than copied from a source listing, since
// the reference decoder this package is grounded on only carries the
// per-opcode handlers themselves.
var armTable = []armEntry{
	{0x0fffffd0, 0x012fff10, armBranchExchange}, // BX/BLX (register)
	{0x0f000000, 0x0a000000, armBranch},         // B
	{0x0f000000, 0x0b000000, armBranchLink},     // BL
	{0x0fc000f0, 0x00000090, armMultiply},
	{0x0f8000f0, 0x00800090, armMultiplyLong},
	{0x0e000090, 0x00000090, armLoadStoreExtra},
	{0x0e000000, 0x00000000, armDataProcReg},
	{0x0e000000, 0x02000000, armDataProcImm},
	{0x0e000000, 0x04000000, armLoadStoreImm},
	{0x0e000000, 0x06000000, armLoadStoreReg},
	{0x0e000000, 0x08000000, armLoadStoreMult},
	{0x0f000000, 0x0f000000, armSoftwareInterrupt},
}

// StepArm decodes one 32-bit ARM instruction at s.Address.
func (s *State) StepArm(word uint32) bool {
	s.Address += uint32(s.Size)
	s.line.reset()
	s.ArmMode = ModeARM
	s.Size = 4
	s.raw = fmt.Sprintf("%08x", word)

	if s.codePool.kindAt(s.Address) == poolLiteral {
		s.dumpWord(word)
		return true
	}

	for _, e := range armTable {
		if word&e.mask == e.match {
			return e.handler(s, word)
		}
	}
	return false
}

// dataProcNames indexes the 4-bit ARM data-processing opcode field.
var dataProcNames = [16]string{
	"and", "eor", "sub", "rsb", "add", "adc", "sbc", "rsc",
	"tst", "teq", "cmp", "cmn", "orr", "mov", "bic", "mvn",
}

// dataProcIsCompare reports whether opcode op is one of the four
// flag-only comparison ops (TST, TEQ, CMP, CMN) that never write Rd.
func dataProcIsCompare(op uint32) bool {
	return op == 8 || op == 9 || op == 10 || op == 11
}

// dataProcIsUnary reports whether op takes no Rn operand (MOV, MVN).
func dataProcIsUnary(op uint32) bool {
	return op == 13 || op == 15
}

func armDataProcReg(s *State, instr uint32) bool {
	cond := field(instr, 28, 4)
	op := field(instr, 21, 4)
	setFlags := bitSet(instr, 20)
	rn := field(instr, 16, 4)
	rd := field(instr, 12, 4)
	rm := field(instr, 0, 4)
	regShift := bitSet(instr, 4)

	name := dataProcNames[op]
	// Rd==PC aliasing: ANDS/EORS/ADDS/SUBS with S set and the shifter
	// destination suppressed print as the corresponding compare alias
	// (fixes: these were a known source of ambiguity, see DESIGN.md).
	alias := false
	if rd == 15 && setFlags {
		switch op {
		case 0:
			name, alias = "tst", true
		case 1:
			name, alias = "teq", true
		case 4:
			name, alias = "cmn", true
		case 2:
			name, alias = "cmp", true
		}
	}

	if alias {
		s.line.setMnemonicCond(name, cond)
	} else {
		s.line.setMnemonicCondS(name, setFlags, cond)
	}

	if !alias && !dataProcIsCompare(op) {
		s.line.addOperand("%s", regNames[rd])
	}
	if !dataProcIsUnary(op) {
		s.line.addOperand("%s", regNames[rn])
	}

	if regShift {
		rs := field(instr, 8, 4)
		typ := field(instr, 5, 2)
		s.line.addOperand("%s", regNames[rm])
		s.line.addOperand("%s %s", shiftNames[typ], regNames[rs])
	} else {
		imm5 := field(instr, 7, 5)
		typ := field(instr, 5, 2)
		s.line.addOperand("%s", regNames[rm])
		if shiftText := decodeImmShift(typ, imm5); shiftText != "" {
			s.line.addOperand("%s", shiftText)
		}
	}
	return true
}

func armDataProcImm(s *State, instr uint32) bool {
	cond := field(instr, 28, 4)
	op := field(instr, 21, 4)
	setFlags := bitSet(instr, 20)
	rn := field(instr, 16, 4)
	rd := field(instr, 12, 4)
	rotate := field(instr, 8, 4)
	imm8 := field(instr, 0, 8)
	value := ror32(imm8, uint(rotate*2))

	name := dataProcNames[op]
	alias := false
	if rd == 15 && setFlags {
		switch op {
		case 0:
			name, alias = "tst", true
		case 1:
			name, alias = "teq", true
		case 4:
			name, alias = "cmn", true
		case 2:
			name, alias = "cmp", true
		}
	}

	if alias {
		s.line.setMnemonicCond(name, cond)
	} else {
		s.line.setMnemonicCondS(name, setFlags, cond)
	}
	if !alias && !dataProcIsCompare(op) {
		s.line.addOperand("%s", regNames[rd])
	}
	if !dataProcIsUnary(op) {
		s.line.addOperand("%s", regNames[rn])
	}
	s.line.addOperand("#%d", value)
	return true
}

func armLoadStoreImm(s *State, instr uint32) bool {
	cond := field(instr, 28, 4)
	isLoad := bitSet(instr, 20)
	isByte := bitSet(instr, 22)
	add := bitSet(instr, 23)
	preIndex := bitSet(instr, 24)
	writeback := bitSet(instr, 21)
	rn := field(instr, 16, 4)
	rt := field(instr, 12, 4)
	imm12 := field(instr, 0, 12)

	name := "str"
	if isLoad {
		name = "ldr"
	}
	if isByte {
		name += "b"
	}
	s.line.setMnemonicCond(name, cond)
	s.line.addOperand("%s", regNames[rt])

	sign := ""
	if !add {
		sign = "-"
	}
	switch {
	case imm12 == 0:
		s.line.addOperand("[%s]", regNames[rn])
	case preIndex && !writeback:
		s.line.addOperand("[%s, #%s%d]", regNames[rn], sign, imm12)
	case preIndex && writeback:
		s.line.addOperand("[%s, #%s%d]!", regNames[rn], sign, imm12)
	default: // post-indexed
		s.line.addOperand("[%s], #%s%d", regNames[rn], sign, imm12)
	}

	if isLoad && rn == 15 && preIndex {
		target := align4(s.Address+8) + imm12
		if !add {
			target = align4(s.Address+8) - imm12
		}
		s.line.addCommentAddress(&s.symbols, target)
	}
	return true
}

func armLoadStoreReg(s *State, instr uint32) bool {
	cond := field(instr, 28, 4)
	isLoad := bitSet(instr, 20)
	isByte := bitSet(instr, 22)
	add := bitSet(instr, 23)
	preIndex := bitSet(instr, 24)
	writeback := bitSet(instr, 21)
	rn := field(instr, 16, 4)
	rt := field(instr, 12, 4)
	rm := field(instr, 0, 4)
	imm5 := field(instr, 7, 5)
	typ := field(instr, 5, 2)

	name := "str"
	if isLoad {
		name = "ldr"
	}
	if isByte {
		name += "b"
	}
	s.line.setMnemonicCond(name, cond)
	s.line.addOperand("%s", regNames[rt])

	sign := ""
	if !add {
		sign = "-"
	}
	shiftText := decodeImmShift(typ, imm5)
	operand := fmt.Sprintf("%s%s", sign, regNames[rm])
	if shiftText != "" {
		operand += ", " + shiftText
	}
	switch {
	case preIndex && !writeback:
		s.line.addOperand("[%s, %s]", regNames[rn], operand)
	case preIndex && writeback:
		s.line.addOperand("[%s, %s]!", regNames[rn], operand)
	default:
		s.line.addOperand("[%s], %s", regNames[rn], operand)
	}
	return true
}

// armLoadStoreExtra handles the "extra load/store" group: LDRH/STRH,
// LDRSB/LDRSH, and LDRD/STRD, distinguished by bits 6:5 and the L bit.
func armLoadStoreExtra(s *State, instr uint32) bool {
	cond := field(instr, 28, 4)
	isLoad := bitSet(instr, 20)
	preIndex := bitSet(instr, 24)
	writeback := bitSet(instr, 21)
	immForm := bitSet(instr, 22)
	add := bitSet(instr, 23)
	rn := field(instr, 16, 4)
	rt := field(instr, 12, 4)
	op := field(instr, 5, 2)

	var name string
	switch {
	case op == 1 && isLoad:
		name = "ldrh"
	case op == 1 && !isLoad:
		name = "strh"
	case op == 2 && isLoad:
		name = "ldrsb"
	case op == 2 && !isLoad:
		name = "ldrd"
	case op == 3 && isLoad:
		name = "ldrsh"
	case op == 3 && !isLoad:
		name = "strd"
	default:
		return false
	}

	s.line.setMnemonicCond(name, cond)
	s.line.addOperand("%s", regNames[rt])

	sign := ""
	if !add {
		sign = "-"
	}
	var offset string
	if immForm {
		imm4h := field(instr, 8, 4)
		imm4l := field(instr, 0, 4)
		offset = fmt.Sprintf("#%s%d", sign, imm4h<<4|imm4l)
	} else {
		rm := field(instr, 0, 4)
		offset = sign + regNames[rm]
	}
	switch {
	case preIndex && !writeback:
		s.line.addOperand("[%s, %s]", regNames[rn], offset)
	case preIndex && writeback:
		s.line.addOperand("[%s, %s]!", regNames[rn], offset)
	default:
		s.line.addOperand("[%s], %s", regNames[rn], offset)
	}
	return true
}

func armLoadStoreMult(s *State, instr uint32) bool {
	cond := field(instr, 28, 4)
	isLoad := bitSet(instr, 20)
	writeback := bitSet(instr, 21)
	preIndex := bitSet(instr, 24)
	add := bitSet(instr, 23)
	rn := field(instr, 16, 4)
	regList := uint16(field(instr, 0, 16))

	var name string
	switch {
	case isLoad && add && !preIndex:
		name = "ldmia"
	case isLoad && add && preIndex:
		name = "ldmib"
	case isLoad && !add && !preIndex:
		name = "ldmda"
	case isLoad && !add && preIndex:
		name = "ldmdb"
	case !isLoad && add && !preIndex:
		name = "stmia"
	case !isLoad && add && preIndex:
		name = "stmib"
	case !isLoad && !add && !preIndex:
		name = "stmda"
	default:
		name = "stmdb"
	}

	// PUSH/POP aliases on SP with the conventional direction.
	if rn == 13 && writeback {
		if !isLoad && name == "stmdb" {
			s.line.setMnemonicCond("push", cond)
			s.line.addRegList(regList)
			return true
		}
		if isLoad && name == "ldmia" {
			s.line.setMnemonicCond("pop", cond)
			s.line.addRegList(regList)
			return true
		}
	}

	s.line.setMnemonicCond(name, cond)
	if writeback {
		s.line.addOperand("%s!", regNames[rn])
	} else {
		s.line.addOperand("%s", regNames[rn])
	}
	s.line.addRegList(regList)
	return true
}

func armBranch(s *State, instr uint32) bool {
	cond := field(instr, 28, 4)
	imm24 := field(instr, 0, 24)
	offset := signExtend(int32(imm24), 24) << 2
	target := uint32(int64(s.Address) + 8 + int64(offset))
	s.line.setMnemonicCond("b", cond)
	s.line.addOperand("%x", target)
	if sym, ok := s.symbols.lookup(target); ok {
		s.line.addComment("%s", sym.name)
	}
	return true
}

func armBranchLink(s *State, instr uint32) bool {
	cond := field(instr, 28, 4)
	imm24 := field(instr, 0, 24)
	offset := signExtend(int32(imm24), 24) << 2
	target := uint32(int64(s.Address) + 8 + int64(offset))
	s.line.setMnemonicCond("bl", cond)
	s.line.addOperand("%x", target)
	if sym, ok := s.symbols.lookup(target); ok {
		s.line.addComment("%s", sym.name)
	}
	return true
}

func armBranchExchange(s *State, instr uint32) bool {
	cond := field(instr, 28, 4)
	rm := field(instr, 0, 4)
	name := "bx"
	if field(instr, 4, 4) == 3 {
		name = "blx"
	}
	s.line.setMnemonicCond(name, cond)
	s.line.addOperand("%s", regNames[rm])
	return true
}

func armMultiply(s *State, instr uint32) bool {
	cond := field(instr, 28, 4)
	accumulate := bitSet(instr, 21)
	setFlags := bitSet(instr, 20)
	rd := field(instr, 16, 4)
	rn := field(instr, 12, 4)
	rs := field(instr, 8, 4)
	rm := field(instr, 0, 4)

	name := "mul"
	if accumulate {
		name = "mla"
	}
	s.line.setMnemonicCondS(name, setFlags, cond)
	s.line.addOperand("%s", regNames[rd])
	s.line.addOperand("%s", regNames[rm])
	s.line.addOperand("%s", regNames[rs])
	if accumulate {
		s.line.addOperand("%s", regNames[rn])
	}
	return true
}

func armMultiplyLong(s *State, instr uint32) bool {
	cond := field(instr, 28, 4)
	signedMul := bitSet(instr, 22)
	accumulate := bitSet(instr, 21)
	setFlags := bitSet(instr, 20)
	rdHi := field(instr, 16, 4)
	rdLo := field(instr, 12, 4)
	rs := field(instr, 8, 4)
	rm := field(instr, 0, 4)

	name := "umull"
	switch {
	case signedMul && accumulate:
		name = "smlal"
	case signedMul && !accumulate:
		name = "smull"
	case !signedMul && accumulate:
		name = "umlal"
	}
	s.line.setMnemonicCondS(name, setFlags, cond)
	s.line.addOperand("%s", regNames[rdLo])
	s.line.addOperand("%s", regNames[rdHi])
	s.line.addOperand("%s", regNames[rm])
	s.line.addOperand("%s", regNames[rs])
	return true
}

func armSoftwareInterrupt(s *State, instr uint32) bool {
	cond := field(instr, 28, 4)
	imm24 := field(instr, 0, 24)
	s.line.setMnemonicCond("svc", cond)
	s.line.addOperand("#%d", imm24)
	return true
}

// dumpWord renders a 32-bit literal-pool entry as a .word directive.
func (s *State) dumpWord(value uint32) {
	s.line.setMnemonic(".word")
	s.line.addOperand("#0x%08x", value)
	if sym, ok := s.symbols.lookup(value); ok {
		s.line.addComment("%s", sym.name)
	}
}
