package disasm

// thumb2Entry is one row of the 32-bit Thumb-2 dispatch table, matched
// the same way as thumbEntry. The VFP single-precision "patch" rows are
// listed first so their exact-pattern matches win over the generic
// coprocessor rows further down the table.
type thumb2Entry struct {
	mask, match uint32
	handler     func(s *State, instr uint32) bool
}

var thumb2Table = []thumb2Entry{
	// VFP single-precision patches (exact pattern match, must precede the
	// generic coprocessor rows below).
	{0xffbf0fd0, 0xeeb00a40, thumb2VMov},
	{0xffff0fff, 0xeef10a10, thumb2VMRS},
	{0xffb00f50, 0xee300a00, thumb2VAdd},
	{0xffb00f50, 0xee300a40, thumb2VSub},
	{0xffb00f50, 0xee200a00, thumb2VMul},
	{0xffb00f50, 0xee800a00, thumb2VDiv},
	{0xffbf0fd0, 0xeeb40a40, thumb2VCmp},
	{0xffbe0e50, 0xeeb80a40, thumb2VCvt},

	// Branches and miscellaneous control. hw2<15> is always 1 for this
	// whole group; hw2<14> separates BL/BLX (1) from B (0), and hw2<12>
	// separates BL (1) from BLX (0), or unconditional (1) from
	// conditional (0) narrow B. hw2<13> (J1) and <11> (J2) are excluded
	// from the match since they vary per-branch.
	{0xf800d000, 0xf000d000, thumb2BranchLink},   // BL
	{0xf800d000, 0xf000c000, thumb2BranchLinkX},  // BLX
	{0xf800d000, 0xf0009000, thumb2Branch32},     // B.W, unconditional
	{0xf800d000, 0xf0008000, thumb2Branch32},     // B.W, conditional narrow

	// Data-processing (modified immediate).
	{0xfa008000, 0xf0000000, thumb2DataProcModImm},
	{0xfbe08000, 0xf2000000, thumb2DataProcPlainImm},

	// Data-processing (shifted register).
	{0xff000000, 0xea000000, thumb2DataProcShiftReg},

	// Long multiply / divide.
	{0xff8000f0, 0xfb800000, thumb2MultLong},
	{0xfff0f0f0, 0xfb90f0f0, thumb2SDiv},
	{0xfff0f0f0, 0xfbb0f0f0, thumb2UDiv},

	// Load/store single.
	{0xff700000, 0xf8500000, thumb2LoadStoreReg},
	{0xff700000, 0xf8100000, thumb2LoadStoreImm8},
	{0xfff00000, 0xf8d00000, thumb2LoadStoreImm12},

	// Load/store multiple.
	{0xffd00000, 0xe8900000, thumb2LoadMult},
	{0xffd00000, 0xe8800000, thumb2StoreMult},
}

func (s *State) decodeThumb2(instr uint32) bool {
	for _, e := range thumb2Table {
		if instr&e.mask == e.match {
			return e.handler(s, instr)
		}
	}
	return false
}

func thumb2VMov(s *State, instr uint32) bool {
	toCore := bitSet(instr, 20)
	rt := field(instr, 12, 4)
	vn := field(instr, 16, 4)
	name := "vmov"
	s.line.setMnemonic(name)
	if toCore {
		s.line.addOperand("%s", regNames[rt])
		s.line.addOperand("s%d", vn<<1|field(instr, 7, 1))
	} else {
		s.line.addOperand("s%d", vn<<1|field(instr, 7, 1))
		s.line.addOperand("%s", regNames[rt])
	}
	return true
}

func thumb2VMRS(s *State, instr uint32) bool {
	rt := field(instr, 12, 4)
	s.line.setMnemonic("vmrs")
	if rt == 15 {
		s.line.addOperand("apsr_nzcv")
	} else {
		s.line.addOperand("%s", regNames[rt])
	}
	s.line.addOperand("fpscr")
	return true
}

func thumb2vRegOperands(s *State, instr uint32) (d, n, m uint32) {
	d = field(instr, 12, 4)<<1 | field(instr, 22, 1)
	n = field(instr, 16, 4)<<1 | field(instr, 7, 1)
	m = field(instr, 0, 4)<<1 | field(instr, 5, 1)
	return
}

func thumb2VAdd(s *State, instr uint32) bool {
	d, n, m := thumb2vRegOperands(s, instr)
	s.line.setMnemonic("vadd.f32")
	s.line.addOperand("s%d", d)
	s.line.addOperand("s%d", n)
	s.line.addOperand("s%d", m)
	return true
}

func thumb2VSub(s *State, instr uint32) bool {
	d, n, m := thumb2vRegOperands(s, instr)
	s.line.setMnemonic("vsub.f32")
	s.line.addOperand("s%d", d)
	s.line.addOperand("s%d", n)
	s.line.addOperand("s%d", m)
	return true
}

func thumb2VMul(s *State, instr uint32) bool {
	d, n, m := thumb2vRegOperands(s, instr)
	s.line.setMnemonic("vmul.f32")
	s.line.addOperand("s%d", d)
	s.line.addOperand("s%d", n)
	s.line.addOperand("s%d", m)
	return true
}

func thumb2VDiv(s *State, instr uint32) bool {
	d, n, m := thumb2vRegOperands(s, instr)
	s.line.setMnemonic("vdiv.f32")
	s.line.addOperand("s%d", d)
	s.line.addOperand("s%d", n)
	s.line.addOperand("s%d", m)
	return true
}

func thumb2VCmp(s *State, instr uint32) bool {
	d, _, m := thumb2vRegOperands(s, instr)
	s.line.setMnemonic("vcmpe.f32")
	s.line.addOperand("s%d", d)
	s.line.addOperand("s%d", m)
	return true
}

func thumb2VCvt(s *State, instr uint32) bool {
	toInt := bitSet(instr, 18)
	d, _, m := thumb2vRegOperands(s, instr)
	if toInt {
		s.line.setMnemonic("vcvt.s32.f32")
	} else {
		s.line.setMnemonic("vcvt.f32.s32")
	}
	s.line.addOperand("s%d", d)
	s.line.addOperand("s%d", m)
	return true
}

// branchTargetT4 computes the 32-bit signed offset of a BL/B.W T4/B
// encoding from its three sign/J1/J2-encoded components.
func branchTargetT4(instr uint32) int32 {
	s1 := field(instr, 26, 1)
	j1 := field(instr, 13, 1)
	j2 := field(instr, 11, 1)
	imm10 := field(instr, 16, 10)
	imm11 := field(instr, 0, 11)

	i1 := ^(j1 ^ s1) & 1
	i2 := ^(j2 ^ s1) & 1

	offset := s1<<24 | i1<<23 | i2<<22 | imm10<<12 | imm11<<1
	return signExtend(int32(offset), 25)
}

func thumb2BranchLink(s *State, instr uint32) bool {
	offset := branchTargetT4(instr)
	target := uint32(int64(s.Address) + 4 + int64(offset))
	s.line.setMnemonic("bl")
	s.line.addOperand("%x", target)
	if sym, ok := s.symbols.lookup(target); ok {
		s.line.addComment("%s", sym.name)
	}
	return true
}

func thumb2BranchLinkX(s *State, instr uint32) bool {
	offset := branchTargetT4(instr) &^ 3
	target := uint32(int64(s.Address) + 4 + int64(offset))
	s.line.setMnemonic("blx")
	s.line.addOperand("%x", target)
	s.codePool.mark(target, poolCode)
	return true
}

func thumb2Branch32(s *State, instr uint32) bool {
	if !bitSet(instr, 12) {
		// conditional B.W, narrower imm6:imm11 encoding with its own cond field
		cond := field(instr, 22, 4)
		s1 := field(instr, 26, 1)
		j1 := field(instr, 13, 1)
		j2 := field(instr, 11, 1)
		imm6 := field(instr, 16, 6)
		imm11 := field(instr, 0, 11)
		offset := signExtend(int32(s1<<20|j2<<19|j1<<18|imm6<<12|imm11<<1), 21)
		target := uint32(int64(s.Address) + 4 + int64(offset))
		s.line.setMnemonicCond("b", cond)
		s.line.addOperand("%x", target)
		return true
	}
	offset := branchTargetT4(instr)
	target := uint32(int64(s.Address) + 4 + int64(offset))
	s.line.setMnemonic("b.w")
	s.line.addOperand("%x", target)
	return true
}

func thumb2DataProcModImm(s *State, instr uint32) bool {
	op := field(instr, 21, 4)
	setFlags := field(instr, 20, 1) == 1
	rn := field(instr, 16, 4)
	rd := field(instr, 8, 4)
	i := field(instr, 26, 1)
	imm3 := field(instr, 12, 3)
	imm8 := field(instr, 0, 8)
	imm12 := i<<11 | imm3<<8 | imm8
	value := expandModImm(imm12)

	names := map[uint32]string{
		0: "and", 1: "bic", 2: "orr", 3: "orn", 4: "eor",
		8: "add", 10: "adc", 11: "sbc", 13: "sub", 14: "rsb",
	}
	name, ok := names[op]
	if !ok {
		return false
	}

	discardDest := false
	// TST/TEQ/CMN/CMP aliases: Rd == PC and S set means the destination
	// is discarded and the instruction is really a flag-setting compare.
	if rd == 15 && setFlags {
		switch op {
		case 0:
			name, discardDest = "tst", true
		case 4:
			name, discardDest = "teq", true
		case 8:
			name, discardDest = "cmn", true
		case 13:
			name, discardDest = "cmp", true
		}
	}

	s.line.setMnemonicCondS(name, setFlags && !discardDest, 14)
	if discardDest {
		s.line.setMnemonic(name)
	}
	if !discardDest {
		s.line.addOperand("%s", regNames[rd])
	}
	if op == 2 && rn == 15 { // MOV (mod. imm) is ORR with Rn==PC
		movName := "mov"
		if setFlags {
			movName += "s"
		}
		s.line.setMnemonic(movName + ".w")
	} else if !discardDest {
		s.line.addOperand("%s", regNames[rn])
	}
	s.line.addOperand("#%d", int32(value))
	if value > 9 {
		s.line.addComment("0x%x", value)
	}
	return true
}

func thumb2DataProcPlainImm(s *State, instr uint32) bool {
	op := field(instr, 20, 5)
	rn := field(instr, 16, 4)
	rd := field(instr, 8, 4)
	i := field(instr, 26, 1)
	imm3 := field(instr, 12, 3)
	imm8 := field(instr, 0, 8)

	switch op {
	case 0x04: // ADDW
		imm := i<<11 | imm3<<8 | imm8
		s.line.setMnemonic("addw")
		s.line.addOperand("%s", regNames[rd])
		s.line.addOperand("%s", regNames[rn])
		s.line.addOperand("#%d", imm)
	case 0x0a: // SUBW
		imm := i<<11 | imm3<<8 | imm8
		s.line.setMnemonic("subw")
		s.line.addOperand("%s", regNames[rd])
		s.line.addOperand("%s", regNames[rn])
		s.line.addOperand("#%d", imm)
	case 0x02, 0x12: // MOVW / ADR (Rn==1111 handled generically as movw here)
		imm4 := field(instr, 16, 4)
		imm := imm4<<12 | i<<11 | imm3<<8 | imm8
		s.line.setMnemonic("movw")
		s.line.addOperand("%s", regNames[rd])
		s.line.addOperand("#%d", imm)
	case 0x0c: // MOVT
		imm4 := field(instr, 16, 4)
		imm := imm4<<12 | i<<11 | imm3<<8 | imm8
		s.line.setMnemonic("movt")
		s.line.addOperand("%s", regNames[rd])
		s.line.addOperand("#%d", imm)
	default:
		return false
	}
	return true
}

func thumb2DataProcShiftReg(s *State, instr uint32) bool {
	op := field(instr, 21, 4)
	flags := field(instr, 20, 1)
	rn := field(instr, 16, 4)
	rd := field(instr, 8, 4)
	rm := field(instr, 0, 4)
	typ := field(instr, 4, 2)
	imm2 := field(instr, 6, 2)
	imm3 := field(instr, 12, 3)
	imm5 := imm3<<2 | imm2

	names := map[uint32]string{
		0: "and", 1: "bic", 2: "orr", 3: "orn", 4: "eor",
		8: "add", 10: "adc", 11: "sbc", 13: "sub", 14: "rsb",
	}
	name, ok := names[op]
	if !ok {
		return false
	}
	s.line.setMnemonicCondS(name, flags == 1, 14)
	s.line.addOperand("%s", regNames[rd])
	s.line.addOperand("%s", regNames[rn])
	s.line.addOperand("%s", regNames[rm])
	if shiftText := decodeImmShift(typ, imm5); shiftText != "" {
		s.line.addOperand("%s", shiftText)
	}
	return true
}

func thumb2MultLong(s *State, instr uint32) bool {
	op1 := field(instr, 20, 3)
	op2 := field(instr, 4, 4)
	rn := field(instr, 16, 4)
	rdLo := field(instr, 12, 4)
	rdHi := field(instr, 8, 4)
	rm := field(instr, 0, 4)

	var name string
	switch {
	case op1 == 0 && op2 == 0:
		name = "smull"
	case op1 == 2 && op2 == 0:
		name = "umull"
	case op1 == 4 && op2 == 0:
		name = "smlal"
	case op1 == 6 && op2 == 0:
		name = "umlal"
	default:
		return false
	}
	s.line.setMnemonic(name)
	s.line.addOperand("%s", regNames[rdLo])
	s.line.addOperand("%s", regNames[rdHi])
	s.line.addOperand("%s", regNames[rn])
	s.line.addOperand("%s", regNames[rm])
	return true
}

func thumb2SDiv(s *State, instr uint32) bool {
	rn := field(instr, 16, 4)
	rd := field(instr, 8, 4)
	rm := field(instr, 0, 4)
	s.line.setMnemonic("sdiv")
	s.line.addOperand("%s", regNames[rd])
	s.line.addOperand("%s", regNames[rn])
	s.line.addOperand("%s", regNames[rm])
	return true
}

func thumb2UDiv(s *State, instr uint32) bool {
	rn := field(instr, 16, 4)
	rd := field(instr, 8, 4)
	rm := field(instr, 0, 4)
	s.line.setMnemonic("udiv")
	s.line.addOperand("%s", regNames[rd])
	s.line.addOperand("%s", regNames[rn])
	s.line.addOperand("%s", regNames[rm])
	return true
}

func thumb2LoadStoreReg(s *State, instr uint32) bool {
	isLoad := bitSet(instr, 20)
	rn := field(instr, 16, 4)
	rt := field(instr, 12, 4)
	rm := field(instr, 0, 4)
	imm2 := field(instr, 4, 2)
	sizeOp := field(instr, 21, 2)

	names := map[bool][4]string{
		true:  {"ldrb.w", "ldrh.w", "ldr.w", "ldr.w"},
		false: {"strb.w", "strh.w", "str.w", "str.w"},
	}
	s.line.setMnemonic(names[isLoad][sizeOp])
	s.line.addOperand("%s", regNames[rt])
	if imm2 == 0 {
		s.line.addOperand("[%s, %s]", regNames[rn], regNames[rm])
	} else {
		s.line.addOperand("[%s, %s, lsl #%d]", regNames[rn], regNames[rm], imm2)
	}
	return true
}

func thumb2LoadStoreImm8(s *State, instr uint32) bool {
	isLoad := bitSet(instr, 20)
	rn := field(instr, 16, 4)
	rt := field(instr, 12, 4)
	imm8 := field(instr, 0, 8)
	name := "str.w"
	if isLoad {
		name = "ldr.w"
	}
	s.line.setMnemonic(name)
	s.line.addOperand("%s", regNames[rt])
	s.line.addOperand("[%s, #-%d]", regNames[rn], imm8)
	return true
}

func thumb2LoadStoreImm12(s *State, instr uint32) bool {
	isLoad := bitSet(instr, 20)
	rn := field(instr, 16, 4)
	rt := field(instr, 12, 4)
	imm12 := field(instr, 0, 12)
	name := "str.w"
	if isLoad {
		name = "ldr.w"
	}
	s.line.setMnemonic(name)
	s.line.addOperand("%s", regNames[rt])
	if imm12 == 0 {
		s.line.addOperand("[%s]", regNames[rn])
	} else {
		s.line.addOperand("[%s, #%d]", regNames[rn], imm12)
	}
	return true
}

func thumb2LoadMult(s *State, instr uint32) bool {
	rn := field(instr, 16, 4)
	wback := bitSet(instr, 21)
	regList := uint16(field(instr, 0, 16))
	s.line.setMnemonic("ldm.w")
	if wback {
		s.line.addOperand("%s!", regNames[rn])
	} else {
		s.line.addOperand("%s", regNames[rn])
	}
	s.line.addRegList(regList)
	return true
}

func thumb2StoreMult(s *State, instr uint32) bool {
	rn := field(instr, 16, 4)
	wback := bitSet(instr, 21)
	regList := uint16(field(instr, 0, 16))
	s.line.setMnemonic("stm.w")
	if wback {
		s.line.addOperand("%s!", regNames[rn])
	} else {
		s.line.addOperand("%s", regNames[rn])
	}
	s.line.addRegList(regList)
	return true
}
