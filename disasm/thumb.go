package disasm

import "fmt"

// thumbEntry is one row of the 16-bit Thumb dispatch table: instr is
// matched when (instr & mask) == match. Rows are tried in order and the
// first match wins, so more specific patterns must precede more general
// ones that would otherwise also match.
type thumbEntry struct {
	mask, match uint16
	handler     func(s *State, instr uint16) bool
}

var thumbTable = []thumbEntry{
	{0xf800, 0x0000, thumbShiftImm},  // LSL (imm)
	{0xf800, 0x0800, thumbShiftImm},  // LSR (imm)
	{0xf800, 0x1000, thumbShiftImm},  // ASR (imm)
	{0xfe00, 0x1800, thumbAddSubReg}, // ADD/SUB register
	{0xfe00, 0x1c00, thumbAddSubImm3},
	{0xf800, 0x2000, thumbMovCmpAddSubImm8}, // MOV/CMP/ADD/SUB Rd, #imm8
	{0xfc00, 0x4000, thumbDataProcReg},      // data-processing register
	{0xfc00, 0x4400, thumbSpecialDataBranch},
	{0xf800, 0x4800, thumbLdrLiteral},
	{0xf000, 0x5000, thumbLoadStoreReg},
	{0xe000, 0x6000, thumbLoadStoreImm},
	{0xf000, 0x8000, thumbLoadStoreHalfImm},
	{0xf000, 0x9000, thumbLoadStoreSP},
	{0xf000, 0xa000, thumbAddSPOrPC},
	{0xff00, 0xb000, thumbAdjustSP},
	{0xff00, 0xb200, thumbExtend}, // SXTH/SXTB/UXTH/UXTB
	{0xfe00, 0xb400, thumbPushPop},
	{0xfff7, 0xb650, thumbSetend},
	{0xffe8, 0xb660, thumbCPS},
	{0xffc0, 0xba00, thumbReverse},
	{0xff00, 0xbe00, thumbBkpt},
	{0xff00, 0xbf00, thumbItHint},
	{0xf500, 0xb100, thumbCBZ},
	{0xf000, 0xc000, thumbLoadStoreMult},
	{0xf000, 0xd000, thumbCondBranchOrSVC},
	{0xf800, 0xe000, thumbBranch},
}

// thumbIs32Bit reports whether the halfword hw1 is the first half of a
// 32-bit Thumb-2 instruction: top 5 bits 0b11101, 0b11110 or 0b11111.
func thumbIs32Bit(hw1 uint16) bool {
	top5 := hw1 >> 11
	return top5 == 0x1d || top5 == 0x1e || top5 == 0x1f
}

// StepThumb decodes one Thumb instruction at s.Address, which may be 16
// or 32 bits depending on hw1's top bits (hw2 is ignored for 16-bit
// instructions). It returns false when no table entry matches.
func (s *State) StepThumb(hw1, hw2 uint16) bool {
	s.Address += uint32(s.Size)
	s.line.reset()
	s.ArmMode = ModeThumb

	if s.codePool.kindAt(s.Address) == poolLiteral {
		s.Size = 4
		s.raw = fmt.Sprintf("%04x %04x", hw1, hw2)
		s.dumpWord(uint32(hw2)<<16 | uint32(hw1))
		return true
	}

	if thumbIs32Bit(hw1) {
		s.Size = 4
		s.raw = fmt.Sprintf("%04x %04x", hw1, hw2)
		instr32 := uint32(hw1)<<16 | uint32(hw2)
		ok := s.decodeThumb2(instr32)
		if !ok {
			s.itMask = 0
			return false
		}
		s.advanceITBlock()
		return true
	}

	s.Size = 2
	s.raw = fmt.Sprintf("%04x", hw1)

	// The IT instruction itself opens the window; it is not one of the
	// governed instructions, so it must not also consume a window slot.
	isITOpen := hw1&0xff00 == 0xbf00 && hw1&0xf != 0

	for _, e := range thumbTable {
		if hw1&e.mask == e.match {
			ok := e.handler(s, hw1)
			if !ok {
				s.itMask = 0
				return false
			}
			if !isITOpen {
				s.advanceITBlock()
			}
			return true
		}
	}
	s.itMask = 0
	return false
}

func thumbShiftImm(s *State, instr uint16) bool {
	typ := field(uint32(instr), 11, 2)
	imm5 := field(uint32(instr), 6, 5)
	rm := field(uint32(instr), 3, 3)
	rd := field(uint32(instr), 0, 3)

	if typ == 0 && imm5 == 0 {
		// LSL Rd, Rm, #0 is the MOV alias.
		s.line.setMnemonicCondS("mov", !s.inITBlock(), s.currentITCond())
		s.line.addOperand("%s", regNames[rd])
		s.line.addOperand("%s", regNames[rm])
		return true
	}

	names := [3]string{"lsl", "lsr", "asr"}
	s.line.setMnemonicCondS(names[typ], !s.inITBlock(), s.currentITCond())
	s.line.addOperand("%s", regNames[rd])
	s.line.addOperand("%s", regNames[rm])

	n := imm5
	if (typ == 1 || typ == 2) && imm5 == 0 {
		n = 32
	}
	s.line.addOperand("#%d", n)
	return true
}

func thumbAddSubReg(s *State, instr uint16) bool {
	sub := bitSet(uint32(instr), 9)
	rm := field(uint32(instr), 6, 3)
	rn := field(uint32(instr), 3, 3)
	rd := field(uint32(instr), 0, 3)
	name := "add"
	if sub {
		name = "sub"
	}
	s.line.setMnemonicCondS(name, !s.inITBlock(), s.currentITCond())
	s.line.addOperand("%s", regNames[rd])
	s.line.addOperand("%s", regNames[rn])
	s.line.addOperand("%s", regNames[rm])
	return true
}

func thumbAddSubImm3(s *State, instr uint16) bool {
	sub := bitSet(uint32(instr), 9)
	imm3 := field(uint32(instr), 6, 3)
	rn := field(uint32(instr), 3, 3)
	rd := field(uint32(instr), 0, 3)
	name := "add"
	if sub {
		name = "sub"
	}
	s.line.setMnemonicCondS(name, !s.inITBlock(), s.currentITCond())
	s.line.addOperand("%s", regNames[rd])
	s.line.addOperand("%s", regNames[rn])
	s.line.addOperand("#%d", imm3)
	return true
}

func thumbMovCmpAddSubImm8(s *State, instr uint16) bool {
	op := field(uint32(instr), 11, 2)
	rdn := field(uint32(instr), 8, 3)
	imm8 := field(uint32(instr), 0, 8)
	names := [4]string{"mov", "cmp", "add", "sub"}
	if op == 1 { // CMP always sets flags; no "s" suffix is ever printed.
		s.line.setMnemonicCond(names[op], s.currentITCond())
	} else {
		s.line.setMnemonicCondS(names[op], !s.inITBlock(), s.currentITCond())
	}
	s.line.addOperand("%s", regNames[rdn])
	s.line.addOperand("#%d", imm8)
	return true
}

// thumbDataProcReg covers the 16 two-operand ALU opcodes (ANDS, EORS,
// LSLS, LSRS, ASRS, ADCS, SBCS, RORS, TST, RSB, CMP, CMN, ORRS, MUL,
// BICS, MVNS).
func thumbDataProcReg(s *State, instr uint16) bool {
	op := field(uint32(instr), 6, 4)
	rm := field(uint32(instr), 3, 3)
	rdn := field(uint32(instr), 0, 3)

	names := [16]string{
		"and", "eor", "lsl", "lsr", "asr", "adc", "sbc", "ror",
		"tst", "rsb", "cmp", "cmn", "orr", "mul", "bic", "mvn",
	}
	switch op {
	case 8, 10, 11: // TST/CMP/CMN always set flags; no "s" suffix is printed.
		s.line.setMnemonicCond(names[op], s.currentITCond())
	default:
		s.line.setMnemonicCondS(names[op], !s.inITBlock(), s.currentITCond())
	}

	switch op {
	case 9: // RSB Rd, Rn, #0
		s.line.addOperand("%s", regNames[rdn])
		s.line.addOperand("%s", regNames[rm])
		s.line.addOperand("#0")
	default:
		s.line.addOperand("%s", regNames[rdn])
		s.line.addOperand("%s", regNames[rm])
	}
	return true
}

func thumbSpecialDataBranch(s *State, instr uint16) bool {
	op := field(uint32(instr), 8, 2)
	dn := field(uint32(instr), 7, 1)
	rm := field(uint32(instr), 3, 4)
	rdn := dn<<3 | field(uint32(instr), 0, 3)

	switch op {
	case 0: // ADD Rdn, Rm (high registers allowed)
		s.line.setMnemonicCond("add", s.currentITCond())
		s.line.addOperand("%s", regNames[rdn])
		s.line.addOperand("%s", regNames[rm])
	case 1: // CMP Rn, Rm
		s.line.setMnemonicCond("cmp", s.currentITCond())
		s.line.addOperand("%s", regNames[rdn])
		s.line.addOperand("%s", regNames[rm])
	case 2: // MOV Rd, Rm
		s.line.setMnemonicCond("mov", s.currentITCond())
		s.line.addOperand("%s", regNames[rdn])
		s.line.addOperand("%s", regNames[rm])
	case 3: // BX / BLX
		name := "bx"
		if bitSet(uint32(instr), 7) {
			name = "blx"
		}
		s.line.setMnemonicCond(name, s.currentITCond())
		s.line.addOperand("%s", regNames[rm])
	}
	return true
}

func thumbLdrLiteral(s *State, instr uint16) bool {
	rt := field(uint32(instr), 8, 3)
	imm8 := field(uint32(instr), 0, 8)
	target := align4(s.Address+4) + imm8<<2

	s.line.setMnemonicCond("ldr", s.currentITCond())
	s.line.addOperand("%s", regNames[rt])
	s.line.addOperand("[pc, #%d]", imm8<<2)
	s.line.addCommentAddress(&s.symbols, target)
	s.codePool.mark(target, poolLiteral)
	return true
}

func thumbLoadStoreReg(s *State, instr uint16) bool {
	op := field(uint32(instr), 9, 3)
	rm := field(uint32(instr), 6, 3)
	rn := field(uint32(instr), 3, 3)
	rt := field(uint32(instr), 0, 3)

	names := [8]string{"str", "strh", "strb", "ldrsb", "ldr", "ldrh", "ldrb", "ldrsh"}
	s.line.setMnemonicCond(names[op], s.currentITCond())
	s.line.addOperand("%s", regNames[rt])
	s.line.addOperand("[%s, %s]", regNames[rn], regNames[rm])
	return true
}

func thumbLoadStoreImm(s *State, instr uint16) bool {
	isByte := bitSet(uint32(instr), 12)
	isLoad := bitSet(uint32(instr), 11)
	imm5 := field(uint32(instr), 6, 5)
	rn := field(uint32(instr), 3, 3)
	rt := field(uint32(instr), 0, 3)

	scale := uint32(4)
	name := "str"
	if isByte {
		scale = 1
		name = "strb"
	}
	if isLoad {
		if isByte {
			name = "ldrb"
		} else {
			name = "ldr"
		}
	}
	s.line.setMnemonicCond(name, s.currentITCond())
	s.line.addOperand("%s", regNames[rt])
	if imm5 == 0 {
		s.line.addOperand("[%s]", regNames[rn])
	} else {
		s.line.addOperand("[%s, #%d]", regNames[rn], imm5*scale)
	}
	return true
}

func thumbLoadStoreHalfImm(s *State, instr uint16) bool {
	isLoad := bitSet(uint32(instr), 11)
	imm5 := field(uint32(instr), 6, 5)
	rn := field(uint32(instr), 3, 3)
	rt := field(uint32(instr), 0, 3)
	name := "strh"
	if isLoad {
		name = "ldrh"
	}
	s.line.setMnemonicCond(name, s.currentITCond())
	s.line.addOperand("%s", regNames[rt])
	if imm5 == 0 {
		s.line.addOperand("[%s]", regNames[rn])
	} else {
		s.line.addOperand("[%s, #%d]", regNames[rn], imm5*2)
	}
	return true
}

func thumbLoadStoreSP(s *State, instr uint16) bool {
	isLoad := bitSet(uint32(instr), 11)
	rt := field(uint32(instr), 8, 3)
	imm8 := field(uint32(instr), 0, 8)
	name := "str"
	if isLoad {
		name = "ldr"
	}
	s.line.setMnemonicCond(name, s.currentITCond())
	s.line.addOperand("%s", regNames[rt])
	if imm8 == 0 {
		s.line.addOperand("[sp]")
	} else {
		s.line.addOperand("[sp, #%d]", imm8*4)
	}
	return true
}

func thumbAddSPOrPC(s *State, instr uint16) bool {
	usePC := !bitSet(uint32(instr), 11)
	rd := field(uint32(instr), 8, 3)
	imm8 := field(uint32(instr), 0, 8)

	s.line.setMnemonicCond("add", s.currentITCond())
	s.line.addOperand("%s", regNames[rd])
	if usePC {
		// ADR Rd, label: computed from this instruction's own (aligned)
		// address, not from any caller-supplied base -- the original's
		// add_addr option flag here was a bug (see DESIGN.md).
		target := align4(s.Address+4) + imm8<<2
		s.line.setMnemonic("adr")
		s.line.addOperand("#%d", imm8<<2)
		s.line.addCommentAddress(&s.symbols, target)
	} else {
		s.line.addOperand("sp")
		s.line.addOperand("#%d", imm8<<2)
	}
	return true
}

func thumbAdjustSP(s *State, instr uint16) bool {
	sub := bitSet(uint32(instr), 7)
	imm7 := field(uint32(instr), 0, 7)
	name := "add"
	if sub {
		name = "sub"
	}
	s.line.setMnemonicCond(name, s.currentITCond())
	s.line.addOperand("sp")
	s.line.addOperand("sp")
	s.line.addOperand("#%d", imm7*4)
	return true
}

func thumbPushPop(s *State, instr uint16) bool {
	isPop := bitSet(uint32(instr), 11)
	pcLr := bitSet(uint32(instr), 8)
	regList := uint16(field(uint32(instr), 0, 8))

	name := "push"
	if isPop {
		name = "pop"
		if pcLr {
			regList |= 1 << 15 // pc
		}
	} else if pcLr {
		regList |= 1 << 14 // lr
	}
	s.line.setMnemonicCond(name, s.currentITCond())
	s.line.addRegList(regList)
	return true
}

// thumbExtend covers SXTH/SXTB/UXTH/UXTB: sign/zero-extend the bottom
// halfword/byte of Rm into Rd.
func thumbExtend(s *State, instr uint16) bool {
	op := field(uint32(instr), 6, 2)
	rm := field(uint32(instr), 3, 3)
	rd := field(uint32(instr), 0, 3)
	names := [4]string{"sxth", "sxtb", "uxth", "uxtb"}
	s.line.setMnemonicCond(names[op], s.currentITCond())
	s.line.addOperand("%s", regNames[rd])
	s.line.addOperand("%s", regNames[rm])
	return true
}

func thumbSetend(s *State, instr uint16) bool {
	bigEndian := bitSet(uint32(instr), 3)
	s.line.setMnemonic("setend")
	if bigEndian {
		s.line.addOperand("be")
	} else {
		s.line.addOperand("le")
	}
	return true
}

// thumbCPS is CPS{IE,ID} {a}{i}{f}: change processor state, enabling or
// disabling the abort/IRQ/FIQ masks named in its flag bits.
func thumbCPS(s *State, instr uint16) bool {
	disable := bitSet(uint32(instr), 4)
	name := "cpsie"
	if disable {
		name = "cpsid"
	}
	s.line.setMnemonic(name)
	flags := ""
	if bitSet(uint32(instr), 2) {
		flags += "a"
	}
	if bitSet(uint32(instr), 1) {
		flags += "i"
	}
	if bitSet(uint32(instr), 0) {
		flags += "f"
	}
	s.line.addOperand("%s", flags)
	return true
}

func thumbReverse(s *State, instr uint16) bool {
	op := field(uint32(instr), 6, 2)
	rm := field(uint32(instr), 3, 3)
	rd := field(uint32(instr), 0, 3)
	names := [4]string{"rev", "rev16", "", "revsh"}
	name := names[op]
	if name == "" {
		return false
	}
	s.line.setMnemonicCond(name, s.currentITCond())
	s.line.addOperand("%s", regNames[rd])
	s.line.addOperand("%s", regNames[rm])
	return true
}

func thumbBkpt(s *State, instr uint16) bool {
	imm8 := field(uint32(instr), 0, 8)
	s.line.setMnemonic("bkpt")
	s.line.addOperand("#%d", imm8)
	return true
}

func thumbItHint(s *State, instr uint16) bool {
	opA := field(uint32(instr), 4, 4)
	opB := field(uint32(instr), 0, 4)

	if opB != 0 {
		cond := opA
		mask := opB
		s.line.setMnemonic("it" + itSuffix(cond, mask))
		s.line.addOperand("%s", condSuffix(cond))
		s.openITBlock(cond, mask)
		return true
	}

	hints := map[uint32]string{0: "nop", 1: "yield", 2: "wfe", 3: "wfi", 4: "sev"}
	if name, ok := hints[opA]; ok {
		s.line.setMnemonic(name)
		return true
	}
	return false
}

// itSuffix spells the "t"/"e" letters after the base "it" mnemonic that
// describe each subsequent instruction's then/else polarity, derived
// from the 4-bit mask the same way the condition itself is derived.
func itSuffix(cond, mask uint32) string {
	parity := cond & 1
	lsbPos := -1
	for i := 0; i < 4; i++ {
		if mask&(1<<uint(i)) != 0 {
			lsbPos = i
			break
		}
	}
	if lsbPos < 0 {
		return ""
	}
	suffix := ""
	for pos := 3; pos > lsbPos; pos-- {
		if (mask>>uint(pos))&1 == parity {
			suffix += "t"
		} else {
			suffix += "e"
		}
	}
	return suffix
}

func thumbCBZ(s *State, instr uint16) bool {
	nonzero := bitSet(uint32(instr), 11)
	i := field(uint32(instr), 9, 1)
	imm5 := field(uint32(instr), 3, 5)
	rn := field(uint32(instr), 0, 3)
	target := s.Address + 4 + (i<<6 | imm5<<1)

	name := "cbz"
	if nonzero {
		name = "cbnz"
	}
	s.line.setMnemonic(name)
	s.line.addOperand("%s", regNames[rn])
	s.line.addOperand("%x", target)
	if sym, ok := s.symbols.lookup(target); ok {
		s.line.addComment("%s", sym.name)
	}
	return true
}

func thumbLoadStoreMult(s *State, instr uint16) bool {
	isLoad := bitSet(uint32(instr), 11)
	rn := field(uint32(instr), 8, 3)
	regList := uint16(field(uint32(instr), 0, 8))

	name := "stmia"
	if isLoad {
		name = "ldmia"
	}
	s.line.setMnemonicCond(name, s.currentITCond())
	writeback := regList&(1<<rn) == 0
	if writeback {
		s.line.addOperand("%s!", regNames[rn])
	} else {
		s.line.addOperand("%s", regNames[rn])
	}
	s.line.addRegList(regList)
	return true
}

func thumbCondBranchOrSVC(s *State, instr uint16) bool {
	cond := field(uint32(instr), 8, 4)
	imm8 := field(uint32(instr), 0, 8)

	if cond == 15 {
		s.line.setMnemonic("svc")
		s.line.addOperand("#%d", imm8)
		return true
	}
	if cond == 14 {
		return false
	}
	offset := int32(signExtend(int32(imm8), 8)) << 1
	target := uint32(int64(s.Address) + 4 + int64(offset))
	s.line.setMnemonicCond("b", cond)
	s.line.addOperand("%x", target)
	if sym, ok := s.symbols.lookup(target); ok {
		s.line.addComment("%s", sym.name)
	}
	return true
}

func thumbBranch(s *State, instr uint16) bool {
	imm11 := field(uint32(instr), 0, 11)
	offset := signExtend(int32(imm11), 11) << 1
	target := uint32(int64(s.Address) + 4 + int64(offset))
	s.line.setMnemonic("b")
	s.line.addOperand("%x", target)
	if sym, ok := s.symbols.lookup(target); ok {
		s.line.addComment("%s", sym.name)
	}
	return true
}
