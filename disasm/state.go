package disasm

// Mode selects which instruction set a buffer sweep decodes as.
type Mode int

const (
	ModeARM Mode = iota
	ModeThumb
)

// State holds everything a decode session carries between one
// instruction and the next: the current address, the IT-block window,
// literal-pool bookkeeping, and the accumulated symbol/code-pool tables.
// It corresponds 1:1 to the original C implementation's ARMSTATE.
//
// A *State is not safe for concurrent use. Independent *State values
// never share data and may be used from different goroutines freely.
type State struct {
	// Address is the address of the most recently decoded instruction.
	Address uint32
	// Size is the byte length of the most recently decoded instruction
	// (2 for 16-bit Thumb, 4 for 32-bit Thumb-2 or ARM).
	Size int
	// ArmMode records whether the last Step call decoded ARM or Thumb.
	ArmMode Mode

	flags Flags

	// itMask/itCond hold the sliding IT-block window: itMask is the IT
	// instruction's 4-bit mask, shifted left one place per governed
	// instruction and zero when no block is open, and itCond is the
	// condition governing the next instruction: the block's base
	// condition, whose low bit takes the mask's top bit at each advance.
	itMask uint32
	itCond uint32

	// ldrAddr is cleared by Reset and is not written by any decoder: the
	// target of a pc-relative literal load is not recorded here, it is
	// marked in codePool directly (see thumbLdrLiteral).
	ldrAddr uint32

	symbols  symbolTable
	codePool codePool

	line line
	raw  string
}

// NewState creates a decode session with the given output flags.
func NewState(flags Flags) *State {
	s := &State{flags: flags}
	return s
}

// Reset returns the session to its initial state: address zero, no IT
// block in progress, and empty symbol/code-pool tables.
func (s *State) Reset() {
	s.Address = 0
	s.Size = 0
	s.ArmMode = ModeARM
	s.itMask = 0
	s.itCond = 0
	s.ldrAddr = 0
	s.symbols.reset()
	s.codePool.reset()
	s.line.reset()
	s.raw = ""
}

// SetAddress sets the address the next Step call's instruction is at.
func (s *State) SetAddress(address uint32) {
	s.Address = address
	s.Size = 0
}

// AddSymbol records a known symbol name at address. Decoders that resolve
// a target address (literal loads, ADR and most branches) add the name as
// a comment when the target equals address; branches still print the hex
// target as their operand. mode seeds the code/literal map: SymbolARM and
// SymbolThumb mark address as code, SymbolData marks it as literal, and
// SymbolUnknown leaves the map alone (an address the map already records
// keeps its existing classification).
func (s *State) AddSymbol(name string, address uint32, mode SymbolMode) {
	s.symbols.add(name, address, mode)
	switch mode {
	case SymbolARM, SymbolThumb:
		s.codePool.mark(address, poolCode)
	case SymbolData:
		s.codePool.mark(address, poolLiteral)
	}
}

// LookupSymbol returns the name recorded at exactly address, if any.
func (s *State) LookupSymbol(address uint32) (string, bool) {
	sym, ok := s.symbols.lookup(address)
	if !ok {
		return "", false
	}
	return sym.name, true
}

// ClearCodePool discards the code/literal classification map, returning
// every address to the default "code" assumption. Symbols already added
// are left untouched.
func (s *State) ClearCodePool() {
	s.codePool.reset()
}

// Result returns the most recently rendered listing line and the byte
// size of the instruction it represents.
func (s *State) Result() (string, int) {
	return s.line.render(s.Address, s.raw, s.flags), s.Size
}

// The IT window is tracked the way the ARM reference's ITSTATE register
// works, split over two fields: s.itCond holds firstcond (ITSTATE bits
// 7:4) and s.itMask the sliding mask (bits 3:0). Only bits 4:0 ever shift
// as the block advances -- bits 7:5 (the
// top three condition bits) are fixed for the life of the block, while
// bit 4 (the condition's own low bit) rotates together with the mask,
// which is how a block alternates Then/Else for successive instructions.

// inITBlock reports whether the instruction about to be decoded falls
// inside an open IT block.
func (s *State) inITBlock() bool {
	return s.itMask&0xf != 0
}

// currentITCond returns the condition code that governs the instruction
// about to be decoded: the live itCond value (whose low bit rotates
// together with the mask as the block advances), or AL when no block is
// open.
func (s *State) currentITCond() uint32 {
	if !s.inITBlock() {
		return 14 // AL
	}
	return s.itCond
}

// advanceITBlock shifts the IT window forward by one instruction slot.
// The block closes once its low 3 mask bits reach zero (the trailing
// terminator bit has rotated out).
func (s *State) advanceITBlock() {
	if !s.inITBlock() {
		return
	}
	if s.itMask&0x7 == 0 {
		s.itMask = 0
		return
	}
	combined := (s.itCond&1)<<4 | s.itMask
	combined = (combined << 1) & 0x1f
	s.itCond = s.itCond&0xe | field(combined, 4, 1)
	s.itMask = field(combined, 0, 4)
}

// openITBlock starts a new IT block with the given base condition and
// 4-bit mask (as encoded in the IT instruction's mask field).
func (s *State) openITBlock(cond, mask uint32) {
	s.itCond = cond
	s.itMask = mask
}
