package disasm

import "encoding/binary"

// DecodeBuffer sweeps buf from its start, decoding one instruction per
// iteration according to mode and invoking cb with the instruction's
// address and rendered text. It advances by whatever size the decoder
// reports for each instruction and stops when fewer bytes remain than
// the mode's minimum instruction size, or when cb returns false.
//
// DecodeBuffer carries no policy of its own beyond this sweep: it does
// not load symbols, does not select ARM vs Thumb based on buffer
// contents, and does not interpret ELF or other file formats. Callers
// that need those things configure s before calling DecodeBuffer (see
// the config package) or drive State.StepArm/StepThumb directly.
func DecodeBuffer(s *State, buf []byte, mode Mode, cb func(address uint32, text string) bool) bool {
	minSize := 4
	if mode == ModeThumb {
		minSize = 2
	}
	// Step advances s.Address by the previous s.Size before decoding; a
	// stale Size carried over from an earlier sweep must not shift the
	// address the caller just set with SetAddress.
	s.Size = 0

	for len(buf) >= minSize {
		var ok bool
		switch mode {
		case ModeARM:
			word := binary.LittleEndian.Uint32(buf)
			ok = s.StepArm(word)
		case ModeThumb:
			hw1 := binary.LittleEndian.Uint16(buf)
			var hw2 uint16
			if len(buf) >= 4 {
				hw2 = binary.LittleEndian.Uint16(buf[2:])
			}
			ok = s.StepThumb(hw1, hw2)
		}
		if !ok {
			return false
		}

		text, size := s.Result()
		if !cb(s.Address, text) {
			return false
		}

		if size <= 0 || size > len(buf) {
			break
		}
		buf = buf[size:]
	}
	return true
}
