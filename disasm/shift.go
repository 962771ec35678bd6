package disasm

import "fmt"

// decodeImmShift canonicalizes an ARM-reference immediate shift operand
// for display: "lsl #0" is elided entirely (a plain register operand),
// "lsr #0"/"asr #0" print as "#32" (the encoding's way of spelling a
// 32-bit shift), and "ror #0" is the distinct rrx #1 operation rather
// than a no-op rotate.
//
// typ is the 2-bit shift-type field, imm5 the 5-bit immediate field.
// It returns the empty string when the shift contributes nothing to the
// operand text (the lsl #0 case).
func decodeImmShift(typ uint32, imm5 uint32) string {
	switch typ {
	case 0: // lsl
		if imm5 == 0 {
			return ""
		}
		return fmt.Sprintf("lsl #%d", imm5)
	case 1: // lsr
		if imm5 == 0 {
			imm5 = 32
		}
		return fmt.Sprintf("lsr #%d", imm5)
	case 2: // asr
		if imm5 == 0 {
			imm5 = 32
		}
		return fmt.Sprintf("asr #%d", imm5)
	case 3: // ror / rrx
		if imm5 == 0 {
			return "rrx #1"
		}
		return fmt.Sprintf("ror #%d", imm5)
	}
	panic("unreachable shift type")
}

// expandModImm expands a Thumb-2 modified-immediate operand (the 12-bit
// i:imm3:imm8 field packed as described in the ARM architecture
// reference) into its 32-bit value.
func expandModImm(imm12 uint32) uint32 {
	i := field(imm12, 11, 1)
	imm3 := field(imm12, 8, 3)
	imm8 := field(imm12, 0, 8)
	abcdefgh := imm8

	if i == 0 && field(imm3, 2, 1) == 0 {
		switch field(imm3, 0, 2) {
		case 0:
			return abcdefgh
		case 1:
			return abcdefgh<<16 | abcdefgh
		case 2:
			return abcdefgh<<24 | abcdefgh<<8
		case 3:
			return abcdefgh<<24 | abcdefgh<<16 | abcdefgh<<8 | abcdefgh
		}
	}

	rot := (i << 4) | (imm3 << 1) | field(imm12, 7, 1)
	unrotated := uint32(0x80) | field(imm8, 0, 7)
	return ror32(unrotated, uint(rot))
}
