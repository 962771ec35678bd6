package disasm

// regNames are the 16 general-purpose register names, with the
// conventional aliases for r13-r15 the original source prints instead of
// r13/r14/r15.
var regNames = [16]string{
	"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7",
	"r8", "r9", "r10", "r11", "r12", "sp", "lr", "pc",
}

// condNames indexes by the 4-bit condition field. Index 14 ("AL") and 15
// are never printed as a suffix (see condSuffix).
var condNames = [16]string{
	"eq", "ne", "cs", "cc",
	"mi", "pl", "vs", "vc",
	"hi", "ls", "ge", "lt",
	"gt", "le", "", "",
}

// shiftNames indexes the 2-bit immediate-shift type field.
var shiftNames = [4]string{"lsl", "lsr", "asr", "ror"}

// specialRegNames names the banked/special registers addressed by MRS/MSR
// and related coprocessor-adjacent instructions.
var specialRegNames = map[uint32]string{
	0: "apsr",
	1: "iapsr",
	2: "eapsr",
	3: "xpsr",
	5: "ipsr",
	6: "epsr",
	7: "iepsr",
	8: "msp",
	9: "psp",
	16: "primask",
	17: "basepri",
	18: "basepri_max",
	19: "faultmask",
	20: "control",
}

// condSuffix returns the text suffix for cond, or "" for AL (14) and the
// unconditional/"never" encoding (15), which are never printed.
func condSuffix(cond uint32) string {
	if cond >= 14 {
		return ""
	}
	return condNames[cond]
}
