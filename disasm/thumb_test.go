package disasm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestState builds a session with every text column enabled, matching
// the worked scenario's expectations in the design notes.
func newTestState() *State {
	return NewState(FlagAddress | FlagInstr | FlagComment)
}

// baseScenarioAddr is the address every row of the worked scenario is
// decoded at: each row is an independent probe, not a running stream.
const baseScenarioAddr = 0x08000100

func TestStepThumbNop(t *testing.T) {
	s := newTestState()
	s.SetAddress(baseScenarioAddr)
	require.True(t, s.StepThumb(0xbf00, 0))
	text, size := s.Result()
	assert.Equal(t, 2, size)
	assert.True(t, strings.Contains(text, "nop"))
}

func TestStepThumbBxLr(t *testing.T) {
	s := newTestState()
	s.SetAddress(baseScenarioAddr)
	require.True(t, s.StepThumb(0x4770, 0))
	text, _ := s.Result()
	assert.True(t, strings.Contains(text, "bx"))
	assert.True(t, strings.Contains(text, "lr"))
}

func TestStepThumbPush(t *testing.T) {
	s := newTestState()
	s.SetAddress(baseScenarioAddr)
	require.True(t, s.StepThumb(0xb510, 0))
	text, _ := s.Result()
	assert.True(t, strings.Contains(text, "push"))
	assert.True(t, strings.Contains(text, "r4"))
	assert.True(t, strings.Contains(text, "lr"))
}

func TestStepThumbLdrLiteralResolvesTarget(t *testing.T) {
	s := newTestState()
	s.SetAddress(baseScenarioAddr)
	require.True(t, s.StepThumb(0x4801, 0))
	text, size := s.Result()
	assert.Equal(t, 2, size)
	assert.True(t, strings.Contains(text, "ldr"))
	assert.True(t, strings.Contains(text, "[pc, #4]"))
	assert.True(t, strings.Contains(text, "0x8000108"))
}

func TestStepThumbMovWNegativeImmediate(t *testing.T) {
	s := newTestState()
	s.SetAddress(baseScenarioAddr)
	require.True(t, s.StepThumb(0xf04f, 0x30ff))
	text, size := s.Result()
	assert.Equal(t, 4, size)
	assert.True(t, strings.Contains(text, "mov.w"))
	assert.True(t, strings.Contains(text, "#-1"))
	assert.True(t, strings.Contains(text, "0xffffffff"))
}

func TestStepThumbBranchLinkTarget(t *testing.T) {
	s := newTestState()
	s.SetAddress(baseScenarioAddr)
	require.True(t, s.StepThumb(0xf000, 0xf802))
	text, size := s.Result()
	assert.Equal(t, 4, size)
	assert.True(t, strings.Contains(text, "bl"))
	assert.True(t, strings.Contains(text, "8000108"))
}

func TestStepThumbITBlockConditionInversion(t *testing.T) {
	s := newTestState()
	s.SetAddress(baseScenarioAddr)
	// ITETE EQ: firstcond=eq (0000), mask=1011.
	require.True(t, s.StepThumb(0xbf0b, 0))
	text, _ := s.Result()
	assert.True(t, strings.Contains(text, "itete"))
	assert.True(t, strings.Contains(text, "eq"))
	require.True(t, s.inITBlock())

	wantConds := []string{"eq", "ne", "eq", "ne"}
	for _, want := range wantConds {
		got := condSuffix(s.currentITCond())
		assert.Equal(t, want, got)
		s.advanceITBlock()
	}
	assert.False(t, s.inITBlock())
}

func TestStepThumbUnknownEncodingReturnsFalse(t *testing.T) {
	s := newTestState()
	s.SetAddress(0)
	// 0xb7xx falls in a gap no table row covers.
	ok := s.StepThumb(0xb700, 0)
	assert.False(t, ok)
}

func TestAddRegListCoalescesRanges(t *testing.T) {
	var l line
	l.addRegList(0x40f0) // r4-r7, lr
	require.Len(t, l.operands, 1)
	assert.Equal(t, "{r4-r7, lr}", l.operands[0])
}

func TestCodePoolMarksLiteralAfterLdrLiteral(t *testing.T) {
	s := newTestState()
	s.SetAddress(baseScenarioAddr)
	s.StepThumb(0x4801, 0)
	assert.Equal(t, poolLiteral, s.codePool.kindAt(0x08000108))
	assert.Equal(t, poolCode, s.codePool.kindAt(baseScenarioAddr))
}

func TestThumbAddSubRegSetsFlagsOutsideITBlock(t *testing.T) {
	s := newTestState()
	s.SetAddress(baseScenarioAddr)
	// ADD r0, r1, r2.
	require.True(t, s.StepThumb(0x1888, 0))
	text, _ := s.Result()
	assert.True(t, strings.Contains(text, "adds"))
}

func TestThumbShiftImmLslZeroIsMovAlias(t *testing.T) {
	s := newTestState()
	s.SetAddress(baseScenarioAddr)
	// LSL r2, r3, #0.
	require.True(t, s.StepThumb(0x001a, 0))
	text, _ := s.Result()
	assert.True(t, strings.Contains(text, "movs"))
	assert.True(t, strings.Contains(text, "r2"))
	assert.True(t, strings.Contains(text, "r3"))
}

func TestThumbDataProcRegCmpHasNoSuffix(t *testing.T) {
	s := newTestState()
	s.SetAddress(baseScenarioAddr)
	// CMP r0, r1 (data-processing register form, op=10=CMP).
	instr := uint16(0x4000 | 10<<6 | 1<<3 | 0)
	require.True(t, s.StepThumb(instr, 0))
	text, _ := s.Result()
	assert.True(t, strings.Contains(text, "cmp"))
	assert.False(t, strings.Contains(text, "cmps"))
}

func TestStepThumbLiteralRegionEmitsFullWord(t *testing.T) {
	s := newTestState()
	s.SetAddress(baseScenarioAddr)
	s.codePool.mark(baseScenarioAddr, poolLiteral)
	require.True(t, s.StepThumb(0xbeef, 0xdead))
	text, size := s.Result()
	assert.Equal(t, 4, size)
	assert.True(t, strings.Contains(text, "0xdeadbeef"))
}

func TestStepThumbAdvancesAddressBySize(t *testing.T) {
	s := newTestState()
	s.SetAddress(baseScenarioAddr)
	require.True(t, s.StepThumb(0xbf00, 0)) // nop
	assert.Equal(t, uint32(baseScenarioAddr), s.Address)

	require.True(t, s.StepThumb(0xbf00, 0)) // second nop, no SetAddress call
	assert.Equal(t, uint32(baseScenarioAddr+2), s.Address)
}

func TestStepThumbMissClosesOpenITBlock(t *testing.T) {
	s := newTestState()
	s.SetAddress(baseScenarioAddr)
	require.True(t, s.StepThumb(0xbf0b, 0)) // ITETE EQ
	require.True(t, s.inITBlock())

	ok := s.StepThumb(0xb700, 0) // falls in a gap no table row covers
	assert.False(t, ok)
	assert.False(t, s.inITBlock())
}

func TestThumbExtendSXTH(t *testing.T) {
	s := newTestState()
	s.SetAddress(baseScenarioAddr)
	// SXTH r0, r1.
	require.True(t, s.StepThumb(0xb208, 0))
	text, _ := s.Result()
	assert.True(t, strings.Contains(text, "sxth"))
	assert.True(t, strings.Contains(text, "r0"))
	assert.True(t, strings.Contains(text, "r1"))
}

func TestThumbSetendBE(t *testing.T) {
	s := newTestState()
	s.SetAddress(baseScenarioAddr)
	require.True(t, s.StepThumb(0xb658, 0))
	text, _ := s.Result()
	assert.True(t, strings.Contains(text, "setend"))
	assert.True(t, strings.Contains(text, "be"))
}

func TestThumbCPSIDDisablesIRQAndFIQ(t *testing.T) {
	s := newTestState()
	s.SetAddress(baseScenarioAddr)
	require.True(t, s.StepThumb(0xb673, 0))
	text, _ := s.Result()
	assert.True(t, strings.Contains(text, "cpsid"))
	assert.True(t, strings.Contains(text, "if"))
}
