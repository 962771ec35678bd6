package disasm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepArmBranch(t *testing.T) {
	s := newTestState()
	s.SetAddress(0x08000100)
	// B +8 (AL): cond=1110, imm24 chosen so offset = 8.
	instr := uint32(0xea000000) | 2 // imm24=2 -> offset=2<<2=8
	require.True(t, s.StepArm(instr))
	text, size := s.Result()
	assert.Equal(t, 4, size)
	assert.True(t, strings.Contains(text, "b"))
	assert.True(t, strings.Contains(text, "8000110"))
}

func TestStepArmDataProcCmpAlias(t *testing.T) {
	s := newTestState()
	s.SetAddress(0x08000100)
	// SUBS pc, r0, r1 with S set and Rd=PC aliases to CMP.
	instr := uint32(0xe050f001)
	require.True(t, s.StepArm(instr))
	text, _ := s.Result()
	assert.True(t, strings.Contains(text, "cmp"))
	assert.False(t, strings.Contains(text, "subs"))
}

func TestStepArmMovImmediate(t *testing.T) {
	s := newTestState()
	s.SetAddress(0x08000100)
	// MOV r0, #1 (AL, no rotate).
	instr := uint32(0xe3a00001)
	require.True(t, s.StepArm(instr))
	text, _ := s.Result()
	assert.True(t, strings.Contains(text, "mov"))
	assert.True(t, strings.Contains(text, "r0"))
	assert.True(t, strings.Contains(text, "#1"))
}

func TestStepArmPushPopAlias(t *testing.T) {
	s := newTestState()
	s.SetAddress(0x08000100)
	// STMDB sp!, {r4, lr} == PUSH {r4, lr}
	instr := uint32(0xe92d4010)
	require.True(t, s.StepArm(instr))
	text, _ := s.Result()
	assert.True(t, strings.Contains(text, "push"))
	assert.True(t, strings.Contains(text, "{r4, lr}"))
}

func TestStepArmBranchExchange(t *testing.T) {
	s := newTestState()
	s.SetAddress(0x08000100)
	// BX lr
	instr := uint32(0xe12fff1e)
	require.True(t, s.StepArm(instr))
	text, _ := s.Result()
	assert.True(t, strings.Contains(text, "bx"))
	assert.True(t, strings.Contains(text, "lr"))
}

func TestStepArmLoadStoreExtraStrd(t *testing.T) {
	s := newTestState()
	s.SetAddress(0x08000100)
	// STRD r2, r3, [r0] (op=3, L=0): op1=1 op0=1.
	instr := uint32(0xe1c020f0)
	require.True(t, s.StepArm(instr))
	text, _ := s.Result()
	assert.True(t, strings.Contains(text, "strd"))
	assert.False(t, strings.Contains(text, "ldrd"))
}

func TestStepArmLoadStoreExtraLdrd(t *testing.T) {
	s := newTestState()
	s.SetAddress(0x08000100)
	// LDRD r2, r3, [r0] (op=2, L=0): op1=1 op0=0.
	instr := uint32(0xe1c020d0)
	require.True(t, s.StepArm(instr))
	text, _ := s.Result()
	assert.True(t, strings.Contains(text, "ldrd"))
	assert.False(t, strings.Contains(text, "strd"))
}

func TestStepArmAdvancesAddressBySize(t *testing.T) {
	s := newTestState()
	s.SetAddress(0x08000100)
	require.True(t, s.StepArm(0xe3a00001)) // mov r0, #1
	assert.Equal(t, uint32(0x08000100), s.Address)

	require.True(t, s.StepArm(0xe3a00001)) // second instruction, no SetAddress call
	assert.Equal(t, uint32(0x08000104), s.Address)
}

func TestDumpWordLiteralPool(t *testing.T) {
	s := newTestState()
	s.SetAddress(0x08000108)
	s.codePool.mark(0x08000108, poolLiteral)
	require.True(t, s.StepArm(0xdeadbeef))
	text, size := s.Result()
	assert.Equal(t, 4, size)
	assert.True(t, strings.Contains(text, ".word"))
	assert.True(t, strings.Contains(text, "0xdeadbeef"))
}
