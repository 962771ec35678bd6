package disasm

import (
	"fmt"
	"strings"
)

// commentColumn is the minimum column a trailing comment starts at; the
// mnemonic+operands portion is padded out to it with spaces before the
// "; " comment marker, matching the original's fixed-column listing.
const commentColumn = 24

// mnemonicWidth is the fixed padding width for the mnemonic before the
// first operand, so operand columns line up across a listing.
const mnemonicWidth = 8

// line accumulates one disassembled instruction's text before it is
// rendered with its address/encoding prefix and comment suffix. It is
// reset at the start of every Step call.
type line struct {
	mnemonic string
	operands []string
	comment  string
}

func (l *line) reset() {
	l.mnemonic = ""
	l.operands = l.operands[:0]
	l.comment = ""
}

// setMnemonic sets the bare mnemonic, with no condition or flag suffix.
func (l *line) setMnemonic(name string) {
	l.mnemonic = name
}

// setMnemonicCond sets the mnemonic with a condition-code suffix, eliding
// the suffix entirely for AL (the universal condition is never printed).
func (l *line) setMnemonicCond(name string, cond uint32) {
	l.mnemonic = name + condSuffix(cond)
}

// setMnemonicCondS is setMnemonicCond plus an "s" flag suffix inserted
// before the condition, e.g. "adds", "subsne".
func (l *line) setMnemonicCondS(name string, s bool, cond uint32) {
	if s {
		name += "s"
	}
	l.mnemonic = name + condSuffix(cond)
}

// addOperand appends one formatted operand to the operand list.
func (l *line) addOperand(format string, args ...interface{}) {
	l.operands = append(l.operands, fmt.Sprintf(format, args...))
}

// addRegList appends a register-list operand, coalescing consecutive
// registers into "rX-rY" ranges, e.g. bit mask 0x40f0 -> "{r4-r7, lr}".
func (l *line) addRegList(mask uint16) {
	var parts []string
	for i := 0; i < 16; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		j := i
		for j+1 < 16 && mask&(1<<uint(j+1)) != 0 {
			j++
		}
		if j == i {
			parts = append(parts, regNames[i])
		} else if j == i+1 {
			parts = append(parts, regNames[i], regNames[j])
		} else {
			parts = append(parts, regNames[i]+"-"+regNames[j])
		}
		i = j
	}
	l.addOperand("{%s}", strings.Join(parts, ", "))
}

// addComment appends to (or starts) the trailing comment.
func (l *line) addComment(format string, args ...interface{}) {
	l.comment += fmt.Sprintf(format, args...)
}

// addCommentAddress appends an address comment, resolving it to a known
// symbol name when one is recorded at that exact address.
func (l *line) addCommentAddress(table *symbolTable, address uint32) {
	if sym, ok := table.lookup(address); ok {
		l.addComment("%s", sym.name)
		return
	}
	l.addComment("0x%x", address)
}

// render produces the final listing line: optional address/encoding
// prefix columns, the padded mnemonic and comma-joined operands, and the
// comment aligned to commentColumn. The comment is cut short where needed
// so the line stays within textCapacity-1 bytes.
func (l *line) render(address uint32, raw string, flags Flags) string {
	var b strings.Builder

	if flags&FlagAddress != 0 {
		fmt.Fprintf(&b, "%-12s", fmt.Sprintf("%08x:", address))
	}
	if flags&FlagInstr != 0 {
		fmt.Fprintf(&b, "%-12s", raw)
	}

	body := l.mnemonic
	if len(l.operands) > 0 {
		body = fmt.Sprintf("%-*s%s", mnemonicWidth, l.mnemonic, strings.Join(l.operands, ", "))
	}
	b.WriteString(body)

	if flags&FlagComment != 0 && l.comment != "" {
		if len(body) < commentColumn {
			b.WriteString(strings.Repeat(" ", commentColumn-len(body)))
		} else {
			b.WriteByte(' ')
		}
		b.WriteString("; ")
		comment := l.comment
		if room := textCapacity - 1 - b.Len(); len(comment) > room {
			comment = comment[:max(room, 0)]
		}
		b.WriteString(comment)
	}

	return b.String()
}
