package disasm

import "sort"

// symbol is one entry in a State's symbol table.
type symbol struct {
	name    string
	address uint32
	mode    SymbolMode
}

// symbolTable is an address-ordered list of known symbols, supporting
// exact-address lookup. Insertion keeps the slice sorted so lookups can
// binary search; duplicate addresses are rejected (the first name for a
// given address wins, matching the original's linear-scan-then-append
// behaviour where re-adding the same address was a no-op).
type symbolTable struct {
	entries []symbol
}

// add inserts name at address with the given mode. If address is already
// present, the existing entry is left untouched.
func (t *symbolTable) add(name string, address uint32, mode SymbolMode) {
	i := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].address >= address
	})
	if i < len(t.entries) && t.entries[i].address == address {
		return
	}
	t.entries = append(t.entries, symbol{})
	copy(t.entries[i+1:], t.entries[i:])
	t.entries[i] = symbol{name: name, address: address, mode: mode}
}

// lookup returns the symbol at exactly address, if any.
func (t *symbolTable) lookup(address uint32) (symbol, bool) {
	i := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].address >= address
	})
	if i < len(t.entries) && t.entries[i].address == address {
		return t.entries[i], true
	}
	return symbol{}, false
}

// reset empties the table.
func (t *symbolTable) reset() {
	t.entries = t.entries[:0]
}
