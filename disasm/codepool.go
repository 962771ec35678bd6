package disasm

import "sort"

// poolEntry marks the type (code or literal) that holds from address
// onward, until the next entry in the table.
type poolEntry struct {
	address uint32
	kind    poolType
}

// codePool is an ordered, address-keyed map of "what kind of content
// starts here", used to tell code from inline literal pools (LDR
// pc-relative constants interleaved with Thumb code). Queries answer
// "what type governs this address", i.e. the entry at or before the
// queried address; a fresh pool defaults every address to poolCode.
//
// Insertion is first-write-wins at a given address: marking an address
// that's already recorded leaves the existing entry alone, matching the
// original's insert-if-absent semantics for mark_address_type.
type codePool struct {
	entries []poolEntry
}

// mark records that kind governs address, unless something already does.
func (p *codePool) mark(address uint32, kind poolType) {
	i := sort.Search(len(p.entries), func(i int) bool {
		return p.entries[i].address >= address
	})
	if i < len(p.entries) && p.entries[i].address == address {
		return
	}
	p.entries = append(p.entries, poolEntry{})
	copy(p.entries[i+1:], p.entries[i:])
	p.entries[i] = poolEntry{address: address, kind: kind}
}

// kindAt returns the pool type in effect at address: the kind recorded at
// the nearest entry at or before address, or poolCode if none precedes it.
func (p *codePool) kindAt(address uint32) poolType {
	i := sort.Search(len(p.entries), func(i int) bool {
		return p.entries[i].address > address
	})
	if i == 0 {
		return poolCode
	}
	return p.entries[i-1].kind
}

// reset empties the pool, returning every address to the poolCode default.
func (p *codePool) reset() {
	p.entries = p.entries[:0]
}
