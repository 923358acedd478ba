package kmer

import "math/bits"

// EdgeMask marks the neighbours of a word: bits 0-3 are children by appended
// base, bits 4-7 are parents by prepended base
type EdgeMask uint8

// ChildBit returns the mask bit of the child reached by appending base
func ChildBit(base uint64) EdgeMask {
	return EdgeMask(1) << base
}

// ParentBit returns the mask bit of the parent reached by prepending base
func ParentBit(base uint64) EdgeMask {
	return EdgeMask(1) << (4 + base)
}

// HasChild reports whether the child via base is set
func (m EdgeMask) HasChild(base uint64) bool {
	return m&ChildBit(base) != 0
}

// HasParent reports whether the parent via base is set
func (m EdgeMask) HasParent(base uint64) bool {
	return m&ParentBit(base) != 0
}

// NumberOfChildren returns the out-degree
func (m EdgeMask) NumberOfChildren() int {
	return bits.OnesCount8(uint8(m) & 0x0f)
}

// NumberOfParents returns the in-degree
func (m EdgeMask) NumberOfParents() int {
	return bits.OnesCount8(uint8(m) >> 4)
}

// FlipMask converts a mask relative to a word into the mask relative to its
// reverse complement. A child of the word via b is a parent of the complement
// via 3-b and vice versa.
func FlipMask(m EdgeMask) EdgeMask {
	var flipped EdgeMask
	for b := uint64(0); b < 4; b++ {
		if m.HasChild(b) {
			flipped |= ParentBit(3 - b)
		}
		if m.HasParent(b) {
			flipped |= ChildBit(3 - b)
		}
	}
	return flipped
}

// Children expands the child bits of a mask relative to key
func Children(key uint64, m EdgeMask, w int) []uint64 {
	out := make([]uint64, 0, m.NumberOfChildren())
	for b := uint64(0); b < 4; b++ {
		if m.HasChild(b) {
			out = append(out, Child(key, b, w))
		}
	}
	return out
}

// Parents expands the parent bits of a mask relative to key
func Parents(key uint64, m EdgeMask, w int) []uint64 {
	out := make([]uint64, 0, m.NumberOfParents())
	for b := uint64(0); b < 4; b++ {
		if m.HasParent(b) {
			out = append(out, Parent(key, b, w))
		}
	}
	return out
}
