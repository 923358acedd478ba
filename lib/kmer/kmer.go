package kmer

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// MaxWordSize is the largest word that fits into a uint64 key
const MaxWordSize = 32

const (
	// bin hashes and rank hashes must be independent, otherwise every rank
	// only ever fills a fraction of its bins
	binSalt  byte = 0x42
	rankSalt byte = 0x7f
)

var alphabet = [4]byte{'A', 'C', 'G', 'T'}

// Mask returns the mask of all bits used by a word of size w
func Mask(w int) uint64 {
	if w >= MaxWordSize {
		return ^uint64(0)
	}
	return (uint64(1) << (2 * uint(w))) - 1
}

// BaseCode returns the 2-bit code of a nucleotide
func BaseCode(b byte) (uint64, bool) {
	switch b {
	case 'A', 'a':
		return 0, true
	case 'C', 'c':
		return 1, true
	case 'G', 'g':
		return 2, true
	case 'T', 't':
		return 3, true
	}
	return 0, false
}

// Encode packs a word into its 2-bit representation
func Encode(word string) (uint64, error) {
	if len(word) == 0 || len(word) > MaxWordSize {
		return 0, fmt.Errorf("invalid word size %d, must be between 1 and %d", len(word), MaxWordSize)
	}
	var key uint64
	for i := 0; i < len(word); i++ {
		code, ok := BaseCode(word[i])
		if !ok {
			return 0, fmt.Errorf("invalid nucleotide %q at position %d", word[i], i)
		}
		key = key<<2 | code
	}
	return key, nil
}

// Decode unpacks a key of word size w
func Decode(key uint64, w int) string {
	var sb strings.Builder
	sb.Grow(w)
	for i := w - 1; i >= 0; i-- {
		sb.WriteByte(alphabet[(key>>(2*uint(i)))&3])
	}
	return sb.String()
}

// Complement returns the reverse complement of key
func Complement(key uint64, w int) uint64 {
	var rc uint64
	for i := 0; i < w; i++ {
		rc = rc<<2 | (3 - key&3)
		key >>= 2
	}
	return rc
}

// Canonical returns the lower of key and its reverse complement
func Canonical(key uint64, w int) uint64 {
	rc := Complement(key, w)
	if rc < key {
		return rc
	}
	return key
}

// Hash canonicalizes key and returns the bin hash together with the lower key
func Hash(key uint64, w int) (hash uint64, lower uint64) {
	lower = Canonical(key, w)
	return saltedHash(lower, binSalt), lower
}

// RankHash is used to assign vertices to ranks. Both strands map to the same value.
func RankHash(key uint64, w int) uint64 {
	return saltedHash(Canonical(key, w), rankSalt)
}

func saltedHash(lower uint64, salt byte) uint64 {
	var buf [9]byte
	buf[0] = salt
	binary.LittleEndian.PutUint64(buf[1:], lower)
	return xxhash.Sum64(buf[:])
}

// Child returns the word reached by appending base to key
func Child(key uint64, base uint64, w int) uint64 {
	return ((key << 2) | base) & Mask(w)
}

// Parent returns the word reached by prepending base to key
func Parent(key uint64, base uint64, w int) uint64 {
	return (key >> 2) | (base << (2 * uint(w-1)))
}

// FirstBase returns the code of the first (most significant) base
func FirstBase(key uint64, w int) uint64 {
	return (key >> (2 * uint(w-1))) & 3
}

// LastBase returns the code of the last base
func LastBase(key uint64) uint64 {
	return key & 3
}
