package reach

import "fmt"

const wordBits = 64

// BitSet is a fixed-length bit array over [0, size) backed by 64-bit words.
// The length is set at construction and never changes: reachability rows
// are queried and OR'd far more often than they are mutated, and the fixed
// layout keeps OrWith a straight word-by-word loop.
//
// The zero value is an empty set of size 0 - use newBitSet to create a
// usable instance.
type BitSet struct {
	size  int
	words []uint64
}

// newBitSet creates a bit set holding size bits, all zero.
func newBitSet(size int) *BitSet {
	return &BitSet{
		size:  size,
		words: make([]uint64, (size+wordBits-1)/wordBits),
	}
}

// Size returns the number of bits the set holds.
func (b *BitSet) Size() int { return b.size }

// Get returns the bit at index i. It panics if i is out of range;
// a bad index means the caller mixed up indices from different matrices,
// which is never recoverable.
func (b *BitSet) Get(i int) bool {
	b.check(i)
	return b.words[i/wordBits]&(1<<(i%wordBits)) != 0
}

// Set sets the bit at index i. It panics if i is out of range.
func (b *BitSet) Set(i int) {
	b.check(i)
	b.words[i/wordBits] |= 1 << (i % wordBits)
}

// OrWith ORs other into b word by word. Both sets must have the same size.
func (b *BitSet) OrWith(other *BitSet) {
	if other.size != b.size {
		panic(fmt.Sprintf("reach: OrWith size mismatch: %d != %d", other.size, b.size))
	}
	for i, w := range other.words {
		b.words[i] |= w
	}
}

// Clear zeroes every bit.
func (b *BitSet) Clear() {
	for i := range b.words {
		b.words[i] = 0
	}
}

// Equal reports whether b and other hold exactly the same bits.
// Sets of different sizes are never equal.
func (b *BitSet) Equal(other *BitSet) bool {
	if other.size != b.size {
		return false
	}
	for i, w := range other.words {
		if b.words[i] != w {
			return false
		}
	}
	return true
}

func (b *BitSet) check(i int) {
	if i < 0 || i >= b.size {
		panic(fmt.Sprintf("reach: bit index %d out of range [0,%d)", i, b.size))
	}
}
