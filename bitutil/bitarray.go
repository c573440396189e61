// Package bitutil provides the bit containers used by the PDF417 encoder
// and scanner: a growable bit row and a 2D bit matrix.
package bitutil

import (
	"math/bits"
	"strings"
)

// BitArray is a growable row of bits packed into uint32 words.
type BitArray struct {
	bits []uint32
	size int
}

// NewBitArray creates a new BitArray with the given size.
func NewBitArray(size int) *BitArray {
	if size <= 0 {
		return &BitArray{}
	}
	return &BitArray{
		bits: make([]uint32, (size+31)/32),
		size: size,
	}
}

// Size returns the number of bits in the array.
func (ba *BitArray) Size() int {
	return ba.size
}

func (ba *BitArray) ensureCapacity(newSize int) {
	if newSize > len(ba.bits)*32 {
		grown := make([]uint32, (newSize+newSize/2+31)/32)
		copy(grown, ba.bits)
		ba.bits = grown
	}
}

// Get returns true if bit i is set.
func (ba *BitArray) Get(i int) bool {
	return (ba.bits[i/32] & (1 << uint(i&0x1F))) != 0
}

// Set sets bit i.
func (ba *BitArray) Set(i int) {
	ba.bits[i/32] |= 1 << uint(i&0x1F)
}

// next returns the first index at or after from whose bit equals set, or
// Size if there is none.
func (ba *BitArray) next(from int, set bool) int {
	if from >= ba.size {
		return ba.size
	}
	word := func(i int) uint32 {
		if set {
			return ba.bits[i]
		}
		return ^ba.bits[i]
	}
	i := from / 32
	current := word(i) & (^uint32(0) << uint(from&0x1F))
	for current == 0 {
		i++
		if i == len(ba.bits) {
			return ba.size
		}
		current = word(i)
	}
	if result := i*32 + bits.TrailingZeros32(current); result < ba.size {
		return result
	}
	return ba.size
}

// GetNextSet returns the index of the first set bit at or after from, or
// Size if none is set.
func (ba *BitArray) GetNextSet(from int) int {
	return ba.next(from, true)
}

// GetNextUnset returns the index of the first unset bit at or after from,
// or Size if every remaining bit is set.
func (ba *BitArray) GetNextUnset(from int) int {
	return ba.next(from, false)
}

// Clear clears all bits.
func (ba *BitArray) Clear() {
	for i := range ba.bits {
		ba.bits[i] = 0
	}
}

// AppendBit appends a single bit.
func (ba *BitArray) AppendBit(bit bool) {
	ba.ensureCapacity(ba.size + 1)
	if bit {
		ba.bits[ba.size/32] |= 1 << uint(ba.size&0x1F)
	}
	ba.size++
}

// AppendRun appends n copies of bit.
func (ba *BitArray) AppendRun(bit bool, n int) {
	ba.ensureCapacity(ba.size + n)
	for i := 0; i < n; i++ {
		ba.AppendBit(bit)
	}
}

// AppendBits appends the least-significant numBits bits of value, from most
// significant to least significant.
func (ba *BitArray) AppendBits(value uint32, numBits int) {
	if numBits < 0 || numBits > 32 {
		panic("bitarray: numBits must be between 0 and 32")
	}
	ba.ensureCapacity(ba.size + numBits)
	for i := numBits - 1; i >= 0; i-- {
		ba.AppendBit(value&(1<<uint(i)) != 0)
	}
}

// Clone returns a copy of this BitArray.
func (ba *BitArray) Clone() *BitArray {
	b := make([]uint32, len(ba.bits))
	copy(b, ba.bits)
	return &BitArray{bits: b, size: ba.size}
}

// String returns a string representation using 'X' for set and '.' for unset.
func (ba *BitArray) String() string {
	var sb strings.Builder
	sb.Grow(ba.size)
	for i := 0; i < ba.size; i++ {
		if ba.Get(i) {
			sb.WriteByte('X')
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}
