// Package bitarray provides densely-packed arrays of bits, used to represent
// keys, bases and measurement records at every stage of the protocol.
package bitarray

import (
	"fmt"
	"math/bits"
	"math/rand"
)

const blockSize = 8

// A Dense is a bit array where every bit is explicitly represented. Bits are
// packed least-significant first within each byte. The zero value is an empty
// array ready for use.
type Dense struct {
	bits []byte
	len  int
}

// NewDense returns a new Dense whose data is a copy of data and whose length
// is bitLen. If bitLen is longer than data, trailing zeros are added. If
// bitLen is negative, it is inferred from data. Bits of data beyond bitLen
// are cleared, so Data and Parity never see stale tail bits.
func NewDense(data []byte, bitLen int) Dense {
	if bitLen < 0 {
		bitLen = len(data) * blockSize
	}
	b := make([]byte, BytesFor(bitLen))
	copy(b, data)
	d := Dense{bits: b, len: bitLen}
	d.maskTail()
	return d
}

// Empty returns an empty, dense bit array.
func Empty() Dense {
	return Dense{}
}

// Size returns the number of bits in d.
func (d Dense) Size() int {
	return d.len
}

// ByteSize returns the number of bytes necessary to represent d.
func (d Dense) ByteSize() int {
	return BytesFor(d.len)
}

// Data returns a copy of the bytes underlying d.
func (d Dense) Data() []byte {
	data := make([]byte, len(d.bits))
	copy(data, d.bits)
	return data
}

// Clone returns an independent copy of d.
func (d Dense) Clone() Dense {
	return Dense{bits: d.Data(), len: d.len}
}

// Get returns the bit at idx. Indices beyond the array read as zero.
func (d Dense) Get(idx int) bool {
	if idx < 0 || idx >= d.len {
		return false
	}
	return d.bits[idx/blockSize]&(1<<(idx%blockSize)) != 0
}

// Set overwrites the bit at idx.
func (d *Dense) Set(idx int, bit bool) {
	if idx < 0 || idx >= d.len {
		return
	}
	if bit {
		d.bits[idx/blockSize] |= 1 << (idx % blockSize)
	} else {
		d.bits[idx/blockSize] &^= 1 << (idx % blockSize)
	}
}

// Flip inverts the bit at idx.
func (d *Dense) Flip(idx int) {
	if idx < 0 || idx >= d.len {
		return
	}
	d.bits[idx/blockSize] ^= 1 << (idx % blockSize)
}

// AppendBit adds a single bit to the end of d.
func (d *Dense) AppendBit(bit bool) {
	pos := d.len % blockSize
	d.len++
	if pos == 0 {
		d.bits = append(d.bits, 0)
	}
	if bit {
		d.bits[len(d.bits)-1] |= 1 << pos
	}
}

// Append adds the contents of other to the end of d.
func (d *Dense) Append(other Dense) {
	if d.len%blockSize == 0 {
		d.bits = append(d.bits, other.bits...)
		d.len += other.len
		return
	}
	for i := 0; i < other.len; i++ {
		d.AppendBit(other.Get(i))
	}
}

// And computes a bitwise AND between d and other. If one of the two is
// shorter, trailing zeros are implied to make the sizes match.
func (d Dense) And(other Dense) Dense {
	long := maxLen(d, other)
	r := Dense{bits: make([]byte, BytesFor(long)), len: long}
	for i := range r.bits {
		r.bits[i] = d.byteAt(i) & other.byteAt(i)
	}
	return r
}

// XOr computes a bitwise XOR between d and other. If one of the two is
// shorter, trailing zeros are implied to make the sizes match.
func (d Dense) XOr(other Dense) Dense {
	long := maxLen(d, other)
	r := Dense{bits: make([]byte, BytesFor(long)), len: long}
	for i := range r.bits {
		r.bits[i] = d.byteAt(i) ^ other.byteAt(i)
	}
	return r
}

// XNor computes a bitwise equality test between d and other. If one of the
// two is shorter, trailing zeros are implied to make the sizes match.
func (d Dense) XNor(other Dense) Dense {
	long := maxLen(d, other)
	r := Dense{bits: make([]byte, BytesFor(long)), len: long}
	for i := range r.bits {
		r.bits[i] = ^(d.byteAt(i) ^ other.byteAt(i))
	}
	r.maskTail()
	return r
}

// Parity returns the overall parity of d, with true corresponding to odd.
func (d Dense) Parity() bool {
	var sum byte
	for _, b := range d.bits {
		sum ^= b
	}
	return bits.OnesCount8(sum)%2 == 1
}

// CountOnes returns the total number of bits set in d.
func (d Dense) CountOnes() int {
	var sum int
	for _, b := range d.bits {
		sum += bits.OnesCount8(b)
	}
	return sum
}

// Select extracts the bits of d at positions where mask is set, preserving
// order.
func (d Dense) Select(mask Dense) Dense {
	var r Dense
	for i := 0; i < d.len; i++ {
		if mask.Get(i) {
			r.AppendBit(d.Get(i))
		}
	}
	return r
}

// Slice returns a copy of bits [start, end).
func (d Dense) Slice(start, end int) (Dense, error) {
	if start < 0 || end < start || end > d.len {
		return Dense{}, fmt.Errorf("slicing bitarray of len %d with [%d, %d)", d.len, start, end)
	}
	var r Dense
	for i := start; i < end; i++ {
		r.AppendBit(d.Get(i))
	}
	return r, nil
}

// Shuffle randomly permutes the contents of d, using r as a source of
// randomness.
func (d *Dense) Shuffle(r *rand.Rand) {
	r.Shuffle(d.len, d.swap)
}

func (d *Dense) swap(i, j int) {
	a, b := d.Get(i), d.Get(j)
	if a == b {
		return
	}
	d.Flip(i)
	d.Flip(j)
}

// Equal reports whether a and b have identical lengths and contents.
func Equal(a, b Dense) bool {
	if a.len != b.len {
		return false
	}
	for i := range a.bits {
		if a.bits[i] != b.bits[i] {
			return false
		}
	}
	return true
}

// BytesFor returns the number of bytes needed to hold n bits.
func BytesFor(n int) int {
	return (n + blockSize - 1) / blockSize
}

func (d Dense) byteAt(i int) byte {
	if i >= len(d.bits) {
		return 0
	}
	return d.bits[i]
}

func (d *Dense) maskTail() {
	if off := d.len % blockSize; off != 0 && len(d.bits) > 0 {
		d.bits[len(d.bits)-1] &= 0xFF >> (blockSize - off)
	}
}

func maxLen(a, b Dense) int {
	if a.len > b.len {
		return a.len
	}
	return b.len
}
