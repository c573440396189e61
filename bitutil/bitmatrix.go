package bitutil

import (
	"math/bits"
	"strings"
)

// BitMatrix is a 2D grid of bits, set meaning black. x is the column and y
// the row, with the origin at the top-left. Bits beyond the width in the
// last word of each row are always zero.
type BitMatrix struct {
	width   int
	height  int
	rowSize int
	data    []uint32
}

// NewBitMatrix creates a new square BitMatrix with the given dimension.
func NewBitMatrix(dimension int) *BitMatrix {
	return NewBitMatrixWithSize(dimension, dimension)
}

// NewBitMatrixWithSize creates a new BitMatrix with the given width and height.
func NewBitMatrixWithSize(width, height int) *BitMatrix {
	if width < 1 || height < 1 {
		panic("bitmatrix: dimensions must be greater than 0")
	}
	rowSize := (width + 31) / 32
	return &BitMatrix{
		width:   width,
		height:  height,
		rowSize: rowSize,
		data:    make([]uint32, rowSize*height),
	}
}

// ParseStringMatrix builds a matrix from rows of set and unset tokens, one
// row per line. It panics on rows of different lengths or unknown tokens.
func ParseStringMatrix(repr, setStr, unsetStr string) *BitMatrix {
	var rows [][]bool
	for _, line := range strings.Split(strings.ReplaceAll(repr, "\r", "\n"), "\n") {
		if line == "" {
			continue
		}
		var row []bool
		for len(line) > 0 {
			switch {
			case strings.HasPrefix(line, setStr):
				row = append(row, true)
				line = line[len(setStr):]
			case strings.HasPrefix(line, unsetStr):
				row = append(row, false)
				line = line[len(unsetStr):]
			default:
				panic("bitmatrix: illegal character encountered")
			}
		}
		if len(rows) > 0 && len(row) != len(rows[0]) {
			panic("bitmatrix: row lengths do not match")
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		panic("bitmatrix: empty matrix")
	}
	m := NewBitMatrixWithSize(len(rows[0]), len(rows))
	for y, row := range rows {
		for x, set := range row {
			if set {
				m.Set(x, y)
			}
		}
	}
	return m
}

// Get returns true if the bit at (x, y) is set.
func (bm *BitMatrix) Get(x, y int) bool {
	offset := y*bm.rowSize + x/32
	return (bm.data[offset]>>uint(x&0x1f))&1 != 0
}

// Set sets the bit at (x, y).
func (bm *BitMatrix) Set(x, y int) {
	offset := y*bm.rowSize + x/32
	bm.data[offset] |= 1 << uint(x&0x1f)
}

// Unset clears the bit at (x, y).
func (bm *BitMatrix) Unset(x, y int) {
	offset := y*bm.rowSize + x/32
	bm.data[offset] &^= 1 << uint(x&0x1f)
}

// Flip flips the bit at (x, y).
func (bm *BitMatrix) Flip(x, y int) {
	offset := y*bm.rowSize + x/32
	bm.data[offset] ^= 1 << uint(x&0x1f)
}

// FlipAll inverts every bit inside the matrix.
func (bm *BitMatrix) FlipAll() {
	lastMask := ^uint32(0)
	if r := bm.width & 0x1f; r != 0 {
		lastMask = 1<<uint(r) - 1
	}
	for y := 0; y < bm.height; y++ {
		row := bm.data[y*bm.rowSize : (y+1)*bm.rowSize]
		for i := range row {
			row[i] = ^row[i]
		}
		row[bm.rowSize-1] &= lastMask
	}
}

// SetRegion sets a rectangular region of bits.
func (bm *BitMatrix) SetRegion(left, top, width, height int) {
	if top < 0 || left < 0 {
		panic("bitmatrix: left and top must be nonnegative")
	}
	if height < 1 || width < 1 {
		panic("bitmatrix: height and width must be at least 1")
	}
	right := left + width
	bottom := top + height
	if bottom > bm.height || right > bm.width {
		panic("bitmatrix: region must fit inside the matrix")
	}
	for y := top; y < bottom; y++ {
		offset := y * bm.rowSize
		for x := left; x < right; x++ {
			bm.data[offset+x/32] |= 1 << uint(x&0x1f)
		}
	}
}

// Row copies row y into a BitArray, reusing row when it is large enough.
func (bm *BitMatrix) Row(y int, row *BitArray) *BitArray {
	if row == nil || row.Size() < bm.width {
		row = NewBitArray(bm.width)
	} else {
		row.Clear()
	}
	copy(row.bits, bm.data[y*bm.rowSize:(y+1)*bm.rowSize])
	return row
}

// Rotate rotates the matrix counterclockwise by 0, 90, 180 or 270 degrees.
func (bm *BitMatrix) Rotate(degrees int) {
	switch ((degrees % 360) + 360) % 360 {
	case 0:
	case 90:
		bm.Rotate90()
	case 180:
		bm.Rotate180()
	case 270:
		bm.Rotate90()
		bm.Rotate180()
	default:
		panic("bitmatrix: degrees must be a multiple of 90")
	}
}

// Rotate180 rotates the matrix 180 degrees.
func (bm *BitMatrix) Rotate180() {
	bm.remap(bm.width, bm.height, func(x, y int) (int, int) {
		return bm.width - 1 - x, bm.height - 1 - y
	})
}

// Rotate90 rotates the matrix 90 degrees counterclockwise.
func (bm *BitMatrix) Rotate90() {
	bm.remap(bm.height, bm.width, func(x, y int) (int, int) {
		return y, bm.width - 1 - x
	})
}

// remap moves every set bit (x, y) to to(x, y) in a matrix of the new size.
func (bm *BitMatrix) remap(newWidth, newHeight int, to func(x, y int) (int, int)) {
	out := NewBitMatrixWithSize(newWidth, newHeight)
	for y := 0; y < bm.height; y++ {
		row := bm.data[y*bm.rowSize : (y+1)*bm.rowSize]
		for i, word := range row {
			for word != 0 {
				bit := bits.TrailingZeros32(word)
				word &^= 1 << uint(bit)
				nx, ny := to(i*32+bit, y)
				out.Set(nx, ny)
			}
		}
	}
	*bm = *out
}

// EnclosingRectangle returns [left, top, width, height] of the enclosing
// rectangle of all set bits, or nil if all bits are unset.
func (bm *BitMatrix) EnclosingRectangle() []int {
	left, top := bm.width, bm.height
	right, bottom := -1, -1
	for y := 0; y < bm.height; y++ {
		for i := 0; i < bm.rowSize; i++ {
			word := bm.data[y*bm.rowSize+i]
			if word == 0 {
				continue
			}
			if y < top {
				top = y
			}
			bottom = y
			if l := i*32 + bits.TrailingZeros32(word); l < left {
				left = l
			}
			if r := i*32 + 31 - bits.LeadingZeros32(word); r > right {
				right = r
			}
		}
	}
	if right < left || bottom < top {
		return nil
	}
	return []int{left, top, right - left + 1, bottom - top + 1}
}

// Width returns the width.
func (bm *BitMatrix) Width() int { return bm.width }

// Height returns the height.
func (bm *BitMatrix) Height() int { return bm.height }

// Clone returns a deep copy of the BitMatrix.
func (bm *BitMatrix) Clone() *BitMatrix {
	d := make([]uint32, len(bm.data))
	copy(d, bm.data)
	return &BitMatrix{width: bm.width, height: bm.height, rowSize: bm.rowSize, data: d}
}

// String returns a string representation using "X " for set and "  " for unset.
func (bm *BitMatrix) String() string {
	return bm.StringWithChars("X ", "  ")
}

// StringWithChars returns a string representation using the given set/unset strings.
func (bm *BitMatrix) StringWithChars(setString, unsetString string) string {
	var sb strings.Builder
	sb.Grow(bm.height * (bm.width + 1))
	for y := 0; y < bm.height; y++ {
		for x := 0; x < bm.width; x++ {
			if bm.Get(x, y) {
				sb.WriteString(setString)
			} else {
				sb.WriteString(unsetString)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Equals returns true if two BitMatrices are equal.
func (bm *BitMatrix) Equals(other *BitMatrix) bool {
	if bm.width != other.width || bm.height != other.height {
		return false
	}
	for i := range bm.data {
		if bm.data[i] != other.data[i] {
			return false
		}
	}
	return true
}
