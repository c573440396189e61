// Copyright 2011 ZXing authors. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Ported from Java ZXing library.

package encoder

import (
	"github.com/ericlevine/pdf417scan/bitutil"
	"github.com/ericlevine/pdf417scan/pdf417/cluster"
)

// BarcodeMatrix holds the module rows of a symbol, one bit per module,
// top row first.
type BarcodeMatrix struct {
	rows  []*bitutil.BitArray
	width int
}

// NewBarcodeMatrix creates an empty BarcodeMatrix for a symbol with the given
// number of rows and data columns.
func NewBarcodeMatrix(rows, columns int) *BarcodeMatrix {
	return &BarcodeMatrix{
		rows:  make([]*bitutil.BitArray, 0, rows),
		width: (columns+4)*cluster.ModulesInCodeword + 1,
	}
}

// StartRow begins a new row and returns it.
func (bm *BarcodeMatrix) StartRow() *bitutil.BitArray {
	row := bitutil.NewBitArray(0)
	bm.rows = append(bm.rows, row)
	return row
}

// Width returns the row width in modules.
func (bm *BarcodeMatrix) Width() int { return bm.width }

// Height returns the number of rows.
func (bm *BarcodeMatrix) Height() int { return len(bm.rows) }

// Row returns row y.
func (bm *BarcodeMatrix) Row(y int) *bitutil.BitArray { return bm.rows[y] }

// ScaledMatrix renders the matrix with each module xScale pixels wide and
// yScale pixels tall, surrounded by margin quiet pixels on every side.
func (bm *BarcodeMatrix) ScaledMatrix(xScale, yScale, margin int) *bitutil.BitMatrix {
	out := bitutil.NewBitMatrixWithSize(bm.width*xScale+2*margin, len(bm.rows)*yScale+2*margin)
	for y, row := range bm.rows {
		for x := 0; x < row.Size(); {
			if !row.Get(x) {
				x = row.GetNextSet(x)
				continue
			}
			end := row.GetNextUnset(x)
			out.SetRegion(margin+x*xScale, margin+y*yScale, (end-x)*xScale, yScale)
			x = end
		}
	}
	return out
}

// encodeChar appends the len low bits of pattern, most significant first.
func encodeChar(pattern, length int, row *bitutil.BitArray) {
	row.AppendBits(uint32(pattern), length)
}
