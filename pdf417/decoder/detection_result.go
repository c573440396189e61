package decoder

import (
	"fmt"
	"strings"

	"github.com/ericlevine/pdf417scan/pdf417/cluster"
)

const adjustRowNumberSkip = 2

// detectionResult gathers every column read for one symbol. columns[0] and
// columns[columnCount+1] are the row indicator columns; either may be nil.
type detectionResult struct {
	meta        *barcodeMetadata
	columns     []*column
	left, right *indicatorColumn
	box         *boundingBox
	columnCount int
}

func newDetectionResult(meta *barcodeMetadata, box *boundingBox) *detectionResult {
	return &detectionResult{
		meta:        meta,
		columnCount: meta.columnCount,
		box:         box,
		columns:     make([]*column, meta.columnCount+2),
	}
}

func (dr *detectionResult) setLeft(c *indicatorColumn) {
	dr.left = c
	if c != nil {
		dr.columns[0] = c.column
	}
}

func (dr *detectionResult) setRight(c *indicatorColumn) {
	dr.right = c
	if c != nil {
		dr.columns[dr.columnCount+1] = c.column
	}
}

// resolveRowNumbers assigns a symbol row to as many data codewords as
// possible, iterating until no further progress is made.
func (dr *detectionResult) resolveRowNumbers() []*column {
	if dr.left != nil {
		dr.left.adjustCompleteRowNumbers(dr.meta)
	}
	if dr.right != nil {
		dr.right.adjustCompleteRowNumbers(dr.meta)
	}
	unadjusted := cluster.MaxCodewordsInBarcode
	for {
		previous := unadjusted
		unadjusted = dr.adjustRowNumbers()
		if unadjusted <= 0 || unadjusted >= previous {
			break
		}
	}
	return dr.columns
}

func (dr *detectionResult) adjustRowNumbers() int {
	unadjusted := dr.adjustRowNumbersByRow()
	if unadjusted == 0 {
		return 0
	}
	for barcodeColumn := 1; barcodeColumn < dr.columnCount+1; barcodeColumn++ {
		codewords := dr.columns[barcodeColumn].codewords
		for codewordsRow, codeword := range codewords {
			if codeword != nil && !codeword.hasValidRowNumber() {
				dr.adjustFromNeighbours(barcodeColumn, codewordsRow, codewords)
			}
		}
	}
	return unadjusted
}

func (dr *detectionResult) adjustRowNumbersByRow() int {
	dr.adjustRowNumbersFromBothIndicators()
	return dr.adjustRowNumbersFromIndicator(true) + dr.adjustRowNumbersFromIndicator(false)
}

// adjustRowNumbersFromBothIndicators copies the row number to a whole
// pixel row when both indicators agree on it.
func (dr *detectionResult) adjustRowNumbersFromBothIndicators() {
	if dr.left == nil || dr.right == nil {
		return
	}
	lri, rri := dr.left.codewords, dr.right.codewords
	for codewordsRow := range lri {
		if lri[codewordsRow] == nil || rri[codewordsRow] == nil ||
			lri[codewordsRow].RowNumber() != rri[codewordsRow].RowNumber() {
			continue
		}
		for barcodeColumn := 1; barcodeColumn <= dr.columnCount; barcodeColumn++ {
			codewords := dr.columns[barcodeColumn].codewords
			codeword := codewords[codewordsRow]
			if codeword == nil {
				continue
			}
			codeword.setRowNumber(lri[codewordsRow].RowNumber())
			if !codeword.hasValidRowNumber() {
				codewords[codewordsRow] = nil
			}
		}
	}
}

// adjustRowNumbersFromIndicator walks each pixel row inward from one
// indicator until adjustRowNumberSkip codewords in a row disagree.
func (dr *detectionResult) adjustRowNumbersFromIndicator(left bool) int {
	indicator, first, last, step := dr.right, dr.columnCount+1, 1, -1
	if left {
		indicator, first, last, step = dr.left, 1, dr.columnCount, 1
	}
	if indicator == nil {
		return 0
	}
	unadjusted := 0
	for codewordsRow, rowIndicator := range indicator.codewords {
		if rowIndicator == nil {
			continue
		}
		invalidRowCounts := 0
		for barcodeColumn := first; barcodeColumn != last+step &&
			invalidRowCounts < adjustRowNumberSkip; barcodeColumn += step {
			col := dr.columns[barcodeColumn]
			if col == nil {
				continue
			}
			codeword := col.codewords[codewordsRow]
			if codeword == nil {
				continue
			}
			invalidRowCounts = adjustRowNumberIfValid(rowIndicator.RowNumber(), invalidRowCounts, codeword)
			if !codeword.hasValidRowNumber() {
				unadjusted++
			}
		}
	}
	return unadjusted
}

func adjustRowNumberIfValid(rowIndicatorRowNumber, invalidRowCounts int, codeword *Codeword) int {
	if codeword.hasValidRowNumber() {
		return invalidRowCounts
	}
	if codeword.isValidRowNumber(rowIndicatorRowNumber) {
		codeword.setRowNumber(rowIndicatorRowNumber)
		return 0
	}
	return invalidRowCounts + 1
}

// adjustFromNeighbours borrows the row number of the nearest codeword of
// the same cluster in the surrounding two pixel rows and columns.
func (dr *detectionResult) adjustFromNeighbours(barcodeColumn, codewordsRow int, codewords []*Codeword) {
	codeword := codewords[codewordsRow]
	previous := dr.columns[barcodeColumn-1]
	next := dr.columns[barcodeColumn+1]
	if previous == nil {
		previous = next
	}
	if next == nil {
		next = previous
	}
	at := func(c *column, row int) *Codeword {
		if c == nil || row < 0 || row >= len(c.codewords) {
			return nil
		}
		return c.codewords[row]
	}
	self := dr.columns[barcodeColumn]
	candidates := []*Codeword{
		at(self, codewordsRow-1), at(self, codewordsRow+1),
		at(previous, codewordsRow), at(next, codewordsRow),
		at(previous, codewordsRow-1), at(next, codewordsRow-1),
		at(previous, codewordsRow+1), at(next, codewordsRow+1),
		at(self, codewordsRow-2), at(self, codewordsRow+2),
		at(previous, codewordsRow-2), at(next, codewordsRow-2),
		at(previous, codewordsRow+2), at(next, codewordsRow+2),
	}
	for _, other := range candidates {
		if other != nil && other.hasValidRowNumber() && other.Bucket() == codeword.Bucket() {
			codeword.setRowNumber(other.RowNumber())
			return
		}
	}
}

func (dr *detectionResult) String() string {
	indicator := dr.columns[0]
	if indicator == nil {
		indicator = dr.columns[dr.columnCount+1]
	}
	var sb strings.Builder
	for codewordsRow := range indicator.codewords {
		fmt.Fprintf(&sb, "CW %3d:", codewordsRow)
		for _, col := range dr.columns {
			if col == nil || col.codewords[codewordsRow] == nil {
				sb.WriteString("    |   ")
				continue
			}
			codeword := col.codewords[codewordsRow]
			fmt.Fprintf(&sb, " %3d|%3d", codeword.RowNumber(), codeword.Value())
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
