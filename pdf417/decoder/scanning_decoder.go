package decoder

import (
	"context"

	pdf417scan "github.com/ericlevine/pdf417scan"
	"github.com/ericlevine/pdf417scan/bitutil"
	"github.com/ericlevine/pdf417scan/pdf417/cluster"
)

const codewordSkewSize = 2

// ReadCodewords scans every column of the region and votes the readings
// into a CodewordMatrix. Cells nothing was read for stay empty and become
// erasures. A symbol row without a single reading, row indicators
// included, fails with RowDecodeFailed.
func ReadCodewords(ctx context.Context, region *SymbolRegion) (*CodewordMatrix, error) {
	image := region.image
	box := region.box
	minCodewordWidth, maxCodewordWidth := region.minCodewordWidth, region.maxCodewordWidth

	dr := newDetectionResult(region.meta, box)
	dr.setLeft(region.left)
	dr.setRight(region.right)

	maxBarcodeColumn := dr.columnCount + 1
	leftToRight := region.left != nil
	for n := 1; n <= maxBarcodeColumn; n++ {
		if err := pdf417scan.ContextError(ctx); err != nil {
			return nil, err
		}
		barcodeColumn := n
		if !leftToRight {
			barcodeColumn = maxBarcodeColumn - n
		}
		if dr.columns[barcodeColumn] != nil {
			continue
		}
		var col *column
		switch barcodeColumn {
		case 0:
			ic := newIndicatorColumn(box, true)
			dr.setLeft(ic)
			col = ic.column
		case maxBarcodeColumn:
			ic := newIndicatorColumn(box, false)
			dr.setRight(ic)
			col = ic.column
		default:
			col = newColumn(box)
			dr.columns[barcodeColumn] = col
		}
		startColumn := -1
		previousStartColumn := startColumn
		for imageRow := box.minY; imageRow <= box.maxY; imageRow++ {
			startColumn = dr.startColumn(barcodeColumn, imageRow, leftToRight)
			if startColumn < 0 || startColumn > box.maxX {
				if previousStartColumn == -1 {
					continue
				}
				startColumn = previousStartColumn
			}
			codeword := detectCodeword(image, box.minX, box.maxX, leftToRight,
				startColumn, imageRow, minCodewordWidth, maxCodewordWidth)
			if codeword == nil {
				continue
			}
			col.set(imageRow, codeword)
			previousStartColumn = startColumn
			minCodewordWidth = min(minCodewordWidth, codeword.Width())
			maxCodewordWidth = max(maxCodewordWidth, codeword.Width())
		}
	}

	m := newCodewordMatrix(region.Rows, region.Columns, region.ECLevel)
	for c, col := range dr.resolveRowNumbers() {
		if col == nil {
			continue
		}
		for _, codeword := range col.codewords {
			if codeword == nil || codeword.RowNumber() < 0 || codeword.RowNumber() >= m.Rows {
				continue
			}
			m.cells[codeword.RowNumber()][c].SetValue(codeword.Value())
		}
	}
	for row, cells := range m.cells {
		empty := true
		for _, cell := range cells {
			if !cell.Empty() {
				empty = false
				break
			}
		}
		if empty {
			return nil, pdf417scan.Errorf(pdf417scan.RowDecodeFailed, "no codeword read in symbol row").At(row, -1)
		}
	}
	return m, nil
}

func (dr *detectionResult) validColumn(barcodeColumn int) bool {
	return barcodeColumn >= 0 && barcodeColumn <= dr.columnCount+1 && dr.columns[barcodeColumn] != nil
}

// startColumn estimates where the codeword of barcodeColumn begins on
// imageRow from the codewords already read around it.
func (dr *detectionResult) startColumn(barcodeColumn, imageRow int, leftToRight bool) int {
	offset := 1
	if !leftToRight {
		offset = -1
	}
	// Inner edge of a codeword in the previous column, outer edge of one in
	// this column.
	inner := func(c *Codeword) int {
		if leftToRight {
			return c.EndX()
		}
		return c.StartX()
	}
	outer := func(c *Codeword) int {
		if leftToRight {
			return c.StartX()
		}
		return c.EndX()
	}
	previous := barcodeColumn - offset
	if dr.validColumn(previous) {
		if codeword := dr.columns[previous].get(imageRow); codeword != nil {
			return inner(codeword)
		}
	}
	if codeword := dr.columns[barcodeColumn].nearby(imageRow); codeword != nil {
		return outer(codeword)
	}
	if dr.validColumn(previous) {
		if codeword := dr.columns[previous].nearby(imageRow); codeword != nil {
			return inner(codeword)
		}
	}
	skippedColumns := 0
	for dr.validColumn(barcodeColumn - offset) {
		barcodeColumn -= offset
		for _, codeword := range dr.columns[barcodeColumn].codewords {
			if codeword != nil {
				return inner(codeword) + offset*skippedColumns*codeword.Width()
			}
		}
		skippedColumns++
	}
	if leftToRight {
		return dr.box.minX
	}
	return dr.box.maxX
}

// detectCodeword reads the 8 elements of one codeword starting at
// startColumn and maps them to a value. It returns nil when the widths are
// implausible or the pattern is in no cluster table.
func detectCodeword(image *bitutil.BitMatrix, minColumn, maxColumn int, leftToRight bool,
	startColumn, imageRow int, minCodewordWidth, maxCodewordWidth int) *Codeword {

	startColumn = adjustCodewordStartColumn(image, minColumn, maxColumn, leftToRight, startColumn, imageRow)
	moduleBitCount := moduleBitCount(image, minColumn, maxColumn, leftToRight, startColumn, imageRow)
	if moduleBitCount == nil {
		return nil
	}
	var endColumn int
	codewordBitCount := sumInts(moduleBitCount)
	if leftToRight {
		endColumn = startColumn + codewordBitCount
	} else {
		for i, j := 0, len(moduleBitCount)-1; i < j; i, j = i+1, j-1 {
			moduleBitCount[i], moduleBitCount[j] = moduleBitCount[j], moduleBitCount[i]
		}
		endColumn = startColumn
		startColumn = endColumn - codewordBitCount
	}
	if !checkCodewordSkew(codewordBitCount, minCodewordWidth, maxCodewordWidth) {
		return nil
	}

	pattern := decodedPattern(moduleBitCount)
	value, c, ok := cluster.Lookup(pattern)
	if !ok {
		return nil
	}
	return newCodeword(startColumn, endColumn, c*3, value)
}

// moduleBitCount measures 8 alternating runs from startColumn, bar first
// in reading direction.
func moduleBitCount(image *bitutil.BitMatrix, minColumn, maxColumn int, leftToRight bool,
	startColumn, imageRow int) []int {

	imageColumn := startColumn
	counts := make([]int, cluster.BarsInModule)
	moduleNumber := 0
	increment := 1
	if !leftToRight {
		increment = -1
	}
	previousPixelValue := leftToRight
	for ((leftToRight && imageColumn < maxColumn) || (!leftToRight && imageColumn >= minColumn)) &&
		moduleNumber < len(counts) {
		if image.Get(imageColumn, imageRow) == previousPixelValue {
			counts[moduleNumber]++
			imageColumn += increment
		} else {
			moduleNumber++
			previousPixelValue = !previousPixelValue
		}
	}
	if moduleNumber == len(counts) ||
		((imageColumn == maxColumn && leftToRight || imageColumn == minColumn && !leftToRight) &&
			moduleNumber == len(counts)-1) {
		return counts
	}
	return nil
}

// adjustCodewordStartColumn moves the start onto the nearest bar edge,
// at most codewordSkewSize pixels away.
func adjustCodewordStartColumn(image *bitutil.BitMatrix, minColumn, maxColumn int, leftToRight bool,
	codewordStartColumn, imageRow int) int {

	corrected := codewordStartColumn
	increment := -1
	if !leftToRight {
		increment = 1
	}
	for i := 0; i < 2; i++ {
		for (leftToRight && corrected >= minColumn || !leftToRight && corrected < maxColumn) &&
			leftToRight == image.Get(corrected, imageRow) {
			if abs(codewordStartColumn-corrected) > codewordSkewSize {
				return codewordStartColumn
			}
			corrected += increment
		}
		increment = -increment
		leftToRight = !leftToRight
	}
	return corrected
}

func checkCodewordSkew(codewordSize, minCodewordWidth, maxCodewordWidth int) bool {
	return minCodewordWidth-codewordSkewSize <= codewordSize &&
		codewordSize <= maxCodewordWidth+codewordSkewSize
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
