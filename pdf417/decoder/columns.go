package decoder

import (
	"fmt"
	"strings"

	"github.com/ericlevine/pdf417scan/pdf417/cluster"
)

const maxNearbyDistance = 5

// column holds the codewords read for one symbol column, indexed by pixel
// row relative to the top of the bounding box.
type column struct {
	box       *boundingBox
	codewords []*Codeword
}

func newColumn(box *boundingBox) *column {
	return &column{
		box:       box.clone(),
		codewords: make([]*Codeword, box.maxY-box.minY+1),
	}
}

func (c *column) index(imageRow int) int {
	return imageRow - c.box.minY
}

func (c *column) set(imageRow int, codeword *Codeword) {
	c.codewords[c.index(imageRow)] = codeword
}

func (c *column) get(imageRow int) *Codeword {
	return c.codewords[c.index(imageRow)]
}

// nearby returns the codeword at imageRow or the closest one within
// maxNearbyDistance pixel rows.
func (c *column) nearby(imageRow int) *Codeword {
	if codeword := c.get(imageRow); codeword != nil {
		return codeword
	}
	for i := 1; i < maxNearbyDistance; i++ {
		if near := c.index(imageRow) - i; near >= 0 {
			if codeword := c.codewords[near]; codeword != nil {
				return codeword
			}
		}
		if near := c.index(imageRow) + i; near < len(c.codewords) {
			if codeword := c.codewords[near]; codeword != nil {
				return codeword
			}
		}
	}
	return nil
}

func (c *column) String() string {
	var sb strings.Builder
	for row, codeword := range c.codewords {
		if codeword == nil {
			fmt.Fprintf(&sb, "%3d:    |   \n", row)
			continue
		}
		fmt.Fprintf(&sb, "%3d: %3d|%3d\n", row, codeword.RowNumber(), codeword.Value())
	}
	return sb.String()
}

// indicatorColumn is the left or right row indicator column. Its codewords
// carry the row number and, cycling over three rows, the row count, the
// column count and the error correction level.
type indicatorColumn struct {
	*column
	isLeft bool
}

func newIndicatorColumn(box *boundingBox, isLeft bool) *indicatorColumn {
	return &indicatorColumn{column: newColumn(box), isLeft: isLeft}
}

// span returns the codeword indices between the top and bottom corner on
// this column's side.
func (c *indicatorColumn) span() (first, last int) {
	top, bottom := c.box.topRight, c.box.bottomRight
	if c.isLeft {
		top, bottom = c.box.topLeft, c.box.bottomLeft
	}
	return c.index(int(top.Y)), c.index(int(bottom.Y))
}

// indicatorPart maps a row number to the field its indicator carries: 0 row
// count upper part, 1 EC level and row count lower part, 2 column count.
// The right column cycles two rows ahead of the left one.
func (c *indicatorColumn) indicatorPart(rowNumber int) int {
	if !c.isLeft {
		rowNumber += 2
	}
	return rowNumber % 3
}

func (c *indicatorColumn) setRowNumbers() {
	for _, codeword := range c.codewords {
		if codeword != nil {
			codeword.setRowNumberAsRowIndicator()
		}
	}
}

// adjustCompleteRowNumbers drops indicator codewords that contradict meta
// or whose row number jumps in a way the pixel distance cannot explain.
func (c *indicatorColumn) adjustCompleteRowNumbers(meta *barcodeMetadata) {
	codewords := c.codewords
	c.setRowNumbers()
	c.removeIncorrectCodewords(meta)
	first, last := c.span()
	barcodeRow := -1
	maxRowHeight := 1
	currentRowHeight := 0
	for codewordsRow := first; codewordsRow < last; codewordsRow++ {
		codeword := codewords[codewordsRow]
		if codeword == nil {
			continue
		}
		rowDifference := codeword.RowNumber() - barcodeRow
		switch {
		case rowDifference == 0:
			currentRowHeight++
		case rowDifference == 1:
			maxRowHeight = max(maxRowHeight, currentRowHeight)
			currentRowHeight = 1
			barcodeRow = codeword.RowNumber()
		case rowDifference < 0 || codeword.RowNumber() >= meta.rowCount || rowDifference > codewordsRow:
			codewords[codewordsRow] = nil
		default:
			checkedRows := rowDifference
			if maxRowHeight > 2 {
				checkedRows = (maxRowHeight - 2) * rowDifference
			}
			closePreviousFound := checkedRows >= codewordsRow
			for i := 1; i <= checkedRows && !closePreviousFound; i++ {
				closePreviousFound = codewords[codewordsRow-i] != nil
			}
			if closePreviousFound {
				codewords[codewordsRow] = nil
			} else {
				barcodeRow = codeword.RowNumber()
				currentRowHeight = 1
			}
		}
	}
}

// rowHeights counts the pixel rows read for each symbol row, or returns nil
// when the column carries no usable metadata.
func (c *indicatorColumn) rowHeights() []int {
	meta := c.metadata()
	if meta == nil {
		return nil
	}
	c.adjustIncompleteRowNumbers(meta)
	result := make([]int, meta.rowCount)
	for _, codeword := range c.codewords {
		if codeword != nil && codeword.RowNumber() < len(result) {
			result[codeword.RowNumber()]++
		}
	}
	return result
}

func (c *indicatorColumn) adjustIncompleteRowNumbers(meta *barcodeMetadata) {
	first, last := c.span()
	barcodeRow := -1
	for codewordsRow := first; codewordsRow < last; codewordsRow++ {
		codeword := c.codewords[codewordsRow]
		if codeword == nil {
			continue
		}
		codeword.setRowNumberAsRowIndicator()
		switch {
		case codeword.RowNumber()-barcodeRow == 0:
		case codeword.RowNumber() >= meta.rowCount:
			c.codewords[codewordsRow] = nil
		default:
			barcodeRow = codeword.RowNumber()
		}
	}
}

// metadata votes the symbol dimensions out of the indicator codewords. It
// returns nil when a field was never read or the dimensions are impossible.
func (c *indicatorColumn) metadata() *barcodeMetadata {
	columnCount := newBarcodeValue()
	rowCountUpper := newBarcodeValue()
	rowCountLower := newBarcodeValue()
	ecLevel := newBarcodeValue()
	for _, codeword := range c.codewords {
		if codeword == nil {
			continue
		}
		codeword.setRowNumberAsRowIndicator()
		v := codeword.Value() % 30
		switch c.indicatorPart(codeword.RowNumber()) {
		case 0:
			rowCountUpper.SetValue(v*3 + 1)
		case 1:
			ecLevel.SetValue(v / 3)
			rowCountLower.SetValue(v % 3)
		case 2:
			columnCount.SetValue(v + 1)
		}
	}
	columns := columnCount.Value()
	upper := rowCountUpper.Value()
	lower := rowCountLower.Value()
	levels := ecLevel.Value()
	if len(columns) == 0 || len(upper) == 0 || len(lower) == 0 || len(levels) == 0 {
		return nil
	}
	rows := upper[0] + lower[0]
	if columns[0] < cluster.MinColumns || columns[0] > cluster.MaxColumns ||
		rows < cluster.MinRowsInBarcode || rows > cluster.MaxRowsInBarcode {
		return nil
	}
	meta := newBarcodeMetadata(columns[0], upper[0], lower[0], levels[0])
	c.removeIncorrectCodewords(meta)
	return meta
}

func (c *indicatorColumn) removeIncorrectCodewords(meta *barcodeMetadata) {
	for i, codeword := range c.codewords {
		if codeword == nil {
			continue
		}
		v := codeword.Value() % 30
		if codeword.RowNumber() > meta.rowCount {
			c.codewords[i] = nil
			continue
		}
		var ok bool
		switch c.indicatorPart(codeword.RowNumber()) {
		case 0:
			ok = v*3+1 == meta.rowCountUpper
		case 1:
			ok = v/3 == meta.ecLevel && v%3 == meta.rowCountLower
		case 2:
			ok = v+1 == meta.columnCount
		}
		if !ok {
			c.codewords[i] = nil
		}
	}
}

func (c *indicatorColumn) String() string {
	return fmt.Sprintf("IsLeft: %t\n%s", c.isLeft, c.column.String())
}
