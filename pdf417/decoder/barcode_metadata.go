package decoder

import "fmt"

// barcodeMetadata is what one row indicator column says about the symbol.
type barcodeMetadata struct {
	columnCount   int
	ecLevel       int
	rowCountUpper int
	rowCountLower int
	rowCount      int
}

func newBarcodeMetadata(columnCount, rowCountUpper, rowCountLower, ecLevel int) *barcodeMetadata {
	return &barcodeMetadata{
		columnCount:   columnCount,
		ecLevel:       ecLevel,
		rowCountUpper: rowCountUpper,
		rowCountLower: rowCountLower,
		rowCount:      rowCountUpper + rowCountLower,
	}
}

func (m *barcodeMetadata) equal(other *barcodeMetadata) bool {
	return m.columnCount == other.columnCount &&
		m.ecLevel == other.ecLevel &&
		m.rowCount == other.rowCount
}

func (m *barcodeMetadata) String() string {
	return fmt.Sprintf("%d rows x %d columns, level %d", m.rowCount, m.columnCount, m.ecLevel)
}
