package decoder

import (
	"fmt"
	"strings"
)

// CodewordMatrix holds the voted readings of a symbol, one cell per
// codeword. Column 0 and column Columns+1 are the row indicators; data
// columns are addressed 0..Columns-1 through Cell.
type CodewordMatrix struct {
	Rows    int
	Columns int
	ECLevel int

	cells [][]*BarcodeValue
}

func newCodewordMatrix(rows, columns, ecLevel int) *CodewordMatrix {
	cells := make([][]*BarcodeValue, rows)
	for row := range cells {
		cells[row] = make([]*BarcodeValue, columns+2)
		for column := range cells[row] {
			cells[row][column] = newBarcodeValue()
		}
	}
	return &CodewordMatrix{Rows: rows, Columns: columns, ECLevel: ecLevel, cells: cells}
}

// NewCodewordMatrix builds a matrix from codewords in reading order, data
// and error correction. A negative value marks an erasure.
func NewCodewordMatrix(rows, columns, ecLevel int, codewords []int) (*CodewordMatrix, error) {
	if len(codewords) != rows*columns {
		return nil, fmt.Errorf("decoder: %d codewords for a %dx%d matrix", len(codewords), rows, columns)
	}
	m := newCodewordMatrix(rows, columns, ecLevel)
	for i, v := range codewords {
		if v >= 0 {
			m.cells[i/columns][i%columns+1].SetValue(v)
		}
	}
	return m, nil
}

// Cell returns the readings of a data cell.
func (m *CodewordMatrix) Cell(row, column int) *BarcodeValue {
	return m.cells[row][column+1]
}

// Erasures lists the reading-order positions of data cells without a
// reading.
func (m *CodewordMatrix) Erasures() []int {
	var erasures []int
	for row := 0; row < m.Rows; row++ {
		for column := 0; column < m.Columns; column++ {
			if m.Cell(row, column).Empty() {
				erasures = append(erasures, row*m.Columns+column)
			}
		}
	}
	return erasures
}

func (m *CodewordMatrix) String() string {
	var sb strings.Builder
	for row, cells := range m.cells {
		fmt.Fprintf(&sb, "%3d:", row)
		for _, cell := range cells {
			values := cell.Value()
			if len(values) == 0 {
				sb.WriteString("    -")
				continue
			}
			fmt.Fprintf(&sb, " %4d", values[0])
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
