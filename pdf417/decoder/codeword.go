package decoder

import (
	"fmt"

	"github.com/ericlevine/pdf417scan/pdf417/cluster"
)

const rowUnknown = -1

// Codeword is one 17-module symbol character read from the image. Values
// only come from the cluster tables, so a Codeword is always a member of
// the table its bucket names.
type Codeword struct {
	startX    int
	endX      int
	bucket    int
	value     int
	rowNumber int
}

func newCodeword(startX, endX, bucket, value int) *Codeword {
	return &Codeword{
		startX:    startX,
		endX:      endX,
		bucket:    bucket,
		value:     value,
		rowNumber: rowUnknown,
	}
}

func (c *Codeword) hasValidRowNumber() bool {
	return c.isValidRowNumber(c.rowNumber)
}

// isValidRowNumber reports whether a codeword of this bucket may sit on the
// given symbol row.
func (c *Codeword) isValidRowNumber(rowNumber int) bool {
	return rowNumber != rowUnknown && c.bucket == (rowNumber%3)*3
}

// setRowNumberAsRowIndicator derives the symbol row of a row indicator
// codeword from its value (30 per row triple) and its cluster.
func (c *Codeword) setRowNumberAsRowIndicator() {
	c.rowNumber = (c.value/30)*3 + c.bucket/3
}

// Width is the pixel width of the codeword.
func (c *Codeword) Width() int { return c.endX - c.startX }

func (c *Codeword) StartX() int { return c.startX }
func (c *Codeword) EndX() int   { return c.endX }

// Bucket is 3 times the cluster number.
func (c *Codeword) Bucket() int { return c.bucket }

// Cluster is the cluster table (0, 1 or 2) the codeword was read from.
func (c *Codeword) Cluster() int { return c.bucket / 3 }

func (c *Codeword) Value() int { return c.value }

// RowNumber is the symbol row, or -1 while unknown.
func (c *Codeword) RowNumber() int { return c.rowNumber }

func (c *Codeword) setRowNumber(rowNumber int) { c.rowNumber = rowNumber }

// Pattern returns the bar/space pattern the codeword was decoded from.
func (c *Codeword) Pattern() int {
	return cluster.Pattern(c.Cluster(), c.value)
}

func (c *Codeword) String() string {
	return fmt.Sprintf("%d|%d", c.rowNumber, c.value)
}
