package decoder

import (
	"context"
	"math"

	pdf417scan "github.com/ericlevine/pdf417scan"
	"github.com/ericlevine/pdf417scan/bitutil"
)

// Vertices are the codeword-area corners found by the detector. Either
// side may be nil when its guard pattern was not found.
type Vertices struct {
	TopLeft     *pdf417scan.ResultPoint
	BottomLeft  *pdf417scan.ResultPoint
	TopRight    *pdf417scan.ResultPoint
	BottomRight *pdf417scan.ResultPoint
}

// SymbolRegion is a located symbol: its corners, the dimensions its row
// indicators declare and the scale it was printed at. It is not modified
// after LocateRegion returns it.
type SymbolRegion struct {
	TopLeft     pdf417scan.ResultPoint
	TopRight    pdf417scan.ResultPoint
	BottomRight pdf417scan.ResultPoint
	BottomLeft  pdf417scan.ResultPoint

	Rows    int
	Columns int
	ECLevel int

	// ModuleWidth is the mean module width in pixels.
	ModuleWidth float64
	// RowHeight is the mean symbol row height in pixels.
	RowHeight float64

	image            *bitutil.BitMatrix
	meta             *barcodeMetadata
	box              *boundingBox
	left, right      *indicatorColumn
	minCodewordWidth int
	maxCodewordWidth int
}

// Points returns the corners clockwise from the top left.
func (r *SymbolRegion) Points() []pdf417scan.ResultPoint {
	return []pdf417scan.ResultPoint{r.TopLeft, r.TopRight, r.BottomRight, r.BottomLeft}
}

// LocateRegion reads the row indicator columns next to the given vertices
// and derives the symbol region from them. The codeword width bounds come
// from the detector's guard pattern measurements.
func LocateRegion(ctx context.Context, image *bitutil.BitMatrix, v Vertices,
	minCodewordWidth, maxCodewordWidth int) (*SymbolRegion, error) {

	box, err := newBoundingBox(image, v.TopLeft, v.BottomLeft, v.TopRight, v.BottomRight)
	if err != nil {
		return nil, err
	}

	var left, right *indicatorColumn
	var meta *barcodeMetadata
	var merged *boundingBox
	for firstPass := true; ; firstPass = false {
		if v.TopLeft != nil {
			if left, err = readIndicatorColumn(ctx, image, box, *v.TopLeft, true, minCodewordWidth, maxCodewordWidth); err != nil {
				return nil, err
			}
		}
		if v.TopRight != nil {
			if right, err = readIndicatorColumn(ctx, image, box, *v.TopRight, false, minCodewordWidth, maxCodewordWidth); err != nil {
				return nil, err
			}
		}
		meta, merged, err = merge(left, right)
		if err != nil {
			return nil, err
		}
		if firstPass && merged != nil && (merged.minY < box.minY || merged.maxY > box.maxY) {
			box = merged
			continue
		}
		break
	}

	region := &SymbolRegion{
		Rows:             meta.rowCount,
		Columns:          meta.columnCount,
		ECLevel:          meta.ecLevel,
		image:            image,
		meta:             meta,
		box:              box,
		left:             left,
		right:            right,
		minCodewordWidth: minCodewordWidth,
		maxCodewordWidth: maxCodewordWidth,
	}
	corners := box.corners()
	region.TopLeft, region.TopRight, region.BottomRight, region.BottomLeft = corners[0], corners[1], corners[2], corners[3]
	if !convex(corners) {
		return nil, pdf417scan.Errorf(pdf417scan.SymbolNotFound, "degenerate symbol region %v", corners)
	}
	region.ModuleWidth = meanCodewordWidth(left, right) / 17
	region.RowHeight = float64(box.maxY-box.minY+1) / float64(meta.rowCount)
	return region, nil
}

// convex reports whether the corners, in order around the quadrilateral,
// turn the same way at every vertex.
func convex(corners [4]pdf417scan.ResultPoint) bool {
	sign := 0
	for i := range corners {
		z := pdf417scan.CrossProductZ(corners[i], corners[(i+1)%4], corners[(i+2)%4])
		s := 1
		switch {
		case z == 0 || math.IsNaN(z):
			return false
		case z < 0:
			s = -1
		}
		if sign != 0 && s != sign {
			return false
		}
		sign = s
	}
	return true
}

func meanCodewordWidth(columns ...*indicatorColumn) float64 {
	sum, n := 0, 0
	for _, c := range columns {
		if c == nil {
			continue
		}
		for _, codeword := range c.codewords {
			if codeword != nil {
				sum += codeword.Width()
				n++
			}
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// merge combines what the two indicator columns say about the symbol.
// Columns that disagree on the dimensions are an error; a column that
// yields nothing is ignored.
func merge(left, right *indicatorColumn) (*barcodeMetadata, *boundingBox, error) {
	meta, err := symbolMetadata(left, right)
	if err != nil {
		return nil, nil, err
	}
	leftBox, err := adjustBoundingBox(left)
	if err != nil {
		return nil, nil, err
	}
	rightBox, err := adjustBoundingBox(right)
	if err != nil {
		return nil, nil, err
	}
	box, err := mergeBoundingBoxes(leftBox, rightBox)
	if err != nil {
		return nil, nil, err
	}
	return meta, box, nil
}

func symbolMetadata(left, right *indicatorColumn) (*barcodeMetadata, error) {
	var leftMeta, rightMeta *barcodeMetadata
	if left != nil {
		leftMeta = left.metadata()
	}
	if right != nil {
		rightMeta = right.metadata()
	}
	switch {
	case leftMeta == nil && rightMeta == nil:
		return nil, pdf417scan.Errorf(pdf417scan.SymbolNotFound, "no readable row indicators")
	case leftMeta == nil:
		return rightMeta, nil
	case rightMeta == nil:
		return leftMeta, nil
	case !leftMeta.equal(rightMeta):
		return nil, pdf417scan.Errorf(pdf417scan.InconsistentMetadata,
			"left row indicators declare %v, right declare %v", leftMeta, rightMeta)
	}
	return leftMeta, nil
}

// adjustBoundingBox extends the box over symbol rows the indicator column
// missed at the top or bottom, judged by the tallest row seen.
func adjustBoundingBox(c *indicatorColumn) (*boundingBox, error) {
	if c == nil {
		return nil, nil
	}
	rowHeights := c.rowHeights()
	if rowHeights == nil {
		return nil, nil
	}
	maxRowHeight := -1
	for _, h := range rowHeights {
		maxRowHeight = max(maxRowHeight, h)
	}
	missingStartRows := 0
	for _, h := range rowHeights {
		missingStartRows += maxRowHeight - h
		if h > 0 {
			break
		}
	}
	codewords := c.codewords
	for row := 0; missingStartRows > 0 && codewords[row] == nil; row++ {
		missingStartRows--
	}
	missingEndRows := 0
	for row := len(rowHeights) - 1; row >= 0; row-- {
		missingEndRows += maxRowHeight - rowHeights[row]
		if rowHeights[row] > 0 {
			break
		}
	}
	for row := len(codewords) - 1; missingEndRows > 0 && codewords[row] == nil; row-- {
		missingEndRows--
	}
	return c.box.addMissingRows(missingStartRows, missingEndRows, c.isLeft)
}

// readIndicatorColumn follows an indicator column up and down from the
// detector's start point.
func readIndicatorColumn(ctx context.Context, image *bitutil.BitMatrix, box *boundingBox,
	start pdf417scan.ResultPoint, leftToRight bool, minCodewordWidth, maxCodewordWidth int) (*indicatorColumn, error) {

	c := newIndicatorColumn(box, leftToRight)
	for _, increment := range [2]int{1, -1} {
		startColumn := int(start.X)
		for imageRow := int(start.Y); imageRow <= box.maxY && imageRow >= box.minY; imageRow += increment {
			if err := pdf417scan.ContextError(ctx); err != nil {
				return nil, err
			}
			codeword := detectCodeword(image, 0, image.Width(), leftToRight, startColumn, imageRow,
				minCodewordWidth, maxCodewordWidth)
			if codeword == nil {
				continue
			}
			c.set(imageRow, codeword)
			if leftToRight {
				startColumn = codeword.StartX()
			} else {
				startColumn = codeword.EndX()
			}
		}
	}
	return c, nil
}
