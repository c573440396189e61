package decoder

import (
	"math"

	pdf417scan "github.com/ericlevine/pdf417scan"
	"github.com/ericlevine/pdf417scan/bitutil"
)

// boundingBox is the quadrilateral the codeword scan is confined to. A side
// whose pattern was not found is pinned to the image edge.
type boundingBox struct {
	image       *bitutil.BitMatrix
	topLeft     pdf417scan.ResultPoint
	bottomLeft  pdf417scan.ResultPoint
	topRight    pdf417scan.ResultPoint
	bottomRight pdf417scan.ResultPoint
	minX        int
	maxX        int
	minY        int
	maxY        int
}

// newBoundingBox needs at least one complete side. A missing side is
// inferred from the other side and the image width.
func newBoundingBox(image *bitutil.BitMatrix,
	topLeft, bottomLeft, topRight, bottomRight *pdf417scan.ResultPoint) (*boundingBox, error) {

	leftUnspecified := topLeft == nil || bottomLeft == nil
	rightUnspecified := topRight == nil || bottomRight == nil
	if leftUnspecified && rightUnspecified {
		return nil, pdf417scan.Errorf(pdf417scan.SymbolNotFound, "neither start nor stop pattern located")
	}

	var tl, bl, tr, br pdf417scan.ResultPoint
	switch {
	case leftUnspecified:
		tl = pdf417scan.ResultPoint{X: 0, Y: topRight.Y}
		bl = pdf417scan.ResultPoint{X: 0, Y: bottomRight.Y}
		tr, br = *topRight, *bottomRight
	case rightUnspecified:
		tl, bl = *topLeft, *bottomLeft
		tr = pdf417scan.ResultPoint{X: float64(image.Width() - 1), Y: topLeft.Y}
		br = pdf417scan.ResultPoint{X: float64(image.Width() - 1), Y: bottomLeft.Y}
	default:
		tl, bl, tr, br = *topLeft, *bottomLeft, *topRight, *bottomRight
	}

	return &boundingBox{
		image:       image,
		topLeft:     tl,
		bottomLeft:  bl,
		topRight:    tr,
		bottomRight: br,
		minX:        int(math.Min(tl.X, bl.X)),
		maxX:        int(math.Max(tr.X, br.X)),
		minY:        int(math.Min(tl.Y, tr.Y)),
		maxY:        int(math.Max(bl.Y, br.Y)),
	}, nil
}

func (bb *boundingBox) clone() *boundingBox {
	c := *bb
	return &c
}

// mergeBoundingBoxes takes the left side of leftBox and the right side of
// rightBox. Either may be nil.
func mergeBoundingBoxes(leftBox, rightBox *boundingBox) (*boundingBox, error) {
	if leftBox == nil {
		return rightBox, nil
	}
	if rightBox == nil {
		return leftBox, nil
	}
	tl, bl := leftBox.topLeft, leftBox.bottomLeft
	tr, br := rightBox.topRight, rightBox.bottomRight
	return newBoundingBox(leftBox.image, &tl, &bl, &tr, &br)
}

// addMissingRows grows one side of the box by the given number of pixel
// rows at the top and bottom, clamped to the image.
func (bb *boundingBox) addMissingRows(missingStartRows, missingEndRows int, isLeft bool) (*boundingBox, error) {
	tl, bl, tr, br := bb.topLeft, bb.bottomLeft, bb.topRight, bb.bottomRight

	if missingStartRows > 0 {
		top := &tr
		if isLeft {
			top = &tl
		}
		top.Y = math.Max(0, float64(int(top.Y)-missingStartRows))
	}
	if missingEndRows > 0 {
		bottom := &br
		if isLeft {
			bottom = &bl
		}
		bottom.Y = math.Min(float64(bb.image.Height()-1), float64(int(bottom.Y)+missingEndRows))
	}
	return newBoundingBox(bb.image, &tl, &bl, &tr, &br)
}

// corners returns the box corners clockwise from the top left.
func (bb *boundingBox) corners() [4]pdf417scan.ResultPoint {
	return [4]pdf417scan.ResultPoint{bb.topLeft, bb.topRight, bb.bottomRight, bb.bottomLeft}
}
