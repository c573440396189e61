// Package pdf417scan decodes PDF417 symbols from raster images.
//
// The root package holds the types shared by every stage of the pipeline:
// luminance sources, binary bitmaps, decode options, results and the error
// taxonomy. The stages themselves live in the binarizer, pdf417 and scan
// packages.
package pdf417scan

import (
	"math"
	"strings"

	"github.com/ericlevine/pdf417scan/bitutil"
)

// ResultPoint represents a point of interest in an image.
type ResultPoint struct {
	X, Y float64
}

// Distance returns the distance between two points.
func Distance(a, b ResultPoint) float64 {
	return math.Sqrt((a.X-b.X)*(a.X-b.X) + (a.Y-b.Y)*(a.Y-b.Y))
}

// CrossProductZ computes the z component of the cross product between vectors
// (bX-aX, bY-aY) and (cX-aX, cY-aY).
func CrossProductZ(a, b, c ResultPoint) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// Mode is a PDF417 data compaction mode.
type Mode int

const (
	ModeText Mode = iota
	ModeByte
	ModeNumeric
)

func (m Mode) String() string {
	switch m {
	case ModeText:
		return "Text"
	case ModeByte:
		return "Byte"
	case ModeNumeric:
		return "Numeric"
	default:
		return "Unknown"
	}
}

// MacroMetadata describes one segment of a Macro PDF417 sequence. Optional
// numeric fields are -1 when absent.
type MacroMetadata struct {
	SegmentIndex int
	FileID       string
	LastSegment  bool
	SegmentCount int
	FileName     string
	Timestamp    int64
	Sender       string
	Addressee    string
	FileSize     int64
	Checksum     int
	// OptionalData holds the raw codewords following a terminator, if any.
	OptionalData []int
}

// Result is a decoded PDF417 payload.
type Result struct {
	Text     string
	RawBytes []byte
	// Codewords are the corrected data codewords, symbol length descriptor
	// first, error correction codewords excluded.
	Codewords []int
	// Modes lists the compaction modes in the order they first produced output.
	Modes []Mode
	// CharacterSet names the encoding the final bytes were decoded with.
	CharacterSet      string
	ECLevel           int
	ErrorsCorrected   int
	ErasuresCorrected int
	Rows              int
	Columns           int
	// Rotation is the counterclockwise rotation, in degrees, the image needed
	// for the symbol to read left to right. Points are in the coordinates of
	// the unrotated image.
	Rotation int
	Points   []ResultPoint
	Macro    *MacroMetadata
}

// Mode returns the first compaction mode that produced output.
func (r *Result) Mode() Mode {
	if len(r.Modes) == 0 {
		return ModeText
	}
	return r.Modes[0]
}

// ModeNames joins the mode names with "+".
func (r *Result) ModeNames() string {
	names := make([]string, len(r.Modes))
	for i, m := range r.Modes {
		names[i] = m.String()
	}
	return strings.Join(names, "+")
}

// BinaryBitmap represents a bitmap of binary (black/white) values.
type BinaryBitmap struct {
	binarizer Binarizer
	matrix    *bitutil.BitMatrix
}

// NewBinaryBitmap creates a new BinaryBitmap from the given Binarizer.
func NewBinaryBitmap(binarizer Binarizer) *BinaryBitmap {
	return &BinaryBitmap{binarizer: binarizer}
}

// NewBinaryBitmapFromMatrix wraps an already binarized matrix.
func NewBinaryBitmapFromMatrix(matrix *bitutil.BitMatrix) *BinaryBitmap {
	return &BinaryBitmap{matrix: matrix}
}

// Width returns the width of the bitmap.
func (b *BinaryBitmap) Width() int {
	if b.matrix != nil {
		return b.matrix.Width()
	}
	return b.binarizer.Width()
}

// Height returns the height of the bitmap.
func (b *BinaryBitmap) Height() int {
	if b.matrix != nil {
		return b.matrix.Height()
	}
	return b.binarizer.Height()
}

// BlackMatrix returns the 2D matrix of black/white values. The matrix is
// computed once and must not be modified by callers.
func (b *BinaryBitmap) BlackMatrix() (*bitutil.BitMatrix, error) {
	if b.matrix != nil {
		return b.matrix, nil
	}
	m, err := b.binarizer.BlackMatrix()
	if err != nil {
		return nil, err
	}
	b.matrix = m
	return m, nil
}
