package pdf417

import (
	"fmt"

	pdf417scan "github.com/ericlevine/pdf417scan"
	"github.com/ericlevine/pdf417scan/bitutil"
	"github.com/ericlevine/pdf417scan/charset"
	"github.com/ericlevine/pdf417scan/pdf417/encoder"
)

const (
	defaultWhiteSpace           = 30
	defaultErrorCorrectionLevel = 2
	defaultAspectRatio          = 4
)

// Dimensions bounds the columns and rows of generated symbols.
type Dimensions struct {
	MinCols, MaxCols int
	MinRows, MaxRows int
}

// EncodeOptions configures symbol generation. The zero value of each field
// selects its default.
type EncodeOptions struct {
	// Margin is the quiet zone in pixels on every side; nil means 30.
	Margin *int
	// ECLevel is the error correction level 0-8; nil means 2.
	ECLevel    *int
	Compaction encoder.Compaction
	// Charset for byte data; nil picks ISO-8859-1 or UTF-8 per message.
	Charset    *charset.ECI
	Dimensions *Dimensions
	// Scale fixes the module width in pixels, ignoring the requested size.
	Scale int
	// AspectRatio is the row height in modules; 0 means 4.
	AspectRatio int
}

// Writer encodes PDF417 symbols.
type Writer struct{}

// NewWriter creates a new PDF417 writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Encode encodes contents into a symbol no larger than width x height when
// possible. A symbol always has at least one pixel per module.
func (w *Writer) Encode(contents string, width, height int, opts *EncodeOptions) (*bitutil.BitMatrix, error) {
	sym, err := w.Symbol(contents, opts)
	if err != nil {
		return nil, err
	}
	return Render(sym, width, height, opts), nil
}

// Symbol encodes contents without rendering.
func (w *Writer) Symbol(contents string, opts *EncodeOptions) (*encoder.Symbol, error) {
	enc := encoder.New()
	errorCorrectionLevel := defaultErrorCorrectionLevel
	if opts != nil {
		enc.SetCompaction(opts.Compaction)
		enc.SetCharset(opts.Charset)
		if d := opts.Dimensions; d != nil {
			enc.SetDimensions(d.MaxCols, d.MinCols, d.MaxRows, d.MinRows)
		}
		if opts.ECLevel != nil {
			errorCorrectionLevel = *opts.ECLevel
		}
	}
	sym, err := enc.Encode(contents, errorCorrectionLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pdf417scan.ErrWriter, err)
	}
	return sym, nil
}

// Render draws sym. The scale is opts.Scale when set, otherwise the largest
// that fits width x height. The symbol is given a quarter turn when its
// orientation differs from that of the requested area. A zero width and
// height render the symbol upright.
func Render(sym *encoder.Symbol, width, height int, opts *EncodeOptions) *bitutil.BitMatrix {
	margin := defaultWhiteSpace
	aspectRatio := defaultAspectRatio
	scale := 0
	if opts != nil {
		if opts.Margin != nil {
			margin = *opts.Margin
		}
		if opts.AspectRatio > 0 {
			aspectRatio = opts.AspectRatio
		}
		scale = opts.Scale
	}

	bm := sym.Matrix()
	symbolWidth, symbolHeight := bm.Width(), bm.Height()*aspectRatio
	rotated := (width > 0 || height > 0) && (height > width) != (symbolWidth < symbolHeight)
	if rotated {
		symbolWidth, symbolHeight = symbolHeight, symbolWidth
	}
	if scale <= 0 {
		scale = max(1, min(width/symbolWidth, height/symbolHeight))
	}

	out := bm.ScaledMatrix(scale, scale*aspectRatio, margin)
	if rotated {
		out.Rotate(270)
	}
	return out
}
