package pdf417

import (
	"bytes"
	"context"
	"fmt"

	pdf417scan "github.com/ericlevine/pdf417scan"
	"github.com/ericlevine/pdf417scan/bitutil"
	"github.com/ericlevine/pdf417scan/charset"
	"github.com/ericlevine/pdf417scan/observability"
	"github.com/ericlevine/pdf417scan/pdf417/decoder"
	"github.com/ericlevine/pdf417scan/pdf417/detector"
)

// Reader decodes PDF417 symbols from binary images.
type Reader struct{}

// NewReader creates a new PDF417 reader.
func NewReader() *Reader {
	return &Reader{}
}

// Decode locates and decodes the PDF417 symbol in the given image. It fails
// with AmbiguousSymbol when the image holds symbols with different payloads.
func (r *Reader) Decode(ctx context.Context, image *pdf417scan.BinaryBitmap, opts *pdf417scan.DecodeOptions) (*pdf417scan.Result, error) {
	results, err := r.decode(ctx, image, opts, opts != nil && opts.Multiple)
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// DecodeMultiple locates and decodes all PDF417 symbols in the given image.
func (r *Reader) DecodeMultiple(ctx context.Context, image *pdf417scan.BinaryBitmap, opts *pdf417scan.DecodeOptions) ([]*pdf417scan.Result, error) {
	return r.decode(ctx, image, opts, true)
}

func (r *Reader) decode(ctx context.Context, image *pdf417scan.BinaryBitmap, opts *pdf417scan.DecodeOptions, multiple bool) ([]*pdf417scan.Result, error) {
	matrix, err := image.BlackMatrix()
	if err != nil {
		return nil, err
	}
	log := opts.Log()
	defaultCharset := charset.Default
	tryHarder := false
	if opts != nil {
		tryHarder = opts.TryHarder
		if opts.CharacterSet != "" {
			if eci := charset.ByName(opts.CharacterSet); eci != nil {
				defaultCharset = eci
			} else {
				log.Warn("unknown character set, using default", observability.String("charset", opts.CharacterSet))
			}
		}
	}

	var furthest error
	for _, rotation := range detector.Rotations {
		// Every candidate is decoded so that differing payloads are noticed.
		det, err := detector.DetectAt(ctx, matrix, rotation, true, tryHarder)
		if err != nil {
			return nil, err
		}
		log.Debug("detected symbols",
			observability.Int("rotation", rotation),
			observability.Int("symbols", len(det.Symbols)))

		var results []*pdf417scan.Result
		for _, symbol := range det.Symbols {
			result, err := decodeSymbol(ctx, det.Bits, symbol, defaultCharset, log)
			if err != nil {
				if pdf417scan.KindOf(err) == pdf417scan.Cancelled {
					return nil, err
				}
				log.Debug("symbol candidate failed", observability.Error("error", err))
				furthest = pdf417scan.Further(furthest, err)
				continue
			}
			result.Rotation = rotation
			result.Points = unrotate(result.Points, rotation, matrix.Width(), matrix.Height())
			results = appendDistinct(results, result)
		}
		if len(results) == 0 {
			continue
		}
		if len(results) > 1 && !multiple {
			return nil, pdf417scan.Errorf(pdf417scan.AmbiguousSymbol,
				"%d symbols with different payloads", len(results))
		}
		return results, nil
	}
	if furthest != nil {
		return nil, furthest
	}
	return nil, pdf417scan.Errorf(pdf417scan.SymbolNotFound, "no start or stop pattern at any rotation")
}

// decodeSymbol runs region location, codeword reading and assembly on one
// detected symbol. A panic while scanning is reported as RowDecodeFailed.
func decodeSymbol(ctx context.Context, bits *bitutil.BitMatrix, symbol detector.Symbol,
	defaultCharset *charset.ECI, log observability.Logger) (result *pdf417scan.Result, err error) {

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = pdf417scan.Errorf(pdf417scan.RowDecodeFailed, "scanning aborted: %v", r)
		}
	}()

	region, err := decoder.LocateRegion(ctx, bits, symbol.CodewordArea(),
		symbol.MinCodewordWidth(), symbol.MaxCodewordWidth())
	if err != nil {
		return nil, err
	}
	log.Debug("symbol region",
		observability.Int("rows", region.Rows),
		observability.Int("columns", region.Columns),
		observability.Int("ecLevel", region.ECLevel),
		observability.String("moduleWidth", fmt.Sprintf("%.2f", region.ModuleWidth)))

	m, err := decoder.ReadCodewords(ctx, region)
	if err != nil {
		return nil, err
	}
	result, err = decoder.Assemble(m, defaultCharset, log)
	if err != nil {
		return nil, err
	}
	result.Points = region.Points()
	return result, nil
}

func appendDistinct(results []*pdf417scan.Result, result *pdf417scan.Result) []*pdf417scan.Result {
	for _, r := range results {
		if r.Text == result.Text && bytes.Equal(r.RawBytes, result.RawBytes) && sameSegment(r.Macro, result.Macro) {
			return results
		}
	}
	return append(results, result)
}

func sameSegment(a, b *pdf417scan.MacroMetadata) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.FileID == b.FileID && a.SegmentIndex == b.SegmentIndex
}

// unrotate maps points found in an image rotated counterclockwise by
// rotation degrees back to the original width x height image.
func unrotate(points []pdf417scan.ResultPoint, rotation, width, height int) []pdf417scan.ResultPoint {
	w, h := float64(width-1), float64(height-1)
	out := make([]pdf417scan.ResultPoint, len(points))
	for i, p := range points {
		switch rotation {
		case 90:
			out[i] = pdf417scan.ResultPoint{X: w - p.Y, Y: p.X}
		case 180:
			out[i] = pdf417scan.ResultPoint{X: w - p.X, Y: h - p.Y}
		case 270:
			out[i] = pdf417scan.ResultPoint{X: p.Y, Y: h - p.X}
		default:
			out[i] = p
		}
	}
	return out
}
