package scan

import (
	"context"

	pdf417scan "github.com/ericlevine/pdf417scan"
	"github.com/ericlevine/pdf417scan/binarizer"
	"github.com/ericlevine/pdf417scan/observability"
	"github.com/ericlevine/pdf417scan/pdf417"
)

// binarizers are tried in order; the first bitmap that decodes wins.
var binarizers = []binarizer.Name{binarizer.NameHybrid, binarizer.NameGlobalHistogram}

// Scanner runs binarization, location, codeword reading and assembly over
// luminance sources. It holds no per-image state and is safe for
// concurrent use.
type Scanner struct {
	reader *pdf417.Reader
	opts   pdf417scan.DecodeOptions
}

// New returns a Scanner configured by opts, which may be nil.
func New(opts *pdf417scan.DecodeOptions) *Scanner {
	s := &Scanner{reader: pdf417.NewReader()}
	if opts != nil {
		s.opts = *opts
	}
	return s
}

// Options returns the scanner's decode options.
func (s *Scanner) Options() pdf417scan.DecodeOptions { return s.opts }

// ScanFile loads the image at path and decodes its symbol.
func (s *Scanner) ScanFile(ctx context.Context, path string) ([]*pdf417scan.Result, error) {
	source, err := LoadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return s.Scan(ctx, source)
}

// ScanBytes decodes the symbol of an in-memory image.
func (s *Scanner) ScanBytes(ctx context.Context, data []byte) ([]*pdf417scan.Result, error) {
	source, err := LoadBytes(data)
	if err != nil {
		return nil, err
	}
	return s.Scan(ctx, source)
}

// Scan decodes source. Without the Multiple option exactly one result is
// returned. On failure the error of the attempt that got furthest through
// the pipeline is returned.
func (s *Scanner) Scan(ctx context.Context, source pdf417scan.LuminanceSource) ([]*pdf417scan.Result, error) {
	log := s.opts.Log()
	var furthest error
	for _, inverted := range s.inversions() {
		for _, name := range binarizers {
			if err := pdf417scan.ContextError(ctx); err != nil {
				return nil, err
			}
			var b pdf417scan.Binarizer = binarizer.New(name, source)
			if inverted {
				b = binarizer.NewInverted(b)
			}
			log.Debug("binarizing",
				observability.String("binarizer", string(name)),
				observability.Bool("inverted", inverted))

			results, err := s.decode(ctx, pdf417scan.NewBinaryBitmap(b))
			if err == nil {
				return results, nil
			}
			switch pdf417scan.KindOf(err) {
			case pdf417scan.Cancelled, pdf417scan.AmbiguousSymbol:
				return nil, err
			}
			furthest = pdf417scan.Further(furthest, err)
		}
	}
	return nil, furthest
}

func (s *Scanner) inversions() []bool {
	if s.opts.AlsoInverted {
		return []bool{false, true}
	}
	return []bool{false}
}

func (s *Scanner) decode(ctx context.Context, bitmap *pdf417scan.BinaryBitmap) ([]*pdf417scan.Result, error) {
	if s.opts.Multiple {
		return s.reader.DecodeMultiple(ctx, bitmap, &s.opts)
	}
	result, err := s.reader.Decode(ctx, bitmap, &s.opts)
	if err != nil {
		return nil, err
	}
	return []*pdf417scan.Result{result}, nil
}
