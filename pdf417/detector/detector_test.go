package detector

import (
	"context"
	"errors"
	"testing"

	pdf417scan "github.com/ericlevine/pdf417scan"
	"github.com/ericlevine/pdf417scan/bitutil"
	"github.com/ericlevine/pdf417scan/pdf417/encoder"
)

func renderedSymbol(t *testing.T, contents string) *bitutil.BitMatrix {
	t.Helper()
	sym, err := encoder.New().Encode(contents, 2)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return sym.Matrix().ScaledMatrix(3, 12, 30)
}

// detectAny tries each of Rotations in turn, the way the reader does, and
// returns the first rotation with a symbol.
func detectAny(ctx context.Context, matrix *bitutil.BitMatrix, multiple, tryHarder bool) (*Result, error) {
	for _, rotation := range Rotations {
		result, err := DetectAt(ctx, matrix, rotation, multiple, tryHarder)
		if err != nil {
			return nil, err
		}
		if len(result.Symbols) > 0 {
			return result, nil
		}
	}
	return nil, pdf417scan.Errorf(pdf417scan.SymbolNotFound, "no start or stop pattern at any rotation")
}

func TestDetectUpright(t *testing.T) {
	m := renderedSymbol(t, "DETECT ME PLEASE")
	result, err := detectAny(context.Background(), m, false, false)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if result.Rotation != 0 {
		t.Errorf("rotation = %d, want 0", result.Rotation)
	}
	if len(result.Symbols) != 1 {
		t.Fatalf("found %d symbols, want 1", len(result.Symbols))
	}
	s := result.Symbols[0]
	for i, p := range s {
		if p == nil {
			t.Fatalf("vertex %d missing", i)
		}
	}
	if s[0].X > s[4].X || s[2].X < s[6].X {
		t.Errorf("codeword area %v lies outside the symbol", s)
	}
	// Modules are 3 pixels wide: 51 pixels for the start pattern and 54
	// for the stop pattern.
	if lo, hi := s.MinCodewordWidth(), s.MaxCodewordWidth(); lo < 45 || lo > 54 || hi < 51 || hi > 60 {
		t.Errorf("codeword width range [%d, %d]", lo, hi)
	}
}

func TestDetectRotated(t *testing.T) {
	m := renderedSymbol(t, "DETECT ME PLEASE")
	m.Rotate(90)
	result, err := detectAny(context.Background(), m, false, false)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if result.Rotation != 270 {
		t.Errorf("rotation = %d, want 270", result.Rotation)
	}
	if result.Bits.Width() != m.Height() {
		t.Errorf("rotated bits are %dx%d", result.Bits.Width(), result.Bits.Height())
	}
}

func TestDetectBlank(t *testing.T) {
	_, err := detectAny(context.Background(), bitutil.NewBitMatrixWithSize(300, 200), false, true)
	if !errors.Is(err, pdf417scan.ErrSymbolNotFound) {
		t.Fatalf("got %v, want SymbolNotFound", err)
	}
}

func TestDetectCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := detectAny(ctx, renderedSymbol(t, "CANCELLED"), false, false)
	if pdf417scan.KindOf(err) != pdf417scan.Cancelled {
		t.Fatalf("got %v, want Cancelled", err)
	}
}

func TestPatternMatchVariance(t *testing.T) {
	exact := []int{16, 2, 2, 2, 2, 2, 2, 6}
	if v := patternMatchVariance(exact, startPattern[:]); v != 0 {
		t.Errorf("exact match variance = %v", v)
	}
	off := []int{2, 16, 2, 2, 2, 2, 6, 2}
	if v := patternMatchVariance(off, startPattern[:]); v < maxAvgVariance {
		t.Errorf("mismatched variance = %v, want >= %v", v, maxAvgVariance)
	}
}
