package pdf417

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	pdf417scan "github.com/ericlevine/pdf417scan"
	"github.com/ericlevine/pdf417scan/bitutil"
	"github.com/ericlevine/pdf417scan/pdf417/cluster"
	"github.com/ericlevine/pdf417scan/pdf417/encoder"
)

func intPtr(v int) *int { return &v }

func encodeSymbol(t *testing.T, contents string, opts *EncodeOptions) *encoder.Symbol {
	t.Helper()
	sym, err := NewWriter().Symbol(contents, opts)
	if err != nil {
		t.Fatalf("encode %q: %v", contents, err)
	}
	return sym
}

func renderSymbol(sym *encoder.Symbol) *bitutil.BitMatrix {
	return Render(sym, 2000, 200, &EncodeOptions{Scale: 3})
}

func decodeMatrix(m *bitutil.BitMatrix, opts *pdf417scan.DecodeOptions) (*pdf417scan.Result, error) {
	return NewReader().Decode(context.Background(), pdf417scan.NewBinaryBitmapFromMatrix(m), opts)
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{"text", "HELLO WORLD"},
		{"mixed case", "Hello, World!"},
		{"numeric", "123456789012345"},
		{"text and digits", "Order 12345678901234567890 shipped\nto: A. Smith"},
		{"punctuation", "a{b}c|d~e;f<g>h@i[j]k"},
		{"latin1", "Grüße aus Köln"},
		{"utf8", "日本語のテキスト"},
		{"control byte", "abc\x01def"},
		{"long", strings.Repeat("The quick brown fox jumps over the lazy dog. ", 8)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := renderSymbol(encodeSymbol(t, tc.contents, nil))
			result, err := decodeMatrix(m, nil)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if result.Text != tc.contents {
				t.Errorf("got %q, want %q", result.Text, tc.contents)
			}
			if result.ErrorsCorrected != 0 || result.ErasuresCorrected != 0 {
				t.Errorf("clean symbol needed %d errors and %d erasures corrected",
					result.ErrorsCorrected, result.ErasuresCorrected)
			}
		})
	}
}

func TestRoundTripECLevels(t *testing.T) {
	for level := 0; level <= 8; level++ {
		sym := encodeSymbol(t, "PDF417 level test", &EncodeOptions{ECLevel: intPtr(level)})
		result, err := decodeMatrix(renderSymbol(sym), nil)
		if err != nil {
			t.Fatalf("level %d: decode: %v", level, err)
		}
		if result.ECLevel != level {
			t.Errorf("level %d: decoded level %d", level, result.ECLevel)
		}
		if result.Text != "PDF417 level test" {
			t.Errorf("level %d: got %q", level, result.Text)
		}
	}
}

func TestCompactionModes(t *testing.T) {
	tests := []struct {
		contents string
		want     pdf417scan.Mode
	}{
		{"HELLO WORLD", pdf417scan.ModeText},
		{"123456789012345", pdf417scan.ModeNumeric},
	}
	for _, tc := range tests {
		result, err := decodeMatrix(renderSymbol(encodeSymbol(t, tc.contents, nil)), nil)
		if err != nil {
			t.Fatalf("%q: decode: %v", tc.contents, err)
		}
		if result.Text != tc.contents {
			t.Errorf("%q: got %q", tc.contents, result.Text)
		}
		if result.Mode() != tc.want {
			t.Errorf("%q: mode %v, want %v", tc.contents, result.Mode(), tc.want)
		}
	}
}

func TestForcedByteCompaction(t *testing.T) {
	opts := &EncodeOptions{Compaction: encoder.CompactionByte}
	result, err := decodeMatrix(renderSymbol(encodeSymbol(t, "byte mode payload", opts)), nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Text != "byte mode payload" {
		t.Errorf("got %q", result.Text)
	}
	if result.Mode() != pdf417scan.ModeByte {
		t.Errorf("mode %v, want Byte", result.Mode())
	}
}

func TestDecodeIsDeterministic(t *testing.T) {
	m := renderSymbol(encodeSymbol(t, "determinism check 42", nil))
	first, err := decodeMatrix(m, nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := decodeMatrix(m, nil)
		if err != nil {
			t.Fatalf("decode %d: %v", i, err)
		}
		if again.Text != first.Text || again.ModeNames() != first.ModeNames() ||
			len(again.Codewords) != len(first.Codewords) {
			t.Fatalf("decode %d differs: %+v vs %+v", i, again, first)
		}
		for j := range first.Codewords {
			if again.Codewords[j] != first.Codewords[j] {
				t.Fatalf("decode %d: codeword %d differs", i, j)
			}
		}
	}
}

func TestRotationInvariance(t *testing.T) {
	const contents = "ROTATED SYMBOL 2024"
	base := renderSymbol(encodeSymbol(t, contents, nil))
	for _, degrees := range []int{0, 90, 180, 270} {
		m := base.Clone()
		m.Rotate(degrees)
		result, err := decodeMatrix(m, nil)
		if err != nil {
			t.Fatalf("rotation %d: decode: %v", degrees, err)
		}
		if result.Text != contents {
			t.Errorf("rotation %d: got %q", degrees, result.Text)
		}
		if len(result.Points) != 4 {
			t.Errorf("rotation %d: %d corner points", degrees, len(result.Points))
		}
	}
}

func TestCorrectsErrorsWithinCapacity(t *testing.T) {
	const contents = "HELLO WORLD"
	sym := encodeSymbol(t, contents, nil) // level 2: 8 error correction codewords
	for _, i := range []int{2, 5, 9, 13} {
		sym.Codewords[i] = (sym.Codewords[i] + 1) % 929
	}
	result, err := decodeMatrix(renderSymbol(sym), nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Text != contents {
		t.Errorf("got %q, want %q", result.Text, contents)
	}
	if result.ErrorsCorrected != 4 {
		t.Errorf("errors corrected = %d, want 4", result.ErrorsCorrected)
	}
}

func TestUncorrectableBeyondCapacity(t *testing.T) {
	const contents = "HELLO WORLD"
	sym := encodeSymbol(t, contents, nil)
	for _, i := range []int{1, 2, 4, 6, 9, 12} {
		sym.Codewords[i] = (sym.Codewords[i] + 7) % 929
	}
	_, err := decodeMatrix(renderSymbol(sym), nil)
	if pdf417scan.KindOf(err) != pdf417scan.UncorrectableData {
		t.Fatalf("six errors against eight error correction codewords: got %v, want UncorrectableData", err)
	}
}

func TestRandomCorruptionBeyondCapacity(t *testing.T) {
	const contents = "HELLO WORLD"
	rnd := rand.New(rand.NewSource(929))
	for trial := 0; trial < 40; trial++ {
		sym := encodeSymbol(t, contents, nil) // 16 codewords, 8 for error correction
		n := 5 + rnd.Intn(4)
		// The symbol length descriptor at 0 is restored from the row
		// indicators, so only later codewords count as errors.
		for _, i := range rnd.Perm(len(sym.Codewords) - 1)[:n] {
			cw := &sym.Codewords[i+1]
			*cw = (*cw + 1 + rnd.Intn(928)) % 929
		}
		result, err := decodeMatrix(renderSymbol(sym), nil)
		if pdf417scan.KindOf(err) != pdf417scan.UncorrectableData {
			if err == nil {
				t.Fatalf("trial %d: %d errors decoded to %q", trial, n, result.Text)
			}
			t.Fatalf("trial %d: %d errors: got %v, want UncorrectableData", trial, n, err)
		}
	}
}

// Symbols drawn by renderSymbol have a 30 pixel margin, 3 pixel modules and
// 12 pixel rows.
const (
	renderMargin    = 30
	renderModule    = 3
	renderRowHeight = 12
)

// paintModules blackens or whitens count modules of symbol row, starting at
// module from, across the full height of the row.
func paintModules(m *bitutil.BitMatrix, row, from, count int, black bool) {
	top := renderMargin + row*renderRowHeight
	left := renderMargin + from*renderModule
	for y := top; y < top+renderRowHeight; y++ {
		for x := left; x < left+count*renderModule; x++ {
			if black {
				m.Set(x, y)
			} else {
				m.Unset(x, y)
			}
		}
	}
}

// dataModule returns the first module of data column col, after the start
// pattern and the left row indicator.
func dataModule(col int) int {
	return (col + 2) * cluster.ModulesInCodeword
}

// fourColumnSymbol encodes nine rows of four data columns at level 2.
func fourColumnSymbol(t *testing.T, contents string) *encoder.Symbol {
	t.Helper()
	sym := encodeSymbol(t, contents, &EncodeOptions{
		Dimensions: &Dimensions{MinCols: 4, MaxCols: 4, MinRows: 3, MaxRows: 90},
	})
	if sym.Columns != 4 || sym.Rows < 8 || sym.ECLevel != 2 {
		t.Fatalf("symbol is %d rows x %d columns at level %d", sym.Rows, sym.Columns, sym.ECLevel)
	}
	return sym
}

const occlusionText = "PDF417 OCCLUSION TEST WITH ENOUGH TEXT FOR EIGHT ROWS"

func TestOccludedCodewordsAreErased(t *testing.T) {
	sym := fourColumnSymbol(t, occlusionText)
	for blocked := 1; blocked <= 8; blocked++ {
		m := renderSymbol(sym)
		for row := 0; row < blocked; row++ {
			paintModules(m, row, dataModule(1+row%2), cluster.ModulesInCodeword, true)
		}
		result, err := decodeMatrix(m, nil)
		if err != nil {
			t.Fatalf("%d codewords blacked out: %v", blocked, err)
		}
		if result.Text != occlusionText {
			t.Errorf("%d codewords blacked out: got %q", blocked, result.Text)
		}
	}
}

func TestFlippedModulesWithinCapacity(t *testing.T) {
	sym := fourColumnSymbol(t, occlusionText)
	for flipped := 1; flipped <= 4; flipped++ {
		m := renderSymbol(sym)
		for i := 0; i < flipped; i++ {
			row := 2 * i
			module := dataModule(1+i%2) + cluster.ModulesInCodeword/2
			paintModules(m, row, module, 1, !m.Get(renderMargin+module*renderModule, renderMargin+row*renderRowHeight))
		}
		result, err := decodeMatrix(m, nil)
		if err != nil {
			t.Fatalf("%d cells with a flipped module: %v", flipped, err)
		}
		if result.Text != occlusionText {
			t.Errorf("%d cells with a flipped module: got %q", flipped, result.Text)
		}
	}
}

func TestMissingStopPatternIsInterpolated(t *testing.T) {
	const contents = "HELLO WORLD"
	sym := encodeSymbol(t, contents, nil)
	stop := (sym.Columns + 3) * cluster.ModulesInCodeword
	tests := []struct {
		name string
		rows []int
	}{
		{"top rows", []int{0, 1}},
		{"middle rows", []int{3, 4}},
		{"every row", []int{0, 1, 2, 3, 4, 5, 6, 7}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := renderSymbol(sym)
			for _, row := range tc.rows {
				paintModules(m, row, stop, cluster.ModulesInStopPattern, false)
			}
			result, err := decodeMatrix(m, nil)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if result.Text != contents {
				t.Errorf("got %q", result.Text)
			}
		})
	}
}

func TestBlankImage(t *testing.T) {
	_, err := decodeMatrix(bitutil.NewBitMatrixWithSize(400, 300), nil)
	if !errors.Is(err, pdf417scan.ErrSymbolNotFound) {
		t.Fatalf("got %v, want SymbolNotFound", err)
	}
	if pdf417scan.KindOf(err) != pdf417scan.SymbolNotFound {
		t.Errorf("kind = %v", pdf417scan.KindOf(err))
	}
}

func TestCancelledDecode(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := renderSymbol(encodeSymbol(t, "never read", nil))
	_, err := NewReader().Decode(ctx, pdf417scan.NewBinaryBitmapFromMatrix(m), nil)
	if pdf417scan.KindOf(err) != pdf417scan.Cancelled {
		t.Fatalf("got %v, want Cancelled", err)
	}
}

// sideBySide places b to the right of a.
func sideBySide(a, b *bitutil.BitMatrix) *bitutil.BitMatrix {
	out := bitutil.NewBitMatrixWithSize(a.Width()+b.Width(), max(a.Height(), b.Height()))
	for y := 0; y < a.Height(); y++ {
		for x := 0; x < a.Width(); x++ {
			if a.Get(x, y) {
				out.Set(x, y)
			}
		}
	}
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			if b.Get(x, y) {
				out.Set(a.Width()+x, y)
			}
		}
	}
	return out
}

func TestMultipleSymbols(t *testing.T) {
	first := renderSymbol(encodeSymbol(t, "FIRST SYMBOL", nil))
	second := renderSymbol(encodeSymbol(t, "OTHER SYMBOL", nil))
	image := pdf417scan.NewBinaryBitmapFromMatrix(sideBySide(first, second))

	_, err := NewReader().Decode(context.Background(), image, nil)
	if pdf417scan.KindOf(err) != pdf417scan.AmbiguousSymbol {
		t.Fatalf("Decode: got %v, want AmbiguousSymbol", err)
	}

	results, err := NewReader().DecodeMultiple(context.Background(), image, nil)
	if err != nil {
		t.Fatalf("DecodeMultiple: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Text != "FIRST SYMBOL" || results[1].Text != "OTHER SYMBOL" {
		t.Errorf("got %q and %q", results[0].Text, results[1].Text)
	}
}

func TestDuplicateSymbolsAreNotAmbiguous(t *testing.T) {
	m := renderSymbol(encodeSymbol(t, "SAME PAYLOAD", nil))
	result, err := decodeMatrix(sideBySide(m, m), nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Text != "SAME PAYLOAD" {
		t.Errorf("got %q", result.Text)
	}
}

func TestWriterFitsRequestedSize(t *testing.T) {
	m, err := NewWriter().Encode("Hello, World!", 400, 200, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if m.Width() == 0 || m.Height() == 0 {
		t.Fatal("expected non-empty matrix")
	}
	if m.Width() > 400+2*defaultWhiteSpace {
		t.Errorf("width %d exceeds requested area", m.Width())
	}
	portrait, err := NewWriter().Encode("Hello, World!", 200, 400, &EncodeOptions{Margin: intPtr(10)})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if portrait.Height() <= portrait.Width() {
		t.Errorf("portrait request rendered %dx%d", portrait.Width(), portrait.Height())
	}
	result, err := decodeMatrix(portrait, nil)
	if err != nil {
		t.Fatalf("decode portrait: %v", err)
	}
	if result.Text != "Hello, World!" {
		t.Errorf("got %q", result.Text)
	}
}

func TestWriterRejectsBadInput(t *testing.T) {
	if _, err := NewWriter().Encode("", 400, 200, nil); !errors.Is(err, pdf417scan.ErrWriter) {
		t.Errorf("empty contents: got %v, want ErrWriter", err)
	}
	if _, err := NewWriter().Encode("x", 400, 200, &EncodeOptions{ECLevel: intPtr(9)}); err == nil {
		t.Error("expected error for level 9")
	}
	if _, err := NewWriter().Encode("abc", 400, 200, &EncodeOptions{Compaction: encoder.CompactionNumeric}); err == nil {
		t.Error("expected error for letters in numeric compaction")
	}
}
