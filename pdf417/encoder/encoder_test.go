package encoder

import (
	"testing"

	"github.com/ericlevine/pdf417scan/charset"
	"github.com/ericlevine/pdf417scan/pdf417/cluster"
)

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestEncodeHighLevelText(t *testing.T) {
	got, err := EncodeHighLevel("HELLO WORLD", CompactionAuto, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{214, 341, 446, 674, 521, 119}
	if !equalInts(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestEncodeHighLevelNumeric(t *testing.T) {
	got, err := EncodeHighLevel("123456789012345", CompactionAuto, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != latchToNumeric {
		t.Fatalf("first codeword %d, want numeric latch", got[0])
	}
	if len(got) != 7 {
		t.Errorf("got %d codewords, want 7", len(got))
	}
}

func TestEncodeHighLevelShortDigitsStayText(t *testing.T) {
	got, err := EncodeHighLevel("12345", CompactionAuto, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, cw := range got {
		if cw >= 900 {
			t.Fatalf("unexpected mode codeword %d in %v", cw, got)
		}
	}
}

func TestEncodeHighLevelByteLatches(t *testing.T) {
	tests := []struct {
		msg   string
		latch int
		count int
	}{
		{"abcdef", latchToByte, 6},
		{"abcdefg", latchToBytePadded, 7},
		{"abcdefghijkl", latchToByte, 11},
	}
	for _, tc := range tests {
		got, err := EncodeHighLevel(tc.msg, CompactionByte, nil)
		if err != nil {
			t.Fatal(err)
		}
		if got[0] != tc.latch || len(got) != tc.count {
			t.Errorf("%q: got %v, want latch %d and %d codewords", tc.msg, got, tc.latch, tc.count)
		}
	}
}

func TestEncodeHighLevelECI(t *testing.T) {
	got, err := EncodeHighLevel("Ω", CompactionAuto, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) < 2 || got[0] != eciCharset || got[1] != charset.UTF8.Value {
		t.Errorf("got %v, want UTF-8 ECI prefix", got)
	}

	got, err = EncodeHighLevel("Grüße", CompactionAuto, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got[0] == eciCharset {
		t.Errorf("latin1 text got an ECI prefix: %v", got)
	}

	got, err = EncodeHighLevel("Grüße", CompactionAuto, charset.UTF8)
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != eciCharset || got[1] != charset.UTF8.Value {
		t.Errorf("explicit UTF-8 got %v", got)
	}
}

func TestEncodeHighLevelErrors(t *testing.T) {
	if _, err := EncodeHighLevel("", CompactionAuto, nil); err == nil {
		t.Error("expected error for empty message")
	}
	if _, err := EncodeHighLevel("tab\x01", CompactionText, nil); err == nil {
		t.Error("expected error for control byte in text compaction")
	}
	if _, err := EncodeHighLevel("12a4", CompactionNumeric, nil); err == nil {
		t.Error("expected error for letter in numeric compaction")
	}
}

func TestParseCompaction(t *testing.T) {
	for name, want := range map[string]Compaction{
		"": CompactionAuto, "auto": CompactionAuto, "TEXT": CompactionText,
		"byte": CompactionByte, "numeric": CompactionNumeric,
	} {
		got, err := ParseCompaction(name)
		if err != nil || got != want {
			t.Errorf("ParseCompaction(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := ParseCompaction("morse"); err == nil {
		t.Error("expected error for unknown compaction")
	}
}

func TestCalculateNumberOfRows(t *testing.T) {
	tests := []struct{ m, k, c, want int }{
		{6, 8, 2, 8},
		{6, 8, 3, 5},
		{1, 2, 1, 4},
		{100, 16, 10, 12},
	}
	for _, tc := range tests {
		if got := calculateNumberOfRows(tc.m, tc.k, tc.c); got != tc.want {
			t.Errorf("calculateNumberOfRows(%d, %d, %d) = %d, want %d", tc.m, tc.k, tc.c, got, tc.want)
		}
	}
}

func TestEncodeSymbol(t *testing.T) {
	sym, err := New().Encode("HELLO WORLD", 2)
	if err != nil {
		t.Fatal(err)
	}
	if sym.Columns != 2 || sym.Rows != 8 || sym.ECLevel != 2 {
		t.Fatalf("got %d columns, %d rows, level %d", sym.Columns, sym.Rows, sym.ECLevel)
	}
	if len(sym.Codewords) != sym.Columns*sym.Rows {
		t.Fatalf("%d codewords for %d cells", len(sym.Codewords), sym.Columns*sym.Rows)
	}
	want := []int{8, 214, 341, 446, 674, 521, 119, 900}
	if !equalInts(sym.Codewords[:8], want) {
		t.Errorf("data codewords %v, want %v", sym.Codewords[:8], want)
	}
}

func TestEncodeFixedColumns(t *testing.T) {
	enc := New()
	enc.SetDimensions(10, 10, cluster.MaxRowsInBarcode, cluster.MinRowsInBarcode)
	sym, err := enc.Encode("DAQ123\nDCSSMITH", 2)
	if err != nil {
		t.Fatal(err)
	}
	if sym.Columns != 10 || sym.Rows < cluster.MinRowsInBarcode {
		t.Errorf("got %d columns, %d rows", sym.Columns, sym.Rows)
	}
	if sym.Codewords[0] != sym.Columns*sym.Rows-8 {
		t.Errorf("length descriptor %d, want %d", sym.Codewords[0], sym.Columns*sym.Rows-8)
	}
}

func TestEncodeTooBig(t *testing.T) {
	big := make([]byte, 2000)
	for i := range big {
		big[i] = byte('A' + i%26)
	}
	if _, err := New().Encode(string(big), 5); err == nil {
		t.Error("expected error for oversized message")
	}
}

func TestMatrixLayout(t *testing.T) {
	sym, err := New().Encode("HELLO WORLD", 2)
	if err != nil {
		t.Fatal(err)
	}
	bm := sym.Matrix()
	if bm.Height() != sym.Rows {
		t.Fatalf("height %d, want %d", bm.Height(), sym.Rows)
	}
	wantWidth := (sym.Columns+4)*cluster.ModulesInCodeword + 1
	if bm.Width() != wantWidth {
		t.Fatalf("width %d, want %d", bm.Width(), wantWidth)
	}
	for y := 0; y < bm.Height(); y++ {
		row := bm.Row(y)
		if row.Size() != wantWidth {
			t.Fatalf("row %d has %d modules", y, row.Size())
		}
		for x := 0; x < 8; x++ {
			if !row.Get(x) {
				t.Fatalf("row %d: start pattern bar missing at %d", y, x)
			}
		}
		if row.Get(8) || !row.Get(9) {
			t.Fatalf("row %d: start pattern malformed", y)
		}
		if !row.Get(wantWidth - 1) {
			t.Fatalf("row %d: stop pattern must end with a bar", y)
		}
	}

	scaled := bm.ScaledMatrix(2, 6, 5)
	if scaled.Width() != wantWidth*2+10 || scaled.Height() != sym.Rows*6+10 {
		t.Errorf("scaled size %dx%d", scaled.Width(), scaled.Height())
	}
	if scaled.Get(4, 5) || !scaled.Get(5, 5) || !scaled.Get(20, 10) {
		t.Error("scaled start pattern misplaced")
	}
}
