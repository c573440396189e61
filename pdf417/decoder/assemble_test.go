package decoder

import (
	"errors"
	"testing"

	pdf417scan "github.com/ericlevine/pdf417scan"
	"github.com/ericlevine/pdf417scan/pdf417/encoder"
)

func encodedMatrix(t *testing.T, contents string, ecLevel int, edit func(codewords []int)) *CodewordMatrix {
	t.Helper()
	sym, err := encoder.New().Encode(contents, ecLevel)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	codewords := append([]int(nil), sym.Codewords...)
	if edit != nil {
		edit(codewords)
	}
	m, err := NewCodewordMatrix(sym.Rows, sym.Columns, sym.ECLevel, codewords)
	if err != nil {
		t.Fatalf("matrix: %v", err)
	}
	return m
}

func TestAssembleClean(t *testing.T) {
	result, err := Assemble(encodedMatrix(t, "HELLO WORLD", 2, nil), nil, nil)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if result.Text != "HELLO WORLD" {
		t.Errorf("text = %q", result.Text)
	}
	if result.ECLevel != 2 || result.Columns != 2 || result.Rows != 8 {
		t.Errorf("level %d, %d columns, %d rows", result.ECLevel, result.Columns, result.Rows)
	}
	want := []int{8, 214, 341, 446, 674, 521, 119, 900}
	if len(result.Codewords) != len(want) {
		t.Fatalf("codewords = %v, want %v", result.Codewords, want)
	}
	for i := range want {
		if result.Codewords[i] != want[i] {
			t.Fatalf("codewords = %v, want %v", result.Codewords, want)
		}
	}
}

func TestAssembleErasureLaw(t *testing.T) {
	// Level 2 has 8 error correction codewords.
	erase := func(n int) func([]int) {
		return func(codewords []int) {
			for i := 1; i <= n; i++ {
				codewords[i] = -1
			}
		}
	}
	result, err := Assemble(encodedMatrix(t, "HELLO WORLD", 2, erase(8)), nil, nil)
	if err != nil {
		t.Fatalf("8 erasures: %v", err)
	}
	if result.Text != "HELLO WORLD" {
		t.Errorf("8 erasures: text = %q", result.Text)
	}
	if result.ErasuresCorrected != 8 {
		t.Errorf("erasures corrected = %d, want 8", result.ErasuresCorrected)
	}

	_, err = Assemble(encodedMatrix(t, "HELLO WORLD", 2, erase(9)), nil, nil)
	if !errors.Is(err, pdf417scan.ErrUncorrectableData) {
		t.Fatalf("9 erasures: got %v, want UncorrectableData", err)
	}
}

func TestAssembleCapacityLaw(t *testing.T) {
	tests := []struct {
		name     string
		errors   []int
		erasures []int
	}{
		{"four errors", []int{1, 4, 9, 15}, nil},
		{"two errors four erasures", []int{3, 12}, []int{1, 5, 8, 14}},
		{"one error six erasures", []int{10}, []int{1, 2, 3, 4, 5, 6}},
	}
	for _, tc := range tests {
		m := encodedMatrix(t, "HELLO WORLD", 2, func(codewords []int) {
			for _, i := range tc.errors {
				codewords[i] = (codewords[i] + 100) % 929
			}
			for _, i := range tc.erasures {
				codewords[i] = -1
			}
		})
		result, err := Assemble(m, nil, nil)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if result.Text != "HELLO WORLD" {
			t.Errorf("%s: text = %q", tc.name, result.Text)
		}
		if result.ErrorsCorrected != len(tc.errors) {
			t.Errorf("%s: errors corrected = %d, want %d", tc.name, result.ErrorsCorrected, len(tc.errors))
		}
	}
}

func TestAssembleBeyondCapacity(t *testing.T) {
	for n := 5; n <= 8; n++ {
		m := encodedMatrix(t, "HELLO WORLD", 2, func(codewords []int) {
			for i := 1; i <= n; i++ {
				codewords[i*2-1] = (codewords[i*2-1] + 3) % 929
			}
		})
		result, err := Assemble(m, nil, nil)
		if err == nil && result.Text == "HELLO WORLD" {
			t.Errorf("%d errors decoded to the original payload", n)
		}
	}
}

func TestAssembleAmbiguousCell(t *testing.T) {
	m := encodedMatrix(t, "HELLO WORLD", 2, nil)
	cell := m.Cell(1, 1)
	cell.SetValue((cell.Value()[0] + 1) % 929)
	if got := len(cell.Value()); got != 2 {
		t.Fatalf("cell holds %d tied values, want 2", got)
	}
	result, err := Assemble(m, nil, nil)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if result.Text != "HELLO WORLD" {
		t.Errorf("text = %q", result.Text)
	}
}

func TestAssembleInconsistentDimensions(t *testing.T) {
	m, err := NewCodewordMatrix(1, 2, 2, []int{3, 1})
	if err != nil {
		t.Fatal(err)
	}
	_, err = Assemble(m, nil, nil)
	if !errors.Is(err, pdf417scan.ErrInconsistentMetadata) {
		t.Fatalf("got %v, want InconsistentMetadata", err)
	}
}

func TestAssembleRestoresLengthDescriptor(t *testing.T) {
	m := encodedMatrix(t, "HELLO WORLD", 2, func(codewords []int) { codewords[0] = 0 })
	result, err := Assemble(m, nil, nil)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if result.Codewords[0] != 8 {
		t.Errorf("length descriptor = %d, want 8", result.Codewords[0])
	}
}

func TestNewCodewordMatrixSize(t *testing.T) {
	if _, err := NewCodewordMatrix(3, 2, 0, []int{1, 2, 3}); err == nil {
		t.Error("expected error for mismatched codeword count")
	}
	m, err := NewCodewordMatrix(3, 2, 0, []int{5, 1, -1, 2, 3, -1})
	if err != nil {
		t.Fatal(err)
	}
	erasures := m.Erasures()
	if len(erasures) != 2 || erasures[0] != 2 || erasures[1] != 5 {
		t.Errorf("erasures = %v, want [2 5]", erasures)
	}
}

func TestBarcodeValueVoting(t *testing.T) {
	bv := newBarcodeValue()
	if !bv.Empty() || bv.Value() != nil {
		t.Fatal("new value should be empty")
	}
	bv.SetValue(5)
	bv.SetValue(3)
	bv.SetValue(5)
	if v := bv.Value(); len(v) != 1 || v[0] != 5 {
		t.Errorf("value = %v, want [5]", v)
	}
	if bv.Confidence(5) != 2 || bv.Confidence(3) != 1 {
		t.Errorf("confidence = %d, %d", bv.Confidence(5), bv.Confidence(3))
	}
	bv.SetValue(3)
	bv.SetValue(1)
	bv.SetValue(1)
	for i := 0; i < 5; i++ {
		if v := bv.Value(); len(v) != 3 || v[0] != 1 || v[1] != 3 || v[2] != 5 {
			t.Fatalf("tied values = %v, want [1 3 5]", v)
		}
	}
}

func TestConvex(t *testing.T) {
	p := func(x, y float64) pdf417scan.ResultPoint { return pdf417scan.ResultPoint{X: x, Y: y} }
	tests := []struct {
		name    string
		corners [4]pdf417scan.ResultPoint
		want    bool
	}{
		{"rectangle", [4]pdf417scan.ResultPoint{p(0, 0), p(10, 0), p(10, 5), p(0, 5)}, true},
		{"skewed", [4]pdf417scan.ResultPoint{p(0, 0), p(10, 2), p(11, 7), p(1, 5)}, true},
		{"crossed", [4]pdf417scan.ResultPoint{p(0, 0), p(10, 5), p(10, 0), p(0, 5)}, false},
		{"collapsed", [4]pdf417scan.ResultPoint{p(0, 0), p(10, 0), p(20, 0), p(0, 5)}, false},
		{"reflex", [4]pdf417scan.ResultPoint{p(0, 0), p(10, 0), p(3, 2), p(0, 10)}, false},
	}
	for _, tc := range tests {
		if got := convex(tc.corners); got != tc.want {
			t.Errorf("%s: convex = %v, want %v", tc.name, got, tc.want)
		}
	}
}
