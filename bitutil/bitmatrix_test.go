package bitutil

import "testing"

func TestBitMatrixGetSet(t *testing.T) {
	bm := NewBitMatrixWithSize(10, 10)
	bm.Set(3, 5)
	if !bm.Get(3, 5) {
		t.Error("bit (3,5) should be set")
	}
	if bm.Get(5, 3) {
		t.Error("bit (5,3) should not be set")
	}
	bm.Unset(3, 5)
	if bm.Get(3, 5) {
		t.Error("bit (3,5) should be unset")
	}
}

func TestBitMatrixFlipAllKeepsPadding(t *testing.T) {
	bm := NewBitMatrixWithSize(35, 3)
	bm.Set(34, 2)
	bm.FlipAll()
	if bm.Get(34, 2) || !bm.Get(0, 0) {
		t.Error("bits inside the matrix should be inverted")
	}
	if r := bm.EnclosingRectangle(); r[2] != 35 {
		t.Errorf("enclosing width = %d, want 35", r[2])
	}
}

func TestBitMatrixSetRegion(t *testing.T) {
	bm := NewBitMatrixWithSize(40, 5)
	bm.SetRegion(30, 1, 5, 2)
	if !bm.Get(30, 1) || !bm.Get(34, 2) || bm.Get(35, 2) || bm.Get(30, 3) {
		t.Error("region not set correctly")
	}
}

func TestBitMatrixRow(t *testing.T) {
	bm := NewBitMatrixWithSize(40, 2)
	bm.Set(33, 1)
	row := bm.Row(1, nil)
	if row.GetNextSet(0) != 33 {
		t.Errorf("GetNextSet = %d, want 33", row.GetNextSet(0))
	}
}

func TestBitMatrixRotate(t *testing.T) {
	bm := NewBitMatrixWithSize(4, 3)
	bm.Set(3, 0)
	bm.Rotate90()
	if bm.Width() != 3 || bm.Height() != 4 {
		t.Fatalf("dimensions after 90 rotation: %dx%d, want 3x4", bm.Width(), bm.Height())
	}
	if !bm.Get(0, 0) {
		t.Error("(0,0) should be set after counterclockwise rotation")
	}
	bm.Rotate(270)
	bm.Rotate180()
	if !bm.Get(0, 2) || bm.Width() != 4 {
		t.Errorf("full turn should restore the top-right bit:\n%s", bm)
	}
}

func TestBitMatrixEnclosingRectangle(t *testing.T) {
	bm := NewBitMatrixWithSize(40, 10)
	if bm.EnclosingRectangle() != nil {
		t.Error("empty matrix should have no rectangle")
	}
	bm.Set(3, 2)
	bm.Set(37, 8)
	rect := bm.EnclosingRectangle()
	if rect[0] != 3 || rect[1] != 2 || rect[2] != 35 || rect[3] != 7 {
		t.Errorf("rect = %v, want [3 2 35 7]", rect)
	}
}

func TestParseStringMatrix(t *testing.T) {
	bm := ParseStringMatrix("X  X\n X  \n", "X", " ")
	want := NewBitMatrixWithSize(4, 2)
	want.Set(0, 0)
	want.Set(3, 0)
	want.Set(1, 1)
	if !bm.Equals(want) {
		t.Errorf("parsed:\n%s\nwant:\n%s", bm, want)
	}
}

func TestBitMatrixClone(t *testing.T) {
	bm := NewBitMatrixWithSize(8, 8)
	bm.Set(1, 1)
	clone := bm.Clone()
	clone.Set(2, 2)
	if bm.Get(2, 2) {
		t.Error("modifying clone should not affect original")
	}
}
