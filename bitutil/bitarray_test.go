package bitutil

import "testing"

func TestBitArrayGetSet(t *testing.T) {
	ba := NewBitArray(33)
	for i := 0; i < 33; i++ {
		if ba.Get(i) {
			t.Errorf("bit %d should not be set", i)
		}
	}
	ba.Set(0)
	ba.Set(31)
	ba.Set(32)
	if !ba.Get(0) || !ba.Get(31) || !ba.Get(32) {
		t.Error("bits should be set")
	}
	if ba.Get(1) || ba.Get(30) {
		t.Error("bits should not be set")
	}
}

func TestBitArrayGetNextSet(t *testing.T) {
	ba := NewBitArray(64)
	ba.Set(10)
	ba.Set(40)
	tests := []struct{ from, want int }{{0, 10}, {10, 10}, {11, 40}, {41, 64}, {70, 64}}
	for _, tt := range tests {
		if got := ba.GetNextSet(tt.from); got != tt.want {
			t.Errorf("GetNextSet(%d) = %d, want %d", tt.from, got, tt.want)
		}
	}
}

func TestBitArrayGetNextUnset(t *testing.T) {
	ba := NewBitArray(0)
	ba.AppendRun(true, 3)
	ba.AppendBit(false)
	ba.AppendRun(true, 36)
	if got := ba.GetNextUnset(0); got != 3 {
		t.Errorf("GetNextUnset(0) = %d, want 3", got)
	}
	// Padding bits past Size must not be reported.
	if got := ba.GetNextUnset(4); got != 40 {
		t.Errorf("GetNextUnset(4) = %d, want 40", got)
	}
}

func TestBitArrayAppendBits(t *testing.T) {
	ba := NewBitArray(0)
	ba.AppendBits(0x1fea8, 17)
	if got, want := ba.String(), "XXXXXXXX.X.X.X..."; got != want {
		t.Errorf("AppendBits = %s, want %s", got, want)
	}
	if ba.Size() != 17 {
		t.Errorf("Size = %d, want 17", ba.Size())
	}
}

func TestBitArrayClone(t *testing.T) {
	ba := NewBitArray(10)
	ba.Set(4)
	c := ba.Clone()
	c.Set(5)
	if ba.Get(5) || !c.Get(4) {
		t.Error("clone should copy bits without sharing storage")
	}
}
