package binarizer

import (
	"errors"
	"image"
	"image/color"
	"testing"

	pdf417scan "github.com/ericlevine/pdf417scan"
)

func uniform(w, h int, v uint8) *pdf417scan.ImageLuminanceSource {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return pdf417scan.NewGrayImageLuminanceSource(img)
}

// stripes draws vertical bars 4 pixels wide, alternating dark and light.
func stripes(w, h int, dark, light uint8) *pdf417scan.ImageLuminanceSource {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := light
			if (x/4)%2 == 0 {
				v = dark
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return pdf417scan.NewGrayImageLuminanceSource(img)
}

func TestGlobalHistogramUniformFails(t *testing.T) {
	_, err := NewGlobalHistogram(uniform(100, 100, 255)).BlackMatrix()
	if !errors.Is(err, pdf417scan.ErrBinarizationFailed) {
		t.Fatalf("err = %v, want ErrBinarizationFailed", err)
	}
	if k := pdf417scan.KindOf(err); k != pdf417scan.BinarizationFailed {
		t.Errorf("KindOf = %v, want BinarizationFailed", k)
	}
}

func TestGlobalHistogramStripes(t *testing.T) {
	m, err := NewGlobalHistogram(stripes(100, 60, 20, 230)).BlackMatrix()
	if err != nil {
		t.Fatalf("BlackMatrix: %v", err)
	}
	for _, x := range []int{0, 3, 8, 11} {
		if !m.Get(x, 30) {
			t.Errorf("x=%d should be black", x)
		}
	}
	for _, x := range []int{4, 7, 12} {
		if m.Get(x, 30) {
			t.Errorf("x=%d should be white", x)
		}
	}
}

func TestHybridUniformIsBackground(t *testing.T) {
	m, err := NewHybrid(uniform(120, 80, 240)).BlackMatrix()
	if err != nil {
		t.Fatalf("BlackMatrix: %v", err)
	}
	if r := m.EnclosingRectangle(); r != nil {
		t.Errorf("uniform image produced black pixels in %v", r)
	}
}

func TestHybridStripesAndCaching(t *testing.T) {
	h := NewHybrid(stripes(96, 64, 30, 220))
	m, err := h.BlackMatrix()
	if err != nil {
		t.Fatalf("BlackMatrix: %v", err)
	}
	if !m.Get(1, 10) || m.Get(5, 10) {
		t.Error("stripe pattern not preserved")
	}
	again, _ := h.BlackMatrix()
	if again != m {
		t.Error("second call should return the cached matrix")
	}
}

func TestHybridSmallImageFallsBack(t *testing.T) {
	_, err := NewHybrid(uniform(30, 30, 128)).BlackMatrix()
	if !errors.Is(err, pdf417scan.ErrBinarizationFailed) {
		t.Fatalf("err = %v, want ErrBinarizationFailed from the histogram fallback", err)
	}
}

func TestInverted(t *testing.T) {
	src := stripes(96, 64, 30, 220)
	plain, err := NewHybrid(src).BlackMatrix()
	if err != nil {
		t.Fatal(err)
	}
	inv, err := NewInverted(NewHybrid(src)).BlackMatrix()
	if err != nil {
		t.Fatal(err)
	}
	for x := 0; x < 16; x++ {
		if plain.Get(x, 20) == inv.Get(x, 20) {
			t.Fatalf("x=%d not inverted", x)
		}
	}
}

func TestNew(t *testing.T) {
	src := uniform(50, 50, 0)
	if _, ok := New(NameHybrid, src).(*Hybrid); !ok {
		t.Error("New(hybrid) should return *Hybrid")
	}
	if _, ok := New(NameGlobalHistogram, src).(*GlobalHistogram); !ok {
		t.Error("New(global) should return *GlobalHistogram")
	}
	if New("otsu", src) != nil {
		t.Error("unknown name should return nil")
	}
}

func TestEstimateBlackPoint(t *testing.T) {
	tests := []struct {
		name    string
		filled  map[int]int
		wantErr bool
	}{
		{"single bucket", map[int]int{31: 500}, true},
		{"single dark bucket", map[int]int{0: 500}, true},
		{"adjacent buckets", map[int]int{20: 400, 21: 100}, true},
		{"two peaks", map[int]int{3: 300, 28: 500}, false},
	}
	for _, tt := range tests {
		buckets := make([]int, luminanceBuckets)
		for i, n := range tt.filled {
			buckets[i] = n
		}
		point, err := estimateBlackPoint(buckets)
		if tt.wantErr {
			if pdf417scan.KindOf(err) != pdf417scan.BinarizationFailed {
				t.Errorf("%s: got %d, %v, want BinarizationFailed", tt.name, point, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: %v", tt.name, err)
			continue
		}
		if point <= 3<<luminanceShift || point >= 28<<luminanceShift {
			t.Errorf("%s: black point %d not between the peaks", tt.name, point)
		}
	}
}
