package binarizer

import (
	pdf417scan "github.com/ericlevine/pdf417scan"
	"github.com/ericlevine/pdf417scan/bitutil"
)

// Inverted flips the output of another binarizer, turning a light symbol on
// a dark background into the usual dark-on-light form.
type Inverted struct {
	pdf417scan.Binarizer
}

// NewInverted wraps b.
func NewInverted(b pdf417scan.Binarizer) *Inverted {
	return &Inverted{Binarizer: b}
}

// BlackMatrix returns an inverted copy of the wrapped binarizer's matrix.
func (i *Inverted) BlackMatrix() (*bitutil.BitMatrix, error) {
	m, err := i.Binarizer.BlackMatrix()
	if err != nil {
		return nil, err
	}
	m = m.Clone()
	m.FlipAll()
	return m, nil
}

// Name identifies a binarization strategy.
type Name string

const (
	NameHybrid          Name = "hybrid"
	NameGlobalHistogram Name = "global"
)

// New returns the binarizer called name over source, or nil for an
// unknown name.
func New(name Name, source pdf417scan.LuminanceSource) pdf417scan.Binarizer {
	switch name {
	case NameHybrid:
		return NewHybrid(source)
	case NameGlobalHistogram:
		return NewGlobalHistogram(source)
	}
	return nil
}
