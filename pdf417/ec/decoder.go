package ec

import (
	"fmt"

	pdf417scan "github.com/ericlevine/pdf417scan"
)

// Correction reports what Decode repaired.
type Correction struct {
	// Errors counts corrected positions that were not flagged as erasures.
	Errors int
	// Erasures counts the flagged positions.
	Erasures int
}

// Decoder corrects errors and erasures in PDF417 codeword sequences.
type Decoder struct {
	field *ModulusGF
}

// NewDecoder returns a decoder working over field.
func NewDecoder(field *ModulusGF) *Decoder {
	return &Decoder{field: field}
}

// Decode corrects received in place. numECCodewords is the number of
// trailing error correction codewords and erasures lists positions known to
// be unreadable. Correction succeeds when 2*errors + erasures does not
// exceed numECCodewords. Beyond that bound Decode usually returns
// ErrUncorrectableData, but may land on a different valid codeword.
func (d *Decoder) Decode(received []int, numECCodewords int, erasures []int) (Correction, error) {
	field := d.field
	erasures = uniqueErasures(erasures, len(received))
	if numECCodewords < 1 || numECCodewords >= len(received) {
		return Correction{}, fmt.Errorf("%w: %d error correction codewords for %d codewords",
			pdf417scan.ErrUncorrectableData, numECCodewords, len(received))
	}
	if len(erasures) > numECCodewords {
		return Correction{}, fmt.Errorf("%w: %d erasures exceed %d error correction codewords",
			pdf417scan.ErrUncorrectableData, len(erasures), numECCodewords)
	}

	syndromes, ok := d.syndromes(received, numECCodewords)
	if ok {
		return Correction{Erasures: len(erasures)}, nil
	}

	// Erasure locator Gamma(x) = prod(1 - Y_j x).
	erasureLocator := field.One()
	for _, position := range erasures {
		b := field.Exp(len(received) - 1 - position)
		erasureLocator = erasureLocator.Multiply(NewModulusPoly(field, []int{field.Negate(b), 1}))
	}

	modifiedSyndrome := NewModulusPoly(field, syndromes).Multiply(erasureLocator).Truncate(numECCodewords)
	sigma, omega, err := d.runEuclideanAlgorithm(
		field.BuildMonomial(numECCodewords, 1), modifiedSyndrome, numECCodewords+len(erasures))
	if err != nil {
		return Correction{}, err
	}

	locator := sigma.Multiply(erasureLocator)
	locations, err := d.findErrorLocations(locator)
	if err != nil {
		return Correction{}, err
	}
	magnitudes, err := d.findErrorMagnitudes(omega, locator, locations)
	if err != nil {
		return Correction{}, err
	}

	erased := make(map[int]bool, len(erasures))
	for _, position := range erasures {
		erased[position] = true
	}
	corrected := append([]int(nil), received...)
	result := Correction{Erasures: len(erasures)}
	for i, location := range locations {
		position := len(received) - 1 - field.Log(location)
		if position < 0 {
			return Correction{}, fmt.Errorf("%w: error located outside the codewords", pdf417scan.ErrUncorrectableData)
		}
		corrected[position] = field.Subtract(corrected[position], magnitudes[i])
		if !erased[position] {
			result.Errors++
		}
	}
	if _, ok := d.syndromes(corrected, numECCodewords); !ok {
		return Correction{}, fmt.Errorf("%w: residual syndromes after correction", pdf417scan.ErrUncorrectableData)
	}
	copy(received, corrected)
	return result, nil
}

// syndromes evaluates the received word at generator^1..generator^k and
// reports whether all of them are zero. The result is ordered for
// NewModulusPoly, so that S_i is the coefficient of x^(i-1).
func (d *Decoder) syndromes(received []int, numECCodewords int) ([]int, bool) {
	poly := NewModulusPoly(d.field, received)
	s := make([]int, numECCodewords)
	clean := true
	for i := numECCodewords; i > 0; i-- {
		eval := poly.EvaluateAt(d.field.Exp(i))
		s[numECCodewords-i] = eval
		if eval != 0 {
			clean = false
		}
	}
	return s, clean
}

// runEuclideanAlgorithm stops once 2*deg(r) < bound, where bound is the
// number of EC codewords plus the number of erasures.
func (d *Decoder) runEuclideanAlgorithm(a, b *ModulusPoly, bound int) (*ModulusPoly, *ModulusPoly, error) {
	field := d.field
	if a.Degree() < b.Degree() {
		a, b = b, a
	}
	rLast, r := a, b
	tLast, t := field.Zero(), field.One()

	for !r.IsZero() && 2*r.Degree() >= bound {
		rLastLast, tLastLast := rLast, tLast
		rLast, tLast = r, t

		r = rLastLast
		q := field.Zero()
		dltInverse := field.Inverse(rLast.Coefficient(rLast.Degree()))
		for r.Degree() >= rLast.Degree() && !r.IsZero() {
			degreeDiff := r.Degree() - rLast.Degree()
			scale := field.Multiply(r.Coefficient(r.Degree()), dltInverse)
			q = q.Add(field.BuildMonomial(degreeDiff, scale))
			r = r.Subtract(rLast.MultiplyByMonomial(degreeDiff, scale))
		}
		t = q.Multiply(tLast).Subtract(tLastLast).Negative()
	}

	sigmaTildeAtZero := t.Coefficient(0)
	if sigmaTildeAtZero == 0 {
		return nil, nil, fmt.Errorf("%w: degenerate error locator", pdf417scan.ErrUncorrectableData)
	}
	inverse := field.Inverse(sigmaTildeAtZero)
	return t.MultiplyScalar(inverse), r.MultiplyScalar(inverse), nil
}

// findErrorLocations runs a Chien search over every non-zero field element.
func (d *Decoder) findErrorLocations(locator *ModulusPoly) ([]int, error) {
	numErrors := locator.Degree()
	if numErrors == 0 {
		return nil, fmt.Errorf("%w: no error locations", pdf417scan.ErrUncorrectableData)
	}
	result := make([]int, 0, numErrors)
	for i := 1; i < d.field.Size() && len(result) < numErrors; i++ {
		if locator.EvaluateAt(i) == 0 {
			result = append(result, d.field.Inverse(i))
		}
	}
	if len(result) != numErrors {
		return nil, fmt.Errorf("%w: locator of degree %d has %d roots",
			pdf417scan.ErrUncorrectableData, numErrors, len(result))
	}
	return result, nil
}

// findErrorMagnitudes applies Forney's formula e = -omega(X^-1) / locator'(X^-1).
func (d *Decoder) findErrorMagnitudes(evaluator, locator *ModulusPoly, locations []int) ([]int, error) {
	field := d.field
	derivative := locator.Derivative()
	result := make([]int, len(locations))
	for i, location := range locations {
		xiInverse := field.Inverse(location)
		denominator := derivative.EvaluateAt(xiInverse)
		if denominator == 0 {
			return nil, fmt.Errorf("%w: repeated error location", pdf417scan.ErrUncorrectableData)
		}
		numerator := field.Negate(evaluator.EvaluateAt(xiInverse))
		result[i] = field.Multiply(numerator, field.Inverse(denominator))
	}
	return result, nil
}

func uniqueErasures(erasures []int, n int) []int {
	if len(erasures) == 0 {
		return nil
	}
	seen := make(map[int]bool, len(erasures))
	result := make([]int, 0, len(erasures))
	for _, position := range erasures {
		if position < 0 || position >= n || seen[position] {
			continue
		}
		seen[position] = true
		result = append(result, position)
	}
	return result
}
