package ec

import "sync"

// MaxLevel is the highest PDF417 error correction level.
const MaxLevel = 8

// CodewordCount returns the number of error correction codewords for level,
// 2^(level+1).
func CodewordCount(level int) int {
	return 2 << level
}

// RecommendedLevel picks the smallest level the PDF417 specification
// recommends for a symbol carrying dataCodewords data codewords.
func RecommendedLevel(dataCodewords int) int {
	switch {
	case dataCodewords <= 40:
		return 2
	case dataCodewords <= 160:
		return 3
	case dataCodewords <= 320:
		return 4
	default:
		return 5
	}
}

// Encoder computes PDF417 error correction codewords.
type Encoder struct {
	field *ModulusGF

	mu               sync.Mutex
	cachedGenerators []*ModulusPoly
}

// NewEncoder returns an encoder working over field.
func NewEncoder(field *ModulusGF) *Encoder {
	return &Encoder{
		field:            field,
		cachedGenerators: []*ModulusPoly{field.One()},
	}
}

// Generator returns prod_{i=1..degree} (x - generator^i).
func (e *Encoder) Generator(degree int) *ModulusPoly {
	e.mu.Lock()
	defer e.mu.Unlock()
	if degree < len(e.cachedGenerators) {
		return e.cachedGenerators[degree]
	}
	lastGenerator := e.cachedGenerators[len(e.cachedGenerators)-1]
	for d := len(e.cachedGenerators); d <= degree; d++ {
		nextGenerator := lastGenerator.Multiply(
			NewModulusPoly(e.field, []int{1, e.field.Negate(e.field.Exp(d))}))
		e.cachedGenerators = append(e.cachedGenerators, nextGenerator)
		lastGenerator = nextGenerator
	}
	return e.cachedGenerators[degree]
}

// Encode fills the last numECCodewords entries of codewords with error
// correction codewords for the data that precedes them.
func (e *Encoder) Encode(codewords []int, numECCodewords int) {
	if numECCodewords == 0 {
		panic("ec: no error correction codewords")
	}
	dataCodewords := len(codewords) - numECCodewords
	if dataCodewords <= 0 {
		panic("ec: no data codewords provided")
	}
	generator := e.Generator(numECCodewords)
	info := NewModulusPoly(e.field, append([]int(nil), codewords[:dataCodewords]...))
	remainder := info.MultiplyByMonomial(numECCodewords, 1)
	for !remainder.IsZero() && remainder.Degree() >= generator.Degree() {
		degreeDiff := remainder.Degree() - generator.Degree()
		remainder = remainder.Subtract(generator.MultiplyByMonomial(degreeDiff, remainder.Coefficient(remainder.Degree())))
	}
	coefficients := remainder.Negative().Coefficients()
	numZero := numECCodewords - len(coefficients)
	for i := 0; i < numZero; i++ {
		codewords[dataCodewords+i] = 0
	}
	copy(codewords[dataCodewords+numZero:], coefficients)
}
