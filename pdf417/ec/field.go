// Package ec implements PDF417 error correction: arithmetic in the prime
// field GF(929), polynomials over it, and a Reed-Solomon style encoder and
// errors-and-erasures decoder.
package ec

// ModulusGF is a field of integers modulo a prime, described by powers of a
// generator. All tables are built by NewModulusGF and never change, so a
// field may be shared by any number of goroutines.
type ModulusGF struct {
	expTable []int
	logTable []int
	zero     *ModulusPoly
	one      *ModulusPoly
	modulus  int
}

// PDF417 is GF(929) with generator 3.
var PDF417 = NewModulusGF(929, 3)

// NewModulusGF builds the exponent and logarithm tables for the field of
// integers modulo modulus generated by generator.
func NewModulusGF(modulus, generator int) *ModulusGF {
	gf := &ModulusGF{
		modulus:  modulus,
		expTable: make([]int, modulus),
		logTable: make([]int, modulus),
	}
	x := 1
	for i := 0; i < modulus; i++ {
		gf.expTable[i] = x
		x = (x * generator) % modulus
	}
	for i := 0; i < modulus-1; i++ {
		gf.logTable[gf.expTable[i]] = i
	}
	gf.zero = NewModulusPoly(gf, []int{0})
	gf.one = NewModulusPoly(gf, []int{1})
	return gf
}

// Zero returns the zero polynomial.
func (gf *ModulusGF) Zero() *ModulusPoly { return gf.zero }

// One returns the constant polynomial 1.
func (gf *ModulusGF) One() *ModulusPoly { return gf.one }

// BuildMonomial returns coefficient * x^degree.
func (gf *ModulusGF) BuildMonomial(degree, coefficient int) *ModulusPoly {
	if degree < 0 {
		panic("ec: negative degree")
	}
	if coefficient == 0 {
		return gf.zero
	}
	coefficients := make([]int, degree+1)
	coefficients[0] = coefficient
	return NewModulusPoly(gf, coefficients)
}

func (gf *ModulusGF) Add(a, b int) int {
	return (a + b) % gf.modulus
}

func (gf *ModulusGF) Subtract(a, b int) int {
	return (gf.modulus + a - b) % gf.modulus
}

// Negate returns -a.
func (gf *ModulusGF) Negate(a int) int {
	return gf.Subtract(0, a)
}

// Exp returns generator^a.
func (gf *ModulusGF) Exp(a int) int {
	return gf.expTable[a]
}

// Log returns the discrete logarithm of a. It panics if a is 0.
func (gf *ModulusGF) Log(a int) int {
	if a == 0 {
		panic("ec: log(0)")
	}
	return gf.logTable[a]
}

// Inverse returns the multiplicative inverse of a. It panics if a is 0.
func (gf *ModulusGF) Inverse(a int) int {
	if a == 0 {
		panic("ec: inverse(0)")
	}
	return gf.expTable[gf.modulus-gf.logTable[a]-1]
}

func (gf *ModulusGF) Multiply(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	return gf.expTable[(gf.logTable[a]+gf.logTable[b])%(gf.modulus-1)]
}

// Size returns the number of field elements.
func (gf *ModulusGF) Size() int {
	return gf.modulus
}
