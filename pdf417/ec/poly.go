package ec

import (
	"fmt"
	"strings"
)

// ModulusPoly is an immutable polynomial over a ModulusGF. Coefficients are
// stored from the highest degree term down to the constant term.
type ModulusPoly struct {
	field        *ModulusGF
	coefficients []int
}

// NewModulusPoly strips leading zero coefficients so that Degree is exact.
func NewModulusPoly(field *ModulusGF, coefficients []int) *ModulusPoly {
	if len(coefficients) == 0 {
		panic("ec: empty coefficients")
	}
	if len(coefficients) > 1 && coefficients[0] == 0 {
		firstNonZero := 1
		for firstNonZero < len(coefficients) && coefficients[firstNonZero] == 0 {
			firstNonZero++
		}
		if firstNonZero == len(coefficients) {
			coefficients = []int{0}
		} else {
			coefficients = append([]int(nil), coefficients[firstNonZero:]...)
		}
	}
	return &ModulusPoly{field: field, coefficients: coefficients}
}

// Coefficients returns the coefficients, highest degree first.
func (p *ModulusPoly) Coefficients() []int {
	return p.coefficients
}

func (p *ModulusPoly) Degree() int {
	return len(p.coefficients) - 1
}

func (p *ModulusPoly) IsZero() bool {
	return p.coefficients[0] == 0
}

// Coefficient returns the coefficient of the x^degree term.
func (p *ModulusPoly) Coefficient(degree int) int {
	return p.coefficients[len(p.coefficients)-1-degree]
}

// EvaluateAt evaluates the polynomial at a using Horner's rule.
func (p *ModulusPoly) EvaluateAt(a int) int {
	if a == 0 {
		return p.Coefficient(0)
	}
	if a == 1 {
		result := 0
		for _, c := range p.coefficients {
			result = p.field.Add(result, c)
		}
		return result
	}
	result := p.coefficients[0]
	for _, c := range p.coefficients[1:] {
		result = p.field.Add(p.field.Multiply(a, result), c)
	}
	return result
}

func (p *ModulusPoly) checkField(other *ModulusPoly) {
	if p.field != other.field {
		panic("ec: polynomials belong to different fields")
	}
}

func (p *ModulusPoly) Add(other *ModulusPoly) *ModulusPoly {
	p.checkField(other)
	if p.IsZero() {
		return other
	}
	if other.IsZero() {
		return p
	}
	smaller, larger := p.coefficients, other.coefficients
	if len(smaller) > len(larger) {
		smaller, larger = larger, smaller
	}
	sum := make([]int, len(larger))
	lengthDiff := len(larger) - len(smaller)
	copy(sum, larger[:lengthDiff])
	for i := lengthDiff; i < len(larger); i++ {
		sum[i] = p.field.Add(smaller[i-lengthDiff], larger[i])
	}
	return NewModulusPoly(p.field, sum)
}

func (p *ModulusPoly) Subtract(other *ModulusPoly) *ModulusPoly {
	p.checkField(other)
	if other.IsZero() {
		return p
	}
	return p.Add(other.Negative())
}

func (p *ModulusPoly) Multiply(other *ModulusPoly) *ModulusPoly {
	p.checkField(other)
	if p.IsZero() || other.IsZero() {
		return p.field.Zero()
	}
	product := make([]int, len(p.coefficients)+len(other.coefficients)-1)
	for i, a := range p.coefficients {
		for j, b := range other.coefficients {
			product[i+j] = p.field.Add(product[i+j], p.field.Multiply(a, b))
		}
	}
	return NewModulusPoly(p.field, product)
}

func (p *ModulusPoly) Negative() *ModulusPoly {
	negative := make([]int, len(p.coefficients))
	for i, c := range p.coefficients {
		negative[i] = p.field.Negate(c)
	}
	return NewModulusPoly(p.field, negative)
}

func (p *ModulusPoly) MultiplyScalar(scalar int) *ModulusPoly {
	if scalar == 0 {
		return p.field.Zero()
	}
	if scalar == 1 {
		return p
	}
	product := make([]int, len(p.coefficients))
	for i, c := range p.coefficients {
		product[i] = p.field.Multiply(c, scalar)
	}
	return NewModulusPoly(p.field, product)
}

// MultiplyByMonomial returns p * coefficient * x^degree.
func (p *ModulusPoly) MultiplyByMonomial(degree, coefficient int) *ModulusPoly {
	if degree < 0 {
		panic("ec: negative degree")
	}
	if coefficient == 0 {
		return p.field.Zero()
	}
	product := make([]int, len(p.coefficients)+degree)
	for i, c := range p.coefficients {
		product[i] = p.field.Multiply(c, coefficient)
	}
	return NewModulusPoly(p.field, product)
}

// Truncate drops every term of degree n or higher, returning p mod x^n.
func (p *ModulusPoly) Truncate(n int) *ModulusPoly {
	if p.Degree() < n {
		return p
	}
	return NewModulusPoly(p.field, append([]int(nil), p.coefficients[len(p.coefficients)-n:]...))
}

// Derivative returns the formal derivative of p.
func (p *ModulusPoly) Derivative() *ModulusPoly {
	degree := p.Degree()
	if degree < 1 {
		return p.field.Zero()
	}
	coefficients := make([]int, degree)
	for i := 1; i <= degree; i++ {
		coefficients[degree-i] = p.field.Multiply(i%p.field.Size(), p.Coefficient(i))
	}
	return NewModulusPoly(p.field, coefficients)
}

func (p *ModulusPoly) String() string {
	var sb strings.Builder
	for degree := p.Degree(); degree >= 0; degree-- {
		c := p.Coefficient(degree)
		if c == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(" + ")
		}
		if degree == 0 || c != 1 {
			fmt.Fprintf(&sb, "%d", c)
		}
		switch degree {
		case 0:
		case 1:
			sb.WriteString("x")
		default:
			fmt.Fprintf(&sb, "x^%d", degree)
		}
	}
	if sb.Len() == 0 {
		return "0"
	}
	return sb.String()
}
