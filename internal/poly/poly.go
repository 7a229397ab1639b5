// Package poly provides dense polynomial arithmetic over the scalar
// field, coefficients in ascending order. Shared by proof generation and
// erasure recovery.
package poly

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/availproject/avail-core-go/grid"
)

// DomainPoints returns the n evaluation-domain elements in natural order;
// the point of column c is the c-th entry.
func DomainPoints(n int) ([]fr.Element, error) {
	d, err := grid.NewDomain(n)
	if err != nil {
		return nil, err
	}
	out := make([]fr.Element, n)
	out[0].SetOne()
	for i := 1; i < n; i++ {
		out[i].Mul(&out[i-1], &d.Generator)
	}
	return out, nil
}

// DomainPointAt returns the col-th element of the size-n domain.
func DomainPointAt(n int, col int) (fr.Element, error) {
	d, err := grid.NewDomain(n)
	if err != nil {
		return fr.Element{}, err
	}
	var p fr.Element
	p.Exp(d.Generator, big.NewInt(int64(col)))
	return p, nil
}

// Eval evaluates p at x by Horner's rule.
func Eval(p []fr.Element, x fr.Element) fr.Element {
	var acc fr.Element
	for i := len(p) - 1; i >= 0; i-- {
		acc.Mul(&acc, &x)
		acc.Add(&acc, &p[i])
	}
	return acc
}

// Vanishing expands the product of (X - p) over the given points; the
// result is monic of length len(points)+1.
func Vanishing(points []fr.Element) []fr.Element {
	coeffs := make([]fr.Element, 1, len(points)+1)
	coeffs[0].SetOne()
	for _, p := range points {
		next := make([]fr.Element, len(coeffs)+1)
		var neg fr.Element
		neg.Neg(&p)
		for i := range coeffs {
			var t fr.Element
			t.Mul(&coeffs[i], &neg)
			next[i].Add(&next[i], &t)
			next[i+1].Add(&next[i+1], &coeffs[i])
		}
		coeffs = next
	}
	return coeffs
}

// DivideByLinear returns p / (X - z); exact when p(z) == 0.
func DivideByLinear(p []fr.Element, z fr.Element) []fr.Element {
	n := len(p) - 1
	if n <= 0 {
		return nil
	}
	q := make([]fr.Element, n)
	q[n-1] = p[n]
	for i := n - 1; i >= 1; i-- {
		var t fr.Element
		t.Mul(&z, &q[i])
		q[i-1].Add(&t, &p[i])
	}
	return q
}

// Interpolate returns the polynomial of length len(points) matching evals
// at points. Points must be pairwise distinct.
func Interpolate(points, evals []fr.Element) []fr.Element {
	z := Vanishing(points)
	out := make([]fr.Element, len(points))
	for i := range points {
		num := DivideByLinear(z, points[i])
		den := Eval(num, points[i])
		var scale fr.Element
		scale.Inverse(&den)
		scale.Mul(&scale, &evals[i])
		for j := range num {
			var t fr.Element
			t.Mul(&num[j], &scale)
			out[j].Add(&out[j], &t)
		}
	}
	return out
}

// Div divides num by a monic divisor, returning quotient and remainder.
func Div(num, div []fr.Element) (quot, rem []fr.Element) {
	rem = make([]fr.Element, len(num))
	copy(rem, num)
	if len(num) < len(div) {
		return nil, rem
	}
	quot = make([]fr.Element, len(num)-len(div)+1)
	for i := len(quot) - 1; i >= 0; i-- {
		c := rem[i+len(div)-1]
		quot[i] = c
		if c.IsZero() {
			continue
		}
		for j := range div {
			var t fr.Element
			t.Mul(&c, &div[j])
			rem[i+j].Sub(&rem[i+j], &t)
		}
	}
	return quot, rem[:len(div)-1]
}

// Powers returns [1, g, g^2, ...] of length n.
func Powers(g fr.Element, n int) []fr.Element {
	out := make([]fr.Element, n)
	if n == 0 {
		return out
	}
	out[0].SetOne()
	for i := 1; i < n; i++ {
		out[i].Mul(&out[i-1], &g)
	}
	return out
}
