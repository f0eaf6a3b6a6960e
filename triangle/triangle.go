// Package triangle classifies triangles by the lengths of their sides.
package triangle

import "errors"

// Kind is the classification of a valid triangle.
type Kind string

const (
	Equilateral Kind = "equilateral" // all sides equal
	Isosceles   Kind = "isosceles"   // exactly two sides equal
	Scalene     Kind = "scalene"     // no sides equal
)

// ErrInvalidTriangle is returned for side lengths that cannot form a
// triangle: a side that is not positive, or one longer than the other two
// combined. Degenerate triangles (a == b+c) are accepted.
var ErrInvalidTriangle = errors.New("triangle: invalid side lengths")

// Classify returns the Kind of the triangle with sides a, b and c.
func Classify(a, b, c int) (Kind, error) {
	if a <= 0 || b <= 0 || c <= 0 {
		return "", ErrInvalidTriangle
	}
	if a > b+c || b > a+c || c > a+b {
		return "", ErrInvalidTriangle
	}

	switch {
	case a == b && b == c:
		return Equilateral, nil
	case a == b || b == c || a == c:
		return Isosceles, nil
	default:
		return Scalene, nil
	}
}
