// Package geom provides the 2D vector arithmetic used by the force
// simulation. Vector2D is a pure value type: every operation returns a new
// vector and no operation mutates its receiver.
package geom

import "math"

// Vector2D is an immutable 2D vector. The zero value is the origin.
type Vector2D struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// FromXY creates a vector from cartesian components.
func FromXY(x, y float64) Vector2D {
	return Vector2D{X: x, Y: y}
}

// FromTheta creates a unit vector pointing at angle radians.
func FromTheta(angle float64) Vector2D {
	return Vector2D{X: math.Cos(angle), Y: math.Sin(angle)}
}

// FromRTheta creates a vector of the given magnitude pointing at angle radians.
// This is the polar-form constructor used to turn a force magnitude and a
// cached bearing into a force vector.
func FromRTheta(radius, angle float64) Vector2D {
	return Vector2D{X: radius * math.Cos(angle), Y: radius * math.Sin(angle)}
}

// Add returns the component-wise sum of v and other.
func (v Vector2D) Add(other Vector2D) Vector2D {
	return Vector2D{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub returns the component-wise difference v - other.
func (v Vector2D) Sub(other Vector2D) Vector2D {
	return Vector2D{X: v.X - other.X, Y: v.Y - other.Y}
}

// Scale multiplies the vector by a scalar.
func (v Vector2D) Scale(factor float64) Vector2D {
	return Vector2D{X: v.X * factor, Y: v.Y * factor}
}

// Neg returns the vector pointing in the opposite direction.
func (v Vector2D) Neg() Vector2D {
	return v.Scale(-1)
}

// Dot returns the dot product of two vectors.
func (v Vector2D) Dot(other Vector2D) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Magnitude returns the Euclidean length of the vector.
func (v Vector2D) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// MagnitudeSquared returns the squared length, avoiding the square root when
// only comparisons are needed.
func (v Vector2D) MagnitudeSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Angle returns the bearing of the vector in radians via atan2(y, x).
// The result is in (-π, π]. For the zero vector it returns 0; callers must
// not attach meaning to the bearing of a zero-length vector.
func (v Vector2D) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// Normalize returns a unit vector in the same direction.
// The zero vector normalizes to the zero vector.
func (v Vector2D) Normalize() Vector2D {
	mag := v.Magnitude()
	if mag == 0 {
		return Vector2D{}
	}
	return v.Scale(1 / mag)
}

// Orthogonal returns the vector rotated 90° counter-clockwise.
func (v Vector2D) Orthogonal() Vector2D {
	return Vector2D{X: -v.Y, Y: v.X}
}

// Orthonormal returns a unit vector perpendicular to v.
func (v Vector2D) Orthonormal() Vector2D {
	return v.Orthogonal().Normalize()
}

// ProjectOn returns the projection of v onto other.
// Projecting onto the zero vector returns the zero vector.
func (v Vector2D) ProjectOn(other Vector2D) Vector2D {
	denom := other.Dot(other)
	if denom == 0 {
		return Vector2D{}
	}
	return other.Scale(v.Dot(other) / denom)
}

// Rotate returns the vector rotated by angle radians about the origin.
func (v Vector2D) Rotate(angle float64) Vector2D {
	sin, cos := math.Sincos(angle)
	return Vector2D{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

// RotateAround returns the vector rotated by angle radians about pivot.
func (v Vector2D) RotateAround(angle float64, pivot Vector2D) Vector2D {
	return v.Sub(pivot).Rotate(angle).Add(pivot)
}

// Distance returns the Euclidean distance between two points.
func (v Vector2D) Distance(other Vector2D) float64 {
	return v.Sub(other).Magnitude()
}

// Lerp linearly interpolates between start and end. t=0 yields start,
// t=1 yields end; t is not clamped.
func Lerp(start, end Vector2D, t float64) Vector2D {
	return start.Scale(1 - t).Add(end.Scale(t))
}
