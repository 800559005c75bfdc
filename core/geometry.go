package core

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/signalsfoundry/map-navigator/model"
)

// Length2 returns the Euclidean length of a planar vector.
func Length2(p model.Point2) float64 {
	return math.Hypot(p.X, p.Y)
}

// Lerp interpolates linearly between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Axis indices for RotationMatrix.
const (
	AxisX = 0
	AxisY = 1
	AxisZ = 2
)

// RotationMatrix builds the 3x3 rotation matrix about the given axis by
// angleDeg degrees, right-handed.
func RotationMatrix(axis int, angleDeg float64) *mat.Dense {
	s, c := math.Sincos(degToRad(angleDeg))
	switch axis {
	case AxisX:
		return mat.NewDense(3, 3, []float64{
			1, 0, 0,
			0, c, -s,
			0, s, c,
		})
	case AxisY:
		return mat.NewDense(3, 3, []float64{
			c, 0, s,
			0, 1, 0,
			-s, 0, c,
		})
	default:
		return mat.NewDense(3, 3, []float64{
			c, -s, 0,
			s, c, 0,
			0, 0, 1,
		})
	}
}

// MulPoint applies a 3x3 matrix to a point treated as a column vector.
func MulPoint(m *mat.Dense, p model.Point3) model.Point3 {
	var out mat.VecDense
	out.MulVec(m, mat.NewVecDense(3, []float64{p.X, p.Y, p.Z}))
	return model.Point3{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}
