package core

import (
	"math"

	"github.com/signalsfoundry/map-navigator/model"
)

// Clamp limits v to the interval [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Modulo returns a mod m with a non-negative result for positive m.
func Modulo(a, m float64) float64 {
	r := math.Mod(a, m)
	if r < 0 {
		r += m
	}
	return r
}

// NormalizeAngle wraps an angle in degrees into [0, 360).
func NormalizeAngle(a float64) float64 {
	return Modulo(a, 360)
}

// AngularDiff returns the shortest signed rotation, in degrees, that takes
// angle a onto angle b. The result lies in [-180, 180).
func AngularDiff(a, b float64) float64 {
	return Modulo(b-a+180, 360) - 180
}

// AngularDiff3 applies AngularDiff component-wise to two Euler triples.
func AngularDiff3(a, b model.Point3) model.Point3 {
	return model.Point3{
		X: AngularDiff(a.X, b.X),
		Y: AngularDiff(a.Y, b.Y),
		Z: AngularDiff(a.Z, b.Z),
	}
}

// NormalizeOrientation wraps every component of an Euler triple into [0, 360).
func NormalizeOrientation(r model.Point3) model.Point3 {
	return model.Point3{
		X: NormalizeAngle(r.X),
		Y: NormalizeAngle(r.Y),
		Z: NormalizeAngle(r.Z),
	}
}

func degToRad(d float64) float64 { return d * math.Pi / 180 }

func radToDeg(r float64) float64 { return r * 180 / math.Pi }
