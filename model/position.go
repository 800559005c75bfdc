package model

// HeightMode indicates how the altitude component of a position is meant.
type HeightMode int

const (
	// HeightModeFixed means the altitude is absolute in the navigation SRS.
	HeightModeFixed HeightMode = iota
	// HeightModeFloating means the altitude was supplied relative to terrain
	// and must be re-grounded on the next navigation update.
	HeightModeFloating
)

// PositionType distinguishes the two camera conventions.
type PositionType int

const (
	// PositionObjective orbits a point of interest.
	PositionObjective PositionType = iota
	// PositionSubjective is first-person from the point itself.
	PositionSubjective
)

// Point2 is a 2D point in some SRS.
type Point2 struct {
	X float64
	Y float64
}

// Point3 is a 3D point in some SRS. For a projected navigation SRS the
// components are x/y/altitude; for a geographic one they are
// longitude/latitude/altitude.
type Point3 struct {
	X float64
	Y float64
	Z float64
}

// XY returns the horizontal components.
func (p Point3) XY() Point2 { return Point2{X: p.X, Y: p.Y} }

// Add returns p + other, component-wise.
func (p Point3) Add(other Point3) Point3 {
	return Point3{X: p.X + other.X, Y: p.Y + other.Y, Z: p.Z + other.Z}
}

// Sub returns p - other, component-wise.
func (p Point3) Sub(other Point3) Point3 {
	return Point3{X: p.X - other.X, Y: p.Y - other.Y, Z: p.Z - other.Z}
}

// Scale returns p scaled by s.
func (p Point3) Scale(s float64) Point3 {
	return Point3{X: p.X * s, Y: p.Y * s, Z: p.Z * s}
}

// Position is the persistent camera descriptor. It lives inside MapConfig and
// is mutated only by the navigation core (its tick and the
// subjective/objective conversion).
type Position struct {
	// Ground is the camera target point in the navigation SRS.
	Ground Point3
	// Orientation holds yaw/pitch/roll Euler angles, each in [0, 360).
	Orientation Point3
	// VerticalExtent is the vertical world-units visible at image center;
	// it stands in for the zoom level.
	VerticalExtent float64
	// VerticalFov is the vertical field of view in degrees.
	VerticalFov float64

	HeightMode HeightMode
	Type       PositionType
}
