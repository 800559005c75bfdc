package model

// SrsType classifies a spatial reference system.
type SrsType int

const (
	SrsTypeUnknown SrsType = iota
	// SrsTypeProjected is a planar SRS (e.g. pseudo-mercator).
	SrsTypeProjected
	// SrsTypeGeographic is lon/lat on an ellipsoid.
	SrsTypeGeographic
	// SrsTypeCartesian is earth-centered earth-fixed.
	SrsTypeCartesian
)

// PeriodicityAxis names the axis a projected SRS wraps on.
type PeriodicityAxis int

const (
	PeriodicityX PeriodicityAxis = iota
	PeriodicityY
)

// Periodicity declares that a projected SRS repeats along one axis with the
// given period.
type Periodicity struct {
	Axis   PeriodicityAxis
	Period float64
}

// Srs describes one spatial reference system of the map configuration.
type Srs struct {
	ID   string
	Type SrsType
	// EpsgCode identifies the system for coordinate transformation.
	EpsgCode int
	// Periodicity is nil for non-periodic systems.
	Periodicity *Periodicity
}
