package core

import "errors"

// Sentinel errors surfaced by the navigation core. Callers match them with
// errors.Is.
var (
	// ErrCartesianNavigation reports a map config whose navigation SRS is
	// cartesian, which the core cannot steer in.
	ErrCartesianNavigation = errors.New("navigation srs is cartesian")

	// ErrDynamicModeAtSolver reports that an unresolved dynamic geographic
	// mode reached per-tick motion, which expects azimuthal or free.
	ErrDynamicModeAtSolver = errors.New("dynamic geographic mode reached motion resolution")

	// ErrBadInertia reports an inertia factor outside [0, 1).
	ErrBadInertia = errors.New("inertia outside [0, 1)")

	// ErrOutsideDivision reports a navigation position covered by no
	// bisection division node.
	ErrOutsideDivision = errors.New("position outside space division")

	// ErrInvalidSurrogate reports a tile whose surrogate height is missing
	// or not finite.
	ErrInvalidSurrogate = errors.New("tile surrogate height invalid")

	// ErrUnknownSrs reports a reference to an SRS id absent from the map
	// configuration.
	ErrUnknownSrs = errors.New("unknown srs")
)
