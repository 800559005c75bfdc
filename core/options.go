package core

import "fmt"

// NavigationType selects how gesture targets are approached over ticks.
type NavigationType int

const (
	// NavigationTypeInstant jumps to the target in a single tick.
	NavigationTypeInstant NavigationType = iota
	// NavigationTypeQuick converges exponentially toward the target.
	NavigationTypeQuick
	// NavigationTypeFlyOver zooms out over long moves before descending.
	NavigationTypeFlyOver
)

func (t NavigationType) String() string {
	switch t {
	case NavigationTypeInstant:
		return "instant"
	case NavigationTypeQuick:
		return "quick"
	case NavigationTypeFlyOver:
		return "flyover"
	}
	return fmt.Sprintf("navigationtype(%d)", int(t))
}

// GeographicMode governs how horizontal motion behaves on a geographic SRS.
type GeographicMode int

const (
	// GeographicModeAzimuthal moves per-axis in lon/lat and keeps yaw fixed.
	GeographicModeAzimuthal GeographicMode = iota
	// GeographicModeFree travels along geodesics and lets yaw drift with
	// the local meridian.
	GeographicModeFree
	// GeographicModeDynamic behaves azimuthally near the equator and
	// switches to free near the poles.
	GeographicModeDynamic
)

func (m GeographicMode) String() string {
	switch m {
	case GeographicModeAzimuthal:
		return "azimuthal"
	case GeographicModeFree:
		return "free"
	case GeographicModeDynamic:
		return "dynamic"
	}
	return fmt.Sprintf("geographicmode(%d)", int(m))
}

// CameraInertia holds per-gesture inertia factors in [0, 1). Higher values
// keep more of the remaining distance after each ideal-rate tick.
type CameraInertia struct {
	Pan    float64
	Rotate float64
	Zoom   float64
}

// CameraSensitivity holds per-gesture multipliers applied to raw input.
type CameraSensitivity struct {
	Pan    float64
	Rotate float64
	Zoom   float64
}

// Options are the navigation tunables. Zero value is not usable; start from
// DefaultOptions.
type Options struct {
	CameraInertia     CameraInertia
	CameraSensitivity CameraSensitivity

	// PositionViewExtentMin and Max clamp the target view extent in
	// navigation SRS units.
	PositionViewExtentMin float64
	PositionViewExtentMax float64

	// NavigationSamplesPerViewExtent controls how deep terrain sampling
	// descends: a tile is refined while log2(samples * tile width / view
	// extent) is at least 3, that is while the view spans no more than
	// samples/8 tiles of that width.
	NavigationSamplesPerViewExtent float64

	// NavigationLatitudeThreshold is the absolute latitude in degrees at
	// which dynamic geographic mode switches from azimuthal to free.
	NavigationLatitudeThreshold float64

	GeographicNavMode GeographicMode
	NavigationType    NavigationType
}

// DefaultOptions returns the stock tunables.
func DefaultOptions() Options {
	return Options{
		CameraInertia: CameraInertia{
			Pan:    0.9,
			Rotate: 0.9,
			Zoom:   0.9,
		},
		CameraSensitivity: CameraSensitivity{
			Pan:    1,
			Rotate: 1,
			Zoom:   1,
		},
		PositionViewExtentMin:          75,
		PositionViewExtentMax:          1e7,
		NavigationSamplesPerViewExtent: 8,
		NavigationLatitudeThreshold:    80,
		GeographicNavMode:              GeographicModeDynamic,
		NavigationType:                 NavigationTypeQuick,
	}
}

// Validate reports the first configuration problem found.
func (o Options) Validate() error {
	check := func(name string, v float64) error {
		if v < 0 || v >= 1 {
			return fmt.Errorf("%w: %s inertia %v outside [0, 1)", ErrBadInertia, name, v)
		}
		return nil
	}
	if err := check("pan", o.CameraInertia.Pan); err != nil {
		return err
	}
	if err := check("rotate", o.CameraInertia.Rotate); err != nil {
		return err
	}
	if err := check("zoom", o.CameraInertia.Zoom); err != nil {
		return err
	}
	if o.PositionViewExtentMin <= 0 || o.PositionViewExtentMax < o.PositionViewExtentMin {
		return fmt.Errorf("view extent bounds [%v, %v] invalid",
			o.PositionViewExtentMin, o.PositionViewExtentMax)
	}
	if o.NavigationSamplesPerViewExtent <= 0 {
		return fmt.Errorf("samples per view extent must be positive, got %v",
			o.NavigationSamplesPerViewExtent)
	}
	return nil
}
