package core

import (
	"context"
	"fmt"
	"math"

	"github.com/signalsfoundry/map-navigator/internal/logging"
	"github.com/signalsfoundry/map-navigator/model"
)

// panRejectArcDeg is how far, in arc degrees, a single pan may throw the
// target before it is discarded as a numerical artifact of the pole or the
// antimeridian.
const panRejectArcDeg = 150

// pitchMin and pitchMax bound the camera pitch, in normalized degrees.
// 270 looks straight down, 360 would look at the horizon.
const (
	pitchMin = 270
	pitchMax = 350
)

// NavigationCore owns the camera of one map session. Gestures adjust targets;
// Tick moves the position toward them and keeps it glued to terrain through
// the height resolver. None of it is safe for concurrent use; the host
// serializes gestures and ticks.
type NavigationCore struct {
	cfg    *model.MapConfig
	opts   Options
	conv   Convertor
	height *HeightResolver
	logger logging.Logger

	pos     *model.Position
	srsType model.SrsType

	targetGround     model.Point3
	targetViewExtent float64
	changeRotation   model.Point3
	autoRotation     float64

	geoMode GeographicMode
	navType NavigationType

	stats Stats
}

// Stats is a snapshot of navigation activity counters.
type Stats struct {
	Ticks         uint64
	Pans          uint64
	Rotates       uint64
	Zooms         uint64
	HeightUpdates uint64
	PansRejected  uint64
}

// NewNavigationCore builds a navigation session over a loaded map
// configuration and its tile tree. The configuration's position is adopted as
// the starting state and mutated in place by Tick.
func NewNavigationCore(cfg *model.MapConfig, opts Options, tree TileTree, logger logging.Logger) (*NavigationCore, error) {
	if logger == nil {
		logger = logging.Noop()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	navSrs, err := cfg.NavigationSrs()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownSrs, err)
	}
	switch navSrs.Type {
	case model.SrsTypeProjected, model.SrsTypeGeographic:
	case model.SrsTypeCartesian:
		return nil, ErrCartesianNavigation
	default:
		return nil, fmt.Errorf("navigation srs %q has unknown type", navSrs.ID)
	}

	nc := &NavigationCore{
		cfg:     cfg,
		opts:    opts,
		conv:    NewConvertor(cfg),
		logger:  logger,
		pos:     &cfg.Position,
		srsType: navSrs.Type,
		navType: opts.NavigationType,
	}
	nc.height = NewHeightResolver(cfg, &nc.opts, nc.conv, tree, logger)

	nc.pos.Orientation = NormalizeOrientation(nc.pos.Orientation)
	nc.targetGround = nc.pos.Ground
	nc.targetViewExtent = nc.pos.VerticalExtent
	nc.autoRotation = cfg.BrowserOptions.Autorotate
	nc.geoMode = resetGeographicMode(opts.GeographicNavMode)
	return nc, nil
}

func resetGeographicMode(configured GeographicMode) GeographicMode {
	if configured == GeographicModeDynamic {
		return GeographicModeAzimuthal
	}
	return configured
}

// Position returns a copy of the current camera position.
func (nc *NavigationCore) Position() model.Position { return *nc.pos }

// TargetGround returns the point the camera is traveling toward.
func (nc *NavigationCore) TargetGround() model.Point3 { return nc.targetGround }

// GeographicMode returns the currently effective geographic navigation mode.
func (nc *NavigationCore) GeographicMode() GeographicMode { return nc.geoMode }

// Stats returns a snapshot of the activity counters.
func (nc *NavigationCore) Stats() Stats { return nc.stats }

// PendingHeightSamples reports how many terrain samples are waiting on tile
// data.
func (nc *NavigationCore) PendingHeightSamples() int { return nc.height.Pending() }

// HeightSampleLod is the level of detail the last terrain sample was taken at.
func (nc *NavigationCore) HeightSampleLod() uint32 { return nc.height.LastLod() }

// ObjectiveDistance is the distance between the camera eye and the ground
// target implied by the view extent and field of view.
func (nc *NavigationCore) ObjectiveDistance() float64 {
	return nc.pos.VerticalExtent * 0.5 / math.Tan(degToRad(nc.pos.VerticalFov*0.5))
}

// Pan moves the ground target by a screen-space drag. Value x/y are in
// normalized screen units, z adjusts height.
func (nc *NavigationCore) Pan(value model.Point3) {
	nc.stats.Pans++

	h := 1.0
	if nc.srsType == model.SrsTypeGeographic && nc.geoMode == GeographicModeAzimuthal {
		h = math.Cos(degToRad(nc.pos.Ground.Y))
	}
	v := nc.pos.VerticalExtent / 800
	sens := nc.opts.CameraSensitivity.Pan
	move := model.Point3{
		X: -value.X * 2 * v * h * sens,
		Y: value.Y * 2 * v * sens,
		Z: value.Z * 2 * sens,
	}

	// Align the drag with the camera heading.
	azi := nc.pos.Orientation.X
	if nc.srsType == model.SrsTypeGeographic && nc.geoMode == GeographicModeFree {
		_, a1, a2 := nc.conv.GeoInverse(nc.pos.Ground, nc.targetGround)
		azi += a2 - a1
	}
	move = MulPoint(RotationMatrix(AxisZ, -azi), move)

	switch nc.srsType {
	case model.SrsTypeProjected:
		nc.targetGround = nc.targetGround.Add(move)
	case model.SrsTypeGeographic:
		ang := radToDeg(math.Atan2(move.X, move.Y))
		dist := Length2(move.XY())
		p, _ := nc.conv.GeoDirect(nc.targetGround, dist, ang)
		p.Z = nc.targetGround.Z + move.Z
		if nc.acceptGeographicPan(p) {
			nc.targetGround = p
		} else {
			nc.stats.PansRejected++
		}
	}

	nc.autoRotation = 0
	nc.navType = nc.opts.NavigationType
}

// acceptGeographicPan discards pans whose longitude or arc jump exceeds the
// rejection threshold, as happens when a drag crosses very near a pole.
func (nc *NavigationCore) acceptGeographicPan(p model.Point3) bool {
	switch nc.geoMode {
	case GeographicModeAzimuthal:
		return math.Abs(AngularDiff(nc.pos.Ground.X, p.X)) < panRejectArcDeg
	case GeographicModeFree:
		return nc.conv.GeoArcDist(nc.pos.Ground, p) < panRejectArcDeg
	}
	return true
}

// Rotate adds a screen-space rotation gesture to the pending orientation
// change. Value x/y/z map to yaw/pitch/roll.
func (nc *NavigationCore) Rotate(value model.Point3) {
	nc.stats.Rotates++
	sens := nc.opts.CameraSensitivity.Rotate
	nc.changeRotation = nc.changeRotation.Add(model.Point3{
		X: value.X * 0.2 * sens,
		Y: -value.Y * 0.1 * sens,
		Z: value.Z * 0.2 * sens,
	})
	if nc.srsType == model.SrsTypeGeographic &&
		nc.opts.GeographicNavMode == GeographicModeDynamic {
		nc.geoMode = GeographicModeFree
	}
	nc.autoRotation = 0
	nc.navType = nc.opts.NavigationType
}

// Zoom scales the target view extent; positive values zoom in.
func (nc *NavigationCore) Zoom(value float64) {
	nc.stats.Zooms++
	nc.targetViewExtent *= math.Pow(1.001, -value*nc.opts.CameraSensitivity.Zoom)
	nc.autoRotation = 0
	nc.navType = nc.opts.NavigationType
}

// SetPoint retargets the camera at an exact navigation-SRS point.
func (nc *NavigationCore) SetPoint(p model.Point3, typ NavigationType) {
	nc.targetGround = p
	nc.navType = typ
	if typ == NavigationTypeInstant {
		nc.height.Clear()
	}
}

// SetRotation steers the orientation toward the given Euler angles along the
// shortest rotations.
func (nc *NavigationCore) SetRotation(euler model.Point3, typ NavigationType) {
	nc.changeRotation = AngularDiff3(nc.pos.Orientation, euler)
	nc.navType = typ
}

// SetViewExtent retargets the zoom level.
func (nc *NavigationCore) SetViewExtent(extent float64, typ NavigationType) {
	nc.targetViewExtent = extent
	nc.navType = typ
}

// ResetAltitude re-grounds the camera: the target height becomes terrain
// height plus offset once the terrain sample under the camera completes.
func (nc *NavigationCore) ResetAltitude(offset float64) {
	nc.targetGround.Z = 0
	nc.height.Reset(nc.pos.Ground.XY(), offset, nc.pos.VerticalExtent)
}

// ResetGeographicMode drops a free mode forced by gestures back to the
// configured one.
func (nc *NavigationCore) ResetGeographicMode() {
	nc.geoMode = resetGeographicMode(nc.opts.GeographicNavMode)
}

// Tick advances the camera by timestep seconds.
func (nc *NavigationCore) Tick(timestep float64) error {
	nc.stats.Ticks++
	pos := nc.pos

	// Terrain samples land on the target height, never directly on the
	// position, so the motion below stays smooth.
	if up, ok := nc.height.Step(); ok {
		nc.stats.HeightUpdates++
		if up.Absolute {
			nc.targetGround.Z = up.Value
		} else {
			nc.targetGround.Z += up.Value
		}
	}

	if pos.HeightMode == model.HeightModeFloating {
		pos.HeightMode = model.HeightModeFixed
		nc.ResetAltitude(pos.Ground.Z)
	}

	nc.targetViewExtent = Clamp(nc.targetViewExtent,
		nc.opts.PositionViewExtentMin, nc.opts.PositionViewExtentMax)

	latThreshold := nc.opts.NavigationLatitudeThreshold - 1e-5
	if nc.srsType == model.SrsTypeGeographic {
		if nc.opts.GeographicNavMode == GeographicModeDynamic {
			if math.Abs(nc.targetGround.Y) > latThreshold {
				nc.geoMode = GeographicModeFree
			} else {
				nc.geoMode = GeographicModeAzimuthal
			}
		}
		if nc.geoMode == GeographicModeAzimuthal {
			nc.targetGround.Y = Clamp(nc.targetGround.Y, -latThreshold, latThreshold)
		}
		if nc.geoMode == GeographicModeDynamic {
			return ErrDynamicModeAtSolver
		}
	}

	nc.changeRotation.X += nc.autoRotation

	var horizontal, azi1 float64
	switch nc.srsType {
	case model.SrsTypeProjected:
		horizontal = Length2(nc.targetGround.Sub(pos.Ground).XY())
	case model.SrsTypeGeographic:
		horizontal, azi1, _ = nc.conv.GeoInverse(pos.Ground, nc.targetGround)
	}
	vertical := nc.targetGround.Z - pos.Ground.Z

	out, err := Solve(&nc.opts, nc.navType, SolverInput{
		Timestep:           timestep,
		HorizontalDistance: horizontal,
		VerticalDistance:   vertical,
		ViewExtent:         pos.VerticalExtent,
		ViewExtentChange:   nc.targetViewExtent - pos.VerticalExtent,
		Rotation:           pos.Orientation,
		RotationChange:     nc.changeRotation,
	})
	if err != nil {
		return err
	}

	pos.VerticalExtent = out.ViewExtent
	pos.Ground.Z += out.VerticalMove
	nc.changeRotation = nc.changeRotation.Sub(out.Rotation.Sub(pos.Orientation))
	pos.Orientation = out.Rotation

	if horizontal > 0 {
		ratio := out.HorizontalMove / horizontal
		switch {
		case nc.srsType == model.SrsTypeProjected:
			delta := nc.targetGround.Sub(pos.Ground)
			pos.Ground.X += delta.X * ratio
			pos.Ground.Y += delta.Y * ratio
		case nc.geoMode == GeographicModeFree:
			p, azi2 := nc.conv.GeoDirect(pos.Ground, out.HorizontalMove, azi1)
			pos.Ground.X = p.X
			pos.Ground.Y = p.Y
			pos.Orientation.X += azi2 - azi1
		default:
			pos.Ground.X += AngularDiff(pos.Ground.X, nc.targetGround.X) * ratio
			pos.Ground.Y += AngularDiff(pos.Ground.Y, nc.targetGround.Y) * ratio
		}
	}

	nc.wrapPeriodic()

	pos.Orientation = NormalizeOrientation(pos.Orientation)
	pos.Orientation.Y = Clamp(pos.Orientation.Y, pitchMin, pitchMax)

	nc.height.Enqueue(pos.Ground.XY(), pos.VerticalExtent)
	return nil
}

// wrapPeriodic folds the position back into the primary period of the
// navigation SRS and drags the target along so the remaining journey is
// unchanged.
func (nc *NavigationCore) wrapPeriodic() {
	pos := nc.pos
	before := pos.Ground

	switch nc.srsType {
	case model.SrsTypeProjected:
		srs, err := nc.cfg.NavigationSrs()
		if err != nil || srs.Periodicity == nil {
			return
		}
		period := srs.Periodicity.Period
		switch srs.Periodicity.Axis {
		case model.PeriodicityX:
			pos.Ground.X = Modulo(pos.Ground.X+period/2, period) - period/2
		case model.PeriodicityY:
			pos.Ground.Y = Modulo(pos.Ground.Y+period/2, period) - period/2
		}
	case model.SrsTypeGeographic:
		pos.Ground.X = Modulo(pos.Ground.X+180, 360) - 180
	}

	nc.targetGround = nc.targetGround.Add(pos.Ground.Sub(before))
}

// LogState emits the current navigation state at debug level.
func (nc *NavigationCore) LogState(ctx context.Context) {
	nc.logger.Debug(ctx, "navigation state",
		logging.Float64("x", nc.pos.Ground.X),
		logging.Float64("y", nc.pos.Ground.Y),
		logging.Float64("z", nc.pos.Ground.Z),
		logging.Float64("view_extent", nc.pos.VerticalExtent),
		logging.Float64("yaw", nc.pos.Orientation.X),
		logging.String("mode", nc.geoMode.String()),
		logging.String("type", nc.navType.String()),
	)
}
