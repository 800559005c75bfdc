package core

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/map-navigator/model"
)

// SolverInput describes the remaining distance to the navigation targets at
// the start of a tick. Distances are in navigation SRS units, the timestep in
// seconds.
type SolverInput struct {
	Timestep           float64
	HorizontalDistance float64
	VerticalDistance   float64
	ViewExtent         float64
	ViewExtentChange   float64
	Rotation           model.Point3
	RotationChange     model.Point3
}

// SolverOutput is how far the tick actually travels.
type SolverOutput struct {
	ViewExtent     float64
	HorizontalMove float64
	VerticalMove   float64
	Rotation       model.Point3
}

// Solve turns remaining distances into this tick's motion. Inertia factors
// are normalized to a 60 Hz reference, so a given inertia feels the same at
// any tick rate.
func Solve(opts *Options, typ NavigationType, in SolverInput) (SolverOutput, error) {
	if in.Timestep <= 0 {
		return SolverOutput{
			ViewExtent: in.ViewExtent,
			Rotation:   in.Rotation,
		}, nil
	}
	switch typ {
	case NavigationTypeInstant:
		return SolverOutput{
			ViewExtent:     in.ViewExtent + in.ViewExtentChange,
			HorizontalMove: in.HorizontalDistance,
			VerticalMove:   in.VerticalDistance,
			Rotation:       in.Rotation.Add(in.RotationChange),
		}, nil
	case NavigationTypeQuick:
		return solveQuick(opts, in), nil
	case NavigationTypeFlyOver:
		return solveFlyOver(opts, in), nil
	}
	return SolverOutput{}, fmt.Errorf("navigation type %v has no motion rule", typ)
}

// closure is the fraction of remaining distance covered this tick for the
// given inertia.
func closure(inertia, timestep float64) float64 {
	return 1 - math.Pow(inertia, 60*timestep)
}

// approachExtent moves the view extent toward target by fraction f in log
// space, so zooming covers orders of magnitude at a steady perceptual rate.
func approachExtent(current, target, f float64) float64 {
	if current <= 0 || target <= 0 {
		return Lerp(current, target, f)
	}
	return current * math.Pow(target/current, f)
}

func solveQuick(opts *Options, in SolverInput) SolverOutput {
	fPan := closure(opts.CameraInertia.Pan, in.Timestep)
	fZoom := closure(opts.CameraInertia.Zoom, in.Timestep)
	fRotate := closure(opts.CameraInertia.Rotate, in.Timestep)

	target := in.ViewExtent + in.ViewExtentChange
	return SolverOutput{
		ViewExtent:     approachExtent(in.ViewExtent, target, fZoom),
		HorizontalMove: in.HorizontalDistance * fPan,
		VerticalMove:   in.VerticalDistance * fPan,
		Rotation:       in.Rotation.Add(in.RotationChange.Scale(fRotate)),
	}
}

// solveFlyOver first widens the view until the whole remaining journey fits,
// then translates, and finally lets the shrinking journey pull the extent
// back down to its target.
func solveFlyOver(opts *Options, in SolverInput) SolverOutput {
	fPan := closure(opts.CameraInertia.Pan, in.Timestep)
	fZoom := closure(opts.CameraInertia.Zoom, in.Timestep)
	fRotate := closure(opts.CameraInertia.Rotate, in.Timestep)

	target := in.ViewExtent + in.ViewExtentChange
	needed := math.Max(target, in.HorizontalDistance*0.5)
	extent := approachExtent(in.ViewExtent, needed, fZoom)

	progress := 1.0
	if needed > 0 && extent < needed {
		progress = extent / needed
	}
	return SolverOutput{
		ViewExtent:     extent,
		HorizontalMove: in.HorizontalDistance * fPan * progress,
		VerticalMove:   in.VerticalDistance * fPan * progress,
		Rotation:       in.Rotation.Add(in.RotationChange.Scale(fRotate * progress)),
	}
}
