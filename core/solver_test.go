package core

import (
	"math"
	"testing"

	"github.com/signalsfoundry/map-navigator/model"
)

func solverOpts() Options {
	o := DefaultOptions()
	o.CameraInertia = CameraInertia{Pan: 0.9, Rotate: 0.9, Zoom: 0.9}
	return o
}

func TestSolveInstantCoversEverything(t *testing.T) {
	o := solverOpts()
	out, err := Solve(&o, NavigationTypeInstant, SolverInput{
		Timestep:           1.0 / 60,
		HorizontalDistance: 1000,
		VerticalDistance:   -40,
		ViewExtent:         500,
		ViewExtentChange:   250,
		Rotation:           model.Point3{X: 10},
		RotationChange:     model.Point3{X: 30},
	})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if out.HorizontalMove != 1000 || out.VerticalMove != -40 {
		t.Errorf("moves = %v, %v", out.HorizontalMove, out.VerticalMove)
	}
	if out.ViewExtent != 750 {
		t.Errorf("extent = %v, want 750", out.ViewExtent)
	}
	if out.Rotation.X != 40 {
		t.Errorf("yaw = %v, want 40", out.Rotation.X)
	}
}

func TestSolveQuickIsPartial(t *testing.T) {
	o := solverOpts()
	out, err := Solve(&o, NavigationTypeQuick, SolverInput{
		Timestep:           1.0 / 60,
		HorizontalDistance: 1000,
		ViewExtent:         500,
		ViewExtentChange:   500,
	})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if out.HorizontalMove <= 0 || out.HorizontalMove >= 1000 {
		t.Errorf("horizontal move = %v, want a strict fraction of 1000", out.HorizontalMove)
	}
	if out.ViewExtent <= 500 || out.ViewExtent >= 1000 {
		t.Errorf("extent = %v, want strictly between 500 and 1000", out.ViewExtent)
	}
}

func TestSolveQuickTimestepInvariance(t *testing.T) {
	o := solverOpts()
	// One 1/30 s tick must cover the same ground as two 1/60 s ticks.
	big, _ := Solve(&o, NavigationTypeQuick, SolverInput{
		Timestep:           1.0 / 30,
		HorizontalDistance: 1000,
	})
	first, _ := Solve(&o, NavigationTypeQuick, SolverInput{
		Timestep:           1.0 / 60,
		HorizontalDistance: 1000,
	})
	second, _ := Solve(&o, NavigationTypeQuick, SolverInput{
		Timestep:           1.0 / 60,
		HorizontalDistance: 1000 - first.HorizontalMove,
	})
	small := first.HorizontalMove + second.HorizontalMove
	if math.Abs(big.HorizontalMove-small) > 1e-9 {
		t.Errorf("1/30 tick moved %v, two 1/60 ticks moved %v", big.HorizontalMove, small)
	}
}

func TestSolveQuickConverges(t *testing.T) {
	o := solverOpts()
	remaining := 1000.0
	extent := 500.0
	targetExtent := 100.0
	for i := 0; i < 2000; i++ {
		out, err := Solve(&o, NavigationTypeQuick, SolverInput{
			Timestep:           1.0 / 60,
			HorizontalDistance: remaining,
			ViewExtent:         extent,
			ViewExtentChange:   targetExtent - extent,
		})
		if err != nil {
			t.Fatalf("Solve: %v", err)
		}
		remaining -= out.HorizontalMove
		extent = out.ViewExtent
	}
	if remaining > 1e-6 {
		t.Errorf("horizontal distance did not converge, %v left", remaining)
	}
	if math.Abs(extent-targetExtent) > 1e-6 {
		t.Errorf("extent did not converge, at %v", extent)
	}
}

func TestSolveFlyOverWidensBeforeMoving(t *testing.T) {
	o := solverOpts()
	out, err := Solve(&o, NavigationTypeFlyOver, SolverInput{
		Timestep:           1.0 / 60,
		HorizontalDistance: 1e6,
		ViewExtent:         500,
		ViewExtentChange:   0,
	})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if out.ViewExtent <= 500 {
		t.Errorf("extent = %v, want widened beyond 500 for a long journey", out.ViewExtent)
	}
	quick, _ := Solve(&o, NavigationTypeQuick, SolverInput{
		Timestep:           1.0 / 60,
		HorizontalDistance: 1e6,
		ViewExtent:         500,
	})
	if out.HorizontalMove >= quick.HorizontalMove {
		t.Errorf("flyover moved %v, want damped below quick's %v",
			out.HorizontalMove, quick.HorizontalMove)
	}
}

func TestSolveFlyOverNearTargetMatchesQuick(t *testing.T) {
	o := solverOpts()
	in := SolverInput{
		Timestep:           1.0 / 60,
		HorizontalDistance: 10,
		ViewExtent:         500,
		ViewExtentChange:   0,
	}
	fly, _ := Solve(&o, NavigationTypeFlyOver, in)
	quick, _ := Solve(&o, NavigationTypeQuick, in)
	if math.Abs(fly.HorizontalMove-quick.HorizontalMove) > 1e-9 {
		t.Errorf("short journey: flyover %v vs quick %v", fly.HorizontalMove, quick.HorizontalMove)
	}
	if math.Abs(fly.ViewExtent-quick.ViewExtent) > 1e-9 {
		t.Errorf("short journey extent: flyover %v vs quick %v", fly.ViewExtent, quick.ViewExtent)
	}
}

func TestSolveZeroTimestepHoldsStill(t *testing.T) {
	o := solverOpts()
	out, err := Solve(&o, NavigationTypeQuick, SolverInput{
		Timestep:           0,
		HorizontalDistance: 1000,
		ViewExtent:         500,
		ViewExtentChange:   100,
		Rotation:           model.Point3{X: 5},
	})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if out.HorizontalMove != 0 || out.VerticalMove != 0 {
		t.Errorf("moved on a zero timestep: %+v", out)
	}
	if out.ViewExtent != 500 || out.Rotation.X != 5 {
		t.Errorf("state drifted on a zero timestep: %+v", out)
	}
}
