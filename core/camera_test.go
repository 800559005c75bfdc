package core

import (
	"math"
	"testing"

	"github.com/signalsfoundry/map-navigator/model"
)

// cameraCore builds a navigation core whose physical SRS equals its
// navigation SRS, so camera poses come out in navigation coordinates and can
// be checked exactly.
func cameraCore(t *testing.T, geographic bool) *NavigationCore {
	t.Helper()
	var cfg *model.MapConfig
	if geographic {
		cfg = geographicMapConfig()
		cfg.ReferenceFrame.Model.PhysicalSrs = "geographic"
	} else {
		cfg = projectedMapConfig()
		cfg.ReferenceFrame.Model.PhysicalSrs = "mercator"
	}
	nc, _ := newCore(t, cfg, DefaultOptions())
	return nc
}

func almostEqual3(a, b model.Point3, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

func TestProjectedPoseLookingStraightDown(t *testing.T) {
	nc := cameraCore(t, false)
	nc.pos.Ground = model.Point3{X: 10, Y: 20, Z: 5}
	nc.pos.Orientation = model.Point3{X: 0, Y: 270, Z: 0}

	pose, err := nc.PositionToCamera()
	if err != nil {
		t.Fatalf("PositionToCamera: %v", err)
	}
	if !almostEqual3(pose.Center, model.Point3{X: 10, Y: 20, Z: 5}, 1e-9) {
		t.Errorf("center = %+v", pose.Center)
	}
	if !almostEqual3(pose.Dir, model.Point3{Z: -1}, 1e-9) {
		t.Errorf("dir = %+v, want straight down", pose.Dir)
	}
	if !almostEqual3(pose.Up, model.Point3{Y: 1}, 1e-9) {
		t.Errorf("up = %+v, want north", pose.Up)
	}
}

func TestProjectedPoseYawTurnsUpVector(t *testing.T) {
	nc := cameraCore(t, false)
	nc.pos.Orientation = model.Point3{X: 90, Y: 270, Z: 0}

	pose, err := nc.PositionToCamera()
	if err != nil {
		t.Fatalf("PositionToCamera: %v", err)
	}
	if !almostEqual3(pose.Dir, model.Point3{Z: -1}, 1e-9) {
		t.Errorf("dir = %+v, want still straight down", pose.Dir)
	}
	if !almostEqual3(pose.Up, model.Point3{X: 1}, 1e-9) {
		t.Errorf("up = %+v, want east after a 90 degree yaw", pose.Up)
	}
}

func TestProjectedPoseShallowPitchApproachesHorizon(t *testing.T) {
	nc := cameraCore(t, false)
	nc.pos.Orientation = model.Point3{X: 0, Y: 350, Z: 0}

	pose, err := nc.PositionToCamera()
	if err != nil {
		t.Fatalf("PositionToCamera: %v", err)
	}
	if pose.Dir.Y < 0.9 || pose.Dir.Z >= 0 {
		t.Errorf("dir = %+v, want mostly north and slightly down", pose.Dir)
	}
	if pose.Up.Z < 0.9 {
		t.Errorf("up = %+v, want mostly skyward", pose.Up)
	}
}

func TestGeographicPoseUsesLocalFrame(t *testing.T) {
	nc := cameraCore(t, true)
	nc.pos.Ground = model.Point3{X: 0, Y: 0, Z: 0}
	nc.pos.Orientation = model.Point3{X: 0, Y: 270, Z: 0}

	pose, err := nc.PositionToCamera()
	if err != nil {
		t.Fatalf("PositionToCamera: %v", err)
	}
	if pose.Dir.Z > -0.99 {
		t.Errorf("dir = %+v, want down in the local frame", pose.Dir)
	}
	if pose.Up.Y < 0.99 {
		t.Errorf("up = %+v, want north in the local frame", pose.Up)
	}
}

func TestGeographicPoseYawIsMirrored(t *testing.T) {
	nc := cameraCore(t, true)
	nc.pos.Ground = model.Point3{X: 0, Y: 0, Z: 0}
	nc.pos.Orientation = model.Point3{X: 90, Y: 270, Z: 0}

	pose, err := nc.PositionToCamera()
	if err != nil {
		t.Fatalf("PositionToCamera: %v", err)
	}
	if pose.Dir.Z > -0.99 {
		t.Errorf("dir = %+v, want still straight down", pose.Dir)
	}
	// The NED basis takes the opposite yaw sign from the projected axis
	// swap, so the same 90 degree yaw that heads east there heads west here.
	if pose.Up.X > -0.99 {
		t.Errorf("up = %+v, want west in the local frame", pose.Up)
	}
}

func TestConvertSubjObjRoundTrip(t *testing.T) {
	nc := cameraCore(t, false)
	nc.pos.Ground = model.Point3{X: 10, Y: 20, Z: 5}
	nc.pos.Orientation = model.Point3{X: 30, Y: 300, Z: 0}
	original := *nc.pos

	if err := nc.ConvertSubjObj(); err != nil {
		t.Fatalf("ConvertSubjObj: %v", err)
	}
	if nc.pos.Type != model.PositionSubjective {
		t.Fatalf("type = %v after first conversion", nc.pos.Type)
	}
	if almostEqual3(nc.pos.Ground, original.Ground, 1e-6) {
		t.Fatal("conversion left the ground point in place")
	}

	if err := nc.ConvertSubjObj(); err != nil {
		t.Fatalf("ConvertSubjObj: %v", err)
	}
	if nc.pos.Type != model.PositionObjective {
		t.Fatalf("type = %v after round trip", nc.pos.Type)
	}
	if !almostEqual3(nc.pos.Ground, original.Ground, 1e-6) {
		t.Errorf("round trip moved the ground point: %+v vs %+v",
			nc.pos.Ground, original.Ground)
	}
}

func TestObjectiveDistanceMatchesGeometry(t *testing.T) {
	nc := cameraCore(t, false)
	nc.pos.VerticalExtent = 1600
	nc.pos.VerticalFov = 45

	want := 800 / math.Tan(degToRad(22.5))
	if got := nc.ObjectiveDistance(); math.Abs(got-want) > 1e-9 {
		t.Errorf("objective distance = %v, want %v", got, want)
	}
}
