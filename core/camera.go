package core

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/map-navigator/model"
)

// CameraPose is the physical-SRS view of the current position: the looked-at
// center plus unit forward and up vectors.
type CameraPose struct {
	Center model.Point3
	Dir    model.Point3
	Up     model.Point3
}

func toR3(p model.Point3) r3.Vec   { return r3.Vec{X: p.X, Y: p.Y, Z: p.Z} }
func fromR3(v r3.Vec) model.Point3 { return model.Point3{X: v.X, Y: v.Y, Z: v.Z} }

// PositionToCamera derives the physical-SRS camera pose from the navigation
// position.
func (nc *NavigationCore) PositionToCamera() (CameraPose, error) {
	pos := nc.pos

	// Yaw 0 heads north, pitch 270 looks straight down, roll spins about
	// the view axis. The geographic pose builds on a proper NED basis and
	// takes the opposite yaw sign from the projected axis swap.
	yaw := pos.Orientation.X
	if nc.srsType == model.SrsTypeGeographic {
		yaw = -yaw
	}
	var rot mat.Dense
	rot.Mul(RotationMatrix(AxisZ, yaw), RotationMatrix(AxisY, pos.Orientation.Y))
	rot.Mul(&rot, RotationMatrix(AxisX, pos.Orientation.Z))

	dir := MulPoint(&rot, model.Point3{X: 1})
	up := MulPoint(&rot, model.Point3{Z: -1})

	switch nc.srsType {
	case model.SrsTypeProjected:
		return nc.projectedPose(dir, up)
	case model.SrsTypeGeographic:
		return nc.geographicPose(dir, up)
	}
	return CameraPose{}, ErrCartesianNavigation
}

func (nc *NavigationCore) projectedPose(dir, up model.Point3) (CameraPose, error) {
	// The rotation above works in a north-up right-handed frame; projected
	// SRS have x east, y north, z up.
	dir = model.Point3{X: dir.Y, Y: dir.X, Z: -dir.Z}
	up = model.Point3{X: up.Y, Y: up.X, Z: -up.Z}

	center, err := nc.conv.NavToPhys(nc.pos.Ground)
	if err != nil {
		return CameraPose{}, err
	}
	physDir, err := nc.conv.NavToPhys(nc.pos.Ground.Add(dir))
	if err != nil {
		return CameraPose{}, err
	}
	physUp, err := nc.conv.NavToPhys(nc.pos.Ground.Add(up))
	if err != nil {
		return CameraPose{}, err
	}
	return CameraPose{
		Center: center,
		Dir:    fromR3(r3.Unit(toR3(physDir.Sub(center)))),
		Up:     fromR3(r3.Unit(toR3(physUp.Sub(center)))),
	}, nil
}

// geographicPose anchors the rotated vectors in the local north-east-down
// frame of the position, probed from two short geodesics.
func (nc *NavigationCore) geographicPose(dir, up model.Point3) (CameraPose, error) {
	const probe = 100 // meters

	center, err := nc.conv.NavToPhys(nc.pos.Ground)
	if err != nil {
		return CameraPose{}, err
	}
	northNav, _ := nc.conv.GeoDirect(nc.pos.Ground, probe, 0)
	eastNav, _ := nc.conv.GeoDirect(nc.pos.Ground, probe, 90)
	north, err := nc.conv.NavToPhys(northNav)
	if err != nil {
		return CameraPose{}, err
	}
	east, err := nc.conv.NavToPhys(eastNav)
	if err != nil {
		return CameraPose{}, err
	}

	n := r3.Unit(toR3(north.Sub(center)))
	e := r3.Unit(toR3(east.Sub(center)))
	d := r3.Unit(r3.Cross(n, e))
	e = r3.Unit(r3.Cross(d, n))

	ned := mat.NewDense(3, 3, []float64{
		n.X, e.X, d.X,
		n.Y, e.Y, d.Y,
		n.Z, e.Z, d.Z,
	})
	return CameraPose{
		Center: center,
		Dir:    fromR3(r3.Unit(toR3(MulPoint(ned, dir)))),
		Up:     fromR3(r3.Unit(toR3(MulPoint(ned, up)))),
	}, nil
}

// ConvertSubjObj switches the position between the objective and subjective
// conventions, sliding the ground point along the view direction so the
// rendered image does not change. Calling it twice restores the original.
func (nc *NavigationCore) ConvertSubjObj() error {
	pose, err := nc.PositionToCamera()
	if err != nil {
		return err
	}
	dist := nc.ObjectiveDistance()
	if nc.pos.Type == model.PositionObjective {
		dist = -dist
	}
	center := pose.Center.Add(pose.Dir.Scale(dist))
	ground, err := nc.conv.PhysToNav(center)
	if err != nil {
		return err
	}
	nc.targetGround = nc.targetGround.Add(ground.Sub(nc.pos.Ground))
	nc.pos.Ground = ground
	if nc.pos.Type == model.PositionObjective {
		nc.pos.Type = model.PositionSubjective
	} else {
		nc.pos.Type = model.PositionObjective
	}
	return nil
}
