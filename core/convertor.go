package core

import (
	"fmt"
	"math"

	"github.com/tidwall/geodesic"
	"github.com/wroge/wgs84"

	"github.com/signalsfoundry/map-navigator/model"
)

// Convertor moves points between the SRS of a map configuration and answers
// geodesic queries on the navigation ellipsoid. Geographic points are
// (longitude, latitude, altitude) in degrees and meters.
type Convertor interface {
	// Convert transforms p from the SRS fromID to the SRS toID.
	Convert(p model.Point3, fromID, toID string) (model.Point3, error)

	// NavToPhys transforms a navigation-SRS point to the physical SRS.
	NavToPhys(p model.Point3) (model.Point3, error)

	// PhysToNav transforms a physical-SRS point to the navigation SRS.
	PhysToNav(p model.Point3) (model.Point3, error)

	// GeoDirect travels distance meters from origin along initial azimuth
	// azi1 degrees and returns the destination and the forward azimuth
	// there. Altitude is carried over unchanged.
	GeoDirect(origin model.Point3, distance, azi1 float64) (model.Point3, float64)

	// GeoInverse solves the geodesic between a and b: distance in meters
	// and the forward azimuths at both endpoints, degrees clockwise from
	// north.
	GeoInverse(a, b model.Point3) (distance, azi1, azi2 float64)

	// GeoArcDist returns the central angle between a and b in degrees.
	GeoArcDist(a, b model.Point3) float64
}

type epsgConvertor struct {
	cfg  *model.MapConfig
	repo *wgs84.Repository
}

// NewConvertor builds a Convertor over the SRS declared by the map
// configuration.
func NewConvertor(cfg *model.MapConfig) Convertor {
	return &epsgConvertor{cfg: cfg, repo: wgs84.EPSG()}
}

func (c *epsgConvertor) Convert(p model.Point3, fromID, toID string) (model.Point3, error) {
	if fromID == toID {
		return p, nil
	}
	from, err := c.cfg.SrsByID(fromID)
	if err != nil {
		return model.Point3{}, fmt.Errorf("%w: %q", ErrUnknownSrs, fromID)
	}
	to, err := c.cfg.SrsByID(toID)
	if err != nil {
		return model.Point3{}, fmt.Errorf("%w: %q", ErrUnknownSrs, toID)
	}
	if from.EpsgCode == to.EpsgCode {
		return p, nil
	}
	f := c.repo.Transform(from.EpsgCode, to.EpsgCode)
	if f == nil {
		return model.Point3{}, fmt.Errorf("no transformation from epsg %d to epsg %d",
			from.EpsgCode, to.EpsgCode)
	}
	x, y, z := f(p.X, p.Y, p.Z)
	return model.Point3{X: x, Y: y, Z: z}, nil
}

func (c *epsgConvertor) NavToPhys(p model.Point3) (model.Point3, error) {
	m := c.cfg.ReferenceFrame.Model
	return c.Convert(p, m.NavigationSrs, m.PhysicalSrs)
}

func (c *epsgConvertor) PhysToNav(p model.Point3) (model.Point3, error) {
	m := c.cfg.ReferenceFrame.Model
	return c.Convert(p, m.PhysicalSrs, m.NavigationSrs)
}

func (c *epsgConvertor) GeoDirect(origin model.Point3, distance, azi1 float64) (model.Point3, float64) {
	var lat2, lon2, azi2 float64
	geodesic.WGS84.Direct(origin.Y, origin.X, azi1, distance, &lat2, &lon2, &azi2)
	return model.Point3{X: lon2, Y: lat2, Z: origin.Z}, azi2
}

func (c *epsgConvertor) GeoInverse(a, b model.Point3) (distance, azi1, azi2 float64) {
	geodesic.WGS84.Inverse(a.Y, a.X, b.Y, b.X, &distance, &azi1, &azi2)
	return distance, azi1, azi2
}

func (c *epsgConvertor) GeoArcDist(a, b model.Point3) float64 {
	la1 := degToRad(a.Y)
	la2 := degToRad(b.Y)
	dla := degToRad(b.Y - a.Y)
	dlo := degToRad(b.X - a.X)
	sa := math.Sin(dla / 2)
	so := math.Sin(dlo / 2)
	h := sa*sa + math.Cos(la1)*math.Cos(la2)*so*so
	return radToDeg(2 * math.Asin(math.Min(1, math.Sqrt(h))))
}
