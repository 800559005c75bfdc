package core

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/signalsfoundry/map-navigator/model"
)

// Unexported JSON shapes so the wire format can evolve independently of the
// model types.
type mapConfigJSON struct {
	ReferenceFrame referenceFrameJSON `json:"reference_frame"`
	Srses          []srsJSON          `json:"srses"`
	Position       positionJSON       `json:"position"`
	Browser        browserJSON        `json:"browser_options"`
}

type referenceFrameJSON struct {
	ID            string             `json:"id"`
	PhysicalSrs   string             `json:"physical_srs"`
	NavigationSrs string             `json:"navigation_srs"`
	PublicSrs     string             `json:"public_srs"`
	Division      []divisionNodeJSON `json:"division"`
}

type divisionNodeJSON struct {
	Lod          uint32     `json:"lod"`
	X            uint32     `json:"x"`
	Y            uint32     `json:"y"`
	Srs          string     `json:"srs"`
	Extents      [4]float64 `json:"extents"` // llx, lly, urx, ury
	Partitioning string     `json:"partitioning"`
}

type srsJSON struct {
	ID          string           `json:"id"`
	Type        string           `json:"type"` // projected | geographic | cartesian
	EpsgCode    int              `json:"epsg"`
	Periodicity *periodicityJSON `json:"periodicity"`
}

type periodicityJSON struct {
	Axis   string  `json:"axis"` // x | y
	Period float64 `json:"period"`
}

type positionJSON struct {
	Ground         point3JSON `json:"ground"`
	Orientation    point3JSON `json:"orientation"`
	VerticalExtent float64    `json:"vertical_extent"`
	VerticalFov    float64    `json:"vertical_fov"`
	HeightMode     string     `json:"height_mode"` // fixed | floating
	Type           string     `json:"type"`        // objective | subjective
}

type point3JSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type browserJSON struct {
	Autorotate float64 `json:"autorotate"`
}

// LoadMapConfig reads a map configuration from r and resolves it into model
// form. It fails on malformed JSON, on an SRS without an id, on an empty
// division, and on physical, navigation or division-node SRS references that
// are not declared; the public SRS reference is not checked. Semantic
// problems beyond that surface when the navigation core starts.
func LoadMapConfig(r io.Reader) (*model.MapConfig, error) {
	var payload mapConfigJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode map config: %w", err)
	}

	cfg := &model.MapConfig{
		Srs: make(map[string]model.Srs, len(payload.Srses)),
	}

	for _, js := range payload.Srses {
		if js.ID == "" {
			return nil, fmt.Errorf("srs with empty id")
		}
		srs := model.Srs{
			ID:       js.ID,
			Type:     srsTypeFromString(js.Type),
			EpsgCode: js.EpsgCode,
		}
		if js.Periodicity != nil {
			axis := model.PeriodicityX
			if strings.EqualFold(js.Periodicity.Axis, "y") {
				axis = model.PeriodicityY
			}
			srs.Periodicity = &model.Periodicity{Axis: axis, Period: js.Periodicity.Period}
		}
		cfg.Srs[js.ID] = srs
	}

	rf := payload.ReferenceFrame
	cfg.ReferenceFrame.ID = rf.ID
	cfg.ReferenceFrame.Model = model.ReferenceFrameModel{
		PhysicalSrs:   rf.PhysicalSrs,
		NavigationSrs: rf.NavigationSrs,
		PublicSrs:     rf.PublicSrs,
	}
	for _, name := range []string{rf.PhysicalSrs, rf.NavigationSrs} {
		if _, ok := cfg.Srs[name]; !ok {
			return nil, fmt.Errorf("reference frame uses undeclared srs %q", name)
		}
	}

	if len(rf.Division) == 0 {
		return nil, fmt.Errorf("reference frame has no division nodes")
	}
	for _, jn := range rf.Division {
		if _, ok := cfg.Srs[jn.Srs]; !ok {
			return nil, fmt.Errorf("division node %d-%d-%d uses undeclared srs %q",
				jn.Lod, jn.X, jn.Y, jn.Srs)
		}
		cfg.ReferenceFrame.Division.Nodes = append(cfg.ReferenceFrame.Division.Nodes,
			model.DivisionNode{
				ID:  model.TileId{Lod: jn.Lod, X: jn.X, Y: jn.Y},
				Srs: jn.Srs,
				Extents: model.Extents2{
					LL: model.Point2{X: jn.Extents[0], Y: jn.Extents[1]},
					UR: model.Point2{X: jn.Extents[2], Y: jn.Extents[3]},
				},
				Partitioning: partitioningFromString(jn.Partitioning),
			})
	}

	pos := payload.Position
	cfg.Position = model.Position{
		Ground:         model.Point3{X: pos.Ground.X, Y: pos.Ground.Y, Z: pos.Ground.Z},
		Orientation:    model.Point3{X: pos.Orientation.X, Y: pos.Orientation.Y, Z: pos.Orientation.Z},
		VerticalExtent: pos.VerticalExtent,
		VerticalFov:    pos.VerticalFov,
		HeightMode:     heightModeFromString(pos.HeightMode),
		Type:           positionTypeFromString(pos.Type),
	}
	cfg.BrowserOptions.Autorotate = payload.Browser.Autorotate

	return cfg, nil
}

func srsTypeFromString(s string) model.SrsType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "projected":
		return model.SrsTypeProjected
	case "geographic":
		return model.SrsTypeGeographic
	case "cartesian":
		return model.SrsTypeCartesian
	default:
		return model.SrsTypeUnknown
	}
}

func partitioningFromString(s string) model.PartitioningMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "manual":
		return model.PartitioningManual
	case "bisection", "":
		// Division roots subdivide by bisection unless declared otherwise.
		return model.PartitioningBisection
	default:
		return model.PartitioningModeUnknown
	}
}

func heightModeFromString(s string) model.HeightMode {
	if strings.EqualFold(strings.TrimSpace(s), "floating") {
		return model.HeightModeFloating
	}
	return model.HeightModeFixed
}

func positionTypeFromString(s string) model.PositionType {
	if strings.EqualFold(strings.TrimSpace(s), "subjective") {
		return model.PositionSubjective
	}
	return model.PositionObjective
}
