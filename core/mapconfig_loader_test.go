package core

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/signalsfoundry/map-navigator/model"
)

const sampleMapConfig = `{
	"reference_frame": {
		"id": "pseudomerc",
		"physical_srs": "physical",
		"navigation_srs": "mercator",
		"public_srs": "geographic",
		"division": [
			{
				"lod": 0, "x": 0, "y": 0,
				"srs": "mercator",
				"extents": [-20037508.34, -20037508.34, 20037508.34, 20037508.34],
				"partitioning": "bisection"
			}
		]
	},
	"srses": [
		{"id": "physical", "type": "cartesian", "epsg": 4978},
		{"id": "geographic", "type": "geographic", "epsg": 4326},
		{
			"id": "mercator", "type": "projected", "epsg": 3857,
			"periodicity": {"axis": "x", "period": 40075016.68}
		}
	],
	"position": {
		"ground": {"x": 1604896.5, "y": 6461371.7, "z": 0},
		"orientation": {"x": 0, "y": 270, "z": 0},
		"vertical_extent": 25000,
		"vertical_fov": 45,
		"height_mode": "floating",
		"type": "objective"
	},
	"browser_options": {"autorotate": 0.1}
}`

func TestLoadMapConfig(t *testing.T) {
	cfg, err := LoadMapConfig(strings.NewReader(sampleMapConfig))
	if err != nil {
		t.Fatalf("LoadMapConfig: %v", err)
	}

	if cfg.ReferenceFrame.Model.NavigationSrs != "mercator" {
		t.Errorf("navigation srs = %q", cfg.ReferenceFrame.Model.NavigationSrs)
	}
	if got := cfg.NavigationSrsType(); got != model.SrsTypeProjected {
		t.Errorf("navigation srs type = %v, want projected", got)
	}

	merc, err := cfg.SrsByID("mercator")
	if err != nil {
		t.Fatalf("SrsByID: %v", err)
	}
	if merc.EpsgCode != 3857 {
		t.Errorf("mercator epsg = %d", merc.EpsgCode)
	}
	if merc.Periodicity == nil || merc.Periodicity.Axis != model.PeriodicityX {
		t.Errorf("mercator periodicity = %+v, want x-axis", merc.Periodicity)
	}

	wantNodes := []model.DivisionNode{{
		ID:  model.TileId{Lod: 0, X: 0, Y: 0},
		Srs: "mercator",
		Extents: model.Extents2{
			LL: model.Point2{X: -20037508.34, Y: -20037508.34},
			UR: model.Point2{X: 20037508.34, Y: 20037508.34},
		},
		Partitioning: model.PartitioningBisection,
	}}
	if diff := cmp.Diff(wantNodes, cfg.ReferenceFrame.Division.Nodes); diff != "" {
		t.Errorf("division nodes mismatch (-want +got):\n%s", diff)
	}

	if cfg.Position.HeightMode != model.HeightModeFloating {
		t.Errorf("height mode = %v, want floating", cfg.Position.HeightMode)
	}
	if cfg.Position.Type != model.PositionObjective {
		t.Errorf("position type = %v, want objective", cfg.Position.Type)
	}
	if cfg.Position.VerticalExtent != 25000 {
		t.Errorf("vertical extent = %v", cfg.Position.VerticalExtent)
	}
	if cfg.BrowserOptions.Autorotate != 0.1 {
		t.Errorf("autorotate = %v", cfg.BrowserOptions.Autorotate)
	}
}

func TestLoadMapConfigRejectsDanglingSrs(t *testing.T) {
	body := strings.Replace(sampleMapConfig, `"navigation_srs": "mercator"`,
		`"navigation_srs": "missing"`, 1)
	if _, err := LoadMapConfig(strings.NewReader(body)); err == nil {
		t.Fatal("expected an error for an undeclared navigation srs")
	}
}

func TestLoadMapConfigRejectsEmptyDivision(t *testing.T) {
	const body = `{
		"reference_frame": {
			"id": "rf",
			"physical_srs": "geographic",
			"navigation_srs": "geographic",
			"division": []
		},
		"srses": [{"id": "geographic", "type": "geographic", "epsg": 4326}]
	}`
	if _, err := LoadMapConfig(strings.NewReader(body)); err == nil {
		t.Fatal("expected an error for an empty division")
	}
}

func TestLoadMapConfigRejectsMalformedJSON(t *testing.T) {
	if _, err := LoadMapConfig(strings.NewReader("{")); err == nil {
		t.Fatal("expected a decode error")
	}
}
