package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/signalsfoundry/map-navigator/core"
	"github.com/signalsfoundry/map-navigator/model"
)

func TestApplyStatsAddsDeltas(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewNavCollector(reg)
	if err != nil {
		t.Fatalf("NewNavCollector: %v", err)
	}

	collector.ApplyStats(core.Stats{Ticks: 10, Pans: 3, Rotates: 1, HeightUpdates: 2})
	collector.ApplyStats(core.Stats{Ticks: 25, Pans: 4, Rotates: 1, Zooms: 2, HeightUpdates: 2, PansRejected: 1})

	if got := testutil.ToFloat64(collector.Ticks); got != 25 {
		t.Fatalf("nav_ticks_total = %v, want 25", got)
	}
	if got := testutil.ToFloat64(collector.Gestures.WithLabelValues("pan")); got != 4 {
		t.Fatalf("pan gestures = %v, want 4", got)
	}
	if got := testutil.ToFloat64(collector.Gestures.WithLabelValues("zoom")); got != 2 {
		t.Fatalf("zoom gestures = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.PansRejected); got != 1 {
		t.Fatalf("nav_pans_rejected_total = %v, want 1", got)
	}
}

func TestMetricsHandlerExposesNavigationMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewNavCollector(reg)
	if err != nil {
		t.Fatalf("NewNavCollector: %v", err)
	}
	collector.ApplyStats(core.Stats{Ticks: 1, Pans: 1})
	collector.ObserveTick(2 * time.Millisecond)
	collector.SetPosition(model.Position{
		Ground:         model.Point3{X: 14.4, Y: 50.0, Z: 230},
		VerticalExtent: 1600,
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"nav_gestures_total",
		"nav_ticks_total",
		"nav_tick_duration_seconds",
		"nav_view_extent_meters",
		"nav_ground_position",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output", metric)
		}
	}
	if !strings.Contains(body, "1600") {
		t.Fatalf("/metrics output missing view extent value: %s", body)
	}
}

func TestTileCollectorDroppedHintsAreMonotonic(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewTileCollector(reg)
	if err != nil {
		t.Fatalf("NewTileCollector: %v", err)
	}

	collector.SetDroppedHints(3)
	collector.SetDroppedHints(5)
	collector.SetDroppedHints(5)

	if got := testutil.ToFloat64(collector.HintsDropped); got != 5 {
		t.Fatalf("tile_hints_dropped_total = %v, want 5", got)
	}
}

func TestTileCollectorObservesFetches(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewTileCollector(reg)
	if err != nil {
		t.Fatalf("NewTileCollector: %v", err)
	}
	collector.ObserveFetch(8 * time.Millisecond)
	collector.IncInvalidated()
	collector.SetPendingSamples(2)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	var sampleCount uint64
	for _, mf := range metrics {
		if mf.GetName() != "tile_surrogate_fetch_duration_seconds" {
			continue
		}
		for _, m := range mf.Metric {
			if m.GetHistogram() != nil {
				sampleCount = m.GetHistogram().GetSampleCount()
			}
		}
	}
	if sampleCount != 1 {
		t.Fatalf("fetch histogram sample_count = %d, want 1", sampleCount)
	}
	if got := testutil.ToFloat64(collector.NodesInvalidated); got != 1 {
		t.Fatalf("tile_nodes_invalidated_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.PendingHeightSamples); got != 2 {
		t.Fatalf("tile_pending_height_samples = %v, want 2", got)
	}
}

func TestRegisterTwiceReturnsExistingCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewNavCollector(reg)
	if err != nil {
		t.Fatalf("NewNavCollector: %v", err)
	}
	second, err := NewNavCollector(reg)
	if err != nil {
		t.Fatalf("NewNavCollector again: %v", err)
	}
	if first.Ticks != second.Ticks {
		t.Fatal("second registration did not reuse the existing ticks counter")
	}
}
