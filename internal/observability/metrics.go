package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/signalsfoundry/map-navigator/core"
	"github.com/signalsfoundry/map-navigator/model"
)

// NavCollector bundles Prometheus metrics for a navigation session and
// provides a ready-to-mount /metrics handler.
type NavCollector struct {
	gatherer prometheus.Gatherer

	Gestures     *prometheus.CounterVec
	Ticks        prometheus.Counter
	TickDuration prometheus.Histogram

	HeightUpdates prometheus.Counter
	PansRejected  prometheus.Counter

	ViewExtent      prometheus.Gauge
	GroundPosition  *prometheus.GaugeVec
	HeightSampleLod prometheus.Gauge

	last core.Stats
}

// NewNavCollector registers navigation Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry when nil.
func NewNavCollector(reg prometheus.Registerer) (*NavCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	gestures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nav_gestures_total",
		Help: "Total number of applied camera gestures, labeled by kind.",
	}, []string{"kind"})
	gestures, err := registerCounterVec(reg, gestures, "nav_gestures_total")
	if err != nil {
		return nil, err
	}

	ticks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nav_ticks_total",
		Help: "Cumulative number of navigation ticks.",
	})
	ticks, err = registerCounter(reg, ticks, "nav_ticks_total")
	if err != nil {
		return nil, err
	}

	tickDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "nav_tick_duration_seconds",
		Help:    "Wall time spent inside a single navigation tick.",
		Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05},
	})
	tickDuration, err = registerHistogram(reg, tickDuration, "nav_tick_duration_seconds")
	if err != nil {
		return nil, err
	}

	heightUpdates := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nav_height_updates_total",
		Help: "Cumulative number of terrain height samples applied to the target.",
	})
	heightUpdates, err = registerCounter(reg, heightUpdates, "nav_height_updates_total")
	if err != nil {
		return nil, err
	}

	pansRejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "nav_pans_rejected_total",
		Help: "Cumulative number of pan gestures rejected for exceeding the arc limit.",
	})
	pansRejected, err = registerCounter(reg, pansRejected, "nav_pans_rejected_total")
	if err != nil {
		return nil, err
	}

	viewExtent, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "nav_view_extent_meters",
		Help: "Current vertical view extent of the camera.",
	}), "nav_view_extent_meters")
	if err != nil {
		return nil, err
	}

	ground := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "nav_ground_position",
		Help: "Current ground point of the camera in navigation coordinates, labeled by axis.",
	}, []string{"axis"})
	ground, err = registerGaugeVec(reg, ground, "nav_ground_position")
	if err != nil {
		return nil, err
	}

	sampleLod, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "nav_height_sample_lod",
		Help: "Level of detail of the most recent terrain height sample.",
	}), "nav_height_sample_lod")
	if err != nil {
		return nil, err
	}

	return &NavCollector{
		gatherer:        gatherer,
		Gestures:        gestures,
		Ticks:           ticks,
		TickDuration:    tickDuration,
		HeightUpdates:   heightUpdates,
		PansRejected:    pansRejected,
		ViewExtent:      viewExtent,
		GroundPosition:  ground,
		HeightSampleLod: sampleLod,
	}, nil
}

// ApplyStats advances the counters to match a navigation core statistics
// snapshot. Snapshots are cumulative, so only the delta since the previous
// call is added. Not safe for concurrent use; call it from the tick loop.
func (c *NavCollector) ApplyStats(s core.Stats) {
	if c == nil {
		return
	}
	c.Ticks.Add(float64(s.Ticks - c.last.Ticks))
	c.HeightUpdates.Add(float64(s.HeightUpdates - c.last.HeightUpdates))
	c.PansRejected.Add(float64(s.PansRejected - c.last.PansRejected))
	c.Gestures.WithLabelValues("pan").Add(float64(s.Pans - c.last.Pans))
	c.Gestures.WithLabelValues("rotate").Add(float64(s.Rotates - c.last.Rotates))
	c.Gestures.WithLabelValues("zoom").Add(float64(s.Zooms - c.last.Zooms))
	c.last = s
}

// ObserveTick records the wall time of one navigation tick.
func (c *NavCollector) ObserveTick(d time.Duration) {
	if c == nil || c.TickDuration == nil {
		return
	}
	c.TickDuration.Observe(d.Seconds())
}

// SetPosition updates the position gauges from the current camera state.
func (c *NavCollector) SetPosition(pos model.Position) {
	if c == nil {
		return
	}
	if c.ViewExtent != nil {
		c.ViewExtent.Set(pos.VerticalExtent)
	}
	if c.GroundPosition != nil {
		c.GroundPosition.WithLabelValues("x").Set(pos.Ground.X)
		c.GroundPosition.WithLabelValues("y").Set(pos.Ground.Y)
		c.GroundPosition.WithLabelValues("z").Set(pos.Ground.Z)
	}
}

// SetHeightSampleLod records the level of detail of the latest terrain
// sample.
func (c *NavCollector) SetHeightSampleLod(lod uint32) {
	if c == nil || c.HeightSampleLod == nil {
		return
	}
	c.HeightSampleLod.Set(float64(lod))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *NavCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
