package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TileCollector exposes Prometheus metrics for the tile hierarchy and its
// surrogate loader.
type TileCollector struct {
	gatherer prometheus.Gatherer

	SurrogateFetchDuration prometheus.Histogram
	NodesInvalidated       prometheus.Counter
	HintsDropped           prometheus.Counter
	PendingHeightSamples   prometheus.Gauge

	lastDropped uint64
}

// NewTileCollector registers tile metrics against the provided registerer.
func NewTileCollector(reg prometheus.Registerer) (*TileCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	fetchHistogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tile_surrogate_fetch_duration_seconds",
		Help:    "Duration of surrogate metadata fetches performed by the tile loader.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})
	fetchHistogram, err := registerHistogram(reg, fetchHistogram, "tile_surrogate_fetch_duration_seconds")
	if err != nil {
		return nil, err
	}

	invalidated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tile_nodes_invalidated_total",
		Help: "Cumulative number of tile nodes resolved as invalid after a failed fetch.",
	})
	invalidated, err = registerCounter(reg, invalidated, "tile_nodes_invalidated_total")
	if err != nil {
		return nil, err
	}

	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tile_hints_dropped_total",
		Help: "Cumulative number of load hints dropped because the hint queue was full.",
	})
	dropped, err = registerCounter(reg, dropped, "tile_hints_dropped_total")
	if err != nil {
		return nil, err
	}

	pending := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tile_pending_height_samples",
		Help: "Number of height sample requests currently waiting on tile data.",
	})
	pending, err = registerGauge(reg, pending, "tile_pending_height_samples")
	if err != nil {
		return nil, err
	}

	return &TileCollector{
		gatherer:               gatherer,
		SurrogateFetchDuration: fetchHistogram,
		NodesInvalidated:       invalidated,
		HintsDropped:           dropped,
		PendingHeightSamples:   pending,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *TileCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// ObserveFetch records a surrogate fetch duration measurement.
func (c *TileCollector) ObserveFetch(d time.Duration) {
	if c == nil || c.SurrogateFetchDuration == nil {
		return
	}
	c.SurrogateFetchDuration.Observe(d.Seconds())
}

// IncInvalidated increments the invalidated node counter.
func (c *TileCollector) IncInvalidated() {
	if c == nil || c.NodesInvalidated == nil {
		return
	}
	c.NodesInvalidated.Inc()
}

// SetDroppedHints advances the dropped hint counter to match a cumulative
// total read from the tile forest. Not safe for concurrent use.
func (c *TileCollector) SetDroppedHints(total uint64) {
	if c == nil || c.HintsDropped == nil {
		return
	}
	if total > c.lastDropped {
		c.HintsDropped.Add(float64(total - c.lastDropped))
		c.lastDropped = total
	}
}

// SetPendingSamples updates the pending height sample gauge.
func (c *TileCollector) SetPendingSamples(count int) {
	if c == nil || c.PendingHeightSamples == nil {
		return
	}
	c.PendingHeightSamples.Set(float64(count))
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}
