package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/signalsfoundry/map-navigator/core"
	"github.com/signalsfoundry/map-navigator/internal/config"
	"github.com/signalsfoundry/map-navigator/internal/logging"
	"github.com/signalsfoundry/map-navigator/internal/observability"
	"github.com/signalsfoundry/map-navigator/model"
	"github.com/signalsfoundry/map-navigator/tiles"
	"github.com/signalsfoundry/map-navigator/timectrl"
)

const tracerName = "github.com/signalsfoundry/map-navigator/cmd/navigator"

func main() {
	configPath := flag.String("config", "", "path to a navigator config file (JSON)")
	mapPath := flag.String("map", "", "map configuration path, overrides the config file")
	flyTo := flag.String("fly-to", "", "navigation coordinates \"x,y[,z]\" to fly to after startup")
	duration := flag.Duration("duration", 0, "stop after this long; 0 runs until interrupted")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Logging())
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	navCollector, err := observability.NewNavCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise navigation metrics", logging.String("error", err.Error()))
		os.Exit(1)
	}
	tileCollector, err := observability.NewTileCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise tile metrics", logging.String("error", err.Error()))
		os.Exit(1)
	}
	metricsSrv := serveMetrics(cfg.MetricsAddr, navCollector.Handler(), log)

	path := cfg.MapConfigPath
	if *mapPath != "" {
		path = *mapPath
	}
	mapCfg, err := readMapConfig(path)
	if err != nil {
		log.Error(ctx, "failed to load map config", logging.String("path", path), logging.String("error", err.Error()))
		os.Exit(1)
	}

	opts, err := cfg.Options()
	if err != nil {
		log.Error(ctx, "invalid navigation options", logging.String("error", err.Error()))
		os.Exit(1)
	}

	var roots []model.NodeInfo
	for _, node := range mapCfg.ReferenceFrame.Division.Nodes {
		if node.Partitioning == model.PartitioningBisection {
			roots = append(roots, node.Info())
		}
	}
	forest := tiles.NewForest(roots)

	source := &metricSource{
		inner:     &terrainSource{amplitude: 400, wavelength: 250000, maxLod: 18},
		collector: tileCollector,
	}
	loader := tiles.NewLoader(source, log, cfg.LoaderWorkers)
	loaderDone := make(chan error, 1)
	go func() { loaderDone <- loader.Run(ctx, forest.Hints()) }()

	nav, err := core.NewNavigationCore(mapCfg, opts, forest, log)
	if err != nil {
		log.Error(ctx, "failed to start navigation", logging.String("error", err.Error()))
		os.Exit(1)
	}

	if *flyTo != "" {
		target, err := parsePoint(*flyTo)
		if err != nil {
			log.Error(ctx, "bad fly-to target", logging.String("error", err.Error()))
			os.Exit(1)
		}
		nav.SetPoint(target, core.NavigationTypeFlyOver)
		log.Info(ctx, "flying to target",
			logging.Float64("x", target.X),
			logging.Float64("y", target.Y),
		)
	}

	loop := timectrl.NewTickLoop(cfg.TickInterval)
	tracer := otel.Tracer(tracerName)
	var ticks uint64
	loop.AddListener(func(dt float64) {
		start := time.Now()
		if err := nav.Tick(dt); err != nil {
			log.Error(ctx, "tick failed", logging.String("error", err.Error()))
			stop()
			return
		}
		navCollector.ObserveTick(time.Since(start))
		navCollector.ApplyStats(nav.Stats())
		navCollector.SetPosition(nav.Position())
		navCollector.SetHeightSampleLod(nav.HeightSampleLod())
		tileCollector.SetDroppedHints(forest.DroppedHints())
		tileCollector.SetPendingSamples(nav.PendingHeightSamples())

		ticks++
		if ticks%300 == 0 {
			spanCtx, span := tracer.Start(ctx, "navigator.tick_batch")
			span.SetAttributes(
				attribute.Int64("ticks", int64(ticks)),
				attribute.Float64("view_extent", nav.Position().VerticalExtent),
			)
			nav.LogState(spanCtx)
			span.End()
		}
	})

	log.Info(ctx, "navigator running",
		logging.String("map", path),
		logging.String("metrics_addr", cfg.MetricsAddr),
		logging.Any("tick_interval", cfg.TickInterval),
	)
	if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error(ctx, "tick loop exited", logging.String("error", err.Error()))
	}

	stop()
	if err := <-loaderDone; err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		log.Warn(context.Background(), "tile loader exited", logging.String("error", err.Error()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}

	stats := nav.Stats()
	log.Info(context.Background(), "navigator stopped",
		logging.Any("ticks", stats.Ticks),
		logging.Any("height_updates", stats.HeightUpdates),
	)
}

func readMapConfig(path string) (*model.MapConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return core.LoadMapConfig(f)
}

func parsePoint(s string) (model.Point3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 && len(parts) != 3 {
		return model.Point3{}, fmt.Errorf("want \"x,y\" or \"x,y,z\", got %q", s)
	}
	var p model.Point3
	coords := []*float64{&p.X, &p.Y, &p.Z}
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return model.Point3{}, fmt.Errorf("coordinate %d: %w", i, err)
		}
		*coords[i] = v
	}
	return p, nil
}

func serveMetrics(addr string, handler http.Handler, log logging.Logger) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.String("error", err.Error()))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}

// terrainSource synthesizes surrogate heights from a smooth wave field so the
// navigator can run without a tile backend.
type terrainSource struct {
	amplitude  float64
	wavelength float64
	maxLod     uint32
}

func (s *terrainSource) Fetch(_ context.Context, info model.NodeInfo) (tiles.TileData, error) {
	c := info.Extents.Center()
	h := s.amplitude *
		math.Sin(2*math.Pi*c.X/s.wavelength) *
		math.Cos(2*math.Pi*c.Y/s.wavelength)

	data := tiles.TileData{Surrogate: h, SurrogateOK: true}
	if info.ID.Lod < s.maxLod {
		children := info.ID.Children()
		data.Children = children[:]
	}
	return data, nil
}

// metricSource wraps a surrogate source with fetch instrumentation.
type metricSource struct {
	inner     tiles.SurrogateSource
	collector *observability.TileCollector
}

func (m *metricSource) Fetch(ctx context.Context, info model.NodeInfo) (tiles.TileData, error) {
	start := time.Now()
	data, err := m.inner.Fetch(ctx, info)
	m.collector.ObserveFetch(time.Since(start))
	if err != nil {
		m.collector.IncInvalidated()
	}
	return data, err
}
