package tiles

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/signalsfoundry/map-navigator/internal/logging"
	"github.com/signalsfoundry/map-navigator/model"
)

// TileData is what a source knows about one tile: its representative height
// (SurrogateOK reports whether the tile carries one) and which direct
// children exist.
type TileData struct {
	Surrogate   float64
	SurrogateOK bool
	Children    []model.TileId
}

// SurrogateSource fetches tile metadata, typically over the network.
type SurrogateSource interface {
	Fetch(ctx context.Context, info model.NodeInfo) (TileData, error)
}

// Loader drains the hint queues of one or more stores and resolves their
// nodes from a source. Fetch failures invalidate the node rather than abort
// the loader.
type Loader struct {
	source      SurrogateSource
	logger      logging.Logger
	concurrency int
}

// NewLoader builds a loader running at most concurrency fetches at once.
func NewLoader(source SurrogateSource, logger logging.Logger, concurrency int) *Loader {
	if logger == nil {
		logger = logging.Noop()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Loader{source: source, logger: logger, concurrency: concurrency}
}

// Run serves a hint queue until the context is cancelled. It returns the
// context's error after in-flight fetches drain.
func (l *Loader) Run(ctx context.Context, hints <-chan *Node) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for {
		select {
		case <-ctx.Done():
			if err := g.Wait(); err != nil {
				return err
			}
			return ctx.Err()
		case n := <-hints:
			g.Go(func() error {
				l.resolve(gctx, n)
				return nil
			})
		}
	}
}

func (l *Loader) resolve(ctx context.Context, n *Node) {
	data, err := l.source.Fetch(ctx, n.Info())
	if err != nil {
		id := n.ID()
		l.logger.Warn(ctx, "tile fetch failed",
			logging.Uint32("lod", id.Lod),
			logging.Uint32("x", id.X),
			logging.Uint32("y", id.Y),
			logging.Any("error", err),
		)
		n.ResolveInvalid()
		return
	}
	n.ResolveValid(data.Surrogate, data.SurrogateOK, data.Children)
}
