package core

import (
	"context"
	"fmt"
	"math"

	"github.com/signalsfoundry/map-navigator/internal/logging"
	"github.com/signalsfoundry/map-navigator/model"
	"github.com/signalsfoundry/map-navigator/tiles"
)

// TileTree exposes the resolved tile hierarchies the height resolver samples
// from, one per division root.
type TileTree interface {
	Root(division model.TileId) *tiles.Node
}

// HeightUpdate is the outcome of a completed terrain sample. Absolute updates
// replace the target height outright; relative ones shift it by Value.
type HeightUpdate struct {
	Absolute bool
	Value    float64
}

// cornerRequest tracks one of the four tile corners a sample interpolates
// between.
type cornerRequest struct {
	division model.TileId
	target   model.TileId
	result   float64
}

// process advances the corner against the tile tree. It walks from the
// division root toward the target tile, filing load hints along the way, and
// stops early on a leaf, taking its surrogate instead.
func (c *cornerRequest) process(tree TileTree) tiles.Validity {
	n := tree.Root(c.division)
	if n == nil {
		return tiles.ValidityInvalid
	}
	for {
		switch n.Validity() {
		case tiles.ValidityInvalid:
			return tiles.ValidityInvalid
		case tiles.ValidityIndeterminate:
			n.RequestLoad()
			return tiles.ValidityIndeterminate
		}
		if n.ID() == c.target {
			return c.take(n)
		}
		next := c.target.Ancestor(n.ID().Lod + 1)
		child := n.Child(next)
		if child == nil {
			return c.take(n)
		}
		n = child
	}
}

func (c *cornerRequest) take(n *tiles.Node) tiles.Validity {
	h, ok := n.Surrogate()
	if !ok {
		return tiles.ValidityInvalid
	}
	c.result = h
	return tiles.ValidityValid
}

// heightRequest is one queued terrain sample at a navigation-SRS point.
type heightRequest struct {
	navXY       model.Point2
	resetOffset *float64

	nodeSrs string
	sds     model.Point2
	interp  model.Point2
	corners [4]cornerRequest
}

// HeightResolver owns the pending terrain samples of a navigation session.
// At most two samples are queued: the one in flight and the freshest
// replacement. Samples finish asynchronously as tiles arrive.
type HeightResolver struct {
	cfg    *model.MapConfig
	opts   *Options
	conv   Convertor
	tree   TileTree
	logger logging.Logger

	queue      []*heightRequest
	lastSample *float64
	lastLod    uint32
}

// NewHeightResolver builds a resolver over the given map and tile tree.
func NewHeightResolver(cfg *model.MapConfig, opts *Options, conv Convertor, tree TileTree, logger logging.Logger) *HeightResolver {
	if logger == nil {
		logger = logging.Noop()
	}
	return &HeightResolver{cfg: cfg, opts: opts, conv: conv, tree: tree, logger: logger}
}

// Enqueue files a relative sample at the given navigation position. With a
// sample already in flight the newest pending one is replaced, so stale
// positions are never resolved.
func (r *HeightResolver) Enqueue(navXY model.Point2, viewExtent float64) {
	req, err := r.prepare(navXY, viewExtent)
	if err != nil {
		r.logger.Warn(context.Background(), "height sample rejected",
			logging.Float64("x", navXY.X),
			logging.Float64("y", navXY.Y),
			logging.Any("error", err),
		)
		return
	}
	if len(r.queue) < 2 {
		r.queue = append(r.queue, req)
	} else {
		r.queue[len(r.queue)-1] = req
	}
}

// Reset drops all pending samples and the sample chain, then files one
// absolute sample: when it completes, the target height becomes terrain
// height plus offset.
func (r *HeightResolver) Reset(navXY model.Point2, offset, viewExtent float64) {
	r.Clear()
	req, err := r.prepare(navXY, viewExtent)
	if err != nil {
		r.logger.Warn(context.Background(), "absolute height sample rejected",
			logging.Float64("x", navXY.X),
			logging.Float64("y", navXY.Y),
			logging.Any("error", err),
		)
		return
	}
	req.resetOffset = &offset
	r.queue = append(r.queue, req)
}

// Clear drops all pending samples and breaks the relative sample chain.
func (r *HeightResolver) Clear() {
	r.queue = nil
	r.lastSample = nil
}

// Step advances the oldest pending sample. It returns a height update when
// the sample completed this call, except for the first relative sample after
// a Clear, which only seeds the relative chain. An unfinished sample stays
// queued; a failed one is dropped without an update.
func (r *HeightResolver) Step() (HeightUpdate, bool) {
	if len(r.queue) == 0 {
		return HeightUpdate{}, false
	}
	req := r.queue[0]

	worst := tiles.ValidityValid
	for i := range req.corners {
		switch req.corners[i].process(r.tree) {
		case tiles.ValidityInvalid:
			worst = tiles.ValidityInvalid
		case tiles.ValidityIndeterminate:
			if worst == tiles.ValidityValid {
				worst = tiles.ValidityIndeterminate
			}
		}
	}
	switch worst {
	case tiles.ValidityIndeterminate:
		return HeightUpdate{}, false
	case tiles.ValidityInvalid:
		r.pop()
		r.logger.Debug(context.Background(), "height sample dropped",
			logging.Any("error", ErrInvalidSurrogate))
		return HeightUpdate{}, false
	}

	h, err := r.combine(req)
	r.pop()
	if err != nil {
		r.logger.Warn(context.Background(), "height sample conversion failed",
			logging.Any("error", err))
		return HeightUpdate{}, false
	}

	var update HeightUpdate
	var ok bool
	if req.resetOffset != nil {
		update = HeightUpdate{Absolute: true, Value: h + *req.resetOffset}
		ok = true
	} else if r.lastSample != nil {
		update = HeightUpdate{Value: h - *r.lastSample}
		ok = true
	}
	r.lastSample = &h
	return update, ok
}

// Pending reports how many samples are queued.
func (r *HeightResolver) Pending() int { return len(r.queue) }

// LastLod reports the level of detail of the most recently prepared sample.
func (r *HeightResolver) LastLod() uint32 { return r.lastLod }

func (r *HeightResolver) pop() {
	r.queue = r.queue[1:]
	if len(r.queue) == 0 {
		r.queue = nil
	}
}

// combine bilinearly blends the four corner surrogates and converts the
// result into the navigation SRS.
func (r *HeightResolver) combine(req *heightRequest) (float64, error) {
	c := req.corners
	h := Lerp(
		Lerp(c[2].result, c[3].result, req.interp.X),
		Lerp(c[0].result, c[1].result, req.interp.X),
		req.interp.Y,
	)
	nav, err := r.conv.Convert(
		model.Point3{X: req.sds.X, Y: req.sds.Y, Z: h},
		req.nodeSrs, r.cfg.ReferenceFrame.Model.NavigationSrs,
	)
	if err != nil {
		return 0, err
	}
	return nav.Z, nil
}

// prepare locates the sampled tile and lays out the four corner tiles around
// the point.
func (r *HeightResolver) prepare(navXY model.Point2, viewExtent float64) (*heightRequest, error) {
	rootInfo, sds, err := r.findNavRoot(navXY)
	if err != nil {
		return nil, err
	}
	info := r.sampleNode(rootInfo, sds, viewExtent)
	r.lastLod = info.ID.Lod

	center := info.Extents.Center()
	w, hgt := info.Extents.Size()
	interp := model.Point2{
		X: (sds.X - center.X) / w,
		Y: (sds.Y - center.Y) / hgt,
	}
	cornerID := info.ID
	if sds.X < center.X {
		// Clamped at the division border; the border tile and its inner
		// neighbour stay the corners and the interpolant is still shifted,
		// so the blend weights them as for an interior sample.
		if cornerID.X > 0 {
			cornerID.X--
		}
		interp.X += 1
	}
	if sds.Y < center.Y {
		interp.Y += 1
	} else if cornerID.Y > 0 {
		cornerID.Y--
	}

	req := &heightRequest{
		navXY:   navXY,
		nodeSrs: info.Srs,
		sds:     sds,
		interp:  interp,
	}
	for i := range req.corners {
		req.corners[i] = cornerRequest{
			division: rootInfo.ID,
			target: model.TileId{
				Lod: cornerID.Lod,
				X:   cornerID.X + uint32(i%2),
				Y:   cornerID.Y + uint32(i/2),
			},
		}
	}
	return req, nil
}

// findNavRoot locates the bisection division root covering the navigation
// position and returns the position in that root's SRS.
func (r *HeightResolver) findNavRoot(navXY model.Point2) (model.NodeInfo, model.Point2, error) {
	navSrs := r.cfg.ReferenceFrame.Model.NavigationSrs
	for _, node := range r.cfg.ReferenceFrame.Division.Nodes {
		if node.Partitioning != model.PartitioningBisection {
			continue
		}
		p, err := r.conv.Convert(model.Point3{X: navXY.X, Y: navXY.Y}, navSrs, node.Srs)
		if err != nil {
			return model.NodeInfo{}, model.Point2{}, err
		}
		if node.Extents.Contains(p.XY()) {
			return node.Info(), p.XY(), nil
		}
	}
	return model.NodeInfo{}, model.Point2{},
		fmt.Errorf("%w: (%v, %v)", ErrOutsideDivision, navXY.X, navXY.Y)
}

// sampleNode descends from the division root to the tile whose size matches
// the sampling density wanted at the current view extent.
func (r *HeightResolver) sampleNode(info model.NodeInfo, sds model.Point2, viewExtent float64) model.NodeInfo {
	for {
		desire := math.Log2(r.opts.NavigationSamplesPerViewExtent *
			info.Extents.Width() / viewExtent)
		if desire < 3 {
			return info
		}
		descended := false
		for _, id := range info.ID.Children() {
			child, ok := info.Child(id)
			if ok && child.Inside(sds) {
				info = child
				descended = true
				break
			}
		}
		if !descended {
			return info
		}
	}
}
