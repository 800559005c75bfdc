package tiles

import "github.com/signalsfoundry/map-navigator/model"

// Forest groups the tile hierarchies of all division roots of a map behind a
// single hint queue, so one Loader serves every root.
type Forest struct {
	stores map[model.TileId]*Store
	hints  chan *Node
}

// NewForest builds one store per division root geometry.
func NewForest(roots []model.NodeInfo) *Forest {
	f := &Forest{
		stores: make(map[model.TileId]*Store, len(roots)),
		hints:  make(chan *Node, hintQueueSize),
	}
	for _, info := range roots {
		f.stores[info.ID] = newStore(info, f.hints)
	}
	return f
}

// Root returns the root node of the hierarchy rooted at the given division
// id, or nil when no such root exists.
func (f *Forest) Root(division model.TileId) *Node {
	s, ok := f.stores[division]
	if !ok {
		return nil
	}
	return s.Root()
}

// Hints exposes the shared load-hint queue for a Loader to drain.
func (f *Forest) Hints() <-chan *Node { return f.hints }

// DroppedHints sums discarded hints across all roots.
func (f *Forest) DroppedHints() uint64 {
	var total uint64
	for _, s := range f.stores {
		total += s.DroppedHints()
	}
	return total
}
