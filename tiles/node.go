package tiles

import (
	"math"
	"sync/atomic"

	"github.com/signalsfoundry/map-navigator/model"
)

// Node is one tile of the terrain hierarchy. Loaders resolve it exactly once;
// until then every field except the static info is off limits to readers.
//
// The validity flag is the publication barrier: resolve methods write the
// payload fields first and store the validity last, readers load the validity
// first and only then touch the payload.
type Node struct {
	info  model.NodeInfo
	store *Store

	validity  atomic.Int32
	requested atomic.Bool

	surrogate   float64
	surrogateOK bool
	children    []*Node
}

func newNode(info model.NodeInfo, store *Store) *Node {
	return &Node{info: info, store: store}
}

// RequestLoad files a load hint for this node with its owning store.
func (n *Node) RequestLoad() {
	n.store.RequestLoad(n)
}

// Info returns the static geometry of the node.
func (n *Node) Info() model.NodeInfo { return n.info }

// ID returns the tile id.
func (n *Node) ID() model.TileId { return n.info.ID }

// Validity returns the current load state.
func (n *Node) Validity() Validity {
	return Validity(n.validity.Load())
}

// Surrogate returns the representative terrain height of the node in its own
// SRS, and whether the node carries one. Only meaningful once the node is
// Valid.
func (n *Node) Surrogate() (float64, bool) {
	if n.Validity() != ValidityValid {
		return 0, false
	}
	return n.surrogate, n.surrogateOK
}

// Child returns the loaded child with the given id, or nil when the node has
// no such child. A nil return on a Valid node means the hierarchy ends here.
func (n *Node) Child(id model.TileId) *Node {
	if n.Validity() != ValidityValid {
		return nil
	}
	for _, c := range n.children {
		if c.info.ID == id {
			return c
		}
	}
	return nil
}

// Leaf reports whether a Valid node has no children.
func (n *Node) Leaf() bool {
	return n.Validity() == ValidityValid && len(n.children) == 0
}

// ResolveValid publishes the node's data: its surrogate height (ok reports
// whether one exists) and the ids of its direct children. Child ids that are
// not direct children of this node are ignored. A non-finite surrogate
// invalidates the node instead.
func (n *Node) ResolveValid(surrogate float64, ok bool, children []model.TileId) {
	if ok && (math.IsNaN(surrogate) || math.IsInf(surrogate, 0)) {
		n.ResolveInvalid()
		return
	}
	kids := make([]*Node, 0, len(children))
	for _, id := range children {
		info, found := n.info.Child(id)
		if !found {
			continue
		}
		kids = append(kids, newNode(info, n.store))
	}
	n.surrogate = surrogate
	n.surrogateOK = ok
	n.children = kids
	n.validity.Store(int32(ValidityValid))
}

// ResolveInvalid marks the node as failed.
func (n *Node) ResolveInvalid() {
	n.validity.Store(int32(ValidityInvalid))
}
