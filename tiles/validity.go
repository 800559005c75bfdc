package tiles

import "fmt"

// Validity is the load state of a tile node. A node starts Indeterminate and
// moves exactly once to Valid or Invalid; it never goes back.
type Validity int32

const (
	// ValidityIndeterminate means the node's data has not arrived yet.
	ValidityIndeterminate Validity = iota
	// ValidityValid means the node is loaded and its fields are readable.
	ValidityValid
	// ValidityInvalid means the node failed to load or carries no usable
	// surrogate.
	ValidityInvalid
)

func (v Validity) String() string {
	switch v {
	case ValidityIndeterminate:
		return "indeterminate"
	case ValidityValid:
		return "valid"
	case ValidityInvalid:
		return "invalid"
	}
	return fmt.Sprintf("validity(%d)", int32(v))
}
