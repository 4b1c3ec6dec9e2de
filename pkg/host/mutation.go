package host

// MutationOp is the type of host tree mutation.
type MutationOp uint8

const (
	MutSetAttr        MutationOp = iota + 1 // set/update attribute
	MutRemoveAttr                           // remove attribute
	MutSetText                              // update text character data
	MutInsert                               // insert node under parent
	MutRemove                               // detach node from parent
	MutReplace                              // replace node in place
	MutAddListener                          // attach event listener
	MutRemoveListener                       // detach event listener
)

// String returns the string representation of the MutationOp.
func (op MutationOp) String() string {
	switch op {
	case MutSetAttr:
		return "SetAttr"
	case MutRemoveAttr:
		return "RemoveAttr"
	case MutSetText:
		return "SetText"
	case MutInsert:
		return "Insert"
	case MutRemove:
		return "Remove"
	case MutReplace:
		return "Replace"
	case MutAddListener:
		return "AddListener"
	case MutRemoveListener:
		return "RemoveListener"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the op as its name, for JSON frames.
func (op MutationOp) MarshalText() ([]byte, error) {
	return []byte(op.String()), nil
}

// Mutation is one recorded host tree change.
type Mutation struct {
	Op     MutationOp `json:"op"`
	Node   uint64     `json:"node"`
	Parent uint64     `json:"parent,omitempty"`
	Name   string     `json:"name,omitempty"`
	Value  string     `json:"value,omitempty"`
}

// Observer receives every mutation a Document performs.
type Observer func(Mutation)
