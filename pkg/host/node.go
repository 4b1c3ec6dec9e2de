package host

// NodeType is the node type discriminator.
type NodeType uint8

const (
	ElementNode NodeType = iota + 1 // <div>, <button>, etc.
	TextNode                        // character data
	CommentNode                     // <!-- ... -->
)

// String returns the string representation of the NodeType.
func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "Element"
	case TextNode:
		return "Text"
	case CommentNode:
		return "Comment"
	default:
		return "Unknown"
	}
}

// Attr is a single element attribute.
type Attr struct {
	Name  string
	Value string
}

// Node is one node in a host tree. Nodes are created and mutated only
// through their owning Document.
type Node struct {
	id       uint64
	typ      NodeType
	tag      string
	data     string
	attrs    []Attr
	parent   *Node
	children []*Node
}

// ID returns the document-unique identifier of this node.
func (n *Node) ID() uint64 { return n.id }

// Type returns the node type.
func (n *Node) Type() NodeType { return n.typ }

// Tag returns the element tag name; empty for non-elements.
func (n *Node) Tag() string { return n.tag }

// Data returns the character data of a text or comment node.
func (n *Node) Data() string { return n.data }

// Parent returns the parent node, or nil for a detached node.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// FirstChild returns the first child, or nil.
func (n *Node) FirstChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

// Attrs returns a copy of the attribute list in document order.
func (n *Node) Attrs() []Attr {
	out := make([]Attr, len(n.attrs))
	copy(out, n.attrs)
	return out
}

// indexOf returns the position of child under n, or -1.
func (n *Node) indexOf(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// Event is the value delivered to event listeners.
type Event struct {
	Type   string // normalized event name, e.g. "click"
	Target *Node  // node the event was dispatched on
	Value  string // optional payload (input value, key, ...)
}

// Listener is a registered event listener. Its identity is what the engine
// compares when deciding whether a handler must be rebound.
type Listener struct {
	id   uint64
	name string
	fn   func(Event)
}

// Name returns the normalized event name this listener is attached under.
func (l *Listener) Name() string { return l.name }
