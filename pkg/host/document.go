package host

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document owns a host tree: node allocation, the listener table, and every
// mutation entry point.
type Document struct {
	nextNodeID     uint64
	nextListenerID uint64
	root           *Node
	nodes          map[uint64]*Node
	listeners      map[uint64][]*Listener
	observer       Observer
}

// NewDocument creates an empty document with a single root container.
func NewDocument() *Document {
	d := &Document{
		nodes:     make(map[uint64]*Node),
		listeners: make(map[uint64][]*Listener),
	}
	d.root = d.newNode(ElementNode)
	d.root.tag = "body"
	return d
}

// Root returns the document's root container element.
func (d *Document) Root() *Node { return d.root }

// Observe installs the mutation observer. A nil observer disables recording.
func (d *Document) Observe(fn Observer) { d.observer = fn }

// NodeByID resolves a node from its identifier.
func (d *Document) NodeByID(id uint64) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

func (d *Document) emit(m Mutation) {
	if d.observer != nil {
		d.observer(m)
	}
}

func (d *Document) newNode(typ NodeType) *Node {
	d.nextNodeID++
	n := &Node{id: d.nextNodeID, typ: typ}
	d.nodes[n.id] = n
	return n
}

// CreateElement creates a detached element node.
func (d *Document) CreateElement(tag string) *Node {
	n := d.newNode(ElementNode)
	n.tag = strings.ToLower(tag)
	return n
}

// CreateText creates a detached text node.
func (d *Document) CreateText(data string) *Node {
	n := d.newNode(TextNode)
	n.data = data
	return n
}

// CreateComment creates a detached comment node.
func (d *Document) CreateComment(data string) *Node {
	n := d.newNode(CommentNode)
	n.data = data
	return n
}

// fragmentTag marks the synthetic container ParseFragment returns. It is
// never serialized and never inserted into a live tree.
const fragmentTag = "#fragment"

// ParseFragment parses markup into a detached fragment container whose
// children are the top-level nodes of the markup.
func (d *Document) ParseFragment(markup string) (*Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	parsed, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return nil, fmt.Errorf("loom: parse markup: %w", err)
	}

	frag := d.newNode(ElementNode)
	frag.tag = fragmentTag
	for _, hn := range parsed {
		if c := d.convert(hn); c != nil {
			c.parent = frag
			frag.children = append(frag.children, c)
		}
	}
	return frag, nil
}

// convert maps a parsed html.Node subtree into host nodes. Nodes other than
// elements, text and comments are dropped.
func (d *Document) convert(hn *html.Node) *Node {
	var n *Node
	switch hn.Type {
	case html.ElementNode:
		n = d.newNode(ElementNode)
		n.tag = hn.Data
		for _, a := range hn.Attr {
			n.attrs = append(n.attrs, Attr{Name: a.Key, Value: a.Val})
		}
	case html.TextNode:
		n = d.newNode(TextNode)
		n.data = hn.Data
	case html.CommentNode:
		n = d.newNode(CommentNode)
		n.data = hn.Data
	default:
		return nil
	}

	for c := hn.FirstChild; c != nil; c = c.NextSibling {
		if child := d.convert(c); child != nil {
			child.parent = n
			n.children = append(n.children, child)
		}
	}
	return n
}

// GetAttribute returns an element attribute value and whether it is set.
func (d *Document) GetAttribute(n *Node, name string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttribute sets or updates an element attribute.
func (d *Document) SetAttribute(n *Node, name, value string) {
	for i, a := range n.attrs {
		if a.Name == name {
			if a.Value == value {
				return
			}
			n.attrs[i].Value = value
			d.emit(Mutation{Op: MutSetAttr, Node: n.id, Name: name, Value: value})
			return
		}
	}
	n.attrs = append(n.attrs, Attr{Name: name, Value: value})
	d.emit(Mutation{Op: MutSetAttr, Node: n.id, Name: name, Value: value})
}

// RemoveAttribute removes an element attribute if present.
func (d *Document) RemoveAttribute(n *Node, name string) {
	for i, a := range n.attrs {
		if a.Name == name {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			d.emit(Mutation{Op: MutRemoveAttr, Node: n.id, Name: name})
			return
		}
	}
}

// SetText updates a text node's character data.
func (d *Document) SetText(n *Node, data string) {
	if n.data == data {
		return
	}
	n.data = data
	d.emit(Mutation{Op: MutSetText, Node: n.id, Value: data})
}

// InsertBefore inserts n under parent, before ref. A nil ref appends. An
// already-attached n is detached from its previous parent first.
func (d *Document) InsertBefore(parent, n, ref *Node) {
	if n.parent != nil {
		d.detach(n)
	}
	idx := len(parent.children)
	if ref != nil {
		if i := parent.indexOf(ref); i >= 0 {
			idx = i
		}
	}
	parent.children = append(parent.children, nil)
	copy(parent.children[idx+1:], parent.children[idx:])
	parent.children[idx] = n
	n.parent = parent
	d.emit(Mutation{Op: MutInsert, Node: n.id, Parent: parent.id})
}

// RemoveNode detaches n from its parent. Detaching an already-detached node
// is a no-op.
func (d *Document) RemoveNode(n *Node) {
	if n.parent == nil {
		return
	}
	parentID := n.parent.id
	d.detach(n)
	d.emit(Mutation{Op: MutRemove, Node: n.id, Parent: parentID})
}

// ReplaceNode swaps old for n in old's parent.
func (d *Document) ReplaceNode(old, n *Node) {
	parent := old.parent
	if parent == nil {
		return
	}
	if n.parent != nil {
		d.detach(n)
	}
	i := parent.indexOf(old)
	if i < 0 {
		return
	}
	parent.children[i] = n
	n.parent = parent
	old.parent = nil
	d.emit(Mutation{Op: MutReplace, Node: old.id, Parent: parent.id, Value: strconv64(n.id)})
}

func (d *Document) detach(n *Node) {
	p := n.parent
	if p == nil {
		return
	}
	if i := p.indexOf(n); i >= 0 {
		p.children = append(p.children[:i], p.children[i+1:]...)
	}
	n.parent = nil
}

// AddListener attaches an event listener under the given normalized name.
func (d *Document) AddListener(n *Node, name string, fn func(Event)) *Listener {
	d.nextListenerID++
	l := &Listener{id: d.nextListenerID, name: name, fn: fn}
	d.listeners[n.id] = append(d.listeners[n.id], l)
	d.emit(Mutation{Op: MutAddListener, Node: n.id, Name: name})
	return l
}

// RemoveListener detaches a previously attached listener.
func (d *Document) RemoveListener(n *Node, l *Listener) {
	ls := d.listeners[n.id]
	for i, existing := range ls {
		if existing == l {
			d.listeners[n.id] = append(ls[:i], ls[i+1:]...)
			if len(d.listeners[n.id]) == 0 {
				delete(d.listeners, n.id)
			}
			d.emit(Mutation{Op: MutRemoveListener, Node: n.id, Name: l.name})
			return
		}
	}
}

// Listeners returns a copy of the listeners attached to n.
func (d *Document) Listeners(n *Node) []*Listener {
	ls := d.listeners[n.id]
	out := make([]*Listener, len(ls))
	copy(out, ls)
	return out
}

// Dispatch delivers an event to every listener attached to n under the
// event's type. There is no bubbling.
func (d *Document) Dispatch(n *Node, ev Event) {
	ev.Target = n
	for _, l := range d.Listeners(n) {
		if l.name == ev.Type {
			l.fn(ev)
		}
	}
}

// Collect returns root and its descendants that are element or comment
// nodes, in document order. The engine binds template markers against this
// snapshot so in-place replacements during binding do not disturb the walk.
func (d *Document) Collect(root *Node) []*Node {
	var out []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.typ == ElementNode || n.typ == CommentNode {
			out = append(out, n)
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(root)
	return out
}

func strconv64(v uint64) string {
	return strconv.FormatUint(v, 10)
}
