package engine

import (
	"reflect"
	"sort"

	"github.com/loom-ui/loom/pkg/host"
	"github.com/loom-ui/loom/pkg/template"
)

// RenderFunc is a component body: invoked inside a render context, it
// returns a freshly compiled template. The same function must call its
// hooks in the same order on every render.
type RenderFunc func(ctx *Ctx, props any) *template.Processed

// Definition packages a component function with its props. It is inert:
// building one renders nothing until the engine mounts it. A Definition is
// owned by whichever content slot holds it until replaced or unmounted.
type Definition struct {
	Fn    RenderFunc
	Props any
}

// funcPointer is the identity used to decide whether two definitions share
// the same underlying component function.
func funcPointer(fn RenderFunc) uintptr {
	return reflect.ValueOf(fn).Pointer()
}

// listenerBinding records one mounted event part.
type listenerBinding struct {
	node    *host.Node
	name    string // normalized event name
	handler any    // authored handler, compared by identity across renders
	ref     *host.Listener
}

// listItem is one materialized entry of a list-valued content part: either
// a nested component instance or a plain host node.
type listItem struct {
	child *Instance
	node  *host.Node
}

// listBinding records one mounted list-valued content part. The two anchor
// comments are the stable insertion boundary; items always live between
// them in array order.
type listBinding struct {
	start *host.Node
	end   *host.Node
	items []listItem
}

// Instance is the live record of one mounted component occurrence. It
// exclusively owns its root nodes, listeners and nested child instances;
// destroying an instance destroys all of its descendants first.
type Instance struct {
	id        uint64
	def       *Definition
	container *host.Node
	template  *template.Processed

	rootNodes    []*host.Node
	dynamicNodes map[int]*host.Node       // part index -> bound text node or element
	listeners    map[int]*listenerBinding // part index -> event binding
	children     map[int]*Instance        // part index -> nested instance
	lists        map[int]*listBinding     // part index -> list anchors and items

	// hookCount is the number of hook calls observed on the first render;
	// -1 until then. Later renders must match it exactly.
	hookCount int
}

func newInstance(id uint64, def *Definition, container *host.Node) *Instance {
	return &Instance{
		id:           id,
		def:          def,
		container:    container,
		dynamicNodes: make(map[int]*host.Node),
		listeners:    make(map[int]*listenerBinding),
		children:     make(map[int]*Instance),
		lists:        make(map[int]*listBinding),
		hookCount:    -1,
	}
}

// ID returns the unique instance identifier.
func (inst *Instance) ID() uint64 { return inst.id }

// RootNodes returns a copy of the top-level host nodes this instance owns.
func (inst *Instance) RootNodes() []*host.Node {
	out := make([]*host.Node, len(inst.rootNodes))
	copy(out, inst.rootNodes)
	return out
}

// Template returns the last rendered template.
func (inst *Instance) Template() *template.Processed { return inst.template }

// sortedIndices returns map keys in ascending part-index order, so
// teardown and iteration stay deterministic.
func sortedIndices[V any](m map[int]V) []int {
	out := make([]int, 0, len(m))
	for i := range m {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
