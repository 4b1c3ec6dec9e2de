package engine

import (
	"testing"

	"github.com/loom-ui/loom/pkg/host"
	"github.com/loom-ui/loom/pkg/template"
)

func TestRerenderIdempotent(t *testing.T) {
	e, doc, rec := newTestEngine(t)

	handler := func() {}
	def := &Definition{Fn: func(ctx *Ctx, props any) *template.Processed {
		return mustProcess(t,
			[]string{`<div class="`, `"><button @click=`, `>`, `</button></div>`},
			"card", handler, "same",
		)
	}}

	inst, err := e.Mount(def, doc.Root())
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}

	rec.reset()
	e.Rerender(inst)

	for _, op := range []host.MutationOp{
		host.MutSetAttr, host.MutRemoveAttr, host.MutSetText,
		host.MutInsert, host.MutRemove, host.MutReplace,
		host.MutAddListener, host.MutRemoveListener,
	} {
		if n := rec.count(op); n != 0 {
			t.Errorf("%s mutations = %d after identical re-render, want 0", op, n)
		}
	}
}

func TestHookIndexStability(t *testing.T) {
	e, doc, _ := newTestEngine(t)

	var slots [][]int
	def := &Definition{Fn: func(ctx *Ctx, props any) *template.Processed {
		_, a := ctx.Engine().RegisterState(ctx, "a")
		_, b := ctx.Engine().RegisterState(ctx, "b")
		_, c := ctx.Engine().RegisterState(ctx, "c")
		slots = append(slots, []int{a.slot, b.slot, c.slot})
		return mustProcess(t, []string{`<div></div>`})
	}}

	inst, err := e.Mount(def, doc.Root())
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	e.Rerender(inst)
	e.Rerender(inst)

	if len(slots) != 3 {
		t.Fatalf("renders = %d, want 3", len(slots))
	}
	for i, got := range slots {
		for j, slot := range got {
			if slot != j {
				t.Errorf("render %d hook %d resolved slot %d", i, j, slot)
			}
		}
	}
}

func TestEventRebindingDiscipline(t *testing.T) {
	e, doc, rec := newTestEngine(t)

	first := func() {}
	second := func() {}
	handler := first
	def := &Definition{Fn: func(ctx *Ctx, props any) *template.Processed {
		return mustProcess(t, []string{`<button @click=`, `></button>`}, handler)
	}}

	inst, err := e.Mount(def, doc.Root())
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}

	rec.reset()
	e.Rerender(inst)
	if a, r := rec.count(host.MutAddListener), rec.count(host.MutRemoveListener); a != 0 || r != 0 {
		t.Errorf("same handler re-render: add=%d remove=%d, want 0/0", a, r)
	}

	handler = second
	rec.reset()
	e.Rerender(inst)
	if a, r := rec.count(host.MutAddListener), rec.count(host.MutRemoveListener); a != 1 || r != 1 {
		t.Errorf("changed handler re-render: add=%d remove=%d, want 1/1", a, r)
	}
	if b := inst.listeners[0]; b == nil || b.name != "click" {
		t.Errorf("rebinding changed the event name: %+v", inst.listeners[0])
	}
}

func TestListWholeReplace(t *testing.T) {
	e, doc, _ := newTestEngine(t)

	var set *StateSetter
	def := &Definition{Fn: func(ctx *Ctx, props any) *template.Processed {
		var items any
		items, set = ctx.Engine().RegisterState(ctx, []string{"a", "b", "c"})
		return mustProcess(t, []string{`<ul>`, `</ul>`}, items)
	}}

	inst, err := e.Mount(def, doc.Root())
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}

	lb := inst.lists[0]
	if lb == nil || len(lb.items) != 3 {
		t.Fatalf("list binding = %+v, want 3 items", lb)
	}
	before := make([]*host.Node, len(lb.items))
	for i, it := range lb.items {
		before[i] = it.node
	}

	if err := set.Set([]string{"a", "x", "c"}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	lb = inst.lists[0]
	if len(lb.items) != 3 {
		t.Fatalf("items after update = %d, want 3", len(lb.items))
	}
	want := []string{"a", "x", "c"}
	for i, it := range lb.items {
		if it.node.Data() != want[i] {
			t.Errorf("item %d = %q, want %q", i, it.node.Data(), want[i])
		}
		// Whole-range replacement: even unchanged entries get fresh nodes.
		if it.node == before[i] {
			t.Errorf("item %d reused the old node", i)
		}
		if before[i].Parent() != nil {
			t.Errorf("old item %d still attached", i)
		}
	}
	if lb.start.Parent() == nil || lb.end.Parent() == nil {
		t.Error("list anchors detached by replacement")
	}
}

func TestContentKindChangeTearsDownOldShape(t *testing.T) {
	e, doc, _ := newTestEngine(t)

	var set *StateSetter
	def := &Definition{Fn: func(ctx *Ctx, props any) *template.Processed {
		var v any
		v, set = ctx.Engine().RegisterState(ctx, "plain")
		return mustProcess(t, []string{`<div>`, `</div>`}, v)
	}}

	inst, err := e.Mount(def, doc.Root())
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}

	textNode := inst.dynamicNodes[0]
	if textNode == nil || textNode.Data() != "plain" {
		t.Fatalf("initial content = %v, want text plain", textNode)
	}

	if err := set.Set([]string{"x", "y"}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if textNode.Parent() != nil {
		t.Error("old text node still attached after kind change")
	}
	lb := inst.lists[0]
	if lb == nil || len(lb.items) != 2 {
		t.Fatalf("list binding after kind change = %+v, want 2 items", lb)
	}
	if _, ok := inst.dynamicNodes[0]; ok {
		t.Error("stale text binding left behind after kind change")
	}

	// And back again: list shape gives way to a single text node.
	if err := set.Set("done"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok := inst.lists[0]; ok {
		t.Error("stale list binding left behind after kind change")
	}
	if n := inst.dynamicNodes[0]; n == nil || n.Data() != "done" {
		t.Errorf("content after second kind change = %v, want text done", n)
	}
	if lb.start.Parent() != nil || lb.end.Parent() != nil {
		t.Error("list anchors still attached after teardown")
	}
}

func TestChildComponentReuse(t *testing.T) {
	e, doc, _ := newTestEngine(t)

	childRenders := 0
	child := func(ctx *Ctx, props any) *template.Processed {
		childRenders++
		return mustProcess(t, []string{`<span>`, `</span>`}, props.(string))
	}

	var set *StateSetter
	parent := &Definition{Fn: func(ctx *Ctx, props any) *template.Processed {
		var label any
		label, set = ctx.Engine().RegisterState(ctx, "a")
		return mustProcess(t, []string{`<div>`, `</div>`},
			&Definition{Fn: child, Props: label.(string)})
	}}

	inst, err := e.Mount(parent, doc.Root())
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	childInst := inst.children[0]
	if childInst == nil {
		t.Fatal("child instance not mounted")
	}
	if childRenders != 1 {
		t.Fatalf("child renders after mount = %d, want 1", childRenders)
	}

	if err := set.Set("b"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if inst.children[0] != childInst {
		t.Error("child instance replaced instead of reused")
	}
	if childRenders != 2 {
		t.Errorf("child renders after props change = %d, want 2", childRenders)
	}
	if got := childInst.dynamicNodes[0].Data(); got != "b" {
		t.Errorf("child text = %q, want b", got)
	}

	// Identical props skip the nested re-render entirely.
	if err := set.Set("b"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if childRenders != 2 {
		t.Errorf("child renders after identical props = %d, want 2", childRenders)
	}
}

func TestChildFunctionChangeRemounts(t *testing.T) {
	e, doc, _ := newTestEngine(t)

	one := func(ctx *Ctx, props any) *template.Processed {
		return mustProcess(t, []string{`<em>one</em>`})
	}
	two := func(ctx *Ctx, props any) *template.Processed {
		return mustProcess(t, []string{`<em>two</em>`})
	}

	current := one
	def := &Definition{Fn: func(ctx *Ctx, props any) *template.Processed {
		return mustProcess(t, []string{`<div>`, `</div>`}, &Definition{Fn: current})
	}}

	inst, err := e.Mount(def, doc.Root())
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	first := inst.children[0]

	current = two
	e.Rerender(inst)

	second := inst.children[0]
	if second == nil || second == first {
		t.Fatal("child with a different function should be remounted")
	}
	if e.InstanceCount() != 2 {
		t.Errorf("instances = %d, want parent plus one child", e.InstanceCount())
	}
}

func TestSetterCoalescing(t *testing.T) {
	e, doc, _ := newTestEngine(t)

	renders := 0
	def := &Definition{Fn: func(ctx *Ctx, props any) *template.Processed {
		renders++
		value, set := ctx.Engine().RegisterState(ctx, 0)
		return mustProcess(t,
			[]string{`<div><span>`, `</span><button @click=`, `></button></div>`},
			value.(int),
			func() {
				_ = set.Update(func(p any) any { return p.(int) + 1 })
				_ = set.Update(func(p any) any { return p.(int) + 1 })
			},
		)
	}}

	inst, err := e.Mount(def, doc.Root())
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if renders != 1 {
		t.Fatalf("renders after mount = %d, want 1", renders)
	}

	doc.Dispatch(inst.listeners[1].node, host.Event{Type: "click"})

	if renders != 2 {
		t.Errorf("renders after one click = %d, want 2 (coalesced)", renders)
	}
	if got := inst.dynamicNodes[0].Data(); got != "2" {
		t.Errorf("text = %q, want 2 (both updates applied)", got)
	}
}

func TestSetterDuringRenderDefersFlush(t *testing.T) {
	e, doc, _ := newTestEngine(t)

	renders := 0
	def := &Definition{Fn: func(ctx *Ctx, props any) *template.Processed {
		renders++
		value, set := ctx.Engine().RegisterState(ctx, 0)
		if value.(int) == 0 {
			// Firing a setter mid-render must queue, not recurse.
			_ = set.Set(1)
		}
		return mustProcess(t, []string{`<div>`, `</div>`}, value.(int))
	}}

	inst, err := e.Mount(def, doc.Root())
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}

	if renders != 2 {
		t.Errorf("renders = %d, want 2 (mount plus one queued re-render)", renders)
	}
	if got := inst.dynamicNodes[0].Data(); got != "1" {
		t.Errorf("text = %q, want 1", got)
	}
}
