package engine

import (
	"sort"

	"github.com/loom-ui/loom/pkg/host"
	"github.com/loom-ui/loom/pkg/template"
)

// Update diffs next against the instance's previously rendered template and
// applies the minimal set of host mutations. Queued re-renders are flushed
// before Update returns.
func (e *Engine) Update(inst *Instance, next *template.Processed) error {
	err := e.update(inst, next)
	e.flush()
	return err
}

func (e *Engine) update(inst *Instance, next *template.Processed) error {
	e.depth++
	defer func() { e.depth-- }()

	end := e.spanStart("loom.update", inst.id)
	defer end()

	oldParts := partMap(inst.template)
	newParts := partMap(next)

	for _, i := range unionIndices(oldParts, newParts) {
		op, hasOld := oldParts[i]
		np, hasNew := newParts[i]
		switch {
		case hasOld && hasNew && op.Kind == np.Kind:
			if err := e.patchPart(inst, i, op, np); err != nil {
				return err
			}
		case hasOld && hasNew:
			if err := e.reshapePart(inst, i, op, np); err != nil {
				return err
			}
		case hasOld:
			e.teardownPart(inst, i, op)
		default:
			// An index only the new template knows has no marker in the
			// mounted markup, so there is nowhere to bind it.
			e.log.Debug("skipping dynamic part with no mounted marker",
				"instance_id", inst.id, "index", i)
		}
	}

	inst.template = next
	return nil
}

// patchPart applies the kind-specific patch for an index present in both
// templates with an unchanged kind.
func (e *Engine) patchPart(inst *Instance, i int, op, np template.Part) error {
	switch np.Kind {
	case template.PartEvent:
		e.patchEvent(inst, i, np)
		return nil
	case template.PartAttribute:
		e.patchAttribute(inst, i, np)
		return nil
	default:
		return e.patchContent(inst, i, op, np)
	}
}

// patchEvent reattaches the listener only when the handler identity or the
// event name changed; unrelated re-renders cause zero listener churn.
func (e *Engine) patchEvent(inst *Instance, i int, np template.Part) {
	b := inst.listeners[i]
	if b == nil {
		return
	}
	name := normalizeEventName(np.Name)
	if b.name == name && sameIdentity(b.handler, np.Value) {
		return
	}
	e.doc.RemoveListener(b.node, b.ref)
	b.ref = e.doc.AddListener(b.node, name, e.wrapHandler(np.Value))
	b.name = name
	b.handler = np.Value
}

// patchAttribute re-coerces the value and mutates the attribute only when
// it differs from what is currently set.
func (e *Engine) patchAttribute(inst *Instance, i int, np template.Part) {
	n := inst.dynamicNodes[i]
	if n == nil {
		return
	}
	value, present := coerceAttribute(np.Value)
	current, has := e.doc.GetAttribute(n, np.Name)
	switch {
	case present && (!has || current != value):
		e.doc.SetAttribute(n, np.Name, value)
	case !present && has:
		e.doc.RemoveAttribute(n, np.Name)
	}
}

// patchContent dispatches on the old and new value shapes.
func (e *Engine) patchContent(inst *Instance, i int, op, np template.Part) error {
	oldShape := classifyContent(op.Value)
	newShape := classifyContent(np.Value)

	switch {
	case isTextShape(oldShape) && isTextShape(newShape):
		n := inst.dynamicNodes[i]
		if n == nil {
			return nil
		}
		data := ""
		if newShape == shapeScalar {
			data = coerceScalar(np.Value)
		}
		e.doc.SetText(n, data) // no-op when unchanged
		return nil

	case oldShape == shapeComponent && newShape == shapeComponent:
		return e.patchComponent(inst, i, op.Value.(*Definition), np.Value.(*Definition))

	case oldShape == shapeList && newShape == shapeList:
		return e.replaceListItems(inst, i, np.Value)

	case oldShape == shapeNode && newShape == shapeNode:
		old := inst.dynamicNodes[i]
		n := np.Value.(*host.Node)
		if old == n {
			return nil
		}
		e.doc.ReplaceNode(old, n)
		inst.dynamicNodes[i] = n
		return nil

	default:
		return e.replaceContent(inst, i, np.Value)
	}
}

// patchComponent reuses the mounted child when the underlying component
// function is unchanged: stored props are updated, and the child re-renders
// only when the new props are not reference-identical to the old ones.
func (e *Engine) patchComponent(inst *Instance, i int, oldDef, newDef *Definition) error {
	child := inst.children[i]
	if child == nil {
		return e.replaceContent(inst, i, newDef)
	}
	if funcPointer(oldDef.Fn) != funcPointer(newDef.Fn) {
		return e.replaceContent(inst, i, newDef)
	}

	oldProps := child.def.Props
	child.def = newDef
	if !sameIdentity(oldProps, newDef.Props) {
		e.rerender(child)
	}
	return nil
}

// replaceListItems is the whole-range replacement policy: everything
// between the anchors is unmounted and removed, then every new item is
// freshly materialized in array order. No per-item identity matching.
func (e *Engine) replaceListItems(inst *Instance, i int, v any) error {
	lb := inst.lists[i]
	if lb == nil {
		return e.replaceContent(inst, i, v)
	}
	e.teardownListItems(lb)
	for _, item := range listValues(v) {
		if err := e.materializeListItem(lb, item); err != nil {
			return err
		}
	}
	return nil
}

// replaceContent tears down whatever is bound at index i and materializes
// the new value in its place.
func (e *Engine) replaceContent(inst *Instance, i int, v any) error {
	ref := e.contentAnchor(inst, i)
	if ref == nil || ref.Parent() == nil {
		e.log.Debug("content binding has no live position",
			"instance_id", inst.id, "index", i)
		return nil
	}
	placeholder := e.doc.CreateComment("loom:swap")
	e.doc.InsertBefore(ref.Parent(), placeholder, ref)
	e.teardownContent(inst, i)
	return e.materializeContent(inst, placeholder, i, v)
}

// contentAnchor returns the first host node of the binding at index i.
func (e *Engine) contentAnchor(inst *Instance, i int) *host.Node {
	if n := inst.dynamicNodes[i]; n != nil {
		return n
	}
	if c := inst.children[i]; c != nil && len(c.rootNodes) > 0 {
		return c.rootNodes[0]
	}
	if lb := inst.lists[i]; lb != nil {
		return lb.start
	}
	return nil
}

// teardownContent fully releases the content binding at index i.
func (e *Engine) teardownContent(inst *Instance, i int) {
	if n, ok := inst.dynamicNodes[i]; ok {
		e.doc.RemoveNode(n)
		delete(inst.dynamicNodes, i)
	}
	if c, ok := inst.children[i]; ok {
		e.Unmount(c)
		delete(inst.children, i)
	}
	if lb, ok := inst.lists[i]; ok {
		e.teardownListItems(lb)
		e.doc.RemoveNode(lb.start)
		e.doc.RemoveNode(lb.end)
		delete(inst.lists, i)
	}
}

// reshapePart handles an index whose kind changed between renders: the old
// binding is fully torn down, then the new part is materialized fresh.
func (e *Engine) reshapePart(inst *Instance, i int, op, np template.Part) error {
	if np.Kind == template.PartContent {
		// Attribute/event positions resolve to an element, not to an
		// insertion point; there is no position to materialize content at.
		e.teardownPart(inst, i, op)
		e.log.Debug("dropping content part bound at an element position",
			"instance_id", inst.id, "index", i)
		return nil
	}

	n := e.boundElement(inst, i, op)
	e.teardownPart(inst, i, op)
	if n == nil {
		e.log.Debug("no element to rebind part at",
			"instance_id", inst.id, "index", i)
		return nil
	}
	if np.Kind == template.PartEvent {
		e.attachEvent(inst, n, np)
		return nil
	}
	e.applyAttribute(n, np)
	inst.dynamicNodes[i] = n
	return nil
}

// boundElement returns the element an attribute/event part is bound to.
func (e *Engine) boundElement(inst *Instance, i int, op template.Part) *host.Node {
	switch op.Kind {
	case template.PartEvent:
		if b := inst.listeners[i]; b != nil {
			return b.node
		}
	case template.PartAttribute:
		return inst.dynamicNodes[i]
	}
	return nil
}

// teardownPart fully releases whatever is bound at index i.
func (e *Engine) teardownPart(inst *Instance, i int, op template.Part) {
	switch op.Kind {
	case template.PartEvent:
		if b := inst.listeners[i]; b != nil {
			e.doc.RemoveListener(b.node, b.ref)
			delete(inst.listeners, i)
		}
	case template.PartAttribute:
		if n := inst.dynamicNodes[i]; n != nil {
			e.doc.RemoveAttribute(n, op.Name)
			delete(inst.dynamicNodes, i)
		}
	default:
		e.teardownContent(inst, i)
	}
}

func isTextShape(s contentShape) bool {
	return s == shapeScalar || s == shapeEmpty
}

func partMap(tpl *template.Processed) map[int]template.Part {
	m := make(map[int]template.Part, len(tpl.Parts))
	for _, p := range tpl.Parts {
		m[p.Index] = p
	}
	return m
}

// unionIndices returns the set union of part indices, ascending. Dynamic
// parts are always processed in left-to-right template-encounter order.
func unionIndices(a, b map[int]template.Part) []int {
	seen := make(map[int]bool, len(a)+len(b))
	var out []int
	for i := range a {
		if !seen[i] {
			seen[i] = true
			out = append(out, i)
		}
	}
	for i := range b {
		if !seen[i] {
			seen[i] = true
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}
