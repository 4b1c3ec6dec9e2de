package loom_test

import (
	"testing"

	"github.com/loom-ui/loom"
	"github.com/loom-ui/loom/pkg/engine"
	"github.com/loom-ui/loom/pkg/loomtest"
	"github.com/loom-ui/loom/pkg/template"
)

func TestHPanicsOnMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on statics/exprs mismatch")
		}
	}()
	loom.H([]string{`<div>`, `</div>`})
}

func TestDefinePackagesIntent(t *testing.T) {
	fn := func(ctx *engine.Ctx, props any) *template.Processed {
		return loom.H([]string{`<div></div>`})
	}
	comp := loom.Define(fn)

	def := comp("hello")
	if def.Props != "hello" {
		t.Errorf("Props = %v, want hello", def.Props)
	}
	// Building a definition renders nothing until mounted.
	def2 := comp("again")
	if def == def2 {
		t.Error("definitions should be distinct values")
	}
}

func TestRenderMounts(t *testing.T) {
	f := loomtest.New(t)

	greeting := loom.Define(func(ctx *engine.Ctx, props any) *template.Processed {
		return loom.H([]string{`<p>hello `, `</p>`}, props.(string))
	})

	inst, err := loom.Render(f.Engine, greeting("world"), f.Doc.Root())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	defer f.Engine.Unmount(inst)

	f.ExpectContains("hello world")
}

func TestUseStateTyped(t *testing.T) {
	f := loomtest.New(t)

	var got []string
	comp := loom.Define(func(ctx *engine.Ctx, _ any) *template.Processed {
		name, set := loom.UseState(ctx, "ada")
		got = append(got, name)
		return loom.H(
			[]string{`<button @click=`, `>`, `</button>`},
			func() { _ = set.Set("grace") },
			name,
		)
	})

	f.Mount(comp(nil))
	f.Click("button")

	if len(got) != 2 || got[0] != "ada" || got[1] != "grace" {
		t.Errorf("observed values = %v, want [ada grace]", got)
	}
}

func TestUseStateLazyRunsOnce(t *testing.T) {
	f := loomtest.New(t)

	inits := 0
	comp := loom.Define(func(ctx *engine.Ctx, _ any) *template.Processed {
		n, set := loom.UseStateLazy(ctx, func() int {
			inits++
			return 40
		})
		return loom.H(
			[]string{`<button @click=`, `>`, `</button>`},
			func() { _ = set.Update(func(v int) int { return v + 1 }) },
			n,
		)
	})

	f.Mount(comp(nil))
	f.Click("button")
	f.Click("button")

	if inits != 1 {
		t.Errorf("initializer ran %d times, want 1", inits)
	}
	f.ExpectContains("42")
}

func TestUseRefStableWithoutRerender(t *testing.T) {
	f := loomtest.New(t)

	var refs []*loom.Ref[int]
	comp := loom.Define(func(ctx *engine.Ctx, _ any) *template.Processed {
		count, set := loom.UseState(ctx, 0)
		ref := loom.UseRef(ctx, 0)
		refs = append(refs, ref)
		ref.Current++ // writing a ref never schedules work
		return loom.H(
			[]string{`<button @click=`, `>`, `</button>`},
			func() { _ = set.Update(func(n int) int { return n + 1 }) },
			count,
		)
	})

	f.Mount(comp(nil))
	f.Click("button")

	if len(refs) != 2 || refs[0] != refs[1] {
		t.Fatalf("ref identity not stable across renders: %v", refs)
	}
	if refs[0].Current != 2 {
		t.Errorf("ref.Current = %d, want 2", refs[0].Current)
	}
}

func TestUseEffectCleanupOnUnmount(t *testing.T) {
	f := loomtest.New(t)

	var events []string
	comp := loom.Define(func(ctx *engine.Ctx, _ any) *template.Processed {
		loom.UseEffect(ctx, func() loom.Cleanup {
			events = append(events, "subscribe")
			return func() { events = append(events, "unsubscribe") }
		}, "static-dep")
		return loom.H([]string{`<div></div>`})
	})

	inst := f.Mount(comp(nil))
	f.Engine.Rerender(inst)
	f.Engine.Unmount(inst)

	if len(events) != 2 || events[0] != "subscribe" || events[1] != "unsubscribe" {
		t.Errorf("events = %v, want [subscribe unsubscribe]", events)
	}
}
