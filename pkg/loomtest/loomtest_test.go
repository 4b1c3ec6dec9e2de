package loomtest_test

import (
	"testing"

	"github.com/loom-ui/loom"
	"github.com/loom-ui/loom/pkg/engine"
	"github.com/loom-ui/loom/pkg/host"
	"github.com/loom-ui/loom/pkg/loomtest"
	"github.com/loom-ui/loom/pkg/template"
)

var counter = loom.Define(func(ctx *engine.Ctx, _ any) *template.Processed {
	count, set := loom.UseState(ctx, 0)
	return loom.H(
		[]string{`<div class="counter"><span>`, `</span><button @click=`, `></button></div>`},
		count,
		func() { _ = set.Update(func(n int) int { return n + 1 }) },
	)
})

func TestFixtureMountAndClick(t *testing.T) {
	f := loomtest.New(t)
	f.Mount(counter(nil))

	f.ExpectElement("button")
	f.ExpectAttribute("class", "counter")
	f.ExpectContains("<span>0</span>")

	f.Click("button")
	f.ExpectContains("<span>1</span>")
	f.ExpectNotContains("<span>0</span>")
}

func TestRecorderCounts(t *testing.T) {
	f := loomtest.New(t)
	f.Mount(counter(nil))

	f.Recorder.Reset()
	f.Click("button")

	if n := f.Recorder.Count(host.MutSetText); n != 1 {
		t.Errorf("SetText mutations = %d, want 1", n)
	}
	if n := f.Recorder.Count(host.MutReplace); n != 0 {
		t.Errorf("Replace mutations = %d, want 0", n)
	}
}

func TestDispatchMissingTagFails(t *testing.T) {
	f := loomtest.New(t)
	f.Mount(counter(nil))
	if f.Find("table") != nil {
		t.Fatal("Find should return nil for a missing tag")
	}
}
