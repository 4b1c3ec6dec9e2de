// Package loomtest provides testing helpers for loom components.
//
// The loomtest package reduces boilerplate when testing components by
// bundling a host document, an engine and a mutation recorder into one
// fixture, plus assertions over the rendered HTML.
//
// # Quick Start
//
//	func TestCounter(t *testing.T) {
//	    f := loomtest.New(t)
//	    f.Mount(Counter())
//	    f.ExpectContains("0")
//	    f.Click("button")
//	    f.ExpectContains("1")
//	}
//
// # Mutation Recording
//
// Every host mutation the engine performs is recorded, so tests can
// assert on patch behavior rather than only on the final tree:
//
//	f.Recorder.Reset()
//	f.Engine.Rerender(inst)
//	if n := f.Recorder.Count(host.MutSetText); n != 0 {
//	    t.Errorf("unexpected text mutations: %d", n)
//	}
//
// # Render Assertions
//
// Assert on serialized output of the whole document:
//
//	f.ExpectContains("Welcome")
//	f.ExpectNotContains("Error")
//	f.ExpectElement("button")
//	f.ExpectAttribute("class", "active")
package loomtest
