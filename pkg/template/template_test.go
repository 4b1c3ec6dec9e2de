package template

import (
	"errors"
	"strings"
	"testing"
)

func TestProcessSegmentCountMismatch(t *testing.T) {
	_, err := Process([]string{"<div>"}, []any{"x"})
	if !errors.Is(err, ErrStructure) {
		t.Fatalf("err = %v, want ErrStructure", err)
	}
}

func TestProcessEmptyStatics(t *testing.T) {
	_, err := Process(nil, nil)
	if !errors.Is(err, ErrStructure) {
		t.Fatalf("err = %v, want ErrStructure", err)
	}
}

func TestProcessStaticOnly(t *testing.T) {
	p, err := Process([]string{"  <div>hi</div>  "}, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if p.Markup != "<div>hi</div>" {
		t.Errorf("Markup = %q, want trimmed static", p.Markup)
	}
	if len(p.Parts) != 0 {
		t.Errorf("Parts = %d, want 0", len(p.Parts))
	}
}

func TestProcessClassification(t *testing.T) {
	handler := func() {}
	p, err := Process(
		[]string{`<div title="`, `"><button @click=`, `>`, `</button></div>`},
		[]any{"tip", handler, "label"},
	)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(p.Parts) != 3 {
		t.Fatalf("Parts = %d, want 3", len(p.Parts))
	}

	if p.Parts[0].Kind != PartAttribute || p.Parts[0].Name != "title" {
		t.Errorf("part 0 = %v %q, want Attribute title", p.Parts[0].Kind, p.Parts[0].Name)
	}
	if p.Parts[1].Kind != PartEvent || p.Parts[1].Name != "click" {
		t.Errorf("part 1 = %v %q, want Event click", p.Parts[1].Kind, p.Parts[1].Name)
	}
	if p.Parts[2].Kind != PartContent {
		t.Errorf("part 2 = %v, want Content", p.Parts[2].Kind)
	}

	for i := 0; i < 3; i++ {
		if p.Parts[i].Index != i {
			t.Errorf("part %d index = %d", i, p.Parts[i].Index)
		}
	}
}

func TestProcessMarkerEmission(t *testing.T) {
	p, err := Process(
		[]string{`<span class="`, `">`, `</span>`},
		[]any{"big", "text"},
	)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !strings.Contains(p.Markup, `class="`+AttrMarker(0)+`"`) {
		t.Errorf("markup missing attribute marker: %q", p.Markup)
	}
	if !strings.Contains(p.Markup, CommentMarker(1)) {
		t.Errorf("markup missing comment marker: %q", p.Markup)
	}
}

func TestProcessEventMustBeFunction(t *testing.T) {
	_, err := Process([]string{`<button @click=`, `>x</button>`}, []any{"nope"})
	if !errors.Is(err, ErrInvalidEventHandler) {
		t.Fatalf("err = %v, want ErrInvalidEventHandler", err)
	}
}

func TestProcessEventNameLowercased(t *testing.T) {
	p, err := Process([]string{`<input @KeyDown=`, `>`}, []any{func() {}})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if p.Parts[0].Name != "keydown" {
		t.Errorf("Name = %q, want keydown", p.Parts[0].Name)
	}
}

func TestAttrMarkerRoundTrip(t *testing.T) {
	i, ok := ParseAttrMarker(AttrMarker(42))
	if !ok || i != 42 {
		t.Errorf("ParseAttrMarker = %d %v, want 42 true", i, ok)
	}
	if _, ok := ParseAttrMarker("plain value"); ok {
		t.Error("ParseAttrMarker accepted a plain value")
	}
}

func TestCommentMarkerRoundTrip(t *testing.T) {
	i, ok := ParseCommentMarker("loom:7")
	if !ok || i != 7 {
		t.Errorf("ParseCommentMarker = %d %v, want 7 true", i, ok)
	}
	if _, ok := ParseCommentMarker("just a comment"); ok {
		t.Error("ParseCommentMarker accepted a plain comment")
	}
}

func TestUnquotedAttributeIsContent(t *testing.T) {
	// Only name=" with an opening quote classifies as attribute; everything
	// else in text position is content.
	p, err := Process([]string{`<div>count=`, `</div>`}, []any{5})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if p.Parts[0].Kind != PartContent {
		t.Errorf("Kind = %v, want Content", p.Parts[0].Kind)
	}
}
