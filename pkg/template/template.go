package template

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// ErrStructure is returned when the static segments and expressions do not
// line up: len(statics) must equal len(exprs)+1, and at least one static
// segment must be present.
var ErrStructure = errors.New("loom: malformed template structure")

// ErrInvalidEventHandler is returned when the expression bound to an event
// position is not invokable.
var ErrInvalidEventHandler = errors.New("loom: event expression is not a function")

// PartKind discriminates the three dynamic part flavors.
type PartKind uint8

const (
	PartEvent     PartKind = iota + 1 // @name= binding on an element
	PartAttribute                     // name=" binding on an element
	PartContent                       // free-standing content position
)

// String returns the string representation of the PartKind.
func (k PartKind) String() string {
	switch k {
	case PartEvent:
		return "Event"
	case PartAttribute:
		return "Attribute"
	case PartContent:
		return "Content"
	default:
		return "Unknown"
	}
}

// Part is one dynamic position in a compiled template. Index is the part's
// position among all dynamic positions, assigned in left-to-right encounter
// order; it is the sole correlation key between compiler output and the
// mount/diff engine. Name carries the event or attribute name (lowercased,
// matching how HTML parsers canonicalize attribute keys) and is empty for
// content parts.
type Part struct {
	Index int
	Kind  PartKind
	Name  string
	Value any
}

// Processed is the immutable result of compiling one template expression.
// A new Processed is produced on every render.
type Processed struct {
	Markup string
	Parts  []Part
}

// Part returns the part with the given index, or false when the index is
// not a dynamic position of this template.
func (p *Processed) Part(index int) (Part, bool) {
	if index < 0 || index >= len(p.Parts) {
		return Part{}, false
	}
	return p.Parts[index], true
}

var (
	eventPattern = regexp.MustCompile(`@([a-zA-Z][a-zA-Z0-9_-]*)\s*=\s*"?$`)
	attrPattern  = regexp.MustCompile(`([a-zA-Z_][a-zA-Z0-9_:.-]*)\s*=\s*"$`)
)

// Process compiles static segments and interleaved dynamic expressions into
// a Processed template. The final static segment is appended trimmed; every
// other segment is appended unmodified with its marker token.
func Process(statics []string, exprs []any) (*Processed, error) {
	if len(statics) == 0 {
		return nil, fmt.Errorf("no static segments: %w", ErrStructure)
	}
	if len(statics) != len(exprs)+1 {
		return nil, fmt.Errorf("%d static segments for %d expressions: %w",
			len(statics), len(exprs), ErrStructure)
	}

	var b strings.Builder
	parts := make([]Part, 0, len(exprs))

	for i, expr := range exprs {
		seg := statics[i]

		if m := eventPattern.FindStringSubmatch(seg); m != nil {
			if !isInvokable(expr) {
				return nil, fmt.Errorf("part %d (@%s): %w", i, m[1], ErrInvalidEventHandler)
			}
			b.WriteString(seg)
			b.WriteString(AttrMarker(i))
			parts = append(parts, Part{Index: i, Kind: PartEvent, Name: strings.ToLower(m[1]), Value: expr})
			continue
		}

		if m := attrPattern.FindStringSubmatch(seg); m != nil {
			b.WriteString(seg)
			b.WriteString(AttrMarker(i))
			parts = append(parts, Part{Index: i, Kind: PartAttribute, Name: strings.ToLower(m[1]), Value: expr})
			continue
		}

		b.WriteString(seg)
		b.WriteString(CommentMarker(i))
		parts = append(parts, Part{Index: i, Kind: PartContent, Value: expr})
	}

	b.WriteString(strings.TrimSpace(statics[len(statics)-1]))

	return &Processed{Markup: b.String(), Parts: parts}, nil
}

// isInvokable reports whether expr can be attached as an event handler.
func isInvokable(expr any) bool {
	if expr == nil {
		return false
	}
	return reflect.ValueOf(expr).Kind() == reflect.Func
}

const (
	attrMarkerPrefix = "{{loom:"
	attrMarkerSuffix = "}}"
	commentPrefix    = "loom:"
)

// AttrMarker returns the marker token embedded as an attribute value for
// the dynamic part at index i.
func AttrMarker(i int) string {
	return attrMarkerPrefix + strconv.Itoa(i) + attrMarkerSuffix
}

// CommentMarker returns the marker comment embedded into markup for the
// content part at index i.
func CommentMarker(i int) string {
	return "<!--" + commentPrefix + strconv.Itoa(i) + "-->"
}

// ParseAttrMarker extracts the part index from an attribute value marker.
func ParseAttrMarker(value string) (int, bool) {
	if !strings.HasPrefix(value, attrMarkerPrefix) || !strings.HasSuffix(value, attrMarkerSuffix) {
		return 0, false
	}
	digits := value[len(attrMarkerPrefix) : len(value)-len(attrMarkerSuffix)]
	i, err := strconv.Atoi(digits)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

// ParseCommentMarker extracts the part index from comment character data.
func ParseCommentMarker(data string) (int, bool) {
	data = strings.TrimSpace(data)
	if !strings.HasPrefix(data, commentPrefix) {
		return 0, false
	}
	i, err := strconv.Atoi(data[len(commentPrefix):])
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}
