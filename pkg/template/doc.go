// Package template compiles tagged template expressions into a static
// markup string plus an ordered list of dynamic parts.
//
// A template is a sequence of static segments interleaved with dynamic
// expressions. Process classifies each dynamic position by the trailing
// text of the static segment that precedes it:
//
//	@click=${handler}   -> event part
//	title="${value}"    -> attribute part
//	anything else       -> content part
//
// Attribute and event parts are emitted as marker attribute values inside
// the owning element tag, so the mount pass can resolve them to an already
// parsed element. Content parts are emitted as standalone marker comments,
// so the mount pass can resolve them to an insertion point between
// sibling nodes.
//
// The package has no dependencies beyond the standard library; callers
// never need to know the marker syntax except through ParseAttrMarker and
// ParseCommentMarker.
package template
