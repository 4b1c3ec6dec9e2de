package host

import (
	"strconv"
	"strings"
)

// voidTags are elements serialized without a closing tag.
var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// RenderString serializes a node subtree to HTML.
func (d *Document) RenderString(n *Node) string {
	var b strings.Builder
	d.render(&b, n, false)
	return b.String()
}

// RenderStringAnnotated serializes a node subtree with a data-loom-id
// attribute on every element, so a remote client can address nodes by ID.
func (d *Document) RenderStringAnnotated(n *Node) string {
	var b strings.Builder
	d.render(&b, n, true)
	return b.String()
}

func (d *Document) render(b *strings.Builder, n *Node, annotate bool) {
	switch n.typ {
	case TextNode:
		b.WriteString(escapeHTML(n.data))
	case CommentNode:
		b.WriteString("<!--")
		b.WriteString(n.data)
		b.WriteString("-->")
	case ElementNode:
		if n.tag == fragmentTag {
			for _, c := range n.children {
				d.render(b, c, annotate)
			}
			return
		}
		b.WriteByte('<')
		b.WriteString(n.tag)
		if annotate {
			b.WriteString(` data-loom-id="`)
			b.WriteString(strconv.FormatUint(n.id, 10))
			b.WriteByte('"')
		}
		for _, a := range n.attrs {
			b.WriteByte(' ')
			b.WriteString(a.Name)
			b.WriteString(`="`)
			b.WriteString(escapeAttr(a.Value))
			b.WriteByte('"')
		}
		b.WriteByte('>')
		if voidTags[n.tag] {
			return
		}
		for _, c := range n.children {
			d.render(b, c, annotate)
		}
		b.WriteString("</")
		b.WriteString(n.tag)
		b.WriteByte('>')
	}
}

// escapeHTML escapes text for safe inclusion in HTML content.
func escapeHTML(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}

// escapeAttr escapes text for safe inclusion in a quoted attribute value.
func escapeAttr(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '"':
			buf.WriteString("&quot;")
		case '\n':
			buf.WriteString("&#10;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
