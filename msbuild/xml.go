package msbuild

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Node is a child of an Element: *Element, Text or Comment.
type Node interface {
	isNode()
}

// Text is the character data of a leaf element, trimmed.
type Text string

// Comment is an XML comment kept for round-tripping.
type Comment string

func (Text) isNode()    {}
func (Comment) isNode() {}

// Element is one XML element. Names keep their source prefix.
type Element struct {
	Name     string
	Attrs    []xml.Attr
	Children []Node

	// slot marks a placeholder where generated groups are written.
	slot string
}

func (*Element) isNode() {}

// Attr returns the value of the attribute name (case-insensitive).
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if strings.EqualFold(attrName(a.Name), name) {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets or adds an attribute.
func (e *Element) SetAttr(name, value string) {
	for i, a := range e.Attrs {
		if strings.EqualFold(attrName(a.Name), name) {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, xml.Attr{Name: xml.Name{Local: name}, Value: value})
}

// RemoveAttr deletes an attribute if present.
func (e *Element) RemoveAttr(name string) {
	out := e.Attrs[:0]
	for _, a := range e.Attrs {
		if !strings.EqualFold(attrName(a.Name), name) {
			out = append(out, a)
		}
	}
	e.Attrs = out
}

// Text returns the element's character data.
func (e *Element) Text() string {
	var b strings.Builder
	for _, c := range e.Children {
		if t, ok := c.(Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

// Elements returns the child elements.
func (e *Element) Elements() []*Element {
	var out []*Element
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok {
			out = append(out, el)
		}
	}
	return out
}

// IsLeaf reports whether the element has no child elements.
func (e *Element) IsLeaf() bool {
	for _, c := range e.Children {
		if _, ok := c.(*Element); ok {
			return false
		}
	}
	return true
}

func attrName(n xml.Name) string {
	if n.Space != "" {
		return n.Space + ":" + n.Local
	}
	return n.Local
}

// parseTree reads a document into an element tree. Whitespace between
// elements is dropped; the XML declaration is regenerated on write.
func parseTree(data []byte) (*Element, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	dec := xml.NewDecoder(bytes.NewReader(data))

	var root *Element
	var stack []*Element
	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse project XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: attrName(t.Name), Attrs: append([]xml.Attr(nil), t.Attr...)}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("failed to parse project XML: multiple root elements")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)

		case xml.EndElement:
			if len(stack) == 0 || stack[len(stack)-1].Name != attrName(t.Name) {
				return nil, fmt.Errorf("failed to parse project XML: unexpected </%s>", attrName(t.Name))
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			if s := strings.TrimSpace(string(t)); s != "" {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, Text(s))
			}

		case xml.Comment:
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, Comment(strings.TrimSpace(string(t))))
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("failed to parse project XML: empty document")
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("failed to parse project XML: unclosed <%s>", stack[len(stack)-1].Name)
	}
	return root, nil
}

var (
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "\n", "&#xA;", "\t", "&#x9;")
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
)

type treeWriter struct {
	buf    bytes.Buffer
	expand func(w *treeWriter, slot string, depth int)
}

func (w *treeWriter) indent(depth int) {
	w.buf.WriteString(strings.Repeat("  ", depth))
}

func (w *treeWriter) element(e *Element, depth int) {
	if e.slot != "" {
		if w.expand != nil {
			w.expand(w, e.slot, depth)
		}
		return
	}

	w.indent(depth)
	w.buf.WriteByte('<')
	w.buf.WriteString(e.Name)
	for _, a := range e.Attrs {
		fmt.Fprintf(&w.buf, ` %s="%s"`, attrName(a.Name), attrEscaper.Replace(a.Value))
	}

	switch {
	case len(e.Children) == 0:
		w.buf.WriteString(" />\n")
	case e.IsLeaf() && !hasComment(e):
		w.buf.WriteByte('>')
		w.buf.WriteString(textEscaper.Replace(e.Text()))
		fmt.Fprintf(&w.buf, "</%s>\n", e.Name)
	default:
		w.buf.WriteString(">\n")
		for _, c := range e.Children {
			w.node(c, depth+1)
		}
		w.indent(depth)
		fmt.Fprintf(&w.buf, "</%s>\n", e.Name)
	}
}

func (w *treeWriter) node(n Node, depth int) {
	switch v := n.(type) {
	case *Element:
		w.element(v, depth)
	case Text:
		w.indent(depth)
		w.buf.WriteString(textEscaper.Replace(string(v)))
		w.buf.WriteByte('\n')
	case Comment:
		w.indent(depth)
		fmt.Fprintf(&w.buf, "<!-- %s -->\n", v)
	}
}

func hasComment(e *Element) bool {
	for _, c := range e.Children {
		if _, ok := c.(Comment); ok {
			return true
		}
	}
	return false
}

// leaf builds <name>value</name>.
func leaf(name, value string, attrs ...xml.Attr) *Element {
	el := &Element{Name: name, Attrs: attrs}
	if value != "" {
		el.Children = []Node{Text(value)}
	}
	return el
}
