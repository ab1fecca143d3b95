// Package codegen derives the metadata C++ generators need from registry
// elements: how a struct member or command parameter is typed, whether it is
// a string, array or pointer, and which sibling encodes its length.
package codegen

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/antchfx/xmlquery"

	"github.com/vksamples/vktools/registry"
)

// ErrSchemaViolation is returned when a registry element does not have the
// shape the classifier relies on.
var ErrSchemaViolation = errors.New("registry schema violation")

var fixedLengthPattern = regexp.MustCompile(`\[([0-9]+)\]`)

// Member describes one struct member or command parameter.
type Member struct {
	Elem *xmlquery.Node
	Name string
	// Type is the base type without qualifiers.
	Type string
	// TypeKey is the base type decorated with const and pointer markers,
	// e.g. "const char* const*".
	TypeKey string
	// Length is a sibling member name, an integer literal or an enum
	// constant. Empty when the member has no length.
	Length string
	// Values holds the values attribute, set on sType members.
	Values   string
	Optional string

	forceFixedArray bool
}

// NewMember classifies a <member> or <param> element.
func NewMember(elem *xmlquery.Node) (*Member, error) {
	nameElem := elem.SelectElement("name")
	if nameElem == nil {
		return nil, fmt.Errorf("%w: <%s> without <name>", ErrSchemaViolation, elem.Data)
	}
	typeElem := elem.SelectElement("type")
	if typeElem == nil {
		return nil, fmt.Errorf("%w: <%s> %s without <type>", ErrSchemaViolation, elem.Data, nameElem.InnerText())
	}

	m := &Member{
		Elem:     elem,
		Name:     nameElem.InnerText(),
		Type:     typeElem.InnerText(),
		Values:   elem.SelectAttr("values"),
		Optional: elem.SelectAttr("optional"),
	}

	m.TypeKey = m.Type + strings.TrimSpace(tail(typeElem))
	nameTail := tail(nameElem)
	if strings.Contains(nameTail, "[") {
		m.TypeKey += "*"
	}

	length, hasLength := registry.Attr(elem, "len")

	// Some versions of the registry spell lengths as latex, the innermost
	// braces hold the name of the length member.
	if strings.HasPrefix(length, "latexmath") {
		parts := strings.Split(strings.NewReplacer("{", "\x00", "}", "\x00").Replace(length), "\x00")
		length = parts[len(parts)/2]
	}

	// Several encodings may be listed, the first one wins.
	if length != "" {
		length, _, _ = strings.Cut(length, ",")
	}

	if !hasLength && nameTail != "" {
		if match := fixedLengthPattern.FindStringSubmatch(nameTail); match != nil {
			length = match[1]
		}
	}

	if length == "" {
		if enumElem := elem.SelectElement("enum"); enumElem != nil {
			length = enumElem.InnerText()
			m.forceFixedArray = true
		}
	}
	m.Length = length

	if strings.TrimSpace(head(elem)) == "const" {
		m.TypeKey = "const " + m.TypeKey
	}

	return m, nil
}

func newMembers(elems []*xmlquery.Node) ([]*Member, error) {
	members := make([]*Member, 0, len(elems))
	for _, e := range elems {
		m, err := NewMember(e)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}

// IsPointer reports whether the member is declared through a pointer.
func (m *Member) IsPointer() bool {
	return strings.Contains(m.TypeKey, "*")
}

// IsStringArray reports whether the member is an array of C strings.
func (m *Member) IsStringArray() bool {
	switch m.TypeKey {
	case "char* const*", "const char* const*":
		return true
	}
	return false
}

// IsString reports whether the member is a C string.
func (m *Member) IsString() bool {
	switch m.TypeKey {
	case "char*", "char[]", "const char*", "const char[]":
		return true
	}
	return false
}

// IsFixedLengthArray reports whether the length is a compile time constant.
func (m *Member) IsFixedLengthArray() bool {
	if m.forceFixedArray {
		return true
	}
	_, err := strconv.Atoi(strings.TrimSpace(m.Length))
	return err == nil
}

// IsArray reports whether the member is encoded as a sequence of elements.
func (m *Member) IsArray() bool {
	if m.IsString() || m.IsStringArray() {
		return false
	}
	if m.Length != "" {
		return true
	}
	return !m.IsFixedLengthArray() && strings.Contains(m.TypeKey, "[]")
}

// IsConst reports whether the member is const qualified.
func (m *Member) IsConst() bool {
	return strings.HasPrefix(m.TypeKey, "const")
}

// LengthNeedsDereference reports whether the length names a pointer to a
// count, such as pPropertyCount, rather than a count field or a member access
// like pStruct->count.
//
// This relies on the registry's naming convention only.
func (m *Member) LengthNeedsDereference() bool {
	l := m.Length
	if len(l) < 2 || strings.Contains(l, "->") || l[0] != 'p' {
		return false
	}
	r, _ := utf8.DecodeRuneInString(l[1:])
	return unicode.IsUpper(r)
}

// EncodeLength returns the expression that evaluates to the member's length.
func (m *Member) EncodeLength() string {
	if m.LengthNeedsDereference() {
		return "*" + m.Length
	}
	return m.Length
}

// EncoderFunction returns the name of the C++ function that encodes the
// member.
func (m *Member) EncoderFunction() string {
	switch {
	case m.IsString():
		return "encode_cstring"
	case m.IsStringArray():
		return "encode_cstringArray"
	case m.IsArray() || m.IsFixedLengthArray():
		return fmt.Sprintf("encode_%sArray", m.Type)
	default:
		return fmt.Sprintf("encode_%s", m.Type)
	}
}

// head returns the text before the first child element of n.
func head(n *xmlquery.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil && isText(c); c = c.NextSibling {
		sb.WriteString(c.Data)
	}
	return sb.String()
}

// tail returns the text between n and its next sibling element.
func tail(n *xmlquery.Node) string {
	var sb strings.Builder
	for c := n.NextSibling; c != nil && isText(c); c = c.NextSibling {
		sb.WriteString(c.Data)
	}
	return sb.String()
}

func isText(n *xmlquery.Node) bool {
	return n.Type == xmlquery.TextNode || n.Type == xmlquery.CharDataNode
}
