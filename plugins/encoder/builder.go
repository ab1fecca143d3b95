package encoder

import (
	"fmt"
	"strings"

	"github.com/vksamples/vktools/codegen"
)

// StatementBuilder turns classified members into encoder statements.
type StatementBuilder struct{}

// NewStatementBuilder creates a StatementBuilder.
func NewStatementBuilder() *StatementBuilder {
	return &StatementBuilder{}
}

// BuildStruct returns the statements encoding every member of s. Members are
// read through the reference parameter named value.
func (b *StatementBuilder) BuildStruct(s *codegen.StructMembers) []Statement {
	chainable := s.IsChainable()

	var body []Statement
	for m := range s.Members() {
		expr := "value." + m.Name
		if chainable && m.Name == "pNext" {
			body = append(body, call("encode_pNext", expr))
			continue
		}
		body = append(body, b.member(m, expr, structLength(s, m)))
	}
	return body
}

// BuildCommand returns the statements encoding every parameter of c.
func (b *StatementBuilder) BuildCommand(c *codegen.CommandMembers) []Statement {
	var body []Statement
	for m := range c.Params() {
		body = append(body, b.member(m, m.Name, m.EncodeLength()))
	}
	return body
}

func (b *StatementBuilder) member(m *codegen.Member, expr, length string) Statement {
	switch {
	case m.IsString():
		return call(m.EncoderFunction(), expr)
	case m.IsStringArray(), m.IsArray(), m.IsFixedLengthArray():
		if length == "" {
			return call(m.EncoderFunction(), expr)
		}
		return call(m.EncoderFunction(), expr, length)
	case m.IsPointer() && m.Type == "void":
		return &CommentStatement{Text: fmt.Sprintf("%s is opaque and not encoded", m.Name)}
	case m.IsPointer():
		return &IfStatement{
			Condition: expr + " != nullptr",
			Body:      []Statement{call(m.EncoderFunction(), "*"+expr)},
		}
	default:
		return call(m.EncoderFunction(), expr)
	}
}

// structLength returns the length of m as seen from inside a struct encoder.
// Lengths naming a sibling member, directly or through ->, are read from
// value; constants are used as is.
func structLength(s *codegen.StructMembers, m *codegen.Member) string {
	if m.Length == "" || m.IsFixedLengthArray() {
		return m.Length
	}
	base, _, _ := strings.Cut(m.Length, "->")
	if s.Lookup(strings.TrimSpace(base)) != nil {
		return "value." + m.Length
	}
	return m.Length
}

func call(fn string, args ...string) *CallStatement {
	return &CallStatement{Func: fn, Args: append([]string{"encoder"}, args...)}
}
