package encoder

import (
	"fmt"
	"strings"
)

// Statement is a C++ statement in the body of a generated encoder.
//
// String returns the statement at the given indent level. The first line is
// not indented; the caller has already written the indentation for it.
type Statement interface {
	String(indent int) string
}

// CallStatement is a call to an encoder function.
//
// Example: encode_uint32_t(encoder, value.queueFamilyIndex);
type CallStatement struct {
	Func string
	Args []string
}

func (c *CallStatement) String(_ int) string {
	return fmt.Sprintf("%s(%s);", c.Func, strings.Join(c.Args, ", "))
}

// IfStatement is an if block with Allman braces.
//
// Example:
//
//	if (pAllocator != nullptr)
//	{
//		encode_VkAllocationCallbacks(encoder, *pAllocator);
//	}
type IfStatement struct {
	Condition string
	Body      []Statement
}

func (i *IfStatement) String(indent int) string {
	var buf strings.Builder
	tabs := strings.Repeat("\t", indent)

	buf.WriteString(fmt.Sprintf("if (%s)\n", i.Condition))
	buf.WriteString(tabs + "{\n")
	for _, stmt := range i.Body {
		buf.WriteString(tabs + "\t")
		buf.WriteString(stmt.String(indent + 1))
		buf.WriteString("\n")
	}
	buf.WriteString(tabs + "}")

	return buf.String()
}

// CommentStatement is a line comment.
type CommentStatement struct {
	Text string
}

func (c *CommentStatement) String(_ int) string {
	return "// " + c.Text
}
