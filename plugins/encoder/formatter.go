package encoder

import (
	"fmt"
	"strings"
)

// CodeFormatter formats encoder declarations and definitions.
type CodeFormatter struct{}

// NewCodeFormatter creates a CodeFormatter.
func NewCodeFormatter() *CodeFormatter {
	return &CodeFormatter{}
}

// FormatDecl formats the declaration of an encoder implemented by hand, for
// types the generator cannot see into.
//
// Example: void encode_VkFormat(Encoder &encoder, VkFormat value);
func (f *CodeFormatter) FormatDecl(typeName string) string {
	return fmt.Sprintf("void encode_%s(Encoder &encoder, %s value);\n", typeName, typeName)
}

// FormatStructDecl formats the declaration of a struct encoder that takes its
// argument by reference.
func (f *CodeFormatter) FormatStructDecl(typeName string) string {
	return fmt.Sprintf("void encode_%s(Encoder &encoder, const %s &value);\n", typeName, typeName)
}

// FormatFunction formats an inline encoder definition.
//
// Parameters:
//   - name: the encoded type or command, e.g. "VkApplicationInfo"
//   - params: the parameter list after the encoder itself
//   - body: the statements of the function
func (f *CodeFormatter) FormatFunction(name string, params []string, body []Statement) string {
	var buf strings.Builder

	// Signature
	buf.WriteString(fmt.Sprintf("inline void encode_%s(%s)\n", name, strings.Join(append([]string{"Encoder &encoder"}, params...), ", ")))
	buf.WriteString("{\n")

	// Body
	for _, stmt := range body {
		buf.WriteString("\t")
		buf.WriteString(stmt.String(1))
		buf.WriteString("\n")
	}

	// Closing
	buf.WriteString("}\n")

	return buf.String()
}
