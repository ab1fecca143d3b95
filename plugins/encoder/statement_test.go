package encoder

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStatement_String(t *testing.T) {
	t.Parallel()

	type args struct {
		stmt   Statement
		indent int
	}

	tests := []struct {
		name string
		args args
		want string
	}{
		{
			name: "call",
			args: args{
				stmt:   &CallStatement{Func: "encode_uint32_t", Args: []string{"encoder", "value.count"}},
				indent: 1,
			},
			want: "encode_uint32_t(encoder, value.count);",
		},
		{
			name: "if block at the top level",
			args: args{
				stmt: &IfStatement{
					Condition: "pAllocator != nullptr",
					Body:      []Statement{&CallStatement{Func: "encode_VkAllocationCallbacks", Args: []string{"encoder", "*pAllocator"}}},
				},
				indent: 1,
			},
			want: "if (pAllocator != nullptr)\n\t{\n\t\tencode_VkAllocationCallbacks(encoder, *pAllocator);\n\t}",
		},
		{
			name: "nested if block",
			args: args{
				stmt: &IfStatement{
					Condition: "a != nullptr",
					Body: []Statement{&IfStatement{
						Condition: "b != nullptr",
						Body:      []Statement{&CommentStatement{Text: "nested"}},
					}},
				},
				indent: 0,
			},
			want: "if (a != nullptr)\n{\n\tif (b != nullptr)\n\t{\n\t\t// nested\n\t}\n}",
		},
		{
			name: "comment",
			args: args{stmt: &CommentStatement{Text: "pData is opaque and not encoded"}, indent: 3},
			want: "// pData is opaque and not encoded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(tt.want, tt.args.stmt.String(tt.args.indent)); diff != "" {
				t.Errorf("String() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
