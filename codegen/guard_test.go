package codegen

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGuardChain(t *testing.T) {
	t.Parallel()

	type args struct {
		// features are entered in order, each followed by a line of output.
		features []string
	}

	tests := []struct {
		name string
		args args
		want string
	}{
		{
			name: "nothing entered writes nothing",
			args: args{},
			want: "",
		},
		{
			name: "single feature",
			args: args{features: []string{"VK_VERSION_1_0"}},
			want: "#ifdef VK_VERSION_1_0\nVK_VERSION_1_0\n#endif\n",
		},
		{
			name: "blocks are chained, never nested",
			args: args{features: []string{"VK_VERSION_1_0", "VK_VERSION_1_1", "VK_KHR_swapchain"}},
			want: "#ifdef VK_VERSION_1_0\nVK_VERSION_1_0\n#endif\n" +
				"#ifdef VK_VERSION_1_1\nVK_VERSION_1_1\n#endif\n" +
				"#ifdef VK_KHR_swapchain\nVK_KHR_swapchain\n#endif\n",
		},
		{
			name: "entering the open feature again keeps the block",
			args: args{features: []string{"VK_VERSION_1_0", "VK_VERSION_1_0"}},
			want: "#ifdef VK_VERSION_1_0\nVK_VERSION_1_0\nVK_VERSION_1_0\n#endif\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var g GuardChain
			var buf strings.Builder
			for _, f := range tt.args.features {
				if err := g.Enter(&buf, f); err != nil {
					t.Fatalf("Enter() error = %v", err)
				}
				if g.Current() != f {
					t.Errorf("Current() = %q, want %q", g.Current(), f)
				}
				buf.WriteString(f + "\n")
			}
			if err := g.Close(&buf); err != nil {
				t.Fatalf("Close() error = %v", err)
			}
			if g.Current() != "" {
				t.Errorf("Current() = %q after Close, want empty", g.Current())
			}

			if diff := cmp.Diff(tt.want, buf.String()); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
