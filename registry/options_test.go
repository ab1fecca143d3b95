package registry

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSelectFeatures(t *testing.T) {
	t.Parallel()

	reg := loadTestRegistry(t)

	type feature struct {
		Name string
		Emit bool
	}

	tests := []struct {
		name string
		opts Options
		want []feature
	}{
		{
			name: "patterns match whole names",
			opts: Options{APIName: "vulkan", Versions: "VK_VERSION_1", EmitVersions: ".*"},
			want: nil,
		},
		{
			name: "emit is decided per feature",
			opts: Options{APIName: "vulkan", Versions: ".*", EmitVersions: "VK_VERSION_1_1"},
			want: []feature{
				{Name: "VK_VERSION_1_0", Emit: false},
				{Name: "VK_VERSION_1_1", Emit: true},
			},
		},
		{
			name: "extensions are ordered by number and disabled ones skipped",
			opts: Options{APIName: "vulkan", AddExtensions: ".*", EmitExtensions: "VK_KHR_swapchain"},
			want: []feature{
				{Name: "VK_KHR_swapchain", Emit: true},
				{Name: "VK_KHR_win32_surface", Emit: false},
				{Name: "VK_KHR_get_physical_device_properties2", Emit: false},
			},
		},
		{
			name: "removal wins over addition",
			opts: Options{APIName: "vulkan", AddExtensions: "VK_KHR_.*", RemoveExtensions: "VK_KHR_win32_.*|VK_KHR_swapchain"},
			want: []feature{
				{Name: "VK_KHR_get_physical_device_properties2", Emit: false},
			},
		},
		{
			name: "api filters versions and extensions",
			opts: Options{APIName: "vulkansc", Versions: ".*", AddExtensions: ".*"},
			want: []feature{
				{Name: "VK_VERSION_1_0", Emit: false},
				{Name: "VK_KHR_swapchain", Emit: false},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			features, err := reg.selectFeatures(tt.opts)
			if err != nil {
				t.Fatalf("selectFeatures() error = %v", err)
			}
			var got []feature
			for _, f := range features {
				got = append(got, feature{Name: f.Name, Emit: f.Emit})
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("selectFeatures() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOptions_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    Options
		wantErr string
	}{
		{
			name: "valid patterns",
			opts: Options{Versions: ".*", EmitVersions: "VK_VERSION_1_[0-3]", AddExtensions: "VK_KHR_.*|VK_EXT_debug_utils"},
		},
		{
			name: "empty patterns are valid",
			opts: Options{},
		},
		{
			name:    "error names the field",
			opts:    Options{Versions: ".*", RemoveExtensions: "VK_KHR_["},
			wantErr: "remove_extensions: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.opts.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.HasPrefix(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want prefix %q", err, tt.wantErr)
			}
		})
	}
}
