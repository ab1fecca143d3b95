package structuretype

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/tools/txtar"

	"github.com/vksamples/vktools/codegen"
	"github.com/vksamples/vktools/config"
	"github.com/vksamples/vktools/registry"
)

// loadArchive returns the registry and expected output stored in a txtar
// archive under testdata.
func loadArchive(t *testing.T, name string) (*registry.Registry, string) {
	t.Helper()

	ar, err := txtar.ParseFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("parse archive: %v", err)
	}

	var vk, want []byte
	for _, f := range ar.Files {
		switch f.Name {
		case "vk.xml":
			vk = f.Data
		case "want.hpp":
			want = f.Data
		}
	}
	if vk == nil || want == nil {
		t.Fatalf("%s must contain vk.xml and want.hpp", name)
	}

	reg, err := registry.Parse(bytes.NewReader(vk))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return reg, string(want)
}

func newConfig(inline bool, copyright string) *config.Config {
	return &config.Config{
		API:            "vulkan",
		Copyright:      copyright,
		Versions:       ".*",
		EmitVersions:   ".*",
		AddExtensions:  ".*",
		EmitExtensions: ".*",
		Generators: config.GeneratorsConfig{
			StructureType: config.StructureTypeConfig{Inline: inline},
		},
	}
}

func TestPlugin_Render(t *testing.T) {
	t.Parallel()

	type args struct {
		archive   string
		inline    bool
		copyright string
	}

	tests := []struct {
		name string
		args args
	}{
		{
			name: "specializations grouped by feature",
			args: args{archive: "basic.txtar"},
		},
		{
			name: "inline specializations with a custom copyright",
			args: args{archive: "inline.txtar", inline: true, copyright: "Copyright (c) 2023, Example Contributors"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			reg, body := loadArchive(t, tt.args.archive)
			p := New(newConfig(tt.args.inline, tt.args.copyright), reg)

			var buf bytes.Buffer
			if err := p.Render(&buf); err != nil {
				t.Fatalf("Render() error = %v", err)
			}

			want := codegen.FileHeader(tt.args.copyright) + body
			if diff := cmp.Diff(want, buf.String()); diff != "" {
				t.Errorf("Render() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPlugin_RenderTwice(t *testing.T) {
	t.Parallel()

	reg, body := loadArchive(t, "basic.txtar")
	p := New(newConfig(false, ""), reg)

	for i := range 2 {
		var buf bytes.Buffer
		if err := p.Render(&buf); err != nil {
			t.Fatalf("Render() #%d error = %v", i, err)
		}
		if diff := cmp.Diff(codegen.FileHeader("")+body, buf.String()); diff != "" {
			t.Errorf("Render() #%d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestPlugin_Generate(t *testing.T) {
	t.Parallel()

	reg, body := loadArchive(t, "basic.txtar")
	cfg := newConfig(false, "")
	cfg.Generators.StructureType.Filename = filepath.Join(t.TempDir(), "vulkan", "structure_type_helpers.hpp")

	p := New(cfg, reg)
	if p.Name() != "structuretype" {
		t.Errorf("Name() = %q, want structuretype", p.Name())
	}
	if err := p.Generate(); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	got, err := os.ReadFile(cfg.Generators.StructureType.Filename)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(codegen.FileHeader("")+body, string(got)); diff != "" {
		t.Errorf("generated file mismatch (-want +got):\n%s", diff)
	}
}
