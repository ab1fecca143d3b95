// Package shader compiles a shader source into one SPIR-V file per variant
// and records the variants in a JSON atlas.
//
// A variant is a list of preprocessor defines. Its output file is named after
// the SHA-256 of the concatenated defines, so recompiling the same variant
// always produces the same path:
//
//	shaders/foo.vert.glsl + ["A=1", "B"] -> out/foo.vert.<sha256("A=1B")>.spv
package shader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vksamples/vktools/internal/toolexec"
)

const (
	GLSLCompiler   = "glslc"
	HLSLCompiler   = "dxc"
	SPIRVValidator = "spirv-val"
)

// Language is a shader source language.
type Language string

const (
	GLSL Language = "glsl"
	HLSL Language = "hlsl"
)

// Stages are the supported shader stages, as used in source file names.
var Stages = []string{
	"vert", "tesc", "tese", "geom", "frag", "comp",
	"rchit", "rahit", "rmiss", "rint", "rcall", "rgen",
	"task", "mesh",
}

var hlslProfiles = map[string]string{
	"vert": "vs_6_0",
	"tesc": "hs_6_0",
	"tese": "ds_6_0",
	"geom": "gs_6_0",
	"frag": "ps_6_0",
	"comp": "cs_6_0",
}

var ErrUnsupportedStage = errors.New("unsupported shader stage")

// HLSLProfile returns the dxc target profile of stage.
func HLSLProfile(stage string) (string, error) {
	profile, ok := hlslProfiles[stage]
	if !ok {
		return "", fmt.Errorf("%w for hlsl: %s", ErrUnsupportedStage, stage)
	}
	return profile, nil
}

// ParseSourceName splits a file name of the form <name>.<stage>.<language>.
func ParseSourceName(path string) (stage string, lang Language, err error) {
	parts := strings.Split(filepath.Base(path), ".")
	if len(parts) != 3 {
		return "", "", fmt.Errorf("input file name is not valid (must be <name>.<stage>.<language>): %s", path)
	}
	stage, lang = parts[1], Language(parts[2])
	if !slices.Contains(Stages, stage) {
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedStage, stage)
	}
	if lang != GLSL && lang != HLSL {
		return "", "", fmt.Errorf("unsupported shader language: %s", lang)
	}
	return stage, lang, nil
}

// VariantHash returns the hex SHA-256 of the concatenated defines.
func VariantHash(defines []string) string {
	sum := sha256.Sum256([]byte(strings.Join(defines, "")))
	return hex.EncodeToString(sum[:])
}

// VariantOutput returns the output path of the variant with the given hash.
func VariantOutput(output, hash string) string {
	return strings.Replace(output, ".spv", "."+hash+".spv", 1)
}

// Options configure a compilation.
type Options struct {
	Input    string
	Output   string
	Language Language
	Variants string
	Atlas    string
	// Root is the directory atlas paths are relative to.
	Root string
}

// Compiler compiles shader variants with the external toolchain.
type Compiler struct {
	runner toolexec.Runner
}

// NewCompiler creates a Compiler that runs the toolchain through runner.
func NewCompiler(runner toolexec.Runner) *Compiler {
	return &Compiler{runner: runner}
}

// Compile compiles every variant of opts.Input, validates the results and
// merges them into the atlas.
func (c *Compiler) Compile(ctx context.Context, opts Options) error {
	if _, err := os.Stat(opts.Variants); err != nil {
		return fmt.Errorf("shader variants file does not exist: %w", err)
	}
	if _, err := os.Stat(opts.Input); err != nil {
		return fmt.Errorf("input file does not exist: %w", err)
	}

	stage, lang, err := ParseSourceName(opts.Input)
	if err != nil {
		return err
	}
	if lang != opts.Language {
		return fmt.Errorf("input file extension %q does not match language %q", lang, opts.Language)
	}

	variants, err := LoadVariants(opts.Variants)
	if err != nil {
		return err
	}

	input, err := rel(opts.Root, opts.Input)
	if err != nil {
		return err
	}
	output, err := rel(opts.Root, opts.Output)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filepath.Join(opts.Root, output)), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	entry := AtlasEntry{Variants: map[string]Variant{}}
	for _, defines := range variants {
		hash := VariantHash(defines)
		out := VariantOutput(output, hash)

		logger := log.WithField("input", input).WithField("variant", hash)
		logger.Debug("compiling variant")

		if err := c.compileVariant(ctx, lang, stage, input, out, defines); err != nil {
			return fmt.Errorf("compile %s %v: %w", input, defines, err)
		}
		if _, err := c.runner.Run(ctx, SPIRVValidator, out); err != nil {
			return fmt.Errorf("SPIR-V shader validation failed for %s: %w", out, err)
		}

		entry.Variants[hash] = Variant{Defines: defines, File: out}
	}

	if err := MergeAtlas(opts.Atlas, map[string]AtlasEntry{input: entry}); err != nil {
		return fmt.Errorf("merge atlas: %w", err)
	}
	return nil
}

func (c *Compiler) compileVariant(ctx context.Context, lang Language, stage, input, output string, defines []string) error {
	var args []string
	switch lang {
	case HLSL:
		profile, err := HLSLProfile(stage)
		if err != nil {
			return err
		}
		args = []string{"-fspv-target-env=vulkan1.3", "-T", profile, "-E", "main", "-Fo", output, "-spirv", input}
	case GLSL:
		args = []string{"-fshader-stage=" + stage, input, "--target-env=vulkan1.3", "-o", output}
	default:
		return fmt.Errorf("unsupported shader language: %s", lang)
	}
	for _, d := range defines {
		args = append(args, "-D"+d)
	}

	compiler := GLSLCompiler
	if lang == HLSL {
		compiler = HLSLCompiler
	}
	if _, err := c.runner.Run(ctx, compiler, args...); err != nil {
		return fmt.Errorf("shader compilation failed: %w", err)
	}
	return nil
}

func rel(root, path string) (string, error) {
	if root == "" {
		return path, nil
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	r, err := filepath.Rel(root, abs)
	if err != nil {
		return "", fmt.Errorf("%s is not below %s: %w", path, root, err)
	}
	return filepath.ToSlash(r), nil
}
