// Package scaffold creates new sample projects and the Android Gradle project
// by running the cmake scripts under bldsys/cmake.
package scaffold

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/iancoleman/strcase"
	log "github.com/sirupsen/logrus"

	"github.com/vksamples/vktools/internal/toolexec"
)

// Templates are the sample templates create_sample_project.cmake knows.
var Templates = []string{"sample", "sample_api"}

// SampleOptions configure a new sample.
type SampleOptions struct {
	// Root is the root of the samples repository.
	Root     string
	Name     string
	Template string
	Category string
	// OutputDir defaults to <Root>/samples/<Category>.
	OutputDir string
}

// AndroidOptions configure the Gradle project.
type AndroidOptions struct {
	Root string
	// OutputDir is relative to Root and defaults to build/android_gradle.
	OutputDir string
}

// Prompter asks the user to confirm an action.
type Prompter interface {
	Confirm(question string) (bool, error)
}

// Generator runs the scaffolding scripts.
type Generator struct {
	runner   toolexec.Runner
	prompter Prompter
}

// NewGenerator creates a Generator.
func NewGenerator(runner toolexec.Runner, prompter Prompter) *Generator {
	return &Generator{runner: runner, prompter: prompter}
}

// SampleDir returns the directory the sample is created in.
func (o SampleOptions) SampleDir() string {
	out := o.OutputDir
	if out == "" {
		out = filepath.Join(o.Root, "samples", o.Category)
	}
	return filepath.Join(out, strcase.ToSnake(o.Name))
}

// Sample creates a sample from a template. It returns false without running
// cmake when the sample exists and the user declines to overwrite it.
func (g *Generator) Sample(ctx context.Context, opts SampleOptions) (bool, error) {
	if opts.Name == "" {
		return false, errors.New("sample name is empty")
	}
	if strcase.ToCamel(opts.Name) != opts.Name {
		log.WithField("name", opts.Name).Warn("sample names are usually CamelCase")
	}

	dir := opts.SampleDir()
	if _, err := os.Stat(dir); err == nil {
		ok, err := g.prompter.Confirm(fmt.Sprintf("The output directory %s is not empty. Would you like to overwrite its content with the sample template? [y/N]", dir))
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}

	log.WithField("name", opts.Name).WithField("template", opts.Template).Info("generating sample project")

	_, err := g.runner.Run(ctx, "cmake",
		"-DSAMPLE_NAME="+opts.Name,
		"-DTEMPLATE_NAME="+opts.Template,
		"-DOUTPUT_DIR="+filepath.Dir(dir),
		"-P", filepath.Join(opts.Root, "bldsys", "cmake", "create_sample_project.cmake"),
	)
	if err != nil {
		return false, fmt.Errorf("create sample project: %w", err)
	}
	return true, nil
}

// AndroidGradle generates the Android Gradle project.
func (g *Generator) AndroidGradle(ctx context.Context, opts AndroidOptions) error {
	out := opts.OutputDir
	if out == "" {
		out = filepath.Join("build", "android_gradle")
	}
	out = filepath.Join(opts.Root, out)

	log.WithField("dir", out).Info("generating Android Gradle files")

	android := filepath.Join(opts.Root, "app", "android")
	_, err := g.runner.Run(ctx, "cmake",
		"-DPROJECT_NAME=vulkan_samples",
		"-DANDROID_API=30",
		"-DARCH_ABI=arm64-v8a",
		"-DANDROID_MANIFEST="+filepath.Join(android, "AndroidManifest.xml"),
		"-DJAVA_DIRS="+filepath.Join(android, "java"),
		"-DRES_DIRS="+filepath.Join(android, "res"),
		"-DOUTPUT_DIR="+out,
		"-DASSET_DIRS=",
		"-DJNI_LIBS_DIRS=",
		"-DNATIVE_SCRIPT="+filepath.Join(opts.Root, "CMakeLists.txt"),
		"-P", filepath.Join(opts.Root, "bldsys", "cmake", "create_gradle_project.cmake"),
	)
	if err != nil {
		return fmt.Errorf("create gradle project: %w", err)
	}
	return nil
}

// TerminalPrompter asks on a terminal and accepts y, yes, n, no or an empty
// answer, which means no.
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer
}

func (p *TerminalPrompter) Confirm(question string) (bool, error) {
	fmt.Fprintln(p.Out, question)

	s := bufio.NewScanner(p.In)
	for s.Scan() {
		switch strings.ToLower(strings.TrimSpace(s.Text())) {
		case "y", "yes":
			return true, nil
		case "", "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.Out, "Please respond with 'y' or 'n'")
	}
	if err := s.Err(); err != nil {
		return false, err
	}
	return false, nil
}
