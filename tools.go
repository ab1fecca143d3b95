package main

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vksamples/vktools/copyright"
	"github.com/vksamples/vktools/internal/toolexec"
	"github.com/vksamples/vktools/scaffold"
	"github.com/vksamples/vktools/shader"
	"github.com/vksamples/vktools/systemtest"
)

func newCopyrightCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "copyright [branch]",
		Short: "Check that modified files include copyright headers with the current year",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCopyright,
	}
	cmd.Flags().Bool("fix", false, "Fix the files with outdated headers")
	return cmd
}

func runCopyright(cmd *cobra.Command, args []string) error {
	fix, _ := cmd.Flags().GetBool("fix")
	branch := "main"
	if len(args) > 0 {
		branch = args[0]
	}
	out := cmd.OutOrStdout()

	if err := toolexec.LookPath("git"); err != nil {
		return err
	}

	ignore, err := copyright.LoadIgnore(copyright.IgnoreFile)
	if err != nil {
		return err
	}
	files, err := copyright.ChangedFiles(cmd.Context(), &toolexec.Exec{}, branch, ignore)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(out, colorInfo+"No files found"+colorEnd)
		return nil
	}

	year := time.Now().Year()
	report, err := copyright.Check(files, year)
	if err != nil {
		return err
	}

	if len(report.Missing) > 0 {
		fmt.Fprintln(out, colorError+"Missing copyright:"+colorEnd)
		for _, f := range report.Missing {
			fmt.Fprintln(out, f)
		}
		fmt.Fprintln(out)
	}

	if len(report.Outdated) > 0 {
		fmt.Fprintln(out, colorError+"Outdated copyright:"+colorEnd)
		for _, f := range slices.Sorted(maps.Keys(report.Outdated)) {
			if fix {
				if _, err := copyright.Fix(f, year); err != nil {
					return err
				}
				fmt.Fprintln(out, colorSuccess+"Fixed "+f+colorEnd)
				continue
			}
			fmt.Fprintln(out, f)
			for _, token := range report.Outdated[f] {
				fmt.Fprintln(out, "\t", colorWarning+token+colorEnd)
			}
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "\n=== Files Checked ===")
	for _, f := range files {
		fmt.Fprintln(out, colorInfo+f+colorEnd)
	}

	if !report.OK() {
		return errFailed
	}
	return nil
}

func newShaderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shader <input> <output>",
		Short: "Compile every variant of a shader to SPIR-V and record it in the atlas",
		Args:  cobra.ExactArgs(2),
		RunE:  runShader,
	}
	cmd.Flags().String("language", string(shader.GLSL), "Shader language: glsl or hlsl")
	cmd.Flags().String("variants", "", "Path to the shader variants file")
	cmd.Flags().String("atlas", "", "Path to the atlas file")
	cmd.Flags().String("root", ".", "Directory atlas paths are relative to")
	_ = cmd.MarkFlagRequired("variants")
	_ = cmd.MarkFlagRequired("atlas")
	return cmd
}

func runShader(cmd *cobra.Command, args []string) error {
	language, _ := cmd.Flags().GetString("language")
	variants, _ := cmd.Flags().GetString("variants")
	atlas, _ := cmd.Flags().GetString("atlas")
	root, _ := cmd.Flags().GetString("root")

	lang := shader.Language(language)
	if lang != shader.GLSL && lang != shader.HLSL {
		return fmt.Errorf("unsupported shader language: %s", language)
	}

	compiler := shader.GLSLCompiler
	if lang == shader.HLSL {
		compiler = shader.HLSLCompiler
	}
	if err := toolexec.LookPath(compiler, shader.SPIRVValidator); err != nil {
		return err
	}

	c := shader.NewCompiler(&toolexec.Exec{Dir: root})
	return c.Compile(cmd.Context(), shader.Options{
		Input:    args[0],
		Output:   args[1],
		Language: lang,
		Variants: variants,
		Atlas:    atlas,
		Root:     root,
	})
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate sample projects and the Android Gradle project",
	}
	cmd.PersistentFlags().String("root", ".", "Root of the samples repository")

	for _, template := range scaffold.Templates {
		sampleCmd := &cobra.Command{
			Use:   template,
			Short: fmt.Sprintf("Generate a sample project from the %s template", template),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runGenerateSample(cmd, template)
			},
		}
		sampleCmd.Flags().String("name", "SampleTest", "Name of the sample project")
		sampleCmd.Flags().String("category", "api", "Which category the sample project belongs to")
		sampleCmd.Flags().String("output-dir", "", "Output directory, <root>/samples/<category> when empty")
		cmd.AddCommand(sampleCmd)
	}

	androidCmd := &cobra.Command{
		Use:   "android",
		Short: "Generate Android Gradle files",
		Args:  cobra.NoArgs,
		RunE:  runGenerateAndroid,
	}
	androidCmd.Flags().String("output-dir", "", "Output directory relative to the root, build/android_gradle when empty")
	cmd.AddCommand(androidCmd)

	return cmd
}

func newScaffold(cmd *cobra.Command) (*scaffold.Generator, error) {
	if err := toolexec.LookPath("cmake"); err != nil {
		return nil, err
	}
	prompter := &scaffold.TerminalPrompter{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}
	return scaffold.NewGenerator(&toolexec.Exec{}, prompter), nil
}

func runGenerateSample(cmd *cobra.Command, template string) error {
	root, _ := cmd.Flags().GetString("root")
	name, _ := cmd.Flags().GetString("name")
	category, _ := cmd.Flags().GetString("category")
	outputDir, _ := cmd.Flags().GetString("output-dir")

	g, err := newScaffold(cmd)
	if err != nil {
		return err
	}
	created, err := g.Sample(cmd.Context(), scaffold.SampleOptions{
		Root:      root,
		Name:      name,
		Template:  template,
		Category:  category,
		OutputDir: outputDir,
	})
	if err != nil {
		return err
	}
	if !created {
		log.WithField("name", name).Info("sample left unchanged")
	}
	return nil
}

func runGenerateAndroid(cmd *cobra.Command, args []string) error {
	root, _ := cmd.Flags().GetString("root")
	outputDir, _ := cmd.Flags().GetString("output-dir")

	g, err := newScaffold(cmd)
	if err != nil {
		return err
	}
	return g.AndroidGradle(cmd.Context(), scaffold.AndroidOptions{Root: root, OutputDir: outputDir})
}

func newSystemTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "systemtest",
		Short: "Run samples, screenshot them and test the screenshots against gold images",
		Args:  cobra.NoArgs,
		RunE:  runSystemTest,
	}
	cmd.Flags().StringP("build", "B", "", "Path to the cmake build directory, relative to the root")
	cmd.Flags().StringP("config", "C", "", "Build configuration to use")
	cmd.Flags().StringSliceP("subtests", "S", nil, "Sub tests to run, every directory of <dir>/sub_tests when empty")
	cmd.Flags().BoolP("parallel", "P", false, "Run tests in parallel")
	cmd.Flags().BoolP("desktop", "D", false, "Only run tests on desktop")
	cmd.Flags().BoolP("android", "A", false, "Only run tests on Android")
	cmd.Flags().String("root", ".", "Root of the samples repository")
	cmd.Flags().String("dir", filepath.Join("tests", "system_test"), "System test directory")
	cmd.Flags().Float64("threshold", systemtest.DefaultThreshold, "Similarity a screenshot needs to pass")
	_ = cmd.MarkFlagRequired("build")
	_ = cmd.MarkFlagRequired("config")
	cmd.MarkFlagsMutuallyExclusive("desktop", "android")
	return cmd
}

func runSystemTest(cmd *cobra.Command, args []string) error {
	build, _ := cmd.Flags().GetString("build")
	buildConfig, _ := cmd.Flags().GetString("config")
	tests, _ := cmd.Flags().GetStringSlice("subtests")
	parallel, _ := cmd.Flags().GetBool("parallel")
	desktopOnly, _ := cmd.Flags().GetBool("desktop")
	androidOnly, _ := cmd.Flags().GetBool("android")
	root, _ := cmd.Flags().GetString("root")
	dir, _ := cmd.Flags().GetString("dir")
	threshold, _ := cmd.Flags().GetFloat64("threshold")

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if len(tests) == 0 {
		entries, err := os.ReadDir(filepath.Join(dir, "sub_tests"))
		if err != nil {
			return fmt.Errorf("list sub tests: %w", err)
		}
		for _, e := range entries {
			tests = append(tests, e.Name())
		}
	}

	runner := &toolexec.Exec{Dir: root}

	var apps []systemtest.App
	if !desktopOnly {
		if _, err := runner.Run(ctx, "adb", "get-state"); err != nil {
			fmt.Fprintln(out, "Device not found, disabling Android testing")
		} else {
			fmt.Fprintln(out, "Device found!")
			if parallel {
				fmt.Fprintln(out, "Android doesn't support multithreading, disabling!")
				parallel = false
			}
			apps = append(apps, systemtest.NewAndroidApp(runner, filepath.Join("output", "images"), 60*time.Second, 5*time.Second))
		}
	}
	if !androidOnly {
		apps = append(apps, systemtest.NewDesktopApp(runner, systemtest.HostPlatform(), build, buildConfig))
	}
	if len(apps) == 0 {
		return fmt.Errorf("no platform to test on")
	}

	r := systemtest.NewRunner(systemtest.Options{
		Root:      root,
		Dir:       dir,
		Tests:     tests,
		Parallel:  parallel,
		Threshold: threshold,
	}, out, apps...)

	result, err := r.Run(ctx)
	if err != nil {
		return err
	}
	if result.Failed() > 0 {
		return errFailed
	}
	return nil
}
