// Package systemtest runs samples in test mode on the desktop and on an
// attached Android device and compares their screenshots with gold images.
package systemtest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const imageExt = ".png"

// DefaultThreshold is the similarity a screenshot needs to pass.
const DefaultThreshold = 0.999

const (
	colorSuccess = "\033[92m"
	colorError   = "\033[91m"
	colorEnd     = "\033[0m"
)

// Options configure a system test run.
type Options struct {
	// Root is the samples repository; apps run from it and gold images are
	// read from <Root>/assets/gold.
	Root      string
	// Dir holds the tmp and artifacts directories.
	Dir       string
	Tests     []string
	Parallel  bool
	Threshold float64
}

// Subtest is one test on one platform.
type Subtest struct {
	Name     string
	Platform string
	Passed   bool
	Err      error
}

// Result is the outcome of a run.
type Result struct {
	Subtests []*Subtest
	// Archive is the zip of the failed screenshots, empty when every
	// subtest passed.
	Archive string
}

// Failed returns the number of failed subtests.
func (r *Result) Failed() int {
	n := 0
	for _, s := range r.Subtests {
		if !s.Passed {
			n++
		}
	}
	return n
}

// Runner runs subtests on a set of apps.
type Runner struct {
	opts Options
	apps []App
	out  io.Writer
	now  func() time.Time
}

// NewRunner creates a runner that writes its progress to out.
func NewRunner(opts Options, out io.Writer, apps ...App) *Runner {
	if opts.Threshold == 0 {
		opts.Threshold = DefaultThreshold
	}
	return &Runner{opts: opts, apps: apps, out: &lockedWriter{w: out}, now: time.Now}
}

// lockedWriter serializes the progress output of parallel subtests.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func (r *Runner) outputsDir() string { return filepath.Join(r.opts.Root, "output", "images") }
func (r *Runner) tmpDir() string { return filepath.Join(r.opts.Dir, "tmp") }

// Run runs every test on every app, archives the screenshots of failed
// subtests and removes the tmp directory.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	for _, app := range r.apps {
		if err := os.MkdirAll(filepath.Join(r.tmpDir(), app.Platform()), 0o755); err != nil {
			return nil, fmt.Errorf("create tmp directory: %w", err)
		}
	}
	defer os.RemoveAll(r.tmpDir())

	fmt.Fprintln(r.out, "=== System Test started! ===")

	type job struct {
		app     App
		subtest *Subtest
	}
	var jobs []job
	for _, name := range r.opts.Tests {
		for _, app := range r.apps {
			jobs = append(jobs, job{app: app, subtest: &Subtest{Name: name, Platform: app.Platform()}})
		}
	}

	if r.opts.Parallel {
		var g errgroup.Group
		for _, j := range jobs {
			g.Go(func() error {
				r.execute(ctx, j.app, j.subtest)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for _, j := range jobs {
			r.execute(ctx, j.app, j.subtest)
		}
	}

	result := &Result{}
	for _, j := range jobs {
		result.Subtests = append(result.Subtests, j.subtest)
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	failed := result.Failed()
	if failed == 0 {
		fmt.Fprintln(r.out, colorSuccess+"=== Success: All tests passed! ==="+colorEnd)
		return result, nil
	}

	fmt.Fprintf(r.out, colorError+"=== Failed: %d passed - %d failed ==="+colorEnd+"\n", len(jobs)-failed, failed)
	archive := filepath.Join(r.opts.Dir, "artifacts", "system_test-"+r.now().Format("2006.01.02-15.04.05")+".zip")
	if err := Archive(r.tmpDir(), archive); err != nil {
		return result, fmt.Errorf("archive results: %w", err)
	}
	result.Archive = archive
	fmt.Fprintf(r.out, "=== Archiving results into '%s' ===\n", archive)
	return result, nil
}

func (r *Runner) execute(ctx context.Context, app App, s *Subtest) {
	logger := log.WithField("test", s.Name).WithField("platform", s.Platform)
	fmt.Fprintf(r.out, "\t=== Running %s on %s ===\n", s.Name, s.Platform)

	if err := app.Run(ctx, s.Name); err != nil {
		logger.WithError(err).Error("run failed")
		s.Err = err
		return
	}

	fmt.Fprintf(r.out, "\t\t=== Test started: %s ===\n", s.Name)
	similarity, err := r.check(s)
	if err != nil {
		logger.WithError(err).Error("check failed")
		s.Err = err
		fmt.Fprintln(r.out, "\t\t=== Failed. ===")
		return
	}

	fmt.Fprintf(r.out, "\t\t\t(Comparing images...) %s: %v%%\n", s.Name, 100*math.Floor(similarity*10000)/10000)
	s.Passed = similarity >= r.opts.Threshold
	if s.Passed {
		fmt.Fprintln(r.out, "\t\t=== Passed! ===")
	} else {
		fmt.Fprintln(r.out, "\t\t=== Failed. ===")
	}
}

// check moves the screenshot of s into the tmp directory and compares it with
// its gold image. The screenshot and difference image are removed when the
// subtest passes.
func (r *Runner) check(s *Subtest) (float64, error) {
	image := s.Name + imageExt
	dir := filepath.Join(r.tmpDir(), s.Platform)
	screenshot := filepath.Join(dir, image)

	if err := os.Rename(filepath.Join(r.outputsDir(), image), screenshot); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("couldn't find screenshot, perhaps test crashed: %w", err)
		}
		return 0, err
	}

	resolution, err := Resolution(screenshot)
	if err != nil {
		return 0, err
	}
	gold := filepath.Join(r.opts.Root, "assets", "gold", s.Name, resolution+imageExt)
	if _, err := os.Stat(gold); err != nil {
		return 0, fmt.Errorf("resolution not supported, gold image not found (%s): %w", gold, err)
	}

	diff := filepath.Join(dir, s.Name+"-diff"+imageExt)
	similarity, err := CompareFiles(screenshot, gold, diff)
	if err != nil {
		return 0, err
	}

	if similarity >= r.opts.Threshold {
		if err := errors.Join(os.Remove(screenshot), os.Remove(diff)); err != nil {
			return similarity, err
		}
	}
	return similarity, nil
}
