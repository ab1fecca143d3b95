package systemtest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vksamples/vktools/internal/toolexec"
)

// Platform names as used for the tmp/<platform> screenshot directories.
const (
	Windows = "Windows"
	Linux   = "Linux"
	Darwin  = "Darwin"
	Android = "Android"
)

const (
	androidPackage  = "com.khronos.vulkan_samples"
	androidActivity = androidPackage + "/com.khronos.vulkan_samples.BPSampleActivity"
)

// HostPlatform returns the platform name of the running OS.
func HostPlatform() string {
	switch runtime.GOOS {
	case "windows":
		return Windows
	case "darwin":
		return Darwin
	default:
		return Linux
	}
}

// Machine returns the architecture directory the build system uses for the
// running host.
func Machine() string {
	switch runtime.GOARCH {
	case "amd64":
		if runtime.GOOS == "windows" {
			return "AMD64"
		}
		return "x86_64"
	case "arm64":
		if runtime.GOOS == "linux" {
			return "aarch64"
		}
		return "arm64"
	case "386":
		return "i686"
	}
	return runtime.GOARCH
}

// App launches a sample in test mode and leaves its screenshot in the output
// images directory.
type App interface {
	Platform() string
	Run(ctx context.Context, test string) error
}

// DesktopApp runs the vulkan_samples binary of a build tree.
type DesktopApp struct {
	runner   toolexec.Runner
	platform string
	binary   string
}

// NewDesktopApp returns the app of the given build directory and config.
func NewDesktopApp(runner toolexec.Runner, platform, build, config string) *DesktopApp {
	name := "vulkan_samples"
	if platform == Windows {
		name += ".exe"
	}
	return &DesktopApp{
		runner:   runner,
		platform: platform,
		binary:   filepath.Join(build, "vulkan_samples", "bin", config, Machine(), name),
	}
}

func (a *DesktopApp) Platform() string {
	return a.platform
}

// Binary returns the path of the sample binary.
func (a *DesktopApp) Binary() string {
	return a.binary
}

// Run fails only when the binary cannot be started. A sample that exits with
// an error is left to the screenshot check.
func (a *DesktopApp) Run(ctx context.Context, test string) error {
	_, err := a.runner.Run(ctx, a.binary, "--hide", "--test", test)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, exec.ErrNotFound):
		return fmt.Errorf("application error (%s): %w", a.binary, err)
	case ctx.Err() != nil:
		return ctx.Err()
	}
	log.WithField("binary", a.binary).WithField("test", test).WithError(err).Warn("sample exited with an error")
	return nil
}

// AndroidApp runs the sample activity on the connected device through adb.
type AndroidApp struct {
	runner    toolexec.Runner
	outputDir string
	timeout   time.Duration
	step      time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewAndroidApp returns an app that pulls screenshots into outputDir.
func NewAndroidApp(runner toolexec.Runner, outputDir string, timeout, step time.Duration) *AndroidApp {
	return &AndroidApp{
		runner:    runner,
		outputDir: outputDir,
		timeout:   timeout,
		step:      step,
		sleep:     sleepContext,
	}
}

func (a *AndroidApp) Platform() string {
	return Android
}

func (a *AndroidApp) Run(ctx context.Context, test string) error {
	if _, err := a.runner.Run(ctx, "adb", "shell", "am", "force-stop", androidPackage); err != nil {
		return fmt.Errorf("force-stop: %w", err)
	}
	if _, err := a.runner.Run(ctx, "adb", "shell", "am", "start", "-W", "-n", androidActivity, "-e", "test", test); err != nil {
		return fmt.Errorf("start activity: %w", err)
	}

	var waited time.Duration
	for {
		activity, err := a.focusedActivity(ctx)
		if err != nil {
			return err
		}
		if activity != "vulkan_samples" {
			break
		}
		if waited >= a.timeout {
			return fmt.Errorf("timed out after %s", a.timeout)
		}
		if err := a.sleep(ctx, a.step); err != nil {
			return err
		}
		waited += a.step
	}

	remote := "/sdcard/Android/data/" + androidPackage + "/files/output/images/" + test + imageExt
	if _, err := a.runner.Run(ctx, "adb", "pull", remote, a.outputDir); err != nil {
		return fmt.Errorf("pull screenshot: %w", err)
	}
	return nil
}

// focusedActivity returns the package component of the focused window, which
// is vulkan_samples while a sample runs.
func (a *AndroidApp) focusedActivity(ctx context.Context) (string, error) {
	out, err := a.runner.Run(ctx, "adb", "shell", "dumpsys", "window", "windows")
	if err != nil {
		return "", fmt.Errorf("dumpsys: %w", err)
	}
	return FocusedActivity(string(out)), nil
}

// FocusedActivity extracts the fifth dot separated field of the first focus
// line of dumpsys window output, e.g. vulkan_samples for
//
//	mCurrentFocus=Window{1 u0 com.khronos.vulkan_samples/com.khronos.vulkan_samples.BPSampleActivity}
func FocusedActivity(dumpsys string) string {
	for _, line := range strings.Split(dumpsys, "\n") {
		if !strings.Contains(line, "mCurrentFocus") && !strings.Contains(line, "mFocusedApp") {
			continue
		}
		fields := strings.Split(line, ".")
		if len(fields) < 5 {
			continue
		}
		field, _, _ := strings.Cut(fields[4], " ")
		if field = strings.TrimSpace(field); field != "" {
			return field
		}
	}
	return ""
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
