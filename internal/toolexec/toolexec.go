// Package toolexec runs the external programs the tools drive: git, cmake,
// glslc, dxc, spirv-val and adb.
package toolexec

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Runner runs an external command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Exec runs commands on the host.
type Exec struct {
	// Dir is the working directory, empty for the current one.
	Dir string
}

// Run runs name with args and returns its standard output. A non-zero exit
// status is reported with the command's standard error.
func (e *Exec) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = e.Dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	log.WithField("cmd", strings.Join(cmd.Args, " ")).Debug("running")
	out, err := cmd.Output()
	if err != nil {
		return out, fmt.Errorf("%s\nfailed to run %v: %w", strings.TrimSpace(stderr.String()), cmd.Args, err)
	}
	return out, nil
}

// LookPath reports whether every program in names is installed.
func LookPath(names ...string) error {
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			return fmt.Errorf("missing %s: %w", name, err)
		}
	}
	return nil
}
