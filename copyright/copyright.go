// Package copyright checks that changed files carry a copyright notice that
// includes the current year, and fixes the ones that do not.
package copyright

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/vksamples/vktools/internal/toolexec"
)

// IgnoreFile lists base names and extensions that are never checked.
const IgnoreFile = ".copyrightignore"

// Patterns are tried in order; the first one with matches wins.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bCopyright \(c\)[^a-zA-Z0-9]*\b\d{4}-\d{4}\b`),
	regexp.MustCompile(`(?i)\bCopyright[^a-zA-Z0-9]*\b\d{4}-\d{4}\b`),
	regexp.MustCompile(`(?i)\bCopyright \(c\)[^a-zA-Z0-9]*\b\d{4}\b`),
	regexp.MustCompile(`(?i)\bCopyright[^a-zA-Z0-9]*\b\d{4}\b`),
}

var (
	yearPattern      = regexp.MustCompile(`\b\d{4}\b`)
	yearRangePattern = regexp.MustCompile(`\b\d{4}-\d{4}\b`)
)

// Report is the result of checking a set of files.
type Report struct {
	// Missing lists files without any copyright notice.
	Missing []string
	// Outdated maps files to the notices that do not end in the current
	// year.
	Outdated map[string][]string
}

// OK reports whether every file passed.
func (r *Report) OK() bool {
	return len(r.Missing) == 0 && len(r.Outdated) == 0
}

// Tokens returns the copyright notices in content, using the first pattern
// that matches.
func Tokens(content string) []string {
	if p := matchingPattern(content); p != nil {
		return p.FindAllString(content, -1)
	}
	return nil
}

func matchingPattern(content string) *regexp.Regexp {
	for _, p := range patterns {
		if p.MatchString(content) {
			return p
		}
	}
	return nil
}

// Check reads files and reports the ones whose notices are missing or do not
// end in year.
func Check(files []string, year int) (*Report, error) {
	r := &Report{Outdated: map[string][]string{}}
	for _, f := range files {
		content, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("unable to read %s: %w", f, err)
		}

		tokens := Tokens(string(content))
		if len(tokens) == 0 {
			r.Missing = append(r.Missing, f)
			continue
		}
		for _, token := range tokens {
			if lastYear(token) != year {
				r.Outdated[f] = append(r.Outdated[f], token)
			}
		}
	}
	return r, nil
}

// Fix rewrites the outdated notices of file so they end in year. A single
// year becomes a range starting at it. Each notice is rewritten once, even
// when the same text appears several times.
func Fix(file string, year int) (bool, error) {
	info, err := os.Stat(file)
	if err != nil {
		return false, fmt.Errorf("unable to stat %s: %w", file, err)
	}
	content, err := os.ReadFile(file)
	if err != nil {
		return false, fmt.Errorf("unable to read %s: %w", file, err)
	}

	p := matchingPattern(string(content))
	if p == nil {
		return false, nil
	}
	fixed := p.ReplaceAllStringFunc(string(content), func(token string) string {
		replacement, _ := FixToken(token, year)
		return replacement
	})
	if fixed == string(content) {
		return false, nil
	}

	if err := os.WriteFile(file, []byte(fixed), info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("unable to write %s: %w", file, err)
	}
	return true, nil
}

// FixToken returns token with its last year replaced by year, and whether it
// needed fixing.
func FixToken(token string, year int) (string, bool) {
	current := strconv.Itoa(year)

	if loc := yearRangePattern.FindStringIndex(token); loc != nil {
		start, end, _ := strings.Cut(token[loc[0]:loc[1]], "-")
		if end == current {
			return token, false
		}
		return token[:loc[0]] + start + "-" + current + token[loc[1]:], true
	}

	if loc := yearPattern.FindStringIndex(token); loc != nil {
		if token[loc[0]:loc[1]] == current {
			return token, false
		}
		return token + "-" + current, true
	}
	return token, false
}

func lastYear(token string) int {
	years := yearPattern.FindAllString(token, -1)
	if len(years) == 0 {
		return 0
	}
	y, _ := strconv.Atoi(years[len(years)-1])
	return y
}

// ChangedFiles returns the regular files that differ from branch according to
// git, minus the ones excluded by ignore.
func ChangedFiles(ctx context.Context, runner toolexec.Runner, branch string, ignore []string) ([]string, error) {
	out, err := runner.Run(ctx, "git", "diff", branch, "--name-only")
	if err != nil {
		return nil, fmt.Errorf("git diff: %w", err)
	}

	var files []string
	for _, line := range strings.Split(string(out), "\n") {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		if info, err := os.Stat(name); err != nil || !info.Mode().IsRegular() {
			continue
		}
		if slices.Contains(ignore, filepath.Base(name)) || slices.Contains(ignore, filepath.Ext(name)) {
			continue
		}
		files = append(files, name)
	}
	return files, nil
}

// LoadIgnore reads the exceptions listed in path. The ignore file itself is
// always excluded and a missing file is not an error.
func LoadIgnore(path string) ([]string, error) {
	ignore := []string{IgnoreFile}

	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ignore, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", path, err)
	}

	s := bufio.NewScanner(bytes.NewReader(content))
	for s.Scan() {
		if line := strings.TrimSpace(s.Text()); line != "" {
			ignore = append(ignore, line)
		}
	}
	return ignore, s.Err()
}
