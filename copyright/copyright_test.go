package copyright

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vksamples/vktools/internal/toolexec/toolexectest"
)

func TestTokens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "range with (c)",
			content: "/* Copyright (c) 2019-2023, Arm Limited and Contributors\n",
			want:    []string{"Copyright (c) 2019-2023"},
		},
		{
			name:    "single year with (c)",
			content: "# Copyright (c) 2021, Example\n",
			want:    []string{"Copyright (c) 2021"},
		},
		{
			name:    "case insensitive",
			content: "// copyright (C) 2020 someone\n",
			want:    []string{"copyright (C) 2020"},
		},
		{
			name:    "range without (c)",
			content: "Copyright 2018-2022 The Khronos Group Inc.\n",
			want:    []string{"Copyright 2018-2022"},
		},
		{
			name:    "single year without (c)",
			content: "Copyright 2020 The Khronos Group Inc.\n",
			want:    []string{"Copyright 2020"},
		},
		{
			name:    "ranges win over single years",
			content: "Copyright (c) 2019-2023, Arm\nCopyright (c) 2021, Other\n",
			want:    []string{"Copyright (c) 2019-2023"},
		},
		{
			name:    "several notices of the same form",
			content: "Copyright (c) 2019-2023, Arm\nCopyright (c) 2020-2022, Other\n",
			want:    []string{"Copyright (c) 2019-2023", "Copyright (c) 2020-2022"},
		},
		{
			name:    "no notice",
			content: "int main() { return 0; }\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Tokens(tt.content))
		})
	}
}

func TestFixToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		token     string
		wantToken string
		wantFixed bool
	}{
		{token: "Copyright (c) 2019-2023", wantToken: "Copyright (c) 2019-2024", wantFixed: true},
		{token: "Copyright (c) 2019-2024", wantToken: "Copyright (c) 2019-2024"},
		{token: "Copyright (c) 2021", wantToken: "Copyright (c) 2021-2024", wantFixed: true},
		{token: "Copyright 2024", wantToken: "Copyright 2024"},
		{token: "Copyright", wantToken: "Copyright"},
	}

	for _, tt := range tests {
		got, fixed := FixToken(tt.token, 2024)
		assert.Equal(t, tt.wantToken, got, "FixToken(%q)", tt.token)
		assert.Equal(t, tt.wantFixed, fixed, "FixToken(%q)", tt.token)
	}
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestCheck(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"current.cpp":  "/* Copyright (c) 2020-2024, Arm Limited */\n",
		"outdated.cpp": "/* Copyright (c) 2020-2023, Arm Limited */\n",
		"single.h":     "// Copyright (c) 2022, Someone\n",
		"missing.h":    "#pragma once\n",
	})

	var files []string
	for _, name := range []string{"current.cpp", "outdated.cpp", "single.h", "missing.h"} {
		files = append(files, filepath.Join(dir, name))
	}

	report, err := Check(files, 2024)
	require.NoError(t, err)

	assert.False(t, report.OK())
	assert.Equal(t, []string{filepath.Join(dir, "missing.h")}, report.Missing)
	assert.Equal(t, map[string][]string{
		filepath.Join(dir, "outdated.cpp"): {"Copyright (c) 2020-2023"},
		filepath.Join(dir, "single.h"):     {"Copyright (c) 2022"},
	}, report.Outdated)

	report, err = Check(files[:1], 2024)
	require.NoError(t, err)
	assert.True(t, report.OK())

	_, err = Check([]string{filepath.Join(dir, "nope.cpp")}, 2024)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		content   string
		want      string
		wantFixed bool
	}{
		{
			name:      "range end is moved",
			content:   "/* Copyright (c) 2019-2023, Arm Limited and Contributors\n */\n",
			want:      "/* Copyright (c) 2019-2024, Arm Limited and Contributors\n */\n",
			wantFixed: true,
		},
		{
			name:      "repeated notice is fixed once",
			content:   "Copyright (c) 2021, A\nCopyright (c) 2021, B\n",
			want:      "Copyright (c) 2021-2024, A\nCopyright (c) 2021-2024, B\n",
			wantFixed: true,
		},
		{
			name:    "up to date",
			content: "Copyright (c) 2024, A\n",
			want:    "Copyright (c) 2024, A\n",
		},
		{
			name:    "no notice is left alone",
			content: "int x;\n",
			want:    "int x;\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			file := filepath.Join(t.TempDir(), "file.cpp")
			require.NoError(t, os.WriteFile(file, []byte(tt.content), 0o600))

			fixed, err := Fix(file, 2024)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFixed, fixed)

			got, err := os.ReadFile(file)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))

			info, err := os.Stat(file)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
		})
	}
}

func TestChangedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"src/main.cpp":      "",
		"src/shader.spv":    "",
		"README.md":         "",
		".copyrightignore":  "",
		"third_party/x.txt": "",
	})
	t.Chdir(dir)

	runner := &toolexectest.Fake{
		Handle: func(call toolexectest.Call) ([]byte, error) {
			return []byte("src/main.cpp\nsrc/shader.spv\nREADME.md\n.copyrightignore\ndeleted.cpp\nthird_party\n\n"), nil
		},
	}

	got, err := ChangedFiles(context.Background(), runner, "main", []string{IgnoreFile, ".spv", "README.md"})
	require.NoError(t, err)

	assert.Equal(t, []string{"src/main.cpp"}, got)
	assert.Equal(t, []string{"git diff main --name-only"}, runner.Calls())
}

func TestChangedFiles_GitError(t *testing.T) {
	t.Parallel()

	runner := &toolexectest.Fake{
		Handle: func(toolexectest.Call) ([]byte, error) {
			return nil, errors.New("fatal: bad revision")
		},
	}

	_, err := ChangedFiles(context.Background(), runner, "nope", nil)
	assert.ErrorContains(t, err, "git diff: fatal: bad revision")
}

func TestLoadIgnore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	got, err := LoadIgnore(filepath.Join(dir, IgnoreFile))
	require.NoError(t, err)
	assert.Equal(t, []string{IgnoreFile}, got)

	writeFiles(t, dir, map[string]string{IgnoreFile: ".spv\n\n  README.md  \nLICENSE\n"})
	got, err = LoadIgnore(filepath.Join(dir, IgnoreFile))
	require.NoError(t, err)
	assert.Equal(t, []string{IgnoreFile, ".spv", "README.md", "LICENSE"}, got)
}
