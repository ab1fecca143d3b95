package codegen

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	filename := filepath.Join(dir, "include", "generated", "helpers.hpp")

	err := WriteFile(filename, func(w io.Writer) error {
		_, err := io.WriteString(w, "#pragma once\n")
		return err
	})
	if err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	got, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "#pragma once\n" {
		t.Errorf("content = %q, want %q", got, "#pragma once\n")
	}

	errRender := errors.New("render failed")
	err = WriteFile(filename, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return errRender
	})
	if !errors.Is(err, errRender) {
		t.Fatalf("WriteFile() error = %v, want %v", err, errRender)
	}
	got, err = os.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "#pragma once\n" {
		t.Errorf("failed render replaced the file: %q", got)
	}
}
