package registry

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSections(t *testing.T) {
	t.Parallel()

	s := NewSections()
	if !s.Empty() {
		t.Error("Empty() = false for a new accumulator")
	}

	s.Append(SectionCommand, "command\n")
	s.Append(SectionHandle, "handle 1\n")
	s.Append(SectionHandle, "handle 2\n")

	if s.Empty() {
		t.Error("Empty() = true after Append")
	}
	if diff := cmp.Diff([]string{"handle 1\n", "handle 2\n"}, s.Section(SectionHandle)); diff != "" {
		t.Errorf("Section() mismatch (-want +got):\n%s", diff)
	}

	var buf strings.Builder
	n, err := s.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	want := "handle 1\nhandle 2\n\ncommand\n\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("WriteTo() mismatch (-want +got):\n%s", diff)
	}
	if n != int64(len(want)) {
		t.Errorf("WriteTo() = %d, want %d", n, len(want))
	}
}

func TestSectionFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		category string
		want     Section
		wantOK   bool
	}{
		{category: CategoryBasetype, want: SectionBasetype, wantOK: true},
		{category: CategoryHandle, want: SectionHandle, wantOK: true},
		{category: CategoryEnum, want: SectionGroup, wantOK: true},
		{category: CategoryBitmask, want: SectionBitmask, wantOK: true},
		{category: CategoryFuncpointer, want: SectionFuncpointer, wantOK: true},
		{category: CategoryStruct, want: SectionStruct, wantOK: true},
		{category: CategoryUnion, want: SectionStruct, wantOK: true},
		{category: CategoryInclude},
		{category: ""},
	}

	for _, tt := range tests {
		got, ok := SectionFor(tt.category)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("SectionFor(%q) = %v, %v, want %v, %v", tt.category, got, ok, tt.want, tt.wantOK)
		}
	}

	if got := SectionCommand.String(); got != "command" {
		t.Errorf("String() = %q, want command", got)
	}
	if got := Section(-1).String(); got != "unknown" {
		t.Errorf("String() = %q, want unknown", got)
	}
}
