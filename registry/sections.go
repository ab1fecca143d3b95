package registry

import (
	"io"
	"strings"
)

// Section is one block of a generated feature. Sections are written in the
// order they are declared here.
type Section int

const (
	SectionBasetype Section = iota
	SectionHandle
	SectionEnum
	SectionGroup
	SectionBitmask
	SectionFuncpointer
	SectionStruct
	SectionCommand

	numSections
)

var sectionNames = [numSections]string{
	SectionBasetype:    "basetype",
	SectionHandle:      "handle",
	SectionEnum:        "enum",
	SectionGroup:       "group",
	SectionBitmask:     "bitmask",
	SectionFuncpointer: "funcpointer",
	SectionStruct:      "struct",
	SectionCommand:     "command",
}

func (s Section) String() string {
	if s < 0 || s >= numSections {
		return "unknown"
	}
	return sectionNames[s]
}

// SectionFor returns the section a type of the given category belongs to.
func SectionFor(category string) (Section, bool) {
	switch category {
	case CategoryBasetype:
		return SectionBasetype, true
	case CategoryHandle:
		return SectionHandle, true
	case CategoryEnum:
		return SectionGroup, true
	case CategoryBitmask:
		return SectionBitmask, true
	case CategoryFuncpointer:
		return SectionFuncpointer, true
	case CategoryStruct, CategoryUnion:
		return SectionStruct, true
	}
	return 0, false
}

// Sections accumulates the text generated for a single feature. The driver
// creates a fresh value at the start of every feature and hands it to each
// visit; it is flushed once the feature ends.
type Sections struct {
	text     [numSections][]string
	nonEmpty bool
}

// NewSections returns an empty accumulator.
func NewSections() *Sections {
	return &Sections{}
}

// Append adds a text fragment to section.
func (s *Sections) Append(section Section, text string) {
	s.text[section] = append(s.text[section], text)
	s.nonEmpty = true
}

// Empty reports whether nothing has been appended since the accumulator was
// created.
func (s *Sections) Empty() bool {
	return !s.nonEmpty
}

// Section returns the fragments appended to section so far.
func (s *Sections) Section(section Section) []string {
	return s.text[section]
}

// WriteTo writes all non-empty sections in order, each followed by a blank
// line.
func (s *Sections) WriteTo(w io.Writer) (int64, error) {
	var buf strings.Builder
	for _, fragments := range s.text {
		if len(fragments) == 0 {
			continue
		}
		for _, f := range fragments {
			buf.WriteString(f)
		}
		buf.WriteString("\n")
	}
	n, err := io.WriteString(w, buf.String())
	return int64(n), err
}
