// Package encoder generates the encoder helpers of the test framework: one
// inline function per struct and command that feeds every member or parameter
// to the matching encode_ function, plus declarations for the enum, bitmask
// and handle encoders that are written by hand.
package encoder

import (
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vksamples/vktools/codegen"
	"github.com/vksamples/vktools/config"
	"github.com/vksamples/vktools/registry"
)

var (
	_ registry.Visitor        = &Plugin{}
	_ registry.FileVisitor    = &Plugin{}
	_ registry.FeatureFlusher = &Plugin{}
)

// Plugin is the encoder generator.
type Plugin struct {
	cfg       *config.Config
	reg       *registry.Registry
	formatter *CodeFormatter
	builder   *StatementBuilder
	guard     codegen.GuardChain
}

// New creates an encoder generator for reg.
func New(cfg *config.Config, reg *registry.Registry) *Plugin {
	return &Plugin{
		cfg:       cfg,
		reg:       reg,
		formatter: NewCodeFormatter(),
		builder:   NewStatementBuilder(),
	}
}

// Name returns the name of the generator.
func (p *Plugin) Name() string {
	return "encoder"
}

// Generate writes the configured header.
func (p *Plugin) Generate() error {
	filename := p.cfg.Generators.Encoder.Filename
	log.WithField("file", filename).Info("generating encoders")

	return codegen.WriteFile(filename, func(w io.Writer) error {
		return p.Render(w)
	})
}

// Render writes the header to w.
func (p *Plugin) Render(w io.Writer) error {
	return registry.Generate(w, p.reg, p.cfg.Options(), p)
}

func (p *Plugin) BeginFile(w io.Writer) error {
	p.guard = codegen.GuardChain{}

	_, err := fmt.Fprintf(w, `%s#include <volk.h>

#include <components/encoding/encoder.hpp>

namespace components
{
namespace encoding
{
`, codegen.FileHeader(p.cfg.Copyright))
	return err
}

func (p *Plugin) EndFile(w io.Writer) error {
	if err := p.guard.Close(w); err != nil {
		return err
	}
	_, err := io.WriteString(w, "}        // namespace encoding\n}        // namespace components\n")
	return err
}

func (p *Plugin) FlushFeature(w io.Writer, feature *registry.Feature, out *registry.Sections) error {
	if err := p.guard.Enter(w, feature.Name); err != nil {
		return err
	}
	_, err := out.WriteTo(w)
	return err
}

// VisitType declares encoders for base types, handles, bitmasks and function
// pointers.
func (p *Plugin) VisitType(out *registry.Sections, _ *registry.Feature, t *registry.TypeInfo) error {
	if t.IsAlias() {
		return nil
	}
	switch t.Category {
	case registry.CategoryBasetype, registry.CategoryHandle, registry.CategoryBitmask, registry.CategoryFuncpointer:
		section, _ := registry.SectionFor(t.Category)
		out.Append(section, p.formatter.FormatDecl(t.Name))
	}
	return nil
}

// VisitGroup declares the encoder of an enum type.
func (p *Plugin) VisitGroup(out *registry.Sections, _ *registry.Feature, t *registry.TypeInfo, _ *registry.GroupInfo) error {
	if t.IsAlias() {
		return nil
	}
	out.Append(registry.SectionGroup, p.formatter.FormatDecl(t.Name))
	return nil
}

// VisitStruct defines the encoder of a struct. Unions are only declared since
// the active member is not known.
func (p *Plugin) VisitStruct(out *registry.Sections, _ *registry.Feature, t *registry.TypeInfo) error {
	if t.IsAlias() {
		return nil
	}
	if t.Category == registry.CategoryUnion {
		out.Append(registry.SectionStruct, p.formatter.FormatStructDecl(t.Name))
		return nil
	}

	members, err := codegen.NewStructMembers(t, p.cfg.API)
	if err != nil {
		return err
	}
	body := p.builder.BuildStruct(members)
	out.Append(registry.SectionStruct, p.formatter.FormatFunction(t.Name, []string{fmt.Sprintf("const %s &value", t.Name)}, body))
	return nil
}

func (p *Plugin) VisitEnum(*registry.Sections, *registry.Feature, *registry.EnumInfo) error {
	return nil
}

// VisitCommand defines the encoder of a command's arguments.
func (p *Plugin) VisitCommand(out *registry.Sections, _ *registry.Feature, c *registry.CmdInfo) error {
	if c.IsAlias() {
		return nil
	}

	params, err := codegen.NewCommandMembers(c, p.cfg.API)
	if err != nil {
		return err
	}

	var decls []string
	for m := range params.Params() {
		decls = append(decls, paramDecl(m))
	}
	out.Append(registry.SectionCommand, p.formatter.FormatFunction(c.Name, decls, p.builder.BuildCommand(params)))
	return nil
}

// paramDecl returns the C++ declaration of a parameter as written in the
// registry, with whitespace normalized.
func paramDecl(m *codegen.Member) string {
	var sb strings.Builder
	for n := m.Elem.FirstChild; n != nil; n = n.NextSibling {
		if n.Data == "comment" {
			continue
		}
		sb.WriteString(n.InnerText())
	}
	decl := strings.Join(strings.Fields(sb.String()), " ")
	return strings.ReplaceAll(decl, " *", "*")
}
