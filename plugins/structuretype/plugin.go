// Package structuretype generates structure_type_helpers.hpp, which maps every
// chainable Vulkan struct to the VkStructureType value that tags it:
//
//	template <>
//	VkStructureType get_structure_type<VkApplicationInfo>()
//	{
//		return VK_STRUCTURE_TYPE_APPLICATION_INFO;
//	}
//
// Specializations are grouped in #ifdef blocks named after the version or
// extension that introduced the struct.
package structuretype

import (
	"fmt"
	"io"

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

// Plugin is the structure type generator.
type Plugin struct {
	registry.NopVisitor

	cfg   *config.Config
	reg   *registry.Registry
	guard codegen.GuardChain
}

// New creates a structure type generator for reg.
func New(cfg *config.Config, reg *registry.Registry) *Plugin {
	return &Plugin{
		cfg: cfg,
		reg: reg,
	}
}

// Name returns the name of the generator.
func (p *Plugin) Name() string {
	return "structuretype"
}

// Generate writes the configured header.
func (p *Plugin) Generate() error {
	filename := p.cfg.Generators.StructureType.Filename
	log.WithField("file", filename).Info("generating structure type helpers")

	return codegen.WriteFile(filename, func(w io.Writer) error {
		return p.Render(w)
	})
}

// Render writes the header to w.
func (p *Plugin) Render(w io.Writer) error {
	return registry.Generate(w, p.reg, p.cfg.Options(), p)
}

// BeginFile writes the banner, the primary template and opens the namespaces.
func (p *Plugin) BeginFile(w io.Writer) error {
	p.guard = codegen.GuardChain{}

	_, err := fmt.Fprintf(w, `%s#include <volk.h>

namespace components
{
namespace vulkan
{
template <typename Type>
%sVkStructureType get_structure_type()
{
	throw "function not implemented";
}
`, codegen.FileHeader(p.cfg.Copyright), p.inline())
	return err
}

// VisitStruct records a specialization for chainable structs with a known
// structure type. Aliases share the specialization of their target.
func (p *Plugin) VisitStruct(out *registry.Sections, _ *registry.Feature, t *registry.TypeInfo) error {
	if t.IsAlias() {
		return nil
	}

	members, err := codegen.NewStructMembers(t, p.cfg.API)
	if err != nil {
		return err
	}
	sType := members.StructureType()
	if sType == "" {
		return nil
	}

	out.Append(registry.SectionStruct, fmt.Sprintf(`template <>
%sVkStructureType get_structure_type<%s>()
{
	return %s;
}
`, p.inline(), t.Name, sType))
	return nil
}

// FlushFeature writes the specializations of a feature inside its guard.
func (p *Plugin) FlushFeature(w io.Writer, feature *registry.Feature, out *registry.Sections) error {
	fragments := out.Section(registry.SectionStruct)
	if len(fragments) == 0 {
		return nil
	}
	if err := p.guard.Enter(w, feature.Name); err != nil {
		return err
	}
	for _, f := range fragments {
		if _, err := io.WriteString(w, f); err != nil {
			return err
		}
	}
	return nil
}

// EndFile closes the last guard and the namespaces.
func (p *Plugin) EndFile(w io.Writer) error {
	if err := p.guard.Close(w); err != nil {
		return err
	}
	_, err := io.WriteString(w, "}        // namespace vulkan\n}        // namespace components\n")
	return err
}

func (p *Plugin) inline() string {
	if p.cfg.Generators.StructureType.Inline {
		return "inline "
	}
	return ""
}
