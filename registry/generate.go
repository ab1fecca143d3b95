package registry

import (
	"fmt"
	"io"

	"github.com/antchfx/xmlquery"
	log "github.com/sirupsen/logrus"
)

// Visitor receives every interface element the driver discovers. Each method
// may append at most one fragment to out.
type Visitor interface {
	// VisitType is called for base types, handles, bitmasks, function
	// pointers and any other non-aggregate type.
	VisitType(out *Sections, feature *Feature, t *TypeInfo) error
	// VisitStruct is called for structs and unions.
	VisitStruct(out *Sections, feature *Feature, t *TypeInfo) error
	// VisitGroup is called for enum types together with their <enums> group.
	VisitGroup(out *Sections, feature *Feature, t *TypeInfo, g *GroupInfo) error
	// VisitEnum is called for standalone constants.
	VisitEnum(out *Sections, feature *Feature, e *EnumInfo) error
	// VisitCommand is called for commands.
	VisitCommand(out *Sections, feature *Feature, c *CmdInfo) error
}

// NopVisitor ignores every element. Embed it to implement only the visits a
// generator cares about.
type NopVisitor struct{}

func (NopVisitor) VisitType(*Sections, *Feature, *TypeInfo) error { return nil }
func (NopVisitor) VisitStruct(*Sections, *Feature, *TypeInfo) error { return nil }
func (NopVisitor) VisitGroup(*Sections, *Feature, *TypeInfo, *GroupInfo) error { return nil }
func (NopVisitor) VisitEnum(*Sections, *Feature, *EnumInfo) error { return nil }
func (NopVisitor) VisitCommand(*Sections, *Feature, *CmdInfo) error { return nil }

var _ Visitor = NopVisitor{}

// FileVisitor is implemented by visitors that write a preamble or epilogue.
type FileVisitor interface {
	BeginFile(w io.Writer) error
	EndFile(w io.Writer) error
}

// FeatureFlusher is implemented by visitors that need control over how a
// non-empty feature is written. Visitors without it get Sections.WriteTo.
type FeatureFlusher interface {
	FlushFeature(w io.Writer, feature *Feature, out *Sections) error
}

// Generate walks the features selected by opts and feeds them to v, writing
// the result to w. Every type and command is visited at most once, in the
// order features require them; dependencies are visited before the types
// that use them.
func Generate(w io.Writer, reg *Registry, opts Options, v Visitor) error {
	features, err := reg.selectFeatures(opts)
	if err != nil {
		return fmt.Errorf("select features: %w", err)
	}

	d := &driver{
		reg:      reg,
		api:      opts.APIName,
		visitor:  v,
		declared: map[string]bool{},
		removed:  map[string]bool{},
		selected: map[string]bool{},
	}
	for _, f := range features {
		d.selected[f.Name] = true
	}
	d.markRemoved(features)

	fv, hasFile := v.(FileVisitor)
	if hasFile {
		if err := fv.BeginFile(w); err != nil {
			return fmt.Errorf("begin file: %w", err)
		}
	}

	for _, f := range features {
		if err := d.feature(w, f); err != nil {
			return fmt.Errorf("%s %s: %w", f.Kind, f.Name, err)
		}
	}

	if hasFile {
		if err := fv.EndFile(w); err != nil {
			return fmt.Errorf("end file: %w", err)
		}
	}
	return nil
}

type driver struct {
	reg      *Registry
	api      string
	visitor  Visitor
	declared map[string]bool
	removed  map[string]bool
	selected map[string]bool

	// reset for every feature
	feat *Feature
	out  *Sections
}

func (d *driver) markRemoved(features []*Feature) {
	for _, f := range features {
		for _, rm := range f.elem.SelectElements("remove") {
			if !listContains(rm.SelectAttr("api"), d.api) {
				continue
			}
			for _, n := range rm.SelectElements("*") {
				d.removed[n.Data+":"+n.SelectAttr("name")] = true
			}
		}
	}
}

func (d *driver) feature(w io.Writer, f *Feature) error {
	d.feat = f
	d.out = NewSections()

	for _, req := range f.elem.SelectElements("require") {
		ok, err := d.applies(req)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		for _, n := range req.SelectElements("*") {
			name := n.SelectAttr("name")
			switch n.Data {
			case "type":
				err = d.genType(name)
			case "command":
				err = d.genCmd(name)
			case "enum":
				if n.SelectAttr("extends") == "" {
					err = d.genEnum(name)
				}
			}
			if err != nil {
				return err
			}
		}
	}

	if !f.Emit || d.out.Empty() {
		return nil
	}
	if ff, ok := d.visitor.(FeatureFlusher); ok {
		return ff.FlushFeature(w, f, d.out)
	}
	_, err := d.out.WriteTo(w)
	return err
}

func (d *driver) applies(req *xmlquery.Node) (bool, error) {
	if !listContains(req.SelectAttr("api"), d.api) {
		return false, nil
	}
	depends := req.SelectAttr("depends")
	if depends == "" {
		return true, nil
	}
	return evalDepends(depends, func(name string) bool { return d.selected[name] })
}

// claim marks key as declared and reports whether it was free.
func (d *driver) claim(key string) bool {
	if d.declared[key] || d.removed[key] {
		return false
	}
	d.declared[key] = true
	return true
}

func (d *driver) genType(name string) error {
	if name == "" || !d.claim("type:"+name) {
		return nil
	}
	t := d.reg.Type(name, d.api)
	if t == nil {
		log.WithField("feature", d.feat.Name).WithField("type", name).Warn("required type not found in registry")
		return nil
	}

	// dependencies first
	for _, dep := range []string{t.Alias, t.Requires, t.BitValues} {
		if err := d.genType(dep); err != nil {
			return err
		}
	}
	if t.Category == CategoryStruct || t.Category == CategoryUnion || t.Category == CategoryFuncpointer {
		src := t
		if t.Target != nil {
			src = t.Target
		}
		for _, ref := range xmlquery.Find(src.Elem, ".//type") {
			if err := d.genType(ref.InnerText()); err != nil {
				return err
			}
		}
	}

	var err error
	switch t.Category {
	case CategoryStruct, CategoryUnion:
		err = d.visitor.VisitStruct(d.out, d.feat, t)
	case CategoryEnum:
		groupName := name
		if t.Target != nil {
			groupName = t.Target.Name
		}
		err = d.visitor.VisitGroup(d.out, d.feat, t, d.reg.Group(groupName))
	default:
		err = d.visitor.VisitType(d.out, d.feat, t)
	}
	if err != nil {
		return fmt.Errorf("type %s: %w", name, err)
	}
	return nil
}

func (d *driver) genCmd(name string) error {
	if !d.claim("command:" + name) {
		return nil
	}
	c := d.reg.Command(name, d.api)
	if c == nil {
		log.WithField("feature", d.feat.Name).WithField("command", name).Warn("required command not found in registry")
		return nil
	}

	if c.IsAlias() {
		if err := d.genCmd(c.Alias); err != nil {
			return err
		}
	}
	if err := d.genType(c.ReturnType); err != nil {
		return err
	}
	for _, p := range c.Params(d.api) {
		if t := p.SelectElement("type"); t != nil {
			if err := d.genType(t.InnerText()); err != nil {
				return err
			}
		}
	}

	if err := d.visitor.VisitCommand(d.out, d.feat, c); err != nil {
		return fmt.Errorf("command %s: %w", name, err)
	}
	return nil
}

func (d *driver) genEnum(name string) error {
	if !d.claim("enum:" + name) {
		return nil
	}
	e := d.reg.Enum(name)
	if e == nil {
		log.WithField("feature", d.feat.Name).WithField("enum", name).Warn("required enum not found in registry")
		return nil
	}
	if err := d.visitor.VisitEnum(d.out, d.feat, e); err != nil {
		return fmt.Errorf("enum %s: %w", name, err)
	}
	return nil
}
