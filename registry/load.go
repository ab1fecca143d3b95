package registry

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	log "github.com/sirupsen/logrus"
)

// extension enum values are allocated in blocks of 1000 starting here.
const extEnumBase = 1000000000

// Load reads and parses the registry file at filename.
func Load(filename string) (*Registry, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("unable to read registry: %w", err)
	}
	defer f.Close()

	reg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("unable to parse registry %s: %w", filename, err)
	}
	return reg, nil
}

// Parse parses a registry document.
func Parse(r io.Reader) (*Registry, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse xml: %w", err)
	}

	root := xmlquery.FindOne(doc, "/registry")
	if root == nil {
		return nil, errors.New("unknown xml format: missing <registry> root")
	}

	reg := newRegistry()

	for _, n := range xmlquery.Find(root, "types/type") {
		reg.addType(n)
	}
	for _, n := range xmlquery.Find(root, "enums") {
		reg.addGroup(n)
	}
	for _, n := range xmlquery.Find(root, "commands/command") {
		if err := reg.addCommand(n); err != nil {
			return nil, err
		}
	}
	for _, n := range xmlquery.Find(root, "feature") {
		reg.versions = append(reg.versions, newFeature(n, FeatureVersion))
	}
	for _, n := range xmlquery.Find(root, "extensions/extension") {
		reg.extensions = append(reg.extensions, newFeature(n, FeatureExtension))
	}

	for _, f := range slices.Concat(reg.versions, reg.extensions) {
		if err := reg.addFeatureEnums(f); err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
	}

	reg.resolveAliases()

	return reg, nil
}

func (r *Registry) addType(n *xmlquery.Node) {
	t := &TypeInfo{
		Category:  n.SelectAttr("category"),
		Alias:     n.SelectAttr("alias"),
		Requires:  n.SelectAttr("requires"),
		BitValues: n.SelectAttr("bitvalues"),
		API:       n.SelectAttr("api"),
		Elem:      n,
	}
	t.Name = n.SelectAttr("name")
	if t.Name == "" {
		if name := n.SelectElement("name"); name != nil {
			t.Name = name.InnerText()
		}
	}
	if t.Name == "" {
		log.WithField("category", t.Category).Debug("skipping anonymous type")
		return
	}
	r.types[t.Name] = append(r.types[t.Name], t)
}

func (r *Registry) addGroup(n *xmlquery.Node) {
	name := n.SelectAttr("name")
	kind := n.SelectAttr("type")

	if kind == "" || kind == "constants" {
		// API Constants
		for _, e := range n.SelectElements("enum") {
			r.enums[e.SelectAttr("name")] = &EnumInfo{
				Name:  e.SelectAttr("name"),
				Value: e.SelectAttr("value"),
				Type:  e.SelectAttr("type"),
				Alias: e.SelectAttr("alias"),
			}
		}
		return
	}

	g := &GroupInfo{
		Name:     name,
		Kind:     kind,
		BitWidth: 32,
		Elem:     n,
	}
	if bw := n.SelectAttr("bitwidth"); bw != "" {
		if v, err := strconv.Atoi(bw); err == nil {
			g.BitWidth = v
		}
	}
	for _, e := range n.SelectElements("enum") {
		v, err := enumValue(e, 0, g.BitWidth)
		if err != nil {
			log.WithField("group", name).WithField("enum", e.SelectAttr("name")).Warn(err)
			continue
		}
		g.Values = append(g.Values, v)
	}
	r.groups[name] = g
}

func (r *Registry) addCommand(n *xmlquery.Node) error {
	c := &CmdInfo{
		Name:  n.SelectAttr("name"),
		Alias: n.SelectAttr("alias"),
		API:   n.SelectAttr("api"),
		Elem:  n,
	}
	if proto := n.SelectElement("proto"); proto != nil {
		name := proto.SelectElement("name")
		if name == nil {
			return errors.New("command prototype without <name>")
		}
		c.Name = name.InnerText()
		if ret := proto.SelectElement("type"); ret != nil {
			c.ReturnType = ret.InnerText()
		}
	}
	if c.Name == "" {
		return errors.New("command without name")
	}
	r.commands[c.Name] = append(r.commands[c.Name], c)
	return nil
}

func newFeature(n *xmlquery.Node, kind FeatureKind) *Feature {
	f := &Feature{
		Name:     n.SelectAttr("name"),
		Kind:     kind,
		Number:   n.SelectAttr("number"),
		Platform: n.SelectAttr("platform"),
		api:      n.SelectAttr("api"),
		elem:     n,
	}
	if kind == FeatureExtension {
		f.api = n.SelectAttr("supported")
		f.extNumber, _ = strconv.Atoi(f.Number)
	}
	return f
}

// addFeatureEnums registers the constants a feature declares and merges the
// values it adds to existing groups.
func (r *Registry) addFeatureEnums(f *Feature) error {
	for _, e := range xmlquery.Find(f.elem, "require/enum") {
		name := e.SelectAttr("name")
		extends := e.SelectAttr("extends")
		if extends == "" {
			if _, ok := Attr(e, "value"); ok {
				r.enums[name] = &EnumInfo{
					Name:  name,
					Value: e.SelectAttr("value"),
					Type:  e.SelectAttr("type"),
				}
			} else if alias := e.SelectAttr("alias"); alias != "" {
				r.enums[name] = &EnumInfo{Name: name, Alias: alias}
			}
			continue
		}

		g := r.groups[extends]
		if g == nil {
			log.WithField("feature", f.Name).WithField("extends", extends).Warn("enum extends unknown group")
			continue
		}
		if g.hasValue(name) {
			continue
		}
		v, err := enumValue(e, f.extNumber, g.BitWidth)
		if err != nil {
			return fmt.Errorf("enum %s: %w", name, err)
		}
		v.Extension = f.Name
		g.Values = append(g.Values, v)
	}
	return nil
}

// enumValue computes the value of an <enum> element. extNumber is the number
// of the enclosing extension and is used for offset based values.
func enumValue(e *xmlquery.Node, extNumber, bitWidth int) (EnumValue, error) {
	v := EnumValue{
		Name:  e.SelectAttr("name"),
		Alias: e.SelectAttr("alias"),
	}
	switch {
	case v.Alias != "":
	case e.SelectAttr("value") != "":
		v.Value = e.SelectAttr("value")
	case e.SelectAttr("bitpos") != "":
		pos, err := strconv.Atoi(e.SelectAttr("bitpos"))
		if err != nil {
			return v, fmt.Errorf("invalid bitpos: %w", err)
		}
		width := 32
		if bitWidth == 64 {
			width = 64
		}
		if pos < 0 || pos >= width {
			return v, fmt.Errorf("invalid bitpos %d", pos)
		}
		if width == 64 {
			v.Value = fmt.Sprintf("0x%016XULL", uint64(1)<<pos)
		} else {
			v.Value = fmt.Sprintf("0x%08X", uint32(1)<<pos)
		}
	case e.SelectAttr("offset") != "":
		offset, err := strconv.Atoi(e.SelectAttr("offset"))
		if err != nil {
			return v, fmt.Errorf("invalid offset: %w", err)
		}
		if n := e.SelectAttr("extnumber"); n != "" {
			if extNumber, err = strconv.Atoi(n); err != nil {
				return v, fmt.Errorf("invalid extnumber: %w", err)
			}
		}
		value := extEnumBase + (extNumber-1)*1000 + offset
		if e.SelectAttr("dir") == "-" {
			value = -value
		}
		v.Value = strconv.Itoa(value)
	default:
		return v, errors.New("enum without value")
	}
	return v, nil
}

func (r *Registry) resolveAliases() {
	for _, types := range r.types {
		for _, t := range types {
			if !t.IsAlias() {
				continue
			}
			t.Target = r.resolveType(t.Alias, t.API)
			if t.Target == nil {
				log.WithField("type", t.Name).WithField("alias", t.Alias).Warn("alias of unknown type")
			}
		}
	}
	for _, cmds := range r.commands {
		for _, c := range cmds {
			if !c.IsAlias() {
				continue
			}
			c.Target = r.resolveCommand(c.Alias, c.API)
			if c.Target == nil {
				log.WithField("command", c.Name).WithField("alias", c.Alias).Warn("alias of unknown command")
			}
		}
	}
}

func (r *Registry) resolveType(name, api string) *TypeInfo {
	for seen := 0; seen < len(r.types); seen++ {
		t := r.Type(name, firstAPI(api))
		if t == nil || !t.IsAlias() {
			return t
		}
		name = t.Alias
	}
	return nil
}

func (r *Registry) resolveCommand(name, api string) *CmdInfo {
	for seen := 0; seen < len(r.commands); seen++ {
		c := r.Command(name, firstAPI(api))
		if c == nil || !c.IsAlias() {
			return c
		}
		name = c.Alias
	}
	return nil
}

func firstAPI(list string) string {
	api, _, _ := strings.Cut(list, ",")
	return api
}
