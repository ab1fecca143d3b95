// Package registry loads the Vulkan XML API registry (vk.xml) and walks the
// interfaces it declares, feature by feature, on behalf of a code generator.
//
// The loader keeps the raw element trees of types and commands around so that
// generators can derive their own metadata from them (see package codegen).
package registry

import (
	"slices"
	"strings"

	"github.com/antchfx/xmlquery"
)

// Type categories as used by the category attribute of <type>.
const (
	CategoryBasetype    = "basetype"
	CategoryHandle      = "handle"
	CategoryEnum        = "enum"
	CategoryBitmask     = "bitmask"
	CategoryFuncpointer = "funcpointer"
	CategoryStruct      = "struct"
	CategoryUnion       = "union"
	CategoryDefine      = "define"
	CategoryInclude     = "include"
)

// TypeInfo is a single <type> declaration.
type TypeInfo struct {
	Name      string
	Category  string
	Alias     string
	Requires  string
	BitValues string
	API       string

	// Target is the declaration an alias resolves to, nil for non-aliases.
	Target *TypeInfo
	Elem   *xmlquery.Node
}

// IsAlias reports whether t only renames another type.
func (t *TypeInfo) IsAlias() bool {
	return t.Alias != ""
}

// Members returns the <member> elements of a struct or union that apply to api,
// in declaration order. Aliases return the members of their target.
func (t *TypeInfo) Members(api string) []*xmlquery.Node {
	if t.Target != nil {
		return t.Target.Members(api)
	}
	return apiElements(t.Elem, "member", api)
}

// CmdInfo is a single <command> declaration.
type CmdInfo struct {
	Name       string
	Alias      string
	ReturnType string
	API        string

	Target *CmdInfo
	Elem   *xmlquery.Node
}

// IsAlias reports whether c only renames another command.
func (c *CmdInfo) IsAlias() bool {
	return c.Alias != ""
}

// Params returns the <param> elements of the command that apply to api.
func (c *CmdInfo) Params(api string) []*xmlquery.Node {
	if c.Target != nil {
		return c.Target.Params(api)
	}
	return apiElements(c.Elem, "param", api)
}

// EnumValue is one enumerant of a group.
type EnumValue struct {
	Name  string
	Value string
	Alias string
	// Extension is the feature that added the value, empty for core values.
	Extension string
}

// GroupInfo is an <enums> block of type enum or bitmask.
type GroupInfo struct {
	Name     string
	Kind     string
	BitWidth int
	Values   []EnumValue
	Elem     *xmlquery.Node
}

func (g *GroupInfo) hasValue(name string) bool {
	return slices.ContainsFunc(g.Values, func(v EnumValue) bool { return v.Name == name })
}

// EnumInfo is a standalone constant such as an API constant or an extension's
// name and spec version.
type EnumInfo struct {
	Name  string
	Value string
	Type  string
	Alias string
}

// FeatureKind distinguishes core versions from extensions.
type FeatureKind int

const (
	FeatureVersion FeatureKind = iota
	FeatureExtension
)

func (k FeatureKind) String() string {
	if k == FeatureExtension {
		return "extension"
	}
	return "version"
}

// Feature is a versioned or extension-gated part of the API.
type Feature struct {
	Name   string
	Kind   FeatureKind
	Number string
	// Platform is set for extensions that need a platform-specific guard.
	Platform string
	// Emit is false for features that are walked for dependency bookkeeping
	// only and must not produce output.
	Emit bool

	api       string
	extNumber int
	elem      *xmlquery.Node
}

// Registry is the parsed content of vk.xml.
type Registry struct {
	types      map[string][]*TypeInfo
	commands   map[string][]*CmdInfo
	groups     map[string]*GroupInfo
	enums      map[string]*EnumInfo
	versions   []*Feature
	extensions []*Feature
}

func newRegistry() *Registry {
	return &Registry{
		types:    map[string][]*TypeInfo{},
		commands: map[string][]*CmdInfo{},
		groups:   map[string]*GroupInfo{},
		enums:    map[string]*EnumInfo{},
	}
}

// Type returns the declaration of name that applies to api.
func (r *Registry) Type(name, api string) *TypeInfo {
	for _, t := range r.types[name] {
		if listContains(t.API, api) {
			return t
		}
	}
	return nil
}

// Command returns the declaration of name that applies to api.
func (r *Registry) Command(name, api string) *CmdInfo {
	for _, c := range r.commands[name] {
		if listContains(c.API, api) {
			return c
		}
	}
	return nil
}

// Group returns the <enums> group called name.
func (r *Registry) Group(name string) *GroupInfo {
	return r.groups[name]
}

// Enum returns the constant called name.
func (r *Registry) Enum(name string) *EnumInfo {
	return r.enums[name]
}

// listContains reports whether the comma separated list contains value. An
// empty list applies to everything, an empty value matches any list.
func listContains(list, value string) bool {
	if list == "" || value == "" {
		return true
	}
	return slices.Contains(strings.Split(list, ","), value)
}

func apiElements(parent *xmlquery.Node, name, api string) []*xmlquery.Node {
	var nodes []*xmlquery.Node
	for _, n := range parent.SelectElements(name) {
		if listContains(n.SelectAttr("api"), api) {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// Attr returns the value of the attribute name and whether it is present.
func Attr(n *xmlquery.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}
