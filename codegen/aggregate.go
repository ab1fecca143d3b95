package codegen

import (
	"fmt"
	"iter"
	"slices"

	"github.com/vksamples/vktools/registry"
)

// StructMembers holds the classified members of a struct or union in
// declaration order.
type StructMembers struct {
	TypeInfo *registry.TypeInfo
	members  []*Member
}

// NewStructMembers classifies every member of t that applies to api.
func NewStructMembers(t *registry.TypeInfo, api string) (*StructMembers, error) {
	members, err := newMembers(t.Members(api))
	if err != nil {
		return nil, fmt.Errorf("struct %s: %w", t.Name, err)
	}
	return &StructMembers{TypeInfo: t, members: members}, nil
}

// Members iterates over the members in declaration order.
func (s *StructMembers) Members() iter.Seq[*Member] {
	return slices.Values(s.members)
}

// Len returns the number of members.
func (s *StructMembers) Len() int {
	return len(s.members)
}

// Lookup returns the member called name.
func (s *StructMembers) Lookup(name string) *Member {
	for _, m := range s.members {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// IsChainable reports whether the struct starts with
//
//	VkStructureType sType;
//	void*           pNext;
//
// Structs with fewer than two members are never chainable.
func (s *StructMembers) IsChainable() bool {
	if len(s.members) < 2 {
		return false
	}
	first, second := s.members[0], s.members[1]
	return first.Name == "sType" && first.Type == "VkStructureType" &&
		second.Name == "pNext" && second.Type == "void"
}

// StructureType returns the VkStructureType value that tags a chainable
// struct, or the empty string when the registry does not name one.
func (s *StructMembers) StructureType() string {
	if !s.IsChainable() {
		return ""
	}
	return s.members[0].Values
}

// CommandMembers holds the classified parameters of a command.
type CommandMembers struct {
	CmdInfo *registry.CmdInfo
	params  []*Member
}

// NewCommandMembers classifies every parameter of c that applies to api.
func NewCommandMembers(c *registry.CmdInfo, api string) (*CommandMembers, error) {
	params, err := newMembers(c.Params(api))
	if err != nil {
		return nil, fmt.Errorf("command %s: %w", c.Name, err)
	}
	return &CommandMembers{CmdInfo: c, params: params}, nil
}

// Params iterates over the parameters in declaration order.
func (c *CommandMembers) Params() iter.Seq[*Member] {
	return slices.Values(c.params)
}

// Len returns the number of parameters.
func (c *CommandMembers) Len() int {
	return len(c.params)
}
