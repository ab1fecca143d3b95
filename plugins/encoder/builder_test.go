package encoder

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vksamples/vktools/codegen"
	"github.com/vksamples/vktools/registry"
)

const builderRegistry = `<registry>
	<types>
		<type category="struct" name="VkInstanceCreateInfo">
			<member values="VK_STRUCTURE_TYPE_INSTANCE_CREATE_INFO"><type>VkStructureType</type> <name>sType</name></member>
			<member optional="true">const <type>void</type>*     <name>pNext</name></member>
			<member optional="true">const <type>VkApplicationInfo</type>* <name>pApplicationInfo</name></member>
			<member optional="true"><type>uint32_t</type>               <name>enabledLayerCount</name></member>
			<member len="enabledLayerCount,null-terminated">const <type>char</type>* const*      <name>ppEnabledLayerNames</name></member>
		</type>
		<type category="struct" name="VkProperties">
			<member><type>char</type>            <name>extensionName</name>[<enum>VK_MAX_EXTENSION_NAME_SIZE</enum>]</member>
			<member><type>uint8_t</type>         <name>uuid</name>[<enum>VK_UUID_SIZE</enum>]</member>
			<member><type>float</type>           <name>color</name>[4]</member>
			<member optional="true"><type>void</type>* <name>pUserData</name></member>
		</type>
		<type category="struct" name="VkIndirect">
			<member>const <type>VkCounts</type>* <name>pCounts</name></member>
			<member len="pCounts->count">const <type>uint32_t</type>* <name>pValues</name></member>
		</type>
		<type category="struct" name="VkUnchained">
			<member optional="true">const <type>void</type>* <name>pNext</name></member>
			<member><type>VkStructureType</type> <name>sType</name></member>
		</type>
	</types>
	<commands>
		<command>
			<proto><type>VkResult</type> <name>vkEnumerateLayerExtensions</name></proto>
			<param optional="true" len="null-terminated">const <type>char</type>* <name>pLayerName</name></param>
			<param><type>uint32_t</type>* <name>pPropertyCount</name></param>
			<param optional="true" len="pPropertyCount"><type>VkProperties</type>* <name>pProperties</name></param>
			<param><type>void</type>* <name>pData</name></param>
		</command>
	</commands>
</registry>`

func render(body []Statement) string {
	var lines []string
	for _, stmt := range body {
		lines = append(lines, stmt.String(1))
	}
	return strings.Join(lines, "\n")
}

func TestStatementBuilder_BuildStruct(t *testing.T) {
	t.Parallel()

	reg, err := registry.Parse(strings.NewReader(builderRegistry))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	tests := []struct {
		name     string
		typeName string
		want     string
	}{
		{
			name:     "chainable struct with a string array",
			typeName: "VkInstanceCreateInfo",
			want: `encode_VkStructureType(encoder, value.sType);
encode_pNext(encoder, value.pNext);
if (value.pApplicationInfo != nullptr)
	{
		encode_VkApplicationInfo(encoder, *value.pApplicationInfo);
	}
encode_uint32_t(encoder, value.enabledLayerCount);
encode_cstringArray(encoder, value.ppEnabledLayerNames, value.enabledLayerCount);`,
		},
		{
			name:     "fixed length arrays keep their bound",
			typeName: "VkProperties",
			want: `encode_cstring(encoder, value.extensionName);
encode_uint8_tArray(encoder, value.uuid, VK_UUID_SIZE);
encode_floatArray(encoder, value.color, 4);
// pUserData is opaque and not encoded`,
		},
		{
			name:     "length read through a sibling pointer",
			typeName: "VkIndirect",
			want: `if (value.pCounts != nullptr)
	{
		encode_VkCounts(encoder, *value.pCounts);
	}
encode_uint32_tArray(encoder, value.pValues, value.pCounts->count);`,
		},
		{
			name:     "pNext of a struct that is not chainable",
			typeName: "VkUnchained",
			want: `// pNext is opaque and not encoded
encode_VkStructureType(encoder, value.sType);`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, err := codegen.NewStructMembers(reg.Type(tt.typeName, "vulkan"), "vulkan")
			if err != nil {
				t.Fatalf("NewStructMembers() error = %v", err)
			}
			got := render(NewStatementBuilder().BuildStruct(s))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("BuildStruct() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStatementBuilder_BuildCommand(t *testing.T) {
	t.Parallel()

	reg, err := registry.Parse(strings.NewReader(builderRegistry))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	c, err := codegen.NewCommandMembers(reg.Command("vkEnumerateLayerExtensions", "vulkan"), "vulkan")
	if err != nil {
		t.Fatalf("NewCommandMembers() error = %v", err)
	}

	want := `encode_cstring(encoder, pLayerName);
if (pPropertyCount != nullptr)
	{
		encode_uint32_t(encoder, *pPropertyCount);
	}
encode_VkPropertiesArray(encoder, pProperties, *pPropertyCount);
// pData is opaque and not encoded`
	if diff := cmp.Diff(want, render(NewStatementBuilder().BuildCommand(c))); diff != "" {
		t.Errorf("BuildCommand() mismatch (-want +got):\n%s", diff)
	}
}
