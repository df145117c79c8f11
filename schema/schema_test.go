package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamTypeToken(t *testing.T) {
	assert.Equal(t, "string", TypeString.Token())
	assert.Equal(t, "int", TypeInt.Token())
	assert.Equal(t, "float", TypeFloat.Token())
	assert.Equal(t, "bool", TypeBool.Token())
	assert.Equal(t, "string[]", TypeStringList.Token())
	assert.Equal(t, "map<string, string>", TypeStringMap.Token())

	// Anything outside the table renders as a string.
	assert.Equal(t, "string", ParamType("datetime").Token())
	assert.Equal(t, "string", ParamType("").Token())
}

func TestClassRendering(t *testing.T) {
	got := Class("sample_tool_func", "This is a sample tool.", []Field{
		{Name: "arg1", Type: TypeString, Description: "The first argument."},
		{Name: "arg2", Type: TypeInt, Description: "The second argument."},
	})

	want := "class sample_tool_func @description(\"This is a sample tool.\") {\n" +
		"  arg1 string @description(\"The first argument.\")\n" +
		"  arg2 int @description(\"The second argument.\")\n" +
		"}"

	assert.Equal(t, want, got)
}

func TestClassSummaryUsesFirstLineAndEscapesQuotes(t *testing.T) {
	got := Class("quoting", "Says \"hello\".\nSecond line is dropped.", nil)

	want := "class quoting @description(\"Says \\\"hello\\\".\") {\n}"
	assert.Equal(t, want, got)
}

func TestClassFieldDescriptionsAreEscaped(t *testing.T) {
	got := Class("t", "Summary.", []Field{
		{Name: "q", Type: TypeString, Description: `a "quoted" hint`},
	})

	assert.Contains(t, got, `q string @description("a \"quoted\" hint")`)
}

func TestBuilderAccumulates(t *testing.T) {
	b := NewBuilder()
	assert.Equal(t, 0, b.Len())

	b.Add("class a {\n}")
	b.Add("class b {\n}")

	assert.Equal(t, 2, b.Len())
	assert.Equal(t, []string{"class a {\n}", "class b {\n}"}, b.Definitions())
	assert.Equal(t, "class a {\n}\n\nclass b {\n}", b.String())

	// Definitions hands out a copy.
	defs := b.Definitions()
	defs[0] = "mutated"
	assert.Equal(t, "class a {\n}", b.Definitions()[0])
}

type weatherArgs struct {
	City    string            `json:"city" description:"The city to look up."`
	Days    int               `json:"days" description:"Forecast length in days."`
	Celsius bool              `json:"celsius"`
	Scale   float64           `json:"scale"`
	Tags    []string          `json:"tags"`
	Extra   map[string]string `json:"extra"`

	Skipped    string `json:"-"`
	unexported string //nolint:unused
}

func TestFieldsFromStruct(t *testing.T) {
	fields, err := FieldsFromStruct(weatherArgs{})
	require.NoError(t, err)

	require.Len(t, fields, 6)
	assert.Equal(t, Field{Name: "city", Type: TypeString, Description: "The city to look up."}, fields[0])
	assert.Equal(t, Field{Name: "days", Type: TypeInt, Description: "Forecast length in days."}, fields[1])
	assert.Equal(t, Field{Name: "celsius", Type: TypeBool}, fields[2])
	assert.Equal(t, Field{Name: "scale", Type: TypeFloat}, fields[3])
	assert.Equal(t, Field{Name: "tags", Type: TypeStringList}, fields[4])
	assert.Equal(t, Field{Name: "extra", Type: TypeStringMap}, fields[5])
}

func TestFieldsFromStructPointerAndFallbacks(t *testing.T) {
	type nested struct{ X int }
	type args struct {
		Count *int   `json:"count"`
		Inner nested `json:"inner"`
		Plain string
	}

	fields, err := FieldsFromStruct(&args{})
	require.NoError(t, err)

	require.Len(t, fields, 3)
	assert.Equal(t, TypeInt, fields[0].Type)
	// Struct fields have no semantic mapping and render as strings.
	assert.Equal(t, TypeString, fields[1].Type)
	// Untagged fields keep their Go name.
	assert.Equal(t, "Plain", fields[2].Name)
}

func TestFieldsFromStructRejectsNonStructs(t *testing.T) {
	_, err := FieldsFromStruct(nil)
	assert.Error(t, err)

	_, err = FieldsFromStruct("not a struct")
	assert.Error(t, err)
}
