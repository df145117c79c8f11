// Package schema renders tool parameter signatures into the declarative
// class definitions consumed by the prompt-execution runtime.
package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// ParamType is the semantic type of one tool parameter. The declared
// constants cover the types the runtime understands natively; Token maps
// everything else to the string primitive.
type ParamType string

const (
	TypeString     ParamType = "string"
	TypeInt        ParamType = "int"
	TypeFloat      ParamType = "float"
	TypeBool       ParamType = "bool"
	TypeStringList ParamType = "string[]"
	TypeStringMap  ParamType = "map<string, string>"
)

var knownTypes = map[ParamType]struct{}{
	TypeString:     {},
	TypeInt:        {},
	TypeFloat:      {},
	TypeBool:       {},
	TypeStringList: {},
	TypeStringMap:  {},
}

// Token returns the schema primitive for t. Unrecognized types fall back to
// the string primitive rather than failing.
func (t ParamType) Token() string {
	if _, ok := knownTypes[t]; ok {
		return string(t)
	}
	return string(TypeString)
}

// Field is one rendered parameter: name, semantic type and description.
type Field struct {
	Name        string
	Type        ParamType
	Description string
}

// Class renders a named record declaration: the summary is the first line
// of description (trimmed, double quotes escaped), followed by one line per
// field in the given order.
//
//	class get_weather @description("Gets the weather.") {
//	  city string @description("The city to look up.")
//	}
func Class(name, description string, fields []Field) string {
	var b strings.Builder

	b.WriteString("class ")
	b.WriteString(name)
	b.WriteString(" @description(\"")
	b.WriteString(escapeQuotes(firstLine(description)))
	b.WriteString("\") {\n")

	for _, f := range fields {
		b.WriteString("  ")
		b.WriteString(f.Name)
		b.WriteString(" ")
		b.WriteString(f.Type.Token())
		b.WriteString(" @description(\"")
		b.WriteString(escapeQuotes(f.Description))
		b.WriteString("\")\n")
	}

	b.WriteString("}")

	return b.String()
}

// Builder accumulates rendered class definitions for one prompt execution.
// The prompt layer adds one definition per in-scope tool and hands the
// builder to the runtime.
type Builder struct {
	defs []string
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// Add appends one rendered definition.
func (b *Builder) Add(def string) {
	b.defs = append(b.defs, def)
}

// Definitions returns the accumulated definitions in add order.
func (b *Builder) Definitions() []string {
	return append([]string(nil), b.defs...)
}

// Len returns the number of accumulated definitions.
func (b *Builder) Len() int { return len(b.defs) }

// String joins the accumulated definitions into one block.
func (b *Builder) String() string {
	return strings.Join(b.defs, "\n\n")
}

// FieldsFromStruct derives fields from a struct's exported fields via
// reflection, in declaration order. Field names honor json tags,
// descriptions come from description tags, and Go types map onto the
// semantic types (unmapped kinds fall back to string, mirroring Token).
func FieldsFromStruct(v any) ([]Field, error) {
	if v == nil {
		return nil, fmt.Errorf("schema: nil argument struct")
	}

	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema: argument type %s is not a struct", t.Kind())
	}

	fields := make([]Field, 0, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		name := field.Name
		if jsonTag != "" {
			if tagName := strings.Split(jsonTag, ",")[0]; tagName != "" {
				name = tagName
			}
		}

		fields = append(fields, Field{
			Name:        name,
			Type:        paramType(field.Type),
			Description: field.Tag.Get("description"),
		})
	}

	return fields, nil
}

// paramType maps a Go type onto its semantic parameter type.
func paramType(t reflect.Type) ParamType {
	switch t.Kind() {
	case reflect.String:
		return TypeString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return TypeInt
	case reflect.Float32, reflect.Float64:
		return TypeFloat
	case reflect.Bool:
		return TypeBool
	case reflect.Slice, reflect.Array:
		return TypeStringList
	case reflect.Map:
		return TypeStringMap
	case reflect.Ptr:
		return paramType(t.Elem())
	default:
		return TypeString
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
