package tool

import (
	"strings"

	"github.com/hupe1980/magma/registry"
	"github.com/hupe1980/magma/schema"
)

// FromFunc constructs a Tool from a plain function together with its
// structured documentation and registers it under name.
//
// doc must contain an "Args:" section. The text before it becomes the tool
// description; each line after it that matches the shape
//
//	argName (type): what the argument means
//
// contributes the per-argument description. The parameter names and types
// themselves come from argsStruct, a struct value whose exported fields
// (honoring `json` and `description` tags) declare the arguments in order.
// A parameter without a matching doc line keeps an empty description.
func FromFunc(reg *registry.Registry, name, doc string, argsStruct any, fn Func) (*Tool, error) {
	summary, argDocs, err := parseDoc(name, doc)
	if err != nil {
		return nil, err
	}

	fields, err := schema.FieldsFromStruct(argsStruct)
	if err != nil {
		return nil, &ValidationError{Field: name, Message: err.Error()}
	}

	params := make([]Param, len(fields))
	for i, f := range fields {
		desc := f.Description
		if d, ok := argDocs[f.Name]; ok {
			desc = d
		}
		params[i] = Param{Name: f.Name, Type: f.Type, Description: desc}
	}

	return New(reg, name, fn, summary, params)
}

// parseDoc splits structured documentation into the summary and the
// per-argument descriptions listed under its "Args:" section.
func parseDoc(name, doc string) (string, map[string]string, error) {
	const marker = "Args:"

	idx := strings.Index(doc, marker)
	if idx < 0 {
		return "", nil, &ValidationError{
			Field:   name,
			Message: `documentation must contain an "Args:" section`,
		}
	}

	summary := strings.TrimSpace(doc[:idx])
	argDocs := make(map[string]string)

	for _, line := range strings.Split(doc[idx+len(marker):], "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(line, "(") || !strings.Contains(line, ")") {
			continue
		}

		argName := strings.TrimSpace(line[:strings.Index(line, "(")])
		if argName == "" {
			continue
		}

		desc := ""
		if colon := strings.Index(line, ":"); colon >= 0 {
			desc = strings.TrimSpace(line[colon+1:])
		}
		argDocs[argName] = desc
	}

	return summary, argDocs, nil
}
