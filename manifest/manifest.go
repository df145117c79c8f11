// Package manifest loads declarative workflow configuration from YAML:
// model definitions that Apply constructs and registers, and agent
// assemblies that BuildAgent resolves against a registry. The manifest
// only references tools and prompts; those are registered in code through
// their factories before agents are built.
package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/magma"
	"github.com/hupe1980/magma/model"
	"github.com/hupe1980/magma/registry"
	"github.com/hupe1980/magma/tool"
)

// UnknownRefError reports a manifest reference to a component that is not
// declared or registered.
type UnknownRefError struct {
	Kind string
	Name string
}

func (e *UnknownRefError) Error() string {
	return fmt.Sprintf("manifest references unknown %s %q", e.Kind, e.Name)
}

// ModelSpec declares one model to construct.
type ModelSpec struct {
	// ID is the provider/model identifier, e.g. "openai/gpt-4o".
	ID string `yaml:"id"`

	// Params is the open provider parameter bag.
	Params map[string]any `yaml:"params,omitempty"`
}

// AgentSpec declares one agent assembled from registered components.
type AgentSpec struct {
	Name  string   `yaml:"name"`
	Model string   `yaml:"model"`
	Tools []string `yaml:"tools,omitempty"`
}

// File is the root manifest document.
type File struct {
	Models []ModelSpec `yaml:"models,omitempty"`
	Agents []AgentSpec `yaml:"agents,omitempty"`
}

// Load reads and parses the manifest at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	return Parse(data)
}

// Parse decodes a manifest document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	return &f, nil
}

// Apply constructs and registers every declared model into reg. Malformed
// identifiers and duplicate ids surface the construction errors unchanged,
// so callers can match them with errors.As.
func (f *File) Apply(reg *registry.Registry) error {
	for _, spec := range f.Models {
		if _, err := model.New(reg, spec.ID, model.WithParams(spec.Params)); err != nil {
			return err
		}
	}

	return nil
}

// BuildAgent assembles the named agent declaration against the components
// registered in reg.
func (f *File) BuildAgent(reg *registry.Registry, name string) (*magma.Agent, error) {
	spec, ok := f.agentSpec(name)
	if !ok {
		return nil, &UnknownRefError{Kind: "agent", Name: name}
	}

	entry, ok := reg.Models().Get(spec.Model)
	if !ok {
		return nil, &UnknownRefError{Kind: "model", Name: spec.Model}
	}

	m, ok := entry.(*model.Model)
	if !ok {
		return nil, fmt.Errorf("manifest: registry entry %q is not a model", spec.Model)
	}

	toolView := reg.Tools()

	tools := make([]*tool.Tool, 0, len(spec.Tools))
	for _, toolName := range spec.Tools {
		entry, ok := toolView.Get(toolName)
		if !ok {
			return nil, &UnknownRefError{Kind: "tool", Name: toolName}
		}

		tl, ok := entry.(*tool.Tool)
		if !ok {
			return nil, fmt.Errorf("manifest: registry entry %q is not a tool", toolName)
		}

		tools = append(tools, tl)
	}

	return magma.New(m, magma.WithRegistry(reg), magma.WithTools(tools...))
}

func (f *File) agentSpec(name string) (AgentSpec, bool) {
	for _, spec := range f.Agents {
		if spec.Name == name {
			return spec, true
		}
	}

	return AgentSpec{}, false
}
