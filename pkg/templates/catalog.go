// Package templates holds the built-in note templates every user starts with.
package templates

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed default_templates.yaml
var defaultCatalog []byte

type Template struct {
	Id           string `yaml:"id"`
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	SystemPrompt string `yaml:"system_prompt"`
}

type catalogFile struct {
	Templates []Template `yaml:"templates"`
}

// Parse reads a catalog document. Every entry needs an id, a name and a system prompt.
func Parse(data []byte) ([]Template, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse template catalog: %w", err)
	}

	seen := make(map[string]bool, len(file.Templates))
	for i, t := range file.Templates {
		if t.Id == "" || t.Name == "" || t.SystemPrompt == "" {
			return nil, fmt.Errorf("template %d: id, name and system_prompt are required", i)
		}
		if seen[t.Id] {
			return nil, fmt.Errorf("template %d: duplicate id %q", i, t.Id)
		}
		seen[t.Id] = true
	}
	return file.Templates, nil
}

// Defaults returns a fresh copy of the embedded catalog.
func Defaults() []Template {
	list, err := Parse(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return list
}
