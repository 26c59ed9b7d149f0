package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Section is one job entry of a config file: a name and its flat options.
type Section struct {
	Name    string
	Line    int
	Options map[string]string
	// Err is set when the section's shape is invalid; BuildJob reports it.
	Err error
}

// LoadFile reads a YAML job file. Sections keep the order of the file.
func LoadFile(path string) ([]Section, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a YAML document mapping section names to option mappings.
// Problems confined to one section are recorded on that section; only a
// malformed document is an error.
func Parse(data []byte) ([]Section, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("no job sections defined")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping of job sections", root.Line)
	}

	seen := map[string]int{}
	sections := make([]Section, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if key.Kind != yaml.ScalarNode || key.Value == "" {
			return nil, fmt.Errorf("line %d: section names must be non-empty strings", key.Line)
		}
		if prev, ok := seen[key.Value]; ok {
			return nil, fmt.Errorf("line %d: section %q already defined on line %d", key.Line, key.Value, prev)
		}
		seen[key.Value] = key.Line
		sections = append(sections, parseSection(key, value))
	}
	return sections, nil
}

func parseSection(key, value *yaml.Node) Section {
	section := Section{Name: key.Value, Line: key.Line, Options: map[string]string{}}
	if value.Kind != yaml.MappingNode {
		section.Err = fmt.Errorf("line %d: expected a mapping of options", value.Line)
		return section
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		k, v := value.Content[i], value.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			section.Err = fmt.Errorf("line %d: option %q must be a single value", v.Line, k.Value)
			return section
		}
		if v.Tag == "!!null" {
			continue
		}
		section.Options[k.Value] = v.Value
	}
	return section
}
