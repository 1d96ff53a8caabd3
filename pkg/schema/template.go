package schema

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/slotfill/pkg/domain"
	"github.com/aretw0/slotfill/pkg/messages"
)

// Template is a decoded, validated slot-filling template.
type Template struct {
	Version string        `json:"version" yaml:"version" mapstructure:"version"`
	ID      string        `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`
	Label   string        `json:"label,omitempty" yaml:"label,omitempty" mapstructure:"label"`
	Nodes   []domain.Node `json:"nodes" yaml:"nodes" mapstructure:"nodes"`
	// Messages is an optional translation table shipped with the template.
	Messages messages.Table `json:"messages,omitempty" yaml:"messages,omitempty" mapstructure:"-"`
}

// Parse reads a YAML or JSON document.
func Parse(data []byte) (map[string]any, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// Decode maps a raw document onto a Template. It does not validate; call Validate first.
func Decode(raw map[string]any) (*Template, error) {
	var tpl Template
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &tpl,
		TagName: "mapstructure",
	})
	if err != nil {
		return nil, err
	}
	body := make(map[string]any, len(raw))
	for k, v := range raw {
		if k != "messages" {
			body[k] = v
		}
	}
	if err := decoder.Decode(body); err != nil {
		return nil, fmt.Errorf("failed to decode template: %w", err)
	}
	if m, ok := raw["messages"].(map[string]any); ok {
		tpl.Messages = messages.Flatten(m)
	}
	return &tpl, nil
}

// Compile parses, validates and decodes a template document.
// Validation failures are returned as Issues.
func Compile(data []byte) (*Template, error) {
	raw, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return FromRaw(raw)
}

// FromRaw validates and decodes an already parsed document.
func FromRaw(raw map[string]any) (*Template, error) {
	if issues := Validate(raw); len(issues) > 0 {
		return nil, issues
	}
	tpl, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	if err := tpl.Integrity(); err != nil {
		return nil, err
	}
	return tpl, nil
}

// Load reads and compiles a template file.
func Load(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", path, err)
	}
	return Compile(data)
}

// Integrity checks the cross-references between nodes: ids are unique, every sub id a main
// lists resolves to a sub node, and no sub is owned twice.
func (t *Template) Integrity() error {
	var issues Issues
	index := make(map[string]domain.Node, len(t.Nodes))
	for i, n := range t.Nodes {
		if _, dup := index[n.ID]; dup {
			issues.add(fmt.Sprintf("nodes[%d].id", i), "duplicate id %q", n.ID)
		}
		index[n.ID] = n
	}

	owner := make(map[string]string)
	for i, n := range t.Nodes {
		if !n.IsMain() {
			if len(n.Subs) > 0 {
				issues.add(fmt.Sprintf("nodes[%d].subs", i), "only main nodes may own subs")
			}
			continue
		}
		for j, id := range n.Subs {
			path := fmt.Sprintf("nodes[%d].subs[%d]", i, j)
			sub, ok := index[id]
			switch {
			case !ok:
				issues.add(path, "references unknown node %q", id)
			case sub.IsMain():
				issues.add(path, "%q is a main node", id)
			case owner[id] != "":
				issues.add(path, "%q is already owned by %q", id, owner[id])
			default:
				owner[id] = n.ID
			}
		}
	}
	return issues.Err()
}

// Plan builds the traversal plan of the template.
func (t *Template) Plan() domain.Plan {
	return domain.BuildPlan(t.Nodes)
}
