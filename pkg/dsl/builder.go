package dsl

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/slotfill/pkg/domain"
	"github.com/aretw0/slotfill/pkg/messages"
	"github.com/aretw0/slotfill/pkg/schema"
)

// Builder manages the template construction. Nodes keep their declaration order.
type Builder struct {
	id       string
	label    string
	order    []string
	nodes    map[string]*NodeBuilder
	messages messages.Table
}

// New creates a builder for the template id.
func New(id string) *Builder {
	return &Builder{
		id:       id,
		nodes:    make(map[string]*NodeBuilder),
		messages: make(messages.Table),
	}
}

// Label sets the template's display name.
func (b *Builder) Label(label string) *Builder {
	b.label = label
	return b
}

// Main declares a top-level field, or returns the existing builder for id.
func (b *Builder) Main(id string, kind domain.Kind) *NodeBuilder {
	return b.add(id, domain.NodeMain, kind)
}

// Sub declares a component node. It must be listed by a main's Subs.
func (b *Builder) Sub(id string, kind domain.Kind) *NodeBuilder {
	return b.add(id, domain.NodeSub, kind)
}

func (b *Builder) add(id string, typ domain.NodeType, kind domain.Kind) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node: domain.Node{ID: id, Label: id, Type: typ, Kind: kind},
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Message sets the literal text for a prompt key.
func (b *Builder) Message(key, text string) *Builder {
	b.messages[key] = text
	return b
}

// Template returns the assembled template without validating it.
func (b *Builder) Template() *schema.Template {
	tpl := &schema.Template{
		Version: schema.Version,
		ID:      b.id,
		Label:   b.label,
		Nodes:   make([]domain.Node, 0, len(b.order)),
	}
	for _, id := range b.order {
		tpl.Nodes = append(tpl.Nodes, b.nodes[id].build())
	}
	if len(b.messages) > 0 {
		tpl.Messages = b.messages.Merge()
	}
	return tpl
}

// YAML renders the template as a document loadable by schema.Load.
func (b *Builder) YAML() ([]byte, error) {
	return yaml.Marshal(b.Template())
}

// Build validates the template exactly like a file would be and returns the compiled result.
// Validation failures are returned as schema.Issues.
func (b *Builder) Build() (*schema.Template, error) {
	data, err := b.YAML()
	if err != nil {
		return nil, fmt.Errorf("failed to render template %s: %w", b.id, err)
	}
	return schema.Compile(data)
}
