package domain

// NodeType distinguishes top-level fields from their components.
type NodeType string

const (
	// NodeMain is a top-level data item the dialogue collects.
	NodeMain NodeType = "main"
	// NodeSub is a component of a main node. Subs never own further subs.
	NodeSub NodeType = "sub"
)

// Escalation groups a base prompt key with its numbered re-prompt variants.
type Escalation struct {
	Base         string   `json:"base" yaml:"base" mapstructure:"base"`
	NoInput      []string `json:"noInput,omitempty" yaml:"noInput,omitempty" mapstructure:"noInput"`
	NoMatch      []string `json:"noMatch,omitempty" yaml:"noMatch,omitempty" mapstructure:"noMatch"`
	NotConfirmed []string `json:"notConfirmed,omitempty" yaml:"notConfirmed,omitempty" mapstructure:"notConfirmed"`
}

// Steps holds the prompt keys for every conversational step of a node.
type Steps struct {
	Ask     Escalation  `json:"ask" yaml:"ask" mapstructure:"ask"`
	Confirm *Escalation `json:"confirm,omitempty" yaml:"confirm,omitempty" mapstructure:"confirm"`
	// NotConfirmed is the disambiguation step. When present, a negative confirmation parks the
	// conversation in ModeNotConfirmed instead of jumping straight to sub collection.
	NotConfirmed *Escalation `json:"notConfirmed,omitempty" yaml:"notConfirmed,omitempty" mapstructure:"notConfirmed"`
	Success      []string    `json:"success,omitempty" yaml:"success,omitempty" mapstructure:"success"`
}

// Node is a field definition.
type Node struct {
	ID       string   `json:"id" yaml:"id" mapstructure:"id"`
	Label    string   `json:"label" yaml:"label" mapstructure:"label"`
	Type     NodeType `json:"type" yaml:"type" mapstructure:"type"`
	Kind     Kind     `json:"kind" yaml:"kind" mapstructure:"kind"`
	Required *bool    `json:"required,omitempty" yaml:"required,omitempty" mapstructure:"required"`
	Steps    Steps    `json:"steps" yaml:"steps" mapstructure:"steps"`
	// Subs lists owned sub node ids in declaration order (main nodes only).
	Subs []string `json:"subs,omitempty" yaml:"subs,omitempty" mapstructure:"subs"`
}

// IsRequired reports the required flag, which defaults to true.
func (n Node) IsRequired() bool {
	return n.Required == nil || *n.Required
}

// IsMain reports whether the node is a top-level field.
func (n Node) IsMain() bool {
	return n.Type == NodeMain
}
