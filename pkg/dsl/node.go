package dsl

import (
	"fmt"

	"github.com/aretw0/slotfill/pkg/domain"
)

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node domain.Node

	askBase     string
	confirmBase string
	confirm     bool
	which       bool
}

// Label sets the display name used in prompts and summaries. It defaults to the id.
func (n *NodeBuilder) Label(label string) *NodeBuilder {
	n.node.Label = label
	return n
}

// Subs lists the component node ids of a main, in asking order.
func (n *NodeBuilder) Subs(ids ...string) *NodeBuilder {
	n.node.Subs = append(n.node.Subs, ids...)
	return n
}

// Optional marks the node as not required.
func (n *NodeBuilder) Optional() *NodeBuilder {
	required := false
	n.node.Required = &required
	return n
}

// Ask overrides the base prompt key, which defaults to "ask.<id>".
func (n *NodeBuilder) Ask(key string) *NodeBuilder {
	n.askBase = key
	return n
}

// Confirm adds a confirmation step keyed "confirm.<id>" unless a key is given.
func (n *NodeBuilder) Confirm(key ...string) *NodeBuilder {
	n.confirm = true
	if len(key) > 0 {
		n.confirmBase = key[0]
	}
	return n
}

// Disambiguate adds the step asked after a rejected confirmation, keyed "which.<id>".
func (n *NodeBuilder) Disambiguate() *NodeBuilder {
	n.which = true
	return n
}

// Success sets the acknowledgement keys, one of which is shown after the field is confirmed.
func (n *NodeBuilder) Success(keys ...string) *NodeBuilder {
	n.node.Steps.Success = append([]string(nil), keys...)
	return n
}

func variants(base, suffix string) []string {
	out := make([]string, domain.MaxEscalation)
	for i := range out {
		out[i] = fmt.Sprintf("%s.%s%d", base, suffix, i+1)
	}
	return out
}

func (n *NodeBuilder) build() domain.Node {
	node := n.node
	ask := n.askBase
	if ask == "" {
		ask = "ask." + node.ID
	}
	node.Steps.Ask = domain.Escalation{
		Base:    ask,
		NoInput: variants(ask, "ni"),
		NoMatch: variants(ask, "nm"),
	}
	if n.confirm {
		base := n.confirmBase
		if base == "" {
			base = "confirm." + node.ID
		}
		node.Steps.Confirm = &domain.Escalation{
			Base:         base,
			NoInput:      variants(base, "ni"),
			NoMatch:      variants(base, "nm"),
			NotConfirmed: variants(base, "nc"),
		}
	}
	if n.which {
		base := "which." + node.ID
		node.Steps.NotConfirmed = &domain.Escalation{
			Base:         base,
			NotConfirmed: variants(base, ""),
		}
	}
	return node
}
