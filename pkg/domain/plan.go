package domain

// Plan is the immutable traversal of a template: every main node followed immediately by its
// resolvable subs, in declaration order, plus an id-indexed lookup of every declared node.
type Plan struct {
	Order []string        `json:"order"`
	Nodes map[string]Node `json:"nodes"`
}

// BuildPlan flattens the node list. Sub ids that do not resolve to a declared node are skipped.
func BuildPlan(nodes []Node) Plan {
	index := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		index[n.ID] = n
	}

	order := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if !n.IsMain() {
			continue
		}
		order = append(order, n.ID)
		for _, subID := range n.Subs {
			if _, ok := index[subID]; ok {
				order = append(order, subID)
			}
		}
	}

	return Plan{Order: order, Nodes: index}
}

// Node looks up a node by id.
func (p Plan) Node(id string) (Node, bool) {
	n, ok := p.Nodes[id]
	return n, ok
}

// At returns the node at a traversal index.
func (p Plan) At(i int) (Node, bool) {
	if i < 0 || i >= len(p.Order) {
		return Node{}, false
	}
	return p.Node(p.Order[i])
}

// FirstMain returns the traversal index of the first main node, or -1.
func (p Plan) FirstMain() int {
	return p.NextMain(-1)
}

// NextMain returns the traversal index of the first main node after index i, or -1.
func (p Plan) NextMain(i int) int {
	for j := i + 1; j < len(p.Order); j++ {
		if n, ok := p.Node(p.Order[j]); ok && n.IsMain() {
			return j
		}
	}
	return -1
}

// Mains returns the main nodes in traversal order.
func (p Plan) Mains() []Node {
	var out []Node
	for i := p.FirstMain(); i >= 0; i = p.NextMain(i) {
		n, _ := p.At(i)
		out = append(out, n)
	}
	return out
}

// Subs returns the resolvable subs of a main in declaration order.
func (p Plan) Subs(main Node) []Node {
	out := make([]Node, 0, len(main.Subs))
	for _, id := range main.Subs {
		if n, ok := p.Node(id); ok {
			out = append(out, n)
		}
	}
	return out
}

// Parent returns the main owning the given sub id.
func (p Plan) Parent(subID string) (Node, bool) {
	for _, main := range p.Mains() {
		for _, id := range main.Subs {
			if id == subID {
				return main, true
			}
		}
	}
	return Node{}, false
}

// Kinds returns the distinct kinds found along the traversal order.
func (p Plan) Kinds() []Kind {
	seen := make(map[Kind]bool)
	var out []Kind
	for _, id := range p.Order {
		n, ok := p.Node(id)
		if !ok || n.Kind == "" || seen[n.Kind] {
			continue
		}
		seen[n.Kind] = true
		out = append(out, n.Kind)
	}
	return out
}
