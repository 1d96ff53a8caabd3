// Package graph renders template plans as Mermaid flowcharts.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/slotfill/pkg/domain"
)

// Overlay carries the progress of one session to highlight on the chart.
type Overlay struct {
	Filled    []string
	Confirmed []string
	Current   string
}

// OverlayOf builds the overlay for a state. The current node is the sub being asked, else the
// main under the cursor; a completed state has none.
func OverlayOf(s *domain.State) *Overlay {
	o := &Overlay{}
	for _, id := range s.Plan.Order {
		if s.Memory.Confirmed(id) {
			o.Confirmed = append(o.Confirmed, id)
		} else if s.Memory.Present(id) {
			o.Filled = append(o.Filled, id)
		}
	}
	if !s.Terminal() {
		o.Current = s.Target()
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of the plan. Mains are chained in asking order
// between a start and a done terminal; subs hang off their main with dotted edges.
// Shapes follow the kind:
// - Composite kinds (date, name, address): [[Subroutine]]
// - Constrained kinds (email, phone): [/Parallelogram/]
// - Default: [Rectangle]
// Optional nodes carry a trailing "?".
func GenerateMermaid(plan domain.Plan, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("    start((\"start\"))\n")

	prev := "start"
	for _, main := range plan.Mains() {
		safeID := sanitizeMermaidID(main.ID)
		sb.WriteString(nodeLine(main))
		fmt.Fprintf(&sb, "    %s --> %s\n", prev, safeID)
		prev = safeID

		for _, sub := range plan.Subs(main) {
			sb.WriteString(nodeLine(sub))
			fmt.Fprintf(&sb, "    %s -.-> %s\n", safeID, sanitizeMermaidID(sub.ID))
		}
	}
	sb.WriteString("    done((\"done\"))\n")
	fmt.Fprintf(&sb, "    %s --> done\n", prev)

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text stays readable on both light and dark themes.
		sb.WriteString("    classDef filled fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef confirmed fill:#c8e6c9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		for _, id := range overlay.Filled {
			if _, ok := plan.Node(id); ok {
				fmt.Fprintf(&sb, "    class %s filled;\n", sanitizeMermaidID(id))
			}
		}
		for _, id := range overlay.Confirmed {
			if _, ok := plan.Node(id); ok {
				fmt.Fprintf(&sb, "    class %s confirmed;\n", sanitizeMermaidID(id))
			}
		}
		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.Current))
		}
	}

	return sb.String()
}

func nodeLine(n domain.Node) string {
	opener, closer := "[", "]"
	switch n.Kind {
	case domain.KindDate, domain.KindName, domain.KindAddress:
		opener, closer = "[[", "]]"
	case domain.KindEmail, domain.KindPhone:
		opener, closer = "[/", "/]"
	}

	label := n.Label
	if label == "" {
		label = n.ID
	}
	label = strings.ReplaceAll(label, "\"", "'")
	if !n.IsRequired() {
		label += "?"
	}
	return fmt.Sprintf("    %s%s\"%s <br/> %s\"%s\n", sanitizeMermaidID(n.ID), opener, label, n.Kind, closer)
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	// start and done name the terminals.
	if s == "start" || s == "done" {
		s = "n_" + s
	}
	return s
}
