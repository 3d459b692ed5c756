package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/dramaflow/internal/runtime"
	"github.com/aretw0/dramaflow/pkg/domain"
)

// Overlay marks the step a session is at.
type Overlay struct {
	Current domain.Step
}

// GenerateMermaid renders the workflow steps and edges as a Mermaid flowchart.
// Shapes:
//   - init: ((Circle))
//   - completed: (((Double circle)))
//   - other steps: [Rectangle]
//
// Edges sharing the same endpoints are merged into one arrow labelled with every intent.
func GenerateMermaid(edges []runtime.Edge, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, step := range domain.Steps() {
		opener, closer := "[", "]"
		switch step {
		case domain.StepInit:
			opener, closer = "((", "))"
		case domain.StepCompleted:
			opener, closer = "(((", ")))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", step, opener, step, closer)
	}

	type pair struct{ from, to domain.Step }
	var order []pair
	labels := make(map[pair][]string)
	for _, e := range edges {
		p := pair{e.From, e.To}
		if _, ok := labels[p]; !ok {
			order = append(order, p)
		}
		labels[p] = append(labels[p], fmt.Sprintf("%s → %s", e.Intent, e.Handler))
	}
	for _, p := range order {
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", p.from, strings.Join(labels[p], "<br/>"), p.to)
	}

	if overlay != nil && overlay.Current != "" {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text stays readable on both light and dark themes.
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		fmt.Fprintf(&sb, "    class %s current;\n", overlay.Current)
	}

	return sb.String()
}
