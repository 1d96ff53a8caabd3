package slotfill_test

import (
	"context"
	"fmt"

	"github.com/aretw0/slotfill"
	"github.com/aretw0/slotfill/pkg/domain"
	"github.com/aretw0/slotfill/pkg/schema"
)

// ExampleEngine_Advance shows a single utterance filling two fields at once.
func ExampleEngine_Advance() {
	ask := func(base string) domain.Steps {
		return domain.Steps{Ask: domain.Escalation{Base: base}}
	}
	tpl := &schema.Template{
		ID: "contact",
		Nodes: []domain.Node{
			{ID: "email", Label: "Email", Type: domain.NodeMain, Kind: domain.KindEmail, Steps: ask("ask.email")},
			{ID: "phone", Label: "Phone", Type: domain.NodeMain, Kind: domain.KindPhone, Steps: ask("ask.phone")},
		},
	}

	ctx := context.Background()
	eng := slotfill.New()
	state, err := eng.Init(ctx, "example", tpl)
	if err != nil {
		panic(err)
	}

	state, err = eng.Advance(ctx, state, "mail me at anna@example.org or call 333 123 4567")
	if err != nil {
		panic(err)
	}

	fmt.Println(state.Mode)
	fmt.Println(state.Memory["email"].Value)
	fmt.Println(state.Memory["phone"].Value)
	// Output:
	// ConfirmingMain
	// anna@example.org
	// +39 333 123 4567
}
