package memory_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/slotfill/pkg/adapters/memory"
	"github.com/aretw0/slotfill/pkg/ports"
)

const contactDoc = `
version: slotfill/v1
id: contact
nodes:
  - id: email
    label: Email
    type: main
    kind: email
    steps:
      ask:
        base: ask.email
        noInput: [a, b, c]
        noMatch: [d, e, f]
`

const phoneDoc = `{
  "version": "slotfill/v1",
  "nodes": [
    {"id": "phone", "label": "Phone", "type": "main", "kind": "phone",
     "steps": {"ask": {"base": "ask.phone", "noInput": ["a","b","c"], "noMatch": ["d","e","f"]}}}
  ]
}`

func TestInMemoryLoader_Contract(t *testing.T) {
	loader, err := memory.NewFromDocuments(map[string]string{
		"contact": contactDoc,
		"phone":   phoneDoc,
	})
	require.NoError(t, err)

	ports.RunTemplateLoaderContract(t, loader, []string{"contact", "phone"})
}

func TestInMemoryLoader_RejectsInvalid(t *testing.T) {
	_, err := memory.NewFromDocuments(map[string]string{"broken": "version: slotfill/v1\nnodes: []\n"})
	require.Error(t, err)
}
