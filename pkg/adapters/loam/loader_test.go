package loam

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/slotfill/internal/testutils"
	"github.com/aretw0/slotfill/pkg/domain"
	"github.com/aretw0/slotfill/pkg/ports"
)

const emailYAML = `version: slotfill/v1
id: contact.yaml
label: Contact
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
messages:
  ask:
    email: Your email?
`

const phoneJSON = `{
  "version": "slotfill/v1",
  "nodes": [
    {"id": "phone", "label": "Phone", "type": "main", "kind": "phone",
     "steps": {"ask": {"base": "ask.phone", "noInput": ["a","b","c"], "noMatch": ["d","e","f"]}}}
  ]
}`

func seed(t *testing.T, files map[string]string) *Loader {
	t.Helper()
	tmpDir, repo := testutils.SetupTestRepo(t, loam.WithVersioning(false))
	for filename, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, filename), []byte(content), 0644))
	}
	return New(loam.NewTypedRepository[TemplateMetadata](repo))
}

func TestLoader_Contract(t *testing.T) {
	loader := seed(t, map[string]string{
		"contact.yaml": emailYAML,
		"phone.json":   phoneJSON,
	})
	ports.RunTemplateLoaderContract(t, loader, []string{"contact", "phone"})
}

func TestLoader_Get(t *testing.T) {
	loader := seed(t, map[string]string{"contact.yaml": emailYAML})

	tpl, err := loader.Get(context.Background(), "contact")
	require.NoError(t, err)
	assert.Equal(t, "contact", tpl.ID, "IDs are normalized without extension")
	assert.Equal(t, "Contact", tpl.Label)
	assert.Equal(t, "Your email?", tpl.Messages["ask.email"])
	assert.Equal(t, []string{"email"}, tpl.Plan().Order)
}

func TestLoader_InvalidTemplate(t *testing.T) {
	loader := seed(t, map[string]string{"broken.json": `{"version": "v0", "nodes": []}`})

	_, err := loader.Get(context.Background(), "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrTemplateNotFound)
}

func TestLoader_List_DetectsCollisions(t *testing.T) {
	loader := seed(t, map[string]string{
		"contact.yaml": emailYAML,
		"contact.json": `{"id": "contact", "version": "slotfill/v1", "nodes": []}`,
	})

	_, err := loader.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
}
