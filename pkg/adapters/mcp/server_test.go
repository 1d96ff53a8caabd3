package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/slotfill"
	"github.com/aretw0/slotfill/pkg/adapters/memory"
	"github.com/aretw0/slotfill/pkg/domain"
	"github.com/aretw0/slotfill/pkg/observability"
)

const contactDoc = `
version: slotfill/v1
id: contact
nodes:
  - id: email
    label: email
    type: main
    kind: email
    steps:
      ask:
        base: ask.email
        noInput: [a, b, c]
        noMatch: [d, e, f]
messages:
  ask:
    email: What is your email address?
`

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	loader, err := memory.NewFromDocuments(map[string]string{"contact": contactDoc})
	require.NoError(t, err)
	return NewServer(slotfill.New(), loader, opts...)
}

func TestServer_Conversation(t *testing.T) {
	metrics := observability.NewMetrics("")
	s := newTestServer(t, WithMetrics(metrics))
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	res, err := s.handleStart(ctx, req, StartArgs{TemplateID: "contact", SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "What is your email address?", res.Prompt)
	assert.Equal(t, domain.ModeCollectingMain, res.Mode)

	res, err = s.handleAdvance(ctx, req, AdvanceArgs{SessionID: "s1", Utterance: "mario.rossi@example.it"})
	require.NoError(t, err)
	assert.Equal(t, domain.ModeConfirmingMain, res.Mode)
	assert.Equal(t, "Is mario.rossi@example.it correct?", res.Prompt)

	for _, u := range []string{"yes", ""} {
		res, err = s.handleAdvance(ctx, req, AdvanceArgs{SessionID: "s1", Utterance: u})
		require.NoError(t, err)
	}
	assert.True(t, res.Terminal)
	require.Len(t, res.Summary, 1)
	assert.True(t, res.Summary[0].Confirmed)

	got, err := s.handleGet(ctx, req, SessionArgs{SessionID: "s1"})
	require.NoError(t, err)
	assert.True(t, got.Terminal)

	again, err := s.handleStart(ctx, req, StartArgs{TemplateID: "contact", SessionID: "s1"})
	require.NoError(t, err)
	assert.True(t, again.Terminal, "an existing session is resumed")

	assert.Equal(t, 1, testutil.CollectAndCount(metrics.Turns), "one transport series")
}

func TestServer_Errors(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	req := mcp.CallToolRequest{}

	_, err := s.handleStart(ctx, req, StartArgs{})
	assert.Error(t, err)

	_, err = s.handleStart(ctx, req, StartArgs{TemplateID: "nope"})
	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)

	_, err = s.handleAdvance(ctx, req, AdvanceArgs{SessionID: "missing", Utterance: "hi"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = s.handleGet(ctx, req, SessionArgs{SessionID: "missing"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	res, err := s.handleStart(ctx, req, StartArgs{TemplateID: "contact"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.SessionID)
}

func TestServer_Validate(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleValidate(ctx, mcp.CallToolRequest{}, ValidateArgs{Document: contactDoc})
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, "contact", res.ID)

	res, err = s.handleValidate(ctx, mcp.CallToolRequest{}, ValidateArgs{Document: "version: slotfill/v1\nnodes: []\n"})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.NotEmpty(t, res.Issues)

	_, err = s.handleValidate(ctx, mcp.CallToolRequest{}, ValidateArgs{Document: "nodes: [unclosed"})
	assert.Error(t, err)
}

func handle(t *testing.T, s *Server, msg string) map[string]any {
	t.Helper()
	out := s.MCPServer().HandleMessage(context.Background(), json.RawMessage(msg))
	data, err := json.Marshal(out)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	return decoded
}

func TestServer_Protocol(t *testing.T) {
	s := newTestServer(t)

	t.Run("Tools List", func(t *testing.T) {
		resp := handle(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
		result := resp["result"].(map[string]any)
		var names []string
		for _, tool := range result["tools"].([]any) {
			names = append(names, tool.(map[string]any)["name"].(string))
		}
		assert.ElementsMatch(t, []string{"start_session", "advance", "get_session", "validate_template"}, names)
	})

	t.Run("Call Start", func(t *testing.T) {
		resp := handle(t, s, `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"start_session","arguments":{"template_id":"contact","session_id":"p1"}}}`)
		result := resp["result"].(map[string]any)
		assert.NotEqual(t, true, result["isError"])
		structured := result["structuredContent"].(map[string]any)
		assert.Equal(t, "p1", structured["session_id"])
		assert.Equal(t, "What is your email address?", structured["prompt"])
	})

	t.Run("Read Templates", func(t *testing.T) {
		resp := handle(t, s, `{"jsonrpc":"2.0","id":3,"method":"resources/read","params":{"uri":"slotfill://templates"}}`)
		contents := resp["result"].(map[string]any)["contents"].([]any)
		require.Len(t, contents, 1)
		assert.JSONEq(t, `["contact"]`, contents[0].(map[string]any)["text"].(string))
	})

	t.Run("Read Template", func(t *testing.T) {
		resp := handle(t, s, `{"jsonrpc":"2.0","id":4,"method":"resources/read","params":{"uri":"slotfill://templates/contact"}}`)
		contents := resp["result"].(map[string]any)["contents"].([]any)
		require.Len(t, contents, 1)
		assert.Contains(t, contents[0].(map[string]any)["text"].(string), `"id":"email"`)
	})
}
