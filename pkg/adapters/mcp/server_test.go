package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/aretw0/blueprint"
	"github.com/aretw0/blueprint/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcResponse struct {
	Result struct {
		IsError           bool            `json:"isError"`
		StructuredContent json.RawMessage `json:"structuredContent"`
		Content           []struct {
			Text string `json:"text"`
		} `json:"content"`
		Contents []struct {
			URI  string `json:"uri"`
			Text string `json:"text"`
		} `json:"contents"`
	} `json:"result"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type harness struct {
	t      *testing.T
	server *Server
	nextID int
}

func newHarness(t *testing.T) *harness {
	n := 0
	studio := blueprint.New(blueprint.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("sec-%d", n)
	}))
	return &harness{t: t, server: NewServer(studio, logging.NewNop())}
}

func (h *harness) rpc(method string, params any) rpcResponse {
	h.t.Helper()
	h.nextID++
	msg, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      h.nextID,
		"method":  method,
		"params":  params,
	})
	require.NoError(h.t, err)

	out := h.server.mcpServer.HandleMessage(context.Background(), msg)
	raw, err := json.Marshal(out)
	require.NoError(h.t, err)

	var resp rpcResponse
	require.NoError(h.t, json.Unmarshal(raw, &resp), string(raw))
	require.Nil(h.t, resp.Error, string(raw))
	return resp
}

func (h *harness) call(tool string, args map[string]any) rpcResponse {
	h.t.Helper()
	return h.rpc("tools/call", map[string]any{"name": tool, "arguments": args})
}

type stateView struct {
	Canvas struct {
		Sections []struct {
			ID        string `json:"id"`
			Type      string `json:"type"`
			Alignment string `json:"alignment"`
		} `json:"sections"`
	} `json:"canvas"`
	LayerOrder []string `json:"layerOrder"`
	Unsaved    bool     `json:"unsaved"`
	CanUndo    bool     `json:"canUndo"`
}

func (h *harness) state(resp rpcResponse) stateView {
	h.t.Helper()
	require.False(h.t, resp.Result.IsError, "tool returned an error: %+v", resp.Result.Content)
	var st stateView
	require.NoError(h.t, json.Unmarshal(resp.Result.StructuredContent, &st))
	return st
}

func TestTools_EditingSession(t *testing.T) {
	h := newHarness(t)
	h.rpc("initialize", map[string]any{
		"protocolVersion": "2024-11-05",
		"clientInfo":      map[string]any{"name": "test", "version": "0"},
	})

	h.state(h.call("open_canvas", map[string]any{"store_id": "demo-store", "page_type_id": "home"}))
	h.state(h.call("add_section", map[string]any{"type": "Header"}))
	st := h.state(h.call("add_section", map[string]any{"type": "ProductGrid", "template_id": "grid-3"}))
	require.Len(t, st.Canvas.Sections, 2)
	assert.True(t, st.Unsaved)

	st = h.state(h.call("move_section", map[string]any{"id": "sec-2", "direction": "up"}))
	assert.Equal(t, []string{"sec-2", "sec-1"}, st.LayerOrder)

	st = h.state(h.call("reorder_sections", map[string]any{"from": 0, "to": 1}))
	assert.Equal(t, []string{"sec-1", "sec-2"}, st.LayerOrder)

	st = h.state(h.call("update_section", map[string]any{"id": "sec-1", "patch": `{"alignment":"right"}`}))
	assert.Equal(t, "right", st.Canvas.Sections[0].Alignment)

	st = h.state(h.call("undo", nil))
	assert.Equal(t, "left", st.Canvas.Sections[0].Alignment)
	assert.True(t, st.CanUndo)

	st = h.state(h.call("delete_section", map[string]any{"id": "sec-2"}))
	assert.Equal(t, []string{"sec-1"}, st.LayerOrder)

	st = h.state(h.call("save", nil))
	assert.False(t, st.Unsaved)

	resp := h.rpc("resources/read", map[string]any{"uri": canvasURI})
	require.Len(t, resp.Result.Contents, 1)
	assert.Contains(t, resp.Result.Contents[0].Text, `"sec-1"`)
}

func TestTools_ProposeLayout(t *testing.T) {
	h := newHarness(t)
	h.state(h.call("open_canvas", map[string]any{"store_id": "demo-store", "page_type_id": "home"}))

	st := h.state(h.call("propose_layout", map[string]any{"desired_sections": "hero banner, product grid, "}))
	require.Len(t, st.Canvas.Sections, 2)
	assert.Equal(t, "HeroBanner", st.Canvas.Sections[0].Type)
	assert.Equal(t, "ProductGrid", st.Canvas.Sections[1].Type)

	resp := h.call("allowed_sections", nil)
	require.NotEmpty(t, resp.Result.Content)
	assert.Contains(t, resp.Result.Content[0].Text, "HeroBanner")
}

func TestTools_ErrorsAreToolResults(t *testing.T) {
	h := newHarness(t)

	resp := h.call("add_section", map[string]any{"type": "Header"})
	assert.True(t, resp.Result.IsError, "adding before open must fail")

	h.state(h.call("open_canvas", map[string]any{"store_id": "demo-store", "page_type_id": "home"}))
	assert.True(t, h.call("delete_section", map[string]any{"id": "ghost"}).Result.IsError)
	assert.True(t, h.call("update_section", map[string]any{"id": "ghost", "patch": "{"}).Result.IsError)
	assert.True(t, h.call("move_section", map[string]any{"id": "ghost", "direction": "sideways"}).Result.IsError)
}
