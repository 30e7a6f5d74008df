package api

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uhyunpark/hyperlicked-mcp/pkg/tools"
	"github.com/uhyunpark/hyperlicked-mcp/pkg/trader"
	"github.com/uhyunpark/hyperlicked-mcp/pkg/venue"
)

type stubVenue struct{}

func (stubVenue) AllMids(ctx context.Context) (map[string]string, error) {
	return map[string]string{"BTC": "65000", "ETH": "3000"}, nil
}

func (stubVenue) UserState(ctx context.Context, user, dex string) (venue.AccountState, error) {
	return venue.AccountState{}, nil
}

func (stubVenue) OpenOrders(ctx context.Context, user string) ([]map[string]any, error) {
	return nil, nil
}

func (stubVenue) Order(ctx context.Context, req venue.OrderRequest) (json.RawMessage, error) {
	return json.RawMessage(`{"status":"ok"}`), nil
}

func (stubVenue) MarketOpen(ctx context.Context, req venue.OrderRequest) (json.RawMessage, error) {
	return json.RawMessage(`{"status":"ok"}`), nil
}

func (stubVenue) Cancel(ctx context.Context, coin string, oid int64) (json.RawMessage, error) {
	return json.RawMessage(`{"status":"ok"}`), nil
}

func newDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	tb := tools.New(trader.New(stubVenue{}, "0xabc", nil), nil)
	d, err := NewDispatcher(tb, ServerInfo{Name: "hyperliquid-trader", Version: "test"}, nil)
	require.NoError(t, err)
	return d
}

func call(t *testing.T, d *Dispatcher, msg string) map[string]any {
	t.Helper()
	raw := d.HandleMessage(context.Background(), []byte(msg))
	require.NotNil(t, raw, "expected a response to %s", msg)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func errorCode(t *testing.T, resp map[string]any) int {
	t.Helper()
	e, ok := resp["error"].(map[string]any)
	require.True(t, ok, "expected an error response, got %v", resp)
	return int(e["code"].(float64))
}

func TestInitialize(t *testing.T) {
	d := newDispatcher(t)

	resp := call(t, d, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"t","version":"1"}}}`)
	assert.Equal(t, 1.0, resp["id"])
	result := resp["result"].(map[string]any)
	assert.Equal(t, "2025-03-26", result["protocolVersion"])
	assert.Equal(t, map[string]any{"name": "hyperliquid-trader", "version": "test"}, result["serverInfo"])
	assert.Contains(t, result["capabilities"], "tools")
	assert.Equal(t, instructions, result["instructions"])

	resp = call(t, d, `{"jsonrpc":"2.0","id":"a","method":"initialize","params":{"protocolVersion":"1999-01-01","capabilities":{},"clientInfo":{"name":"t","version":"1"}}}`)
	assert.Equal(t, mcp.LATEST_PROTOCOL_VERSION, resp["result"].(map[string]any)["protocolVersion"])
}

func TestNotificationHasNoResponse(t *testing.T) {
	d := newDispatcher(t)
	assert.Nil(t, d.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`)))
}

func TestPing(t *testing.T) {
	resp := call(t, newDispatcher(t), `{"jsonrpc":"2.0","id":7,"method":"ping"}`)
	assert.Equal(t, 7.0, resp["id"])
	assert.Equal(t, map[string]any{}, resp["result"])
}

func TestToolsList(t *testing.T) {
	resp := call(t, newDispatcher(t), `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	list := resp["result"].(map[string]any)["tools"].([]any)
	require.Len(t, list, 11)

	byName := map[string]map[string]any{}
	for _, raw := range list {
		tool := raw.(map[string]any)
		byName[tool["name"].(string)] = tool
	}
	require.Contains(t, byName, "place_limit")
	schema := byName["place_limit"]["inputSchema"].(map[string]any)
	assert.Equal(t, "object", schema["type"])
	assert.ElementsMatch(t, []any{"symbol", "side", "qty", "price"}, schema["required"])
}

func TestToolsCall(t *testing.T) {
	resp := call(t, newDispatcher(t), `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"get_mark_price","arguments":{"symbol":"eth"}}}`)
	result := resp["result"].(map[string]any)
	assert.NotEqual(t, true, result["isError"])
	assert.Equal(t, map[string]any{"ok": true, "symbol": "ETH", "mark_price": 3000.0}, result["structuredContent"])

	content := result["content"].([]any)[0].(map[string]any)
	assert.Equal(t, "text", content["type"])
	assert.JSONEq(t, `{"ok":true,"symbol":"ETH","mark_price":3000}`, content["text"].(string))
}

func TestToolsCallFailureIsError(t *testing.T) {
	resp := call(t, newDispatcher(t), `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"place_market","arguments":{"symbol":"ETH","side":"buy","qty":0}}}`)
	result := resp["result"].(map[string]any)
	assert.Equal(t, true, result["isError"])
	assert.Equal(t, map[string]any{"ok": false, "error": "qty must be greater than 0"}, result["structuredContent"])
}

func TestProtocolErrors(t *testing.T) {
	d := newDispatcher(t)

	resp := call(t, d, `{not json`)
	assert.Equal(t, mcp.PARSE_ERROR, errorCode(t, resp))

	resp = call(t, d, `{"jsonrpc":"2.0","id":1,"method":"nope/never"}`)
	assert.Equal(t, mcp.METHOD_NOT_FOUND, errorCode(t, resp))

	resp = call(t, d, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"no_such_tool","arguments":{}}}`)
	errorCode(t, resp)
	assert.Nil(t, resp["result"])
}
