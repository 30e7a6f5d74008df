package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/uhyunpark/hyperlicked-mcp/pkg/tools"
)

const instructions = "Hyperliquid trading tools. Discover symbols with list_symbols or find_symbols " +
	"before placing orders; use dry_run to preview an order without submitting it."

type ServerInfo struct {
	Name    string
	Version string
}

// Dispatcher owns the MCP server every transport talks to. Each toolbox
// tool is registered with its JSON schema; results carry the envelope both
// as text and as structured content.
type Dispatcher struct {
	mcp    *server.MCPServer
	tools  *tools.Toolbox
	logger *zap.SugaredLogger
}

func NewDispatcher(tb *tools.Toolbox, info ServerInfo, logger *zap.SugaredLogger) (*Dispatcher, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	d := &Dispatcher{tools: tb, logger: logger}

	hooks := &server.Hooks{}
	hooks.AddAfterInitialize(func(ctx context.Context, id any, req *mcp.InitializeRequest, res *mcp.InitializeResult) {
		logger.Infow("session_initialized",
			"client", req.Params.ClientInfo.Name,
			"client_version", req.Params.ClientInfo.Version,
			"protocol", res.ProtocolVersion)
	})
	hooks.AddOnError(func(ctx context.Context, id any, method mcp.MCPMethod, message any, err error) {
		logger.Debugw("mcp_request_failed", "method", method, "err", err)
	})

	d.mcp = server.NewMCPServer(info.Name, info.Version,
		server.WithToolCapabilities(false),
		server.WithInstructions(instructions),
		server.WithHooks(hooks),
		server.WithRecovery(),
	)

	for _, t := range tb.List() {
		schema, err := json.Marshal(t.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("encode schema of %s: %w", t.Name, err)
		}
		d.mcp.AddTool(mcp.NewToolWithRawSchema(t.Name, t.Description, schema), d.callTool(t.Name))
	}
	return d, nil
}

// MCPServer exposes the underlying server for the SDK transports.
func (d *Dispatcher) MCPServer() *server.MCPServer { return d.mcp }

func (d *Dispatcher) callTool(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res := d.tools.Call(ctx, name, req.GetArguments())
		text, err := json.Marshal(res)
		if err != nil {
			d.logger.Errorw("encode_tool_result_failed", "tool", name, "err", err)
			return nil, fmt.Errorf("encode %s result: %w", name, err)
		}
		return &mcp.CallToolResult{
			Content:           []mcp.Content{mcp.NewTextContent(string(text))},
			StructuredContent: res,
			IsError:           !res.OK(),
		}, nil
	}
}

// HandleMessage runs one raw JSON-RPC message through the server and
// returns the encoded reply, or nil for notifications.
func (d *Dispatcher) HandleMessage(ctx context.Context, raw []byte) []byte {
	resp := d.mcp.HandleMessage(ctx, raw)
	if resp == nil {
		return nil
	}
	b, err := json.Marshal(resp)
	if err != nil {
		d.logger.Errorw("encode_response_failed", "err", err)
		return nil
	}
	return b
}
