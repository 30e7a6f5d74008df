// Package tools exposes the trader operations as named remote tools. Every
// call returns an envelope {"ok": true, ...} or {"ok": false, "error": msg};
// tool calls never fail any other way.
package tools

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/uhyunpark/hyperlicked-mcp/pkg/trader"
)

// Result is the envelope returned by every tool.
type Result map[string]any

// OK reports whether the call succeeded.
func (r Result) OK() bool {
	ok, _ := r["ok"].(bool)
	return ok
}

func success(fields Result) Result {
	fields["ok"] = true
	return fields
}

func failure(msg string) Result {
	return Result{"ok": false, "error": msg}
}

type handlerFunc func(ctx context.Context, args Args) (Result, error)

// Tool describes one callable tool. InputSchema is a JSON Schema object.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`

	call handlerFunc
}

type Toolbox struct {
	trader *trader.Trader
	tools  map[string]Tool
	logger *zap.SugaredLogger
}

func New(tr *trader.Trader, logger *zap.SugaredLogger) *Toolbox {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	tb := &Toolbox{trader: tr, tools: make(map[string]Tool), logger: logger}
	tb.register()
	return tb
}

func (tb *Toolbox) add(t Tool) {
	tb.tools[t.Name] = t
}

// List returns the registered tools sorted by name.
func (tb *Toolbox) List() []Tool {
	out := make([]Tool, 0, len(tb.tools))
	for _, t := range tb.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Call runs the named tool. Errors and panics become a failure envelope.
func (tb *Toolbox) Call(ctx context.Context, name string, args map[string]any) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			tb.logger.Errorw("tool_panic", "tool", name, "panic", r)
			res = failure(fmt.Sprint(r))
		}
	}()

	t, ok := tb.tools[name]
	if !ok {
		return failure(fmt.Sprintf("unknown tool '%s'", name))
	}
	if args == nil {
		args = map[string]any{}
	}

	out, err := t.call(ctx, Args(args))
	if err != nil {
		tb.logger.Warnw("tool_failed", "tool", name, "err", err, "elapsed", time.Since(start))
		return failure(err.Error())
	}
	tb.logger.Infow("tool_call", "tool", name, "elapsed", time.Since(start))
	return success(out)
}
