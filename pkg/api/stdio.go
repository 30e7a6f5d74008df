package api

import (
	"context"
	"io"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// ServeStdio reads one JSON-RPC message per line from r and writes each
// reply as one line to w. It returns at EOF or when ctx is cancelled.
func ServeStdio(ctx context.Context, d *Dispatcher, r io.Reader, w io.Writer) error {
	stdio := server.NewStdioServer(d.mcp)
	// stdout carries the protocol; SDK errors go to the structured log.
	stdio.SetErrorLogger(zap.NewStdLog(d.logger.Desugar().Named("stdio")))
	return stdio.Listen(ctx, r, w)
}
