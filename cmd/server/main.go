package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/ethereum/go-ethereum/common"

	"github.com/uhyunpark/hyperlicked-mcp/params"
	"github.com/uhyunpark/hyperlicked-mcp/pkg/api"
	"github.com/uhyunpark/hyperlicked-mcp/pkg/crypto"
	"github.com/uhyunpark/hyperlicked-mcp/pkg/hyperliquid"
	"github.com/uhyunpark/hyperlicked-mcp/pkg/tools"
	"github.com/uhyunpark/hyperlicked-mcp/pkg/trader"
	"github.com/uhyunpark/hyperlicked-mcp/pkg/util"
)

const (
	serverName    = "hyperliquid-trader"
	serverVersion = "0.1.0"
)

func main() {
	envPath := flag.String("env", "", "path to a .env file (default: ./.env)")
	yamlPath := flag.String("config", "", "path to a YAML config file (default: $HL_CONFIG_FILE)")
	transport := flag.String("transport", "", "transport: stdio, sse, streamable-http or ws (default: $MCP_TRANSPORT or stdio)")
	host := flag.String("host", "", "host for HTTP transports (default: $FASTMCP_HOST or 127.0.0.1)")
	port := flag.Int("port", 0, "port for HTTP transports (default: $FASTMCP_PORT or 8000)")
	httpPath := flag.String("streamable-http-path", "", "path of the streamable HTTP endpoint (default: /mcp)")
	mountPath := flag.String("mount-path", "", "mount path of the SSE endpoints (default: $FASTMCP_MOUNT_PATH or /)")
	flag.Parse()

	// Load config from YAML, .env file and environment variables
	cfg, err := params.Load(*envPath, *yamlPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *transport != "" {
		cfg.Server.Transport = *transport
	}
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *httpPath != "" {
		cfg.Server.StreamableHTTPPath = *httpPath
	}
	if *mountPath != "" {
		cfg.Server.MountPath = *mountPath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := util.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	baseURL, err := params.ResolveBaseURL(cfg.Venue.Network, cfg.Venue.APIBaseURL)
	if err != nil {
		sugar.Fatalw("config_invalid", "err", err)
	}
	signer, err := crypto.FromPrivateKeyHex(cfg.Venue.SecretKey)
	if err != nil {
		sugar.Fatalw("secret_key_invalid", "err", err)
	}

	var vault *common.Address
	if cfg.Venue.VaultAddress != "" {
		v := common.HexToAddress(cfg.Venue.VaultAddress)
		vault = &v
	}

	client := hyperliquid.NewClient(hyperliquid.Options{
		BaseURL:   baseURL,
		Timeout:   cfg.Venue.HTTPTimeout,
		Signer:    signer,
		Vault:     vault,
		IsMainnet: cfg.Venue.IsMainnet(),
		Slippage:  cfg.Venue.MarketSlippage,
		Clock:     util.RealClock{},
		Logger:    sugar.Named("venue"),
	})
	sugar.Infow("venue_configured",
		"base_url", baseURL,
		"account", cfg.Venue.AccountAddress,
		"signer", signer.Address().Hex(),
		"vault", cfg.Venue.VaultAddress,
		"mainnet", cfg.Venue.IsMainnet())

	tr := trader.New(client, cfg.Venue.AccountAddress, sugar.Named("trader"))
	toolbox := tools.New(tr, sugar.Named("tools"))
	dispatcher, err := api.NewDispatcher(toolbox, api.ServerInfo{Name: serverName, Version: serverVersion}, sugar.Named("mcp"))
	if err != nil {
		sugar.Fatalw("mcp_server_failed", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cfg.Server.Transport {
	case params.TransportStdio:
		sugar.Infow("stdio_server_starting")
		if err := api.ServeStdio(ctx, dispatcher, os.Stdin, os.Stdout); err != nil {
			sugar.Fatalw("stdio_server_failed", "err", err)
		}
	case params.TransportSSE, params.TransportStreamableHTTP, params.TransportWebsocket:
		addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
		server := api.NewServer(cfg.Server, dispatcher, sugar.Named("http"))
		fmt.Fprintf(os.Stderr, "Starting %s server on http://%s%s\n", cfg.Server.Transport, addr, endpoint(cfg.Server, server))
		if err := server.Start(ctx, addr); err != nil {
			sugar.Fatalw("http_server_failed", "err", err)
		}
	}
	sugar.Infow("shutdown_complete")
}

// endpoint is the path a client of the selected transport connects to.
// Every HTTP transport is served either way.
func endpoint(cfg params.Server, s *api.Server) string {
	switch cfg.Transport {
	case params.TransportWebsocket:
		return "/ws"
	case params.TransportSSE:
		return s.SSEPath()
	}
	return cfg.StreamableHTTPPath
}
