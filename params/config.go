package params

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	MainnetAPIURL = "https://api.hyperliquid.xyz"
	TestnetAPIURL = "https://api.hyperliquid-testnet.xyz"
	LocalAPIURL   = "http://localhost:3001"
)

// Transports accepted by the server.
const (
	TransportStdio          = "stdio"
	TransportSSE            = "sse"
	TransportStreamableHTTP = "streamable-http"
	TransportWebsocket      = "ws"
)

type Venue struct {
	AccountAddress string `yaml:"account_address"`
	// SecretKey is the hex private key of the signing wallet.
	// Never log it.
	SecretKey    string        `yaml:"secret_key"`
	Network      string        `yaml:"network"`
	APIBaseURL   string        `yaml:"api_base_url"`
	VaultAddress string        `yaml:"vault_address"`
	HTTPTimeout  time.Duration `yaml:"http_timeout"`
	// MarketSlippage is the fraction applied to the mid price when a market
	// order is turned into an aggressive IOC limit order.
	MarketSlippage float64 `yaml:"market_slippage"`
}

type Server struct {
	Transport          string   `yaml:"transport"`
	Host               string   `yaml:"host"`
	Port               int      `yaml:"port"`
	StreamableHTTPPath string   `yaml:"streamable_http_path"`
	AuthHeaderName     string   `yaml:"auth_header_name"`
	AuthHeaderValue    string   `yaml:"auth_header_value"`
	AllowedOrigins     []string `yaml:"allowed_origins"`
	// MountPath prefixes the SSE stream and message endpoints.
	MountPath string `yaml:"mount_path"`
}

type Log struct {
	Level string `yaml:"level"`
	// File enables a rotating log file next to stderr output.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

type Config struct {
	Venue  Venue  `yaml:"venue"`
	Server Server `yaml:"server"`
	Log    Log    `yaml:"log"`
}

func Default() Config {
	return Config{
		Venue: Venue{
			Network:        "mainnet",
			HTTPTimeout:    15 * time.Second,
			MarketSlippage: 0.05,
		},
		Server: Server{
			Transport:          TransportStdio,
			Host:               "127.0.0.1",
			Port:               8000,
			StreamableHTTPPath: "/mcp",
			MountPath:          "/",
			AuthHeaderName:     "Authorization",
			AllowedOrigins:     []string{"http://localhost:3000"},
		},
		Log: Log{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
		},
	}
}

// Load builds the configuration.
// Priority: ENV > .env file > YAML file > defaults
func Load(envPath, yamlPath string) (Config, error) {
	cfg := Default()

	if yamlPath == "" {
		yamlPath = cleanValue(os.Getenv("HL_CONFIG_FILE"))
	}
	if yamlPath != "" {
		if err := loadYAML(yamlPath, &cfg); err != nil {
			return cfg, err
		}
	}

	// godotenv never overrides variables that are already set.
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return cfg, fmt.Errorf("load env file %s: %w", envPath, err)
		}
	} else {
		_ = godotenv.Load()
	}

	applyEnv(&cfg)
	return cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := getEnv("HL_ACCOUNT_ADDRESS"); v != "" {
		cfg.Venue.AccountAddress = v
	}
	if v := getEnv("HL_SECRET_KEY"); v != "" {
		cfg.Venue.SecretKey = v
	}
	if v := getEnv("HL_NETWORK"); v != "" {
		cfg.Venue.Network = strings.ToLower(v)
	}
	if v := getEnv("HL_API_BASE_URL"); v != "" {
		cfg.Venue.APIBaseURL = v
	}
	if v := getEnv("HL_VAULT_ADDRESS"); v != "" {
		cfg.Venue.VaultAddress = v
	}
	if v := getEnv("HL_HTTP_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			cfg.Venue.HTTPTimeout = time.Duration(ms) * time.Millisecond
		}
	}
	if v := getEnv("HL_MARKET_SLIPPAGE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && f < 1 {
			cfg.Venue.MarketSlippage = f
		}
	}

	if v := getEnv("MCP_TRANSPORT"); v != "" {
		cfg.Server.Transport = strings.ToLower(v)
	}
	if v := getEnv("FASTMCP_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := getEnv("FASTMCP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := getEnv("FASTMCP_STREAMABLE_HTTP_PATH"); v != "" {
		cfg.Server.StreamableHTTPPath = v
	}
	if v := getEnv("FASTMCP_MOUNT_PATH"); v != "" {
		cfg.Server.MountPath = v
	}
	if v := getEnv("MCP_AUTH_HEADER_NAME"); v != "" {
		cfg.Server.AuthHeaderName = v
	}
	if v := getEnv("MCP_AUTH_HEADER_VALUE"); v != "" {
		cfg.Server.AuthHeaderValue = v
	}
	if v := getEnv("MCP_ALLOWED_ORIGINS"); v != "" {
		// Example: "http://localhost:3000,https://agent.example"
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Server.AllowedOrigins = origins
	}

	if v := getEnv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := getEnv("LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}

// Validate checks the settings every transport needs before the venue
// client can be built.
func (c Config) Validate() error {
	if c.Venue.AccountAddress == "" {
		return fmt.Errorf("missing required environment variable 'HL_ACCOUNT_ADDRESS'")
	}
	if !common.IsHexAddress(c.Venue.AccountAddress) {
		return fmt.Errorf("HL_ACCOUNT_ADDRESS %q is not a hex address", c.Venue.AccountAddress)
	}
	if c.Venue.SecretKey == "" {
		return fmt.Errorf("missing required environment variable 'HL_SECRET_KEY'")
	}
	if c.Venue.VaultAddress != "" && !common.IsHexAddress(c.Venue.VaultAddress) {
		return fmt.Errorf("HL_VAULT_ADDRESS %q is not a hex address", c.Venue.VaultAddress)
	}
	if _, err := ResolveBaseURL(c.Venue.Network, c.Venue.APIBaseURL); err != nil {
		return err
	}
	switch c.Server.Transport {
	case TransportStdio, TransportSSE, TransportStreamableHTTP, TransportWebsocket:
	default:
		return fmt.Errorf("unsupported transport %q (choose %s, %s, %s or %s)",
			c.Server.Transport, TransportStdio, TransportSSE, TransportStreamableHTTP, TransportWebsocket)
	}
	if !strings.HasPrefix(c.Server.MountPath, "/") {
		return fmt.Errorf("mount path %q must start with '/'", c.Server.MountPath)
	}
	return nil
}

// IsMainnet reports whether signatures must use the mainnet agent source.
func (v Venue) IsMainnet() bool {
	if v.APIBaseURL != "" {
		return strings.TrimRight(v.APIBaseURL, "/") == MainnetAPIURL
	}
	n := strings.ToLower(v.Network)
	return n == "mainnet" || n == "main"
}

// ResolveBaseURL maps a network name to its API endpoint; a non-empty
// override always wins.
func ResolveBaseURL(network, override string) (string, error) {
	if override != "" {
		return override, nil
	}
	switch strings.ToLower(strings.TrimSpace(network)) {
	case "mainnet", "main":
		return MainnetAPIURL, nil
	case "testnet", "test":
		return TestnetAPIURL, nil
	case "local", "localhost":
		return LocalAPIURL, nil
	}
	return "", fmt.Errorf("unsupported HL_NETWORK %q; set HL_API_BASE_URL to a custom endpoint if needed", network)
}

// getEnv returns the cleaned environment value, "" when unset or blank.
func getEnv(key string) string {
	return cleanValue(os.Getenv(key))
}

// cleanValue trims whitespace and drops an inline "# comment".
func cleanValue(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if i := strings.Index(cleaned, "#"); i >= 0 {
		cleaned = strings.TrimSpace(cleaned[:i])
	}
	return cleaned
}
