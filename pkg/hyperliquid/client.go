// Package hyperliquid is the venue connector: a resty-backed client for the
// Hyperliquid /info and /exchange endpoints that signs L1 actions locally.
package hyperliquid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/uhyunpark/hyperlicked-mcp/pkg/crypto"
	"github.com/uhyunpark/hyperlicked-mcp/pkg/util"
	"github.com/uhyunpark/hyperlicked-mcp/pkg/venue"
)

const (
	infoPath     = "/info"
	exchangePath = "/exchange"

	defaultTimeout  = 15 * time.Second
	defaultSlippage = 0.05
	userAgent       = "hyperlicked-mcp"
)

// APIError is a non-2xx answer from the venue.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hyperliquid api error: status %d: %s", e.Status, e.Body)
}

type Options struct {
	BaseURL string
	Timeout time.Duration
	// Signer is required only for /exchange calls.
	Signer    *crypto.Signer
	Vault     *common.Address
	IsMainnet bool
	// Slippage is applied to the mid when pricing market orders.
	Slippage float64
	Clock    util.Clock
	Logger   *zap.SugaredLogger
}

// Client is safe for concurrent use.
type Client struct {
	http      *resty.Client
	signer    *crypto.Signer
	eip712    *crypto.EIP712Signer
	vault     *common.Address
	isMainnet bool
	slippage  float64
	clock     util.Clock
	logger    *zap.SugaredLogger
	universe  *Universe
}

var (
	_ venue.Venue        = (*Client)(nil)
	_ venue.MarkPricer   = (*Client)(nil)
	_ venue.MetaProvider = (*Client)(nil)
)

func NewClient(opts Options) *Client {
	host := strings.TrimRight(opts.BaseURL, "/")
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Slippage <= 0 {
		opts.Slippage = defaultSlippage
	}
	if opts.Clock == nil {
		opts.Clock = util.RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}

	// No retries: an order must never be submitted twice.
	httpClient := resty.New().
		SetBaseURL(host).
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", userAgent)

	return &Client{
		http:      httpClient,
		signer:    opts.Signer,
		eip712:    crypto.NewEIP712Signer(crypto.ExchangeDomain()),
		vault:     opts.Vault,
		isMainnet: opts.IsMainnet,
		slippage:  opts.Slippage,
		clock:     opts.Clock,
		logger:    opts.Logger,
		universe:  NewUniverse(),
	}
}

// post sends body as JSON and returns the raw response body.
func (c *Client) post(ctx context.Context, path string, body any) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(path)
	if err != nil {
		return nil, errors.Wrapf(err, "POST %s", path)
	}
	if !resp.IsSuccess() {
		return nil, &APIError{Status: resp.StatusCode(), Body: strings.TrimSpace(resp.String())}
	}
	return resp.Body(), nil
}

// info runs an /info query and decodes the answer into out. Numbers are kept
// as json.Number so prices keep their exact venue spelling.
func (c *Client) info(ctx context.Context, req any, out any) error {
	raw, err := c.post(ctx, infoPath, req)
	if err != nil {
		return err
	}
	return decode(raw, out)
}

func decode(raw []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}
