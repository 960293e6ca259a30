package solana

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	sol "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"golang.org/x/time/rate"
)

// Well-known cluster endpoints.
const (
	DevnetRPC      = "https://api.devnet.solana.com"
	DevnetWS       = "wss://api.devnet.solana.com"
	MainnetBetaRPC = "https://api.mainnet-beta.solana.com"
)

// Commitment is the confirmation level requested from the node.
type Commitment = rpc.CommitmentType

const (
	CommitmentProcessed = rpc.CommitmentProcessed
	CommitmentConfirmed = rpc.CommitmentConfirmed
	CommitmentFinalized = rpc.CommitmentFinalized
)

// reached reports whether a signature at status meets the wanted commitment.
func reached(status rpc.ConfirmationStatusType, want Commitment) bool {
	rank := map[string]int{
		string(rpc.ConfirmationStatusProcessed): 1,
		string(rpc.ConfirmationStatusConfirmed): 2,
		string(rpc.ConfirmationStatusFinalized): 3,
	}
	got := rank[string(status)]
	return got > 0 && got >= rank[string(want)]
}

// AccountInfo is the decoded value of getAccountInfo.
type AccountInfo struct {
	Lamports   uint64
	Owner      PublicKey
	Data       []byte
	Executable bool
}

// limitedClient waits on a rate limiter before every JSON-RPC call.
type limitedClient struct {
	jsonrpc.RPCClient
	limiter *rate.Limiter
}

func (c *limitedClient) CallForInto(ctx context.Context, out interface{}, method string, params []interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	log.Debug("rpc call", "method", method)
	return c.RPCClient.CallForInto(ctx, out, method, params)
}

// Client talks to a Solana node.
type Client struct {
	rpc          *rpc.Client
	wsEndpoint   string
	httpClient   *http.Client
	limiter      *rate.Limiter
	commitment   Commitment
	pollInterval time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests. Use it to install
// transport middleware.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithWebsocket enables websocket confirmation against endpoint.
func WithWebsocket(endpoint string) Option {
	return func(c *Client) { c.wsEndpoint = endpoint }
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithCommitment sets the commitment used for reads and confirmation.
func WithCommitment(commitment Commitment) Option {
	return func(c *Client) { c.commitment = commitment }
}

// WithPollInterval sets how often ConfirmTransaction polls when no websocket
// is available.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}

// NewClient returns a client for the given HTTP endpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		commitment:   CommitmentConfirmed,
		pollInterval: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.rpc = rpc.NewWithCustomRPCClient(&limitedClient{
		RPCClient: jsonrpc.NewClientWithOpts(endpoint, &jsonrpc.RPCClientOpts{
			HTTPClient: c.httpClient,
		}),
		limiter: c.limiter,
	})
	return c
}

// GetAccountInfo returns the account at pk, or nil when it does not exist.
func (c *Client) GetAccountInfo(ctx context.Context, pk PublicKey) (*AccountInfo, error) {
	res, err := c.rpc.GetAccountInfoWithOpts(ctx, pk, &rpc.GetAccountInfoOpts{
		Encoding:   sol.EncodingBase64,
		Commitment: c.commitment,
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getAccountInfo: %w", err)
	}
	if res == nil || res.Value == nil {
		return nil, nil
	}

	info := &AccountInfo{
		Lamports:   res.Value.Lamports,
		Owner:      res.Value.Owner,
		Executable: res.Value.Executable,
	}
	if res.Value.Data != nil {
		info.Data = res.Value.Data.GetBinary()
	}
	return info, nil
}

// GetLatestBlockhash returns a recent blockhash to attach to a transaction.
func (c *Client) GetLatestBlockhash(ctx context.Context) (Hash, error) {
	res, err := c.rpc.GetLatestBlockhash(ctx, c.commitment)
	if err != nil {
		return Hash{}, fmt.Errorf("getLatestBlockhash: %w", err)
	}
	if res == nil || res.Value == nil {
		return Hash{}, errors.New("getLatestBlockhash: empty result")
	}
	return res.Value.Blockhash, nil
}

// SendRawTransaction submits a signed, serialised transaction and returns
// its signature.
func (c *Client) SendRawTransaction(ctx context.Context, raw []byte) (Signature, error) {
	sig, err := c.rpc.SendRawTransactionWithOpts(ctx, raw, rpc.TransactionOpts{
		PreflightCommitment: c.commitment,
	})
	if err != nil {
		return Signature{}, fmt.Errorf("sendTransaction: %w", err)
	}
	return sig, nil
}

// ConfirmTransaction blocks until sig reaches the client's commitment, the
// transaction fails, or ctx ends. It subscribes over websocket when one is
// configured and falls back to polling.
func (c *Client) ConfirmTransaction(ctx context.Context, sig Signature) error {
	if c.wsEndpoint != "" {
		err := waitSignature(ctx, c.wsEndpoint, sig, c.commitment)
		if err == nil || errors.Is(err, ErrTransactionFailed) || ctx.Err() != nil {
			return err
		}
		log.Warn("websocket confirmation unavailable, polling", "error", err)
	}
	return c.pollSignature(ctx, sig)
}

func (c *Client) pollSignature(ctx context.Context, sig Signature) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		res, err := c.rpc.GetSignatureStatuses(ctx, true, sig)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			return fmt.Errorf("getSignatureStatuses: %w", err)
		}
		if res != nil && len(res.Value) > 0 && res.Value[0] != nil {
			status := res.Value[0]
			if status.Err != nil {
				return fmt.Errorf("%w: %v", ErrTransactionFailed, status.Err)
			}
			if reached(status.ConfirmationStatus, c.commitment) {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
