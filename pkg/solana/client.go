package solana

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/ybbus/jsonrpc"

	"github.com/daughters-of-aether/arena-client/pkg/rate"
	"github.com/daughters-of-aether/arena-client/pkg/retry"
	"github.com/daughters-of-aether/arena-client/pkg/retry/backoff"
)

const (
	// A slot is 64 ticks at 160 ticks per second.
	slotDuration = 64 * time.Second / 160

	// PollRate is the signature status poll interval, one slot.
	PollRate = slotDuration

	// LamportsPerSol is the number of lamports in one SOL.
	LamportsPerSol = 1_000_000_000

	rpcNodeUnhealthyCode = -32005
	invalidParamCode     = -32602

	defaultRequestTimeout = 15 * time.Second

	// Cached blockhashes are reused for 1.6s to 3.6s.
	blockhashReuseBase   = 1600 * time.Millisecond
	blockhashReuseJitter = 2 * time.Second
)

var (
	ErrNoAccountInfo       = errors.New("no account info")
	ErrSignatureNotFound   = errors.New("signature not found")
	ErrNoBalance           = errors.New("no balance")
	ErrConfirmationTimeout = errors.New("transaction was not confirmed before the deadline")
)

// AccountInfo is the raw state of an on-chain account.
type AccountInfo struct {
	Data       []byte
	Owner      ed25519.PublicKey
	Lamports   uint64
	Executable bool
}

// Client is the subset of the Solana JSON RPC API the arena uses.
type Client interface {
	GetAccountInfo(context.Context, ed25519.PublicKey, Commitment) (AccountInfo, error)
	GetBalance(context.Context, ed25519.PublicKey) (uint64, error)
	GetLatestBlockhash(context.Context) (Blockhash, error)
	GetSignatureStatuses(context.Context, []Signature) ([]*SignatureStatus, error)
	RequestAirdrop(context.Context, ed25519.PublicKey, uint64, Commitment) (Signature, error)

	// SendRawTransaction submits a fully signed transaction. It is never
	// retried.
	SendRawTransaction(context.Context, []byte) (Signature, error)

	// ConfirmTransaction polls until commitment is reached, the transaction
	// fails, or ctx is done. Failures surface as *TransactionError and an
	// expired ctx as ErrConfirmationTimeout. Only pending statuses and
	// transient node errors keep the poll going; any other error is returned
	// as is.
	ConfirmTransaction(context.Context, Signature, Commitment) error
}

var (
	errRateLimited  = errors.New("rate limited")
	errServiceError = errors.New("service error")
)

type client struct {
	log     *logrus.Entry
	rpc     jsonrpc.RPCClient
	http    *http.Client
	retrier retry.Retrier
	limiter rate.Limiter

	pollRate            time.Duration
	preflightCommitment Commitment

	cacheMu       sync.RWMutex
	cachedHash    Blockhash
	cachedHashAge time.Time
}

// Option configures a client.
type Option func(*client)

// WithRateLimiter throttles requests per RPC method.
func WithRateLimiter(limiter rate.Limiter) Option {
	return func(c *client) { c.limiter = limiter }
}

// WithPollRate overrides PollRate.
func WithPollRate(d time.Duration) Option {
	return func(c *client) { c.pollRate = d }
}

// WithPreflightCommitment sets the commitment submitted transactions are
// simulated at.
func WithPreflightCommitment(commitment Commitment) Option {
	return func(c *client) { c.preflightCommitment = commitment }
}

// WithHTTPClient replaces the default HTTP client and its 15s request timeout.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *client) { c.http = httpClient }
}

// New returns a client for the RPC node at endpoint.
func New(endpoint string, opts ...Option) Client {
	c := &client{
		log:                 logrus.StandardLogger().WithField("type", "solana/client"),
		limiter:             &rate.NoLimiter{},
		pollRate:            PollRate,
		preflightCommitment: CommitmentConfirmed,
		http:                &http.Client{Timeout: defaultRequestTimeout},
		retrier: retry.NewRetrier(
			retry.RetriableErrors(errRateLimited, errServiceError),
			retry.Limit(3),
			retry.BackoffWithJitter(backoff.BinaryExponential(time.Second), 10*time.Second, 0.1),
		),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.rpc = jsonrpc.NewClientWithOpts(endpoint, &jsonrpc.RPCClientOpts{HTTPClient: c.http})
	return c
}

// call performs an idempotent read, retrying transient failures.
func (c *client) call(ctx context.Context, out interface{}, method string, params ...interface{}) error {
	_, err := c.retrier.Retry(ctx, func() error {
		return c.callOnce(ctx, out, method, params...)
	})
	return err
}

type rpcResult struct {
	resp *jsonrpc.RPCResponse
	err  error
}

// callOnce performs a single request. The underlying RPC client takes no
// context, so the request runs in its own goroutine and is abandoned when ctx
// is done. out is only written once the response is in.
func (c *client) callOnce(ctx context.Context, out interface{}, method string, params ...interface{}) error {
	if err := c.limiter.Wait(ctx, method); err != nil {
		return err
	}

	done := make(chan rpcResult, 1)
	go func() {
		resp, err := c.rpc.Call(method, params...)
		done <- rpcResult{resp: resp, err: err}
	}()

	var result rpcResult
	select {
	case <-ctx.Done():
		return ctx.Err()
	case result = <-done:
	}

	switch {
	case result.err != nil:
		return c.classify(method, result.err)
	case result.resp == nil:
		return errors.Errorf("%s: empty response", method)
	case result.resp.Error != nil:
		return c.classify(method, result.resp.Error)
	}
	return result.resp.GetObject(out)
}

// classify maps throttling and node failures onto the retriable sentinels.
// Any other error is returned unchanged.
func (c *client) classify(method string, err error) error {
	var code int
	switch e := err.(type) {
	case *jsonrpc.HTTPError:
		code = e.Code
	case *jsonrpc.RPCError:
		if e.Code == rpcNodeUnhealthyCode {
			return errServiceError
		}
		code = e.Code
	default:
		return err
	}

	switch {
	case code == http.StatusTooManyRequests:
		c.log.WithField("method", method).Warn("rate limited")
		return errRateLimited
	case code >= http.StatusInternalServerError:
		return errServiceError
	}
	return err
}

func (c *client) GetLatestBlockhash(ctx context.Context) (Blockhash, error) {
	maxAge := blockhashReuseBase + time.Duration(rand.Int63n(int64(blockhashReuseJitter)))

	c.cacheMu.RLock()
	hash, age := c.cachedHash, time.Since(c.cachedHashAge)
	c.cacheMu.RUnlock()

	if hash != (Blockhash{}) && age < maxAge {
		return hash, nil
	}

	var resp struct {
		Value struct {
			Blockhash string `json:"blockhash"`
		} `json:"value"`
	}
	if err := c.call(ctx, &resp, "getLatestBlockhash", []interface{}{CommitmentConfirmed}); err != nil {
		return Blockhash{}, errors.Wrap(err, "getLatestBlockhash")
	}

	if err := decodeFixed(hash[:], resp.Value.Blockhash); err != nil {
		return Blockhash{}, errors.Wrap(err, "getLatestBlockhash: invalid blockhash")
	}

	c.cacheMu.Lock()
	c.cachedHash, c.cachedHashAge = hash, time.Now()
	c.cacheMu.Unlock()

	return hash, nil
}

// clearBlockhash drops the cached blockhash so the next GetLatestBlockhash
// goes to the node.
func (c *client) clearBlockhash() {
	c.cacheMu.Lock()
	c.cachedHash, c.cachedHashAge = Blockhash{}, time.Time{}
	c.cacheMu.Unlock()
}

func (c *client) GetBalance(ctx context.Context, account ed25519.PublicKey) (uint64, error) {
	var resp struct {
		Value *uint64 `json:"value"`
	}

	err := c.call(ctx, &resp, "getBalance", base58.Encode(account), CommitmentProcessed)
	if rpcErr, ok := err.(*jsonrpc.RPCError); ok && rpcErr.Code == invalidParamCode {
		return 0, ErrNoBalance
	} else if err != nil {
		return 0, errors.Wrap(err, "getBalance")
	}

	if resp.Value == nil {
		return 0, errors.New("getBalance: missing value in response")
	}
	return *resp.Value, nil
}

func (c *client) SendRawTransaction(ctx context.Context, raw []byte) (Signature, error) {
	config := map[string]interface{}{
		"encoding":            "base64",
		"skipPreflight":       false,
		"preflightCommitment": c.preflightCommitment.Commitment,
	}

	var encoded string
	err := c.callOnce(ctx, &encoded, "sendTransaction", base64.StdEncoding.EncodeToString(raw), config)
	if err != nil {
		rpcErr, ok := err.(*jsonrpc.RPCError)
		if !ok {
			return Signature{}, errors.Wrap(err, "sendTransaction")
		}

		txErr, parseErr := ParseRPCError(rpcErr)
		if parseErr != nil || txErr == nil {
			return Signature{}, errors.Wrap(err, "sendTransaction rejected")
		}

		c.log.WithFields(logrus.Fields{
			"method": "SendRawTransaction",
			"error":  txErr.Error(),
		}).Debug("transaction rejected by preflight")

		if txErr.ErrorKey() == TransactionErrorBlockhashNotFound {
			c.clearBlockhash()
		}

		return Signature{}, errors.Wrapf(txErr, "sendTransaction rejected: %s", rpcErr.Message)
	}

	var sig Signature
	if err := decodeFixed(sig[:], encoded); err != nil {
		return Signature{}, errors.Wrap(err, "sendTransaction: invalid signature")
	}
	return sig, nil
}

func (c *client) GetAccountInfo(ctx context.Context, account ed25519.PublicKey, commitment Commitment) (AccountInfo, error) {
	var resp struct {
		Value *struct {
			Lamports   uint64   `json:"lamports"`
			Owner      string   `json:"owner"`
			Data       []string `json:"data"`
			Executable bool     `json:"executable"`
		} `json:"value"`
	}

	config := map[string]interface{}{
		"commitment": commitment.Commitment,
		"encoding":   "base64",
	}
	if err := c.call(ctx, &resp, "getAccountInfo", base58.Encode(account), config); err != nil {
		return AccountInfo{}, errors.Wrap(err, "getAccountInfo")
	}

	v := resp.Value
	if v == nil {
		return AccountInfo{}, ErrNoAccountInfo
	}

	info := AccountInfo{Lamports: v.Lamports, Executable: v.Executable}

	owner, err := base58.Decode(v.Owner)
	if err != nil || len(owner) != ed25519.PublicKeySize {
		return AccountInfo{}, errors.Errorf("getAccountInfo: invalid owner %q", v.Owner)
	}
	info.Owner = owner

	// Data is [payload, encoding].
	if len(v.Data) > 0 {
		if info.Data, err = base64.StdEncoding.DecodeString(v.Data[0]); err != nil {
			return AccountInfo{}, errors.Wrap(err, "getAccountInfo: invalid data")
		}
	}

	return info, nil
}

func (c *client) RequestAirdrop(ctx context.Context, account ed25519.PublicKey, lamports uint64, commitment Commitment) (Signature, error) {
	var encoded string
	if err := c.call(ctx, &encoded, "requestAirdrop", base58.Encode(account), lamports, commitment); err != nil {
		return Signature{}, errors.Wrap(err, "requestAirdrop")
	}

	var sig Signature
	if err := decodeFixed(sig[:], encoded); err != nil {
		return Signature{}, errors.Wrap(err, "requestAirdrop: invalid signature")
	}
	if sig.IsZero() {
		return Signature{}, errors.New("requestAirdrop: empty signature")
	}
	return sig, nil
}

func (c *client) ConfirmTransaction(ctx context.Context, sig Signature, commitment Commitment) error {
	log := c.log.WithFields(logrus.Fields{
		"method":     "ConfirmTransaction",
		"signature":  sig.String(),
		"commitment": commitment.Commitment,
	})

	errPending := errors.New("commitment not reached")

	var failed *TransactionError
	attempts, err := retry.Retry(ctx, func() error {
		statuses, err := c.GetSignatureStatuses(ctx, []Signature{sig})
		if err != nil {
			return err
		}

		switch status := statuses[0]; {
		case status == nil:
			return ErrSignatureNotFound
		case status.ErrorResult != nil:
			failed = status.ErrorResult
			return nil
		case status.Reached(commitment):
			return nil
		default:
			return errPending
		}
	},
		retry.RetriableErrors(errPending, ErrSignatureNotFound, errRateLimited, errServiceError),
		retry.Backoff(backoff.Constant(c.pollRate), c.pollRate),
	)

	log = log.WithField("attempts", attempts)

	switch {
	case failed != nil:
		log.WithError(failed).Debug("transaction failed")
		return failed
	case err != nil && ctx.Err() != nil:
		log.WithError(err).Debug("confirmation deadline reached")
		return errors.Wrapf(ErrConfirmationTimeout, "last status: %v", err)
	default:
		return err
	}
}

func (c *client) GetSignatureStatuses(ctx context.Context, sigs []Signature) ([]*SignatureStatus, error) {
	encoded := make([]string, 0, len(sigs))
	for _, sig := range sigs {
		encoded = append(encoded, sig.String())
	}

	var resp struct {
		Value []*struct {
			Slot               uint64      `json:"slot"`
			Confirmations      *int        `json:"confirmations"`
			ConfirmationStatus string      `json:"confirmationStatus"`
			Err                interface{} `json:"err"`
		} `json:"value"`
	}

	config := map[string]interface{}{"searchTransactionHistory": true}
	if err := c.call(ctx, &resp, "getSignatureStatuses", encoded, config); err != nil {
		return nil, errors.Wrap(err, "getSignatureStatuses")
	}

	statuses := make([]*SignatureStatus, len(sigs))
	for i, v := range resp.Value {
		if v == nil || i >= len(statuses) {
			continue
		}

		txErr, err := ParseTransactionError(v.Err)
		if err != nil {
			return nil, errors.Wrapf(err, "getSignatureStatuses: status %d", i)
		}

		statuses[i] = &SignatureStatus{
			Slot:               v.Slot,
			ErrorResult:        txErr,
			Confirmations:      v.Confirmations,
			ConfirmationStatus: v.ConfirmationStatus,
		}
	}

	return statuses, nil
}

// decodeFixed decodes a base58 string into dst, which it must fill exactly.
func decodeFixed(dst []byte, encoded string) error {
	b, err := base58.Decode(encoded)
	if err != nil {
		return err
	}
	if len(b) != len(dst) {
		return errors.Errorf("expected %d bytes, got %d", len(dst), len(b))
	}
	copy(dst, b)
	return nil
}
