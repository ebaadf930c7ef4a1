// Package battle creates staked battles on the arena program.
package battle

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/daughters-of-aether/arena-client/pkg/arena"
	"github.com/daughters-of-aether/arena-client/pkg/battle/history"
	"github.com/daughters-of-aether/arena-client/pkg/metrics"
	"github.com/daughters-of-aether/arena-client/pkg/pointer"
	"github.com/daughters-of-aether/arena-client/pkg/solana"
	"github.com/daughters-of-aether/arena-client/pkg/stake"
)

const (
	metricsStructName = "battle.creator"

	battleCreationEventName    = "BattleCreation"
	battleCreationDurationName = "BattleCreation.Duration"
	battleCreationFailureName  = "BattleCreation.Failure"
)

// Network is the ledger RPC surface used to create a battle. solana.Client
// satisfies it.
type Network interface {
	GetLatestBlockhash(ctx context.Context) (solana.Blockhash, error)
	SendRawTransaction(ctx context.Context, raw []byte) (solana.Signature, error)
	ConfirmTransaction(ctx context.Context, sig solana.Signature, commitment solana.Commitment) error
}

// Wallet is a player's wallet, identified by its base58 public key.
//
// To create battles a wallet must also implement Signer. Wallets that
// implement BalanceProvider have their balance checked against the stake.
type Wallet interface {
	PublicKey() string
}

// Signer adds the wallet's signature to a transaction.
type Signer interface {
	SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error)
}

// BalanceProvider reports a wallet's balance in lamports.
type BalanceProvider interface {
	Balance(ctx context.Context) (uint64, error)
}

// StakeValidator checks a stake against policy. A nil balance means the
// balance is unknown.
type StakeValidator interface {
	Validate(ctx context.Context, stakeLamports int64, balanceLamports *uint64) *stake.Validation
}

// Notifier surfaces user-facing acknowledgements.
type Notifier interface {
	Success(ctx context.Context, message string) string
	Error(ctx context.Context, message string) string
}

// KeyGenerator creates the keypair identifying a new battle account.
type KeyGenerator func() (ed25519.PublicKey, ed25519.PrivateKey, error)

// Explorer returns a link to view a transaction signature.
type Explorer func(signature string) string

// Result is the outcome of a CreateBattle call. Err is nil on success.
type Result struct {
	Signature     string
	BattleAccount string
	Err           error
}

// Success reports whether the battle was created and confirmed.
func (r *Result) Success() bool {
	return r.Err == nil
}

// Error returns the failure reason, or an empty string on success.
func (r *Result) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Option configures a Creator.
type Option func(*Creator)

// WithStakeValidator replaces the env-configured stake validator.
func WithStakeValidator(validator StakeValidator) Option {
	return func(c *Creator) {
		c.validator = validator
	}
}

// WithNotifier sends success and failure toasts to notifier.
func WithNotifier(notifier Notifier) Option {
	return func(c *Creator) {
		c.notifier = notifier
	}
}

// WithHistory records every attempt, successful or not, in store.
func WithHistory(store history.Store) Option {
	return func(c *Creator) {
		c.history = store
	}
}

// WithKeyGenerator sets the source of battle account keypairs.
func WithKeyGenerator(generate KeyGenerator) Option {
	return func(c *Creator) {
		c.generateKey = generate
	}
}

// WithCommitment overrides the configured confirmation commitment.
func WithCommitment(commitment solana.Commitment) Option {
	return func(c *Creator) {
		c.commitment = &commitment
	}
}

// WithConfirmationTimeout overrides the configured confirmation deadline.
func WithConfirmationTimeout(timeout time.Duration) Option {
	return func(c *Creator) {
		c.confirmationTimeout = timeout
	}
}

// WithBattleDuration overrides arena.BattleDuration.
func WithBattleDuration(duration time.Duration) Option {
	return func(c *Creator) {
		c.duration = duration
	}
}

// WithStatusListener calls listener with every state change.
func WithStatusListener(listener StatusListener) Option {
	return func(c *Creator) {
		c.listeners = append(c.listeners, listener)
	}
}

// WithExplorer logs an explorer link for each created battle.
func WithExplorer(explorer Explorer) Option {
	return func(c *Creator) {
		c.explorer = explorer
	}
}

// WithNetworkLabel sets the network name stored with each attempt.
func WithNetworkLabel(label string) Option {
	return func(c *Creator) {
		c.network = label
	}
}

// Creator drives battle creation attempts and exposes their state.
//
// A Creator runs one attempt at a time. It does not prevent concurrent
// CreateBattle calls; callers should check State().IsCreatingBattle first.
type Creator struct {
	log  *logrus.Entry
	conf *conf

	rpc     Network
	program ed25519.PublicKey

	validator   StakeValidator
	notifier    Notifier
	history     history.Store
	generateKey KeyGenerator
	explorer    Explorer
	listeners   []StatusListener

	commitment          *solana.Commitment
	confirmationTimeout time.Duration
	duration            time.Duration
	network             string

	stateMu sync.Mutex
	state   State
}

// NewCreator returns a Creator submitting create_battle instructions to
// program over rpc.
func NewCreator(rpc Network, program ed25519.PublicKey, configProvider ConfigProvider, opts ...Option) *Creator {
	c := &Creator{
		log:         logrus.StandardLogger().WithField("type", "battle/creator"),
		conf:        configProvider(),
		rpc:         rpc,
		program:     program,
		validator:   stake.NewValidator(stake.WithEnvConfigs()),
		notifier:    noopNotifier{},
		generateKey: generateKey,
		duration:    arena.BattleDuration,
	}

	for _, o := range opts {
		o(c)
	}

	return c
}

// State returns a snapshot of the current state.
func (c *Creator) State() State {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	return c.state
}

// Reset returns an idle Creator to its initial state. It is a no-op while an
// attempt is in flight.
func (c *Creator) Reset() {
	c.update(func(s *State) bool {
		if s.IsCreatingBattle {
			return false
		}
		*s = State{}
		return true
	})
}

// attempt tracks what is known about a single CreateBattle call.
type attempt struct {
	stakeLamports int64
	player        string
	battleAccount string
	signature     string
}

// CreateBattle creates a battle staking stakeLamports from wallet.
//
// Every failure, including an invalid wallet or stake, is returned in the
// Result, recorded in State, and surfaced through the Notifier. No step is
// retried; a new call generates a new battle account.
func (c *Creator) CreateBattle(ctx context.Context, stakeLamports int64, wallet Wallet) *Result {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "CreateBattle")
	defer tracer.End()

	start := time.Now()

	log := c.log.WithFields(logrus.Fields{
		"method": "CreateBattle",
		"stake":  stakeLamports,
	})

	c.update(func(s *State) bool {
		*s = State{
			Status:           StatusPending,
			IsCreatingBattle: true,
		}
		return true
	})

	a := &attempt{stakeLamports: stakeLamports}
	err := c.createBattle(ctx, log, a, wallet)
	metrics.RecordDuration(ctx, battleCreationDurationName, time.Since(start))

	if err != nil {
		tracer.OnError(err)
		return c.fail(ctx, log, a, err)
	}
	return c.succeed(ctx, log, a)
}

func (c *Creator) createBattle(ctx context.Context, log *logrus.Entry, a *attempt, wallet Wallet) error {
	player, signer, err := validateWallet(wallet)
	if err != nil {
		return err
	}
	a.player = base58.Encode(player)
	log = log.WithField("player", a.player)

	balance, err := getBalance(ctx, wallet)
	if err != nil {
		return newFailure(ErrStakeInvalid, errors.Wrap(err, "failed to get wallet balance"))
	}
	if err := c.validator.Validate(ctx, a.stakeLamports, balance).Err(); err != nil {
		return newFailure(ErrStakeInvalid, err)
	}

	battlePub, battleKey, err := c.generateKey()
	if err != nil {
		return errors.Wrap(err, "failed to generate battle account")
	}
	defer zero(battleKey)

	a.battleAccount = base58.Encode(battlePub)
	c.update(func(s *State) bool {
		s.BattleAccount = a.battleAccount
		return true
	})
	log = log.WithField("battle_account", a.battleAccount)
	log.Debug("generated battle account")

	ix, err := arena.CreateBattleInstruction(c.program, battlePub, player, a.stakeLamports, c.duration)
	if err != nil {
		return err
	}

	blockhash, err := c.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return newFailure(ErrNetwork, err)
	}

	tx := solana.NewTransaction(player, ix)
	tx.SetBlockhash(blockhash)

	// The battle account signs because the program initializes it.
	if err := tx.Sign(battleKey); err != nil {
		return errors.Wrap(err, "failed to sign with battle account")
	}
	zero(battleKey)

	log.Debug("requesting wallet signature")

	signed, err := signer.SignTransaction(ctx, &tx)
	if err != nil {
		return newFailure(ErrSigningRejected, err)
	}
	if signed == nil {
		return newFailure(ErrSigningRejected, errors.New("wallet returned no transaction"))
	}

	raw, err := signed.MarshalSigned()
	if errors.Is(err, solana.ErrMissingSignature) || errors.Is(err, solana.ErrInvalidSignature) {
		return newFailure(ErrSigningRejected, err)
	} else if err != nil {
		return newFailure(ErrSubmission, err)
	}

	sig, err := c.rpc.SendRawTransaction(ctx, raw)
	if err != nil {
		return newFailure(ErrSubmission, err)
	}
	a.signature = sig.String()
	log = log.WithField("signature", a.signature)
	log.Debug("transaction submitted, awaiting confirmation")

	confirmCtx, cancel := context.WithTimeout(ctx, c.getConfirmationTimeout(ctx))
	defer cancel()

	err = c.rpc.ConfirmTransaction(confirmCtx, sig, c.getCommitment(ctx))
	if errors.Is(err, solana.ErrConfirmationTimeout) {
		return newFailure(ErrConfirmationTimeout, err)
	} else if err != nil {
		// Usually a *solana.TransactionError from the program.
		return newFailure(ErrConfirmationFailed, err)
	}

	return nil
}

// fail is the single exit point for failed attempts.
func (c *Creator) fail(ctx context.Context, log *logrus.Entry, a *attempt, err error) *Result {
	message := err.Error()

	c.update(func(s *State) bool {
		s.Status = StatusFailed
		s.IsCreatingBattle = false
		s.Error = message
		return true
	})

	log.WithError(err).Warn("battle creation failed")

	c.notifier.Error(ctx, fmt.Sprintf("Battle creation failed: %s", message))

	c.record(ctx, log, a, &history.Record{
		State: history.StateFailed,
		Error: message,
	})

	metrics.RecordEvent(ctx, battleCreationEventName, map[string]interface{}{
		"status": StatusFailed.String(),
		"stake":  a.stakeLamports,
		"error":  message,
	})
	metrics.RecordCount(ctx, battleCreationFailureName, 1)

	return &Result{Err: err}
}

func (c *Creator) succeed(ctx context.Context, log *logrus.Entry, a *attempt) *Result {
	c.update(func(s *State) bool {
		s.Status = StatusSuccess
		s.IsCreatingBattle = false
		s.Signature = a.signature
		return true
	})

	if c.explorer != nil {
		log = log.WithField("explorer", c.explorer(a.signature))
	}
	log.Info("battle created")

	c.notifier.Success(ctx, fmt.Sprintf("Battle created! Stake: %s SOL", formatSol(a.stakeLamports)))

	c.record(ctx, log, a, &history.Record{
		State: history.StateSucceeded,
	})

	metrics.RecordEvent(ctx, battleCreationEventName, map[string]interface{}{
		"status": StatusSuccess.String(),
		"stake":  a.stakeLamports,
	})

	return &Result{
		Signature:     a.signature,
		BattleAccount: a.battleAccount,
	}
}

// record saves the attempt to history. Attempts that never produced a battle
// account are not recorded.
func (c *Creator) record(ctx context.Context, log *logrus.Entry, a *attempt, record *history.Record) {
	if c.history == nil || len(a.battleAccount) == 0 {
		return
	}

	record.BattleAccount = a.battleAccount
	record.Player = a.player
	record.Signature = a.signature
	if a.stakeLamports > 0 {
		record.StakeLamports = uint64(a.stakeLamports)
	}
	record.DurationSeconds = int64(c.duration / time.Second)
	record.Network = c.network

	if err := c.history.Save(ctx, record); err != nil {
		log.WithError(err).Warn("failure saving battle history")
	}
}

// update applies fn to the state and notifies listeners if fn reports a
// change.
func (c *Creator) update(fn func(*State) bool) {
	c.stateMu.Lock()
	changed := fn(&c.state)
	snapshot := c.state
	c.stateMu.Unlock()

	if !changed {
		return
	}
	for _, listener := range c.listeners {
		listener(snapshot)
	}
}

func (c *Creator) getConfirmationTimeout(ctx context.Context) time.Duration {
	if c.confirmationTimeout > 0 {
		return c.confirmationTimeout
	}
	return c.conf.confirmationTimeout.Get(ctx)
}

func (c *Creator) getCommitment(ctx context.Context) solana.Commitment {
	if c.commitment != nil {
		return *c.commitment
	}
	return c.conf.commitment.Get(ctx)
}

func validateWallet(wallet Wallet) (ed25519.PublicKey, Signer, error) {
	if wallet == nil {
		return nil, nil, newFailure(ErrWalletInvalid, errors.New("wallet is missing"))
	}

	encoded := wallet.PublicKey()
	if len(encoded) == 0 {
		return nil, nil, newFailure(ErrWalletInvalid, errors.New("wallet public key is missing"))
	}
	pub, err := base58.Decode(encoded)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return nil, nil, newFailure(ErrWalletInvalid, errors.Errorf("wallet public key %q is not a valid address", encoded))
	}

	signer, ok := wallet.(Signer)
	if !ok {
		return nil, nil, newFailure(ErrWalletInvalid, errors.New("wallet cannot sign transactions"))
	}

	return pub, signer, nil
}

func getBalance(ctx context.Context, wallet Wallet) (*uint64, error) {
	provider, ok := wallet.(BalanceProvider)
	if !ok {
		return nil, nil
	}

	balance, err := provider.Balance(ctx)
	if err != nil {
		return nil, err
	}
	return pointer.Uint64(balance), nil
}

func generateKey() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	return ed25519.GenerateKey(rand.Reader)
}

func zero(key ed25519.PrivateKey) {
	for i := range key {
		key[i] = 0
	}
}

// formatSol renders lamports as SOL without trailing zeros.
func formatSol(lamports int64) string {
	return strconv.FormatFloat(float64(lamports)/solana.LamportsPerSol, 'f', -1, 64)
}

type noopNotifier struct{}

func (noopNotifier) Success(context.Context, string) string { return "" }
func (noopNotifier) Error(context.Context, string) string   { return "" }
