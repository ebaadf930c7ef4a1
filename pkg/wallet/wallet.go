// Package wallet implements a local keypair wallet stored in the Solana CLI
// keypair file format (a JSON array of the 64 private key bytes).
package wallet

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/daughters-of-aether/arena-client/pkg/solana"
)

const (
	defaultConfigDirName = ".config"
	arenaConfigDirName   = "arena"
	keypairFileName      = "id.json"
)

var (
	ErrRejected          = errors.New("transaction rejected by wallet owner")
	ErrKeypairNotFound   = errors.New("keypair file not found")
	ErrKeypairExists     = errors.New("keypair file already exists")
	ErrInvalidKeypair    = errors.New("invalid keypair file")
	ErrNotRequiredSigner = errors.New("wallet is not a required signer")
	ErrNoBalanceProvider = errors.New("wallet has no balance provider")
)

// Approver decides whether the wallet owner allows a transaction to be signed.
type Approver func(ctx context.Context, tx *solana.Transaction) (bool, error)

// BalanceReader reads an account balance in lamports. solana.Client
// satisfies it.
type BalanceReader interface {
	GetBalance(ctx context.Context, account ed25519.PublicKey) (uint64, error)
}

// AutoApprove signs every transaction without asking.
func AutoApprove(context.Context, *solana.Transaction) (bool, error) {
	return true, nil
}

type Option func(*Wallet)

// WithApprover asks approve before every signature.
func WithApprover(approve Approver) Option {
	return func(w *Wallet) {
		w.approve = approve
	}
}

// WithBalanceReader enables Balance.
func WithBalanceReader(reader BalanceReader) Option {
	return func(w *Wallet) {
		w.balances = reader
	}
}

// Wallet holds a single ed25519 keypair.
type Wallet struct {
	log *logrus.Entry

	key      ed25519.PrivateKey
	approve  Approver
	balances BalanceReader
}

// New wraps an existing private key.
func New(key ed25519.PrivateKey, opts ...Option) (*Wallet, error) {
	if len(key) != ed25519.PrivateKeySize {
		return nil, errors.Wrapf(ErrInvalidKeypair, "expected %d key bytes, got %d", ed25519.PrivateKeySize, len(key))
	}

	w := &Wallet{
		log:     logrus.StandardLogger().WithField("type", "wallet"),
		key:     key,
		approve: AutoApprove,
	}
	for _, o := range opts {
		o(w)
	}
	return w, nil
}

// Generate creates a wallet with a fresh random key.
func Generate(opts ...Option) (*Wallet, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "error generating keypair")
	}
	return New(key, opts...)
}

// DefaultPath returns ~/.config/arena/id.json.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "error getting user home directory")
	}
	return filepath.Join(homeDir, defaultConfigDirName, arenaConfigDirName, keypairFileName), nil
}

// Load reads a keypair file.
func Load(path string, opts ...Option) (*Wallet, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(ErrKeypairNotFound, path)
	} else if err != nil {
		return nil, errors.Wrap(err, "error reading keypair file")
	}

	var raw []int
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(ErrInvalidKeypair, "%s: %v", path, err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, errors.Wrapf(ErrInvalidKeypair, "%s: expected %d bytes, got %d", path, ed25519.PrivateKeySize, len(raw))
	}

	key := make(ed25519.PrivateKey, ed25519.PrivateKeySize)
	for i, b := range raw {
		if b < 0 || b > 255 {
			return nil, errors.Wrapf(ErrInvalidKeypair, "%s: byte %d out of range", path, i)
		}
		key[i] = byte(b)
	}

	// The trailing 32 bytes must be the public half of the seed.
	derived := ed25519.NewKeyFromSeed(key.Seed())
	if !derived.Equal(key) {
		return nil, errors.Wrapf(ErrInvalidKeypair, "%s: public key does not match seed", path)
	}

	return New(key, opts...)
}

// Create generates a new wallet and writes it to path. An existing file is
// never overwritten.
func Create(path string, opts ...Option) (*Wallet, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, errors.Wrap(ErrKeypairExists, path)
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "error checking keypair file")
	}

	w, err := Generate(opts...)
	if err != nil {
		return nil, err
	}
	if err := w.Save(path); err != nil {
		return nil, err
	}
	return w, nil
}

// LoadOrCreate loads the keypair at path, creating it when missing.
func LoadOrCreate(path string, opts ...Option) (w *Wallet, created bool, err error) {
	w, err = Load(path, opts...)
	if err == nil {
		return w, false, nil
	} else if !errors.Is(err, ErrKeypairNotFound) {
		return nil, false, err
	}

	w, err = Create(path, opts...)
	return w, err == nil, err
}

// Save writes the keypair to path with owner-only permissions.
func (w *Wallet) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return errors.Wrap(err, "error creating keypair directory")
	}

	raw := make([]int, len(w.key))
	for i, b := range w.key {
		raw[i] = int(b)
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return errors.Wrap(err, "error marshalling keypair")
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.Wrap(err, "error writing keypair file")
	}

	w.log.WithFields(logrus.Fields{
		"method":  "Save",
		"path":    path,
		"address": w.PublicKey(),
	}).Debug("keypair saved")
	return nil
}

// PublicKey returns the base58 wallet address.
func (w *Wallet) PublicKey() string {
	return base58.Encode(w.Key())
}

func (w *Wallet) Key() ed25519.PublicKey {
	return w.key.Public().(ed25519.PublicKey)
}

// SignTransaction adds the wallet's signature to tx after the approver
// allows it. tx is signed in place and returned.
func (w *Wallet) SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	log := w.log.WithFields(logrus.Fields{
		"method":  "SignTransaction",
		"address": w.PublicKey(),
	})

	if !w.isSigner(tx) {
		return nil, ErrNotRequiredSigner
	}

	approved, err := w.approve(ctx, tx)
	if err != nil {
		return nil, errors.Wrap(err, "error requesting approval")
	}
	if !approved {
		log.Info("transaction rejected")
		return nil, ErrRejected
	}

	if err := tx.Sign(w.key); err != nil {
		return nil, errors.Wrap(err, "error signing transaction")
	}

	log.Debug("transaction signed")
	return tx, nil
}

func (w *Wallet) isSigner(tx *solana.Transaction) bool {
	pub := w.Key()
	for _, signer := range tx.Signers() {
		if pub.Equal(signer) {
			return true
		}
	}
	return false
}

// Balance returns the wallet balance in lamports.
func (w *Wallet) Balance(ctx context.Context) (uint64, error) {
	if w.balances == nil {
		return 0, ErrNoBalanceProvider
	}

	balance, err := w.balances.GetBalance(ctx, w.Key())
	if err != nil {
		return 0, errors.Wrap(err, "error getting balance")
	}
	return balance, nil
}
