package wallet

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daughters-of-aether/arena-client/pkg/solana"
	"github.com/daughters-of-aether/arena-client/pkg/solana/system"
	"github.com/daughters-of-aether/arena-client/pkg/testutil"
)

type balanceReader struct {
	balances map[string]uint64
	err      error
}

func (r *balanceReader) GetBalance(_ context.Context, account ed25519.PublicKey) (uint64, error) {
	if r.err != nil {
		return 0, r.err
	}
	return r.balances[base58.Encode(account)], nil
}

func newTransaction(t *testing.T, payer ed25519.PublicKey, cosigner ed25519.PrivateKey) solana.Transaction {
	cosignerPub := cosigner.Public().(ed25519.PublicKey)
	tx := solana.NewTransaction(payer, solana.NewInstruction(
		testutil.GenerateSolanaKeys(t, 1)[0],
		[]byte{1, 2, 3},
		solana.NewAccountMeta(cosignerPub, true),
		solana.NewAccountMeta(payer, true),
		solana.NewReadonlyAccountMeta(system.ProgramID, false),
	))
	tx.SetBlockhash(solana.Blockhash{1})
	require.NoError(t, tx.Sign(cosigner))
	return tx
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "id.json")

	created, err := Create(path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw []int
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Len(t, raw, 64)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, created.PublicKey(), loaded.PublicKey())
	assert.Len(t, loaded.Key(), ed25519.PublicKeySize)

	_, err = Create(path)
	assert.ErrorIs(t, err, ErrKeypairExists)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrKeypairNotFound)

	key := testutil.GenerateSolanaKeypair(t)
	mismatched := make([]int, 64)
	for i, b := range key {
		mismatched[i] = int(b)
	}
	mismatched[63] ^= 0xff
	mismatchedJSON, err := json.Marshal(mismatched)
	require.NoError(t, err)

	for name, content := range map[string]string{
		"not json":    "hello",
		"short":       "[1,2,3]",
		"out of range": func() string {
			raw := make([]int, 64)
			raw[0] = 256
			b, _ := json.Marshal(raw)
			return string(b)
		}(),
		"mismatched public key": string(mismatchedJSON),
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".json")
			require.NoError(t, os.WriteFile(path, []byte(content), 0600))

			_, err := Load(path)
			assert.ErrorIs(t, err, ErrInvalidKeypair)
		})
	}
}

func TestLoadOrCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "id.json")

	first, created, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.PublicKey(), second.PublicKey())
}

func TestNew_InvalidKey(t *testing.T) {
	_, err := New(make(ed25519.PrivateKey, 10))
	assert.ErrorIs(t, err, ErrInvalidKeypair)
}

func TestSignTransaction(t *testing.T) {
	w, err := Generate()
	require.NoError(t, err)

	cosigner := testutil.GenerateSolanaKeypair(t)
	tx := newTransaction(t, w.Key(), cosigner)
	assert.ErrorIs(t, tx.VerifySignatures(), solana.ErrMissingSignature)

	signed, err := w.SignTransaction(context.Background(), &tx)
	require.NoError(t, err)
	assert.NoError(t, signed.VerifySignatures())
}

func TestSignTransaction_Approval(t *testing.T) {
	var asked int
	approve := false
	w, err := Generate(WithApprover(func(_ context.Context, tx *solana.Transaction) (bool, error) {
		asked++
		return approve, nil
	}))
	require.NoError(t, err)

	cosigner := testutil.GenerateSolanaKeypair(t)
	tx := newTransaction(t, w.Key(), cosigner)

	_, err = w.SignTransaction(context.Background(), &tx)
	assert.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, 1, asked)
	assert.True(t, tx.Signature().IsZero())

	approve = true
	_, err = w.SignTransaction(context.Background(), &tx)
	require.NoError(t, err)
	assert.Equal(t, 2, asked)
	assert.NoError(t, tx.VerifySignatures())
}

func TestSignTransaction_ApproverError(t *testing.T) {
	failure := errors.New("terminal closed")
	w, err := Generate(WithApprover(func(context.Context, *solana.Transaction) (bool, error) {
		return false, failure
	}))
	require.NoError(t, err)

	tx := newTransaction(t, w.Key(), testutil.GenerateSolanaKeypair(t))
	_, err = w.SignTransaction(context.Background(), &tx)
	assert.ErrorIs(t, err, failure)
}

func TestSignTransaction_NotASigner(t *testing.T) {
	w, err := Generate()
	require.NoError(t, err)

	payer := testutil.GenerateSolanaKeys(t, 1)[0]
	tx := newTransaction(t, payer, testutil.GenerateSolanaKeypair(t))

	_, err = w.SignTransaction(context.Background(), &tx)
	assert.ErrorIs(t, err, ErrNotRequiredSigner)
}

func TestBalance(t *testing.T) {
	w, err := Generate()
	require.NoError(t, err)

	_, err = w.Balance(context.Background())
	assert.ErrorIs(t, err, ErrNoBalanceProvider)

	reader := &balanceReader{balances: map[string]uint64{w.PublicKey(): 42}}
	w, err = New(w.key, WithBalanceReader(reader))
	require.NoError(t, err)

	balance, err := w.Balance(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 42, balance)

	reader.err = errors.New("rpc down")
	_, err = w.Balance(context.Background())
	assert.ErrorIs(t, err, reader.err)
}
