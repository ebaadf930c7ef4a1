package solana

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Reference vectors from the Rust SDK transaction tests. The first was
// produced with a keypair whose public half does not match its seed, the
// second with the same seed and a correctly derived key.
const (
	sdkVector        = "AUc7Cbu+gZalFSGeSFdukHhP7oSGaSdmdNEd5ZokaSysdoMWfIOzjrAbdaBZZuDMAfyNAogAJdrhgVya+jthsgoBAAEDnON0wdcmjhYIDuXvd10F2qEjAyEAJGSe/CGhYbk+WWMBAQEEBQYHCAkJCQkJCQkJCQkJCQkJCQkIBwYFBAEBAQICAgQFBgcICQEBAQEBAQEBAQEBAQEBCQgHBgUEAgICAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAABAgIAAQMBAgM="
	sdkDerivedVector = "ATMfBMZ8phHEheLph8K9TJhRKhnE4qNZvWiXdUdJRmlTCRsQjWmW2CkQJeRHBCcsqFm2gynjL40M9mTe0Dxp4QIBAAEDfEya6wnC7f3Cv53qnOEywwIJ928rIdqAlfXYI1adXroBAQEEBQYHCAkJCQkJCQkJCQkJCQkJCQkIBwYFBAEBAQICAgQFBgcICQEBAQEBAQEBAQEBAQEBCQgHBgUEAgICAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAABAgIAAQMBAgM="
)

func TestTransaction_KnownEncoding(t *testing.T) {
	seed := []byte{48, 83, 2, 1, 1, 48, 5, 6, 3, 43, 101, 112, 4, 34, 4, 32, 255, 101, 36, 24, 124, 23,
		167, 21, 132, 204, 155, 5, 185, 58, 121, 75}
	mismatched := append(append(ed25519.PrivateKey{}, seed...),
		156, 227, 116, 193, 215, 38, 142, 22, 8, 14, 229, 239, 119, 93, 5, 218, 161, 35, 3, 33, 0, 36, 100,
		158, 252, 33, 161, 97, 185, 62, 89, 99)

	programID := ed25519.PublicKey{2, 2, 2, 4, 5, 6, 7, 8, 9, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 9, 8, 7, 6, 5, 4,
		2, 2, 2}
	to := ed25519.PublicKey{1, 1, 1, 4, 5, 6, 7, 8, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 8, 7, 6, 5, 4, 1, 1, 1}

	for _, tc := range []struct {
		name     string
		key      ed25519.PrivateKey
		expected string
	}{
		{"mismatched keypair", mismatched, sdkVector},
		{"derived keypair", ed25519.NewKeyFromSeed(seed), sdkDerivedVector},
	} {
		t.Run(tc.name, func(t *testing.T) {
			payer := public(tc.key)
			tx := NewTransaction(
				payer,
				NewInstruction(programID, []byte{1, 2, 3}, NewAccountMeta(payer, true), NewAccountMeta(to, false)),
			)
			require.NoError(t, tx.Sign(tc.key))
			assert.Equal(t, tc.expected, base64.StdEncoding.EncodeToString(tx.Marshal()))

			var decoded Transaction
			require.NoError(t, decoded.Unmarshal(tx.Marshal()))
			assert.Equal(t, tx.Message.Accounts, decoded.Message.Accounts)
		})
	}
}

func TestTransaction_RoundTrip(t *testing.T) {
	keys := generateKeys(t, 3)
	payer, battle, program := keys[0], keys[1], keys[2]
	system := make(ed25519.PublicKey, ed25519.PublicKeySize)

	tx := NewTransaction(
		public(payer),
		NewInstruction(
			public(program),
			[]byte{0x7c, 0x11, 0x00, 0xe1, 0xf5, 0x05, 0x00, 0x00, 0x00, 0x00},
			NewAccountMeta(public(battle), true),
			NewAccountMeta(public(payer), true),
			NewReadonlyAccountMeta(system, false),
		),
	)

	var bh Blockhash
	copy(bh[:], bytes.Repeat([]byte{0xab}, len(bh)))
	tx.SetBlockhash(bh)
	require.NoError(t, tx.Sign(battle, payer))

	raw, err := tx.MarshalSigned()
	require.NoError(t, err)

	var decoded Transaction
	require.NoError(t, decoded.Unmarshal(raw))
	assert.Equal(t, raw, decoded.Marshal())
	assert.Equal(t, tx.Message.Header, decoded.Message.Header)
	assert.Equal(t, tx.Message.Accounts, decoded.Message.Accounts)
	assert.Equal(t, tx.Message.Instructions, decoded.Message.Instructions)
	assert.Equal(t, bh, decoded.Message.RecentBlockhash)
	require.NoError(t, decoded.VerifySignatures())
}

func TestTransaction_UnmarshalEdgeCases(t *testing.T) {
	keys := generateKeys(t, 2)
	payer, program := keys[0], keys[1]

	build := func(accounts ...AccountMeta) Transaction {
		return NewTransaction(public(payer), NewInstruction(public(program), []byte{1, 2, 3}, accounts...))
	}

	t.Run("nil account", func(t *testing.T) {
		tx := build(NewAccountMeta(nil, false))
		require.NoError(t, tx.Sign(payer))

		var decoded Transaction
		assert.NoError(t, decoded.Unmarshal(tx.Marshal()))
	})

	t.Run("zero blockhash", func(t *testing.T) {
		tx := build(NewAccountMeta(public(payer), false))
		require.NoError(t, tx.Sign(payer))

		var decoded Transaction
		require.NoError(t, decoded.Unmarshal(tx.Marshal()))
		assert.Equal(t, Blockhash{}, decoded.Message.RecentBlockhash)
	})

	for name, corrupt := range map[string]func(tx *Transaction){
		"program index out of range": func(tx *Transaction) { tx.Message.Instructions[0].ProgramIndex = 2 },
		"account index out of range": func(tx *Transaction) { tx.Message.Instructions[0].Accounts = []byte{2} },
	} {
		t.Run(name, func(t *testing.T) {
			tx := build(NewAccountMeta(public(payer), true))
			corrupt(&tx)

			var decoded Transaction
			assert.Error(t, decoded.Unmarshal(tx.Marshal()))
		})
	}

	t.Run("truncated", func(t *testing.T) {
		tx := build(NewAccountMeta(public(payer), true))
		raw := tx.Marshal()

		var decoded Transaction
		assert.Error(t, decoded.Unmarshal(raw[:len(raw)-1]))
		assert.Error(t, decoded.Unmarshal(nil))
	})
}

func TestTransaction_SingleInstruction(t *testing.T) {
	keys := generateKeys(t, 6)
	payer, program, accounts := keys[0], keys[1], keys[2:]
	data := []byte{1, 2, 3}

	tx := NewTransaction(
		public(payer),
		NewInstruction(
			public(program),
			data,
			NewReadonlyAccountMeta(public(accounts[0]), true),
			NewReadonlyAccountMeta(public(accounts[1]), false),
			NewAccountMeta(public(accounts[2]), false),
			NewAccountMeta(public(accounts[3]), true),
		),
	)

	// Signing order does not affect signature placement.
	require.NoError(t, tx.Sign(accounts[0], accounts[3], payer))

	assertHeader(t, tx, 3, 1, 2)
	assertAccounts(t, tx, payer, accounts[3], accounts[0], accounts[2], accounts[1], program)
	assertSignedBy(t, tx, payer, accounts[3], accounts[0])

	ix := tx.Message.Instructions[0]
	assert.Equal(t, byte(5), ix.ProgramIndex)
	assert.Equal(t, data, ix.Data)
	assert.Equal(t, []byte{2, 4, 3, 1}, ix.Accounts)
}

func TestTransaction_DuplicateKeys(t *testing.T) {
	keys := generateKeys(t, 2)
	payer, program := keys[0], keys[1]
	accounts := sortedKeys(t, 4)

	tx := NewTransaction(
		public(payer),
		NewInstruction(
			public(program),
			[]byte{1, 2, 3},
			NewReadonlyAccountMeta(public(accounts[0]), true),
			NewReadonlyAccountMeta(public(accounts[1]), false),
			NewAccountMeta(public(accounts[2]), false),
			NewAccountMeta(public(accounts[3]), true),
			// A repeated key takes the union of its permissions.
			NewAccountMeta(public(accounts[0]), false),
			NewReadonlyAccountMeta(public(accounts[1]), true),
			NewReadonlyAccountMeta(public(accounts[2]), false),
			NewReadonlyAccountMeta(public(accounts[3]), false),
		),
	)
	require.NoError(t, tx.Sign(accounts[0], accounts[1], accounts[3], payer))

	assertHeader(t, tx, 4, 1, 1)
	assertAccounts(t, tx, payer, accounts[0], accounts[3], accounts[1], accounts[2], program)
	assertSignedBy(t, tx, payer, accounts[0], accounts[3], accounts[1])

	ix := tx.Message.Instructions[0]
	assert.Equal(t, byte(5), ix.ProgramIndex)
	assert.Equal(t, []byte{1, 3, 4, 2, 1, 3, 4, 2}, ix.Accounts)
}

func TestTransaction_MultiInstruction(t *testing.T) {
	programs := sortedKeys(t, 3)
	payer, first, second := programs[0], programs[1], programs[2]
	accounts := sortedKeys(t, 6)

	tx := NewTransaction(
		public(payer),
		NewInstruction(
			public(second),
			[]byte{1, 2, 3},
			NewReadonlyAccountMeta(public(accounts[0]), true),
			NewReadonlyAccountMeta(public(accounts[1]), false),
			NewAccountMeta(public(accounts[2]), false),
			NewAccountMeta(public(accounts[3]), true),
		),
		NewInstruction(
			public(first),
			[]byte{3, 4, 5},
			// Later readonly references never downgrade.
			NewReadonlyAccountMeta(public(accounts[3]), false),
			NewReadonlyAccountMeta(public(accounts[2]), false),
			NewAccountMeta(public(accounts[0]), false),
			NewAccountMeta(public(accounts[1]), true),
			NewAccountMeta(public(accounts[4]), true),
			NewReadonlyAccountMeta(public(accounts[5]), false),
		),
	)
	require.NoError(t, tx.Sign(payer, accounts[0], accounts[1], accounts[3], accounts[4]))

	assertHeader(t, tx, 5, 0, 3)
	assertAccounts(t, tx,
		payer, accounts[0], accounts[1], accounts[3], accounts[4],
		accounts[2], accounts[5], first, second,
	)
	assertSignedBy(t, tx, payer, accounts[0], accounts[1], accounts[3], accounts[4])

	assert.Equal(t, byte(8), tx.Message.Instructions[0].ProgramIndex)
	assert.Equal(t, []byte{1, 2, 5, 3}, tx.Message.Instructions[0].Accounts)
	assert.Equal(t, byte(7), tx.Message.Instructions[1].ProgramIndex)
	assert.Equal(t, []byte{3, 5, 1, 2, 4, 6}, tx.Message.Instructions[1].Accounts)
}

func TestTransaction_PartialSigning(t *testing.T) {
	keys := generateKeys(t, 3)
	payer, battle, program := keys[0], keys[1], keys[2]

	tx := NewTransaction(
		public(payer),
		NewInstruction(
			public(program),
			[]byte{1, 2, 3},
			NewAccountMeta(public(battle), true),
			NewAccountMeta(public(payer), true),
		),
	)

	var bh Blockhash
	bh[0] = 7
	tx.SetBlockhash(bh)

	require.Len(t, tx.Signers(), 2)
	assert.Equal(t, public(payer), tx.FeePayer())

	// Co-sign with the non-payer first, as a second party would complete it.
	require.NoError(t, tx.Sign(battle))
	assert.True(t, tx.Signature().IsZero())
	assert.ErrorIs(t, tx.VerifySignatures(), ErrMissingSignature)

	_, err := tx.MarshalSigned()
	assert.ErrorIs(t, err, ErrMissingSignature)

	require.NoError(t, tx.Sign(payer))
	assert.False(t, tx.Signature().IsZero())
	require.NoError(t, tx.VerifySignatures())

	raw, err := tx.MarshalSigned()
	require.NoError(t, err)

	var decoded Transaction
	require.NoError(t, decoded.Unmarshal(raw))
	assert.Equal(t, tx.Signatures, decoded.Signatures)
	assert.Equal(t, bh, decoded.Message.RecentBlockhash)
	require.NoError(t, decoded.VerifySignatures())
}

func TestTransaction_SignatureInvalidatedByBlockhash(t *testing.T) {
	keys := generateKeys(t, 2)
	payer, program := keys[0], keys[1]

	tx := NewTransaction(public(payer), NewInstruction(public(program), []byte{1}))
	require.NoError(t, tx.Sign(payer))
	require.NoError(t, tx.VerifySignatures())

	var bh Blockhash
	bh[31] = 1
	tx.SetBlockhash(bh)
	assert.ErrorIs(t, tx.VerifySignatures(), ErrInvalidSignature)
}

func TestTransaction_SignUnknownKey(t *testing.T) {
	keys := generateKeys(t, 4)
	payer, program, readonly, stranger := keys[0], keys[1], keys[2], keys[3]

	tx := NewTransaction(
		public(payer),
		NewInstruction(public(program), nil, NewReadonlyAccountMeta(public(readonly), false)),
	)

	assert.Error(t, tx.Sign(stranger))
	assert.Error(t, tx.Sign(readonly))
}

func TestMessage_Instruction(t *testing.T) {
	keys := generateKeys(t, 4)
	payer, program, signer, readonly := keys[0], keys[1], keys[2], keys[3]

	data := []byte{9, 8, 7}
	tx := NewTransaction(
		public(payer),
		NewInstruction(
			public(program),
			data,
			NewAccountMeta(public(signer), true),
			NewAccountMeta(public(payer), true),
			NewReadonlyAccountMeta(public(readonly), false),
		),
	)

	ix, err := tx.Message.Instruction(0)
	require.NoError(t, err)

	assert.Equal(t, public(program), ix.Program)
	assert.Equal(t, data, ix.Data)
	require.Len(t, ix.Accounts, 3)

	assert.Equal(t, public(signer), ix.Accounts[0].PublicKey)
	assert.True(t, ix.Accounts[0].IsSigner)
	assert.True(t, ix.Accounts[0].IsWritable)

	assert.Equal(t, public(payer), ix.Accounts[1].PublicKey)
	assert.True(t, ix.Accounts[1].IsSigner)
	assert.True(t, ix.Accounts[1].IsWritable)

	assert.Equal(t, public(readonly), ix.Accounts[2].PublicKey)
	assert.False(t, ix.Accounts[2].IsSigner)
	assert.False(t, ix.Accounts[2].IsWritable)

	_, err = tx.Message.Instruction(1)
	assert.Error(t, err)
}

func TestMessage_UnmarshalVersioned(t *testing.T) {
	var m Message
	assert.Error(t, m.Unmarshal([]byte{0x80, 1, 0, 0}))
	assert.Error(t, m.Unmarshal(nil))
}

func public(priv ed25519.PrivateKey) ed25519.PublicKey {
	return priv.Public().(ed25519.PublicKey)
}

func generateKeys(t *testing.T, amount int) []ed25519.PrivateKey {
	keys := make([]ed25519.PrivateKey, amount)

	for i := 0; i < amount; i++ {
		_, priv, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = priv
	}

	return keys
}

func assertHeader(t *testing.T, tx Transaction, signatures, readonlySigned, readonly int) {
	t.Helper()
	assert.EqualValues(t, signatures, tx.Message.Header.NumSignatures)
	assert.EqualValues(t, readonlySigned, tx.Message.Header.NumReadonlySigned)
	assert.EqualValues(t, readonly, tx.Message.Header.NumReadOnly)
}

func assertAccounts(t *testing.T, tx Transaction, expected ...ed25519.PrivateKey) {
	t.Helper()
	keys := make([]ed25519.PublicKey, len(expected))
	for i, k := range expected {
		keys[i] = public(k)
	}
	assert.Equal(t, keys, tx.Message.Accounts)
}

func assertSignedBy(t *testing.T, tx Transaction, signers ...ed25519.PrivateKey) {
	t.Helper()
	require.Len(t, tx.Signatures, len(signers))

	message := tx.Message.Marshal()
	for i, signer := range signers {
		assert.True(t, ed25519.Verify(public(signer), message, tx.Signatures[i][:]), "signature %d", i)
	}
}

func sortedKeys(t *testing.T, n int) []ed25519.PrivateKey {
	keys := generateKeys(t, n)
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(public(keys[i]), public(keys[j])) < 0
	})
	return keys
}
