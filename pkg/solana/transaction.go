package solana

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"sort"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

// MaxTransactionSize is the largest serialized transaction a node accepts,
// the IPv6 MTU less headers.
const MaxTransactionSize = 1232

var (
	ErrMissingSignature = errors.New("transaction is missing a required signature")
	ErrInvalidSignature = errors.New("transaction has an invalid signature")
)

type Signature [ed25519.SignatureSize]byte

func (s Signature) String() string {
	return base58.Encode(s[:])
}

// IsZero reports whether the signature slot is unfilled.
func (s Signature) IsZero() bool {
	return s == Signature{}
}

type Blockhash [sha256.Size]byte

func (b Blockhash) String() string {
	return base58.Encode(b[:])
}

// Header counts the signer and read-only sections of Message.Accounts.
type Header struct {
	NumSignatures     byte
	NumReadonlySigned byte
	NumReadOnly       byte
}

// Message is a legacy transaction message. Accounts are laid out as writable
// signers, read-only signers, writable non-signers and read-only non-signers.
type Message struct {
	Header          Header
	Accounts        []ed25519.PublicKey
	RecentBlockhash Blockhash
	Instructions    []CompiledInstruction
}

type Transaction struct {
	Signatures []Signature
	Message    Message
}

// NewTransaction compiles instructions into an unsigned transaction paid for
// by payer. The blockhash is left zeroed.
func NewTransaction(payer ed25519.PublicKey, instructions ...Instruction) Transaction {
	m := compile(payer, instructions)
	return Transaction{
		Signatures: make([]Signature, m.Header.NumSignatures),
		Message:    m,
	}
}

func compile(payer ed25519.PublicKey, instructions []Instruction) Message {
	metas := mergeAccountMetas(payer, instructions)
	sort.SliceStable(metas, func(i, j int) bool {
		return metas[i].before(metas[j])
	})

	var m Message
	for _, meta := range metas {
		m.Accounts = append(m.Accounts, meta.PublicKey)

		switch {
		case meta.IsSigner && !meta.IsWritable:
			m.Header.NumSignatures++
			m.Header.NumReadonlySigned++
		case meta.IsSigner:
			m.Header.NumSignatures++
		case !meta.IsWritable:
			m.Header.NumReadOnly++
		}
	}

	for _, ix := range instructions {
		compiled := CompiledInstruction{
			ProgramIndex: byte(indexOf(m.Accounts, ix.Program)),
			Data:         ix.Data,
		}
		for _, account := range ix.Accounts {
			compiled.Accounts = append(compiled.Accounts, byte(indexOf(m.Accounts, account.PublicKey)))
		}
		m.Instructions = append(m.Instructions, compiled)
	}

	// Placeholder accounts still occupy a full key on the wire.
	for i, key := range m.Accounts {
		if len(key) == 0 {
			m.Accounts[i] = make(ed25519.PublicKey, ed25519.PublicKeySize)
		}
	}

	return m
}

// mergeAccountMetas collects every account the instructions reference, once
// each. A repeated account keeps the first reference's position and gains the
// union of all its permissions.
func mergeAccountMetas(payer ed25519.PublicKey, instructions []Instruction) []AccountMeta {
	metas := []AccountMeta{{PublicKey: payer, IsSigner: true, IsWritable: true, isPayer: true}}

	add := func(meta AccountMeta) {
		for i := range metas {
			if bytes.Equal(metas[i].PublicKey, meta.PublicKey) {
				metas[i].IsSigner = metas[i].IsSigner || meta.IsSigner
				metas[i].IsWritable = metas[i].IsWritable || meta.IsWritable
				return
			}
		}
		metas = append(metas, meta)
	}

	for _, ix := range instructions {
		add(AccountMeta{PublicKey: ix.Program, isProgram: true})
		for _, account := range ix.Accounts {
			add(account)
		}
	}
	return metas
}

// Signature returns the fee payer's signature, which identifies the
// transaction on chain.
func (t *Transaction) Signature() Signature {
	if len(t.Signatures) == 0 {
		return Signature{}
	}
	return t.Signatures[0]
}

// FeePayer returns the account paying for the transaction.
func (t *Transaction) FeePayer() ed25519.PublicKey {
	if len(t.Message.Accounts) == 0 {
		return nil
	}
	return t.Message.Accounts[0]
}

// Signers returns the accounts that must sign, in signature slot order.
func (t *Transaction) Signers() []ed25519.PublicKey {
	n := int(t.Message.Header.NumSignatures)
	if n > len(t.Message.Accounts) {
		n = len(t.Message.Accounts)
	}
	return t.Message.Accounts[:n]
}

func (t *Transaction) SetBlockhash(bh Blockhash) {
	t.Message.RecentBlockhash = bh
}

// Sign fills the slots belonging to the given keys and leaves the others
// alone, so parties can sign in turn. Changing the message afterwards
// invalidates every signature.
func (t *Transaction) Sign(signers ...ed25519.PrivateKey) error {
	message := t.Message.Marshal()

	for _, key := range signers {
		pub := key.Public().(ed25519.PublicKey)

		slot := indexOf(t.Signers(), pub)
		if slot < 0 || slot >= len(t.Signatures) {
			return errors.Errorf("%s is not a required signer", base58.Encode(pub))
		}
		copy(t.Signatures[slot][:], ed25519.Sign(key, message))
	}

	return nil
}

// VerifySignatures checks that every required signer has a valid signature
// over the current message.
func (t *Transaction) VerifySignatures() error {
	signers := t.Signers()
	if len(t.Signatures) != len(signers) {
		return errors.Wrapf(ErrMissingSignature, "expected %d signatures, got %d", len(signers), len(t.Signatures))
	}

	message := t.Message.Marshal()
	for i, signer := range signers {
		switch {
		case t.Signatures[i].IsZero():
			return errors.Wrapf(ErrMissingSignature, "signer %s", base58.Encode(signer))
		case !ed25519.Verify(signer, message, t.Signatures[i][:]):
			return errors.Wrapf(ErrInvalidSignature, "signer %s", base58.Encode(signer))
		}
	}

	return nil
}

func indexOf(keys []ed25519.PublicKey, key ed25519.PublicKey) int {
	for i := range keys {
		if bytes.Equal(keys[i], key) {
			return i
		}
	}
	return -1
}
