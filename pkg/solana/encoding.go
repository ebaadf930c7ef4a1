package solana

import (
	"bytes"
	"crypto/ed25519"
	"io"

	"github.com/pkg/errors"

	"github.com/daughters-of-aether/arena-client/pkg/solana/shortvec"
)

// versionPrefix marks a versioned message when set on the first byte.
const versionPrefix = 0x80

// wireWriter appends wire format fields to a buffer.
type wireWriter struct {
	buf []byte
}

func (w *wireWriter) byte(b byte) {
	w.buf = append(w.buf, b)
}

func (w *wireWriter) bytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// length writes a compact-u16 length. Lengths above shortvec.MaxLen only
// occur far beyond MaxTransactionSize, which MarshalSigned rejects.
func (w *wireWriter) length(n int) {
	w.buf, _ = shortvec.AppendLen(w.buf, n)
}

// wireReader reads wire format fields, naming the field in any error.
type wireReader struct {
	r *bytes.Reader
}

func newWireReader(b []byte) *wireReader {
	return &wireReader{r: bytes.NewReader(b)}
}

func (r *wireReader) byte(field string) (byte, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, errors.Wrapf(err, "failed to read %s", field)
	}
	return b, nil
}

func (r *wireReader) full(dst []byte, field string) error {
	if _, err := io.ReadFull(r.r, dst); err != nil {
		return errors.Wrapf(err, "failed to read %s", field)
	}
	return nil
}

func (r *wireReader) length(field string) (int, error) {
	n, err := shortvec.ReadLen(r.r)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to read %s length", field)
	}
	// Every counted element takes at least one byte.
	if n > r.r.Len() {
		return 0, errors.Errorf("%s length %d exceeds remaining %d bytes", field, n, r.r.Len())
	}
	return n, nil
}

func (r *wireReader) rest() []byte {
	rest := make([]byte, r.r.Len())
	_, _ = r.r.Read(rest)
	return rest
}

func (t Transaction) Marshal() []byte {
	var w wireWriter

	w.length(len(t.Signatures))
	for _, s := range t.Signatures {
		w.bytes(s[:])
	}
	w.bytes(t.Message.Marshal())

	return w.buf
}

// MarshalSigned verifies every required signature before serializing.
func (t Transaction) MarshalSigned() ([]byte, error) {
	if err := t.VerifySignatures(); err != nil {
		return nil, err
	}

	raw := t.Marshal()
	if len(raw) > MaxTransactionSize {
		return nil, errors.Errorf("transaction size %d exceeds maximum of %d", len(raw), MaxTransactionSize)
	}
	return raw, nil
}

func (t *Transaction) Unmarshal(b []byte) error {
	r := newWireReader(b)

	n, err := r.length("signatures")
	if err != nil {
		return err
	}

	t.Signatures = make([]Signature, n)
	for i := range t.Signatures {
		if err := r.full(t.Signatures[i][:], "signature"); err != nil {
			return errors.Wrapf(err, "signature %d", i)
		}
	}

	return (&t.Message).Unmarshal(r.rest())
}

func (m Message) Marshal() []byte {
	var w wireWriter

	w.byte(m.Header.NumSignatures)
	w.byte(m.Header.NumReadonlySigned)
	w.byte(m.Header.NumReadOnly)

	w.length(len(m.Accounts))
	for _, a := range m.Accounts {
		w.bytes(a)
	}

	w.bytes(m.RecentBlockhash[:])

	w.length(len(m.Instructions))
	for _, i := range m.Instructions {
		w.byte(i.ProgramIndex)

		w.length(len(i.Accounts))
		w.bytes(i.Accounts)

		w.length(len(i.Data))
		w.bytes(i.Data)
	}

	return w.buf
}

func (m *Message) Unmarshal(b []byte) (err error) {
	if len(b) == 0 {
		return errors.New("empty message")
	}
	if b[0]&versionPrefix != 0 {
		return errors.New("versioned messages not supported")
	}

	r := newWireReader(b)

	if m.Header.NumSignatures, err = r.byte("num signatures"); err != nil {
		return err
	}
	if m.Header.NumReadonlySigned, err = r.byte("num readonly signed"); err != nil {
		return err
	}
	if m.Header.NumReadOnly, err = r.byte("num readonly"); err != nil {
		return err
	}

	n, err := r.length("accounts")
	if err != nil {
		return err
	}
	m.Accounts = make([]ed25519.PublicKey, n)
	for i := range m.Accounts {
		m.Accounts[i] = make(ed25519.PublicKey, ed25519.PublicKeySize)
		if err := r.full(m.Accounts[i], "account"); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
	}

	if err := r.full(m.RecentBlockhash[:], "recent blockhash"); err != nil {
		return err
	}

	if n, err = r.length("instructions"); err != nil {
		return err
	}
	m.Instructions = make([]CompiledInstruction, n)
	for i := range m.Instructions {
		if m.Instructions[i], err = m.readInstruction(r); err != nil {
			return errors.Wrapf(err, "instruction %d", i)
		}
	}

	return nil
}

func (m *Message) readInstruction(r *wireReader) (c CompiledInstruction, err error) {
	if c.ProgramIndex, err = r.byte("program index"); err != nil {
		return c, err
	}
	if int(c.ProgramIndex) >= len(m.Accounts) {
		return c, errors.Errorf("program index %d out of range", c.ProgramIndex)
	}

	n, err := r.length("accounts")
	if err != nil {
		return c, err
	}
	c.Accounts = make([]byte, n)
	if err := r.full(c.Accounts, "accounts"); err != nil {
		return c, err
	}
	for _, index := range c.Accounts {
		if int(index) >= len(m.Accounts) {
			return c, errors.Errorf("account index %d out of range", index)
		}
	}

	if n, err = r.length("data"); err != nil {
		return c, err
	}
	c.Data = make([]byte, n)
	if err := r.full(c.Data, "data"); err != nil {
		return c, err
	}

	return c, nil
}
