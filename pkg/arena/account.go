package arena

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/daughters-of-aether/arena-client/pkg/solana"
	"github.com/daughters-of-aether/arena-client/pkg/solana/system"
)

var ErrNotBattleAccount = errors.New("account is not a battle")

// AccountReader reads raw account state, typically a solana.Client.
type AccountReader interface {
	GetAccountInfo(context.Context, ed25519.PublicKey, solana.Commitment) (solana.AccountInfo, error)
}

// BattleAccount is an on-chain battle. Data is the full account data,
// discriminator included.
type BattleAccount struct {
	Address  ed25519.PublicKey
	Lamports uint64
	Data     []byte
}

// GetBattleAccount loads the battle at address. It returns
// solana.ErrNoAccountInfo if nothing exists there, and ErrNotBattleAccount if
// the account belongs to another program or holds something else.
func GetBattleAccount(ctx context.Context, reader AccountReader, program, address ed25519.PublicKey) (*BattleAccount, error) {
	info, err := reader.GetAccountInfo(ctx, address, solana.CommitmentConfirmed)
	if err != nil {
		return nil, err
	}

	if system.IsOwnedBySystem(info.Owner) {
		return nil, errors.Wrap(ErrNotBattleAccount, "account is not allocated")
	}
	if !bytes.Equal(info.Owner, program) {
		return nil, errors.Wrapf(ErrNotBattleAccount, "owned by %s", base58.Encode(info.Owner))
	}
	if !IsBattleAccount(info.Data) {
		return nil, errors.Wrap(ErrNotBattleAccount, "unexpected discriminator")
	}

	return &BattleAccount{
		Address:  address,
		Lamports: info.Lamports,
		Data:     info.Data,
	}, nil
}
