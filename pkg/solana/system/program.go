package system

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
)

// ProgramID is the address of the native system program.
//
// https://explorer.solana.com/address/11111111111111111111111111111111
var ProgramID ed25519.PublicKey

func init() {
	var err error

	ProgramID, err = base58.Decode("11111111111111111111111111111111")
	if err != nil {
		panic(err)
	}
}

// IsOwnedBySystem reports whether an account owner is the system program,
// which is the case for plain wallets and accounts that were never allocated.
func IsOwnedBySystem(owner ed25519.PublicKey) bool {
	return bytes.Equal(owner, ProgramID)
}
