// Package anchor implements the Anchor framework's instruction and account
// encoding conventions.
package anchor

import (
	"crypto/sha256"
	"encoding/hex"
)

// DiscriminatorSize is the length of an Anchor discriminator.
const DiscriminatorSize = 8

const (
	instructionNamespace = "global"
	accountNamespace     = "account"
)

// Discriminator is the 8 byte tag prefixing Anchor instruction data and
// account data.
type Discriminator [DiscriminatorSize]byte

// InstructionDiscriminator derives the tag the program computes for the
// instruction entry point name, e.g. "create_battle".
func InstructionDiscriminator(name string) Discriminator {
	return derive(instructionNamespace, name)
}

// AccountDiscriminator derives the tag written at the start of accounts of
// the named type, e.g. "Battle".
func AccountDiscriminator(name string) Discriminator {
	return derive(accountNamespace, name)
}

func derive(namespace, name string) Discriminator {
	digest := sha256.Sum256([]byte(namespace + ":" + name))

	var d Discriminator
	copy(d[:], digest[:DiscriminatorSize])
	return d
}

// Matches reports whether data starts with the discriminator.
func (d Discriminator) Matches(data []byte) bool {
	if len(data) < DiscriminatorSize {
		return false
	}
	return Discriminator(data[:DiscriminatorSize]) == d
}

func (d Discriminator) String() string {
	return hex.EncodeToString(d[:])
}
