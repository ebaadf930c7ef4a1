// Package arena binds the Daughters of Aether battle program's instructions.
package arena

import (
	"bytes"
	"crypto/ed25519"
	"time"

	"github.com/pkg/errors"

	"github.com/daughters-of-aether/arena-client/pkg/anchor"
	"github.com/daughters-of-aether/arena-client/pkg/solana"
	"github.com/daughters-of-aether/arena-client/pkg/solana/system"
)

const (
	// BattleDuration is the length of every battle created by this client.
	BattleDuration = 60 * time.Second

	createBattleName  = "create_battle"
	battleAccountName = "Battle"
)

var (
	// CreateBattleSchema is the argument layout of create_battle.
	CreateBattleSchema = anchor.Schema{
		Name: createBattleName,
		Fields: []anchor.Field{
			{Name: "stake", Type: anchor.U64},
			{Name: "duration_seconds", Type: anchor.I64},
		},
	}

	CreateBattleDiscriminator  = anchor.InstructionDiscriminator(createBattleName)
	BattleAccountDiscriminator = anchor.AccountDiscriminator(battleAccountName)
)

const (
	// CreateBattleInstructionSize is the length of create_battle instruction data.
	CreateBattleInstructionSize = (anchor.DiscriminatorSize + // discriminator
		8 + // stake
		8) // duration_seconds

	createBattleAccountsSize = 3
)

// CreateBattleInstructionAccounts are the accounts referenced by
// create_battle, in program order.
type CreateBattleInstructionAccounts struct {
	Battle ed25519.PublicKey
	Player ed25519.PublicKey
}

// CreateBattleInstructionArgs are the create_battle arguments.
type CreateBattleInstructionArgs struct {
	StakeLamports   uint64
	DurationSeconds int64
}

// CreateBattleInstruction builds a create_battle instruction for program.
// The battle account must sign because the program initializes it.
//
// Negative stakes are rejected with anchor.ErrEncodingRange rather than
// being written as two's complement.
func CreateBattleInstruction(
	program ed25519.PublicKey,
	battle ed25519.PublicKey,
	player ed25519.PublicKey,
	stakeLamports int64,
	duration time.Duration,
) (solana.Instruction, error) {
	data, err := CreateBattleSchema.Pack(
		CreateBattleDiscriminator,
		anchor.Int(stakeLamports),
		anchor.Int(int64(duration/time.Second)),
	)
	if err != nil {
		return solana.Instruction{}, err
	}

	return solana.NewInstruction(
		program,
		data,
		solana.NewAccountMeta(battle, true),
		solana.NewAccountMeta(player, true),
		solana.NewReadonlyAccountMeta(system.ProgramID, false),
	), nil
}

// DecompiledCreateBattle is a create_battle instruction recovered from a
// transaction message.
type DecompiledCreateBattle struct {
	Accounts CreateBattleInstructionAccounts
	Args     CreateBattleInstructionArgs
}

// Duration returns the encoded battle duration.
func (d *DecompiledCreateBattle) Duration() time.Duration {
	return time.Duration(d.Args.DurationSeconds) * time.Second
}

// DecompileCreateBattle parses the create_battle instruction at index.
func DecompileCreateBattle(m solana.Message, program ed25519.PublicKey, index int) (*DecompiledCreateBattle, error) {
	ix, err := m.Instruction(index)
	if err != nil {
		return nil, err
	}

	if !bytes.Equal(ix.Program, program) {
		return nil, solana.ErrIncorrectProgram
	}
	if len(ix.Data) != CreateBattleInstructionSize || len(ix.Accounts) != createBattleAccountsSize {
		return nil, solana.ErrIncorrectInstruction
	}

	values, err := CreateBattleSchema.Unpack(CreateBattleDiscriminator, ix.Data)
	if err != nil {
		return nil, errors.Wrap(solana.ErrIncorrectInstruction, err.Error())
	}
	if !bytes.Equal(ix.Accounts[2].PublicKey, system.ProgramID) {
		return nil, errors.Wrap(solana.ErrIncorrectInstruction, "third account is not the system program")
	}

	stake, _ := values[0].Uint64()
	duration, _ := values[1].Int64()

	return &DecompiledCreateBattle{
		Accounts: CreateBattleInstructionAccounts{
			Battle: ix.Accounts[0].PublicKey,
			Player: ix.Accounts[1].PublicKey,
		},
		Args: CreateBattleInstructionArgs{
			StakeLamports:   stake,
			DurationSeconds: duration,
		},
	}, nil
}

// IsBattleAccount reports whether account data was written by the program as
// a battle.
func IsBattleAccount(data []byte) bool {
	return BattleAccountDiscriminator.Matches(data)
}
