package battle

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daughters-of-aether/arena-client/pkg/arena"
	"github.com/daughters-of-aether/arena-client/pkg/solana"
	"github.com/daughters-of-aether/arena-client/pkg/stake"
	"github.com/daughters-of-aether/arena-client/pkg/testutil"
)

// newRPCNode serves the methods used during battle creation, confirming
// every submitted transaction after one poll.
func newRPCNode(t *testing.T, program []byte, failWith interface{}) *testutil.RPCServer {
	node := testutil.NewRPCServer(t)

	node.Handle("getLatestBlockhash", func(params []json.RawMessage) (interface{}, *testutil.RPCError) {
		return map[string]interface{}{
			"context": map[string]interface{}{"slot": 1},
			"value": map[string]interface{}{
				"blockhash":            solana.Blockhash{9, 9, 9}.String(),
				"lastValidBlockHeight": 150,
			},
		}, nil
	})

	node.Handle("sendTransaction", func(params []json.RawMessage) (interface{}, *testutil.RPCError) {
		var encoded string
		if err := json.Unmarshal(params[0], &encoded); err != nil {
			return nil, &testutil.RPCError{Code: -32602, Message: err.Error()}
		}
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, &testutil.RPCError{Code: -32602, Message: err.Error()}
		}

		var tx solana.Transaction
		if err := tx.Unmarshal(raw); err != nil {
			return nil, &testutil.RPCError{Code: -32602, Message: err.Error()}
		}
		if err := tx.VerifySignatures(); err != nil {
			return nil, &testutil.RPCError{Code: -32003, Message: "Transaction signature verification failure"}
		}
		if _, err := arena.DecompileCreateBattle(tx.Message, program, 0); err != nil {
			return nil, &testutil.RPCError{Code: -32002, Message: err.Error()}
		}

		return tx.Signature().String(), nil
	})

	var polls int32
	node.Handle("getSignatureStatuses", func(params []json.RawMessage) (interface{}, *testutil.RPCError) {
		if atomic.AddInt32(&polls, 1) == 1 {
			return map[string]interface{}{"value": []interface{}{nil}}, nil
		}
		return map[string]interface{}{"value": []interface{}{
			map[string]interface{}{
				"slot":               12,
				"confirmations":      nil,
				"confirmationStatus": "confirmed",
				"err":                failWith,
			},
		}}, nil
	})

	return node
}

func TestCreateBattle_JSONRPC(t *testing.T) {
	program := testutil.GenerateSolanaKeys(t, 1)[0]
	node := newRPCNode(t, program, nil)

	creator := NewCreator(
		solana.New(node.URL(), solana.WithPollRate(time.Millisecond)),
		program,
		withManualTestOverrides(&testOverrides{confirmationTimeout: 5 * time.Second}),
		WithStakeValidator(stake.NewValidator(stake.WithLimits(stake.DefaultLimits))),
	)

	result := creator.CreateBattle(context.Background(), 10_000_000, newTestWallet(t))
	require.NoError(t, result.Err)
	assert.NotEmpty(t, result.Signature)
	assert.NotEmpty(t, result.BattleAccount)

	assert.Equal(t, 1, node.Calls("getLatestBlockhash"))
	assert.Equal(t, 1, node.Calls("sendTransaction"))
	assert.Equal(t, 2, node.Calls("getSignatureStatuses"))
	assert.Equal(t, StatusSuccess, creator.State().Status)
}

func TestCreateBattle_JSONRPC_ProgramError(t *testing.T) {
	program := testutil.GenerateSolanaKeys(t, 1)[0]
	node := newRPCNode(t, program, map[string]interface{}{
		"InstructionError": []interface{}{0, map[string]interface{}{"Custom": 6000}},
	})

	creator := NewCreator(
		solana.New(node.URL(), solana.WithPollRate(time.Millisecond)),
		program,
		withManualTestOverrides(&testOverrides{confirmationTimeout: 5 * time.Second}),
		WithStakeValidator(stake.NewValidator(stake.WithLimits(stake.DefaultLimits))),
	)

	result := creator.CreateBattle(context.Background(), 10_000_000, newTestWallet(t))
	assert.True(t, errors.Is(result.Err, ErrConfirmationFailed))

	var txErr *solana.TransactionError
	require.True(t, errors.As(result.Err, &txErr))
	require.NotNil(t, txErr.InstructionError())
	require.NotNil(t, txErr.InstructionError().CustomError())
	assert.True(t, txErr.InstructionError().CustomError().IsProgramDefined())
}

func TestCreateBattle_JSONRPC_StatusRejected(t *testing.T) {
	program := testutil.GenerateSolanaKeys(t, 1)[0]
	node := newRPCNode(t, program, nil)
	node.Handle("getSignatureStatuses", func(params []json.RawMessage) (interface{}, *testutil.RPCError) {
		return nil, &testutil.RPCError{Code: -32602, Message: "Invalid param: WrongSize"}
	})

	creator := NewCreator(
		solana.New(node.URL(), solana.WithPollRate(time.Millisecond)),
		program,
		withManualTestOverrides(&testOverrides{confirmationTimeout: 5 * time.Second}),
		WithStakeValidator(stake.NewValidator(stake.WithLimits(stake.DefaultLimits))),
	)

	result := creator.CreateBattle(context.Background(), 10_000_000, newTestWallet(t))
	assert.True(t, errors.Is(result.Err, ErrConfirmationFailed))
	assert.False(t, errors.Is(result.Err, ErrConfirmationTimeout))
	assert.Equal(t, 1, node.Calls("getSignatureStatuses"))
	assert.Equal(t, StatusFailed, creator.State().Status)
}
