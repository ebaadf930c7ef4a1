package tests

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daughters-of-aether/arena-client/pkg/battle/history"
)

func RunTests(t *testing.T, s history.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s history.Store){
		testRoundTrip,
		testUpdate,
		testGetAll,
		testValidation,
	} {
		tf(t, s)
		teardown()
	}
}

func testRoundTrip(t *testing.T, s history.Store) {
	t.Run("testRoundTrip", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.GetByBattleAccount(ctx, "battle")
		assert.Equal(t, history.ErrRecordNotFound, err)

		expected := &history.Record{
			BattleAccount:   "battle",
			Player:          "player",
			Signature:       "signature",
			StakeLamports:   10_000_000,
			DurationSeconds: 60,
			Network:         "Solana Devnet",
			State:           history.StateSucceeded,
		}
		cloned := expected.Clone()

		require.NoError(t, s.Save(ctx, expected))
		assert.True(t, expected.Id > 0)
		assert.False(t, expected.CreatedAt.IsZero())

		actual, err := s.GetByBattleAccount(ctx, "battle")
		require.NoError(t, err)
		assertEquivalentRecords(t, &cloned, actual)
		assert.Equal(t, expected.Id, actual.Id)
	})
}

func testUpdate(t *testing.T, s history.Store) {
	t.Run("testUpdate", func(t *testing.T) {
		ctx := context.Background()

		record := &history.Record{
			BattleAccount: "battle",
			Player:        "player",
			State:         history.StateFailed,
			Error:         "confirmation timed out",
		}
		require.NoError(t, s.Save(ctx, record))
		id, createdAt := record.Id, record.CreatedAt

		record.State = history.StateSucceeded
		record.Signature = "signature"
		record.Error = ""
		require.NoError(t, s.Save(ctx, record))
		assert.Equal(t, id, record.Id)
		assert.True(t, createdAt.Equal(record.CreatedAt))

		actual, err := s.GetByBattleAccount(ctx, "battle")
		require.NoError(t, err)
		assert.Equal(t, history.StateSucceeded, actual.State)
		assert.Equal(t, "signature", actual.Signature)
		assert.Empty(t, actual.Error)

		all, err := s.GetAll(ctx, "player")
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func testGetAll(t *testing.T, s history.Store) {
	t.Run("testGetAll", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.GetAll(ctx, "player")
		assert.Equal(t, history.ErrRecordNotFound, err)

		for i := 0; i < 3; i++ {
			require.NoError(t, s.Save(ctx, &history.Record{
				BattleAccount: fmt.Sprintf("battle%d", i),
				Player:        "player",
				State:         history.StateFailed,
				Error:         "rejected",
				StakeLamports: uint64(i),
			}))
		}
		require.NoError(t, s.Save(ctx, &history.Record{
			BattleAccount: "other",
			Player:        "other",
			Signature:     "signature",
			State:         history.StateSucceeded,
		}))

		actual, err := s.GetAll(ctx, "player")
		require.NoError(t, err)
		require.Len(t, actual, 3)
		for i, record := range actual {
			assert.Equal(t, fmt.Sprintf("battle%d", i), record.BattleAccount)
			assert.EqualValues(t, i, record.StakeLamports)
		}
		assert.True(t, actual[0].Id < actual[1].Id)
		assert.True(t, actual[1].Id < actual[2].Id)
	})
}

func testValidation(t *testing.T, s history.Store) {
	t.Run("testValidation", func(t *testing.T) {
		ctx := context.Background()

		for _, invalid := range []*history.Record{
			{Player: "player", State: history.StateFailed, Error: "e"},
			{BattleAccount: "battle", State: history.StateFailed, Error: "e"},
			{BattleAccount: "battle", Player: "player"},
			{BattleAccount: "battle", Player: "player", State: history.StateSucceeded},
			{BattleAccount: "battle", Player: "player", State: history.StateFailed},
		} {
			assert.Error(t, s.Save(ctx, invalid))
		}

		_, err := s.GetByBattleAccount(ctx, "battle")
		assert.Equal(t, history.ErrRecordNotFound, err)
	})
}

func assertEquivalentRecords(t *testing.T, obj1, obj2 *history.Record) {
	assert.Equal(t, obj1.BattleAccount, obj2.BattleAccount)
	assert.Equal(t, obj1.Player, obj2.Player)
	assert.Equal(t, obj1.Signature, obj2.Signature)
	assert.Equal(t, obj1.StakeLamports, obj2.StakeLamports)
	assert.Equal(t, obj1.DurationSeconds, obj2.DurationSeconds)
	assert.Equal(t, obj1.Network, obj2.Network)
	assert.Equal(t, obj1.State, obj2.State)
	assert.Equal(t, obj1.Error, obj2.Error)
}
