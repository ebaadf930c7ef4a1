package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daughters-of-aether/arena-client/pkg/battle/history"
	"github.com/daughters-of-aether/arena-client/pkg/battle/history/tests"
)

func TestHistoryFileStore(t *testing.T) {
	testStore := New(filepath.Join(t.TempDir(), "history.json"))
	teardown := func() {
		testStore.(*store).reset()
	}
	tests.RunTests(t, testStore, teardown)
}

func TestFileStore_Persistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "history.json")

	record := &history.Record{
		BattleAccount: "battle",
		Player:        "player",
		Signature:     "signature",
		State:         history.StateSucceeded,
	}
	require.NoError(t, New(path).Save(ctx, record))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(fileMode), info.Mode().Perm())

	actual, err := New(path).GetByBattleAccount(ctx, "battle")
	require.NoError(t, err)
	assert.Equal(t, record.Id, actual.Id)
	assert.Equal(t, history.StateSucceeded, actual.State)
	assert.True(t, record.CreatedAt.Equal(actual.CreatedAt))
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), fileMode))

	_, err := New(path).GetAll(context.Background(), "player")
	assert.Error(t, err)
	assert.NotEqual(t, history.ErrRecordNotFound, err)
}
