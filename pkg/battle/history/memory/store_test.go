package memory

import (
	"testing"

	"github.com/daughters-of-aether/arena-client/pkg/battle/history/tests"
)

func TestHistoryMemoryStore(t *testing.T) {
	testStore := New()
	teardown := func() {
		testStore.(*store).reset()
	}
	tests.RunTests(t, testStore, teardown)
}
