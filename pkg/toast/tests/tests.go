package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daughters-of-aether/arena-client/pkg/toast"
)

func RunTests(t *testing.T, s toast.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s toast.Store){
		testRoundTrip,
		testDefaultDuration,
		testRemove,
		testValidation,
	} {
		tf(t, s)
		teardown()
	}
}

func testRoundTrip(t *testing.T, s toast.Store) {
	t.Run("testRoundTrip", func(t *testing.T) {
		ctx := context.Background()

		actual, err := s.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, actual)

		var ids []string
		for _, message := range []string{"first", "second", "third"} {
			record := &toast.Toast{
				Type:     toast.TypeInfo,
				Message:  message,
				Duration: time.Hour,
			}

			id, err := s.Add(ctx, record)
			require.NoError(t, err)
			assert.NotEmpty(t, id)
			assert.Equal(t, id, record.Id)
			assert.False(t, record.CreatedAt.IsZero())
			ids = append(ids, id)
		}
		assert.NotEqual(t, ids[0], ids[1])

		actual, err = s.List(ctx)
		require.NoError(t, err)
		require.Len(t, actual, 3)
		for i, message := range []string{"first", "second", "third"} {
			assert.Equal(t, ids[i], actual[i].Id)
			assert.Equal(t, message, actual[i].Message)
			assert.Equal(t, toast.TypeInfo, actual[i].Type)
			assert.Equal(t, time.Hour, actual[i].Duration)
		}

		// Returned toasts are copies
		actual[0].Message = "mutated"
		actual, err = s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, "first", actual[0].Message)
	})
}

func testDefaultDuration(t *testing.T, s toast.Store) {
	t.Run("testDefaultDuration", func(t *testing.T) {
		ctx := context.Background()

		record := &toast.Toast{Type: toast.TypeSuccess, Message: "Battle created!"}
		_, err := s.Add(ctx, record)
		require.NoError(t, err)
		assert.Equal(t, toast.DefaultDuration, record.Duration)
	})
}

func testRemove(t *testing.T, s toast.Store) {
	t.Run("testRemove", func(t *testing.T) {
		ctx := context.Background()

		assert.Equal(t, toast.ErrToastNotFound, s.Remove(ctx, "unknown"))

		keep, err := s.Add(ctx, &toast.Toast{Type: toast.TypeInfo, Message: "keep", Duration: time.Hour})
		require.NoError(t, err)
		drop, err := s.Add(ctx, &toast.Toast{Type: toast.TypeError, Message: "drop", Duration: time.Hour})
		require.NoError(t, err)

		require.NoError(t, s.Remove(ctx, drop))
		assert.Equal(t, toast.ErrToastNotFound, s.Remove(ctx, drop))

		actual, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, actual, 1)
		assert.Equal(t, keep, actual[0].Id)
	})
}

func testValidation(t *testing.T, s toast.Store) {
	t.Run("testValidation", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.Add(ctx, &toast.Toast{Message: "no type"})
		assert.Error(t, err)

		_, err = s.Add(ctx, &toast.Toast{Type: toast.TypeInfo})
		assert.Error(t, err)

		_, err = s.Add(ctx, &toast.Toast{Type: toast.TypeInfo, Message: "negative", Duration: -time.Second})
		assert.Error(t, err)

		actual, err := s.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, actual)
	})
}
