package refresh_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-crm-connector/internal/errors"
	"github.com/jrsteele09/go-crm-connector/token/refresh"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepo_UpsertGet(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	repo := refresh.NewInMemoryRepo().WithNowFunc(func() time.Time { return now })

	_, err := repo.Get("session-1")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, repo.Upsert("session-1", "RT1"))
	rt, err := repo.Get("session-1")
	require.NoError(t, err)
	require.Equal(t, "session-1", rt.SessionID)
	require.Equal(t, "RT1", rt.Token)
	require.Equal(t, now, rt.Iat)

	t.Run("overwrite keeps no history", func(t *testing.T) {
		require.NoError(t, repo.Upsert("session-1", "RT2"))
		rt, err := repo.Get("session-1")
		require.NoError(t, err)
		require.Equal(t, "RT2", rt.Token)
		require.Equal(t, 1, repo.Count())
	})

	t.Run("returned value is a copy", func(t *testing.T) {
		rt, err := repo.Get("session-1")
		require.NoError(t, err)
		rt.Token = "mutated"

		again, err := repo.Get("session-1")
		require.NoError(t, err)
		require.Equal(t, "RT2", again.Token)
	})
}

func TestInMemoryRepo_Validation(t *testing.T) {
	repo := refresh.NewInMemoryRepo()
	require.Error(t, repo.Upsert("", "RT1"))
	require.Error(t, repo.Upsert("session-1", ""))
	require.Equal(t, 0, repo.Count())
}

func TestInMemoryRepo_Delete(t *testing.T) {
	repo := refresh.NewInMemoryRepo()
	require.NoError(t, repo.Upsert("session-1", "RT1"))
	require.NoError(t, repo.Delete("session-1"))
	require.NoError(t, repo.Delete("unknown"))

	_, err := repo.Get("session-1")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestInMemoryRepo_Concurrent(t *testing.T) {
	repo := refresh.NewInMemoryRepo()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			session := fmt.Sprintf("session-%d", i%5)
			require.NoError(t, repo.Upsert(session, fmt.Sprintf("RT%d", i)))
			_, err := repo.Get(session)
			require.NoError(t, err)
		}(i)
	}
	wg.Wait()

	require.Equal(t, 5, repo.Count())
}
