package repo_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/dropalong/backend/internal/domain"
	"github.com/pkordes/dropalong/backend/internal/repo"
	"github.com/pkordes/dropalong/backend/testutil"
)

func TestReputationRepo_Award_CreatesThenIncrements(t *testing.T) {
	r := repo.NewReputationRepo(newTestTx(t))
	ctx := context.Background()

	first, err := r.Award(ctx, "user-a", 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, first.Points)

	second, err := r.Award(ctx, "user-a", 4)
	require.NoError(t, err)
	assert.EqualValues(t, 5, second.Points)

	got, err := r.Get(ctx, "user-a")
	require.NoError(t, err)
	assert.EqualValues(t, 5, got.Points)
}

func TestReputationRepo_Get_Unknown(t *testing.T) {
	r := repo.NewReputationRepo(newTestTx(t))

	_, err := r.Get(context.Background(), "nobody")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReputationRepo_Top(t *testing.T) {
	r := repo.NewReputationRepo(newTestTx(t))
	ctx := context.Background()

	for id, pts := range map[string]int64{"zed": 3, "amy": 3, "bob": 9} {
		_, err := r.Award(ctx, id, pts)
		require.NoError(t, err)
	}

	top, err := r.Top(ctx, 2)

	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "bob", top[0].AccountID)
	assert.Equal(t, "amy", top[1].AccountID, "ties broken by account id")
}

// TestReputationRepo_Award_Concurrent runs on the pool, not a transaction,
// because concurrent awards must use separate connections.
func TestReputationRepo_Award_Concurrent(t *testing.T) {
	pool := testutil.NewPool(t)
	r := repo.NewReputationRepo(pool)
	ctx := context.Background()

	account := "concurrent-" + uuid.NewString()
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM reputation_accounts WHERE account_id = $1`, account)
	})

	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Award(ctx, account, 1); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	got, err := r.Get(ctx, account)
	require.NoError(t, err)
	assert.EqualValues(t, n, got.Points, "no award may be lost")
}
