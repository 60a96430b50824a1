package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/dropalong/backend/internal/repo"
)

func TestAdminRepo_GrantIsIdempotent(t *testing.T) {
	r := repo.NewAdminRepo(newTestTx(t))
	ctx := context.Background()

	ok, err := r.IsAdministrator(ctx, "mod-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Grant(ctx, "mod-1"))
	require.NoError(t, r.Grant(ctx, "mod-1"))

	ok, err = r.IsAdministrator(ctx, "mod-1")
	require.NoError(t, err)
	assert.True(t, ok)
}
