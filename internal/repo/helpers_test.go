package repo_test

import (
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/dropalong/backend/testutil"
)

// newTestTx returns a rolled-back-on-cleanup transaction against the test
// database. TestMain has already applied the migrations.
func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	return testutil.NewTx(t)
}
