package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// AdminRepo answers the authorization question used by moderation.
type AdminRepo interface {
	// IsAdministrator reports whether accountID holds the administrator
	// capability. Unknown accounts are not administrators.
	IsAdministrator(ctx context.Context, accountID string) (bool, error)

	// Grant gives accountID the administrator capability. Idempotent.
	Grant(ctx context.Context, accountID string) error
}

type pgAdminRepo struct {
	db db
}

// NewAdminRepo constructs an AdminRepo backed by the provided db connection.
func NewAdminRepo(db db) AdminRepo {
	return &pgAdminRepo{db: db}
}

func (r *pgAdminRepo) IsAdministrator(ctx context.Context, accountID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM administrators WHERE account_id = @account_id)`

	var ok bool
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"account_id": accountID}).Scan(&ok); err != nil {
		return false, fmt.Errorf("repo.AdminRepo.IsAdministrator: %w", err)
	}
	return ok, nil
}

// Grant inserts the account, ignoring an existing row.
func (r *pgAdminRepo) Grant(ctx context.Context, accountID string) error {
	const q = `
		INSERT INTO administrators (account_id)
		VALUES (@account_id)
		ON CONFLICT (account_id) DO NOTHING`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"account_id": accountID}); err != nil {
		return fmt.Errorf("repo.AdminRepo.Grant: %w", err)
	}
	return nil
}
