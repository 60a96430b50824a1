package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/dropalong/backend/internal/domain"
)

// ReputationRepo defines the persistence operations for contributor points.
type ReputationRepo interface {
	// Award adds amount to the account's points, creating the account with
	// points = amount if it does not exist, and returns the new balance.
	// It is a single atomic statement, safe to call concurrently for the same
	// account without lost updates.
	Award(ctx context.Context, accountID string, amount int64) (domain.ReputationAccount, error)

	// Get returns an account. Returns domain.ErrNotFound if it has never
	// been awarded points.
	Get(ctx context.Context, accountID string) (domain.ReputationAccount, error)

	// Top returns up to limit accounts ordered by points descending, ties
	// broken by account id.
	Top(ctx context.Context, limit int) ([]domain.ReputationAccount, error)

	// Count returns the number of accounts holding points.
	Count(ctx context.Context) (int64, error)
}

// pgReputationRepo is the Postgres implementation of ReputationRepo.
type pgReputationRepo struct {
	db db
}

// NewReputationRepo constructs a ReputationRepo backed by the provided db connection.
func NewReputationRepo(db db) ReputationRepo {
	return &pgReputationRepo{db: db}
}

// Award performs the increment inside the database. The row lock taken by
// ON CONFLICT DO UPDATE serialises concurrent awards for one account, so the
// final total is the sum of every award that returned without error.
func (r *pgReputationRepo) Award(ctx context.Context, accountID string, amount int64) (domain.ReputationAccount, error) {
	const q = `
		INSERT INTO reputation_accounts (account_id, points)
		VALUES (@account_id, @amount)
		ON CONFLICT (account_id) DO UPDATE
		SET points     = reputation_accounts.points + EXCLUDED.points,
		    updated_at = now()
		RETURNING account_id, points, updated_at`

	result, err := scanAccount(r.db.QueryRow(ctx, q, pgx.NamedArgs{"account_id": accountID, "amount": amount}))
	if err != nil {
		return domain.ReputationAccount{}, fmt.Errorf("repo.ReputationRepo.Award: %w", err)
	}
	return result, nil
}

func (r *pgReputationRepo) Get(ctx context.Context, accountID string) (domain.ReputationAccount, error) {
	const q = `
		SELECT account_id, points, updated_at
		FROM reputation_accounts
		WHERE account_id = @account_id`

	result, err := scanAccount(r.db.QueryRow(ctx, q, pgx.NamedArgs{"account_id": accountID}))
	if err != nil {
		return domain.ReputationAccount{}, fmt.Errorf("repo.ReputationRepo.Get: %w", err)
	}
	return result, nil
}

func (r *pgReputationRepo) Top(ctx context.Context, limit int) ([]domain.ReputationAccount, error) {
	const q = `
		SELECT account_id, points, updated_at
		FROM reputation_accounts
		ORDER BY points DESC, account_id
		LIMIT @limit`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("repo.ReputationRepo.Top: %w", err)
	}
	defer rows.Close()

	accounts := []domain.ReputationAccount{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ReputationRepo.Top: scan: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ReputationRepo.Top: rows: %w", err)
	}
	return accounts, nil
}

func (r *pgReputationRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM reputation_accounts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.ReputationRepo.Count: %w", err)
	}
	return n, nil
}

func scanAccount(s scanner) (domain.ReputationAccount, error) {
	var a domain.ReputationAccount
	if err := s.Scan(&a.AccountID, &a.Points, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ReputationAccount{}, domain.ErrNotFound
		}
		return domain.ReputationAccount{}, err
	}
	return a, nil
}
