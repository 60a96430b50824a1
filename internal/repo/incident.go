package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/dropalong/backend/internal/domain"
)

// IncidentRepo defines the persistence operations for incident reports.
// Reports are append-only: there is no update or delete.
type IncidentRepo interface {
	// Create inserts a report and returns the persisted record.
	Create(ctx context.Context, report domain.IncidentReport) (domain.IncidentReport, error)

	// ListPaged returns one page of reports newest first and the total count.
	ListPaged(ctx context.Context, filter domain.IncidentFilter, p domain.PaginationParams) ([]domain.IncidentReport, int64, error)

	// Count returns the number of stored reports.
	Count(ctx context.Context) (int64, error)
}

// pgIncidentRepo is the Postgres implementation of IncidentRepo.
type pgIncidentRepo struct {
	db db
}

// NewIncidentRepo constructs an IncidentRepo backed by the provided db connection.
func NewIncidentRepo(db db) IncidentRepo {
	return &pgIncidentRepo{db: db}
}

func (r *pgIncidentRepo) Create(ctx context.Context, report domain.IncidentReport) (domain.IncidentReport, error) {
	const q = `
		INSERT INTO incident_reports (reporter_id, type, location_text, description)
		VALUES (@reporter_id, @type, @location_text, @description)
		RETURNING id, reporter_id, type, location_text, description, created_at`

	args := pgx.NamedArgs{
		"reporter_id":   report.ReporterID,
		"type":          string(report.Type),
		"location_text": report.LocationText,
		"description":   report.Description,
	}

	result, err := scanIncident(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.IncidentReport{}, fmt.Errorf("repo.IncidentRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgIncidentRepo) ListPaged(ctx context.Context, filter domain.IncidentFilter, p domain.PaginationParams) ([]domain.IncidentReport, int64, error) {
	const list = `
		SELECT id, reporter_id, type, location_text, description, created_at
		FROM incident_reports
		WHERE (@since::timestamptz IS NULL OR created_at >= @since::timestamptz)
		ORDER BY created_at DESC, id DESC
		LIMIT @limit OFFSET @offset`
	const count = `
		SELECT COUNT(*)
		FROM incident_reports
		WHERE (@since::timestamptz IS NULL OR created_at >= @since::timestamptz)`

	args := pgx.NamedArgs{
		"since":  filter.Since,
		"limit":  p.Limit,
		"offset": p.Offset(),
	}

	var total int64
	if err := r.db.QueryRow(ctx, count, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.IncidentRepo.ListPaged: count: %w", err)
	}

	rows, err := r.db.Query(ctx, list, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.IncidentRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	reports := []domain.IncidentReport{}
	for rows.Next() {
		report, err := scanIncident(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.IncidentRepo.ListPaged: scan: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.IncidentRepo.ListPaged: rows: %w", err)
	}
	return reports, total, nil
}

func (r *pgIncidentRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM incident_reports`).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.IncidentRepo.Count: %w", err)
	}
	return n, nil
}

func scanIncident(s scanner) (domain.IncidentReport, error) {
	var (
		out  domain.IncidentReport
		kind string
	)
	err := s.Scan(&out.ID, &out.ReporterID, &kind, &out.LocationText, &out.Description, &out.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.IncidentReport{}, domain.ErrNotFound
		}
		return domain.IncidentReport{}, err
	}
	out.Type = domain.IncidentType(kind)
	return out, nil
}
