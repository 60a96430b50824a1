package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pkordes/dropalong/backend/internal/domain"
)

// SuggestionRepo defines the persistence operations for community route
// suggestions.
type SuggestionRepo interface {
	// Create inserts a suggestion and returns the persisted record. The status
	// is taken from the argument; callers insert with domain.StatusPending.
	Create(ctx context.Context, s domain.RouteSuggestion) (domain.RouteSuggestion, error)

	// GetByID retrieves a single suggestion.
	// Returns domain.ErrNotFound if no suggestion with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.RouteSuggestion, error)

	// ListPaged returns one page of suggestions matching filter, newest first,
	// and the total number of matching rows.
	ListPaged(ctx context.Context, filter domain.SuggestionFilter, p domain.PaginationParams) ([]domain.RouteSuggestion, int64, error)

	// ListApproved returns every approved suggestion in insertion order.
	ListApproved(ctx context.Context) ([]domain.RouteSuggestion, error)

	// Patch applies the supplied fields of patch in a single UPDATE, leaving
	// unsupplied columns untouched. Returns domain.ErrNotFound for unknown ids.
	Patch(ctx context.Context, id uuid.UUID, patch domain.SuggestionPatch) (domain.RouteSuggestion, error)

	// SetStatus changes only the moderation status.
	// Returns domain.ErrNotFound for unknown ids.
	SetStatus(ctx context.Context, id uuid.UUID, status domain.Status) (domain.RouteSuggestion, error)

	// Delete permanently removes a suggestion in any state.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// CountByStatus returns the number of suggestions in each status.
	// Statuses with no rows are absent from the map.
	CountByStatus(ctx context.Context) (map[domain.Status]int64, error)
}

// pgSuggestionRepo is the Postgres implementation of SuggestionRepo.
type pgSuggestionRepo struct {
	db db
}

// NewSuggestionRepo constructs a SuggestionRepo backed by the provided db connection.
func NewSuggestionRepo(db db) SuggestionRepo {
	return &pgSuggestionRepo{db: db}
}

const suggestionColumns = `id, contributor_id, origin, destination, vehicle_types, itinerary,
		       estimated_total_fare, estimated_duration_minutes, status, created_at, updated_at`

// Create inserts a new suggestion row and returns the full persisted record.
func (r *pgSuggestionRepo) Create(ctx context.Context, s domain.RouteSuggestion) (domain.RouteSuggestion, error) {
	const q = `
		INSERT INTO route_suggestions (contributor_id, origin, destination, vehicle_types, itinerary,
		                               estimated_total_fare, estimated_duration_minutes, status)
		VALUES (@contributor_id, @origin, @destination, @vehicle_types, @itinerary::jsonb,
		        @estimated_total_fare, @estimated_duration_minutes, @status)
		RETURNING ` + suggestionColumns

	legs, err := encodeLegs(s.Itinerary)
	if err != nil {
		return domain.RouteSuggestion{}, fmt.Errorf("repo.SuggestionRepo.Create: %w", err)
	}

	args := pgx.NamedArgs{
		"contributor_id":             s.ContributorID, // nil becomes NULL for guests
		"origin":                     s.Origin,
		"destination":                s.Destination,
		"vehicle_types":              emptyIfNil(s.VehicleTypes),
		"itinerary":                  legs,
		"estimated_total_fare":       s.EstimatedTotalFare,
		"estimated_duration_minutes": s.EstimatedDurationMinutes,
		"status":                     string(s.Status),
	}

	result, err := scanSuggestion(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.RouteSuggestion{}, fmt.Errorf("repo.SuggestionRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a suggestion by primary key.
func (r *pgSuggestionRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.RouteSuggestion, error) {
	const q = `
		SELECT ` + suggestionColumns + `
		FROM route_suggestions
		WHERE id = @id`

	result, err := scanSuggestion(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.RouteSuggestion{}, fmt.Errorf("repo.SuggestionRepo.GetByID: %w", err)
	}
	return result, nil
}

// ListPaged returns one page of suggestions, newest first.
// COUNT(*) OVER () carries the total on every row so one round trip serves
// both the page and the pagination metadata.
func (r *pgSuggestionRepo) ListPaged(ctx context.Context, filter domain.SuggestionFilter, p domain.PaginationParams) ([]domain.RouteSuggestion, int64, error) {
	const q = `
		SELECT ` + suggestionColumns + `, COUNT(*) OVER () AS total
		FROM route_suggestions
		WHERE (@status::text IS NULL OR status = @status::text)
		  AND (@text::text IS NULL
		       OR origin ILIKE '%' || @text::text || '%'
		       OR destination ILIKE '%' || @text::text || '%')
		ORDER BY created_at DESC, id DESC
		LIMIT @limit OFFSET @offset`

	var status *string
	if filter.Status != nil {
		s := string(*filter.Status)
		status = &s
	}

	args := pgx.NamedArgs{
		"status": status,
		"text":   likePattern(filter.Text),
		"limit":  p.Limit,
		"offset": p.Offset(),
	}

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.SuggestionRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	var (
		out   = []domain.RouteSuggestion{}
		total int64
	)
	for rows.Next() {
		s, err := scanSuggestionWithTotal(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.SuggestionRepo.ListPaged: scan: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.SuggestionRepo.ListPaged: rows: %w", err)
	}

	// A page past the end has no rows to carry the total.
	if len(out) == 0 && p.Offset() > 0 {
		if err := r.db.QueryRow(ctx, `
			SELECT COUNT(*) FROM route_suggestions
			WHERE (@status::text IS NULL OR status = @status::text)
			  AND (@text::text IS NULL
			       OR origin ILIKE '%' || @text::text || '%'
			       OR destination ILIKE '%' || @text::text || '%')`,
			args).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("repo.SuggestionRepo.ListPaged: count: %w", err)
		}
	}
	return out, total, nil
}

// ListApproved returns every approved suggestion, oldest first.
func (r *pgSuggestionRepo) ListApproved(ctx context.Context) ([]domain.RouteSuggestion, error) {
	const q = `
		SELECT ` + suggestionColumns + `
		FROM route_suggestions
		WHERE status = 'approved'
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.SuggestionRepo.ListApproved: %w", err)
	}
	defer rows.Close()

	out := []domain.RouteSuggestion{}
	for rows.Next() {
		s, err := scanSuggestion(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.SuggestionRepo.ListApproved: scan: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.SuggestionRepo.ListApproved: rows: %w", err)
	}
	return out, nil
}

// Patch updates only the columns supplied in patch. A NULL parameter keeps
// the stored value through COALESCE and the clear flags force NULL, so the
// whole edit is one atomic statement.
func (r *pgSuggestionRepo) Patch(ctx context.Context, id uuid.UUID, patch domain.SuggestionPatch) (domain.RouteSuggestion, error) {
	const q = `
		UPDATE route_suggestions
		SET origin                     = COALESCE(@origin::text, origin),
		    destination                = COALESCE(@destination::text, destination),
		    vehicle_types              = COALESCE(@vehicle_types::text[], vehicle_types),
		    itinerary                  = COALESCE(@itinerary::jsonb, itinerary),
		    estimated_total_fare       = CASE WHEN @clear_estimated_total_fare::boolean THEN NULL
		                                      ELSE COALESCE(@estimated_total_fare::double precision, estimated_total_fare) END,
		    estimated_duration_minutes = CASE WHEN @clear_estimated_duration_minutes::boolean THEN NULL
		                                      ELSE COALESCE(@estimated_duration_minutes::integer, estimated_duration_minutes) END,
		    status                     = COALESCE(@status::text, status),
		    updated_at                 = now()
		WHERE id = @id
		RETURNING ` + suggestionColumns

	args, err := patchArgs(id, patch)
	if err != nil {
		return domain.RouteSuggestion{}, fmt.Errorf("repo.SuggestionRepo.Patch: %w", err)
	}

	result, err := scanSuggestion(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.RouteSuggestion{}, fmt.Errorf("repo.SuggestionRepo.Patch: %w", err)
	}
	return result, nil
}

// patchArgs maps a patch to named arguments, using untyped nil for every
// field that was not supplied.
func patchArgs(id uuid.UUID, patch domain.SuggestionPatch) (pgx.NamedArgs, error) {
	args := pgx.NamedArgs{
		"id":                         id,
		"origin":                     nil,
		"destination":                nil,
		"vehicle_types":              nil,
		"itinerary":                  nil,
		"estimated_total_fare":       nil,
		"estimated_duration_minutes": nil,
		"status":                     nil,

		"clear_estimated_total_fare":       patch.ClearEstimatedTotalFare,
		"clear_estimated_duration_minutes": patch.ClearEstimatedDurationMinutes,
	}
	if patch.Origin != nil {
		args["origin"] = *patch.Origin
	}
	if patch.Destination != nil {
		args["destination"] = *patch.Destination
	}
	if patch.VehicleTypes != nil {
		args["vehicle_types"] = emptyIfNil(*patch.VehicleTypes)
	}
	if patch.Itinerary != nil {
		legs, err := encodeLegs(*patch.Itinerary)
		if err != nil {
			return nil, err
		}
		args["itinerary"] = legs
	}
	if patch.EstimatedTotalFare != nil {
		args["estimated_total_fare"] = *patch.EstimatedTotalFare
	}
	if patch.EstimatedDurationMinutes != nil {
		args["estimated_duration_minutes"] = *patch.EstimatedDurationMinutes
	}
	if patch.Status != nil {
		args["status"] = string(*patch.Status)
	}
	return args, nil
}

// SetStatus changes the moderation status of a suggestion.
func (r *pgSuggestionRepo) SetStatus(ctx context.Context, id uuid.UUID, status domain.Status) (domain.RouteSuggestion, error) {
	const q = `
		UPDATE route_suggestions
		SET status = @status, updated_at = now()
		WHERE id = @id
		RETURNING ` + suggestionColumns

	result, err := scanSuggestion(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "status": string(status)}))
	if err != nil {
		return domain.RouteSuggestion{}, fmt.Errorf("repo.SuggestionRepo.SetStatus: %w", err)
	}
	return result, nil
}

// Delete removes a suggestion by primary key.
func (r *pgSuggestionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM route_suggestions WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.SuggestionRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.SuggestionRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// CountByStatus groups suggestions by status.
func (r *pgSuggestionRepo) CountByStatus(ctx context.Context) (map[domain.Status]int64, error) {
	const q = `SELECT status, COUNT(*) FROM route_suggestions GROUP BY status`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.SuggestionRepo.CountByStatus: %w", err)
	}
	defer rows.Close()

	counts := map[domain.Status]int64{}
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("repo.SuggestionRepo.CountByStatus: scan: %w", err)
		}
		counts[domain.Status(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.SuggestionRepo.CountByStatus: rows: %w", err)
	}
	return counts, nil
}

// likePattern escapes LIKE metacharacters in a user search term using the
// default backslash escape. An empty term returns nil so the filter is skipped.
func likePattern(text string) *string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	escaped := likeEscaper.Replace(text)
	return &escaped
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// scanSuggestion maps a single database row into a domain.RouteSuggestion.
func scanSuggestion(s scanner) (domain.RouteSuggestion, error) {
	return scanSuggestionWithTotal(s, nil)
}

// scanSuggestionWithTotal also reads a trailing COUNT(*) OVER () column into
// total when total is non-nil.
func scanSuggestionWithTotal(s scanner, total *int64) (domain.RouteSuggestion, error) {
	var (
		out    domain.RouteSuggestion
		legs   []byte
		status string
	)
	dest := []any{&out.ID, &out.ContributorID, &out.Origin, &out.Destination, &out.VehicleTypes, &legs,
		&out.EstimatedTotalFare, &out.EstimatedDurationMinutes, &status, &out.CreatedAt, &out.UpdatedAt}
	if total != nil {
		dest = append(dest, total)
	}

	if err := s.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.RouteSuggestion{}, domain.ErrNotFound
		}
		return domain.RouteSuggestion{}, err
	}

	out.Status = domain.Status(status)
	var err error
	if out.Itinerary, err = decodeLegs(legs); err != nil {
		return domain.RouteSuggestion{}, err
	}
	return out, nil
}
