package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/enquiry-service/internal/domain"
)

// EnquiryFilter captures listing parameters. Deleted records are always
// excluded regardless of the filter.
type EnquiryFilter struct {
	Status     *domain.EnquiryStatus
	AssignedTo *string
	SearchTerm *string
	Limit      int
	Offset     int
}

// EnquiryRepository encapsulates enquiry persistence.
type EnquiryRepository interface {
	Create(ctx context.Context, enquiry *domain.Enquiry) error
	GetByID(ctx context.Context, id string) (*domain.Enquiry, error)
	List(ctx context.Context, filter EnquiryFilter) ([]domain.Enquiry, error)
	Count(ctx context.Context, filter EnquiryFilter) (int, error)
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	SoftDelete(ctx context.Context, id string) error
	TopPerformers(ctx context.Context, since time.Time, limit int) ([]domain.PerformerStat, error)
}

type enquiryRepository struct {
	pool *pgxpool.Pool
}

// NewEnquiryRepository instantiates repository.
func NewEnquiryRepository(pool *pgxpool.Pool) EnquiryRepository {
	return &enquiryRepository{pool: pool}
}

// updateColumns maps updatable field names to their columns. Keys outside
// this map are rejected; never trust caller-provided names.
var updateColumns = map[string]string{
	"customerName": "customer_name",
	"email":        "email",
	"phone":        "phone",
	"message":      "message",
	"status":       "status",
	"assignedTo":   "assigned_to",
}

const enquirySelect = `
        SELECT e.id, e.customer_name, e.email, e.phone, e.message, e.status,
               e.assigned_to, e.deleted, e.created_at, e.updated_at,
               u.id, u.name, u.email, u.role
        FROM enquiries e
        LEFT JOIN users u ON u.id = e.assigned_to`

func (r *enquiryRepository) Create(ctx context.Context, enquiry *domain.Enquiry) error {
	const query = `
        INSERT INTO enquiries (customer_name, email, phone, message, status, assigned_to)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, status, deleted, created_at, updated_at`

	status := enquiry.Status
	if status == "" {
		status = domain.EnquiryStatusNew
	}
	return r.pool.QueryRow(ctx, query,
		enquiry.CustomerName,
		enquiry.Email,
		enquiry.Phone,
		enquiry.Message,
		status,
		enquiry.AssignedTo,
	).Scan(&enquiry.ID, &enquiry.Status, &enquiry.Deleted, &enquiry.CreatedAt, &enquiry.UpdatedAt)
}

func (r *enquiryRepository) GetByID(ctx context.Context, id string) (*domain.Enquiry, error) {
	query := enquirySelect + ` WHERE e.id=$1 AND e.deleted=FALSE`

	row := r.pool.QueryRow(ctx, query, id)
	enquiry, err := scanEnquiry(row)
	if err != nil {
		return nil, err
	}
	return enquiry, nil
}

func (r *enquiryRepository) List(ctx context.Context, filter EnquiryFilter) ([]domain.Enquiry, error) {
	clauses, args := buildEnquiryClauses(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY e.created_at DESC LIMIT %d OFFSET %d`,
		enquirySelect, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Enquiry
	for rows.Next() {
		enquiry, err := scanEnquiry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *enquiry)
	}
	return result, rows.Err()
}

func (r *enquiryRepository) Count(ctx context.Context, filter EnquiryFilter) (int, error) {
	clauses, args := buildEnquiryClauses(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM enquiries e WHERE %s`, strings.Join(clauses, " AND "))

	var total int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// UpdateFields applies a field-name keyed update set. Unknown field names
// return an error rather than being interpolated.
func (r *enquiryRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return fmt.Errorf("empty update set")
	}

	sets := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+1)
	for name, value := range fields {
		column, ok := updateColumns[name]
		if !ok {
			return fmt.Errorf("unknown update field %q", name)
		}
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}
	sets = append(sets, "updated_at=NOW()")

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE enquiries SET %s WHERE id=$%d AND deleted=FALSE`,
		strings.Join(sets, ", "), len(args))

	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// SoftDelete flags the record; an already-deleted id reports ErrNoRows so a
// repeated delete surfaces as not found.
func (r *enquiryRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `
        UPDATE enquiries SET deleted=TRUE, updated_at=NOW()
        WHERE id=$1 AND deleted=FALSE`

	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *enquiryRepository) TopPerformers(ctx context.Context, since time.Time, limit int) ([]domain.PerformerStat, error) {
	const query = `
        SELECT u.id, u.name, u.email, u.role, COUNT(*) AS closed_count
        FROM enquiries e
        JOIN users u ON u.id = e.assigned_to
        WHERE e.status=$1 AND e.deleted=FALSE AND e.updated_at >= $2
        GROUP BY u.id, u.name, u.email, u.role
        ORDER BY closed_count DESC, u.id ASC
        LIMIT $3`

	rows, err := r.pool.Query(ctx, query, domain.EnquiryStatusClosed, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.PerformerStat
	for rows.Next() {
		var stat domain.PerformerStat
		if err := rows.Scan(&stat.UserID, &stat.Name, &stat.Email, &stat.Role, &stat.ClosedCount); err != nil {
			return nil, err
		}
		result = append(result, stat)
	}
	return result, rows.Err()
}

func buildEnquiryClauses(filter EnquiryFilter) ([]string, []any) {
	clauses := []string{"e.deleted=FALSE"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("e.status=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("e.assigned_to=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(e.customer_name) LIKE %s OR LOWER(COALESCE(e.email,'')) LIKE %s OR LOWER(COALESCE(e.phone,'')) LIKE %s)",
			placeholder, placeholder, placeholder))
	}
	return clauses, args
}

func scanEnquiry(row pgx.Row) (*domain.Enquiry, error) {
	var enquiry domain.Enquiry
	var assigneeID, assigneeName, assigneeEmail *string
	var assigneeRole *domain.Role

	if err := row.Scan(
		&enquiry.ID,
		&enquiry.CustomerName,
		&enquiry.Email,
		&enquiry.Phone,
		&enquiry.Message,
		&enquiry.Status,
		&enquiry.AssignedTo,
		&enquiry.Deleted,
		&enquiry.CreatedAt,
		&enquiry.UpdatedAt,
		&assigneeID,
		&assigneeName,
		&assigneeEmail,
		&assigneeRole,
	); err != nil {
		return nil, err
	}

	if assigneeID != nil {
		enquiry.Assignee = &domain.Assignee{
			ID:    *assigneeID,
			Name:  *assigneeName,
			Email: *assigneeEmail,
			Role:  *assigneeRole,
		}
	}
	return &enquiry, nil
}
