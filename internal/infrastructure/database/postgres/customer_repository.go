package postgres

import (
	"agv-finance/internal/domain/customer"
	"agv-finance/internal/pkg/apperrors"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const customerColumns = `id, name, mobile, COALESCE(additional_mobile, ''), COALESCE(email, ''),
        COALESCE(address, ''), COALESCE(father_name, ''), COALESCE(mother_name, ''),
        COALESCE(aadhar_number, ''), COALESCE(pan_number, ''), documents, status, created_at, updated_at`

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.CustomerRepository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("DBPool cannot be nil for CustomerRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		db:     db,
		logger: logger.With("component", "CustomerRepository"),
	}
}

func scanCustomer(row rowScanner) (*customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(
		&c.ID, &c.Name, &c.Mobile, &c.AdditionalMobile, &c.Email,
		&c.Address, &c.FatherName, &c.MotherName,
		&c.AadhaarNumber, &c.PANNumber, &c.Documents, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if c.Documents == nil {
		c.Documents = map[string]string{}
	}
	return &c, nil
}

func (r *CustomerRepository) Create(ctx context.Context, cust *customer.Customer) (err error) {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}
	defer observe("customer_create", time.Now(), &err)
	r.logger.InfoContext(ctx, "Attempting to insert new customer", slog.String("customerID", cust.ID.String()))

	query := `
        INSERT INTO customers (id, name, mobile, additional_mobile, email, address, father_name, mother_name,
            aadhar_number, pan_number, documents, status, created_at, updated_at)
        VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''),
            NULLIF($9, ''), NULLIF($10, ''), $11, $12, NOW(), NOW())
        RETURNING created_at, updated_at`

	err = r.db.QueryRow(ctx, query,
		cust.ID, cust.Name, cust.Mobile, cust.AdditionalMobile, cust.Email, cust.Address,
		cust.FatherName, cust.MotherName, cust.AadhaarNumber, cust.PANNumber, cust.Documents, cust.Status,
	).Scan(&cust.CreatedAt, &cust.UpdatedAt)
	if err != nil {
		translated := translateDBError(err, r.logger)
		if errors.Is(translated, apperrors.ErrAlreadyExists) {
			r.logger.WarnContext(ctx, "Failed to insert customer due to unique constraint violation", slog.String("mobile", cust.Mobile))
			return translated
		}
		r.logger.ErrorContext(ctx, "Failed to insert customer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to insert customer: %w", apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Customer inserted successfully", slog.String("customerID", cust.ID.String()))
	return nil
}

func (r *CustomerRepository) Update(ctx context.Context, cust *customer.Customer) (err error) {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}
	defer observe("customer_update", time.Now(), &err)
	r.logger.InfoContext(ctx, "Attempting to update customer", slog.String("customerID", cust.ID.String()))

	query := `
        UPDATE customers
        SET name = $1,
            mobile = $2,
            additional_mobile = NULLIF($3, ''),
            email = NULLIF($4, ''),
            address = NULLIF($5, ''),
            father_name = NULLIF($6, ''),
            mother_name = NULLIF($7, ''),
            aadhar_number = NULLIF($8, ''),
            pan_number = NULLIF($9, ''),
            documents = $10,
            status = $11,
            updated_at = NOW()
        WHERE id = $12`

	cmdTag, err := r.db.Exec(ctx, query,
		cust.Name, cust.Mobile, cust.AdditionalMobile, cust.Email, cust.Address, cust.FatherName,
		cust.MotherName, cust.AadhaarNumber, cust.PANNumber, cust.Documents, cust.Status, cust.ID,
	)
	if err != nil {
		translated := translateDBError(err, r.logger)
		if errors.Is(translated, apperrors.ErrAlreadyExists) {
			r.logger.WarnContext(ctx, "Failed to update customer due to unique constraint violation", slog.Any("error", err))
			return translated
		}
		r.logger.ErrorContext(ctx, "Failed to update customer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to update customer: %w", apperrors.ErrDatabase, err)
	}

	if cmdTag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "Update affected zero rows, customer likely not found")
		return apperrors.ErrNotFound
	}

	r.logger.InfoContext(ctx, "Customer updated successfully")
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID uuid.UUID) (*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	return r.findOne(ctx, "customer_find_by_id", query, customerID)
}

func (r *CustomerRepository) FindByMobile(ctx context.Context, mobile string) (*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE mobile = $1`
	return r.findOne(ctx, "customer_find_by_mobile", query, mobile)
}

func (r *CustomerRepository) findOne(ctx context.Context, name, query string, arg any) (c *customer.Customer, err error) {
	defer observe(name, time.Now(), &err)

	c, err = scanCustomer(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.DebugContext(ctx, "Customer not found", slog.String("query", name))
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query/scan customer", slog.String("query", name), slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get customer: %w", apperrors.ErrDatabase, err)
	}
	return c, nil
}

func customerFilterClause(filter customer.ListFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.Query != "" {
		args = append(args, likePattern(filter.Query))
		conds = append(conds, strings.ReplaceAll(`(LOWER(name) LIKE $n ESCAPE '\' OR mobile LIKE $n ESCAPE '\'`+
			` OR LOWER(COALESCE(pan_number, '')) LIKE $n ESCAPE '\' OR LOWER(COALESCE(email, '')) LIKE $n ESCAPE '\')`,
			"$n", fmt.Sprintf("$%d", len(args))))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *CustomerRepository) List(ctx context.Context, filter customer.ListFilter) (customers []*customer.Customer, total int, err error) {
	defer observe("customer_list", time.Now(), &err)

	where, args := customerFilterClause(filter)

	if err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM customers`+where, args...).Scan(&total); err != nil {
		r.logger.ErrorContext(ctx, "Failed to count customers", slog.Any("error", err))
		return nil, 0, fmt.Errorf("%w: failed to count customers: %w", apperrors.ErrDatabase, err)
	}

	args = append(args, filter.PerPage, filter.Offset())
	query := `SELECT ` + customerColumns + ` FROM customers` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query customers", slog.Any("error", err))
		return nil, 0, fmt.Errorf("%w: failed to query customers: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	customers = make([]*customer.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan customer row", slog.Any("error", err))
			return nil, 0, fmt.Errorf("%w: failed to scan customer row: %w", apperrors.ErrDatabase, err)
		}
		customers = append(customers, c)
	}
	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating customer rows", slog.Any("error", err))
		return nil, 0, fmt.Errorf("%w: error iterating customer rows: %w", apperrors.ErrDatabase, err)
	}

	r.logger.DebugContext(ctx, "Finished listing customers", slog.Int("count", len(customers)), slog.Int("total", total))
	return customers, total, nil
}

func (r *CustomerRepository) CountOpenLoans(ctx context.Context, customerID uuid.UUID) (n int, err error) {
	defer observe("customer_count_open_loans", time.Now(), &err)

	query := `SELECT COUNT(*) FROM loans WHERE customer_id = $1 AND status IN ('active', 'overdue')`
	if err = r.db.QueryRow(ctx, query, customerID).Scan(&n); err != nil {
		r.logger.ErrorContext(ctx, "Failed to count open loans", slog.Any("error", err))
		return 0, fmt.Errorf("%w: failed to count open loans: %w", apperrors.ErrDatabase, err)
	}
	return n, nil
}
