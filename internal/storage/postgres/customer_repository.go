package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/O-G-W-A-L/alx-backend-graphql-crm/internal/domain"
)

const (
	opTimeout = 5 * time.Second
)

type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository создаёт PostgreSQL-реализацию CustomerRepository.
func NewCustomerRepository(store *Store) domain.CustomerRepository {
	return &customerRepository{db: store.DB()}
}

func (r *customerRepository) Create(customer domain.Customer) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO customers (id, name, email, phone, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`,
		customer.ID, customer.Name, customer.Email, customer.Phone, customer.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "customers_email_lower_key") {
			return domain.ErrEmailExists
		}
		if isUniqueViolation(err, "customers_pkey") {
			return domain.ErrCustomerExists
		}
		return fmt.Errorf("insert customer: %w", err)
	}

	return nil
}

func (r *customerRepository) BulkCreate(customers []domain.Customer) ([]domain.Customer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if len(customers) == 0 {
		return []domain.Customer{}, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// ON CONFLICT DO NOTHING: строки, проигравшие гонку по email,
	// молча пропускаются, как того требует контракт BulkCreate.
	inserted := make([]domain.Customer, 0, len(customers))
	for _, customer := range customers {
		var id string
		scanErr := tx.QueryRowContext(ctx, `
			INSERT INTO customers (id, name, email, phone, created_at)
			VALUES ($1,$2,$3,$4,$5)
			ON CONFLICT DO NOTHING
			RETURNING id
		`,
			customer.ID, customer.Name, customer.Email, customer.Phone, customer.CreatedAt,
		).Scan(&id)
		if scanErr != nil {
			if errors.Is(scanErr, sql.ErrNoRows) {
				continue
			}
			err = fmt.Errorf("bulk insert customer: %w", scanErr)
			return nil, err
		}
		inserted = append(inserted, customer)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit bulk create customers: %w", err)
	}

	return inserted, nil
}

func (r *customerRepository) Get(id string) (domain.Customer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var customer domain.Customer
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, created_at
		FROM customers
		WHERE id = $1
	`, id).Scan(
		&customer.ID, &customer.Name, &customer.Email, &customer.Phone, &customer.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, fmt.Errorf("select customer: %w", err)
	}

	return customer, nil
}

func (r *customerRepository) ExistsByEmail(email string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM customers WHERE LOWER(email) = LOWER($1)
		)
	`, strings.TrimSpace(email)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check customer email: %w", err)
	}

	return exists, nil
}

func (r *customerRepository) List(filter domain.CustomerFilter) ([]domain.Customer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		conditions []string
		args       []any
	)
	addCondition := func(condition string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	if filter.NameContains != "" {
		addCondition("name ILIKE '%%' || $%d || '%%'", filter.NameContains)
	}
	if filter.EmailContains != "" {
		addCondition("email ILIKE '%%' || $%d || '%%'", filter.EmailContains)
	}
	if filter.CreatedAtGte != nil {
		addCondition("created_at >= $%d", *filter.CreatedAtGte)
	}
	if filter.CreatedAtLte != nil {
		addCondition("created_at <= $%d", *filter.CreatedAtLte)
	}
	if filter.PhonePrefix != "" {
		addCondition("phone LIKE $%d || '%%'", filter.PhonePrefix)
	}

	query := `SELECT id, name, email, phone, created_at FROM customers`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY " + customerOrderClause(domain.ParseOrderBy(filter.OrderBy))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0)
	for rows.Next() {
		var customer domain.Customer
		if err := rows.Scan(
			&customer.ID, &customer.Name, &customer.Email, &customer.Phone, &customer.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan customer row: %w", err)
		}
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customer rows: %w", err)
	}

	return customers, nil
}

// customerOrderClause сопоставляет поле сортировки со столбцом по белому
// списку, чтобы пользовательский ввод не попадал в SQL напрямую.
func customerOrderClause(spec domain.SortSpec) string {
	column := "created_at"
	switch spec.Field {
	case "name":
		column = "name"
	case "email":
		column = "email"
	}
	direction := "ASC"
	if spec.Desc {
		direction = "DESC"
	}
	return fmt.Sprintf("%s %s, id %s", column, direction, direction)
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && (constraint == "" || pgErr.ConstraintName == constraint)
	}
	return false
}

var _ domain.CustomerRepository = (*customerRepository)(nil)
