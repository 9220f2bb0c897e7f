package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/O-G-W-A-L/alx-backend-graphql-crm/internal/domain"
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

func (r *orderRepository) Create(order domain.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer_id, total_amount, order_date)
		VALUES ($1,$2,$3,$4)
	`,
		order.ID, order.CustomerID, order.TotalAmount, order.OrderDate,
	)
	if err != nil {
		if isUniqueViolation(err, "orders_pkey") {
			return domain.ErrOrderExists
		}
		return fmt.Errorf("insert order: %w", err)
	}

	// Позиция фиксирует порядок товаров, в котором их выбрал клиент.
	// Повторы одного product_id схлопываются в одну связь.
	for i, product := range order.Products {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO order_products (order_id, product_id, position)
			VALUES ($1,$2,$3)
			ON CONFLICT (order_id, product_id) DO NOTHING
		`, order.ID, product.ID, i); err != nil {
			return fmt.Errorf("insert order product: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create order: %w", err)
	}

	return nil
}

func (r *orderRepository) Get(id string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var order domain.Order
	err := r.db.QueryRowContext(ctx, `
		SELECT id, customer_id, total_amount, order_date
		FROM orders
		WHERE id = $1
	`, id).Scan(
		&order.ID, &order.CustomerID, &order.TotalAmount, &order.OrderDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}

	products, err := r.loadProducts(ctx, order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Products = products

	return order, nil
}

func (r *orderRepository) List(filter domain.OrderFilter) ([]domain.Order, error) {
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

	if filter.TotalAmountGte != nil {
		addCondition("o.total_amount >= $%d", *filter.TotalAmountGte)
	}
	if filter.TotalAmountLte != nil {
		addCondition("o.total_amount <= $%d", *filter.TotalAmountLte)
	}
	if filter.OrderDateGte != nil {
		addCondition("o.order_date >= $%d", *filter.OrderDateGte)
	}
	if filter.OrderDateLte != nil {
		addCondition("o.order_date <= $%d", *filter.OrderDateLte)
	}
	if filter.CustomerNameContains != "" {
		addCondition("c.name ILIKE '%%' || $%d || '%%'", filter.CustomerNameContains)
	}
	if filter.ProductNameContains != "" {
		addCondition(`EXISTS (
			SELECT 1 FROM order_products op
			JOIN products p ON p.id = op.product_id
			WHERE op.order_id = o.id AND p.name ILIKE '%%' || $%d || '%%'
		)`, filter.ProductNameContains)
	}
	if filter.ProductID != "" {
		addCondition(`EXISTS (
			SELECT 1 FROM order_products op
			WHERE op.order_id = o.id AND op.product_id::TEXT = $%d
		)`, filter.ProductID)
	}

	query := `
		SELECT o.id, o.customer_id, o.total_amount, o.order_date
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY " + orderOrderClause(domain.ParseOrderBy(filter.OrderBy))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID, &order.CustomerID, &order.TotalAmount, &order.OrderDate,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	for i := range orders {
		products, err := r.loadProducts(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Products = products
	}

	return orders, nil
}

func (r *orderRepository) loadProducts(ctx context.Context, orderID string) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.price, p.stock, p.created_at
		FROM order_products op
		JOIN products p ON p.id = op.product_id
		WHERE op.order_id = $1
		ORDER BY op.position
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(
			&product.ID, &product.Name, &product.Price, &product.Stock, &product.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order products: %w", err)
	}

	return products, nil
}

func orderOrderClause(spec domain.SortSpec) string {
	column := "o.order_date"
	switch spec.Field {
	case "totalAmount":
		column = "o.total_amount"
	case "orderDate":
		column = "o.order_date"
	}
	direction := "ASC"
	if spec.Desc {
		direction = "DESC"
	}
	return fmt.Sprintf("%s %s, o.id %s", column, direction, direction)
}

var _ domain.OrderRepository = (*orderRepository)(nil)
