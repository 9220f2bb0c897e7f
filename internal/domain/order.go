package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order агрегирует заказ и его разрешённые товары. Набор товаров фиксируется
// при создании и после этого не меняется.
type Order struct {
	ID         string
	CustomerID string
	// Products хранит товары в порядке, в котором их передал клиент.
	Products    []Product
	TotalAmount decimal.Decimal
	OrderDate   time.Time
}

// TotalOf суммирует цены товаров как decimal, без промежуточного float.
func TotalOf(products []Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.Price)
	}
	return total
}

// ProductIDs возвращает идентификаторы товаров заказа в исходном порядке.
func (o *Order) ProductIDs() []string {
	ids := make([]string, 0, len(o.Products))
	for _, p := range o.Products {
		ids = append(ids, p.ID)
	}
	return ids
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerID == "" {
		errs = append(errs, ErrOrderCustomerRequired)
	}
	if len(o.Products) == 0 {
		errs = append(errs, ErrOrderProductsRequired)
	}

	// Сверяем сумму заказа с суммой цен товаров.
	if !o.TotalAmount.Equal(TotalOf(o.Products)) {
		errs = append(errs, ErrOrderTotalMismatch)
	}

	return errs
}
