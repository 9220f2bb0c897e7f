package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SortSpec — поле сортировки с направлением. Префикс "-" в пользовательском
// вводе означает сортировку по убыванию.
type SortSpec struct {
	Field string
	Desc  bool
}

// ParseOrderBy разбирает строку вида "name" или "-createdAt" в SortSpec.
func ParseOrderBy(orderBy string) SortSpec {
	orderBy = strings.TrimSpace(orderBy)
	if strings.HasPrefix(orderBy, "-") {
		return SortSpec{Field: orderBy[1:], Desc: true}
	}
	return SortSpec{Field: orderBy}
}

// CustomerFilter — предикаты выборки клиентов. Пустые/nil поля не участвуют.
type CustomerFilter struct {
	NameContains  string
	EmailContains string
	CreatedAtGte  *time.Time
	CreatedAtLte  *time.Time
	PhonePrefix   string
	OrderBy       string
}

// Matches проверяет клиента против всех заданных предикатов.
func (f CustomerFilter) Matches(c Customer) bool {
	if f.NameContains != "" && !containsFold(c.Name, f.NameContains) {
		return false
	}
	if f.EmailContains != "" && !containsFold(c.Email, f.EmailContains) {
		return false
	}
	if f.CreatedAtGte != nil && c.CreatedAt.Before(*f.CreatedAtGte) {
		return false
	}
	if f.CreatedAtLte != nil && c.CreatedAt.After(*f.CreatedAtLte) {
		return false
	}
	if f.PhonePrefix != "" && !strings.HasPrefix(c.Phone, f.PhonePrefix) {
		return false
	}
	return true
}

// ProductFilter — предикаты выборки товаров.
type ProductFilter struct {
	NameContains string
	PriceGte     *decimal.Decimal
	PriceLte     *decimal.Decimal
	StockGte     *int32
	StockLte     *int32
	OrderBy      string
}

// Matches проверяет товар против всех заданных предикатов.
func (f ProductFilter) Matches(p Product) bool {
	if f.NameContains != "" && !containsFold(p.Name, f.NameContains) {
		return false
	}
	if f.PriceGte != nil && p.Price.LessThan(*f.PriceGte) {
		return false
	}
	if f.PriceLte != nil && p.Price.GreaterThan(*f.PriceLte) {
		return false
	}
	if f.StockGte != nil && p.Stock < *f.StockGte {
		return false
	}
	if f.StockLte != nil && p.Stock > *f.StockLte {
		return false
	}
	return true
}

// OrderFilter — предикаты выборки заказов. Предикат по имени клиента требует
// разрешённое имя, поэтому Matches принимает его отдельным аргументом.
type OrderFilter struct {
	TotalAmountGte       *decimal.Decimal
	TotalAmountLte       *decimal.Decimal
	OrderDateGte         *time.Time
	OrderDateLte         *time.Time
	CustomerNameContains string
	ProductNameContains  string
	ProductID            string
	OrderBy              string
}

// Matches проверяет заказ против всех заданных предикатов.
func (f OrderFilter) Matches(o Order, customerName string) bool {
	if f.TotalAmountGte != nil && o.TotalAmount.LessThan(*f.TotalAmountGte) {
		return false
	}
	if f.TotalAmountLte != nil && o.TotalAmount.GreaterThan(*f.TotalAmountLte) {
		return false
	}
	if f.OrderDateGte != nil && o.OrderDate.Before(*f.OrderDateGte) {
		return false
	}
	if f.OrderDateLte != nil && o.OrderDate.After(*f.OrderDateLte) {
		return false
	}
	if f.CustomerNameContains != "" && !containsFold(customerName, f.CustomerNameContains) {
		return false
	}
	if f.ProductNameContains != "" {
		found := false
		for _, p := range o.Products {
			if containsFold(p.Name, f.ProductNameContains) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.ProductID != "" {
		found := false
		for _, p := range o.Products {
			if p.ID == f.ProductID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// containsFold — регистронезависимый substring-поиск (аналог icontains).
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
