package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product — товар каталога. Цена хранится как fixed-point decimal с двумя знаками.
type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	Stock     int32
	CreatedAt time.Time
}

// NormalizePrice приводит цену к двум дробным знакам по правилу round-half-up:
// ровно половина округляется от нуля (19.995 -> 20.00). Для положительных цен
// decimal.Round (half away from zero) совпадает с этим правилом.
func NormalizePrice(price decimal.Decimal) decimal.Decimal {
	return price.Round(2)
}

// ValidateInvariants проверяет базовые инварианты товара и возвращает список замечаний.
func (p *Product) ValidateInvariants() []error {
	var errs []error

	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, ErrNameRequired)
	}
	if !p.Price.IsPositive() {
		errs = append(errs, ErrPriceNotPositive)
	}
	if p.Stock < 0 {
		errs = append(errs, ErrStockNegative)
	}

	return errs
}
