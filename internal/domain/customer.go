package domain

import (
	"regexp"
	"strings"
	"time"
)

// emailPattern — нестрогая проверка формата: локальная часть, @, домен с точкой.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Customer — запись клиента CRM. Email уникален глобально, Phone опционален.
type Customer struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
}

// ValidateInvariants проверяет базовые инварианты клиента и возвращает список замечаний.
// Уникальность email проверяется уровнем выше, против хранилища.
func (c *Customer) ValidateInvariants() []error {
	var errs []error

	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, ErrNameRequired)
	}
	switch {
	case strings.TrimSpace(c.Email) == "":
		errs = append(errs, ErrEmailRequired)
	case !emailPattern.MatchString(c.Email):
		errs = append(errs, ErrEmailInvalid)
	}

	return errs
}
