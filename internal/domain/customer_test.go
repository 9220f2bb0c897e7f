package domain_test

import (
	"testing"
	"time"

	"github.com/O-G-W-A-L/alx-backend-graphql-crm/internal/domain"
)

// helper для создания валидного клиента.
func makeCustomer() domain.Customer {
	return domain.Customer{
		ID:        "customer-1",
		Name:      "Alice",
		Email:     "alice@example.com",
		Phone:     "+1234567890",
		CreatedAt: time.Now().UTC(),
	}
}

func TestCustomerValidateInvariants_Ok(t *testing.T) {
	customer := makeCustomer()
	if errs := customer.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}
}

func TestCustomerValidateInvariants_PhoneOptional(t *testing.T) {
	customer := makeCustomer()
	customer.Phone = ""
	if errs := customer.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("phone is optional, got %v", errs)
	}
}

func TestCustomerValidateInvariants_Errors(t *testing.T) {
	cases := []struct {
		name string
		mut  func(c *domain.Customer)
		want error
	}{
		{
			name: "empty name",
			mut: func(c *domain.Customer) {
				c.Name = "   "
			},
			want: domain.ErrNameRequired,
		},
		{
			name: "empty email",
			mut: func(c *domain.Customer) {
				c.Email = ""
			},
			want: domain.ErrEmailRequired,
		},
		{
			name: "malformed email",
			mut: func(c *domain.Customer) {
				c.Email = "not-an-email"
			},
			want: domain.ErrEmailInvalid,
		},
		{
			name: "email without domain dot",
			mut: func(c *domain.Customer) {
				c.Email = "alice@localhost"
			},
			want: domain.ErrEmailInvalid,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			customer := makeCustomer()
			tc.mut(&customer)

			errs := customer.ValidateInvariants()
			if len(errs) == 0 {
				t.Fatal("expected validation errors, got none")
			}
			found := false
			for _, err := range errs {
				if err == tc.want {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected %v among %v", tc.want, errs)
			}
		})
	}
}
