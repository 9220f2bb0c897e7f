package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/O-G-W-A-L/alx-backend-graphql-crm/internal/domain"
)

// customerRepositoryInMemory — простая in-memory реализация CustomerRepository.
type customerRepositoryInMemory struct {
	mu      sync.RWMutex
	items   map[string]domain.Customer
	byEmail map[string]string
}

// NewCustomerRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewCustomerRepository() domain.CustomerRepository {
	return &customerRepositoryInMemory{
		items:   make(map[string]domain.Customer),
		byEmail: make(map[string]string),
	}
}

// Create сохраняет нового клиента, если ID и email ещё не заняты.
func (r *customerRepositoryInMemory) Create(customer domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[customer.ID]; exists {
		return domain.ErrCustomerExists
	}
	if _, taken := r.byEmail[normalizeEmail(customer.Email)]; taken {
		return domain.ErrEmailExists
	}
	r.items[customer.ID] = customer
	r.byEmail[normalizeEmail(customer.Email)] = customer.ID
	return nil
}

// BulkCreate вставляет пачку под одной блокировкой. Строки, чей email занят
// на момент вставки, пропускаются — возвращаются только реально вставленные.
func (r *customerRepositoryInMemory) BulkCreate(customers []domain.Customer) ([]domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := make([]domain.Customer, 0, len(customers))
	for _, customer := range customers {
		if _, exists := r.items[customer.ID]; exists {
			continue
		}
		if _, taken := r.byEmail[normalizeEmail(customer.Email)]; taken {
			continue
		}
		r.items[customer.ID] = customer
		r.byEmail[normalizeEmail(customer.Email)] = customer.ID
		created = append(created, customer)
	}
	return created, nil
}

// Get возвращает клиента или ErrCustomerNotFound, если его нет.
func (r *customerRepositoryInMemory) Get(id string) (domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customer, ok := r.items[id]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return customer, nil
}

// ExistsByEmail проверяет занятость email без учёта регистра.
func (r *customerRepositoryInMemory) ExistsByEmail(email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, taken := r.byEmail[normalizeEmail(email)]
	return taken, nil
}

// List возвращает клиентов, прошедших фильтр, с учётом сортировки.
func (r *customerRepositoryInMemory) List(filter domain.CustomerFilter) ([]domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Customer, 0, len(r.items))
	for _, customer := range r.items {
		if !filter.Matches(customer) {
			continue
		}
		result = append(result, customer)
	}

	sortCustomers(result, domain.ParseOrderBy(filter.OrderBy))
	return result, nil
}

func sortCustomers(customers []domain.Customer, spec domain.SortSpec) {
	sort.Slice(customers, func(i, j int) bool {
		a, b := customers[i], customers[j]
		if spec.Desc {
			a, b = b, a
		}
		switch spec.Field {
		case "name":
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		case "email":
			if a.Email != b.Email {
				return a.Email < b.Email
			}
		default: // createdAt
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		}
		return a.ID < b.ID
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ domain.CustomerRepository = (*customerRepositoryInMemory)(nil)
