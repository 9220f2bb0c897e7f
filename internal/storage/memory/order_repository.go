package memory

import (
	"sort"
	"sync"

	"github.com/O-G-W-A-L/alx-backend-graphql-crm/internal/domain"
)

// orderRepositoryInMemory — простая in-memory реализация OrderRepository.
// Ссылка на репозиторий клиентов нужна фильтру по имени клиента.
type orderRepositoryInMemory struct {
	mu        sync.RWMutex
	items     map[string]domain.Order
	customers domain.CustomerRepository
}

// NewOrderRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewOrderRepository(customers domain.CustomerRepository) domain.OrderRepository {
	return &orderRepositoryInMemory{
		items:     make(map[string]domain.Order),
		customers: customers,
	}
}

// Create сохраняет заказ вместе со связями под одной блокировкой:
// наружу заказ и его товары становятся видны только вместе.
func (r *orderRepositoryInMemory) Create(order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[order.ID]; exists {
		return domain.ErrOrderExists
	}
	// Сохраняем копию набора товаров, чтобы избежать мутаций извне.
	products := make([]domain.Product, len(order.Products))
	copy(products, order.Products)
	order.Products = products
	r.items[order.ID] = order
	return nil
}

// Get возвращает заказ или ErrOrderNotFound, если его нет.
func (r *orderRepositoryInMemory) Get(id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

// List возвращает заказы, прошедшие фильтр, с учётом сортировки.
func (r *orderRepositoryInMemory) List(filter domain.OrderFilter) ([]domain.Order, error) {
	r.mu.RLock()
	orders := make([]domain.Order, 0, len(r.items))
	for _, order := range r.items {
		orders = append(orders, order)
	}
	r.mu.RUnlock()

	result := make([]domain.Order, 0, len(orders))
	for _, order := range orders {
		if !filter.Matches(order, r.customerName(order.CustomerID)) {
			continue
		}
		result = append(result, order)
	}

	sortOrders(result, domain.ParseOrderBy(filter.OrderBy))
	return result, nil
}

// customerName разрешает имя клиента; для осиротевших ссылок возвращает пустую строку.
func (r *orderRepositoryInMemory) customerName(customerID string) string {
	if r.customers == nil {
		return ""
	}
	customer, err := r.customers.Get(customerID)
	if err != nil {
		return ""
	}
	return customer.Name
}

func sortOrders(orders []domain.Order, spec domain.SortSpec) {
	sort.Slice(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]
		if spec.Desc {
			a, b = b, a
		}
		switch spec.Field {
		case "totalAmount":
			if !a.TotalAmount.Equal(b.TotalAmount) {
				return a.TotalAmount.LessThan(b.TotalAmount)
			}
		default: // orderDate
			if !a.OrderDate.Equal(b.OrderDate) {
				return a.OrderDate.Before(b.OrderDate)
			}
		}
		return a.ID < b.ID
	})
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
