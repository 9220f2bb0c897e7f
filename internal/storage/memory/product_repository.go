package memory

import (
	"sort"
	"sync"

	"github.com/O-G-W-A-L/alx-backend-graphql-crm/internal/domain"
)

// productRepositoryInMemory — простая in-memory реализация ProductRepository.
type productRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Product
}

// NewProductRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewProductRepository() domain.ProductRepository {
	return &productRepositoryInMemory{
		items: make(map[string]domain.Product),
	}
}

// Create сохраняет новый товар, если ID ещё не занят.
func (r *productRepositoryInMemory) Create(product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[product.ID]; exists {
		return domain.ErrProductExists
	}
	r.items[product.ID] = product
	return nil
}

// Get возвращает товар или ErrProductNotFound, если его нет.
func (r *productRepositoryInMemory) Get(id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

// List возвращает товары, прошедшие фильтр, с учётом сортировки.
func (r *productRepositoryInMemory) List(filter domain.ProductFilter) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0, len(r.items))
	for _, product := range r.items {
		if !filter.Matches(product) {
			continue
		}
		result = append(result, product)
	}

	sortProducts(result, domain.ParseOrderBy(filter.OrderBy))
	return result, nil
}

func sortProducts(products []domain.Product, spec domain.SortSpec) {
	sort.Slice(products, func(i, j int) bool {
		a, b := products[i], products[j]
		if spec.Desc {
			a, b = b, a
		}
		switch spec.Field {
		case "name":
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		case "price":
			if !a.Price.Equal(b.Price) {
				return a.Price.LessThan(b.Price)
			}
		case "stock":
			if a.Stock != b.Stock {
				return a.Stock < b.Stock
			}
		default: // createdAt
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		}
		return a.ID < b.ID
	})
}

var _ domain.ProductRepository = (*productRepositoryInMemory)(nil)
