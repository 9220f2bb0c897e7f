package domain

// CustomerRepository описывает требования к хранилищу клиентов.
type CustomerRepository interface {
	// Create сохраняет нового клиента. Возвращает ErrEmailExists при занятом
	// email и ErrCustomerExists при занятом ID.
	Create(customer Customer) error
	// BulkCreate сохраняет пачку клиентов одной операцией и возвращает
	// фактически вставленные записи. Строки, проигравшие гонку по email
	// на момент вставки, молча пропускаются.
	BulkCreate(customers []Customer) ([]Customer, error)
	// Get возвращает клиента по идентификатору или ErrCustomerNotFound.
	Get(id string) (Customer, error)
	// ExistsByEmail проверяет, занят ли email.
	ExistsByEmail(email string) (bool, error)
	// List возвращает клиентов по фильтру с учётом сортировки.
	List(filter CustomerFilter) ([]Customer, error)
}

// ProductRepository описывает требования к хранилищу товаров.
type ProductRepository interface {
	// Create сохраняет новый товар. Возвращает ErrProductExists при занятом ID.
	Create(product Product) error
	// Get возвращает товар по идентификатору или ErrProductNotFound.
	Get(id string) (Product, error)
	// List возвращает товары по фильтру с учётом сортировки.
	List(filter ProductFilter) ([]Product, error)
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет заказ вместе со связями заказ-товар атомарно:
	// наружу они становятся видны только вместе.
	Create(order Order) error
	// Get возвращает заказ с его товарами или ErrOrderNotFound.
	Get(id string) (Order, error)
	// List возвращает заказы по фильтру с учётом сортировки.
	List(filter OrderFilter) ([]Order, error)
}
