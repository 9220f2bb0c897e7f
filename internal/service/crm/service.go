// Package crm реализует мутационный пайплайн CRM: валидация входа,
// проверка уникальности, запись в хранилище и постановка событий в outbox.
package crm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/O-G-W-A-L/alx-backend-graphql-crm/internal/domain"
	"github.com/O-G-W-A-L/alx-backend-graphql-crm/internal/metrics"
)

// Имена мутаций для метрик и логов.
const (
	mutationCreateCustomer      = "createCustomer"
	mutationBulkCreateCustomers = "bulkCreateCustomers"
	mutationCreateProduct       = "createProduct"
	mutationCreateOrder         = "createOrder"
)

// Типы событий, попадающих в outbox.
const (
	EventTypeCustomerCreated = "customer.created"
	EventTypeProductCreated  = "product.created"
	EventTypeOrderCreated    = "order.created"
)

// CustomerCreatedMessage — подтверждение успешного создания клиента.
const CustomerCreatedMessage = "Customer created successfully."

// CustomerInput — входные данные одиночного и bulk-создания клиента.
type CustomerInput struct {
	Name  string
	Email string
	Phone string
}

// ProductInput — входные данные создания товара. Цена принимается строкой,
// чтобы число и числовая строка обрабатывались одинаково и без потери точности.
type ProductInput struct {
	Name  string
	Price string
	Stock *int32
}

// OrderInput — входные данные создания заказа.
type OrderInput struct {
	CustomerID string
	ProductIDs []string
}

// BulkCustomersResult — результат bulk-создания: созданные клиенты в порядке
// валидации и ошибки по забракованным строкам. Ошибки несут 1-базный индекс
// исходной строки; список клиентов с индексами не коррелирует.
type BulkCustomersResult struct {
	Customers []domain.Customer
	Errors    []string
}

// Options задаёт необязательные зависимости сервиса.
type Options struct {
	Logger  *log.Entry
	Outbox  domain.OutboxRepository
	Metrics *metrics.MutationMetrics
	Clock   func() time.Time
}

// Option настраивает Service.
type Option func(*Options)

// WithLogger задаёт logger сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithOutbox включает постановку событий в transactional outbox.
func WithOutbox(outbox domain.OutboxRepository) Option {
	return func(opts *Options) {
		opts.Outbox = outbox
	}
}

// WithMetrics включает Prometheus-метрики мутаций.
func WithMetrics(m *metrics.MutationMetrics) Option {
	return func(opts *Options) {
		opts.Metrics = m
	}
}

// WithClock подменяет источник времени (используется в тестах).
func WithClock(clock func() time.Time) Option {
	return func(opts *Options) {
		opts.Clock = clock
	}
}

// Service — мутационный пайплайн над репозиториями трёх сущностей.
type Service struct {
	customers domain.CustomerRepository
	products  domain.ProductRepository
	orders    domain.OrderRepository
	outbox    domain.OutboxRepository
	metrics   *metrics.MutationMetrics
	logger    *log.Entry
	now       func() time.Time
}

// NewService конструирует сервис с зависимостями.
func NewService(
	customers domain.CustomerRepository,
	products domain.ProductRepository,
	orders domain.OrderRepository,
	options ...Option,
) *Service {
	opts := Options{}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "crm-service")
	}
	clock := opts.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}

	return &Service{
		customers: customers,
		products:  products,
		orders:    orders,
		outbox:    opts.Outbox,
		metrics:   opts.Metrics,
		logger:    logger,
		now:       clock,
	}
}

// CreateCustomer валидирует и сохраняет одного клиента.
// Занятый email — ConflictError, нарушенные инварианты — ValidationError.
func (s *Service) CreateCustomer(ctx context.Context, input CustomerInput) (customer domain.Customer, message string, err error) {
	start := time.Now()
	defer func() { s.metrics.RecordMutation(mutationCreateCustomer, start, err) }()

	customer, err = s.validateCustomer(input)
	if err != nil {
		// Одиночная мутация отвечает фиксированным сообщением о конфликте,
		// bulk-вариант — "Duplicate email: ..." с конкретным адресом.
		if domain.IsConflict(err) {
			err = domain.ErrEmailExists
		}
		return domain.Customer{}, "", err
	}

	if err = s.customers.Create(customer); err != nil {
		// Запись могла проиграть гонку после проверки существования:
		// уникальный индекс хранилища закрывает её, переводим в ConflictError.
		if domain.IsConflict(err) {
			return domain.Customer{}, "", domain.ErrEmailExists
		}
		s.logger.WithError(err).Error("failed to create customer")
		return domain.Customer{}, "", fmt.Errorf("create customer: %w", err)
	}

	s.enqueueEvent(ctx, "customer", customer.ID, EventTypeCustomerCreated, customerEventPayload(customer))
	return customer, CustomerCreatedMessage, nil
}

// BulkCreateCustomers обрабатывает пачку строк в режиме best-effort:
// забракованная строка получает ошибку с 1-базным индексом и не мешает
// остальным, прошедшие валидацию сохраняются одной bulk-операцией.
func (s *Service) BulkCreateCustomers(ctx context.Context, inputs []CustomerInput) (result BulkCustomersResult, err error) {
	start := time.Now()
	defer func() { s.metrics.RecordMutation(mutationBulkCreateCustomers, start, err) }()

	valid := make([]domain.Customer, 0, len(inputs))
	errs := make([]string, 0)

	for index, input := range inputs {
		customer, rowErr := s.validateCustomer(input)
		if rowErr != nil {
			errs = append(errs, fmt.Sprintf("Entry %d: %s", index+1, rowErr.Error()))
			continue
		}
		valid = append(valid, customer)
	}

	created, err := s.customers.BulkCreate(valid)
	if err != nil {
		s.logger.WithError(err).Error("bulk create customers failed")
		return BulkCustomersResult{}, fmt.Errorf("bulk create customers: %w", err)
	}

	for _, customer := range created {
		s.enqueueEvent(ctx, "customer", customer.ID, EventTypeCustomerCreated, customerEventPayload(customer))
	}

	s.metrics.RecordBulkBatch(len(inputs), len(errs))
	s.logger.WithFields(log.Fields{
		"batch_size": len(inputs),
		"created":    len(created),
		"rejected":   len(errs),
	}).Info("bulk customers processed")

	return BulkCustomersResult{Customers: created, Errors: errs}, nil
}

// validateCustomer строит клиента из входа и прогоняет проверки:
// сначала уникальность email против хранилища (как в одиночной мутации),
// затем инварианты полей.
func (s *Service) validateCustomer(input CustomerInput) (domain.Customer, error) {
	email := strings.TrimSpace(input.Email)
	if email != "" {
		exists, err := s.customers.ExistsByEmail(email)
		if err != nil {
			return domain.Customer{}, fmt.Errorf("check email uniqueness: %w", err)
		}
		if exists {
			return domain.Customer{}, domain.NewConflictError(fmt.Sprintf("Duplicate email: %s", email))
		}
	}

	customer := domain.Customer{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(input.Name),
		Email:     email,
		Phone:     strings.TrimSpace(input.Phone),
		CreatedAt: s.now(),
	}
	if errs := customer.ValidateInvariants(); len(errs) > 0 {
		return domain.Customer{}, joinValidationErrors(errs)
	}
	return customer, nil
}

// CreateProduct валидирует вход в фиксированном порядке (парсинг цены,
// положительность, неотрицательный остаток), нормализует цену до двух знаков
// по правилу round-half-up и сохраняет товар.
func (s *Service) CreateProduct(ctx context.Context, input ProductInput) (product domain.Product, err error) {
	start := time.Now()
	defer func() { s.metrics.RecordMutation(mutationCreateProduct, start, err) }()

	price, parseErr := decimal.NewFromString(strings.TrimSpace(input.Price))
	if parseErr != nil {
		return domain.Product{}, domain.ErrPriceNotNumeric
	}
	if !price.IsPositive() {
		return domain.Product{}, domain.ErrPriceNotPositive
	}

	var stock int32
	if input.Stock != nil {
		if *input.Stock < 0 {
			return domain.Product{}, domain.ErrStockNegative
		}
		stock = *input.Stock
	}

	product = domain.Product{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(input.Name),
		Price:     domain.NormalizePrice(price),
		Stock:     stock,
		CreatedAt: s.now(),
	}
	if errs := product.ValidateInvariants(); len(errs) > 0 {
		return domain.Product{}, joinValidationErrors(errs)
	}

	if err = s.products.Create(product); err != nil {
		s.logger.WithError(err).Error("failed to create product")
		return domain.Product{}, fmt.Errorf("create product: %w", err)
	}

	s.enqueueEvent(ctx, "product", product.ID, EventTypeProductCreated, productEventPayload(product))
	return product, nil
}

// CreateOrder разрешает клиента и товары, считает сумму как decimal и
// сохраняет заказ вместе со связями атомарно. Любая неразрешённая ссылка
// отменяет операцию целиком — частичных заказов не бывает.
func (s *Service) CreateOrder(ctx context.Context, input OrderInput) (order domain.Order, err error) {
	start := time.Now()
	defer func() { s.metrics.RecordMutation(mutationCreateOrder, start, err) }()

	if _, err = s.customers.Get(input.CustomerID); err != nil {
		if domain.IsNotFound(err) {
			return domain.Order{}, domain.NewNotFoundError("Invalid customer ID")
		}
		return domain.Order{}, fmt.Errorf("resolve customer: %w", err)
	}

	if len(input.ProductIDs) == 0 {
		return domain.Order{}, domain.ErrOrderProductsRequired
	}

	// Повторы в productIds схлопываются: заказ хранит множество товаров,
	// каждый товар входит в сумму один раз.
	productIDs := dedupeIDs(input.ProductIDs)

	products := make([]domain.Product, 0, len(productIDs))
	for _, productID := range productIDs {
		product, lookupErr := s.products.Get(productID)
		if lookupErr != nil {
			if domain.IsNotFound(lookupErr) {
				return domain.Order{}, domain.NewNotFoundError(fmt.Sprintf("Invalid product ID: %s", productID))
			}
			return domain.Order{}, fmt.Errorf("resolve product %s: %w", productID, lookupErr)
		}
		products = append(products, product)
	}

	order = domain.Order{
		ID:          uuid.NewString(),
		CustomerID:  input.CustomerID,
		Products:    products,
		TotalAmount: domain.TotalOf(products),
		OrderDate:   s.now(),
	}
	if errs := order.ValidateInvariants(); len(errs) > 0 {
		return domain.Order{}, joinValidationErrors(errs)
	}

	if err = s.orders.Create(order); err != nil {
		s.logger.WithError(err).Error("failed to create order")
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}

	s.enqueueEvent(ctx, "order", order.ID, EventTypeOrderCreated, orderEventPayload(order))
	return order, nil
}

// ListCustomers — read-фасад над репозиторием клиентов.
func (s *Service) ListCustomers(_ context.Context, filter domain.CustomerFilter) ([]domain.Customer, error) {
	return s.customers.List(filter)
}

// ListProducts — read-фасад над репозиторием товаров.
func (s *Service) ListProducts(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return s.products.List(filter)
}

// ListOrders — read-фасад над репозиторием заказов.
func (s *Service) ListOrders(_ context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	return s.orders.List(filter)
}

// GetCustomer возвращает клиента по идентификатору.
func (s *Service) GetCustomer(_ context.Context, id string) (domain.Customer, error) {
	return s.customers.Get(id)
}

// GetProduct возвращает товар по идентификатору.
func (s *Service) GetProduct(_ context.Context, id string) (domain.Product, error) {
	return s.products.Get(id)
}

// GetOrder возвращает заказ вместе с его товарами.
func (s *Service) GetOrder(_ context.Context, id string) (domain.Order, error) {
	return s.orders.Get(id)
}

// enqueueEvent ставит событие в outbox. Сбой почтового контура мутацию
// не валит: событие теряется, инцидент остаётся в логе.
func (s *Service) enqueueEvent(_ context.Context, aggregateType, aggregateID, eventType string, payload any) {
	if s.outbox == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.WithError(err).WithField("event_type", eventType).Warn("failed to marshal event payload")
		return
	}

	msg := domain.OutboxMessage{
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       data,
	}
	if _, err := s.outbox.Enqueue(msg); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"event_type":   eventType,
			"aggregate_id": aggregateID,
		}).Warn("failed to enqueue outbox event")
	}
}

// dedupeIDs убирает повторы, сохраняя порядок первых вхождений.
func dedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

// joinValidationErrors сводит список нарушений в одну доменную ошибку,
// сохраняя вид первой и объединяя сообщения и поля.
func joinValidationErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}

	messages := make([]string, 0, len(errs))
	fields := make([]string, 0, len(errs))
	kind := domain.KindValidation
	for i, err := range errs {
		messages = append(messages, err.Error())
		var de *domain.Error
		if errors.As(err, &de) {
			if i == 0 {
				kind = de.Kind
			}
			fields = append(fields, de.Fields...)
		}
	}
	return &domain.Error{Kind: kind, Message: strings.Join(messages, "; "), Fields: fields}
}

type customerPayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type productPayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     string    `json:"price"`
	Stock     int32     `json:"stock"`
	CreatedAt time.Time `json:"created_at"`
}

type orderPayload struct {
	ID          string    `json:"id"`
	CustomerID  string    `json:"customer_id"`
	ProductIDs  []string  `json:"product_ids"`
	TotalAmount string    `json:"total_amount"`
	OrderDate   time.Time `json:"order_date"`
}

func customerEventPayload(c domain.Customer) customerPayload {
	return customerPayload{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone, CreatedAt: c.CreatedAt}
}

func productEventPayload(p domain.Product) productPayload {
	return productPayload{ID: p.ID, Name: p.Name, Price: p.Price.StringFixed(2), Stock: p.Stock, CreatedAt: p.CreatedAt}
}

func orderEventPayload(o domain.Order) orderPayload {
	return orderPayload{
		ID:          o.ID,
		CustomerID:  o.CustomerID,
		ProductIDs:  o.ProductIDs(),
		TotalAmount: o.TotalAmount.StringFixed(2),
		OrderDate:   o.OrderDate,
	}
}
