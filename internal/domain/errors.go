package domain

import "errors"

// Kind классифицирует ошибки мутаций по таксономии API.
type Kind string

const (
	// KindValidation — некорректное, отсутствующее или выходящее за диапазон поле.
	KindValidation Kind = "validation"
	// KindConflict — нарушение уникальности (например, дубликат email).
	KindConflict Kind = "conflict"
	// KindNotFound — ссылка на несуществующую запись.
	KindNotFound Kind = "not_found"
	// KindTypeMismatch — значение не приводится к ожидаемому типу.
	KindTypeMismatch Kind = "type_mismatch"
)

// Error — структурированная ошибка мутации: вид плюс сообщение для клиента.
// Fields перечисляет проблемные поля, если их удалось определить.
type Error struct {
	Kind    Kind
	Message string
	Fields  []string
}

func (e *Error) Error() string { return e.Message }

// NewValidationError создаёт ошибку валидации с перечнем полей.
func NewValidationError(message string, fields ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// NewConflictError создаёт ошибку нарушения уникальности.
func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NewNotFoundError создаёт ошибку отсутствующей записи.
func NewNotFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// NewTypeMismatchError создаёт ошибку несоответствия типа.
func NewTypeMismatchError(message string) *Error {
	return &Error{Kind: KindTypeMismatch, Message: message}
}

// KindOf возвращает вид доменной ошибки или пустую строку для посторонних ошибок.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsValidation проверяет, относится ли ошибка к KindValidation.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsConflict проверяет, относится ли ошибка к KindConflict.
func IsConflict(err error) bool { return KindOf(err) == KindConflict }

// IsNotFound проверяет, относится ли ошибка к KindNotFound.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsTypeMismatch проверяет, относится ли ошибка к KindTypeMismatch.
func IsTypeMismatch(err error) bool { return KindOf(err) == KindTypeMismatch }

var (
	// Ошибка отсутствующего имени клиента или товара.
	ErrNameRequired = NewValidationError("Name is required", "name")
	// Ошибка отсутствующего email.
	ErrEmailRequired = NewValidationError("Email is required", "email")
	// Ошибка некорректного формата email.
	ErrEmailInvalid = NewValidationError("Enter a valid email address", "email")
	// ErrEmailExists возвращается при нарушении уникальности email.
	ErrEmailExists = NewConflictError("Email already exists")
	// Ошибка неположительной цены.
	ErrPriceNotPositive = NewValidationError("Price must be positive.", "price")
	// Ошибка отрицательного остатка.
	ErrStockNegative = NewValidationError("Stock cannot be negative.", "stock")
	// Ошибка цены, которую не удалось привести к числу.
	ErrPriceNotNumeric = NewTypeMismatchError("Price must be a number or a numeric string.")
	// Ошибка заказа без товаров.
	ErrOrderProductsRequired = NewValidationError("At least one product must be selected", "productIds")
	// Ошибка заказа без клиента.
	ErrOrderCustomerRequired = NewValidationError("Customer is required", "customerId")
	// Ошибка расхождения суммы заказа с суммой цен его товаров.
	ErrOrderTotalMismatch = NewValidationError("Order total does not match product prices", "totalAmount")

	// ErrCustomerNotFound возвращается, если клиент не найден в репозитории.
	ErrCustomerNotFound = NewNotFoundError("customer not found")
	// ErrProductNotFound возвращается, если товар не найден в репозитории.
	ErrProductNotFound = NewNotFoundError("product not found")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = NewNotFoundError("order not found")
	// ErrCustomerExists сигнализирует о попытке вставки клиента с занятым ID.
	ErrCustomerExists = NewConflictError("customer already exists")
	// ErrProductExists сигнализирует о попытке вставки товара с занятым ID.
	ErrProductExists = NewConflictError("product already exists")
	// ErrOrderExists сигнализирует о попытке вставки заказа с занятым ID.
	ErrOrderExists = NewConflictError("order already exists")

	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)
