package graphql

import (
	"errors"

	"github.com/O-G-W-A-L/alx-backend-graphql-crm/internal/domain"
)

// Коды ошибок в extensions ответа, по таксономии API.
const (
	codeValidation   = "ValidationError"
	codeConflict     = "ConflictError"
	codeNotFound     = "NotFoundError"
	codeTypeMismatch = "TypeMismatch"
	codeInternal     = "InternalError"
)

// resolverError несёт доменную ошибку в GraphQL-ответ, раскрывая её вид
// и проблемные поля через extensions.
type resolverError struct {
	err error
}

func (e resolverError) Error() string { return e.err.Error() }

func (e resolverError) Unwrap() error { return e.err }

// Extensions реализует gqlerrors.ExtendedError.
func (e resolverError) Extensions() map[string]interface{} {
	ext := map[string]interface{}{
		"code": errorCode(e.err),
	}

	var de *domain.Error
	if errors.As(e.err, &de) && len(de.Fields) > 0 {
		fields := make([]interface{}, 0, len(de.Fields))
		for _, field := range de.Fields {
			fields = append(fields, field)
		}
		ext["fields"] = fields
	}

	return ext
}

func errorCode(err error) string {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return codeValidation
	case domain.KindConflict:
		return codeConflict
	case domain.KindNotFound:
		return codeNotFound
	case domain.KindTypeMismatch:
		return codeTypeMismatch
	default:
		return codeInternal
	}
}

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	return resolverError{err: err}
}
