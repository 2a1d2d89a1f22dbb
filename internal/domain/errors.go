package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrImmutable          = errors.New("documento fiscal inmutable")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
)

// Códigos estables expuestos por los casos de uso de facturación.
// El HTTP layer los mapea a status codes.
const (
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeForbidden             = "FORBIDDEN"
	CodeValidation            = "VALIDATION"
	CodeNotFound              = "NOT_FOUND"
	CodeConflict              = "CONFLICT"
	CodeInvoiceNumberConflict = "INVOICE_NUMBER_CONFLICT"
	CodeInternal              = "INTERNAL"
)

// Error es un error de aplicación con código estable y mensaje legible.
// Todo error que cruza la frontera de los casos de uso fiscales es un *Error.
type Error struct {
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap permite errors.Is/As sobre la causa envuelta.
func (e *Error) Unwrap() error { return e.cause }

// NewError construye un error con código y mensaje.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError construye un error con código envolviendo la causa.
func WrapError(code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// CodeOf devuelve el código del error, o CodeInternal si no tiene.
// Los sentinel de dominio se traducen a su código natural.
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrImmutable):
		return CodeValidation
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrConflict), errors.Is(err, ErrDuplicate):
		return CodeConflict
	default:
		return CodeInternal
	}
}
