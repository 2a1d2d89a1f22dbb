package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/pataspro/petshop-api/internal/application/dto"
	"github.com/pataspro/petshop-api/internal/domain"
)

// statusForCode mapea códigos estables de los casos de uso a status HTTP.
func statusForCode(code string) int {
	switch code {
	case domain.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case domain.CodeForbidden:
		return fiber.StatusForbidden
	case domain.CodeValidation:
		return fiber.StatusBadRequest
	case domain.CodeNotFound:
		return fiber.StatusNotFound
	case domain.CodeConflict, domain.CodeInvoiceNumberConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError traduce un error de caso de uso al cuerpo JSON estándar.
// Los mensajes de validación múltiple (separados por "; ") se parten en
// Details para que el cliente pueda mostrarlos uno a uno.
func writeError(c *fiber.Ctx, err error) error {
	code := domain.CodeOf(err)

	message := err.Error()
	var appErr *domain.Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	resp := dto.ErrorResponse{Code: code, Message: message}
	if code == domain.CodeValidation && strings.Contains(message, "; ") {
		resp.Details = strings.Split(message, "; ")
	}
	return c.Status(statusForCode(code)).JSON(resp)
}

// badRequest respuesta para cuerpos que no parsean.
func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: msg})
}

// notFound respuesta para recursos inexistentes o de otra empresa. Ambos
// casos responden igual para no revelar existencia.
func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: domain.CodeNotFound, Message: msg})
}

// unauthorized respuesta para peticiones sin identidad en el contexto.
func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: domain.CodeUnauthorized, Message: "token inválido"})
}
