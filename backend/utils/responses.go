package utils

import (
	"errors"
	"net/http"

	"lessons/backend/errs"

	"github.com/gofiber/fiber/v2"
)

// SuccessResponse структура для успешных ответов
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse структура для ошибок
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// PaginatedResponse структура для пагинированных ответов
type PaginatedResponse struct {
	Success  bool        `json:"success"`
	Data     interface{} `json:"data"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}

// Success создает успешный JSON ответ
func Success(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(SuccessResponse{
		Success: true,
		Data:    data,
	})
}

// Message отвечает 200 с текстом и данными
func Message(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created отправляет ответ 201 Created
func Created(c *fiber.Ctx, data interface{}) error {
	return Success(c, fiber.StatusCreated, data)
}

// Paginate создает пагинированный JSON ответ
func Paginate(c *fiber.Ctx, data interface{}, total int64, page int, pageSize int) error {
	return c.JSON(PaginatedResponse{
		Success:  true,
		Data:     data,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// Error создает JSON ответ с ошибкой
func Error(c *fiber.Ctx, status int, code string, err error, details ...interface{}) error {
	response := ErrorResponse{
		Success: false,
		Error:   http.StatusText(status),
		Code:    code,
		Message: err.Error(),
	}
	if len(details) > 0 {
		response.Details = details[0]
	}
	return c.Status(status).JSON(response)
}

// ValidationError создает JSON ответ для ошибок валидации
func ValidationError(c *fiber.Ctx, message string, fields map[string]string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
		Success: false,
		Error:   "Validation Error",
		Code:    string(errs.KindValidation),
		Message: message,
		Details: fields,
	})
}

// BadRequest отправляет ответ 400 Bad Request
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, "bad_request", errors.New(message))
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind errs.Kind) int {
	switch kind {
	case errs.KindUnauthorized:
		return fiber.StatusUnauthorized
	case errs.KindForbidden:
		return fiber.StatusForbidden
	case errs.KindNotFound, errs.KindSessionNotFound:
		return fiber.StatusNotFound
	case errs.KindConflict:
		return fiber.StatusConflict
	case errs.KindPaymentIncomplete:
		return fiber.StatusPaymentRequired
	case errs.KindInvalidSession:
		return fiber.StatusBadRequest
	case errs.KindGateway:
		return fiber.StatusBadGateway
	case errs.KindValidation:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

// LocalsFailure holds the cause of a 5xx response for the request logger.
const LocalsFailure = "failure"

// Fail renders any error returned by the policy layer. Internal errors are
// not echoed to the client.
func Fail(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code >= fiber.StatusInternalServerError {
			c.Locals(LocalsFailure, err)
		}
		return Error(c, fe.Code, "http_error", fe)
	}

	kind := errs.KindOf(err)
	if kind == errs.KindValidation {
		var e *errs.Error
		errors.As(err, &e)
		return ValidationError(c, e.Message, e.Fields)
	}

	status := StatusFor(kind)
	if status >= fiber.StatusInternalServerError {
		c.Locals(LocalsFailure, err)
	}
	if status == fiber.StatusInternalServerError {
		return Error(c, status, string(errs.KindInternal), errors.New("internal server error"))
	}
	return Error(c, status, string(kind), err)
}

// FailureFrom returns the error stored by Fail for a 5xx response, if any.
func FailureFrom(c *fiber.Ctx) error {
	err, _ := c.Locals(LocalsFailure).(error)
	return err
}
