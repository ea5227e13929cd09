package utils

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "repair-system/pkg/errors"
)

type HttpResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Message string      `json:"message"`
	Total   *uint64     `json:"total,omitempty"`
}

func SuccessResponse(ctx echo.Context, body interface{}, message string, code int, total ...uint64) error {
	response := &HttpResponse{
		Status:  true,
		Body:    body,
		Message: message,
	}
	if len(total) > 0 {
		response.Total = &total[0]
	}
	return ctx.JSON(code, response)
}

// ErrorList — соответствие прикладных ошибок HTTP-кодам.
var ErrorList = map[error]int{
	apperrors.ErrNotFound:           http.StatusNotFound,
	apperrors.ErrMasterNotFound:     http.StatusNotFound,
	apperrors.ErrBadRequest:         http.StatusBadRequest,
	apperrors.ErrTicketArchived:     http.StatusBadRequest,
	apperrors.ErrNoAssignedMaster:   http.StatusBadRequest,
	apperrors.ErrClientHasActive:    http.StatusConflict,
	apperrors.ErrUsernameTaken:      http.StatusConflict,
	apperrors.ErrInvalidCredentials: http.StatusUnauthorized,
	apperrors.ErrUnauthorized:       http.StatusUnauthorized,
	apperrors.ErrEmptyAuthHeader:    http.StatusUnauthorized,
	apperrors.ErrInvalidAuthHeader:  http.StatusUnauthorized,
	apperrors.ErrInvalidToken:       http.StatusUnauthorized,
	apperrors.ErrTokenExpired:       http.StatusUnauthorized,
	apperrors.ErrTokenIsNotAccess:   http.StatusUnauthorized,
	apperrors.ErrTokenIsNotRefresh:  http.StatusUnauthorized,
	apperrors.ErrSessionNotFound:    http.StatusUnauthorized,
	apperrors.ErrForbidden:          http.StatusForbidden,
	apperrors.ErrLoginLocked:        http.StatusTooManyRequests,
}

func ErrorResponse(ctx echo.Context, err error) error {
	message := err.Error()
	code := http.StatusInternalServerError

	var invalidInput *apperrors.InvalidInputError
	var httpErr *echo.HTTPError

	switch {
	case errors.As(err, &invalidInput):
		code = http.StatusBadRequest
		message = invalidInput.Message
	case errors.As(err, &httpErr):
		code = httpErr.Code
		if m, ok := httpErr.Message.(string); ok {
			message = m
		}
	default:
		for appErr, statusCode := range ErrorList {
			if errors.Is(err, appErr) {
				message = appErr.Error()
				code = statusCode
				break
			}
		}
		if code == http.StatusInternalServerError {
			// Текст внутренних ошибок наружу не отдаём.
			message = "внутренняя ошибка сервера"
		}
	}

	response := &HttpResponse{
		Status:  false,
		Body:    struct{}{},
		Message: message,
	}
	return ctx.JSON(code, response)
}
