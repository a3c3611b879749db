package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/zizouhuweidi/trivia/internal/service"
)

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   int    `json:"error"`
	Message string `json:"message"`
}

var kindStatus = map[service.Kind]int{
	service.KindInvalidInput:       http.StatusBadRequest,
	service.KindNotFound:           http.StatusNotFound,
	service.KindPersistence:        http.StatusUnprocessableEntity,
	service.KindMethodNotSupported: http.StatusMethodNotAllowed,
}

var statusMessages = map[int]string{
	http.StatusBadRequest:            service.DefaultMessage(service.KindInvalidInput),
	http.StatusNotFound:              service.DefaultMessage(service.KindNotFound),
	http.StatusMethodNotAllowed:      service.DefaultMessage(service.KindMethodNotSupported),
	http.StatusUnprocessableEntity:   service.DefaultMessage(service.KindPersistence),
	http.StatusInternalServerError:   "internal server error",
	http.StatusRequestEntityTooLarge: "request entity too large",
}

// ErrorHandler renders catalog and echo errors as ErrorResponse bodies
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, message := resolveError(err)
	if status >= http.StatusInternalServerError {
		c.Logger().Errorf("request failed: %v", err)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, ErrorResponse{
			Success: false,
			Error:   status,
			Message: message,
		})
	}
	if writeErr != nil {
		c.Logger().Error(writeErr)
	}
}

func resolveError(err error) (int, string) {
	var catalogErr *service.Error
	if errors.As(err, &catalogErr) {
		status, ok := kindStatus[catalogErr.Kind]
		if !ok {
			status = http.StatusInternalServerError
		}
		message := catalogErr.Message
		if message == "" {
			message = statusMessage(status)
		}
		return status, message
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		// echo's own errors carry its default text; client-supplied ones are strings we set
		if msg, ok := httpErr.Message.(string); ok && httpErr.Internal == nil && msg != http.StatusText(httpErr.Code) {
			return httpErr.Code, msg
		}
		return httpErr.Code, statusMessage(httpErr.Code)
	}

	return http.StatusInternalServerError, statusMessage(http.StatusInternalServerError)
}

func statusMessage(status int) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return http.StatusText(status)
}
