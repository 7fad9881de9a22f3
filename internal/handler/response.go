package handler

import (
	"errors"
	"net/http"

	"github.com/boxline/boxline-backend/internal/service"
	"github.com/labstack/echo/v4"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

// respondServiceError maps the core's typed errors onto transport status
// codes; anything unrecognized is a 500.
func respondServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "authentication required"))
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not allowed"))
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "resource not found"))
	case service.IsBadRequest(err):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	default:
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal", "internal error"))
	}
}
