package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"taskagent/internal/service"
)

// errorBody is the JSON envelope every failure is serialized as.
type errorBody struct {
	Error string `json:"error"`
}

// respondError maps the service error taxonomy onto HTTP statuses.
// Store internals never leak; anything unexpected becomes a generic 500.
func (s *Server) respondError(c echo.Context, err error) error {
	switch {
	case service.IsValidation(err):
		return c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorBody{Error: "not found"})
	case errors.Is(err, service.ErrAlreadyRunning):
		return c.JSON(http.StatusConflict, errorBody{Error: "timer already running"})
	default:
		s.log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("request failed")
		return c.JSON(http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

// paramID parses the :id route parameter.
func paramID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, service.ValidationError{Msg: "invalid id"}
	}
	return uint(id), nil
}
