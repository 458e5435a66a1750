package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"taskagent/internal/service"
)

func (s *Server) handleStartTask(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return s.respondError(c, err)
	}
	if err := s.timers.Start(c.Request().Context(), id, ""); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"status": "started", "id": id})
}

func (s *Server) handleStopTask(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return s.respondError(c, err)
	}
	total, err := s.timers.Stop(c.Request().Context(), id, "")
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":     "stopped",
		"id":         id,
		"time_spent": total,
	})
}

type completionDateRequest struct {
	CompletionDate string `json:"completion_date"`
}

func (s *Server) handleStartRecurring(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return s.respondError(c, err)
	}
	var req completionDateRequest
	if err := c.Bind(&req); err != nil {
		return s.respondError(c, service.ValidationError{Msg: "invalid request body"})
	}
	if err := s.timers.Start(c.Request().Context(), id, req.CompletionDate); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":         "started",
		"taskId":         id,
		"completionDate": req.CompletionDate,
	})
}

func (s *Server) handleStopRecurring(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return s.respondError(c, err)
	}
	var req completionDateRequest
	if err := c.Bind(&req); err != nil {
		return s.respondError(c, service.ValidationError{Msg: "invalid request body"})
	}
	total, err := s.timers.Stop(c.Request().Context(), id, req.CompletionDate)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":         "stopped",
		"taskId":         id,
		"completionDate": req.CompletionDate,
		"time_spent":     total,
	})
}

// handleContinueTimer acknowledges a long-running-timer warning so the
// watchdog grants the timer a fresh hour instead of stopping it.
func (s *Server) handleContinueTimer(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return s.respondError(c, err)
	}
	var req completionDateRequest
	if err := c.Bind(&req); err != nil {
		return s.respondError(c, service.ValidationError{Msg: "invalid request body"})
	}
	s.watchdog.Confirm(id, req.CompletionDate)
	return c.JSON(http.StatusOK, map[string]interface{}{"status": "continued", "id": id})
}
