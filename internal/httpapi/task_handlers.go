package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"taskagent/internal/service"
)

// handleListTasks returns every task, or only the tasks occurring on
// ?date=YYYY-MM-DD when given.
func (s *Server) handleListTasks(c echo.Context) error {
	ctx := c.Request().Context()
	if date := c.QueryParam("date"); date != "" {
		tasks, err := s.tasks.ListForDate(ctx, date)
		if err != nil {
			return s.respondError(c, err)
		}
		return c.JSON(http.StatusOK, tasks)
	}
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(c echo.Context) error {
	var input service.TaskInput
	if err := c.Bind(&input); err != nil {
		return s.respondError(c, service.ValidationError{Msg: "invalid request body"})
	}
	task, err := s.tasks.Create(c.Request().Context(), input)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, task)
}

func (s *Server) handleUpdateTask(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return s.respondError(c, err)
	}
	var input service.TaskUpdate
	if err := c.Bind(&input); err != nil {
		return s.respondError(c, service.ValidationError{Msg: "invalid request body"})
	}
	if err := s.tasks.Update(c.Request().Context(), id, input); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"id":    id,
		"title": input.Title,
	})
}

// handleDeleteTask removes the task definition and, through the cascade,
// all of its history. The legacy delete_all query parameter is accepted;
// both values delete the row.
func (s *Server) handleDeleteTask(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return s.respondError(c, err)
	}
	if err := s.tasks.Delete(c.Request().Context(), id, service.DeleteAll, ""); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"status": "deleted", "id": id})
}

type moveRequest struct {
	NewDate string `json:"newDate"`
}

func (s *Server) handleMoveTask(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return s.respondError(c, err)
	}
	var req moveRequest
	if err := c.Bind(&req); err != nil {
		return s.respondError(c, service.ValidationError{Msg: "invalid request body"})
	}
	if err := s.tasks.Move(c.Request().Context(), id, req.NewDate); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"id":      id,
		"newDate": req.NewDate,
	})
}

func (s *Server) handleCopyTask(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return s.respondError(c, err)
	}
	var req moveRequest
	if err := c.Bind(&req); err != nil {
		return s.respondError(c, service.ValidationError{Msg: "invalid request body"})
	}
	task, err := s.tasks.Copy(c.Request().Context(), id, req.NewDate)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, task)
}

func (s *Server) handleCompleteTask(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return s.respondError(c, err)
	}
	if err := s.tasks.Complete(c.Request().Context(), id); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"status": "completed", "id": id})
}

func (s *Server) handleUncompleteTask(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return s.respondError(c, err)
	}
	if err := s.tasks.Uncomplete(c.Request().Context(), id); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"status": "uncompleted", "id": id})
}

// handleEndRecurrence sets the series end date from the ?end_date query
// parameter; occurrences after it stop, history stays.
func (s *Server) handleEndRecurrence(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return s.respondError(c, err)
	}
	endDate := c.QueryParam("end_date")
	if err := s.tasks.EndRecurrence(c.Request().Context(), id, endDate); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ended",
		"taskId":  id,
		"endDate": endDate,
	})
}

type dateRequest struct {
	Date string `json:"date"`
}

func (s *Server) handleCompleteRecurring(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return s.respondError(c, err)
	}
	var req dateRequest
	if err := c.Bind(&req); err != nil {
		return s.respondError(c, service.ValidationError{Msg: "invalid request body"})
	}
	if err := s.overlay.MarkComplete(c.Request().Context(), id, req.Date); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) handleUncompleteRecurring(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return s.respondError(c, err)
	}
	var req dateRequest
	if err := c.Bind(&req); err != nil {
		return s.respondError(c, service.ValidationError{Msg: "invalid request body"})
	}
	if err := s.overlay.MarkIncomplete(c.Request().Context(), id, req.Date); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) handleHideRecurring(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return s.respondError(c, err)
	}
	var req dateRequest
	if err := c.Bind(&req); err != nil {
		return s.respondError(c, service.ValidationError{Msg: "invalid request body"})
	}
	if err := s.overlay.HideOccurrence(c.Request().Context(), id, req.Date); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "hidden",
		"taskId": id,
		"date":   req.Date,
	})
}

func (s *Server) handleListCompletions(c echo.Context) error {
	comps, err := s.overlay.ListCompletions(c.Request().Context())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, comps)
}

func (s *Server) handleListHiddenDates(c echo.Context) error {
	dates, err := s.overlay.ListHiddenDates(c.Request().Context())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dates)
}
