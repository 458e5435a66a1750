package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"taskagent/internal/service"
)

type projectRequest struct {
	Name     string `json:"name"`
	ClientID *uint  `json:"client_id"`
}

func (s *Server) handleListProjects(c echo.Context) error {
	projects, err := s.projects.List(c.Request().Context())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, projects)
}

func (s *Server) handleCreateProject(c echo.Context) error {
	var req projectRequest
	if err := c.Bind(&req); err != nil {
		return s.respondError(c, service.ValidationError{Msg: "invalid request body"})
	}
	project, err := s.projects.Create(c.Request().Context(), req.Name, req.ClientID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, project)
}

func (s *Server) handleUpdateProject(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return s.respondError(c, err)
	}
	var req projectRequest
	if err := c.Bind(&req); err != nil {
		return s.respondError(c, service.ValidationError{Msg: "invalid request body"})
	}
	if err := s.projects.Update(c.Request().Context(), id, req.Name, req.ClientID); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"id":        id,
		"name":      req.Name,
		"client_id": req.ClientID,
	})
}

func (s *Server) handleDeleteProject(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return s.respondError(c, err)
	}
	if err := s.projects.Delete(c.Request().Context(), id); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"message": "project deleted"})
}
