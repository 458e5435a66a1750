package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"taskagent/internal/service"
)

type nameRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListClients(c echo.Context) error {
	clients, err := s.clients.List(c.Request().Context())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, clients)
}

func (s *Server) handleCreateClient(c echo.Context) error {
	var req nameRequest
	if err := c.Bind(&req); err != nil {
		return s.respondError(c, service.ValidationError{Msg: "invalid request body"})
	}
	client, err := s.clients.Create(c.Request().Context(), req.Name)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, client)
}

func (s *Server) handleUpdateClient(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return s.respondError(c, err)
	}
	var req nameRequest
	if err := c.Bind(&req); err != nil {
		return s.respondError(c, service.ValidationError{Msg: "invalid request body"})
	}
	if err := s.clients.Rename(c.Request().Context(), id, req.Name); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"id": id, "name": req.Name})
}

func (s *Server) handleDeleteClient(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return s.respondError(c, err)
	}
	if err := s.clients.Delete(c.Request().Context(), id); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"message": "client deleted"})
}
