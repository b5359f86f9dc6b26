package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avi3tal/blueprint/internal/engine"
	"github.com/avi3tal/blueprint/internal/graph"
	"github.com/avi3tal/blueprint/internal/projects"
)

// DataResponse is the standard success envelope.
type DataResponse struct {
	Data any `json:"data"`
}

// ErrorResponse is the standard error envelope. Data carries a partial pass
// result when a run was aborted.
type ErrorResponse struct {
	Error string `json:"error"`
	Data  any    `json:"data,omitempty"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, DataResponse{Data: data})
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, projects.ErrProjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, projects.ErrProjectExists), errors.Is(err, graph.ErrGraphLocked):
		return http.StatusConflict
	case errors.Is(err, projects.ErrInvalidID),
		errors.Is(err, graph.ErrInvalidNode),
		errors.Is(err, graph.ErrInvalidEdge),
		errors.Is(err, engine.ErrNoStartNode):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrMaxSteps):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		// client went away
		return 499
	default:
		return http.StatusInternalServerError
	}
}
