package api

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/avi3tal/blueprint/internal/graph"
	"github.com/avi3tal/blueprint/internal/logger"
	"github.com/avi3tal/blueprint/internal/schema"
	"github.com/avi3tal/blueprint/pkg/blueprint"
)

type handler struct {
	app *blueprint.App
	log *logger.Logger
}

type createProjectRequest struct {
	ID   string `json:"id" binding:"omitempty,max=128"`
	Name string `json:"name" binding:"required,max=256"`
}

type saveGraphRequest struct {
	Graph     graph.Document `json:"graph"`
	Variables map[string]any `json:"variables"`
}

// nodeTypeResponse is the wire form of a registered node kind
type nodeTypeResponse struct {
	TypeID       string            `json:"typeId"`
	Label        string            `json:"label"`
	ValueInputs  []schema.PortSpec `json:"valueInputs"`
	ValueOutputs []schema.PortSpec `json:"valueOutputs"`
	ExecInputs   []string          `json:"execInputs"`
	ExecOutputs  []string          `json:"execOutputs"`
	Pure         bool              `json:"pure"`
	Loop         bool              `json:"loop"`
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *handler) nodeTypes(c *gin.Context) {
	types := h.app.NodeTypes()
	out := make([]nodeTypeResponse, 0, len(types))
	for _, t := range types {
		out = append(out, nodeTypeResponse{
			TypeID:       t.TypeID,
			Label:        t.Label,
			ValueInputs:  nonNil(t.ValueInputs),
			ValueOutputs: nonNil(t.ValueOutputs),
			ExecInputs:   nonNil(t.ExecInputs),
			ExecOutputs:  nonNil(t.ExecOutputs),
			Pure:         t.Pure(),
			Loop:         t.Loop != nil,
		})
	}
	respondOK(c, out)
}

func (h *handler) listProjects(c *gin.Context) {
	list, err := h.app.Projects().List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, list)
}

func (h *handler) createProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	p, err := h.app.Projects().Create(c.Request.Context(), req.ID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, p)
}

func (h *handler) getProject(c *gin.Context) {
	p, err := h.app.Projects().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, p)
}

func (h *handler) deleteProject(c *gin.Context) {
	if err := h.app.Projects().Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// saveGraph stores a graph document after checking it builds
func (h *handler) saveGraph(c *gin.Context) {
	var req saveGraphRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if _, err := h.app.LoadGraph(c.Param("id"), req.Graph); err != nil {
		respondError(c, err)
		return
	}
	p, err := h.app.Projects().SaveGraph(c.Request.Context(), c.Param("id"), req.Graph, req.Variables)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, p)
}

// runProject runs one pass. With ?stream=true the response is a stream of
// server-sent "status" events followed by a "result" event.
func (h *handler) runProject(c *gin.Context) {
	id := c.Param("id")
	start := c.Query("start")
	stream, _ := strconv.ParseBool(c.DefaultQuery("stream", "false"))
	if stream {
		h.streamRun(c, id, start)
		return
	}

	res, err := h.app.RunProject(c.Request.Context(), id, start)
	if err != nil {
		if res != nil {
			c.JSON(statusFor(err), ErrorResponse{Error: err.Error(), Data: res})
			return
		}
		respondError(c, err)
		return
	}
	respondOK(c, res)
}

type runOutcome struct {
	res *blueprint.PassResult
	err error
}

// streamRun relays the status changes of its own pass only. Other passes
// running on the same App are filtered out by pass id.
func (h *handler) streamRun(c *gin.Context, id, start string) {
	passID := uuid.New().String()
	ctx := blueprint.WithPassID(c.Request.Context(), passID)
	events := make(chan blueprint.StatusChange, 64)
	done := make(chan struct{})
	defer close(done)

	unsubscribe := h.app.OnStatusChange(func(ch blueprint.StatusChange) {
		if ch.PassID != passID {
			return
		}
		select {
		case events <- ch:
		case <-done:
		}
	})
	defer unsubscribe()

	results := make(chan runOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				h.log.Error("stream run panicked", logger.Fields("panic", r))
				results <- runOutcome{err: errors.Errorf("run %s: panic: %v", id, r)}
			}
		}()
		res, err := h.app.RunProject(ctx, id, start)
		results <- runOutcome{res: res, err: err}
	}()

	c.Stream(func(w io.Writer) bool {
		select {
		case ch := <-events:
			c.SSEvent("status", ch)
			return true
		case out := <-results:
			// every status change was queued before the run returned
			for drained := false; !drained; {
				select {
				case ch := <-events:
					c.SSEvent("status", ch)
				default:
					drained = true
				}
			}
			if out.err != nil {
				c.SSEvent("error", ErrorResponse{Error: out.err.Error()})
			}
			if out.res != nil {
				c.SSEvent("result", out.res)
			}
			return false
		case <-ctx.Done():
			return false
		}
	})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
