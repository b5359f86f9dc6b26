package blueprint

import (
	"context"

	"github.com/pkg/errors"

	"github.com/avi3tal/blueprint/internal/logger"
)

// ErrListenerClosed ends Start once a listener has no more requests
var ErrListenerClosed = errors.New("listener closed")

// RunRequest asks for a pass over a stored project
type RunRequest struct {
	ProjectID string
	StartNode string
}

// Listener is awaited for new run requests, e.g. from a queue or an HTTP
// endpoint.
type Listener interface {
	// WaitForEvent blocks until a request is available or ctx is done.
	WaitForEvent(ctx context.Context) (RunRequest, error)
}

// ChannelListener feeds requests from a channel
type ChannelListener chan RunRequest

func (c ChannelListener) WaitForEvent(ctx context.Context) (RunRequest, error) {
	select {
	case <-ctx.Done():
		return RunRequest{}, ctx.Err()
	case req, ok := <-c:
		if !ok {
			return RunRequest{}, ErrListenerClosed
		}
		return req, nil
	}
}

// Start runs a pass for every request from the Listener. It blocks until ctx
// is cancelled or the listener is closed.
func (app *App) Start(ctx context.Context) error {
	if app.listener == nil {
		return errors.New("start called, but no Listener is configured")
	}

	for {
		req, err := app.listener.WaitForEvent(ctx)
		if ctx.Err() != nil {
			return errors.Wrap(ctx.Err(), "listener stopped")
		}
		if errors.Is(err, ErrListenerClosed) {
			return nil
		}
		if err != nil {
			if app.callback != nil {
				_ = app.callback.OnError(ctx, err)
			}
			app.log.Warn("listener failed", logger.Fields(logger.FieldError, err.Error()))
			continue
		}

		// OnComplete/OnError is called by Run
		if _, err := app.RunProject(ctx, req.ProjectID, req.StartNode); err != nil {
			app.log.Warn("run request failed", logger.Fields("project_id", req.ProjectID, logger.FieldError, err.Error()))
		}
	}
}
