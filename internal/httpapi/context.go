package httpapi

import (
	"context"
	"net/http"
)

// serverBaseCtx is canceled on shutdown; in-flight session calls stop with it.
var serverBaseCtx = context.Background()

// SetBaseContext sets the shutdown context. nil resets it to Background.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	serverBaseCtx = ctx
}

// requestContext derives the context for one session call from the request.
// It ends when the client goes away, on shutdown, or after actionTimeout.
func requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(r.Context(), actionTimeout)
	stop := context.AfterFunc(serverBaseCtx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// aborted reports whether a failed call should go unanswered because the
// client or the server went away.
func aborted(r *http.Request) bool {
	return r.Context().Err() != nil || serverBaseCtx.Err() != nil
}
