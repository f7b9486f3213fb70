package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/userdash/internal/columns"
	"github.com/JonMunkholm/userdash/internal/core"
)

// renderContext returns the context a render pass resolves cells with.
// Formatter diagnostics logged through it carry the epoch id next to the
// request id and client ip.
func renderContext(r *http.Request, epoch *columns.Epoch) context.Context {
	ctx := r.Context()
	if epoch != nil {
		ctx = core.ContextWithEpoch(ctx, epoch.ID)
	}
	return ctx
}
