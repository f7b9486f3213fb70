package web

import (
	"net/http"
	"strconv"

	"github.com/JonMunkholm/userdash/internal/core"
	"github.com/JonMunkholm/userdash/internal/logging"
	"github.com/JonMunkholm/userdash/internal/web/templates"
)

// handleLogs renders the log stream. Page 0 renders the whole page; later
// pages are HTMX requests whose rows are appended to the table.
// A failed load renders the error in place of the rows.
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 0 {
		page = 0
	}
	appending := isHTMX(r) && page > 0

	ctx := renderContext(r, nil)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	p, err := s.service.LogPage(ctx, page, s.cfg.Dashboard.LogsPerPage)
	if err != nil {
		logging.FromContext(ctx).ErrorContext(ctx, "load logs failed", "page", page, "error", err)
		msg := core.NewUserError(err).Error()
		if appending {
			_ = templates.LogRows(templates.LogsView{Err: msg}).Render(ctx, w)
			return
		}
		_ = templates.LogsPage(templates.LogsView{Layout: s.layout("logs", "Logs"), Err: msg}).Render(ctx, w)
		return
	}

	view := s.logsView(ctx, p)
	if appending {
		_ = templates.LogRows(view).Render(ctx, w)
		return
	}
	_ = templates.LogsPage(view).Render(ctx, w)
}
