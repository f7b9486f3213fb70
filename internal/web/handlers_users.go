package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/userdash/internal/columns"
	"github.com/JonMunkholm/userdash/internal/users"
	"github.com/JonMunkholm/userdash/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

// userQuery reads ?search=&sort=&order=&page= (page is zero based).
// An unknown order leaves the source default in place.
func (s *Server) userQuery(r *http.Request) users.Query {
	q := r.URL.Query()
	query := users.Query{
		Search:  strings.TrimSpace(q.Get("search")),
		PerPage: s.cfg.Dashboard.UsersPerPage,
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		query.Page = page
	}
	if key := q.Get("sort"); key != "" {
		query.Sort.Key = key
		if order, err := strconv.Atoi(q.Get("order")); err == nil &&
			(order == columns.Ascending || order == columns.Descending) {
			query.Sort.Order = order
		}
	}
	return query
}

// handleUsers renders the users table. HTMX requests get the table only.
func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	table, err := s.service.ListUsers(r.Context(), s.userQuery(r))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	ctx := renderContext(r, table.Epoch)
	view := s.usersView(ctx, table)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if isHTMX(r) {
		_ = templates.UsersTable(view).Render(ctx, w)
		return
	}
	_ = templates.UsersPage(view).Render(ctx, w)
}

// handleUser renders one user.
func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	epoch := s.service.Columns()

	rec, err := s.service.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	ctx := renderContext(r, epoch)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = templates.UserPage(s.userView(ctx, epoch, rec)).Render(ctx, w)
}
