package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/userdash/internal/columns"
	"github.com/JonMunkholm/userdash/internal/users"
	"github.com/go-chi/chi/v5"
)

// ColumnJSON describes one resolved column.
type ColumnJSON struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Order    int    `json:"order"`
	Width    string `json:"width,omitempty"`
	Sortable bool   `json:"sortable"`
	SortKey  string `json:"sortKey,omitempty"`
	Display  string `json:"display"`
}

// EpochJSON is the active column set.
type EpochJSON struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"createdAt"`
	Columns   []ColumnJSON `json:"columns"`
}

// UserRowJSON is one user with its resolved cell values keyed by column.
type UserRowJSON struct {
	ID    string         `json:"id"`
	Cells map[string]any `json:"cells"`
}

// UsersJSON is a page of users.
type UsersJSON struct {
	Epoch   string              `json:"epoch"`
	Columns []ColumnJSON        `json:"columns"`
	Rows    []UserRowJSON       `json:"rows"`
	Page    int                 `json:"page"`
	PerPage int                 `json:"perPage"`
	Total   int64               `json:"total"`
	Sort    columns.SortRequest `json:"sort"`
}

func columnsJSON(cols []columns.Field) []ColumnJSON {
	out := make([]ColumnJSON, len(cols))
	for i, c := range cols {
		out[i] = ColumnJSON{
			Key:      c.Key(),
			Label:    c.Label,
			Order:    c.Order,
			Width:    c.Width,
			Sortable: c.Sortable,
			Display:  c.Display.Mode.String(),
		}
		if c.Sortable {
			out[i].SortKey = c.SortKey()
		}
	}
	return out
}

func epochJSON(ep *columns.Epoch) EpochJSON {
	return EpochJSON{ID: ep.ID, CreatedAt: ep.CreatedAt, Columns: columnsJSON(ep.Columns)}
}

// handleAPIUsers returns a page of users with resolved cell values.
func (s *Server) handleAPIUsers(w http.ResponseWriter, r *http.Request) {
	table, err := s.service.ListUsers(r.Context(), s.userQuery(r))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	ctx := renderContext(r, table.Epoch)
	cells := s.service.Cells()
	cols := table.Epoch.Columns

	rows := make([]UserRowJSON, len(table.Page.Records))
	for i, rec := range table.Page.Records {
		row := UserRowJSON{ID: rec.ID(users.IDKey), Cells: make(map[string]any, len(cols))}
		for _, col := range cols {
			row.Cells[col.Key()] = cells.Value(ctx, col, rec, nil)
		}
		rows[i] = row
	}

	writeJSON(w, UsersJSON{
		Epoch:   table.Epoch.ID,
		Columns: columnsJSON(cols),
		Rows:    rows,
		Page:    table.Page.Page,
		PerPage: table.Page.PerPage,
		Total:   table.Page.Total,
		Sort:    columns.SortRequest{SortKey: table.Query.Sort.Key, Order: table.Query.Sort.Order},
	})
}

// handleAPIUser returns one raw user record.
func (s *Server) handleAPIUser(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, rec)
}

// handleAPIColumns returns the active column set.
func (s *Server) handleAPIColumns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, epochJSON(s.service.Columns()))
}

// handleAPIReloadColumns re-reads the field rules file now.
func (s *Server) handleAPIReloadColumns(w http.ResponseWriter, r *http.Request) {
	changed, err := s.service.ReloadRules(r.Context())
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, map[string]any{
		"changed": changed,
		"epoch":   epochJSON(s.service.Columns()),
	})
}

// handleAPILogs returns one page of decorated log records.
func (s *Server) handleAPILogs(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	p, err := s.service.LogPage(r.Context(), page, s.cfg.Dashboard.LogsPerPage)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, map[string]any{
		"records":  p.Records,
		"page":     p.Page,
		"perPage":  p.PerPage,
		"total":    p.Total,
		"nextPage": p.NextPage,
		"hasNext":  p.HasNext(),
	})
}
