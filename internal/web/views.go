package web

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/JonMunkholm/userdash/internal/columns"
	"github.com/JonMunkholm/userdash/internal/core"
	"github.com/JonMunkholm/userdash/internal/logs"
	"github.com/JonMunkholm/userdash/internal/users"
	"github.com/JonMunkholm/userdash/internal/web/templates"
)

// emptyName is shown in the first column when a user has no display value.
const emptyName = "(empty)"

func (s *Server) layout(active, heading string) templates.LayoutView {
	return templates.LayoutView{
		Title:   s.cfg.Dashboard.Title,
		CSSURL:  s.cfg.Dashboard.CSSURL,
		Active:  active,
		Heading: heading,
	}
}

// usersHref builds a /users link keeping search and sort.
func usersHref(search string, sort columns.SortState, page int) string {
	v := url.Values{}
	if search != "" {
		v.Set("search", search)
	}
	if sort.Key != "" {
		v.Set("sort", sort.Key)
		v.Set("order", strconv.Itoa(sort.Order))
	}
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	if len(v) == 0 {
		return "/users"
	}
	return "/users?" + v.Encode()
}

func userHref(id string) string {
	if id == "" {
		return ""
	}
	return "/users/" + url.PathEscape(id)
}

func sortIndicator(order int) string {
	if order == columns.Ascending {
		return "▲"
	}
	return "▼"
}

// usersView resolves every cell of the page with the page's epoch.
func (s *Server) usersView(ctx context.Context, table *core.UserTable) templates.UsersView {
	cells := s.service.Cells()
	q := table.Query
	cols := table.Epoch.Columns

	headers := make([]templates.Header, len(cols))
	for i, col := range cols {
		h := templates.Header{Label: col.Label, Width: col.Width}
		if col.Sortable && users.CanSort(col.SortKey()) {
			next := columns.NextSort(col, q.Sort)
			h.SortHref = usersHref(q.Search, columns.SortState{Key: next.SortKey, Order: next.Order}, 0)
			if q.Sort.Active(col) {
				h.Indicator = sortIndicator(q.Sort.Order)
			}
		}
		headers[i] = h
	}

	rows := make([]templates.Row, len(table.Page.Records))
	for i, rec := range table.Page.Records {
		id := rec.ID(users.IDKey)
		row := templates.Row{
			ID:    id,
			Href:  userHref(id),
			Cells: make([]string, len(cols)),
		}
		if pic, ok := columns.Lookup(rec, "picture"); ok {
			row.Avatar = fmt.Sprint(pic)
		}
		for j, col := range cols {
			var fallback any
			if j == 0 {
				fallback = emptyName
			}
			row.Cells[j] = cells.Text(ctx, col, rec, fallback)
		}
		rows[i] = row
	}

	p := table.Page
	v := templates.UsersView{
		Layout:  s.layout("users", "Users"),
		Epoch:   table.Epoch.ID,
		Search:  q.Search,
		Headers: headers,
		Rows:    rows,
		Page:    p.Page + 1,
		Pages:   p.TotalPages(),
		Total:   p.Total,
	}
	if p.Page > 0 {
		v.PrevHref = usersHref(q.Search, q.Sort, p.Page-1)
	}
	if p.HasNext() {
		v.NextHref = usersHref(q.Search, q.Sort, p.Page+1)
	}
	return v
}

// userView builds the detail page of rec.
func (s *Server) userView(ctx context.Context, epoch *columns.Epoch, rec columns.Record) templates.UserView {
	cells := s.service.Cells()

	v := templates.UserView{
		Layout: s.layout("users", ""),
		Name:   displayName(rec),
		Items:  []templates.DetailItem{{Label: "User ID", Value: rec.ID(users.IDKey)}},
	}
	if pic, ok := columns.Lookup(rec, "picture"); ok {
		v.Avatar = fmt.Sprint(pic)
	}
	for _, col := range epoch.Columns {
		v.Items = append(v.Items, templates.DetailItem{
			Label: col.Label,
			Value: cells.Text(ctx, col, rec, "N/A"),
		})
	}

	if ids, ok := columns.Lookup(rec, "identities"); ok {
		if list, ok := ids.([]any); ok {
			for i := range list {
				if c, ok := columns.Lookup(rec, fmt.Sprintf("identities.%d.connection", i)); ok {
					v.Connections = append(v.Connections, fmt.Sprint(c))
				}
			}
		}
	}

	v.Memberships = templates.DetailItem{Label: s.cfg.Dashboard.MembershipsLabel, Value: "None"}
	if m, ok := columns.Lookup(rec, "app_metadata.memberships"); ok {
		if list, ok := m.([]any); ok && len(list) > 0 {
			names := make([]string, len(list))
			for i, item := range list {
				names[i] = fmt.Sprint(item)
			}
			v.Memberships.Value = strings.Join(names, ", ")
		}
	}
	return v
}

// displayName mirrors the Name column fallbacks.
func displayName(rec columns.Record) string {
	for _, key := range []string{"name", "nickname", "email", users.IDKey} {
		if v, ok := columns.Lookup(rec, key); ok && fmt.Sprint(v) != "" {
			return fmt.Sprint(v)
		}
	}
	return emptyName
}

// logsView resolves one page of log records.
func (s *Server) logsView(ctx context.Context, page *logs.Page) templates.LogsView {
	fields := logs.Fields()

	headers := make([]templates.Header, len(fields))
	for i, f := range fields {
		headers[i] = templates.Header{Label: f.Label, Width: f.Width}
	}

	rows := make([]templates.LogRow, len(page.Records))
	for i, rec := range page.Records {
		row := templates.LogRow{ID: rec.ID(logs.IDKey), Cells: make([]string, len(fields))}
		if name, ok := columns.Lookup(rec, "type.icon.name"); ok {
			row.IconName = fmt.Sprint(name)
		}
		if color, ok := columns.Lookup(rec, "type.icon.color"); ok {
			row.IconColor = fmt.Sprint(color)
		}
		for j, f := range fields {
			row.Cells[j] = s.logCells.Text(ctx, f, rec, "")
		}
		rows[i] = row
	}

	v := templates.LogsView{
		Layout:  s.layout("logs", "Logs"),
		Headers: headers,
		Rows:    rows,
	}
	if page.HasNext() {
		v.NextHref = "/logs?page=" + strconv.Itoa(page.NextPage)
	}
	return v
}
