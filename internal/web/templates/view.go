// Package templates renders the dashboard pages as templ components.
//
// Components take view structs whose cell values are already resolved, so
// nothing here reads user records or runs formatters.
package templates

// LayoutView carries the per-deployment page chrome.
type LayoutView struct {
	Title   string
	CSSURL  string // optional extra stylesheet
	Active  string // "users" or "logs"
	Heading string
}

// Header is one column header of the users table.
type Header struct {
	Label     string
	Width     string
	SortHref  string // empty when the column is not sortable
	Indicator string // "▲", "▼" or empty
}

// Row is one rendered table row. Cells[0] links to Href when Href is set.
type Row struct {
	ID     string
	Href   string
	Avatar string
	Cells  []string
}

// UsersView is a page of the users table.
type UsersView struct {
	Layout   LayoutView
	Epoch    string
	Search   string
	Headers  []Header
	Rows     []Row
	Page     int // one based for display
	Pages    int
	Total    int64
	PrevHref string
	NextHref string
}

// DetailItem is one labelled value on the user page.
type DetailItem struct {
	Label string
	Value string
}

// UserView is the user detail page.
type UserView struct {
	Layout      LayoutView
	Name        string
	Avatar      string
	Items       []DetailItem
	Connections []string
	Memberships DetailItem
}

// LogsView is one page of the log stream.
type LogsView struct {
	Layout   LayoutView
	Headers  []Header
	Rows     []LogRow
	NextHref string // empty on the last page
	Err      string
}

// LogRow is one rendered log line.
type LogRow struct {
	ID        string
	IconName  string
	IconColor string
	Cells     []string
}

// DetailItems returns the labelled values shown on the user page, with the
// memberships entry last. Items without a label are skipped.
func (v UserView) DetailItems() []DetailItem {
	items := make([]DetailItem, 0, len(v.Items)+1)
	for _, it := range v.Items {
		if it.Label != "" {
			items = append(items, it)
		}
	}
	if v.Memberships.Label != "" {
		items = append(items, v.Memberships)
	}
	return items
}

// leadingColumn prepends the narrow icon or avatar column.
func leadingColumn(headers []Header) []Header {
	return append([]Header{{Width: "5%"}}, headers...)
}
